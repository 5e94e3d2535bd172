package domain

import "errors"

var (
	ErrNoMovieSelection      = errors.New("no movie selection found for this session")
	ErrNoTickets             = errors.New("no tickets found for this session")
	ErrSelectionNotFound     = errors.New("no active seat selection for this session")
	ErrSeatNotFound          = errors.New("seat not found in this showtime")
	ErrSeatNotTogglable      = errors.New("seat cannot be selected")
	ErrSeatUnavailable       = errors.New("seat is no longer available")
	ErrSelectionFull         = errors.New("all required seats are already selected")
	ErrSeatOperationInFlight = errors.New("another operation on this seat is still in progress")
	ErrSelectionIncomplete   = errors.New("selected seats do not match the required ticket count")
)
