package domain

import "context"

// BookingClient is the upstream booking backend. Layout lookups and the
// hold protocol fail soft: transport and server errors degrade to zero values
// and false results so a failed call never breaks the seat-picking flow.
type BookingClient interface {
	GetTheaterLayout(ctx context.Context, theaterID int) Layout
	GetSeatsByShowtime(ctx context.Context, showtimeID int) (Layout, []SeatRecord)
	ValidateSeats(ctx context.Context, showtimeID int, seatIDs []int) bool
	ReserveSeats(ctx context.Context, showtimeID int, seatIDs []int) bool
	ReleaseSeats(ctx context.Context, showtimeID int, seatIDs []int) bool
	GetOccupiedSeats(ctx context.Context, showtimeID int) ([]string, error)
}
