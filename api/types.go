// Package api holds the wire types exchanged with the seat-selection frontend.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

// MovieSelectionRequest is the movie/showtime choice carried over from the
// previous checkout step.
type MovieSelectionRequest struct {
	MovieTitle string `json:"movieTitle" validate:"required"`
	Day        string `json:"day" validate:"required"`
	Time       string `json:"time" validate:"required"`
	Format     string `json:"format" validate:"required"`
	CinemaName string `json:"cinemaName" validate:"required"`
	TheaterId  int    `json:"theaterId" validate:"required,gt=0"`
	ShowtimeId int    `json:"showtimeId" validate:"required,gt=0"`
}

type TicketLine struct {
	Id       string          `json:"id" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"required,gte=1"`
}

type TicketsRequest struct {
	Tickets []TicketLine `json:"tickets" validate:"required,min=1,dive"`
}

type ToggleSeatRequest struct {
	SeatId int `json:"seatId" validate:"required,gt=0"`
}

type Seat struct {
	Id        *int            `json:"id,omitempty"`
	Code      string          `json:"code"`
	Row       string          `json:"row"`
	Column    int             `json:"column"`
	Type      string          `json:"type,omitempty"`
	Status    string          `json:"status"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

type SeatRow struct {
	Row   string `json:"row"`
	Seats []Seat `json:"seats"`
}

type SeatMapResponse struct {
	ShowtimeId      int       `json:"showtimeId"`
	Rows            int       `json:"rows"`
	Columns         int       `json:"columns"`
	State           string    `json:"state"`
	RequiredCount   int       `json:"requiredCount"`
	SelectedSeatIds []int     `json:"selectedSeatIds"`
	LiveUpdates     bool      `json:"liveUpdates"`
	SeatRows        []SeatRow `json:"seatRows"`
}

type CompleteSelectionResponse struct {
	ShowtimeId int      `json:"showtimeId"`
	SeatIds    []int    `json:"seatIds"`
	SeatCodes  []string `json:"seatCodes"`
}
