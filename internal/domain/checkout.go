package domain

import "github.com/shopspring/decimal"

// MovieSelection is the movie/showtime choice made in the previous checkout
// step, read back from session storage before seats can be picked.
type MovieSelection struct {
	MovieTitle string
	Day        string
	Time       string
	Format     string
	CinemaName string
	TheaterID  int
	ShowtimeID int
}

// TicketLine is one ticket type picked in the previous checkout step.
type TicketLine struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// RequiredSeats is the number of seats the user must pick, the sum of ticket
// quantities across all lines.
func RequiredSeats(tickets []TicketLine) int {
	total := 0
	for _, t := range tickets {
		total += t.Quantity
	}

	return total
}

// SelectedSeats is what the seat-selection step hands to the next checkout
// step once the selection is complete.
type SelectedSeats struct {
	ShowtimeID int
	SeatIDs    []int
	SeatCodes  []string
}
