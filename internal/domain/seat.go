package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatSelected  SeatStatus = "SELECTED"
	SeatOccupied  SeatStatus = "OCCUPIED"
	SeatReserved  SeatStatus = "RESERVED"
	SeatBlocked   SeatStatus = "BLOCKED"
)

// SeatRecord is a seat as the booking backend knows it.
type SeatRecord struct {
	ID        int
	Row       string
	Column    int
	Type      string
	TheaterID int
	Price     decimal.Decimal
	Available bool
	Reserved  bool
}

// Seat is one cell of the rendered seat matrix. A cell without a backing
// record is a placeholder used to pad a sparse layout into a dense grid;
// placeholders are never available and never togglable.
type Seat struct {
	Record *SeatRecord
	Row    string
	Column int
	Status SeatStatus
}

func (s Seat) Backed() bool {
	return s.Record != nil
}

// ID returns the backend seat id. The second return value is false for
// placeholder cells, which have no backing record.
func (s Seat) ID() (int, bool) {
	if s.Record == nil {
		return 0, false
	}

	return s.Record.ID, true
}

func (s Seat) Code() string {
	return SeatCode(s.Row, s.Column)
}

func (s Seat) Available() bool {
	return s.Record != nil && s.Status == SeatAvailable
}

// SeatCode builds the human-readable seat identifier, row letter followed by
// the 1-based column ("C7").
func SeatCode(row string, column int) string {
	return fmt.Sprintf("%s%d", row, column)
}

type Layout struct {
	Rows    int
	Columns int
}

func (l Layout) IsZero() bool {
	return l.Rows <= 0 || l.Columns <= 0
}

// RowLabels returns the row letters of the layout, "A" upwards.
func RowLabels(layout Layout) []string {
	if layout.IsZero() {
		return nil
	}

	labels := make([]string, layout.Rows)
	for i := 0; i < layout.Rows; i++ {
		labels[i] = rowLabel(i)
	}

	return labels
}

func rowLabel(i int) string {
	return string(rune('A' + i))
}

// BuildSeatMatrix overlays the sparse seat records onto a dense rows x columns
// grid in row-major order. Cells without a record become placeholders, which
// render as occupied. Records that fall outside the layout are ignored.
func BuildSeatMatrix(layout Layout, records []SeatRecord) []Seat {
	if layout.IsZero() {
		return []Seat{}
	}

	byCode := make(map[string]SeatRecord, len(records))
	for _, rec := range records {
		byCode[SeatCode(rec.Row, rec.Column)] = rec
	}

	matrix := make([]Seat, 0, layout.Rows*layout.Columns)

	for r := 0; r < layout.Rows; r++ {
		row := rowLabel(r)

		for c := 1; c <= layout.Columns; c++ {
			rec, ok := byCode[SeatCode(row, c)]
			if !ok {
				matrix = append(matrix, Seat{
					Row:    row,
					Column: c,
					Status: SeatOccupied,
				})
				continue
			}

			seat := Seat{
				Record: &rec,
				Row:    row,
				Column: c,
				Status: SeatAvailable,
			}

			switch {
			case rec.Reserved:
				seat.Status = SeatReserved
			case !rec.Available:
				seat.Status = SeatOccupied
			}

			matrix = append(matrix, seat)
		}
	}

	return matrix
}
