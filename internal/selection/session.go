// Package selection holds the seat-selection state machine: one Session per
// user working through the seat-picking step of checkout.
package selection

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/lmcalvo/cine-checkout/internal/domain"
)

type State string

const (
	StateLoading  State = "LOADING"
	StateReady    State = "READY"
	StateComplete State = "COMPLETE"
)

// Session tracks an in-progress seat selection for one showtime: the dense
// seat matrix, the ordered selection, and the required seat count derived from
// the user's tickets. Reserve/release/validate calls run against the booking
// backend as the user toggles seats; operations on the same seat are
// serialized, so a fast double-toggle cannot race a hold against its own
// release, and in-flight selects count toward the required-seat cap, so
// overlapping selects on different seats cannot overshoot it.
type Session struct {
	ID            string
	ShowtimeID    int
	RequiredCount int

	booking domain.BookingClient
	logger  *slog.Logger

	mu             sync.Mutex
	state          State
	layout         domain.Layout
	matrix         []domain.Seat
	seatIndex      map[int]int
	selected       []int
	inflight       map[int]bool
	pendingSelects int
	liveUpdates    bool
}

// View is an immutable snapshot of a Session for rendering.
type View struct {
	State           State
	Layout          domain.Layout
	RequiredCount   int
	SelectedSeatIDs []int
	LiveUpdates     bool
	Matrix          []domain.Seat
}

// NewSession fetches the showtime's layout and seat records and builds the
// seat matrix. A zero layout (the booking client's fail-soft default) yields a
// ready session with nothing to render, not an error state.
func NewSession(ctx context.Context, booking domain.BookingClient, logger *slog.Logger, showtimeID, requiredCount int) *Session {
	s := &Session{
		ID:            uuid.New().String(),
		ShowtimeID:    showtimeID,
		RequiredCount: requiredCount,
		booking:       booking,
		logger:        logger,
		state:         StateLoading,
		inflight:      make(map[int]bool),
		liveUpdates:   true,
	}

	layout, records := booking.GetSeatsByShowtime(ctx, showtimeID)

	s.layout = layout
	s.matrix = domain.BuildSeatMatrix(layout, records)

	s.seatIndex = make(map[int]int, len(s.matrix))
	for i, seat := range s.matrix {
		if id, ok := seat.ID(); ok {
			s.seatIndex[id] = i
		}
	}

	s.state = StateReady

	return s
}

// Toggle selects or deselects a seat by backend id.
//
// Selecting validates the seat against the backend, then places a hold; any
// failure leaves the selection untouched and surfaces as a recoverable
// business error. Deselecting releases the hold best-effort: the local
// transition happens regardless of the release result, since a failed release
// only risks a transient double-hold server-side.
func (s *Session) Toggle(ctx context.Context, seatID int) error {
	s.mu.Lock()

	if s.state != StateReady {
		s.mu.Unlock()
		return domain.ErrSelectionNotFound
	}

	idx, ok := s.seatIndex[seatID]
	if !ok {
		s.mu.Unlock()
		return domain.ErrSeatNotFound
	}

	if s.inflight[seatID] {
		s.mu.Unlock()
		return domain.ErrSeatOperationInFlight
	}

	switch s.matrix[idx].Status {
	case domain.SeatSelected:
		return s.deselect(ctx, seatID, idx)
	case domain.SeatAvailable:
		return s.selectSeat(ctx, seatID, idx)
	default:
		s.mu.Unlock()
		return domain.ErrSeatNotTogglable
	}
}

// selectSeat is called with s.mu held and releases it around the network calls.
// The capacity slot is claimed before the lock is dropped: in-flight selects
// count toward requiredCount, so two selects on different seats cannot both
// squeeze into the last remaining slot while their network calls overlap.
func (s *Session) selectSeat(ctx context.Context, seatID, idx int) error {
	if len(s.selected)+s.pendingSelects >= s.RequiredCount {
		s.mu.Unlock()
		return domain.ErrSelectionFull
	}

	s.pendingSelects++
	s.inflight[seatID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pendingSelects--
		delete(s.inflight, seatID)
		s.mu.Unlock()
	}()

	if !s.booking.ValidateSeats(ctx, s.ShowtimeID, []int{seatID}) {
		s.logger.Info("seat failed validation", "showtime_id", s.ShowtimeID, "seat_id", seatID)
		return domain.ErrSeatUnavailable
	}

	if !s.booking.ReserveSeats(ctx, s.ShowtimeID, []int{seatID}) {
		s.logger.Info("seat hold rejected", "showtime_id", s.ShowtimeID, "seat_id", seatID)
		return domain.ErrSeatUnavailable
	}

	s.mu.Lock()
	s.selected = append(s.selected, seatID)
	s.matrix[idx].Status = domain.SeatSelected
	s.mu.Unlock()

	return nil
}

// deselect is called with s.mu held and releases it around the network call.
func (s *Session) deselect(ctx context.Context, seatID, idx int) error {
	s.inflight[seatID] = true
	s.mu.Unlock()

	defer s.clearInflight(seatID)

	if !s.booking.ReleaseSeats(ctx, s.ShowtimeID, []int{seatID}) {
		s.logger.Warn("seat release failed, hold left to server-side expiry",
			"showtime_id", s.ShowtimeID, "seat_id", seatID)
	}

	s.mu.Lock()
	for i, id := range s.selected {
		if id == seatID {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			break
		}
	}
	s.matrix[idx].Status = domain.SeatAvailable
	s.mu.Unlock()

	return nil
}

func (s *Session) clearInflight(seatID int) {
	s.mu.Lock()
	delete(s.inflight, seatID)
	s.mu.Unlock()
}

// ApplyOccupancy overlays a full occupancy snapshot onto the matrix. Backed,
// non-selected seats flip to occupied when their code is in the set and back
// to available when it is not. Selected seats, placeholders, blocked seats and
// seats with an operation in flight are left alone. Non-live heartbeats only
// flag that live updates are unavailable.
func (s *Session) ApplyOccupancy(snapshot domain.OccupancySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.liveUpdates = snapshot.Live

	if !snapshot.Live {
		return
	}

	occupied := snapshot.CodeSet()

	for i := range s.matrix {
		seat := &s.matrix[i]

		id, backed := seat.ID()
		if !backed || s.inflight[id] {
			continue
		}

		switch seat.Status {
		case domain.SeatAvailable:
			if occupied[seat.Code()] {
				seat.Status = domain.SeatOccupied
			}
		case domain.SeatOccupied, domain.SeatReserved:
			if !occupied[seat.Code()] {
				seat.Status = domain.SeatAvailable
			}
		}
	}
}

// Complete closes the session once exactly the required number of seats is
// selected, returning the confirmed seats in selection order for the next
// checkout step.
func (s *Session) Complete() (domain.SelectedSeats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return domain.SelectedSeats{}, domain.ErrSelectionNotFound
	}

	if len(s.selected) != s.RequiredCount {
		return domain.SelectedSeats{}, domain.ErrSelectionIncomplete
	}

	codes := make([]string, len(s.selected))
	for i, id := range s.selected {
		codes[i] = s.matrix[s.seatIndex[id]].Code()
	}

	s.state = StateComplete

	return domain.SelectedSeats{
		ShowtimeID: s.ShowtimeID,
		SeatIDs:    append([]int(nil), s.selected...),
		SeatCodes:  codes,
	}, nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	matrix := make([]domain.Seat, len(s.matrix))
	copy(matrix, s.matrix)

	return View{
		State:           s.state,
		Layout:          s.layout,
		RequiredCount:   s.RequiredCount,
		SelectedSeatIDs: append([]int(nil), s.selected...),
		LiveUpdates:     s.liveUpdates,
		Matrix:          matrix,
	}
}

func (s *Session) SelectedSeatIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]int(nil), s.selected...)
}
