package mocks

import (
	"context"
	"sync"

	"github.com/lmcalvo/cine-checkout/internal/domain"
)

type MockBookingClient struct {
	GetTheaterLayoutFunc   func(ctx context.Context, theaterID int) domain.Layout
	GetSeatsByShowtimeFunc func(ctx context.Context, showtimeID int) (domain.Layout, []domain.SeatRecord)
	ValidateSeatsFunc      func(ctx context.Context, showtimeID int, seatIDs []int) bool
	ReserveSeatsFunc       func(ctx context.Context, showtimeID int, seatIDs []int) bool
	ReleaseSeatsFunc       func(ctx context.Context, showtimeID int, seatIDs []int) bool
	GetOccupiedSeatsFunc   func(ctx context.Context, showtimeID int) ([]string, error)

	// mu guards the recorded calls; toggles may run concurrently in tests.
	mu            sync.Mutex
	ValidateCalls [][]int
	ReserveCalls  [][]int
	ReleaseCalls  [][]int
}

func (m *MockBookingClient) GetTheaterLayout(ctx context.Context, theaterID int) domain.Layout {
	return m.GetTheaterLayoutFunc(ctx, theaterID)
}

func (m *MockBookingClient) GetSeatsByShowtime(ctx context.Context, showtimeID int) (domain.Layout, []domain.SeatRecord) {
	return m.GetSeatsByShowtimeFunc(ctx, showtimeID)
}

func (m *MockBookingClient) ValidateSeats(ctx context.Context, showtimeID int, seatIDs []int) bool {
	m.mu.Lock()
	m.ValidateCalls = append(m.ValidateCalls, seatIDs)
	m.mu.Unlock()

	return m.ValidateSeatsFunc(ctx, showtimeID, seatIDs)
}

func (m *MockBookingClient) ReserveSeats(ctx context.Context, showtimeID int, seatIDs []int) bool {
	m.mu.Lock()
	m.ReserveCalls = append(m.ReserveCalls, seatIDs)
	m.mu.Unlock()

	return m.ReserveSeatsFunc(ctx, showtimeID, seatIDs)
}

func (m *MockBookingClient) ReleaseSeats(ctx context.Context, showtimeID int, seatIDs []int) bool {
	m.mu.Lock()
	m.ReleaseCalls = append(m.ReleaseCalls, seatIDs)
	m.mu.Unlock()

	return m.ReleaseSeatsFunc(ctx, showtimeID, seatIDs)
}

func (m *MockBookingClient) GetOccupiedSeats(ctx context.Context, showtimeID int) ([]string, error) {
	return m.GetOccupiedSeatsFunc(ctx, showtimeID)
}
