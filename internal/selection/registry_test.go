package selection

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/lmcalvo/cine-checkout/internal/domain"
	"github.com/lmcalvo/cine-checkout/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistrySession(t *testing.T, showtimeID int) *Session {
	t.Helper()

	booking := &mocks.MockBookingClient{
		GetSeatsByShowtimeFunc: func(ctx context.Context, id int) (domain.Layout, []domain.SeatRecord) {
			return domain.Layout{Rows: 1, Columns: 1}, []domain.SeatRecord{
				{ID: 1, Row: "A", Column: 1, Available: true},
			}
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewSession(context.Background(), booking, logger, showtimeID, 1)
}

func TestRegistryPutAndGet(t *testing.T) {
	registry := NewRegistry()
	session := newRegistrySession(t, 7)

	registry.Put("token", session, nil)

	got, err := registry.Get("token", 7)
	require.NoError(t, err)
	assert.Same(t, session, got)

	_, err = registry.Get("token", 8)
	assert.ErrorIs(t, err, domain.ErrSelectionNotFound)

	_, err = registry.Get("other", 7)
	assert.ErrorIs(t, err, domain.ErrSelectionNotFound)
}

func TestRegistryReplacingSessionUnsubscribesOld(t *testing.T) {
	registry := NewRegistry()

	oldTornDown := false
	registry.Put("token", newRegistrySession(t, 7), func() { oldTornDown = true })

	replacement := newRegistrySession(t, 9)
	registry.Put("token", replacement, nil)

	assert.True(t, oldTornDown)

	got, err := registry.Get("token", 9)
	require.NoError(t, err)
	assert.Same(t, replacement, got)
}

func TestRegistryRemoveUnsubscribes(t *testing.T) {
	registry := NewRegistry()

	tornDown := 0
	registry.Put("token", newRegistrySession(t, 7), func() { tornDown++ })

	registry.Remove("token")
	registry.Remove("token")

	assert.Equal(t, 1, tornDown)

	_, err := registry.Get("token", 7)
	assert.ErrorIs(t, err, domain.ErrSelectionNotFound)
}

func TestRegistryClose(t *testing.T) {
	registry := NewRegistry()

	tornDown := 0
	registry.Put("a", newRegistrySession(t, 1), func() { tornDown++ })
	registry.Put("b", newRegistrySession(t, 2), func() { tornDown++ })

	registry.Close()

	assert.Equal(t, 2, tornDown)
}
