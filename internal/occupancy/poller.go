package occupancy

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lmcalvo/cine-checkout/internal/domain"
)

// Poller is the polling fallback of the sync channel. Reads go through the
// cache; a snapshot older than the staleness window triggers a background
// refetch from the booking backend, so consumers keep getting updates even if
// the push channel is silently broken. Refetch failures keep the cached set.
type Poller struct {
	client    domain.BookingClient
	store     domain.OccupancyStore
	logger    *slog.Logger
	staleness time.Duration
	timeout   time.Duration

	mu         sync.Mutex
	refreshing map[int]bool
}

func NewPoller(client domain.BookingClient, store domain.OccupancyStore, logger *slog.Logger, staleness time.Duration) *Poller {
	return &Poller{
		client:     client,
		store:      store,
		logger:     logger,
		staleness:  staleness,
		timeout:    10 * time.Second,
		refreshing: make(map[int]bool),
	}
}

// Snapshot returns the cached occupied codes for a showtime, scheduling a
// background refresh when the cache entry is stale or missing. The second
// return value is false when no snapshot has ever been cached; an empty set
// with a timestamp is real data (every seat free), no data at all is not.
func (p *Poller) Snapshot(ctx context.Context, showtimeID int) ([]string, bool) {
	codes, updatedAt, err := p.store.Snapshot(ctx, showtimeID)
	if err != nil {
		p.logger.Error("failed to read occupancy cache", "showtime_id", showtimeID, "error", err)
		return nil, false
	}

	if time.Since(updatedAt) > p.staleness {
		p.scheduleRefresh(showtimeID)
	}

	return codes, !updatedAt.IsZero()
}

// Refresh fetches the occupied set synchronously and replaces the cache entry.
func (p *Poller) Refresh(ctx context.Context, showtimeID int) error {
	codes, err := p.client.GetOccupiedSeats(ctx, showtimeID)
	if err != nil {
		return err
	}

	return p.store.Replace(ctx, showtimeID, codes)
}

func (p *Poller) scheduleRefresh(showtimeID int) {
	p.mu.Lock()
	if p.refreshing[showtimeID] {
		p.mu.Unlock()
		return
	}
	p.refreshing[showtimeID] = true
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			delete(p.refreshing, showtimeID)
			p.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := p.Refresh(ctx, showtimeID); err != nil {
			p.logger.Warn("background occupancy refresh failed", "showtime_id", showtimeID, "error", err)
		}
	}()
}
