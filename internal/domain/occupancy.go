package domain

import (
	"context"
	"time"
)

// OccupancySnapshot is the full set of seat codes currently unavailable for a
// showtime. Snapshots always replace prior state wholesale, they are never
// merged. Live is false for heartbeat emissions sent while the push channel
// cannot be established; those carry no codes and must not overwrite cached
// occupancy.
type OccupancySnapshot struct {
	ShowtimeID int
	Codes      []string
	Live       bool
	At         time.Time
}

func (s OccupancySnapshot) CodeSet() map[string]bool {
	set := make(map[string]bool, len(s.Codes))
	for _, code := range s.Codes {
		set[code] = true
	}

	return set
}

// OccupancyStore is the shared occupancy cache, keyed by showtime. Only the
// sync channel writes to it; everything else reads.
type OccupancyStore interface {
	Replace(ctx context.Context, showtimeID int, codes []string) error
	Snapshot(ctx context.Context, showtimeID int) ([]string, time.Time, error)
}
