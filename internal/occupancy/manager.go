package occupancy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lmcalvo/cine-checkout/internal/domain"
)

const pushMessageTypeSeatUpdate = "SEAT_UPDATE"

// pushMessage is the inbound wire shape of the booking backend's occupancy
// feed. Anything that doesn't parse into it is silently dropped.
type pushMessage struct {
	Type          string   `json:"type"`
	OccupiedCodes []string `json:"occupiedCodes"`
}

// Manager owns the push channels. It keeps at most one live websocket
// connection per showtime, fanning each snapshot out to every subscriber and
// writing it through to the occupancy store. Reconnects are silent; while a
// channel cannot be established, subscribers receive periodic non-live
// heartbeats instead of stale silence, and the cached set is left untouched.
type Manager struct {
	url        string
	store      domain.OccupancyStore
	logger     *slog.Logger
	dialer     *websocket.Dialer
	maxBackoff time.Duration

	mu       sync.Mutex
	channels map[int]*channel
}

func NewManager(url string, store domain.OccupancyStore, logger *slog.Logger) *Manager {
	return &Manager{
		url:        url,
		store:      store,
		logger:     logger,
		dialer:     websocket.DefaultDialer,
		maxBackoff: 15 * time.Second,
		channels:   make(map[int]*channel),
	}
}

// Subscribe registers onUpdate for a showtime's occupancy snapshots and
// returns the matching unsubscribe. The first subscriber of a showtime opens
// the connection, the last one leaving tears it down.
func (m *Manager) Subscribe(showtimeID int, onUpdate func(domain.OccupancySnapshot)) func() {
	m.mu.Lock()

	ch, ok := m.channels[showtimeID]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())

		ch = &channel{
			showtimeID: showtimeID,
			cancel:     cancel,
			subs:       make(map[int]func(domain.OccupancySnapshot)),
		}
		m.channels[showtimeID] = ch

		go m.run(ctx, ch)
	}

	ch.subMu.Lock()
	subID := ch.nextSubID
	ch.nextSubID++
	ch.subs[subID] = onUpdate
	ch.subMu.Unlock()

	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.removeSubscriber(showtimeID, ch, subID)
		})
	}
}

// Close tears down every live channel.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, ch := range m.channels {
		ch.cancel()
		delete(m.channels, id)
	}
}

func (m *Manager) removeSubscriber(showtimeID int, ch *channel, subID int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch.subMu.Lock()
	delete(ch.subs, subID)
	empty := len(ch.subs) == 0
	ch.subMu.Unlock()

	if empty {
		ch.cancel()
		delete(m.channels, showtimeID)
	}
}

type channel struct {
	showtimeID int
	cancel     context.CancelFunc

	subMu     sync.Mutex
	subs      map[int]func(domain.OccupancySnapshot)
	nextSubID int
}

func (ch *channel) notify(snapshot domain.OccupancySnapshot) {
	ch.subMu.Lock()
	callbacks := make([]func(domain.OccupancySnapshot), 0, len(ch.subs))
	for _, cb := range ch.subs {
		callbacks = append(callbacks, cb)
	}
	ch.subMu.Unlock()

	for _, cb := range callbacks {
		cb(snapshot)
	}
}

func (m *Manager) run(ctx context.Context, ch *channel) {
	backoff := time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		conn, resp, err := m.dialer.DialContext(ctx, m.channelURL(ch.showtimeID), nil)
		if err != nil {
			if resp != nil {
				resp.Body.Close()
			}

			// Heartbeat while the channel is down, so consumers can tell
			// "live updates unavailable" from "nothing changed".
			ch.notify(domain.OccupancySnapshot{
				ShowtimeID: ch.showtimeID,
				Live:       false,
				At:         time.Now(),
			})

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}

			backoff *= 2
			if backoff > m.maxBackoff {
				backoff = m.maxBackoff
			}

			continue
		}

		backoff = time.Second
		m.readLoop(ctx, ch, conn)

		conn.Close()
	}
}

func (m *Manager) readLoop(ctx context.Context, ch *channel, conn *websocket.Conn) {
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				m.logger.Warn("occupancy channel read failed, reconnecting",
					"showtime_id", ch.showtimeID, "error", err)
			}
			return
		}

		var msg pushMessage
		if err := json.Unmarshal(payload, &msg); err != nil || msg.Type != pushMessageTypeSeatUpdate {
			continue
		}

		snapshot := domain.OccupancySnapshot{
			ShowtimeID: ch.showtimeID,
			Codes:      msg.OccupiedCodes,
			Live:       true,
			At:         time.Now(),
		}

		if err := m.store.Replace(ctx, ch.showtimeID, snapshot.Codes); err != nil {
			m.logger.Error("failed to cache occupancy snapshot",
				"showtime_id", ch.showtimeID, "error", err)
		}

		ch.notify(snapshot)
	}
}

func (m *Manager) channelURL(showtimeID int) string {
	return fmt.Sprintf("%s?showtimeId=%d", m.url, showtimeID)
}
