package selection

import (
	"sync"

	"github.com/lmcalvo/cine-checkout/internal/domain"
)

// Registry holds the live Session of each user session token, together with
// the occupancy unsubscribe hook that tears its push channel down. A token
// owns at most one Session; starting a new one replaces the old, and removal
// never releases held seats (holds expire server-side).
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	session     *Session
	unsubscribe func()
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

func (r *Registry) Put(token string, session *Session, unsubscribe func()) {
	r.mu.Lock()
	old, ok := r.entries[token]
	r.entries[token] = &entry{session: session, unsubscribe: unsubscribe}
	r.mu.Unlock()

	if ok && old.unsubscribe != nil {
		old.unsubscribe()
	}
}

func (r *Registry) Get(token string, showtimeID int) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[token]
	if !ok || e.session.ShowtimeID != showtimeID {
		return nil, domain.ErrSelectionNotFound
	}

	return e.session, nil
}

func (r *Registry) Remove(token string) {
	r.mu.Lock()
	e, ok := r.entries[token]
	delete(r.entries, token)
	r.mu.Unlock()

	if ok && e.unsubscribe != nil {
		e.unsubscribe()
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		if e.unsubscribe != nil {
			e.unsubscribe()
		}
	}
}
