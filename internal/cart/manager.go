package cart

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Key identifies one cart scope. Carts are strictly per (visitor, house);
// switching listings never merges or leaks contents between scopes.
type Key struct {
	Visitor uuid.UUID
	HouseID int64
}

// Manager hands out the Store for each scope, creating it lazily. Scopes
// idle past a cutoff are evictable: the stores are only a memory front for
// the Persister, so an evicted scope rebuilds from storage on next use.
type Manager struct {
	mu      sync.Mutex
	persist Persister
	log     *slog.Logger
	onNew   func(Key, *Store)
	stores  map[Key]*entry
}

// entry pairs a store with the last time a request touched it.
type entry struct {
	store    *Store
	lastUsed time.Time
}

// NewManager builds a Manager. onNew, when non-nil, runs once per freshly
// created store — used to attach cross-cutting subscribers (e.g. the
// websocket event hub) before the store is handed to a caller.
func NewManager(persist Persister, log *slog.Logger, onNew func(Key, *Store)) *Manager {
	return &Manager{
		persist: persist,
		log:     log,
		onNew:   onNew,
		stores:  make(map[Key]*entry),
	}
}

// Store returns the store for the given scope, creating it on first use.
func (m *Manager) Store(visitor uuid.UUID, houseID int64) *Store {
	key := Key{Visitor: visitor, HouseID: houseID}

	m.mu.Lock()
	e, ok := m.stores[key]
	if !ok {
		e = &entry{store: NewStore(visitor, houseID, m.persist, m.log)}
		m.stores[key] = e
		if m.onNew != nil {
			m.onNew(key, e.store)
		}
	}
	e.lastUsed = time.Now()
	m.mu.Unlock()

	return e.store
}

// EvictIdle drops every store not touched since the cutoff and returns the
// number evicted. Visitor identity is minted per cookie-less request, so
// without eviction one retained store per crawler hit accumulates forever.
func (m *Manager) EvictIdle(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key, e := range m.stores {
		if e.lastUsed.Before(cutoff) {
			delete(m.stores, key)
			n++
		}
	}
	return n
}

// Len returns the number of live stores.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}
