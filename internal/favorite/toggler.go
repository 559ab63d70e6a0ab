// Package favorite implements the optimistic favorite toggle: local state
// flips immediately, the platform API call is awaited, and on failure the
// state rolls back. A per-scope sequence number discards out-of-order
// responses, so a rapid double-toggle can never be overwritten by a stale
// result.
package favorite

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// API is the slice of the platform client the toggler depends on.
type API interface {
	Favorite(ctx context.Context, token string, houseID int64) error
	Unfavorite(ctx context.Context, token string, houseID int64) error
}

// Key scopes favorite state to one visitor and one house.
type Key struct {
	Visitor uuid.UUID
	HouseID int64
}

// Toggler tracks per-scope favorite state across the optimistic window.
// Scopes idle past a cutoff are evictable; the platform API remains the
// authority, so an evicted scope simply re-seeds from the next fetch.
type Toggler struct {
	mu    sync.Mutex
	api   API
	state map[Key]bool
	seq   map[Key]uint64
	used  map[Key]time.Time
}

// NewToggler builds a Toggler over the given API.
func NewToggler(api API) *Toggler {
	return &Toggler{
		api:   api,
		state: make(map[Key]bool),
		seq:   make(map[Key]uint64),
		used:  make(map[Key]time.Time),
	}
}

// Seed records the known server-side state for a scope, e.g. from a house
// detail response. It does not bump the sequence, so it never clobbers a
// toggle in flight.
func (t *Toggler) Seed(key Key, favorite bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.used[key] = time.Now()
	if t.seq[key] == 0 {
		t.state[key] = favorite
	}
}

// IsFavorite returns the current (possibly speculative) state for a scope.
func (t *Toggler) IsFavorite(key Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state[key]
}

// EvictIdle forgets every scope not touched since the cutoff and returns
// the number evicted. An eviction mid-toggle is safe: the in-flight call's
// sequence number no longer matches, so its outcome is discarded.
func (t *Toggler) EvictIdle(cutoff time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for key, last := range t.used {
		if last.Before(cutoff) {
			delete(t.state, key)
			delete(t.seq, key)
			delete(t.used, key)
			n++
		}
	}
	return n
}

// Len returns the number of tracked scopes.
func (t *Toggler) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.used)
}

// Set applies the desired state optimistically, awaits the platform call,
// and rolls back on failure. The returned state is what the scope holds
// after the call resolves.
//
// If another Set for the same scope started while this one's call was in
// flight, this one's outcome is stale: it is discarded without error and
// without touching state.
func (t *Toggler) Set(ctx context.Context, token string, key Key, want bool) (bool, error) {
	t.mu.Lock()
	prev := t.state[key]
	t.state[key] = want
	t.seq[key]++
	mine := t.seq[key]
	t.used[key] = time.Now()
	t.mu.Unlock()

	var err error
	if want {
		err = t.api.Favorite(ctx, token, key.HouseID)
	} else {
		err = t.api.Unfavorite(ctx, token, key.HouseID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seq[key] != mine {
		// A newer toggle superseded this one; its result decides the state.
		return t.state[key], nil
	}
	if err != nil {
		t.state[key] = prev
		return prev, err
	}
	return t.state[key], nil
}
