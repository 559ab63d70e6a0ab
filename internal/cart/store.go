// Package cart maintains the set of activities a visitor has added to one
// listing's prospective booking: an in-memory, insertion-ordered,
// id-deduplicated collection with best-effort persistence and synchronous
// change notification to registered subscribers.
package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"staybook/internal/domain"
)

// Persister is the storage the store syncs itself against. A houseID of 0
// addresses the visitor's global fallback cart.
//
// Persistence is best-effort: the store swallows every Persister error and
// keeps its in-memory state authoritative for the session.
type Persister interface {
	// Load reads the stored activity list for one (visitor, house) scope.
	// Returns domain.ErrNotFound when no record exists.
	Load(ctx context.Context, visitor uuid.UUID, houseID int64) ([]domain.Activity, error)

	// Save overwrites the stored activity list for one scope.
	Save(ctx context.Context, visitor uuid.UUID, houseID int64, activities []domain.Activity) error
}

// Store holds the authoritative cart state for one (visitor, house) scope.
//
// Mutations update memory first, then (once the initial load has completed)
// write the full collection to the Persister, then notify every subscriber.
// Until Load has run, reads observe an empty collection, so the first
// server-rendered view and the first live view agree.
type Store struct {
	mu      sync.Mutex
	visitor uuid.UUID
	houseID int64
	persist Persister
	log     *slog.Logger

	loaded     bool
	activities []domain.Activity
	subs       map[int]func()
	nextSub    int
}

// NewStore builds an empty store for one scope. Call Load before relying
// on persisted contents.
func NewStore(visitor uuid.UUID, houseID int64, persist Persister, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		visitor: visitor,
		houseID: houseID,
		persist: persist,
		log:     log,
		subs:    make(map[int]func()),
	}
}

// Load reads the persisted record exactly once and notifies subscribers.
// Absent or unreadable records load as empty. Calling Load again is a no-op.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return
	}
	s.loaded = true

	if s.persist != nil {
		stored, err := s.persist.Load(ctx, s.visitor, s.houseID)
		if err != nil {
			s.log.DebugContext(ctx, "cart load failed, starting empty",
				"house_id", s.houseID, "error", err)
		} else {
			s.activities = dedupe(stored)
		}
	}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs)
}

// Add inserts an activity snapshot if its id is not already present and
// reports whether the collection changed. Adding the same activity twice
// leaves a single entry.
func (s *Store) Add(ctx context.Context, a domain.Activity) bool {
	s.mu.Lock()
	for _, existing := range s.activities {
		if existing.ID == a.ID {
			s.mu.Unlock()
			return false
		}
	}
	s.activities = append(s.activities, a)
	subs := s.afterMutationLocked(ctx)
	s.mu.Unlock()

	notify(subs)
	return true
}

// Remove deletes the entry with the given id if present and reports whether
// the collection changed.
func (s *Store) Remove(ctx context.Context, activityID int64) bool {
	s.mu.Lock()
	idx := -1
	for i, a := range s.activities {
		if a.ID == activityID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.activities = append(s.activities[:idx], s.activities[idx+1:]...)
	subs := s.afterMutationLocked(ctx)
	s.mu.Unlock()

	notify(subs)
	return true
}

// Clear empties the collection.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.activities = nil
	subs := s.afterMutationLocked(ctx)
	s.mu.Unlock()

	notify(subs)
}

// Contains is a pure membership predicate over the current in-memory state.
// It never touches storage.
func (s *Store) Contains(activityID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.activities {
		if a.ID == activityID {
			return true
		}
	}
	return false
}

// Activities returns a copy of the current collection in insertion order.
func (s *Store) Activities() []domain.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Activity(nil), s.activities...)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activities)
}

// Subscribe registers fn to run synchronously after every change to the
// collection. The returned function cancels the subscription.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// afterMutationLocked persists the collection (best-effort, only after the
// initial load) and returns the subscriber list for notification outside
// the lock.
func (s *Store) afterMutationLocked(ctx context.Context) []func() {
	if s.loaded && s.persist != nil {
		snapshot := append([]domain.Activity(nil), s.activities...)
		if err := s.persist.Save(ctx, s.visitor, s.houseID, snapshot); err != nil {
			s.log.DebugContext(ctx, "cart save failed, keeping in-memory state",
				"house_id", s.houseID, "error", err)
		}
	}
	return s.subscribersLocked()
}

func (s *Store) subscribersLocked() []func() {
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}

// dedupe drops entries sharing an id with an earlier one, preserving the
// first occurrence's position. Stored records are written deduplicated, but
// the invariant is cheap to re-establish on read.
func dedupe(in []domain.Activity) []domain.Activity {
	seen := make(map[int64]struct{}, len(in))
	out := in[:0]
	for _, a := range in {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}
