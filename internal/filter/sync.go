package filter

import (
	"net/url"
	"slices"
	"sync"
	"time"
)

// Navigator is how the Synchronizer changes the page URL.
// Push adds a history entry; Replace rewrites the current one (used for
// date defaulting so the default never becomes a back-navigable step).
type Navigator interface {
	Push(query url.Values)
	Replace(query url.Values)
}

const (
	defaultDebounce = 400 * time.Millisecond
	defaultGuard    = 200 * time.Millisecond
)

// Synchronizer keeps locally-edited filter state consistent with the page
// URL in both directions.
//
// Local edits are pushed to the URL only after a quiet period (the debounce
// window), and only when the edited tuple differs from the last tuple the
// Synchronizer itself pushed — pushing the same state twice produces exactly
// one navigation. External URL changes (back/forward, pagination links) are
// applied field-by-field onto local state and suppress the local→URL push
// for a short guard window, so the write-back cannot re-trigger itself.
//
// All methods are safe for concurrent use, though the expected execution
// model is a single event loop.
type Synchronizer struct {
	mu  sync.Mutex
	nav Navigator

	debounce time.Duration
	guard    time.Duration
	now      func() time.Time
	after    func(time.Duration, func()) *time.Timer

	local      Params
	raw        url.Values // last known full query, for foreign-param preservation
	lastPushed *Params
	guardUntil time.Time

	timer        *time.Timer
	filtersDirty bool // a pending edit touched a non-date field
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithDebounce overrides the local-edit quiet period.
func WithDebounce(d time.Duration) Option {
	return func(s *Synchronizer) { s.debounce = d }
}

// WithGuard overrides the external-apply suppression window.
func WithGuard(d time.Duration) Option {
	return func(s *Synchronizer) { s.guard = d }
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// NewSynchronizer builds a Synchronizer seeded from the given query string.
// The initial URL is the source of truth: local state starts as whatever it
// parses to.
func NewSynchronizer(nav Navigator, initial url.Values, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		nav:      nav,
		debounce: defaultDebounce,
		guard:    defaultGuard,
		now:      time.Now,
		after:    time.AfterFunc,
		local:    ParseQuery(initial),
		raw:      cloneValues(initial),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current local filter state.
func (s *Synchronizer) Snapshot() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local
}

// ApplyURL handles an external URL change. Every tracked field is re-read
// from the query string, overwriting local state only where the URL value
// differs from current local state. Any pending local→URL push is cancelled
// and the next one is suppressed for the guard window.
func (s *Synchronizer) ApplyURL(query url.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()

	incoming := ParseQuery(query)
	mergeChanged(&s.local, incoming)
	s.raw = cloneValues(query)

	s.cancelPendingLocked()
	s.guardUntil = s.now().Add(s.guard)

	// The applied state is now what the URL holds; a later push of an
	// identical tuple would be redundant.
	applied := s.local
	s.lastPushed = &applied
}

// EditFilters mutates the non-date filter fields and schedules a debounced
// push. A push caused by a filter edit resets the page number to 1.
func (s *Synchronizer) EditFilters(mutate func(*Params)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(&s.local)
	s.filtersDirty = true
	s.scheduleLocked()
}

// EditDates sets the date range and schedules a debounced push. Date-only
// edits do not reset pagination.
func (s *Synchronizer) EditDates(start, end time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local.StartDate = start
	s.local.EndDate = end
	s.scheduleLocked()
}

// EnsureDefaultDates fills in the default date window when the URL carries
// no start or end date, writing the result immediately via Replace so the
// default does not become a history entry of its own.
func (s *Synchronizer) EnsureDefaultDates() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.local.StartDate.IsZero() && !s.local.EndDate.IsZero() {
		return
	}
	start, end := DefaultDateWindow(s.now())
	if s.local.StartDate.IsZero() {
		s.local.StartDate = start
	}
	if s.local.EndDate.IsZero() {
		s.local.EndDate = end
	}

	q := s.local.Query(s.raw)
	s.raw = q
	applied := s.local
	s.lastPushed = &applied
	s.nav.Replace(q)
}

// Flush pushes any pending edit immediately, bypassing the debounce window
// but not the guard window or the no-op check. Intended for teardown.
func (s *Synchronizer) Flush() {
	s.mu.Lock()
	pending := s.timer != nil
	s.cancelPendingLocked()
	s.mu.Unlock()
	if pending {
		s.fire()
	}
}

// Stop cancels any pending push without firing it.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPendingLocked()
}

// scheduleLocked (re)starts the single-shot debounce timer. Every new edit
// within the window cancels and replaces the previous one, so at most one
// push is pending at a time.
func (s *Synchronizer) scheduleLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.after(s.debounce, s.fire)
}

func (s *Synchronizer) cancelPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// fire performs the debounced local→URL push.
func (s *Synchronizer) fire() {
	s.mu.Lock()
	s.timer = nil

	if s.now().Before(s.guardUntil) {
		// This push would only echo an external apply back at the URL.
		s.filtersDirty = false
		s.mu.Unlock()
		return
	}

	if s.lastPushed != nil && s.local.Equal(*s.lastPushed) {
		s.filtersDirty = false
		s.mu.Unlock()
		return
	}

	if s.filtersDirty {
		if s.lastPushed == nil || !s.local.sameFilters(*s.lastPushed) {
			s.local.Page = 1
		}
		s.filtersDirty = false
	}

	q := s.local.Query(s.raw)
	s.raw = q
	pushed := s.local
	s.lastPushed = &pushed
	nav := s.nav
	s.mu.Unlock()

	nav.Push(q)
}

// mergeChanged overwrites fields of dst with values from src only where
// they differ, leaving untouched fields (and any in-progress edits to them)
// alone.
func mergeChanged(dst *Params, src Params) {
	if dst.Search != src.Search {
		dst.Search = src.Search
	}
	if dst.Country != src.Country {
		dst.Country = src.Country
	}
	if dst.City != src.City {
		dst.City = src.City
	}
	if dst.MinPrice != src.MinPrice {
		dst.MinPrice = src.MinPrice
	}
	if dst.MaxPrice != src.MaxPrice {
		dst.MaxPrice = src.MaxPrice
	}
	if dst.Guests != src.Guests {
		dst.Guests = src.Guests
	}
	if dst.Bedrooms != src.Bedrooms {
		dst.Bedrooms = src.Bedrooms
	}
	if dst.Bathrooms != src.Bathrooms {
		dst.Bathrooms = src.Bathrooms
	}
	if !dst.StartDate.Equal(src.StartDate) {
		dst.StartDate = src.StartDate
	}
	if !dst.EndDate.Equal(src.EndDate) {
		dst.EndDate = src.EndDate
	}
	if dst.Page != src.Page {
		dst.Page = src.Page
	}
	if !sameTypeSet(dst.PropertyTypes, src.PropertyTypes) {
		dst.PropertyTypes = append([]string(nil), src.PropertyTypes...)
	}
}

// sameTypeSet compares property type sets order-insensitively.
func sameTypeSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
