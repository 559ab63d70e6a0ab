package cart

import (
	"sync"

	"staybook/internal/domain"
)

// Modal tracks at most one "currently open" activity for detail viewing,
// independent of cart contents. It has no persistence; a fresh Modal is the
// closed state.
type Modal struct {
	mu       sync.Mutex
	selected *domain.Activity
	open     bool
}

// Open selects an activity and opens the modal.
func (m *Modal) Open(a domain.Activity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = &a
	m.open = true
}

// Close closes the modal and clears the selection.
func (m *Modal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = nil
	m.open = false
}

// Selected returns the open activity, if any.
func (m *Modal) Selected() (domain.Activity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected == nil {
		return domain.Activity{}, false
	}
	return *m.selected, true
}

// IsOpen reports whether the modal is open.
func (m *Modal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}
