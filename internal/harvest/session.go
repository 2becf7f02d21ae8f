package harvest

import (
	"sync"
	"sync/atomic"

	"NewsHarvest/internal/domain"
)

// session owns the status of one run. Only the run goroutine writes it.
type session struct {
	mu     sync.RWMutex
	status domain.HarvestStatus
}

func newSession(status domain.HarvestStatus) *session {
	return &session{status: status}
}

func (s *session) snapshot() domain.HarvestStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Clone()
}

// update applies fn under the write lock, so readers see all of its changes or none.
func (s *session) update(fn func(st *domain.HarvestStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.status)
}

func (s *session) active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Active
}

// Handle controls a started harvest.
type Handle struct {
	id        string
	session   *session
	done      chan struct{}
	cancelled atomic.Bool
}

// ID returns the session id.
func (h *Handle) ID() string { return h.id }

// Done is closed once the session reached a terminal state.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Cancel asks the run to stop before its next URL. The URL being processed is finished first.
func (h *Handle) Cancel() { h.cancelled.Store(true) }

// Status returns a snapshot of this handle's session.
func (h *Handle) Status() domain.HarvestStatus { return h.session.snapshot() }
