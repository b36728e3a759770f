package campaign

import (
	"sync"
	"time"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusStopped   Status = "stopped"
)

// recentErrorsLimit bounds the failure messages kept for polling clients.
const recentErrorsLimit = 5

// Snapshot is a consistent copy of the run state.
type Snapshot struct {
	RunID        string
	Status       Status
	IsRunning    bool
	Total        int
	Remaining    int
	Delivered    int
	Failed       int
	LastError    string
	RecentErrors []string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// State is the authoritative run record. Only the Dispatcher mutates it;
// readers get snapshots.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewState returns an Idle state.
func NewState() *State {
	return &State{snap: Snapshot{Status: StatusIdle}}
}

// Snapshot returns a copy safe to hand to any reader.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *State) copyLocked() Snapshot {
	out := s.snap
	out.IsRunning = out.Status == StatusRunning
	out.RecentErrors = append([]string(nil), s.snap.RecentErrors...)
	return out
}

// begin resets the record for a new run and marks it Running. It fails
// with ErrConflict when a run is already in progress.
func (s *State) begin(runID string, total int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Status == StatusRunning {
		return Snapshot{}, ErrConflict
	}
	s.snap = Snapshot{
		RunID:     runID,
		Status:    StatusRunning,
		Total:     total,
		Remaining: total,
		StartedAt: time.Now().UTC(),
	}
	return s.copyLocked(), nil
}

// resolve records one job reaching a terminal outcome.
func (s *State) resolve(delivered bool, failure string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Remaining > 0 {
		s.snap.Remaining--
	}
	if delivered {
		s.snap.Delivered++
	} else {
		s.snap.Failed++
		s.snap.RecentErrors = append(s.snap.RecentErrors, failure)
		if n := len(s.snap.RecentErrors); n > recentErrorsLimit {
			s.snap.RecentErrors = s.snap.RecentErrors[n-recentErrorsLimit:]
		}
	}
	return s.copyLocked()
}

// finish moves the run to a terminal status.
func (s *State) finish(status Status, cause error) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Status = status
	s.snap.FinishedAt = time.Now().UTC()
	if cause != nil {
		s.snap.LastError = cause.Error()
	}
	return s.copyLocked()
}
