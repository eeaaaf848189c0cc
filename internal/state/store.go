package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/superplanehq/superplane-desktop/internal/launcher"
	"github.com/superplanehq/superplane-desktop/internal/logtail"
)

// DefaultLogLimit bounds how many log lines the loading screen keeps.
const DefaultLogLimit = 500

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Phase       launcher.Phase
	Status      string
	Logs        []string
	LogTotal    uint64
	Error       string
	AppURL      string
	Attempts    int
	LastUpdated time.Time

	// Health of the running application, fed by the background monitor.
	LastProbe           int
	LastProbeError      error
	ConsecutiveFailures int
}

// IsOffline returns true when the running application stopped answering for
// multiple probes in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Failed reports whether the most recent attempt ended in an error.
func (s Snapshot) Failed() bool {
	return s.Phase == launcher.PhaseFailed
}

// Store coordinates concurrent updates to the snapshot. It implements
// launcher.Reporter. The zero value is ready to use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	logs     *logtail.Buffer
	limit    int
}

// NewStore returns a Store that keeps at most limit log lines.
func NewStore(limit int) *Store {
	return &Store{limit: limit}
}

// Status replaces the one-line status text.
func (s *Store) Status(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Status = text
	s.touch()
}

// Log appends text to the log pane, one entry per non-empty line.
func (s *Store) Log(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer().Append(text)
	s.touch()
}

// Error records the terminal message of a failed attempt.
func (s *Store) Error(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Error = text
	s.touch()
}

// Phase records phase transitions. Entering PhaseCheckingRuntime starts a new
// attempt, which clears the previous error and application URL.
func (s *Store) Phase(p launcher.Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == launcher.PhaseCheckingRuntime {
		s.snapshot.Attempts++
		s.snapshot.Error = ""
		s.snapshot.AppURL = ""
		s.snapshot.LastProbe = 0
		s.snapshot.LastProbeError = nil
		s.snapshot.ConsecutiveFailures = 0
	}
	s.snapshot.Phase = p
	s.touch()
}

// SetAppURL records where the application is being served once it is shown.
func (s *Store) SetAppURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.AppURL = url
	s.touch()
}

// RecordProbe stores the outcome of a health probe against the running
// application. When err is non-nil the last good status is kept but the
// failure is counted.
func (s *Store) RecordProbe(code int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snapshot.LastProbeError = err
		s.snapshot.ConsecutiveFailures++
		s.touch()
		return
	}
	s.snapshot.LastProbe = code
	s.snapshot.LastProbeError = nil
	s.snapshot.ConsecutiveFailures = 0
	s.touch()
}

// ClearLogs empties the log pane.
func (s *Store) ClearLogs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer().Reset()
	s.touch()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.logs != nil {
		snap.Logs = s.logs.Lines()
		snap.LogTotal = s.logs.Total()
	}
	if s.snapshot.LastProbeError != nil {
		snap.LastProbeError = fmt.Errorf("%w", s.snapshot.LastProbeError)
	}
	return snap
}

// buffer lazily creates the log buffer. Callers hold the write lock.
func (s *Store) buffer() *logtail.Buffer {
	if s.logs == nil {
		limit := s.limit
		if limit <= 0 {
			limit = DefaultLogLimit
		}
		s.logs = logtail.NewBuffer(limit)
	}
	return s.logs
}

func (s *Store) touch() {
	s.snapshot.LastUpdated = time.Now()
}

var _ launcher.Reporter = (*Store)(nil)
