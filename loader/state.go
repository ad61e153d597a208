package loader

import (
	"sync"
	"time"

	"github.com/YuminosukeSato/linscore/pkg/log"
)

// State is the progress of a single Load call.
type State int

const (
	Unloaded State = iota
	Reading
	Parsed
	Dispatched
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Reading:
		return log.PhaseReading
	case Parsed:
		return log.PhaseParsed
	case Dispatched:
		return log.PhaseDispatched
	default:
		return "unknown"
	}
}

// stateManager tracks the state of one Load call in a thread-safe manner and
// logs each transition. It never outlives the call.
type stateManager struct {
	mu      sync.RWMutex
	state   State
	started time.Time
	logger  log.Logger
}

func newStateManager(logger log.Logger) *stateManager {
	return &stateManager{
		state:   Unloaded,
		started: time.Now(),
		logger:  logger,
	}
}

// State returns the current state.
func (s *stateManager) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// advance moves to next; states only move forward.
func (s *stateManager) advance(next State, fields ...any) {
	s.mu.Lock()
	if next <= s.state {
		s.mu.Unlock()
		return
	}
	s.state = next
	elapsed := time.Since(s.started)
	s.mu.Unlock()

	fields = append(fields,
		log.PhaseKey, next.String(),
		log.DurationMsKey, elapsed.Milliseconds(),
	)
	s.logger.Debug("load state changed", fields...)
}
