package trace

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gxptrace/gxptrace/spec"
)

// Session accumulates test declarations and execution outcomes for one
// qualification run. It is created at session start, appended to while
// tests execute, and finalized exactly once at session end.
//
// Appends are serialized under a mutex so hosts that run tests on
// concurrent workers preserve the invariant of exactly one outcome per
// executed test identifier.
type Session struct {
	mu        sync.Mutex
	id        string
	startedAt time.Time
	decls     []TestDeclaration
	declared  map[string]bool
	outcomes  map[string]ExecutionOutcome
	finalized bool
}

// NewSession creates an empty session with a fresh run identifier.
func NewSession() *Session {
	return &Session{
		id:        uuid.New().String(),
		startedAt: time.Now(),
		declared:  make(map[string]bool),
		outcomes:  make(map[string]ExecutionOutcome),
	}
}

// ID returns the session run identifier.
func (s *Session) ID() string { return s.id }

// StartedAt returns the session start time.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Record appends a test declaration. Declarations are append-only;
// recording after Finalize fails.
func (s *Session) Record(decl TestDeclaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return ErrSessionFinalized
	}
	if decl.TestID == "" {
		return fmt.Errorf("declaration has empty test ID")
	}
	s.decls = append(s.decls, decl)
	s.declared[decl.TestID] = true
	return nil
}

// RecordOutcome records the execution outcome for a declared test.
// Exactly one outcome is accepted per test identifier.
func (s *Session) RecordOutcome(testID string, outcome ExecutionOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return ErrSessionFinalized
	}
	if !s.declared[testID] {
		return fmt.Errorf("%w: %s", ErrUnknownTest, testID)
	}
	if _, dup := s.outcomes[testID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateOutcome, testID)
	}
	s.outcomes[testID] = outcome
	return nil
}

// Declarations returns a copy of the recorded declarations in recording
// order.
func (s *Session) Declarations() []TestDeclaration {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TestDeclaration, len(s.decls))
	copy(out, s.decls)
	return out
}

// Finalize closes the session and runs the traceability build over the
// fully materialized declaration and outcome sets. A session can be
// finalized only once; partial recomputation during the run is not
// supported.
func (s *Session) Finalize(specs map[spec.SpecType]*spec.Specification) (*BuildResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return nil, ErrSessionFinalized
	}
	s.finalized = true
	return Build(s.decls, s.outcomes, specs), nil
}
