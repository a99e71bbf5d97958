package trace

import "errors"

// Sentinel errors for session accumulation.
var (
	// ErrSessionFinalized indicates a mutation or second finalize on a
	// session that was already finalized.
	ErrSessionFinalized = errors.New("session already finalized")

	// ErrDuplicateOutcome indicates a second outcome recording for the
	// same test identifier.
	ErrDuplicateOutcome = errors.New("outcome already recorded for test")

	// ErrUnknownTest indicates an outcome recording for a test that was
	// never declared in the session.
	ErrUnknownTest = errors.New("no declaration for test")
)
