// Package trace cross-references test execution outcomes against parsed
// specifications to produce traceability rows and coverage metrics.
package trace

import (
	"fmt"

	"github.com/gxptrace/gxptrace/spec"
)

// ExecutionOutcome is the recorded result of one executed test.
type ExecutionOutcome string

const (
	// OutcomePassed indicates the test passed.
	OutcomePassed ExecutionOutcome = "PASSED"

	// OutcomeFailed indicates the test failed.
	OutcomeFailed ExecutionOutcome = "FAILED"

	// OutcomeSkipped indicates the test was skipped.
	OutcomeSkipped ExecutionOutcome = "SKIPPED"

	// OutcomeNotExecuted indicates no outcome was recorded for the test.
	OutcomeNotExecuted ExecutionOutcome = "NOT_EXECUTED"
)

// precedence orders outcomes for per-requirement aggregation. A single
// failing test must never hide behind a passing one, so FAILED dominates
// PASSED, which dominates SKIPPED, which dominates NOT_EXECUTED.
func (o ExecutionOutcome) precedence() int {
	switch o {
	case OutcomeFailed:
		return 3
	case OutcomePassed:
		return 2
	case OutcomeSkipped:
		return 1
	default:
		return 0
	}
}

// Combine returns the dominant outcome of two under the fail-loud
// aggregation precedence.
func (o ExecutionOutcome) Combine(other ExecutionOutcome) ExecutionOutcome {
	if other.precedence() > o.precedence() {
		return other
	}
	return o
}

// TestDeclaration is an executable test's declared linkage to
// requirements, supplied by the host test runner. Declarations are
// consumed, never mutated.
type TestDeclaration struct {
	// TestID uniquely identifies the test within a session.
	TestID string

	// Title is an optional human-readable test title. When empty,
	// formatters fall back to the TestID.
	Title string

	// RequirementIDs are the requirement identifiers the test verifies.
	// Treated as a set; duplicates are ignored.
	RequirementIDs []string

	// HasCoreAssociation reports whether the test carries the runner's
	// qualification marker in addition to its requirement references.
	HasCoreAssociation bool
}

// DisplayTitle returns the declaration title, falling back to the test ID.
func (d TestDeclaration) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.TestID
}

// uniqueRequirementIDs returns the declared requirement IDs with
// duplicates removed, preserving first-seen order.
func (d TestDeclaration) uniqueRequirementIDs() []string {
	seen := make(map[string]bool, len(d.RequirementIDs))
	ids := make([]string, 0, len(d.RequirementIDs))
	for _, id := range d.RequirementIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// TraceabilityRow is one (test, requirement) linkage record with its
// execution status.
type TraceabilityRow struct {
	TestID                   string
	TestTitle                string
	RequirementID            string
	RequirementTitle         string
	SpecType                 spec.SpecType
	RelatedUserRequirementID string
	Status                   ExecutionOutcome
}

// CoverageReport aggregates requirement coverage and verification
// metrics for one build.
type CoverageReport struct {
	// TotalRequirements is the requirement count across all specs.
	TotalRequirements int

	// RequirementsWithTests counts requirements with at least one
	// resolving declaration.
	RequirementsWithTests int

	// CoveragePercentage is RequirementsWithTests over
	// TotalRequirements. With zero requirements coverage is vacuously
	// 100.
	CoveragePercentage float64

	// RequirementsVerified counts requirements whose aggregate outcome
	// is PASSED.
	RequirementsVerified int

	// VerificationPercentage is RequirementsVerified over
	// RequirementsWithTests, 0 when nothing is covered.
	VerificationPercentage float64

	// UncoveredRequirementIDs lists requirements without tests, sorted
	// by ID.
	UncoveredRequirementIDs []string
}

// TestSummary aggregates per-test execution statistics for one build.
type TestSummary struct {
	Total       int
	Passed      int
	Failed      int
	Skipped     int
	NotExecuted int

	// PassRate is Passed over (Passed+Failed), 0 when nothing ran to
	// completion.
	PassRate float64

	// ExecutionRate is the share of declared tests that actually ran.
	ExecutionRate float64
}

// LinkFinding reports a declaration referencing a requirement ID absent
// from every parsed specification. Link errors are advisory: the build
// continues without the unresolvable row.
type LinkFinding struct {
	TestID        string
	RequirementID string
}

// String renders the finding for human-readable listings.
func (f LinkFinding) String() string {
	return fmt.Sprintf("test %s references unknown requirement %s", f.TestID, f.RequirementID)
}
