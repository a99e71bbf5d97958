package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gxptrace/gxptrace/spec"
)

func functionalSpec(ids ...string) *spec.Specification {
	s := &spec.Specification{SpecType: spec.SpecTypeFunctional, Title: "Functional", Version: "1.0"}
	for _, id := range ids {
		s.Requirements = append(s.Requirements, spec.Requirement{
			ID:       id,
			Title:    "Requirement " + id,
			SpecType: spec.SpecTypeFunctional,
		})
	}
	return s
}

func TestExecutionOutcome_Combine(t *testing.T) {
	assert.Equal(t, OutcomeFailed, OutcomePassed.Combine(OutcomeFailed))
	assert.Equal(t, OutcomeFailed, OutcomeFailed.Combine(OutcomePassed))
	assert.Equal(t, OutcomePassed, OutcomePassed.Combine(OutcomeSkipped))
	assert.Equal(t, OutcomeSkipped, OutcomeSkipped.Combine(OutcomeNotExecuted))
	assert.Equal(t, OutcomePassed, OutcomeNotExecuted.Combine(OutcomePassed))
}

func TestBuild_RowPerResolvingPair(t *testing.T) {
	specs := map[spec.SpecType]*spec.Specification{
		spec.SpecTypeFunctional: functionalSpec("FS-001", "FS-002"),
	}
	decls := []TestDeclaration{
		{TestID: "test_both", RequirementIDs: []string{"FS-001", "FS-002"}},
	}
	outcomes := map[string]ExecutionOutcome{"test_both": OutcomePassed}

	result := Build(decls, outcomes, specs)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "FS-001", result.Rows[0].RequirementID)
	assert.Equal(t, "FS-002", result.Rows[1].RequirementID)
	for _, row := range result.Rows {
		assert.Equal(t, "test_both", row.TestID)
		assert.Equal(t, OutcomePassed, row.Status)
		assert.Equal(t, spec.SpecTypeFunctional, row.SpecType)
	}
}

func TestBuild_RowOrdering(t *testing.T) {
	// Rows follow spec requirement order first, then declaration order.
	specs := map[spec.SpecType]*spec.Specification{
		spec.SpecTypeDesign:     {SpecType: spec.SpecTypeDesign, Requirements: []spec.Requirement{{ID: "DS-001"}}},
		spec.SpecTypeFunctional: functionalSpec("FS-002", "FS-001"),
	}
	decls := []TestDeclaration{
		{TestID: "t_b", RequirementIDs: []string{"FS-001", "DS-001"}},
		{TestID: "t_a", RequirementIDs: []string{"FS-002", "FS-001"}},
	}

	result := Build(decls, nil, specs)
	require.Len(t, result.Rows, 4)

	type pair struct{ req, test string }
	var got []pair
	for _, row := range result.Rows {
		got = append(got, pair{row.RequirementID, row.TestID})
	}
	// Design precedes Functional in canonical spec order; FS-002 precedes
	// FS-001 in document order; declarations keep their input order.
	want := []pair{
		{"DS-001", "t_b"},
		{"FS-002", "t_a"},
		{"FS-001", "t_b"},
		{"FS-001", "t_a"},
	}
	assert.Equal(t, want, got)
}

func TestBuild_FailedDominatesAggregation(t *testing.T) {
	specs := map[spec.SpecType]*spec.Specification{
		spec.SpecTypeFunctional: functionalSpec("FS-001"),
	}
	decls := []TestDeclaration{
		{TestID: "test_pass", RequirementIDs: []string{"FS-001"}},
		{TestID: "test_fail", RequirementIDs: []string{"FS-001"}},
		{TestID: "test_skip", RequirementIDs: []string{"FS-001"}},
	}
	outcomes := map[string]ExecutionOutcome{
		"test_pass": OutcomePassed,
		"test_fail": OutcomeFailed,
		"test_skip": OutcomeSkipped,
	}

	result := Build(decls, outcomes, specs)
	assert.Equal(t, OutcomeFailed, result.RequirementStatus["FS-001"])
	assert.Equal(t, 0, result.Coverage.RequirementsVerified)
}

func TestBuild_MissingOutcomeIsNotExecuted(t *testing.T) {
	specs := map[spec.SpecType]*spec.Specification{
		spec.SpecTypeFunctional: functionalSpec("FS-001"),
	}
	decls := []TestDeclaration{
		{TestID: "test_never_ran", RequirementIDs: []string{"FS-001"}},
	}

	result := Build(decls, nil, specs)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, OutcomeNotExecuted, result.Rows[0].Status)
	assert.Equal(t, OutcomeNotExecuted, result.RequirementStatus["FS-001"])
	assert.Equal(t, 1, result.Summary.NotExecuted)
}

func TestBuild_LinkErrors(t *testing.T) {
	specs := map[spec.SpecType]*spec.Specification{
		spec.SpecTypeFunctional: functionalSpec("FS-001"),
	}
	decls := []TestDeclaration{
		{TestID: "test_a", RequirementIDs: []string{"FS-001", "FS-999"}},
		{TestID: "test_b", RequirementIDs: []string{"ZZ-123", "ZZ-123"}},
	}

	result := Build(decls, nil, specs)

	// One finding per unique unknown reference, in declaration order.
	require.Len(t, result.LinkErrors, 2)
	assert.Equal(t, LinkFinding{TestID: "test_a", RequirementID: "FS-999"}, result.LinkErrors[0])
	assert.Equal(t, LinkFinding{TestID: "test_b", RequirementID: "ZZ-123"}, result.LinkErrors[1])

	// The resolvable pair still produced its row.
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "FS-001", result.Rows[0].RequirementID)
}

func TestBuild_CoverageMetrics(t *testing.T) {
	specs := map[spec.SpecType]*spec.Specification{
		spec.SpecTypeFunctional: functionalSpec("FS-001", "FS-002", "FS-003", "FS-004"),
	}
	decls := []TestDeclaration{
		{TestID: "test_1", RequirementIDs: []string{"FS-001"}},
		{TestID: "test_2", RequirementIDs: []string{"FS-002"}},
	}
	outcomes := map[string]ExecutionOutcome{
		"test_1": OutcomePassed,
		"test_2": OutcomeFailed,
	}

	cov := Build(decls, outcomes, specs).Coverage
	assert.Equal(t, 4, cov.TotalRequirements)
	assert.Equal(t, 2, cov.RequirementsWithTests)
	assert.InDelta(t, 50.0, cov.CoveragePercentage, 0.001)
	assert.Equal(t, 1, cov.RequirementsVerified)
	assert.InDelta(t, 50.0, cov.VerificationPercentage, 0.001)
	assert.Equal(t, []string{"FS-003", "FS-004"}, cov.UncoveredRequirementIDs)
}

func TestBuild_VacuousCoverage(t *testing.T) {
	cov := Build(nil, nil, map[spec.SpecType]*spec.Specification{}).Coverage
	assert.Equal(t, 0, cov.TotalRequirements)
	assert.InDelta(t, 100.0, cov.CoveragePercentage, 0.001)
	assert.InDelta(t, 0.0, cov.VerificationPercentage, 0.001)
	assert.Empty(t, cov.UncoveredRequirementIDs)
}

func TestBuild_Summary(t *testing.T) {
	specs := map[spec.SpecType]*spec.Specification{
		spec.SpecTypeFunctional: functionalSpec("FS-001"),
	}
	decls := []TestDeclaration{
		{TestID: "t1", RequirementIDs: []string{"FS-001"}},
		{TestID: "t2", RequirementIDs: []string{"FS-001"}},
		{TestID: "t3", RequirementIDs: []string{"FS-001"}},
		{TestID: "t4", RequirementIDs: []string{"FS-001"}},
	}
	outcomes := map[string]ExecutionOutcome{
		"t1": OutcomePassed,
		"t2": OutcomeFailed,
		"t3": OutcomeSkipped,
	}

	sum := Build(decls, outcomes, specs).Summary
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 1, sum.Passed)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.NotExecuted)
	assert.InDelta(t, 50.0, sum.PassRate, 0.001)
	assert.InDelta(t, 75.0, sum.ExecutionRate, 0.001)
}

func TestBuild_UserRequirementMapping(t *testing.T) {
	specs := map[spec.SpecType]*spec.Specification{
		spec.SpecTypeFunctional: functionalSpec("FS-001"),
		spec.SpecTypeUser: {
			SpecType: spec.SpecTypeUser,
			Requirements: []spec.Requirement{
				{
					ID:       "US-001",
					Title:    "User need",
					Metadata: map[string]string{MapsToKey: "FS-001, FS-002"},
					SpecType: spec.SpecTypeUser,
				},
			},
		},
	}
	decls := []TestDeclaration{
		{TestID: "test_fs", RequirementIDs: []string{"FS-001"}},
		{TestID: "test_us", RequirementIDs: []string{"US-001"}},
	}

	result := Build(decls, nil, specs)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "US-001", result.Rows[0].RelatedUserRequirementID)
	assert.Empty(t, result.Rows[1].RelatedUserRequirementID)
}

func TestBuild_DisplayTitleFallsBackToTestID(t *testing.T) {
	specs := map[spec.SpecType]*spec.Specification{
		spec.SpecTypeFunctional: functionalSpec("FS-001"),
	}
	decls := []TestDeclaration{
		{TestID: "test_untitled", RequirementIDs: []string{"FS-001"}},
		{TestID: "test_titled", Title: "A descriptive title", RequirementIDs: []string{"FS-001"}},
	}

	result := Build(decls, nil, specs)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "test_untitled", result.Rows[0].TestTitle)
	assert.Equal(t, "A descriptive title", result.Rows[1].TestTitle)
}
