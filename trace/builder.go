package trace

import (
	"sort"
	"strings"

	"github.com/gxptrace/gxptrace/spec"
)

// MapsToKey is the metadata key on user requirements that names the
// lower-level requirement IDs they map to, comma separated.
const MapsToKey = "Maps-To"

// BuildResult is the ordered traceability dataset and the aggregate
// metrics derived from one build. Results are ephemeral: they are
// recomputed from the full declaration and outcome sets each time the
// builder runs and are never persisted by the engine.
type BuildResult struct {
	// Rows hold one entry per resolving (test, requirement) pair,
	// ordered by specification requirement order, then declaration
	// order.
	Rows []TraceabilityRow

	// Coverage holds requirement coverage and verification metrics.
	Coverage CoverageReport

	// Summary holds per-test execution statistics.
	Summary TestSummary

	// LinkErrors lists declarations referencing unknown requirement IDs.
	LinkErrors []LinkFinding

	// RequirementStatus maps each covered requirement ID to its
	// aggregate outcome under the fail-loud precedence.
	RequirementStatus map[string]ExecutionOutcome
}

// Build cross-references test declarations and execution outcomes
// against parsed specifications. Tests with no recorded outcome count as
// NOT_EXECUTED. Unknown requirement references never abort the build;
// they are collected as link findings.
func Build(
	decls []TestDeclaration,
	outcomes map[string]ExecutionOutcome,
	specs map[spec.SpecType]*spec.Specification,
) *BuildResult {
	result := &BuildResult{
		Rows:              []TraceabilityRow{},
		RequirementStatus: make(map[string]ExecutionOutcome),
	}

	// Requirement lookup and ordered requirement list across all specs,
	// in canonical spec-type order.
	lookup := make(map[string]reqEntry)
	var ordered []reqEntry
	for _, t := range spec.AllSpecTypes() {
		s, ok := specs[t]
		if !ok {
			continue
		}
		for _, r := range s.Requirements {
			entry := reqEntry{req: r, specType: t}
			lookup[r.ID] = entry
			ordered = append(ordered, entry)
		}
	}

	userMap := userRequirementMap(specs[spec.SpecTypeUser])

	outcomeFor := func(testID string) ExecutionOutcome {
		if o, ok := outcomes[testID]; ok {
			return o
		}
		return OutcomeNotExecuted
	}

	// Link errors follow declaration order.
	for _, d := range decls {
		for _, id := range d.uniqueRequirementIDs() {
			if _, ok := lookup[id]; !ok {
				result.LinkErrors = append(result.LinkErrors, LinkFinding{TestID: d.TestID, RequirementID: id})
			}
		}
	}

	// Rows follow specification requirement order, then declaration
	// order, for determinism.
	for _, entry := range ordered {
		for _, d := range decls {
			if !declarationCovers(d, entry.req.ID) {
				continue
			}
			status := outcomeFor(d.TestID)
			result.Rows = append(result.Rows, TraceabilityRow{
				TestID:                   d.TestID,
				TestTitle:                d.DisplayTitle(),
				RequirementID:            entry.req.ID,
				RequirementTitle:         entry.req.Title,
				SpecType:                 entry.specType,
				RelatedUserRequirementID: userMap[entry.req.ID],
				Status:                   status,
			})

			agg, covered := result.RequirementStatus[entry.req.ID]
			if !covered {
				agg = status
			} else {
				agg = agg.Combine(status)
			}
			result.RequirementStatus[entry.req.ID] = agg
		}
	}

	result.Coverage = buildCoverage(ordered, result.RequirementStatus)
	result.Summary = buildSummary(decls, outcomeFor)
	return result
}

func declarationCovers(d TestDeclaration, reqID string) bool {
	for _, id := range d.RequirementIDs {
		if id == reqID {
			return true
		}
	}
	return false
}

// userRequirementMap inverts the Maps-To metadata of the user
// specification: each mapped lower-level requirement ID points at the
// user requirement that traces to it.
func userRequirementMap(userSpec *spec.Specification) map[string]string {
	m := make(map[string]string)
	if userSpec == nil {
		return m
	}
	for _, r := range userSpec.Requirements {
		mapsTo, ok := r.Metadata[MapsToKey]
		if !ok {
			continue
		}
		for _, target := range strings.Split(mapsTo, ",") {
			target = strings.TrimSpace(target)
			if target != "" {
				m[target] = r.ID
			}
		}
	}
	return m
}

// reqEntry pairs a requirement with its owning spec type.
type reqEntry struct {
	req      spec.Requirement
	specType spec.SpecType
}

func buildCoverage(ordered []reqEntry, status map[string]ExecutionOutcome) CoverageReport {
	cov := CoverageReport{
		TotalRequirements:       len(ordered),
		RequirementsWithTests:   len(status),
		UncoveredRequirementIDs: []string{},
	}

	for _, entry := range ordered {
		if _, ok := status[entry.req.ID]; !ok {
			cov.UncoveredRequirementIDs = append(cov.UncoveredRequirementIDs, entry.req.ID)
		}
	}
	sort.Strings(cov.UncoveredRequirementIDs)

	for _, agg := range status {
		if agg == OutcomePassed {
			cov.RequirementsVerified++
		}
	}

	// Vacuous coverage: with zero requirements there is nothing left
	// uncovered.
	if cov.TotalRequirements == 0 {
		cov.CoveragePercentage = 100
	} else {
		cov.CoveragePercentage = float64(cov.RequirementsWithTests) / float64(cov.TotalRequirements) * 100
	}
	if cov.RequirementsWithTests > 0 {
		cov.VerificationPercentage = float64(cov.RequirementsVerified) / float64(cov.RequirementsWithTests) * 100
	}
	return cov
}

func buildSummary(decls []TestDeclaration, outcomeFor func(string) ExecutionOutcome) TestSummary {
	sum := TestSummary{Total: len(decls)}
	for _, d := range decls {
		switch outcomeFor(d.TestID) {
		case OutcomePassed:
			sum.Passed++
		case OutcomeFailed:
			sum.Failed++
		case OutcomeSkipped:
			sum.Skipped++
		default:
			sum.NotExecuted++
		}
	}
	if sum.Passed+sum.Failed > 0 {
		sum.PassRate = float64(sum.Passed) / float64(sum.Passed+sum.Failed) * 100
	}
	if sum.Total > 0 {
		sum.ExecutionRate = float64(sum.Passed+sum.Failed+sum.Skipped) / float64(sum.Total) * 100
	}
	return sum
}
