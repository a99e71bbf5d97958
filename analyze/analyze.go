// Package analyze provides static, advisory checks over specifications
// and test declarations, independent of a live test run.
package analyze

import (
	"sort"

	"github.com/gxptrace/gxptrace/spec"
	"github.com/gxptrace/gxptrace/trace"
)

// Location identifies where a test is declared in source.
type Location struct {
	File string
	Line int
}

// TestInfo pairs a test declaration with its source context. The Stub
// flag is supplied by the caller that discovered the test; the analyzer
// never infers it from source text.
type TestInfo struct {
	Declaration trace.TestDeclaration
	Location    Location
	Stub        bool
}

// DuplicateFinding reports a test identifier declared in more than one
// location. Every location is listed.
type DuplicateFinding struct {
	TestID    string
	Locations []Location
}

// MissingAssociationFinding reports a test that references requirements
// but lacks the runner's qualification marker.
type MissingAssociationFinding struct {
	TestID   string
	Location Location
}

// UncoveredFinding reports a requirement with no matching declaration.
type UncoveredFinding struct {
	RequirementID string
	Title         string
	SpecType      spec.SpecType
}

// StubOnlyFinding reports a requirement all of whose associated tests
// are unimplemented placeholders.
type StubOnlyFinding struct {
	RequirementID string
	Title         string
	Locations     []Location
}

// DanglingFinding reports a declaration naming a requirement ID absent
// from every parsed specification.
type DanglingFinding struct {
	TestID        string
	RequirementID string
	Location      Location
}

// Report is the deterministic result of one analysis pass. All finding
// lists are ID-sorted.
type Report struct {
	TotalRequirements   int
	CoveredRequirements int

	Duplicates          []DuplicateFinding
	MissingAssociations []MissingAssociationFinding
	Uncovered           []UncoveredFinding
	StubOnly            []StubOnlyFinding
	Dangling            []DanglingFinding
}

// Status is the terminal gating signal of an analysis pass.
type Status string

const (
	// StatusPassed indicates the strict gate holds.
	StatusPassed Status = "passed"

	// StatusFailed indicates strict gating rejected the analysis.
	StatusFailed Status = "failed"
)

// Analyze runs every check over the given specifications and discovered
// tests. It is stateless and deterministic: equal inputs produce equal
// reports regardless of input order.
func Analyze(specs map[spec.SpecType]*spec.Specification, tests []TestInfo) *Report {
	r := &Report{}

	known := make(map[string]bool)
	var ordered []spec.Requirement
	for _, t := range spec.AllSpecTypes() {
		s, ok := specs[t]
		if !ok {
			continue
		}
		for _, req := range s.Requirements {
			known[req.ID] = true
			ordered = append(ordered, req)
		}
	}
	r.TotalRequirements = len(ordered)

	// Group tests by identifier for duplicate detection.
	byID := make(map[string][]TestInfo)
	for _, ti := range tests {
		byID[ti.Declaration.TestID] = append(byID[ti.Declaration.TestID], ti)
	}
	for id, group := range byID {
		if len(group) < 2 {
			continue
		}
		locs := make([]Location, 0, len(group))
		for _, ti := range group {
			locs = append(locs, ti.Location)
		}
		sortLocations(locs)
		r.Duplicates = append(r.Duplicates, DuplicateFinding{TestID: id, Locations: locs})
	}
	sort.Slice(r.Duplicates, func(i, j int) bool { return r.Duplicates[i].TestID < r.Duplicates[j].TestID })

	// Requirement references without the qualification marker, and
	// references to requirements no specification defines.
	for _, ti := range tests {
		d := ti.Declaration
		if len(d.RequirementIDs) > 0 && !d.HasCoreAssociation {
			r.MissingAssociations = append(r.MissingAssociations, MissingAssociationFinding{
				TestID:   d.TestID,
				Location: ti.Location,
			})
		}
		for _, reqID := range d.RequirementIDs {
			if !known[reqID] {
				r.Dangling = append(r.Dangling, DanglingFinding{
					TestID:        d.TestID,
					RequirementID: reqID,
					Location:      ti.Location,
				})
			}
		}
	}
	sort.Slice(r.MissingAssociations, func(i, j int) bool {
		return r.MissingAssociations[i].TestID < r.MissingAssociations[j].TestID
	})
	sort.Slice(r.Dangling, func(i, j int) bool {
		if r.Dangling[i].TestID != r.Dangling[j].TestID {
			return r.Dangling[i].TestID < r.Dangling[j].TestID
		}
		return r.Dangling[i].RequirementID < r.Dangling[j].RequirementID
	})

	// Per-requirement coverage classification.
	reqTests := make(map[string][]TestInfo)
	for _, ti := range tests {
		for _, reqID := range ti.Declaration.RequirementIDs {
			reqTests[reqID] = append(reqTests[reqID], ti)
		}
	}
	for _, req := range ordered {
		group := reqTests[req.ID]
		if len(group) == 0 {
			r.Uncovered = append(r.Uncovered, UncoveredFinding{
				RequirementID: req.ID,
				Title:         req.Title,
				SpecType:      req.SpecType,
			})
			continue
		}
		allStubs := true
		var locs []Location
		for _, ti := range group {
			if !ti.Stub {
				allStubs = false
				break
			}
			locs = append(locs, ti.Location)
		}
		if allStubs {
			sortLocations(locs)
			r.StubOnly = append(r.StubOnly, StubOnlyFinding{
				RequirementID: req.ID,
				Title:         req.Title,
				Locations:     locs,
			})
			continue
		}
		r.CoveredRequirements++
	}
	sort.Slice(r.Uncovered, func(i, j int) bool { return r.Uncovered[i].RequirementID < r.Uncovered[j].RequirementID })
	sort.Slice(r.StubOnly, func(i, j int) bool { return r.StubOnly[i].RequirementID < r.StubOnly[j].RequirementID })

	return r
}

// HasFindings reports whether any check produced findings.
func (r *Report) HasFindings() bool {
	return len(r.Duplicates) > 0 ||
		len(r.MissingAssociations) > 0 ||
		len(r.Uncovered) > 0 ||
		len(r.StubOnly) > 0 ||
		len(r.Dangling) > 0
}

// Gate converts the report into a terminal status. Findings are
// advisory by default; in strict mode the presence of uncovered
// requirements or dangling references fails the gate.
func (r *Report) Gate(strict bool) Status {
	if strict && (len(r.Uncovered) > 0 || len(r.Dangling) > 0) {
		return StatusFailed
	}
	return StatusPassed
}

func sortLocations(locs []Location) {
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].File != locs[j].File {
			return locs[i].File < locs[j].File
		}
		return locs[i].Line < locs[j].Line
	})
}
