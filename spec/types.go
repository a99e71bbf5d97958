// Package spec defines the typed requirement model shared by the parser,
// the traceability builder, and the coverage analyzer.
package spec

import (
	"fmt"
	"regexp"
)

// SpecType represents the kind of qualification specification a document
// describes. The type determines both the mandated requirement ID prefix
// and the GAMP5 qualification phase the requirements belong to.
type SpecType string

const (
	// SpecTypeInstallation is an Installation Specification (IS-NNN, IQ phase).
	SpecTypeInstallation SpecType = "Installation"

	// SpecTypeDesign is a Design Specification (DS-NNN, OQ phase).
	SpecTypeDesign SpecType = "Design"

	// SpecTypeFunctional is a Functional Specification (FS-NNN, OQ phase).
	SpecTypeFunctional SpecType = "Functional"

	// SpecTypeUser is a User Requirement Specification (US-NNN, PQ phase).
	SpecTypeUser SpecType = "User"
)

// QualificationPhase represents a GAMP5 qualification phase.
type QualificationPhase string

const (
	// PhaseIQ is Installation Qualification.
	PhaseIQ QualificationPhase = "IQ"

	// PhaseOQ is Operational Qualification.
	PhaseOQ QualificationPhase = "OQ"

	// PhasePQ is Performance Qualification.
	PhasePQ QualificationPhase = "PQ"
)

// Label returns the long-form phase name used in validation documents.
func (p QualificationPhase) Label() string {
	switch p {
	case PhaseIQ:
		return "Installation Qualification"
	case PhaseOQ:
		return "Operational Qualification"
	case PhasePQ:
		return "Performance Qualification"
	default:
		return string(p)
	}
}

// AllSpecTypes lists every specification type in canonical order.
func AllSpecTypes() []SpecType {
	return []SpecType{
		SpecTypeInstallation,
		SpecTypeDesign,
		SpecTypeFunctional,
		SpecTypeUser,
	}
}

// Prefix returns the requirement ID prefix mandated for this spec type.
func (t SpecType) Prefix() string {
	switch t {
	case SpecTypeInstallation:
		return "IS"
	case SpecTypeDesign:
		return "DS"
	case SpecTypeFunctional:
		return "FS"
	case SpecTypeUser:
		return "US"
	default:
		return ""
	}
}

// Phase returns the qualification phase the spec type belongs to.
// IS maps to IQ, DS and FS map to OQ, US maps to PQ.
func (t SpecType) Phase() QualificationPhase {
	switch t {
	case SpecTypeInstallation:
		return PhaseIQ
	case SpecTypeDesign, SpecTypeFunctional:
		return PhaseOQ
	case SpecTypeUser:
		return PhasePQ
	default:
		return ""
	}
}

// Valid reports whether t is one of the four known spec types.
func (t SpecType) Valid() bool {
	switch t {
	case SpecTypeInstallation, SpecTypeDesign, SpecTypeFunctional, SpecTypeUser:
		return true
	default:
		return false
	}
}

// requirementIDPattern is the bit-exact requirement ID format:
// a two-letter prefix, a dash, and exactly three digits.
var requirementIDPattern = regexp.MustCompile(`^([A-Z]{2})-(\d{3})$`)

// ValidRequirementID reports whether id matches the <PREFIX>-NNN format.
func ValidRequirementID(id string) bool {
	return requirementIDPattern.MatchString(id)
}

// RequirementIDPrefix returns the prefix portion of a requirement ID,
// or the empty string if the ID is malformed.
func RequirementIDPrefix(id string) string {
	m := requirementIDPattern.FindStringSubmatch(id)
	if m == nil {
		return ""
	}
	return m[1]
}

// Requirement is one identified, described obligation extracted from a
// specification document. Requirements are immutable after parse.
type Requirement struct {
	// ID is the requirement identifier, e.g. "FS-001".
	ID string

	// Title is the requirement heading text, byte-exact from the document.
	Title string

	// Description is the free-form requirement body.
	Description string

	// Steps are ordered verification steps extracted from numbered lists.
	Steps []string

	// ExpectedResult is the declared expected outcome, if any.
	ExpectedResult string

	// Metadata holds key/value annotations from the metadata section.
	Metadata map[string]string

	// SpecType identifies the owning specification type.
	SpecType SpecType
}

// Specification is a complete parsed specification document.
// The requirement sequence preserves document order.
type Specification struct {
	SpecType     SpecType
	Title        string
	Version      string
	Requirements []Requirement
}

// Requirement returns the requirement with the given ID, if present.
func (s *Specification) Requirement(id string) (Requirement, bool) {
	for _, r := range s.Requirements {
		if r.ID == id {
			return r, true
		}
	}
	return Requirement{}, false
}

// RequirementIDs returns the requirement IDs in document order.
func (s *Specification) RequirementIDs() []string {
	ids := make([]string, 0, len(s.Requirements))
	for _, r := range s.Requirements {
		ids = append(ids, r.ID)
	}
	return ids
}

// Validate checks the structural invariants of a specification:
// every requirement ID is well formed, carries the prefix mandated by
// the spec type, and is unique within the specification.
func (s *Specification) Validate() error {
	seen := make(map[string]bool, len(s.Requirements))
	for _, r := range s.Requirements {
		if !ValidRequirementID(r.ID) {
			return fmt.Errorf("malformed requirement ID %q", r.ID)
		}
		if got, want := RequirementIDPrefix(r.ID), s.SpecType.Prefix(); got != want {
			return fmt.Errorf("requirement %s: prefix %q does not match %s specification (want %q)",
				r.ID, got, s.SpecType, want)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate requirement ID %s", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}
