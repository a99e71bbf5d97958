package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gxptrace/gxptrace/spec"
	"github.com/gxptrace/gxptrace/trace"
)

// Approval is one signature line of a validation report.
type Approval struct {
	Name string `json:"name"`
	Role string `json:"role"`
	Date string `json:"date"`
}

// ValidationMetadata describes the validation run a report documents.
type ValidationMetadata struct {
	QualificationType spec.QualificationPhase `json:"qualification_type"`
	SoftwareName      string                  `json:"software_name"`
	SoftwareVersion   string                  `json:"software_version"`
	ProjectName       string                  `json:"project_name"`
	ValidationDate    string                  `json:"validation_date"`
	Tester            *Approval               `json:"tester,omitempty"`
	Reviewer          *Approval               `json:"reviewer,omitempty"`
	Approver          *Approval               `json:"approver,omitempty"`
}

// validationDocument is the JSON layout of the validation report.
type validationDocument struct {
	Metadata ValidationMetadata      `json:"metadata"`
	Phase    string                  `json:"qualification_phase"`
	Coverage trace.CoverageReport    `json:"coverage"`
	Summary  trace.TestSummary       `json:"summary"`
	Matrix   []trace.TraceabilityRow `json:"matrix"`
	Findings []string                `json:"findings,omitempty"`
}

// WriteValidationJSON writes the full validation report as JSON,
// combining run metadata, metrics, the traceability matrix, and any
// advisory findings.
func WriteValidationJSON(w io.Writer, meta ValidationMetadata, result *trace.BuildResult, findings []string) error {
	doc := validationDocument{
		Metadata: meta,
		Phase:    meta.QualificationType.Label(),
		Coverage: result.Coverage,
		Summary:  result.Summary,
		Matrix:   result.Rows,
		Findings: findings,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteCoverageMarkdown writes the requirement coverage report:
// aggregate metrics, requirements without coverage, and the full
// requirement inventory with per-requirement status.
func WriteCoverageMarkdown(w io.Writer, specs map[spec.SpecType]*spec.Specification, result *trace.BuildResult) error {
	var sb strings.Builder

	cov := result.Coverage
	sb.WriteString("# Requirement Coverage Report\n\n")
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Total Requirements:** %d\n", cov.TotalRequirements)
	fmt.Fprintf(&sb, "- **Requirements with Tests:** %d\n", cov.RequirementsWithTests)
	fmt.Fprintf(&sb, "- **Requirements without Tests:** %d\n", len(cov.UncoveredRequirementIDs))
	fmt.Fprintf(&sb, "- **Requirement Coverage Rate:** %.1f%%\n\n", cov.CoveragePercentage)
	fmt.Fprintf(&sb, "- **Requirements Verified (passing tests):** %d\n", cov.RequirementsVerified)
	fmt.Fprintf(&sb, "- **Verification Rate:** %.1f%%\n\n", cov.VerificationPercentage)

	uncovered := make(map[string]bool, len(cov.UncoveredRequirementIDs))
	for _, id := range cov.UncoveredRequirementIDs {
		uncovered[id] = true
	}

	testCounts := make(map[string]int)
	for _, row := range result.Rows {
		testCounts[row.RequirementID]++
	}

	if len(cov.UncoveredRequirementIDs) > 0 {
		sb.WriteString("## Requirements Without Test Coverage\n\n")
		sb.WriteString("| Requirement ID | Title | Specification Type |\n")
		sb.WriteString("|----------------|-------|-------------------|\n")
		forEachRequirement(specs, func(r spec.Requirement) {
			if uncovered[r.ID] {
				fmt.Fprintf(&sb, "| %s | %s | %s |\n", r.ID, r.Title, r.SpecType)
			}
		})
		sb.WriteString("\n")
	}

	sb.WriteString("## All Requirements\n\n")
	sb.WriteString("| Requirement ID | Title | Tests | Status |\n")
	sb.WriteString("|----------------|-------|-------|--------|\n")
	forEachRequirement(specs, func(r spec.Requirement) {
		status := "No Tests"
		if agg, ok := result.RequirementStatus[r.ID]; ok {
			status = string(agg)
		}
		fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n", r.ID, r.Title, testCounts[r.ID], status)
	})
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// forEachRequirement visits every requirement across all specs in
// canonical spec-type order, then document order.
func forEachRequirement(specs map[spec.SpecType]*spec.Specification, fn func(spec.Requirement)) {
	for _, t := range spec.AllSpecTypes() {
		s, ok := specs[t]
		if !ok {
			continue
		}
		for _, r := range s.Requirements {
			fn(r)
		}
	}
}
