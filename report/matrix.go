package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gxptrace/gxptrace/trace"
)

// matrixHeader is the column layout of the traceability matrix,
// byte-compatible with the CSV consumed by existing review tooling.
var matrixHeader = []string{
	"Test Case ID",
	"Test Case Title",
	"Requirement ID",
	"Requirement Title",
	"Specification Type",
	"User Requirement ID",
	"Status",
}

// WriteMatrixCSV writes the traceability matrix as CSV.
func WriteMatrixCSV(w io.Writer, rows []trace.TraceabilityRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(matrixHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.TestID,
			row.TestTitle,
			row.RequirementID,
			row.RequirementTitle,
			string(row.SpecType),
			row.RelatedUserRequirementID,
			string(row.Status),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// matrixDocument is the JSON layout of the traceability matrix.
type matrixDocument struct {
	Metadata matrixMetadata          `json:"metadata"`
	Coverage trace.CoverageReport    `json:"coverage"`
	Summary  trace.TestSummary       `json:"summary"`
	Matrix   []trace.TraceabilityRow `json:"matrix"`
}

type matrixMetadata struct {
	Title     string `json:"title"`
	Project   string `json:"project"`
	Generated string `json:"generated_date"`
	Version   string `json:"version"`
}

// WriteMatrixJSON writes the traceability matrix with its aggregate
// metrics as indented JSON.
func WriteMatrixJSON(w io.Writer, result *trace.BuildResult, projectName string) error {
	doc := matrixDocument{
		Metadata: matrixMetadata{
			Title:     "Traceability Matrix",
			Project:   projectName,
			Generated: time.Now().Format(time.RFC3339),
			Version:   "1.0",
		},
		Coverage: result.Coverage,
		Summary:  result.Summary,
		Matrix:   result.Rows,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteMatrixMarkdown writes the traceability matrix as a markdown
// table with a coverage summary.
func WriteMatrixMarkdown(w io.Writer, result *trace.BuildResult, projectName string) error {
	var sb strings.Builder

	sb.WriteString("# Traceability Matrix\n\n")
	fmt.Fprintf(&sb, "**Project:** %s\n", projectName)
	fmt.Fprintf(&sb, "**Generated:** %s\n", time.Now().Format("2006-01-02"))
	sb.WriteString("**Version:** 1.0\n\n")
	sb.WriteString("## Traceability Data\n\n")
	sb.WriteString("| Test Case ID | Test Case Title | Requirement ID | Requirement Title | Specification Type | User Requirement ID | Status |\n")
	sb.WriteString("|--------------|----------------|----------------|-------------------|-------------------|---------------------|--------|\n")

	for _, row := range result.Rows {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | %s |\n",
			row.TestID, row.TestTitle, row.RequirementID, row.RequirementTitle,
			row.SpecType, row.RelatedUserRequirementID, row.Status)
	}

	cov := result.Coverage
	sb.WriteString("\n## Coverage Summary\n\n")
	fmt.Fprintf(&sb, "- **Total Requirements:** %d\n", cov.TotalRequirements)
	fmt.Fprintf(&sb, "- **Requirements with Tests:** %d\n", cov.RequirementsWithTests)
	fmt.Fprintf(&sb, "- **Coverage Percentage:** %.1f%%\n", cov.CoveragePercentage)
	fmt.Fprintf(&sb, "- **Requirements Verified:** %d\n", cov.RequirementsVerified)
	fmt.Fprintf(&sb, "- **Verification Percentage:** %.1f%%\n", cov.VerificationPercentage)
	if len(cov.UncoveredRequirementIDs) > 0 {
		fmt.Fprintf(&sb, "- **Uncovered Requirements:** %s\n", strings.Join(cov.UncoveredRequirementIDs, ", "))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
