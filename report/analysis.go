package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gxptrace/gxptrace/analyze"
)

// WriteAnalysisMarkdown writes a static coverage analysis report:
// duplicate identifiers, missing qualification markers, uncovered and
// stub-only requirements, and dangling references.
func WriteAnalysisMarkdown(w io.Writer, r *analyze.Report) error {
	var sb strings.Builder

	sb.WriteString("# GxP Requirement Coverage Report\n\n")
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Total Requirements:** %d\n", r.TotalRequirements)
	fmt.Fprintf(&sb, "- **Fully Covered:** %d\n", r.CoveredRequirements)
	fmt.Fprintf(&sb, "- **Stub Only:** %d\n", len(r.StubOnly))
	fmt.Fprintf(&sb, "- **No Tests:** %d\n\n", len(r.Uncovered))

	coveragePct := 0.0
	if r.TotalRequirements > 0 {
		coveragePct = float64(r.CoveredRequirements) / float64(r.TotalRequirements) * 100
	}
	fmt.Fprintf(&sb, "**Coverage Rate:** %.1f%%\n\n", coveragePct)

	if len(r.Duplicates) > 0 {
		sb.WriteString("## Duplicate Test Identifiers\n\n")
		sb.WriteString("| Test ID | Locations |\n")
		sb.WriteString("|---------|-----------|\n")
		for _, d := range r.Duplicates {
			fmt.Fprintf(&sb, "| %s | %s |\n", d.TestID, joinLocations(d.Locations))
		}
		sb.WriteString("\n")
	}

	if len(r.MissingAssociations) > 0 {
		sb.WriteString("## Tests Missing Qualification Marker\n\n")
		for _, m := range r.MissingAssociations {
			fmt.Fprintf(&sb, "- %s:%d %s\n", m.Location.File, m.Location.Line, m.TestID)
		}
		sb.WriteString("\n")
	}

	if len(r.Uncovered) > 0 {
		sb.WriteString("## Requirements Without Tests\n\n")
		sb.WriteString("| Requirement ID | Title | Specification |\n")
		sb.WriteString("|----------------|-------|---------------|\n")
		for _, u := range r.Uncovered {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", u.RequirementID, u.Title, u.SpecType)
		}
		sb.WriteString("\n")
	}

	if len(r.StubOnly) > 0 {
		sb.WriteString("## Requirements With Only Stub Tests\n\n")
		sb.WriteString("| Requirement ID | Title | Stub Location |\n")
		sb.WriteString("|----------------|-------|---------------|\n")
		for _, s := range r.StubOnly {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", s.RequirementID, s.Title, joinLocations(s.Locations))
		}
		sb.WriteString("\n")
	}

	if len(r.Dangling) > 0 {
		sb.WriteString("## Tests with Invalid Requirement References\n\n")
		for _, d := range r.Dangling {
			fmt.Fprintf(&sb, "- %s:%d %s references unknown %s\n",
				d.Location.File, d.Location.Line, d.TestID, d.RequirementID)
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteAnalysisJSON writes the analysis report as indented JSON.
func WriteAnalysisJSON(w io.Writer, r *analyze.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func joinLocations(locs []analyze.Location) string {
	parts := make([]string, 0, len(locs))
	for _, l := range locs {
		parts = append(parts, fmt.Sprintf("%s:%d", l.File, l.Line))
	}
	return strings.Join(parts, ", ")
}
