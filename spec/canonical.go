package spec

import (
	"sort"
	"strconv"
	"strings"
)

// Canonical renders a specification back into the canonical document
// grammar accepted by the parser. Parsing the rendered text with the
// same spec type reproduces an equal requirement set.
//
// Metadata keys are emitted in sorted order since insertion order is
// not significant.
func (s *Specification) Canonical() string {
	var sb strings.Builder

	if s.Title != "" {
		sb.WriteString("# ")
		sb.WriteString(s.Title)
		sb.WriteString("\n\n")
	}
	if s.Version != "" {
		sb.WriteString("## Version: ")
		sb.WriteString(s.Version)
		sb.WriteString("\n\n")
	}

	for _, r := range s.Requirements {
		sb.WriteString("### ")
		sb.WriteString(r.ID)
		sb.WriteString(": ")
		sb.WriteString(r.Title)
		sb.WriteString("\n\n")

		if r.Description != "" {
			sb.WriteString(r.Description)
			sb.WriteString("\n\n")
		}

		for i, step := range r.Steps {
			sb.WriteString(strconv.Itoa(i + 1))
			sb.WriteString(". ")
			sb.WriteString(step)
			sb.WriteString("\n")
		}
		if len(r.Steps) > 0 {
			sb.WriteString("\n")
		}

		if r.ExpectedResult != "" {
			sb.WriteString("Expected Result: ")
			sb.WriteString(r.ExpectedResult)
			sb.WriteString("\n\n")
		}

		if len(r.Metadata) > 0 {
			sb.WriteString("#### Metadata\n\n")
			keys := make([]string, 0, len(r.Metadata))
			for k := range r.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				sb.WriteString(k)
				sb.WriteString(": ")
				sb.WriteString(r.Metadata[k])
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
