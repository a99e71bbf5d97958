package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gxptrace/gxptrace/spec"
)

// AmbiguityFinding reports a document that was ignored because another
// document already claimed its classification. Ambiguities are advisory:
// the lexicographically first filename wins deterministically.
type AmbiguityFinding struct {
	// SpecType is the contested classification.
	SpecType spec.SpecType

	// Selected is the filename that was parsed.
	Selected string

	// Ignored is the filename that was skipped.
	Ignored string
}

// String renders the finding for human-readable listings.
func (f AmbiguityFinding) String() string {
	return fmt.Sprintf("%s specification: using %s, ignoring %s", f.SpecType, f.Selected, f.Ignored)
}

// specDocExtensions lists the document extensions ParseAll considers.
var specDocExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
}

// ParseAll parses every specification document in a directory,
// classifying files by case-insensitive substring match on the filename.
// When multiple files match the same classification the lexicographically
// first is parsed and the rest are reported as ambiguity findings.
// Files matching no classification are skipped.
func (p *Parser) ParseAll(dir string) (map[spec.SpecType]*spec.Specification, []AmbiguityFinding, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read spec directory: %w", err)
	}

	byType := make(map[spec.SpecType][]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !specDocExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		if t, ok := Classify(name); ok {
			byType[t] = append(byType[t], name)
		}
	}

	specs := make(map[spec.SpecType]*spec.Specification, len(byType))
	var findings []AmbiguityFinding

	for _, t := range spec.AllSpecTypes() {
		names := byType[t]
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		selected := names[0]
		for _, ignored := range names[1:] {
			findings = append(findings, AmbiguityFinding{SpecType: t, Selected: selected, Ignored: ignored})
		}

		path := filepath.Join(dir, selected)
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}

		if ext := strings.ToLower(filepath.Ext(selected)); ext == ".html" || ext == ".htm" {
			content, err = NewHTMLConverter().Convert(content)
			if err != nil {
				return nil, nil, fmt.Errorf("convert %s: %w", path, err)
			}
		}

		parsed, err := p.Parse(selected, content, t)
		if err != nil {
			return nil, nil, err
		}
		specs[t] = parsed
	}

	return specs, findings, nil
}

// Classify determines the specification type from a filename.
// Matching is case-insensitive; the first matching keyword wins in the
// order design, functional, user, installation.
func Classify(filename string) (spec.SpecType, bool) {
	lower := strings.ToLower(filename)
	switch {
	case strings.Contains(lower, "design"):
		return spec.SpecTypeDesign, true
	case strings.Contains(lower, "functional"):
		return spec.SpecTypeFunctional, true
	case strings.Contains(lower, "user"):
		return spec.SpecTypeUser, true
	case strings.Contains(lower, "installation"):
		return spec.SpecTypeInstallation, true
	default:
		return "", false
	}
}
