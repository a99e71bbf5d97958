// Package parser turns structured specification documents into typed
// requirement collections.
//
// The grammar is line oriented. A requirement heading of the form
// "### FS-001: Title" always starts a new requirement, regardless of any
// open section. Within a requirement, numbered lines become verification
// steps, an "Expected Result:" line sets the expected outcome, and a
// "#### Metadata" heading opens a key/value section.
package parser

import (
	"regexp"
	"strings"

	"github.com/gxptrace/gxptrace/spec"
)

// Regex patterns for the specification grammar.
var (
	requirementHeadingPattern = regexp.MustCompile(`^#{2,3}\s+([A-Z][A-Z0-9]*-\d+)\s*:\s*(.+)$`)
	metadataHeadingPattern    = regexp.MustCompile(`(?i)^#{3,4}\s+Metadata\s*$`)
	descriptionHeadingPattern = regexp.MustCompile(`(?i)^#{3,4}\s+Description\s*$`)
	specTitlePattern          = regexp.MustCompile(`^#\s+(.+)$`)
	specVersionPattern        = regexp.MustCompile(`(?i)^##\s+Version\s*:\s*(.+)$`)
	stepPattern               = regexp.MustCompile(`^\d+\.\s+(.+)$`)
	expectedResultPattern     = regexp.MustCompile(`(?i)^Expected Result\s*:\s*(.+)$`)
	metadataEntryPattern      = regexp.MustCompile(`^([^:]+?)\s*:\s*(.+)$`)
	bareHeadingPattern        = regexp.MustCompile(`^###\s`)
)

// Defaults applied when a document carries no title or version.
const (
	DefaultTitle   = "Untitled Specification"
	DefaultVersion = "1.0"
)

// parseState tracks the sub-state of the grammar state machine.
type parseState int

const (
	stateSeeking parseState = iota
	stateDescription
	stateMetadata
)

// Parser parses specification documents into spec.Specification values.
type Parser struct{}

// New creates a new specification parser.
func New() *Parser {
	return &Parser{}
}

// Parse parses a specification document. The filename is used only for
// error context. Every requirement ID must carry the prefix mandated by
// the expected spec type, and IDs must be unique within the document.
// A document with zero requirements is valid.
func (p *Parser) Parse(filename string, content []byte, expected spec.SpecType) (*spec.Specification, error) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")

	result := &spec.Specification{
		SpecType:     expected,
		Requirements: []spec.Requirement{},
	}

	// Optional YAML frontmatter may carry title and version.
	body, meta, offset := extractFrontmatter(text)
	if v, ok := meta["title"].(string); ok {
		result.Title = v
	}
	if v, ok := meta["version"].(string); ok {
		result.Version = v
	}

	var (
		cur       *spec.Requirement
		descLines []string
		state     = stateSeeking
		seen      = map[string]int{}
	)

	flush := func() {
		if cur == nil {
			return
		}
		cur.Description = strings.Join(descLines, "\n")
		result.Requirements = append(result.Requirements, *cur)
		cur = nil
		descLines = nil
	}

	for i, raw := range strings.Split(body, "\n") {
		lineNo := i + 1 + offset
		line := strings.TrimSpace(raw)

		// Requirement boundaries take priority over any open section.
		if m := requirementHeadingPattern.FindStringSubmatch(line); m != nil {
			id, title := m[1], m[2]
			if !spec.ValidRequirementID(id) {
				return nil, parseErrorf(filename, lineNo,
					"malformed requirement ID %q: want %s-NNN", id, expected.Prefix())
			}
			if got, want := spec.RequirementIDPrefix(id), expected.Prefix(); got != want {
				return nil, parseErrorf(filename, lineNo,
					"requirement %s: prefix %q does not match %s specification (want %q)",
					id, got, expected, want)
			}
			if first, dup := seen[id]; dup {
				return nil, parseErrorf(filename, lineNo,
					"duplicate requirement ID %s (first declared on line %d)", id, first)
			}
			seen[id] = lineNo

			flush()
			cur = &spec.Requirement{ID: id, Title: title, SpecType: expected}
			state = stateDescription
			continue
		}

		if metadataHeadingPattern.MatchString(line) {
			if cur != nil {
				state = stateMetadata
			}
			continue
		}
		if descriptionHeadingPattern.MatchString(line) {
			if cur != nil {
				state = stateDescription
			}
			continue
		}

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if m := specVersionPattern.FindStringSubmatch(line); m != nil {
				if result.Version == "" {
					result.Version = strings.TrimSpace(m[1])
				}
				continue
			}
			// An H3 heading without a valid requirement ID is a grammar
			// violation, not prose.
			if bareHeadingPattern.MatchString(line) {
				return nil, parseErrorf(filename, lineNo, "malformed requirement heading %q", line)
			}
			if m := specTitlePattern.FindStringSubmatch(line); m != nil && !strings.HasPrefix(line, "##") {
				if result.Title == "" {
					result.Title = strings.TrimSpace(m[1])
				}
			}
			continue
		}

		if cur == nil {
			// Preamble prose before the first requirement.
			continue
		}

		switch state {
		case stateDescription:
			if m := stepPattern.FindStringSubmatch(line); m != nil {
				cur.Steps = append(cur.Steps, m[1])
				continue
			}
			if m := expectedResultPattern.FindStringSubmatch(line); m != nil {
				// First occurrence wins.
				if cur.ExpectedResult == "" {
					cur.ExpectedResult = m[1]
				}
				continue
			}
			descLines = append(descLines, line)

		case stateMetadata:
			if m := metadataEntryPattern.FindStringSubmatch(line); m != nil {
				if cur.Metadata == nil {
					cur.Metadata = make(map[string]string)
				}
				// Last write wins on duplicate keys.
				cur.Metadata[strings.TrimSpace(m[1])] = m[2]
			}
		}
	}
	flush()

	if result.Title == "" {
		result.Title = DefaultTitle
	}
	if result.Version == "" {
		result.Version = DefaultVersion
	}
	return result, nil
}
