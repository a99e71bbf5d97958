package parser

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// extractFrontmatter splits optional YAML frontmatter from a document.
// It returns the remaining body, the parsed frontmatter map (nil when
// absent or malformed), and the number of leading lines consumed so
// parse errors keep pointing at the original file lines. Malformed
// frontmatter is treated as body text rather than rejected.
func extractFrontmatter(text string) (body string, meta map[string]any, consumed int) {
	const delimiter = "---"

	if !strings.HasPrefix(text, delimiter+"\n") {
		return text, nil, 0
	}

	rest := text[len(delimiter)+1:]
	closeIdx := strings.Index(rest, "\n"+delimiter)
	if closeIdx == -1 {
		return text, nil, 0
	}

	yamlContent := rest[:closeIdx]

	bodyStart := closeIdx + 1 + len(delimiter)
	for bodyStart < len(rest) && rest[bodyStart] == '\n' {
		bodyStart++
	}
	body = rest[bodyStart:]

	if err := yaml.Unmarshal([]byte(yamlContent), &meta); err != nil {
		return text, nil, 0
	}

	consumed = strings.Count(text[:len(text)-len(body)], "\n")
	return body, meta, consumed
}
