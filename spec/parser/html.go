package parser

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
)

// Pre-compiled regexes; runtime compilation of these against untrusted
// documents risks ReDoS.
var (
	scriptRe         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	titleRe          = regexp.MustCompile(`(?is)<title[^>]*>.*?</title>`)
	excessiveLinesRe = regexp.MustCompile(`\n{4,}`)
)

// HTMLConverter converts exported HTML specification documents (Word or
// Confluence exports, typically) to markdown before requirement
// extraction.
type HTMLConverter struct {
	converter *md.Converter
}

// NewHTMLConverter creates a new HTML to markdown converter.
func NewHTMLConverter() *HTMLConverter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &HTMLConverter{converter: converter}
}

// Convert transforms HTML content into markdown accepted by Parse.
// The document <title> becomes the H1 heading when the body lacks one.
func (c *HTMLConverter) Convert(htmlContent []byte) ([]byte, error) {
	title := extractHTMLTitle(htmlContent)

	cleaned := scriptRe.ReplaceAllString(string(htmlContent), "")
	cleaned = styleRe.ReplaceAllString(cleaned, "")
	// The title text must not leak into the body; it only becomes the
	// H1 when the body has none.
	cleaned = titleRe.ReplaceAllString(cleaned, "")

	markdown, err := c.converter.ConvertString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("convert HTML: %w", err)
	}

	markdown = excessiveLinesRe.ReplaceAllString(markdown, "\n\n\n")
	markdown = strings.TrimSpace(markdown) + "\n"

	if title != "" && !strings.HasPrefix(markdown, "# ") {
		markdown = "# " + title + "\n\n" + markdown
	}

	return []byte(markdown), nil
}

// extractHTMLTitle extracts the content of the <title> element.
func extractHTMLTitle(content []byte) string {
	doc, err := html.Parse(strings.NewReader(string(content)))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for child := n.FirstChild; child != nil && title == ""; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return title
}
