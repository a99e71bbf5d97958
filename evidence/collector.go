// Package evidence collects objective evidence items captured during
// qualification testing. Rendering captured payloads to files is an
// external capability behind the Renderer interface; the collector
// never encodes images itself.
package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the type of an objective evidence item.
type Kind string

const (
	// KindScreenshot is a captured application screenshot.
	KindScreenshot Kind = "screenshot"

	// KindDirectoryListing is a captured directory listing.
	KindDirectoryListing Kind = "directory_listing"

	// KindCommandOutput is captured command or API output.
	KindCommandOutput Kind = "command_output"

	// KindImage is a pre-existing image attached as evidence.
	KindImage Kind = "image"
)

// Item is one objective evidence item.
type Item struct {
	// ID is the sequential evidence identifier, e.g. "EV-0001".
	ID string `json:"id"`

	// Kind classifies the evidence.
	Kind Kind `json:"kind"`

	// Description is the caller-supplied description.
	Description string `json:"description"`

	// FilePath is the rendered evidence file, relative to the report
	// directory.
	FilePath string `json:"file_path"`

	// Timestamp is the capture time in RFC 3339 format.
	Timestamp string `json:"timestamp"`

	// TestID identifies the capturing test.
	TestID string `json:"test_id"`

	// RequirementIDs are the requirements the capturing test verifies.
	RequirementIDs []string `json:"requirement_ids"`

	// Metadata holds optional key/value annotations.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Renderer renders a captured payload to a file and returns its path.
// Implementations decide the encoding (plain text, PNG, ...); the
// engine never renders evidence itself.
type Renderer interface {
	Render(data []byte, filename string) (path string, err error)
}

// FileRenderer writes payloads verbatim into a directory. It is the
// default renderer for text evidence; image conversion stays external.
type FileRenderer struct {
	Dir string
}

// Render writes data to a file under the renderer directory.
func (r FileRenderer) Render(data []byte, filename string) (string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create evidence directory: %w", err)
	}
	path := filepath.Join(r.Dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write evidence file: %w", err)
	}
	return path, nil
}

// Collector accumulates evidence items for one test session. Appends
// are serialized under a mutex so concurrent test workers can capture
// evidence safely.
type Collector struct {
	mu       sync.Mutex
	renderer Renderer
	items    []Item
	counter  int

	currentTest string
	currentReqs []string
}

// NewCollector creates a collector that renders evidence through r.
func NewCollector(r Renderer) *Collector {
	return &Collector{renderer: r}
}

// SetCurrentTest sets the test context attached to subsequent captures.
func (c *Collector) SetCurrentTest(testID string, requirementIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTest = testID
	c.currentReqs = append([]string(nil), requirementIDs...)
}

// ClearCurrentTest clears the test context.
func (c *Collector) ClearCurrentTest() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTest = ""
	c.currentReqs = nil
}

// Capture renders a payload and records it as an evidence item.
func (c *Collector) Capture(kind Kind, data []byte, description string) (Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counter++
	id := fmt.Sprintf("EV-%04d", c.counter)
	filename := fmt.Sprintf("%s_%s_%s.txt", id, kind, shortHash())

	path, err := c.renderer.Render(data, filename)
	if err != nil {
		c.counter--
		return Item{}, fmt.Errorf("render evidence %s: %w", id, err)
	}

	item := Item{
		ID:             id,
		Kind:           kind,
		Description:    description,
		FilePath:       path,
		Timestamp:      time.Now().Format(time.RFC3339),
		TestID:         c.currentTest,
		RequirementIDs: append([]string(nil), c.currentReqs...),
	}
	c.items = append(c.items, item)
	return item, nil
}

// AddImage records an existing image file as evidence without
// re-rendering it.
func (c *Collector) AddImage(path, description string) Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counter++
	item := Item{
		ID:             fmt.Sprintf("EV-%04d", c.counter),
		Kind:           KindImage,
		Description:    description,
		FilePath:       path,
		Timestamp:      time.Now().Format(time.RFC3339),
		TestID:         c.currentTest,
		RequirementIDs: append([]string(nil), c.currentReqs...),
	}
	c.items = append(c.items, item)
	return item
}

// ItemsForTest returns the evidence captured by one test.
func (c *Collector) ItemsForTest(testID string) []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Item
	for _, item := range c.items {
		if item.TestID == testID {
			out = append(out, item)
		}
	}
	return out
}

// Items returns all collected evidence in capture order.
func (c *Collector) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Manifest is the serialized evidence inventory for one session.
type Manifest struct {
	Generated     string `json:"generated"`
	EvidenceCount int    `json:"evidence_count"`
	Items         []Item `json:"items"`
}

// WriteManifest writes the evidence manifest as JSON.
func (c *Collector) WriteManifest(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	manifest := Manifest{
		Generated:     time.Now().Format(time.RFC3339),
		EvidenceCount: len(c.items),
		Items:         c.items,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// shortHash returns a short random suffix to keep evidence filenames
// unique across reruns.
func shortHash() string {
	return uuid.New().String()[:8]
}
