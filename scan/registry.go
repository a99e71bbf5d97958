// Package scan discovers test declarations by static analysis of test
// source files. Scanners extract requirement references, qualification
// markers, and stub placeholders without executing anything.
package scan

import (
	"context"
	"sync"

	"github.com/gxptrace/gxptrace/analyze"
)

// FileScanner extracts test information from a single source file.
type FileScanner interface {
	// ScanFile analyzes one test file.
	ScanFile(ctx context.Context, path string) ([]analyze.TestInfo, error)

	// Globs returns the file patterns this scanner handles, relative to
	// the test root.
	Globs() []string

	// Language returns the scanner's language identifier.
	Language() string
}

// Registry manages file scanners.
type Registry struct {
	mu       sync.RWMutex
	scanners map[string]FileScanner
}

// DefaultRegistry is the global scanner registry with default scanners.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a registry with the default Go and Python
// scanners registered.
func NewRegistry() *Registry {
	r := &Registry{scanners: make(map[string]FileScanner)}
	r.Register(NewGoScanner())
	r.Register(NewPythonScanner())
	return r
}

// Register adds a scanner to the registry.
func (r *Registry) Register(s FileScanner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scanners[s.Language()] = s
}

// Get returns the scanner for a language.
func (r *Registry) Get(language string) (FileScanner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scanners[language]
	return s, ok
}

// Scanners returns all registered scanners.
func (r *Registry) Scanners() []FileScanner {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FileScanner, 0, len(r.scanners))
	for _, s := range r.scanners {
		out = append(out, s)
	}
	return out
}
