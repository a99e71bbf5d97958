package scan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gxptrace/gxptrace/analyze"
)

// skipDirs are directory names never scanned for tests.
var skipDirs = map[string]bool{
	".git":          true,
	"node_modules":  true,
	"vendor":        true,
	"venv":          true,
	".venv":         true,
	"__pycache__":   true,
	".pytest_cache": true,
	"dist":          true,
	"build":         true,
	".tox":          true,
	"site-packages": true,
	".mypy_cache":   true,
}

// ScanDir runs every registered scanner over a test directory tree and
// returns the discovered tests sorted by file then line, for
// deterministic downstream analysis.
func (r *Registry) ScanDir(ctx context.Context, root string) ([]analyze.TestInfo, error) {
	var all []analyze.TestInfo

	for _, scanner := range r.Scanners() {
		for _, glob := range scanner.Globs() {
			pattern := filepath.Join(root, glob)
			matches, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
			}
			for _, path := range matches {
				if shouldSkipPath(path) {
					continue
				}
				tests, err := scanner.ScanFile(ctx, path)
				if err != nil {
					// A single unparsable file must not hide the rest of
					// the suite.
					slog.Warn("skipping unparsable test file",
						"path", path,
						"language", scanner.Language(),
						"error", err)
					continue
				}
				all = append(all, tests...)
			}
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Location.File != all[j].Location.File {
			return all[i].Location.File < all[j].Location.File
		}
		return all[i].Location.Line < all[j].Location.Line
	})
	return all, nil
}

func shouldSkipPath(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if skipDirs[part] || strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
