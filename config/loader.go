package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gxptrace/gxptrace/spec"
)

// ProjectConfigFile is the name of the project-level config file,
// searched for in the current directory and its parents.
const ProjectConfigFile = "gxptrace.yaml"

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
//  1. Default config
//  2. Project config (gxptrace.yaml in current or parent directories),
//     or the explicit path when one is given
//  3. Environment variables (GXPTRACE_*)
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		path = l.findProjectConfig()
	}
	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			// LoadFromFile wraps the read error, so unwrap when testing
			// for a missing file.
			if errors.Is(err, fs.ErrNotExist) {
				l.logger.Debug("No config file found", slog.String("path", path))
			} else {
				return nil, err
			}
		} else {
			l.logger.Debug("Loaded config", slog.String("path", path))
			config = loaded
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// findProjectConfig searches for gxptrace.yaml in current and parent
// directories
func (l *Loader) findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// applyEnvOverrides applies GXPTRACE_* environment variables on top of
// the file configuration.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("GXPTRACE_SPEC_FILES"); v != "" {
		c.SpecFiles = v
	}
	if v := os.Getenv("GXPTRACE_REPORT_FILES"); v != "" {
		c.ReportFiles = v
	}
	if v := os.Getenv("GXPTRACE_QUALIFICATION_TYPE"); v != "" {
		c.QualificationType = spec.QualificationPhase(v)
	}
	if v := os.Getenv("GXPTRACE_PROJECT_NAME"); v != "" {
		c.ProjectName = v
	}
	if v := os.Getenv("GXPTRACE_SOFTWARE_VERSION"); v != "" {
		c.SoftwareVersion = v
	}
	if v := os.Getenv("GXPTRACE_STRICT_COVERAGE"); v != "" {
		if strict, err := strconv.ParseBool(v); err == nil {
			c.StrictCoverage = strict
		}
	}
}
