// Package config provides configuration loading and management for
// gxptrace.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gxptrace/gxptrace/spec"
)

// Config represents the complete gxptrace configuration
type Config struct {
	// SpecFiles is the directory containing specification documents
	SpecFiles string `yaml:"spec_files"`

	// ReportFiles is the directory report artifacts are written to
	ReportFiles string `yaml:"report_files"`

	// QualificationType is the phase being executed (IQ, OQ, PQ)
	QualificationType spec.QualificationPhase `yaml:"qualification_type"`

	// ProjectName names the validation project in generated reports
	ProjectName string `yaml:"project_name"`

	// SoftwareVersion is the version of the software being validated
	SoftwareVersion string `yaml:"software_version"`

	// StrictCoverage fails the run when requirements lack coverage or
	// declarations dangle
	StrictCoverage bool `yaml:"strict_coverage"`

	// OutputFormats lists the report formats to produce
	OutputFormats []string `yaml:"output_formats"`

	// Approvals configures the signature block of validation reports
	Approvals ApprovalsConfig `yaml:"approvals"`
}

// ApprovalsConfig configures approval signatures
type ApprovalsConfig struct {
	Tester   Signer `yaml:"tester"`
	Reviewer Signer `yaml:"reviewer"`
	Approver Signer `yaml:"approver"`
}

// Signer is one approval signature line
type Signer struct {
	Name string `yaml:"name"`
	Date string `yaml:"date"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		SpecFiles:         "gxp_spec_files",
		ReportFiles:       "gxp_report_files",
		QualificationType: spec.PhaseOQ,
		ProjectName:       "GxP Validation Project",
		StrictCoverage:    false,
		OutputFormats:     []string{"csv", "json", "md"},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.SpecFiles == "" {
		return fmt.Errorf("spec_files is required")
	}
	if c.ReportFiles == "" {
		return fmt.Errorf("report_files is required")
	}
	switch c.QualificationType {
	case spec.PhaseIQ, spec.PhaseOQ, spec.PhasePQ:
	default:
		return fmt.Errorf("qualification_type must be IQ, OQ, or PQ, got %q", c.QualificationType)
	}
	for _, f := range c.OutputFormats {
		switch f {
		case "csv", "json", "md":
		default:
			return fmt.Errorf("unknown output format %q", f)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// Load loads configuration from the given path, falling back to
// defaults when path is empty or the file does not exist.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadFromFile(path)
}

// WantsFormat reports whether a report format was requested.
func (c *Config) WantsFormat(format string) bool {
	for _, f := range c.OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}
