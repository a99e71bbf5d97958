package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gxptrace/gxptrace/spec"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gxp_spec_files", cfg.SpecFiles)
	assert.Equal(t, "gxp_report_files", cfg.ReportFiles)
	assert.Equal(t, spec.PhaseOQ, cfg.QualificationType)
	assert.False(t, cfg.StrictCoverage)
	assert.Equal(t, []string{"csv", "json", "md"}, cfg.OutputFormats)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid default",
			modify: func(c *Config) {},
		},
		{
			name:    "missing spec_files",
			modify:  func(c *Config) { c.SpecFiles = "" },
			wantErr: true,
		},
		{
			name:    "missing report_files",
			modify:  func(c *Config) { c.ReportFiles = "" },
			wantErr: true,
		},
		{
			name:    "bad qualification type",
			modify:  func(c *Config) { c.QualificationType = "XQ" },
			wantErr: true,
		},
		{
			name:    "unknown output format",
			modify:  func(c *Config) { c.OutputFormats = []string{"csv", "pdf"} },
			wantErr: true,
		},
		{
			name:   "all phases accepted",
			modify: func(c *Config) { c.QualificationType = spec.PhasePQ },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gxptrace.yaml")
	content := `spec_files: specs
report_files: reports
qualification_type: PQ
project_name: Sample LIMS
software_version: "4.2.0"
strict_coverage: true
output_formats:
  - csv
  - md
approvals:
  tester:
    name: A. Tester
    date: "2026-01-15"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "specs", cfg.SpecFiles)
	assert.Equal(t, "reports", cfg.ReportFiles)
	assert.Equal(t, spec.PhasePQ, cfg.QualificationType)
	assert.Equal(t, "Sample LIMS", cfg.ProjectName)
	assert.Equal(t, "4.2.0", cfg.SoftwareVersion)
	assert.True(t, cfg.StrictCoverage)
	assert.Equal(t, []string{"csv", "md"}, cfg.OutputFormats)
	assert.Equal(t, "A. Tester", cfg.Approvals.Tester.Name)
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gxptrace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project_name: Partial\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Partial", cfg.ProjectName)
	assert.Equal(t, "gxp_spec_files", cfg.SpecFiles)
	assert.Equal(t, spec.PhaseOQ, cfg.QualificationType)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gxptrace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("qualification_type: XQ\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestWantsFormat(t *testing.T) {
	cfg := &Config{OutputFormats: []string{"csv", "json"}}
	assert.True(t, cfg.WantsFormat("csv"))
	assert.True(t, cfg.WantsFormat("json"))
	assert.False(t, cfg.WantsFormat("md"))
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("GXPTRACE_SPEC_FILES", "env_specs")
	t.Setenv("GXPTRACE_QUALIFICATION_TYPE", "IQ")
	t.Setenv("GXPTRACE_STRICT_COVERAGE", "true")

	cfg, err := NewLoader(nil).Load("")
	require.NoError(t, err)
	assert.Equal(t, "env_specs", cfg.SpecFiles)
	assert.Equal(t, spec.PhaseIQ, cfg.QualificationType)
	assert.True(t, cfg.StrictCoverage)
}

func TestLoader_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gxptrace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project_name: From File\n"), 0o644))

	cfg, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "From File", cfg.ProjectName)
}

func TestLoader_InvalidEnvRejected(t *testing.T) {
	t.Setenv("GXPTRACE_QUALIFICATION_TYPE", "XQ")

	_, err := NewLoader(nil).Load("")
	assert.Error(t, err)
}

func TestLoader_MissingExplicitPathFallsBack(t *testing.T) {
	cfg, err := NewLoader(nil).Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gxp_spec_files", cfg.SpecFiles)
}
