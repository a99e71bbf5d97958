package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/gxptrace/gxptrace/config"
	"github.com/gxptrace/gxptrace/report"
	"github.com/gxptrace/gxptrace/scan"
	"github.com/gxptrace/gxptrace/spec"
	"github.com/gxptrace/gxptrace/spec/parser"
	"github.com/gxptrace/gxptrace/trace"
)

func matrixCmd(configPath *string) *cobra.Command {
	var (
		specDir   string
		testDir   string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Generate the static traceability matrix",
		Long: `Cross-reference test declarations against specification
requirements without executing any tests. Every test reports
NOT_EXECUTED; the matrix shows which requirements have declared
coverage and which do not.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, specDir)
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.ReportFiles = outputDir
			}

			specs, ambiguities, err := parser.New().ParseAll(cfg.SpecFiles)
			if err != nil {
				return err
			}
			for _, f := range ambiguities {
				slog.Warn("ambiguous specification classification", "finding", f.String())
			}

			tests, err := scan.DefaultRegistry.ScanDir(cmd.Context(), testDir)
			if err != nil {
				return err
			}

			decls := make([]trace.TestDeclaration, 0, len(tests))
			for _, t := range tests {
				decls = append(decls, t.Declaration)
			}

			result := trace.Build(decls, nil, specs)
			for _, le := range result.LinkErrors {
				slog.Warn("unknown requirement reference", "finding", le.String())
			}

			if err := os.MkdirAll(cfg.ReportFiles, 0o755); err != nil {
				return fmt.Errorf("create report directory: %w", err)
			}

			if err := writeMatrixFiles(cfg.ReportFiles, cfg.ProjectName, cfg.OutputFormats, result); err != nil {
				return err
			}
			if err := writeValidationFiles(cfg, specs, result); err != nil {
				return err
			}

			fmt.Printf("Traceability matrix: %d rows, %.1f%% coverage\n",
				len(result.Rows), result.Coverage.CoveragePercentage)
			return nil
		},
	}

	cmd.Flags().StringVarP(&specDir, "spec-dir", "s", "", "directory containing specification files")
	cmd.Flags().StringVarP(&testDir, "test-dir", "t", "tests", "directory containing test files")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory to write matrix files to")

	return cmd
}

// writeValidationFiles writes the validation report and the requirement
// coverage report alongside the matrix.
func writeValidationFiles(cfg *config.Config, specs map[spec.SpecType]*spec.Specification, result *trace.BuildResult) error {
	var findings []string
	for _, le := range result.LinkErrors {
		findings = append(findings, le.String())
	}

	if cfg.WantsFormat("json") {
		meta := report.ValidationMetadata{
			QualificationType: cfg.QualificationType,
			SoftwareName:      cfg.ProjectName,
			SoftwareVersion:   cfg.SoftwareVersion,
			ProjectName:       cfg.ProjectName,
			ValidationDate:    time.Now().Format("2006-01-02"),
			Tester:            signerApproval(cfg.Approvals.Tester, "Tester"),
			Reviewer:          signerApproval(cfg.Approvals.Reviewer, "Reviewer"),
			Approver:          signerApproval(cfg.Approvals.Approver, "Approver"),
		}
		path := filepath.Join(cfg.ReportFiles, "validation_report.json")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		err = report.WriteValidationJSON(f, meta, result, findings)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("Wrote %s\n", path)
	}

	if cfg.WantsFormat("md") {
		path := filepath.Join(cfg.ReportFiles, "coverage_report.md")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		err = report.WriteCoverageMarkdown(f, specs, result)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("Wrote %s\n", path)
	}

	return nil
}

func signerApproval(s config.Signer, role string) *report.Approval {
	if s.Name == "" {
		return nil
	}
	return &report.Approval{Name: s.Name, Role: role, Date: s.Date}
}

// writeMatrixFiles writes the traceability matrix in each configured
// format into dir.
func writeMatrixFiles(dir, projectName string, formats []string, result *trace.BuildResult) error {
	for _, name := range formats {
		format := report.Format(name)
		info, ok := report.GetFormatInfo(format)
		if !ok {
			slog.Warn("skipping unknown output format", "format", name)
			continue
		}

		path := filepath.Join(dir, "traceability_matrix"+info.Extension)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}

		switch format {
		case report.FormatCSV:
			err = report.WriteMatrixCSV(f, result.Rows)
		case report.FormatJSON:
			err = report.WriteMatrixJSON(f, result, projectName)
		case report.FormatMarkdown:
			err = report.WriteMatrixMarkdown(f, result, projectName)
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}
