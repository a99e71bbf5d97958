package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gxptrace/gxptrace/analyze"
	"github.com/gxptrace/gxptrace/report"
	"github.com/gxptrace/gxptrace/scan"
	"github.com/gxptrace/gxptrace/spec/parser"
	"github.com/gxptrace/gxptrace/watch"
)

func coverageCmd(configPath *string) *cobra.Command {
	var (
		specDir    string
		testDir    string
		outputPath string
		jsonOutput bool
		strict     bool
		watchMode  bool
	)

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Check requirement coverage and test identifier uniqueness",
		Long: `Analyze specification and test files to report on requirement
coverage: duplicate test identifiers, tests missing the qualification
marker, requirements without tests or with only stub tests, and tests
referencing requirements no specification defines.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, specDir)
			if err != nil {
				return err
			}
			if strict {
				cfg.StrictCoverage = true
			}

			run := func() (*analyze.Report, error) {
				return runAnalysis(cmd.Context(), cfg.SpecFiles, testDir, outputPath, jsonOutput)
			}

			rep, err := run()
			if err != nil {
				return err
			}

			if watchMode {
				return watchLoop(cmd.Context(), cfg.SpecFiles, testDir, func() {
					if _, err := run(); err != nil {
						slog.Error("analysis failed", "error", err)
					}
				})
			}

			if rep.Gate(cfg.StrictCoverage) == analyze.StatusFailed {
				return fmt.Errorf("strict coverage failure: %d uncovered requirement(s), %d dangling reference(s)",
					len(rep.Uncovered), len(rep.Dangling))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&specDir, "spec-dir", "s", "", "directory containing specification files")
	cmd.Flags().StringVarP(&testDir, "test-dir", "t", "tests", "directory containing test files")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write markdown report to file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
	cmd.Flags().BoolVarP(&strict, "strict", "S", false, "fail when requirements lack coverage")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "re-run analysis when files change")

	return cmd
}

// runAnalysis parses specs, scans tests, analyzes coverage, and writes
// the requested outputs.
func runAnalysis(ctx context.Context, specDir, testDir, outputPath string, jsonOutput bool) (*analyze.Report, error) {
	specs, ambiguities, err := parser.New().ParseAll(specDir)
	if err != nil {
		return nil, err
	}
	for _, f := range ambiguities {
		slog.Warn("ambiguous specification classification", "finding", f.String())
	}

	tests, err := scan.DefaultRegistry.ScanDir(ctx, testDir)
	if err != nil {
		return nil, err
	}
	slog.Debug("scan complete", "specs", len(specs), "tests", len(tests))

	rep := analyze.Analyze(specs, tests)

	if jsonOutput {
		if err := report.WriteAnalysisJSON(os.Stdout, rep); err != nil {
			return nil, err
		}
	} else {
		printSummary(rep)
	}

	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		if err := report.WriteAnalysisMarkdown(f, rep); err != nil {
			return nil, err
		}
		fmt.Printf("Report written to: %s\n", outputPath)
	}

	return rep, nil
}

// printSummary prints the human-readable coverage summary.
func printSummary(r *analyze.Report) {
	fmt.Println()
	fmt.Println("GxP Requirement Coverage")
	fmt.Println()
	fmt.Printf("  Total Requirements:  %d\n", r.TotalRequirements)
	fmt.Printf("  Fully Covered:       %d\n", r.CoveredRequirements)
	fmt.Printf("  Stub Only:           %d\n", len(r.StubOnly))
	fmt.Printf("  No Tests:            %d\n", len(r.Uncovered))

	if len(r.Duplicates) > 0 {
		fmt.Println("\nDuplicate Test Identifiers:")
		for _, d := range r.Duplicates {
			fmt.Printf("  %s:\n", d.TestID)
			for _, loc := range d.Locations {
				fmt.Printf("    - %s:%d\n", loc.File, loc.Line)
			}
		}
	}
	if len(r.MissingAssociations) > 0 {
		fmt.Println("\nTests Missing Qualification Marker:")
		for _, m := range r.MissingAssociations {
			fmt.Printf("  - %s:%d %s\n", m.Location.File, m.Location.Line, m.TestID)
		}
	}
	if len(r.Uncovered) > 0 {
		fmt.Println("\nRequirements Without Tests:")
		for _, u := range r.Uncovered {
			fmt.Printf("  - %s: %s\n", u.RequirementID, u.Title)
		}
	}
	if len(r.StubOnly) > 0 {
		fmt.Println("\nRequirements With Only Stub Tests:")
		for _, s := range r.StubOnly {
			fmt.Printf("  - %s: %s\n", s.RequirementID, s.Title)
		}
	}
	if len(r.Dangling) > 0 {
		fmt.Println("\nTests with Invalid Requirement References:")
		for _, d := range r.Dangling {
			fmt.Printf("  - %s:%d %s (invalid: %s)\n", d.Location.File, d.Location.Line, d.TestID, d.RequirementID)
		}
	}

	fmt.Println()
	if !r.HasFindings() {
		fmt.Println("All requirements have working tests!")
	}
}

// watchLoop blocks re-running fn on every debounced change batch until
// the context is cancelled or an interrupt arrives.
func watchLoop(ctx context.Context, specDir, testDir string, fn func()) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	w, err := watch.New(watch.DefaultConfig(), slog.Default(), specDir, testDir)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Println("Watching for changes (Ctrl-C to stop)...")
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Events():
			if !ok {
				return nil
			}
			fn()
		}
	}
}
