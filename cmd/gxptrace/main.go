// Package main provides the gxptrace binary entry point.
// gxptrace parses GxP specification documents, cross-references test
// declarations against them, and reports requirement coverage for
// IQ/OQ/PQ qualification.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gxptrace/gxptrace/config"
)

const (
	// Version is the binary version, overridable at build time.
	Version = "0.1.0"

	appName = "gxptrace"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "GxP requirement traceability and coverage reporting",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to gxptrace.yaml")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", appName, Version)
		},
	})

	cmd.AddCommand(coverageCmd(&configPath))
	cmd.AddCommand(parseCmd(&configPath))
	cmd.AddCommand(matrixCmd(&configPath))

	return cmd
}

// loadConfig loads the layered configuration and applies the spec-dir
// override when the flag was given.
func loadConfig(configPath, specDir string) (*config.Config, error) {
	cfg, err := config.NewLoader(slog.Default()).Load(configPath)
	if err != nil {
		return nil, err
	}
	if specDir != "" {
		cfg.SpecFiles = specDir
	}
	return cfg, nil
}
