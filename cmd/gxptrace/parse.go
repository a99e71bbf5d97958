package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gxptrace/gxptrace/spec"
	"github.com/gxptrace/gxptrace/spec/parser"
)

func parseCmd(configPath *string) *cobra.Command {
	var (
		specDir    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse specification documents and list their requirements",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, specDir)
			if err != nil {
				return err
			}

			specs, ambiguities, err := parser.New().ParseAll(cfg.SpecFiles)
			if err != nil {
				return err
			}
			for _, f := range ambiguities {
				slog.Warn("ambiguous specification classification", "finding", f.String())
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(specs)
			}

			for _, st := range spec.AllSpecTypes() {
				s, ok := specs[st]
				if !ok {
					continue
				}
				fmt.Printf("%s Specification (%s): %s v%s\n", st, st.Phase().Label(), s.Title, s.Version)
				for _, req := range s.Requirements {
					fmt.Printf("  %s: %s\n", req.ID, req.Title)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&specDir, "spec-dir", "s", "", "directory containing specification files")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output parsed specifications as JSON")

	return cmd
}
