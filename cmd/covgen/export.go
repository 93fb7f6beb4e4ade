package main

import (
	"fmt"
	"os"

	"github.com/jihwankim/covcrv/pkg/coverage"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the coverage database",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := coverage.Format(cfg.Coverage.ExportFormat)
		out := exportOut
		if out == "" {
			out = cfg.Coverage.ExportPath
		}

		data, err := coverage.Export(coverage.DB(), format)
		if err != nil {
			return fmt.Errorf("export coverage: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Println("wrote", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (defaults to the configured export path)")
}
