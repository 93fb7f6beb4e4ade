package main

import (
	"fmt"
	"os"

	"github.com/jihwankim/covcrv/pkg/coverage"
	"github.com/spf13/cobra"
)

var mergeFormat string

var mergeCmd = &cobra.Command{
	Use:   "merge <file>",
	Short: "Merge a previously exported coverage file into the current database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := coverage.Format(mergeFormat)
		if format == "" {
			format = coverage.Format(cfg.Coverage.ExportFormat)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		if err := coverage.ImportAndMerge(coverage.DB(), data, format); err != nil {
			return fmt.Errorf("merge coverage: %w", err)
		}

		fmt.Println("merged", args[0])
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeFormat, "format", "", "input format, xml or yaml (defaults to the configured export format)")
}
