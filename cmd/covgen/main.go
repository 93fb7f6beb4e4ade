// Command covgen drives a coverage-guided constrained-random generation
// loop: sample random variables, feed the chosen values to a coverage
// model, log every round, and report a reproduction seed on failure.
package main

import (
	"fmt"
	"os"

	"github.com/jihwankim/covcrv/internal/obslog"
	"github.com/jihwankim/covcrv/pkg/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "covgen",
	Short: "Coverage-guided constrained-random generation",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = loaded

		level := obslog.LevelInfo
		if verbose {
			level = obslog.LevelDebug
		}
		obslog.InitGlobal(obslog.Config{Level: level, Format: obslog.FormatText, Output: os.Stderr})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to covgen.yaml (defaults to ./covgen.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(serveCmd)
}
