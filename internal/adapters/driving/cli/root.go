// Package cli wires the cobra command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hoalabs/bylaws-assistant/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose    bool
	flagConfigFile string
)

var rootCmd = &cobra.Command{
	Use:   "bylaws-assistant",
	Short: "HOA bylaws assistant",
	Long: `An assistant for homeowners' association bylaws.

Upload bylaws PDFs, ask questions answered from the indexed text with
citations, and record modification requests.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "path to TOML config file")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
