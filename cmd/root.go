package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arclose/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "arclose",
	Short: "arclose - dispute-case closing for reconciled credit notes",
	Long: `arclose reconciles credit notes exported from the receivables ledger
against dispute cases exported from the case-management system and derives
the parameter updates needed to solve or close each case.

The engine itself is a pure batch computation; exporting the raw data and
applying the resulting closing instructions are handled by the surrounding
automation.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("arclose executed")

		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
