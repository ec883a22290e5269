package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fixconv",
	Short: "FIX-style order message encoder and explainer",
	Long: `fixconv turns order records into pipe-delimited FIX-like messages
and explains such messages tag by tag.

The wire format is a simplified, non-standard rendition of FIX 4.4
(pipe separators, placeholder checksum) meant for inspection, not for
talking to real FIX engines.

Usage:
  fixconv [command]

Examples:
  fixconv api --port 8080
  fixconv encode --symbol AAPL --price 150.5 --quantity 10 --cl-ord-id ORD12345
  fixconv explain "8=FIX.4.4|35=D|55=AAPL"
  fixconv send --server http://localhost:8080 --symbol AAPL --price 150.5 --quantity 10 --cl-ord-id ORD1`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of a table")
}
