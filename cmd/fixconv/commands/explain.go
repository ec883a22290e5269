package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fixconv/internal/fix"
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain [message|-]",
	Short: "Explain each field of a message",
	Long: `Split a pipe-delimited message into tag/value pairs and explain every tag.

Tags missing from the field catalog are reported as "Unknown field".
A segment without '=' rejects the whole message.
Pass "-" to read the message from stdin.

Example:
  fixconv explain "8=FIX.4.4|35=D|11=ORD12345|55=AAPL|39=0"
  echo "55=AAPL|39=0" | fixconv explain - --json`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	message := args[0]
	if message == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		message = strings.TrimRight(string(data), "\r\n")
	}

	fields, err := fix.Explain(message)
	if err != nil {
		return err
	}

	return printExplained(cmd.OutOrStdout(), message, fields)
}
