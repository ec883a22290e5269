package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fixconv/internal/fix"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode an order into a message",
	Long: `Encode an order given on the command line into a pipe-delimited message.

The side is always Buy. SendingTime is the current UTC time.

Example:
  fixconv encode --symbol AAPL --price 150.5 --quantity 10 --cl-ord-id ORD12345
  fixconv encode --symbol AAPL --price 150.5 --quantity 10 --cl-ord-id ORD12345 --ord-status 2 --explain`,
	RunE: runEncode,
}

var (
	encodeOrder   orderFlags
	encodeExplain bool

	// encoder is swapped in tests for a fixed clock
	encoder = fix.NewEncoder()
)

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeOrder.bind(encodeCmd)
	encodeCmd.Flags().BoolVar(&encodeExplain, "explain", false, "also print the annotated fields")
}

func runEncode(cmd *cobra.Command, args []string) error {
	order, err := encodeOrder.order()
	if err != nil {
		return err
	}

	msg := encoder.Build(order)
	out := cmd.OutOrStdout()

	if encodeExplain {
		return printExplained(out, msg.String(), fix.Annotate(msg))
	}

	if jsonOutput {
		return printJSON(out, map[string]string{"fixMessage": msg.String()})
	}

	_, err = fmt.Fprintln(out, msg.String())
	return err
}
