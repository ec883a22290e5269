package commands

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fixconv/internal/api/handlers"
	"github.com/wonny/fixconv/pkg/httputil"
	"github.com/wonny/fixconv/pkg/logger"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an order to a running fixconv API server",
	Long: `POST an order to a fixconv API server and print the message it returns.

Requests are retried with backoff on 5xx and 429 responses.

Example:
  fixconv send --server http://localhost:8080 --symbol AAPL --price 150.5 --quantity 10 --cl-ord-id ORD1
  fixconv send --symbol AAPL --price 150.5 --quantity 10 --cl-ord-id ORD1 --explain`,
	RunE: runSend,
}

var (
	sendOrder   orderFlags
	sendServer  string
	sendExplain bool
	sendTimeout time.Duration
	sendRetries int
)

func init() {
	rootCmd.AddCommand(sendCmd)

	sendOrder.bind(sendCmd)
	sendCmd.Flags().StringVar(&sendServer, "server", "http://localhost:8080", "API server base URL")
	sendCmd.Flags().BoolVar(&sendExplain, "explain", false, "use /convert-to-fix-deparsed and print the annotated fields")
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 10*time.Second, "per-request timeout")
	sendCmd.Flags().IntVar(&sendRetries, "retries", 3, "retries on 5xx/429, 0 sends once")
}

func runSend(cmd *cobra.Command, args []string) error {
	order, err := sendOrder.order()
	if err != nil {
		return err
	}

	path := "/fix"
	if sendExplain {
		path = "/convert-to-fix-deparsed"
	}
	url := strings.TrimRight(sendServer, "/") + path

	attempts := 1
	client := httputil.New(logger.Nop(), sendTimeout)
	if sendRetries > 0 {
		attempts += sendRetries
		client.WithRetry(sendRetries, 500*time.Millisecond)
	} else {
		client.DisableRetry()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout*time.Duration(2*attempts))
	defer cancel()

	resp, err := client.PostJSON(ctx, url, order)
	if err != nil {
		return fmt.Errorf("send order: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr handlers.ErrorResponse
		if err := httputil.DecodeJSON(resp, &apiErr); err != nil || apiErr.Error == "" {
			return fmt.Errorf("server returned %s", resp.Status)
		}
		return fmt.Errorf("server returned %s: %s", resp.Status, apiErr.Error)
	}

	var body handlers.ExplainedResponse
	if err := httputil.DecodeJSON(resp, &body); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if sendExplain {
		return printExplained(out, body.FixMessage, body.ExplainedFix)
	}
	if jsonOutput {
		return printJSON(out, map[string]string{"fixMessage": body.FixMessage})
	}

	_, err = fmt.Fprintln(out, body.FixMessage)
	return err
}
