package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fixconv/internal/api"
	"github.com/wonny/fixconv/internal/api/handlers"
	"github.com/wonny/fixconv/internal/contracts"
	"github.com/wonny/fixconv/internal/fix"
	"github.com/wonny/fixconv/pkg/config"
	"github.com/wonny/fixconv/pkg/logger"
	"github.com/wonny/fixconv/pkg/metrics"
)

const expectedMessage = "8=FIX.4.4|35=D|11=ORD12345|55=AAPL|44=150.5|38=10|54=1|39=0|52=20241206-12:34:56.789|10=201"

var testClock = func() time.Time {
	return time.Date(2024, 12, 6, 12, 34, 56, 789_000_000, time.UTC)
}

// run executes the root command with fresh flag values and captures stdout
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	jsonOutput = false
	encodeOrder = orderFlags{}
	encodeExplain = false
	sendOrder = orderFlags{}
	sendServer = "http://localhost:8080"
	sendExplain = false
	sendTimeout = 5 * time.Second
	sendRetries = 0

	prev := encoder
	encoder = fix.NewEncoderWithClock(testClock)
	t.Cleanup(func() { encoder = prev })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

var orderArgs = []string{"--symbol", "AAPL", "--price", "150.50", "--quantity", "10", "--cl-ord-id", "ORD12345"}

func TestEncode(t *testing.T) {
	out, err := run(t, "", append([]string{"encode"}, orderArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, expectedMessage+"\n", out)
}

func TestEncode_JSON(t *testing.T) {
	out, err := run(t, "", append([]string{"encode", "--json"}, orderArgs...)...)
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, expectedMessage, body["fixMessage"])
}

func TestEncode_Explain(t *testing.T) {
	out, err := run(t, "", append([]string{"encode", "--explain", "--ord-status", "2"}, orderArgs...)...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 11)
	assert.True(t, strings.HasPrefix(lines[0], "TAG"))
	assert.Contains(t, out, "ClOrdID (Client Order ID")
	assert.Regexp(t, `(?m)^39\s+2\s+OrdStatus`, out)
}

func TestEncode_MissingField(t *testing.T) {
	_, err := run(t, "", "encode", "--symbol", "AAPL", "--price", "150.5")
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrMissingField)
}

func TestEncode_InvalidInput(t *testing.T) {
	_, err := run(t, "", append([]string{"encode", "--ord-status", "4"}, orderArgs...)...)
	assert.ErrorIs(t, err, contracts.ErrInvalidField)

	_, err = run(t, "", "encode", "--symbol", "AAPL", "--price", "abc", "--quantity", "1", "--cl-ord-id", "X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --price")

	for _, price := range []string{"1e10000000", "1e-10000000"} {
		out, err := run(t, "", "encode", "--symbol", "AAPL", "--price", price, "--quantity", "1", "--cl-ord-id", "X")
		assert.ErrorIs(t, err, contracts.ErrInvalidField, price)
		assert.Empty(t, out)
	}
}

func TestExplain_Table(t *testing.T) {
	out, err := run(t, "", "explain", "55=AAPL|9999=x")
	require.NoError(t, err)

	assert.Regexp(t, `(?m)^55\s+AAPL\s+Symbol`, out)
	assert.Regexp(t, `(?m)^9999\s+x\s+Unknown field$`, out)
}

func TestExplain_StdinJSON(t *testing.T) {
	out, err := run(t, expectedMessage+"\n", "explain", "-", "--json")
	require.NoError(t, err)

	var body handlers.ExplainedResponse
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, expectedMessage, body.FixMessage)
	require.Len(t, body.ExplainedFix, 10)
	assert.Equal(t, "201", body.ExplainedFix[9].Value)
}

func TestExplain_Malformed(t *testing.T) {
	_, err := run(t, "", "explain", "55=AAPL|garbage")
	assert.ErrorIs(t, err, fix.ErrMalformedField)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{API: config.APIConfig{MaxBodyBytes: 1 << 20}}
	log := logger.Nop()
	m := metrics.New()
	fixHandler := handlers.NewFixHandler(fix.NewEncoderWithClock(testClock), m, log, cfg.API.MaxBodyBytes)

	srv := httptest.NewServer(api.NewRouter(api.RouterDeps{
		Config:  cfg,
		Fix:     fixHandler,
		Stream:  handlers.NewStreamHandler(fixHandler, nil, log),
		Metrics: m,
		Logger:  log,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSend(t *testing.T) {
	srv := newTestServer(t)

	out, err := run(t, "", append([]string{"send", "--server", srv.URL + "/"}, orderArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, expectedMessage+"\n", out)
}

func TestSend_Explain(t *testing.T) {
	srv := newTestServer(t)

	out, err := run(t, "", append([]string{"send", "--server", srv.URL, "--explain"}, orderArgs...)...)
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^10\s+201\s+Checksum`, out)
}

func TestSend_ServerDown(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL
	srv.Close()

	_, err := run(t, "", append([]string{"send", "--server", url}, orderArgs...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send order")
}

// flakyServer answers 503 for the first failures calls, then a fixed message
func flakyServer(t *testing.T, failures int32) (*httptest.Server, *int32) {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"warming up"}`))
			return
		}
		_, _ = w.Write([]byte(`{"fixMessage":"55=AAPL"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestSend_NoRetries(t *testing.T) {
	srv, calls := flakyServer(t, 1)

	_, err := run(t, "", append([]string{"send", "--server", srv.URL, "--retries", "0"}, orderArgs...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warming up")
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestSend_RetriesUnavailable(t *testing.T) {
	srv, calls := flakyServer(t, 1)

	out, err := run(t, "", append([]string{"send", "--server", srv.URL, "--retries", "1"}, orderArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, "55=AAPL\n", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestRedisWindow(t *testing.T) {
	limit, window := redisWindow(50, 100)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 2*time.Second, window)

	limit, window = redisWindow(10, 0)
	assert.Equal(t, 10, limit)
	assert.Equal(t, time.Second, window)

	// burst smaller than one second of traffic widens to a full second
	limit, window = redisWindow(100, 5)
	assert.Equal(t, 100, limit)
	assert.Equal(t, time.Second, window)
}
