package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SmiLeXio/Tao/config"
	"github.com/SmiLeXio/Tao/tool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetArgs struct {
	Name string `json:"name" required:"true"`
}

func testServer() Server {
	return Server{
		Name:  "tao-test",
		Usage: "test server",
		Tools: func(cfg *config.Config) []tool.Registration {
			return []tool.Registration{
				tool.Func("greet", "Greet someone", func(ctx context.Context, args greetArgs) (string, error) {
					return "hello " + args.Name, nil
				}),
			}
		},
	}
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, k := range []string{"TAO_LOG_LEVEL", "TAO_LOG_FORMAT", "TAO_METRICS_ADDR", "TAO_TOOL_TIMEOUT", "TAO_FS_MAX_FILE_SIZE",
		"TAO_WEB_TIMEOUT", "TAO_WEB_MAX_RESPONSE_SIZE", "TAO_SEARCH_MAX_RESULTS"} {
		t.Setenv(k, "")
	}
}

func TestServerRun(t *testing.T) {
	isolateEnv(t)

	var out, logs bytes.Buffer
	app := testServer().App()
	app.Reader = strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"greet","arguments":{"name":"tao"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"greet","arguments":{"name":"tao","loud":true}}}`,
	}, "\n"))
	app.Writer = &out
	app.ErrWriter = &logs

	err := app.Run([]string{"tao-test", "--log-format", "json", "--reject-unknown-args"})
	require.NoError(t, err)

	responses := map[string]json.RawMessage{}
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var resp struct {
			ID     json.RawMessage `json:"id"`
			Result json.RawMessage `json:"result"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		responses[string(resp.ID)] = resp.Result
	}
	require.Len(t, responses, 3)

	assert.Contains(t, string(responses["1"]), `"greet"`)
	assert.Contains(t, string(responses["2"]), "hello tao")
	assert.Contains(t, string(responses["3"]), `"isError":true`)
	assert.Contains(t, string(responses["3"]), "unexpected argument")

	// logs are JSON lines on the error writer, never on the protocol stream
	first, _, _ := strings.Cut(logs.String(), "\n")
	assert.True(t, json.Valid([]byte(first)), first)
	assert.Contains(t, logs.String(), `"server":"tao-test"`)
	assert.NotContains(t, out.String(), "starting")
}

func TestServerRunRejectsBadFlags(t *testing.T) {
	isolateEnv(t)

	app := testServer().App()
	app.Reader = strings.NewReader("")
	app.Writer = io.Discard
	app.ErrWriter = io.Discard

	err := app.Run([]string{"tao-test", "--log-level", "loud"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLogger(&buf, "warn", "text")
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = NewLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestMetricsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	srv := httptest.NewServer(MetricsRouter(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}
