package tool

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// countingTransport counts round trips made through a custom client.
type countingTransport struct {
	n int
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.n++
	return http.DefaultTransport.RoundTrip(req)
}

func searchDispatcher(t *testing.T, opts ...SearchToolOption) *Dispatcher {
	t.Helper()
	registry := NewRegistry().Add(SearchTools(opts...)...)
	registry.Seal()
	return NewDispatcher(registry)
}

func TestSearchInternet(t *testing.T) {
	t.Run("missing key names the variable", func(t *testing.T) {
		d := searchDispatcher(t)
		res := call(t, d, "search_internet", map[string]any{"query": "golang"})

		assert.True(t, res.IsError)
		assert.Contains(t, res.Error, "TAVILY_API_KEY")
	})

	t.Run("renders top results", func(t *testing.T) {
		var body []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))
			body, _ = io.ReadAll(r.Body)

			var results []string
			for i := 1; i <= 7; i++ {
				results = append(results, fmt.Sprintf(`{"title":"T%d","url":"https://e.com/%d","content":"C%d"}`, i, i, i))
			}
			fmt.Fprintf(w, `{"query":"golang","results":[%s]}`, strings.Join(results, ","))
		}))
		defer srv.Close()
		d := searchDispatcher(t, WithTavilyAPIKey("tvly-test"), WithTavilyBaseURL(srv.URL+"/"))

		res := call(t, d, "search_internet", map[string]any{"query": "golang", "search_depth": "advanced"})

		require.False(t, res.IsError, res.Error)
		blocks := strings.Split(res.Payload.Text(), "\n---\n")
		require.Len(t, blocks, 5)
		assert.Equal(t, "Title: T1\nURL: https://e.com/1\nSummary: C1\n", blocks[0])
		assert.Equal(t, "golang", gjson.GetBytes(body, "query").String())
		assert.Equal(t, "advanced", gjson.GetBytes(body, "search_depth").String())
		assert.Equal(t, int64(5), gjson.GetBytes(body, "max_results").Int())
	})

	t.Run("no results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"results":[]}`)
		}))
		defer srv.Close()
		d := searchDispatcher(t, WithTavilyAPIKey("k"), WithTavilyBaseURL(srv.URL))

		res := call(t, d, "search_internet", map[string]any{"query": "zzz"})

		require.False(t, res.IsError, res.Error)
		assert.Equal(t, "no results found", res.Payload.Text())
	})

	t.Run("api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail":{"error":"Unauthorized: missing or invalid API key."}}`)
		}))
		defer srv.Close()
		d := searchDispatcher(t, WithTavilyAPIKey("bad"), WithTavilyBaseURL(srv.URL))

		res := call(t, d, "search_internet", map[string]any{"query": "golang"})

		assert.True(t, res.IsError)
		assert.Contains(t, res.Error, "401")
		assert.Contains(t, res.Error, "invalid API key")
	})

	t.Run("max results and custom client", func(t *testing.T) {
		var body []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ = io.ReadAll(r.Body)
			fmt.Fprint(w, `{"results":[{"title":"A","url":"u1","content":"c"},{"title":"B","url":"u2","content":"c"},{"title":"C","url":"u3","content":"c"}]}`)
		}))
		defer srv.Close()
		rt := &countingTransport{}

		d := searchDispatcher(t, WithTavilyAPIKey("k"), WithTavilyBaseURL(srv.URL),
			WithSearchHTTPClient(&http.Client{Transport: rt}), WithMaxResults(2))
		res := call(t, d, "search_internet", map[string]any{"query": "golang"})

		require.False(t, res.IsError, res.Error)
		assert.Len(t, strings.Split(res.Payload.Text(), "\n---\n"), 2)
		assert.Equal(t, int64(2), gjson.GetBytes(body, "max_results").Int())
		assert.Equal(t, 1, rt.n)
	})

	t.Run("non-positive max results keep the default", func(t *testing.T) {
		for _, n := range []int{0, -3} {
			cfg := applySearchOpts([]SearchToolOption{WithMaxResults(n)})
			assert.Equal(t, searchResultLimit, cfg.maxResults)
		}
	})

	t.Run("rejects unknown depth", func(t *testing.T) {
		d := searchDispatcher(t, WithTavilyAPIKey("k"))
		res := call(t, d, "search_internet", map[string]any{"query": "golang", "search_depth": "smart"})
		assert.True(t, res.IsError)
	})
}

