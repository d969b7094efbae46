package tool

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultTavilyBaseURL is the Tavily REST endpoint.
const DefaultTavilyBaseURL = "https://api.tavily.com"

// searchResultLimit is the number of results rendered per query.
const searchResultLimit = 5

// SearchToolOption configures the internet search tool.
type SearchToolOption func(*searchToolConfig)

type searchToolConfig struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxResults int
}

// WithTavilyAPIKey sets the Tavily API key. Without one every search fails.
func WithTavilyAPIKey(key string) SearchToolOption {
	return func(c *searchToolConfig) {
		c.apiKey = key
	}
}

// WithTavilyBaseURL overrides the Tavily endpoint.
func WithTavilyBaseURL(u string) SearchToolOption {
	return func(c *searchToolConfig) {
		c.baseURL = u
	}
}

// WithSearchHTTPClient sets the HTTP client used for search requests.
func WithSearchHTTPClient(hc *http.Client) SearchToolOption {
	return func(c *searchToolConfig) {
		c.httpClient = hc
	}
}

// WithMaxResults limits the number of rendered results.
// Default is 5. Values below 1 keep the default.
func WithMaxResults(n int) SearchToolOption {
	return func(c *searchToolConfig) {
		if n >= 1 {
			c.maxResults = n
		}
	}
}

func applySearchOpts(opts []SearchToolOption) *searchToolConfig {
	cfg := &searchToolConfig{
		baseURL:    DefaultTavilyBaseURL,
		maxResults: searchResultLimit,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return cfg
}

type searchInternetArgs struct {
	Query       string `json:"query" desc:"Search query" required:"true"`
	SearchDepth string `json:"search_depth" desc:"'basic' is fast, 'advanced' reads more sources" enum:"basic,advanced" default:"basic"`
}

// NewSearchInternetTool creates a tool that searches the web through Tavily.
func NewSearchInternetTool(opts ...SearchToolOption) Registration {
	cfg := applySearchOpts(opts)

	return Func("search_internet", "Search the internet for up-to-date information using Tavily",
		func(ctx context.Context, args searchInternetArgs) (string, error) {
			if cfg.apiKey == "" {
				return "", fmt.Errorf("TAVILY_API_KEY is not set")
			}

			body, err := cfg.search(ctx, args)
			if err != nil {
				return "", fmt.Errorf("search failed: %w", err)
			}

			results := gjson.GetBytes(body, "results").Array()
			if len(results) == 0 {
				return "no results found", nil
			}
			if len(results) > cfg.maxResults {
				results = results[:cfg.maxResults]
			}

			blocks := make([]string, 0, len(results))
			for _, r := range results {
				blocks = append(blocks, fmt.Sprintf("Title: %s\nURL: %s\nSummary: %s\n",
					r.Get("title").String(), r.Get("url").String(), r.Get("content").String()))
			}
			return strings.Join(blocks, "\n---\n"), nil
		})
}

func (c *searchToolConfig) search(ctx context.Context, args searchInternetArgs) ([]byte, error) {
	payload, err := sjson.SetBytes(nil, "query", args.Query)
	if err != nil {
		return nil, err
	}
	if payload, err = sjson.SetBytes(payload, "search_depth", args.SearchDepth); err != nil {
		return nil, err
	}
	if payload, err = sjson.SetBytes(payload, "max_results", c.maxResults); err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		msg := gjson.GetBytes(body, "detail.error").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, fmt.Errorf("tavily returned %s: %s", resp.Status, msg)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("tavily returned invalid JSON")
	}
	return body, nil
}
