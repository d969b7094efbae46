package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxWebContentChars bounds the text returned by web_content.
const maxWebContentChars = 50000

// WebToolOption configures the web content tool.
type WebToolOption func(*webToolConfig)

type webToolConfig struct {
	client          *http.Client
	allowedHosts    []string
	blockedHosts    []string
	maxResponseSize int64
	timeout         time.Duration
}

// WithHTTPClient sets a custom HTTP client. The host filters still apply to
// every redirect it follows.
func WithHTTPClient(c *http.Client) WebToolOption {
	return func(cfg *webToolConfig) {
		cfg.client = c
	}
}

// WithAllowedHosts restricts requests to specific hosts only.
func WithAllowedHosts(hosts ...string) WebToolOption {
	return func(cfg *webToolConfig) {
		cfg.allowedHosts = hosts
	}
}

// WithBlockedHosts blocks requests to specific hosts.
func WithBlockedHosts(hosts ...string) WebToolOption {
	return func(cfg *webToolConfig) {
		cfg.blockedHosts = hosts
	}
}

// WithMaxResponseSize sets the maximum page size read.
// Default is 5MB.
func WithMaxResponseSize(bytes int64) WebToolOption {
	return func(cfg *webToolConfig) {
		cfg.maxResponseSize = bytes
	}
}

// WithHTTPTimeout sets the request timeout.
// Default is 30 seconds.
func WithHTTPTimeout(d time.Duration) WebToolOption {
	return func(cfg *webToolConfig) {
		cfg.timeout = d
	}
}

func applyWebOpts(opts []WebToolOption) *webToolConfig {
	cfg := &webToolConfig{
		maxResponseSize: 5 * 1024 * 1024,
		timeout:         30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.client == nil {
		cfg.client = &http.Client{
			Timeout: cfg.timeout,
		}
	}
	cfg.client = cfg.guardRedirects(cfg.client)
	return cfg
}

// maxRedirects matches the net/http default policy.
const maxRedirects = 10

// guardRedirects returns a copy of hc that checks every redirect target
// against the host filters before following it.
func (c *webToolConfig) guardRedirects(hc *http.Client) *http.Client {
	guarded := *hc
	next := hc.CheckRedirect
	guarded.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if err := c.checkHost(req.URL); err != nil {
			return fmt.Errorf("redirect to %s: %w", req.URL.Redacted(), err)
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}
	return &guarded
}

func (c *webToolConfig) checkHost(u *url.URL) error {
	host := u.Hostname()

	for _, blocked := range c.blockedHosts {
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return fmt.Errorf("host %q is blocked", host)
		}
	}

	if len(c.allowedHosts) > 0 {
		for _, a := range c.allowedHosts {
			if host == a || strings.HasSuffix(host, "."+a) {
				return nil
			}
		}
		return fmt.Errorf("host %q is not in allowed list", host)
	}

	return nil
}

func (c *webToolConfig) fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s returned %s", u, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
}

type webContentArgs struct {
	URL  string `json:"url" desc:"Page URL" required:"true"`
	Mode string `json:"mode" desc:"'text' for visible text, 'html' for markup, 'links' for a JSON list of links" enum:"text,html,links" default:"text"`
}

// PageLink is one hyperlink extracted from a page.
type PageLink struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// NewWebContentTool creates a tool that fetches a page and returns its text,
// its markup, or its outbound links.
func NewWebContentTool(opts ...WebToolOption) Registration {
	cfg := applyWebOpts(opts)

	return Func("web_content", "Fetch a web page and return its text, HTML, or list of links",
		func(ctx context.Context, args webContentArgs) (string, error) {
			u, err := url.Parse(args.URL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				return "", fmt.Errorf("%q is not an http(s) URL", args.URL)
			}
			if err := cfg.checkHost(u); err != nil {
				return "", err
			}

			body, err := cfg.fetch(ctx, u)
			if err != nil {
				return "", fmt.Errorf("fetch failed: %w", err)
			}

			if args.Mode == "html" {
				return truncate(string(body), maxWebContentChars), nil
			}

			doc, err := html.Parse(strings.NewReader(string(body)))
			if err != nil {
				return "", fmt.Errorf("parse failed: %w", err)
			}

			if args.Mode == "links" {
				out, err := json.MarshalIndent(extractLinks(doc, u), "", "  ")
				if err != nil {
					return "", err
				}
				return string(out), nil
			}
			return truncate(extractText(doc), maxWebContentChars), nil
		})
}

// extractText returns the visible text of doc, one block per line.
func extractText(doc *html.Node) string {
	var lines []string
	var cur strings.Builder

	flush := func() {
		if line := strings.Join(strings.Fields(cur.String()), " "); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head:
				return
			}
		}
		if n.Type == html.TextNode {
			cur.WriteString(n.Data)
			cur.WriteByte(' ')
		}
		block := n.Type == html.ElementNode && isBlock(n.DataAtom)
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			flush()
		}
	}
	walk(doc)
	flush()

	return strings.Join(lines, "\n")
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Br, atom.Li, atom.Ul, atom.Ol, atom.Tr, atom.Table,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Section, atom.Article, atom.Header, atom.Footer, atom.Nav,
		atom.Blockquote, atom.Pre, atom.Title:
		return true
	}
	return false
}

// extractLinks returns anchors with visible text whose resolved target is http(s).
func extractLinks(doc *html.Node, base *url.URL) []PageLink {
	links := []PageLink{}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				ref, err := base.Parse(strings.TrimSpace(attr.Val))
				if err != nil || (ref.Scheme != "http" && ref.Scheme != "https") {
					break
				}
				if text := strings.Join(strings.Fields(nodeText(n)), " "); text != "" {
					links = append(links, PageLink{Text: text, Href: ref.String()})
				}
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
		b.WriteByte(' ')
	}
	return b.String()
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
