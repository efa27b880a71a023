// Package opensearch is a narrow REST client for the cluster operations
// this server exposes as tools. It deliberately covers only those calls:
// it is not a general-purpose OpenSearch client.
package opensearch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"
)

// ErrRequestFailed is returned when the cluster answers with a non-2xx
// status.
var ErrRequestFailed = errors.New("opensearch request failed")

// Config holds connection settings for a cluster.
type Config struct {
	// URL is the cluster base URL, e.g. https://localhost:9200.
	URL string

	// Username and Password enable basic auth when both are non-empty.
	Username string
	Password string

	// InsecureSkipTLSVerify disables certificate verification.
	InsecureSkipTLSVerify bool

	// Timeout bounds each request. Zero means 30 seconds.
	Timeout time.Duration
}

// Client issues single REST calls against one OpenSearch cluster.
// It is safe for concurrent use.
type Client struct {
	base     *url.URL
	httpc    *http.Client
	username string
	password string
	logger   *slog.Logger

	mu      sync.Mutex
	version *semver.Version // cached cluster version
}

// New creates a client for the cluster at cfg.URL.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("opensearch: parsing base URL %q: %w", cfg.URL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("opensearch: unsupported scheme %q in %q", base.Scheme, cfg.URL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport
	if cfg.InsecureSkipTLSVerify {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		transport = t
	}

	return &Client{
		base:     base,
		httpc:    &http.Client{Timeout: timeout, Transport: transport},
		username: cfg.Username,
		password: cfg.Password,
		logger:   logger,
	}, nil
}

// joinPath builds a request path from segments, escaping each one. Empty
// segments are skipped, so optional path parts can be passed directly.
func joinPath(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		if s == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// do performs one request and returns the raw response body. Non-2xx
// statuses become ErrRequestFailed with a body snippet for context.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) ([]byte, error) {
	u := *c.base
	// joinPath produces the escaped form; URL.String() uses RawPath
	// verbatim only when it decodes to Path, so set both.
	rawPath := strings.TrimSuffix(u.EscapedPath(), "/") + path
	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		return nil, fmt.Errorf("opensearch: building request path %q: %w", path, err)
	}
	u.Path = decoded
	u.RawPath = rawPath
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("opensearch: building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opensearch: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("opensearch: reading response for %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", ErrRequestFailed, method, path, resp.StatusCode, snippet(data))
	}
	return data, nil
}

// getJSON performs a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("opensearch: decoding response for %s: %w", path, err)
	}
	return nil
}

// snippet truncates an error body for inclusion in error messages,
// backing up to a UTF-8 rune boundary so multi-byte characters are not
// split.
func snippet(data []byte) string {
	const max = 256
	s := strings.TrimSpace(string(data))
	if len(s) <= max {
		return s
	}
	i := max
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i] + "..."
}

// Info is the cluster root endpoint response.
type Info struct {
	Name        string `json:"name"`
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Distribution string `json:"distribution"`
		Number       string `json:"number"`
	} `json:"version"`
}

// Info fetches the cluster root document.
func (c *Client) Info(ctx context.Context) (Info, error) {
	var info Info
	if err := c.getJSON(ctx, "/", nil, &info); err != nil {
		return Info{}, err
	}
	return info, nil
}

// Version returns the cluster's semantic version, cached after the first
// successful fetch for the process lifetime.
func (c *Client) Version(ctx context.Context) (*semver.Version, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != nil {
		return c.version, nil
	}

	info, err := c.Info(ctx)
	if err != nil {
		return nil, err
	}
	v, err := semver.NewVersion(info.Version.Number)
	if err != nil {
		return nil, fmt.Errorf("opensearch: parsing cluster version %q: %w", info.Version.Number, err)
	}
	c.version = v
	return v, nil
}
