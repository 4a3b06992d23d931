// Package remote pulls cannons from a published catalog service and merges
// the ones missing locally into the store.
package remote

import (
	"context"
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

	"github.com/rpggio/cannonplot/internal/trajectory"
	"golang.org/x/sync/errgroup"
)

// MaxConcurrentFetches bounds BatchGet.
const MaxConcurrentFetches = 5

// ErrUnexpectedStatus is returned for any non-2xx catalog response.
var ErrUnexpectedStatus = errors.New("unexpected catalog status")

// CatalogCannon is one catalog entry. The catalog uses Chinese field names.
type CatalogCannon struct {
	Filename string                     `json:"filename"`
	Author   string                     `json:"火炮作者"`
	Name     string                     `json:"火炮名称"`
	Params   string                     `json:"火炮参数"`
	Color    string                     `json:"颜色"`
	Data     trajectory.OffsetHistogram `json:"火炮数据json"`
}

// Fetched pairs a requested filename with its entry.
type Fetched struct {
	Filename string
	Cannon   CatalogCannon
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	CacheTTL   time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client reads the catalog. Successful responses are cached for the TTL.
type Client struct {
	baseURL string
	http    *http.Client
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	body    []byte
	fetched time.Time
}

// NewClient creates a catalog client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		ttl:     opts.CacheTTL,
		logger:  logger,
		now:     time.Now,
		cache:   make(map[string]cacheEntry),
	}
}

// Health reports whether the catalog answers {"status":"healthy"}. It is
// never cached.
func (c *Client) Health(ctx context.Context) (bool, error) {
	body, err := c.fetch(ctx, "/health")
	if err != nil {
		return false, err
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("decoding health: %w", err)
	}
	return resp.Status == "healthy", nil
}

// List returns every filename the catalog publishes.
func (c *Client) List(ctx context.Context) ([]string, error) {
	body, err := c.cached(ctx, "/cannons/list")
	if err != nil {
		return nil, err
	}
	var resp struct {
		Files []string `json:"files"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding catalog list: %w", err)
	}
	if resp.Files == nil {
		resp.Files = []string{}
	}
	return resp.Files, nil
}

// Get fetches a single catalog entry.
func (c *Client) Get(ctx context.Context, filename string) (*CatalogCannon, error) {
	body, err := c.cached(ctx, "/cannons/data/"+url.PathEscape(filename))
	if err != nil {
		return nil, err
	}
	var entry CatalogCannon
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, fmt.Errorf("decoding catalog entry %s: %w", filename, err)
	}
	if entry.Filename == "" {
		entry.Filename = filename
	}
	return &entry, nil
}

// BatchGet fetches filenames with at most MaxConcurrentFetches requests in
// flight. Failed entries are logged and left out; results keep input order.
func (c *Client) BatchGet(ctx context.Context, filenames []string) []Fetched {
	results := make([]*CatalogCannon, len(filenames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentFetches)
	for i, name := range filenames {
		g.Go(func() error {
			entry, err := c.Get(gctx, name)
			if err != nil {
				c.logger.Warn("catalog fetch failed", "filename", name, "error", err)
				return nil
			}
			results[i] = entry
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Fetched, 0, len(filenames))
	for i, entry := range results {
		if entry != nil {
			out = append(out, Fetched{Filename: filenames[i], Cannon: *entry})
		}
	}
	return out
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	c.mu.Lock()
	c.cache = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func (c *Client) cached(ctx context.Context, path string) ([]byte, error) {
	if c.ttl > 0 {
		c.mu.Lock()
		entry, ok := c.cache[path]
		c.mu.Unlock()
		if ok && c.now().Sub(entry.fetched) < c.ttl {
			return entry.body, nil
		}
	}

	body, err := c.fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.cache[path] = cacheEntry{body: body, fetched: c.now()}
		c.mu.Unlock()
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return body, nil
}
