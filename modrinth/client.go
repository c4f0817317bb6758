package modrinth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"modpack-builder/config"

	"golang.org/x/sync/semaphore"
)

const (
	modrinthAPIURL  = "https://api.modrinth.com/v2"
	maxErrorBody    = 4 << 10
	defaultParallel = 8
)

var (
	// ErrNotFound is returned by Search when the registry has no hit for a query.
	ErrNotFound = errors.New("no matching project")
	// ErrUnexpectedStatus wraps every non-2xx registry or file host response.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// Client handles communication with the Modrinth API.
type Client struct {
	BaseURL         string
	UserAgent       string
	HTTPClient      *http.Client
	SearchTimeout   time.Duration
	VersionsTimeout time.Duration
	DownloadTimeout time.Duration

	sem *semaphore.Weighted
}

// NewClient creates a new Modrinth API client using the provided configuration.
func NewClient(cfg config.Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("USERAGENT is not configured")
	}
	baseURL := cfg.ModrinthAPIURL
	if baseURL == "" {
		baseURL = modrinthAPIURL
	}
	parallel := cfg.Concurrency
	if parallel <= 0 {
		parallel = defaultParallel
	}

	return &Client{
		BaseURL:         strings.TrimRight(baseURL, "/"),
		UserAgent:       cfg.UserAgent,
		HTTPClient:      &http.Client{},
		SearchTimeout:   cfg.SearchTimeout,
		VersionsTimeout: cfg.VersionsTimeout,
		DownloadTimeout: cfg.DownloadTimeout,
		sem:             semaphore.NewWeighted(int64(parallel)),
	}, nil
}

func (c *Client) acquire(ctx context.Context) (func(), error) {
	if c.sem == nil {
		return func() {}, nil
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { c.sem.Release(1) }, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// makeRequest performs a GET against fullURL. JSON responses are decoded into
// target; for binary responses the body is copied into sink.
func (c *Client) makeRequest(ctx context.Context, fullURL string, queryParams url.Values, target any, sink io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if queryParams != nil {
		req.URL.RawQuery = queryParams.Encode()
	}

	req.Header.Set("User-Agent", c.UserAgent)
	if sink == nil {
		req.Header.Set("Accept", "application/json")
	} else {
		req.Header.Set("Accept", "application/octet-stream")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d, body: %s", ErrUnexpectedStatus, resp.StatusCode, string(bodyBytes))
	}

	if sink != nil {
		if _, err := io.Copy(sink, resp.Body); err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		return nil
	}
	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode json response: %w", err)
		}
	}
	return nil
}

// Search returns the most downloaded project matching name.
func (c *Client) Search(ctx context.Context, name string) (*Project, error) {
	release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := withTimeout(ctx, c.SearchTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("query", name)
	params.Set("limit", "1")
	params.Set("index", "downloads")

	var resp searchResponse
	if err := c.makeRequest(ctx, c.BaseURL+"/search", params, &resp, nil); err != nil {
		return nil, fmt.Errorf("failed to search for '%s': %w", name, err)
	}
	if len(resp.Hits) == 0 {
		return nil, fmt.Errorf("search for '%s': %w", name, ErrNotFound)
	}
	p := resp.Hits[0].project()
	return &p, nil
}

// ListVersions retrieves versions of a project, filtered by game version and loader.
// The result is exactly what the registry returned; use FilterVersions to
// enforce the filter and ordering locally.
func (c *Client) ListVersions(ctx context.Context, projectID, gameVersion, loader string) ([]Version, error) {
	release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := withTimeout(ctx, c.VersionsTimeout)
	defer cancel()

	gameVersions, _ := json.Marshal([]string{gameVersion})
	loaders, _ := json.Marshal([]string{strings.ToLower(loader)})
	params := url.Values{}
	params.Add("game_versions", string(gameVersions))
	params.Add("loaders", string(loaders))

	var wire []versionWire
	path := fmt.Sprintf("%s/project/%s/version", c.BaseURL, url.PathEscape(projectID))
	if err := c.makeRequest(ctx, path, params, &wire, nil); err != nil {
		return nil, fmt.Errorf("failed to get project versions for '%s': %w", projectID, err)
	}

	versions := make([]Version, 0, len(wire))
	for _, w := range wire {
		versions = append(versions, w.version())
	}
	return versions, nil
}

// Download streams the file at downloadURL into w.
func (c *Client) Download(ctx context.Context, downloadURL string, w io.Writer) error {
	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := withTimeout(ctx, c.DownloadTimeout)
	defer cancel()

	if err := c.makeRequest(ctx, downloadURL, nil, nil, w); err != nil {
		return fmt.Errorf("failed to download %s: %w", downloadURL, err)
	}
	return nil
}
