// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads roadmap definitions and topic content files from
// the developer-roadmap GitHub repository.
// Implements: prd001-fetch (R1-R4).
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/roadmap-engine/internal/httputil"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// Base endpoints for the developer-roadmap repository. Package-level vars
// for test substitution.
var (
	rawBaseURL = "https://raw.githubusercontent.com/kamranahmedse/developer-roadmap/master/src/data/roadmaps"
	apiBaseURL = "https://api.github.com/repos/kamranahmedse/developer-roadmap/contents/src/data/roadmaps"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultUserAgent     = "roadmap-engine/0.1"
	defaultMaxConcurrent = 20
)

// Fetcher downloads roadmap data over HTTP with retry on rate limiting.
type Fetcher struct {
	cfg    types.FetchConfig
	client *http.Client
}

// New builds a Fetcher from cfg, applying defaults for zero fields.
func New(cfg types.FetchConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// RoadmapJSON fetches the graph document for one roadmap (R1.1).
func (f *Fetcher) RoadmapJSON(ctx context.Context, name string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s.json", rawBaseURL, name, name)

	body, status, err := f.get(ctx, url, "")
	if err != nil {
		return nil, fmt.Errorf("fetching roadmap %s: %w", name, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetching roadmap %s: HTTP %d", name, status)
	}
	return body, nil
}

// ListRoadmaps returns the sorted names of all available roadmaps (R2.1).
func (f *Fetcher) ListRoadmaps(ctx context.Context) ([]string, error) {
	body, status, err := f.get(ctx, apiBaseURL, "application/vnd.github.v3+json")
	if err != nil {
		return nil, fmt.Errorf("listing roadmaps: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("listing roadmaps: HTTP %d", status)
	}

	var items []apiEntry
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parsing roadmap listing: %w", err)
	}

	var names []string
	for _, item := range items {
		if item.Type == "dir" && item.Name != "" {
			names = append(names, item.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// apiEntry is one entry of a GitHub contents API listing.
type apiEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// ContentFiles bulk-fetches every topic content file for a roadmap and
// returns a map of filename (without the .md extension) to file contents
// (R3.1, R3.2). Files are downloaded concurrently with at most MaxConcurrent
// requests in flight. Individual file failures are reported on w and skipped;
// the topic still appears downstream with an empty description.
func (f *Fetcher) ContentFiles(ctx context.Context, name string, w io.Writer) (map[string]string, error) {
	listURL := fmt.Sprintf("%s/%s/content", apiBaseURL, name)

	body, status, err := f.get(ctx, listURL, "application/vnd.github.v3+json")
	if err != nil {
		return nil, fmt.Errorf("listing content files: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("listing content files: HTTP %d", status)
	}

	var files []apiEntry
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, fmt.Errorf("parsing content listing: %w", err)
	}

	type fileResult struct {
		name    string
		content string
		err     error
	}

	sem := make(chan struct{}, f.cfg.MaxConcurrent)
	ch := make(chan fileResult, len(files))
	var wg sync.WaitGroup

	for _, file := range files {
		if !strings.HasSuffix(file.Name, ".md") || file.DownloadURL == "" {
			continue
		}

		wg.Add(1)
		go func(file apiEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				ch <- fileResult{name: file.Name, err: err}
				return
			}

			data, status, err := f.get(ctx, file.DownloadURL, "")
			if err == nil && status != http.StatusOK {
				err = fmt.Errorf("HTTP %d", status)
			}
			ch <- fileResult{name: file.Name, content: string(data), err: err}
		}(file)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	contents := make(map[string]string, len(files))
	var failed int
	for r := range ch {
		if r.err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", r.name, r.err)
			failed++
			continue
		}
		contents[strings.TrimSuffix(r.name, ".md")] = r.content
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "fetched %d content files (%d failed)\n", len(contents), failed)
	return contents, nil
}

// get performs one GET with the configured headers and retry policy.
func (f *Fetcher) get(ctx context.Context, url, accept string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if f.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.cfg.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.cfg.MaxRetries)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
