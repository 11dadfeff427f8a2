// Package fetch implements the dataset refresh: downloading the backing
// file from its remote source and atomically replacing the local copy. The
// replace is a rename within the target directory, so a query loading the
// file concurrently sees either the old content or the new content, never
// a mix.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	applog "finbot/internal/log"
)

// Fetcher downloads the current dataset bytes from the remote source.
type Fetcher interface {
	Fetch(ctx context.Context, w io.Writer) (int64, error)
	Source() string
}

// HTTPFetcher downloads the dataset from a plain URL, the way the original
// export link is shared.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

func NewHTTPFetcher(url string) *HTTPFetcher {
	return &HTTPFetcher{
		url: url,
		client: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (f *HTTPFetcher) Source() string {
	return f.url
}

func (f *HTTPFetcher) Fetch(ctx context.Context, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download dataset: unexpected status %s", resp.Status)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read response body: %w", err)
	}
	return n, nil
}

// Refresher runs a full refresh: fetch into a temp file next to the target,
// then rename over it. The rename is the atomic-replace contract the query
// side relies on.
type Refresher struct {
	fetcher Fetcher
	path    string
	logger  *applog.Logger
}

func NewRefresher(fetcher Fetcher, path string, logger *applog.Logger) *Refresher {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Refresher{
		fetcher: fetcher,
		path:    path,
		logger:  logger.WithComponent(applog.ComponentFetch),
	}
}

// Refresh downloads the dataset and replaces the backing file. It returns
// the number of bytes written. The temp file lives in the target directory
// so the final rename never crosses filesystems.
func (r *Refresher) Refresh(ctx context.Context) (int64, error) {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create dataset directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".download-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	n, err := r.fetcher.Fetch(ctx, tmp)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		return 0, fmt.Errorf("replace backing file: %w", err)
	}

	r.logger.InfoContext(ctx, "Dataset refreshed",
		applog.FieldSource, r.fetcher.Source(),
		applog.FieldPath, r.path,
		applog.FieldBytes, n)
	return n, nil
}

// Source reports where the refresher downloads from.
func (r *Refresher) Source() string {
	return r.fetcher.Source()
}
