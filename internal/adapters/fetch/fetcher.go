// Package fetch retrieves repository documents and packages over HTTP or from the local filesystem.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	defaultRetryMax     = 3
	defaultRetryWaitMin = 500 * time.Millisecond
	defaultRetryWaitMax = 5 * time.Second
	userAgent           = "wipt"
)

// Fetcher implements ports.Fetcher.
// http and https URLs go through a retrying client; file URLs and bare paths are read from disk.
type Fetcher struct {
	client *retryablehttp.Client
}

// NewFetcher creates a Fetcher with the default retry policy.
func NewFetcher() *Fetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = defaultRetryMax
	client.RetryWaitMin = defaultRetryWaitMin
	client.RetryWaitMax = defaultRetryWaitMax
	client.Logger = nil
	return &Fetcher{client: client}
}

// NewFetcherWithClient creates a Fetcher around a preconfigured retrying client.
func NewFetcherWithClient(client *retryablehttp.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch returns the full content at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !hasScheme(u) {
		return readLocal(rawURL, rawURL)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, rawURL)
	case "file":
		return readLocal(rawURL, filePath(u))
	default:
		return nil, fetchError(rawURL, "unsupported scheme "+u.Scheme)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fetchError(rawURL, err.Error())
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fetchError(rawURL, err.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, zerr.With(fetchError(rawURL, resp.Status), "status_code", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetchError(rawURL, err.Error())
	}
	return body, nil
}

func readLocal(rawURL, path string) ([]byte, error) {
	// #nosec G304 -- local repository sources are configured by the user
	data, err := os.ReadFile(path)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, os.ErrNotExist) {
			reason = "no such file"
		}
		return nil, fetchError(rawURL, reason)
	}
	return data, nil
}

// hasScheme distinguishes real URLs from bare paths, including Windows drive letters such as C:\repo.xml.
func hasScheme(u *url.URL) bool {
	return len(u.Scheme) > 1
}

func filePath(u *url.URL) string {
	p := u.Path
	if u.Host != "" && u.Host != "localhost" {
		p = "//" + u.Host + p
	}
	if runtime.GOOS == "windows" {
		p = strings.TrimPrefix(p, "/")
	}
	return filepath.FromSlash(p)
}

func fetchError(rawURL, reason string) error {
	return zerr.With(zerr.Wrap(domain.ErrFetchFailed, fmt.Sprintf("%s: %s", rawURL, reason)), "url", rawURL)
}

// FileName returns the last path segment of rawURL, used when saving a download.
func FileName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && hasScheme(u) {
		rawURL = u.Path
	}
	rawURL = strings.ReplaceAll(rawURL, `\`, "/")
	name := rawURL[strings.LastIndex(rawURL, "/")+1:]
	if name == "" {
		return "download"
	}
	return name
}
