// Package ports defines the core interfaces for the application.
package ports

import "context"

// Fetcher retrieves the bytes behind a repository or package URL.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type Fetcher interface {
	// Fetch returns the full content at url or an error wrapping domain.ErrFetchFailed.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
