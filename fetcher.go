package ameblodoc

import "context"

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch retrieves the HTML at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// ImageFetcher downloads image bytes.
type ImageFetcher interface {
	// FetchImage returns the full response body for url.
	FetchImage(ctx context.Context, url string) ([]byte, error)
}
