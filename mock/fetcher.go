package mock

import (
	"context"

	"github.com/fwojciec/ameblodoc"
)

var _ ameblodoc.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of ameblodoc.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ ameblodoc.ImageFetcher = (*ImageFetcher)(nil)

// ImageFetcher is a mock implementation of ameblodoc.ImageFetcher.
type ImageFetcher struct {
	FetchImageFn func(ctx context.Context, url string) ([]byte, error)
}

func (f *ImageFetcher) FetchImage(ctx context.Context, url string) ([]byte, error) {
	return f.FetchImageFn(ctx, url)
}
