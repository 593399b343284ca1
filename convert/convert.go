// Package convert drives the fetch, extract and render pipeline for a
// strategy. Page ranges are converted concurrently with per-page failure
// isolation; single pages abort on the first error.
package convert

import (
	"context"
	"fmt"
	"sync"

	"github.com/fwojciec/ameblodoc"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages converted at once for a range.
const DefaultConcurrency = 5

// Converter runs the conversion pipeline.
type Converter struct {
	Fetcher     ameblodoc.Fetcher
	Extractor   ameblodoc.EntryExtractor
	Writer      ameblodoc.EntryWriter
	Concurrency int
}

// PageState is the position of one page in the pipeline.
type PageState int

const (
	PagePending PageState = iota
	PageFetching
	PageExtracting
	PageRendered
	PageFailed
)

func (s PageState) String() string {
	switch s {
	case PagePending:
		return "pending"
	case PageFetching:
		return "fetching"
	case PageExtracting:
		return "extracting"
	case PageRendered:
		return "rendered"
	case PageFailed:
		return "failed"
	}
	return fmt.Sprintf("PageState(%d)", int(s))
}

// PageResult holds the outcome of converting a single page.
type PageResult struct {
	URL     string
	State   PageState
	Entries int
	Paths   []string
	Err     error
}

// Result holds the outcome of a conversion run. Pages are in link order.
type Result struct {
	Pages   []PageResult
	Entries int
	Failed  int
}

// ProgressFunc is called once per page when it reaches a terminal state.
// Calls are serialized.
type ProgressFunc func(PageResult)

// Convert converts every page of the strategy. For concurrent strategies
// page failures are recorded in the result and never returned; otherwise
// the first failure aborts the run and is returned alongside the partial
// result.
func (c *Converter) Convert(ctx context.Context, s *ameblodoc.Strategy, progress ProgressFunc) (*Result, error) {
	links := s.Links()
	if len(links) == 0 {
		return &Result{}, nil
	}

	if s.Concurrent() {
		return c.convertConcurrent(ctx, s, links, progress), nil
	}
	return c.convertSequential(ctx, s, links, progress)
}

func (c *Converter) convertSequential(ctx context.Context, s *ameblodoc.Strategy, links []string, progress ProgressFunc) (*Result, error) {
	result := &Result{}
	for _, link := range links {
		page := c.convertPage(ctx, s, link)
		result.add(page)
		if progress != nil {
			progress(page)
		}
		if page.Err != nil {
			return result, page.Err
		}
	}
	return result, nil
}

func (c *Converter) convertConcurrent(ctx context.Context, s *ameblodoc.Strategy, links []string, progress ProgressFunc) *Result {
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	pages := make([]PageResult, len(links))
	var mu sync.Mutex

	// A plain group: one failing page must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, link := range links {
		pages[i] = PageResult{URL: link, State: PagePending}
		g.Go(func() error {
			page := c.convertPage(ctx, s, link)
			pages[i] = page
			if progress != nil {
				mu.Lock()
				progress(page)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{}
	for _, page := range pages {
		result.add(page)
	}
	return result
}

// convertPage fetches one page and writes every entry on it.
func (c *Converter) convertPage(ctx context.Context, s *ameblodoc.Strategy, url string) (page PageResult) {
	page = PageResult{URL: url, State: PageFetching}

	defer func() {
		if r := recover(); r != nil {
			page.State = PageFailed
			page.Err = ameblodoc.Errorf(ameblodoc.EINTERNAL, "panic converting %s: %v", url, r)
		}
	}()

	html, err := c.Fetcher.Fetch(ctx, url)
	if err != nil {
		return page.fail(err)
	}

	page.State = PageExtracting
	for entry, err := range c.Extractor.Entries(html, s.Selector, s.HeaderTag) {
		if err != nil {
			return page.fail(err)
		}
		path, err := c.Writer.WriteEntry(ctx, entry)
		if err != nil {
			return page.fail(err)
		}
		page.Entries++
		page.Paths = append(page.Paths, path)
	}

	page.State = PageRendered
	return page
}

func (p PageResult) fail(err error) PageResult {
	p.State = PageFailed
	p.Err = err
	return p
}

func (r *Result) add(page PageResult) {
	r.Pages = append(r.Pages, page)
	r.Entries += page.Entries
	if page.State == PageFailed {
		r.Failed++
	}
}
