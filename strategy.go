package ameblodoc

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultBaseURL is the host serving ameblo pages.
const DefaultBaseURL = "http://ameblo.jp"

// StrategyKind names how a run locates and parses article pages.
type StrategyKind string

// StrategyKind constants.
const (
	StrategyDefault   StrategyKind = "default"
	StrategyEntry     StrategyKind = "entry"
	StrategyPage      StrategyKind = "page"
	StrategyMultiPage StrategyKind = "multipage"
)

// Link templates take the base URL, the blog and the entry ID or page number.
const (
	entryLinkTemplate = "%s/%s/entry-%s.html"
	pageLinkTemplate  = "%s/%s/page-%s.html"
)

// FetchOptions holds the raw, unvalidated options of one run.
type FetchOptions struct {
	BaseURL   string
	Blog      string
	Output    string
	Entry     string
	Page      string
	FirstPage string
	LastPage  string
}

// Strategy describes which pages a run fetches and how articles are found
// on them. Strategies are built by SelectStrategy and are immutable.
type Strategy struct {
	Kind StrategyKind

	// Selector identifies article blocks on a fetched page.
	Selector ArticleSelector

	// HeaderTag is the element holding the entry title link.
	HeaderTag string

	// LinkTemplate formats a page URL from base URL, blog and page key.
	LinkTemplate string

	baseURL string
	keys    []string
}

// Links returns the page URLs the strategy visits, in page order.
func (s *Strategy) Links() []string {
	links := make([]string, 0, len(s.keys))
	for _, key := range s.keys {
		links = append(links, fmt.Sprintf(s.LinkTemplate, s.baseURL, s.Selector.Blog, key))
	}
	return links
}

// Concurrent reports whether pages are converted in parallel.
func (s *Strategy) Concurrent() bool {
	return s.Kind == StrategyMultiPage
}

// SelectStrategy validates opts and returns the matching strategy.
// An entry takes precedence over a page, and a page over a page range.
// Options naming neither yield the Default strategy, which has no links:
// it performs no fetch at all rather than requesting an empty URL.
func SelectStrategy(opts FetchOptions) (*Strategy, error) {
	if opts.Output == "" {
		return nil, Errorf(EINVALID, "output directory required")
	}

	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if opts.Blog == "" {
		return &Strategy{Kind: StrategyDefault, baseURL: baseURL}, nil
	}

	switch {
	case opts.Entry != "":
		return &Strategy{
			Kind:         StrategyEntry,
			Selector:     ArticleSelector{Component: "entry", Blog: opts.Blog},
			HeaderTag:    "h1",
			LinkTemplate: entryLinkTemplate,
			baseURL:      baseURL,
			keys:         []string{opts.Entry},
		}, nil

	case opts.Page != "":
		if _, err := parsePageNumber("page", opts.Page); err != nil {
			return nil, err
		}
		return &Strategy{
			Kind:         StrategyPage,
			Selector:     ArticleSelector{Component: "entryStdTop", Blog: opts.Blog},
			HeaderTag:    "h2",
			LinkTemplate: pageLinkTemplate,
			baseURL:      baseURL,
			keys:         []string{opts.Page},
		}, nil

	case opts.FirstPage != "" && opts.LastPage != "":
		first, err := parsePageNumber("first page", opts.FirstPage)
		if err != nil {
			return nil, err
		}
		last, err := parsePageNumber("last page", opts.LastPage)
		if err != nil {
			return nil, err
		}
		if first >= last {
			return nil, Errorf(EINVALID, "first page %d must be lower than last page %d", first, last)
		}
		if last-first >= MaxPageRange {
			return nil, Errorf(EINVALID, "page range %d-%d exceeds %d pages", first, last, MaxPageRange)
		}

		keys := make([]string, 0, last-first+1)
		for n := first; n <= last; n++ {
			keys = append(keys, strconv.Itoa(n))
		}
		return &Strategy{
			Kind:         StrategyMultiPage,
			Selector:     ArticleSelector{Component: "entryStdTop", Blog: opts.Blog},
			HeaderTag:    "h2",
			LinkTemplate: pageLinkTemplate,
			baseURL:      baseURL,
			keys:         keys,
		}, nil
	}

	return &Strategy{Kind: StrategyDefault, baseURL: baseURL}, nil
}

// MaxPageRange is the largest number of pages a single range may cover.
const MaxPageRange = 10000

// parsePageNumber accepts digit-only strings.
func parsePageNumber(name, s string) (int, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, Errorf(EINVALID, "%s must be a non-negative integer, got %q", name, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, Errorf(EINVALID, "%s is out of range: %q", name, s)
	}
	return n, nil
}
