package convert_test

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/ameblodoc"
	"github.com/fwojciec/ameblodoc/convert"
	"github.com/fwojciec/ameblodoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strategy(t *testing.T, opts ameblodoc.FetchOptions) *ameblodoc.Strategy {
	t.Helper()

	opts.BaseURL = "http://blog.test"
	opts.Blog = "b"
	opts.Output = "/out"
	s, err := ameblodoc.SelectStrategy(opts)
	require.NoError(t, err)
	return s
}

// entriesFromHTML yields one entry per line of html, titled by the line.
// A line reading "broken" yields an error instead.
func entriesFromHTML() *mock.EntryExtractor {
	return &mock.EntryExtractor{
		EntriesFn: func(html string, _ ameblodoc.ArticleSelector, _ string) iter.Seq2[*ameblodoc.Entry, error] {
			return func(yield func(*ameblodoc.Entry, error) bool) {
				for _, line := range strings.Split(html, "\n") {
					if line == "broken" {
						yield(nil, ameblodoc.Errorf(ameblodoc.EPARSE, "entry date not found"))
						return
					}
					if !yield(ameblodoc.NewEntry(line, "l", time.Now()), nil) {
						return
					}
				}
			}
		},
	}
}

type recordingWriter struct {
	mu     sync.Mutex
	titles []string
}

func (w *recordingWriter) mock() *mock.EntryWriter {
	return &mock.EntryWriter{
		WriteEntryFn: func(_ context.Context, entry *ameblodoc.Entry) (string, error) {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.titles = append(w.titles, entry.Title)
			return "/out/" + entry.Title + ".docx", nil
		},
	}
}

func TestConverter_Convert_MultiPage(t *testing.T) {
	t.Parallel()

	t.Run("issues one task per page and isolates failures", func(t *testing.T) {
		t.Parallel()

		var fetches atomic.Int64
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetches.Add(1)
				switch url {
				case "http://blog.test/b/page-4.html":
					return "", errors.New("connection reset")
				case "http://blog.test/b/page-5.html":
					return "p5-a\nbroken", nil
				}
				return "p3-a\np3-b", nil
			},
		}
		writer := &recordingWriter{}
		c := &convert.Converter{
			Fetcher:   fetcher,
			Extractor: entriesFromHTML(),
			Writer:    writer.mock(),
		}

		var mu sync.Mutex
		var reported []string
		result, err := c.Convert(context.Background(), strategy(t, ameblodoc.FetchOptions{FirstPage: "3", LastPage: "5"}), func(p convert.PageResult) {
			mu.Lock()
			defer mu.Unlock()
			reported = append(reported, p.URL)
		})

		require.NoError(t, err)
		assert.EqualValues(t, 3, fetches.Load())
		assert.Len(t, reported, 3)

		require.Len(t, result.Pages, 3)
		assert.Equal(t, "http://blog.test/b/page-3.html", result.Pages[0].URL)
		assert.Equal(t, convert.PageRendered, result.Pages[0].State)
		assert.Equal(t, 2, result.Pages[0].Entries)
		assert.Equal(t, []string{"/out/p3-a.docx", "/out/p3-b.docx"}, result.Pages[0].Paths)

		assert.Equal(t, convert.PageFailed, result.Pages[1].State)
		assert.EqualError(t, result.Pages[1].Err, "connection reset")

		assert.Equal(t, convert.PageFailed, result.Pages[2].State)
		assert.Equal(t, ameblodoc.EPARSE, ameblodoc.ErrorCode(result.Pages[2].Err))
		assert.Equal(t, 1, result.Pages[2].Entries)

		assert.Equal(t, 3, result.Entries)
		assert.Equal(t, 2, result.Failed)
		assert.ElementsMatch(t, []string{"p3-a", "p3-b", "p5-a"}, writer.titles)
	})

	t.Run("never runs more than the concurrency limit", func(t *testing.T) {
		t.Parallel()

		var active, peak atomic.Int64
		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				active.Add(-1)
				return "", nil
			},
		}
		c := &convert.Converter{
			Fetcher:     fetcher,
			Extractor:   entriesFromHTML(),
			Writer:      (&recordingWriter{}).mock(),
			Concurrency: 2,
		}

		result, err := c.Convert(context.Background(), strategy(t, ameblodoc.FetchOptions{FirstPage: "0", LastPage: "9"}), nil)

		require.NoError(t, err)
		assert.Len(t, result.Pages, 10)
		assert.LessOrEqual(t, peak.Load(), int64(2))
	})

	t.Run("defaults to five workers", func(t *testing.T) {
		t.Parallel()

		var active, peak atomic.Int64
		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				active.Add(-1)
				return "", nil
			},
		}
		c := &convert.Converter{
			Fetcher:   fetcher,
			Extractor: entriesFromHTML(),
			Writer:    (&recordingWriter{}).mock(),
		}

		_, err := c.Convert(context.Background(), strategy(t, ameblodoc.FetchOptions{FirstPage: "1", LastPage: "20"}), nil)

		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int64(convert.DefaultConcurrency))
	})

	t.Run("a panicking page fails alone", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if strings.HasSuffix(url, "page-1.html") {
					panic("boom")
				}
				return "ok", nil
			},
		}
		c := &convert.Converter{
			Fetcher:   fetcher,
			Extractor: entriesFromHTML(),
			Writer:    (&recordingWriter{}).mock(),
		}

		result, err := c.Convert(context.Background(), strategy(t, ameblodoc.FetchOptions{FirstPage: "1", LastPage: "2"}), nil)

		require.NoError(t, err)
		assert.Equal(t, convert.PageFailed, result.Pages[0].State)
		assert.Equal(t, ameblodoc.EINTERNAL, ameblodoc.ErrorCode(result.Pages[0].Err))
		assert.Equal(t, convert.PageRendered, result.Pages[1].State)
	})
}

func TestConverter_Convert_Sequential(t *testing.T) {
	t.Parallel()

	t.Run("page strategy writes every entry", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetched = append(fetched, url)
				return "a\nb", nil
			},
		}
		writer := &recordingWriter{}
		c := &convert.Converter{Fetcher: fetcher, Extractor: entriesFromHTML(), Writer: writer.mock()}

		result, err := c.Convert(context.Background(), strategy(t, ameblodoc.FetchOptions{Page: "7"}), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"http://blog.test/b/page-7.html"}, fetched)
		assert.Equal(t, []string{"a", "b"}, writer.titles)
		assert.Equal(t, 2, result.Entries)
		assert.Equal(t, 0, result.Failed)
	})

	t.Run("entry strategy aborts on parse error after earlier entries", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "first\nbroken\nnever", nil
			},
		}
		writer := &recordingWriter{}
		c := &convert.Converter{Fetcher: fetcher, Extractor: entriesFromHTML(), Writer: writer.mock()}

		result, err := c.Convert(context.Background(), strategy(t, ameblodoc.FetchOptions{Entry: "123"}), nil)

		require.Error(t, err)
		assert.Equal(t, ameblodoc.EPARSE, ameblodoc.ErrorCode(err))
		assert.Equal(t, []string{"first"}, writer.titles)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("fetch error is returned", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "", ameblodoc.Errorf(ameblodoc.EUNAVAILABLE, "HTTP 404 for page")
			},
		}
		c := &convert.Converter{Fetcher: fetcher, Extractor: entriesFromHTML(), Writer: (&recordingWriter{}).mock()}

		_, err := c.Convert(context.Background(), strategy(t, ameblodoc.FetchOptions{Page: "1"}), nil)

		require.Error(t, err)
		assert.Equal(t, ameblodoc.EUNAVAILABLE, ameblodoc.ErrorCode(err))
	})

	t.Run("writer error is returned", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "a", nil
			},
		}
		writer := &mock.EntryWriter{
			WriteEntryFn: func(context.Context, *ameblodoc.Entry) (string, error) {
				return "", errors.New("disk full")
			},
		}
		c := &convert.Converter{Fetcher: fetcher, Extractor: entriesFromHTML(), Writer: writer}

		_, err := c.Convert(context.Background(), strategy(t, ameblodoc.FetchOptions{Page: "1"}), nil)

		require.EqualError(t, err, "disk full")
	})
}

func TestConverter_Convert_Default(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(context.Context, string) (string, error) {
			t.Fatal("default strategy must not fetch")
			return "", nil
		},
	}
	c := &convert.Converter{Fetcher: fetcher, Extractor: entriesFromHTML(), Writer: (&recordingWriter{}).mock()}

	result, err := c.Convert(context.Background(), strategy(t, ameblodoc.FetchOptions{}), nil)

	require.NoError(t, err)
	assert.Empty(t, result.Pages)
	assert.Zero(t, result.Entries)
}

func TestPageState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pending", convert.PagePending.String())
	assert.Equal(t, "rendered", convert.PageRendered.String())
	assert.Equal(t, "failed", convert.PageFailed.String())
	assert.Equal(t, "PageState(42)", convert.PageState(42).String())
}
