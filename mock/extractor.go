package mock

import (
	"iter"

	"github.com/fwojciec/ameblodoc"
)

var _ ameblodoc.EntryExtractor = (*EntryExtractor)(nil)

// EntryExtractor is a mock implementation of ameblodoc.EntryExtractor.
type EntryExtractor struct {
	EntriesFn func(html string, sel ameblodoc.ArticleSelector, headerTag string) iter.Seq2[*ameblodoc.Entry, error]
}

func (e *EntryExtractor) Entries(html string, sel ameblodoc.ArticleSelector, headerTag string) iter.Seq2[*ameblodoc.Entry, error] {
	return e.EntriesFn(html, sel, headerTag)
}
