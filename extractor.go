package ameblodoc

import "iter"

// ArticleSelector identifies article blocks on a page by structural
// attribute equality.
type ArticleSelector struct {
	// Component is the value of the article's amb-component attribute.
	Component string

	// Blog is the value of the article's data-unique-ameba-id attribute.
	Blog string
}

// EntryExtractor turns a fetched page into entries.
type EntryExtractor interface {
	// Entries lazily yields one entry per article matching sel. The title is
	// read from the headerTag element of each article. The sequence stops
	// after the first error.
	Entries(html string, sel ArticleSelector, headerTag string) iter.Seq2[*Entry, error]
}
