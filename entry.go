package ameblodoc

import (
	"context"
	"time"
)

// Entry represents one blog post extracted from a fetched page.
type Entry struct {
	Title    string
	Link     string
	Date     time.Time
	Contents []Block
}

// NewEntry returns an entry owning a fresh copy of contents.
func NewEntry(title, link string, date time.Time, contents ...Block) *Entry {
	return &Entry{
		Title:    title,
		Link:     link,
		Date:     date,
		Contents: append(make([]Block, 0, len(contents)), contents...),
	}
}

// Validate returns an error if the entry is missing mandatory fields.
func (e *Entry) Validate() error {
	if e.Title == "" {
		return Errorf(EINVALID, "entry title required")
	}
	if e.Date.IsZero() {
		return Errorf(EINVALID, "entry date required")
	}
	return nil
}

// Block is one unit of entry body content. The set of blocks is closed:
// TextBlock and ImageBlock are the only implementations.
type Block interface {
	// Render contributes the block to doc. Image bytes are retrieved
	// through images.
	Render(ctx context.Context, doc Document, images ImageFetcher) error

	block()
}

// TextBlock is a paragraph of literal text.
type TextBlock struct {
	Text string
}

func (TextBlock) block() {}

// Render appends the text as a paragraph.
func (b TextBlock) Render(_ context.Context, doc Document, _ ImageFetcher) error {
	doc.AddParagraph(b.Text)
	return nil
}

// ImageBlock is an image referenced by URL.
type ImageBlock struct {
	SourceURL string
}

func (ImageBlock) block() {}

// Render downloads the image and embeds it at the end of doc. A broken
// image never fails the entry: download and decode errors drop the block.
func (b ImageBlock) Render(ctx context.Context, doc Document, images ImageFetcher) error {
	data, err := images.FetchImage(ctx, b.SourceURL)
	if err != nil {
		return nil
	}
	_ = doc.AddPicture(data)
	return nil
}

// Document is an output document being built.
type Document interface {
	// AddHeading appends a heading. Level 0 is the document title.
	AddHeading(text string, level int)

	// AddParagraph appends a paragraph of plain text.
	AddParagraph(text string)

	// AddPicture embeds an encoded image at the end of the document.
	// Returns an error if the image format is not supported.
	AddPicture(data []byte) error
}

// EntryWriter persists a rendered entry.
type EntryWriter interface {
	// WriteEntry renders the entry and returns the path it was written to.
	WriteEntry(ctx context.Context, entry *Entry) (path string, err error)
}
