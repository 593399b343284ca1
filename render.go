package ameblodoc

import "context"

// DateLayout is the layout of entry dates on the page and in rendered headings.
const DateLayout = "2006-01-02 15:04:05"

// RenderEntry writes the entry into doc: the title heading, date and link
// subheadings, then every content block in source order.
func RenderEntry(ctx context.Context, entry *Entry, doc Document, images ImageFetcher) error {
	doc.AddHeading(entry.Title, 0)
	doc.AddHeading(entry.Date.Format(DateLayout), 1)
	doc.AddHeading(entry.Link, 1)

	for _, b := range entry.Contents {
		if err := b.Render(ctx, doc, images); err != nil {
			return err
		}
	}
	return nil
}
