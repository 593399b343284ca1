package mock

import (
	"fmt"

	"github.com/fwojciec/ameblodoc"
)

var _ ameblodoc.Document = (*Document)(nil)

// Document is a mock implementation of ameblodoc.Document.
type Document struct {
	AddHeadingFn   func(text string, level int)
	AddParagraphFn func(text string)
	AddPictureFn   func(data []byte) error
}

func (d *Document) AddHeading(text string, level int) {
	d.AddHeadingFn(text, level)
}

func (d *Document) AddParagraph(text string) {
	d.AddParagraphFn(text)
}

func (d *Document) AddPicture(data []byte) error {
	return d.AddPictureFn(data)
}

// RecordingDocument returns a Document that appends one line per call to
// calls: "h<level>:<text>", "p:<text>" or "img:<bytes>".
func RecordingDocument(calls *[]string) *Document {
	return &Document{
		AddHeadingFn: func(text string, level int) {
			*calls = append(*calls, fmt.Sprintf("h%d:%s", level, text))
		},
		AddParagraphFn: func(text string) {
			*calls = append(*calls, "p:"+text)
		},
		AddPictureFn: func(data []byte) error {
			*calls = append(*calls, fmt.Sprintf("img:%d", len(data)))
			return nil
		},
	}
}
