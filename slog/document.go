package slog

import (
	"log/slog"

	"github.com/fwojciec/ameblodoc"
)

// Ensure LoggingDocument implements ameblodoc.Document.
var _ ameblodoc.Document = (*LoggingDocument)(nil)

// LoggingDocument wraps a Document and logs picture insertion. Pictures
// that cannot be decoded are dropped by the renderer, so a failed
// AddPicture is logged here.
type LoggingDocument struct {
	next   ameblodoc.Document
	logger *slog.Logger
}

// NewLoggingDocument creates a new LoggingDocument.
func NewLoggingDocument(next ameblodoc.Document, logger *slog.Logger) *LoggingDocument {
	return &LoggingDocument{next: next, logger: logger}
}

func (d *LoggingDocument) AddHeading(text string, level int) {
	d.next.AddHeading(text, level)
}

func (d *LoggingDocument) AddParagraph(text string) {
	d.next.AddParagraph(text)
}

// AddPicture delegates to the wrapped document and logs the outcome.
func (d *LoggingDocument) AddPicture(data []byte) (err error) {
	defer func() {
		if err != nil {
			d.logger.Warn("add picture", "bytes", len(data), "err", err)
			return
		}
		d.logger.Debug("add picture", "bytes", len(data))
	}()
	return d.next.AddPicture(data)
}
