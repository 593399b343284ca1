package mock

import (
	"context"

	"github.com/fwojciec/ameblodoc"
)

var _ ameblodoc.EntryWriter = (*EntryWriter)(nil)

// EntryWriter is a mock implementation of ameblodoc.EntryWriter.
type EntryWriter struct {
	WriteEntryFn func(ctx context.Context, entry *ameblodoc.Entry) (string, error)
}

func (w *EntryWriter) WriteEntry(ctx context.Context, entry *ameblodoc.Entry) (string, error) {
	return w.WriteEntryFn(ctx, entry)
}
