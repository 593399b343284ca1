package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/ameblodoc"
)

// Ensure LoggingEntryWriter implements ameblodoc.EntryWriter.
var _ ameblodoc.EntryWriter = (*LoggingEntryWriter)(nil)

// LoggingEntryWriter wraps an EntryWriter with logging.
type LoggingEntryWriter struct {
	next   ameblodoc.EntryWriter
	logger *slog.Logger
}

// NewLoggingEntryWriter creates a new LoggingEntryWriter.
func NewLoggingEntryWriter(next ameblodoc.EntryWriter, logger *slog.Logger) *LoggingEntryWriter {
	return &LoggingEntryWriter{next: next, logger: logger}
}

// WriteEntry delegates to the wrapped writer and logs the result.
func (w *LoggingEntryWriter) WriteEntry(ctx context.Context, entry *ameblodoc.Entry) (path string, err error) {
	defer func(begin time.Time) {
		w.logger.Info("write entry",
			"title", entry.Title,
			"blocks", len(entry.Contents),
			"path", path,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteEntry(ctx, entry)
}
