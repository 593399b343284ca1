// Package fs writes rendered entries to the local filesystem.
package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/ameblodoc"
	"github.com/fwojciec/ameblodoc/docx"
)

// FilenameLayout formats entry dates into file names. It has no colons so
// the names are valid on every filesystem.
const FilenameLayout = "2006-01-02 150405"

// EntryFilename returns the file name for an entry.
// Example: an entry dated 2022-01-02 03:04:05 → "2022-01-02 030405.docx"
//
// Entries published within the same second share a name; the last one
// written wins.
func EntryFilename(entry *ameblodoc.Entry) string {
	return entry.Date.Format(FilenameLayout) + ".docx"
}

// CheckDir returns EINVALID unless path is an existing directory.
func CheckDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return ameblodoc.Errorf(ameblodoc.EINVALID, "output directory %q does not exist", path)
	}
	if !info.IsDir() {
		return ameblodoc.Errorf(ameblodoc.EINVALID, "output path %q is not a directory", path)
	}
	return nil
}

// Ensure Writer implements ameblodoc.EntryWriter at compile time.
var _ ameblodoc.EntryWriter = (*Writer)(nil)

// Writer renders entries as .docx files in a directory.
type Writer struct {
	baseDir string
	images  ameblodoc.ImageFetcher
	wrap    func(ameblodoc.Document) ameblodoc.Document
}

// Option configures a Writer.
type Option func(*Writer)

// WithDocumentWrapper decorates every document before an entry is
// rendered into it.
func WithDocumentWrapper(wrap func(ameblodoc.Document) ameblodoc.Document) Option {
	return func(w *Writer) {
		w.wrap = wrap
	}
}

// NewWriter creates a new Writer that writes to baseDir and downloads
// entry images with images.
func NewWriter(baseDir string, images ameblodoc.ImageFetcher, opts ...Option) *Writer {
	w := &Writer{baseDir: baseDir, images: images}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteEntry renders the entry and saves it under its timestamp name.
// The file is written to a temporary name first and renamed into place,
// so readers never observe a partial document.
func (w *Writer) WriteEntry(ctx context.Context, entry *ameblodoc.Entry) (string, error) {
	if err := entry.Validate(); err != nil {
		return "", err
	}

	doc := docx.New()
	var target ameblodoc.Document = doc
	if w.wrap != nil {
		target = w.wrap(doc)
	}
	if err := ameblodoc.RenderEntry(ctx, entry, target, w.images); err != nil {
		return "", err
	}

	path := filepath.Join(w.baseDir, EntryFilename(entry))

	tmp, err := os.CreateTemp(w.baseDir, ".ameblodoc-*.docx")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if err := doc.Write(tmp); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}
