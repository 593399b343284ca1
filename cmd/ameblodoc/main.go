package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"
	"github.com/fwojciec/ameblodoc"
	"github.com/fwojciec/ameblodoc/convert"
	"github.com/fwojciec/ameblodoc/fs"
	"github.com/fwojciec/ameblodoc/goquery"
	amebhttp "github.com/fwojciec/ameblodoc/http"
	"github.com/fwojciec/ameblodoc/rod"
	amebslog "github.com/fwojciec/ameblodoc/slog"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("ameblodoc"),
		kong.Description("Convert ameblo entries into .docx documents"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	// Everything below the strategy needs valid options; nothing touches
	// the network until both checks pass.
	strategy, err := ameblodoc.SelectStrategy(cli.FetchOptions())
	if err != nil {
		return err
	}
	if err := fs.CheckDir(cli.Output); err != nil {
		return err
	}

	logger := newLogger(stderr, cli.Verbose)

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}

	httpFetcher := amebhttp.NewFetcher(amebhttp.WithTimeout(cli.Timeout))

	var pages ameblodoc.Fetcher = httpFetcher
	if cli.Browser && len(strategy.Links()) > 0 {
		rodFetcher, err := rod.NewFetcher(rod.WithFetchTimeout(cli.Timeout))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		pages = rodFetcher
	}
	pages = amebslog.NewLoggingFetcher(pages, logger)
	defer pages.Close()

	images := amebslog.NewLoggingImageFetcher(httpFetcher, logger)

	writer := fs.NewWriter(cli.Output, images, fs.WithDocumentWrapper(func(doc ameblodoc.Document) ameblodoc.Document {
		return amebslog.NewLoggingDocument(doc, logger)
	}))

	deps.Converter = &convert.Converter{
		Fetcher:     pages,
		Extractor:   goquery.NewExtractor(),
		Writer:      amebslog.NewLoggingEntryWriter(writer, logger),
		Concurrency: cli.Concurrency,
	}

	cmd := &ConvertCmd{Strategy: strategy}
	return cmd.Run(deps)
}

// newLogger returns a logger writing to w when verbose, discarding otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Level:           charmlog.DebugLevel,
		Prefix:          "ameblodoc",
	})
	return slog.New(handler)
}
