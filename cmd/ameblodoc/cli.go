package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/ameblodoc"
	"github.com/fwojciec/ameblodoc/convert"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Converter *convert.Converter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Output      string        `short:"o" required:"" env:"AMEBLODOC_OUTPUT" help:"Output folder (must exist)"`
	Blog        string        `short:"b" env:"AMEBLODOC_BLOG" help:"Blog"`
	Entry       string        `short:"e" help:"Blog entry"`
	Page        string        `short:"p" help:"Page"`
	FirstPage   string        `short:"f" name:"first_page" help:"First page"`
	LastPage    string        `short:"l" name:"last_page" help:"Last page"`
	BaseURL     string        `name:"base-url" default:"http://ameblo.jp" env:"AMEBLODOC_BASE_URL" help:"Blog host"`
	Concurrency int           `short:"c" default:"5" help:"Pages converted at once for a page range"`
	Timeout     time.Duration `short:"t" default:"0s" env:"AMEBLODOC_TIMEOUT" help:"Per-request timeout (0 waits forever)"`
	Browser     bool          `help:"Fetch pages with headless Chrome"`
	Verbose     bool          `short:"v" help:"Log fetches and written files to stderr"`
}

// FetchOptions returns the options to select a strategy from.
func (c *CLI) FetchOptions() ameblodoc.FetchOptions {
	return ameblodoc.FetchOptions{
		BaseURL:   c.BaseURL,
		Blog:      c.Blog,
		Output:    c.Output,
		Entry:     c.Entry,
		Page:      c.Page,
		FirstPage: c.FirstPage,
		LastPage:  c.LastPage,
	}
}

// ConvertCmd converts the pages of one strategy.
type ConvertCmd struct {
	Strategy *ameblodoc.Strategy
}
