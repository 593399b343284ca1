package main

import (
	"fmt"

	"github.com/fwojciec/ameblodoc/convert"
)

// Run executes the conversion.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	if len(c.Strategy.Links()) == 0 {
		fmt.Fprintln(deps.Stderr, "nothing to convert: set --blog with --entry, --page or --first_page and --last_page")
		return nil
	}

	var progress convert.ProgressFunc
	if c.Strategy.Concurrent() {
		progress = func(p convert.PageResult) {
			if p.Err != nil {
				fmt.Fprintf(deps.Stdout, "%s generated an exception: %v\n", p.URL, p.Err)
				return
			}
			fmt.Fprintf(deps.Stdout, "%s page\n", p.URL)
		}
	}

	result, err := deps.Converter.Convert(deps.Ctx, c.Strategy, progress)
	if err != nil {
		return err
	}

	deps.Logger.Info("conversion finished",
		"strategy", string(c.Strategy.Kind),
		"pages", len(result.Pages),
		"entries", result.Entries,
		"failed", result.Failed,
	)
	fmt.Fprintf(deps.Stdout, "Converted %d %s", result.Entries, plural(result.Entries, "entry", "entries"))
	if result.Failed > 0 {
		fmt.Fprintf(deps.Stdout, " (%d of %d pages failed)", result.Failed, len(result.Pages))
	}
	fmt.Fprintln(deps.Stdout)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

