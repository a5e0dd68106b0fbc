package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/ulanbek/profitbot"
	"github.com/ulanbek/profitbot/renderer"
)

type reportCmd struct {
	file string
	save bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "build a profit report from sale lines" }
func (*reportCmd) Usage() string {
	return `pbot report [-f <file>] [-save]

  Reads sale lines (revenue [quantity] model#) from a file or stdin, builds
  the profit report against the stored base and rate, and renders the detail
  and summary tables. With -save the report snapshot is persisted, replacing
  the previous one.

Usage Examples:
# Report from a file of entries.
$ pbot report -f sales.txt

# Pipe entries in and persist the snapshot.
$ cat sales.txt | pbot report -save
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "File with one sale line per row. Defaults to stdin.")
	f.BoolVar(&c.save, "save", false, "Persist the report snapshot, overwriting the previous one.")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	content, err := c.read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading entries: %v\n", err)
		return subcommands.ExitFailure
	}

	entries, failures := profitbot.ParseSaleLines(content)
	for _, failure := range failures {
		fmt.Fprintf(os.Stderr, "Skipping %q: %v\n", failure.Line, failure.Err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No valid sale line found. Format: revenue [quantity] model#")
		return subcommands.ExitUsageError
	}

	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	base, err := store.Base()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading base: %v\n", err)
		return subcommands.ExitFailure
	}
	rate, err := store.Rate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading rate: %v\n", err)
		return subcommands.ExitFailure
	}

	report, err := profitbot.BuildReport(entries, base, rate, *sourceCurrency, *targetCurrency)
	var missing *profitbot.MissingModelsError
	if errors.As(err, &missing) {
		fmt.Fprintln(os.Stderr, "Models not found in the product base:")
		for _, model := range missing.Models {
			fmt.Fprintf(os.Stderr, "  %s\n", model)
		}
		fmt.Fprintln(os.Stderr, "Add them with 'pbot base -add \"model#:cost\"' and retry.")
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building report: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.ReportMarkdown(report))

	if c.save {
		if err := store.SaveSnapshot(report.Snapshot(time.Now())); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving snapshot: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println("Report snapshot saved.")
	}
	return subcommands.ExitSuccess
}

func (c *reportCmd) read() (string, error) {
	if c.file == "" {
		content, err := io.ReadAll(os.Stdin)
		return string(content), err
	}
	content, err := os.ReadFile(c.file)
	return string(content), err
}
