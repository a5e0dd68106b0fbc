package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/ulanbek/profitbot"
	"github.com/ulanbek/profitbot/renderer"
)

type baseCmd struct {
	add string
}

func (*baseCmd) Name() string     { return "base" }
func (*baseCmd) Synopsis() string { return "list the product base or add products" }
func (*baseCmd) Usage() string {
	return `pbot base [-add "model#:cost"]

  Lists all (model, cost) pairs sorted by model. With -add, or with product
  definitions piped on stdin, adds or overwrites products instead.

Usage Examples:
# List the base.
$ pbot base

# Add one product.
$ pbot base -add "махрп#:5.50"

# Add several from a file.
$ pbot base < products.txt
`
}

func (c *baseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.add, "add", "", "Product definition to upsert, e.g. \"махрп#:5.50\".")
}

func (c *baseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}

	input := c.add
	if input == "" && !isTerminal(os.Stdin) {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			return subcommands.ExitFailure
		}
		input = string(content)
	}

	if input != "" {
		return c.addProducts(store, input)
	}

	base, err := store.Base()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading base: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.BaseMarkdown(base, *sourceCurrency))
	return subcommands.ExitSuccess
}

func (c *baseCmd) addProducts(store *profitbot.Store, input string) subcommands.ExitStatus {
	products, failures := profitbot.ParseProductDefinitions(input)
	for _, failure := range failures {
		fmt.Fprintf(os.Stderr, "Skipping %q: %v\n", failure.Line, failure.Err)
	}
	if len(products) == 0 {
		fmt.Fprintln(os.Stderr, "No valid product definition found. Format: model#:cost")
		return subcommands.ExitUsageError
	}

	if err := store.UpsertProducts(products...); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving base: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, p := range products {
		fmt.Printf("Added %s - %s\n", p.Model, profitbot.M(p.Cost, *sourceCurrency))
	}
	return subcommands.ExitSuccess
}

// isTerminal reports whether f is an interactive terminal rather than a pipe.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
