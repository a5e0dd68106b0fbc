package cmd

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/ulanbek/profitbot"
)

type rateCmd struct {
	fetch bool
}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "show, set or fetch the exchange rate" }
func (*rateCmd) Usage() string {
	return `pbot rate [<number>] [-fetch]

  Without arguments, prints the current exchange rate. With a number, sets
  it. With -fetch, retrieves the latest reference rate from the public
  exchange-rate API and stores it.

Usage Examples:
# Show the current rate.
$ pbot rate

# Set it by hand.
$ pbot rate 88.5

# Pull the latest reference rate.
$ pbot rate -fetch
`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.fetch, "fetch", false, "Fetch the latest reference rate instead of reading a value.")
}

func (c *rateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}

	switch {
	case c.fetch:
		rate, err := profitbot.FetchRate(new(http.Client), *sourceCurrency, *targetCurrency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching rate: %v\n", err)
			return subcommands.ExitFailure
		}
		return c.set(store, rate)

	case f.NArg() > 0:
		rate, err := decimal.NewFromString(f.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %q is not a number\n", f.Arg(0))
			return subcommands.ExitUsageError
		}
		return c.set(store, rate)

	default:
		rate, err := store.Rate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading rate: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("1 %s = %s %s\n", *sourceCurrency, rate.String(), *targetCurrency)
		return subcommands.ExitSuccess
	}
}

func (c *rateCmd) set(store *profitbot.Store, rate decimal.Decimal) subcommands.ExitStatus {
	if err := store.SetRate(rate); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving rate: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Rate updated: 1 %s = %s %s\n", *sourceCurrency, rate.String(), *targetCurrency)
	return subcommands.ExitSuccess
}
