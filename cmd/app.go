// Package cmd implements the pbot command line application.
package cmd

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/ulanbek/profitbot"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on
// the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&runCmd{}, "bot")

	c.Register(&baseCmd{}, "data")
	c.Register(&rateCmd{}, "data")
	c.Register(&reportCmd{}, "data")

	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var dataDir = flag.String("data-dir", "bot_data", "Directory holding the JSON data documents")
var sourceCurrency = flag.String("source-currency", profitbot.DefaultSourceCurrency, "Currency of the unit costs in the product base")
var targetCurrency = flag.String("target-currency", profitbot.DefaultTargetCurrency, "Currency of revenue and reports")

// openStore is the central function to open the data store.
func openStore() (*profitbot.Store, error) {
	return profitbot.NewStore(*dataDir)
}
