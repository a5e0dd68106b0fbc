package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/ulanbek/profitbot/bot"
)

const tokenEnv = "TELEGRAM_BOT_TOKEN"

type runCmd struct {
	token string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "start the Telegram bot" }
func (*runCmd) Usage() string {
	return `pbot run [-token <token>]

  Starts the Telegram bot with long polling. The token is read from the
  -token flag or the ` + tokenEnv + ` environment variable; without it the
  process does not start.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.token, "token", "", "Telegram bot token. If missing it will read the environment variable "+tokenEnv+".")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.token == "" {
		c.token = os.Getenv(tokenEnv)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	b, err := bot.New(bot.Config{
		Token:   c.token,
		DataDir: *dataDir,
		Source:  *sourceCurrency,
		Target:  *targetCurrency,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting the bot: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := b.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Bot stopped: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
