// Package bot runs the Telegram transport on top of the conversation
// controller. One update is fully processed, durable writes included, before
// the next one is handled.
package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/ulanbek/profitbot"
)

// ErrMissingToken is the fatal configuration error raised when the bot is
// started without a Telegram token.
var ErrMissingToken = errors.New("telegram bot token is not set (use -token or TELEGRAM_BOT_TOKEN)")

// Config holds the bot startup configuration.
type Config struct {
	Token   string // required
	DataDir string // directory for the JSON documents
	Source  string // currency of the product base, default USD
	Target  string // currency of revenue and reports, default KGS
}

// Bot is the Telegram long-polling transport.
type Bot struct {
	api  *tgbotapi.BotAPI
	ctrl *Controller
	log  zerolog.Logger
}

// New opens the store and connects to the Telegram API.
func New(cfg Config, logger zerolog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	store, err := profitbot.NewStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:  api,
		ctrl: NewController(store, cfg.Source, cfg.Target),
		log:  logger,
	}, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.log.Info().Str("username", b.api.Self.UserName).Msg("bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handle(update)
		}
	}
}

// handle processes one update and sends the replies.
func (b *Bot) handle(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	logger := b.log.With().Int64("user", msg.From.ID).Logger()

	var replies []string
	switch {
	case msg.IsCommand():
		replies = b.command(msg)
		logger.Info().Str("command", msg.Command()).Msg("command handled")
	case msg.Text != "":
		replies = b.ctrl.Text(msg.From.ID, msg.Text)
		logger.Info().Int("replies", len(replies)).Msg("text handled")
	default:
		return
	}

	for _, text := range replies {
		reply := tgbotapi.NewMessage(msg.Chat.ID, text)
		if strings.HasPrefix(text, "```") {
			reply.ParseMode = tgbotapi.ModeMarkdown
		}
		if _, err := b.api.Send(reply); err != nil {
			logger.Error().Err(err).Msg("cannot send reply")
		}
	}
}

func (b *Bot) command(msg *tgbotapi.Message) []string {
	switch msg.Command() {
	case "start":
		return []string{b.ctrl.Help()}
	case "base":
		return b.ctrl.Base()
	case "rate":
		return b.ctrl.Rate(strings.TrimSpace(msg.CommandArguments()))
	case "start_report":
		return b.ctrl.StartReport(msg.From.ID)
	case "end_report":
		return b.ctrl.EndReport(msg.From.ID, time.Now())
	default:
		return []string{"Unknown command. Use /start for the list of commands."}
	}
}
