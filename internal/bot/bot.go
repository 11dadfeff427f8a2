// Package bot is the Telegram dispatcher: it receives commands over long
// polling, calls exactly one report or refresh operation per request, and
// renders the result (or the error kind) as a localized message.
package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	applog "finbot/internal/log"
	"finbot/internal/services"
)

// Bot runs the Telegram command loop over the report service.
type Bot struct {
	api     *telego.Bot
	svc     *services.ReportService
	limiter *Limiter
	logger  *applog.Logger
}

func New(token string, svc *services.ReportService, limiter *Limiter, logger *applog.Logger) (*Bot, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	api, err := telego.NewBot(token, telego.WithDefaultLogger(false, true))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Bot{
		api:     api,
		svc:     svc,
		limiter: limiter,
		logger:  logger.WithComponent(applog.ComponentBot),
	}, nil
}

// Run consumes updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	updates, err := b.api.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	b.logger.InfoContext(ctx, "Bot started")
	for update := range updates {
		b.handleUpdate(ctx, update)
	}
	return ctx.Err()
}

func (b *Bot) handleUpdate(ctx context.Context, update telego.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	cmd, args, ok := parseCommand(msg.Text)
	if !ok {
		return
	}
	chatID := msg.Chat.ID

	if b.limiter != nil && !b.limiter.Allow(chatID) {
		b.logger.WarnContext(ctx, "Rate limit exceeded",
			applog.FieldChatID, chatID, applog.FieldCommand, cmd)
		b.reply(ctx, chatID, msgRateLimited)
		return
	}

	b.logger.InfoContext(ctx, "Dispatching command",
		applog.FieldChatID, chatID,
		applog.FieldCommand, cmd,
		applog.FieldArgs, len(args))

	b.reply(ctx, chatID, b.dispatch(ctx, chatID, cmd, args))
}

// dispatch maps one command to one operation and renders the outcome.
func (b *Bot) dispatch(ctx context.Context, chatID int64, cmd string, args []string) string {
	switch cmd {
	case "start", "help":
		return b.renderStart(ctx)

	case "update":
		queued, err := b.svc.RequestRefresh(ctx, chatID)
		return renderRefresh(queued, err)

	case "finance":
		rep, err := b.svc.Aggregate(ctx, chatID)
		if err != nil {
			return renderError(err, nil)
		}
		return renderAggregate(rep)

	case "period":
		if len(args) != 2 {
			return msgPeriodUsage
		}
		rep, err := b.svc.ByPeriod(ctx, chatID, args[0], args[1])
		if err != nil {
			return renderError(err, args)
		}
		return renderPeriod(rep)

	case "project":
		name := joinArgs(args)
		rep, err := b.svc.ByProject(ctx, chatID, name)
		if err != nil {
			return renderError(err, []string{name})
		}
		return renderProject(rep)

	case "history":
		entries, err := b.svc.RecentQueries(ctx, chatID, historyLimit)
		if err != nil {
			return renderError(err, nil)
		}
		return renderHistory(entries)

	default:
		return msgUnknownCommand
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if text == "" {
		return
	}
	if _, err := b.api.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		b.logger.ErrorContext(ctx, "Failed to send reply",
			applog.FieldChatID, chatID, applog.FieldError, err)
	}
}
