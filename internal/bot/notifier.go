package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	applog "finbot/internal/log"
	"finbot/internal/worker"
)

// Ensure interface conformance
var _ worker.Notifier = (*Notifier)(nil)

// Notifier sends refresh outcomes to the requesting chat. The worker uses
// it to close the loop on queued refreshes, since it has no dispatch loop
// of its own.
type Notifier struct {
	api    *telego.Bot
	logger *applog.Logger
}

func NewNotifier(token string, logger *applog.Logger) (*Notifier, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	api, err := telego.NewBot(token, telego.WithDefaultLogger(false, true))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Notifier{
		api:    api,
		logger: logger.WithComponent(applog.ComponentBot),
	}, nil
}

// NotifyRefreshOutcome tells the chat whether its refresh succeeded,
// using the same messages the in-process refresh path replies with.
func (n *Notifier) NotifyRefreshOutcome(ctx context.Context, chatID int64, refreshErr error) error {
	text := renderRefresh(false, refreshErr)
	if _, err := n.api.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		return fmt.Errorf("send refresh outcome: %w", err)
	}
	n.logger.InfoContext(ctx, "Refresh outcome sent", applog.FieldChatID, chatID)
	return nil
}
