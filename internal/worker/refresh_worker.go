// Package worker consumes dataset refresh jobs and performs the actual
// download-and-replace, keeping slow network I/O out of the bot's dispatch
// loop.
package worker

import (
	"context"
	"fmt"

	"finbot/internal/amqp"
	"finbot/internal/fetch"
	applog "finbot/internal/log"
	"finbot/internal/storage"
)

// Notifier reports a finished refresh back to the chat that requested it.
type Notifier interface {
	NotifyRefreshOutcome(ctx context.Context, chatID int64, refreshErr error) error
}

// RefreshWorker replaces the backing file on request, records every
// attempt in the audit log and tells the requesting chat how it went.
type RefreshWorker struct {
	refresher *fetch.Refresher
	audit     *storage.SQLiteRepository
	notifier  Notifier
	logger    *applog.Logger
}

func NewRefreshWorker(refresher *fetch.Refresher, audit *storage.SQLiteRepository, notifier Notifier, logger *applog.Logger) *RefreshWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &RefreshWorker{
		refresher: refresher,
		audit:     audit,
		notifier:  notifier,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleRefreshRequest processes one queued refresh. Returning an error
// nacks the delivery so the queue redelivers it; the audit row and the
// chat notification happen either way.
func (w *RefreshWorker) HandleRefreshRequest(ctx context.Context, msg *amqp.RefreshRequestMessage) error {
	w.logger.InfoContext(ctx, "Processing refresh request",
		applog.FieldChatID, msg.ChatID,
		applog.FieldSource, w.refresher.Source())

	bytes, err := w.refresher.Refresh(ctx)
	w.record(ctx, msg.ChatID, bytes, err)
	w.notify(ctx, msg.ChatID, err)
	if err != nil {
		return fmt.Errorf("refresh dataset: %w", err)
	}

	w.logger.InfoContext(ctx, "Refresh complete",
		applog.FieldChatID, msg.ChatID,
		applog.FieldBytes, bytes)
	return nil
}

func (w *RefreshWorker) record(ctx context.Context, chatID, bytes int64, refreshErr error) {
	if w.audit == nil {
		return
	}
	status := "ok"
	if refreshErr != nil {
		status = "error"
	}
	entry := storage.RefreshLogEntry{
		ChatID: chatID,
		Source: w.refresher.Source(),
		Bytes:  bytes,
		Status: status,
	}
	if err := w.audit.RecordRefresh(ctx, entry); err != nil {
		w.logger.ErrorContext(ctx, "Failed to record refresh", applog.FieldError, err)
	}
}

// A delivered refresh must not be nacked because Telegram was unreachable,
// so notify failures are logged only.
func (w *RefreshWorker) notify(ctx context.Context, chatID int64, refreshErr error) {
	if w.notifier == nil {
		return
	}
	if err := w.notifier.NotifyRefreshOutcome(ctx, chatID, refreshErr); err != nil {
		w.logger.ErrorContext(ctx, "Failed to notify chat",
			applog.FieldChatID, chatID, applog.FieldError, err)
	}
}
