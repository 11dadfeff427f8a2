// Package services wires the report engine to its collaborators: the
// refresh path (AMQP queue or in-process download) and the sqlite audit
// log. Both collaborators are optional; a nil client degrades to the
// simpler behavior instead of failing the query.
package services

import (
	"context"
	"errors"
	"fmt"

	"finbot/internal/amqp"
	"finbot/internal/core"
	"finbot/internal/fetch"
	applog "finbot/internal/log"
	"finbot/internal/report"
	"finbot/internal/storage"
)

// Commands recorded in the audit log.
const (
	CommandFinance = "finance"
	CommandPeriod  = "period"
	CommandProject = "project"
)

// ReportService answers queries and triggers refreshes on behalf of the
// dispatcher.
type ReportService struct {
	engine     *report.Engine
	refresher  *fetch.Refresher
	amqpClient *amqp.Client
	audit      *storage.SQLiteRepository
	logger     *applog.Logger
}

func NewReportService(
	engine *report.Engine,
	refresher *fetch.Refresher,
	amqpClient *amqp.Client,
	audit *storage.SQLiteRepository,
	logger *applog.Logger,
) *ReportService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ReportService{
		engine:     engine,
		refresher:  refresher,
		amqpClient: amqpClient,
		audit:      audit,
		logger:     logger.WithComponent(applog.ComponentApp),
	}
}

// Aggregate answers the whole-table report and audits the outcome.
func (s *ReportService) Aggregate(ctx context.Context, chatID int64) (core.AggregateReport, error) {
	rep, err := s.engine.Aggregate(ctx)
	s.recordQuery(ctx, chatID, CommandFinance, "", rep.NetProfit.Cents, err)
	return rep, err
}

// ByPeriod answers the date-range report and audits the outcome.
func (s *ReportService) ByPeriod(ctx context.Context, chatID int64, start, end string) (core.PeriodReport, error) {
	rep, err := s.engine.ByPeriod(ctx, start, end)
	s.recordQuery(ctx, chatID, CommandPeriod, start+" "+end, rep.NetProfit.Cents, err)
	return rep, err
}

// ByProject answers the project report and audits the outcome.
func (s *ReportService) ByProject(ctx context.Context, chatID int64, name string) (core.ProjectReport, error) {
	rep, err := s.engine.ByProject(ctx, name)
	s.recordQuery(ctx, chatID, CommandProject, name, rep.NetProfit.Cents, err)
	return rep, err
}

// RequestRefresh starts a dataset refresh. With AMQP configured the job is
// queued for the worker and queued=true is returned; otherwise the
// download runs in-process and queued=false means the file has already
// been replaced when the call returns.
func (s *ReportService) RequestRefresh(ctx context.Context, chatID int64) (queued bool, err error) {
	if s.amqpClient != nil {
		if err := s.amqpClient.PublishRefreshRequest(ctx, chatID); err != nil {
			return false, fmt.Errorf("queue refresh: %w", err)
		}
		return true, nil
	}

	if s.refresher == nil {
		return false, fmt.Errorf("%w: no refresh source configured", core.ErrInternal)
	}

	bytes, err := s.refresher.Refresh(ctx)
	s.recordRefresh(ctx, chatID, bytes, err)
	if err != nil {
		return false, err
	}
	return false, nil
}

// LastRefresh reports the most recent successful refresh from the audit
// log. Without an audit store there is nothing to report.
func (s *ReportService) LastRefresh(ctx context.Context) (storage.RefreshLogEntry, bool) {
	if s.audit == nil {
		return storage.RefreshLogEntry{}, false
	}
	entry, err := s.audit.LastRefresh(ctx)
	if err != nil {
		return storage.RefreshLogEntry{}, false
	}
	return entry, true
}

// RecentQueries lists the chat's latest audited queries, newest first.
// Without an audit store the history is empty.
func (s *ReportService) RecentQueries(ctx context.Context, chatID int64, limit int) ([]storage.QueryLogEntry, error) {
	if s.audit == nil {
		return nil, nil
	}
	return s.audit.RecentQueries(ctx, chatID, limit)
}

func (s *ReportService) recordQuery(ctx context.Context, chatID int64, command, params string, netProfitCents int64, queryErr error) {
	if s.audit == nil {
		return
	}
	entry := storage.QueryLogEntry{
		ChatID:         chatID,
		Command:        command,
		Params:         params,
		NetProfitCents: netProfitCents,
		Outcome:        outcomeFor(queryErr),
	}
	if err := s.audit.RecordQuery(ctx, entry); err != nil {
		// Audit is best-effort; the query result already stands.
		s.logger.ErrorContext(ctx, "Failed to record query",
			applog.FieldCommand, command, applog.FieldError, err)
	}
}

func (s *ReportService) recordRefresh(ctx context.Context, chatID, bytes int64, refreshErr error) {
	if s.audit == nil {
		return
	}
	status := "ok"
	if refreshErr != nil {
		status = "error"
	}
	entry := storage.RefreshLogEntry{
		ChatID: chatID,
		Source: s.refresher.Source(),
		Bytes:  bytes,
		Status: status,
	}
	if err := s.audit.RecordRefresh(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "Failed to record refresh", applog.FieldError, err)
	}
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return storage.OutcomeOK
	case errors.Is(err, core.ErrNoMatchingRows):
		return storage.OutcomeNoData
	case errors.Is(err, core.ErrInvalidDateFormat), errors.Is(err, core.ErrInvalidArgument):
		return storage.OutcomeBadArgs
	default:
		return storage.OutcomeError
	}
}

// Close releases the optional collaborators.
func (s *ReportService) Close() error {
	var errs []error

	if s.audit != nil {
		if err := s.audit.Close(); err != nil {
			errs = append(errs, fmt.Errorf("audit: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close report service: %v", errs)
	}

	return nil
}
