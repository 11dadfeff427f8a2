// Package report computes aggregate financial metrics over the backing
// table. Every query loads a fresh table through the configured loader, so
// the engine holds no mutable state between calls and independent queries
// can run concurrently without locking.
package report

import (
	"context"
	"fmt"
	"strings"

	"finbot/internal/core"
	"finbot/internal/dataset"
	applog "finbot/internal/log"
)

// Engine answers the three query operations. Loader errors propagate
// unchanged; the engine never retries a load.
type Engine struct {
	loader dataset.Loader
	logger *applog.Logger
}

func NewEngine(loader dataset.Loader, logger *applog.Logger) *Engine {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Engine{
		loader: loader,
		logger: logger.WithComponent(applog.ComponentEngine),
	}
}

// Aggregate sums net profit, proceeds and expenses across all rows. An
// empty table is a valid, reportable state: all sums are zero.
func (e *Engine) Aggregate(ctx context.Context) (core.AggregateReport, error) {
	table, err := e.loader.Load(ctx)
	if err != nil {
		return core.AggregateReport{}, err
	}

	var rep core.AggregateReport
	for _, rec := range table.Records() {
		rep.NetProfit = rep.NetProfit.Add(rec.NetProfit)
		rep.Proceeds = rep.Proceeds.Add(rec.Proceeds)
		rep.Expenses = rep.Expenses.Add(rec.Expenses)
	}
	rep.Rows = table.Len()

	e.logger.InfoContext(ctx, "Aggregate report computed", applog.FieldRows, rep.Rows)
	return rep, nil
}

// ByPeriod sums net profit over rows dated within [start, end], both ends
// inclusive. The arguments are parsed with the same tolerant layouts as the
// table itself; an unparseable argument is core.ErrInvalidDateFormat. A
// reversed range is defined behavior: it matches nothing and surfaces as
// core.ErrNoMatchingRows, like any other empty result. Rows whose date cell
// did not parse are skipped and counted, never fatal to the query.
func (e *Engine) ByPeriod(ctx context.Context, start, end string) (core.PeriodReport, error) {
	from, err := core.ParseDate(start)
	if err != nil {
		return core.PeriodReport{}, fmt.Errorf("start: %w", err)
	}
	to, err := core.ParseDate(end)
	if err != nil {
		return core.PeriodReport{}, fmt.Errorf("end: %w", err)
	}

	table, err := e.loader.Load(ctx)
	if err != nil {
		return core.PeriodReport{}, err
	}

	rep := core.PeriodReport{Start: from, End: to}
	for _, rec := range table.Records() {
		if !rec.DateValid {
			rep.SkippedRows++
			continue
		}
		if !rec.Date.Within(from, to) {
			continue
		}
		rep.NetProfit = rep.NetProfit.Add(rec.NetProfit)
		rep.MatchedRows++
	}

	if rep.SkippedRows > 0 {
		e.logger.WarnContext(ctx, "Rows with malformed dates excluded from period report",
			applog.FieldSkipped, rep.SkippedRows,
			applog.FieldPeriod, from.String()+" - "+to.String())
	}
	if rep.MatchedRows == 0 {
		return rep, fmt.Errorf("%w: period %s - %s", core.ErrNoMatchingRows, from, to)
	}

	e.logger.InfoContext(ctx, "Period report computed",
		applog.FieldPeriod, from.String()+" - "+to.String(),
		applog.FieldRows, rep.MatchedRows,
		applog.FieldSkipped, rep.SkippedRows)
	return rep, nil
}

// ByProject sums net profit over rows whose project matches name. The match
// is case-insensitive and exact after trimming surrounding whitespace on
// both sides of the comparison; it is never a substring match.
func (e *Engine) ByProject(ctx context.Context, name string) (core.ProjectReport, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ProjectReport{}, fmt.Errorf("%w: empty project name", core.ErrInvalidArgument)
	}

	table, err := e.loader.Load(ctx)
	if err != nil {
		return core.ProjectReport{}, err
	}

	rep := core.ProjectReport{Project: name}
	for _, rec := range table.Records() {
		if !strings.EqualFold(rec.Project, name) {
			continue
		}
		rep.NetProfit = rep.NetProfit.Add(rec.NetProfit)
		rep.MatchedRows++
	}

	if rep.MatchedRows == 0 {
		return rep, fmt.Errorf("%w: project %q", core.ErrNoMatchingRows, name)
	}

	e.logger.InfoContext(ctx, "Project report computed",
		applog.FieldProject, name,
		applog.FieldRows, rep.MatchedRows)
	return rep, nil
}
