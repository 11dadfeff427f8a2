// Package dataset reads the backing .xlsx file into an immutable in-memory
// table and validates its schema. Loading is a read-to-completion snapshot
// of whatever file content exists at call time; a concurrent refresh
// replaces the file atomically, so a load sees either the old or the new
// content, never a mix.
package dataset

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"finbot/internal/core"
)

// Loader produces a fresh Table from the backing file.
type Loader interface {
	Load(ctx context.Context) (*Table, error)
}

// FileLoader reads an .xlsx file from a fixed local path. It never retries;
// callers decide whether to trigger a refresh and load again.
type FileLoader struct {
	path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Load reads and validates the backing file. Failure modes:
// core.ErrFileMissing when the path does not exist, core.ErrParse when the
// file is not readable tabular data or a numeric cell is not a number, and
// core.ErrSchema when a required column is absent. A malformed date cell is
// not a load error: the row is kept with DateValid unset and period filters
// skip it.
func (l *FileLoader) Load(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(l.path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrFileMissing, l.path)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", core.ErrInternal, l.path, err)
	}

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", core.ErrParse, l.path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", core.ErrParse, l.path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", core.ErrParse, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", core.ErrParse, l.path)
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]core.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		rec, err := parseRecord(columns, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}

	return &Table{records: records}, nil
}

// mapColumns resolves the header row into column indexes, demanding every
// required column. Header names are fixed and case-sensitive.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing column(s) %s", core.ErrSchema, strings.Join(missing, ", "))
	}
	return columns, nil
}

func parseRecord(columns map[string]int, row []string) (core.Record, error) {
	rec := core.Record{
		RawDate: cell(row, columns[ColDate]),
		Project: strings.TrimSpace(cell(row, columns[ColProject])),
	}

	if d, err := core.ParseDate(rec.RawDate); err == nil {
		rec.Date = d
		rec.DateValid = true
	}

	for _, col := range []struct {
		name string
		dst  *core.Money
	}{
		{ColNetProfit, &rec.NetProfit},
		{ColProceeds, &rec.Proceeds},
		{ColExpenses, &rec.Expenses},
	} {
		cents, err := core.ParseAmountToCents(cell(row, columns[col.name]))
		if err != nil {
			return core.Record{}, fmt.Errorf("column %q: %w", col.name, err)
		}
		dst := col.dst
		dst.Cents = cents
	}

	return rec, nil
}

// cell returns the trimmed value at idx; rows shorter than the header are
// padded with empties by construction here.
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
