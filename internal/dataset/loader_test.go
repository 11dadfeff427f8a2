package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"finbot/internal/core"
)

var defaultHeader = []interface{}{ColDate, ColProject, ColNetProfit, ColProceeds, ColExpenses}

// writeXLSX builds a backing-file fixture in a temp directory.
func writeXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "data.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	return path
}

func TestFileLoader_Load(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		defaultHeader,
		{"05.01.2024", "Alpha", "100", "150", "50"},
		{"10.02.2024", "beta", "200,5", "300", "100"},
	})

	table, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("rows = %d, want 2", table.Len())
	}

	recs := table.Records()
	if recs[0].Project != "Alpha" || recs[1].Project != "beta" {
		t.Fatalf("unexpected projects: %q %q", recs[0].Project, recs[1].Project)
	}
	if !recs[0].DateValid || !recs[0].Date.Equal(core.NewDate(2024, 1, 5).Time) {
		t.Fatalf("row 1 date = %v (valid=%v)", recs[0].Date, recs[0].DateValid)
	}
	if recs[0].NetProfit.Cents != 10000 || recs[1].NetProfit.Cents != 20050 {
		t.Fatalf("net profit cents = %d, %d", recs[0].NetProfit.Cents, recs[1].NetProfit.Cents)
	}
}

func TestFileLoader_FileMissing(t *testing.T) {
	_, err := NewFileLoader(filepath.Join(t.TempDir(), "absent.xlsx")).Load(context.Background())
	if !errors.Is(err, core.ErrFileMissing) {
		t.Fatalf("error = %v, want ErrFileMissing", err)
	}
}

func TestFileLoader_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	if err := os.WriteFile(path, []byte("definitely not a zip archive"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewFileLoader(path).Load(context.Background())
	if !errors.Is(err, core.ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}
}

func TestFileLoader_MissingColumn(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		{ColDate, ColProject, ColProceeds, ColExpenses}, // no net profit
		{"05.01.2024", "Alpha", "150", "50"},
	})
	_, err := NewFileLoader(path).Load(context.Background())
	if !errors.Is(err, core.ErrSchema) {
		t.Fatalf("error = %v, want ErrSchema", err)
	}
}

func TestFileLoader_NonNumericCell(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		defaultHeader,
		{"05.01.2024", "Alpha", "many", "150", "50"},
	})
	_, err := NewFileLoader(path).Load(context.Background())
	if !errors.Is(err, core.ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}
}

func TestFileLoader_MalformedDateIsNotFatal(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		defaultHeader,
		{"05.01.2024", "Alpha", "100", "150", "50"},
		{"oops", "Alpha", "10", "20", "5"},
	})
	table, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("rows = %d, want 2", table.Len())
	}
	recs := table.Records()
	if recs[1].DateValid {
		t.Fatalf("malformed date must leave DateValid unset")
	}
	if recs[1].RawDate != "oops" {
		t.Fatalf("raw date = %q, want oops", recs[1].RawDate)
	}
}

func TestFileLoader_EmptyTable(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{defaultHeader})
	table, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("rows = %d, want 0", table.Len())
	}
}

func TestFileLoader_SkipsBlankRows(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		defaultHeader,
		{"", "", "", "", ""},
		{"05.01.2024", "Alpha", "100", "150", "50"},
	})
	table, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("rows = %d, want 1", table.Len())
	}
}

// countingLoader tracks how many times the wrapped loader actually ran.
type countingLoader struct {
	inner Loader
	loads int
}

func (c *countingLoader) Load(ctx context.Context) (*Table, error) {
	c.loads++
	return c.inner.Load(ctx)
}

func TestCachingLoader_HitsUntilFileChanges(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		defaultHeader,
		{"05.01.2024", "Alpha", "100", "150", "50"},
	})
	counting := &countingLoader{inner: NewFileLoader(path)}
	loader := NewCachingLoader(counting, path, time.Minute, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := loader.Load(ctx); err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
	}
	if counting.loads != 1 {
		t.Fatalf("loads = %d, want 1 (cache must serve repeats)", counting.loads)
	}

	// A replaced file changes size/mtime and must miss the cache.
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		defaultHeader,
		{"05.01.2024", "Alpha", "100", "150", "50"},
		{"06.01.2024", "Alpha", "1", "2", "1"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("replace fixture: %v", err)
	}
	now := time.Now()
	if err := os.Chtimes(path, now, now.Add(time.Second)); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	table, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("load after replace: %v", err)
	}
	if counting.loads != 2 {
		t.Fatalf("loads = %d, want 2 (replace must invalidate)", counting.loads)
	}
	if table.Len() != 2 {
		t.Fatalf("rows after replace = %d, want 2", table.Len())
	}
}

func TestCachingLoader_MissingFileDelegates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.xlsx")
	loader := NewCachingLoader(NewFileLoader(path), path, time.Minute, nil)
	_, err := loader.Load(context.Background())
	if !errors.Is(err, core.ErrFileMissing) {
		t.Fatalf("error = %v, want ErrFileMissing", err)
	}
}
