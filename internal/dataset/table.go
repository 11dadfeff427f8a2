package dataset

import "finbot/internal/core"

// Required column headers, matched case-sensitively against the first row
// of the backing file. These are the headers the spreadsheet is actually
// maintained with.
const (
	ColDate      = "Дата"
	ColProject   = "Проект"
	ColNetProfit = "Чистая прибыль"
	ColProceeds  = "Сумма к перечислению"
	ColExpenses  = "Расходы"
)

// RequiredColumns lists every header the schema check demands, in the order
// they are reported when missing.
var RequiredColumns = []string{ColDate, ColProject, ColNetProfit, ColProceeds, ColExpenses}

// Table is the in-memory snapshot of the backing file. It is immutable
// after Load: queries running concurrently against the same Table never
// observe a mutation.
type Table struct {
	records []core.Record
}

// NewTable builds a table directly from records, for in-memory fixtures.
func NewTable(records []core.Record) *Table {
	return &Table{records: records}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns the rows in file order. The slice is shared; callers
// must treat it as read-only.
func (t *Table) Records() []core.Record {
	return t.records
}
