package core

// Reports carry the computed sums together with the parameters that
// produced them, so any answer can be reproduced from the same table.
type (
	// AggregateReport sums every numeric column over the whole table.
	AggregateReport struct {
		NetProfit Money
		Proceeds  Money
		Expenses  Money
		Rows      int
	}

	// PeriodReport sums net profit over rows dated within [Start, End].
	// SkippedRows counts rows whose date cell could not be parsed; they
	// are excluded from the filter but never fail the query.
	PeriodReport struct {
		Start       Date
		End         Date
		NetProfit   Money
		MatchedRows int
		SkippedRows int
	}

	// ProjectReport sums net profit over rows matching a project name.
	ProjectReport struct {
		Project     string
		NetProfit   Money
		MatchedRows int
	}
)
