package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Error taxonomy. Loader and engine failures wrap exactly one of these
// sentinels so callers can branch with errors.Is and map each kind to its
// own user-facing message.
var (
	// Loader errors.
	ErrFileMissing = errors.New("backing file missing")
	ErrParse       = errors.New("backing file not parseable")
	ErrSchema      = errors.New("backing file schema invalid")

	// Engine errors. NoMatchingRows is a reportable empty-result state,
	// not a hard failure; the dispatcher decides how to present it.
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNoMatchingRows    = errors.New("no matching rows")

	ErrInternal = errors.New("internal error")
)

type (
	// Date is a calendar date; the time component is always midnight UTC.
	Date struct {
		time.Time
	}

	// Record is one row of the backing table. DateValid is false when the
	// date cell did not parse; such rows stay in the table (the other
	// columns are still summable) but are excluded from period filters.
	Record struct {
		Date      Date
		DateValid bool
		RawDate   string
		Project   string
		NetProfit Money
		Proceeds  Money
		Expenses  Money
	}
)

// dateLayouts are tried in order. Day-first layouts come first because the
// backing file is maintained with dd.mm.yyyy dates.
var dateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02",
}

// ParseDate parses a calendar date from one of the accepted layouts, or from
// a bare spreadsheet serial number (days since 1899-12-30, the convention
// xlsx files use for date cells stored as numbers).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("%w: empty value", ErrInvalidDateFormat)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t.UTC()}, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
		t := epoch.AddDate(0, 0, int(serial))
		return Date{Time: t}, nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Within reports whether d falls inside [start, end], inclusive on both
// ends. A reversed range matches nothing.
func (d Date) Within(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

// String renders the date in the dd.mm.yyyy form users type.
func (d Date) String() string {
	return d.Format("02.01.2006")
}
