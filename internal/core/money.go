// Package core holds the domain values shared by the loader and the report
// engine: calendar dates, monetary amounts in integer cents, table records
// and the error taxonomy.
package core

import (
	"fmt"
	"strings"
	"unicode"
)

// Money is a monetary amount in integer cents (kopecks). Aggregation over
// cents is exact, so two queries against the same table always produce the
// same sums.
type Money struct {
	Cents int64
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Units returns the amount in whole currency units as a float64, for display
// only. Calculations stay in cents.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// ParseAmountToCents converts a decimal cell value to cents with half-up
// rounding on the third decimal place. Both dot (12.34) and comma (12,34)
// separators are accepted, as are a leading sign and spaces used as
// thousands separators. Negative amounts are valid: net profit can be a
// loss. An empty cell is zero, a missing value rather than a malformed one.
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	// Strip thousands separators (regular and non-breaking spaces).
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: not a number: %q", ErrParse, s)
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("%w: not a number: %q", ErrParse, s)
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, fmt.Errorf("%w: not a number: %q", ErrParse, s)
		}
	}

	var cents int64
	const maxSafe = (1<<63 - 1) / 100
	for _, r := range intPart {
		d := int64(r - '0')
		if cents > (maxSafe-d)/10 {
			return 0, fmt.Errorf("%w: amount out of range: %q", ErrParse, s)
		}
		cents = cents*10 + d
	}
	cents *= 100

	if len(fracPart) > 0 {
		cents += int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			cents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				cents++
			}
		}
	}

	if neg {
		cents = -cents
	}
	return cents, nil
}
