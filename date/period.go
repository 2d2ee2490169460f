package date

import (
	"fmt"
	"strings"
)

// Period is the unit a recurring schedule advances by.
//
// It is a string so that a value read from storage that this package does not
// know survives untouched; Next refuses it instead of guessing.
type Period string

const (
	Daily    Period = "daily"
	Weekly   Period = "weekly"
	Biweekly Period = "biweekly"
	Monthly  Period = "monthly"
	Yearly   Period = "yearly"
)

// Periods lists the known periods.
var Periods = []Period{Daily, Weekly, Biweekly, Monthly, Yearly}

func (p Period) String() string { return string(p) }

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case Daily, Weekly, Biweekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// Next returns the date one period after d.
func (p Period) Next(d Date) (Date, error) {
	switch p {
	case Daily:
		return d.Add(1), nil
	case Weekly:
		return d.Add(7), nil
	case Biweekly:
		return d.Add(14), nil
	case Monthly:
		return d.AddMonths(1), nil
	case Yearly:
		return d.AddYears(1), nil
	default:
		return d, fmt.Errorf("unknown period %q", string(p))
	}
}

// ParsePeriod parses a period name, accepting the short forms day, week, month and year.
func ParsePeriod(p string) (Period, error) {
	p = strings.ToLower(p)
	switch p {
	case "daily", "day":
		return Daily, nil
	case "weekly", "week":
		return Weekly, nil
	case "biweekly", "fortnightly":
		return Biweekly, nil
	case "monthly", "month":
		return Monthly, nil
	case "yearly", "year", "annual":
		return Yearly, nil
	default:
		return Period(p), fmt.Errorf("unknown period %s", p)
	}
}
