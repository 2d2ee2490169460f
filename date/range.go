package date

import "fmt"

// Range represents a range of dates, boundaries included.
//
// A zero From or To leaves that side unbounded.
type Range struct{ From, To Date }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool {
	if !r.From.IsZero() && date.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && date.After(r.To) {
		return false
	}
	return true
}

// Months returns every calendar month touched by the range, in order.
//
// Both boundaries must be set.
func (r Range) Months() []Month {
	if r.From.IsZero() || r.To.IsZero() || r.To.Before(r.From) {
		return nil
	}
	var months []Month
	for m := MonthOf(r.From); !m.After(MonthOf(r.To)); m = m.Next() {
		months = append(months, m)
	}
	return months
}

// Identifier compute a unique identifier for the Range.
func (r Range) Identifier() string {
	if !r.From.IsZero() && r.From.Day() == 1 && r.To == MonthOf(r.From).Last() {
		return MonthOf(r.From).String()
	}
	return fmt.Sprintf("%s_%s", r.From, r.To)
}
