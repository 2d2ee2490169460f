// Package date provides calendar types with no time-of-day component: Date, Month and Range,
// plus the calendar arithmetic used by budgets and recurring schedules.
package date

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// Layout is the ISO-8601 layout dates are written with.
	Layout = "2006-01-02"
	// lenientLayout also reads single digit months and days, like 2026-3-1.
	lenientLayout = "2006-1-2"
)

// Date is a calendar day. The zero Date means "no date".
type Date struct {
	y int
	m time.Month
	d int
}

// New returns the date of year, month and day, normalized like time.Date:
// New(2026, 2, 30) is 2026-03-02.
func New(year int, month time.Month, day int) Date {
	y, m, d := midnight(year, month, day).Date()
	return Date{y, m, d}
}

func midnight(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func (d Date) time() time.Time { return midnight(d.y, d.m, d.d) }

// Today returns the current local date.
func Today() Date { return New(time.Now().Date()) }

func (d Date) Year() int          { return d.y }
func (d Date) Month() time.Month  { return d.m }
func (d Date) Day() int           { return d.d }
func (d Date) IsZero() bool       { return d == Date{} }
func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }
func (d Date) After(x Date) bool  { return d.Compare(x) > 0 }

// Compare returns -1, 0 or +1 when d is before, on or after x.
func (d Date) Compare(x Date) int {
	switch {
	case d.y != x.y:
		return cmpInt(d.y, x.y)
	case d.m != x.m:
		return cmpInt(int(d.m), int(x.m))
	}
	return cmpInt(d.d, x.d)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Add returns the date n days later, or earlier when n is negative.
func (d Date) Add(n int) Date { return New(d.y, d.m, d.d+n) }

// AddMonths returns the date n calendar months later.
//
// Like time.AddDate, a day that does not exist in the target month overflows
// into the next one: 2026-01-31 plus one month is 2026-03-03.
func (d Date) AddMonths(n int) Date { return New(d.y, d.m+time.Month(n), d.d) }

// AddYears returns the date n calendar years later, with the same overflow rule as AddMonths.
func (d Date) AddYears(n int) Date { return New(d.y+n, d.m, d.d) }

// Sub returns the number of days from x to d.
func (d Date) Sub(x Date) int { return int(d.time().Sub(x.time()) / (24 * time.Hour)) }

// String returns the date as YYYY-MM-DD, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(Layout)
}

// Parse reads a YYYY-MM-DD date. Single digit months and days are accepted.
func Parse(s string) (Date, error) {
	t, err := time.Parse(lenientLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return New(t.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MarshalJSON writes the date as a JSON string, "" for the zero Date.
func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// UnmarshalJSON reads a JSON string date. "" is the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
