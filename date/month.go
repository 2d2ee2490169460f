package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthFormat is the format used to represent a calendar month.
const MonthFormat = "2006-01"

// Month is a calendar month, the unit of budget allocation.
//
// The zero Month is used as "no month".
type Month struct {
	y int
	m time.Month
}

// NewMonth returns a normalized Month.
func NewMonth(year int, month time.Month) Month {
	d := New(year, month, 1)
	return Month{d.y, d.m}
}

// MonthOf returns the month containing d.
func MonthOf(d Date) Month { return Month{d.y, d.m} }

// ThisMonth returns the current month.
func ThisMonth() Month { return MonthOf(Today()) }

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(str string) (Month, error) {
	on, err := time.Parse("2006-1", str)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q want format %q: %w", str, MonthFormat, err)
	}
	return NewMonth(on.Year(), on.Month()), nil
}

// MustParseMonth is like ParseMonth but panics on error.
func MustParseMonth(str string) Month {
	m, err := ParseMonth(str)
	if err != nil {
		panic(err.Error())
	}
	return m
}

func (m Month) Year() int            { return m.y }
func (m Month) Month() time.Month    { return m.m }
func (m Month) IsZero() bool         { return m == Month{} }
func (m Month) First() Date          { return New(m.y, m.m, 1) }
func (m Month) Last() Date           { return New(m.y, m.m+1, 0) }
func (m Month) Range() Range         { return Range{From: m.First(), To: m.Last()} }
func (m Month) Contains(d Date) bool { return MonthOf(d) == m }

// Add returns the month n months later (n may be negative).
func (m Month) Add(n int) Month { return NewMonth(m.y, m.m+time.Month(n)) }

// Prev returns the previous month.
func (m Month) Prev() Month { return m.Add(-1) }

// Next returns the next month.
func (m Month) Next() Month { return m.Add(1) }

// Before reports whether m is strictly before x.
func (m Month) Before(x Month) bool {
	if m.y != x.y {
		return m.y < x.y
	}
	return m.m < x.m
}

// After reports whether m is strictly after x.
func (m Month) After(x Month) bool { return x.Before(m) }

func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.y, m.m)
}

func (m Month) MarshalJSON() ([]byte, error) {
	str := m.String()
	return json.Marshal(&str)
}

func (m *Month) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	if str == "" {
		*m = Month{}
		return nil
	}
	v, err := ParseMonth(str)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

var _ json.Marshaler = (*Month)(nil)
var _ json.Unmarshaler = (*Month)(nil)
