package date

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCompare(t *testing.T) {
	testCases := []struct {
		a, b Date
		want int
	}{
		{New(2026, time.March, 1), New(2026, time.March, 1), 0},
		{New(2025, time.December, 31), New(2026, time.January, 1), -1},
		{New(2026, time.April, 1), New(2026, time.March, 31), 1},
		{New(2026, time.March, 2), New(2026, time.March, 10), -1},
		{Date{}, New(2026, time.March, 10), -1},
	}
	for _, tc := range testCases {
		if got := tc.a.Compare(tc.b); got != tc.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
		if got := tc.a.Before(tc.b); got != (tc.want < 0) {
			t.Errorf("%v.Before(%v) = %v", tc.a, tc.b, got)
		}
	}
}

func TestNew_Normalizes(t *testing.T) {
	if got, want := New(2026, time.February, 30), New(2026, time.March, 2); got != want {
		t.Errorf("New(2026, 2, 30) = %v, want %v", got, want)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2026-01-01", want: New(2026, time.January, 1)},
		{in: "2026-3-5", want: New(2026, time.March, 5)},
		{in: "2026/03/05", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestAddMonths(t *testing.T) {
	testCases := []struct {
		name string
		in   Date
		n    int
		want Date
	}{
		{"plain", New(2026, time.January, 1), 1, New(2026, time.February, 1)},
		{"year boundary", New(2026, time.December, 15), 1, New(2027, time.January, 15)},
		{"overflow", New(2026, time.January, 31), 1, New(2026, time.March, 3)},
		{"backwards", New(2026, time.March, 1), -3, New(2025, time.December, 1)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.AddMonths(tc.n); got != tc.want {
				t.Errorf("%v.AddMonths(%d) = %v, want %v", tc.in, tc.n, got, tc.want)
			}
		})
	}
}

func TestAddYears_LeapDay(t *testing.T) {
	got := New(2028, time.February, 29).AddYears(1)
	if want := New(2029, time.March, 1); got != want {
		t.Errorf("AddYears(1) = %v, want %v", got, want)
	}
}

func TestSub(t *testing.T) {
	a := New(2025, time.January, 1)
	b := New(2026, time.January, 1)
	if got := b.Sub(a); got != 365 {
		t.Errorf("Sub() = %d, want 365", got)
	}
	if got := a.Sub(b); got != -365 {
		t.Errorf("Sub() = %d, want -365", got)
	}
}

func TestDateJSON(t *testing.T) {
	type row struct {
		On  Date `json:"on"`
		Off Date `json:"off"`
	}
	in := row{On: New(2026, time.April, 1)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"on":"2026-04-01","off":""}`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
	var out row
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out != in {
		t.Errorf("Unmarshal() = %+v, want %+v", out, in)
	}
}
