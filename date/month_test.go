package date

import (
	"testing"
	"time"
)

func TestMonth(t *testing.T) {
	m := MustParseMonth("2026-02")
	if got, want := m.First(), New(2026, time.February, 1); got != want {
		t.Errorf("First() = %v, want %v", got, want)
	}
	if got, want := m.Last(), New(2026, time.February, 28); got != want {
		t.Errorf("Last() = %v, want %v", got, want)
	}
	if got, want := m.Prev().String(), "2026-01"; got != want {
		t.Errorf("Prev() = %v, want %v", got, want)
	}
	if got, want := MustParseMonth("2026-01").Prev().String(), "2025-12"; got != want {
		t.Errorf("Prev() = %v, want %v", got, want)
	}
	if !m.Contains(New(2026, time.February, 14)) || m.Contains(New(2026, time.March, 1)) {
		t.Error("Contains() is wrong on month boundaries")
	}
	if !m.Before(m.Next()) || m.Before(m) || !m.After(m.Prev()) {
		t.Error("Before()/After() ordering is wrong")
	}
}

func TestRange_Months(t *testing.T) {
	r := Range{From: New(2025, time.November, 20), To: New(2026, time.February, 3)}
	got := r.Months()
	want := []string{"2025-11", "2025-12", "2026-01", "2026-02"}
	if len(got) != len(want) {
		t.Fatalf("Months() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("Months()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRange_Contains(t *testing.T) {
	open := Range{To: New(2026, time.January, 1)}
	if !open.Contains(New(1999, time.January, 1)) {
		t.Error("an unbounded From must contain early dates")
	}
	if open.Contains(New(2026, time.January, 2)) {
		t.Error("Contains() must honour To")
	}
}
