package finance

import (
	"encoding/json"
	"testing"
)

func TestMoney_Format(t *testing.T) {
	tests := []struct {
		value    Money
		currency string
		want     string
	}{
		{USD(1234.5), "USD", "$1,234.50"},
		{USD(-12.345), "USD", "-$12.35"},
		{USD(12.5), "", "12.50"},
		{USD(12.5), "XYZ", "12.50"},
	}
	for _, tt := range tests {
		if got := tt.value.Format(tt.currency); got != tt.want {
			t.Errorf("%s.Format(%q) = %q, want %q", tt.value, tt.currency, got, tt.want)
		}
	}
}

func TestMoney_ExactSum(t *testing.T) {
	// a tenth of a cent added a thousand times is exactly a dollar.
	var total Money
	for range 1000 {
		total = total.Add(USD(0.001))
	}
	if !total.Equal(USD(1)) {
		t.Errorf("sum = %s, want 1.00", total)
	}
	if got := Sum(USD(0.1), USD(0.2)); !got.Equal(USD(0.3)) {
		t.Errorf("Sum(0.1, 0.2) = %v, want 0.3", got.Decimal())
	}
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{USD(-5.5)})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(data), `{"amount":-5.50}`; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
	var back struct {
		Amount Money `json:"amount"`
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back.Amount.Equal(USD(-5.5)) {
		t.Errorf("Unmarshal() = %s, want -5.50", back.Amount)
	}
}

func TestMoney_SignedString(t *testing.T) {
	tests := map[string]Money{
		"+1.00": USD(1),
		"-1.00": USD(-1),
		"-":     USD(0.001),
	}
	for want, m := range tests {
		if got := m.SignedString(); got != want {
			t.Errorf("SignedString(%v) = %q, want %q", m.Decimal(), got, want)
		}
	}
}
