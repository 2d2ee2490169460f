package finance

import (
	"errors"
	"testing"
)

func TestNewTransferPair(t *testing.T) {
	from := Transaction{
		ID:                "t1",
		AccountID:         "checking",
		TransferAccountID: "savings",
		CategoryID:        "ignored-on-mirror",
		Date:              d("2026-02-01"),
		Amount:            USD(-200),
		Memo:              "rainy day",
	}
	pair, err := NewTransferPair(from, "t2")
	if err != nil {
		t.Fatalf("NewTransferPair() error = %v", err)
	}
	if err := pair.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	to := pair.To
	if to.AccountID != "savings" || to.TransferAccountID != "checking" {
		t.Errorf("mirror accounts = %s -> %s, want savings -> checking", to.AccountID, to.TransferAccountID)
	}
	if !to.Amount.Equal(USD(200)) {
		t.Errorf("mirror amount = %s, want 200.00", to.Amount)
	}
	if to.CategoryID != "" {
		t.Errorf("mirror category = %q, want none", to.CategoryID)
	}
	if to.Payee != "Transfer" || to.Memo != "rainy day" {
		t.Errorf("mirror payee, memo = %q, %q", to.Payee, to.Memo)
	}
	if pair.From.MirrorID != "t2" || to.MirrorID != "t1" {
		t.Errorf("mirror ids = %q, %q, want t2, t1", pair.From.MirrorID, to.MirrorID)
	}
	if !Sum(pair.From.Amount, to.Amount).IsZero() {
		t.Errorf("a transfer pair must be net zero")
	}
}

func TestNewTransferPair_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		tx       Transaction
		mirrorID string
	}{
		{"not a transfer", Transaction{ID: "t1", AccountID: "a", Date: d("2026-01-01")}, "t2"},
		{"same account", Transaction{ID: "t1", AccountID: "a", TransferAccountID: "a", Date: d("2026-01-01")}, "t2"},
		{"same id", Transaction{ID: "t1", AccountID: "a", TransferAccountID: "b", Date: d("2026-01-01")}, "t1"},
		{"no date", Transaction{ID: "t1", AccountID: "a", TransferAccountID: "b"}, "t2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransferPair(tt.tx, tt.mirrorID)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("NewTransferPair() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestTransferPair_ValidateMismatch(t *testing.T) {
	pair, err := NewTransferPair(Transaction{ID: "t1", AccountID: "a", TransferAccountID: "b", Date: d("2026-01-01"), Amount: USD(10)}, "t2")
	if err != nil {
		t.Fatalf("NewTransferPair() error = %v", err)
	}
	pair.To.Amount = USD(-9)
	if err := pair.Validate(); err == nil {
		t.Errorf("Validate() of a pair that does not cancel: want error")
	}
}
