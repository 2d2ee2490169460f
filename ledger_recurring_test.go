package finance

import (
	"errors"
	"sync"
	"testing"

	"github.com/etnz/finance/date"
)

func TestLedger_ProcessRecurring(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()
	a := mustOpen(t, l, "Checking", USD(0))
	rule, err := l.AddRecurringRule(ctx, RecurringRule{
		AccountID: a.ID,
		Type:      ExpenseRule,
		Amount:    USD(900),
		Payee:     "Landlord",
		Frequency: date.Monthly,
		NextDate:  d("2026-01-01"),
	})
	if err != nil {
		t.Fatalf("AddRecurringRule() error = %v", err)
	}
	if rule.Status != Active {
		t.Errorf("status = %s, want active by default", rule.Status)
	}

	pass, err := l.ProcessRecurring(ctx, d("2026-03-15"))
	if err != nil {
		t.Fatalf("ProcessRecurring() error = %v", err)
	}
	if pass.Created() != 3 {
		t.Errorf("created %d transactions, want 3", pass.Created())
	}
	got, _ := store.RecurringRule(ctx, rule.ID)
	if got.NextDate != d("2026-04-01") {
		t.Errorf("next date = %s, want 2026-04-01", got.NextDate)
	}
	acc, _ := store.Account(ctx, a.ID)
	if !acc.Balance.Equal(USD(-2700)) {
		t.Errorf("balance = %s, want -2700.00", acc.Balance)
	}

	// a second pass on the same day is a no-op.
	pass, err = l.ProcessRecurring(ctx, d("2026-03-15"))
	if err != nil || pass.Created() != 0 {
		t.Errorf("second pass created %d, %v, want nothing", pass.Created(), err)
	}
	assertBalances(t, store)
}

func TestLedger_ProcessRecurring_Transfer(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()
	checking := mustOpen(t, l, "Checking", USD(1000))
	savings := mustOpen(t, l, "Savings", USD(0))
	if _, err := l.AddRecurringRule(ctx, RecurringRule{
		AccountID:         checking.ID,
		TransferAccountID: savings.ID,
		Type:              TransferRule,
		Amount:            USD(-100),
		Frequency:         date.Weekly,
		NextDate:          d("2026-03-01"),
	}); err != nil {
		t.Fatal(err)
	}
	pass, err := l.ProcessRecurring(ctx, d("2026-03-15"))
	if err != nil {
		t.Fatalf("ProcessRecurring() error = %v", err)
	}
	// 1st, 8th and 15th, both sides each.
	if pass.Created() != 6 {
		t.Errorf("created %d transactions, want 6", pass.Created())
	}
	s, _ := store.Account(ctx, savings.ID)
	if !s.Balance.Equal(USD(300)) {
		t.Errorf("savings = %s, want 300.00", s.Balance)
	}
	report, err := l.CheckIntegrity(ctx)
	if err != nil || len(report.Issues) != 0 {
		t.Errorf("CheckIntegrity() = %v, %v, want no issue", report.Issues, err)
	}
}

func TestLedger_ProcessRecurring_UnknownFrequency(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()
	a := mustOpen(t, l, "Checking", USD(0))

	// stored by an older version, bypassing validation.
	broken := RecurringRule{ID: "broken", AccountID: a.ID, Type: ExpenseRule, Amount: USD(5), Frequency: "quarterly", NextDate: d("2026-01-01"), Status: Active}
	if err := store.PutRecurringRule(ctx, broken); err != nil {
		t.Fatal(err)
	}
	good, err := l.AddRecurringRule(ctx, RecurringRule{AccountID: a.ID, Type: IncomeRule, Amount: USD(10), Frequency: date.Monthly, NextDate: d("2026-03-01")})
	if err != nil {
		t.Fatal(err)
	}

	pass, err := l.ProcessRecurring(ctx, d("2026-03-15"))
	if !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("ProcessRecurring() error = %v, want ErrInvalidFrequency", err)
	}
	if pass.Created() != 1 {
		t.Errorf("created %d transactions, want 1 from the valid rule", pass.Created())
	}
	if got, _ := store.RecurringRule(ctx, broken.ID); got.NextDate != broken.NextDate {
		t.Errorf("broken rule cursor moved to %s", got.NextDate)
	}
	if got, _ := store.RecurringRule(ctx, good.ID); got.NextDate != d("2026-04-01") {
		t.Errorf("valid rule cursor = %s, want 2026-04-01", got.NextDate)
	}
}

func TestLedger_ProcessRecurring_Interrupted(t *testing.T) {
	ctx := t.Context()
	store := &failingStore{MemoryStore: NewMemoryStore()}
	l := NewLedger(store, WithIDs(sequence()), WithClock(func() date.Date { return testToday }))
	a := mustOpen(t, l, "Checking", USD(1000))
	rule, err := l.AddRecurringRule(ctx, RecurringRule{AccountID: a.ID, Type: ExpenseRule, Amount: USD(100), Payee: "Gym", Frequency: date.Monthly, NextDate: d("2026-01-01")})
	if err != nil {
		t.Fatalf("AddRecurringRule() error = %v", err)
	}

	// the march occurrence cannot be stored.
	store.failNext(3)
	pass, err := l.ProcessRecurring(ctx, d("2026-03-15"))
	if !errors.Is(err, errUnavailable) {
		t.Fatalf("ProcessRecurring() error = %v, want %v", err, errUnavailable)
	}
	if pass.Created() != 2 {
		t.Errorf("created %d transactions, want 2", pass.Created())
	}
	if got, _ := store.RecurringRule(ctx, rule.ID); got.NextDate != d("2026-03-01") {
		t.Errorf("next date = %s, want 2026-03-01", got.NextDate)
	}
	assertBalances(t, store.MemoryStore)

	pass, err = l.ProcessRecurring(ctx, d("2026-03-15"))
	if err != nil || pass.Created() != 1 {
		t.Fatalf("retry created %d, %v, want the march occurrence only", pass.Created(), err)
	}
	txs, _ := store.Transactions(ctx, TransactionFilter{AccountID: a.ID})
	if len(txs) != 4 {
		t.Errorf("got %d transactions, want the starting balance and 3 occurrences", len(txs))
	}
	if got, _ := store.RecurringRule(ctx, rule.ID); got.NextDate != d("2026-04-01") {
		t.Errorf("next date = %s, want 2026-04-01", got.NextDate)
	}
	if acc, _ := store.Account(ctx, a.ID); !acc.Balance.Equal(USD(700)) {
		t.Errorf("balance = %s, want 700.00", acc.Balance)
	}
	assertBalances(t, store.MemoryStore)
}

func TestLedger_ProcessRecurring_Concurrent(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()
	a := mustOpen(t, l, "Checking", USD(0))
	if _, err := l.AddRecurringRule(ctx, RecurringRule{AccountID: a.ID, Type: ExpenseRule, Amount: USD(1), Frequency: date.Daily, NextDate: d("2026-03-01")}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.ProcessRecurring(ctx, d("2026-03-15")); err != nil {
				t.Errorf("ProcessRecurring() error = %v", err)
			}
		}()
	}
	wg.Wait()

	txs, _ := store.Transactions(ctx, TransactionFilter{AccountID: a.ID})
	if len(txs) != 15 {
		t.Errorf("got %d transactions, want one per day from the 1st to the 15th", len(txs))
	}
	assertBalances(t, store)
}

func TestLedger_SetRuleStatus(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := t.Context()
	a := mustOpen(t, l, "Checking", USD(0))
	r, err := l.AddRecurringRule(ctx, RecurringRule{AccountID: a.ID, Type: ExpenseRule, Amount: USD(1), Frequency: date.Monthly, NextDate: d("2026-01-01")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.SetRuleStatus(ctx, r.ID, Paused); err != nil {
		t.Fatalf("SetRuleStatus() error = %v", err)
	}
	if pass, _ := l.ProcessRecurring(ctx, d("2026-03-15")); pass.Created() != 0 {
		t.Errorf("paused rule created %d transactions", pass.Created())
	}
	if _, err := l.SetRuleStatus(ctx, r.ID, "sleeping"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SetRuleStatus(sleeping) error = %v", err)
	}
	if _, err := l.SetRuleStatus(ctx, "nope", Active); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetRuleStatus(unknown) error = %v", err)
	}
}
