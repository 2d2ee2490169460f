package finance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/etnz/finance/date"
)

// USD is a helper for test to create money from a const.
func USD(v float64) Money { return M(v) }

// d is a helper for test to create a date from an ISO string.
func d(s string) date.Date { return date.MustParse(s) }

// mon is a helper for test to create a month from "YYYY-MM".
func mon(s string) date.Month { return date.MustParseMonth(s) }

// sequence returns an id generator producing id001, id002...
func sequence() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id%03d", n.Add(1)) }
}

// testToday is the day the test ledgers consider as today.
var testToday = d("2026-03-15")

// newTestLedger returns a ledger over an empty memory store, with sequential ids and a fixed clock.
func newTestLedger(t *testing.T) (*Ledger, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	l := NewLedger(store, WithIDs(sequence()), WithClock(func() date.Date { return testToday }))
	return l, store
}

// mustOpen opens an account or fails the test.
func mustOpen(t *testing.T, l *Ledger, name string, opening Money) Account {
	t.Helper()
	a, err := l.OpenAccount(t.Context(), name, Checking, true, opening, d("2026-01-01"))
	if err != nil {
		t.Fatalf("OpenAccount(%q) error = %v", name, err)
	}
	return a
}

// assertBalances checks that every cached balance equals the sum of the account's transactions.
func assertBalances(t *testing.T, store *MemoryStore) {
	t.Helper()
	ctx := t.Context()
	accounts, err := store.Accounts(ctx)
	if err != nil {
		t.Fatalf("Accounts() error = %v", err)
	}
	txs, err := store.Transactions(ctx, TransactionFilter{})
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	for _, a := range accounts {
		if want := Balance(a.ID, txs).Round(); !a.Balance.Equal(want) {
			t.Errorf("account %s balance = %s, want %s", a.Name, a.Balance, want)
		}
	}
}

// errUnavailable is returned by failingStore.
var errUnavailable = errors.New("store unavailable")

// failingStore is a memory store whose failAt-th PutTransaction fails.
type failingStore struct {
	*MemoryStore
	failAt int
	puts   int
}

func (s *failingStore) PutTransaction(ctx context.Context, tx Transaction) error {
	s.puts++
	if s.puts == s.failAt {
		return errUnavailable
	}
	return s.MemoryStore.PutTransaction(ctx, tx)
}

// failNext makes the n-th next PutTransaction fail.
func (s *failingStore) failNext(n int) { s.failAt = s.puts + n }

// hookLocker is a Locker that runs before once, just before its first lock.
type hookLocker struct {
	Locker
	once   sync.Once
	before func()
}

func (h *hookLocker) Lock(ctx context.Context, key string) (func(), error) {
	h.once.Do(h.before)
	return h.Locker.Lock(ctx, key)
}
