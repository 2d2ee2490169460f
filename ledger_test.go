package finance

import (
	"errors"
	"sync"
	"testing"

	"github.com/etnz/finance/date"
)

func TestLedger_OpenAccount(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()

	a := mustOpen(t, l, "Checking", USD(1500))
	if !a.Balance.Equal(USD(1500)) {
		t.Errorf("balance = %s, want 1500.00", a.Balance)
	}
	txs, _ := l.Transactions(ctx, TransactionFilter{AccountID: a.ID})
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want the starting balance", len(txs))
	}
	if tx := txs[0]; tx.Payee != "Starting Balance" || !tx.Cleared || tx.Date != d("2026-01-01") {
		t.Errorf("starting balance = %+v", tx)
	}

	empty := mustOpen(t, l, "Empty", USD(0))
	if txs, _ := l.Transactions(ctx, TransactionFilter{AccountID: empty.ID}); len(txs) != 0 {
		t.Errorf("zero opening balance created %d transactions", len(txs))
	}
	assertBalances(t, store)

	if _, err := l.OpenAccount(ctx, " ", Checking, true, USD(0), d("2026-01-01")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("OpenAccount() without a name: error = %v, want ErrInvalidInput", err)
	}
}

func TestLedger_AddTransaction(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()
	a := mustOpen(t, l, "Checking", USD(100))

	for _, amount := range []float64{-20.5, 300, -0.25} {
		if _, err := l.AddTransaction(ctx, Transaction{AccountID: a.ID, Date: d("2026-02-01"), Amount: USD(amount)}); err != nil {
			t.Fatalf("AddTransaction(%v) error = %v", amount, err)
		}
	}
	got, _ := store.Account(ctx, a.ID)
	if !got.Balance.Equal(USD(379.25)) {
		t.Errorf("balance = %s, want 379.25", got.Balance)
	}
	assertBalances(t, store)

	tests := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"unknown account", Transaction{AccountID: "nope", Date: d("2026-02-01"), Amount: USD(1)}, ErrNotFound},
		{"unknown category", Transaction{AccountID: a.ID, CategoryID: "nope", Date: d("2026-02-01"), Amount: USD(1)}, ErrNotFound},
		{"no date", Transaction{AccountID: a.ID, Amount: USD(1)}, ErrInvalidInput},
	}
	for _, tt := range tests {
		if _, err := l.AddTransaction(ctx, tt.tx); !errors.Is(err, tt.want) {
			t.Errorf("%s: AddTransaction() error = %v, want %v", tt.name, err, tt.want)
		}
	}
	if got, _ := store.Account(ctx, a.ID); !got.Balance.Equal(USD(379.25)) {
		t.Errorf("rejected transactions changed the balance to %s", got.Balance)
	}
}

func TestLedger_Transfer(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()
	checking := mustOpen(t, l, "Checking", USD(1000))
	savings := mustOpen(t, l, "Savings", USD(0))

	tx, err := l.AddTransaction(ctx, Transaction{AccountID: checking.ID, TransferAccountID: savings.ID, Date: d("2026-02-01"), Amount: USD(-250)})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	mirror, err := store.Transaction(ctx, tx.MirrorID)
	if err != nil {
		t.Fatalf("mirror not stored: %v", err)
	}
	if err := (TransferPair{From: tx, To: mirror}).Validate(); err != nil {
		t.Errorf("pair is inconsistent: %v", err)
	}
	c, _ := store.Account(ctx, checking.ID)
	s, _ := store.Account(ctx, savings.ID)
	if !c.Balance.Equal(USD(750)) || !s.Balance.Equal(USD(250)) {
		t.Errorf("balances = %s, %s, want 750.00, 250.00", c.Balance, s.Balance)
	}

	// deleting either side removes both.
	if err := l.DeleteTransaction(ctx, mirror.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if _, err := store.Transaction(ctx, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("origin side still stored after deleting the mirror: %v", err)
	}
	c, _ = store.Account(ctx, checking.ID)
	s, _ = store.Account(ctx, savings.ID)
	if !c.Balance.Equal(USD(1000)) || !s.Balance.IsZero() {
		t.Errorf("balances after delete = %s, %s, want 1000.00, 0.00", c.Balance, s.Balance)
	}
	assertBalances(t, store)

	if _, err := l.AddTransaction(ctx, Transaction{AccountID: checking.ID, TransferAccountID: checking.ID, Date: d("2026-02-01"), Amount: USD(-1)}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("transfer to the same account: error = %v, want ErrInvalidInput", err)
	}
}

func TestLedger_UpdateTransaction(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()
	checking := mustOpen(t, l, "Checking", USD(1000))
	savings := mustOpen(t, l, "Savings", USD(0))
	card := mustOpen(t, l, "Card", USD(0))

	tx, err := l.AddTransaction(ctx, Transaction{AccountID: checking.ID, Date: d("2026-02-01"), Amount: USD(-100), Payee: "Shop"})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	// plain -> transfer creates the mirror.
	tx.TransferAccountID = savings.ID
	if tx, err = l.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	if tx.MirrorID == "" {
		t.Fatalf("transfer has no mirror id")
	}
	mirror, err := store.Transaction(ctx, tx.MirrorID)
	if err != nil || mirror.AccountID != savings.ID || !mirror.Amount.Equal(USD(100)) {
		t.Fatalf("mirror = %+v, %v", mirror, err)
	}

	// changing the amount and the destination moves the mirror.
	mirrorID := tx.MirrorID
	tx.Amount = USD(-150)
	tx.TransferAccountID = card.ID
	if tx, err = l.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	if tx.MirrorID != mirrorID {
		t.Errorf("mirror id changed from %s to %s", mirrorID, tx.MirrorID)
	}
	mirror, _ = store.Transaction(ctx, mirrorID)
	if mirror.AccountID != card.ID || !mirror.Amount.Equal(USD(150)) {
		t.Errorf("mirror = %s on %s, want 150.00 on card", mirror.Amount, mirror.AccountID)
	}
	assertBalances(t, store)
	if s, _ := store.Account(ctx, savings.ID); !s.Balance.IsZero() {
		t.Errorf("savings balance = %s, want 0.00 once the transfer moved away", s.Balance)
	}

	// transfer -> plain deletes the mirror.
	tx.TransferAccountID = ""
	if tx, err = l.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	if _, err := store.Transaction(ctx, mirrorID); !errors.Is(err, ErrNotFound) {
		t.Errorf("mirror still stored: %v", err)
	}
	if tx.MirrorID != "" {
		t.Errorf("plain transaction keeps mirror id %s", tx.MirrorID)
	}
	assertBalances(t, store)

	if _, err := l.UpdateTransaction(ctx, Transaction{ID: "nope", AccountID: checking.ID, Date: d("2026-02-01")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTransaction(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestLedger_ConcurrentTransactions(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()
	checking := mustOpen(t, l, "Checking", USD(0))
	savings := mustOpen(t, l, "Savings", USD(0))

	const n = 50
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx := Transaction{AccountID: checking.ID, Date: d("2026-02-01"), Amount: USD(10)}
			if i%2 == 0 {
				tx.TransferAccountID = savings.ID
			}
			if _, err := l.AddTransaction(ctx, tx); err != nil {
				t.Errorf("AddTransaction() error = %v", err)
			}
		}()
	}
	wg.Wait()

	c, _ := store.Account(ctx, checking.ID)
	s, _ := store.Account(ctx, savings.ID)
	if !c.Balance.Equal(USD(10 * n)) {
		t.Errorf("checking balance = %s, want %d", c.Balance, 10*n)
	}
	if !s.Balance.Equal(USD(-10 * n / 2)) {
		t.Errorf("savings balance = %s, want %d", s.Balance, -10*n/2)
	}
	assertBalances(t, store)
}

func TestLedger_TransactionMovedWhileLocking(t *testing.T) {
	tests := []struct {
		name  string
		apply func(l *Ledger, tx Transaction) error
	}{
		{"delete", func(l *Ledger, tx Transaction) error { return l.DeleteTransaction(t.Context(), tx.ID) }},
		{"update", func(l *Ledger, tx Transaction) error {
			tx.Payee = "Grocer"
			_, err := l.UpdateTransaction(t.Context(), tx)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			store := NewMemoryStore()
			mu := NewKeyedMutex()
			clock := WithClock(func() date.Date { return testToday })
			other := NewLedger(store, WithLocker(mu), WithIDs(sequence()), clock)
			checking := mustOpen(t, other, "Checking", USD(1000))
			savings := mustOpen(t, other, "Savings", USD(0))
			tx, err := other.AddTransaction(ctx, Transaction{AccountID: checking.ID, Date: d("2026-02-01"), Amount: USD(-100), Payee: "Shop"})
			if err != nil {
				t.Fatalf("AddTransaction() error = %v", err)
			}

			// the other writer moves the transaction to savings once it has been read, before it is locked.
			moved := tx
			moved.AccountID = savings.ID
			locker := &hookLocker{Locker: mu, before: func() {
				if _, err := other.UpdateTransaction(ctx, moved); err != nil {
					t.Errorf("UpdateTransaction(moved) error = %v", err)
				}
			}}
			l := NewLedger(store, WithLocker(locker), clock)
			if err := tt.apply(l, tx); err != nil {
				t.Fatalf("%s error = %v", tt.name, err)
			}

			assertBalances(t, store)
			if s, _ := store.Account(ctx, savings.ID); !s.Balance.IsZero() {
				t.Errorf("savings balance = %s, want 0.00", s.Balance)
			}
		})
	}
}

func TestLedger_Transfer_Interrupted(t *testing.T) {
	ctx := t.Context()
	store := &failingStore{MemoryStore: NewMemoryStore()}
	l := NewLedger(store, WithIDs(sequence()), WithClock(func() date.Date { return testToday }))
	checking := mustOpen(t, l, "Checking", USD(1000))
	savings := mustOpen(t, l, "Savings", USD(0))

	store.failNext(2)
	_, err := l.Transfer(ctx, Transaction{AccountID: checking.ID, TransferAccountID: savings.ID, Date: d("2026-02-01"), Amount: USD(-250)})
	if !errors.Is(err, errUnavailable) {
		t.Fatalf("Transfer() error = %v, want %v", err, errUnavailable)
	}
	txs, _ := store.Transactions(ctx, TransactionFilter{})
	if len(txs) != 1 {
		t.Errorf("got %d transactions, want only the starting balance", len(txs))
	}
	assertBalances(t, store.MemoryStore)
	report, err := l.CheckIntegrity(ctx)
	if err != nil || report.Err() != nil {
		t.Errorf("CheckIntegrity() = %v, %v", report.Err(), err)
	}

	if _, err := l.Transfer(ctx, Transaction{AccountID: checking.ID, TransferAccountID: savings.ID, Date: d("2026-02-01"), Amount: USD(-250)}); err != nil {
		t.Fatalf("Transfer() retry error = %v", err)
	}
	if c, _ := store.Account(ctx, checking.ID); !c.Balance.Equal(USD(750)) {
		t.Errorf("checking balance = %s, want 750.00", c.Balance)
	}
	assertBalances(t, store.MemoryStore)
}

func TestLedger_UpdateTransaction_Interrupted(t *testing.T) {
	ctx := t.Context()
	store := &failingStore{MemoryStore: NewMemoryStore()}
	l := NewLedger(store, WithIDs(sequence()), WithClock(func() date.Date { return testToday }))
	checking := mustOpen(t, l, "Checking", USD(1000))
	savings := mustOpen(t, l, "Savings", USD(0))
	tx, err := l.AddTransaction(ctx, Transaction{AccountID: checking.ID, Date: d("2026-02-01"), Amount: USD(-100), Payee: "Shop"})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	// the mirror cannot be written: the plain version is restored.
	store.failNext(2)
	update := tx
	update.TransferAccountID = savings.ID
	update.Amount = USD(-300)
	if _, err := l.UpdateTransaction(ctx, update); !errors.Is(err, errUnavailable) {
		t.Fatalf("UpdateTransaction() error = %v, want %v", err, errUnavailable)
	}
	got, _ := store.Transaction(ctx, tx.ID)
	if got.IsTransfer() || !got.Amount.Equal(USD(-100)) {
		t.Errorf("transaction = %s to %q, want the previous -100.00", got.Amount, got.TransferAccountID)
	}
	if c, _ := store.Account(ctx, checking.ID); !c.Balance.Equal(USD(900)) {
		t.Errorf("checking balance = %s, want 900.00", c.Balance)
	}
	assertBalances(t, store.MemoryStore)
}

func TestLedger_Reconcile(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()
	a := mustOpen(t, l, "Checking", USD(100)) // cleared
	if _, err := l.AddTransaction(ctx, Transaction{AccountID: a.ID, Date: d("2026-02-01"), Amount: USD(-30), Cleared: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := l.AddTransaction(ctx, Transaction{AccountID: a.ID, Date: d("2026-02-02"), Amount: USD(-5)}); err != nil {
		t.Fatal(err)
	}

	rec, err := l.Reconcile(ctx, a.ID, USD(60))
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if rec.Reconciled != 2 {
		t.Errorf("reconciled = %d, want 2", rec.Reconciled)
	}
	if !rec.Adjustment.Equal(USD(-5)) || !rec.Balance.Equal(USD(60)) {
		t.Errorf("adjustment %s balance %s, want -5.00 and 60.00", rec.Adjustment, rec.Balance)
	}
	assertBalances(t, store)

	// the statement now matches: nothing to adjust.
	rec, err = l.Reconcile(ctx, a.ID, USD(60))
	if err != nil || !rec.Adjustment.IsZero() || rec.Reconciled != 0 {
		t.Errorf("second Reconcile() = %+v, %v, want no change", rec, err)
	}
	txs, _ := l.Transactions(ctx, TransactionFilter{AccountID: a.ID})
	if len(txs) != 4 {
		t.Errorf("got %d transactions, want 4 with a single adjustment", len(txs))
	}
}

func TestLedger_SearchTransactions(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := t.Context()
	a := mustOpen(t, l, "Checking", USD(0))
	for _, payee := range []string{"Corner Grocery", "Landlord", "grocery outlet"} {
		if _, err := l.AddTransaction(ctx, Transaction{AccountID: a.ID, Date: d("2026-02-01"), Amount: USD(-1), Payee: payee}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := l.SearchTransactions(ctx, TransactionFilter{AccountID: a.ID}, "GROCERY")
	if err != nil || len(got) != 2 {
		t.Errorf("SearchTransactions() = %d results, %v, want 2", len(got), err)
	}
}

func TestLedger_CloseAccount(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()
	a := mustOpen(t, l, "Old", USD(12))
	closed, err := l.CloseAccount(ctx, a.ID)
	if err != nil || !closed.Closed {
		t.Fatalf("CloseAccount() = %+v, %v", closed, err)
	}
	if txs, _ := store.Transactions(ctx, TransactionFilter{AccountID: a.ID}); len(txs) != 1 {
		t.Errorf("closing dropped transactions")
	}
	if _, err := l.CloseAccount(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("CloseAccount(unknown) error = %v", err)
	}
}

func TestLedger_RecalculateBalance(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()
	a := mustOpen(t, l, "Checking", USD(42))
	if err := store.PutBalance(ctx, a.ID, USD(1)); err != nil {
		t.Fatal(err)
	}
	got, err := l.RecalculateBalance(ctx, a.ID)
	if err != nil || !got.Equal(USD(42)) {
		t.Errorf("RecalculateBalance() = %s, %v, want 42.00", got, err)
	}
}
