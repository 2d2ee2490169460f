package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/finance/date"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Ledger runs the engine calculators over a Store and persists their outputs.
//
// Every mutation is a critical section: it locks the affected accounts (or
// rule, category, investment) through the Locker, writes, then re-derives
// and persists the balance of every affected account.
type Ledger struct {
	store  Store
	locker Locker
	log    zerolog.Logger
	today  func() date.Date
	newID  func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLocker replaces the default in-process locker, e.g. by a distributed one.
func WithLocker(locker Locker) Option { return func(l *Ledger) { l.locker = locker } }

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option { return func(l *Ledger) { l.log = log } }

// WithClock sets the function returning the current day.
func WithClock(today func() date.Date) Option { return func(l *Ledger) { l.today = today } }

// WithIDs sets the id generator. The default generates random UUIDs.
func WithIDs(newID func() string) Option { return func(l *Ledger) { l.newID = newID } }

// NewLedger returns a Ledger over store.
func NewLedger(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		locker: NewKeyedMutex(),
		log:    zerolog.Nop(),
		today:  date.Today,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store returns the underlying store.
func (l *Ledger) Store() Store { return l.store }

// Today returns the ledger's current day.
func (l *Ledger) Today() date.Date { return l.today() }

// withAccounts runs fn with every account locked, then re-derives and persists their balances.
// Balances are re-derived even when fn fails, so a partial write never leaves a stale balance.
func (l *Ledger) withAccounts(ctx context.Context, accountIDs []string, fn func() error) (err error) {
	keys := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		if id != "" {
			keys = append(keys, accountKey(id))
		}
	}
	unlock, err := lockAll(ctx, l.locker, keys...)
	if err != nil {
		return fmt.Errorf("cannot lock accounts: %w", err)
	}
	defer unlock()
	defer func() { err = errors.Join(err, l.recompute(ctx, accountIDs...)) }()
	return fn()
}

// recompute re-derives and persists the balance of accounts. Callers hold their locks.
func (l *Ledger) recompute(ctx context.Context, accountIDs ...string) error {
	done := make(map[string]bool)
	for _, id := range accountIDs {
		if id == "" || done[id] {
			continue
		}
		done[id] = true
		txs, err := l.store.Transactions(ctx, TransactionFilter{AccountID: id})
		if err != nil {
			return fmt.Errorf("cannot read transactions of account %s: %w", id, err)
		}
		balance := Balance(id, txs).Round()
		if err := l.store.PutBalance(ctx, id, balance); err != nil {
			return fmt.Errorf("cannot persist balance of account %s: %w", id, err)
		}
		l.log.Debug().Str("account", id).Stringer("balance", balance).Int("transactions", len(txs)).Msg("balance recomputed")
	}
	return nil
}

// Accounts returns every account.
func (l *Ledger) Accounts(ctx context.Context) ([]Account, error) { return l.store.Accounts(ctx) }

// OpenAccount creates an account. A non zero opening balance is recorded as a
// cleared "Starting Balance" transaction dated on.
func (l *Ledger) OpenAccount(ctx context.Context, name string, typ AccountType, onBudget bool, opening Money, on date.Date) (Account, error) {
	a := Account{ID: l.newID(), Name: name, Type: typ, OnBudget: onBudget}
	if err := a.Validate(); err != nil {
		return Account{}, err
	}
	if on.IsZero() {
		on = l.today()
	}
	if err := l.store.PutAccount(ctx, a); err != nil {
		return Account{}, fmt.Errorf("cannot create account %q: %w", name, err)
	}
	l.log.Info().Str("account", a.ID).Str("name", name).Stringer("type", typ).Msg("account opened")
	if opening.IsZero() {
		return a, nil
	}
	tx := Transaction{
		ID:        l.newID(),
		AccountID: a.ID,
		Date:      on,
		Amount:    opening,
		Payee:     "Starting Balance",
		Memo:      "Initial account balance",
		Cleared:   true,
	}
	if _, err := l.AddTransaction(ctx, tx); err != nil {
		return a, err
	}
	return l.store.Account(ctx, a.ID)
}

// CloseAccount soft closes an account. Its transactions are kept.
func (l *Ledger) CloseAccount(ctx context.Context, id string) (Account, error) {
	var a Account
	err := l.withAccounts(ctx, []string{id}, func() (err error) {
		if a, err = l.store.Account(ctx, id); err != nil {
			return err
		}
		a.Closed = true
		return l.store.PutAccount(ctx, a)
	})
	if err != nil {
		return Account{}, err
	}
	l.log.Info().Str("account", id).Msg("account closed")
	return l.store.Account(ctx, id)
}

// RecalculateBalance re-derives an account balance from its transactions and persists it.
func (l *Ledger) RecalculateBalance(ctx context.Context, id string) (Money, error) {
	if _, err := l.store.Account(ctx, id); err != nil {
		return Money{}, err
	}
	if err := l.withAccounts(ctx, []string{id}, func() error { return nil }); err != nil {
		return Money{}, err
	}
	a, err := l.store.Account(ctx, id)
	return a.Balance, err
}
