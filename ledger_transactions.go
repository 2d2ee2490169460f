package finance

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// checkAccounts returns ErrNotFound for any unknown account id.
func (l *Ledger) checkAccounts(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := l.store.Account(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// checkCategory returns ErrNotFound when id is set and unknown.
func (l *Ledger) checkCategory(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	cats, err := l.store.Categories(ctx)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(cats, func(c Category) bool { return c.ID == id }) {
		return notFound("category", id)
	}
	return nil
}

// AddTransaction records tx and updates the account balance. A transaction
// with a TransferAccountID is recorded as a transfer pair, see Transfer.
func (l *Ledger) AddTransaction(ctx context.Context, tx Transaction) (Transaction, error) {
	if tx.IsTransfer() {
		pair, err := l.Transfer(ctx, tx)
		return pair.From, err
	}
	if tx.ID == "" {
		tx.ID = l.newID()
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	if err := l.checkAccounts(ctx, tx.AccountID); err != nil {
		return Transaction{}, err
	}
	if err := l.checkCategory(ctx, tx.CategoryID); err != nil {
		return Transaction{}, err
	}
	err := l.withAccounts(ctx, []string{tx.AccountID}, func() error {
		return l.store.PutTransaction(ctx, tx)
	})
	if err != nil {
		return Transaction{}, fmt.Errorf("cannot add transaction: %w", err)
	}
	return tx, nil
}

// Transfer records tx and its mirror on tx.TransferAccountID as one pair,
// then updates both balances.
func (l *Ledger) Transfer(ctx context.Context, tx Transaction) (TransferPair, error) {
	if tx.ID == "" {
		tx.ID = l.newID()
	}
	pair, err := NewTransferPair(tx, l.newID())
	if err != nil {
		return TransferPair{}, err
	}
	if err := l.checkAccounts(ctx, pair.Accounts()...); err != nil {
		return TransferPair{}, err
	}
	if err := l.checkCategory(ctx, tx.CategoryID); err != nil {
		return TransferPair{}, err
	}
	err = l.withAccounts(ctx, pair.Accounts(), func() error { return l.putPair(ctx, pair) })
	if err != nil {
		return TransferPair{}, fmt.Errorf("cannot add transfer: %w", err)
	}
	l.log.Info().Str("from", pair.From.AccountID).Str("to", pair.To.AccountID).Stringer("amount", pair.From.Amount).Msg("transfer recorded")
	return pair, nil
}

// putPair stores both sides of pair. When a side fails, the sides already
// written are restored to their version in prev, or deleted when prev has none.
func (l *Ledger) putPair(ctx context.Context, pair TransferPair, prev ...Transaction) error {
	var written []Transaction
	for _, tx := range pair.Transactions() {
		if err := l.store.PutTransaction(ctx, tx); err != nil {
			return errors.Join(err, l.undoPuts(ctx, written, prev))
		}
		written = append(written, tx)
	}
	return nil
}

// undoPuts reverts the transactions written by an interrupted write.
func (l *Ledger) undoPuts(ctx context.Context, written, prev []Transaction) error {
	var errs error
	for _, tx := range written {
		if i := slices.IndexFunc(prev, func(p Transaction) bool { return p.ID == tx.ID }); i >= 0 {
			errs = errors.Join(errs, l.store.PutTransaction(ctx, prev[i]))
			continue
		}
		errs = errors.Join(errs, l.store.DeleteTransaction(ctx, tx.ID))
	}
	if errs != nil {
		l.log.Error().Err(errs).Int("transactions", len(written)).Msg("cannot revert interrupted write")
	}
	return errs
}

// findMirror returns the other side of a transfer, using the mirror id when
// known, or matching the transfer references otherwise.
func (l *Ledger) findMirror(ctx context.Context, tx Transaction) (Transaction, bool, error) {
	if !tx.IsTransfer() {
		return Transaction{}, false, nil
	}
	if tx.MirrorID != "" {
		m, err := l.store.Transaction(ctx, tx.MirrorID)
		if errors.Is(err, ErrNotFound) {
			return Transaction{}, false, nil
		}
		return m, err == nil, err
	}
	candidates, err := l.store.Transactions(ctx, TransactionFilter{AccountID: tx.TransferAccountID, From: tx.Date, To: tx.Date})
	if err != nil {
		return Transaction{}, false, err
	}
	for _, c := range candidates {
		if isMirrorOf(tx, c) {
			return c, true, nil
		}
	}
	return Transaction{}, false, nil
}

// errRelock reports that a transaction moved to an account outside the locked set.
var errRelock = errors.New("transaction moved to an unlocked account")

// withTransaction runs fn on the stored transaction id and its mirror, with
// every account they touch and every extra account locked. Both are read once
// the locks are held: when they touch an account outside the locked set, the
// locks are released and taken again over the union.
func (l *Ledger) withTransaction(ctx context.Context, id string, extra []string, fn func(old, mirror Transaction, hasMirror bool) error) error {
	locked := slices.Clone(extra)
	if old, err := l.store.Transaction(ctx, id); err == nil {
		locked = append(locked, old.AccountID, old.TransferAccountID)
	}
	for {
		var missing []string
		err := l.withAccounts(ctx, locked, func() error {
			old, err := l.store.Transaction(ctx, id)
			if err != nil {
				return err
			}
			mirror, hasMirror, err := l.findMirror(ctx, old)
			if err != nil {
				return err
			}
			for _, a := range []string{old.AccountID, old.TransferAccountID, mirror.AccountID, mirror.TransferAccountID} {
				if a != "" && !slices.Contains(locked, a) {
					missing = appendUnique(missing, a)
				}
			}
			if len(missing) > 0 {
				return errRelock
			}
			return fn(old, mirror, hasMirror)
		})
		if !errors.Is(err, errRelock) {
			return err
		}
		l.log.Debug().Str("transaction", id).Strs("accounts", missing).Msg("transaction moved, locking again")
		locked = append(locked, missing...)
	}
}

// UpdateTransaction replaces a stored transaction. When either the old or the
// new version is a transfer, the mirror is updated, created or deleted to keep
// the pair consistent. Every account involved before and after is recomputed.
func (l *Ledger) UpdateTransaction(ctx context.Context, tx Transaction) (Transaction, error) {
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	if err := l.checkAccounts(ctx, tx.AccountID, tx.TransferAccountID); err != nil {
		return Transaction{}, err
	}
	if err := l.checkCategory(ctx, tx.CategoryID); err != nil {
		return Transaction{}, err
	}

	err := l.withTransaction(ctx, tx.ID, []string{tx.AccountID, tx.TransferAccountID}, func(old, mirror Transaction, hasMirror bool) error {
		if !tx.IsTransfer() {
			tx.MirrorID = ""
			if err := l.store.PutTransaction(ctx, tx); err != nil {
				return err
			}
			if !hasMirror {
				return nil
			}
			if err := l.store.DeleteTransaction(ctx, mirror.ID); err != nil {
				return errors.Join(err, l.store.PutTransaction(ctx, old))
			}
			return nil
		}
		mirrorID := mirror.ID
		if !hasMirror {
			mirrorID = l.newID()
		}
		pair, err := NewTransferPair(tx, mirrorID)
		if err != nil {
			return err
		}
		prev := []Transaction{old}
		if hasMirror {
			// keep what only the mirror side owns.
			pair.To.Payee = mirror.Payee
			pair.To.Cleared = mirror.Cleared
			pair.To.Reconciled = mirror.Reconciled
			prev = append(prev, mirror)
		}
		if err := l.putPair(ctx, pair, prev...); err != nil {
			return err
		}
		tx = pair.From
		return nil
	})
	if err != nil {
		return Transaction{}, fmt.Errorf("cannot update transaction %s: %w", tx.ID, err)
	}
	return tx, nil
}

// DeleteTransaction removes a transaction, and its mirror when it is a transfer.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	err := l.withTransaction(ctx, id, nil, func(tx, mirror Transaction, hasMirror bool) error {
		if tx.IsTransfer() && !hasMirror {
			l.log.Warn().Str("transaction", id).Str("account", tx.TransferAccountID).Msg("deleting transfer without mirror")
		}
		if err := l.store.DeleteTransaction(ctx, tx.ID); err != nil {
			return err
		}
		if !hasMirror {
			return nil
		}
		if err := l.store.DeleteTransaction(ctx, mirror.ID); err != nil {
			return errors.Join(err, l.store.PutTransaction(ctx, tx))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cannot delete transaction %s: %w", id, err)
	}
	return nil
}

// Reconciliation is the outcome of reconciling an account with a statement.
type Reconciliation struct {
	AccountID  string
	Reconciled int   // cleared transactions newly marked reconciled
	Adjustment Money // zero when none was needed
	Balance    Money
}

// Reconcile marks every cleared transaction of the account reconciled and, when
// the derived balance differs from the statement balance by a cent or more,
// records a cleared and reconciled adjustment dated today.
func (l *Ledger) Reconcile(ctx context.Context, accountID string, statement Money) (Reconciliation, error) {
	rec := Reconciliation{AccountID: accountID}
	if err := l.checkAccounts(ctx, accountID); err != nil {
		return rec, err
	}
	err := l.withAccounts(ctx, []string{accountID}, func() error {
		txs, err := l.store.Transactions(ctx, TransactionFilter{AccountID: accountID})
		if err != nil {
			return err
		}
		for _, tx := range txs {
			if tx.Cleared && !tx.Reconciled {
				tx.Reconciled = true
				if err := l.store.PutTransaction(ctx, tx); err != nil {
					return err
				}
				rec.Reconciled++
			}
		}
		diff := statement.Sub(Balance(accountID, txs)).Round()
		if diff.IsZero() {
			return nil
		}
		rec.Adjustment = diff
		return l.store.PutTransaction(ctx, Transaction{
			ID:         l.newID(),
			AccountID:  accountID,
			Date:       l.today(),
			Amount:     diff,
			Payee:      "Reconciliation Adjustment",
			Memo:       fmt.Sprintf("Adjustment to match statement balance of %s", statement),
			Cleared:    true,
			Reconciled: true,
		})
	})
	if err != nil {
		return rec, fmt.Errorf("cannot reconcile account %s: %w", accountID, err)
	}
	a, err := l.store.Account(ctx, accountID)
	rec.Balance = a.Balance
	l.log.Info().Str("account", accountID).Int("reconciled", rec.Reconciled).Stringer("adjustment", rec.Adjustment).Msg("account reconciled")
	return rec, err
}

// Transactions returns the transactions matching f.
func (l *Ledger) Transactions(ctx context.Context, f TransactionFilter) ([]Transaction, error) {
	return l.store.Transactions(ctx, f)
}

// SearchTransactions returns the transactions matching f whose payee or memo contains q.
func (l *Ledger) SearchTransactions(ctx context.Context, f TransactionFilter, q string) ([]Transaction, error) {
	txs, err := l.store.Transactions(ctx, f)
	if err != nil || q == "" {
		return txs, err
	}
	return slices.DeleteFunc(txs, func(tx Transaction) bool {
		return !matchesText(tx.Payee, q) && !matchesText(tx.Memo, q)
	}), nil
}
