package pgstore

import (
	"context"

	"github.com/etnz/finance"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, name, type, balance::text, on_budget, closed`

func scanAccount(row pgx.Row) (finance.Account, error) {
	var (
		a            finance.Account
		typ, balance string
		dec          decoder
	)
	if err := row.Scan(&a.ID, &a.Name, &typ, &balance, &a.OnBudget, &a.Closed); err != nil {
		return a, err
	}
	t, err := finance.ParseAccountType(typ)
	dec.keep(err)
	a.Type = t
	a.Balance = dec.money(balance)
	return a, dec.err
}

func (s *Store) Accounts(ctx context.Context) ([]finance.Account, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAccount)
}

func (s *Store) Account(ctx context.Context, id string) (finance.Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	return one(a, err, "account", id)
}

func (s *Store) PutAccount(ctx context.Context, a finance.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (id, name, type, balance, on_budget, closed)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, type = EXCLUDED.type, balance = EXCLUDED.balance,
			on_budget = EXCLUDED.on_budget, closed = EXCLUDED.closed`,
		a.ID, a.Name, a.Type.String(), a.Balance.Round().String(), a.OnBudget, a.Closed)
	return err
}

func (s *Store) PutBalance(ctx context.Context, accountID string, balance finance.Money) error {
	tag, err := s.pool.Exec(ctx, `UPDATE accounts SET balance = $2 WHERE id = $1`, accountID, balance.Round().String())
	if err != nil {
		return err
	}
	return mustAffect(tag, "account", accountID)
}

const transactionColumns = `id, account_id, category_id, date, amount::text, payee, memo,
	transfer_account_id, mirror_id, cleared, reconciled`

func scanTransaction(row pgx.Row) (finance.Transaction, error) {
	var (
		tx         finance.Transaction
		on, amount string
		dec        decoder
	)
	err := row.Scan(&tx.ID, &tx.AccountID, &tx.CategoryID, &on, &amount, &tx.Payee, &tx.Memo,
		&tx.TransferAccountID, &tx.MirrorID, &tx.Cleared, &tx.Reconciled)
	if err != nil {
		return tx, err
	}
	tx.Date = dec.date(on)
	tx.Amount = dec.money(amount)
	return tx, dec.err
}

// Transactions returns the matching transactions by date, then insertion order.
func (s *Store) Transactions(ctx context.Context, f finance.TransactionFilter) ([]finance.Transaction, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE ($1 = '' OR account_id = $1)
		  AND ($2 = '' OR category_id = $2)
		  AND ($3 = '' OR date >= $3)
		  AND ($4 = '' OR date <= $4)
		ORDER BY date, seq`,
		f.AccountID, f.CategoryID, f.From.String(), f.To.String())
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTransaction)
}

func (s *Store) Transaction(ctx context.Context, id string) (finance.Transaction, error) {
	tx, err := scanTransaction(s.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	return one(tx, err, "transaction", id)
}

func (s *Store) PutTransaction(ctx context.Context, tx finance.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (id, account_id, category_id, date, amount, payee, memo,
			transfer_account_id, mirror_id, cleared, reconciled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			account_id = EXCLUDED.account_id, category_id = EXCLUDED.category_id,
			date = EXCLUDED.date, amount = EXCLUDED.amount, payee = EXCLUDED.payee,
			memo = EXCLUDED.memo, transfer_account_id = EXCLUDED.transfer_account_id,
			mirror_id = EXCLUDED.mirror_id, cleared = EXCLUDED.cleared,
			reconciled = EXCLUDED.reconciled`,
		tx.ID, tx.AccountID, tx.CategoryID, tx.Date.String(), tx.Amount.Decimal().String(), tx.Payee, tx.Memo,
		tx.TransferAccountID, tx.MirrorID, tx.Cleared, tx.Reconciled)
	return err
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(tag, "transaction", id)
}
