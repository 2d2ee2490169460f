package pgstore

import (
	"context"
	"fmt"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/jackc/pgx/v5"
)

const ruleColumns = `id, account_id, category_id, transfer_account_id, type, amount::text,
	payee, memo, frequency, next_date, status, subscription, url`

// scanRule keeps unknown types, frequencies and statuses as read: the ledger
// refuses to expand them but they must stay listable.
func scanRule(row pgx.Row) (finance.RecurringRule, error) {
	var (
		r                           finance.RecurringRule
		typ, amount, freq, next, st string
		dec                         decoder
	)
	err := row.Scan(&r.ID, &r.AccountID, &r.CategoryID, &r.TransferAccountID, &typ, &amount,
		&r.Payee, &r.Memo, &freq, &next, &st, &r.Subscription, &r.URL)
	if err != nil {
		return r, err
	}
	r.Type = finance.RuleType(typ)
	r.Amount = dec.money(amount)
	r.Frequency = date.Period(freq)
	r.NextDate = dec.date(next)
	r.Status = finance.RuleStatus(st)
	return r, dec.err
}

func (s *Store) RecurringRules(ctx context.Context, f finance.RuleFilter) ([]finance.RecurringRule, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+ruleColumns+` FROM recurring_rules
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR next_date <= $2)
		ORDER BY seq`,
		string(f.Status), f.DueBy.String())
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRule)
}

func (s *Store) RecurringRule(ctx context.Context, id string) (finance.RecurringRule, error) {
	r, err := scanRule(s.pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM recurring_rules WHERE id = $1`, id))
	return one(r, err, "recurring rule", id)
}

// PutRecurringRule stores r as is, see scanRule.
func (s *Store) PutRecurringRule(ctx context.Context, r finance.RecurringRule) error {
	if r.ID == "" {
		return fmt.Errorf("recurring rule id is required: %w", finance.ErrInvalidInput)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO recurring_rules (id, account_id, category_id, transfer_account_id, type, amount,
			payee, memo, frequency, next_date, status, subscription, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			account_id = EXCLUDED.account_id, category_id = EXCLUDED.category_id,
			transfer_account_id = EXCLUDED.transfer_account_id, type = EXCLUDED.type,
			amount = EXCLUDED.amount, payee = EXCLUDED.payee, memo = EXCLUDED.memo,
			frequency = EXCLUDED.frequency, next_date = EXCLUDED.next_date,
			status = EXCLUDED.status, subscription = EXCLUDED.subscription, url = EXCLUDED.url`,
		r.ID, r.AccountID, r.CategoryID, r.TransferAccountID, string(r.Type), r.Amount.Decimal().String(),
		r.Payee, r.Memo, string(r.Frequency), r.NextDate.String(), string(r.Status), r.Subscription, r.URL)
	return err
}

func (s *Store) PutRecurringCursor(ctx context.Context, ruleID string, next date.Date) error {
	tag, err := s.pool.Exec(ctx, `UPDATE recurring_rules SET next_date = $2 WHERE id = $1`, ruleID, next.String())
	if err != nil {
		return err
	}
	return mustAffect(tag, "recurring rule", ruleID)
}
