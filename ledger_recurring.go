package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/finance/date"
)

// AddRecurringRule validates and stores a new rule. The status defaults to active.
func (l *Ledger) AddRecurringRule(ctx context.Context, r RecurringRule) (RecurringRule, error) {
	if r.ID == "" {
		r.ID = l.newID()
	}
	if r.Status == "" {
		r.Status = Active
	}
	if err := r.Validate(); err != nil {
		return RecurringRule{}, err
	}
	if err := l.checkAccounts(ctx, r.AccountID, r.TransferAccountID); err != nil {
		return RecurringRule{}, err
	}
	if err := l.checkCategory(ctx, r.CategoryID); err != nil {
		return RecurringRule{}, err
	}
	if err := l.store.PutRecurringRule(ctx, r); err != nil {
		return RecurringRule{}, fmt.Errorf("cannot create recurring rule: %w", err)
	}
	return r, nil
}

// SetRuleStatus pauses, resumes or cancels a rule.
func (l *Ledger) SetRuleStatus(ctx context.Context, id string, status RuleStatus) (RecurringRule, error) {
	if _, err := ParseRuleStatus(string(status)); err != nil {
		return RecurringRule{}, err
	}
	unlock, err := l.locker.Lock(ctx, ruleKey(id))
	if err != nil {
		return RecurringRule{}, err
	}
	defer unlock()
	r, err := l.store.RecurringRule(ctx, id)
	if err != nil {
		return RecurringRule{}, err
	}
	r.Status = status
	if err := l.store.PutRecurringRule(ctx, r); err != nil {
		return RecurringRule{}, err
	}
	return r, nil
}

// RecurringResult is the outcome of processing one rule.
type RecurringResult struct {
	Rule    RecurringRule
	Created []Transaction
	Next    date.Date
	Err     error
}

// RecurringPass is the outcome of a processing pass.
type RecurringPass struct {
	Today   date.Date
	Results []RecurringResult
}

// Created returns the number of transactions created by the pass.
func (p RecurringPass) Created() int {
	n := 0
	for _, r := range p.Results {
		n += len(r.Created)
	}
	return n
}

// ProcessRecurring materializes every occurrence due on or before today of
// every active rule, then advances each rule's cursor.
//
// Each rule is processed under its own lock, and re-read once locked, so that
// two concurrent passes never materialize the same occurrence. The cursor is
// advanced past each occurrence as soon as it is stored, so a failing rule
// resumes at its first missing occurrence. It does not stop the others: errors
// are joined.
func (l *Ledger) ProcessRecurring(ctx context.Context, today date.Date) (RecurringPass, error) {
	pass := RecurringPass{Today: today}
	rules, err := l.store.RecurringRules(ctx, RuleFilter{Status: Active, DueBy: today})
	if err != nil {
		return pass, fmt.Errorf("cannot read recurring rules: %w", err)
	}
	var errs error
	for _, r := range rules {
		res := l.processRule(ctx, r.ID, today)
		if res.Err != nil {
			errs = errors.Join(errs, res.Err)
		}
		pass.Results = append(pass.Results, res)
	}
	return pass, errs
}

func (l *Ledger) processRule(ctx context.Context, id string, today date.Date) (res RecurringResult) {
	unlock, err := l.locker.Lock(ctx, ruleKey(id))
	if err != nil {
		res.Err = fmt.Errorf("cannot lock recurring rule %s: %w", id, err)
		return res
	}
	defer unlock()

	rule, err := l.store.RecurringRule(ctx, id)
	if err != nil {
		res.Err = err
		return res
	}
	res.Rule, res.Next = rule, rule.NextDate

	exp, err := Expand(rule, today, l.newID)
	if err != nil {
		l.log.Warn().Err(err).Str("rule", id).Str("frequency", string(rule.Frequency)).Msg("recurring rule halted")
		res.Err = err
		return res
	}
	if len(exp.Occurrences) == 0 {
		return res
	}

	err = l.withAccounts(ctx, exp.Accounts(), func() error {
		for _, o := range exp.Occurrences {
			if err := l.putOccurrence(ctx, id, o); err != nil {
				return err
			}
			res.Created = append(res.Created, o.Transactions...)
			res.Next = o.Next
		}
		return nil
	})
	if err != nil {
		res.Err = fmt.Errorf("recurring rule %s: cannot record occurrence: %w", id, err)
		l.log.Warn().Err(err).Str("rule", id).Int("created", len(res.Created)).Stringer("next", res.Next).Msg("recurring rule interrupted")
		return res
	}
	l.log.Info().Str("rule", id).Int("occurrences", len(exp.Occurrences)).Stringer("next", exp.Next).Msg("recurring rule processed")
	return res
}

// putOccurrence stores the transactions of o, then advances the rule's cursor
// past it. When either fails, the transactions of o are removed again.
func (l *Ledger) putOccurrence(ctx context.Context, ruleID string, o Occurrence) error {
	var written []Transaction
	for _, tx := range o.Transactions {
		if err := l.store.PutTransaction(ctx, tx); err != nil {
			return errors.Join(err, l.undoPuts(ctx, written, nil))
		}
		written = append(written, tx)
	}
	if err := l.store.PutRecurringCursor(ctx, ruleID, o.Next); err != nil {
		return errors.Join(fmt.Errorf("cannot advance cursor: %w", err), l.undoPuts(ctx, written, nil))
	}
	return nil
}
