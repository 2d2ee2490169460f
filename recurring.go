package finance

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/etnz/finance/date"
)

// RuleType forces the sign of the transactions a recurring rule materializes.
type RuleType string

const (
	IncomeRule   RuleType = "income"
	ExpenseRule  RuleType = "expense"
	TransferRule RuleType = "transfer"
)

// ParseRuleType parses a rule type name.
func ParseRuleType(s string) (RuleType, error) {
	switch t := RuleType(strings.ToLower(strings.TrimSpace(s))); t {
	case IncomeRule, ExpenseRule, TransferRule:
		return t, nil
	}
	return "", invalid("unknown recurring type %q", s)
}

// RuleStatus is the lifecycle state of a recurring rule. Only active rules are expanded.
type RuleStatus string

const (
	Active    RuleStatus = "active"
	Paused    RuleStatus = "paused"
	Cancelled RuleStatus = "cancelled"
)

// ParseRuleStatus parses a rule status name.
func ParseRuleStatus(s string) (RuleStatus, error) {
	switch st := RuleStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case Active, Paused, Cancelled:
		return st, nil
	case "canceled":
		return Cancelled, nil
	}
	return "", invalid("unknown recurring status %q", s)
}

// RecurringRule describes a transaction repeated on a schedule.
//
// NextDate is the cursor of the schedule: the date of the next occurrence to
// materialize. It only moves forward, one period at a time.
type RecurringRule struct {
	ID                string      `json:"id"`
	AccountID         string      `json:"accountId"`
	CategoryID        string      `json:"categoryId,omitempty"`
	TransferAccountID string      `json:"transferAccountId,omitempty"`
	Type              RuleType    `json:"type"`
	Amount            Money       `json:"amount"`
	Payee             string      `json:"payee,omitempty"`
	Memo              string      `json:"memo,omitempty"`
	Frequency         date.Period `json:"frequency"`
	NextDate          date.Date   `json:"nextDate"`
	Status            RuleStatus  `json:"status"`
	Subscription      bool        `json:"subscription,omitempty"`
	URL               string      `json:"url,omitempty"`
}

// Validate checks the rule before it is stored.
func (r RecurringRule) Validate() error {
	switch {
	case r.ID == "":
		return invalid("recurring rule id is required")
	case r.AccountID == "":
		return invalid("recurring rule %s: account is required", r.ID)
	case r.NextDate.IsZero():
		return invalid("recurring rule %s: next date is required", r.ID)
	case r.Amount.IsZero():
		return invalid("recurring rule %s: amount is required", r.ID)
	case !r.Frequency.Valid():
		return fmt.Errorf("recurring rule %s: %w %q", r.ID, ErrInvalidFrequency, string(r.Frequency))
	case r.TransferAccountID == r.AccountID:
		return invalid("recurring rule %s: cannot transfer to the same account", r.ID)
	}
	switch r.Type {
	case IncomeRule, ExpenseRule:
	case TransferRule:
		if r.TransferAccountID == "" {
			return invalid("recurring rule %s: transfer requires a destination account", r.ID)
		}
	default:
		return invalid("recurring rule %s: unknown type %q", r.ID, string(r.Type))
	}
	switch r.Status {
	case Active, Paused, Cancelled:
	default:
		return invalid("recurring rule %s: unknown status %q", r.ID, string(r.Status))
	}
	return nil
}

// Due reports whether the rule has an occurrence to materialize on or before today.
func (r RecurringRule) Due(today date.Date) bool {
	return r.Status == Active && !r.NextDate.After(today)
}

// SignedAmount returns the amount each occurrence posts on the rule's account.
func (r RecurringRule) SignedAmount() Money {
	switch r.Type {
	case ExpenseRule:
		return r.Amount.Abs().Neg()
	case IncomeRule:
		return r.Amount.Abs()
	default:
		return r.Amount
	}
}

func (r RecurringRule) payee() string {
	switch {
	case r.Payee != "":
		return r.Payee
	case r.Subscription:
		return "Subscription"
	default:
		return "Recurring Transaction"
	}
}

// Occurrence is one materialized occurrence of a rule: a single transaction,
// or both sides of a transfer.
type Occurrence struct {
	Date         date.Date
	Transactions []Transaction
	// Next is the rule's cursor once this occurrence is stored.
	Next date.Date
}

// Expansion is the result of expanding a rule up to a date.
type Expansion struct {
	RuleID      string
	Occurrences []Occurrence
	// Next is the cursor once every occurrence is stored.
	Next date.Date
}

// Accounts returns the ids of the accounts touched by the expansion.
func (e Expansion) Accounts() []string {
	var ids []string
	for _, o := range e.Occurrences {
		for _, tx := range o.Transactions {
			ids = appendUnique(ids, tx.AccountID)
		}
	}
	return ids
}

// Expand materializes every occurrence of rule dated on or before today,
// starting at the rule's cursor, and returns the advanced cursor.
//
// Rules that are not active or not due yield no occurrence and an unchanged cursor.
// A rule with an unknown frequency yields ErrInvalidFrequency, no occurrence, and
// an unchanged cursor. newID is called for every transaction created.
//
// Expand does not look for transactions already created for a date: callers
// must expand a given cursor at most once.
func Expand(rule RecurringRule, today date.Date, newID func() string) (Expansion, error) {
	exp := Expansion{RuleID: rule.ID, Next: rule.NextDate}
	if !rule.Due(today) {
		return exp, nil
	}
	if !rule.Frequency.Valid() {
		return exp, fmt.Errorf("recurring rule %s: %w %q", rule.ID, ErrInvalidFrequency, string(rule.Frequency))
	}
	if rule.AccountID == "" || rule.TransferAccountID == rule.AccountID {
		return exp, invalid("recurring rule %s: invalid accounts", rule.ID)
	}
	amount := rule.SignedAmount()
	cursor := rule.NextDate
	for !cursor.After(today) {
		tx := Transaction{
			ID:                newID(),
			AccountID:         rule.AccountID,
			CategoryID:        rule.CategoryID,
			TransferAccountID: rule.TransferAccountID,
			Date:              cursor,
			Amount:            amount,
			Payee:             rule.payee(),
			Memo:              rule.Memo,
		}
		o := Occurrence{Date: cursor, Transactions: []Transaction{tx}}
		if tx.IsTransfer() {
			pair, err := NewTransferPair(tx, newID())
			if err != nil {
				return Expansion{RuleID: rule.ID, Next: rule.NextDate}, fmt.Errorf("recurring rule %s: %w", rule.ID, err)
			}
			pair.To.Payee = cmp.Or(rule.Payee, "Transfer")
			o.Transactions = pair.Transactions()
		}
		next, err := rule.Frequency.Next(cursor)
		if err != nil {
			// unreachable, the frequency was checked above.
			return Expansion{RuleID: rule.ID, Next: rule.NextDate}, fmt.Errorf("recurring rule %s: %w", rule.ID, ErrInvalidFrequency)
		}
		o.Next = next
		exp.Occurrences = append(exp.Occurrences, o)
		cursor = next
	}
	exp.Next = cursor
	return exp, nil
}

// appendUnique appends s to list if it is not already there.
func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
