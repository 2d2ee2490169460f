package finance

import (
	"context"

	"github.com/etnz/finance/date"
)

// TransactionFilter selects transactions. Zero fields match everything.
// From and To are inclusive.
type TransactionFilter struct {
	AccountID  string
	CategoryID string
	From, To   date.Date
}

// Match reports whether tx satisfies the filter.
func (f TransactionFilter) Match(tx Transaction) bool {
	if f.AccountID != "" && tx.AccountID != f.AccountID {
		return false
	}
	if f.CategoryID != "" && tx.CategoryID != f.CategoryID {
		return false
	}
	return date.Range{From: f.From, To: f.To}.Contains(tx.Date)
}

// AllocationFilter selects budget allocations. Zero fields match everything.
type AllocationFilter struct {
	CategoryID string
	Month      date.Month // exactly this month
	Through    date.Month // this month and every month before
}

// Match reports whether a satisfies the filter.
func (f AllocationFilter) Match(a Allocation) bool {
	if f.CategoryID != "" && a.CategoryID != f.CategoryID {
		return false
	}
	if !f.Month.IsZero() && a.Month != f.Month {
		return false
	}
	if !f.Through.IsZero() && a.Month.After(f.Through) {
		return false
	}
	return true
}

// RuleFilter selects recurring rules. Zero fields match everything.
type RuleFilter struct {
	Status RuleStatus
	DueBy  date.Date // next date on or before
}

// Match reports whether r satisfies the filter.
func (f RuleFilter) Match(r RecurringRule) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if !f.DueBy.IsZero() && r.NextDate.After(f.DueBy) {
		return false
	}
	return true
}

// Store is the durable storage of a ledger.
//
// Reads return the full matching set and ErrNotFound for unknown ids.
// Writes are single upserts keyed by id: Store implementations are not
// expected to provide multi-row transactions, callers serialize writes with a Locker.
type Store interface {
	Accounts(ctx context.Context) ([]Account, error)
	Account(ctx context.Context, id string) (Account, error)
	PutAccount(ctx context.Context, a Account) error
	PutBalance(ctx context.Context, accountID string, balance Money) error

	Transactions(ctx context.Context, f TransactionFilter) ([]Transaction, error)
	Transaction(ctx context.Context, id string) (Transaction, error)
	PutTransaction(ctx context.Context, tx Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	CategoryGroups(ctx context.Context) ([]CategoryGroup, error)
	PutCategoryGroup(ctx context.Context, g CategoryGroup) error
	Categories(ctx context.Context) ([]Category, error)
	PutCategory(ctx context.Context, c Category) error
	Allocations(ctx context.Context, f AllocationFilter) ([]Allocation, error)
	PutAllocation(ctx context.Context, a Allocation) error

	RecurringRules(ctx context.Context, f RuleFilter) ([]RecurringRule, error)
	RecurringRule(ctx context.Context, id string) (RecurringRule, error)
	PutRecurringRule(ctx context.Context, r RecurringRule) error
	PutRecurringCursor(ctx context.Context, ruleID string, next date.Date) error

	Debts(ctx context.Context) ([]Debt, error)
	PutDebt(ctx context.Context, d Debt) error
	DeleteDebt(ctx context.Context, id string) error

	Investments(ctx context.Context) ([]Investment, error)
	Investment(ctx context.Context, id string) (Investment, error)
	PutInvestment(ctx context.Context, inv Investment) error
	InvestmentTransactions(ctx context.Context, investmentID string) ([]InvestmentTransaction, error)
	PutInvestmentTransaction(ctx context.Context, t InvestmentTransaction) error
	DeleteInvestmentTransaction(ctx context.Context, id string) error

	Goals(ctx context.Context) ([]SavingsGoal, error)
	Goal(ctx context.Context, id string) (SavingsGoal, error)
	PutGoal(ctx context.Context, g SavingsGoal) error
}

// Locker serializes ledger mutations per key, like an account or a recurring rule.
//
// Lock blocks until the key is acquired or ctx is done. The returned function
// releases the key.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
