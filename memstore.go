package finance

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/etnz/finance/date"
)

// table is an id keyed collection that remembers insertion order.
type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() table[T] { return table[T]{rows: make(map[string]T)} }

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) delete(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(s string) bool { return s == id })
	return true
}

// filter returns the rows matching keep, in insertion order.
func (t *table[T]) filter(keep func(T) bool) []T {
	res := make([]T, 0, len(t.order))
	for _, id := range t.order {
		if v := t.rows[id]; keep == nil || keep(v) {
			res = append(res, v)
		}
	}
	return res
}

// MemoryStore is an in-memory Store, safe for concurrent use.
//
// Values are copied in and out. Transactions are returned by date, then
// insertion order. Use DecodeStore and EncodeStore to persist it.
type MemoryStore struct {
	mu           sync.RWMutex
	accounts     table[Account]
	transactions table[Transaction]
	groups       table[CategoryGroup]
	categories   table[Category]
	allocations  table[Allocation]
	rules        table[RecurringRule]
	debts        table[Debt]
	investments  table[Investment]
	trades       table[InvestmentTransaction]
	goals        table[SavingsGoal]
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     newTable[Account](),
		transactions: newTable[Transaction](),
		groups:       newTable[CategoryGroup](),
		categories:   newTable[Category](),
		allocations:  newTable[Allocation](),
		rules:        newTable[RecurringRule](),
		debts:        newTable[Debt](),
		investments:  newTable[Investment](),
		trades:       newTable[InvestmentTransaction](),
		goals:        newTable[SavingsGoal](),
	}
}

func notFound(kind, id string) error { return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound) }

func allocationKey(categoryID string, month date.Month) string {
	return categoryID + "@" + month.String()
}

func (s *MemoryStore) Accounts(ctx context.Context) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts.filter(nil), nil
}

func (s *MemoryStore) Account(ctx context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts.get(id)
	if !ok {
		return Account{}, notFound("account", id)
	}
	return a, nil
}

func (s *MemoryStore) PutAccount(ctx context.Context, a Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts.put(a.ID, a)
	return nil
}

func (s *MemoryStore) PutBalance(ctx context.Context, accountID string, balance Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts.get(accountID)
	if !ok {
		return notFound("account", accountID)
	}
	a.Balance = balance.Round()
	s.accounts.put(a.ID, a)
	return nil
}

func (s *MemoryStore) Transactions(ctx context.Context, f TransactionFilter) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txs := s.transactions.filter(f.Match)
	slices.SortStableFunc(txs, func(a, b Transaction) int { return a.Date.Compare(b.Date) })
	return txs, nil
}

func (s *MemoryStore) Transaction(ctx context.Context, id string) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions.get(id)
	if !ok {
		return Transaction{}, notFound("transaction", id)
	}
	return tx, nil
}

func (s *MemoryStore) PutTransaction(ctx context.Context, tx Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions.put(tx.ID, tx)
	return nil
}

func (s *MemoryStore) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.transactions.delete(id) {
		return notFound("transaction", id)
	}
	return nil
}

func (s *MemoryStore) CategoryGroups(ctx context.Context) ([]CategoryGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups.filter(nil), nil
}

func (s *MemoryStore) PutCategoryGroup(ctx context.Context, g CategoryGroup) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups.put(g.ID, g)
	return nil
}

func (s *MemoryStore) Categories(ctx context.Context) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories.filter(nil), nil
}

func (s *MemoryStore) PutCategory(ctx context.Context, c Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories.put(c.ID, c)
	return nil
}

func (s *MemoryStore) Allocations(ctx context.Context, f AllocationFilter) ([]Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allocations.filter(f.Match), nil
}

func (s *MemoryStore) PutAllocation(ctx context.Context, a Allocation) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocations.put(allocationKey(a.CategoryID, a.Month), a)
	return nil
}

func (s *MemoryStore) RecurringRules(ctx context.Context, f RuleFilter) ([]RecurringRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules.filter(f.Match), nil
}

func (s *MemoryStore) RecurringRule(ctx context.Context, id string) (RecurringRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules.get(id)
	if !ok {
		return RecurringRule{}, notFound("recurring rule", id)
	}
	return r, nil
}

// PutRecurringRule stores r as is. Rules are validated by the Ledger when
// created: a stored rule with an unknown frequency must stay readable.
func (s *MemoryStore) PutRecurringRule(ctx context.Context, r RecurringRule) error {
	if r.ID == "" {
		return invalid("recurring rule id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules.put(r.ID, r)
	return nil
}

func (s *MemoryStore) PutRecurringCursor(ctx context.Context, ruleID string, next date.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules.get(ruleID)
	if !ok {
		return notFound("recurring rule", ruleID)
	}
	r.NextDate = next
	s.rules.put(r.ID, r)
	return nil
}

func (s *MemoryStore) Debts(ctx context.Context) ([]Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debts.filter(nil), nil
}

func (s *MemoryStore) PutDebt(ctx context.Context, d Debt) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts.put(d.ID, d)
	return nil
}

func (s *MemoryStore) DeleteDebt(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.debts.delete(id) {
		return notFound("debt", id)
	}
	return nil
}

func (s *MemoryStore) Investments(ctx context.Context) ([]Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.investments.filter(nil), nil
}

func (s *MemoryStore) Investment(ctx context.Context, id string) (Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.investments.get(id)
	if !ok {
		return Investment{}, notFound("investment", id)
	}
	return inv, nil
}

func (s *MemoryStore) PutInvestment(ctx context.Context, inv Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investments.put(inv.ID, inv)
	return nil
}

func (s *MemoryStore) InvestmentTransactions(ctx context.Context, investmentID string) ([]InvestmentTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trades := s.trades.filter(func(t InvestmentTransaction) bool {
		return investmentID == "" || t.InvestmentID == investmentID
	})
	slices.SortStableFunc(trades, func(a, b InvestmentTransaction) int { return a.Date.Compare(b.Date) })
	return trades, nil
}

func (s *MemoryStore) PutInvestmentTransaction(ctx context.Context, t InvestmentTransaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades.put(t.ID, t)
	return nil
}

func (s *MemoryStore) DeleteInvestmentTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.trades.delete(id) {
		return notFound("investment transaction", id)
	}
	return nil
}

func (s *MemoryStore) Goals(ctx context.Context) ([]SavingsGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.goals.filter(nil), nil
}

func (s *MemoryStore) Goal(ctx context.Context, id string) (SavingsGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals.get(id)
	if !ok {
		return SavingsGoal{}, notFound("goal", id)
	}
	return g, nil
}

func (s *MemoryStore) PutGoal(ctx context.Context, g SavingsGoal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals.put(g.ID, g)
	return nil
}

var _ Store = (*MemoryStore)(nil)
