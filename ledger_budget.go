package finance

import (
	"context"
	"fmt"
	"slices"

	"github.com/etnz/finance/date"
)

// AddCategoryGroup creates a category group.
func (l *Ledger) AddCategoryGroup(ctx context.Context, name string, sort int) (CategoryGroup, error) {
	g := CategoryGroup{ID: l.newID(), Name: name, Sort: sort}
	if err := g.Validate(); err != nil {
		return CategoryGroup{}, err
	}
	if err := l.store.PutCategoryGroup(ctx, g); err != nil {
		return CategoryGroup{}, fmt.Errorf("cannot create category group %q: %w", name, err)
	}
	return g, nil
}

// AddCategory creates a category in an existing group.
func (l *Ledger) AddCategory(ctx context.Context, c Category) (Category, error) {
	if c.ID == "" {
		c.ID = l.newID()
	}
	if err := c.Validate(); err != nil {
		return Category{}, err
	}
	groups, err := l.store.CategoryGroups(ctx)
	if err != nil {
		return Category{}, err
	}
	if !slices.ContainsFunc(groups, func(g CategoryGroup) bool { return g.ID == c.GroupID }) {
		return Category{}, notFound("category group", c.GroupID)
	}
	if err := l.store.PutCategory(ctx, c); err != nil {
		return Category{}, fmt.Errorf("cannot create category %q: %w", c.Name, err)
	}
	return c, nil
}

// SetCategoryGoal replaces the goal of a category.
func (l *Ledger) SetCategoryGoal(ctx context.Context, categoryID string, goal CategoryGoal) (Category, error) {
	if err := goal.Validate(); err != nil {
		return Category{}, err
	}
	unlock, err := l.locker.Lock(ctx, categoryKey(categoryID))
	if err != nil {
		return Category{}, err
	}
	defer unlock()
	c, err := l.category(ctx, categoryID)
	if err != nil {
		return Category{}, err
	}
	c.Goal = goal
	return c, l.store.PutCategory(ctx, c)
}

func (l *Ledger) category(ctx context.Context, id string) (Category, error) {
	cats, err := l.store.Categories(ctx)
	if err != nil {
		return Category{}, err
	}
	i := slices.IndexFunc(cats, func(c Category) bool { return c.ID == id })
	if i < 0 {
		return Category{}, notFound("category", id)
	}
	return cats[i], nil
}

// budgetInputs reads everything a budget of month depends on.
func (l *Ledger) budgetInputs(ctx context.Context, month date.Month) ([]CategoryGroup, []Category, []Allocation, []Transaction, error) {
	groups, err := l.store.CategoryGroups(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cats, err := l.store.Categories(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	allocs, err := l.store.Allocations(ctx, AllocationFilter{Through: month})
	if err != nil {
		return nil, nil, nil, nil, err
	}
	txs, err := l.store.Transactions(ctx, TransactionFilter{To: month.Last()})
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return groups, cats, allocs, txs, nil
}

// Budget returns the budget of every category for month.
func (l *Ledger) Budget(ctx context.Context, month date.Month) (MonthBudget, error) {
	groups, cats, allocs, txs, err := l.budgetInputs(ctx, month)
	if err != nil {
		return MonthBudget{}, fmt.Errorf("cannot read budget of %s: %w", month, err)
	}
	return NewMonthBudget(month, groups, cats, allocs, txs), nil
}

// BudgetSummary returns the month totals, including the money left to budget.
func (l *Ledger) BudgetSummary(ctx context.Context, month date.Month) (BudgetSummary, error) {
	allocs, err := l.store.Allocations(ctx, AllocationFilter{Through: month})
	if err != nil {
		return BudgetSummary{}, err
	}
	txs, err := l.store.Transactions(ctx, TransactionFilter{To: month.Last()})
	if err != nil {
		return BudgetSummary{}, err
	}
	return NewBudgetSummary(month, allocs, txs), nil
}

// Assign sets the amount assigned to a category for month.
func (l *Ledger) Assign(ctx context.Context, categoryID string, month date.Month, amount Money) (Allocation, error) {
	a := Allocation{CategoryID: categoryID, Month: month, Assigned: amount}
	if err := a.Validate(); err != nil {
		return Allocation{}, err
	}
	unlock, err := l.locker.Lock(ctx, categoryKey(categoryID))
	if err != nil {
		return Allocation{}, err
	}
	defer unlock()
	if _, err := l.category(ctx, categoryID); err != nil {
		return Allocation{}, err
	}
	if err := l.store.PutAllocation(ctx, a); err != nil {
		return Allocation{}, fmt.Errorf("cannot assign %s to %s in %s: %w", amount, categoryID, month, err)
	}
	return a, nil
}

// MoveMoney moves an assigned amount between two categories within month.
// No transaction is created.
func (l *Ledger) MoveMoney(ctx context.Context, from, to string, month date.Month, amount Money) (src, dst Allocation, err error) {
	if _, _, err := MoveMoney(nil, from, to, month, amount); err != nil {
		return src, dst, err
	}
	unlock, err := lockAll(ctx, l.locker, categoryKey(from), categoryKey(to))
	if err != nil {
		return src, dst, err
	}
	defer unlock()
	for _, id := range []string{from, to} {
		if _, err := l.category(ctx, id); err != nil {
			return src, dst, err
		}
	}
	allocs, err := l.store.Allocations(ctx, AllocationFilter{Month: month})
	if err != nil {
		return src, dst, err
	}
	if src, dst, err = MoveMoney(allocs, from, to, month, amount); err != nil {
		return src, dst, err
	}
	if err := l.store.PutAllocation(ctx, src); err != nil {
		return src, dst, err
	}
	if err := l.store.PutAllocation(ctx, dst); err != nil {
		return src, dst, err
	}
	l.log.Info().Str("from", from).Str("to", to).Stringer("month", month).Stringer("amount", amount).Msg("money moved")
	return src, dst, nil
}

// CopyPreviousMonth copies last month's assignments into month for every
// category without an assignment yet, and returns the number of rows copied.
func (l *Ledger) CopyPreviousMonth(ctx context.Context, month date.Month) (int, error) {
	if month.IsZero() {
		return 0, invalid("copy budget: month is required")
	}
	cats, err := l.store.Categories(ctx)
	if err != nil {
		return 0, err
	}
	keys := make([]string, len(cats))
	for i, c := range cats {
		keys[i] = categoryKey(c.ID)
	}
	unlock, err := lockAll(ctx, l.locker, keys...)
	if err != nil {
		return 0, err
	}
	defer unlock()

	prev, err := l.store.Allocations(ctx, AllocationFilter{Month: month.Prev()})
	if err != nil {
		return 0, err
	}
	cur, err := l.store.Allocations(ctx, AllocationFilter{Month: month})
	if err != nil {
		return 0, err
	}
	copies := CopyPreviousMonth(append(prev, cur...), month)
	for _, a := range copies {
		if err := l.store.PutAllocation(ctx, a); err != nil {
			return 0, err
		}
	}
	return len(copies), nil
}
