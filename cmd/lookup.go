package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/shopspring/decimal"
)

// find returns the item whose id is ref, or else the only one named ref (case insensitive).
func find[T any](items []T, kind, ref string, key func(T) (id, name string)) (T, error) {
	var zero T
	if ref == "" {
		return zero, fmt.Errorf("%s is required: %w", kind, finance.ErrInvalidInput)
	}
	var matches []T
	for _, it := range items {
		id, name := key(it)
		if id == ref {
			return it, nil
		}
		if strings.EqualFold(name, ref) {
			matches = append(matches, it)
		}
	}
	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("%s %q: %w", kind, ref, finance.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return zero, fmt.Errorf("%s %q is ambiguous, use its id", kind, ref)
}

func findAccount(ctx context.Context, l *finance.Ledger, ref string) (finance.Account, error) {
	accounts, err := l.Accounts(ctx)
	if err != nil {
		return finance.Account{}, err
	}
	return find(accounts, "account", ref, func(a finance.Account) (string, string) { return a.ID, a.Name })
}

// findCategory resolves ref, the empty ref being no category.
func findCategory(ctx context.Context, l *finance.Ledger, ref string) (finance.Category, error) {
	if ref == "" {
		return finance.Category{}, nil
	}
	cats, err := l.Store().Categories(ctx)
	if err != nil {
		return finance.Category{}, err
	}
	return find(cats, "category", ref, func(c finance.Category) (string, string) { return c.ID, c.Name })
}

func findGroup(ctx context.Context, l *finance.Ledger, ref string) (finance.CategoryGroup, error) {
	groups, err := l.Store().CategoryGroups(ctx)
	if err != nil {
		return finance.CategoryGroup{}, err
	}
	return find(groups, "category group", ref, func(g finance.CategoryGroup) (string, string) { return g.ID, g.Name })
}

func findRule(ctx context.Context, l *finance.Ledger, ref string) (finance.RecurringRule, error) {
	rules, err := l.Store().RecurringRules(ctx, finance.RuleFilter{})
	if err != nil {
		return finance.RecurringRule{}, err
	}
	return find(rules, "recurring rule", ref, func(r finance.RecurringRule) (string, string) { return r.ID, r.Payee })
}

func findDebt(ctx context.Context, l *finance.Ledger, ref string) (finance.Debt, error) {
	debts, err := l.Store().Debts(ctx)
	if err != nil {
		return finance.Debt{}, err
	}
	return find(debts, "debt", ref, func(d finance.Debt) (string, string) { return d.ID, d.Name })
}

func findInvestment(ctx context.Context, l *finance.Ledger, ref string) (finance.Investment, error) {
	invs, err := l.Store().Investments(ctx)
	if err != nil {
		return finance.Investment{}, err
	}
	return find(invs, "investment", ref, func(i finance.Investment) (string, string) { return i.ID, i.Ticker })
}

func findGoal(ctx context.Context, l *finance.Ledger, ref string) (finance.SavingsGoal, error) {
	goals, err := l.Store().Goals(ctx)
	if err != nil {
		return finance.SavingsGoal{}, err
	}
	return find(goals, "goal", ref, func(g finance.SavingsGoal) (string, string) { return g.ID, g.Name })
}

// names maps account and category ids to their names, for rendering.
func names(ctx context.Context, l *finance.Ledger) (map[string]string, error) {
	res := make(map[string]string)
	accounts, err := l.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		res[a.ID] = a.Name
	}
	cats, err := l.Store().Categories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		res[c.ID] = c.Name
	}
	return res, nil
}

// parseDay parses a YYYY-MM-DD flag, the empty string being today.
func parseDay(l *finance.Ledger, s string) (date.Date, error) {
	if s == "" {
		return l.Today(), nil
	}
	return date.Parse(s)
}

// parseMonth parses a YYYY-MM flag, the empty string being the current month.
func parseMonth(l *finance.Ledger, s string) (date.Month, error) {
	if s == "" {
		return date.MonthOf(l.Today()), nil
	}
	return date.ParseMonth(s)
}

func parseAmount(name, s string) (finance.Money, error) {
	if s == "" {
		return finance.Money{}, fmt.Errorf("-%s is required: %w", name, finance.ErrInvalidInput)
	}
	m, err := finance.ParseMoney(s)
	if err != nil {
		return m, fmt.Errorf("-%s: %w", name, err)
	}
	return m, nil
}

func parseQuantity(s string) (finance.Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return finance.Quantity{}, fmt.Errorf("invalid quantity %q: %w", s, finance.ErrInvalidInput)
	}
	return finance.Q(d), nil
}
