package finance

import (
	"context"
	"fmt"
)

// CopyStore writes every record of src into dst, keeping ids. Records already
// in dst with the same id are overwritten, others are left alone.
func CopyStore(ctx context.Context, dst, src Store) error {
	accounts, err := src.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("cannot read accounts: %w", err)
	}
	if err := putAll(ctx, "account", accounts, dst.PutAccount); err != nil {
		return err
	}
	txs, err := src.Transactions(ctx, TransactionFilter{})
	if err != nil {
		return fmt.Errorf("cannot read transactions: %w", err)
	}
	if err := putAll(ctx, "transaction", txs, dst.PutTransaction); err != nil {
		return err
	}

	groups, err := src.CategoryGroups(ctx)
	if err != nil {
		return fmt.Errorf("cannot read category groups: %w", err)
	}
	if err := putAll(ctx, "category group", groups, dst.PutCategoryGroup); err != nil {
		return err
	}
	categories, err := src.Categories(ctx)
	if err != nil {
		return fmt.Errorf("cannot read categories: %w", err)
	}
	if err := putAll(ctx, "category", categories, dst.PutCategory); err != nil {
		return err
	}
	allocations, err := src.Allocations(ctx, AllocationFilter{})
	if err != nil {
		return fmt.Errorf("cannot read allocations: %w", err)
	}
	if err := putAll(ctx, "allocation", allocations, dst.PutAllocation); err != nil {
		return err
	}

	rules, err := src.RecurringRules(ctx, RuleFilter{})
	if err != nil {
		return fmt.Errorf("cannot read recurring rules: %w", err)
	}
	if err := putAll(ctx, "recurring rule", rules, dst.PutRecurringRule); err != nil {
		return err
	}
	debts, err := src.Debts(ctx)
	if err != nil {
		return fmt.Errorf("cannot read debts: %w", err)
	}
	if err := putAll(ctx, "debt", debts, dst.PutDebt); err != nil {
		return err
	}

	investments, err := src.Investments(ctx)
	if err != nil {
		return fmt.Errorf("cannot read investments: %w", err)
	}
	if err := putAll(ctx, "investment", investments, dst.PutInvestment); err != nil {
		return err
	}
	for _, inv := range investments {
		trades, err := src.InvestmentTransactions(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("cannot read trades of %s: %w", inv.Ticker, err)
		}
		if err := putAll(ctx, "trade", trades, dst.PutInvestmentTransaction); err != nil {
			return err
		}
	}

	goals, err := src.Goals(ctx)
	if err != nil {
		return fmt.Errorf("cannot read goals: %w", err)
	}
	return putAll(ctx, "goal", goals, dst.PutGoal)
}

func putAll[T any](ctx context.Context, kind string, rows []T, put func(context.Context, T) error) error {
	for i, row := range rows {
		if err := put(ctx, row); err != nil {
			return fmt.Errorf("cannot copy %s #%d: %w", kind, i+1, err)
		}
	}
	return nil
}
