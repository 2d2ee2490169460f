package finance

import (
	"context"

	"github.com/etnz/finance/date"
)

// lastMonths returns the n months ending with the current one.
func (l *Ledger) lastMonths(n int) []date.Month {
	if n <= 0 {
		n = 12
	}
	end := date.MonthOf(l.today())
	months := make([]date.Month, n)
	for i := range months {
		months[i] = end.Add(i - n + 1)
	}
	return months
}

// SpendingByCategory sums the categorized spending within r.
func (l *Ledger) SpendingByCategory(ctx context.Context, r date.Range) ([]CategorySpending, error) {
	groups, err := l.store.CategoryGroups(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := l.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := l.store.Transactions(ctx, TransactionFilter{From: r.From, To: r.To})
	if err != nil {
		return nil, err
	}
	return SpendingByCategory(groups, cats, txs, r), nil
}

// IncomeVsExpense returns the income and expenses of the last n months.
func (l *Ledger) IncomeVsExpense(ctx context.Context, n int) ([]MonthFlow, error) {
	months := l.lastMonths(n)
	txs, err := l.store.Transactions(ctx, TransactionFilter{From: months[0].First(), To: months[len(months)-1].Last()})
	if err != nil {
		return nil, err
	}
	return IncomeVsExpense(txs, months), nil
}

// NetWorth returns the net worth at the end of each of the last n months.
func (l *Ledger) NetWorth(ctx context.Context, n int) ([]NetWorthPoint, error) {
	months := l.lastMonths(n)
	txs, err := l.store.Transactions(ctx, TransactionFilter{To: months[len(months)-1].Last()})
	if err != nil {
		return nil, err
	}
	return NetWorth(txs, months), nil
}

// BudgetVsActual compares assignments and spending of month.
func (l *Ledger) BudgetVsActual(ctx context.Context, month date.Month) ([]BudgetActual, error) {
	groups, cats, allocs, txs, err := l.budgetInputs(ctx, month)
	if err != nil {
		return nil, err
	}
	return BudgetVsActual(month, groups, cats, allocs, txs), nil
}

// AgeOfMoney returns the age in days of the oldest money held.
func (l *Ledger) AgeOfMoney(ctx context.Context) (int, date.Date, error) {
	accounts, err := l.store.Accounts(ctx)
	if err != nil {
		return 0, date.Date{}, err
	}
	txs, err := l.store.Transactions(ctx, TransactionFilter{})
	if err != nil {
		return 0, date.Date{}, err
	}
	days, oldest := AgeOfMoney(accounts, txs, l.today())
	return days, oldest, nil
}

// Insights returns remarks about the current month compared to the previous one.
func (l *Ledger) Insights(ctx context.Context) ([]Insight, error) {
	today := l.today()
	month := date.MonthOf(today)
	cats, err := l.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	allocs, err := l.store.Allocations(ctx, AllocationFilter{Month: month})
	if err != nil {
		return nil, err
	}
	txs, err := l.store.Transactions(ctx, TransactionFilter{From: month.Prev().First(), To: month.Last()})
	if err != nil {
		return nil, err
	}
	return Insights(cats, allocs, txs, today), nil
}

// SpendingTrend returns the spending per category of each of the last n months.
func (l *Ledger) SpendingTrend(ctx context.Context, n int) ([]date.Month, []CategoryTrend, error) {
	months := l.lastMonths(n)
	cats, err := l.store.Categories(ctx)
	if err != nil {
		return nil, nil, err
	}
	txs, err := l.store.Transactions(ctx, TransactionFilter{From: months[0].First(), To: months[len(months)-1].Last()})
	if err != nil {
		return nil, nil, err
	}
	return months, SpendingTrend(cats, txs, months), nil
}

// IncomeFlow returns where the income of month went.
func (l *Ledger) IncomeFlow(ctx context.Context, month date.Month) (MoneyFlow, error) {
	groups, err := l.store.CategoryGroups(ctx)
	if err != nil {
		return MoneyFlow{}, err
	}
	cats, err := l.store.Categories(ctx)
	if err != nil {
		return MoneyFlow{}, err
	}
	txs, err := l.store.Transactions(ctx, TransactionFilter{From: month.First(), To: month.Last()})
	if err != nil {
		return MoneyFlow{}, err
	}
	return IncomeFlow(month, groups, cats, txs), nil
}

// maxPayees bounds the payees suggested at once.
const maxPayees = 20

// Payees returns up to 20 known payees containing q, for autocompletion.
func (l *Ledger) Payees(ctx context.Context, q string) ([]string, error) {
	txs, err := l.store.Transactions(ctx, TransactionFilter{})
	if err != nil {
		return nil, err
	}
	return Payees(txs, q, maxPayees), nil
}
