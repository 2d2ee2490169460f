package finance

import (
	"context"
	"fmt"
	"slices"
)

// AddDebt stores a new debt.
func (l *Ledger) AddDebt(ctx context.Context, d Debt) (Debt, error) {
	if d.ID == "" {
		d.ID = l.newID()
	}
	if err := d.Validate(); err != nil {
		return Debt{}, err
	}
	if err := l.store.PutDebt(ctx, d); err != nil {
		return Debt{}, fmt.Errorf("cannot create debt %q: %w", d.Name, err)
	}
	return d, nil
}

// RemoveDebt deletes a debt.
func (l *Ledger) RemoveDebt(ctx context.Context, id string) error { return l.store.DeleteDebt(ctx, id) }

// Debts returns every debt with its standalone payoff schedule, highest rate first.
func (l *Ledger) Debts(ctx context.Context) ([]DebtSchedule, error) {
	debts, err := l.store.Debts(ctx)
	if err != nil {
		return nil, err
	}
	return Schedules(debts), nil
}

// DebtStrategies compares snowball and avalanche payoffs of every debt.
func (l *Ledger) DebtStrategies(ctx context.Context) (DebtComparison, error) {
	debts, err := l.store.Debts(ctx)
	if err != nil {
		return DebtComparison{}, err
	}
	return CompareStrategies(debts), nil
}

// AddInvestment stores a new investment. Its position starts empty.
func (l *Ledger) AddInvestment(ctx context.Context, inv Investment) (Investment, error) {
	if inv.ID == "" {
		inv.ID = l.newID()
	}
	inv.Quantity, inv.AveragePrice = Quantity{}, Money{}
	if err := inv.Validate(); err != nil {
		return Investment{}, err
	}
	if err := l.store.PutInvestment(ctx, inv); err != nil {
		return Investment{}, fmt.Errorf("cannot create investment %q: %w", inv.Ticker, err)
	}
	return inv, nil
}

// rederive replays the full trade history of an investment and persists the
// resulting position. Callers hold the investment lock.
func (l *Ledger) rederive(ctx context.Context, id string) (Investment, error) {
	inv, err := l.store.Investment(ctx, id)
	if err != nil {
		return Investment{}, err
	}
	trades, err := l.store.InvestmentTransactions(ctx, id)
	if err != nil {
		return Investment{}, err
	}
	inv = DeriveHolding(trades).Apply(inv)
	if err := l.store.PutInvestment(ctx, inv); err != nil {
		return Investment{}, err
	}
	l.log.Debug().Str("investment", id).Stringer("quantity", inv.Quantity).Stringer("average", inv.AveragePrice).Msg("holding derived")
	return inv, nil
}

// AddInvestmentTrade records a buy, sell or sip and re-derives the position.
func (l *Ledger) AddInvestmentTrade(ctx context.Context, t InvestmentTransaction) (Investment, error) {
	if t.ID == "" {
		t.ID = l.newID()
	}
	if t.Type == "" {
		t.Type = Buy
	}
	if err := t.Validate(); err != nil {
		return Investment{}, err
	}
	unlock, err := l.locker.Lock(ctx, investmentKey(t.InvestmentID))
	if err != nil {
		return Investment{}, err
	}
	defer unlock()
	if _, err := l.store.Investment(ctx, t.InvestmentID); err != nil {
		return Investment{}, err
	}
	if err := l.store.PutInvestmentTransaction(ctx, t); err != nil {
		return Investment{}, fmt.Errorf("cannot record trade: %w", err)
	}
	return l.rederive(ctx, t.InvestmentID)
}

// DeleteInvestmentTrade removes a trade and re-derives the position.
func (l *Ledger) DeleteInvestmentTrade(ctx context.Context, investmentID, tradeID string) (Investment, error) {
	unlock, err := l.locker.Lock(ctx, investmentKey(investmentID))
	if err != nil {
		return Investment{}, err
	}
	defer unlock()
	trades, err := l.store.InvestmentTransactions(ctx, investmentID)
	if err != nil {
		return Investment{}, err
	}
	if !slices.ContainsFunc(trades, func(t InvestmentTransaction) bool { return t.ID == tradeID }) {
		return Investment{}, notFound("investment transaction", tradeID)
	}
	if err := l.store.DeleteInvestmentTransaction(ctx, tradeID); err != nil {
		return Investment{}, err
	}
	return l.rederive(ctx, investmentID)
}

// SetCurrentPrice updates the market price of an investment.
func (l *Ledger) SetCurrentPrice(ctx context.Context, id string, price Money) (Investment, error) {
	if price.IsNegative() {
		return Investment{}, invalid("negative price %s", price)
	}
	unlock, err := l.locker.Lock(ctx, investmentKey(id))
	if err != nil {
		return Investment{}, err
	}
	defer unlock()
	inv, err := l.store.Investment(ctx, id)
	if err != nil {
		return Investment{}, err
	}
	inv.CurrentPrice = price.Round()
	if err := l.store.PutInvestment(ctx, inv); err != nil {
		return Investment{}, err
	}
	return inv, nil
}

// InvestmentReports values every investment and computes its XIRR as of today.
func (l *Ledger) InvestmentReports(ctx context.Context) ([]InvestmentReport, error) {
	invs, err := l.store.Investments(ctx)
	if err != nil {
		return nil, err
	}
	today := l.today()
	reports := make([]InvestmentReport, 0, len(invs))
	for _, inv := range invs {
		trades, err := l.store.InvestmentTransactions(ctx, inv.ID)
		if err != nil {
			return nil, err
		}
		reports = append(reports, NewInvestmentReport(inv, trades, today))
	}
	return reports, nil
}

// AddGoal stores a new savings goal. The status defaults to active.
func (l *Ledger) AddGoal(ctx context.Context, g SavingsGoal) (SavingsGoal, error) {
	if g.ID == "" {
		g.ID = l.newID()
	}
	if g.Status == "" {
		g.Status = GoalActive
	}
	if g.Saved.GreaterThanOrEqual(g.Target) && g.Target.IsPositive() {
		g.Status = GoalCompleted
	}
	if err := g.Validate(); err != nil {
		return SavingsGoal{}, err
	}
	if err := l.checkCategory(ctx, g.CategoryID); err != nil {
		return SavingsGoal{}, err
	}
	if err := l.store.PutGoal(ctx, g); err != nil {
		return SavingsGoal{}, fmt.Errorf("cannot create goal %q: %w", g.Name, err)
	}
	return g, nil
}

// Contribute adds money to a savings goal, completing it once the target is reached.
func (l *Ledger) Contribute(ctx context.Context, goalID string, amount Money) (SavingsGoal, error) {
	unlock, err := l.locker.Lock(ctx, goalKey(goalID))
	if err != nil {
		return SavingsGoal{}, err
	}
	defer unlock()
	g, err := l.store.Goal(ctx, goalID)
	if err != nil {
		return SavingsGoal{}, err
	}
	if g, err = g.Contribute(amount); err != nil {
		return SavingsGoal{}, err
	}
	if err := l.store.PutGoal(ctx, g); err != nil {
		return SavingsGoal{}, err
	}
	return g, nil
}
