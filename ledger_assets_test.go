package finance

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLedger_Investments(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()

	inv, err := l.AddInvestment(ctx, Investment{Ticker: "VT", Name: "World", Quantity: Q(99)})
	if err != nil {
		t.Fatalf("AddInvestment() error = %v", err)
	}
	if !inv.Quantity.IsZero() {
		t.Errorf("new investment holds %s, want nothing before any trade", inv.Quantity)
	}

	buy, err := l.AddInvestmentTrade(ctx, InvestmentTransaction{InvestmentID: inv.ID, Quantity: Q(100), Price: USD(10), Date: d("2025-03-15")})
	if err != nil {
		t.Fatalf("AddInvestmentTrade() error = %v", err)
	}
	if !buy.Quantity.Equal(Q(100)) || !buy.AveragePrice.Equal(USD(10)) {
		t.Errorf("after buy: %s @ %s, want 100 @ 10.00", buy.Quantity, buy.AveragePrice)
	}
	if _, err := l.SetCurrentPrice(ctx, inv.ID, USD(11)); err != nil {
		t.Fatalf("SetCurrentPrice() error = %v", err)
	}

	reports, err := l.InvestmentReports(ctx)
	if err != nil || len(reports) != 1 {
		t.Fatalf("InvestmentReports() = %v, %v", reports, err)
	}
	r := reports[0]
	if !r.MarketValue.Equal(USD(1100)) || !r.Gain.Equal(USD(100)) {
		t.Errorf("value %s gain %s, want 1100.00 and 100.00", r.MarketValue, r.Gain)
	}
	if !r.HasXIRR || r.XIRR < 9.9 || r.XIRR > 10.1 {
		t.Errorf("XIRR = %s (%v), want about 10%%", r.XIRR, r.HasXIRR)
	}

	sell, err := l.AddInvestmentTrade(ctx, InvestmentTransaction{InvestmentID: inv.ID, Type: Sell, Quantity: Q(40), Price: USD(12), Date: d("2025-06-01")})
	if err != nil {
		t.Fatalf("AddInvestmentTrade(sell) error = %v", err)
	}
	if !sell.Quantity.Equal(Q(60)) || !sell.AveragePrice.Equal(USD(10)) {
		t.Errorf("after sell: %s @ %s, want 60 @ 10.00", sell.Quantity, sell.AveragePrice)
	}

	trades, _ := store.InvestmentTransactions(ctx, inv.ID)
	undone, err := l.DeleteInvestmentTrade(ctx, inv.ID, trades[len(trades)-1].ID)
	if err != nil || !undone.Quantity.Equal(Q(100)) {
		t.Errorf("DeleteInvestmentTrade() = %s, %v, want 100 held again", undone.Quantity, err)
	}
	if _, err := l.DeleteInvestmentTrade(ctx, inv.ID, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteInvestmentTrade(unknown) error = %v", err)
	}
	if _, err := l.AddInvestmentTrade(ctx, InvestmentTransaction{InvestmentID: "nope", Quantity: Q(1), Price: USD(1), Date: d("2025-01-01")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddInvestmentTrade(unknown investment) error = %v", err)
	}
	if _, err := l.SetCurrentPrice(ctx, inv.ID, USD(-1)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SetCurrentPrice(-1) error = %v", err)
	}
}

func TestLedger_Debts(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := t.Context()
	for _, dt := range []Debt{
		{Name: "Card", Balance: USD(1000), Rate: decimal.NewFromInt(20), MinPayment: USD(50)},
		{Name: "Loan", Balance: USD(500), Rate: decimal.NewFromInt(10), MinPayment: USD(25)},
	} {
		if _, err := l.AddDebt(ctx, dt); err != nil {
			t.Fatalf("AddDebt(%s) error = %v", dt.Name, err)
		}
	}
	scheds, err := l.Debts(ctx)
	if err != nil || len(scheds) != 2 || scheds[0].Debt.Name != "Card" {
		t.Fatalf("Debts() = %v, %v, want the card first", scheds, err)
	}
	cmp, err := l.DebtStrategies(ctx)
	if err != nil || !cmp.Snowball.Payable || !cmp.Avalanche.Payable {
		t.Errorf("DebtStrategies() = %+v, %v", cmp, err)
	}
	if err := l.RemoveDebt(ctx, scheds[0].Debt.ID); err != nil {
		t.Fatalf("RemoveDebt() error = %v", err)
	}
	if scheds, _ := l.Debts(ctx); len(scheds) != 1 {
		t.Errorf("got %d debts after removal, want 1", len(scheds))
	}
	if _, err := l.AddDebt(ctx, Debt{Name: "Bad", Balance: USD(-1)}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("AddDebt(negative) error = %v", err)
	}
}

func TestLedger_Goals(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := t.Context()
	g, err := l.AddGoal(ctx, SavingsGoal{Name: "Bike", Target: USD(500), TargetDate: d("2026-12-01")})
	if err != nil || g.Status != GoalActive {
		t.Fatalf("AddGoal() = %+v, %v", g, err)
	}
	if g, err = l.Contribute(ctx, g.ID, USD(200)); err != nil || !g.Saved.Equal(USD(200)) {
		t.Errorf("Contribute(200) = %s, %v", g.Saved, err)
	}
	if g, _ = l.Contribute(ctx, g.ID, USD(300)); g.Status != GoalCompleted {
		t.Errorf("status = %s, want completed", g.Status)
	}
	if _, err := l.Contribute(ctx, "nope", USD(1)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Contribute(unknown) error = %v", err)
	}
	if _, err := l.AddGoal(ctx, SavingsGoal{Name: "Car", Target: USD(1), CategoryID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddGoal() with an unknown category: error = %v", err)
	}
}
