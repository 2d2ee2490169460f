package finance

import (
	"testing"
)

func trade(typ TradeType, qty, price float64, on string) InvestmentTransaction {
	return InvestmentTransaction{ID: on + string(typ), InvestmentID: "vt", Type: typ, Quantity: Q(qty), Price: USD(price), Date: d(on)}
}

func TestDeriveHolding(t *testing.T) {
	tests := []struct {
		name    string
		trades  []InvestmentTransaction
		qty     float64
		average float64
		cost    float64
	}{
		{"none", nil, 0, 0, 0},
		{"single buy", []InvestmentTransaction{trade(Buy, 100, 10, "2025-01-01")}, 100, 10, 1000},
		{"buy and sip", []InvestmentTransaction{
			trade(Buy, 10, 100, "2025-01-01"),
			trade(SIP, 10, 110, "2025-02-01"),
		}, 20, 105, 2100},
		{"sell keeps average", []InvestmentTransaction{
			trade(Buy, 10, 100, "2025-01-01"),
			trade(Buy, 10, 110, "2025-02-01"),
			trade(Sell, 5, 200, "2025-03-01"),
		}, 15, 105, 1575},
		{"replayed in date order", []InvestmentTransaction{
			trade(Sell, 5, 200, "2025-03-01"),
			trade(Buy, 10, 100, "2025-01-01"),
		}, 5, 100, 500},
		{"sold out", []InvestmentTransaction{
			trade(Buy, 10, 100, "2025-01-01"),
			trade(Sell, 10, 120, "2025-02-01"),
		}, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := DeriveHolding(tt.trades)
			if !h.Quantity.Equal(Q(tt.qty)) {
				t.Errorf("quantity = %s, want %v", h.Quantity, tt.qty)
			}
			if !h.AveragePrice.Equal(USD(tt.average)) {
				t.Errorf("average price = %s, want %v", h.AveragePrice, tt.average)
			}
			if !h.Cost.Equal(USD(tt.cost)) {
				t.Errorf("cost = %s, want %v", h.Cost, tt.cost)
			}
		})
	}
}

func TestCashFlows(t *testing.T) {
	inv := Investment{ID: "vt", Ticker: "VT", Name: "World", Quantity: Q(5), CurrentPrice: USD(120)}
	trades := []InvestmentTransaction{
		trade(Buy, 10, 100, "2025-01-01"),
		trade(Sell, 5, 110, "2025-06-01"),
	}
	flows := CashFlows(inv, trades, d("2026-01-01"))
	want := []CashFlow{
		{Date: d("2025-01-01"), Amount: USD(1000)},
		{Date: d("2025-06-01"), Amount: USD(-550)},
		{Date: d("2026-01-01"), Amount: USD(-600)},
	}
	if len(flows) != len(want) {
		t.Fatalf("CashFlows() = %v, want %v", flows, want)
	}
	for i := range want {
		if flows[i].Date != want[i].Date || !flows[i].Amount.Equal(want[i].Amount) {
			t.Errorf("flow %d = %v, want %v", i, flows[i], want[i])
		}
	}

	// nothing held, no final flow.
	inv.Quantity = Q(0)
	if flows := CashFlows(inv, trades, d("2026-01-01")); len(flows) != 2 {
		t.Errorf("CashFlows() of a closed position has %d flows, want 2", len(flows))
	}
}

func TestNewInvestmentReport(t *testing.T) {
	trades := []InvestmentTransaction{trade(Buy, 100, 10, "2025-01-01")}
	inv := DeriveHolding(trades).Apply(Investment{ID: "vt", Ticker: "VT", Name: "World", CurrentPrice: USD(11)})

	r := NewInvestmentReport(inv, trades, d("2026-01-01"))
	if !r.MarketValue.Equal(USD(1100)) || !r.Cost.Equal(USD(1000)) || !r.Gain.Equal(USD(100)) {
		t.Errorf("report = value %s cost %s gain %s, want 1100 1000 100", r.MarketValue, r.Cost, r.Gain)
	}
	if !r.HasXIRR || r.XIRR < 9.9 || r.XIRR > 10.1 {
		t.Errorf("XIRR = %s (%v), want about 10%%", r.XIRR, r.HasXIRR)
	}
	if r.Trades != 1 {
		t.Errorf("trades = %d, want 1", r.Trades)
	}
}

func TestInvestment_Price(t *testing.T) {
	inv := Investment{Quantity: Q(2), AveragePrice: USD(50)}
	if !inv.MarketValue().Equal(USD(100)) {
		t.Errorf("MarketValue() without a current price = %s, want 100", inv.MarketValue())
	}
	inv.CurrentPrice = USD(60)
	if !inv.MarketValue().Equal(USD(120)) {
		t.Errorf("MarketValue() = %s, want 120", inv.MarketValue())
	}
}

func TestParseTradeType(t *testing.T) {
	for in, want := range map[string]TradeType{"": Buy, "BUY": Buy, "sell": Sell, " sip ": SIP} {
		if got, err := ParseTradeType(in); err != nil || got != want {
			t.Errorf("ParseTradeType(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
	if _, err := ParseTradeType("short"); err == nil {
		t.Errorf("ParseTradeType(short) succeeded")
	}
}
