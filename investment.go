package finance

import (
	"slices"
	"strings"

	"github.com/etnz/finance/date"
)

// TradeType is the kind of an investment transaction.
type TradeType string

const (
	Buy  TradeType = "buy"
	Sell TradeType = "sell"
	SIP  TradeType = "sip" // systematic investment plan purchase
)

// ParseTradeType parses a trade type name, defaulting to Buy when empty.
func ParseTradeType(s string) (TradeType, error) {
	switch t := TradeType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return Buy, nil
	case Buy, Sell, SIP:
		return t, nil
	}
	return "", invalid("unknown trade type %q", s)
}

// SIPPlan configures periodic purchases of an investment.
type SIPPlan struct {
	Enabled   bool        `json:"enabled,omitempty"`
	Amount    Money       `json:"amount"`
	Frequency date.Period `json:"frequency,omitempty"`
	Day       int         `json:"day,omitempty"`
}

// QuoteSource tells where to fetch the current price of an investment:
// a JSON document at URL and a JSONPath expression selecting the price in it.
type QuoteSource struct {
	URL  string `json:"url,omitempty"`
	Path string `json:"path,omitempty"`
}

// Investment is a position in a security.
//
// Quantity and AveragePrice are derived from the investment transactions by
// DeriveHolding every time they change, never patched incrementally.
type Investment struct {
	ID           string      `json:"id"`
	Ticker       string      `json:"ticker"`
	Name         string      `json:"name"`
	AssetClass   string      `json:"assetClass,omitempty"`
	Quantity     Quantity    `json:"quantity"`
	AveragePrice Money       `json:"averagePrice"`
	CurrentPrice Money       `json:"currentPrice"` // zero when unknown
	SIP          SIPPlan     `json:"sip"`
	Quote        QuoteSource `json:"quote"`
}

// Validate checks the investment for missing required fields.
func (inv Investment) Validate() error {
	switch {
	case inv.ID == "":
		return invalid("investment id is required")
	case strings.TrimSpace(inv.Ticker) == "":
		return invalid("investment %s: ticker is required", inv.ID)
	case strings.TrimSpace(inv.Name) == "":
		return invalid("investment %s: name is required", inv.ID)
	case inv.CurrentPrice.IsNegative():
		return invalid("investment %s: negative price %s", inv.ID, inv.CurrentPrice)
	case inv.SIP.Enabled && !inv.SIP.Frequency.Valid():
		return invalid("investment %s: sip frequency %q is unknown", inv.ID, string(inv.SIP.Frequency))
	}
	return nil
}

// Price returns the current price, or the average price when it is unknown.
func (inv Investment) Price() Money {
	if inv.CurrentPrice.IsZero() {
		return inv.AveragePrice
	}
	return inv.CurrentPrice
}

// MarketValue returns the quantity valued at Price.
func (inv Investment) MarketValue() Money { return inv.Price().Mul(inv.Quantity) }

// InvestmentTransaction is a buy, sell or sip of an investment.
type InvestmentTransaction struct {
	ID           string    `json:"id"`
	InvestmentID string    `json:"investmentId"`
	Type         TradeType `json:"type"`
	Quantity     Quantity  `json:"quantity"`
	Price        Money     `json:"price"`
	Date         date.Date `json:"date"`
	Notes        string    `json:"notes,omitempty"`
}

// Validate checks the trade before it is stored.
func (t InvestmentTransaction) Validate() error {
	switch {
	case t.ID == "":
		return invalid("investment transaction id is required")
	case t.InvestmentID == "":
		return invalid("investment transaction %s: investment is required", t.ID)
	case t.Date.IsZero():
		return invalid("investment transaction %s: date is required", t.ID)
	case !t.Quantity.IsPositive():
		return invalid("investment transaction %s: quantity must be positive, got %s", t.ID, t.Quantity)
	case !t.Price.IsPositive():
		return invalid("investment transaction %s: price must be positive, got %s", t.ID, t.Price)
	}
	switch t.Type {
	case Buy, Sell, SIP:
		return nil
	}
	return invalid("investment transaction %s: unknown type %q", t.ID, string(t.Type))
}

// Amount returns quantity times price.
func (t InvestmentTransaction) Amount() Money { return t.Price.Mul(t.Quantity) }

// Holding is the position derived from a trade history.
type Holding struct {
	Quantity     Quantity
	AveragePrice Money
	Cost         Money
}

// DeriveHolding replays every trade in date order. Buys and sips add their
// cost; a sell removes its share of the cost at the running average price.
// The quantity never goes below zero, the average price is rounded to cents.
func DeriveHolding(trades []InvestmentTransaction) Holding {
	trades = slices.Clone(trades)
	slices.SortStableFunc(trades, func(a, b InvestmentTransaction) int { return a.Date.Compare(b.Date) })

	var qty Quantity
	var cost Money
	for _, t := range trades {
		switch t.Type {
		case Sell:
			if qty.IsPositive() {
				cost = cost.Sub(cost.Mul(t.Quantity).Div(qty))
			}
			qty = qty.Sub(t.Quantity)
		default:
			cost = cost.Add(t.Amount())
			qty = qty.Add(t.Quantity)
		}
	}
	var h Holding
	if qty.IsPositive() {
		h.Quantity = qty
		h.Cost = cost
		h.AveragePrice = cost.Div(qty).Round()
		if h.AveragePrice.IsNegative() {
			h.AveragePrice = Money{}
		}
	}
	return h
}

// Apply returns inv with its quantity and average price replaced by the holding.
func (h Holding) Apply(inv Investment) Investment {
	inv.Quantity = h.Quantity
	inv.AveragePrice = h.AveragePrice
	return inv
}

// CashFlows returns the XIRR cash flows of an investment: trades valued at
// quantity times price (positive for buys and sips, negative for sells), plus
// the current market value as a final negative flow dated today, when positive.
func CashFlows(inv Investment, trades []InvestmentTransaction, today date.Date) []CashFlow {
	flows := make([]CashFlow, 0, len(trades)+1)
	for _, t := range trades {
		amount := t.Amount()
		if t.Type == Sell {
			amount = amount.Neg()
		}
		flows = append(flows, CashFlow{Date: t.Date, Amount: amount})
	}
	if value := inv.MarketValue(); value.IsPositive() {
		flows = append(flows, CashFlow{Date: today, Amount: value.Neg()})
	}
	return flows
}

// InvestmentReport is the valuation and return of one investment.
type InvestmentReport struct {
	Investment  Investment
	Trades      int
	MarketValue Money
	Cost        Money
	Gain        Money
	XIRR        Percent
	HasXIRR     bool
}

// NewInvestmentReport values inv and computes its XIRR as of today.
func NewInvestmentReport(inv Investment, trades []InvestmentTransaction, today date.Date) InvestmentReport {
	r := InvestmentReport{
		Investment:  inv,
		Trades:      len(trades),
		MarketValue: inv.MarketValue().Round(),
		Cost:        inv.AveragePrice.Mul(inv.Quantity).Round(),
	}
	r.Gain = r.MarketValue.Sub(r.Cost)
	if len(trades) > 0 {
		r.XIRR, r.HasXIRR = XIRR(CashFlows(inv, trades, today))
	}
	return r
}
