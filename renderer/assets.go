package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/finance"
	md "github.com/nao1215/markdown"
)

func months(n int, payable bool) string {
	if !payable {
		return fmt.Sprintf("not payable in %d months", finance.MaxPayoffMonths)
	}
	return fmt.Sprintf("%d months", n)
}

// DebtsMarkdown renders every debt with its standalone payoff, then the
// snowball and avalanche comparison.
func DebtsMarkdown(schedules []finance.DebtSchedule, c finance.DebtComparison, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1("Debts")
	if len(schedules) == 0 {
		doc.PlainText("No debts.")
		return doc.String()
	}

	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Debt", "Balance", "Rate", "Payment", "Payoff", "Interest"},
	}
	var total finance.Money
	for _, s := range schedules {
		d := s.Debt
		total = total.Add(d.Balance)
		t.Rows = append(t.Rows, []string{
			d.Name, o.money(d.Balance), d.Rate.StringFixed(2) + "%",
			o.money(d.MinPayment.Add(d.ExtraPayment)), months(s.Months, s.Payable), o.money(s.TotalInterest),
		})
	}
	t.Rows = append(t.Rows, []string{md.Bold("Total"), md.Bold(o.money(total)), "", "", "", ""})
	table(doc, t)

	doc.H2("Payoff Strategies")
	table(doc, md.TableSet{
		Alignment: leftThenRight(3),
		Header:    []string{"Strategy", "Payoff", "Interest"},
		Rows: [][]string{
			{"Snowball (smallest balance first)", months(c.Snowball.Months, c.Snowball.Payable), o.money(c.Snowball.TotalInterest)},
			{"Avalanche (highest rate first)", months(c.Avalanche.Months, c.Avalanche.Payable), o.money(c.Avalanche.TotalInterest)},
		},
	})
	doc.PlainText("")
	switch {
	case c.Savings.IsPositive():
		doc.PlainText(fmt.Sprintf("Avalanche saves %s of interest.", o.money(c.Savings)))
	case c.Savings.IsNegative():
		doc.PlainText(fmt.Sprintf("Snowball saves %s of interest.", o.money(c.Savings.Abs())))
	default:
		doc.PlainText("Both strategies cost the same interest.")
	}

	order := func(title string, p finance.Payoff) {
		if len(p.Order) == 0 {
			return
		}
		doc.H3(title)
		var items []string
		for _, po := range p.Order {
			items = append(items, fmt.Sprintf("%s paid off in month %d", po.Name, po.Month))
		}
		doc.PlainText("")
		doc.OrderedList(items...)
	}
	order("Snowball order", c.Snowball)
	order("Avalanche order", c.Avalanche)
	return doc.String()
}

// InvestmentsMarkdown renders the valuation and return of every investment.
func InvestmentsMarkdown(reports []finance.InvestmentReport, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1("Investments")
	if len(reports) == 0 {
		doc.PlainText("No investments.")
		return doc.String()
	}
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Ticker", "Name", "Quantity", "Price", "Value", "Cost", "Gain", "XIRR"},
	}
	var value, cost, gain finance.Money
	for _, r := range reports {
		inv := r.Investment
		xirr := "-"
		if r.HasXIRR {
			xirr = r.XIRR.SignedString()
		}
		value, cost, gain = value.Add(r.MarketValue), cost.Add(r.Cost), gain.Add(r.Gain)
		t.Rows = append(t.Rows, []string{
			inv.Ticker, inv.Name, inv.Quantity.String(), o.money(inv.Price()),
			o.money(r.MarketValue), o.money(r.Cost), o.signed(r.Gain), xirr,
		})
	}
	t.Rows = append(t.Rows, []string{md.Bold("Total"), "", "", "", md.Bold(o.money(value)), md.Bold(o.money(cost)), md.Bold(o.signed(gain)), ""})
	table(doc, t)
	return doc.String()
}
