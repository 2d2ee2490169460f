package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	md "github.com/nao1215/markdown"
)

// RecurringMarkdown renders the recurring rules, subscriptions flagged.
func RecurringMarkdown(rules []finance.RecurringRule, names map[string]string, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1("Recurring Transactions")
	if len(rules) == 0 {
		doc.PlainText("No recurring transactions.")
		return doc.String()
	}
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignLeft},
		Header:    []string{"Payee", "Type", "Account", "Amount", "Frequency", "Next", "Status"},
	}
	for _, r := range rules {
		payee := r.Payee
		if r.Subscription {
			payee += " (subscription)"
		}
		account := names[r.AccountID]
		if r.Type == finance.TransferRule {
			account += " → " + names[r.TransferAccountID]
		}
		t.Rows = append(t.Rows, []string{
			payee, string(r.Type), account, o.signed(r.SignedAmount()),
			r.Frequency.String(), r.NextDate.String(), string(r.Status),
		})
	}
	table(doc, t)
	return doc.String()
}

// RecurringPassMarkdown renders the outcome of a recurring processing pass.
func RecurringPassMarkdown(p finance.RecurringPass, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1(fmt.Sprintf("Recurring Transactions Processed on %s", p.Today))
	doc.PlainText(fmt.Sprintf("%d transactions created from %d rules.", p.Created(), len(p.Results)))
	if len(p.Results) == 0 {
		return doc.String()
	}
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignLeft},
		Header:    []string{"Rule", "Created", "Next", "Error"},
	}
	for _, r := range p.Results {
		errMsg := ""
		if r.Err != nil {
			errMsg = r.Err.Error()
		}
		t.Rows = append(t.Rows, []string{r.Rule.Payee, fmt.Sprint(len(r.Created)), r.Next.String(), errMsg})
	}
	table(doc, t)
	return doc.String()
}

// IntegrityMarkdown renders an integrity report.
func IntegrityMarkdown(r finance.IntegrityReport) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1("Ledger Integrity")
	doc.PlainText(fmt.Sprintf("Checked %d accounts and %d transactions.", r.Accounts, r.Transactions))
	if len(r.Issues) == 0 {
		doc.PlainText("")
		doc.PlainText("No issues found.")
		return doc.String()
	}
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignCenter},
		Header:    []string{"Issue", "Account", "Transaction", "Detail", "Repaired"},
	}
	for _, i := range r.Issues {
		repaired := ""
		if i.Repaired {
			repaired = "yes"
		}
		t.Rows = append(t.Rows, []string{string(i.Kind), i.AccountID, i.TransactionID, i.Detail, repaired})
	}
	table(doc, t)
	return doc.String()
}

// SpendingMarkdown renders the spending per category over r.
func SpendingMarkdown(r date.Range, spending []finance.CategorySpending, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1(fmt.Sprintf("Spending from %s to %s", r.From, r.To))
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Category", "Group", "Spent"},
	}
	var total finance.Money
	for _, s := range spending {
		total = total.Add(s.Total)
		t.Rows = append(t.Rows, []string{s.Category, s.Group, o.money(s.Total)})
	}
	t.Rows = append(t.Rows, []string{md.Bold("Total"), "", md.Bold(o.money(total))})
	table(doc, t)
	return doc.String()
}

// FlowMarkdown renders income against expenses month by month.
func FlowMarkdown(flows []finance.MonthFlow, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1("Income vs Expenses")
	t := md.TableSet{
		Alignment: leftThenRight(4),
		Header:    []string{"Month", "Income", "Expenses", "Net"},
	}
	for _, f := range flows {
		t.Rows = append(t.Rows, []string{f.Month.String(), o.money(f.Income), o.money(f.Expenses), o.signed(f.Net)})
	}
	table(doc, t)
	return doc.String()
}

// NetWorthMarkdown renders the net worth at the end of each month.
func NetWorthMarkdown(points []finance.NetWorthPoint, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1("Net Worth")
	t := md.TableSet{
		Alignment: leftThenRight(3),
		Header:    []string{"Month", "Net Worth", "Change"},
	}
	var prev finance.Money
	for i, p := range points {
		change := ""
		if i > 0 {
			change = o.signed(p.NetWorth.Sub(prev))
		}
		prev = p.NetWorth
		t.Rows = append(t.Rows, []string{p.Month.String(), o.money(p.NetWorth), change})
	}
	table(doc, t)
	return doc.String()
}

// BudgetVsActualMarkdown renders the money assigned against the money spent per category.
func BudgetVsActualMarkdown(month date.Month, rows []finance.BudgetActual, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1(fmt.Sprintf("Budget vs Actual for %s", month))
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Category", "Group", "Budgeted", "Spent", "Difference"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Category.Name, r.Group, o.money(r.Budgeted), o.money(r.Actual), o.signed(r.Budgeted.Sub(r.Actual)),
		})
	}
	table(doc, t)
	return doc.String()
}

// AgeOfMoneyMarkdown renders the age of money sentence.
func AgeOfMoneyMarkdown(days int, since date.Date) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Age of Money\n\n")
	if since.IsZero() {
		fmt.Fprintln(&b, "Not enough income to compute the age of money.")
		return b.String()
	}
	fmt.Fprintf(&b, "Money is **%d days** old: it was received on %s.\n", days, since)
	return b.String()
}

// severityIcons prefixes insight titles.
var severityIcons = map[finance.Severity]string{
	finance.Warning: "⚠️",
	finance.Info:    "💡",
	finance.Success: "✅",
}

// InsightsMarkdown renders the insights of month, warnings first.
func InsightsMarkdown(month date.Month, insights []finance.Insight) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1(fmt.Sprintf("Insights for %s", month))
	if len(insights) == 0 {
		doc.PlainText("Nothing to report this month.")
		return doc.String()
	}
	for _, i := range insights {
		doc.H2(fmt.Sprintf("%s %s", severityIcons[i.Severity], i.Title))
		doc.PlainText(i.Description)
	}
	return doc.String()
}

// TrendMarkdown renders the spending of every category, one column per month.
func TrendMarkdown(months []date.Month, trends []finance.CategoryTrend, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1("Spending Trend")
	t := md.TableSet{
		Alignment: leftThenRight(len(months) + 2),
		Header:    []string{"Category"},
	}
	for _, m := range months {
		t.Header = append(t.Header, m.String())
	}
	t.Header = append(t.Header, "Total")
	totals := make([]finance.Money, len(months))
	for _, c := range trends {
		row := []string{c.Category}
		for i, v := range c.Totals {
			totals[i] = totals[i].Add(v)
			row = append(row, o.money(v))
		}
		t.Rows = append(t.Rows, append(row, md.Bold(o.money(c.Total()))))
	}
	row := []string{md.Bold("Total")}
	for _, v := range totals {
		row = append(row, md.Bold(o.money(v)))
	}
	t.Rows = append(t.Rows, append(row, md.Bold(o.money(finance.Sum(totals...)))))
	table(doc, t)
	return doc.String()
}

// IncomeFlowMarkdown renders the links of a sankey diagram of the month's income.
func IncomeFlowMarkdown(flow finance.MoneyFlow, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1(fmt.Sprintf("Where the Money Went in %s", flow.Month))
	if len(flow.Links) == 0 {
		doc.PlainText("No income nor spending this month.")
		return doc.String()
	}
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"From", "To", "Amount"},
	}
	for _, l := range flow.Links {
		t.Rows = append(t.Rows, []string{l.Source, l.Target, o.money(l.Value)})
	}
	table(doc, t)
	return doc.String()
}

// PayeesMarkdown renders the known payees as a list.
func PayeesMarkdown(payees []string) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1("Payees")
	if len(payees) == 0 {
		doc.PlainText("No payee.")
		return doc.String()
	}
	doc.BulletList(payees...)
	return doc.String()
}
