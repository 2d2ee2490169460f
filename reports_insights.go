package finance

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/etnz/finance/date"
	"github.com/shopspring/decimal"
)

// InsightKind identifies what an insight is about.
type InsightKind string

const (
	SpendingIncrease InsightKind = "spending_increase"
	SpendingDecrease InsightKind = "spending_decrease"
	BudgetOverspend  InsightKind = "budget_overspend"
	BiggestExpense   InsightKind = "biggest_expense"
)

// Severity ranks insights, the most pressing first.
type Severity int

const (
	Warning Severity = iota
	Info
	Success
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Success:
		return "success"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Insight is a remark about the spending of the current month.
type Insight struct {
	Kind        InsightKind
	Severity    Severity
	Title       string
	Description string
	Category    string // empty for insights about no category
	Amount      Money  // the change, the projected excess or the expense, positive
}

const (
	// insightChange is the month over month change, in percent, worth an insight.
	insightChange = 30
	// insightWarning is the increase, in percent, reported as a warning.
	insightWarning = 50
)

// overspendMargin is how much the projected spending may exceed the assignment before it is reported.
var overspendMargin = decimal.RequireFromString("1.1")

// Insights returns remarks about the month of today compared to the month before:
// category spending that changed by more than 30%, categories projected to
// exceed their assignment by more than 10% at the current pace, and the
// month's biggest expense. Warnings come first, then infos, then successes.
func Insights(cats []Category, allocs []Allocation, txs []Transaction, today date.Date) []Insight {
	month := date.MonthOf(today)
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	name := func(id string) string { return cmp.Or(names[id], "Uncategorized") }

	current, order := monthSpending(txs, month)
	previous, _ := monthSpending(txs, month.Prev())

	var res []Insight
	for _, id := range order {
		now, before := current[id], previous[id]
		if !before.IsPositive() {
			continue
		}
		change := (now.Float64() - before.Float64()) / before.Float64() * 100
		pct := math.Round(math.Abs(change))
		switch {
		case change > insightChange:
			sev := Info
			if change > insightWarning {
				sev = Warning
			}
			res = append(res, Insight{
				Kind:        SpendingIncrease,
				Severity:    sev,
				Title:       fmt.Sprintf("%s spending up %.0f%%", name(id), pct),
				Description: fmt.Sprintf("You've spent %.0f%% more on %s this month compared to last month.", pct, name(id)),
				Category:    names[id],
				Amount:      now.Sub(before),
			})
		case change < -insightChange:
			res = append(res, Insight{
				Kind:        SpendingDecrease,
				Severity:    Success,
				Title:       fmt.Sprintf("%s spending down %.0f%%", name(id), pct),
				Description: fmt.Sprintf("You cut %s spending by %.0f%% compared to last month.", name(id), pct),
				Category:    names[id],
				Amount:      before.Sub(now),
			})
		}
	}

	pace := decimal.NewFromInt(int64(month.Last().Day())).Div(decimal.NewFromInt(int64(today.Day())))
	for _, a := range allocs {
		spent, ok := current[a.CategoryID]
		if a.Month != month || !ok || !a.Assigned.IsPositive() {
			continue
		}
		projected := spent.Times(pace).Round()
		if !projected.GreaterThan(a.Assigned.Times(overspendMargin)) {
			continue
		}
		res = append(res, Insight{
			Kind:        BudgetOverspend,
			Severity:    Warning,
			Title:       fmt.Sprintf("%s may overspend", name(a.CategoryID)),
			Description: fmt.Sprintf("At this pace, you'll spend about %s on %s, exceeding its %s assignment.", projected, name(a.CategoryID), a.Assigned),
			Category:    names[a.CategoryID],
			Amount:      projected.Sub(a.Assigned),
		})
	}

	var biggest Transaction
	for _, tx := range txs {
		if tx.IsTransfer() || !month.Contains(tx.Date) || !tx.Amount.LessThan(biggest.Amount) {
			continue
		}
		biggest = tx
	}
	if biggest.Amount.IsNegative() {
		payee := cmp.Or(biggest.Payee, "Unknown")
		res = append(res, Insight{
			Kind:        BiggestExpense,
			Severity:    Info,
			Title:       "Biggest expense: " + payee,
			Description: fmt.Sprintf("Your largest single expense this month was %s to %s.", biggest.Amount.Abs(), payee),
			Amount:      biggest.Amount.Abs(),
		})
	}

	slices.SortStableFunc(res, func(a, b Insight) int { return cmp.Compare(a.Severity, b.Severity) })
	return res
}

// monthSpending sums the outflows of month per category id, uncategorized
// ones under "". order lists the ids as first seen.
func monthSpending(txs []Transaction, month date.Month) (spent map[string]Money, order []string) {
	spent = make(map[string]Money)
	for _, tx := range txs {
		if tx.IsTransfer() || !tx.Amount.IsNegative() || !month.Contains(tx.Date) {
			continue
		}
		if _, ok := spent[tx.CategoryID]; !ok {
			order = append(order, tx.CategoryID)
		}
		spent[tx.CategoryID] = spent[tx.CategoryID].Add(tx.Amount.Abs())
	}
	return spent, order
}

// CategoryTrend is the spending of a category month by month.
type CategoryTrend struct {
	CategoryID string
	Category   string
	Totals     []Money // one per month, positive
}

// Total returns the spending over every month.
func (c CategoryTrend) Total() Money { return Sum(c.Totals...) }

// SpendingTrend returns the categorized spending of every category in every
// month of months, the biggest spender first.
func SpendingTrend(cats []Category, txs []Transaction, months []date.Month) []CategoryTrend {
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	index := make(map[date.Month]int, len(months))
	for i, m := range months {
		index[m] = i
	}
	trends := make(map[string]*CategoryTrend)
	for _, tx := range txs {
		if !categoryActivity(tx) || !tx.Amount.IsNegative() {
			continue
		}
		i, ok := index[date.MonthOf(tx.Date)]
		if !ok {
			continue
		}
		t, ok := trends[tx.CategoryID]
		if !ok {
			t = &CategoryTrend{CategoryID: tx.CategoryID, Category: cmp.Or(names[tx.CategoryID], tx.CategoryID), Totals: make([]Money, len(months))}
			trends[tx.CategoryID] = t
		}
		t.Totals[i] = t.Totals[i].Add(tx.Amount.Abs())
	}

	res := make([]CategoryTrend, 0, len(trends))
	for _, t := range trends {
		res = append(res, *t)
	}
	slices.SortFunc(res, func(a, b CategoryTrend) int {
		return cmp.Or(b.Total().Cmp(a.Total()), strings.Compare(a.Category, b.Category))
	})
	return res
}

// FlowLink is money flowing between two nodes of a MoneyFlow.
type FlowLink struct {
	Source, Target string
	Value          Money
}

// MoneyFlow is where the income of a month went: from "Income" to every
// category group, and to "Savings" for what was not spent, then from every
// group to its categories.
type MoneyFlow struct {
	Month date.Month
	Nodes []string
	Links []FlowLink
}

// node names used by IncomeFlow.
const (
	incomeNode          = "Income"
	savingsNode         = "Savings"
	ungroupedNode       = "Uncategorized"
	unknownCategoryNode = "Unknown"
)

// IncomeFlow returns the flow of the month's income into its categorized
// spending, for a sankey diagram. Groups and categories come largest first.
func IncomeFlow(month date.Month, groups []CategoryGroup, cats []Category, txs []Transaction) MoneyFlow {
	groupNames := make(map[string]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}
	catIndex := make(map[string]Category, len(cats))
	for _, c := range cats {
		catIndex[c.ID] = c
	}

	var income Money
	for _, tx := range txs {
		if !tx.IsTransfer() && tx.Amount.IsPositive() && month.Contains(tx.Date) {
			income = income.Add(tx.Amount)
		}
	}
	spending := SpendingByCategory(groups, cats, txs, month.Range())

	flow := MoneyFlow{Month: month}
	seen := make(map[string]bool)
	node := func(name string) string {
		if !seen[name] {
			seen[name] = true
			flow.Nodes = append(flow.Nodes, name)
		}
		return name
	}
	node(incomeNode)

	groupOf := func(s CategorySpending) string { return cmp.Or(s.Group, ungroupedNode) }
	groupTotals := make(map[string]Money)
	var groupOrder []string
	var expenses Money
	for _, s := range spending {
		g := groupOf(s)
		if _, ok := groupTotals[g]; !ok {
			groupOrder = append(groupOrder, g)
		}
		groupTotals[g] = groupTotals[g].Add(s.Total)
		expenses = expenses.Add(s.Total)
	}
	slices.SortStableFunc(groupOrder, func(a, b string) int { return groupTotals[b].Cmp(groupTotals[a]) })
	for _, g := range groupOrder {
		flow.Links = append(flow.Links, FlowLink{Source: incomeNode, Target: node(g), Value: groupTotals[g]})
	}
	if saved := income.Sub(expenses); saved.IsPositive() {
		flow.Links = append(flow.Links, FlowLink{Source: incomeNode, Target: node(savingsNode), Value: saved})
	}
	for _, s := range spending {
		name := s.Category
		if _, ok := catIndex[s.CategoryID]; !ok {
			name = unknownCategoryNode
		}
		flow.Links = append(flow.Links, FlowLink{Source: groupOf(s), Target: node(name), Value: s.Total})
	}
	return flow
}

// Payees returns the distinct payees of txs containing q, in any case, sorted.
// Transfers and empty payees are skipped. At most limit payees are returned
// when limit is positive.
func Payees(txs []Transaction, q string, limit int) []string {
	var payees []string
	for _, tx := range txs {
		if tx.IsTransfer() || tx.Payee == "" || !matchesText(tx.Payee, q) {
			continue
		}
		payees = append(payees, tx.Payee)
	}
	slices.Sort(payees)
	payees = slices.Compact(payees)
	if limit > 0 && len(payees) > limit {
		payees = payees[:limit]
	}
	return payees
}
