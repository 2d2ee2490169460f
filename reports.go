package finance

import (
	"cmp"
	"slices"

	"github.com/etnz/finance/date"
)

// Every report ignores transfers when it sums income, expenses or spending.

// CategorySpending is the money spent in a category over a period, as a positive amount.
type CategorySpending struct {
	CategoryID string
	Category   string
	Group      string
	Total      Money
}

// SpendingByCategory sums the categorized outflows within r, largest first.
func SpendingByCategory(groups []CategoryGroup, cats []Category, txs []Transaction, r date.Range) []CategorySpending {
	groupNames := make(map[string]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}
	catIndex := make(map[string]Category, len(cats))
	for _, c := range cats {
		catIndex[c.ID] = c
	}

	totals := make(map[string]Money)
	var order []string
	for _, tx := range txs {
		if !categoryActivity(tx) || !tx.Amount.IsNegative() || !r.Contains(tx.Date) {
			continue
		}
		if _, ok := totals[tx.CategoryID]; !ok {
			order = append(order, tx.CategoryID)
		}
		totals[tx.CategoryID] = totals[tx.CategoryID].Add(tx.Amount.Abs())
	}

	res := make([]CategorySpending, 0, len(order))
	for _, id := range order {
		c := catIndex[id]
		res = append(res, CategorySpending{
			CategoryID: id,
			Category:   cmp.Or(c.Name, id),
			Group:      groupNames[c.GroupID],
			Total:      totals[id],
		})
	}
	slices.SortStableFunc(res, func(a, b CategorySpending) int { return b.Total.Cmp(a.Total) })
	return res
}

// MonthFlow is the income and expenses of a month. Expenses are positive.
type MonthFlow struct {
	Month    date.Month
	Income   Money
	Expenses Money
	Net      Money
}

// IncomeVsExpense returns the income and expenses of every month in months.
func IncomeVsExpense(txs []Transaction, months []date.Month) []MonthFlow {
	flows := make([]MonthFlow, len(months))
	index := make(map[date.Month]int, len(months))
	for i, m := range months {
		flows[i].Month = m
		index[m] = i
	}
	for _, tx := range txs {
		if tx.IsTransfer() {
			continue
		}
		i, ok := index[date.MonthOf(tx.Date)]
		if !ok {
			continue
		}
		switch {
		case tx.Amount.IsPositive():
			flows[i].Income = flows[i].Income.Add(tx.Amount)
		case tx.Amount.IsNegative():
			flows[i].Expenses = flows[i].Expenses.Add(tx.Amount.Abs())
		}
	}
	for i := range flows {
		flows[i].Net = flows[i].Income.Sub(flows[i].Expenses)
	}
	return flows
}

// NetWorthPoint is the sum of every account at the end of a month.
type NetWorthPoint struct {
	Month    date.Month
	NetWorth Money
}

// NetWorth returns the net worth at the end of every month in months, which must be sorted.
// Transfers cancel out and need no special care.
func NetWorth(txs []Transaction, months []date.Month) []NetWorthPoint {
	txs = slices.Clone(txs)
	slices.SortStableFunc(txs, func(a, b Transaction) int { return a.Date.Compare(b.Date) })
	points := make([]NetWorthPoint, len(months))
	var total Money
	j := 0
	for i, m := range months {
		end := m.Last()
		for ; j < len(txs) && !txs[j].Date.After(end); j++ {
			total = total.Add(txs[j].Amount)
		}
		points[i] = NetWorthPoint{Month: m, NetWorth: total}
	}
	return points
}

// BudgetActual compares the money assigned to a category with the money spent in it.
type BudgetActual struct {
	Category Category
	Group    string
	Budgeted Money
	Actual   Money // spent, positive
}

// BudgetVsActual returns, for every category, the month's assignment and spending.
func BudgetVsActual(month date.Month, groups []CategoryGroup, cats []Category, allocs []Allocation, txs []Transaction) []BudgetActual {
	mb := NewMonthBudget(month, groups, cats, allocs, nil)
	spent := make(map[string]Money)
	for _, tx := range txs {
		if categoryActivity(tx) && tx.Amount.IsNegative() && month.Contains(tx.Date) {
			spent[tx.CategoryID] = spent[tx.CategoryID].Add(tx.Amount.Abs())
		}
	}
	var res []BudgetActual
	for _, g := range mb.Groups {
		for _, c := range g.Categories {
			res = append(res, BudgetActual{
				Category: c.Category,
				Group:    g.Group.Name,
				Budgeted: c.Assigned,
				Actual:   spent[c.Category.ID],
			})
		}
	}
	return res
}

// AgeOfMoney returns how many days ago the oldest dollar still held was received.
//
// Walking income from the most recent, it finds the date where cumulated
// income covers the balance of the open accounts. It is zero when that balance
// is not positive or there is no income.
func AgeOfMoney(accounts []Account, txs []Transaction, today date.Date) (days int, oldest date.Date) {
	balances := Balances(txs)
	var held Money
	for _, a := range accounts {
		if !a.Closed {
			held = held.Add(balances[a.ID])
		}
	}
	if !held.IsPositive() {
		return 0, date.Date{}
	}
	var income []Transaction
	for _, tx := range txs {
		if !tx.IsTransfer() && tx.Amount.IsPositive() {
			income = append(income, tx)
		}
	}
	slices.SortStableFunc(income, func(a, b Transaction) int { return b.Date.Compare(a.Date) })
	var cumulated Money
	for _, tx := range income {
		cumulated = cumulated.Add(tx.Amount)
		oldest = tx.Date
		if cumulated.GreaterThanOrEqual(held) {
			break
		}
	}
	if oldest.IsZero() {
		return 0, oldest
	}
	return today.Sub(oldest), oldest
}
