package finance

import (
	"cmp"
	"slices"

	"github.com/etnz/finance/date"
)

// Allocation is the amount assigned to a category for one month.
// There is at most one allocation per category and month, a missing one means zero.
type Allocation struct {
	CategoryID string     `json:"categoryId"`
	Month      date.Month `json:"month"`
	Assigned   Money      `json:"assigned"`
}

// Validate checks the allocation for missing required fields.
func (a Allocation) Validate() error {
	if a.CategoryID == "" {
		return invalid("allocation category is required")
	}
	if a.Month.IsZero() {
		return invalid("allocation for %s: month is required", a.CategoryID)
	}
	return nil
}

// CategoryBudget is the state of one envelope for a month.
//
// Available = CarryForward + Assigned + Activity, where CarryForward is every
// prior month's assigned plus activity, without lookback limit.
type CategoryBudget struct {
	Category     Category
	CarryForward Money
	Assigned     Money
	Activity     Money
	Available    Money
	Progress     Percent
	HasGoal      bool
}

// categoryActivity reports whether tx counts as budget activity for a category.
func categoryActivity(tx Transaction) bool { return tx.CategoryID != "" && !tx.IsTransfer() }

// accumulate computes carry forward, assigned and activity for every category seen in allocs or txs.
func accumulate(month date.Month, allocs []Allocation, txs []Transaction) map[string]*CategoryBudget {
	sums := make(map[string]*CategoryBudget)
	get := func(id string) *CategoryBudget {
		s, ok := sums[id]
		if !ok {
			s = &CategoryBudget{}
			sums[id] = s
		}
		return s
	}
	for _, a := range allocs {
		switch {
		case a.Month.Before(month):
			s := get(a.CategoryID)
			s.CarryForward = s.CarryForward.Add(a.Assigned)
		case a.Month == month:
			s := get(a.CategoryID)
			s.Assigned = s.Assigned.Add(a.Assigned)
		}
	}
	for _, tx := range txs {
		if !categoryActivity(tx) {
			continue
		}
		switch m := date.MonthOf(tx.Date); {
		case m.Before(month):
			s := get(tx.CategoryID)
			s.CarryForward = s.CarryForward.Add(tx.Amount)
		case m == month:
			s := get(tx.CategoryID)
			s.Activity = s.Activity.Add(tx.Amount)
		}
	}
	return sums
}

// finish fills Available and the goal progress.
func (b *CategoryBudget) finish(cat Category) {
	b.Category = cat
	b.Available = b.CarryForward.Add(b.Assigned).Add(b.Activity)
	b.Progress, b.HasGoal = cat.Goal.Progress(b.Available)
}

// Availability computes the budget state of cat for month from the full
// allocation and transaction history. Transfers never count as activity.
func Availability(cat Category, month date.Month, allocs []Allocation, txs []Transaction) CategoryBudget {
	var b CategoryBudget
	if s, ok := accumulate(month, allocs, txs)[cat.ID]; ok {
		b = *s
	}
	b.finish(cat)
	return b
}

// GroupBudget is the budget state of a category group.
type GroupBudget struct {
	Group      CategoryGroup
	Categories []CategoryBudget
	Assigned   Money
	Activity   Money
	Available  Money
}

// MonthBudget is the budget of every category for a month.
type MonthBudget struct {
	Month  date.Month
	Groups []GroupBudget
}

// Category returns the budget of a category, if present.
func (mb MonthBudget) Category(id string) (CategoryBudget, bool) {
	for _, g := range mb.Groups {
		for _, c := range g.Categories {
			if c.Category.ID == id {
				return c, true
			}
		}
	}
	return CategoryBudget{}, false
}

// NewMonthBudget computes the budget of month for all categories, grouped and sorted.
// Categories whose group is unknown are gathered in a trailing unnamed group.
func NewMonthBudget(month date.Month, groups []CategoryGroup, cats []Category, allocs []Allocation, txs []Transaction) MonthBudget {
	sums := accumulate(month, allocs, txs)

	groups = slices.Clone(groups)
	slices.SortStableFunc(groups, func(a, b CategoryGroup) int {
		return cmp.Or(cmp.Compare(a.Sort, b.Sort), cmp.Compare(a.Name, b.Name))
	})
	cats = slices.Clone(cats)
	slices.SortStableFunc(cats, func(a, b Category) int {
		return cmp.Or(cmp.Compare(a.Sort, b.Sort), cmp.Compare(a.Name, b.Name))
	})

	index := make(map[string]int, len(groups))
	result := MonthBudget{Month: month, Groups: make([]GroupBudget, len(groups))}
	for i, g := range groups {
		index[g.ID] = i
		result.Groups[i].Group = g
	}
	orphans := -1
	for _, c := range cats {
		var b CategoryBudget
		if s, ok := sums[c.ID]; ok {
			b = *s
		}
		b.finish(c)
		i, ok := index[c.GroupID]
		if !ok {
			if orphans < 0 {
				result.Groups = append(result.Groups, GroupBudget{})
				orphans = len(result.Groups) - 1
			}
			i = orphans
		}
		g := &result.Groups[i]
		g.Categories = append(g.Categories, b)
		g.Assigned = g.Assigned.Add(b.Assigned)
		g.Activity = g.Activity.Add(b.Activity)
		g.Available = g.Available.Add(b.Available)
	}
	return result
}

// BudgetSummary holds the month level totals of the budget.
type BudgetSummary struct {
	Month date.Month
	// ToBeBudgeted is TotalIncome - TotalAssigned: money not yet given a job.
	ToBeBudgeted  Money
	TotalIncome   Money // positive non transfer inflows up to the end of Month
	TotalAssigned Money // allocations of every month up to Month
	MonthIncome   Money
	MonthExpenses Money
	MonthAssigned Money
}

// NewBudgetSummary computes the summary for month. Transfers are neither income nor expense.
func NewBudgetSummary(month date.Month, allocs []Allocation, txs []Transaction) BudgetSummary {
	s := BudgetSummary{Month: month}
	end := month.Last()
	for _, tx := range txs {
		if tx.IsTransfer() || tx.Date.After(end) {
			continue
		}
		inMonth := month.Contains(tx.Date)
		switch {
		case tx.Amount.IsPositive():
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
			if inMonth {
				s.MonthIncome = s.MonthIncome.Add(tx.Amount)
			}
		case tx.Amount.IsNegative() && inMonth:
			s.MonthExpenses = s.MonthExpenses.Add(tx.Amount)
		}
	}
	for _, a := range allocs {
		if a.Month.After(month) {
			continue
		}
		s.TotalAssigned = s.TotalAssigned.Add(a.Assigned)
		if a.Month == month {
			s.MonthAssigned = s.MonthAssigned.Add(a.Assigned)
		}
	}
	s.ToBeBudgeted = s.TotalIncome.Sub(s.TotalAssigned)
	return s
}

// findAllocation returns the allocation of category for month, or a zero one.
func findAllocation(allocs []Allocation, categoryID string, month date.Month) Allocation {
	for _, a := range allocs {
		if a.CategoryID == categoryID && a.Month == month {
			return a
		}
	}
	return Allocation{CategoryID: categoryID, Month: month}
}

// MoveMoney moves amount from one category's assignment to another's for month.
// It returns the two allocations to persist. The source may become negative.
func MoveMoney(allocs []Allocation, from, to string, month date.Month, amount Money) (src, dst Allocation, err error) {
	switch {
	case from == "" || to == "":
		return src, dst, invalid("move money: source and destination categories are required")
	case from == to:
		return src, dst, invalid("move money: source and destination are the same category %s", from)
	case month.IsZero():
		return src, dst, invalid("move money: month is required")
	case !amount.IsPositive():
		return src, dst, invalid("move money: amount must be positive, got %s", amount)
	}
	src = findAllocation(allocs, from, month)
	dst = findAllocation(allocs, to, month)
	src.Assigned = src.Assigned.Sub(amount)
	dst.Assigned = dst.Assigned.Add(amount)
	return src, dst, nil
}

// CopyPreviousMonth returns the allocations of the month before month for
// every category that has no allocation in month yet. Existing rows are never overwritten.
func CopyPreviousMonth(allocs []Allocation, month date.Month) []Allocation {
	prev := month.Prev()
	existing := make(map[string]bool)
	for _, a := range allocs {
		if a.Month == month {
			existing[a.CategoryID] = true
		}
	}
	var copies []Allocation
	for _, a := range allocs {
		if a.Month != prev || existing[a.CategoryID] {
			continue
		}
		existing[a.CategoryID] = true
		copies = append(copies, Allocation{CategoryID: a.CategoryID, Month: month, Assigned: a.Assigned})
	}
	return copies
}
