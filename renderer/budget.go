package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/finance"
	md "github.com/nao1215/markdown"
)

// BudgetMarkdown renders the envelopes of a month, one table per category group.
func BudgetMarkdown(mb finance.MonthBudget, s finance.BudgetSummary, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1(fmt.Sprintf("Budget for %s", mb.Month))
	summaryTable(doc, s, o)

	for _, g := range mb.Groups {
		if g.Group.Hidden && !o.ShowHidden {
			continue
		}
		name := g.Group.Name
		if name == "" {
			name = "Uncategorized"
		}
		t := md.TableSet{
			Alignment: leftThenRight(5),
			Header:    []string{"Category", "Assigned", "Activity", "Available", "Goal"},
		}
		for _, c := range g.Categories {
			if c.Category.Hidden && !o.ShowHidden {
				continue
			}
			goal := ""
			if c.HasGoal {
				goal = c.Progress.String()
			}
			available := o.money(c.Available)
			if c.Available.IsNegative() {
				available = md.Bold(available)
			}
			t.Rows = append(t.Rows, []string{c.Category.Name, o.money(c.Assigned), o.signed(c.Activity), available, goal})
		}
		if len(t.Rows) == 0 {
			continue
		}
		t.Rows = append(t.Rows, []string{md.Bold("Total"), md.Bold(o.money(g.Assigned)), md.Bold(o.signed(g.Activity)), md.Bold(o.money(g.Available)), ""})
		doc.H2(name)
		table(doc, t)
	}
	return doc.String()
}

// SummaryMarkdown renders the month level totals of the budget.
func SummaryMarkdown(s finance.BudgetSummary, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1(fmt.Sprintf("Budget Summary for %s", s.Month))
	summaryTable(doc, s, o)
	return doc.String()
}

func summaryTable(doc *md.Markdown, s finance.BudgetSummary, o Options) {
	table(doc, md.TableSet{
		Alignment: leftThenRight(2),
		Header:    []string{md.Bold("To Be Budgeted"), md.Bold(o.money(s.ToBeBudgeted))},
		Rows: [][]string{
			{"Income this month", o.money(s.MonthIncome)},
			{"Expenses this month", o.money(s.MonthExpenses.Abs())},
			{"Assigned this month", o.money(s.MonthAssigned)},
			{"Total income", o.money(s.TotalIncome)},
			{"Total assigned", o.money(s.TotalAssigned)},
		},
	})
}

// GoalsMarkdown renders the savings goals and their progress.
func GoalsMarkdown(goals []finance.SavingsGoal, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1("Savings Goals")
	if len(goals) == 0 {
		doc.PlainText("No savings goals.")
		return doc.String()
	}
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft, md.AlignLeft},
		Header:    []string{"Goal", "Saved", "Target", "Remaining", "Progress", "Target Date", "Status"},
	}
	for _, g := range goals {
		t.Rows = append(t.Rows, []string{
			g.Name, o.money(g.Saved), o.money(g.Target), o.money(g.Remaining()),
			g.Progress().String(), g.TargetDate.String(), string(g.Status),
		})
	}
	table(doc, t)
	return doc.String()
}
