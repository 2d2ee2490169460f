package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finance"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

type groupCmd struct {
	sort int
}

func (*groupCmd) Name() string     { return "group" }
func (*groupCmd) Synopsis() string { return "create a category group" }
func (*groupCmd) Usage() string {
	return `fin group [-sort <n>] <name>
`
}
func (c *groupCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.sort, "sort", 0, "Display order of the group")
}

func (c *groupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: group takes exactly one name.")
		return subcommands.ExitUsageError
	}
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		g, err := l.AddCategoryGroup(ctx, f.Arg(0), c.sort)
		if err != nil {
			return err
		}
		fmt.Printf("Created category group %q (%s)\n", g.Name, g.ID)
		return nil
	})
}

type categoryCmd struct {
	group      string
	sort       int
	goal       string
	goalAmount string
	goalDate   string
}

func (*categoryCmd) Name() string     { return "category" }
func (*categoryCmd) Synopsis() string { return "create a budget category or change its goal" }
func (*categoryCmd) Usage() string {
	return `fin category -g <group> [-sort <n>] [-goal <kind> -goal-amount <amount> [-goal-date <date>]] <name>

  Creates a category in a group. When the category already exists, its goal
  is replaced instead.

  Goal kinds are monthly_funding, target_balance, target_by_date and none.
`
}
func (c *categoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.group, "g", "", "Category group name or id")
	f.IntVar(&c.sort, "sort", 0, "Display order within the group")
	f.StringVar(&c.goal, "goal", "", "Goal kind")
	f.StringVar(&c.goalAmount, "goal-amount", "0", "Goal amount")
	f.StringVar(&c.goalDate, "goal-date", "", "Goal date, for target_by_date goals")
}

func (c *categoryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: category takes exactly one name.")
		return subcommands.ExitUsageError
	}
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		kind, err := finance.ParseGoalKind(c.goal)
		if err != nil {
			return err
		}
		goal := finance.CategoryGoal{Kind: kind}
		if goal.Amount, err = parseAmount("goal-amount", c.goalAmount); err != nil {
			return err
		}
		if c.goalDate != "" {
			if goal.Date, err = parseDay(l, c.goalDate); err != nil {
				return err
			}
		}

		existing, err := findCategory(ctx, l, f.Arg(0))
		switch {
		case err == nil:
			cat, err := l.SetCategoryGoal(ctx, existing.ID, goal)
			if err != nil {
				return err
			}
			fmt.Printf("Updated the goal of category %q\n", cat.Name)
			return nil
		case !errors.Is(err, finance.ErrNotFound):
			return err
		}

		g, err := findGroup(ctx, l, c.group)
		if err != nil {
			return err
		}
		cat, err := l.AddCategory(ctx, finance.Category{GroupID: g.ID, Name: f.Arg(0), Sort: c.sort, Goal: goal})
		if err != nil {
			return err
		}
		fmt.Printf("Created category %q in %q (%s)\n", cat.Name, g.Name, cat.ID)
		return nil
	})
}

type budgetCmd struct {
	month string
	all   bool
}

func (*budgetCmd) Name() string     { return "budget" }
func (*budgetCmd) Synopsis() string { return "show the envelope budget of a month" }
func (*budgetCmd) Usage() string {
	return `fin budget [-m <YYYY-MM>] [-all]

  Shows, for every category, the money assigned, the activity and the
  available balance carried over from previous months.
`
}
func (c *budgetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Budget month. Defaults to the current month")
	f.BoolVar(&c.all, "all", false, "Include hidden groups and categories")
}

func (c *budgetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, false, func(l *finance.Ledger) error {
		month, err := parseMonth(l, c.month)
		if err != nil {
			return err
		}
		mb, err := l.Budget(ctx, month)
		if err != nil {
			return err
		}
		s, err := l.BudgetSummary(ctx, month)
		if err != nil {
			return err
		}
		o := options()
		o.ShowHidden = c.all
		printMarkdown(renderer.BudgetMarkdown(mb, s, o))
		return nil
	})
}

type summaryCmd struct {
	month string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show To Be Budgeted and the month totals" }
func (*summaryCmd) Usage() string {
	return `fin summary [-m <YYYY-MM>]
`
}
func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Budget month. Defaults to the current month")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, false, func(l *finance.Ledger) error {
		month, err := parseMonth(l, c.month)
		if err != nil {
			return err
		}
		s, err := l.BudgetSummary(ctx, month)
		if err != nil {
			return err
		}
		printMarkdown(renderer.SummaryMarkdown(s, options()))
		return nil
	})
}

type assignCmd struct {
	month  string
	amount string
}

func (*assignCmd) Name() string     { return "assign" }
func (*assignCmd) Synopsis() string { return "set the money assigned to a category" }
func (*assignCmd) Usage() string {
	return `fin assign [-m <YYYY-MM>] -amount <amount> <category>

  Sets the amount assigned to the category for the month, replacing any
  previous assignment.
`
}
func (c *assignCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Budget month. Defaults to the current month")
	f.StringVar(&c.amount, "amount", "", "Amount assigned")
}

func (c *assignCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: assign takes exactly one category.")
		return subcommands.ExitUsageError
	}
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		month, err := parseMonth(l, c.month)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", c.amount)
		if err != nil {
			return err
		}
		cat, err := findCategory(ctx, l, f.Arg(0))
		if err != nil {
			return err
		}
		a, err := l.Assign(ctx, cat.ID, month, amount)
		if err != nil {
			return err
		}
		fmt.Printf("Assigned %s to %q for %s\n", a.Assigned.Format(*defaultCurrency), cat.Name, month)
		return nil
	})
}

type moveCmd struct {
	month  string
	from   string
	to     string
	amount string
}

func (*moveCmd) Name() string     { return "move" }
func (*moveCmd) Synopsis() string { return "move assigned money between two categories" }
func (*moveCmd) Usage() string {
	return `fin move [-m <YYYY-MM>] -from <category> -to <category> -amount <amount>
`
}
func (c *moveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Budget month. Defaults to the current month")
	f.StringVar(&c.from, "from", "", "Category giving the money")
	f.StringVar(&c.to, "to", "", "Category receiving the money")
	f.StringVar(&c.amount, "amount", "", "Amount moved")
}

func (c *moveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		month, err := parseMonth(l, c.month)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", c.amount)
		if err != nil {
			return err
		}
		from, err := findCategory(ctx, l, c.from)
		if err != nil {
			return err
		}
		to, err := findCategory(ctx, l, c.to)
		if err != nil {
			return err
		}
		if from.ID == "" || to.ID == "" {
			return fmt.Errorf("-from and -to are required: %w", finance.ErrInvalidInput)
		}
		src, dst, err := l.MoveMoney(ctx, from.ID, to.ID, month, amount)
		if err != nil {
			return err
		}
		o := *defaultCurrency
		fmt.Printf("%q now has %s assigned, %q has %s\n", from.Name, src.Assigned.Format(o), to.Name, dst.Assigned.Format(o))
		return nil
	})
}

type copyCmd struct {
	month string
}

func (*copyCmd) Name() string     { return "copy" }
func (*copyCmd) Synopsis() string { return "copy last month's assignments" }
func (*copyCmd) Usage() string {
	return `fin copy [-m <YYYY-MM>]

  Copies the previous month's assignments into the month, for every category
  not assigned yet.
`
}
func (c *copyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Budget month. Defaults to the current month")
}

func (c *copyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		month, err := parseMonth(l, c.month)
		if err != nil {
			return err
		}
		n, err := l.CopyPreviousMonth(ctx, month)
		if err != nil {
			return err
		}
		fmt.Printf("Copied %d assignments from %s into %s\n", n, month.Prev(), month)
		return nil
	})
}
