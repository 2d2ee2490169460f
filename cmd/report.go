package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

type reportCmd struct {
	month  string
	start  string
	end    string
	months int
	query  string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "spending, cash flow, net worth, insights and age of money reports" }
func (*reportCmd) Usage() string {
	return `fin report [-m <YYYY-MM>] [-s <start> -d <end>] [-n <months>] [-q <text>] <report>

  Reports:
    spending   spending per category over the month, or the -s/-d range
    flow       income vs expenses for the last -n months
    networth   net worth at the end of the last -n months
    actual     money assigned vs money spent per category over the month
    age        age of money
    insights   spending changes and overspending risks of the current month
    trend      spending per category for the last -n months
    sankey     where the income of the month went, group by group
    payees     known payees, containing -q when set

  Transfers are never counted as income nor expense.
`
}
func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Report month. Defaults to the current month")
	f.StringVar(&c.start, "s", "", "Start date of a custom range. Overrides -m")
	f.StringVar(&c.end, "d", "", "End date of a custom range. Defaults to today")
	f.IntVar(&c.months, "n", 6, "Number of months of trend reports")
	f.StringVar(&c.query, "q", "", "Text the payees must contain")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: report takes exactly one report name.")
		return subcommands.ExitUsageError
	}
	if c.months < 1 {
		fmt.Fprintln(os.Stderr, "Error: -n must be positive.")
		return subcommands.ExitUsageError
	}
	return withLedger(ctx, false, func(l *finance.Ledger) error {
		month, err := parseMonth(l, c.month)
		if err != nil {
			return err
		}
		o := options()
		switch name := f.Arg(0); name {
		case "spending":
			r := month.Range()
			if c.start != "" {
				if r, err = c.customRange(l); err != nil {
					return err
				}
			}
			spending, err := l.SpendingByCategory(ctx, r)
			if err != nil {
				return err
			}
			printMarkdown(renderer.SpendingMarkdown(r, spending, o))
		case "flow":
			flows, err := l.IncomeVsExpense(ctx, c.months)
			if err != nil {
				return err
			}
			printMarkdown(renderer.FlowMarkdown(flows, o))
		case "networth":
			points, err := l.NetWorth(ctx, c.months)
			if err != nil {
				return err
			}
			printMarkdown(renderer.NetWorthMarkdown(points, o))
		case "actual":
			rows, err := l.BudgetVsActual(ctx, month)
			if err != nil {
				return err
			}
			printMarkdown(renderer.BudgetVsActualMarkdown(month, rows, o))
		case "age":
			days, since, err := l.AgeOfMoney(ctx)
			if err != nil {
				return err
			}
			printMarkdown(renderer.AgeOfMoneyMarkdown(days, since))
		case "insights":
			insights, err := l.Insights(ctx)
			if err != nil {
				return err
			}
			printMarkdown(renderer.InsightsMarkdown(date.MonthOf(l.Today()), insights))
		case "trend":
			months, trends, err := l.SpendingTrend(ctx, c.months)
			if err != nil {
				return err
			}
			printMarkdown(renderer.TrendMarkdown(months, trends, o))
		case "sankey":
			flow, err := l.IncomeFlow(ctx, month)
			if err != nil {
				return err
			}
			printMarkdown(renderer.IncomeFlowMarkdown(flow, o))
		case "payees":
			payees, err := l.Payees(ctx, c.query)
			if err != nil {
				return err
			}
			printMarkdown(renderer.PayeesMarkdown(payees))
		default:
			return fmt.Errorf("unknown report %q: %w", name, finance.ErrInvalidInput)
		}
		return nil
	})
}

func (c *reportCmd) customRange(l *finance.Ledger) (date.Range, error) {
	from, err := date.Parse(c.start)
	if err != nil {
		return date.Range{}, err
	}
	to, err := parseDay(l, c.end)
	if err != nil {
		return date.Range{}, err
	}
	if to.Before(from) {
		return date.Range{}, fmt.Errorf("range ends on %s before it starts on %s: %w", to, from, finance.ErrInvalidInput)
	}
	return date.Range{From: from, To: to}, nil
}
