package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/logger"
	"github.com/etnz/finance/quote"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type debtCmd struct {
	kind    string
	balance string
	rate    string
	min     string
	extra   string
	dueDay  int
	remove  bool
}

func (*debtCmd) Name() string     { return "debt" }
func (*debtCmd) Synopsis() string { return "add, change or remove a debt" }
func (*debtCmd) Usage() string {
	return `fin debt -balance <amount> -rate <percent> -min <amount> [-extra <amount>] [-kind <kind>] [-due <day>] <name>
fin debt -rm <name>

  Records a debt to pay off. When a debt with that name exists, the flags
  given replace its fields.
`
}
func (c *debtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "", "Kind of debt (credit_card, student_loan, mortgage...)")
	f.StringVar(&c.balance, "balance", "", "Current balance")
	f.StringVar(&c.rate, "rate", "0", "Annual interest rate in percent")
	f.StringVar(&c.min, "min", "", "Minimum monthly payment")
	f.StringVar(&c.extra, "extra", "0", "Extra monthly payment")
	f.IntVar(&c.dueDay, "due", 0, "Day of the month the payment is due")
	f.BoolVar(&c.remove, "rm", false, "Remove the debt")
}

func (c *debtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: debt takes exactly one name.")
		return subcommands.ExitUsageError
	}
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	return withLedger(ctx, true, func(l *finance.Ledger) error {
		d, err := findDebt(ctx, l, f.Arg(0))
		exists := err == nil
		if err != nil && !errors.Is(err, finance.ErrNotFound) {
			return err
		}
		if c.remove {
			if !exists {
				return err
			}
			if err := l.RemoveDebt(ctx, d.ID); err != nil {
				return err
			}
			fmt.Printf("Removed debt %q\n", d.Name)
			return nil
		}
		if !exists {
			d = finance.Debt{Name: f.Arg(0)}
			set["balance"], set["min"], set["rate"], set["extra"] = true, true, true, true
		}
		if set["kind"] {
			d.Kind = c.kind
		}
		if set["due"] {
			d.DueDay = c.dueDay
		}
		if set["balance"] {
			if d.Balance, err = parseAmount("balance", c.balance); err != nil {
				return err
			}
		}
		if set["min"] {
			if d.MinPayment, err = parseAmount("min", c.min); err != nil {
				return err
			}
		}
		if set["extra"] {
			if d.ExtraPayment, err = parseAmount("extra", c.extra); err != nil {
				return err
			}
		}
		if set["rate"] {
			if d.Rate, err = decimal.NewFromString(c.rate); err != nil {
				return fmt.Errorf("invalid rate %q: %w", c.rate, finance.ErrInvalidInput)
			}
		}
		if d, err = l.AddDebt(ctx, d); err != nil {
			return err
		}
		fmt.Printf("Saved debt %q: %s at %s%%\n", d.Name, d.Balance.Format(*defaultCurrency), d.Rate.StringFixed(2))
		return nil
	})
}

type debtsCmd struct{}

func (*debtsCmd) Name() string     { return "debts" }
func (*debtsCmd) Synopsis() string { return "compare the snowball and avalanche payoff strategies" }
func (*debtsCmd) Usage() string {
	return `fin debts

  Lists every debt with its own payoff time, then simulates paying them all
  off smallest balance first (snowball) and highest rate first (avalanche).
`
}
func (*debtsCmd) SetFlags(f *flag.FlagSet) {}

func (c *debtsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, false, func(l *finance.Ledger) error {
		schedules, err := l.Debts(ctx)
		if err != nil {
			return err
		}
		comparison, err := l.DebtStrategies(ctx)
		if err != nil {
			return err
		}
		printMarkdown(renderer.DebtsMarkdown(schedules, comparison, options()))
		return nil
	})
}

type investCmd struct {
	name      string
	class     string
	quoteURL  string
	quotePath string
	sipAmount string
	sipFreq   string
	sipDay    int
}

func (*investCmd) Name() string     { return "invest" }
func (*investCmd) Synopsis() string { return "declare an investment" }
func (*investCmd) Usage() string {
	return `fin invest -name <name> [-class <asset class>] [-quote-url <url> -quote-path <jsonpath>]
           [-sip-amount <amount> -sip-freq <frequency> -sip-day <day>] <ticker>

  Declares an investment. Its position is derived from the trades recorded
  with 'fin trade'. When a quote source is given, 'fin quote' fetches the
  current price from the JSON document at the URL, selecting it with the
  JSONPath expression.
`
}
func (c *investCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Name of the investment")
	f.StringVar(&c.class, "class", "", "Asset class (stock, fund, bond...)")
	f.StringVar(&c.quoteURL, "quote-url", "", "URL of a JSON document holding the price")
	f.StringVar(&c.quotePath, "quote-path", "", "JSONPath of the price in the document, like $.price")
	f.StringVar(&c.sipAmount, "sip-amount", "", "Amount of the systematic investment plan")
	f.StringVar(&c.sipFreq, "sip-freq", "monthly", "Frequency of the systematic investment plan")
	f.IntVar(&c.sipDay, "sip-day", 1, "Day of the systematic investment plan")
}

func (c *investCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: invest takes exactly one ticker.")
		return subcommands.ExitUsageError
	}
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		inv := finance.Investment{
			Ticker:     f.Arg(0),
			Name:       c.name,
			AssetClass: c.class,
			Quote:      finance.QuoteSource{URL: c.quoteURL, Path: c.quotePath},
		}
		if c.sipAmount != "" {
			amount, err := parseAmount("sip-amount", c.sipAmount)
			if err != nil {
				return err
			}
			freq, err := date.ParsePeriod(c.sipFreq)
			if err != nil {
				return fmt.Errorf("%w: %w", finance.ErrInvalidFrequency, err)
			}
			inv.SIP = finance.SIPPlan{Enabled: true, Amount: amount, Frequency: freq, Day: c.sipDay}
		}
		inv, err := l.AddInvestment(ctx, inv)
		if err != nil {
			return err
		}
		fmt.Printf("Declared investment %s %q (%s)\n", inv.Ticker, inv.Name, inv.ID)
		return nil
	})
}

type tradeCmd struct {
	typ      string
	quantity string
	price    string
	date     string
	notes    string
	remove   string
}

func (*tradeCmd) Name() string     { return "trade" }
func (*tradeCmd) Synopsis() string { return "record or delete an investment trade" }
func (*tradeCmd) Usage() string {
	return `fin trade [-type buy|sell|sip] -q <quantity> -price <price> [-d <date>] [-notes <notes>] <investment>
fin trade -rm <trade id> <investment>

  Records a trade and re-derives the position of the investment from its
  whole history.
`
}
func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "buy", "Trade type (buy, sell, sip)")
	f.StringVar(&c.quantity, "q", "", "Quantity")
	f.StringVar(&c.price, "price", "", "Unit price")
	f.StringVar(&c.date, "d", "", "Trade date. Defaults to today")
	f.StringVar(&c.notes, "notes", "", "Notes")
	f.StringVar(&c.remove, "rm", "", "Delete the trade with this id")
}

func (c *tradeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: trade takes exactly one investment.")
		return subcommands.ExitUsageError
	}
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		inv, err := findInvestment(ctx, l, f.Arg(0))
		if err != nil {
			return err
		}
		if c.remove != "" {
			inv, err = l.DeleteInvestmentTrade(ctx, inv.ID, c.remove)
		} else {
			t := finance.InvestmentTransaction{InvestmentID: inv.ID, Notes: c.notes}
			if t.Type, err = finance.ParseTradeType(c.typ); err != nil {
				return err
			}
			if t.Quantity, err = parseQuantity(c.quantity); err != nil {
				return err
			}
			if t.Price, err = parseAmount("price", c.price); err != nil {
				return err
			}
			if t.Date, err = parseDay(l, c.date); err != nil {
				return err
			}
			inv, err = l.AddInvestmentTrade(ctx, t)
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s units at an average price of %s\n", inv.Ticker, inv.Quantity, inv.AveragePrice.Format(*defaultCurrency))
		return nil
	})
}

type investmentsCmd struct{}

func (*investmentsCmd) Name() string     { return "investments" }
func (*investmentsCmd) Synopsis() string { return "show investment values and returns" }
func (*investmentsCmd) Usage() string {
	return `fin investments

  Shows the market value, cost, gain and annualized return (XIRR) of every investment.
`
}
func (*investmentsCmd) SetFlags(f *flag.FlagSet) {}

func (c *investmentsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, false, func(l *finance.Ledger) error {
		reports, err := l.InvestmentReports(ctx)
		if err != nil {
			return err
		}
		printMarkdown(renderer.InvestmentsMarkdown(reports, options()))
		return nil
	})
}

type quoteCmd struct {
	price   string
	noCache bool
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "update investment prices" }
func (*quoteCmd) Usage() string {
	return `fin quote [-no-cache]
fin quote -price <price> <investment>

  Without arguments, fetches the current price of every investment with a
  quote source. Responses are cached until the end of the day. With -price,
  sets the price of one investment by hand.
`
}
func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.price, "price", "", "Price to set by hand")
	f.BoolVar(&c.noCache, "no-cache", false, "Always fetch prices, ignoring today's cached responses")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.price != "" {
		if f.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "Error: -price needs exactly one investment.")
			return subcommands.ExitUsageError
		}
		return withLedger(ctx, true, func(l *finance.Ledger) error {
			price, err := parseAmount("price", c.price)
			if err != nil {
				return err
			}
			inv, err := findInvestment(ctx, l, f.Arg(0))
			if err != nil {
				return err
			}
			if inv, err = l.SetCurrentPrice(ctx, inv.ID, price); err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", inv.Ticker, inv.CurrentPrice.Format(*defaultCurrency))
			return nil
		})
	}

	opts := []quote.Option{quote.WithLogger(logger.FromContext(ctx))}
	if !c.noCache {
		dir, err := os.UserCacheDir()
		if err == nil {
			dir = filepath.Join(dir, "fin", "quotes")
		}
		opts = append(opts, quote.WithDailyCache(dir))
	}
	fetcher := quote.NewFetcher(opts...)

	// prices fetched before a failing one are saved anyway.
	var failed error
	status := withLedger(ctx, true, func(l *finance.Ledger) error {
		var updates []quote.Update
		updates, failed = quote.UpdateAll(ctx, l, fetcher)
		for _, u := range updates {
			if u.Err == nil {
				fmt.Printf("%s: %s\n", u.Investment.Ticker, u.Price.Format(*defaultCurrency))
			}
		}
		return nil
	})
	if status == subcommands.ExitSuccess && failed != nil {
		fmt.Fprintln(os.Stderr, "Error:", failed)
		return subcommands.ExitFailure
	}
	return status
}

type goalCmd struct {
	target   string
	date     string
	category string
}

func (*goalCmd) Name() string     { return "goal" }
func (*goalCmd) Synopsis() string { return "list or create savings goals" }
func (*goalCmd) Usage() string {
	return `fin goal
fin goal -target <amount> [-d <target date>] [-c <category>] <name>

  Without arguments, lists the savings goals and their progress. Otherwise
  creates a goal.
`
}
func (c *goalCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.target, "target", "", "Amount to save")
	f.StringVar(&c.date, "d", "", "Date the target should be reached by")
	f.StringVar(&c.category, "c", "", "Budget category funding the goal")
}

func (c *goalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return withLedger(ctx, false, func(l *finance.Ledger) error {
			goals, err := l.Store().Goals(ctx)
			if err != nil {
				return err
			}
			printMarkdown(renderer.GoalsMarkdown(goals, options()))
			return nil
		})
	}
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: goal takes exactly one name.")
		return subcommands.ExitUsageError
	}
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		g := finance.SavingsGoal{Name: f.Arg(0)}
		var err error
		if g.Target, err = parseAmount("target", c.target); err != nil {
			return err
		}
		if c.date != "" {
			if g.TargetDate, err = parseDay(l, c.date); err != nil {
				return err
			}
		}
		cat, err := findCategory(ctx, l, c.category)
		if err != nil {
			return err
		}
		g.CategoryID = cat.ID
		if g, err = l.AddGoal(ctx, g); err != nil {
			return err
		}
		fmt.Printf("Created goal %q of %s (%s)\n", g.Name, g.Target.Format(*defaultCurrency), g.ID)
		return nil
	})
}

type contributeCmd struct {
	amount string
}

func (*contributeCmd) Name() string     { return "contribute" }
func (*contributeCmd) Synopsis() string { return "put money toward a savings goal" }
func (*contributeCmd) Usage() string {
	return `fin contribute -amount <amount> <goal>

  Adds money to a goal. The goal completes once the target is reached.
`
}
func (c *contributeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "Amount contributed")
}

func (c *contributeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: contribute takes exactly one goal.")
		return subcommands.ExitUsageError
	}
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		amount, err := parseAmount("amount", c.amount)
		if err != nil {
			return err
		}
		g, err := findGoal(ctx, l, f.Arg(0))
		if err != nil {
			return err
		}
		if g, err = l.Contribute(ctx, g.ID, amount); err != nil {
			return err
		}
		fmt.Printf("%q: %s saved of %s (%s), %s\n", g.Name, g.Saved.Format(*defaultCurrency), g.Target.Format(*defaultCurrency), g.Progress(), g.Status)
		return nil
	})
}
