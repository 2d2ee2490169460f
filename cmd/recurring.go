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

type recurCmd struct {
	account      string
	category     string
	to           string
	typ          string
	amount       string
	memo         string
	frequency    string
	next         string
	status       string
	subscription bool
	url          string
}

func (*recurCmd) Name() string     { return "recur" }
func (*recurCmd) Synopsis() string { return "list, create or change recurring transactions" }
func (*recurCmd) Usage() string {
	return `fin recur
fin recur -a <account> -amount <amount> [-type expense|income|transfer] [-to <account>] [-c <category>]
          [-f <frequency>] [-next <date>] [-subscription] [-url <url>] [-memo <memo>] <payee>
fin recur -status active|paused|cancelled <rule>

  Without arguments, lists the recurring transactions. With a payee, creates a
  rule. With -status, pauses, resumes or cancels an existing rule.

  Frequencies are daily, weekly, biweekly, monthly and yearly. The amount sign
  is forced by the type: expenses are outflows, income inflows.
`
}
func (c *recurCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account name or id")
	f.StringVar(&c.category, "c", "", "Category name or id")
	f.StringVar(&c.to, "to", "", "Destination account of a transfer rule")
	f.StringVar(&c.typ, "type", "expense", "Rule type (expense, income, transfer)")
	f.StringVar(&c.amount, "amount", "", "Amount of each occurrence")
	f.StringVar(&c.memo, "memo", "", "Memo of each occurrence")
	f.StringVar(&c.frequency, "f", "monthly", "Frequency")
	f.StringVar(&c.next, "next", "", "Date of the first occurrence. Defaults to today")
	f.StringVar(&c.status, "status", "", "New status of an existing rule")
	f.BoolVar(&c.subscription, "subscription", false, "Flag the rule as a subscription")
	f.StringVar(&c.url, "url", "", "Subscription management URL")
}

func (c *recurCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch {
	case f.NArg() == 0:
		return withLedger(ctx, false, func(l *finance.Ledger) error {
			rules, err := l.Store().RecurringRules(ctx, finance.RuleFilter{})
			if err != nil {
				return err
			}
			n, err := names(ctx, l)
			if err != nil {
				return err
			}
			printMarkdown(renderer.RecurringMarkdown(rules, n, options()))
			return nil
		})
	case f.NArg() > 1:
		fmt.Fprintln(os.Stderr, "Error: recur takes at most one payee or rule.")
		return subcommands.ExitUsageError
	case c.status != "":
		return withLedger(ctx, true, func(l *finance.Ledger) error {
			status, err := finance.ParseRuleStatus(c.status)
			if err != nil {
				return err
			}
			r, err := findRule(ctx, l, f.Arg(0))
			if err != nil {
				return err
			}
			if r, err = l.SetRuleStatus(ctx, r.ID, status); err != nil {
				return err
			}
			fmt.Printf("Recurring %q is now %s\n", r.Payee, r.Status)
			return nil
		})
	}

	return withLedger(ctx, true, func(l *finance.Ledger) error {
		typ, err := finance.ParseRuleType(c.typ)
		if err != nil {
			return err
		}
		freq, err := date.ParsePeriod(c.frequency)
		if err != nil {
			return fmt.Errorf("%w: %w", finance.ErrInvalidFrequency, err)
		}
		amount, err := parseAmount("amount", c.amount)
		if err != nil {
			return err
		}
		next, err := parseDay(l, c.next)
		if err != nil {
			return err
		}
		a, err := findAccount(ctx, l, c.account)
		if err != nil {
			return err
		}
		cat, err := findCategory(ctx, l, c.category)
		if err != nil {
			return err
		}
		rule := finance.RecurringRule{
			AccountID:    a.ID,
			CategoryID:   cat.ID,
			Type:         typ,
			Amount:       amount,
			Payee:        f.Arg(0),
			Memo:         c.memo,
			Frequency:    freq,
			NextDate:     next,
			Subscription: c.subscription,
			URL:          c.url,
		}
		if c.to != "" {
			to, err := findAccount(ctx, l, c.to)
			if err != nil {
				return err
			}
			rule.TransferAccountID = to.ID
		}
		rule, err = l.AddRecurringRule(ctx, rule)
		if err != nil {
			return err
		}
		fmt.Printf("Created recurring %q %s from %s (%s)\n", rule.Payee, rule.Frequency, rule.NextDate, rule.ID)
		return nil
	})
}

type processCmd struct {
	date string
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "create the transactions of due recurring rules" }
func (*processCmd) Usage() string {
	return `fin process [-d <date>]

  Creates every occurrence due on or before the date, for every active
  recurring rule, and advances the rules. A failing rule does not stop the
  others.
`
}
func (c *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Process occurrences due up to this date. Defaults to today")
}

func (c *processCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// rules processed before a failing one are saved anyway.
	var failed error
	status := withLedger(ctx, true, func(l *finance.Ledger) error {
		today, err := parseDay(l, c.date)
		if err != nil {
			return err
		}
		var pass finance.RecurringPass
		pass, failed = l.ProcessRecurring(ctx, today)
		printMarkdown(renderer.RecurringPassMarkdown(pass, options()))
		return nil
	})
	if status == subcommands.ExitSuccess && failed != nil {
		fmt.Fprintln(os.Stderr, "Error:", failed)
		return subcommands.ExitFailure
	}
	return status
}
