package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finance"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list open accounts and their balance" }
func (*accountsCmd) Usage() string {
	return `fin accounts

  Lists the open accounts, their type and balance, with the on budget total.
`
}
func (*accountsCmd) SetFlags(f *flag.FlagSet) {}

func (c *accountsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, false, func(l *finance.Ledger) error {
		accounts, err := l.Accounts(ctx)
		if err != nil {
			return err
		}
		printMarkdown(renderer.AccountsMarkdown(accounts, options()))
		return nil
	})
}

type openCmd struct {
	typ       string
	offBudget bool
	balance   string
	date      string
}

func (*openCmd) Name() string     { return "open" }
func (*openCmd) Synopsis() string { return "open a new account" }
func (*openCmd) Usage() string {
	return `fin open [-type <type>] [-off-budget] [-balance <amount>] [-d <date>] <name>

  Opens an account. A non zero opening balance is recorded as a cleared
  "Starting Balance" transaction.

  Account types are checking, savings, credit, cash and investment.
`
}
func (c *openCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "checking", "Account type (checking, savings, credit, cash, investment)")
	f.BoolVar(&c.offBudget, "off-budget", false, "Keep the account out of the budget, like a tracking account")
	f.StringVar(&c.balance, "balance", "0", "Opening balance")
	f.StringVar(&c.date, "d", "", "Date of the opening balance. Defaults to today")
}

func (c *openCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: open takes exactly one account name.")
		return subcommands.ExitUsageError
	}
	typ, err := finance.ParseAccountType(c.typ)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		balance, err := parseAmount("balance", c.balance)
		if err != nil {
			return err
		}
		on, err := parseDay(l, c.date)
		if err != nil {
			return err
		}
		a, err := l.OpenAccount(ctx, f.Arg(0), typ, !c.offBudget, balance, on)
		if err != nil {
			return err
		}
		fmt.Printf("Opened %s account %q (%s) with balance %s\n", a.Type, a.Name, a.ID, a.Balance.Format(*defaultCurrency))
		return nil
	})
}

type closeCmd struct{}

func (*closeCmd) Name() string     { return "close" }
func (*closeCmd) Synopsis() string { return "close an account, keeping its transactions" }
func (*closeCmd) Usage() string {
	return `fin close <account>
`
}
func (*closeCmd) SetFlags(f *flag.FlagSet) {}

func (c *closeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: close takes exactly one account.")
		return subcommands.ExitUsageError
	}
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		a, err := findAccount(ctx, l, f.Arg(0))
		if err != nil {
			return err
		}
		if _, err := l.CloseAccount(ctx, a.ID); err != nil {
			return err
		}
		fmt.Printf("Closed account %q\n", a.Name)
		return nil
	})
}

type recalcCmd struct{}

func (*recalcCmd) Name() string     { return "recalc" }
func (*recalcCmd) Synopsis() string { return "recompute account balances from their transactions" }
func (*recalcCmd) Usage() string {
	return `fin recalc [<account>...]

  Re-derives the balance of the given accounts, or of every account, from
  their transactions.
`
}
func (*recalcCmd) SetFlags(f *flag.FlagSet) {}

func (c *recalcCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		var accounts []finance.Account
		if f.NArg() == 0 {
			all, err := l.Accounts(ctx)
			if err != nil {
				return err
			}
			accounts = all
		}
		for _, ref := range f.Args() {
			a, err := findAccount(ctx, l, ref)
			if err != nil {
				return err
			}
			accounts = append(accounts, a)
		}
		for _, a := range accounts {
			balance, err := l.RecalculateBalance(ctx, a.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", a.Name, balance.Format(*defaultCurrency))
		}
		return nil
	})
}

type reconcileCmd struct {
	balance string
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "reconcile an account against a statement balance" }
func (*reconcileCmd) Usage() string {
	return `fin reconcile -balance <amount> <account>

  Marks every cleared transaction of the account reconciled. When the
  statement balance differs from the ledger by a cent or more, a
  "Reconciliation Adjustment" transaction is recorded.
`
}
func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.balance, "balance", "", "The statement balance")
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: reconcile takes exactly one account.")
		return subcommands.ExitUsageError
	}
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		statement, err := parseAmount("balance", c.balance)
		if err != nil {
			return err
		}
		a, err := findAccount(ctx, l, f.Arg(0))
		if err != nil {
			return err
		}
		r, err := l.Reconcile(ctx, a.ID, statement)
		if err != nil {
			return err
		}
		printMarkdown(renderer.ReconciliationMarkdown(a.Name, r, options()))
		return nil
	})
}

type checkCmd struct {
	repair bool
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "check the ledger integrity" }
func (*checkCmd) Usage() string {
	return `fin check [-repair]

  Reports transfers without a consistent mirror, transactions on unknown
  accounts and stale account balances. With -repair, missing mirrors are
  recreated and balances re-derived.
`
}
func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.repair, "repair", false, "Repair what can be repaired")
}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var report finance.IntegrityReport
	status := withLedger(ctx, c.repair, func(l *finance.Ledger) (err error) {
		if c.repair {
			report, err = l.RepairIntegrity(ctx)
		} else {
			report, err = l.CheckIntegrity(ctx)
		}
		if err != nil {
			return err
		}
		printMarkdown(renderer.IntegrityMarkdown(report))
		return nil
	})
	if status == subcommands.ExitSuccess && report.Err() != nil {
		return subcommands.ExitFailure
	}
	return status
}
