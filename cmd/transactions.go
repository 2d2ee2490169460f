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

type txCmd struct {
	account  string
	category string
	amount   string
	payee    string
	memo     string
	date     string
	cleared  bool
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "record a transaction" }
func (*txCmd) Usage() string {
	return `fin tx -a <account> -amount <amount> [-c <category>] [-payee <payee>] [-memo <memo>] [-d <date>] [-cleared]

  Records a transaction. Negative amounts are outflows, positive amounts inflows.

Usage Examples:
$ fin tx -a Checking -amount -42.10 -c Groceries -payee "Corner Grocery"
$ fin tx -a Checking -amount 2500 -payee Employer
`
}
func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account name or id")
	f.StringVar(&c.category, "c", "", "Category name or id")
	f.StringVar(&c.amount, "amount", "", "Signed amount")
	f.StringVar(&c.payee, "payee", "", "Payee")
	f.StringVar(&c.memo, "memo", "", "Memo")
	f.StringVar(&c.date, "d", "", "Transaction date. Defaults to today")
	f.BoolVar(&c.cleared, "cleared", false, "The transaction already appears on the bank statement")
}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		a, err := findAccount(ctx, l, c.account)
		if err != nil {
			return err
		}
		cat, err := findCategory(ctx, l, c.category)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", c.amount)
		if err != nil {
			return err
		}
		day, err := parseDay(l, c.date)
		if err != nil {
			return err
		}
		tx, err := l.AddTransaction(ctx, finance.Transaction{
			AccountID:  a.ID,
			CategoryID: cat.ID,
			Date:       day,
			Amount:     amount,
			Payee:      c.payee,
			Memo:       c.memo,
			Cleared:    c.cleared,
		})
		if err != nil {
			return err
		}
		return printTransaction(ctx, l, tx)
	})
}

func printTransaction(ctx context.Context, l *finance.Ledger, tx finance.Transaction) error {
	n, err := names(ctx, l)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", renderer.Transaction(tx, n, options()), tx.ID)
	return nil
}

type transferCmd struct {
	from   string
	to     string
	amount string
	memo   string
	date   string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move money between two accounts" }
func (*transferCmd) Usage() string {
	return `fin transfer -from <account> -to <account> -amount <amount> [-memo <memo>] [-d <date>]

  Records a transfer as a pair of mirrored transactions. Transfers are never
  income nor expense.
`
}
func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Source account")
	f.StringVar(&c.to, "to", "", "Destination account")
	f.StringVar(&c.amount, "amount", "", "Amount to move")
	f.StringVar(&c.memo, "memo", "", "Memo")
	f.StringVar(&c.date, "d", "", "Transfer date. Defaults to today")
}

func (c *transferCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		from, err := findAccount(ctx, l, c.from)
		if err != nil {
			return err
		}
		to, err := findAccount(ctx, l, c.to)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", c.amount)
		if err != nil {
			return err
		}
		day, err := parseDay(l, c.date)
		if err != nil {
			return err
		}
		pair, err := l.Transfer(ctx, finance.Transaction{
			AccountID:         from.ID,
			TransferAccountID: to.ID,
			Date:              day,
			Amount:            amount.Abs().Neg(),
			Payee:             "Transfer",
			Memo:              c.memo,
		})
		if err != nil {
			return err
		}
		return printTransaction(ctx, l, pair.From)
	})
}

type editCmd struct {
	txCmd
	transferTo string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change a transaction" }
func (*editCmd) Usage() string {
	return `fin edit [-a <account>] [-amount <amount>] [-c <category>] [-payee <payee>] [-memo <memo>] [-d <date>] [-cleared] [-transfer-to <account>] <id>

  Changes the fields given as flags. Both sides of a transfer are kept consistent.
  "-transfer-to none" turns a transfer back into a regular transaction.
`
}
func (c *editCmd) SetFlags(f *flag.FlagSet) {
	c.txCmd.SetFlags(f)
	f.StringVar(&c.transferTo, "transfer-to", "", "Make it a transfer to this account, or 'none'")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: edit takes exactly one transaction id.")
		return subcommands.ExitUsageError
	}
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	return withLedger(ctx, true, func(l *finance.Ledger) error {
		tx, err := l.Store().Transaction(ctx, f.Arg(0))
		if err != nil {
			return err
		}
		if set["a"] {
			a, err := findAccount(ctx, l, c.account)
			if err != nil {
				return err
			}
			tx.AccountID = a.ID
		}
		if set["c"] {
			cat, err := findCategory(ctx, l, c.category)
			if err != nil {
				return err
			}
			tx.CategoryID = cat.ID
		}
		if set["amount"] {
			if tx.Amount, err = parseAmount("amount", c.amount); err != nil {
				return err
			}
		}
		if set["d"] {
			if tx.Date, err = parseDay(l, c.date); err != nil {
				return err
			}
		}
		if set["payee"] {
			tx.Payee = c.payee
		}
		if set["memo"] {
			tx.Memo = c.memo
		}
		if set["cleared"] {
			tx.Cleared = c.cleared
		}
		switch {
		case c.transferTo == "none":
			tx.TransferAccountID = ""
		case c.transferTo != "":
			a, err := findAccount(ctx, l, c.transferTo)
			if err != nil {
				return err
			}
			tx.TransferAccountID = a.ID
		}
		tx, err = l.UpdateTransaction(ctx, tx)
		if err != nil {
			return err
		}
		return printTransaction(ctx, l, tx)
	})
}

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete transactions" }
func (*rmCmd) Usage() string {
	return `fin rm <id>...

  Deletes transactions. Deleting one side of a transfer deletes the other.
`
}
func (*rmCmd) SetFlags(f *flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: rm needs at least one transaction id.")
		return subcommands.ExitUsageError
	}
	return withLedger(ctx, true, func(l *finance.Ledger) error {
		for _, id := range f.Args() {
			if err := l.DeleteTransaction(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted transaction %s\n", id)
		}
		return nil
	})
}

type historyCmd struct {
	account  string
	category string
	start    string
	end      string
	query    string
	head     int
	tail     int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list transactions" }
func (*historyCmd) Usage() string {
	return `fin history [-a <account>] [-c <category>] [-s <start_date>] [-d <end_date>] [-q <text>] [-head <n>] [-tail <n>]

  Lists transactions from the ledger, with options for filtering and limiting the output.
`
}
func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Only this account")
	f.StringVar(&c.category, "c", "", "Only this category")
	f.StringVar(&c.start, "s", "", "The start date of the range")
	f.StringVar(&c.end, "d", "", "The end date of the range")
	f.StringVar(&c.query, "q", "", "Only transactions whose payee or memo contains this text")
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}
	return withLedger(ctx, false, func(l *finance.Ledger) error {
		var filter finance.TransactionFilter
		title := "Transactions"
		if c.account != "" {
			a, err := findAccount(ctx, l, c.account)
			if err != nil {
				return err
			}
			filter.AccountID = a.ID
			title = "Transactions of " + a.Name
		}
		if c.category != "" {
			cat, err := findCategory(ctx, l, c.category)
			if err != nil {
				return err
			}
			filter.CategoryID = cat.ID
		}
		var err error
		if c.start != "" {
			if filter.From, err = parseDay(l, c.start); err != nil {
				return err
			}
		}
		if c.end != "" {
			if filter.To, err = parseDay(l, c.end); err != nil {
				return err
			}
		}
		txs, err := l.SearchTransactions(ctx, filter, c.query)
		if err != nil {
			return err
		}
		if c.head > 0 && len(txs) > c.head {
			txs = txs[:c.head]
		}
		if c.tail > 0 && len(txs) > c.tail {
			txs = txs[len(txs)-c.tail:]
		}
		n, err := names(ctx, l)
		if err != nil {
			return err
		}
		printMarkdown(renderer.TransactionsMarkdown(title, txs, n, options()))
		return nil
	})
}
