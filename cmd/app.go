// Package cmd implements the CLI application to manage personal finances.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/finance"
	"github.com/etnz/finance/logger"
	"github.com/etnz/finance/pgstore"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&accountsCmd{}, "accounts")
	c.Register(&openCmd{}, "accounts")
	c.Register(&closeCmd{}, "accounts")
	c.Register(&recalcCmd{}, "accounts")
	c.Register(&reconcileCmd{}, "accounts")
	c.Register(&checkCmd{}, "accounts")

	c.Register(&txCmd{}, "transactions")
	c.Register(&transferCmd{}, "transactions")
	c.Register(&editCmd{}, "transactions")
	c.Register(&rmCmd{}, "transactions")
	c.Register(&historyCmd{}, "transactions")

	c.Register(&groupCmd{}, "budget")
	c.Register(&categoryCmd{}, "budget")
	c.Register(&budgetCmd{}, "budget")
	c.Register(&summaryCmd{}, "budget")
	c.Register(&assignCmd{}, "budget")
	c.Register(&moveCmd{}, "budget")
	c.Register(&copyCmd{}, "budget")

	c.Register(&recurCmd{}, "recurring")
	c.Register(&processCmd{}, "recurring")

	c.Register(&debtCmd{}, "debts")
	c.Register(&debtsCmd{}, "debts")

	c.Register(&investCmd{}, "investments")
	c.Register(&tradeCmd{}, "investments")
	c.Register(&investmentsCmd{}, "investments")
	c.Register(&quoteCmd{}, "investments")

	c.Register(&goalCmd{}, "goals")
	c.Register(&contributeCmd{}, "goals")

	c.Register(&reportCmd{}, "reports")
	c.Register(&assistCmd{}, "assistant")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	ledgerDir       = flag.String("dir", envOr(EnvDir, ".fin"), "Path to the ledger directory (JSONL files)")
	databaseURL     = flag.String("database-url", os.Getenv(EnvDatabaseURL), "PostgreSQL connection string. When set the ledger is stored in the database instead of -dir")
	defaultCurrency = flag.String("currency", envOr(EnvCurrency, "USD"), "Currency used to display amounts")
	LogLevel        = flag.String("log-level", os.Getenv(EnvLogLevel), "Log level (debug, info, warn, error)")
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func options() renderer.Options { return renderer.Options{Currency: *defaultCurrency} }

// openLedger opens the ledger selected by the global flags. done releases it,
// persisting the changes when save is set.
func openLedger(ctx context.Context) (l *finance.Ledger, done func(save bool) error, err error) {
	log := logger.FromContext(ctx)
	if *databaseURL != "" {
		s, err := pgstore.Open(ctx, *databaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		l = finance.NewLedger(s, finance.WithLocker(s), finance.WithLogger(log))
		return l, func(bool) error { s.Close(); return nil }, nil
	}

	s, err := finance.DecodeStore(*ledgerDir)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot load ledger %q: %w", *ledgerDir, err)
	}
	l = finance.NewLedger(s, finance.WithLogger(log))
	return l, func(save bool) error {
		if !save {
			return nil
		}
		return finance.EncodeStore(*ledgerDir, s)
	}, nil
}

// withLedger runs fn over the ledger, and saves it afterwards when write is set.
func withLedger(ctx context.Context, write bool, fn func(l *finance.Ledger) error) subcommands.ExitStatus {
	l, done, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if err := fn(l); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		done(false)
		return subcommands.ExitFailure
	}
	if err := done(write); err != nil {
		fmt.Fprintln(os.Stderr, "Error saving ledger:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// renderMarkdown formats md for the terminal, or returns it unchanged when it cannot.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func printMarkdown(md string) { fmt.Print(renderMarkdown(md)) }
