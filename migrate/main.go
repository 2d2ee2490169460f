// Command migrate copies fin ledgers between a JSONL directory and a
// PostgreSQL database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/finance"
	"github.com/etnz/finance/logger"
	"github.com/etnz/finance/pgstore"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

func main() {
	// migrate has its own flags, independent of fin's.
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	level := flag.String("log-level", "", "Log level (debug, info, warn, error)")

	commander := subcommands.NewCommander(flag.CommandLine, "migrate")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(&copyCmd{}, "")
	commander.Register(&checkCmd{}, "")
	flag.Parse()
	if err := logger.SetLevel(*level); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	ctx := logger.WithContext(context.Background(), logger.New())
	os.Exit(int(commander.Execute(ctx)))
}

// isDatabase reports whether ref is a PostgreSQL connection string rather than a directory.
func isDatabase(ref string) bool {
	return strings.HasPrefix(ref, "postgres://") || strings.HasPrefix(ref, "postgresql://")
}

// open returns the store behind ref. done persists it when save is set, and releases it.
func open(ctx context.Context, ref string, log zerolog.Logger) (s finance.Store, done func(save bool) error, err error) {
	if isDatabase(ref) {
		db, err := pgstore.Open(ctx, ref, log)
		if err != nil {
			return nil, nil, err
		}
		return db, func(bool) error { db.Close(); return nil }, nil
	}
	mem, err := finance.DecodeStore(ref)
	if err != nil {
		return nil, nil, err
	}
	return mem, func(save bool) error {
		if !save {
			return nil
		}
		return finance.EncodeStore(ref, mem)
	}, nil
}

// check prints the integrity report of s and returns its error.
func check(ctx context.Context, s finance.Store, log zerolog.Logger) error {
	report, err := finance.NewLedger(s, finance.WithLogger(log)).CheckIntegrity(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d accounts, %d transactions checked, %d issues\n", report.Accounts, report.Transactions, len(report.Issues))
	for _, i := range report.Issues {
		fmt.Println("  ", i)
	}
	return report.Err()
}

type copyCmd struct {
	from string
	to   string
}

func (*copyCmd) Name() string     { return "copy" }
func (*copyCmd) Synopsis() string { return "copies a ledger into another one" }
func (*copyCmd) Usage() string {
	return `migrate copy -from <dir|url> -to <dir|url>

Copies every record of a ledger into another one, keeping ids. A ledger is
either a JSONL directory or a postgres:// connection string. Records already
present in the destination are overwritten.
`
}
func (c *copyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Source ledger directory or database URL")
	f.StringVar(&c.to, "to", "", "Destination ledger directory or database URL")
}

func (c *copyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" {
		fmt.Fprintln(os.Stderr, "Error: -from and -to flags are required.")
		return subcommands.ExitUsageError
	}
	if c.from == c.to {
		fmt.Fprintln(os.Stderr, "Error: -from and -to must be different ledgers.")
		return subcommands.ExitUsageError
	}
	log := logger.FromContext(ctx)

	src, closeSrc, err := open(ctx, c.from, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", c.from, err)
		return subcommands.ExitFailure
	}
	defer closeSrc(false)

	dst, closeDst, err := open(ctx, c.to, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", c.to, err)
		return subcommands.ExitFailure
	}
	if err := finance.CopyStore(ctx, dst, src); err != nil {
		closeDst(false)
		fmt.Fprintf(os.Stderr, "Error copying the ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := closeDst(true); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving %s: %v\n", c.to, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Copied %s into %s\n", c.from, c.to)
	return subcommands.ExitSuccess
}

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "verifies the integrity of a ledger" }
func (*checkCmd) Usage() string {
	return `migrate check <dir|url>

Checks that account balances match their transactions and that every
transfer has its other side, typically after a copy.
`
}
func (*checkCmd) SetFlags(f *flag.FlagSet) {}

func (*checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: check takes exactly one ledger.")
		return subcommands.ExitUsageError
	}
	log := logger.FromContext(ctx)
	s, done, err := open(ctx, f.Arg(0), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	defer done(false)
	if err := check(ctx, s, log); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
