package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/finance"
	"github.com/etnz/finance/advisor"
	"github.com/etnz/finance/logger"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct {
	model string
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with Finny, the AI assistant" }
func (*assistCmd) Usage() string {
	return `fin assist [-model <model>] [<question>]

  Starts an interactive session with Finny, a budgeting assistant reading
  your ledger. Arguments are asked as the first question.

  Gemini credentials are read from the environment, like GEMINI_API_KEY.
`
}
func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.model, "model", advisor.Model, "Gemini model")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initialPrompt := strings.Join(f.Args(), " ")

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}
	advisor.Model = c.model

	return withLedger(ctx, false, func(l *finance.Ledger) error {
		bookkeeper := advisor.NewBookkeeper(l, options())
		researcher := advisor.NewResearcher()
		log := logger.FromContext(ctx)
		bookkeeper.Log, researcher.Log = log, log

		a := advisor.New(os.Stdout, os.Stdin, bookkeeper, researcher)
		a.Facilitator.Log = log
		a.Render = renderMarkdown
		if err := a.Run(ctx, client, initialPrompt); err != nil {
			return fmt.Errorf("assistant failed: %w", err)
		}
		return nil
	})
}
