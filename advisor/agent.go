// Package advisor is Finny, a conversational personal finance assistant
// backed by Gemini, answering from the ledger through function tools.
package advisor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"google.golang.org/genai"
)

const (
	prompt   = "finny> "
	greeting = "Hi, I'm Finny, your budgeting assistant. Type 'bye' to exit."
)

// farewells end a conversation, in any case.
var farewells = []string{"bye", "exit", "quit"}

// Agent is a conversation between the user and Finny. Finny facilitates the
// conversation and delegates to the experts.
type Agent struct {
	out         io.Writer
	in          *bufio.Scanner
	Facilitator *Expert
	Experts     []*Expert
	// Render formats an answer before it is printed, like a terminal markdown renderer.
	Render func(string) string

	ask func(ctx context.Context, question string) (string, error)
}

// New returns a conversation printing to w and reading the user's questions
// from r, one per line.
func New(w io.Writer, r io.Reader, experts ...*Expert) *Agent {
	a := &Agent{
		out:         w,
		in:          bufio.NewScanner(r),
		Experts:     experts,
		Facilitator: newFinny(experts...),
		Render:      func(s string) string { return s },
	}
	a.ask = a.askFinny
	return a
}

func (a *Agent) askFinny(ctx context.Context, question string) (string, error) {
	content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return "", err
	}
	return Text(content), nil
}

// Start opens the chat of every expert, then Finny's.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range append(slices.Clone(a.Experts), a.Facilitator) {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return nil
}

// Run answers questions until the user says bye or the input ends. The chats
// are opened on the first run.
//
// questions are answered first, echoed as if the user typed them.
func (a *Agent) Run(ctx context.Context, client *genai.Client, questions ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}
	return a.converse(ctx, questions)
}

func (a *Agent) converse(ctx context.Context, queued []string) error {
	fmt.Fprintln(a.out, greeting)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		q, ok, err := a.next(&queued)
		if !ok {
			return err
		}
		if q == "" {
			continue
		}
		if slices.Contains(farewells, strings.ToLower(q)) {
			return nil
		}
		answer, err := a.ask(ctx, q)
		if err != nil {
			return fmt.Errorf("finny cannot answer %q: %w", q, err)
		}
		fmt.Fprintln(a.out, a.Render(answer))
	}
}

// next prints the prompt and returns the next question, queued ones first.
// ok is false once the input is over.
func (a *Agent) next(queued *[]string) (q string, ok bool, err error) {
	fmt.Fprint(a.out, prompt)
	if len(*queued) > 0 {
		q, *queued = strings.TrimSpace((*queued)[0]), (*queued)[1:]
		fmt.Fprintln(a.out, q)
		return q, true, nil
	}
	if !a.in.Scan() {
		fmt.Fprintln(a.out)
		return "", false, a.in.Err()
	}
	return strings.TrimSpace(a.in.Text()), true, nil
}
