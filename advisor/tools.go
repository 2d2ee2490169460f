package advisor

import (
	"context"
	"fmt"
	"math"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/renderer"
	"google.golang.org/genai"
)

// Func implements a simple Function
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func success(id, name, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"output": output}}
}

func failure(id, name, format string, args ...any) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"error": fmt.Sprintf(format, args...)}}
}

// arguments reads the loosely typed arguments of a function call.
type arguments map[string]any

func (a arguments) str(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q is not a string as expected but %T", key, v)
	}
	return s, nil
}

func (a arguments) month(key string, def date.Month) (date.Month, error) {
	s, err := a.str(key)
	if err != nil || s == "" {
		return def, err
	}
	m, err := date.ParseMonth(s)
	if err != nil {
		return def, fmt.Errorf("argument %q must be a month like 2026-03, got %q", key, s)
	}
	return m, nil
}

func (a arguments) date(key string, def date.Date) (date.Date, error) {
	s, err := a.str(key)
	if err != nil || s == "" {
		return def, err
	}
	d, err := date.Parse(s)
	if err != nil {
		return def, fmt.Errorf("argument %q must be a date like 2026-03-15, got %q", key, s)
	}
	return d, nil
}

// count reads a positive integer. JSON numbers arrive as float64.
func (a arguments) count(key string, def int) (int, error) {
	v, ok := a[key]
	if !ok {
		return def, nil
	}
	var n float64
	switch v := v.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	default:
		return def, fmt.Errorf("argument %q is not a number as expected but %T", key, v)
	}
	if n < 1 || n != math.Trunc(n) {
		return def, fmt.Errorf("argument %q must be a positive integer, got %v", key, v)
	}
	return int(n), nil
}

// tool declares a function answering with the markdown returned by run.
func tool(name, description string, params map[string]*genai.Schema, run func(ctx context.Context, args arguments) (string, error)) *Func {
	decl := &genai.FunctionDeclaration{
		Name:        name,
		Description: description,
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "A markdown document, or an error.",
		},
	}
	if len(params) > 0 {
		decl.Parameters = &genai.Schema{Type: genai.TypeObject, Properties: params}
	}
	return &Func{
		Decl: decl,
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			out, err := run(ctx, arguments(args))
			if err != nil {
				return failure(id, name, "%v", err)
			}
			return success(id, name, out)
		},
	}
}

func monthParam(what string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: what + " as YYYY-MM. The current month is the default."}
}

// names maps account and category ids to their names.
func names(ctx context.Context, l *finance.Ledger) (map[string]string, error) {
	res := make(map[string]string)
	accounts, err := l.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		res[a.ID] = a.Name
	}
	cats, err := l.Store().Categories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		res[c.ID] = c.Name
	}
	return res, nil
}

// Tools returns the functions reading l, rendering with o.
func Tools(l *finance.Ledger, o renderer.Options) []*Func {
	thisMonth := func() date.Month { return date.MonthOf(l.Today()) }
	return []*Func{
		tool("Accounts", "Lists the open accounts with their type, whether they are on budget, and their balance.", nil,
			func(ctx context.Context, _ arguments) (string, error) {
				accounts, err := l.Accounts(ctx)
				if err != nil {
					return "", err
				}
				return renderer.AccountsMarkdown(accounts, o), nil
			}),

		tool("Budget", "Returns the envelope budget of a month: for every category the money assigned, the activity and the available balance, plus To Be Budgeted.",
			map[string]*genai.Schema{"month": monthParam("The budget month")},
			func(ctx context.Context, args arguments) (string, error) {
				month, err := args.month("month", thisMonth())
				if err != nil {
					return "", err
				}
				mb, err := l.Budget(ctx, month)
				if err != nil {
					return "", err
				}
				s, err := l.BudgetSummary(ctx, month)
				if err != nil {
					return "", err
				}
				return renderer.BudgetMarkdown(mb, s, o), nil
			}),

		tool("Transactions", "Searches transactions by payee or memo over a date range. All parameters are optional.",
			map[string]*genai.Schema{
				"query": {Type: genai.TypeString, Description: "Case insensitive text to look for."},
				"from":  {Type: genai.TypeString, Description: "First day, YYYY-MM-DD."},
				"to":    {Type: genai.TypeString, Description: "Last day, YYYY-MM-DD."},
			},
			func(ctx context.Context, args arguments) (string, error) {
				var f finance.TransactionFilter
				var err error
				if f.From, err = args.date("from", date.Date{}); err != nil {
					return "", err
				}
				if f.To, err = args.date("to", date.Date{}); err != nil {
					return "", err
				}
				q, err := args.str("query")
				if err != nil {
					return "", err
				}
				txs, err := l.SearchTransactions(ctx, f, q)
				if err != nil {
					return "", err
				}
				n, err := names(ctx, l)
				if err != nil {
					return "", err
				}
				return renderer.TransactionsMarkdown("Transactions", txs, n, o), nil
			}),

		tool("Recurring", "Lists the recurring transactions and subscriptions with their next date.", nil,
			func(ctx context.Context, _ arguments) (string, error) {
				rules, err := l.Store().RecurringRules(ctx, finance.RuleFilter{})
				if err != nil {
					return "", err
				}
				n, err := names(ctx, l)
				if err != nil {
					return "", err
				}
				return renderer.RecurringMarkdown(rules, n, o), nil
			}),

		tool("Debts", "Lists the debts with their payoff time, and compares the snowball and avalanche payoff strategies.", nil,
			func(ctx context.Context, _ arguments) (string, error) {
				schedules, err := l.Debts(ctx)
				if err != nil {
					return "", err
				}
				c, err := l.DebtStrategies(ctx)
				if err != nil {
					return "", err
				}
				return renderer.DebtsMarkdown(schedules, c, o), nil
			}),

		tool("Investments", "Lists the investments with their market value, cost, gain and annualized return (XIRR).", nil,
			func(ctx context.Context, _ arguments) (string, error) {
				reports, err := l.InvestmentReports(ctx)
				if err != nil {
					return "", err
				}
				return renderer.InvestmentsMarkdown(reports, o), nil
			}),

		tool("Goals", "Lists the savings goals with their progress.", nil,
			func(ctx context.Context, _ arguments) (string, error) {
				goals, err := l.Store().Goals(ctx)
				if err != nil {
					return "", err
				}
				return renderer.GoalsMarkdown(goals, o), nil
			}),

		tool("Spending", "Returns the spending per category over a month.",
			map[string]*genai.Schema{"month": monthParam("The month")},
			func(ctx context.Context, args arguments) (string, error) {
				month, err := args.month("month", thisMonth())
				if err != nil {
					return "", err
				}
				spending, err := l.SpendingByCategory(ctx, month.Range())
				if err != nil {
					return "", err
				}
				return renderer.SpendingMarkdown(month.Range(), spending, o), nil
			}),

		tool("BudgetVsActual", "Compares, for every category, the money assigned in a month with the money spent.",
			map[string]*genai.Schema{"month": monthParam("The month")},
			func(ctx context.Context, args arguments) (string, error) {
				month, err := args.month("month", thisMonth())
				if err != nil {
					return "", err
				}
				rows, err := l.BudgetVsActual(ctx, month)
				if err != nil {
					return "", err
				}
				return renderer.BudgetVsActualMarkdown(month, rows, o), nil
			}),

		tool("Trends", "Returns income vs expenses and net worth for the last months, ending with the current month.",
			map[string]*genai.Schema{"months": {Type: genai.TypeInteger, Description: "Number of months, 6 by default."}},
			func(ctx context.Context, args arguments) (string, error) {
				n, err := args.count("months", 6)
				if err != nil {
					return "", err
				}
				flows, err := l.IncomeVsExpense(ctx, n)
				if err != nil {
					return "", err
				}
				points, err := l.NetWorth(ctx, n)
				if err != nil {
					return "", err
				}
				return renderer.FlowMarkdown(flows, o) + "\n" + renderer.NetWorthMarkdown(points, o), nil
			}),

		tool("AgeOfMoney", "Returns how many days the money currently held has been in the accounts.", nil,
			func(ctx context.Context, _ arguments) (string, error) {
				days, since, err := l.AgeOfMoney(ctx)
				if err != nil {
					return "", err
				}
				return renderer.AgeOfMoneyMarkdown(days, since), nil
			}),
	}
}
