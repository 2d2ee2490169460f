package cmd

import (
	"flag"

	"github.com/etnz/finance/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var (
	periods = predict.Set{"daily", "weekly", "biweekly", "monthly", "yearly"}
	topics  = predict.Set(mustTopics())

	// flag value predictors, by command then flag name. The "" command holds the global flags.
	predictors = map[string]map[string]complete.Predictor{
		"":         {"dir": predict.Dirs("*"), "log-level": predict.Set{"debug", "info", "warn", "error"}},
		"open":     {"type": predict.Set{"checking", "savings", "credit", "cash", "investment"}},
		"category": {"goal": predict.Set{"none", "monthly_funding", "target_balance", "target_by_date"}},
		"recur": {
			"type":   predict.Set{"expense", "income", "transfer"},
			"status": predict.Set{"active", "paused", "cancelled"},
			"f":      periods,
		},
		"invest": {"sip-freq": periods},
		"trade":  {"type": predict.Set{"buy", "sell", "sip"}},
	}

	// positional argument predictors, by command.
	arguments = map[string]complete.Predictor{
		"report": predict.Set{"spending", "flow", "networth", "actual", "age", "insights", "trend", "sankey", "payees"},
		"topic":  topics,
	}
)

func mustTopics() []string {
	t, err := docs.Topics()
	if err != nil {
		panic(err)
	}
	return t
}

func flagPredictors(name string, set func(*flag.FlagSet)) map[string]complete.Predictor {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	set(fs)
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if p, ok := predictors[name][f.Name]; ok {
			flags[f.Name] = p
			return
		}
		flags[f.Name] = predict.Something
	})
	return flags
}

// Completion returns the shell completion of every command registered in c,
// top level flags taken from topLevel.
func Completion(c *subcommands.Commander, topLevel *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors("", func(fs *flag.FlagSet) { topLevel.VisitAll(func(f *flag.Flag) { fs.Var(f.Value, f.Name, f.Usage) }) }),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		args := arguments[cmd.Name()]
		if args == nil {
			args = predict.Nothing
		}
		root.Sub[cmd.Name()] = &complete.Command{
			Flags: flagPredictors(cmd.Name(), cmd.SetFlags),
			Args:  args,
		}
	})
	return root
}
