package finance

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxPayoffMonths bounds debt simulations: a payoff taking longer is reported as not payable.
const MaxPayoffMonths = 600

// simulationPlaces bounds the precision of balances carried across simulated months.
const simulationPlaces = 10

// Debt is a loan or card balance to pay off. Simulations never modify it.
type Debt struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Kind         string          `json:"kind,omitempty"` // credit_card, student_loan, mortgage...
	Balance      Money           `json:"balance"`
	Rate         decimal.Decimal `json:"rate"` // annual interest rate in percent
	MinPayment   Money           `json:"minPayment"`
	ExtraPayment Money           `json:"extraPayment"`
	DueDay       int             `json:"dueDay,omitempty"`
}

// Validate checks the debt for missing or negative fields.
func (d Debt) Validate() error {
	switch {
	case d.ID == "":
		return invalid("debt id is required")
	case strings.TrimSpace(d.Name) == "":
		return invalid("debt %s: name is required", d.ID)
	case d.Balance.IsNegative():
		return invalid("debt %s: negative balance %s", d.ID, d.Balance)
	case d.Rate.IsNegative():
		return invalid("debt %s: negative rate %s", d.ID, d.Rate)
	case d.MinPayment.IsNegative():
		return invalid("debt %s: negative minimum payment %s", d.ID, d.MinPayment)
	case d.ExtraPayment.IsNegative():
		return invalid("debt %s: negative extra payment %s", d.ID, d.ExtraPayment)
	case d.DueDay < 0 || d.DueDay > 31:
		return invalid("debt %s: due day %d out of range", d.ID, d.DueDay)
	}
	return nil
}

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// monthlyRate returns rate/100/12 as a fraction.
func (d Debt) monthlyRate() decimal.Decimal {
	return d.Rate.DivRound(hundred, simulationPlaces+6).DivRound(twelve, simulationPlaces+6)
}

// Strategy is the order in which extra payments are directed.
type Strategy string

const (
	// Snowball pays the smallest balance first.
	Snowball Strategy = "snowball"
	// Avalanche pays the highest interest rate first.
	Avalanche Strategy = "avalanche"
)

// Order returns a copy of debts sorted for the strategy. Ties keep their input order.
func Order(debts []Debt, s Strategy) []Debt {
	ordered := slices.Clone(debts)
	switch s {
	case Snowball:
		slices.SortStableFunc(ordered, func(a, b Debt) int { return a.Balance.Cmp(b.Balance) })
	case Avalanche:
		slices.SortStableFunc(ordered, func(a, b Debt) int { return b.Rate.Cmp(a.Rate) })
	}
	return ordered
}

// PaidOff records the month a debt reached zero in a simulation.
type PaidOff struct {
	DebtID string
	Name   string
	Month  int
}

// Payoff is the outcome of a simulation.
type Payoff struct {
	Strategy      Strategy
	Months        int
	TotalInterest Money
	Order         []PaidOff
	// Payable is false when balances remained after MaxPayoffMonths;
	// Months is then the cap, not a payoff date.
	Payable bool
}

type simulatedDebt struct {
	Debt
	balance decimal.Decimal
	rate    decimal.Decimal
}

// Simulate amortizes debts month by month with the strategy's order, computed once.
//
// Each month every unpaid debt accrues a month of interest and receives its
// minimum payment. The pool made of every extra payment plus the minimum
// payments of debts paid off in previous months goes entirely to the first
// unpaid debt in order at the start of the month. A debt reaching zero or
// less is clamped to zero.
func Simulate(debts []Debt, s Strategy) Payoff {
	ordered := Order(debts, s)
	state := make([]simulatedDebt, len(ordered))
	extra := decimal.Zero
	for i, d := range ordered {
		state[i] = simulatedDebt{Debt: d, balance: d.Balance.Decimal(), rate: d.monthlyRate()}
		extra = extra.Add(d.ExtraPayment.Decimal())
	}

	firstUnpaid := func() int {
		for i, d := range state {
			if d.balance.IsPositive() {
				return i
			}
		}
		return -1
	}

	result := Payoff{Strategy: s}
	interest, freed := decimal.Zero, decimal.Zero
	for result.Months < MaxPayoffMonths {
		target := firstUnpaid()
		if target < 0 {
			break
		}
		result.Months++
		pool := extra.Add(freed)
		for i := range state {
			d := &state[i]
			if !d.balance.IsPositive() {
				continue
			}
			accrued := d.balance.Mul(d.rate).Round(simulationPlaces)
			interest = interest.Add(accrued)
			payment := d.MinPayment.Decimal()
			if i == target {
				payment = payment.Add(pool)
			}
			d.balance = d.balance.Add(accrued).Sub(payment)
			if !d.balance.IsPositive() {
				d.balance = decimal.Zero
				freed = freed.Add(d.MinPayment.Decimal())
				result.Order = append(result.Order, PaidOff{DebtID: d.ID, Name: d.Name, Month: result.Months})
			}
		}
	}
	result.Payable = firstUnpaid() < 0
	result.TotalInterest = M(interest).Round()
	return result
}

// DebtComparison compares the two strategies on the same debts.
type DebtComparison struct {
	Snowball  Payoff
	Avalanche Payoff
	// Savings is the interest avalanche saves over snowball; negative when snowball is cheaper.
	Savings Money
}

// CompareStrategies simulates both strategies.
func CompareStrategies(debts []Debt) DebtComparison {
	c := DebtComparison{
		Snowball:  Simulate(debts, Snowball),
		Avalanche: Simulate(debts, Avalanche),
	}
	c.Savings = c.Snowball.TotalInterest.Sub(c.Avalanche.TotalInterest)
	return c
}

// DebtSchedule is the standalone payoff of a single debt paying its minimum plus its extra payment.
type DebtSchedule struct {
	Debt          Debt
	Months        int
	TotalInterest Money
	Payable       bool
}

// Schedule amortizes d alone. A debt whose payment does not exceed its first
// month of interest is not payable and is not simulated.
func (d Debt) Schedule() DebtSchedule {
	sched := DebtSchedule{Debt: d}
	balance := d.Balance.Decimal()
	if !balance.IsPositive() {
		sched.Payable = true
		return sched
	}
	rate := d.monthlyRate()
	payment := d.MinPayment.Add(d.ExtraPayment).Decimal()
	if payment.LessThanOrEqual(balance.Mul(rate)) {
		return sched
	}
	interest := decimal.Zero
	for balance.IsPositive() && sched.Months < MaxPayoffMonths {
		accrued := balance.Mul(rate).Round(simulationPlaces)
		interest = interest.Add(accrued)
		balance = balance.Add(accrued).Sub(payment)
		sched.Months++
	}
	sched.Payable = !balance.IsPositive()
	sched.TotalInterest = M(interest).Round()
	return sched
}

// Schedules returns the standalone schedule of every debt, highest rate first.
func Schedules(debts []Debt) []DebtSchedule {
	ordered := Order(debts, Avalanche)
	scheds := make([]DebtSchedule, len(ordered))
	for i, d := range ordered {
		scheds[i] = d.Schedule()
	}
	return scheds
}

// TotalDebt returns the sum of all balances.
func TotalDebt(debts []Debt) Money {
	var total Money
	for _, d := range debts {
		total = total.Add(d.Balance)
	}
	return total
}

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case Snowball, Avalanche:
		return st, nil
	}
	return "", invalid("unknown strategy %q", s)
}
