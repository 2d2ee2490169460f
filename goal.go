package finance

import (
	"strings"

	"github.com/etnz/finance/date"
)

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
)

// SavingsGoal tracks money put aside toward a target, independently of the budget.
type SavingsGoal struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Target     Money      `json:"target"`
	Saved      Money      `json:"saved"`
	TargetDate date.Date  `json:"targetDate"`
	CategoryID string     `json:"categoryId,omitempty"`
	Status     GoalStatus `json:"status"`
}

// Validate checks the goal for missing required fields.
func (g SavingsGoal) Validate() error {
	switch {
	case g.ID == "":
		return invalid("goal id is required")
	case strings.TrimSpace(g.Name) == "":
		return invalid("goal %s: name is required", g.ID)
	case !g.Target.IsPositive():
		return invalid("goal %s: target must be positive, got %s", g.ID, g.Target)
	}
	switch g.Status {
	case GoalActive, GoalCompleted, GoalPaused:
		return nil
	}
	return invalid("goal %s: unknown status %q", g.ID, string(g.Status))
}

// Contribute adds amount to the saved money. The goal completes once saved reaches the target.
func (g SavingsGoal) Contribute(amount Money) (SavingsGoal, error) {
	if amount.IsZero() {
		return g, invalid("goal %s: contribution must not be zero", g.ID)
	}
	g.Saved = g.Saved.Add(amount)
	if g.Saved.GreaterThanOrEqual(g.Target) {
		g.Status = GoalCompleted
	}
	return g, nil
}

// Progress returns saved as a percentage of the target, capped at 100.
func (g SavingsGoal) Progress() Percent {
	if !g.Target.IsPositive() {
		return 0
	}
	p := Percent(g.Saved.Decimal().Div(g.Target.Decimal()).Mul(hundred).InexactFloat64())
	return min(p, 100)
}

// Remaining returns the money still missing to reach the target, never negative.
func (g SavingsGoal) Remaining() Money {
	r := g.Target.Sub(g.Saved)
	if r.IsNegative() {
		return Money{}
	}
	return r
}
