package finance

import (
	"fmt"
	"strings"

	"github.com/etnz/finance/date"
)

// GoalKind is the kind of funding goal attached to a budget category.
type GoalKind string

const (
	NoGoal         GoalKind = ""
	MonthlyFunding GoalKind = "monthly_funding"
	TargetBalance  GoalKind = "target_balance"
	TargetByDate   GoalKind = "target_by_date"
)

// ParseGoalKind parses a goal kind name. Both "-" and "_" separators are accepted,
// "none" and "" both mean NoGoal.
func ParseGoalKind(s string) (GoalKind, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch GoalKind(s) {
	case NoGoal, "none":
		return NoGoal, nil
	case MonthlyFunding, TargetBalance, TargetByDate:
		return GoalKind(s), nil
	}
	return NoGoal, invalid("unknown goal kind %q", s)
}

// CategoryGoal is the optional goal descriptor of a category.
type CategoryGoal struct {
	Kind   GoalKind  `json:"kind,omitempty"`
	Amount Money     `json:"amount"`
	Date   date.Date `json:"date"`
}

// IsSet reports whether a goal is configured.
func (g CategoryGoal) IsSet() bool { return g.Kind != NoGoal && !g.Amount.IsZero() }

// Validate checks the goal is consistent with its kind.
func (g CategoryGoal) Validate() error {
	switch g.Kind {
	case NoGoal:
		return nil
	case MonthlyFunding, TargetBalance:
	case TargetByDate:
		if g.Date.IsZero() {
			return invalid("goal %s requires a target date", g.Kind)
		}
	default:
		return invalid("unknown goal kind %q", string(g.Kind))
	}
	if !g.Amount.IsPositive() {
		return invalid("goal %s requires a positive amount, got %s", g.Kind, g.Amount)
	}
	return nil
}

// Progress returns available as a percentage of the goal amount.
//
// The result is capped at 100 but has no lower bound: an overspent category
// reports a negative progress. ok is false when no goal is set.
func (g CategoryGoal) Progress(available Money) (p Percent, ok bool) {
	if !g.IsSet() {
		return 0, false
	}
	ratio := available.Decimal().Div(g.Amount.Decimal()).Mul(newDecimal(100))
	p = Percent(ratio.InexactFloat64())
	if p > 100 {
		p = 100
	}
	return p, true
}

// CategoryGroup groups categories for display.
type CategoryGroup struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Sort   int    `json:"sort,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

// Validate checks the group for missing required fields.
func (g CategoryGroup) Validate() error {
	if g.ID == "" {
		return invalid("category group id is required")
	}
	if strings.TrimSpace(g.Name) == "" {
		return invalid("category group name is required")
	}
	return nil
}

// Category is a budget envelope.
type Category struct {
	ID      string       `json:"id"`
	GroupID string       `json:"groupId"`
	Name    string       `json:"name"`
	Sort    int          `json:"sort,omitempty"`
	Hidden  bool         `json:"hidden,omitempty"`
	Goal    CategoryGoal `json:"goal"`
}

// Validate checks the category for missing required fields and a consistent goal.
func (c Category) Validate() error {
	if c.ID == "" {
		return invalid("category id is required")
	}
	if c.GroupID == "" {
		return invalid("category %s: group is required", c.ID)
	}
	if strings.TrimSpace(c.Name) == "" {
		return invalid("category %s: name is required", c.ID)
	}
	if err := c.Goal.Validate(); err != nil {
		return fmt.Errorf("category %s: %w", c.ID, err)
	}
	return nil
}
