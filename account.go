package finance

import (
	"fmt"
	"strings"
)

// AccountType is the closed set of account kinds.
type AccountType int

const (
	Checking AccountType = iota
	Savings
	Credit
	Cash
	Brokerage
)

var accountTypeNames = []string{"checking", "savings", "credit", "cash", "investment"}

func (t AccountType) String() string {
	if t < 0 || int(t) >= len(accountTypeNames) {
		return "unknown"
	}
	return accountTypeNames[t]
}

// ParseAccountType parses a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "credit_card" { // legacy name
		return Credit, nil
	}
	for i, name := range accountTypeNames {
		if name == s {
			return AccountType(i), nil
		}
	}
	return 0, invalid("unknown account type %q", s)
}

func (t AccountType) MarshalText() ([]byte, error) {
	if t.String() == "unknown" {
		return nil, fmt.Errorf("cannot marshal account type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *AccountType) UnmarshalText(text []byte) error {
	v, err := ParseAccountType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Account is a place money is held.
//
// Balance is a cache: the truth is the sum of the account's transactions (see Balance).
type Account struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     AccountType `json:"type"`
	Balance  Money       `json:"balance"`
	OnBudget bool        `json:"onBudget"`
	Closed   bool        `json:"closed"`
}

// Validate checks the account for missing required fields.
func (a Account) Validate() error {
	if a.ID == "" {
		return invalid("account id is required")
	}
	if strings.TrimSpace(a.Name) == "" {
		return invalid("account name is required")
	}
	if a.Type.String() == "unknown" {
		return invalid("account type %d is unknown", int(a.Type))
	}
	return nil
}
