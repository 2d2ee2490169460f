package finance

import (
	"strings"

	"github.com/etnz/finance/date"
)

// Transaction is a single signed movement of money on an account:
// positive amounts are inflows, negative amounts outflows.
type Transaction struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"accountId"`
	CategoryID string    `json:"categoryId,omitempty"`
	Date       date.Date `json:"date"`
	Amount     Money     `json:"amount"`
	Payee      string    `json:"payee,omitempty"`
	Memo       string    `json:"memo,omitempty"`

	// TransferAccountID is set on both sides of a transfer and references the other account.
	TransferAccountID string `json:"transferAccountId,omitempty"`
	// MirrorID is the id of the other side of a transfer.
	MirrorID string `json:"mirrorId,omitempty"`

	Cleared    bool `json:"cleared,omitempty"`
	Reconciled bool `json:"reconciled,omitempty"`
}

// IsTransfer reports whether tx is one side of a transfer pair.
// Transfers are never income nor expense.
func (tx Transaction) IsTransfer() bool { return tx.TransferAccountID != "" }

// Validate checks the transaction for missing required fields.
func (tx Transaction) Validate() error {
	if tx.ID == "" {
		return invalid("transaction id is required")
	}
	if tx.AccountID == "" {
		return invalid("transaction %s: account is required", tx.ID)
	}
	if tx.Date.IsZero() {
		return invalid("transaction %s: date is required", tx.ID)
	}
	if tx.TransferAccountID == tx.AccountID {
		return invalid("transaction %s: cannot transfer to the same account", tx.ID)
	}
	return nil
}

// TransferPair is the two transactions that represent money moved between two
// owned accounts. Both sides are always created, updated and deleted together.
type TransferPair struct {
	From Transaction `json:"from"`
	To   Transaction `json:"to"`
}

// NewTransferPair builds the pair for from, which must reference the other
// account in TransferAccountID. The mirror gets mirrorID, the negated amount
// and the reverse references. The mirror is never categorized.
func NewTransferPair(from Transaction, mirrorID string) (TransferPair, error) {
	if !from.IsTransfer() {
		return TransferPair{}, invalid("transaction %s is not a transfer", from.ID)
	}
	if mirrorID == "" || mirrorID == from.ID {
		return TransferPair{}, invalid("transfer %s needs a distinct mirror id", from.ID)
	}
	if err := from.Validate(); err != nil {
		return TransferPair{}, err
	}
	from.MirrorID = mirrorID
	payee := from.Payee
	if payee == "" {
		payee = "Transfer"
	}
	to := Transaction{
		ID:                mirrorID,
		AccountID:         from.TransferAccountID,
		Date:              from.Date,
		Amount:            from.Amount.Neg(),
		Payee:             payee,
		Memo:              from.Memo,
		TransferAccountID: from.AccountID,
		MirrorID:          from.ID,
		Cleared:           from.Cleared,
	}
	return TransferPair{From: from, To: to}, nil
}

// Transactions returns both sides of the pair.
func (p TransferPair) Transactions() []Transaction { return []Transaction{p.From, p.To} }

// Accounts returns the two account ids of the pair.
func (p TransferPair) Accounts() []string { return []string{p.From.AccountID, p.To.AccountID} }

// Validate checks that both sides mirror each other.
func (p TransferPair) Validate() error {
	switch {
	case p.From.AccountID != p.To.TransferAccountID || p.To.AccountID != p.From.TransferAccountID:
		return invalid("transfer %s/%s: account references do not mirror", p.From.ID, p.To.ID)
	case p.From.MirrorID != p.To.ID || p.To.MirrorID != p.From.ID:
		return invalid("transfer %s/%s: mirror ids do not match", p.From.ID, p.To.ID)
	case !p.From.Amount.Equal(p.To.Amount.Neg()):
		return invalid("transfer %s/%s: amounts %s and %s do not cancel", p.From.ID, p.To.ID, p.From.Amount, p.To.Amount)
	case p.From.Date != p.To.Date:
		return invalid("transfer %s/%s: dates differ", p.From.ID, p.To.ID)
	}
	return nil
}

// isMirrorOf reports whether candidate looks like the other side of tx.
// Used to pair transfers that predate mirror ids.
func isMirrorOf(tx, candidate Transaction) bool {
	if candidate.ID == tx.ID {
		return false
	}
	if tx.MirrorID != "" {
		return candidate.ID == tx.MirrorID
	}
	return candidate.AccountID == tx.TransferAccountID &&
		candidate.TransferAccountID == tx.AccountID &&
		candidate.Date == tx.Date &&
		candidate.Amount.Equal(tx.Amount.Neg())
}

// matchesText reports whether s contains q, case insensitively.
func matchesText(s, q string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(q))
}
