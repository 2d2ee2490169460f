package finance

import (
	"context"
	"errors"
	"fmt"
)

// IssueKind classifies an integrity issue.
type IssueKind string

const (
	// MissingMirror is a transfer whose other side does not exist.
	MissingMirror IssueKind = "missing-mirror"
	// MismatchedMirror is a transfer pair whose sides do not cancel each other.
	MismatchedMirror IssueKind = "mismatched-mirror"
	// StaleBalance is an account whose cached balance differs from its transactions.
	StaleBalance IssueKind = "stale-balance"
	// UnknownAccount is a transaction posted to an account that does not exist.
	UnknownAccount IssueKind = "unknown-account"
)

// Issue is a violation of a ledger invariant.
type Issue struct {
	Kind          IssueKind
	AccountID     string
	TransactionID string
	Detail        string
	Repaired      bool
}

func (i Issue) Error() string {
	switch {
	case i.TransactionID != "":
		return fmt.Sprintf("%s: transaction %s on account %s: %s", i.Kind, i.TransactionID, i.AccountID, i.Detail)
	default:
		return fmt.Sprintf("%s: account %s: %s", i.Kind, i.AccountID, i.Detail)
	}
}

// IntegrityReport lists the issues found in a ledger.
type IntegrityReport struct {
	Accounts     int
	Transactions int
	Issues       []Issue
}

// Err returns the unrepaired issues as a single error wrapping ErrIntegrity, or nil.
func (r IntegrityReport) Err() error {
	var errs []error
	for _, i := range r.Issues {
		if !i.Repaired {
			errs = append(errs, fmt.Errorf("%w: %w", ErrIntegrity, i))
		}
	}
	return errors.Join(errs...)
}

// checkIntegrity inspects accounts and transactions in memory.
// It returns the issues and, for missing mirrors, the pair to recreate.
func checkIntegrity(accounts []Account, txs []Transaction) ([]Issue, map[int]Transaction) {
	var issues []Issue
	known := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		known[a.ID] = true
	}
	byID := make(map[string]int, len(txs))
	for i, tx := range txs {
		byID[tx.ID] = i
	}

	missing := make(map[int]Transaction) // index of the issue -> transfer to mirror
	paired := make(map[string]bool)
	for _, tx := range txs {
		if !known[tx.AccountID] {
			issues = append(issues, Issue{Kind: UnknownAccount, AccountID: tx.AccountID, TransactionID: tx.ID, Detail: "account does not exist"})
		}
		if !tx.IsTransfer() || paired[tx.ID] {
			continue
		}
		var mirror Transaction
		found := false
		if tx.MirrorID != "" {
			if j, ok := byID[tx.MirrorID]; ok {
				mirror, found = txs[j], true
			}
		} else {
			for _, c := range txs {
				if !paired[c.ID] && isMirrorOf(tx, c) {
					mirror, found = c, true
					break
				}
			}
		}
		if !found {
			missing[len(issues)] = tx
			issues = append(issues, Issue{
				Kind:          MissingMirror,
				AccountID:     tx.AccountID,
				TransactionID: tx.ID,
				Detail:        fmt.Sprintf("no mirror on account %s for %s on %s", tx.TransferAccountID, tx.Amount, tx.Date),
			})
			paired[tx.ID] = true
			continue
		}
		paired[tx.ID], paired[mirror.ID] = true, true
		if tx.MirrorID == "" {
			// legacy pairs have no mirror ids, only check amounts and references.
			continue
		}
		if err := (TransferPair{From: tx, To: mirror}).Validate(); err != nil {
			issues = append(issues, Issue{Kind: MismatchedMirror, AccountID: tx.AccountID, TransactionID: tx.ID, Detail: err.Error()})
		}
	}

	balances := Balances(txs)
	for _, a := range accounts {
		derived := balances[a.ID].Round()
		if !derived.Equal(a.Balance.Round()) {
			issues = append(issues, Issue{
				Kind:      StaleBalance,
				AccountID: a.ID,
				Detail:    fmt.Sprintf("cached balance %s, transactions sum to %s", a.Balance.Round(), derived),
			})
		}
	}
	return issues, missing
}

// CheckIntegrity reports transfers without a consistent mirror, transactions
// on unknown accounts and accounts whose cached balance is stale.
func (l *Ledger) CheckIntegrity(ctx context.Context) (IntegrityReport, error) {
	accounts, err := l.store.Accounts(ctx)
	if err != nil {
		return IntegrityReport{}, err
	}
	txs, err := l.store.Transactions(ctx, TransactionFilter{})
	if err != nil {
		return IntegrityReport{}, err
	}
	issues, _ := checkIntegrity(accounts, txs)
	for _, i := range issues {
		l.log.Warn().Str("kind", string(i.Kind)).Str("account", i.AccountID).Str("transaction", i.TransactionID).Msg(i.Detail)
	}
	return IntegrityReport{Accounts: len(accounts), Transactions: len(txs), Issues: issues}, nil
}

// RepairIntegrity recreates missing transfer mirrors and re-derives every
// account balance. Mismatched pairs and unknown accounts cannot be repaired
// automatically and stay in the report as unrepaired.
func (l *Ledger) RepairIntegrity(ctx context.Context) (IntegrityReport, error) {
	accounts, err := l.store.Accounts(ctx)
	if err != nil {
		return IntegrityReport{}, err
	}
	txs, err := l.store.Transactions(ctx, TransactionFilter{})
	if err != nil {
		return IntegrityReport{}, err
	}
	known := make(map[string]bool, len(accounts))
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		known[a.ID] = true
		ids = append(ids, a.ID)
	}
	issues, missing := checkIntegrity(accounts, txs)
	report := IntegrityReport{Accounts: len(accounts), Transactions: len(txs), Issues: issues}

	var errs []error
	for i, tx := range missing {
		if !known[tx.AccountID] || !known[tx.TransferAccountID] {
			continue
		}
		mirrorID := tx.MirrorID
		if mirrorID == "" {
			mirrorID = l.newID()
		}
		pair, err := NewTransferPair(tx, mirrorID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		err = l.withAccounts(ctx, pair.Accounts(), func() error { return l.putPair(ctx, pair) })
		if err != nil {
			errs = append(errs, fmt.Errorf("cannot recreate mirror of %s: %w", tx.ID, err))
			continue
		}
		report.Issues[i].Repaired = true
		l.log.Warn().Str("transaction", tx.ID).Str("mirror", pair.To.ID).Str("account", pair.To.AccountID).Msg("transfer mirror recreated")
	}

	if err := l.withAccounts(ctx, ids, func() error { return nil }); err != nil {
		errs = append(errs, err)
	} else {
		for i := range report.Issues {
			if report.Issues[i].Kind == StaleBalance {
				report.Issues[i].Repaired = true
				l.log.Warn().Str("account", report.Issues[i].AccountID).Msg("stale balance recomputed")
			}
		}
	}
	return report, errors.Join(errs...)
}
