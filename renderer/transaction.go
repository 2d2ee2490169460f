package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/finance"
	md "github.com/nao1215/markdown"
)

// Transaction renders a transaction to a single line.
func Transaction(tx finance.Transaction, names map[string]string, o Options) string {
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}
	switch {
	case tx.IsTransfer() && tx.Amount.IsNegative():
		return fmt.Sprintf("%s Transferred %s from %s to %s", tx.Date, o.money(tx.Amount.Abs()), name(tx.AccountID), name(tx.TransferAccountID))
	case tx.IsTransfer():
		return fmt.Sprintf("%s Transferred %s from %s to %s", tx.Date, o.money(tx.Amount), name(tx.TransferAccountID), name(tx.AccountID))
	case tx.Amount.IsNegative():
		return fmt.Sprintf("%s Paid %s to %q from %s", tx.Date, o.money(tx.Amount.Abs()), tx.Payee, name(tx.AccountID))
	default:
		return fmt.Sprintf("%s Received %s from %q on %s", tx.Date, o.money(tx.Amount), tx.Payee, name(tx.AccountID))
	}
}

// AccountsMarkdown renders the list of accounts with their cached balance.
func AccountsMarkdown(accounts []finance.Account, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1("Accounts")

	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Account", "Type", "Budget", "Balance"},
	}
	var onBudget, total finance.Money
	for _, a := range accounts {
		if a.Closed {
			continue
		}
		budget := "off"
		if a.OnBudget {
			budget = "on"
			onBudget = onBudget.Add(a.Balance)
		}
		total = total.Add(a.Balance)
		t.Rows = append(t.Rows, []string{a.Name, a.Type.String(), budget, o.money(a.Balance)})
	}
	t.Rows = append(t.Rows,
		[]string{md.Bold("On budget"), "", "", md.Bold(o.money(onBudget))},
		[]string{md.Bold("Total"), "", "", md.Bold(o.money(total))},
	)
	table(doc, t)
	return doc.String()
}

// TransactionsMarkdown renders a register of transactions.
// names maps account and category ids to display names.
func TransactionsMarkdown(title string, txs []finance.Transaction, names map[string]string, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1(title)
	if len(txs) == 0 {
		doc.PlainText("No transactions.")
		return doc.String()
	}
	lookup := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignCenter},
		Header:    []string{"Date", "Account", "Payee", "Category", "Amount", "Status"},
	}
	var total finance.Money
	for _, tx := range txs {
		category := lookup(tx.CategoryID)
		if tx.IsTransfer() {
			category = "→ " + lookup(tx.TransferAccountID)
		}
		status := ""
		switch {
		case tx.Reconciled:
			status = "R"
		case tx.Cleared:
			status = "C"
		}
		total = total.Add(tx.Amount)
		t.Rows = append(t.Rows, []string{tx.Date.String(), lookup(tx.AccountID), tx.Payee, category, o.signed(tx.Amount), status})
	}
	t.Rows = append(t.Rows, []string{md.Bold("Total"), "", "", "", md.Bold(o.signed(total)), ""})
	table(doc, t)
	return doc.String()
}

// ReconciliationMarkdown renders the outcome of a reconciliation.
func ReconciliationMarkdown(account string, r finance.Reconciliation, o Options) string {
	var buf bytes.Buffer
	doc := newDoc(&buf)
	doc.H1(fmt.Sprintf("Reconciliation of %s", account))
	lines := []string{
		fmt.Sprintf("Reconciled transactions: %d", r.Reconciled),
		fmt.Sprintf("Balance: %s", o.money(r.Balance)),
	}
	if !r.Adjustment.IsZero() {
		lines = append(lines, fmt.Sprintf("Adjustment: %s", o.signed(r.Adjustment)))
	}
	doc.BulletList(lines...)
	return doc.String()
}
