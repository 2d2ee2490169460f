package finance

import (
	"errors"
	"testing"
)

func TestLedger_Integrity(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := t.Context()
	checking := mustOpen(t, l, "Checking", USD(1000))
	savings := mustOpen(t, l, "Savings", USD(0))
	tx, err := l.AddTransaction(ctx, Transaction{AccountID: checking.ID, TransferAccountID: savings.ID, Date: d("2026-02-01"), Amount: USD(-100)})
	if err != nil {
		t.Fatal(err)
	}

	report, err := l.CheckIntegrity(ctx)
	if err != nil || len(report.Issues) != 0 || report.Err() != nil {
		t.Fatalf("CheckIntegrity() of a clean ledger = %v, %v", report.Issues, err)
	}

	// corrupt: lose the mirror and the checking cached balance.
	if err := store.DeleteTransaction(ctx, tx.MirrorID); err != nil {
		t.Fatal(err)
	}
	if err := store.PutBalance(ctx, checking.ID, USD(5)); err != nil {
		t.Fatal(err)
	}

	report, err = l.CheckIntegrity(ctx)
	if err != nil {
		t.Fatalf("CheckIntegrity() error = %v", err)
	}
	kinds := make(map[IssueKind]int)
	for _, i := range report.Issues {
		kinds[i.Kind]++
	}
	if kinds[MissingMirror] != 1 || kinds[StaleBalance] != 2 {
		t.Errorf("issues = %v, want a missing mirror and two stale balances", report.Issues)
	}
	if !errors.Is(report.Err(), ErrIntegrity) {
		t.Errorf("Err() = %v, want ErrIntegrity", report.Err())
	}

	repaired, err := l.RepairIntegrity(ctx)
	if err != nil {
		t.Fatalf("RepairIntegrity() error = %v", err)
	}
	if repaired.Err() != nil {
		t.Errorf("unrepaired issues: %v", repaired.Err())
	}
	mirror, err := store.Transaction(ctx, tx.MirrorID)
	if err != nil || mirror.AccountID != savings.ID || !mirror.Amount.Equal(USD(100)) {
		t.Errorf("recreated mirror = %+v, %v", mirror, err)
	}
	assertBalances(t, store)

	if report, _ := l.CheckIntegrity(ctx); len(report.Issues) != 0 {
		t.Errorf("issues after repair: %v", report.Issues)
	}
}

func TestCheckIntegrity_LegacyPairs(t *testing.T) {
	accounts := []Account{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	txs := []Transaction{
		{ID: "1", AccountID: "a", TransferAccountID: "b", Date: d("2026-01-01"), Amount: USD(-10)},
		{ID: "2", AccountID: "b", TransferAccountID: "a", Date: d("2026-01-01"), Amount: USD(10)},
		{ID: "3", AccountID: "a", TransferAccountID: "b", Date: d("2026-01-02"), Amount: USD(-7)},
		{ID: "4", AccountID: "ghost", Date: d("2026-01-02"), Amount: USD(1)},
	}
	accounts[0].Balance = USD(-17)
	accounts[1].Balance = USD(10)

	issues, missing := checkIntegrity(accounts, txs)
	if len(issues) != 2 {
		t.Fatalf("issues = %v, want an unknown account and a missing mirror", issues)
	}
	if issues[0].Kind != UnknownAccount && issues[1].Kind != UnknownAccount {
		t.Errorf("no unknown account issue in %v", issues)
	}
	if len(missing) != 1 {
		t.Fatalf("missing = %v, want transaction 3", missing)
	}
	for _, tx := range missing {
		if tx.ID != "3" {
			t.Errorf("missing mirror for %s, want 3", tx.ID)
		}
	}
}
