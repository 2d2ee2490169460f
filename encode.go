package finance

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// A ledger directory holds one JSONL file per entity kind, one entity per
// line, so that it stays human readable and git friendly. Missing files are
// empty collections.
const (
	accountsFile     = "accounts.jsonl"
	transactionsFile = "transactions.jsonl"
	groupsFile       = "groups.jsonl"
	categoriesFile   = "categories.jsonl"
	allocationsFile  = "allocations.jsonl"
	recurringFile    = "recurring.jsonl"
	debtsFile        = "debts.jsonl"
	investmentsFile  = "investments.jsonl"
	tradesFile       = "trades.jsonl"
	goalsFile        = "goals.jsonl"
)

// decodeFile parses every line of dir/name into a T and hands it to put.
func decodeFile[T any](dir, name string, put func(T) error) error {
	filename := filepath.Join(dir, name)
	f, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot open %q for reading: %w", filename, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return fmt.Errorf("parse error %s:%v: %w", filename, i, err)
		}
		if err := put(v); err != nil {
			return fmt.Errorf("invalid entry %s:%v: %w", filename, i, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %q: %w", filename, err)
	}
	return nil
}

// DecodeStore loads a ledger directory into a new MemoryStore.
// A missing directory is an empty ledger.
func DecodeStore(dir string) (*MemoryStore, error) {
	ctx := context.Background()
	s := NewMemoryStore()
	err := errors.Join(
		decodeFile(dir, accountsFile, func(v Account) error { return s.PutAccount(ctx, v) }),
		decodeFile(dir, transactionsFile, func(v Transaction) error { return s.PutTransaction(ctx, v) }),
		decodeFile(dir, groupsFile, func(v CategoryGroup) error { return s.PutCategoryGroup(ctx, v) }),
		decodeFile(dir, categoriesFile, func(v Category) error { return s.PutCategory(ctx, v) }),
		decodeFile(dir, allocationsFile, func(v Allocation) error { return s.PutAllocation(ctx, v) }),
		decodeFile(dir, recurringFile, func(v RecurringRule) error { return s.PutRecurringRule(ctx, v) }),
		decodeFile(dir, debtsFile, func(v Debt) error { return s.PutDebt(ctx, v) }),
		decodeFile(dir, investmentsFile, func(v Investment) error { return s.PutInvestment(ctx, v) }),
		decodeFile(dir, tradesFile, func(v InvestmentTransaction) error { return s.PutInvestmentTransaction(ctx, v) }),
		decodeFile(dir, goalsFile, func(v SavingsGoal) error { return s.PutGoal(ctx, v) }),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// encodeFile writes rows to dir/name, one JSON object per line.
// An empty collection removes the file.
func encodeFile[T any](dir, name string, rows []T) error {
	filename := filepath.Join(dir, name)
	if len(rows) == 0 {
		if err := os.Remove(filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot remove %q: %w", filename, err)
		}
		return nil
	}
	var buf bytes.Buffer
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("cannot encode %s entry: %w", name, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("cannot write %q: %w", filename, err)
	}
	return nil
}

// EncodeStore persists s into the ledger directory dir, creating it if needed.
func EncodeStore(dir string, s *MemoryStore) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create ledger directory %q: %w", dir, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return errors.Join(
		encodeFile(dir, accountsFile, s.accounts.filter(nil)),
		encodeFile(dir, transactionsFile, s.transactions.filter(nil)),
		encodeFile(dir, groupsFile, s.groups.filter(nil)),
		encodeFile(dir, categoriesFile, s.categories.filter(nil)),
		encodeFile(dir, allocationsFile, s.allocations.filter(nil)),
		encodeFile(dir, recurringFile, s.rules.filter(nil)),
		encodeFile(dir, debtsFile, s.debts.filter(nil)),
		encodeFile(dir, investmentsFile, s.investments.filter(nil)),
		encodeFile(dir, tradesFile, s.trades.filter(nil)),
		encodeFile(dir, goalsFile, s.goals.filter(nil)),
	)
}
