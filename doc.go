// Package finance is the engine of a personal envelope-budgeting tracker. It
// turns an append-only transaction ledger into derived financial truths.
//
// The core functionalities include:
//   - Balance Calculator: an account balance is the sum of its transactions,
//     re-derivable at any time (see Balance).
//   - Budget Availability: the money available in a category for a month,
//     carrying every prior month's leftover forward (see Availability and
//     NewMonthBudget), and the money left to budget (see NewBudgetSummary).
//   - Recurring Expansion: materializing each occurrence of a recurring rule
//     exactly once and advancing its cursor (see Expand).
//   - Debt Payoff: snowball and avalanche amortization (see Simulate).
//   - Investment Return: holdings derived from the full trade history and the
//     money-weighted return of their cash flows (see DeriveHolding and XIRR).
//
// The calculators are pure functions over in-memory rows. The Ledger reads
// rows from a Store, runs the calculators and persists their outputs under a
// Locker, so that writes to an account or expansion of a rule never overlap.
// MemoryStore with DecodeStore/EncodeStore keeps a ledger in a directory of
// human-readable JSONL files.
//
// Money is exact decimal arithmetic, rounded to cents only when persisted or
// reported. Transfers between accounts are never income nor expense.
package finance
