package finance

// Balance returns the balance of an account: the sum of the amounts of every
// transaction posted to it. An account without transactions has a zero balance.
func Balance(accountID string, txs []Transaction) Money {
	var total Money
	for _, tx := range txs {
		if tx.AccountID == accountID {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// Balances returns the balance of every account referenced by txs.
func Balances(txs []Transaction) map[string]Money {
	balances := make(map[string]Money)
	for _, tx := range txs {
		balances[tx.AccountID] = balances[tx.AccountID].Add(tx.Amount)
	}
	return balances
}
