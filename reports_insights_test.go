package finance

import (
	"slices"
	"testing"

	"github.com/etnz/finance/date"
)

// insightsFixture spends in february and in the first half of march 2026.
func insightsFixture() ([]CategoryGroup, []Category, []Allocation, []Transaction) {
	groups := []CategoryGroup{{ID: "bills", Name: "Bills"}, {ID: "food", Name: "Food"}, {ID: "car", Name: "Car"}}
	cats := []Category{
		{ID: "rent", GroupID: "bills", Name: "Rent"},
		{ID: "groceries", GroupID: "food", Name: "Groceries"},
		{ID: "dining", GroupID: "food", Name: "Dining"},
		{ID: "fuel", GroupID: "car", Name: "Fuel"},
	}
	allocs := []Allocation{
		{CategoryID: "groceries", Month: mon("2026-03"), Assigned: USD(200)},
		{CategoryID: "dining", Month: mon("2026-03"), Assigned: USD(100)},
		{CategoryID: "groceries", Month: mon("2026-02"), Assigned: USD(50)},
	}
	tx := func(day, category, payee string, amount float64) Transaction {
		return Transaction{ID: day + category, AccountID: "checking", CategoryID: category, Date: d(day), Amount: USD(amount), Payee: payee}
	}
	txs := []Transaction{
		tx("2026-02-01", "", "Employer", 2000),
		tx("2026-02-02", "groceries", "Grocer", -100),
		tx("2026-02-03", "dining", "Bistro", -100),
		tx("2026-02-04", "rent", "Landlord", -900),
		tx("2026-02-05", "fuel", "Station", -50),
		tx("2026-03-01", "", "Employer", 1500),
		tx("2026-03-02", "groceries", "Grocer", -160),
		tx("2026-03-03", "dining", "bistro", -40),
		tx("2026-03-04", "rent", "Landlord", -900),
		tx("2026-03-05", "fuel", "Station", -70),
		{ID: "move", AccountID: "checking", TransferAccountID: "savings", CategoryID: "groceries", Date: d("2026-03-06"), Amount: USD(-1000), Payee: "Transfer"},
	}
	return groups, cats, allocs, txs
}

func TestInsights(t *testing.T) {
	_, cats, allocs, txs := insightsFixture()
	got := Insights(cats, allocs, txs, d("2026-03-15"))

	want := []struct {
		kind     InsightKind
		severity Severity
		category string
		amount   float64
	}{
		{SpendingIncrease, Warning, "Groceries", 60},
		{BudgetOverspend, Warning, "Groceries", 130.67},
		{SpendingIncrease, Info, "Fuel", 20},
		{BiggestExpense, Info, "", 900},
		{SpendingDecrease, Success, "Dining", 60},
	}
	if len(got) != len(want) {
		t.Fatalf("Insights() = %+v, want %d insights", got, len(want))
	}
	for i, w := range want {
		g := got[i]
		if g.Kind != w.kind || g.Severity != w.severity || g.Category != w.category || !g.Amount.Equal(USD(w.amount)) {
			t.Errorf("insight %d = %s %s %q %s, want %v", i, g.Kind, g.Severity, g.Category, g.Amount, w)
		}
	}
	if got[0].Title != "Groceries spending up 60%" {
		t.Errorf("title = %q", got[0].Title)
	}
	if got[3].Title != "Biggest expense: Landlord" {
		t.Errorf("title = %q", got[3].Title)
	}
}

func TestInsights_NoHistory(t *testing.T) {
	txs := []Transaction{{ID: "a", AccountID: "checking", CategoryID: "fun", Date: d("2026-03-02"), Amount: USD(-10)}}
	got := Insights(nil, nil, txs, d("2026-03-15"))
	if len(got) != 1 || got[0].Kind != BiggestExpense || got[0].Title != "Biggest expense: Unknown" {
		t.Errorf("Insights() = %+v, want only the biggest expense", got)
	}
	if got := Insights(nil, nil, nil, d("2026-03-15")); len(got) != 0 {
		t.Errorf("Insights(empty) = %+v", got)
	}
}

func TestSpendingTrend(t *testing.T) {
	_, cats, _, txs := insightsFixture()
	got := SpendingTrend(cats, txs, []date.Month{mon("2026-02"), mon("2026-03")})
	want := []struct {
		name     string
		feb, mar float64
	}{
		{"Rent", 900, 900},
		{"Groceries", 100, 160},
		{"Dining", 100, 40},
		{"Fuel", 50, 70},
	}
	if len(got) != len(want) {
		t.Fatalf("SpendingTrend() = %+v", got)
	}
	for i, w := range want {
		g := got[i]
		if g.Category != w.name || !g.Totals[0].Equal(USD(w.feb)) || !g.Totals[1].Equal(USD(w.mar)) {
			t.Errorf("row %d = %s %v, want %v", i, g.Category, g.Totals, w)
		}
	}
	if !got[1].Total().Equal(USD(260)) {
		t.Errorf("groceries total = %s, want 260.00 without the transfer", got[1].Total())
	}
}

func TestIncomeFlow(t *testing.T) {
	groups, cats, _, txs := insightsFixture()
	got := IncomeFlow(mon("2026-03"), groups, cats, txs)

	if want := []string{"Income", "Bills", "Food", "Car", "Savings", "Rent", "Groceries", "Fuel", "Dining"}; !slices.Equal(got.Nodes, want) {
		t.Errorf("nodes = %v, want %v", got.Nodes, want)
	}
	want := []struct {
		from, to string
		value    float64
	}{
		{"Income", "Bills", 900},
		{"Income", "Food", 200},
		{"Income", "Car", 70},
		{"Income", "Savings", 330},
		{"Bills", "Rent", 900},
		{"Food", "Groceries", 160},
		{"Car", "Fuel", 70},
		{"Food", "Dining", 40},
	}
	if len(got.Links) != len(want) {
		t.Fatalf("links = %+v", got.Links)
	}
	for i, w := range want {
		l := got.Links[i]
		if l.Source != w.from || l.Target != w.to || !l.Value.Equal(USD(w.value)) {
			t.Errorf("link %d = %s -> %s %s, want %v", i, l.Source, l.Target, l.Value, w)
		}
	}
}

func TestIncomeFlow_Overspent(t *testing.T) {
	groups, cats, _, txs := insightsFixture()
	txs = append(txs, Transaction{ID: "car", AccountID: "checking", CategoryID: "fuel", Date: d("2026-03-10"), Amount: USD(-400)})
	got := IncomeFlow(mon("2026-03"), groups, cats, txs)
	if slices.Contains(got.Nodes, "Savings") {
		t.Errorf("nodes = %v, want no savings when spending exceeds income", got.Nodes)
	}
}

func TestPayees(t *testing.T) {
	_, _, _, txs := insightsFixture()
	tests := []struct {
		q     string
		limit int
		want  []string
	}{
		{"", 0, []string{"Bistro", "Employer", "Grocer", "Landlord", "Station", "bistro"}},
		{"GRO", 0, []string{"Grocer"}},
		{"", 2, []string{"Bistro", "Employer"}},
		{"transfer", 0, nil},
	}
	for _, tt := range tests {
		if got := Payees(txs, tt.q, tt.limit); !slices.Equal(got, tt.want) {
			t.Errorf("Payees(%q, %d) = %v, want %v", tt.q, tt.limit, got, tt.want)
		}
	}
}
