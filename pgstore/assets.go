package pgstore

import (
	"context"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/jackc/pgx/v5"
)

func scanDebt(row pgx.Row) (finance.Debt, error) {
	var (
		d                             finance.Debt
		balance, rate, minimum, extra string
		dec                           decoder
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Kind, &balance, &rate, &minimum, &extra, &d.DueDay); err != nil {
		return d, err
	}
	d.Balance = dec.money(balance)
	d.Rate = dec.decimal(rate)
	d.MinPayment = dec.money(minimum)
	d.ExtraPayment = dec.money(extra)
	return d, dec.err
}

func (s *Store) Debts(ctx context.Context) ([]finance.Debt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, kind, balance::text, rate::text, min_payment::text, extra_payment::text, due_day
		FROM debts ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDebt)
}

func (s *Store) PutDebt(ctx context.Context, d finance.Debt) error {
	if err := d.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO debts (id, name, kind, balance, rate, min_payment, extra_payment, due_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, kind = EXCLUDED.kind, balance = EXCLUDED.balance,
			rate = EXCLUDED.rate, min_payment = EXCLUDED.min_payment,
			extra_payment = EXCLUDED.extra_payment, due_day = EXCLUDED.due_day`,
		d.ID, d.Name, d.Kind, d.Balance.Decimal().String(), d.Rate.String(),
		d.MinPayment.Decimal().String(), d.ExtraPayment.Decimal().String(), d.DueDay)
	return err
}

func (s *Store) DeleteDebt(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM debts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(tag, "debt", id)
}

const investmentColumns = `id, ticker, name, asset_class, quantity::text, average_price::text,
	current_price::text, sip_enabled, sip_amount::text, sip_frequency, sip_day, quote_url, quote_path`

func scanInvestment(row pgx.Row) (finance.Investment, error) {
	var (
		inv                                   finance.Investment
		qty, avg, price, sipAmount, frequency string
		dec                                   decoder
	)
	err := row.Scan(&inv.ID, &inv.Ticker, &inv.Name, &inv.AssetClass, &qty, &avg, &price,
		&inv.SIP.Enabled, &sipAmount, &frequency, &inv.SIP.Day, &inv.Quote.URL, &inv.Quote.Path)
	if err != nil {
		return inv, err
	}
	inv.Quantity = dec.quantity(qty)
	inv.AveragePrice = dec.money(avg)
	inv.CurrentPrice = dec.money(price)
	inv.SIP.Amount = dec.money(sipAmount)
	inv.SIP.Frequency = date.Period(frequency)
	return inv, dec.err
}

func (s *Store) Investments(ctx context.Context) ([]finance.Investment, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+investmentColumns+` FROM investments ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanInvestment)
}

func (s *Store) Investment(ctx context.Context, id string) (finance.Investment, error) {
	inv, err := scanInvestment(s.pool.QueryRow(ctx, `SELECT `+investmentColumns+` FROM investments WHERE id = $1`, id))
	return one(inv, err, "investment", id)
}

func (s *Store) PutInvestment(ctx context.Context, inv finance.Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO investments (id, ticker, name, asset_class, quantity, average_price, current_price,
			sip_enabled, sip_amount, sip_frequency, sip_day, quote_url, quote_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			ticker = EXCLUDED.ticker, name = EXCLUDED.name, asset_class = EXCLUDED.asset_class,
			quantity = EXCLUDED.quantity, average_price = EXCLUDED.average_price,
			current_price = EXCLUDED.current_price, sip_enabled = EXCLUDED.sip_enabled,
			sip_amount = EXCLUDED.sip_amount, sip_frequency = EXCLUDED.sip_frequency,
			sip_day = EXCLUDED.sip_day, quote_url = EXCLUDED.quote_url, quote_path = EXCLUDED.quote_path`,
		inv.ID, inv.Ticker, inv.Name, inv.AssetClass, inv.Quantity.String(),
		inv.AveragePrice.Decimal().String(), inv.CurrentPrice.Decimal().String(),
		inv.SIP.Enabled, inv.SIP.Amount.Decimal().String(), string(inv.SIP.Frequency), inv.SIP.Day,
		inv.Quote.URL, inv.Quote.Path)
	return err
}

func scanTrade(row pgx.Row) (finance.InvestmentTransaction, error) {
	var (
		t                   finance.InvestmentTransaction
		typ, qty, price, on string
		dec                 decoder
	)
	if err := row.Scan(&t.ID, &t.InvestmentID, &typ, &qty, &price, &on, &t.Notes); err != nil {
		return t, err
	}
	t.Type = finance.TradeType(typ)
	t.Quantity = dec.quantity(qty)
	t.Price = dec.money(price)
	t.Date = dec.date(on)
	return t, dec.err
}

// InvestmentTransactions returns the trades of investmentID, or every trade
// when it is empty, by date then insertion order.
func (s *Store) InvestmentTransactions(ctx context.Context, investmentID string) ([]finance.InvestmentTransaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, investment_id, type, quantity::text, price::text, date, notes
		FROM investment_transactions
		WHERE ($1 = '' OR investment_id = $1)
		ORDER BY date, seq`, investmentID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTrade)
}

func (s *Store) PutInvestmentTransaction(ctx context.Context, t finance.InvestmentTransaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO investment_transactions (id, investment_id, type, quantity, price, date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			investment_id = EXCLUDED.investment_id, type = EXCLUDED.type,
			quantity = EXCLUDED.quantity, price = EXCLUDED.price,
			date = EXCLUDED.date, notes = EXCLUDED.notes`,
		t.ID, t.InvestmentID, string(t.Type), t.Quantity.String(), t.Price.Decimal().String(),
		t.Date.String(), t.Notes)
	return err
}

func (s *Store) DeleteInvestmentTransaction(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM investment_transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(tag, "investment transaction", id)
}

const goalColumns = `id, name, target::text, saved::text, target_date, category_id, status`

func scanGoal(row pgx.Row) (finance.SavingsGoal, error) {
	var (
		g                         finance.SavingsGoal
		target, saved, on, status string
		dec                       decoder
	)
	if err := row.Scan(&g.ID, &g.Name, &target, &saved, &on, &g.CategoryID, &status); err != nil {
		return g, err
	}
	g.Target = dec.money(target)
	g.Saved = dec.money(saved)
	g.TargetDate = dec.date(on)
	g.Status = finance.GoalStatus(status)
	return g, dec.err
}

func (s *Store) Goals(ctx context.Context) ([]finance.SavingsGoal, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanGoal)
}

func (s *Store) Goal(ctx context.Context, id string) (finance.SavingsGoal, error) {
	g, err := scanGoal(s.pool.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id))
	return one(g, err, "goal", id)
}

func (s *Store) PutGoal(ctx context.Context, g finance.SavingsGoal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO goals (id, name, target, saved, target_date, category_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, target = EXCLUDED.target, saved = EXCLUDED.saved,
			target_date = EXCLUDED.target_date, category_id = EXCLUDED.category_id,
			status = EXCLUDED.status`,
		g.ID, g.Name, g.Target.Decimal().String(), g.Saved.Decimal().String(),
		g.TargetDate.String(), g.CategoryID, string(g.Status))
	return err
}
