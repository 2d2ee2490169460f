package pgstore

import (
	"context"

	"github.com/etnz/finance"
	"github.com/jackc/pgx/v5"
)

func scanGroup(row pgx.Row) (finance.CategoryGroup, error) {
	var g finance.CategoryGroup
	err := row.Scan(&g.ID, &g.Name, &g.Sort, &g.Hidden)
	return g, err
}

func (s *Store) CategoryGroups(ctx context.Context) ([]finance.CategoryGroup, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, sort, hidden FROM category_groups ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanGroup)
}

func (s *Store) PutCategoryGroup(ctx context.Context, g finance.CategoryGroup) error {
	if err := g.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO category_groups (id, name, sort, hidden) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, sort = EXCLUDED.sort, hidden = EXCLUDED.hidden`,
		g.ID, g.Name, g.Sort, g.Hidden)
	return err
}

func scanCategory(row pgx.Row) (finance.Category, error) {
	var (
		c                    finance.Category
		kind, amount, target string
		dec                  decoder
	)
	if err := row.Scan(&c.ID, &c.GroupID, &c.Name, &c.Sort, &c.Hidden, &kind, &amount, &target); err != nil {
		return c, err
	}
	c.Goal.Kind = finance.GoalKind(kind)
	c.Goal.Amount = dec.money(amount)
	c.Goal.Date = dec.date(target)
	return c, dec.err
}

func (s *Store) Categories(ctx context.Context) ([]finance.Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, group_id, name, sort, hidden, goal_kind, goal_amount::text, goal_date
		FROM categories ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCategory)
}

func (s *Store) PutCategory(ctx context.Context, c finance.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO categories (id, group_id, name, sort, hidden, goal_kind, goal_amount, goal_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			group_id = EXCLUDED.group_id, name = EXCLUDED.name, sort = EXCLUDED.sort,
			hidden = EXCLUDED.hidden, goal_kind = EXCLUDED.goal_kind,
			goal_amount = EXCLUDED.goal_amount, goal_date = EXCLUDED.goal_date`,
		c.ID, c.GroupID, c.Name, c.Sort, c.Hidden,
		string(c.Goal.Kind), c.Goal.Amount.Decimal().String(), c.Goal.Date.String())
	return err
}

func scanAllocation(row pgx.Row) (finance.Allocation, error) {
	var (
		a               finance.Allocation
		month, assigned string
		dec             decoder
	)
	if err := row.Scan(&a.CategoryID, &month, &assigned); err != nil {
		return a, err
	}
	a.Month = dec.month(month)
	a.Assigned = dec.money(assigned)
	return a, dec.err
}

// Allocations returns the matching allocations in insertion order.
// Months are "YYYY-MM" strings so Through compares them as text.
func (s *Store) Allocations(ctx context.Context, f finance.AllocationFilter) ([]finance.Allocation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT category_id, month, assigned::text FROM allocations
		WHERE ($1 = '' OR category_id = $1)
		  AND ($2 = '' OR month = $2)
		  AND ($3 = '' OR month <= $3)
		ORDER BY seq`,
		f.CategoryID, f.Month.String(), f.Through.String())
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAllocation)
}

func (s *Store) PutAllocation(ctx context.Context, a finance.Allocation) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO allocations (category_id, month, assigned) VALUES ($1, $2, $3)
		ON CONFLICT (category_id, month) DO UPDATE SET assigned = EXCLUDED.assigned`,
		a.CategoryID, a.Month.String(), a.Assigned.Decimal().String())
	return err
}
