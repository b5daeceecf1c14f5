package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hims/hims/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type ruleRepoPG struct{ pool *pgxpool.Pool }

func NewRuleRepoPG(pool *pgxpool.Pool) RuleRepository { return &ruleRepoPG{pool: pool} }

func (r *ruleRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const ruleCols = `id, name, rule_type, priority, discount_type, discount_value,
	min_amount, max_discount, can_stack, stacks_with, applies_to, active,
	valid_from, valid_to, created_at, updated_at`

func scanRule(row pgx.Row) (*PricingRule, error) {
	var p PricingRule
	err := row.Scan(&p.ID, &p.Name, &p.RuleType, &p.Priority, &p.DiscountType, &p.DiscountValue,
		&p.MinAmount, &p.MaxDiscount, &p.CanStack, &p.StacksWith, &p.AppliesTo, &p.Active,
		&p.ValidFrom, &p.ValidTo, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *ruleRepoPG) Create(ctx context.Context, p *PricingRule) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pricing_rules (id, name, rule_type, priority, discount_type, discount_value,
			min_amount, max_discount, can_stack, stacks_with, applies_to, active, valid_from, valid_to)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.Name, p.RuleType, p.Priority, p.DiscountType, p.DiscountValue,
		p.MinAmount, p.MaxDiscount, p.CanStack, p.StacksWith, p.AppliesTo, p.Active,
		p.ValidFrom, p.ValidTo)
	return err
}

func (r *ruleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PricingRule, error) {
	return scanRule(r.conn(ctx).QueryRow(ctx,
		`SELECT `+ruleCols+` FROM pricing_rules WHERE id = $1`, id))
}

func (r *ruleRepoPG) Update(ctx context.Context, p *PricingRule) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE pricing_rules SET name=$2, rule_type=$3, priority=$4, discount_type=$5,
			discount_value=$6, min_amount=$7, max_discount=$8, can_stack=$9, stacks_with=$10,
			applies_to=$11, active=$12, valid_from=$13, valid_to=$14, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.RuleType, p.Priority, p.DiscountType,
		p.DiscountValue, p.MinAmount, p.MaxDiscount, p.CanStack, p.StacksWith,
		p.AppliesTo, p.Active, p.ValidFrom, p.ValidTo)
	return err
}

func (r *ruleRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM pricing_rules WHERE id = $1`, id)
	return err
}

func (r *ruleRepoPG) List(ctx context.Context, limit, offset int) ([]*PricingRule, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pricing_rules`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+ruleCols+` FROM pricing_rules ORDER BY priority, created_at LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectRules(rows, total)
}

func (r *ruleRepoPG) ListActiveForScope(ctx context.Context, scope AppliesTo) ([]*PricingRule, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+ruleCols+` FROM pricing_rules
		 WHERE active AND applies_to IN ($1, 'all')
		 ORDER BY priority, created_at`, scope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, _, err := collectRules(rows, 0)
	return items, err
}

func (r *ruleRepoPG) ActiveByType(ctx context.Context, t RuleType) (*PricingRule, error) {
	p, err := scanRule(r.conn(ctx).QueryRow(ctx,
		`SELECT `+ruleCols+` FROM pricing_rules
		 WHERE active AND rule_type = $1
		 ORDER BY priority, created_at LIMIT 1`, t))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func collectRules(rows pgx.Rows, total int) ([]*PricingRule, int, error) {
	var items []*PricingRule
	for rows.Next() {
		var p PricingRule
		if err := rows.Scan(&p.ID, &p.Name, &p.RuleType, &p.Priority, &p.DiscountType, &p.DiscountValue,
			&p.MinAmount, &p.MaxDiscount, &p.CanStack, &p.StacksWith, &p.AppliesTo, &p.Active,
			&p.ValidFrom, &p.ValidTo, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &p)
	}
	return items, total, rows.Err()
}
