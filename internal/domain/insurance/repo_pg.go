package insurance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hims/hims/internal/domain/catalog"
	"github.com/hims/hims/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Provider Repository ===========

type providerRepoPG struct{ pool *pgxpool.Pool }

func NewProviderRepoPG(pool *pgxpool.Pool) ProviderRepository { return &providerRepoPG{pool: pool} }

func (r *providerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const provCols = `id, code, name, active, created_at, updated_at`

func (r *providerRepoPG) scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *providerRepoPG) Create(ctx context.Context, p *Provider) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO insurance_providers (id, code, name, active)
		VALUES ($1,$2,$3,$4)`,
		p.ID, p.Code, p.Name, p.Active)
	return err
}

func (r *providerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return r.scanProvider(r.conn(ctx).QueryRow(ctx,
		`SELECT `+provCols+` FROM insurance_providers WHERE id = $1`, id))
}

func (r *providerRepoPG) Update(ctx context.Context, p *Provider) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE insurance_providers SET code=$2, name=$3, active=$4, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Code, p.Name, p.Active)
	return err
}

func (r *providerRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM insurance_providers WHERE id = $1`, id)
	return err
}

func (r *providerRepoPG) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM insurance_providers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+provCols+` FROM insurance_providers ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Provider
	for rows.Next() {
		var p Provider
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &p)
	}
	return items, total, rows.Err()
}

// =========== PriceList Repository ===========

type priceListRepoPG struct{ pool *pgxpool.Pool }

func NewPriceListRepoPG(pool *pgxpool.Pool) PriceListRepository { return &priceListRepoPG{pool: pool} }

func (r *priceListRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const plCols = `id, provider_id, service_id, lab_test_id, agreed_price, discount_percent,
	effective_from, effective_to, active, created_at, updated_at`

func (r *priceListRepoPG) scanEntry(row pgx.Row) (*PriceListEntry, error) {
	var e PriceListEntry
	err := row.Scan(&e.ID, &e.ProviderID, &e.ServiceID, &e.LabTestID, &e.AgreedPrice, &e.DiscountPercent,
		&e.EffectiveFrom, &e.EffectiveTo, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &e, err
}

func (r *priceListRepoPG) Create(ctx context.Context, e *PriceListEntry) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO insurance_price_lists (id, provider_id, service_id, lab_test_id,
			agreed_price, discount_percent, effective_from, effective_to, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.ProviderID, e.ServiceID, e.LabTestID,
		e.AgreedPrice, e.DiscountPercent, e.EffectiveFrom, e.EffectiveTo, e.Active)
	return err
}

func (r *priceListRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PriceListEntry, error) {
	return r.scanEntry(r.conn(ctx).QueryRow(ctx,
		`SELECT `+plCols+` FROM insurance_price_lists WHERE id = $1`, id))
}

func (r *priceListRepoPG) Update(ctx context.Context, e *PriceListEntry) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE insurance_price_lists SET agreed_price=$2, discount_percent=$3,
			effective_from=$4, effective_to=$5, active=$6, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.AgreedPrice, e.DiscountPercent, e.EffectiveFrom, e.EffectiveTo, e.Active)
	return err
}

func (r *priceListRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM insurance_price_lists WHERE id = $1`, id)
	return err
}

func (r *priceListRepoPG) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*PriceListEntry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM insurance_price_lists WHERE provider_id = $1`, providerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+plCols+` FROM insurance_price_lists WHERE provider_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, providerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*PriceListEntry
	for rows.Next() {
		var e PriceListEntry
		if err := rows.Scan(&e.ID, &e.ProviderID, &e.ServiceID, &e.LabTestID, &e.AgreedPrice, &e.DiscountPercent,
			&e.EffectiveFrom, &e.EffectiveTo, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &e)
	}
	return items, total, rows.Err()
}

func (r *priceListRepoPG) ActiveForItemAndProvider(ctx context.Context, item catalog.ItemRef, providerID uuid.UUID) (*PriceListEntry, error) {
	var row pgx.Row
	if item.Kind() == catalog.ItemKindService {
		row = r.conn(ctx).QueryRow(ctx,
			`SELECT `+plCols+` FROM insurance_price_lists
			 WHERE provider_id = $1 AND service_id = $2 AND active`, providerID, *item.ServiceID)
	} else {
		row = r.conn(ctx).QueryRow(ctx,
			`SELECT `+plCols+` FROM insurance_price_lists
			 WHERE provider_id = $1 AND lab_test_id = $2 AND active`, providerID, *item.LabTestID)
	}

	e, err := r.scanEntry(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return e, err
}

func (r *priceListRepoPG) ActiveForItem(ctx context.Context, item catalog.ItemRef, at time.Time) ([]*ItemPrice, error) {
	query := `SELECT p.id, p.provider_id, p.service_id, p.lab_test_id, p.agreed_price, p.discount_percent,
			p.effective_from, p.effective_to, p.active, p.created_at, p.updated_at, ip.name
		FROM insurance_price_lists p
		JOIN insurance_providers ip ON ip.id = p.provider_id
		WHERE p.active AND ip.active
		  AND p.effective_from <= $2
		  AND (p.effective_to IS NULL OR p.effective_to >= $2)
		  AND `
	var arg uuid.UUID
	if item.Kind() == catalog.ItemKindService {
		query += `p.service_id = $1`
		arg = *item.ServiceID
	} else {
		query += `p.lab_test_id = $1`
		arg = *item.LabTestID
	}
	query += ` ORDER BY p.agreed_price ASC`

	rows, err := r.conn(ctx).Query(ctx, query, arg, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ItemPrice
	for rows.Next() {
		var e PriceListEntry
		var name string
		if err := rows.Scan(&e.ID, &e.ProviderID, &e.ServiceID, &e.LabTestID, &e.AgreedPrice, &e.DiscountPercent,
			&e.EffectiveFrom, &e.EffectiveTo, &e.Active, &e.CreatedAt, &e.UpdatedAt, &name); err != nil {
			return nil, err
		}
		items = append(items, &ItemPrice{Entry: &e, ProviderName: name})
	}
	return items, rows.Err()
}
