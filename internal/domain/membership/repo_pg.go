package membership

import (
	"context"
	"errors"
	"time"

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

// =========== Scheme Repository ===========

type schemeRepoPG struct{ pool *pgxpool.Pool }

func NewSchemeRepoPG(pool *pgxpool.Pool) SchemeRepository { return &schemeRepoPG{pool: pool} }

func (r *schemeRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const schemeCols = `id, name, discount_percent, active, created_at, updated_at`

func (r *schemeRepoPG) scanScheme(row pgx.Row) (*Scheme, error) {
	var s Scheme
	err := row.Scan(&s.ID, &s.Name, &s.DiscountPercent, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *schemeRepoPG) Create(ctx context.Context, s *Scheme) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO membership_schemes (id, name, discount_percent, active)
		VALUES ($1,$2,$3,$4)`,
		s.ID, s.Name, s.DiscountPercent, s.Active)
	return err
}

func (r *schemeRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Scheme, error) {
	return r.scanScheme(r.conn(ctx).QueryRow(ctx,
		`SELECT `+schemeCols+` FROM membership_schemes WHERE id = $1`, id))
}

func (r *schemeRepoPG) Update(ctx context.Context, s *Scheme) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE membership_schemes SET name=$2, discount_percent=$3, active=$4, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.DiscountPercent, s.Active)
	return err
}

func (r *schemeRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM membership_schemes WHERE id = $1`, id)
	return err
}

func (r *schemeRepoPG) List(ctx context.Context, limit, offset int) ([]*Scheme, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM membership_schemes`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+schemeCols+` FROM membership_schemes ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Scheme
	for rows.Next() {
		var s Scheme
		if err := rows.Scan(&s.ID, &s.Name, &s.DiscountPercent, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &s)
	}
	return items, total, rows.Err()
}

// =========== PatientMembership Repository ===========

type patientMembershipRepoPG struct{ pool *pgxpool.Pool }

func NewPatientMembershipRepoPG(pool *pgxpool.Pool) PatientMembershipRepository {
	return &patientMembershipRepoPG{pool: pool}
}

func (r *patientMembershipRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const pmCols = `id, patient_id, scheme_id, status, valid_from, valid_to, created_at`

func (r *patientMembershipRepoPG) scanMembership(row pgx.Row) (*PatientMembership, error) {
	var m PatientMembership
	err := row.Scan(&m.ID, &m.PatientID, &m.SchemeID, &m.Status, &m.ValidFrom, &m.ValidTo, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &m, err
}

func (r *patientMembershipRepoPG) Create(ctx context.Context, m *PatientMembership) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_memberships (id, patient_id, scheme_id, status, valid_from, valid_to)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.PatientID, m.SchemeID, m.Status, m.ValidFrom, m.ValidTo)
	return err
}

func (r *patientMembershipRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PatientMembership, error) {
	return r.scanMembership(r.conn(ctx).QueryRow(ctx,
		`SELECT `+pmCols+` FROM patient_memberships WHERE id = $1`, id))
}

func (r *patientMembershipRepoPG) Update(ctx context.Context, m *PatientMembership) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient_memberships SET status=$2, valid_from=$3, valid_to=$4
		WHERE id = $1`,
		m.ID, m.Status, m.ValidFrom, m.ValidTo)
	return err
}

func (r *patientMembershipRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_memberships WHERE id = $1`, id)
	return err
}

func (r *patientMembershipRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PatientMembership, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient_memberships WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+pmCols+` FROM patient_memberships WHERE patient_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*PatientMembership
	for rows.Next() {
		var m PatientMembership
		if err := rows.Scan(&m.ID, &m.PatientID, &m.SchemeID, &m.Status, &m.ValidFrom, &m.ValidTo, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &m)
	}
	return items, total, rows.Err()
}

func (r *patientMembershipRepoPG) ActiveForPatient(ctx context.Context, patientID uuid.UUID, at time.Time) (*ActiveMembership, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT m.id, m.patient_id, m.scheme_id, m.status, m.valid_from, m.valid_to, m.created_at,
			s.id, s.name, s.discount_percent, s.active, s.created_at, s.updated_at
		FROM patient_memberships m
		JOIN membership_schemes s ON s.id = m.scheme_id
		WHERE m.patient_id = $1
		  AND m.status = 'active'
		  AND m.valid_from <= $2
		  AND (m.valid_to IS NULL OR m.valid_to >= $2)
		  AND s.active
		ORDER BY m.created_at DESC
		LIMIT 1`, patientID, at)

	var m PatientMembership
	var s Scheme
	err := row.Scan(&m.ID, &m.PatientID, &m.SchemeID, &m.Status, &m.ValidFrom, &m.ValidTo, &m.CreatedAt,
		&s.ID, &s.Name, &s.DiscountPercent, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ActiveMembership{Membership: &m, Scheme: &s}, nil
}
