package membership

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a scheme or patient membership does not exist.
var ErrNotFound = errors.New("membership record not found")

// Membership statuses.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusExpired   = "expired"
)

// Scheme maps to the membership_schemes table. DiscountPercent is applied to
// the running price during resolution.
type Scheme struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	Active          bool            `db:"active" json:"active"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// PatientMembership maps to the patient_memberships table: one patient's
// enrollment in a scheme.
type PatientMembership struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	SchemeID  uuid.UUID  `db:"scheme_id" json:"scheme_id"`
	Status    string     `db:"status" json:"status"`
	ValidFrom time.Time  `db:"valid_from" json:"valid_from"`
	ValidTo   *time.Time `db:"valid_to" json:"valid_to,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// ValidAt reports whether the membership's validity window covers t. An
// absent valid_to means open-ended.
func (m *PatientMembership) ValidAt(t time.Time) bool {
	if t.Before(m.ValidFrom) {
		return false
	}
	if m.ValidTo != nil && t.After(*m.ValidTo) {
		return false
	}
	return true
}

// ActiveMembership pairs a patient membership with its scheme, resolved for
// discount application.
type ActiveMembership struct {
	Membership *PatientMembership
	Scheme     *Scheme
}
