package encounter

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an encounter does not exist.
var ErrNotFound = errors.New("encounter not found")

// Payer types.
const (
	PayerCash      = "cash"
	PayerInsurance = "insurance"
)

// Encounter statuses.
const (
	StatusOpen      = "open"
	StatusClosed    = "closed"
	StatusCancelled = "cancelled"
)

// Encounter maps to the encounters table: one patient visit carrying the
// payer arrangement that pricing resolves against.
type Encounter struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	PatientID           uuid.UUID  `db:"patient_id" json:"patient_id"`
	PayerType           string     `db:"payer_type" json:"payer_type"`
	InsuranceProviderID *uuid.UUID `db:"insurance_provider_id" json:"insurance_provider_id,omitempty"`
	PolicyNumber        *string    `db:"policy_number" json:"policy_number,omitempty"`
	Status              string     `db:"status" json:"status"`
	StartedAt           time.Time  `db:"started_at" json:"started_at"`
	EndedAt             *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// PayerContext is the slice of an encounter that pricing needs.
type PayerContext struct {
	PatientID           uuid.UUID
	PayerType           string
	InsuranceProviderID *uuid.UUID
}
