package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidItemRef is returned when an item reference does not name exactly
// one of a service or a lab test.
var ErrInvalidItemRef = errors.New("item reference must name exactly one of service or lab test")

// ErrItemNotFound is returned when a referenced catalog item does not exist.
// A missing item is a caller error, not a zero-price item.
var ErrItemNotFound = errors.New("catalog item not found")

// ItemKind is the category of a billable item, used to match pricing-rule
// applicability scopes.
type ItemKind string

const (
	ItemKindService ItemKind = "service"
	ItemKindLabTest ItemKind = "lab"
)

// ItemRef references exactly one billable catalog item.
type ItemRef struct {
	ServiceID *uuid.UUID `json:"service_id,omitempty"`
	LabTestID *uuid.UUID `json:"lab_test_id,omitempty"`
}

// Validate checks that exactly one of the two identifiers is set.
func (r ItemRef) Validate() error {
	if (r.ServiceID == nil) == (r.LabTestID == nil) {
		return ErrInvalidItemRef
	}
	return nil
}

// Kind returns the item category. Callers must Validate first.
func (r ItemRef) Kind() ItemKind {
	if r.ServiceID != nil {
		return ItemKindService
	}
	return ItemKindLabTest
}

// ID returns the referenced identifier. Callers must Validate first.
func (r ItemRef) ID() uuid.UUID {
	if r.ServiceID != nil {
		return *r.ServiceID
	}
	return *r.LabTestID
}

// Service maps to the services table: a billable clinical service such as a
// consultation or procedure.
type Service struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Code      string          `db:"code" json:"code"`
	Name      string          `db:"name" json:"name"`
	Category  *string         `db:"category" json:"category,omitempty"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Active    bool            `db:"active" json:"active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// LabTest maps to the lab_tests table.
type LabTest struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	Code       string          `db:"code" json:"code"`
	Name       string          `db:"name" json:"name"`
	SampleType *string         `db:"sample_type" json:"sample_type,omitempty"`
	Price      decimal.Decimal `db:"price" json:"price"`
	Active     bool            `db:"active" json:"active"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}
