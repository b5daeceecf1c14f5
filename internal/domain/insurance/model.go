package insurance

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hims/hims/internal/domain/catalog"
)

// ErrNotFound is returned when a provider or price-list entry does not exist.
var ErrNotFound = errors.New("insurance record not found")

// Provider maps to the insurance_providers table.
type Provider struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PriceListEntry maps to the insurance_price_lists table: a negotiated price
// for one billable item under one insurer. The agreed price replaces the
// catalog price outright. DiscountPercent is informational only; the agreed
// price is authoritative. At most one active entry exists per (provider,
// item) pair, enforced by a partial unique index.
type PriceListEntry struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	ProviderID      uuid.UUID       `db:"provider_id" json:"provider_id"`
	ServiceID       *uuid.UUID      `db:"service_id" json:"service_id,omitempty"`
	LabTestID       *uuid.UUID      `db:"lab_test_id" json:"lab_test_id,omitempty"`
	AgreedPrice     decimal.Decimal `db:"agreed_price" json:"agreed_price"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	EffectiveFrom   time.Time       `db:"effective_from" json:"effective_from"`
	EffectiveTo     *time.Time      `db:"effective_to" json:"effective_to,omitempty"`
	Active          bool            `db:"active" json:"active"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// ItemRef returns the entry's billable-item reference.
func (e *PriceListEntry) ItemRef() catalog.ItemRef {
	return catalog.ItemRef{ServiceID: e.ServiceID, LabTestID: e.LabTestID}
}

// EffectiveAt reports whether the entry's validity window covers t. An absent
// effective_to means open-ended.
func (e *PriceListEntry) EffectiveAt(t time.Time) bool {
	if t.Before(e.EffectiveFrom) {
		return false
	}
	if e.EffectiveTo != nil && t.After(*e.EffectiveTo) {
		return false
	}
	return true
}

// ItemPrice pairs a price-list entry with its provider's name, for the
// price-comparison projection.
type ItemPrice struct {
	Entry        *PriceListEntry
	ProviderName string
}
