package pricing

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hims/hims/internal/domain/catalog"
)

// ErrNotFound is returned when a pricing rule does not exist.
var ErrNotFound = errors.New("pricing rule not found")

// RuleType classifies a pricing rule. Insurance and membership rules are
// applied by dedicated pipeline steps; the remaining types go through the
// generic rule engine.
type RuleType string

const (
	RuleTypeInsurance  RuleType = "insurance"
	RuleTypeMembership RuleType = "membership"
	RuleTypeLoyalty    RuleType = "loyalty"
	RuleTypeCorporate  RuleType = "corporate"
	RuleTypePromotion  RuleType = "promotion"
	RuleTypeVolume     RuleType = "volume"
)

func (t RuleType) Valid() bool {
	switch t {
	case RuleTypeInsurance, RuleTypeMembership, RuleTypeLoyalty,
		RuleTypeCorporate, RuleTypePromotion, RuleTypeVolume:
		return true
	}
	return false
}

// DiscountType determines how a rule's discount value is interpreted.
// The price_list type is only meaningful on the insurance step, and formula
// is declared but not computed; both contribute zero in the generic engine.
type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
	DiscountPriceList   DiscountType = "price_list"
	DiscountFormula     DiscountType = "formula"
)

func (t DiscountType) Valid() bool {
	switch t {
	case DiscountPercentage, DiscountFixedAmount, DiscountPriceList, DiscountFormula:
		return true
	}
	return false
}

// AppliesTo scopes a rule to a category of billable item.
type AppliesTo string

const (
	AppliesAll       AppliesTo = "all"
	AppliesServices  AppliesTo = "services"
	AppliesLab       AppliesTo = "lab"
	AppliesPharmacy  AppliesTo = "pharmacy"
	AppliesRadiology AppliesTo = "radiology"
)

func (a AppliesTo) Valid() bool {
	switch a {
	case AppliesAll, AppliesServices, AppliesLab, AppliesPharmacy, AppliesRadiology:
		return true
	}
	return false
}

// ScopeForKind maps a catalog item kind to its rule scope.
func ScopeForKind(kind catalog.ItemKind) AppliesTo {
	if kind == catalog.ItemKindLabTest {
		return AppliesLab
	}
	return AppliesServices
}

// PricingRule maps to the pricing_rules table. Priority values need not be
// unique; ties fall back to creation order.
type PricingRule struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	Name          string           `db:"name" json:"name"`
	RuleType      RuleType         `db:"rule_type" json:"rule_type"`
	Priority      int              `db:"priority" json:"priority"`
	DiscountType  DiscountType     `db:"discount_type" json:"discount_type"`
	DiscountValue decimal.Decimal  `db:"discount_value" json:"discount_value"`
	MinAmount     *decimal.Decimal `db:"min_amount" json:"min_amount,omitempty"`
	MaxDiscount   *decimal.Decimal `db:"max_discount" json:"max_discount,omitempty"`
	CanStack      bool             `db:"can_stack" json:"can_stack"`
	StacksWith    *string          `db:"stacks_with" json:"stacks_with,omitempty"`
	AppliesTo     AppliesTo        `db:"applies_to" json:"applies_to"`
	Active        bool             `db:"active" json:"active"`
	ValidFrom     *time.Time       `db:"valid_from" json:"valid_from,omitempty"`
	ValidTo       *time.Time       `db:"valid_to" json:"valid_to,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// StacksWithTypes parses the rule's comma-separated stacking allow-list.
// Returns nil when the rule declares none.
func (r *PricingRule) StacksWithTypes() []RuleType {
	if r.StacksWith == nil || strings.TrimSpace(*r.StacksWith) == "" {
		return nil
	}
	parts := strings.Split(*r.StacksWith, ",")
	types := make([]RuleType, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			types = append(types, RuleType(p))
		}
	}
	if len(types) == 0 {
		return nil
	}
	return types
}

// AppliesToItem reports whether the rule's scope covers the item kind.
func (r *PricingRule) AppliesToItem(kind catalog.ItemKind) bool {
	return r.AppliesTo == AppliesAll || r.AppliesTo == ScopeForKind(kind)
}

// ValidAt reports whether the rule's optional validity window covers t.
func (r *PricingRule) ValidAt(t time.Time) bool {
	if r.ValidFrom != nil && t.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidTo != nil && t.After(*r.ValidTo) {
		return false
	}
	return true
}

// AppliedDiscount records one discount taken during a resolution, in arrival
// order. RuleID is nil for the insurance price substitution, which is not
// backed by a configured rule.
type AppliedDiscount struct {
	RuleID       *uuid.UUID      `json:"rule_id,omitempty"`
	RuleName     string          `json:"rule_name"`
	RuleType     RuleType        `json:"rule_type"`
	DiscountType DiscountType    `json:"discount_type"`
	Amount       decimal.Decimal `json:"discount_amount"`
	Description  string          `json:"description"`
}

// Breakdown itemizes a resolved price. Tax is carried for the invoice shape
// but is always zero; tax computation lives outside pricing.
type Breakdown struct {
	BasePrice           decimal.Decimal `json:"base_price"`
	InsuranceAdjustment decimal.Decimal `json:"insurance_adjustment"`
	MembershipDiscount  decimal.Decimal `json:"membership_discount"`
	OtherDiscounts      decimal.Decimal `json:"other_discounts"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	Tax                 decimal.Decimal `json:"tax"`
	Total               decimal.Decimal `json:"total"`
}

// ResolvedPrice is the output of one price resolution. FinalPrice is rounded
// to two decimal places and never negative; OriginalPrice is the unrounded
// catalog base price.
type ResolvedPrice struct {
	OriginalPrice    decimal.Decimal   `json:"original_price"`
	FinalPrice       decimal.Decimal   `json:"final_price"`
	Currency         string            `json:"currency"`
	PayerType        string            `json:"payer_type"`
	AppliedDiscounts []AppliedDiscount `json:"applied_discounts"`
	Breakdown        Breakdown         `json:"breakdown"`
}

// ResolveRequest carries the inputs to a price resolution. Exactly one of
// ServiceID and LabTestID must be set. When EncounterID is set, the
// encounter's payer arrangement overrides PayerType and InsuranceProviderID.
type ResolveRequest struct {
	ServiceID           *uuid.UUID `json:"service_id,omitempty"`
	LabTestID           *uuid.UUID `json:"lab_test_id,omitempty"`
	PatientID           *uuid.UUID `json:"patient_id,omitempty"`
	EncounterID         *uuid.UUID `json:"encounter_id,omitempty"`
	PayerType           string     `json:"payer_type,omitempty"`
	InsuranceProviderID *uuid.UUID `json:"insurance_provider_id,omitempty"`
}

// ItemRef returns the request's billable-item reference.
func (r ResolveRequest) ItemRef() catalog.ItemRef {
	return catalog.ItemRef{ServiceID: r.ServiceID, LabTestID: r.LabTestID}
}

// ComparisonItem is one insurer's offer for an item in a price comparison.
type ComparisonItem struct {
	ProviderID      uuid.UUID       `json:"provider_id"`
	ProviderName    string          `json:"provider_name"`
	AgreedPrice     decimal.Decimal `json:"agreed_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	EffectivePrice  decimal.Decimal `json:"effective_price"`
	Savings         decimal.Decimal `json:"savings"`
}

// Comparison lists every insurer's active offer for one item against the
// catalog base price.
type Comparison struct {
	BasePrice decimal.Decimal  `json:"base_price"`
	Currency  string           `json:"currency"`
	Offers    []ComparisonItem `json:"offers"`
}
