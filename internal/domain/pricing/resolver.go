package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hims/hims/internal/domain/catalog"
	"github.com/hims/hims/internal/domain/encounter"
	"github.com/hims/hims/internal/domain/insurance"
	"github.com/hims/hims/internal/domain/membership"
)

// Payer types accepted by a resolution.
const (
	PayerCash      = "cash"
	PayerInsurance = "insurance"
)

// CatalogLookup resolves list prices for billable items.
type CatalogLookup interface {
	ListPrice(ctx context.Context, ref catalog.ItemRef) (decimal.Decimal, error)
}

// InsurancePrices resolves negotiated insurer prices.
type InsurancePrices interface {
	ActiveEntry(ctx context.Context, item catalog.ItemRef, providerID uuid.UUID, at time.Time) (*insurance.PriceListEntry, error)
	ListActiveForItem(ctx context.Context, item catalog.ItemRef, at time.Time) ([]*insurance.ItemPrice, error)
}

// MembershipLookup resolves a patient's active membership.
type MembershipLookup interface {
	ActiveForPatient(ctx context.Context, patientID uuid.UUID, at time.Time) (*membership.ActiveMembership, error)
}

// EncounterLookup resolves the payer arrangement recorded on an encounter.
type EncounterLookup interface {
	PayerContext(ctx context.Context, encounterID uuid.UUID) (*encounter.PayerContext, error)
}

// SnapshotFunc runs fn inside a consistent read-only snapshot, so every read
// of one resolution observes the same catalog, price-list, membership and
// rule state.
type SnapshotFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// Resolver computes the final chargeable amount for a billable item under a
// patient's payer arrangement. It is a pure read-and-compute pipeline; it
// never writes.
type Resolver struct {
	catalog     CatalogLookup
	insurance   InsurancePrices
	memberships MembershipLookup
	encounters  EncounterLookup
	rules       RuleRepository
	stacking    *StackingEvaluator

	currency string
	snapshot SnapshotFunc
	now      func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSnapshot wraps each resolution in a consistent read snapshot.
func WithSnapshot(fn SnapshotFunc) ResolverOption {
	return func(r *Resolver) { r.snapshot = fn }
}

// WithClock overrides the resolver's time source.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

func NewResolver(
	cat CatalogLookup,
	ins InsurancePrices,
	mem MembershipLookup,
	enc EncounterLookup,
	rules RuleRepository,
	currency string,
	opts ...ResolverOption,
) *Resolver {
	r := &Resolver{
		catalog:     cat,
		insurance:   ins,
		memberships: mem,
		encounters:  enc,
		rules:       rules,
		stacking:    NewStackingEvaluator(rules),
		currency:    currency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve computes the price for one item. The pipeline is fixed: catalog
// base price, insurance substitution, membership discount, generic rules,
// clamp at zero, round to two decimals. A missing catalog item fails the
// resolution; missing discounts never do.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) (*ResolvedPrice, error) {
	item := req.ItemRef()
	if err := item.Validate(); err != nil {
		return nil, err
	}

	payerType := req.PayerType
	if payerType == "" {
		payerType = PayerCash
	}
	if payerType != PayerCash && payerType != PayerInsurance {
		return nil, fmt.Errorf("invalid payer_type %q", payerType)
	}

	var resolved *ResolvedPrice
	run := func(ctx context.Context) error {
		var err error
		resolved, err = r.resolve(ctx, req, item, payerType)
		return err
	}

	if r.snapshot != nil {
		if err := r.snapshot(ctx, run); err != nil {
			return nil, err
		}
		return resolved, nil
	}
	if err := run(ctx); err != nil {
		return nil, err
	}
	return resolved, nil
}

func (r *Resolver) resolve(ctx context.Context, req ResolveRequest, item catalog.ItemRef, payerType string) (*ResolvedPrice, error) {
	basePrice, err := r.catalog.ListPrice(ctx, item)
	if err != nil {
		return nil, err
	}

	insurerID := req.InsuranceProviderID
	if req.EncounterID != nil {
		// The encounter's recorded payer arrangement wins over
		// caller-supplied values.
		pc, err := r.encounters.PayerContext(ctx, *req.EncounterID)
		if err != nil {
			return nil, err
		}
		payerType = pc.PayerType
		insurerID = pc.InsuranceProviderID
	}

	st := &resolution{
		item:      item,
		basePrice: basePrice,
		running:   basePrice,
		payerType: payerType,
		insurerID: insurerID,
		patientID: req.PatientID,
		now:       r.now(),
	}

	pipeline := []strategy{
		&insuranceStrategy{prices: r.insurance},
		&membershipStrategy{memberships: r.memberships, stacking: r.stacking},
		&ruleStrategy{rules: r.rules, stacking: r.stacking},
	}
	for _, s := range pipeline {
		if err := s.Apply(ctx, st); err != nil {
			return nil, err
		}
	}

	if st.running.IsNegative() {
		st.running = decimal.Zero
	}
	final := st.running.Round(2)

	return &ResolvedPrice{
		OriginalPrice:    basePrice,
		FinalPrice:       final,
		Currency:         r.currency,
		PayerType:        payerType,
		AppliedDiscounts: st.applied,
		Breakdown:        buildBreakdown(st, final),
	}, nil
}

func buildBreakdown(st *resolution, final decimal.Decimal) Breakdown {
	b := Breakdown{
		BasePrice: st.basePrice,
		Subtotal:  st.running,
		Tax:       decimal.Zero,
		Total:     final,
	}
	for _, d := range st.applied {
		switch d.RuleType {
		case RuleTypeInsurance:
			b.InsuranceAdjustment = b.InsuranceAdjustment.Add(d.Amount)
		case RuleTypeMembership:
			b.MembershipDiscount = b.MembershipDiscount.Add(d.Amount)
		default:
			b.OtherDiscounts = b.OtherDiscounts.Add(d.Amount)
		}
	}
	return b
}

// Compare lists every insurer's active, date-valid offer for one item next to
// the catalog base price. No membership or stacking logic applies; this is a
// read-only projection.
func (r *Resolver) Compare(ctx context.Context, item catalog.ItemRef) (*Comparison, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	var cmp *Comparison
	run := func(ctx context.Context) error {
		basePrice, err := r.catalog.ListPrice(ctx, item)
		if err != nil {
			return err
		}
		offers, err := r.insurance.ListActiveForItem(ctx, item, r.now())
		if err != nil {
			return err
		}

		items := make([]ComparisonItem, 0, len(offers))
		for _, o := range offers {
			items = append(items, ComparisonItem{
				ProviderID:      o.Entry.ProviderID,
				ProviderName:    o.ProviderName,
				AgreedPrice:     o.Entry.AgreedPrice,
				DiscountPercent: o.Entry.DiscountPercent,
				EffectivePrice:  o.Entry.AgreedPrice,
				Savings:         basePrice.Sub(o.Entry.AgreedPrice),
			})
		}
		cmp = &Comparison{BasePrice: basePrice, Currency: r.currency, Offers: items}
		return nil
	}

	if r.snapshot != nil {
		if err := r.snapshot(ctx, run); err != nil {
			return nil, err
		}
		return cmp, nil
	}
	if err := run(ctx); err != nil {
		return nil, err
	}
	return cmp, nil
}
