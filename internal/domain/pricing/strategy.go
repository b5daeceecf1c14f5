package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hims/hims/internal/domain/catalog"
)

var hundred = decimal.NewFromInt(100)

// resolution is the mutable state threaded through the strategy pipeline.
// Each strategy sees the running price left by its predecessors.
type resolution struct {
	item      catalog.ItemRef
	basePrice decimal.Decimal
	running   decimal.Decimal
	applied   []AppliedDiscount

	payerType string
	insurerID *uuid.UUID
	patientID *uuid.UUID
	now       time.Time
}

func (r *resolution) take(d AppliedDiscount) {
	r.running = r.running.Sub(d.Amount)
	r.applied = append(r.applied, d)
}

// strategy is one step of the resolution pipeline. Strategies run in a fixed
// order: insurance substitution, then membership, then generic rules.
type strategy interface {
	Apply(ctx context.Context, st *resolution) error
}

// insuranceStrategy substitutes the insurer's agreed price for the running
// price. It always runs first and is never subject to stacking checks. The
// recorded amount is the difference from the base price, which may be
// negative if the negotiated price exceeds the catalog price.
type insuranceStrategy struct {
	prices InsurancePrices
}

func (s *insuranceStrategy) Apply(ctx context.Context, st *resolution) error {
	if st.payerType != PayerInsurance || st.insurerID == nil {
		return nil
	}

	entry, err := s.prices.ActiveEntry(ctx, st.item, *st.insurerID, st.now)
	if err != nil {
		return err
	}
	if entry == nil {
		return nil
	}

	st.take(AppliedDiscount{
		RuleName:     "Insurance negotiated price",
		RuleType:     RuleTypeInsurance,
		DiscountType: DiscountPriceList,
		Amount:       st.running.Sub(entry.AgreedPrice),
		Description:  fmt.Sprintf("agreed price %s replaces list price", entry.AgreedPrice),
	})
	return nil
}

// membershipStrategy applies the patient's active scheme discount to the
// running price, subject to the stacking policy for the membership type.
type membershipStrategy struct {
	memberships MembershipLookup
	stacking    *StackingEvaluator
}

func (s *membershipStrategy) Apply(ctx context.Context, st *resolution) error {
	if st.patientID == nil {
		return nil
	}

	am, err := s.memberships.ActiveForPatient(ctx, *st.patientID, st.now)
	if err != nil {
		return err
	}
	if am == nil || !am.Scheme.DiscountPercent.IsPositive() {
		return nil
	}

	ok, err := s.stacking.CanStack(ctx, RuleTypeMembership, st.applied)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	amount := st.running.Mul(am.Scheme.DiscountPercent).Div(hundred)
	st.take(AppliedDiscount{
		RuleName:     am.Scheme.Name,
		RuleType:     RuleTypeMembership,
		DiscountType: DiscountPercentage,
		Amount:       amount,
		Description:  fmt.Sprintf("%s membership discount %s%%", am.Scheme.Name, am.Scheme.DiscountPercent),
	})
	return nil
}

// ruleStrategy runs the generic rule engine: active rules scoped to the item
// kind, in ascending priority order, each seeing the running price as of its
// own turn. Rules are never re-evaluated after later price changes.
type ruleStrategy struct {
	rules    RuleRepository
	stacking *StackingEvaluator
}

func (s *ruleStrategy) Apply(ctx context.Context, st *resolution) error {
	rules, err := s.rules.ListActiveForScope(ctx, ScopeForKind(st.item.Kind()))
	if err != nil {
		return err
	}

	for _, rule := range rules {
		// Insurance and membership are handled by their own pipeline steps.
		if rule.RuleType == RuleTypeInsurance || rule.RuleType == RuleTypeMembership {
			continue
		}
		if !rule.ValidAt(st.now) {
			continue
		}

		ok, err := s.stacking.CanStack(ctx, rule.RuleType, st.applied)
		if err != nil {
			return err
		}
		if !ok && len(st.applied) > 0 && !rule.CanStack {
			continue
		}

		amount := candidateAmount(rule, st.running)
		if rule.MaxDiscount != nil && amount.GreaterThan(*rule.MaxDiscount) {
			amount = *rule.MaxDiscount
		}
		if rule.MinAmount != nil && st.running.LessThan(*rule.MinAmount) {
			continue
		}
		if !amount.IsPositive() {
			continue
		}

		ruleID := rule.ID
		st.take(AppliedDiscount{
			RuleID:       &ruleID,
			RuleName:     rule.Name,
			RuleType:     rule.RuleType,
			DiscountType: rule.DiscountType,
			Amount:       amount,
			Description:  describeRule(rule),
		})
	}
	return nil
}

// candidateAmount computes a rule's raw discount against the running price.
// The price_list and formula types are recognized but inert here; they
// contribute zero rather than failing, matching the configured-but-unused
// state they hold in production rule sets.
func candidateAmount(rule *PricingRule, running decimal.Decimal) decimal.Decimal {
	switch rule.DiscountType {
	case DiscountPercentage:
		return running.Mul(rule.DiscountValue).Div(hundred)
	case DiscountFixedAmount:
		return rule.DiscountValue
	default:
		return decimal.Zero
	}
}

func describeRule(rule *PricingRule) string {
	switch rule.DiscountType {
	case DiscountPercentage:
		return fmt.Sprintf("%s: %s%% off", rule.Name, rule.DiscountValue)
	case DiscountFixedAmount:
		return fmt.Sprintf("%s: %s off", rule.Name, rule.DiscountValue)
	default:
		return rule.Name
	}
}
