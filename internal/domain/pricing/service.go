package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service owns pricing-rule administration. Resolution itself lives on the
// Resolver.
type Service struct {
	rules RuleRepository
}

func NewService(rules RuleRepository) *Service {
	return &Service{rules: rules}
}

func (s *Service) CreateRule(ctx context.Context, r *PricingRule) error {
	if err := validateRule(r); err != nil {
		return err
	}
	return s.rules.Create(ctx, r)
}

func (s *Service) GetRule(ctx context.Context, id uuid.UUID) (*PricingRule, error) {
	return s.rules.GetByID(ctx, id)
}

func (s *Service) UpdateRule(ctx context.Context, r *PricingRule) error {
	if err := validateRule(r); err != nil {
		return err
	}
	return s.rules.Update(ctx, r)
}

func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return s.rules.Delete(ctx, id)
}

func (s *Service) ListRules(ctx context.Context, limit, offset int) ([]*PricingRule, int, error) {
	return s.rules.List(ctx, limit, offset)
}

func validateRule(r *PricingRule) error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !r.RuleType.Valid() {
		return fmt.Errorf("invalid rule_type %q", r.RuleType)
	}
	if !r.DiscountType.Valid() {
		return fmt.Errorf("invalid discount_type %q", r.DiscountType)
	}
	if r.AppliesTo == "" {
		r.AppliesTo = AppliesAll
	}
	if !r.AppliesTo.Valid() {
		return fmt.Errorf("invalid applies_to %q", r.AppliesTo)
	}
	if r.DiscountValue.IsNegative() {
		return fmt.Errorf("discount_value must not be negative")
	}
	if r.DiscountType == DiscountPercentage && r.DiscountValue.GreaterThan(hundred) {
		return fmt.Errorf("percentage discount_value must not exceed 100")
	}
	if r.MinAmount != nil && r.MinAmount.IsNegative() {
		return fmt.Errorf("min_amount must not be negative")
	}
	if r.MaxDiscount != nil && r.MaxDiscount.IsNegative() {
		return fmt.Errorf("max_discount must not be negative")
	}
	for _, t := range r.StacksWithTypes() {
		if !t.Valid() {
			return fmt.Errorf("invalid rule type %q in stacks_with", t)
		}
	}
	if r.ValidFrom != nil && r.ValidTo != nil && r.ValidTo.Before(*r.ValidFrom) {
		return fmt.Errorf("valid_to must not precede valid_from")
	}
	return nil
}
