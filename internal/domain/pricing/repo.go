package pricing

import (
	"context"

	"github.com/google/uuid"
)

type RuleRepository interface {
	Create(ctx context.Context, r *PricingRule) error
	GetByID(ctx context.Context, id uuid.UUID) (*PricingRule, error)
	Update(ctx context.Context, r *PricingRule) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*PricingRule, int, error)
	// ListActiveForScope returns active rules whose applies_to is the scope
	// or "all", ordered by priority ascending then creation order.
	ListActiveForScope(ctx context.Context, scope AppliesTo) ([]*PricingRule, error)
	// ActiveByType returns the active rule configuration for a rule type, or
	// nil if none is configured. With several configured, the lowest priority
	// wins.
	ActiveByType(ctx context.Context, t RuleType) (*PricingRule, error)
}
