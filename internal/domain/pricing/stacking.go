package pricing

import "context"

// StackingEvaluator decides whether a candidate discount may combine with the
// discounts already taken in a resolution. The policy comes from the active
// rule configuration for the candidate's type; with no configuration the
// default is permissive.
type StackingEvaluator struct {
	rules RuleRepository
}

func NewStackingEvaluator(rules RuleRepository) *StackingEvaluator {
	return &StackingEvaluator{rules: rules}
}

// CanStack reports whether a discount of type candidate may be applied on top
// of the already-applied discounts:
//
//   - nothing applied yet: always permitted
//   - no active rule configuration for the type: permitted
//   - configuration has can_stack: permitted
//   - configuration has an allow-list: permitted only if every applied
//     discount's type is on it
//   - otherwise: denied
func (e *StackingEvaluator) CanStack(ctx context.Context, candidate RuleType, applied []AppliedDiscount) (bool, error) {
	if len(applied) == 0 {
		return true, nil
	}

	cfg, err := e.rules.ActiveByType(ctx, candidate)
	if err != nil {
		return false, err
	}
	if cfg == nil {
		return true, nil
	}
	if cfg.CanStack {
		return true, nil
	}

	allowed := cfg.StacksWithTypes()
	if len(allowed) == 0 {
		return false, nil
	}
	for _, d := range applied {
		if !containsType(allowed, d.RuleType) {
			return false, nil
		}
	}
	return true, nil
}

func containsType(types []RuleType, t RuleType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
