package pricing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func applied(types ...RuleType) []AppliedDiscount {
	out := make([]AppliedDiscount, len(types))
	for i, t := range types {
		out[i] = AppliedDiscount{RuleType: t, Amount: decimal.NewFromInt(100)}
	}
	return out
}

func TestCanStack_NothingAppliedYet(t *testing.T) {
	repo := newMockRuleRepo()
	repo.add(&PricingRule{
		Name: "Strict", RuleType: RuleTypeVolume, DiscountType: DiscountPercentage,
		CanStack: false, AppliesTo: AppliesAll, Active: true,
	})
	e := NewStackingEvaluator(repo)

	ok, err := e.CanStack(context.Background(), RuleTypeVolume, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("first discount must always be permitted")
	}
}

func TestCanStack_NoConfigurationIsPermissive(t *testing.T) {
	e := NewStackingEvaluator(newMockRuleRepo())

	ok, err := e.CanStack(context.Background(), RuleTypePromotion, applied(RuleTypeInsurance))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("unconfigured rule type must stack")
	}
}

func TestCanStack_CanStackFlag(t *testing.T) {
	repo := newMockRuleRepo()
	repo.add(&PricingRule{
		Name: "Stackable", RuleType: RuleTypePromotion, DiscountType: DiscountPercentage,
		CanStack: true, AppliesTo: AppliesAll, Active: true,
	})
	e := NewStackingEvaluator(repo)

	ok, err := e.CanStack(context.Background(), RuleTypePromotion, applied(RuleTypeInsurance, RuleTypeMembership))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("can_stack rule must stack unconditionally")
	}
}

func TestCanStack_AllowList(t *testing.T) {
	allow := "insurance,membership"
	repo := newMockRuleRepo()
	repo.add(&PricingRule{
		Name: "Selective", RuleType: RuleTypeLoyalty, DiscountType: DiscountPercentage,
		CanStack: false, StacksWith: &allow, AppliesTo: AppliesAll, Active: true,
	})
	e := NewStackingEvaluator(repo)

	ok, err := e.CanStack(context.Background(), RuleTypeLoyalty, applied(RuleTypeInsurance, RuleTypeMembership))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("all applied types on the allow-list must permit stacking")
	}

	ok, err = e.CanStack(context.Background(), RuleTypeLoyalty, applied(RuleTypeInsurance, RuleTypePromotion))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("an applied type off the allow-list must deny stacking")
	}
}

func TestCanStack_NoFlagNoListDenies(t *testing.T) {
	repo := newMockRuleRepo()
	repo.add(&PricingRule{
		Name: "Exclusive", RuleType: RuleTypeVolume, DiscountType: DiscountPercentage,
		CanStack: false, AppliesTo: AppliesAll, Active: true,
	})
	e := NewStackingEvaluator(repo)

	ok, err := e.CanStack(context.Background(), RuleTypeVolume, applied(RuleTypeInsurance))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("no can_stack and no allow-list must deny once a discount exists")
	}
}

func TestCanStack_InactiveConfigurationIgnored(t *testing.T) {
	repo := newMockRuleRepo()
	repo.add(&PricingRule{
		Name: "Disabled", RuleType: RuleTypeVolume, DiscountType: DiscountPercentage,
		CanStack: false, AppliesTo: AppliesAll, Active: false,
	})
	e := NewStackingEvaluator(repo)

	ok, err := e.CanStack(context.Background(), RuleTypeVolume, applied(RuleTypeInsurance))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("inactive configuration must fall back to the permissive default")
	}
}
