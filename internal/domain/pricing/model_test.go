package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hims/hims/internal/domain/catalog"
)

func TestStacksWithTypes(t *testing.T) {
	cases := []struct {
		name string
		csv  *string
		want int
	}{
		{"nil", nil, 0},
		{"empty", strPtr(""), 0},
		{"blank", strPtr("  "), 0},
		{"single", strPtr("insurance"), 1},
		{"multiple with spaces", strPtr("insurance, membership , promotion"), 3},
		{"trailing comma", strPtr("insurance,"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &PricingRule{StacksWith: tc.csv}
			if got := r.StacksWithTypes(); len(got) != tc.want {
				t.Errorf("got %d types, want %d", len(got), tc.want)
			}
		})
	}

	r := &PricingRule{StacksWith: strPtr("insurance, membership")}
	types := r.StacksWithTypes()
	if types[0] != RuleTypeInsurance || types[1] != RuleTypeMembership {
		t.Errorf("parsed = %v", types)
	}
}

func TestAppliesToItem(t *testing.T) {
	cases := []struct {
		scope AppliesTo
		kind  catalog.ItemKind
		want  bool
	}{
		{AppliesAll, catalog.ItemKindService, true},
		{AppliesAll, catalog.ItemKindLabTest, true},
		{AppliesServices, catalog.ItemKindService, true},
		{AppliesServices, catalog.ItemKindLabTest, false},
		{AppliesLab, catalog.ItemKindLabTest, true},
		{AppliesLab, catalog.ItemKindService, false},
		{AppliesPharmacy, catalog.ItemKindService, false},
	}
	for _, tc := range cases {
		r := &PricingRule{AppliesTo: tc.scope}
		if got := r.AppliesToItem(tc.kind); got != tc.want {
			t.Errorf("scope %s kind %s = %v, want %v", tc.scope, tc.kind, got, tc.want)
		}
	}
}

func TestRuleValidAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	open := &PricingRule{}
	if !open.ValidAt(now) {
		t.Error("rule without a window is always valid")
	}

	notYet := &PricingRule{ValidFrom: &future}
	if notYet.ValidAt(now) {
		t.Error("rule before valid_from must not be valid")
	}

	ended := &PricingRule{ValidTo: &past}
	if ended.ValidAt(now) {
		t.Error("rule after valid_to must not be valid")
	}

	windowed := &PricingRule{ValidFrom: &past, ValidTo: &future}
	if !windowed.ValidAt(now) {
		t.Error("rule inside its window must be valid")
	}
}

func TestResolveRequestItemRef(t *testing.T) {
	serviceID := uuid.New()
	req := ResolveRequest{ServiceID: &serviceID}
	ref := req.ItemRef()
	if err := ref.Validate(); err != nil {
		t.Fatal(err)
	}
	if ref.Kind() != catalog.ItemKindService || ref.ID() != serviceID {
		t.Error("item ref lost the service identity")
	}

	if err := (ResolveRequest{}).ItemRef().Validate(); err == nil {
		t.Error("empty request must produce an invalid ref")
	}
}

func strPtr(s string) *string { return &s }
