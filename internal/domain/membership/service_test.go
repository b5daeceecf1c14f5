package membership

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type mockSchemeRepo struct {
	schemes map[uuid.UUID]*Scheme
}

func newMockSchemeRepo() *mockSchemeRepo {
	return &mockSchemeRepo{schemes: make(map[uuid.UUID]*Scheme)}
}

func (m *mockSchemeRepo) Create(_ context.Context, s *Scheme) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.schemes[s.ID] = s
	return nil
}

func (m *mockSchemeRepo) GetByID(_ context.Context, id uuid.UUID) (*Scheme, error) {
	s, ok := m.schemes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *mockSchemeRepo) Update(_ context.Context, s *Scheme) error {
	m.schemes[s.ID] = s
	return nil
}

func (m *mockSchemeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.schemes, id)
	return nil
}

func (m *mockSchemeRepo) List(_ context.Context, limit, offset int) ([]*Scheme, int, error) {
	var items []*Scheme
	for _, s := range m.schemes {
		items = append(items, s)
	}
	return items, len(items), nil
}

type mockMembershipRepo struct {
	memberships map[uuid.UUID]*PatientMembership
	schemes     *mockSchemeRepo
}

func newMockMembershipRepo(schemes *mockSchemeRepo) *mockMembershipRepo {
	return &mockMembershipRepo{
		memberships: make(map[uuid.UUID]*PatientMembership),
		schemes:     schemes,
	}
}

func (m *mockMembershipRepo) Create(_ context.Context, pm *PatientMembership) error {
	if pm.ID == uuid.Nil {
		pm.ID = uuid.New()
	}
	if pm.CreatedAt.IsZero() {
		pm.CreatedAt = time.Now()
	}
	m.memberships[pm.ID] = pm
	return nil
}

func (m *mockMembershipRepo) GetByID(_ context.Context, id uuid.UUID) (*PatientMembership, error) {
	pm, ok := m.memberships[id]
	if !ok {
		return nil, ErrNotFound
	}
	return pm, nil
}

func (m *mockMembershipRepo) Update(_ context.Context, pm *PatientMembership) error {
	m.memberships[pm.ID] = pm
	return nil
}

func (m *mockMembershipRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.memberships, id)
	return nil
}

func (m *mockMembershipRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*PatientMembership, int, error) {
	var items []*PatientMembership
	for _, pm := range m.memberships {
		if pm.PatientID == patientID {
			items = append(items, pm)
		}
	}
	return items, len(items), nil
}

func (m *mockMembershipRepo) ActiveForPatient(_ context.Context, patientID uuid.UUID, at time.Time) (*ActiveMembership, error) {
	var candidates []*PatientMembership
	for _, pm := range m.memberships {
		if pm.PatientID != patientID || pm.Status != StatusActive || !pm.ValidAt(at) {
			continue
		}
		sc, ok := m.schemes.schemes[pm.SchemeID]
		if !ok || !sc.Active {
			continue
		}
		candidates = append(candidates, pm)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	winner := candidates[0]
	return &ActiveMembership{Membership: winner, Scheme: m.schemes.schemes[winner.SchemeID]}, nil
}

func TestActiveForPatient_MostRecentWins(t *testing.T) {
	schemes := newMockSchemeRepo()
	repo := newMockMembershipRepo(schemes)
	svc := NewService(schemes, repo)

	goldID := uuid.New()
	silverID := uuid.New()
	schemes.schemes[goldID] = &Scheme{ID: goldID, Name: "Gold", DiscountPercent: decimal.NewFromInt(15), Active: true}
	schemes.schemes[silverID] = &Scheme{ID: silverID, Name: "Silver", DiscountPercent: decimal.NewFromInt(5), Active: true}

	patientID := uuid.New()
	old := &PatientMembership{
		PatientID: patientID, SchemeID: silverID, Status: StatusActive,
		ValidFrom: time.Now().Add(-48 * time.Hour), CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	recent := &PatientMembership{
		PatientID: patientID, SchemeID: goldID, Status: StatusActive,
		ValidFrom: time.Now().Add(-24 * time.Hour), CreatedAt: time.Now().Add(-24 * time.Hour),
	}
	repo.memberships[uuid.New()] = old
	repo.memberships[uuid.New()] = recent

	got, err := svc.ActiveForPatient(context.Background(), patientID, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected an active membership")
	}
	if got.Scheme.Name != "Gold" {
		t.Errorf("winner = %s, want Gold (most recently created)", got.Scheme.Name)
	}
}

func TestActiveForPatient_SkipsSuspendedAndExpired(t *testing.T) {
	schemes := newMockSchemeRepo()
	repo := newMockMembershipRepo(schemes)
	svc := NewService(schemes, repo)

	schemeID := uuid.New()
	schemes.schemes[schemeID] = &Scheme{ID: schemeID, Name: "Gold", DiscountPercent: decimal.NewFromInt(15), Active: true}

	patientID := uuid.New()
	repo.memberships[uuid.New()] = &PatientMembership{
		PatientID: patientID, SchemeID: schemeID, Status: StatusSuspended,
		ValidFrom: time.Now().Add(-24 * time.Hour), CreatedAt: time.Now(),
	}

	got, err := svc.ActiveForPatient(context.Background(), patientID, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("suspended membership must not be applied")
	}
}

func TestActiveForPatient_WindowExpired(t *testing.T) {
	schemes := newMockSchemeRepo()
	repo := newMockMembershipRepo(schemes)
	svc := NewService(schemes, repo)

	schemeID := uuid.New()
	schemes.schemes[schemeID] = &Scheme{ID: schemeID, Name: "Gold", DiscountPercent: decimal.NewFromInt(15), Active: true}

	patientID := uuid.New()
	past := time.Now().Add(-24 * time.Hour)
	repo.memberships[uuid.New()] = &PatientMembership{
		PatientID: patientID, SchemeID: schemeID, Status: StatusActive,
		ValidFrom: time.Now().Add(-48 * time.Hour), ValidTo: &past, CreatedAt: time.Now(),
	}

	got, err := svc.ActiveForPatient(context.Background(), patientID, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("membership past valid_to must not be applied")
	}
}

func TestActiveForPatient_InactiveScheme(t *testing.T) {
	schemes := newMockSchemeRepo()
	repo := newMockMembershipRepo(schemes)
	svc := NewService(schemes, repo)

	schemeID := uuid.New()
	schemes.schemes[schemeID] = &Scheme{ID: schemeID, Name: "Retired", DiscountPercent: decimal.NewFromInt(10), Active: false}

	patientID := uuid.New()
	repo.memberships[uuid.New()] = &PatientMembership{
		PatientID: patientID, SchemeID: schemeID, Status: StatusActive,
		ValidFrom: time.Now().Add(-24 * time.Hour), CreatedAt: time.Now(),
	}

	got, err := svc.ActiveForPatient(context.Background(), patientID, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("membership in an inactive scheme must not be applied")
	}
}

func TestCreateScheme_Validation(t *testing.T) {
	schemes := newMockSchemeRepo()
	svc := NewService(schemes, newMockMembershipRepo(schemes))

	if err := svc.CreateScheme(context.Background(), &Scheme{DiscountPercent: decimal.NewFromInt(10)}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.CreateScheme(context.Background(), &Scheme{Name: "X", DiscountPercent: decimal.NewFromInt(-1)}); err == nil {
		t.Error("expected error for negative discount")
	}
	if err := svc.CreateScheme(context.Background(), &Scheme{Name: "X", DiscountPercent: decimal.NewFromInt(101)}); err == nil {
		t.Error("expected error for discount above 100")
	}
	if err := svc.CreateScheme(context.Background(), &Scheme{Name: "Gold", DiscountPercent: decimal.NewFromInt(15), Active: true}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEnroll_Validation(t *testing.T) {
	schemes := newMockSchemeRepo()
	repo := newMockMembershipRepo(schemes)
	svc := NewService(schemes, repo)

	schemeID := uuid.New()
	schemes.schemes[schemeID] = &Scheme{ID: schemeID, Name: "Gold", DiscountPercent: decimal.NewFromInt(15), Active: true}

	if err := svc.Enroll(context.Background(), &PatientMembership{SchemeID: schemeID}); err == nil {
		t.Error("expected error for missing patient_id")
	}
	if err := svc.Enroll(context.Background(), &PatientMembership{PatientID: uuid.New()}); err == nil {
		t.Error("expected error for missing scheme_id")
	}
	if err := svc.Enroll(context.Background(), &PatientMembership{PatientID: uuid.New(), SchemeID: uuid.New()}); err == nil {
		t.Error("expected error for unknown scheme")
	}

	m := &PatientMembership{PatientID: uuid.New(), SchemeID: schemeID}
	if err := svc.Enroll(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Status != StatusActive {
		t.Errorf("status = %s, want default active", m.Status)
	}
	if m.ValidFrom.IsZero() {
		t.Error("valid_from should default to now")
	}
}
