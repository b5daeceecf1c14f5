package membership

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Service struct {
	schemes     SchemeRepository
	memberships PatientMembershipRepository
}

func NewService(schemes SchemeRepository, memberships PatientMembershipRepository) *Service {
	return &Service{schemes: schemes, memberships: memberships}
}

// ActiveForPatient returns the patient's applicable membership at time at, or
// nil if the patient has none. A patient can hold several memberships; only
// one, the most recently created active one, is applied.
func (s *Service) ActiveForPatient(ctx context.Context, patientID uuid.UUID, at time.Time) (*ActiveMembership, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	return s.memberships.ActiveForPatient(ctx, patientID, at)
}

// -- Scheme --

func (s *Service) CreateScheme(ctx context.Context, sc *Scheme) error {
	if err := validateScheme(sc); err != nil {
		return err
	}
	return s.schemes.Create(ctx, sc)
}

func (s *Service) GetScheme(ctx context.Context, id uuid.UUID) (*Scheme, error) {
	return s.schemes.GetByID(ctx, id)
}

func (s *Service) UpdateScheme(ctx context.Context, sc *Scheme) error {
	if err := validateScheme(sc); err != nil {
		return err
	}
	return s.schemes.Update(ctx, sc)
}

func (s *Service) DeleteScheme(ctx context.Context, id uuid.UUID) error {
	return s.schemes.Delete(ctx, id)
}

func (s *Service) ListSchemes(ctx context.Context, limit, offset int) ([]*Scheme, int, error) {
	return s.schemes.List(ctx, limit, offset)
}

func validateScheme(sc *Scheme) error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if sc.DiscountPercent.IsNegative() || sc.DiscountPercent.GreaterThan(hundred) {
		return fmt.Errorf("discount_percent must be between 0 and 100")
	}
	return nil
}

// -- PatientMembership --

func (s *Service) Enroll(ctx context.Context, m *PatientMembership) error {
	if m.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if m.SchemeID == uuid.Nil {
		return fmt.Errorf("scheme_id is required")
	}
	if _, err := s.schemes.GetByID(ctx, m.SchemeID); err != nil {
		return err
	}
	if m.Status == "" {
		m.Status = StatusActive
	}
	switch m.Status {
	case StatusActive, StatusSuspended, StatusExpired:
	default:
		return fmt.Errorf("invalid status %q", m.Status)
	}
	if m.ValidFrom.IsZero() {
		m.ValidFrom = time.Now()
	}
	if m.ValidTo != nil && m.ValidTo.Before(m.ValidFrom) {
		return fmt.Errorf("valid_to must not precede valid_from")
	}
	return s.memberships.Create(ctx, m)
}

func (s *Service) GetMembership(ctx context.Context, id uuid.UUID) (*PatientMembership, error) {
	return s.memberships.GetByID(ctx, id)
}

func (s *Service) UpdateMembership(ctx context.Context, m *PatientMembership) error {
	switch m.Status {
	case StatusActive, StatusSuspended, StatusExpired:
	default:
		return fmt.Errorf("invalid status %q", m.Status)
	}
	if m.ValidTo != nil && m.ValidTo.Before(m.ValidFrom) {
		return fmt.Errorf("valid_to must not precede valid_from")
	}
	return s.memberships.Update(ctx, m)
}

func (s *Service) DeleteMembership(ctx context.Context, id uuid.UUID) error {
	return s.memberships.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PatientMembership, int, error) {
	return s.memberships.ListByPatient(ctx, patientID, limit, offset)
}
