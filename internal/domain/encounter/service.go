package encounter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// PayerContext loads the payer arrangement recorded on an encounter. Pricing
// uses it to decide whether insurance applies and under which insurer.
func (s *Service) PayerContext(ctx context.Context, encounterID uuid.UUID) (*PayerContext, error) {
	e, err := s.repo.GetByID(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	return &PayerContext{
		PatientID:           e.PatientID,
		PayerType:           e.PayerType,
		InsuranceProviderID: e.InsuranceProviderID,
	}, nil
}

func (s *Service) Create(ctx context.Context, e *Encounter) error {
	if e.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if err := validatePayer(e); err != nil {
		return err
	}
	if e.Status == "" {
		e.Status = StatusOpen
	}
	switch e.Status {
	case StatusOpen, StatusClosed, StatusCancelled:
	default:
		return fmt.Errorf("invalid status %q", e.Status)
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, e *Encounter) error {
	if err := validatePayer(e); err != nil {
		return err
	}
	switch e.Status {
	case StatusOpen, StatusClosed, StatusCancelled:
	default:
		return fmt.Errorf("invalid status %q", e.Status)
	}
	return s.repo.Update(ctx, e)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Encounter, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func validatePayer(e *Encounter) error {
	switch e.PayerType {
	case PayerCash:
		if e.InsuranceProviderID != nil {
			return fmt.Errorf("cash encounter must not carry an insurance provider")
		}
	case PayerInsurance:
		if e.InsuranceProviderID == nil {
			return fmt.Errorf("insurance encounter requires insurance_provider_id")
		}
	default:
		return fmt.Errorf("invalid payer_type %q", e.PayerType)
	}
	return nil
}
