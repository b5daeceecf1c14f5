package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SchemeRepository interface {
	Create(ctx context.Context, s *Scheme) error
	GetByID(ctx context.Context, id uuid.UUID) (*Scheme, error)
	Update(ctx context.Context, s *Scheme) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Scheme, int, error)
}

type PatientMembershipRepository interface {
	Create(ctx context.Context, m *PatientMembership) error
	GetByID(ctx context.Context, id uuid.UUID) (*PatientMembership, error)
	Update(ctx context.Context, m *PatientMembership) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PatientMembership, int, error)
	// ActiveForPatient returns the patient's single applicable membership at
	// time at, joined to its scheme, or nil if none. When several qualify,
	// the most recently created wins.
	ActiveForPatient(ctx context.Context, patientID uuid.UUID, at time.Time) (*ActiveMembership, error)
}
