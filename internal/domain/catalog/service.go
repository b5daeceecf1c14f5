package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Catalog exposes the billable-item catalogs.
type Catalog struct {
	services ServiceRepository
	labTests LabTestRepository
}

func NewCatalog(services ServiceRepository, labTests LabTestRepository) *Catalog {
	return &Catalog{services: services, labTests: labTests}
}

// ListPrice resolves the undiscounted list price for a billable item. A
// reference to a nonexistent item returns ErrItemNotFound; an item that
// exists with price zero resolves normally.
func (c *Catalog) ListPrice(ctx context.Context, ref ItemRef) (decimal.Decimal, error) {
	if err := ref.Validate(); err != nil {
		return decimal.Zero, err
	}

	switch ref.Kind() {
	case ItemKindService:
		s, err := c.services.GetByID(ctx, *ref.ServiceID)
		if err != nil {
			return decimal.Zero, err
		}
		return s.Price, nil
	default:
		lt, err := c.labTests.GetByID(ctx, *ref.LabTestID)
		if err != nil {
			return decimal.Zero, err
		}
		return lt.Price, nil
	}
}

// -- Service --

func (c *Catalog) CreateService(ctx context.Context, s *Service) error {
	if s.Code == "" {
		return fmt.Errorf("code is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	return c.services.Create(ctx, s)
}

func (c *Catalog) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	return c.services.GetByID(ctx, id)
}

func (c *Catalog) UpdateService(ctx context.Context, s *Service) error {
	if s.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	return c.services.Update(ctx, s)
}

func (c *Catalog) DeleteService(ctx context.Context, id uuid.UUID) error {
	return c.services.Delete(ctx, id)
}

func (c *Catalog) ListServices(ctx context.Context, limit, offset int) ([]*Service, int, error) {
	return c.services.List(ctx, limit, offset)
}

// -- LabTest --

func (c *Catalog) CreateLabTest(ctx context.Context, lt *LabTest) error {
	if lt.Code == "" {
		return fmt.Errorf("code is required")
	}
	if lt.Name == "" {
		return fmt.Errorf("name is required")
	}
	if lt.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	return c.labTests.Create(ctx, lt)
}

func (c *Catalog) GetLabTest(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	return c.labTests.GetByID(ctx, id)
}

func (c *Catalog) UpdateLabTest(ctx context.Context, lt *LabTest) error {
	if lt.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	return c.labTests.Update(ctx, lt)
}

func (c *Catalog) DeleteLabTest(ctx context.Context, id uuid.UUID) error {
	return c.labTests.Delete(ctx, id)
}

func (c *Catalog) ListLabTests(ctx context.Context, limit, offset int) ([]*LabTest, int, error) {
	return c.labTests.List(ctx, limit, offset)
}
