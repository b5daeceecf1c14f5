package insurance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hims/hims/internal/domain/catalog"
)

type Service struct {
	providers  ProviderRepository
	priceLists PriceListRepository
}

func NewService(providers ProviderRepository, priceLists PriceListRepository) *Service {
	return &Service{providers: providers, priceLists: priceLists}
}

// ActiveEntry finds the active negotiated price for an (item, insurer) pair
// and verifies the current date falls inside its validity window. A row whose
// window does not cover at is treated as no match. There is no fallback to a
// different insurer.
func (s *Service) ActiveEntry(ctx context.Context, item catalog.ItemRef, providerID uuid.UUID, at time.Time) (*PriceListEntry, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.priceLists.ActiveForItemAndProvider(ctx, item, providerID)
	if err != nil {
		return nil, err
	}
	if entry == nil || !entry.EffectiveAt(at) {
		return nil, nil
	}
	return entry, nil
}

// ListActiveForItem returns every active, date-valid negotiated price for the
// item across insurers.
func (s *Service) ListActiveForItem(ctx context.Context, item catalog.ItemRef, at time.Time) ([]*ItemPrice, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return s.priceLists.ActiveForItem(ctx, item, at)
}

// -- Provider --

func (s *Service) CreateProvider(ctx context.Context, p *Provider) error {
	if p.Code == "" {
		return fmt.Errorf("code is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.providers.Create(ctx, p)
}

func (s *Service) GetProvider(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return s.providers.GetByID(ctx, id)
}

func (s *Service) UpdateProvider(ctx context.Context, p *Provider) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.providers.Update(ctx, p)
}

func (s *Service) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	return s.providers.Delete(ctx, id)
}

func (s *Service) ListProviders(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	return s.providers.List(ctx, limit, offset)
}

// -- PriceListEntry --

func (s *Service) CreatePriceListEntry(ctx context.Context, e *PriceListEntry) error {
	if e.ProviderID == uuid.Nil {
		return fmt.Errorf("provider_id is required")
	}
	if err := e.ItemRef().Validate(); err != nil {
		return err
	}
	if e.AgreedPrice.IsNegative() {
		return fmt.Errorf("agreed_price must not be negative")
	}
	if e.EffectiveFrom.IsZero() {
		e.EffectiveFrom = time.Now()
	}
	if e.EffectiveTo != nil && e.EffectiveTo.Before(e.EffectiveFrom) {
		return fmt.Errorf("effective_to must not precede effective_from")
	}
	return s.priceLists.Create(ctx, e)
}

func (s *Service) GetPriceListEntry(ctx context.Context, id uuid.UUID) (*PriceListEntry, error) {
	return s.priceLists.GetByID(ctx, id)
}

func (s *Service) UpdatePriceListEntry(ctx context.Context, e *PriceListEntry) error {
	if e.AgreedPrice.IsNegative() {
		return fmt.Errorf("agreed_price must not be negative")
	}
	if e.EffectiveTo != nil && e.EffectiveTo.Before(e.EffectiveFrom) {
		return fmt.Errorf("effective_to must not precede effective_from")
	}
	return s.priceLists.Update(ctx, e)
}

func (s *Service) DeletePriceListEntry(ctx context.Context, id uuid.UUID) error {
	return s.priceLists.Delete(ctx, id)
}

func (s *Service) ListPriceListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*PriceListEntry, int, error) {
	return s.priceLists.ListByProvider(ctx, providerID, limit, offset)
}
