package insurance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hims/hims/internal/domain/catalog"
)

type ProviderRepository interface {
	Create(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	Update(ctx context.Context, p *Provider) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Provider, int, error)
}

type PriceListRepository interface {
	Create(ctx context.Context, e *PriceListEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*PriceListEntry, error)
	Update(ctx context.Context, e *PriceListEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*PriceListEntry, int, error)
	// ActiveForItemAndProvider returns the active entry for the (item,
	// provider) pair, or nil if none exists. Date-window validity is the
	// caller's concern.
	ActiveForItemAndProvider(ctx context.Context, item catalog.ItemRef, providerID uuid.UUID) (*PriceListEntry, error)
	// ActiveForItem returns all active, date-valid entries for the item
	// across providers, joined to the provider name.
	ActiveForItem(ctx context.Context, item catalog.ItemRef, at time.Time) ([]*ItemPrice, error)
}
