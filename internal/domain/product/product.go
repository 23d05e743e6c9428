package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Image references one asset held in external storage. AssetID is the
// storage-side identifier used for cleanup; URL is what clients render.
type Image struct {
	AssetID string `json:"asset_id"`
	URL     string `json:"url"`
}

// Product represents a catalog item available for purchase.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Stock     int
	Category  string
	Images    []Image
	OwnerID   string
	CreatedAt time.Time
}

// ListFilter narrows and pages catalog listings. Zero values mean
// "no keyword", "any category", first page with the default size.
type ListFilter struct {
	Keyword  string
	Category string
	Page     int
	PerPage  int
}

// DefaultPerPage matches the storefront's product grid size.
const DefaultPerPage = 4

// Normalize clamps paging values into a usable range.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	return f
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context, filter ListFilter) (items []Product, total int, err error)
	ListAll(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
