package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront-go/storefront/internal/domain/product"
)

// ErrInvalidInput is returned for malformed catalog input.
var ErrInvalidInput = errors.New("invalid product input")

// CreateInput holds the fields of a new product. Images are already decoded;
// the single-vs-multiple payload ambiguity is resolved at the HTTP boundary.
type CreateInput struct {
	Name     string
	Price    decimal.Decimal
	Stock    int
	Category string
	Images   []ImageData
}

// UpdateInput holds a full replacement of a product's fields. An empty
// Images slice means "keep the current images"; a non-empty one replaces
// them all.
type UpdateInput struct {
	Name     string
	Price    decimal.Decimal
	Stock    int
	Category string
	Images   []ImageData
}

// Service performs catalog mutations, keeping the product record and its
// external image assets consistent. Asset calls are sequential and
// compensating: a failed release aborts the record mutation, and assets
// uploaded before a failure are released best-effort.
type Service struct {
	products product.Repository
	assets   AssetStore
}

// NewService creates a catalog Service.
func NewService(products product.Repository, assets AssetStore) *Service {
	return &Service{products: products, assets: assets}
}

// Get returns a single product. Returns product.ErrNotFound when absent.
func (s *Service) Get(ctx context.Context, id string) (*product.Product, error) {
	return s.products.GetByID(ctx, id)
}

// List returns a filtered, paged catalog view plus the total match count.
func (s *Service) List(ctx context.Context, filter product.ListFilter) ([]product.Product, int, error) {
	return s.products.List(ctx, filter.Normalize())
}

// ListAdmin returns the unfiltered catalog.
func (s *Service) ListAdmin(ctx context.Context) ([]product.Product, error) {
	return s.products.ListAll(ctx)
}

// Create uploads the product's images and inserts the record. If any upload
// fails, previously uploaded assets are released best-effort and the record
// is never written.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*product.Product, error) {
	if err := validateInput(in.Name, in.Price, in.Stock); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	images, err := s.uploadAll(ctx, id, in.Images)
	if err != nil {
		return nil, err
	}

	p := &product.Product{
		ID:       id,
		Name:     in.Name,
		Price:    in.Price.RoundBank(2),
		Stock:    in.Stock,
		Category: in.Category,
		Images:   images,
		OwnerID:  ownerID,
	}
	if err := s.products.Create(ctx, p); err != nil {
		s.releaseBestEffort(ctx, images)
		return nil, errors.Wrap(err, "create product")
	}
	return p, nil
}

// Update replaces a product's fields. When new images are supplied, every
// old asset is released first; a failed release aborts the whole update so
// the record keeps pointing at assets that still exist.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*product.Product, error) {
	if err := validateInput(in.Name, in.Price, in.Stock); err != nil {
		return nil, err
	}

	current, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	images := current.Images
	if len(in.Images) > 0 {
		if err := s.releaseAll(ctx, current.Images); err != nil {
			return nil, err
		}
		images, err = s.uploadAll(ctx, id, in.Images)
		if err != nil {
			return nil, err
		}
	}

	updated := &product.Product{
		ID:        id,
		Name:      in.Name,
		Price:     in.Price.RoundBank(2),
		Stock:     in.Stock,
		Category:  in.Category,
		Images:    images,
		OwnerID:   current.OwnerID,
		CreatedAt: current.CreatedAt,
	}
	if err := s.products.Update(ctx, updated); err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	return updated, nil
}

// Delete releases the product's assets and then removes the record. A failed
// release aborts the deletion.
func (s *Service) Delete(ctx context.Context, id string) error {
	current, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.releaseAll(ctx, current.Images); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete product")
	}
	return nil
}

// uploadAll stores each image under a key derived from the product ID.
// On failure it releases what was already uploaded and reports the upload
// as an UpstreamError.
func (s *Service) uploadAll(ctx context.Context, productID string, imgs []ImageData) ([]product.Image, error) {
	images := make([]product.Image, 0, len(imgs))
	for i, img := range imgs {
		key := fmt.Sprintf("products/%s/%d", productID, i)
		asset, err := s.assets.Upload(ctx, key, img)
		if err != nil {
			s.releaseBestEffort(ctx, images)
			return nil, &UpstreamError{Op: "upload", AssetID: key, Err: err}
		}
		images = append(images, product.Image{AssetID: asset.ID, URL: asset.URL})
	}
	return images, nil
}

// releaseAll deletes the given assets sequentially, stopping at the first
// failure so the caller can abort the record mutation.
func (s *Service) releaseAll(ctx context.Context, images []product.Image) error {
	for _, img := range images {
		if err := s.assets.Delete(ctx, img.AssetID); err != nil {
			return &UpstreamError{Op: "release", AssetID: img.AssetID, Err: err}
		}
	}
	return nil
}

// releaseBestEffort deletes assets ignoring failures. Used only to undo
// partial uploads after the operation already failed.
func (s *Service) releaseBestEffort(ctx context.Context, images []product.Image) {
	for _, img := range images {
		_ = s.assets.Delete(ctx, img.AssetID)
	}
}

func validateInput(name string, price decimal.Decimal, stock int) error {
	if name == "" {
		return errors.Wrap(ErrInvalidInput, "name required")
	}
	if !price.IsPositive() {
		return errors.Wrap(ErrInvalidInput, "price must be greater than 0")
	}
	if stock < 0 {
		return errors.Wrap(ErrInvalidInput, "stock must not be negative")
	}
	return nil
}
