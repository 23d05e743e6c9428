package assets

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/storefront-go/storefront/internal/domain/catalog"
)

// ErrNotConfigured is returned by Unconfigured for every call.
var ErrNotConfigured = errors.New("asset store is not configured")

var _ catalog.AssetStore = Unconfigured{}

// Unconfigured is the AssetStore used when no bucket is configured. Catalog
// reads keep working; mutations that need external storage fail upstream.
type Unconfigured struct{}

func (Unconfigured) Upload(_ context.Context, _ string, _ catalog.ImageData) (catalog.Asset, error) {
	return catalog.Asset{}, ErrNotConfigured
}

func (Unconfigured) Delete(_ context.Context, _ string) error {
	return ErrNotConfigured
}
