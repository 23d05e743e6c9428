// Package catalog implements catalog management: product creation, update,
// and deletion, keeping product records consistent with the externally
// stored image assets they reference.
package catalog

import (
	"context"
	"fmt"
)

// Asset identifies one object held in external storage.
type Asset struct {
	ID  string
	URL string
}

// ImageData is one decoded image ready for upload.
type ImageData struct {
	ContentType string
	Data        []byte
}

// AssetStore is the contract the catalog requires from external storage.
// Upload and Delete are each a single remote call; the catalog sequences
// them itself.
type AssetStore interface {
	Upload(ctx context.Context, key string, img ImageData) (Asset, error)
	Delete(ctx context.Context, assetID string) error
}

// UpstreamError indicates the external asset store failed mid-operation.
// The catalog record involved was left untouched.
type UpstreamError struct {
	Op      string // "upload" or "release"
	AssetID string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("asset %s failed for %s: %v", e.Op, e.AssetID, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
