package catalog

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID      map[string]*product.Product
	createErr error
	updateErr error
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{byID: make(map[string]*product.Product)}
}

func (m *mockProductRepo) List(_ context.Context, _ product.ListFilter) ([]product.Product, int, error) {
	return nil, 0, nil
}

func (m *mockProductRepo) ListAll(_ context.Context) ([]product.Product, error) {
	var out []product.Product
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, _ []string) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) Create(_ context.Context, p *product.Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.byID[p.ID] = p
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, p *product.Product) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.byID[p.ID]; !ok {
		return product.ErrNotFound
	}
	m.byID[p.ID] = p
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return product.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// mockAssetStore records uploads and deletions and can be told to fail
// either operation after a number of successful calls.
type mockAssetStore struct {
	stored      map[string]bool
	uploads     []string
	deletions   []string
	failUpload  int // fail the nth upload (1-based); 0 never fails
	failDelete  int
	uploadCalls int
	deleteCalls int
}

func newMockAssetStore() *mockAssetStore {
	return &mockAssetStore{stored: make(map[string]bool)}
}

func (m *mockAssetStore) Upload(_ context.Context, key string, _ ImageData) (Asset, error) {
	m.uploadCalls++
	if m.failUpload > 0 && m.uploadCalls == m.failUpload {
		return Asset{}, errors.New("bucket unavailable")
	}
	m.stored[key] = true
	m.uploads = append(m.uploads, key)
	return Asset{ID: key, URL: "https://cdn.test/" + key}, nil
}

func (m *mockAssetStore) Delete(_ context.Context, assetID string) error {
	m.deleteCalls++
	if m.failDelete > 0 && m.deleteCalls == m.failDelete {
		return errors.New("bucket unavailable")
	}
	delete(m.stored, assetID)
	m.deletions = append(m.deletions, assetID)
	return nil
}

// --- Helpers ---

func validCreateInput(images int) CreateInput {
	in := CreateInput{
		Name:     "Widget",
		Price:    decimal.RequireFromString("10.00"),
		Stock:    5,
		Category: "tools",
	}
	for range images {
		in.Images = append(in.Images, ImageData{ContentType: "image/png", Data: []byte{1, 2, 3}})
	}
	return in
}

// --- Tests ---

func TestCreate_UploadsThenInserts(t *testing.T) {
	repo := newMockProductRepo()
	store := newMockAssetStore()
	svc := NewService(repo, store)

	p, err := svc.Create(context.Background(), "admin", validCreateInput(2))
	require.NoError(t, err)

	assert.Len(t, p.Images, 2)
	assert.Len(t, repo.byID, 1)
	assert.Equal(t, "admin", p.OwnerID)
	for _, img := range p.Images {
		assert.True(t, store.stored[img.AssetID], "asset %s must exist", img.AssetID)
		assert.Equal(t, "https://cdn.test/"+img.AssetID, img.URL)
	}
}

func TestCreate_PartialUploadRolledBack(t *testing.T) {
	repo := newMockProductRepo()
	store := newMockAssetStore()
	store.failUpload = 2
	svc := NewService(repo, store)

	_, err := svc.Create(context.Background(), "admin", validCreateInput(3))

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "upload", upErr.Op)
	assert.Empty(t, repo.byID, "record must not be written")
	assert.Empty(t, store.stored, "first upload must be rolled back")
}

func TestCreate_InsertFailureReleasesAssets(t *testing.T) {
	repo := newMockProductRepo()
	repo.createErr = errors.New("db write failed")
	store := newMockAssetStore()
	svc := NewService(repo, store)

	_, err := svc.Create(context.Background(), "admin", validCreateInput(2))

	require.Error(t, err)
	assert.Empty(t, store.stored, "uploaded assets must be released")
}

func TestCreate_InvalidInput(t *testing.T) {
	svc := NewService(newMockProductRepo(), newMockAssetStore())

	in := validCreateInput(0)
	in.Price = decimal.Zero

	_, err := svc.Create(context.Background(), "admin", in)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate_KeepsImagesWhenNoneSupplied(t *testing.T) {
	repo := newMockProductRepo()
	store := newMockAssetStore()
	svc := NewService(repo, store)

	created, err := svc.Create(context.Background(), "admin", validCreateInput(2))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{
		Name:     "Widget v2",
		Price:    decimal.RequireFromString("12.00"),
		Stock:    3,
		Category: "tools",
	})
	require.NoError(t, err)

	assert.Equal(t, created.Images, updated.Images)
	assert.Zero(t, store.deleteCalls, "no assets may be touched")
}

func TestUpdate_ReplacesImages(t *testing.T) {
	repo := newMockProductRepo()
	store := newMockAssetStore()
	svc := NewService(repo, store)

	created, err := svc.Create(context.Background(), "admin", validCreateInput(2))
	require.NoError(t, err)
	oldAssets := []string{created.Images[0].AssetID, created.Images[1].AssetID}

	in := UpdateInput{
		Name:     "Widget v2",
		Price:    decimal.RequireFromString("12.00"),
		Stock:    3,
		Category: "tools",
		Images:   []ImageData{{ContentType: "image/png", Data: []byte{9}}},
	}
	updated, err := svc.Update(context.Background(), created.ID, in)
	require.NoError(t, err)

	assert.Len(t, updated.Images, 1)
	for _, id := range oldAssets {
		assert.False(t, store.stored[id], "old asset %s must be released", id)
	}
	assert.True(t, store.stored[updated.Images[0].AssetID])
	assert.Equal(t, created.OwnerID, updated.OwnerID)
}

// TestUpdate_ReleaseFailureAborts guards the compensation order: when an old
// asset cannot be released, the record must stay untouched.
func TestUpdate_ReleaseFailureAborts(t *testing.T) {
	repo := newMockProductRepo()
	store := newMockAssetStore()
	svc := NewService(repo, store)

	created, err := svc.Create(context.Background(), "admin", validCreateInput(2))
	require.NoError(t, err)

	store.failDelete = 1
	_, err = svc.Update(context.Background(), created.ID, UpdateInput{
		Name:     "Widget v2",
		Price:    decimal.RequireFromString("12.00"),
		Stock:    3,
		Category: "tools",
		Images:   []ImageData{{ContentType: "image/png", Data: []byte{9}}},
	})

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "release", upErr.Op)

	current, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", current.Name, "record must be untouched")
	assert.Equal(t, created.Images, current.Images)
}

func TestDelete_ReleasesExactlyRecordedAssets(t *testing.T) {
	repo := newMockProductRepo()
	store := newMockAssetStore()
	svc := NewService(repo, store)

	created, err := svc.Create(context.Background(), "admin", validCreateInput(2))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	assert.Empty(t, repo.byID)
	assert.ElementsMatch(t,
		[]string{created.Images[0].AssetID, created.Images[1].AssetID},
		store.deletions,
	)
}

func TestDelete_ReleaseFailureAborts(t *testing.T) {
	repo := newMockProductRepo()
	store := newMockAssetStore()
	svc := NewService(repo, store)

	created, err := svc.Create(context.Background(), "admin", validCreateInput(1))
	require.NoError(t, err)

	store.failDelete = 1
	err = svc.Delete(context.Background(), created.ID)

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Len(t, repo.byID, 1, "record must survive an aborted delete")
}

func TestDelete_NotFound(t *testing.T) {
	svc := NewService(newMockProductRepo(), newMockAssetStore())

	err := svc.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, product.ErrNotFound)
}
