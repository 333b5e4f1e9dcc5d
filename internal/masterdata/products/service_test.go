package products

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stocksense/stocksense/internal/masterdata/shared"
)

type fakeRepo struct {
	byID   map[int64]Product
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[int64]Product)}
}

func (r *fakeRepo) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range r.byID {
		if p.CompanyID == filters.CompanyID && p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) Get(ctx context.Context, companyID, id int64) (Product, error) {
	p, ok := r.byID[id]
	if !ok || p.CompanyID != companyID {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) Create(ctx context.Context, product Product) (Product, error) {
	for _, p := range r.byID {
		if p.CompanyID == product.CompanyID && p.SKU == product.SKU {
			return Product{}, shared.ErrDuplicateCode
		}
	}
	r.nextID++
	product.ID = r.nextID
	r.byID[product.ID] = product
	return product, nil
}

func (r *fakeRepo) Update(ctx context.Context, product Product) error {
	existing, ok := r.byID[product.ID]
	if !ok || existing.CompanyID != product.CompanyID || existing.DeletedAt != nil {
		return shared.ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt
	r.byID[product.ID] = product
	return nil
}

func (r *fakeRepo) SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error {
	p, ok := r.byID[id]
	if !ok || p.CompanyID != companyID || p.DeletedAt != nil {
		return shared.ErrNotFound
	}
	p.IsActive = false
	p.DeletedAt = &at
	r.byID[id] = p
	return nil
}

func (r *fakeRepo) Restore(ctx context.Context, companyID, id int64) error {
	p, ok := r.byID[id]
	if !ok || p.CompanyID != companyID || p.DeletedAt == nil {
		return shared.ErrNotFound
	}
	p.IsActive = true
	p.DeletedAt = nil
	r.byID[id] = p
	return nil
}

func (r *fakeRepo) HardDelete(ctx context.Context, companyID, id int64) error {
	p, ok := r.byID[id]
	if !ok || p.CompanyID != companyID || p.DeletedAt == nil {
		return shared.ErrNotDeleted
	}
	delete(r.byID, id)
	return nil
}

func validProduct() Product {
	return Product{CompanyID: 1, SKU: "SKU-1", Name: "Widget", Unit: "piece", Cost: 2, Price: 5, MinQty: 3, IsActive: true}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)

	cases := map[string]func(*Product){
		"missing sku":  func(p *Product) { p.SKU = " " },
		"missing name": func(p *Product) { p.Name = "" },
		"missing unit": func(p *Product) { p.Unit = "" },
		"no company":   func(p *Product) { p.CompanyID = 0 },
		"neg cost":     func(p *Product) { p.Cost = -1 },
		"tax too high": func(p *Product) { p.TaxPercent = 101 },
		"neg min qty":  func(p *Product) { p.MinQty = -1 },
	}
	for name, mutate := range cases {
		p := validProduct()
		p.SKU = "SKU-" + name
		mutate(&p)
		_, err := svc.Create(ctx, p)
		require.Error(t, err, name)
	}
}

func TestDuplicateSKURejected(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)
	_, err = svc.Create(ctx, validProduct())
	require.ErrorIs(t, err, shared.ErrDuplicateCode)
}

func TestHardDeleteRequiresSoftDelete(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)

	err = svc.HardDelete(ctx, 1, created.ID)
	require.ErrorIs(t, err, shared.ErrNotDeleted)

	require.NoError(t, svc.SoftDelete(ctx, 1, created.ID))
	got, err := svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
	require.NotNil(t, got.DeletedAt)

	require.NoError(t, svc.HardDelete(ctx, 1, created.ID))
	_, err = svc.Get(ctx, 1, created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRestoreReactivates(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, 1, created.ID))
	require.NoError(t, svc.Restore(ctx, 1, created.ID))

	got, err := svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	require.True(t, got.IsActive)
	require.Nil(t, got.DeletedAt)
}
