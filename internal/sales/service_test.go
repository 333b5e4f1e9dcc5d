package sales

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/stocksense/stocksense/internal/inventory"
	"github.com/stocksense/stocksense/internal/shared"
)

type fakeRepo struct {
	nextID int64
	sales  map[int64]Sale
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sales: make(map[int64]Sale)}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) GenerateNumber(_ context.Context, _ int64, date time.Time) (string, error) {
	return fmt.Sprintf("SAL-%s-%04d", date.Format("200601"), len(f.sales)+1), nil
}

func (f *fakeRepo) Create(_ context.Context, sale Sale) (int64, error) {
	f.nextID++
	sale.ID = f.nextID
	sale.Lines = nil
	f.sales[sale.ID] = sale
	return sale.ID, nil
}

func (f *fakeRepo) InsertLine(_ context.Context, line SaleLine) (int64, error) {
	sale, ok := f.sales[line.SaleID]
	if !ok {
		return 0, errors.New("sale missing")
	}
	f.nextID++
	line.ID = f.nextID
	sale.Lines = append(sale.Lines, line)
	f.sales[line.SaleID] = sale
	return line.ID, nil
}

func (f *fakeRepo) List(_ context.Context, companyID int64, _, _ int) ([]Sale, int, error) {
	var out []Sale
	for _, s := range f.sales {
		if s.CompanyID == companyID {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(_ context.Context, companyID, id int64) (Sale, error) {
	s, ok := f.sales[id]
	if !ok || s.CompanyID != companyID {
		return Sale{}, ErrSaleNotFound
	}
	return s, nil
}

type fakeInventory struct {
	stock    map[string]float64
	posted   []inventory.SaleInput
	seenRefs map[string]bool
	failOnce map[int64]bool
}

func stockKey(productID int64, loc inventory.Location) string {
	return fmt.Sprintf("%d/%s", productID, loc)
}

func (f *fakeInventory) GetQuantity(_ context.Context, _ int64, productID int64, loc inventory.Location) (float64, error) {
	return f.stock[stockKey(productID, loc)], nil
}

func (f *fakeInventory) PostSale(_ context.Context, input inventory.SaleInput) (inventory.Movement, error) {
	if f.seenRefs[input.RefID] {
		return inventory.Movement{}, shared.ErrIdempotencyConflict
	}
	if f.failOnce[input.ProductID] {
		delete(f.failOnce, input.ProductID)
		return inventory.Movement{}, &inventory.InsufficientStockError{}
	}
	key := stockKey(input.ProductID, input.Location)
	if f.stock[key] < input.Qty {
		return inventory.Movement{}, &inventory.InsufficientStockError{Available: f.stock[key]}
	}
	f.stock[key] -= input.Qty
	if f.seenRefs == nil {
		f.seenRefs = make(map[string]bool)
	}
	f.seenRefs[input.RefID] = true
	f.posted = append(f.posted, input)
	return inventory.Movement{Type: inventory.MovementOut, Qty: input.Qty}, nil
}

func TestCreateSalePostsMovementPerLine(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInventory{stock: map[string]float64{}}
	loc := inventory.Location{WarehouseID: 3}
	inv.stock[stockKey(1, loc)] = 10
	inv.stock[stockKey(2, loc)] = 5
	svc := NewService(repo, inv)

	sale, err := svc.Create(context.Background(), CreateSaleInput{
		CompanyID: 1,
		Location:  loc,
		ActorID:   9,
		Lines: []CreateSaleLine{
			{ProductID: 1, Qty: 4, UnitPrice: 10, TaxPercent: 10},
			{ProductID: 2, Qty: 2, UnitPrice: 5},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, sale.ID)
	require.Len(t, inv.posted, 2)
	require.InDelta(t, 50, sale.Subtotal, 1e-9)
	require.InDelta(t, 4, sale.TaxAmount, 1e-9)
	require.InDelta(t, 54, sale.TotalAmount, 1e-9)
	require.InDelta(t, 6, inv.stock[stockKey(1, loc)], 1e-9)
	require.Equal(t, "sale "+sale.Number, inv.posted[0].Reason)
}

func TestCreateSaleRejectsShortStockBeforeWriting(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInventory{stock: map[string]float64{}}
	loc := inventory.Location{WarehouseID: 3}
	inv.stock[stockKey(1, loc)] = 3
	svc := NewService(repo, inv)

	_, err := svc.Create(context.Background(), CreateSaleInput{
		CompanyID: 1,
		Location:  loc,
		Lines:     []CreateSaleLine{{ProductID: 1, Qty: 5, UnitPrice: 10}},
	})
	var short *inventory.InsufficientStockError
	require.ErrorAs(t, err, &short)
	require.InDelta(t, 3, short.Available, 1e-9)
	require.Empty(t, repo.sales)
	require.Empty(t, inv.posted)
}

func TestCreateSaleAggregatesDuplicateProductLines(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInventory{stock: map[string]float64{}}
	loc := inventory.Location{BranchID: 1}
	inv.stock[stockKey(1, loc)] = 5
	svc := NewService(repo, inv)

	// 3 + 3 exceeds the 5 on hand even though each line alone fits.
	_, err := svc.Create(context.Background(), CreateSaleInput{
		CompanyID: 1,
		Location:  loc,
		Lines: []CreateSaleLine{
			{ProductID: 1, Qty: 3, UnitPrice: 1},
			{ProductID: 1, Qty: 3, UnitPrice: 1},
		},
	})
	var short *inventory.InsufficientStockError
	require.ErrorAs(t, err, &short)
	require.Empty(t, repo.sales)
}

func TestCreateSaleValidation(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeInventory{stock: map[string]float64{}})

	_, err := svc.Create(context.Background(), CreateSaleInput{CompanyID: 1})
	require.ErrorIs(t, err, ErrNoLines)

	_, err = svc.Create(context.Background(), CreateSaleInput{
		CompanyID: 1,
		Lines:     []CreateSaleLine{{ProductID: 1, Qty: -1, UnitPrice: 1}},
	})
	require.ErrorIs(t, err, ErrInvalidLine)

	_, err = svc.Create(context.Background(), CreateSaleInput{
		Lines: []CreateSaleLine{{ProductID: 1, Qty: 1, UnitPrice: 1}},
	})
	require.ErrorIs(t, err, ErrInvalidCompany)
}

func TestFailedPostingCanBeRedriven(t *testing.T) {
	repo := newFakeRepo()
	loc := inventory.Location{WarehouseID: 3}
	inv := &fakeInventory{
		stock: map[string]float64{
			stockKey(1, loc): 10,
			stockKey(2, loc): 10,
		},
		// The ledger rejects product 2 once, as if a concurrent sale
		// drained it between the availability check and the row lock.
		failOnce: map[int64]bool{2: true},
	}
	svc := NewService(repo, inv)

	_, err := svc.Create(context.Background(), CreateSaleInput{
		CompanyID: 1,
		Location:  loc,
		Lines: []CreateSaleLine{
			{ProductID: 1, Qty: 4, UnitPrice: 10},
			{ProductID: 2, Qty: 2, UnitPrice: 5},
		},
	})
	var short *inventory.InsufficientStockError
	require.ErrorAs(t, err, &short)

	// The document survived with line 1 already on the ledger.
	require.Len(t, repo.sales, 1)
	require.Len(t, inv.posted, 1)
	require.Equal(t, int64(1), inv.posted[0].ProductID)

	var saleID int64
	for id := range repo.sales {
		saleID = id
	}

	sale, err := svc.Post(context.Background(), 1, saleID)
	require.NoError(t, err)
	require.Len(t, sale.Lines, 2)

	// Line 1 was skipped as already applied; only line 2 posted.
	require.Len(t, inv.posted, 2)
	require.Equal(t, int64(2), inv.posted[1].ProductID)
	require.InDelta(t, 6, inv.stock[stockKey(1, loc)], 1e-9)
	require.InDelta(t, 8, inv.stock[stockKey(2, loc)], 1e-9)

	// Re-driving a fully posted sale is a no-op.
	_, err = svc.Post(context.Background(), 1, saleID)
	require.NoError(t, err)
	require.Len(t, inv.posted, 2)
	require.InDelta(t, 6, inv.stock[stockKey(1, loc)], 1e-9)
}

func TestLineRefsAreStableAndDistinct(t *testing.T) {
	repo := newFakeRepo()
	loc := inventory.Location{BranchID: 2}
	inv := &fakeInventory{stock: map[string]float64{stockKey(7, loc): 10}}
	svc := NewService(repo, inv)

	sale, err := svc.Create(context.Background(), CreateSaleInput{
		CompanyID: 1,
		Location:  loc,
		Lines: []CreateSaleLine{
			{ProductID: 7, Qty: 2, UnitPrice: 1},
			{ProductID: 7, Qty: 3, UnitPrice: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, inv.posted, 2)
	// Repeated products still get distinct refs, but each ref is a pure
	// function of the sale ref and line position.
	require.NotEqual(t, inv.posted[0].RefID, inv.posted[1].RefID)

	ns := uuid.MustParse(sale.RefID)
	require.Equal(t, uuid.NewSHA1(ns, []byte("0")).String(), inv.posted[0].RefID)
	require.Equal(t, uuid.NewSHA1(ns, []byte("1")).String(), inv.posted[1].RefID)
}
