package inventory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	records   map[string]StockRecord
	movements []Movement
	nextID    int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]StockRecord)}
}

func recordKey(companyID, productID int64, loc Location) string {
	return fmt.Sprintf("%d:%d:%s", companyID, productID, loc.String())
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) GetQuantity(ctx context.Context, companyID, productID int64, loc Location) (float64, error) {
	if rec, ok := r.records[recordKey(companyID, productID, loc)]; ok {
		return rec.Qty, nil
	}
	return 0, nil
}

func (r *memoryRepo) GetTotalQuantity(ctx context.Context, companyID, productID int64) (float64, error) {
	var total float64
	for _, rec := range r.records {
		if rec.CompanyID == companyID && rec.ProductID == productID {
			total += rec.Qty
		}
	}
	return total, nil
}

func (r *memoryRepo) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	var out []Movement
	for i := len(r.movements) - 1; i >= 0; i-- {
		m := r.movements[i]
		if m.CompanyID == filter.CompanyID && m.ProductID == filter.ProductID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (tx *memoryTx) GetRecordForUpdate(ctx context.Context, companyID, productID int64, loc Location) (StockRecord, error) {
	if rec, ok := tx.repo.records[recordKey(companyID, productID, loc)]; ok {
		return rec, nil
	}
	return StockRecord{}, ErrRecordNotFound
}

func (tx *memoryTx) UpsertRecord(ctx context.Context, record StockRecord) error {
	tx.repo.records[recordKey(record.CompanyID, record.ProductID, record.Location)] = record
	return nil
}

func (tx *memoryTx) InsertMovement(ctx context.Context, movement Movement) (int64, error) {
	tx.repo.nextID++
	movement.ID = tx.repo.nextID
	tx.repo.movements = append(tx.repo.movements, movement)
	return movement.ID, nil
}

const (
	testCompany = int64(1)
	testProduct = int64(42)
)

func TestReceiptThenSale(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()
	w1 := Location{WarehouseID: 1}

	m, err := svc.PostReceipt(ctx, ReceiptInput{CompanyID: testCompany, ProductID: testProduct, Qty: 10, UnitCost: 5, Location: w1})
	require.NoError(t, err)
	require.Equal(t, MovementIn, m.Type)
	require.NotNil(t, m.To)
	require.Equal(t, w1, *m.To)

	qty, err := svc.GetQuantity(ctx, testCompany, testProduct, w1)
	require.NoError(t, err)
	require.InDelta(t, 10, qty, 1e-9)

	m, err = svc.PostSale(ctx, SaleInput{CompanyID: testCompany, ProductID: testProduct, Qty: 4, UnitPrice: 9, Location: w1})
	require.NoError(t, err)
	require.Equal(t, MovementOut, m.Type)
	require.NotNil(t, m.From)

	qty, err = svc.GetQuantity(ctx, testCompany, testProduct, w1)
	require.NoError(t, err)
	require.InDelta(t, 6, qty, 1e-9)
	require.Len(t, repo.movements, 2)
}

func TestSaleInsufficientStockLeavesNoTrace(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()
	w1 := Location{WarehouseID: 1}

	_, err := svc.PostReceipt(ctx, ReceiptInput{CompanyID: testCompany, ProductID: testProduct, Qty: 6, UnitCost: 5, Location: w1})
	require.NoError(t, err)

	_, err = svc.PostSale(ctx, SaleInput{CompanyID: testCompany, ProductID: testProduct, Qty: 10, UnitPrice: 9, Location: w1})
	require.ErrorIs(t, err, ErrInsufficientStock)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.InDelta(t, 6, insufficient.Available, 1e-9)

	qty, err := svc.GetQuantity(ctx, testCompany, testProduct, w1)
	require.NoError(t, err)
	require.InDelta(t, 6, qty, 1e-9)
	require.Len(t, repo.movements, 1)
}

func TestSaleFromEmptyLocationFails(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.PostSale(context.Background(), SaleInput{CompanyID: testCompany, ProductID: testProduct, Qty: 1, Location: Location{BranchID: 3}})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Empty(t, repo.records)
	require.Empty(t, repo.movements)
}

func TestTransferConservesTotalQuantity(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()
	w1 := Location{WarehouseID: 1}
	w2 := Location{WarehouseID: 2}

	_, err := svc.PostReceipt(ctx, ReceiptInput{CompanyID: testCompany, ProductID: testProduct, Qty: 20, UnitCost: 5, Location: w1})
	require.NoError(t, err)

	totalBefore, err := svc.GetTotalQuantity(ctx, testCompany, testProduct)
	require.NoError(t, err)

	m, err := svc.PostTransfer(ctx, TransferInput{CompanyID: testCompany, ProductID: testProduct, Qty: 8, From: w1, To: w2})
	require.NoError(t, err)
	require.Equal(t, MovementTransfer, m.Type)
	require.Equal(t, w1, *m.From)
	require.Equal(t, w2, *m.To)

	srcQty, err := svc.GetQuantity(ctx, testCompany, testProduct, w1)
	require.NoError(t, err)
	dstQty, err := svc.GetQuantity(ctx, testCompany, testProduct, w2)
	require.NoError(t, err)
	require.InDelta(t, 12, srcQty, 1e-9)
	require.InDelta(t, 8, dstQty, 1e-9)

	totalAfter, err := svc.GetTotalQuantity(ctx, testCompany, testProduct)
	require.NoError(t, err)
	require.InDelta(t, totalBefore, totalAfter, 1e-9)

	_, err = svc.PostTransfer(ctx, TransferInput{CompanyID: testCompany, ProductID: testProduct, Qty: 50, From: w1, To: w2})
	require.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.PostTransfer(ctx, TransferInput{CompanyID: testCompany, ProductID: testProduct, Qty: 1, From: w1, To: w1})
	require.ErrorIs(t, err, ErrSameLocation)
}

func TestAdjustmentLogsSignedDelta(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()
	w1 := Location{WarehouseID: 1}

	m, posted, err := svc.PostAdjustment(ctx, AdjustmentInput{CompanyID: testCompany, ProductID: testProduct, TargetQty: 15, Location: w1, Reason: "initial count"})
	require.NoError(t, err)
	require.True(t, posted)
	require.Equal(t, MovementIn, m.Type)
	require.InDelta(t, 15, m.Qty, 1e-9)
	require.NotEmpty(t, m.RefID)

	m, posted, err = svc.PostAdjustment(ctx, AdjustmentInput{CompanyID: testCompany, ProductID: testProduct, TargetQty: 9, Location: w1, Reason: "shrinkage"})
	require.NoError(t, err)
	require.True(t, posted)
	require.Equal(t, MovementOut, m.Type)
	require.InDelta(t, 6, m.Qty, 1e-9)

	qty, err := svc.GetQuantity(ctx, testCompany, testProduct, w1)
	require.NoError(t, err)
	require.InDelta(t, 9, qty, 1e-9)
}

func TestAdjustmentToSameTargetIsElided(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()
	w1 := Location{WarehouseID: 1}

	_, posted, err := svc.PostAdjustment(ctx, AdjustmentInput{CompanyID: testCompany, ProductID: testProduct, TargetQty: 15, Location: w1})
	require.NoError(t, err)
	require.True(t, posted)

	_, posted, err = svc.PostAdjustment(ctx, AdjustmentInput{CompanyID: testCompany, ProductID: testProduct, TargetQty: 15, Location: w1})
	require.NoError(t, err)
	require.False(t, posted)
	require.Len(t, repo.movements, 1)
}

func TestAdjustmentToZeroMaterialisesRecord(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()
	w1 := Location{WarehouseID: 1}

	_, posted, err := svc.PostAdjustment(ctx, AdjustmentInput{CompanyID: testCompany, ProductID: testProduct, TargetQty: 0, Location: w1})
	require.NoError(t, err)
	require.False(t, posted)
	require.Empty(t, repo.movements)
	// The record now exists with an explicit zero.
	require.Contains(t, repo.records, recordKey(testCompany, testProduct, w1))
}

func TestNegativeAdjustmentTargetRejected(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil, nil)

	_, _, err := svc.PostAdjustment(context.Background(), AdjustmentInput{CompanyID: testCompany, ProductID: testProduct, TargetQty: -1, Location: Location{}})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestTotalQuantityIsLocationSum(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()
	locations := []Location{{}, {BranchID: 1}, {WarehouseID: 2}, {BranchID: 1, WarehouseID: 2}}

	var sum float64
	for i, loc := range locations {
		qty := float64((i + 1) * 3)
		_, err := svc.PostReceipt(ctx, ReceiptInput{CompanyID: testCompany, ProductID: testProduct, Qty: qty, UnitCost: 1, Location: loc})
		require.NoError(t, err)
		sum += qty
	}

	total, err := svc.GetTotalQuantity(ctx, testCompany, testProduct)
	require.NoError(t, err)
	require.InDelta(t, sum, total, 1e-9)

	for i, loc := range locations {
		qty, err := svc.GetQuantity(ctx, testCompany, testProduct, loc)
		require.NoError(t, err)
		require.InDelta(t, float64((i+1)*3), qty, 1e-9)
	}
}

// Mirrors the end-to-end lifecycle: receipt, sale, failed sale, transfer,
// absolute adjustment, with the movement log explaining every delta.
func TestLedgerLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()
	w1 := Location{WarehouseID: 1}
	w2 := Location{WarehouseID: 2}

	_, err := svc.PostReceipt(ctx, ReceiptInput{CompanyID: testCompany, ProductID: testProduct, Qty: 10, UnitCost: 3, Location: w1})
	require.NoError(t, err)
	qty, _ := svc.GetQuantity(ctx, testCompany, testProduct, w1)
	require.InDelta(t, 10, qty, 1e-9)

	_, err = svc.PostSale(ctx, SaleInput{CompanyID: testCompany, ProductID: testProduct, Qty: 4, UnitPrice: 7, Location: w1})
	require.NoError(t, err)
	qty, _ = svc.GetQuantity(ctx, testCompany, testProduct, w1)
	require.InDelta(t, 6, qty, 1e-9)
	require.Len(t, repo.movements, 2)

	_, err = svc.PostSale(ctx, SaleInput{CompanyID: testCompany, ProductID: testProduct, Qty: 10, UnitPrice: 7, Location: w1})
	require.ErrorIs(t, err, ErrInsufficientStock)
	qty, _ = svc.GetQuantity(ctx, testCompany, testProduct, w1)
	require.InDelta(t, 6, qty, 1e-9)
	require.Len(t, repo.movements, 2)

	_, err = svc.PostTransfer(ctx, TransferInput{CompanyID: testCompany, ProductID: testProduct, Qty: 6, From: w1, To: w2})
	require.NoError(t, err)
	qty, _ = svc.GetQuantity(ctx, testCompany, testProduct, w1)
	require.InDelta(t, 0, qty, 1e-9)
	qty, _ = svc.GetQuantity(ctx, testCompany, testProduct, w2)
	require.InDelta(t, 6, qty, 1e-9)
	require.Len(t, repo.movements, 3)

	m, posted, err := svc.PostAdjustment(ctx, AdjustmentInput{CompanyID: testCompany, ProductID: testProduct, TargetQty: 20, Location: w2})
	require.NoError(t, err)
	require.True(t, posted)
	require.Equal(t, MovementIn, m.Type)
	require.InDelta(t, 14, m.Qty, 1e-9)
	qty, _ = svc.GetQuantity(ctx, testCompany, testProduct, w2)
	require.InDelta(t, 20, qty, 1e-9)
	require.Len(t, repo.movements, 4)

	history, err := svc.GetMovementHistory(ctx, MovementFilter{CompanyID: testCompany, ProductID: testProduct})
	require.NoError(t, err)
	require.Len(t, history, 4)
	// Newest first.
	require.Equal(t, MovementIn, history[0].Type)
	require.Equal(t, MovementTransfer, history[1].Type)
}

func TestCompanyIsolation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()
	w1 := Location{WarehouseID: 1}

	_, err := svc.PostReceipt(ctx, ReceiptInput{CompanyID: 1, ProductID: testProduct, Qty: 10, UnitCost: 1, Location: w1})
	require.NoError(t, err)

	qty, err := svc.GetQuantity(ctx, 2, testProduct, w1)
	require.NoError(t, err)
	require.Zero(t, qty)

	_, err = svc.PostSale(ctx, SaleInput{CompanyID: 2, ProductID: testProduct, Qty: 1, Location: w1})
	require.ErrorIs(t, err, ErrInsufficientStock)
}

type countingMetrics struct {
	byType map[string]int
}

func (c *countingMetrics) ObserveMovement(movementType string) {
	if c.byType == nil {
		c.byType = make(map[string]int)
	}
	c.byType[movementType]++
}

func TestPostingsObserveMovementMetric(t *testing.T) {
	repo := newMemoryRepo()
	metrics := &countingMetrics{}
	svc := NewService(repo, nil, metrics, nil)
	ctx := context.Background()
	w1 := Location{WarehouseID: 1}
	w2 := Location{WarehouseID: 2}

	_, err := svc.PostReceipt(ctx, ReceiptInput{CompanyID: testCompany, ProductID: testProduct, Qty: 10, UnitCost: 2, Location: w1})
	require.NoError(t, err)
	_, err = svc.PostSale(ctx, SaleInput{CompanyID: testCompany, ProductID: testProduct, Qty: 3, Location: w1})
	require.NoError(t, err)
	_, err = svc.PostTransfer(ctx, TransferInput{CompanyID: testCompany, ProductID: testProduct, Qty: 2, From: w1, To: w2})
	require.NoError(t, err)

	require.Equal(t, 1, metrics.byType[string(MovementIn)])
	require.Equal(t, 1, metrics.byType[string(MovementOut)])
	require.Equal(t, 1, metrics.byType[string(MovementTransfer)])

	// A rejected posting writes nothing and counts nothing.
	_, err = svc.PostSale(ctx, SaleInput{CompanyID: testCompany, ProductID: testProduct, Qty: 100, Location: w1})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 1, metrics.byType[string(MovementOut)])
}
