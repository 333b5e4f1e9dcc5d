package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/stocksense/stocksense/internal/inventory"
)

type fakeRepo struct {
	stocks     []ProductStock
	sellers    []TopSellerRow
	movements  []MovementRow
	companies  []int64
	stockCalls int
}

func (f *fakeRepo) ProductStocks(context.Context, int64) ([]ProductStock, error) {
	f.stockCalls++
	return f.stocks, nil
}

func (f *fakeRepo) TopSellers(context.Context, int64, time.Time, int) ([]TopSellerRow, error) {
	return f.sellers, nil
}

func (f *fakeRepo) RecentMovements(context.Context, int64, int) ([]MovementRow, error) {
	return f.movements, nil
}

func (f *fakeRepo) CompanyIDs(context.Context) ([]int64, error) {
	return f.companies, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestValuationSummaryAggregates(t *testing.T) {
	repo := &fakeRepo{stocks: []ProductStock{
		{ProductID: 1, SKU: "A", Name: "Apple", Cost: 2, Price: 3, MinQty: 5, TotalQty: 10},
		{ProductID: 2, SKU: "B", Name: "Banana", Cost: 1, Price: 2, MinQty: 5, TotalQty: 4},
		{ProductID: 3, SKU: "C", Name: "Cherry", Cost: 4, Price: 8, MinQty: 5, TotalQty: 0},
	}}
	svc := NewService(repo, newTestCache(t))

	summary, err := svc.ValuationSummary(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 3, summary.ProductCount)
	require.InDelta(t, 14, summary.TotalQty, 1e-9)
	require.Equal(t, "24", summary.StockValue.String())
	require.Equal(t, "38", summary.PotentialRevenue.String())
	require.Equal(t, 1, summary.OutOfStock)
	require.Equal(t, 1, summary.LowStock)
	require.Equal(t, inventory.StatusNormal, summary.Lines[0].Status)
}

func TestValuationSummaryServedFromCache(t *testing.T) {
	repo := &fakeRepo{stocks: []ProductStock{{ProductID: 1, TotalQty: 1}}}
	svc := NewService(repo, newTestCache(t))

	_, err := svc.ValuationSummary(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.ValuationSummary(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, repo.stockCalls, "second read must hit the cache")
}

func TestInvalidateForcesRebuild(t *testing.T) {
	repo := &fakeRepo{stocks: []ProductStock{{ProductID: 1, TotalQty: 1}}}
	svc := NewService(repo, newTestCache(t))

	_, err := svc.ValuationSummary(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(context.Background()))

	_, err = svc.ValuationSummary(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 2, repo.stockCalls, "bumped version must miss the old key")
}

func TestLowStockOrdersOutOfStockFirst(t *testing.T) {
	repo := &fakeRepo{stocks: []ProductStock{
		{ProductID: 1, SKU: "A", MinQty: 5, TotalQty: 4},
		{ProductID: 2, SKU: "B", MinQty: 5, TotalQty: 0},
		{ProductID: 3, SKU: "C", MinQty: 5, TotalQty: 50},
	}}
	svc := NewService(repo, newTestCache(t))

	lines, err := svc.LowStock(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, inventory.StatusOutOfStock, lines[0].Status)
	require.Equal(t, inventory.StatusLowStock, lines[1].Status)
}

func TestWarmCompaniesTouchesEveryCompany(t *testing.T) {
	repo := &fakeRepo{companies: []int64{1, 2, 3}}
	svc := NewService(repo, newTestCache(t))

	n, err := svc.WarmCompanies(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 3, repo.stockCalls)
}

func TestReportsRequireCompany(t *testing.T) {
	svc := NewService(&fakeRepo{}, newTestCache(t))

	_, err := svc.ValuationSummary(context.Background(), 0)
	require.ErrorIs(t, err, ErrInvalidCompany)
	_, err = svc.TopSellers(context.Background(), 0, time.Now(), 10)
	require.ErrorIs(t, err, ErrInvalidCompany)
	_, err = svc.RecentMovements(context.Background(), 0, 10)
	require.ErrorIs(t, err, ErrInvalidCompany)
}
