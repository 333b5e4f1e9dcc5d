package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/stocksense/stocksense/internal/inventory"
)

var ErrInvalidCompany = errors.New("reports: company is required")

// ValuationLine is one product's monetary stock position.
type ValuationLine struct {
	ProductID        int64                 `json:"product_id"`
	SKU              string                `json:"sku"`
	Name             string                `json:"name"`
	Unit             string                `json:"unit"`
	TotalQty         float64               `json:"total_qty"`
	StockValue       decimal.Decimal       `json:"stock_value"`
	PotentialRevenue decimal.Decimal       `json:"potential_revenue"`
	Status           inventory.StockStatus `json:"status"`
}

// ValuationSummary is the company-wide stock valuation report.
type ValuationSummary struct {
	GeneratedAt      time.Time       `json:"generated_at"`
	ProductCount     int             `json:"product_count"`
	TotalQty         float64         `json:"total_qty"`
	StockValue       decimal.Decimal `json:"stock_value"`
	PotentialRevenue decimal.Decimal `json:"potential_revenue"`
	OutOfStock       int             `json:"out_of_stock"`
	LowStock         int             `json:"low_stock"`
	Lines            []ValuationLine `json:"lines"`
}

type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// ValuationSummary builds the valuation report, served from Redis when
// fresh. Concurrent cache misses for the same company collapse into one
// database pass.
func (s *Service) ValuationSummary(ctx context.Context, companyID int64) (ValuationSummary, error) {
	if companyID == 0 {
		return ValuationSummary{}, ErrInvalidCompany
	}
	key, err := s.cache.BuildKey(ctx, "reports", "valuation", fmt.Sprintf("%d", companyID))
	if err != nil {
		return ValuationSummary{}, err
	}
	var summary ValuationSummary
	err = s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (any, error) {
		v, err, _ := s.singleflight(ctx, key, func(ctx context.Context) (any, error) {
			return s.buildValuation(ctx, companyID)
		})
		return v, err
	})
	return summary, err
}

func (s *Service) buildValuation(ctx context.Context, companyID int64) (ValuationSummary, error) {
	stocks, err := s.repo.ProductStocks(ctx, companyID)
	if err != nil {
		return ValuationSummary{}, err
	}
	summary := ValuationSummary{
		GeneratedAt:      time.Now().UTC(),
		ProductCount:     len(stocks),
		StockValue:       decimal.Zero,
		PotentialRevenue: decimal.Zero,
	}
	for _, ps := range stocks {
		v := inventory.ComputeValuation(ps.TotalQty, ps.Cost, ps.Price, ps.MinQty)
		summary.TotalQty += v.TotalQty
		summary.StockValue = summary.StockValue.Add(v.StockValue)
		summary.PotentialRevenue = summary.PotentialRevenue.Add(v.PotentialRevenue)
		switch v.Status {
		case inventory.StatusOutOfStock:
			summary.OutOfStock++
		case inventory.StatusLowStock:
			summary.LowStock++
		}
		summary.Lines = append(summary.Lines, ValuationLine{
			ProductID:        ps.ProductID,
			SKU:              ps.SKU,
			Name:             ps.Name,
			Unit:             ps.Unit,
			TotalQty:         v.TotalQty,
			StockValue:       v.StockValue,
			PotentialRevenue: v.PotentialRevenue,
			Status:           v.Status,
		})
	}
	return summary, nil
}

// LowStock lists products at or below their reorder threshold, out of
// stock first.
func (s *Service) LowStock(ctx context.Context, companyID int64) ([]ValuationLine, error) {
	summary, err := s.ValuationSummary(ctx, companyID)
	if err != nil {
		return nil, err
	}
	var out, low []ValuationLine
	for _, line := range summary.Lines {
		switch line.Status {
		case inventory.StatusOutOfStock:
			out = append(out, line)
		case inventory.StatusLowStock:
			low = append(low, line)
		}
	}
	return append(out, low...), nil
}

// TopSellers ranks products sold since the cutoff by revenue, with
// quantity as the tie break.
func (s *Service) TopSellers(ctx context.Context, companyID int64, since time.Time, limit int) ([]TopSellerRow, error) {
	if companyID == 0 {
		return nil, ErrInvalidCompany
	}
	if limit <= 0 {
		limit = 10
	}
	key, err := s.cache.BuildKey(ctx, "reports", "topsellers",
		fmt.Sprintf("%d:%s:%d", companyID, since.UTC().Format("2006-01-02"), limit))
	if err != nil {
		return nil, err
	}
	var rows []TopSellerRow
	err = s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (any, error) {
		return s.repo.TopSellers(ctx, companyID, since, limit)
	})
	return rows, err
}

// RecentMovements is the uncached company-wide movement feed.
func (s *Service) RecentMovements(ctx context.Context, companyID int64, limit int) ([]MovementRow, error) {
	if companyID == 0 {
		return nil, ErrInvalidCompany
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.RecentMovements(ctx, companyID, limit)
}

// Invalidate bumps the cache version so the next read rebuilds.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// WarmCompanies refreshes the valuation cache for every company, used by
// the background warmup job.
func (s *Service) WarmCompanies(ctx context.Context) (int, error) {
	ids, err := s.repo.CompanyIDs(ctx)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if _, err := s.ValuationSummary(ctx, id); err != nil {
			return 0, fmt.Errorf("warm company %d: %w", id, err)
		}
	}
	return len(ids), nil
}

func (s *Service) singleflight(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	resultChan := s.group.DoChan(key, func() (any, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
