package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductStock is one product's aggregated position used as input for
// valuation and low-stock reporting.
type ProductStock struct {
	ProductID int64   `json:"product_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Unit      string  `json:"unit"`
	Cost      float64 `json:"cost"`
	Price     float64 `json:"price"`
	MinQty    float64 `json:"min_qty"`
	TotalQty  float64 `json:"total_qty"`
}

// TopSellerRow aggregates sold quantity and revenue per product.
type TopSellerRow struct {
	ProductID int64   `json:"product_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Qty       float64 `json:"qty"`
	Revenue   float64 `json:"revenue"`
}

// MovementRow is a flattened company-wide movement log entry.
type MovementRow struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	SKU       string    `json:"sku"`
	Type      string    `json:"type"`
	Qty       float64   `json:"qty"`
	Reason    string    `json:"reason"`
	PostedAt  time.Time `json:"posted_at"`
}

type Repository interface {
	ProductStocks(ctx context.Context, companyID int64) ([]ProductStock, error)
	TopSellers(ctx context.Context, companyID int64, since time.Time, limit int) ([]TopSellerRow, error)
	RecentMovements(ctx context.Context, companyID int64, limit int) ([]MovementRow, error)
	CompanyIDs(ctx context.Context) ([]int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// ProductStocks joins active products against the stock ledger. Products
// with no stock records report zero, matching the ledger's read
// semantics for untouched keys.
func (r *repository) ProductStocks(ctx context.Context, companyID int64) ([]ProductStock, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.sku, p.name, p.unit, p.cost, p.price, p.min_qty,
		       COALESCE(SUM(s.qty), 0) AS total_qty
		FROM products p
		LEFT JOIN stock_records s ON s.company_id = p.company_id AND s.product_id = p.id
		WHERE p.company_id = $1 AND p.deleted_at IS NULL AND p.is_active
		GROUP BY p.id, p.sku, p.name, p.unit, p.cost, p.price, p.min_qty
		ORDER BY p.name ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductStock
	for rows.Next() {
		var ps ProductStock
		if err := rows.Scan(&ps.ProductID, &ps.SKU, &ps.Name, &ps.Unit, &ps.Cost, &ps.Price, &ps.MinQty, &ps.TotalQty); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

// TopSellers ranks products by revenue, then quantity sold.
func (r *repository) TopSellers(ctx context.Context, companyID int64, since time.Time, limit int) ([]TopSellerRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT l.product_id, p.sku, p.name, SUM(l.qty) AS qty, SUM(l.line_total) AS revenue
		FROM sale_lines l
		JOIN sales s ON s.id = l.sale_id
		JOIN products p ON p.id = l.product_id
		WHERE s.company_id = $1 AND s.created_at >= $2
		GROUP BY l.product_id, p.sku, p.name
		ORDER BY revenue DESC, qty DESC
		LIMIT $3`, companyID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopSellerRow
	for rows.Next() {
		var ts TopSellerRow
		if err := rows.Scan(&ts.ProductID, &ts.SKU, &ts.Name, &ts.Qty, &ts.Revenue); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (r *repository) RecentMovements(ctx context.Context, companyID int64, limit int) ([]MovementRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.product_id, p.sku, m.mv_type, m.qty, m.reason, m.posted_at
		FROM inventory_movements m
		JOIN products p ON p.id = m.product_id
		WHERE m.company_id = $1
		ORDER BY m.posted_at DESC, m.id DESC
		LIMIT $2`, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MovementRow
	for rows.Next() {
		var mr MovementRow
		if err := rows.Scan(&mr.ID, &mr.ProductID, &mr.SKU, &mr.Type, &mr.Qty, &mr.Reason, &mr.PostedAt); err != nil {
			return nil, err
		}
		out = append(out, mr)
	}
	return out, rows.Err()
}

// CompanyIDs lists companies with active products, used by background
// cache warmup.
func (r *repository) CompanyIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT company_id FROM products WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
