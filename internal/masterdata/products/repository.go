package products

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stocksense/stocksense/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, companyID, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) error
	SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error
	Restore(ctx context.Context, companyID, id int64) error
	HardDelete(ctx context.Context, companyID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id, company_id, sku, barcode, name, unit, cost, price, tax_percent, min_qty, is_active, deleted_at, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE company_id = $1 AND deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM products WHERE company_id = $1 AND deleted_at IS NULL`
	args := []any{filters.CompanyID}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND (name ILIKE $` + strconv.Itoa(len(args)) + ` OR sku ILIKE $` + strconv.Itoa(len(args)) + `)`
		query += cond
		countQuery += cond
	}
	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		cond := ` AND is_active = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE company_id = $1 AND id = $2`
	row := r.db.QueryRow(ctx, query, companyID, id)
	p, err := scanProductRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	query := `INSERT INTO products (company_id, sku, barcode, name, unit, cost, price, tax_percent, min_qty, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, product.CompanyID, product.SKU, product.Barcode, product.Name, product.Unit,
		product.Cost, product.Price, product.TaxPercent, product.MinQty, product.IsActive, now).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, shared.ErrDuplicateCode
		}
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, product Product) error {
	query := `UPDATE products SET sku = $1, barcode = $2, name = $3, unit = $4, cost = $5, price = $6, tax_percent = $7, min_qty = $8, is_active = $9, updated_at = $10
		WHERE company_id = $11 AND id = $12 AND deleted_at IS NULL`
	tag, err := r.db.Exec(ctx, query, product.SKU, product.Barcode, product.Name, product.Unit, product.Cost,
		product.Price, product.TaxPercent, product.MinQty, product.IsActive, time.Now(), product.CompanyID, product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateCode
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error {
	query := `UPDATE products SET is_active = FALSE, deleted_at = $1, updated_at = $1 WHERE company_id = $2 AND id = $3 AND deleted_at IS NULL`
	tag, err := r.db.Exec(ctx, query, at, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Restore(ctx context.Context, companyID, id int64) error {
	query := `UPDATE products SET is_active = TRUE, deleted_at = NULL, updated_at = NOW() WHERE company_id = $1 AND id = $2 AND deleted_at IS NOT NULL`
	tag, err := r.db.Exec(ctx, query, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) HardDelete(ctx context.Context, companyID, id int64) error {
	query := `DELETE FROM products WHERE company_id = $1 AND id = $2 AND deleted_at IS NOT NULL`
	tag, err := r.db.Exec(ctx, query, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotDeleted
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProduct(rows pgx.Rows) (Product, error) {
	return scanProductRow(rows)
}

func scanProductRow(row scannable) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Barcode, &p.Name, &p.Unit, &p.Cost, &p.Price,
		&p.TaxPercent, &p.MinQty, &p.IsActive, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "sku":
		return "sku " + dir
	case "price":
		return "price " + dir
	case "cost":
		return "cost " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
