package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSaleNotFound = errors.New("sales: sale not found")

type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
	GenerateNumber(ctx context.Context, companyID int64, date time.Time) (string, error)
	Create(ctx context.Context, sale Sale) (int64, error)
	InsertLine(ctx context.Context, line SaleLine) (int64, error)
	List(ctx context.Context, companyID int64, page, limit int) ([]Sale, int, error)
	Get(ctx context.Context, companyID, id int64) (Sale, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgRepository{pool: r.pool, tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgRepository) GenerateNumber(ctx context.Context, companyID int64, date time.Time) (string, error) {
	var seq int
	err := r.q().QueryRow(ctx,
		`SELECT COUNT(*) + 1 FROM sales WHERE company_id = $1 AND date_trunc('month', created_at) = date_trunc('month', $2::timestamptz)`,
		companyID, date,
	).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SAL-%s-%04d", date.Format("200601"), seq), nil
}

func (r *pgRepository) Create(ctx context.Context, sale Sale) (int64, error) {
	var id int64
	err := r.q().QueryRow(ctx,
		`INSERT INTO sales (company_id, ref_id, number, customer_name, branch_id, warehouse_id, subtotal, tax_amount, total_amount, notes, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`,
		sale.CompanyID, sale.RefID, sale.Number, sale.CustomerName, sale.Location.BranchID, sale.Location.WarehouseID,
		sale.Subtotal, sale.TaxAmount, sale.TotalAmount, sale.Notes, sale.CreatedBy, sale.CreatedAt,
	).Scan(&id)
	return id, err
}

func (r *pgRepository) InsertLine(ctx context.Context, line SaleLine) (int64, error) {
	var id int64
	err := r.q().QueryRow(ctx,
		`INSERT INTO sale_lines (sale_id, product_id, qty, unit_price, tax_percent, tax_amount, line_total)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		line.SaleID, line.ProductID, line.Qty, line.UnitPrice, line.TaxPercent, line.TaxAmount, line.LineTotal,
	).Scan(&id)
	return id, err
}

func (r *pgRepository) List(ctx context.Context, companyID int64, page, limit int) ([]Sale, int, error) {
	var total int
	if err := r.q().QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, company_id, ref_id, number, customer_name, branch_id, warehouse_id, subtotal, tax_amount, total_amount, notes, created_by, created_at
		FROM sales WHERE company_id = $1 ORDER BY created_at DESC, id DESC`
	args := []any{companyID}
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		offset := (page - 1) * limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.q().Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, companyID, id int64) (Sale, error) {
	row := r.q().QueryRow(ctx,
		`SELECT id, company_id, ref_id, number, customer_name, branch_id, warehouse_id, subtotal, tax_amount, total_amount, notes, created_by, created_at
		 FROM sales WHERE company_id = $1 AND id = $2`, companyID, id)
	sale, err := scanSale(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, ErrSaleNotFound
	}
	if err != nil {
		return Sale{}, err
	}

	rows, err := r.q().Query(ctx,
		`SELECT id, sale_id, product_id, qty, unit_price, tax_percent, tax_amount, line_total
		 FROM sale_lines WHERE sale_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return Sale{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Qty, &l.UnitPrice, &l.TaxPercent, &l.TaxAmount, &l.LineTotal); err != nil {
			return Sale{}, err
		}
		sale.Lines = append(sale.Lines, l)
	}
	return sale, rows.Err()
}

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.CompanyID, &s.RefID, &s.Number, &s.CustomerName,
		&s.Location.BranchID, &s.Location.WarehouseID,
		&s.Subtotal, &s.TaxAmount, &s.TotalAmount, &s.Notes, &s.CreatedBy, &s.CreatedAt)
	return s, err
}
