package procurement

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

var ErrOrderNotFound = errors.New("procurement: purchase order not found")

type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
	GenerateNumber(ctx context.Context, companyID int64, date time.Time) (string, error)
	Create(ctx context.Context, order PurchaseOrder) (int64, error)
	InsertLine(ctx context.Context, line PurchaseOrderLine) (int64, error)
	Get(ctx context.Context, companyID, id int64) (PurchaseOrder, error)
	List(ctx context.Context, companyID int64, status OrderStatus, page, limit int) ([]PurchaseOrder, int, error)
	UpdateStatus(ctx context.Context, companyID, id int64, from, to OrderStatus, completedAt *time.Time) error
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
		`SELECT COUNT(*) + 1 FROM purchase_orders WHERE company_id = $1 AND date_trunc('month', created_at) = date_trunc('month', $2::timestamptz)`,
		companyID, date,
	).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PO-%s-%04d", date.Format("200601"), seq), nil
}

func (r *pgRepository) Create(ctx context.Context, order PurchaseOrder) (int64, error) {
	var id int64
	err := r.q().QueryRow(ctx,
		`INSERT INTO purchase_orders (company_id, number, ref_id, supplier_name, branch_id, warehouse_id, status, total_cost, notes, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11) RETURNING id`,
		order.CompanyID, order.Number, order.RefID, order.SupplierName,
		order.Location.BranchID, order.Location.WarehouseID,
		order.Status, order.TotalCost, order.Notes, order.CreatedBy, order.CreatedAt,
	).Scan(&id)
	return id, err
}

func (r *pgRepository) InsertLine(ctx context.Context, line PurchaseOrderLine) (int64, error) {
	var id int64
	err := r.q().QueryRow(ctx,
		`INSERT INTO purchase_order_lines (order_id, product_id, qty, unit_cost, line_total)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		line.OrderID, line.ProductID, line.Qty, line.UnitCost, line.LineTotal,
	).Scan(&id)
	return id, err
}

func (r *pgRepository) Get(ctx context.Context, companyID, id int64) (PurchaseOrder, error) {
	row := r.q().QueryRow(ctx,
		`SELECT id, company_id, number, ref_id, supplier_name, branch_id, warehouse_id, status, total_cost, notes, created_by, created_at, updated_at, completed_at
		 FROM purchase_orders WHERE company_id = $1 AND id = $2`, companyID, id)
	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return PurchaseOrder{}, ErrOrderNotFound
	}
	if err != nil {
		return PurchaseOrder{}, err
	}

	rows, err := r.q().Query(ctx,
		`SELECT id, order_id, product_id, qty, unit_cost, line_total
		 FROM purchase_order_lines WHERE order_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var l PurchaseOrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Qty, &l.UnitCost, &l.LineTotal); err != nil {
			return PurchaseOrder{}, err
		}
		order.Lines = append(order.Lines, l)
	}
	return order, rows.Err()
}

func (r *pgRepository) List(ctx context.Context, companyID int64, status OrderStatus, page, limit int) ([]PurchaseOrder, int, error) {
	countQuery := `SELECT COUNT(*) FROM purchase_orders WHERE company_id = $1`
	query := `SELECT id, company_id, number, ref_id, supplier_name, branch_id, warehouse_id, status, total_cost, notes, created_by, created_at, updated_at, completed_at
		FROM purchase_orders WHERE company_id = $1`
	args := []any{companyID}

	if status != "" {
		args = append(args, status)
		cond := ` AND status = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.q().QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY created_at DESC, id DESC`
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

	var out []PurchaseOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, order)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) UpdateStatus(ctx context.Context, companyID, id int64, from, to OrderStatus, completedAt *time.Time) error {
	tag, err := r.q().Exec(ctx,
		`UPDATE purchase_orders SET status = $1, completed_at = $2, updated_at = $3 WHERE company_id = $4 AND id = $5 AND status = $6`,
		to, completedAt, time.Now(), companyID, id, from,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidStatus
	}
	return nil
}

func scanOrder(row pgx.Row) (PurchaseOrder, error) {
	var o PurchaseOrder
	err := row.Scan(&o.ID, &o.CompanyID, &o.Number, &o.RefID, &o.SupplierName,
		&o.Location.BranchID, &o.Location.WarehouseID,
		&o.Status, &o.TotalCost, &o.Notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt)
	return o, err
}
