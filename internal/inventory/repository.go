package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stocksense/stocksense/internal/platform/db"
)

// Repository persists the stock ledger in PostgreSQL. One row per
// (company, product, location) key; movements are insert-only.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	GetRecordForUpdate(ctx context.Context, companyID, productID int64, loc Location) (StockRecord, error)
	UpsertRecord(ctx context.Context, record StockRecord) error
	InsertMovement(ctx context.Context, movement Movement) (int64, error)
}

// ErrRecordNotFound indicates a missing stock record row.
var ErrRecordNotFound = errors.New("inventory: stock record not found")

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// GetQuantity returns quantity on hand for an exact key, zero when absent.
func (r *Repository) GetQuantity(ctx context.Context, companyID, productID int64, loc Location) (float64, error) {
	const query = `SELECT qty FROM stock_records WHERE company_id = $1 AND product_id = $2 AND branch_id = $3 AND warehouse_id = $4`
	var qty pgtype.Numeric
	err := r.pool.QueryRow(ctx, query, companyID, productID, loc.BranchID, loc.WarehouseID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return numericToFloat(qty), nil
}

// GetTotalQuantity sums quantity across all location records of a product.
func (r *Repository) GetTotalQuantity(ctx context.Context, companyID, productID int64) (float64, error) {
	const query = `SELECT COALESCE(SUM(qty), 0) FROM stock_records WHERE company_id = $1 AND product_id = $2`
	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, companyID, productID).Scan(&total); err != nil {
		return 0, err
	}
	return numericToFloat(total), nil
}

// ListMovements returns the movement log for a product, newest first.
func (r *Repository) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	query := `SELECT id, company_id, product_id, mv_type, qty, reason, from_branch_id, from_warehouse_id, to_branch_id, to_warehouse_id, ref_id, actor_id, posted_at
		FROM inventory_movements WHERE company_id = $1 AND product_id = $2`
	args := []any{filter.CompanyID, filter.ProductID}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND posted_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND posted_at <= $%d", len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY posted_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *txRepo) GetRecordForUpdate(ctx context.Context, companyID, productID int64, loc Location) (StockRecord, error) {
	const query = `SELECT id, company_id, product_id, branch_id, warehouse_id, qty, updated_at
		FROM stock_records WHERE company_id = $1 AND product_id = $2 AND branch_id = $3 AND warehouse_id = $4 FOR UPDATE`
	var record StockRecord
	var qty pgtype.Numeric
	var updatedAt pgtype.Timestamptz
	err := r.tx.QueryRow(ctx, query, companyID, productID, loc.BranchID, loc.WarehouseID).Scan(
		&record.ID, &record.CompanyID, &record.ProductID, &record.Location.BranchID, &record.Location.WarehouseID, &qty, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockRecord{}, ErrRecordNotFound
		}
		return StockRecord{}, err
	}
	record.Qty = numericToFloat(qty)
	record.UpdatedAt = updatedAt.Time
	return record, nil
}

func (r *txRepo) UpsertRecord(ctx context.Context, record StockRecord) error {
	const query = `INSERT INTO stock_records (company_id, product_id, branch_id, warehouse_id, qty, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (company_id, product_id, branch_id, warehouse_id)
		DO UPDATE SET qty = EXCLUDED.qty, updated_at = NOW()`
	_, err := r.tx.Exec(ctx, query, record.CompanyID, record.ProductID, record.Location.BranchID, record.Location.WarehouseID, floatToNumeric(record.Qty))
	return err
}

func (r *txRepo) InsertMovement(ctx context.Context, movement Movement) (int64, error) {
	const query = `INSERT INTO inventory_movements (company_id, product_id, mv_type, qty, reason, from_branch_id, from_warehouse_id, to_branch_id, to_warehouse_id, ref_id, actor_id, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	fromBranch, fromWarehouse := locationColumns(movement.From)
	toBranch, toWarehouse := locationColumns(movement.To)
	var id int64
	err := r.tx.QueryRow(ctx, query,
		movement.CompanyID,
		movement.ProductID,
		string(movement.Type),
		floatToNumeric(movement.Qty),
		movement.Reason,
		fromBranch,
		fromWarehouse,
		toBranch,
		toWarehouse,
		pgtype.UUID{Bytes: parseUUID(movement.RefID), Valid: movement.RefID != ""},
		pgtype.Int8{Int64: movement.ActorID, Valid: movement.ActorID != 0},
		pgtype.Timestamptz{Time: movement.PostedAt, Valid: true},
	).Scan(&id)
	return id, err
}

func scanMovement(rows pgx.Rows) (Movement, error) {
	var m Movement
	var qty pgtype.Numeric
	var fromBranch, fromWarehouse, toBranch, toWarehouse, actorID pgtype.Int8
	var refID pgtype.UUID
	var postedAt pgtype.Timestamptz
	err := rows.Scan(&m.ID, &m.CompanyID, &m.ProductID, &m.Type, &qty, &m.Reason,
		&fromBranch, &fromWarehouse, &toBranch, &toWarehouse, &refID, &actorID, &postedAt)
	if err != nil {
		return Movement{}, err
	}
	m.Qty = numericToFloat(qty)
	m.From = locationFromColumns(fromBranch, fromWarehouse)
	m.To = locationFromColumns(toBranch, toWarehouse)
	if refID.Valid {
		m.RefID = uuid.UUID(refID.Bytes).String()
	}
	m.ActorID = actorID.Int64
	m.PostedAt = postedAt.Time
	return m, nil
}

// locationColumns splits an optional location into nullable columns. The
// distinction between "no location side" (nil) and "company-wide side"
// (zero Location) is kept: company-wide stores zeros, absent stores NULL.
func locationColumns(loc *Location) (pgtype.Int8, pgtype.Int8) {
	if loc == nil {
		return pgtype.Int8{}, pgtype.Int8{}
	}
	return pgtype.Int8{Int64: loc.BranchID, Valid: true}, pgtype.Int8{Int64: loc.WarehouseID, Valid: true}
}

func locationFromColumns(branch, warehouse pgtype.Int8) *Location {
	if !branch.Valid && !warehouse.Valid {
		return nil
	}
	return &Location{BranchID: branch.Int64, WarehouseID: warehouse.Int64}
}

func parseUUID(s string) [16]byte {
	if s == "" {
		return [16]byte{}
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return [16]byte{}
	}
	return id
}

func numericToFloat(n pgtype.Numeric) float64 {
	f, _ := n.Float64Value()
	return f.Float64
}

func floatToNumeric(f float64) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(fmt.Sprintf("%f", f))
	return n
}
