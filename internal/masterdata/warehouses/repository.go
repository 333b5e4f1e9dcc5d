package warehouses

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
	List(ctx context.Context, filters ListFilters) ([]Warehouse, int, error)
	Get(ctx context.Context, companyID, id int64) (Warehouse, error)
	Create(ctx context.Context, warehouse Warehouse) (Warehouse, error)
	Update(ctx context.Context, warehouse Warehouse) error
	Delete(ctx context.Context, companyID, id int64) error
}

// ListFilters extends the shared filters with an optional branch scope.
type ListFilters struct {
	shared.ListFilters
	BranchID int64
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Warehouse, int, error) {
	query := `SELECT id, company_id, branch_id, code, name, address, is_active, created_at, updated_at FROM warehouses WHERE company_id = $1`
	countQuery := `SELECT COUNT(*) FROM warehouses WHERE company_id = $1`
	args := []any{filters.CompanyID}

	if filters.BranchID > 0 {
		args = append(args, filters.BranchID)
		cond := ` AND branch_id = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND (name ILIKE $` + strconv.Itoa(len(args)) + ` OR code ILIKE $` + strconv.Itoa(len(args)) + `)`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
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

	var out []Warehouse
	for rows.Next() {
		var wh Warehouse
		if err := rows.Scan(&wh.ID, &wh.CompanyID, &wh.BranchID, &wh.Code, &wh.Name, &wh.Address, &wh.IsActive, &wh.CreatedAt, &wh.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, wh)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Warehouse, error) {
	query := `SELECT id, company_id, branch_id, code, name, address, is_active, created_at, updated_at FROM warehouses WHERE company_id = $1 AND id = $2`
	var wh Warehouse
	err := r.db.QueryRow(ctx, query, companyID, id).Scan(&wh.ID, &wh.CompanyID, &wh.BranchID, &wh.Code, &wh.Name, &wh.Address, &wh.IsActive, &wh.CreatedAt, &wh.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Warehouse{}, shared.ErrNotFound
	}
	return wh, err
}

func (r *repository) Create(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	query := `INSERT INTO warehouses (company_id, branch_id, code, name, address, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, warehouse.CompanyID, warehouse.BranchID, warehouse.Code, warehouse.Name, warehouse.Address, warehouse.IsActive, now).Scan(&warehouse.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Warehouse{}, shared.ErrDuplicateCode
		}
		return Warehouse{}, err
	}
	warehouse.CreatedAt = now
	warehouse.UpdatedAt = now
	return warehouse, nil
}

func (r *repository) Update(ctx context.Context, warehouse Warehouse) error {
	query := `UPDATE warehouses SET branch_id = $1, code = $2, name = $3, address = $4, is_active = $5, updated_at = $6 WHERE company_id = $7 AND id = $8`
	tag, err := r.db.Exec(ctx, query, warehouse.BranchID, warehouse.Code, warehouse.Name, warehouse.Address, warehouse.IsActive, time.Now(), warehouse.CompanyID, warehouse.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM warehouses WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
