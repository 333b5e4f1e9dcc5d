package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, user User) (User, error)
	GetByEmail(ctx context.Context, companyID int64, email string) (User, error)
	Get(ctx context.Context, companyID, id int64) (User, error)
	List(ctx context.Context, companyID int64) ([]User, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user User) (User, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (company_id, email, name, password_hash, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`,
		user.CompanyID, user.Email, user.Name, user.PasswordHash, user.IsActive, now,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return user, nil
}

func (r *repository) GetByEmail(ctx context.Context, companyID int64, email string) (User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, company_id, email, name, password_hash, is_active, created_at, updated_at
		 FROM users WHERE company_id = $1 AND email = $2`, companyID, email)
	return scanUser(row)
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, company_id, email, name, password_hash, is_active, created_at, updated_at
		 FROM users WHERE company_id = $1 AND id = $2`, companyID, id)
	return scanUser(row)
}

func (r *repository) List(ctx context.Context, companyID int64) ([]User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, company_id, email, name, password_hash, is_active, created_at, updated_at
		 FROM users WHERE company_id = $1 ORDER BY name ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.CompanyID, &u.Email, &u.Name, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}
