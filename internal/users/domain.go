package users

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("users: user not found")
	ErrDuplicateEmail     = errors.New("users: email already registered")
	ErrInvalidCredentials = errors.New("users: invalid credentials")
)

// User is an actor identity. There is no session layer; handlers declare
// the acting user via headers and this store backs actor IDs and the
// credential check.
type User struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"company_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
