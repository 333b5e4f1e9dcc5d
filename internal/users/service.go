package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateUserInput struct {
	CompanyID int64
	Email     string
	Name      string
	Password  string
}

func (s *Service) Create(ctx context.Context, input CreateUserInput) (User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.CompanyID == 0 || input.Email == "" || strings.TrimSpace(input.Name) == "" {
		return User{}, errors.New("users: company, email and name are required")
	}
	if len(input.Password) < 8 {
		return User{}, errors.New("users: password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Create(ctx, User{
		CompanyID:    input.CompanyID,
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: string(hash),
		IsActive:     true,
	})
}

// Authenticate checks credentials. Missing users and wrong passwords
// return the same error so callers cannot probe for accounts.
func (s *Service) Authenticate(ctx context.Context, companyID int64, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(ctx, companyID, email)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if !user.IsActive {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (User, error) {
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) List(ctx context.Context, companyID int64) ([]User, error) {
	return s.repo.List(ctx, companyID)
}
