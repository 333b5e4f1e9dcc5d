package products

import (
	"context"
	"errors"
	"time"

	"github.com/stocksense/stocksense/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, errors.New("invalid product ID")
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, product Product) error {
	if product.ID <= 0 {
		return errors.New("invalid product ID")
	}
	if err := s.validate(product); err != nil {
		return err
	}
	return s.repo.Update(ctx, product)
}

// SoftDelete deactivates the product and stamps deleted_at. The ledger and
// movement history keep referencing it.
func (s *Service) SoftDelete(ctx context.Context, companyID, id int64) error {
	if id <= 0 {
		return errors.New("invalid product ID")
	}
	return s.repo.SoftDelete(ctx, companyID, id, time.Now())
}

func (s *Service) Restore(ctx context.Context, companyID, id int64) error {
	if id <= 0 {
		return errors.New("invalid product ID")
	}
	return s.repo.Restore(ctx, companyID, id)
}

// HardDelete removes the row permanently. Only allowed once the product is
// already soft-deleted.
func (s *Service) HardDelete(ctx context.Context, companyID, id int64) error {
	if id <= 0 {
		return errors.New("invalid product ID")
	}
	return s.repo.HardDelete(ctx, companyID, id)
}
