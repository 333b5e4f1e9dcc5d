package warehouses

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Warehouse, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Warehouse, error) {
	if id <= 0 {
		return Warehouse{}, errors.New("invalid warehouse ID")
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	if err := validate(warehouse); err != nil {
		return Warehouse{}, err
	}
	return s.repo.Create(ctx, warehouse)
}

func (s *Service) Update(ctx context.Context, warehouse Warehouse) error {
	if warehouse.ID <= 0 {
		return errors.New("invalid warehouse ID")
	}
	if err := validate(warehouse); err != nil {
		return err
	}
	return s.repo.Update(ctx, warehouse)
}

func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	if id <= 0 {
		return errors.New("invalid warehouse ID")
	}
	return s.repo.Delete(ctx, companyID, id)
}

func validate(wh Warehouse) error {
	if wh.CompanyID == 0 {
		return errors.New("warehouse company is required")
	}
	if strings.TrimSpace(wh.Code) == "" {
		return errors.New("warehouse code is required")
	}
	if strings.TrimSpace(wh.Name) == "" {
		return errors.New("warehouse name is required")
	}
	if wh.BranchID < 0 {
		return errors.New("invalid branch ID")
	}
	return nil
}
