package branches

import (
	"context"
	"errors"
	"strings"

	"github.com/stocksense/stocksense/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Branch, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Branch, error) {
	if id <= 0 {
		return Branch{}, errors.New("invalid branch ID")
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, branch Branch) (Branch, error) {
	if err := validate(branch); err != nil {
		return Branch{}, err
	}
	return s.repo.Create(ctx, branch)
}

func (s *Service) Update(ctx context.Context, branch Branch) error {
	if branch.ID <= 0 {
		return errors.New("invalid branch ID")
	}
	if err := validate(branch); err != nil {
		return err
	}
	return s.repo.Update(ctx, branch)
}

func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	if id <= 0 {
		return errors.New("invalid branch ID")
	}
	return s.repo.Delete(ctx, companyID, id)
}

func validate(b Branch) error {
	if b.CompanyID == 0 {
		return errors.New("branch company is required")
	}
	if strings.TrimSpace(b.Code) == "" {
		return errors.New("branch code is required")
	}
	if strings.TrimSpace(b.Name) == "" {
		return errors.New("branch name is required")
	}
	return nil
}
