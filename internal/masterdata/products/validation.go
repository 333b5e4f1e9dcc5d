package products

import (
	"errors"
	"strings"
)

func (s *Service) validate(p Product) error {
	if p.CompanyID == 0 {
		return errors.New("product company is required")
	}
	if strings.TrimSpace(p.SKU) == "" {
		return errors.New("product sku is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name is required")
	}
	if strings.TrimSpace(p.Unit) == "" {
		return errors.New("product unit is required")
	}
	if p.Cost < 0 || p.Price < 0 {
		return errors.New("product prices must be >= 0")
	}
	if p.TaxPercent < 0 || p.TaxPercent > 100 {
		return errors.New("product tax percent must be between 0 and 100")
	}
	if p.MinQty < 0 {
		return errors.New("product min quantity must be >= 0")
	}
	return nil
}
