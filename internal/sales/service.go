package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/stocksense/stocksense/internal/inventory"
	"github.com/stocksense/stocksense/internal/shared"
)

var (
	ErrNoLines        = errors.New("sales: at least one line is required")
	ErrInvalidLine    = errors.New("sales: line quantity must be positive and price non-negative")
	ErrInvalidCompany = errors.New("sales: company is required")
)

// InventoryPort is the slice of the stock ledger the sales service needs.
type InventoryPort interface {
	GetQuantity(ctx context.Context, companyID, productID int64, loc inventory.Location) (float64, error)
	PostSale(ctx context.Context, input inventory.SaleInput) (inventory.Movement, error)
}

type Service struct {
	repo      Repository
	inventory InventoryPort
}

func NewService(repo Repository, inv InventoryPort) *Service {
	return &Service{repo: repo, inventory: inv}
}

type CreateSaleInput struct {
	CompanyID    int64
	CustomerName string
	Location     inventory.Location
	Notes        string
	ActorID      int64
	Lines        []CreateSaleLine
}

type CreateSaleLine struct {
	ProductID  int64
	Qty        float64
	UnitPrice  float64
	TaxPercent float64
}

// Create persists the sale document and posts one outbound movement per
// line. Availability is checked up front for every product so a short
// line rejects the whole sale before anything is written; the final
// check still happens under the ledger's row lock.
func (s *Service) Create(ctx context.Context, input CreateSaleInput) (Sale, error) {
	if input.CompanyID == 0 {
		return Sale{}, ErrInvalidCompany
	}
	if len(input.Lines) == 0 {
		return Sale{}, ErrNoLines
	}

	wanted := make(map[int64]float64, len(input.Lines))
	for _, line := range input.Lines {
		if line.ProductID == 0 || line.Qty <= 0 || line.UnitPrice < 0 {
			return Sale{}, ErrInvalidLine
		}
		wanted[line.ProductID] += line.Qty
	}
	for productID, qty := range wanted {
		available, err := s.inventory.GetQuantity(ctx, input.CompanyID, productID, input.Location)
		if err != nil {
			return Sale{}, fmt.Errorf("check availability: %w", err)
		}
		if available < qty {
			return Sale{}, &inventory.InsufficientStockError{Available: available}
		}
	}

	now := time.Now()
	number, err := s.repo.GenerateNumber(ctx, input.CompanyID, now)
	if err != nil {
		return Sale{}, fmt.Errorf("generate number: %w", err)
	}

	sale := Sale{
		CompanyID:    input.CompanyID,
		RefID:        uuid.NewString(),
		Number:       number,
		CustomerName: input.CustomerName,
		Location:     input.Location,
		Notes:        input.Notes,
		CreatedBy:    input.ActorID,
		CreatedAt:    now,
	}
	for _, line := range input.Lines {
		tax, total := lineTotals(line.Qty, line.UnitPrice, line.TaxPercent)
		sale.Subtotal += line.Qty * line.UnitPrice
		sale.TaxAmount += tax
		sale.TotalAmount += total
		sale.Lines = append(sale.Lines, SaleLine{
			ProductID:  line.ProductID,
			Qty:        line.Qty,
			UnitPrice:  line.UnitPrice,
			TaxPercent: line.TaxPercent,
			TaxAmount:  tax,
			LineTotal:  total,
		})
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, sale)
		if err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		sale.ID = id
		for i := range sale.Lines {
			sale.Lines[i].SaleID = id
			lineID, err := repo.InsertLine(ctx, sale.Lines[i])
			if err != nil {
				return fmt.Errorf("insert line: %w", err)
			}
			sale.Lines[i].ID = lineID
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}

	if err := s.postLines(ctx, sale); err != nil {
		// The document is committed; Post can re-drive the remaining
		// lines without touching the ones the ledger already took.
		return Sale{}, err
	}
	return sale, nil
}

// Post re-drives the outbound movements of a sale whose initial posting
// failed part-way. Lines already on the ledger are skipped, so calling
// it on a fully posted sale changes nothing.
func (s *Service) Post(ctx context.Context, companyID, id int64) (Sale, error) {
	if companyID == 0 {
		return Sale{}, ErrInvalidCompany
	}
	sale, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return Sale{}, err
	}
	if err := s.postLines(ctx, sale); err != nil {
		return Sale{}, err
	}
	return sale, nil
}

// postLines drives one OUT movement per line. Each ref derives from the
// sale's stable ref and the line position, so a line keeps the same
// idempotency key across re-runs even when the sale repeats a product;
// a ref the ledger has already seen is skipped instead of re-applied.
func (s *Service) postLines(ctx context.Context, sale Sale) error {
	ns, err := uuid.Parse(sale.RefID)
	if err != nil {
		return fmt.Errorf("parse sale ref: %w", err)
	}
	for i, line := range sale.Lines {
		refID := uuid.NewSHA1(ns, []byte(strconv.Itoa(i))).String()
		_, err := s.inventory.PostSale(ctx, inventory.SaleInput{
			CompanyID: sale.CompanyID,
			ProductID: line.ProductID,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
			Location:  sale.Location,
			Reason:    "sale " + sale.Number,
			RefID:     refID,
			ActorID:   sale.CreatedBy,
		})
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("post movement for product %d: %w", line.ProductID, err)
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context, companyID int64, page, limit int) ([]Sale, int, error) {
	if companyID == 0 {
		return nil, 0, ErrInvalidCompany
	}
	return s.repo.List(ctx, companyID, page, limit)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Sale, error) {
	if companyID == 0 {
		return Sale{}, ErrInvalidCompany
	}
	return s.repo.Get(ctx, companyID, id)
}
