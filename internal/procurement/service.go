package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stocksense/stocksense/internal/inventory"
	"github.com/stocksense/stocksense/internal/shared"
)

var (
	ErrInvalidStatus    = errors.New("procurement: invalid status transition")
	ErrNoLines          = errors.New("procurement: at least one line is required")
	ErrInvalidLine      = errors.New("procurement: line quantity must be positive and cost non-negative")
	ErrInvalidCompany   = errors.New("procurement: company is required")
	ErrDuplicateProduct = errors.New("procurement: duplicate product line")
)

// InventoryPort is the slice of the stock ledger procurement needs.
type InventoryPort interface {
	PostReceipt(ctx context.Context, input inventory.ReceiptInput) (inventory.Movement, error)
}

type Service struct {
	repo      Repository
	inventory InventoryPort
}

func NewService(repo Repository, inv InventoryPort) *Service {
	return &Service{repo: repo, inventory: inv}
}

type CreateOrderInput struct {
	CompanyID    int64
	SupplierName string
	Location     inventory.Location
	Notes        string
	ActorID      int64
	Lines        []CreateOrderLine
}

type CreateOrderLine struct {
	ProductID int64
	Qty       float64
	UnitCost  float64
}

// Create stores a PENDING purchase order. No stock moves yet.
func (s *Service) Create(ctx context.Context, input CreateOrderInput) (PurchaseOrder, error) {
	if input.CompanyID == 0 {
		return PurchaseOrder{}, ErrInvalidCompany
	}
	if len(input.Lines) == 0 {
		return PurchaseOrder{}, ErrNoLines
	}
	seen := make(map[int64]bool, len(input.Lines))
	for _, line := range input.Lines {
		if line.ProductID == 0 || line.Qty <= 0 || line.UnitCost < 0 {
			return PurchaseOrder{}, ErrInvalidLine
		}
		// One line per product: completion keys idempotency on
		// (ref, product), so a repeat would be skipped as a replay.
		if seen[line.ProductID] {
			return PurchaseOrder{}, ErrDuplicateProduct
		}
		seen[line.ProductID] = true
	}

	now := time.Now()
	number, err := s.repo.GenerateNumber(ctx, input.CompanyID, now)
	if err != nil {
		return PurchaseOrder{}, fmt.Errorf("generate number: %w", err)
	}

	order := PurchaseOrder{
		CompanyID:    input.CompanyID,
		Number:       number,
		RefID:        uuid.NewString(),
		SupplierName: input.SupplierName,
		Location:     input.Location,
		Status:       StatusPending,
		Notes:        input.Notes,
		CreatedBy:    input.ActorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, line := range input.Lines {
		total := line.Qty * line.UnitCost
		order.TotalCost += total
		order.Lines = append(order.Lines, PurchaseOrderLine{
			ProductID: line.ProductID,
			Qty:       line.Qty,
			UnitCost:  line.UnitCost,
			LineTotal: total,
		})
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order.ID = id
		for i := range order.Lines {
			order.Lines[i].OrderID = id
			lineID, err := repo.InsertLine(ctx, order.Lines[i])
			if err != nil {
				return fmt.Errorf("insert line: %w", err)
			}
			order.Lines[i].ID = lineID
		}
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	return order, nil
}

// Complete posts one inbound movement per line, then flips the order to
// COMPLETED. The order's stable ref keeps retries idempotent: a line the
// ledger already accepted is skipped, so a partially failed completion
// can be re-run safely.
func (s *Service) Complete(ctx context.Context, companyID, id, actorID int64) (PurchaseOrder, error) {
	order, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if order.Status != StatusPending {
		return PurchaseOrder{}, ErrInvalidStatus
	}

	for _, line := range order.Lines {
		_, err := s.inventory.PostReceipt(ctx, inventory.ReceiptInput{
			CompanyID: order.CompanyID,
			ProductID: line.ProductID,
			Qty:       line.Qty,
			UnitCost:  line.UnitCost,
			Location:  order.Location,
			Reason:    "purchase " + order.Number,
			RefID:     order.RefID,
			ActorID:   actorID,
		})
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			continue
		}
		if err != nil {
			return PurchaseOrder{}, fmt.Errorf("post receipt for product %d: %w", line.ProductID, err)
		}
	}

	now := time.Now()
	if err := s.repo.UpdateStatus(ctx, companyID, id, StatusPending, StatusCompleted, &now); err != nil {
		return PurchaseOrder{}, err
	}
	order.Status = StatusCompleted
	order.CompletedAt = &now
	order.UpdatedAt = now
	return order, nil
}

// Cancel marks a PENDING order CANCELLED. Completed orders stay put.
func (s *Service) Cancel(ctx context.Context, companyID, id int64) error {
	if _, err := s.repo.Get(ctx, companyID, id); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, companyID, id, StatusPending, StatusCancelled, nil)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (PurchaseOrder, error) {
	if companyID == 0 {
		return PurchaseOrder{}, ErrInvalidCompany
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) List(ctx context.Context, companyID int64, status OrderStatus, page, limit int) ([]PurchaseOrder, int, error) {
	if companyID == 0 {
		return nil, 0, ErrInvalidCompany
	}
	return s.repo.List(ctx, companyID, status, page, limit)
}
