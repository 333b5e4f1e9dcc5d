package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/stocksense/stocksense/internal/shared"
)

const qtyEpsilon = 1e-9

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetQuantity(ctx context.Context, companyID, productID int64, loc Location) (float64, error)
	GetTotalQuantity(ctx context.Context, companyID, productID int64) (float64, error)
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MetricsPort counts posted movements by type.
type MetricsPort interface {
	ObserveMovement(movementType string)
}

// Service coordinates ledger mutations. Every posting locks the affected
// stock record rows inside one transaction, so the quantity check and the
// write cannot interleave with another writer on the same key.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	metrics     MetricsPort
	idempotency *shared.IdempotencyStore
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, metrics MetricsPort, idem *shared.IdempotencyStore) *Service {
	return &Service{repo: repo, audit: audit, metrics: metrics, idempotency: idem}
}

// GetQuantity returns quantity on hand for an exact location key.
// Absence of a record means zero, not unknown.
func (s *Service) GetQuantity(ctx context.Context, companyID, productID int64, loc Location) (float64, error) {
	if companyID == 0 || productID == 0 {
		return 0, errors.New("inventory: company and product required")
	}
	return s.repo.GetQuantity(ctx, companyID, productID, loc)
}

// GetTotalQuantity sums quantity on hand across every location of a product.
func (s *Service) GetTotalQuantity(ctx context.Context, companyID, productID int64) (float64, error) {
	if companyID == 0 || productID == 0 {
		return 0, errors.New("inventory: company and product required")
	}
	return s.repo.GetTotalQuantity(ctx, companyID, productID)
}

// GetMovementHistory lists movements for a product, newest first.
func (s *Service) GetMovementHistory(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	if filter.CompanyID == 0 || filter.ProductID == 0 {
		return nil, errors.New("inventory: company and product required")
	}
	return s.repo.ListMovements(ctx, filter)
}

// PostSale decrements stock at the sale location and appends one OUT
// movement. When the location holds less than the requested quantity the
// posting fails with InsufficientStockError and nothing is written.
func (s *Service) PostSale(ctx context.Context, input SaleInput) (Movement, error) {
	if input.CompanyID == 0 || input.ProductID == 0 {
		return Movement{}, errors.New("inventory: company and product required")
	}
	if input.Qty <= 0 {
		return Movement{}, ErrInvalidQuantity
	}
	if input.UnitPrice < 0 {
		return Movement{}, ErrInvalidUnitCost
	}
	loc := input.Location
	movement := Movement{
		CompanyID: input.CompanyID,
		ProductID: input.ProductID,
		Type:      MovementOut,
		Qty:       input.Qty,
		Reason:    defaultReason(input.Reason, "sale"),
		From:      &loc,
		RefID:     input.RefID,
		ActorID:   input.ActorID,
	}
	posted, err := s.post(ctx, movement, func(ctx context.Context, tx TxRepository) (float64, error) {
		record, err := s.lockRecord(ctx, tx, input.CompanyID, input.ProductID, loc)
		if err != nil {
			return 0, err
		}
		if record.Qty+qtyEpsilon < input.Qty {
			return 0, &InsufficientStockError{Available: record.Qty}
		}
		record.Qty -= input.Qty
		if err := tx.UpsertRecord(ctx, record); err != nil {
			return 0, err
		}
		return record.Qty, nil
	})
	if err != nil {
		return Movement{}, err
	}
	s.recordAudit(ctx, input.CompanyID, input.ActorID, "inventory:sale", input.ProductID, map[string]any{
		"qty":        input.Qty,
		"unit_price": input.UnitPrice,
		"location":   loc.String(),
	})
	return posted, nil
}

// PostReceipt increments stock at the destination location and appends one
// IN movement. Receiving stock has no precondition on current quantity.
func (s *Service) PostReceipt(ctx context.Context, input ReceiptInput) (Movement, error) {
	if input.CompanyID == 0 || input.ProductID == 0 {
		return Movement{}, errors.New("inventory: company and product required")
	}
	if input.Qty <= 0 {
		return Movement{}, ErrInvalidQuantity
	}
	if input.UnitCost < 0 {
		return Movement{}, ErrInvalidUnitCost
	}
	loc := input.Location
	movement := Movement{
		CompanyID: input.CompanyID,
		ProductID: input.ProductID,
		Type:      MovementIn,
		Qty:       input.Qty,
		Reason:    defaultReason(input.Reason, "purchase receipt"),
		To:        &loc,
		RefID:     input.RefID,
		ActorID:   input.ActorID,
	}
	posted, err := s.post(ctx, movement, func(ctx context.Context, tx TxRepository) (float64, error) {
		record, err := s.lockRecord(ctx, tx, input.CompanyID, input.ProductID, loc)
		if err != nil {
			return 0, err
		}
		record.Qty += input.Qty
		if err := tx.UpsertRecord(ctx, record); err != nil {
			return 0, err
		}
		return record.Qty, nil
	})
	if err != nil {
		return Movement{}, err
	}
	s.recordAudit(ctx, input.CompanyID, input.ActorID, "inventory:receipt", input.ProductID, map[string]any{
		"qty":       input.Qty,
		"unit_cost": input.UnitCost,
		"location":  loc.String(),
	})
	return posted, nil
}

// PostAdjustment sets an absolute target quantity for one location and logs
// the signed delta as an IN or OUT movement referencing the adjustment id.
// A target equal to the current balance is elided: the call succeeds and no
// movement is written, though a missing record is still materialised so an
// explicit zero is distinguishable from "never stocked here" afterwards.
func (s *Service) PostAdjustment(ctx context.Context, input AdjustmentInput) (Movement, bool, error) {
	if input.CompanyID == 0 || input.ProductID == 0 {
		return Movement{}, false, errors.New("inventory: company and product required")
	}
	if input.TargetQty < 0 {
		return Movement{}, false, ErrInvalidQuantity
	}
	loc := input.Location
	adjustmentID := uuid.NewString()

	var movement Movement
	elided := false
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		record, err := s.lockRecord(ctx, tx, input.CompanyID, input.ProductID, loc)
		if err != nil {
			return err
		}
		delta := input.TargetQty - record.Qty
		if math.Abs(delta) < qtyEpsilon {
			elided = true
			// Materialise the record even for a no-op adjustment.
			return tx.UpsertRecord(ctx, record)
		}
		record.Qty = input.TargetQty
		if err := tx.UpsertRecord(ctx, record); err != nil {
			return err
		}
		movement = Movement{
			CompanyID: input.CompanyID,
			ProductID: input.ProductID,
			Qty:       math.Abs(delta),
			Reason:    defaultReason(input.Reason, "stock adjustment"),
			RefID:     adjustmentID,
			ActorID:   input.ActorID,
			PostedAt:  time.Now().UTC(),
		}
		if delta > 0 {
			movement.Type = MovementIn
			movement.To = &loc
		} else {
			movement.Type = MovementOut
			movement.From = &loc
		}
		id, err := tx.InsertMovement(ctx, movement)
		if err != nil {
			return err
		}
		movement.ID = id
		return nil
	})
	if err != nil {
		return Movement{}, false, err
	}
	if elided {
		return Movement{}, false, nil
	}
	s.recordAudit(ctx, input.CompanyID, input.ActorID, "inventory:adjustment", input.ProductID, map[string]any{
		"target_qty": input.TargetQty,
		"location":   loc.String(),
		"ref_id":     adjustmentID,
	})
	return movement, true, nil
}

// PostTransfer debits the source location, credits the destination and
// appends a single TRANSFER movement, all inside one transaction. A failure
// at any step rolls the whole posting back; no in-flight state survives.
func (s *Service) PostTransfer(ctx context.Context, input TransferInput) (Movement, error) {
	if input.CompanyID == 0 || input.ProductID == 0 {
		return Movement{}, errors.New("inventory: company and product required")
	}
	if input.Qty <= 0 {
		return Movement{}, ErrInvalidQuantity
	}
	if input.From.Equal(input.To) {
		return Movement{}, ErrSameLocation
	}
	from := input.From
	to := input.To
	movement := Movement{
		CompanyID: input.CompanyID,
		ProductID: input.ProductID,
		Type:      MovementTransfer,
		Qty:       input.Qty,
		Reason:    defaultReason(input.Reason, "stock transfer"),
		From:      &from,
		To:        &to,
		ActorID:   input.ActorID,
	}
	posted, err := s.post(ctx, movement, func(ctx context.Context, tx TxRepository) (float64, error) {
		src, err := s.lockRecord(ctx, tx, input.CompanyID, input.ProductID, from)
		if err != nil {
			return 0, err
		}
		if src.Qty+qtyEpsilon < input.Qty {
			return 0, &InsufficientStockError{Available: src.Qty}
		}
		dst, err := s.lockRecord(ctx, tx, input.CompanyID, input.ProductID, to)
		if err != nil {
			return 0, err
		}
		src.Qty -= input.Qty
		dst.Qty += input.Qty
		if err := tx.UpsertRecord(ctx, src); err != nil {
			return 0, err
		}
		if err := tx.UpsertRecord(ctx, dst); err != nil {
			return 0, err
		}
		return src.Qty, nil
	})
	if err != nil {
		return Movement{}, err
	}
	s.recordAudit(ctx, input.CompanyID, input.ActorID, "inventory:transfer", input.ProductID, map[string]any{
		"qty":  input.Qty,
		"from": from.String(),
		"to":   to.String(),
	})
	return posted, nil
}

// post runs mutate and the movement append inside one transaction, guarded
// by an idempotency key when the movement carries a reference id.
func (s *Service) post(ctx context.Context, movement Movement, mutate func(context.Context, TxRepository) (float64, error)) (Movement, error) {
	movement.PostedAt = time.Now().UTC()

	insertedKey := false
	key := ""
	if s.idempotency != nil && movement.RefID != "" {
		key = fmt.Sprintf("%s:%s:%d", movement.Type, movement.RefID, movement.ProductID)
		if err := s.idempotency.CheckAndInsert(ctx, key, "inventory"); err != nil {
			return Movement{}, err
		}
		insertedKey = true
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := mutate(ctx, tx); err != nil {
			return err
		}
		id, err := tx.InsertMovement(ctx, movement)
		if err != nil {
			return err
		}
		movement.ID = id
		return nil
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, key)
		}
		return Movement{}, err
	}
	if s.metrics != nil {
		s.metrics.ObserveMovement(string(movement.Type))
	}
	return movement, nil
}

// lockRecord fetches the stock record for update, synthesising a zero
// record when the key has never been stocked.
func (s *Service) lockRecord(ctx context.Context, tx TxRepository, companyID, productID int64, loc Location) (StockRecord, error) {
	record, err := tx.GetRecordForUpdate(ctx, companyID, productID, loc)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return StockRecord{CompanyID: companyID, ProductID: productID, Location: loc}, nil
		}
		return StockRecord{}, err
	}
	return record, nil
}

func (s *Service) recordAudit(ctx context.Context, companyID, actorID int64, action string, productID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		CompanyID: companyID,
		ActorID:   actorID,
		Action:    action,
		Entity:    "inventory_movement",
		EntityID:  fmt.Sprintf("product:%d", productID),
		Meta:      meta,
	})
}

func defaultReason(reason, fallback string) string {
	if reason != "" {
		return reason
	}
	return fallback
}
