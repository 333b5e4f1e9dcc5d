package inventory

import (
	"errors"
	"fmt"
	"time"
)

// MovementType enumerates supported inventory movements.
type MovementType string

const (
	// MovementIn represents an inbound movement.
	MovementIn MovementType = "IN"
	// MovementOut represents an outbound movement.
	MovementOut MovementType = "OUT"
	// MovementTransfer represents a stock move between two locations.
	MovementTransfer MovementType = "TRANSFER"
)

// StockRecord holds the current quantity on hand for one
// (company, product, location) key.
type StockRecord struct {
	ID        int64
	CompanyID int64
	ProductID int64
	Location  Location
	Qty       float64
	UpdatedAt time.Time
}

// Movement is one append-only entry in the audit trail. Movements are
// written once per posted transaction and never mutated.
type Movement struct {
	ID        int64
	CompanyID int64
	ProductID int64
	Type      MovementType
	Qty       float64
	Reason    string
	From      *Location
	To        *Location
	RefID     string
	ActorID   int64
	PostedAt  time.Time
}

// SaleInput describes an outbound sale posting for one product.
type SaleInput struct {
	CompanyID int64
	ProductID int64
	Qty       float64
	UnitPrice float64
	Location  Location
	Reason    string
	RefID     string
	ActorID   int64
}

// ReceiptInput describes an inbound purchase receipt.
type ReceiptInput struct {
	CompanyID int64
	ProductID int64
	Qty       float64
	UnitCost  float64
	Location  Location
	Reason    string
	RefID     string
	ActorID   int64
}

// AdjustmentInput sets an absolute target quantity; the service derives
// the signed delta against the current balance.
type AdjustmentInput struct {
	CompanyID int64
	ProductID int64
	TargetQty float64
	Location  Location
	Reason    string
	ActorID   int64
}

// TransferInput moves quantity between two locations of the same product.
type TransferInput struct {
	CompanyID int64
	ProductID int64
	Qty       float64
	From      Location
	To        Location
	Reason    string
	ActorID   int64
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	CompanyID int64
	ProductID int64
	From      time.Time
	To        time.Time
	Limit     int
}

var (
	// ErrInvalidQuantity indicates a non-positive quantity or negative target.
	ErrInvalidQuantity = errors.New("inventory: quantity must be positive")
	// ErrInvalidUnitCost indicates a negative cost or price value.
	ErrInvalidUnitCost = errors.New("inventory: unit cost must be >= 0")
	// ErrSameLocation is returned when a transfer names one location twice.
	ErrSameLocation = errors.New("inventory: source and destination location must differ")
	// ErrInsufficientStock is the match target for insufficient stock failures.
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
)

// InsufficientStockError reports how much stock the source location holds
// so callers can surface the shortfall. errors.Is matches it against
// ErrInsufficientStock.
type InsufficientStockError struct {
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("inventory: insufficient stock (available quantity: %g)", e.Available)
}

// Is makes errors.Is(err, ErrInsufficientStock) succeed.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
