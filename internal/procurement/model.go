package procurement

import (
	"time"

	"github.com/stocksense/stocksense/internal/inventory"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// PurchaseOrder records inbound stock intent. Lines only reach the
// ledger when the order completes; a cancelled order never posts.
type PurchaseOrder struct {
	ID           int64               `json:"id"`
	CompanyID    int64               `json:"company_id"`
	Number       string              `json:"number"`
	RefID        string              `json:"-"`
	SupplierName string              `json:"supplier_name,omitempty"`
	Location     inventory.Location  `json:"location"`
	Status       OrderStatus         `json:"status"`
	TotalCost    float64             `json:"total_cost"`
	Notes        string              `json:"notes,omitempty"`
	CreatedBy    int64               `json:"created_by"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
	Lines        []PurchaseOrderLine `json:"lines,omitempty"`
}

type PurchaseOrderLine struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Qty       float64 `json:"qty"`
	UnitCost  float64 `json:"unit_cost"`
	LineTotal float64 `json:"line_total"`
}
