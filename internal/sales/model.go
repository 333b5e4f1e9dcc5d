package sales

import (
	"time"

	"github.com/stocksense/stocksense/internal/inventory"
)

// Sale is a posted point-of-sale document. Sales are final on creation;
// each line drives one outbound stock movement at the sale location.
type Sale struct {
	ID           int64              `json:"id"`
	CompanyID    int64              `json:"company_id"`
	RefID        string             `json:"-"`
	Number       string             `json:"number"`
	CustomerName string             `json:"customer_name,omitempty"`
	Location     inventory.Location `json:"location"`
	Subtotal     float64            `json:"subtotal"`
	TaxAmount    float64            `json:"tax_amount"`
	TotalAmount  float64            `json:"total_amount"`
	Notes        string             `json:"notes,omitempty"`
	CreatedBy    int64              `json:"created_by"`
	CreatedAt    time.Time          `json:"created_at"`
	Lines        []SaleLine         `json:"lines,omitempty"`
}

type SaleLine struct {
	ID         int64   `json:"id"`
	SaleID     int64   `json:"sale_id"`
	ProductID  int64   `json:"product_id"`
	Qty        float64 `json:"qty"`
	UnitPrice  float64 `json:"unit_price"`
	TaxPercent float64 `json:"tax_percent"`
	TaxAmount  float64 `json:"tax_amount"`
	LineTotal  float64 `json:"line_total"`
}

// lineTotals computes tax and gross total for one line.
func lineTotals(qty, unitPrice, taxPercent float64) (tax, total float64) {
	net := qty * unitPrice
	tax = net * taxPercent / 100
	return tax, net + tax
}
