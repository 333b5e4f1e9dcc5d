package inventory

import "github.com/shopspring/decimal"

// StockStatus classifies a product's total quantity against its reorder
// threshold.
type StockStatus string

const (
	// StatusOutOfStock means total quantity is zero.
	StatusOutOfStock StockStatus = "OUT_OF_STOCK"
	// StatusLowStock means total quantity is at or below the reorder threshold.
	StatusLowStock StockStatus = "LOW_STOCK"
	// StatusNormal means quantity is above the reorder threshold.
	StatusNormal StockStatus = "NORMAL"
)

// Valuation is the derived monetary view of one product's stock. It is
// recomputed from the ledger on demand and never stored.
type Valuation struct {
	TotalQty         float64         `json:"total_qty"`
	StockValue       decimal.Decimal `json:"stock_value"`
	PotentialRevenue decimal.Decimal `json:"potential_revenue"`
	Status           StockStatus     `json:"status"`
}

// StatusFor derives the stock status from total quantity and threshold.
func StatusFor(totalQty, minQty float64) StockStatus {
	switch {
	case totalQty <= qtyEpsilon:
		return StatusOutOfStock
	case totalQty <= minQty:
		return StatusLowStock
	default:
		return StatusNormal
	}
}

// ComputeValuation derives stock value (qty x cost), potential revenue
// (qty x price) and status for a product's total quantity.
func ComputeValuation(totalQty, cost, price, minQty float64) Valuation {
	qty := decimal.NewFromFloat(totalQty)
	return Valuation{
		TotalQty:         totalQty,
		StockValue:       qty.Mul(decimal.NewFromFloat(cost)).Round(2),
		PotentialRevenue: qty.Mul(decimal.NewFromFloat(price)).Round(2),
		Status:           StatusFor(totalQty, minQty),
	}
}
