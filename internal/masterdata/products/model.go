package products

import "time"

// Product represents a catalog entry owned by one company.
type Product struct {
	ID         int64      `json:"id"`
	CompanyID  int64      `json:"company_id"`
	SKU        string     `json:"sku"`
	Barcode    string     `json:"barcode,omitempty"`
	Name       string     `json:"name"`
	Unit       string     `json:"unit"`
	Cost       float64    `json:"cost"`
	Price      float64    `json:"price"`
	TaxPercent float64    `json:"tax_percent"`
	MinQty     float64    `json:"min_qty"`
	IsActive   bool       `json:"is_active"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
