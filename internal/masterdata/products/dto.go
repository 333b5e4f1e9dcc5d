package products

// ProductForm is the create/update payload.
type ProductForm struct {
	SKU        string  `json:"sku" validate:"required"`
	Barcode    string  `json:"barcode"`
	Name       string  `json:"name" validate:"required"`
	Unit       string  `json:"unit" validate:"required"`
	Cost       float64 `json:"cost" validate:"gte=0"`
	Price      float64 `json:"price" validate:"gte=0"`
	TaxPercent float64 `json:"tax_percent" validate:"gte=0,lte=100"`
	MinQty     float64 `json:"min_qty" validate:"gte=0"`
	IsActive   bool    `json:"is_active"`
}
