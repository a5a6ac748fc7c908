package models

// Hardware is a catalog record for an inventory-eligible item. Money fields
// are kept as entered (text), empty values stored as NULL.
type Hardware struct {
	ID              int64   `json:"id"`
	Barcode         string  `json:"barcode"`
	Description     string  `json:"description"`
	AcquisitionCost *string `json:"acquisition_cost"`
	SalesPrice      *string `json:"sales_price"`
	CreatedAt       string  `json:"created_at"`
}
