package models

import "encoding/json"

// Inventory event sources. Ticket-managed events carry SourceTicketAuto and
// are the only events ever mutated after creation.
const (
	SourceManual     = "manual"
	SourceAPIReceive = "api:receive"
	SourceAPIUse     = "api:use"
	SourceTicketAuto = "ticket:auto"
)

// Counterparty types recorded against receive/use events.
const (
	CounterpartyVendor = "vendor"
	CounterpartyClient = "client"
)

// InventoryEvent is a signed quantity change against a hardware item.
// Positive change is a receipt, negative is usage. On-hand stock is always
// the sum of a hardware item's events, never a stored column.
type InventoryEvent struct {
	ID               int64    `json:"id"`
	HardwareID       int64    `json:"hardware_id"`
	Change           int      `json:"change"`
	Source           string   `json:"source"`
	Note             *string  `json:"note"`
	CreatedAt        string   `json:"created_at"`
	TicketID         *int64   `json:"ticket_id,omitempty"`
	CounterpartyName *string  `json:"counterparty_name,omitempty"`
	CounterpartyType *string  `json:"counterparty_type,omitempty"`
	UnitCost         *float64 `json:"unit_cost,omitempty"`
	ActualCost       *float64 `json:"actual_cost,omitempty"`
	SaleUnitPrice    *float64 `json:"sale_unit_price,omitempty"`
	SalePriceTotal   *float64 `json:"sale_price_total,omitempty"`

	// Joined from the hardware table for event listings.
	HardwareBarcode     *string `json:"hardware_barcode,omitempty"`
	HardwareDescription *string `json:"hardware_description,omitempty"`
}

// ProfitTotal is the sale total minus acquisition cost, when both are known.
func (e *InventoryEvent) ProfitTotal() *float64 {
	if e.SalePriceTotal == nil || e.ActualCost == nil {
		return nil
	}
	v := *e.SalePriceTotal - *e.ActualCost
	return &v
}

// ProfitUnit is ProfitTotal divided by the absolute quantity moved.
func (e *InventoryEvent) ProfitUnit() *float64 {
	total := e.ProfitTotal()
	if total == nil {
		return nil
	}
	quantity := e.Change
	if quantity < 0 {
		quantity = -quantity
	}
	if quantity == 0 {
		return nil
	}
	v := *total / float64(quantity)
	return &v
}

// MarshalJSON includes the derived profit fields in event projections.
func (e InventoryEvent) MarshalJSON() ([]byte, error) {
	type event InventoryEvent
	return json.Marshal(struct {
		event
		ProfitTotal *float64 `json:"profit_total,omitempty"`
		ProfitUnit  *float64 `json:"profit_unit,omitempty"`
	}{
		event:       event(e),
		ProfitTotal: e.ProfitTotal(),
		ProfitUnit:  e.ProfitUnit(),
	})
}

// InventorySummaryItem is the aggregated on-hand view per hardware item.
type InventorySummaryItem struct {
	HardwareID   int64   `json:"hardware_id"`
	Barcode      string  `json:"barcode"`
	Description  string  `json:"description"`
	Quantity     int     `json:"quantity"`
	LastActivity *string `json:"last_activity"`
}
