package models

import "fmt"

// EntryType enumerates the ticket entry variants. Billing and inventory
// reconciliation both switch exhaustively on this type.
type EntryType string

const (
	EntryTypeTime               EntryType = "time"
	EntryTypeHardware           EntryType = "hardware"
	EntryTypeDeploymentFlatRate EntryType = "deployment_flat_rate"
	EntryTypeSoftware           EntryType = "software"
	EntryTypeComponent          EntryType = "component"
	EntryTypeAccessory          EntryType = "accessory"
)

// EntryTypeChoices lists every valid entry type, in display order.
var EntryTypeChoices = []EntryType{
	EntryTypeTime,
	EntryTypeHardware,
	EntryTypeDeploymentFlatRate,
	EntryTypeSoftware,
	EntryTypeComponent,
	EntryTypeAccessory,
}

// ParseEntryType validates a raw entry_type string. An empty value defaults
// to "time" so older clients that never send the field keep working.
func ParseEntryType(raw string) (EntryType, error) {
	if raw == "" {
		return EntryTypeTime, nil
	}
	for _, choice := range EntryTypeChoices {
		if EntryType(raw) == choice {
			return choice, nil
		}
	}
	return "", fmt.Errorf("unknown entry_type %q", raw)
}

// IsHardwareLike reports whether the entry behaves like a product sale:
// no time math, value is unit price times quantity.
func (t EntryType) IsHardwareLike() bool {
	switch t {
	case EntryTypeHardware, EntryTypeSoftware, EntryTypeComponent, EntryTypeAccessory:
		return true
	case EntryTypeTime, EntryTypeDeploymentFlatRate:
		return false
	}
	return false
}

// Ticket is a single billable line item. Timestamps are stored as ISO-8601
// text exactly as received, mirroring what invoices display.
type Ticket struct {
	ID              int64     `json:"id"`
	Client          string    `json:"client"`
	ClientKey       string    `json:"client_key"`
	StartISO        string    `json:"start_iso"`
	EndISO          *string   `json:"end_iso"`
	ElapsedMinutes  int       `json:"elapsed_minutes"`
	RoundedMinutes  int       `json:"rounded_minutes"`
	RoundedHours    string    `json:"rounded_hours"`
	Note            *string   `json:"note"`
	Completed       int       `json:"completed"`
	Sent            int       `json:"sent"`
	InvoiceNumber   *string   `json:"invoice_number"`
	InvoicedTotal   *string   `json:"invoiced_total"`
	CalculatedValue *string   `json:"calculated_value"`
	CreatedAt       string    `json:"created_at"`
	EntryType       EntryType `json:"entry_type"`

	// Link and snapshot fields, populated when EntryType is hardware. The
	// manual product types (software/component/accessory) reuse the
	// description/price/quantity columns without a catalog link.
	HardwareID          *int64  `json:"hardware_id,omitempty"`
	HardwareBarcode     *string `json:"hardware_barcode,omitempty"`
	HardwareDescription *string `json:"hardware_description,omitempty"`
	HardwareSalesPrice  *string `json:"hardware_sales_price,omitempty"`
	HardwareQuantity    *int    `json:"hardware_quantity,omitempty"`

	FlatRateAmount   *string `json:"flat_rate_amount,omitempty"`
	FlatRateQuantity *int    `json:"flat_rate_quantity,omitempty"`

	ProjectID     *int64 `json:"project_id,omitempty"`
	ProjectPosted int    `json:"project_posted"`

	Attachments []TicketAttachment `json:"attachments"`
}

// HardwareUnits returns the quantity consumed by a hardware ticket,
// defaulting to one unit.
func (t *Ticket) HardwareUnits() int {
	if t.HardwareQuantity == nil || *t.HardwareQuantity < 1 {
		return 1
	}
	return *t.HardwareQuantity
}
