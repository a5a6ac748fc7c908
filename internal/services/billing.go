package services

import (
	"strings"
	"time"

	"tickettrack_backend/internal/models"

	"github.com/shopspring/decimal"
)

// NormalizeAmount converts user-entered currency text ("$1,250.00") into a
// decimal. The second return is false for empty or unparseable input.
func NormalizeAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return decimal.Zero, false
	}
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func formatCurrency(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func strPtr(s string) *string {
	return &s
}

// ApplyBilling recomputes a ticket's time math and calculated value from its
// current fields and the owning client's billing rate. It mutates the ticket
// in place and is re-run on every create and update.
//
// rate may be nil (client without a configured rate); time entries then keep
// a null calculated value and still persist as drafts. invoiced_total is an
// invoice-display override and is deliberately never touched here.
func ApplyBilling(t *models.Ticket, rate *string, loc *time.Location) {
	switch t.EntryType {
	case models.EntryTypeTime:
		minutes := ComputeMinutes(t.StartISO, t.EndISO, loc)
		rounded, hours := RoundMinutes(minutes)
		t.ElapsedMinutes = minutes
		t.RoundedMinutes = rounded
		t.RoundedHours = hours

		t.CalculatedValue = nil
		if rate != nil {
			if rateDec, ok := NormalizeAmount(*rate); ok {
				value := decimal.NewFromInt(int64(rounded)).Div(decimal.NewFromInt(60)).Mul(rateDec)
				t.CalculatedValue = strPtr(formatCurrency(value))
			}
		}

	case models.EntryTypeHardware, models.EntryTypeSoftware, models.EntryTypeComponent, models.EntryTypeAccessory:
		// Product sales carry no time component regardless of what the
		// caller sent.
		t.EndISO = nil
		t.ElapsedMinutes = 0
		t.RoundedMinutes = 0
		t.RoundedHours = "0.00"

		t.CalculatedValue = nil
		if t.HardwareSalesPrice != nil {
			if price, ok := NormalizeAmount(*t.HardwareSalesPrice); ok {
				quantity := decimal.NewFromInt(int64(t.HardwareUnits()))
				t.CalculatedValue = strPtr(formatCurrency(price.Mul(quantity)))
			}
		}

	case models.EntryTypeDeploymentFlatRate:
		minutes := ComputeMinutes(t.StartISO, t.EndISO, loc)
		rounded, hours := RoundMinutes(minutes)
		t.ElapsedMinutes = minutes
		t.RoundedMinutes = rounded
		t.RoundedHours = hours

		t.CalculatedValue = nil
		if t.FlatRateAmount != nil {
			if amount, ok := NormalizeAmount(*t.FlatRateAmount); ok {
				quantity := int64(1)
				if t.FlatRateQuantity != nil && *t.FlatRateQuantity >= 1 {
					quantity = int64(*t.FlatRateQuantity)
				}
				t.FlatRateAmount = strPtr(formatCurrency(amount))
				t.CalculatedValue = strPtr(formatCurrency(amount.Mul(decimal.NewFromInt(quantity))))
			}
		}
	}
}
