package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickettrack_backend/internal/models"
)

func TestRoundMinutes(t *testing.T) {
	tests := []struct {
		name        string
		minutes     int
		wantRounded int
		wantHours   string
	}{
		{name: "zero stays zero", minutes: 0, wantRounded: 0, wantHours: "0.00"},
		{name: "under five minutes is free", minutes: 4, wantRounded: 0, wantHours: "0.00"},
		{name: "five minutes rounds to a quarter hour", minutes: 5, wantRounded: 15, wantHours: "0.25"},
		{name: "exact quantum keeps its value", minutes: 30, wantRounded: 30, wantHours: "0.50"},
		{name: "one past the quantum rounds up", minutes: 31, wantRounded: 45, wantHours: "0.75"},
		{name: "47 minutes bills a full hour", minutes: 47, wantRounded: 60, wantHours: "1.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rounded, hours := RoundMinutes(tt.minutes)
			assert.Equal(t, tt.wantRounded, rounded)
			assert.Equal(t, tt.wantHours, hours)
		})
	}
}

func TestComputeMinutes(t *testing.T) {
	loc := time.UTC
	end := "2024-03-01T09:47:00"

	assert.Equal(t, 47, ComputeMinutes("2024-03-01T09:00:00", &end, loc))
	assert.Equal(t, 0, ComputeMinutes("2024-03-01T09:00:00", nil, loc), "open tickets have no elapsed time yet")

	earlier := "2024-03-01T08:00:00"
	assert.Equal(t, 0, ComputeMinutes("2024-03-01T09:00:00", &earlier, loc), "end before start clamps to zero")
	assert.Equal(t, 0, ComputeMinutes("not-a-time", &end, loc), "unparseable start behaves like an open ticket")
}

func TestParseISO(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Naive timestamps resolve in the operator's timezone.
	parsed, err := ParseISO("2024-03-01T09:00:00", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, parsed.Location())

	// Zulu timestamps keep their offset.
	parsed, err = ParseISO("2024-03-01T09:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, parsed.Location())

	_, err = ParseISO("yesterday", loc)
	assert.Error(t, err)
}

func TestNormalizeAmount(t *testing.T) {
	d, ok := NormalizeAmount("$1,250.50")
	require.True(t, ok)
	assert.Equal(t, "1250.50", d.StringFixed(2))

	_, ok = NormalizeAmount("not money")
	assert.False(t, ok)

	_, ok = NormalizeAmount("   ")
	assert.False(t, ok)
}

func strp(s string) *string { return &s }

func intp(i int) *int { return &i }

func TestApplyBillingTimeTicket(t *testing.T) {
	end := "2024-03-01T09:47:00"
	ticket := &models.Ticket{
		EntryType: models.EntryTypeTime,
		StartISO:  "2024-03-01T09:00:00",
		EndISO:    &end,
	}

	ApplyBilling(ticket, strp("120.00"), time.UTC)

	assert.Equal(t, 47, ticket.ElapsedMinutes)
	assert.Equal(t, 60, ticket.RoundedMinutes)
	assert.Equal(t, "1.00", ticket.RoundedHours)
	require.NotNil(t, ticket.CalculatedValue)
	assert.Equal(t, "120.00", *ticket.CalculatedValue)
}

func TestApplyBillingTimeTicketWithoutRate(t *testing.T) {
	end := "2024-03-01T10:30:00"
	ticket := &models.Ticket{
		EntryType: models.EntryTypeTime,
		StartISO:  "2024-03-01T09:00:00",
		EndISO:    &end,
	}

	ApplyBilling(ticket, nil, time.UTC)

	assert.Equal(t, 90, ticket.RoundedMinutes)
	assert.Nil(t, ticket.CalculatedValue, "no rate means no value, hours still roll up")
}

func TestApplyBillingHardwareLikeTicket(t *testing.T) {
	end := "2024-03-01T09:47:00"
	ticket := &models.Ticket{
		EntryType:          models.EntryTypeSoftware,
		StartISO:           "2024-03-01T09:00:00",
		EndISO:             &end,
		HardwareSalesPrice: strp("45.00"),
		HardwareQuantity:   intp(25),
	}

	ApplyBilling(ticket, strp("120.00"), time.UTC)

	assert.Nil(t, ticket.EndISO, "product entries carry no time span")
	assert.Equal(t, 0, ticket.ElapsedMinutes)
	assert.Equal(t, 0, ticket.RoundedMinutes)
	assert.Equal(t, "0.00", ticket.RoundedHours)
	require.NotNil(t, ticket.CalculatedValue)
	assert.Equal(t, "1125.00", *ticket.CalculatedValue)
}

func TestApplyBillingHardwareDefaultsQuantityToOne(t *testing.T) {
	ticket := &models.Ticket{
		EntryType:          models.EntryTypeHardware,
		StartISO:           "2024-03-01T09:00:00",
		HardwareSalesPrice: strp("$399.99"),
	}

	ApplyBilling(ticket, nil, time.UTC)

	require.NotNil(t, ticket.CalculatedValue)
	assert.Equal(t, "399.99", *ticket.CalculatedValue)
}

func TestApplyBillingFlatRateTicket(t *testing.T) {
	end := "2024-03-01T12:00:00"
	ticket := &models.Ticket{
		EntryType:        models.EntryTypeDeploymentFlatRate,
		StartISO:         "2024-03-01T09:00:00",
		EndISO:           &end,
		FlatRateAmount:   strp("750"),
		FlatRateQuantity: intp(3),
	}

	ApplyBilling(ticket, strp("120.00"), time.UTC)

	// Flat-rate entries keep their time span for the record but bill from
	// the flat amount, not the hourly rate.
	assert.Equal(t, 180, ticket.ElapsedMinutes)
	assert.Equal(t, 180, ticket.RoundedMinutes)
	require.NotNil(t, ticket.FlatRateAmount)
	assert.Equal(t, "750.00", *ticket.FlatRateAmount)
	require.NotNil(t, ticket.CalculatedValue)
	assert.Equal(t, "2250.00", *ticket.CalculatedValue)
}

func TestApplyBillingFlatRateDefaultsQuantityToOne(t *testing.T) {
	ticket := &models.Ticket{
		EntryType:      models.EntryTypeDeploymentFlatRate,
		StartISO:       "2024-03-01T09:00:00",
		FlatRateAmount: strp("500.00"),
	}

	ApplyBilling(ticket, nil, time.UTC)

	require.NotNil(t, ticket.CalculatedValue)
	assert.Equal(t, "500.00", *ticket.CalculatedValue)
}
