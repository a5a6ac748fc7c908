package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickettrack_backend/internal/models"
)

type ticketFixture struct {
	service   TicketService
	tickets   *fakeTicketRepo
	inventory *fakeInventoryRepo
	hardware  *fakeHardwareRepo
	directory *fakeDirectory
	files     *fakeFileStore
}

func newTicketFixture() *ticketFixture {
	tickets := newFakeTicketRepo()
	inventory := newFakeInventoryRepo()
	hardware := newFakeHardwareRepo()
	attachments := newFakeAttachmentRepo()
	directory := newFakeDirectory()
	files := &fakeFileStore{}

	directory.names["acme"] = "Acme Corp"
	directory.rates["acme"] = "120.00"
	directory.names["globex"] = "Globex"

	return &ticketFixture{
		service:   NewTicketService(tickets, inventory, hardware, attachments, directory, files, fakeTxManager{}, time.UTC),
		tickets:   tickets,
		inventory: inventory,
		hardware:  hardware,
		directory: directory,
		files:     files,
	}
}

func TestCreateTimeTicket(t *testing.T) {
	f := newTicketFixture()
	end := "2024-03-01T09:47:00"

	ticket, err := f.service.CreateTicket(CreateTicketRequest{
		ClientKey: "acme",
		StartISO:  "2024-03-01T09:00:00",
		EndISO:    &end,
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", ticket.Client)
	assert.Equal(t, models.EntryTypeTime, ticket.EntryType)
	assert.Equal(t, 60, ticket.RoundedMinutes)
	require.NotNil(t, ticket.CalculatedValue)
	assert.Equal(t, "120.00", *ticket.CalculatedValue)
	assert.Empty(t, f.inventory.events, "time tickets never touch inventory")
}

func TestCreateTicketUnknownClient(t *testing.T) {
	f := newTicketFixture()

	_, err := f.service.CreateTicket(CreateTicketRequest{
		ClientKey: "nobody",
		StartISO:  "2024-03-01T09:00:00",
	})
	require.ErrorIs(t, err, ErrUnknownClientKey)
	assert.Empty(t, f.tickets.tickets)
}

func TestCreateHardwareTicketRecordsInventoryEvent(t *testing.T) {
	f := newTicketFixture()
	hw := f.hardware.add("0123456789012", "USB-C dock", strp("80.00"), strp("129.99"))
	barcode := hw.Barcode

	ticket, err := f.service.CreateTicket(CreateTicketRequest{
		ClientKey:        "acme",
		StartISO:         "2024-03-01T09:00:00",
		EntryType:        "hardware",
		HardwareBarcode:  &barcode,
		HardwareQuantity: intp(3),
	})
	require.NoError(t, err)

	require.NotNil(t, ticket.HardwareID)
	assert.Equal(t, hw.ID, *ticket.HardwareID)
	assert.Equal(t, "USB-C dock", *ticket.HardwareDescription)
	assert.Equal(t, "129.99", *ticket.HardwareSalesPrice)
	require.NotNil(t, ticket.CalculatedValue)
	assert.Equal(t, "389.97", *ticket.CalculatedValue)

	require.Len(t, f.inventory.events, 1)
	event, err := f.inventory.GetEventByTicketID(nil, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, -3, event.Change)
	assert.Equal(t, models.SourceTicketAuto, event.Source)
	assert.Equal(t, hw.ID, event.HardwareID)
	require.NotNil(t, event.UnitCost)
	assert.InDelta(t, 80.0, *event.UnitCost, 0.001)
	require.NotNil(t, event.SalePriceTotal)
	assert.InDelta(t, 389.97, *event.SalePriceTotal, 0.001)
}

func TestCreateHardwareTicketResolvesBarcodeAlias(t *testing.T) {
	f := newTicketFixture()
	// Registered in 13-digit EAN form; scanned as the 12-digit UPC.
	f.hardware.add("0123456789012", "USB-C dock", nil, strp("129.99"))
	scanned := "123456789012"

	ticket, err := f.service.CreateTicket(CreateTicketRequest{
		ClientKey:       "acme",
		StartISO:        "2024-03-01T09:00:00",
		EntryType:       "hardware",
		HardwareBarcode: &scanned,
	})
	require.NoError(t, err)
	assert.Equal(t, "0123456789012", *ticket.HardwareBarcode)
}

func TestCreateHardwareTicketUnknownItem(t *testing.T) {
	f := newTicketFixture()
	missing := "999999"

	_, err := f.service.CreateTicket(CreateTicketRequest{
		ClientKey:       "acme",
		StartISO:        "2024-03-01T09:00:00",
		EntryType:       "hardware",
		HardwareBarcode: &missing,
	})
	require.ErrorIs(t, err, ErrHardwareNotFound)
	assert.Empty(t, f.tickets.tickets, "nothing persists when the item is unknown")
	assert.Empty(t, f.inventory.events)
}

func TestCreateManualProductTicketSkipsInventory(t *testing.T) {
	f := newTicketFixture()

	ticket, err := f.service.CreateTicket(CreateTicketRequest{
		ClientKey:           "acme",
		StartISO:            "2024-03-01T09:00:00",
		EntryType:           "software",
		HardwareDescription: strp("Office 365 licenses"),
		HardwareSalesPrice:  strp("45.00"),
		HardwareQuantity:    intp(25),
	})
	require.NoError(t, err)

	assert.Nil(t, ticket.HardwareID, "manual product types carry no catalog link")
	require.NotNil(t, ticket.CalculatedValue)
	assert.Equal(t, "1125.00", *ticket.CalculatedValue)
	assert.Empty(t, f.inventory.events)
}

func TestUpdateTicketQuantityUpdatesEventInPlace(t *testing.T) {
	f := newTicketFixture()
	hw := f.hardware.add("0123456789012", "USB-C dock", strp("80.00"), strp("129.99"))
	barcode := hw.Barcode

	ticket, err := f.service.CreateTicket(CreateTicketRequest{
		ClientKey:        "acme",
		StartISO:         "2024-03-01T09:00:00",
		EntryType:        "hardware",
		HardwareBarcode:  &barcode,
		HardwareQuantity: intp(2),
	})
	require.NoError(t, err)

	original, err := f.inventory.GetEventByTicketID(nil, ticket.ID)
	require.NoError(t, err)

	_, err = f.service.UpdateTicket(ticket.ID, UpdateTicketRequest{HardwareQuantity: intp(5)})
	require.NoError(t, err)

	require.Len(t, f.inventory.events, 1, "reconciliation reuses the existing row")
	updated, err := f.inventory.GetEventByTicketID(nil, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, -5, updated.Change)
}

func TestUpdateTicketNoteLeavesEventAlone(t *testing.T) {
	f := newTicketFixture()
	hw := f.hardware.add("0123456789012", "USB-C dock", nil, strp("129.99"))
	barcode := hw.Barcode

	ticket, err := f.service.CreateTicket(CreateTicketRequest{
		ClientKey:       "acme",
		StartISO:        "2024-03-01T09:00:00",
		EntryType:       "hardware",
		HardwareBarcode: &barcode,
	})
	require.NoError(t, err)

	before, err := f.inventory.GetEventByTicketID(nil, ticket.ID)
	require.NoError(t, err)

	_, err = f.service.UpdateTicket(ticket.ID, UpdateTicketRequest{Note: strp("left on site")})
	require.NoError(t, err)

	after, err := f.inventory.GetEventByTicketID(nil, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.Change, after.Change)
}

func TestUpdateTicketTypeChangeRemovesEvent(t *testing.T) {
	f := newTicketFixture()
	hw := f.hardware.add("0123456789012", "USB-C dock", nil, strp("129.99"))
	barcode := hw.Barcode

	ticket, err := f.service.CreateTicket(CreateTicketRequest{
		ClientKey:       "acme",
		StartISO:        "2024-03-01T09:00:00",
		EntryType:       "hardware",
		HardwareBarcode: &barcode,
	})
	require.NoError(t, err)
	require.Len(t, f.inventory.events, 1)

	updated, err := f.service.UpdateTicket(ticket.ID, UpdateTicketRequest{EntryType: strp("time")})
	require.NoError(t, err)

	assert.Equal(t, models.EntryTypeTime, updated.EntryType)
	assert.Nil(t, updated.HardwareID)
	assert.Nil(t, updated.HardwareDescription)
	assert.Empty(t, f.inventory.events, "switching away from hardware retires the auto event")
}

func TestUpdateTicketTypeChangeCreatesEvent(t *testing.T) {
	f := newTicketFixture()
	hw := f.hardware.add("0123456789012", "USB-C dock", nil, strp("129.99"))
	barcode := hw.Barcode

	ticket, err := f.service.CreateTicket(CreateTicketRequest{
		ClientKey: "acme",
		StartISO:  "2024-03-01T09:00:00",
	})
	require.NoError(t, err)
	require.Empty(t, f.inventory.events)

	_, err = f.service.UpdateTicket(ticket.ID, UpdateTicketRequest{
		EntryType:       strp("hardware"),
		HardwareBarcode: &barcode,
	})
	require.NoError(t, err)

	event, err := f.inventory.GetEventByTicketID(nil, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, hw.ID, event.HardwareID)
	assert.Equal(t, -1, event.Change)
}

func TestDeleteTicketCascades(t *testing.T) {
	f := newTicketFixture()
	hw := f.hardware.add("0123456789012", "USB-C dock", nil, strp("129.99"))
	barcode := hw.Barcode

	ticket, err := f.service.CreateTicket(CreateTicketRequest{
		ClientKey:       "acme",
		StartISO:        "2024-03-01T09:00:00",
		EntryType:       "hardware",
		HardwareBarcode: &barcode,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteTicket(ticket.ID))

	assert.Empty(t, f.tickets.tickets)
	assert.Empty(t, f.inventory.events)
	assert.Equal(t, []int64{ticket.ID}, f.files.removed)

	err = f.service.DeleteTicket(ticket.ID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestGetActiveTicketsFiltersByClient(t *testing.T) {
	f := newTicketFixture()
	end := "2024-03-01T10:00:00"

	_, err := f.service.CreateTicket(CreateTicketRequest{ClientKey: "acme", StartISO: "2024-03-01T09:00:00"})
	require.NoError(t, err)
	_, err = f.service.CreateTicket(CreateTicketRequest{ClientKey: "globex", StartISO: "2024-03-01T09:30:00"})
	require.NoError(t, err)
	_, err = f.service.CreateTicket(CreateTicketRequest{ClientKey: "acme", StartISO: "2024-03-01T08:00:00", EndISO: &end})
	require.NoError(t, err)

	key := "acme"
	active, err := f.service.GetActiveTickets(&key, 100, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "acme", active[0].ClientKey)
	assert.Nil(t, active[0].EndISO)
}

func TestTicketQuantityValidation(t *testing.T) {
	f := newTicketFixture()

	_, err := f.service.CreateTicket(CreateTicketRequest{
		ClientKey:        "acme",
		StartISO:         "2024-03-01T09:00:00",
		EntryType:        "software",
		HardwareQuantity: intp(0),
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.service.CreateTicket(CreateTicketRequest{
		ClientKey:        "acme",
		StartISO:         "2024-03-01T09:00:00",
		EntryType:        "deployment_flat_rate",
		FlatRateQuantity: intp(-1),
	})
	assert.ErrorIs(t, err, ErrValidation)
}
