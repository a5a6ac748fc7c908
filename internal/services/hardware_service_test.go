package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHardwareNormalizes(t *testing.T) {
	repo := newFakeHardwareRepo()
	service := NewHardwareService(repo)

	item, err := service.CreateHardware(CreateHardwareRequest{
		Barcode:         "123456789012",
		Description:     "  USB-C dock  ",
		AcquisitionCost: strp("$80"),
		SalesPrice:      strp("129.99"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0123456789012", item.Barcode, "UPC-A scans register in EAN-13 form")
	assert.Equal(t, "USB-C dock", item.Description)
	require.NotNil(t, item.AcquisitionCost)
	assert.Equal(t, "80.00", *item.AcquisitionCost)
	require.NotNil(t, item.SalesPrice)
	assert.Equal(t, "129.99", *item.SalesPrice)
	assert.NotZero(t, item.ID)
}

func TestCreateHardwareValidation(t *testing.T) {
	service := NewHardwareService(newFakeHardwareRepo())

	_, err := service.CreateHardware(CreateHardwareRequest{Barcode: "  ", Description: "dock"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.CreateHardware(CreateHardwareRequest{Barcode: "abc-1", Description: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.CreateHardware(CreateHardwareRequest{
		Barcode: "abc-1", Description: "dock", SalesPrice: strp("not money"),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateHardwareDuplicateBarcode(t *testing.T) {
	repo := newFakeHardwareRepo()
	repo.add("0123456789012", "USB-C dock", nil, nil)
	service := NewHardwareService(repo)

	// A 12-digit scan collides with the stored 13-digit form.
	_, err := service.CreateHardware(CreateHardwareRequest{Barcode: "123456789012", Description: "another dock"})
	assert.ErrorIs(t, err, ErrBarcodeTaken)
}

func TestLookupByBarcodeAliases(t *testing.T) {
	repo := newFakeHardwareRepo()
	stored := repo.add("0123456789012", "USB-C dock", nil, nil)
	service := NewHardwareService(repo)

	for _, scan := range []string{"0123456789012", "123456789012", "1-2345-6789-012"} {
		item, err := service.LookupByBarcode(scan)
		require.NoError(t, err, "scan %q", scan)
		assert.Equal(t, stored.ID, item.ID)
	}

	_, err := service.LookupByBarcode("999000111222")
	assert.ErrorIs(t, err, ErrHardwareNotFound)

	_, err = service.LookupByBarcode("   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateHardwarePartial(t *testing.T) {
	repo := newFakeHardwareRepo()
	stored := repo.add("ABC-1", "USB-C dock", strp("80.00"), strp("129.99"))
	service := NewHardwareService(repo)

	item, err := service.UpdateHardware(stored.ID, UpdateHardwareRequest{
		SalesPrice: strp("$149.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC-1", item.Barcode, "untouched fields stay put")
	require.NotNil(t, item.SalesPrice)
	assert.Equal(t, "149.50", *item.SalesPrice)
	require.NotNil(t, item.AcquisitionCost)
	assert.Equal(t, "80.00", *item.AcquisitionCost)

	_, err = service.UpdateHardware(stored.ID, UpdateHardwareRequest{Barcode: strp("  ")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.UpdateHardware(9999, UpdateHardwareRequest{})
	assert.ErrorIs(t, err, ErrHardwareNotFound)
}

func TestDeleteHardware(t *testing.T) {
	repo := newFakeHardwareRepo()
	stored := repo.add("abc-1", "USB-C dock", nil, nil)
	service := NewHardwareService(repo)

	require.NoError(t, service.DeleteHardware(stored.ID))
	_, err := service.GetHardwareByID(stored.ID)
	assert.ErrorIs(t, err, ErrHardwareNotFound)

	assert.ErrorIs(t, service.DeleteHardware(stored.ID), ErrHardwareNotFound)
}
