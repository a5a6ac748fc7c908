package services

import (
	"testing"

	"tickettrack_backend/internal/clientstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClientService(t *testing.T) ClientService {
	t.Helper()
	return NewClientService(clientstore.NewStore(t.TempDir()))
}

func TestLookupByName(t *testing.T) {
	service := newTestClientService(t)
	_, err := service.CreateClient(CreateClientRequest{
		Key:        "acme",
		Name:       "Acme Corp",
		Attributes: map[string]interface{}{"support_rate": "120.00"},
	})
	require.NoError(t, err)

	key, entry, err := service.LookupByName("acme corp")
	require.NoError(t, err)
	assert.Equal(t, "acme", key)
	assert.Equal(t, "Acme Corp", entry.Name("acme"))
	assert.Equal(t, "120.00", entry["support_rate"])

	_, _, err = service.LookupByName("Globex")
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, _, err = service.LookupByName("   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateClientValidation(t *testing.T) {
	service := newTestClientService(t)

	_, err := service.CreateClient(CreateClientRequest{Key: "  ", Name: "Acme Corp"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.CreateClient(CreateClientRequest{Key: "acme", Name: "Acme Corp"})
	require.NoError(t, err)

	_, err = service.CreateClient(CreateClientRequest{Key: "acme", Name: "Acme Again"})
	assert.ErrorIs(t, err, ErrClientExists)
}

func TestUpdateClientRemovesNullAttributes(t *testing.T) {
	service := newTestClientService(t)
	_, err := service.CreateClient(CreateClientRequest{
		Key:        "acme",
		Name:       "Acme Corp",
		Attributes: map[string]interface{}{"support_rate": "120.00", "vpn_type": "wireguard"},
	})
	require.NoError(t, err)

	entry, err := service.UpdateClient("acme", UpdateClientRequest{
		Attributes: map[string]interface{}{"vpn_type": nil},
	})
	require.NoError(t, err)
	_, present := entry["vpn_type"]
	assert.False(t, present)
	assert.Equal(t, "120.00", entry["support_rate"])

	_, err = service.UpdateClient("nobody", UpdateClientRequest{})
	assert.ErrorIs(t, err, ErrClientNotFound)
}
