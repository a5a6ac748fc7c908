package services

import (
	"errors"
	"fmt"
	"strings"

	"tickettrack_backend/internal/clientstore"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrClientExists   = errors.New("client key already exists")
)

// --- DTOs ---

// CreateClientRequest registers a new directory entry.
type CreateClientRequest struct {
	Key        string                 `json:"key" binding:"required"`
	Name       string                 `json:"name" binding:"required"`
	Attributes map[string]interface{} `json:"attributes"`
}

// UpdateClientRequest patches an entry; attributes merge key-by-key and a
// null attribute value removes the attribute.
type UpdateClientRequest struct {
	Name       *string                `json:"name"`
	Attributes map[string]interface{} `json:"attributes"`
}

// --- ClientService Interface ---

type ClientService interface {
	ListClients() (map[string]clientstore.Entry, error)
	GetClient(key string) (clientstore.Entry, error)
	LookupByName(name string) (string, clientstore.Entry, error)
	CreateClient(req CreateClientRequest) (clientstore.Entry, error)
	UpdateClient(key string, req UpdateClientRequest) (clientstore.Entry, error)
	DeleteClient(key string) error
	AttributeKeys() ([]string, error)
	AddAttributeKey(key string) ([]string, error)
	RemoveAttributeKey(key string) ([]string, error)
}

type clientService struct {
	store *clientstore.Store
}

// NewClientService creates a new instance of ClientService.
func NewClientService(store *clientstore.Store) ClientService {
	return &clientService{store: store}
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, clientstore.ErrNotFound):
		return ErrClientNotFound
	case errors.Is(err, clientstore.ErrAlreadyExists):
		return ErrClientExists
	case errors.Is(err, clientstore.ErrInvalidKey):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	default:
		return err
	}
}

// --- Method Implementations ---

func (s *clientService) ListClients() (map[string]clientstore.Entry, error) {
	clients, err := s.store.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *clientService) GetClient(key string) (clientstore.Entry, error) {
	entry, err := s.store.Get(key)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return entry, nil
}

// LookupByName resolves a client by display name (case-insensitive) and
// returns its key with the full entry.
func (s *clientService) LookupByName(name string) (string, clientstore.Entry, error) {
	if strings.TrimSpace(name) == "" {
		return "", nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	key, err := s.store.ResolveKeyByName(name)
	if err != nil {
		return "", nil, mapStoreError(err)
	}
	entry, err := s.store.Get(key)
	if err != nil {
		return "", nil, mapStoreError(err)
	}
	return key, entry, nil
}

func (s *clientService) CreateClient(req CreateClientRequest) (clientstore.Entry, error) {
	key := strings.TrimSpace(req.Key)
	name := strings.TrimSpace(req.Name)
	if key == "" || name == "" {
		return nil, fmt.Errorf("%w: key and name are required", ErrValidation)
	}
	entry, err := s.store.Create(key, name, req.Attributes)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return entry, nil
}

func (s *clientService) UpdateClient(key string, req UpdateClientRequest) (clientstore.Entry, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	entry, err := s.store.Update(key, req.Name, req.Attributes)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return entry, nil
}

func (s *clientService) DeleteClient(key string) error {
	if err := s.store.Delete(key); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (s *clientService) AttributeKeys() ([]string, error) {
	keys, err := s.store.AttributeKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to load attribute keys: %w", err)
	}
	return keys, nil
}

func (s *clientService) AddAttributeKey(key string) ([]string, error) {
	keys, err := s.store.AddAttributeKey(key)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return keys, nil
}

func (s *clientService) RemoveAttributeKey(key string) ([]string, error) {
	keys, err := s.store.RemoveAttributeKey(key)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return keys, nil
}
