package services

import (
	"errors"
	"fmt"
	"strings"

	"tickettrack_backend/internal/models"
	"tickettrack_backend/internal/repositories"
)

var (
	ErrEventNotFound  = errors.New("inventory event not found")
	ErrEventProtected = errors.New("ticket-managed inventory event cannot be modified directly")
)

// --- DTOs ---

// StockMovementRequest covers both receive and use operations.
type StockMovementRequest struct {
	HardwareID       *int64  `json:"hardware_id"`
	Barcode          *string `json:"barcode"`
	Quantity         int     `json:"quantity" binding:"required,gte=1"`
	CounterpartyName *string `json:"counterparty_name"`
	UnitCost         *string `json:"unit_cost"`
	SaleUnitPrice    *string `json:"sale_unit_price"`
	Note             *string `json:"note"`
}

// CreateEventRequest is the manual ledger entry form: any signed change.
type CreateEventRequest struct {
	HardwareID       *int64  `json:"hardware_id"`
	Barcode          *string `json:"barcode"`
	Change           int     `json:"change" binding:"required"`
	CounterpartyName *string `json:"counterparty_name"`
	CounterpartyType *string `json:"counterparty_type"`
	UnitCost         *string `json:"unit_cost"`
	SaleUnitPrice    *string `json:"sale_unit_price"`
	Note             *string `json:"note"`
}

// --- InventoryService Interface ---

type InventoryService interface {
	ReceiveStock(req StockMovementRequest) (*models.InventoryEvent, error)
	UseStock(req StockMovementRequest) (*models.InventoryEvent, error)
	CreateEvent(req CreateEventRequest) (*models.InventoryEvent, error)
	GetEvents(limit, offset int) ([]models.InventoryEvent, error)
	GetSummary() ([]models.InventorySummaryItem, error)
	DeleteEvent(id int64) error
}

type inventoryService struct {
	inventoryRepo repositories.InventoryRepository
	hardwareRepo  repositories.HardwareRepository
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(ir repositories.InventoryRepository, hr repositories.HardwareRepository) InventoryService {
	return &inventoryService{inventoryRepo: ir, hardwareRepo: hr}
}

func (s *inventoryService) lookupHardware(hardwareID *int64, barcode *string) (*models.Hardware, error) {
	return resolveHardwareItem(s.hardwareRepo, nil, hardwareID, barcode)
}

// buildEvent assembles a ledger row with unit and extended amounts filled in.
// Unit overrides from the request win over the catalog defaults.
func buildEvent(hw *models.Hardware, change int, source string, counterpartyType *string, req StockMovementRequest) (*models.InventoryEvent, error) {
	unitCost := amountToFloat(req.UnitCost)
	if req.UnitCost != nil && unitCost == nil {
		return nil, fmt.Errorf("%w: invalid unit_cost %q", ErrValidation, *req.UnitCost)
	}
	if unitCost == nil {
		unitCost = amountToFloat(hw.AcquisitionCost)
	}
	unitSale := amountToFloat(req.SaleUnitPrice)
	if req.SaleUnitPrice != nil && unitSale == nil {
		return nil, fmt.Errorf("%w: invalid sale_unit_price %q", ErrValidation, *req.SaleUnitPrice)
	}
	if unitSale == nil {
		unitSale = amountToFloat(hw.SalesPrice)
	}

	var counterpartyName *string
	if req.CounterpartyName != nil && strings.TrimSpace(*req.CounterpartyName) != "" {
		trimmed := strings.TrimSpace(*req.CounterpartyName)
		counterpartyName = &trimmed
	}

	return &models.InventoryEvent{
		HardwareID:       hw.ID,
		Change:           change,
		Source:           source,
		CreatedAt:        utcNowISO(),
		CounterpartyName: counterpartyName,
		CounterpartyType: counterpartyType,
		UnitCost:         unitCost,
		ActualCost:       totalForChange(unitCost, change),
		SaleUnitPrice:    unitSale,
		SalePriceTotal:   totalForChange(unitSale, change),
		Note:             req.Note,
	}, nil
}

func (s *inventoryService) insertEvent(event *models.InventoryEvent, hw *models.Hardware) (*models.InventoryEvent, error) {
	if _, err := s.inventoryRepo.CreateEvent(nil, event); err != nil {
		return nil, fmt.Errorf("failed to record inventory event: %w", err)
	}
	event.HardwareBarcode = &hw.Barcode
	event.HardwareDescription = &hw.Description
	return event, nil
}

// --- Method Implementations ---

func (s *inventoryService) ReceiveStock(req StockMovementRequest) (*models.InventoryEvent, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	hw, err := s.lookupHardware(req.HardwareID, req.Barcode)
	if err != nil {
		return nil, err
	}
	counterparty := models.CounterpartyVendor
	event, err := buildEvent(hw, req.Quantity, models.SourceAPIReceive, &counterparty, req)
	if err != nil {
		return nil, err
	}
	return s.insertEvent(event, hw)
}

func (s *inventoryService) UseStock(req StockMovementRequest) (*models.InventoryEvent, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	hw, err := s.lookupHardware(req.HardwareID, req.Barcode)
	if err != nil {
		return nil, err
	}
	counterparty := models.CounterpartyClient
	event, err := buildEvent(hw, -req.Quantity, models.SourceAPIUse, &counterparty, req)
	if err != nil {
		return nil, err
	}
	return s.insertEvent(event, hw)
}

func (s *inventoryService) CreateEvent(req CreateEventRequest) (*models.InventoryEvent, error) {
	if req.Change == 0 {
		return nil, fmt.Errorf("%w: change must be non-zero", ErrValidation)
	}
	hw, err := s.lookupHardware(req.HardwareID, req.Barcode)
	if err != nil {
		return nil, err
	}
	movement := StockMovementRequest{
		CounterpartyName: req.CounterpartyName,
		UnitCost:         req.UnitCost,
		SaleUnitPrice:    req.SaleUnitPrice,
		Note:             req.Note,
	}
	event, err := buildEvent(hw, req.Change, models.SourceManual, req.CounterpartyType, movement)
	if err != nil {
		return nil, err
	}
	return s.insertEvent(event, hw)
}

func (s *inventoryService) GetEvents(limit, offset int) ([]models.InventoryEvent, error) {
	events, err := s.inventoryRepo.GetEvents(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory events: %w", err)
	}
	return events, nil
}

func (s *inventoryService) GetSummary() ([]models.InventorySummaryItem, error) {
	summary, err := s.inventoryRepo.GetSummary()
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory summary: %w", err)
	}
	return summary, nil
}

// DeleteEvent removes a manual ledger row. Events mirrored from hardware
// tickets are owned by the ticket lifecycle and are refused here.
func (s *inventoryService) DeleteEvent(id int64) error {
	event, err := s.inventoryRepo.GetEventByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get inventory event: %w", err)
	}
	if event.Source == models.SourceTicketAuto {
		return ErrEventProtected
	}
	if err := s.inventoryRepo.DeleteEvent(nil, id); err != nil {
		return fmt.Errorf("failed to delete inventory event: %w", err)
	}
	return nil
}
