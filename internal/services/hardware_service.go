package services

import (
	"errors"
	"fmt"
	"strings"

	"tickettrack_backend/internal/models"
	"tickettrack_backend/internal/repositories"
	"tickettrack_backend/pkg/utils"
)

var ErrBarcodeTaken = errors.New("barcode already registered")

// --- DTOs ---

// CreateHardwareRequest is used for registering a catalog item.
type CreateHardwareRequest struct {
	Barcode         string  `json:"barcode" binding:"required"`
	Description     string  `json:"description" binding:"required"`
	AcquisitionCost *string `json:"acquisition_cost"`
	SalesPrice      *string `json:"sales_price"`
}

// UpdateHardwareRequest carries a partial update; only non-nil fields are applied.
type UpdateHardwareRequest struct {
	Barcode         *string `json:"barcode"`
	Description     *string `json:"description"`
	AcquisitionCost *string `json:"acquisition_cost"`
	SalesPrice      *string `json:"sales_price"`
}

// --- HardwareService Interface ---

type HardwareService interface {
	CreateHardware(req CreateHardwareRequest) (*models.Hardware, error)
	GetHardwareItems(limit, offset int) ([]models.Hardware, error)
	GetHardwareByID(id int64) (*models.Hardware, error)
	LookupByBarcode(raw string) (*models.Hardware, error)
	UpdateHardware(id int64, req UpdateHardwareRequest) (*models.Hardware, error)
	DeleteHardware(id int64) error
}

type hardwareService struct {
	hardwareRepo repositories.HardwareRepository
}

// NewHardwareService creates a new instance of HardwareService.
func NewHardwareService(hr repositories.HardwareRepository) HardwareService {
	return &hardwareService{hardwareRepo: hr}
}

func normalizeMoneyField(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}
	d, ok := NormalizeAmount(trimmed)
	if !ok {
		return nil, fmt.Errorf("%w: invalid amount %q", ErrValidation, *raw)
	}
	return strPtr(formatCurrency(d)), nil
}

// --- Method Implementations ---

func (s *hardwareService) CreateHardware(req CreateHardwareRequest) (*models.Hardware, error) {
	barcode := utils.NormalizeBarcode(req.Barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode is required", ErrValidation)
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}

	cost, err := normalizeMoneyField(req.AcquisitionCost)
	if err != nil {
		return nil, err
	}
	price, err := normalizeMoneyField(req.SalesPrice)
	if err != nil {
		return nil, err
	}

	item := &models.Hardware{
		Barcode:         barcode,
		Description:     description,
		AcquisitionCost: cost,
		SalesPrice:      price,
		CreatedAt:       utcNowISO(),
	}

	if _, err := s.hardwareRepo.CreateHardware(nil, item); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrBarcodeTaken, barcode)
		}
		return nil, fmt.Errorf("failed to create hardware item: %w", err)
	}
	return item, nil
}

func (s *hardwareService) GetHardwareItems(limit, offset int) ([]models.Hardware, error) {
	items, err := s.hardwareRepo.GetHardwareItems(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get hardware items: %w", err)
	}
	return items, nil
}

func (s *hardwareService) GetHardwareByID(id int64) (*models.Hardware, error) {
	item, err := s.hardwareRepo.GetHardwareByID(nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrHardwareNotFound
		}
		return nil, fmt.Errorf("failed to get hardware item: %w", err)
	}
	return item, nil
}

// LookupByBarcode resolves a scanned code through its aliases, so UPC-A
// scans match items registered in EAN-13 form and vice versa.
func (s *hardwareService) LookupByBarcode(raw string) (*models.Hardware, error) {
	aliases := utils.BarcodeAliases(raw)
	if len(aliases) == 0 {
		return nil, fmt.Errorf("%w: barcode is required", ErrValidation)
	}
	for _, alias := range aliases {
		item, err := s.hardwareRepo.GetHardwareByBarcode(nil, alias)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up barcode: %w", err)
		}
	}
	return nil, ErrHardwareNotFound
}

func (s *hardwareService) UpdateHardware(id int64, req UpdateHardwareRequest) (*models.Hardware, error) {
	item, err := s.hardwareRepo.GetHardwareByID(nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrHardwareNotFound
		}
		return nil, fmt.Errorf("failed to get hardware item: %w", err)
	}

	if req.Barcode != nil {
		barcode := utils.NormalizeBarcode(*req.Barcode)
		if barcode == "" {
			return nil, fmt.Errorf("%w: barcode cannot be empty", ErrValidation)
		}
		item.Barcode = barcode
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: description cannot be empty", ErrValidation)
		}
		item.Description = description
	}
	if req.AcquisitionCost != nil {
		cost, err := normalizeMoneyField(req.AcquisitionCost)
		if err != nil {
			return nil, err
		}
		item.AcquisitionCost = cost
	}
	if req.SalesPrice != nil {
		price, err := normalizeMoneyField(req.SalesPrice)
		if err != nil {
			return nil, err
		}
		item.SalesPrice = price
	}

	if err := s.hardwareRepo.UpdateHardware(nil, item); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrBarcodeTaken, item.Barcode)
		}
		return nil, fmt.Errorf("failed to update hardware item: %w", err)
	}
	return item, nil
}

func (s *hardwareService) DeleteHardware(id int64) error {
	if err := s.hardwareRepo.DeleteHardware(nil, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrHardwareNotFound
		}
		return fmt.Errorf("failed to delete hardware item: %w", err)
	}
	return nil
}
