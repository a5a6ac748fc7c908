package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tickettrack_backend/internal/models"
	"tickettrack_backend/internal/repositories"
	"tickettrack_backend/pkg/utils"
)

var (
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrHardwareNotFound = errors.New("hardware item not found")
)

// ClientDirectory is the lookup surface of the file-backed client directory.
// Ticket and project writes validate client_key through it, since the
// relational store cannot enforce cross-store references.
type ClientDirectory interface {
	ResolveName(key string) (string, error)
	BillingRate(key string) (*string, error)
}

// AttachmentFileStore removes a ticket's attachment files from disk once the
// owning ticket row is gone.
type AttachmentFileStore interface {
	RemoveTicketFiles(ticketID int64) error
}

// --- DTOs ---

// CreateTicketRequest is used for creating a new ticket.
type CreateTicketRequest struct {
	// ClientKey is validated by the service rather than binding so the
	// project-scoped create route can inherit the project's client.
	Client        *string `json:"client"`
	ClientKey     string  `json:"client_key"`
	StartISO      string  `json:"start_iso" binding:"required"`
	EndISO        *string `json:"end_iso"`
	Note          *string `json:"note"`
	EntryType     string  `json:"entry_type"`
	Sent          *int    `json:"sent"`
	InvoiceNumber *string `json:"invoice_number"`
	InvoicedTotal *string `json:"invoiced_total"`

	HardwareID          *int64  `json:"hardware_id"`
	HardwareBarcode     *string `json:"hardware_barcode"`
	HardwareDescription *string `json:"hardware_description"`
	HardwareSalesPrice  *string `json:"hardware_sales_price"`
	HardwareQuantity    *int    `json:"hardware_quantity" binding:"omitempty,gte=1"`

	FlatRateAmount   *string `json:"flat_rate_amount"`
	FlatRateQuantity *int    `json:"flat_rate_quantity" binding:"omitempty,gte=1"`

	ProjectID     *int64 `json:"project_id"`
	ProjectPosted *int   `json:"project_posted"`
}

// UpdateTicketRequest carries a partial update; only non-nil fields are applied.
type UpdateTicketRequest struct {
	Client        *string `json:"client"`
	ClientKey     *string `json:"client_key"`
	StartISO      *string `json:"start_iso"`
	EndISO        *string `json:"end_iso"`
	Note          *string `json:"note"`
	Completed     *int    `json:"completed"`
	Sent          *int    `json:"sent"`
	InvoiceNumber *string `json:"invoice_number"`
	InvoicedTotal *string `json:"invoiced_total"`
	EntryType     *string `json:"entry_type"`

	HardwareID          *int64  `json:"hardware_id"`
	HardwareBarcode     *string `json:"hardware_barcode"`
	HardwareDescription *string `json:"hardware_description"`
	HardwareSalesPrice  *string `json:"hardware_sales_price"`
	HardwareQuantity    *int    `json:"hardware_quantity" binding:"omitempty,gte=1"`

	FlatRateAmount   *string `json:"flat_rate_amount"`
	FlatRateQuantity *int    `json:"flat_rate_quantity" binding:"omitempty,gte=1"`

	ProjectID     *int64 `json:"project_id"`
	ProjectPosted *int   `json:"project_posted"`
}

// --- TicketService Interface ---

type TicketService interface {
	CreateTicket(req CreateTicketRequest) (*models.Ticket, error)
	GetTickets(limit, offset int) ([]models.Ticket, error)
	GetActiveTickets(clientKey *string, limit, offset int) ([]models.Ticket, error)
	GetTicketByID(id int64) (*models.Ticket, error)
	UpdateTicket(id int64, req UpdateTicketRequest) (*models.Ticket, error)
	DeleteTicket(id int64) error
}

type ticketService struct {
	ticketRepo     repositories.TicketRepository
	inventoryRepo  repositories.InventoryRepository
	hardwareRepo   repositories.HardwareRepository
	attachmentRepo repositories.AttachmentRepository
	directory      ClientDirectory
	files          AttachmentFileStore
	tx             repositories.TxManager
	loc            *time.Location
}

// NewTicketService creates a new instance of TicketService.
func NewTicketService(
	tr repositories.TicketRepository,
	ir repositories.InventoryRepository,
	hr repositories.HardwareRepository,
	ar repositories.AttachmentRepository,
	directory ClientDirectory,
	files AttachmentFileStore,
	tx repositories.TxManager,
	loc *time.Location,
) TicketService {
	return &ticketService{
		ticketRepo:     tr,
		inventoryRepo:  ir,
		hardwareRepo:   hr,
		attachmentRepo: ar,
		directory:      directory,
		files:          files,
		tx:             tx,
		loc:            loc,
	}
}

// resolveClient validates client_key against the directory and returns the
// display name, preferring an explicitly supplied one.
func (s *ticketService) resolveClient(clientKey string, explicitName *string) (string, error) {
	key := strings.TrimSpace(clientKey)
	if key == "" {
		return "", fmt.Errorf("%w: client_key is required", ErrValidation)
	}
	name, err := s.directory.ResolveName(key)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownClientKey, key)
	}
	if explicitName != nil && strings.TrimSpace(*explicitName) != "" {
		return strings.TrimSpace(*explicitName), nil
	}
	return name, nil
}

// resolveHardwareItem finds the catalog item referenced by an operation,
// trying barcode aliases first and falling back to the numeric id.
func resolveHardwareItem(repo repositories.HardwareRepository, exec repositories.SQLExecutor, hardwareID *int64, barcode *string) (*models.Hardware, error) {
	if barcode != nil && strings.TrimSpace(*barcode) != "" {
		for _, alias := range utils.BarcodeAliases(*barcode) {
			hw, err := repo.GetHardwareByBarcode(exec, alias)
			if err == nil {
				return hw, nil
			}
			if !errors.Is(err, repositories.ErrNotFound) {
				return nil, err
			}
		}
	}
	if hardwareID != nil && *hardwareID > 0 {
		hw, err := repo.GetHardwareByID(exec, *hardwareID)
		if err == nil {
			return hw, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrHardwareNotFound
}

func amountToFloat(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	d, ok := NormalizeAmount(*raw)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return &f
}

func totalForChange(unit *float64, change int) *float64 {
	if unit == nil {
		return nil
	}
	quantity := change
	if quantity < 0 {
		quantity = -quantity
	}
	if quantity == 0 {
		return nil
	}
	v := *unit * float64(quantity)
	return &v
}

// reconcileInventory keeps a hardware ticket and its mirrored inventory event
// in lockstep. It must run inside the same transaction as the ticket write.
// hw is non-nil exactly when the ticket's resulting type is hardware.
func (s *ticketService) reconcileInventory(exec repositories.SQLExecutor, t *models.Ticket, hw *models.Hardware) error {
	if t.EntryType != models.EntryTypeHardware || hw == nil {
		// Manual product types and everything else never touch inventory;
		// drop a stale auto event if a type change left one behind.
		return s.inventoryRepo.DeleteEventByTicketID(exec, t.ID)
	}

	change := -t.HardwareUnits()
	unitCost := amountToFloat(hw.AcquisitionCost)
	unitSale := amountToFloat(t.HardwareSalesPrice)

	existing, err := s.inventoryRepo.GetEventByTicketID(exec, t.ID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		event := &models.InventoryEvent{
			HardwareID:     hw.ID,
			Change:         change,
			Source:         models.SourceTicketAuto,
			CreatedAt:      utcNowISO(),
			TicketID:       &t.ID,
			UnitCost:       unitCost,
			ActualCost:     totalForChange(unitCost, change),
			SaleUnitPrice:  unitSale,
			SalePriceTotal: totalForChange(unitSale, change),
		}
		_, err = s.inventoryRepo.CreateEvent(exec, event)
		return err
	}

	// Update reuses the existing row so ledger ordering and the ticket's
	// audit trail stay intact.
	existing.HardwareID = hw.ID
	existing.Change = change
	existing.Source = models.SourceTicketAuto
	existing.TicketID = &t.ID
	existing.CounterpartyName = nil
	existing.CounterpartyType = nil
	existing.UnitCost = unitCost
	existing.ActualCost = totalForChange(unitCost, change)
	existing.SaleUnitPrice = unitSale
	existing.SalePriceTotal = totalForChange(unitSale, change)
	return s.inventoryRepo.UpdateEvent(exec, existing)
}

// syncHardwareSnapshot copies the catalog item's identifying fields onto the
// ticket so invoices remain stable even if the catalog changes later.
func syncHardwareSnapshot(t *models.Ticket, hw *models.Hardware) {
	t.HardwareID = &hw.ID
	barcode := hw.Barcode
	t.HardwareBarcode = &barcode
	description := hw.Description
	t.HardwareDescription = &description
	t.HardwareSalesPrice = hw.SalesPrice
	if t.HardwareQuantity == nil {
		one := 1
		t.HardwareQuantity = &one
	}
}

// clearHardwareLink removes the catalog link. Manual product types keep their
// free-text description/price/quantity; time and flat-rate entries clear
// everything.
func clearHardwareLink(t *models.Ticket, keepProductFields bool) {
	t.HardwareID = nil
	t.HardwareBarcode = nil
	if !keepProductFields {
		t.HardwareDescription = nil
		t.HardwareSalesPrice = nil
		t.HardwareQuantity = nil
	}
}

func validateQuantity(quantity *int, field string) error {
	if quantity != nil && *quantity < 1 {
		return fmt.Errorf("%w: %s must be at least 1", ErrValidation, field)
	}
	return nil
}

// withAttachments loads attachment metadata and download URLs onto a ticket.
func (s *ticketService) withAttachments(t *models.Ticket) (*models.Ticket, error) {
	attachments, err := s.attachmentRepo.GetAttachmentsByTicketID(t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attachments for ticket %d: %w", t.ID, err)
	}
	for i := range attachments {
		attachments[i].URL = fmt.Sprintf("/api/v1/tickets/%d/attachments/%s", t.ID, attachments[i].ID)
	}
	t.Attachments = attachments
	return t, nil
}

func (s *ticketService) withAttachmentsList(tickets []models.Ticket) ([]models.Ticket, error) {
	for i := range tickets {
		if _, err := s.withAttachments(&tickets[i]); err != nil {
			return nil, err
		}
	}
	return tickets, nil
}

// --- Method Implementations ---

func (s *ticketService) CreateTicket(req CreateTicketRequest) (*models.Ticket, error) {
	entryType, err := models.ParseEntryType(req.EntryType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := validateQuantity(req.HardwareQuantity, "hardware_quantity"); err != nil {
		return nil, err
	}
	if err := validateQuantity(req.FlatRateQuantity, "flat_rate_quantity"); err != nil {
		return nil, err
	}

	clientName, err := s.resolveClient(req.ClientKey, req.Client)
	if err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		Client:        clientName,
		ClientKey:     strings.TrimSpace(req.ClientKey),
		StartISO:      req.StartISO,
		EndISO:        req.EndISO,
		Note:          req.Note,
		CreatedAt:     utcNowISO(),
		EntryType:     entryType,
		InvoiceNumber: req.InvoiceNumber,
		InvoicedTotal: req.InvoicedTotal,
		ProjectID:     req.ProjectID,
	}
	if req.Sent != nil {
		ticket.Sent = *req.Sent
	}
	if req.ProjectPosted != nil {
		ticket.ProjectPosted = *req.ProjectPosted
	}
	if entryType.IsHardwareLike() {
		ticket.HardwareDescription = req.HardwareDescription
		ticket.HardwareSalesPrice = req.HardwareSalesPrice
		ticket.HardwareQuantity = req.HardwareQuantity
	}
	if entryType == models.EntryTypeDeploymentFlatRate {
		ticket.FlatRateAmount = req.FlatRateAmount
		ticket.FlatRateQuantity = req.FlatRateQuantity
	}

	rate, err := s.directory.BillingRate(ticket.ClientKey)
	if err != nil {
		rate = nil
	}

	txErr := s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		var hw *models.Hardware
		if entryType == models.EntryTypeHardware {
			hw, err = resolveHardwareItem(s.hardwareRepo, exec, req.HardwareID, req.HardwareBarcode)
			if err != nil {
				return err
			}
			syncHardwareSnapshot(ticket, hw)
		}

		ApplyBilling(ticket, rate, s.loc)

		if _, err := s.ticketRepo.CreateTicket(exec, ticket); err != nil {
			return err
		}
		return s.reconcileInventory(exec, ticket, hw)
	})
	if txErr != nil {
		return nil, txErr
	}

	ticket.Attachments = []models.TicketAttachment{}
	return ticket, nil
}

func (s *ticketService) GetTickets(limit, offset int) ([]models.Ticket, error) {
	tickets, err := s.ticketRepo.GetTickets(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}
	return s.withAttachmentsList(tickets)
}

func (s *ticketService) GetActiveTickets(clientKey *string, limit, offset int) ([]models.Ticket, error) {
	tickets, err := s.ticketRepo.GetActiveTickets(clientKey, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get active tickets: %w", err)
	}
	return s.withAttachmentsList(tickets)
}

func (s *ticketService) GetTicketByID(id int64) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.GetTicketByID(nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket by ID: %w", err)
	}
	return s.withAttachments(ticket)
}

func (s *ticketService) UpdateTicket(id int64, req UpdateTicketRequest) (*models.Ticket, error) {
	if err := validateQuantity(req.HardwareQuantity, "hardware_quantity"); err != nil {
		return nil, err
	}
	if err := validateQuantity(req.FlatRateQuantity, "flat_rate_quantity"); err != nil {
		return nil, err
	}

	var updated *models.Ticket
	txErr := s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		ticket, err := s.ticketRepo.GetTicketByID(exec, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrTicketNotFound
			}
			return err
		}

		entryType := ticket.EntryType
		if req.EntryType != nil {
			entryType, err = models.ParseEntryType(*req.EntryType)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
		}

		if req.ClientKey != nil || req.Client != nil {
			key := ticket.ClientKey
			if req.ClientKey != nil {
				key = *req.ClientKey
			}
			name, err := s.resolveClient(key, req.Client)
			if err != nil {
				return err
			}
			ticket.ClientKey = strings.TrimSpace(key)
			ticket.Client = name
		}

		if req.StartISO != nil {
			ticket.StartISO = *req.StartISO
		}
		if req.EndISO != nil {
			ticket.EndISO = req.EndISO
		}
		if req.Note != nil {
			ticket.Note = req.Note
		}
		if req.Completed != nil {
			ticket.Completed = *req.Completed
		}
		if req.Sent != nil {
			ticket.Sent = *req.Sent
		}
		if req.InvoiceNumber != nil {
			ticket.InvoiceNumber = req.InvoiceNumber
		}
		if req.InvoicedTotal != nil {
			ticket.InvoicedTotal = req.InvoicedTotal
		}
		if req.ProjectID != nil {
			ticket.ProjectID = req.ProjectID
		}
		if req.ProjectPosted != nil {
			ticket.ProjectPosted = *req.ProjectPosted
		}
		if req.HardwareDescription != nil {
			ticket.HardwareDescription = req.HardwareDescription
		}
		if req.HardwareSalesPrice != nil {
			ticket.HardwareSalesPrice = req.HardwareSalesPrice
		}
		if req.HardwareQuantity != nil {
			ticket.HardwareQuantity = req.HardwareQuantity
		}
		if req.FlatRateAmount != nil {
			ticket.FlatRateAmount = req.FlatRateAmount
		}
		if req.FlatRateQuantity != nil {
			ticket.FlatRateQuantity = req.FlatRateQuantity
		}
		ticket.EntryType = entryType

		var hw *models.Hardware
		switch {
		case entryType == models.EntryTypeHardware:
			hardwareID := req.HardwareID
			if hardwareID == nil {
				hardwareID = ticket.HardwareID
			}
			hw, err = resolveHardwareItem(s.hardwareRepo, exec, hardwareID, req.HardwareBarcode)
			if err != nil {
				return err
			}
			syncHardwareSnapshot(ticket, hw)
		case entryType.IsHardwareLike():
			clearHardwareLink(ticket, true)
		default:
			clearHardwareLink(ticket, false)
		}

		rate, rateErr := s.directory.BillingRate(ticket.ClientKey)
		if rateErr != nil {
			rate = nil
		}
		ApplyBilling(ticket, rate, s.loc)

		if err := s.ticketRepo.UpdateTicket(exec, ticket); err != nil {
			return err
		}
		if err := s.reconcileInventory(exec, ticket, hw); err != nil {
			return err
		}
		updated = ticket
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.withAttachments(updated)
}

func (s *ticketService) DeleteTicket(id int64) error {
	txErr := s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		if _, err := s.ticketRepo.GetTicketByID(exec, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrTicketNotFound
			}
			return err
		}
		if err := s.inventoryRepo.DeleteEventByTicketID(exec, id); err != nil {
			return err
		}
		if err := s.attachmentRepo.DeleteAttachmentsByTicketID(exec, id); err != nil {
			return err
		}
		return s.ticketRepo.DeleteTicket(exec, id)
	})
	if txErr != nil {
		return txErr
	}

	if err := s.files.RemoveTicketFiles(id); err != nil {
		// Metadata is already gone; orphan files are harmless but worth a log line.
		utils.LogError(err, fmt.Sprintf("DeleteTicket: failed to remove attachment files for ticket %d", id))
	}
	return nil
}
