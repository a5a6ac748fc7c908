package services

import (
	"sort"

	"tickettrack_backend/internal/models"
	"tickettrack_backend/internal/repositories"
)

// In-memory fakes for the repository layer. They ignore the SQLExecutor
// argument, which service code only uses to share a transaction.

type fakeTxManager struct{}

func (fakeTxManager) WithinTx(fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTicketRepo struct {
	nextID  int64
	tickets map[int64]*models.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[int64]*models.Ticket)}
}

func (r *fakeTicketRepo) CreateTicket(_ repositories.SQLExecutor, ticket *models.Ticket) (int64, error) {
	r.nextID++
	ticket.ID = r.nextID
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return ticket.ID, nil
}

func (r *fakeTicketRepo) GetTicketByID(_ repositories.SQLExecutor, id int64) (*models.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) sorted() []models.Ticket {
	ids := make([]int64, 0, len(r.tickets))
	for id := range r.tickets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	out := make([]models.Ticket, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.tickets[id])
	}
	return out
}

func (r *fakeTicketRepo) GetTickets(limit, offset int) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range r.sorted() {
		if t.ProjectID == nil || t.ProjectPosted != 0 {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) GetActiveTickets(clientKey *string, limit, offset int) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range r.sorted() {
		if t.EntryType != models.EntryTypeTime || t.EndISO != nil {
			continue
		}
		if clientKey != nil && t.ClientKey != *clientKey {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTicketRepo) GetAllTickets() ([]models.Ticket, error) {
	return r.sorted(), nil
}

func (r *fakeTicketRepo) GetProjectTickets(_ repositories.SQLExecutor, projectID int64, includePosted bool) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range r.sorted() {
		if t.ProjectID == nil || *t.ProjectID != projectID {
			continue
		}
		if !includePosted && t.ProjectPosted != 0 {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTicketRepo) UpdateTicket(_ repositories.SQLExecutor, ticket *models.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return repositories.ErrNotFound
	}
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) DeleteTicket(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.tickets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) MarkProjectTicketsPosted(_ repositories.SQLExecutor, projectID int64) (int64, error) {
	var flipped int64
	for _, t := range r.tickets {
		if t.ProjectID != nil && *t.ProjectID == projectID && t.ProjectPosted == 0 {
			t.ProjectPosted = 1
			flipped++
		}
	}
	return flipped, nil
}

func (r *fakeTicketRepo) DetachPostedTickets(_ repositories.SQLExecutor, projectID int64) error {
	for _, t := range r.tickets {
		if t.ProjectID != nil && *t.ProjectID == projectID && t.ProjectPosted != 0 {
			t.ProjectID = nil
		}
	}
	return nil
}

type fakeInventoryRepo struct {
	nextID int64
	events map[int64]*models.InventoryEvent
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{events: make(map[int64]*models.InventoryEvent)}
}

func (r *fakeInventoryRepo) CreateEvent(_ repositories.SQLExecutor, event *models.InventoryEvent) (int64, error) {
	r.nextID++
	event.ID = r.nextID
	clone := *event
	r.events[event.ID] = &clone
	return event.ID, nil
}

func (r *fakeInventoryRepo) UpdateEvent(_ repositories.SQLExecutor, event *models.InventoryEvent) error {
	if _, ok := r.events[event.ID]; !ok {
		return repositories.ErrNotFound
	}
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeInventoryRepo) GetEventByID(id int64) (*models.InventoryEvent, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (r *fakeInventoryRepo) GetEventByTicketID(_ repositories.SQLExecutor, ticketID int64) (*models.InventoryEvent, error) {
	for _, event := range r.events {
		if event.TicketID != nil && *event.TicketID == ticketID {
			clone := *event
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeInventoryRepo) DeleteEvent(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.events[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeInventoryRepo) DeleteEventByTicketID(_ repositories.SQLExecutor, ticketID int64) error {
	for id, event := range r.events {
		if event.TicketID != nil && *event.TicketID == ticketID {
			delete(r.events, id)
		}
	}
	return nil
}

func (r *fakeInventoryRepo) GetEvents(limit, offset int) ([]models.InventoryEvent, error) {
	out := make([]models.InventoryEvent, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, *event)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeInventoryRepo) GetSummary() ([]models.InventorySummaryItem, error) {
	byHardware := make(map[int64]*models.InventorySummaryItem)
	for _, event := range r.events {
		item := byHardware[event.HardwareID]
		if item == nil {
			item = &models.InventorySummaryItem{HardwareID: event.HardwareID}
			byHardware[event.HardwareID] = item
		}
		item.Quantity += event.Change
	}
	out := make([]models.InventorySummaryItem, 0, len(byHardware))
	for _, item := range byHardware {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HardwareID < out[j].HardwareID })
	return out, nil
}

type fakeHardwareRepo struct {
	nextID int64
	items  map[int64]*models.Hardware
}

func newFakeHardwareRepo() *fakeHardwareRepo {
	return &fakeHardwareRepo{items: make(map[int64]*models.Hardware)}
}

func (r *fakeHardwareRepo) add(barcode, description string, acquisitionCost, salesPrice *string) *models.Hardware {
	r.nextID++
	item := &models.Hardware{
		ID:              r.nextID,
		Barcode:         barcode,
		Description:     description,
		AcquisitionCost: acquisitionCost,
		SalesPrice:      salesPrice,
		CreatedAt:       "2024-01-01T00:00:00Z",
	}
	r.items[item.ID] = item
	return item
}

func (r *fakeHardwareRepo) CreateHardware(_ repositories.SQLExecutor, item *models.Hardware) (int64, error) {
	for _, existing := range r.items {
		if existing.Barcode == item.Barcode {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	item.ID = r.nextID
	clone := *item
	r.items[item.ID] = &clone
	return item.ID, nil
}

func (r *fakeHardwareRepo) GetHardwareByID(_ repositories.SQLExecutor, id int64) (*models.Hardware, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *fakeHardwareRepo) GetHardwareByBarcode(_ repositories.SQLExecutor, barcode string) (*models.Hardware, error) {
	for _, item := range r.items {
		if item.Barcode == barcode {
			clone := *item
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeHardwareRepo) GetHardwareItems(limit, offset int) ([]models.Hardware, error) {
	out := make([]models.Hardware, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeHardwareRepo) UpdateHardware(_ repositories.SQLExecutor, item *models.Hardware) error {
	if _, ok := r.items[item.ID]; !ok {
		return repositories.ErrNotFound
	}
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *fakeHardwareRepo) DeleteHardware(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeAttachmentRepo struct {
	rows map[int64][]models.TicketAttachment
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{rows: make(map[int64][]models.TicketAttachment)}
}

func (r *fakeAttachmentRepo) CreateAttachment(_ repositories.SQLExecutor, attachment *models.TicketAttachment) error {
	r.rows[attachment.TicketID] = append(r.rows[attachment.TicketID], *attachment)
	return nil
}

func (r *fakeAttachmentRepo) GetAttachmentsByTicketID(ticketID int64) ([]models.TicketAttachment, error) {
	return append([]models.TicketAttachment{}, r.rows[ticketID]...), nil
}

func (r *fakeAttachmentRepo) GetAttachment(ticketID int64, attachmentID string) (*models.TicketAttachment, error) {
	for _, attachment := range r.rows[ticketID] {
		if attachment.ID == attachmentID {
			clone := attachment
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAttachmentRepo) DeleteAttachmentsByTicketID(_ repositories.SQLExecutor, ticketID int64) error {
	delete(r.rows, ticketID)
	return nil
}

type fakeDirectory struct {
	names map[string]string
	rates map[string]string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{names: make(map[string]string), rates: make(map[string]string)}
}

func (d *fakeDirectory) ResolveName(key string) (string, error) {
	name, ok := d.names[key]
	if !ok {
		return "", repositories.ErrNotFound
	}
	return name, nil
}

func (d *fakeDirectory) BillingRate(key string) (*string, error) {
	rate, ok := d.rates[key]
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

type fakeFileStore struct {
	removed []int64
}

func (f *fakeFileStore) RemoveTicketFiles(ticketID int64) error {
	f.removed = append(f.removed, ticketID)
	return nil
}

type fakeProjectRepo struct {
	nextID   int64
	projects map[int64]*models.Project
	tickets  *fakeTicketRepo
}

func newFakeProjectRepo(tickets *fakeTicketRepo) *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[int64]*models.Project), tickets: tickets}
}

func (r *fakeProjectRepo) CreateProject(_ repositories.SQLExecutor, project *models.Project) (int64, error) {
	r.nextID++
	project.ID = r.nextID
	clone := *project
	r.projects[project.ID] = &clone
	return project.ID, nil
}

func (r *fakeProjectRepo) GetProjectByID(_ repositories.SQLExecutor, id int64) (*models.Project, error) {
	project, ok := r.projects[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *project
	return &clone, nil
}

func (r *fakeProjectRepo) GetProjects(limit, offset int) ([]models.Project, error) {
	out := make([]models.Project, 0, len(r.projects))
	for _, project := range r.projects {
		out = append(out, *project)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProjectRepo) UpdateProject(_ repositories.SQLExecutor, project *models.Project) error {
	if _, ok := r.projects[project.ID]; !ok {
		return repositories.ErrNotFound
	}
	clone := *project
	r.projects[project.ID] = &clone
	return nil
}

func (r *fakeProjectRepo) DeleteProject(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.projects[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *fakeProjectRepo) CountTicketsByProject() (map[int64]repositories.ProjectTicketCounts, error) {
	counts := make(map[int64]repositories.ProjectTicketCounts)
	for _, t := range r.tickets.tickets {
		if t.ProjectID == nil {
			continue
		}
		c := counts[*t.ProjectID]
		if t.ProjectPosted == 0 {
			c.Open++
		} else {
			c.Posted++
		}
		counts[*t.ProjectID] = c
	}
	return counts, nil
}
