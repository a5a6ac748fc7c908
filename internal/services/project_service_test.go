package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type projectFixture struct {
	projects  ProjectService
	tickets   TicketService
	ticketsDB *fakeTicketRepo
	inventory *fakeInventoryRepo
	hardware  *fakeHardwareRepo
	files     *fakeFileStore
}

func newProjectFixture() *projectFixture {
	ticketsDB := newFakeTicketRepo()
	inventory := newFakeInventoryRepo()
	hardware := newFakeHardwareRepo()
	attachments := newFakeAttachmentRepo()
	directory := newFakeDirectory()
	files := &fakeFileStore{}

	directory.names["acme"] = "Acme Corp"
	directory.rates["acme"] = "120.00"

	projectRepo := newFakeProjectRepo(ticketsDB)

	return &projectFixture{
		projects:  NewProjectService(projectRepo, ticketsDB, inventory, attachments, directory, files, fakeTxManager{}),
		tickets:   NewTicketService(ticketsDB, inventory, hardware, attachments, directory, files, fakeTxManager{}, time.UTC),
		ticketsDB: ticketsDB,
		inventory: inventory,
		hardware:  hardware,
		files:     files,
	}
}

func (f *projectFixture) stageTicket(t *testing.T, projectID int64) int64 {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(CreateTicketRequest{
		ClientKey: "acme",
		StartISO:  "2024-03-01T09:00:00",
		ProjectID: &projectID,
	})
	require.NoError(t, err)
	return ticket.ID
}

func TestCreateProjectValidatesClient(t *testing.T) {
	f := newProjectFixture()

	project, err := f.projects.CreateProject(CreateProjectRequest{Name: "Office move", ClientKey: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", project.Client)
	assert.False(t, project.IsFinalized())

	_, err = f.projects.CreateProject(CreateProjectRequest{Name: "Ghost", ClientKey: "nobody"})
	assert.ErrorIs(t, err, ErrUnknownClientKey)
}

func TestStagedTicketsHiddenFromMainList(t *testing.T) {
	f := newProjectFixture()
	project, err := f.projects.CreateProject(CreateProjectRequest{Name: "Office move", ClientKey: "acme"})
	require.NoError(t, err)

	f.stageTicket(t, project.ID)
	_, err = f.tickets.CreateTicket(CreateTicketRequest{ClientKey: "acme", StartISO: "2024-03-01T10:00:00"})
	require.NoError(t, err)

	main, err := f.tickets.GetTickets(100, 0)
	require.NoError(t, err)
	require.Len(t, main, 1, "staged tickets stay inside the project until finalize")
	assert.Nil(t, main[0].ProjectID)
}

func TestFinalizeProjectPostsStagedTickets(t *testing.T) {
	f := newProjectFixture()
	project, err := f.projects.CreateProject(CreateProjectRequest{Name: "Office move", ClientKey: "acme"})
	require.NoError(t, err)
	other, err := f.projects.CreateProject(CreateProjectRequest{Name: "Other", ClientKey: "acme"})
	require.NoError(t, err)

	f.stageTicket(t, project.ID)
	f.stageTicket(t, project.ID)
	otherTicket := f.stageTicket(t, other.ID)

	result, err := f.projects.FinalizeProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.PostedTickets)

	main, err := f.tickets.GetTickets(100, 0)
	require.NoError(t, err)
	assert.Len(t, main, 2, "only the finalized project's tickets surface")

	detail, err := f.projects.GetProjectByID(other.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.OpenTickets, "other projects keep their staged tickets")
	assert.Equal(t, otherTicket, detail.Tickets[0].ID)
}

func TestFinalizeIsRerunnable(t *testing.T) {
	f := newProjectFixture()
	project, err := f.projects.CreateProject(CreateProjectRequest{Name: "Office move", ClientKey: "acme"})
	require.NoError(t, err)

	f.stageTicket(t, project.ID)
	result, err := f.projects.FinalizeProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.PostedTickets)

	// A ticket staged after the first finalize waits for the next one.
	f.stageTicket(t, project.ID)
	main, err := f.tickets.GetTickets(100, 0)
	require.NoError(t, err)
	assert.Len(t, main, 1)

	result, err = f.projects.FinalizeProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.PostedTickets)

	result, err = f.projects.FinalizeProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.PostedTickets, "nothing staged means nothing posted")
}

func TestFinalizeDefaultsStatus(t *testing.T) {
	f := newProjectFixture()
	project, err := f.projects.CreateProject(CreateProjectRequest{Name: "Office move", ClientKey: "acme"})
	require.NoError(t, err)
	require.Nil(t, project.Status)

	_, err = f.projects.FinalizeProject(project.ID)
	require.NoError(t, err)

	detail, err := f.projects.GetProjectByID(project.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Status)
	assert.Equal(t, "finalized", *detail.Status)
	assert.NotNil(t, detail.FinalizedAt)

	// An explicit status survives finalize untouched.
	status := "on_hold"
	other, err := f.projects.CreateProject(CreateProjectRequest{Name: "Other", ClientKey: "acme", Status: &status})
	require.NoError(t, err)
	_, err = f.projects.FinalizeProject(other.ID)
	require.NoError(t, err)

	detail, err = f.projects.GetProjectByID(other.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Status)
	assert.Equal(t, "on_hold", *detail.Status)
}

func TestDeleteProjectRemovesStagedKeepsPosted(t *testing.T) {
	f := newProjectFixture()
	hw := f.hardware.add("0123456789012", "USB-C dock", nil, strp("129.99"))
	barcode := hw.Barcode
	project, err := f.projects.CreateProject(CreateProjectRequest{Name: "Office move", ClientKey: "acme"})
	require.NoError(t, err)

	postedID := f.stageTicket(t, project.ID)
	_, err = f.projects.FinalizeProject(project.ID)
	require.NoError(t, err)

	// Staged hardware ticket whose auto event must disappear with it.
	staged, err := f.tickets.CreateTicket(CreateTicketRequest{
		ClientKey:       "acme",
		StartISO:        "2024-03-02T09:00:00",
		EntryType:       "hardware",
		HardwareBarcode: &barcode,
		ProjectID:       &project.ID,
	})
	require.NoError(t, err)
	require.Len(t, f.inventory.events, 1)

	require.NoError(t, f.projects.DeleteProject(project.ID))

	_, err = f.tickets.GetTicketByID(staged.ID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.Empty(t, f.inventory.events, "the staged ticket's auto event is gone")
	assert.Equal(t, []int64{staged.ID}, f.files.removed)

	posted, err := f.tickets.GetTicketByID(postedID)
	require.NoError(t, err)
	assert.Nil(t, posted.ProjectID, "posted tickets survive, detached from the project")

	err = f.projects.DeleteProject(project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
