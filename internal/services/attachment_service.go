package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"tickettrack_backend/internal/models"
	"tickettrack_backend/internal/repositories"
	"tickettrack_backend/pkg/utils"
)

var (
	ErrAttachmentNotFound    = errors.New("attachment not found")
	ErrUnsupportedAttachment = errors.New("unsupported attachment type")
)

// allowedImageExtensions maps accepted upload extensions to the content type
// stored with the metadata row. Only images are accepted.
var allowedImageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// --- AttachmentService Interface ---

type AttachmentService interface {
	Upload(ticketID int64, filename string, body io.Reader) (*models.TicketAttachment, error)
	ListAttachments(ticketID int64) ([]models.TicketAttachment, error)
	// OpenAttachment returns the metadata row and the absolute path of the
	// stored file, ready to be served.
	OpenAttachment(ticketID int64, attachmentID string) (*models.TicketAttachment, string, error)
	RemoveTicketFiles(ticketID int64) error
}

type attachmentService struct {
	attachmentRepo repositories.AttachmentRepository
	ticketRepo     repositories.TicketRepository
	baseDir        string
}

// NewAttachmentService creates a new instance of AttachmentService. Files are
// stored under baseDir/attachments/<ticket_id>/.
func NewAttachmentService(ar repositories.AttachmentRepository, tr repositories.TicketRepository, dataDir string) AttachmentService {
	return &attachmentService{
		attachmentRepo: ar,
		ticketRepo:     tr,
		baseDir:        filepath.Join(dataDir, "attachments"),
	}
}

func (s *attachmentService) ticketDir(ticketID int64) string {
	return filepath.Join(s.baseDir, utils.Int64ToStr(ticketID))
}

// --- Method Implementations ---

func (s *attachmentService) Upload(ticketID int64, filename string, body io.Reader) (*models.TicketAttachment, error) {
	if _, err := s.ticketRepo.GetTicketByID(nil, ticketID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket %d: %w", ticketID, err)
	}

	cleanName := filepath.Base(strings.TrimSpace(filename))
	ext := strings.ToLower(filepath.Ext(cleanName))
	contentType, ok := allowedImageExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAttachment, ext)
	}

	id := uuid.NewString()
	storageFilename := id + ext
	dir := s.ticketDir(ticketID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachment directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, storageFilename))
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment file: %w", err)
	}
	size, err := io.Copy(dst, body)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filepath.Join(dir, storageFilename))
		return nil, fmt.Errorf("failed to write attachment file: %w", err)
	}

	attachment := &models.TicketAttachment{
		ID:              id,
		TicketID:        ticketID,
		Filename:        cleanName,
		ContentType:     contentType,
		Size:            size,
		StorageFilename: storageFilename,
		UploadedAt:      utcNowISO(),
	}
	if err := s.attachmentRepo.CreateAttachment(nil, attachment); err != nil {
		os.Remove(filepath.Join(dir, storageFilename))
		return nil, fmt.Errorf("failed to record attachment: %w", err)
	}

	attachment.URL = fmt.Sprintf("/api/v1/tickets/%d/attachments/%s", ticketID, id)
	return attachment, nil
}

func (s *attachmentService) ListAttachments(ticketID int64) ([]models.TicketAttachment, error) {
	if _, err := s.ticketRepo.GetTicketByID(nil, ticketID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket %d: %w", ticketID, err)
	}
	attachments, err := s.attachmentRepo.GetAttachmentsByTicketID(ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	for i := range attachments {
		attachments[i].URL = fmt.Sprintf("/api/v1/tickets/%d/attachments/%s", ticketID, attachments[i].ID)
	}
	return attachments, nil
}

func (s *attachmentService) OpenAttachment(ticketID int64, attachmentID string) (*models.TicketAttachment, string, error) {
	attachment, err := s.attachmentRepo.GetAttachment(ticketID, attachmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, "", ErrAttachmentNotFound
		}
		return nil, "", fmt.Errorf("failed to get attachment: %w", err)
	}

	path := filepath.Join(s.ticketDir(ticketID), attachment.StorageFilename)
	if _, err := os.Stat(path); err != nil {
		return nil, "", ErrAttachmentNotFound
	}
	return attachment, path, nil
}

// RemoveTicketFiles deletes the ticket's attachment directory. Called after
// the ticket row and its metadata rows are gone.
func (s *attachmentService) RemoveTicketFiles(ticketID int64) error {
	err := os.RemoveAll(s.ticketDir(ticketID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
