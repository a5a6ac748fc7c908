package models

// TicketAttachment is the metadata row for an image stored on disk under the
// owning ticket's attachment directory. The database never holds file bytes.
type TicketAttachment struct {
	ID              string `json:"id"`
	TicketID        int64  `json:"-"`
	Filename        string `json:"filename"`
	ContentType     string `json:"content_type"`
	Size            int64  `json:"size"`
	StorageFilename string `json:"-"`
	UploadedAt      string `json:"uploaded_at"`
	URL             string `json:"url,omitempty"`
}
