package models

// Project groups staged tickets under one client before they are finalized
// into the main ticket views.
type Project struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Client      string  `json:"client"`
	ClientKey   string  `json:"client_key"`
	Status      *string `json:"status"`
	Note        *string `json:"note"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	FinalizedAt *string `json:"finalized_at"`
}

// IsFinalized reports whether the project has been posted at least once.
func (p *Project) IsFinalized() bool {
	return p.FinalizedAt != nil && *p.FinalizedAt != ""
}
