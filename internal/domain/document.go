package domain

import "time"

// Document is the registry record for an uploaded document. Text extraction
// happens upstream; this core only sees the extracted text.
type Document struct {
	ID           string
	OriginalName string
	// TextKey points at the extracted text in object storage. Empty when the
	// text is kept inline in Text instead.
	TextKey    string
	Text       string
	Vectorized bool
	ChunkCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateDocument checks required fields before persistence.
func ValidateDocument(d *Document) error {
	if d.ID == "" || d.OriginalName == "" {
		return ErrMissingRequiredField
	}
	return nil
}
