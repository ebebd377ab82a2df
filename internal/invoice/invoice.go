package invoice

import "time"

// Record is one digitized invoice. Content holds the raw OCR transcription;
// the structured form is never persisted and is re-extracted from Content on
// demand, so re-reads of old records stay deterministic.
type Record struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Content     string    `json:"content"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
