package invoice

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jumma/invoice-ocr/internal/extract"
	"github.com/jumma/invoice-ocr/internal/scanning"
)

// IDGenerator generates unique IDs for invoice records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates IDs using UnixNano timestamp
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles invoice operations: scanning uploads, persisting the raw
// transcription and re-extracting the structured form on demand.
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	extractor   *extract.Extractor
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with the default vendor profile, ID
// generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		extractor:   extract.New(extract.DefaultProfile()),
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		extractor:   extract.New(extract.DefaultProfile()),
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and
// truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")

	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	if base == "" {
		base = "invoice"
	}

	return base + ext
}

// ProcessInvoice stores the uploaded image, sends it through OCR, persists
// the raw transcription and returns the record together with the extracted
// structured invoice. The structured form is derived output, never stored.
func (s *Service) ProcessInvoice(filename string, data []byte, contentType string) (*Record, *extract.ParsedInvoice, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	cleanFilename := sanitizeFilename(filename)

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, cleanFilename), data)
	if err != nil {
		return nil, nil, fmt.Errorf("saving image: %w", err)
	}

	content, err := s.scanner.ScanInvoice(data, contentType)
	if err != nil {
		slog.Error("Failed to scan invoice",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		// Clean up the saved image since scanning failed
		s.storage.Delete(savedPath)
		return nil, nil, fmt.Errorf("scanning invoice: %w", err)
	}

	record := &Record{
		ID:          id,
		Date:        now,
		Content:     content,
		Filename:    savedPath,
		ContentType: contentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.SaveInvoice(record); err != nil {
		s.storage.Delete(savedPath)
		return nil, nil, fmt.Errorf("saving invoice to database: %w", err)
	}

	return record, s.extractor.Extract(content), nil
}

// GetInvoice retrieves an invoice record by ID
func (s *Service) GetInvoice(id string) (*Record, error) {
	record, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	return record, nil
}

// ListInvoices returns all invoice records
func (s *Service) ListInvoices() ([]*Record, error) {
	records, err := s.db.ListInvoices()
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	return records, nil
}

// ParseInvoice re-extracts the structured invoice from a stored
// transcription. Extraction is deterministic, so this returns the same
// result every time for the same record.
func (s *Service) ParseInvoice(id string) (*Record, *extract.ParsedInvoice, error) {
	record, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, nil, fmt.Errorf("getting invoice: %w", err)
	}
	return record, s.extractor.Extract(record.Content), nil
}

// DeleteInvoice removes an invoice record and its stored image
func (s *Service) DeleteInvoice(id string) error {
	record, err := s.db.GetInvoice(id)
	if err != nil {
		return fmt.Errorf("getting invoice for deletion: %w", err)
	}

	if err := s.storage.Delete(record.Filename); err != nil {
		// Keep going; a missing image should not orphan the record
		slog.Warn("Failed to delete image", "filename", record.Filename, "error", err)
	}

	if err := s.db.DeleteInvoice(id); err != nil {
		return fmt.Errorf("deleting invoice from database: %w", err)
	}
	return nil
}

// GetInvoiceImage retrieves the stored image for an invoice record
func (s *Service) GetInvoiceImage(id string) ([]byte, string, error) {
	record, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice: %w", err)
	}

	data, err := s.storage.Get(record.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice image: %w", err)
	}

	return data, record.ContentType, nil
}
