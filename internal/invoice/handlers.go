package invoice

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jumma/invoice-ocr/internal/extract"
)

// maxUploadSize caps invoice uploads at 10MB, matching the documented
// upload contract.
const maxUploadSize = int64(10 << 20)

// scanResponse is the payload returned for a successful upload: the raw
// transcription, the stored record and the structured extraction.
type scanResponse struct {
	OCRResult string                 `json:"ocr_result"`
	Record    *Record                `json:"record"`
	Invoice   *extract.ParsedInvoice `json:"invoice"`
}

// parseResponse pairs a stored record with its re-extracted invoice.
type parseResponse struct {
	Record  *Record                `json:"record"`
	Invoice *extract.ParsedInvoice `json:"invoice"`
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error payload with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleScanInvoice accepts an invoice image upload, runs it through OCR and
// returns the transcription with the extracted invoice
func (s *Server) handleScanInvoice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "File is too large or the form is malformed. Maximum size is 10MB.", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("image")
	if err != nil {
		slog.Error("Error getting image from form", "error", err)
		jsonError(w, "No image file uploaded", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		jsonError(w, "File is too large. Maximum size is 10MB.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading image data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".png":
			contentType = "image/png"
		default:
			contentType = "application/octet-stream"
		}
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	record, parsed, err := s.service.ProcessInvoice(header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error processing invoice", "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(scanResponse{
		OCRResult: record.Content,
		Record:    record,
		Invoice:   parsed,
	}); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleListInvoices returns a list of all invoice records
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListInvoices()
	if err != nil {
		slog.Error("Error listing invoices", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Always return an array, not nil
	if records == nil {
		records = []*Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetInvoice returns a single invoice record
func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Invoice ID required", http.StatusBadRequest)
		return
	}
	record, err := s.service.GetInvoice(id)
	if err != nil {
		corsError(w, "Invoice not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(record); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleParseInvoice re-extracts the structured invoice from a stored
// transcription
func (s *Server) handleParseInvoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Invoice ID required", http.StatusBadRequest)
		return
	}
	record, parsed, err := s.service.ParseInvoice(id)
	if err != nil {
		corsError(w, "Invoice not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(parseResponse{Record: record, Invoice: parsed}); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetInvoiceImage returns the stored image for an invoice record
func (s *Server) handleGetInvoiceImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Invoice ID required", http.StatusBadRequest)
		return
	}
	data, contentType, err := s.service.GetInvoiceImage(id)
	if err != nil {
		corsError(w, "Image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteInvoice deletes an invoice record
func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Invoice ID required", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteInvoice(id); err != nil {
		corsError(w, "Error deleting invoice", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleStaticCSS serves the CSS file
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleStaticJS serves the JavaScript file
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}
