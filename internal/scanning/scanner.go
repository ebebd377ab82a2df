package scanning

// invoiceScanPrompt is the shared prompt sent with the invoice image by all
// vision providers. The transcription it produces is parsed downstream, so
// the wording steers the model toward the sections the extractor looks for.
const invoiceScanPrompt = `Extract text from this invoice image. Focus on account information, invoice details, and itemized list with quantities and prices.`

// Scanner defines the interface for invoice OCR transports. Implementations
// send the image to a vision-language model and return the raw transcription.
type Scanner interface {
	// ScanInvoice transcribes an invoice image into free text
	ScanInvoice(imageData []byte, contentType string) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}
