package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
)

// normalizeMimeType lowercases and trims a content type, defaulting to JPEG
// when the client sent none.
func normalizeMimeType(contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return mimeType
}

// isSupportedMimeType reports whether the upload contract allows this type.
// Only PNG and JPEG invoices are accepted.
func isSupportedMimeType(mimeType string) bool {
	switch normalizeMimeType(mimeType) {
	case "image/png", "image/jpeg":
		return true
	}
	return false
}

// enhanceForOCR applies a light cleanup chain to a photographed invoice:
// grayscale for contrast, a contrast boost, then sharpening so the printed
// text survives the model's downscaling.
func enhanceForOCR(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 30)
	return imaging.Sharpen(out, 1.5)
}

// prepareImageData validates the upload, enhances it for OCR and re-encodes
// it as PNG. Returns the PNG data and the MIME type to send upstream.
func prepareImageData(imageData []byte, contentType string) ([]byte, string, error) {
	mimeType := normalizeMimeType(contentType)
	if !isSupportedMimeType(mimeType) {
		return nil, "", fmt.Errorf("unsupported content type %q: only PNG and JPEG invoices are accepted", mimeType)
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, enhanceForOCR(img)); err != nil {
		return nil, "", fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), "image/png", nil
}
