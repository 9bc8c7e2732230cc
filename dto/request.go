package dto

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// Custom errors
var (
	ErrNoFile          = errors.New("no file provided")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ExtractionRequest wraps one uploaded document.
type ExtractionRequest struct {
	File *multipart.FileHeader
	// OCRMode is "auto" (default), "force" or "off".
	OCRMode string
}

// Validate checks the upload before any processing happens.
func (r *ExtractionRequest) Validate() error {
	if r.File == nil || r.File.Filename == "" {
		return ErrNoFile
	}
	ext := strings.ToLower(filepath.Ext(r.File.Filename))
	if !allowedExtensions[ext] {
		return ErrUnsupportedType
	}
	return nil
}

// IsPDF reports whether the upload is a PDF (vs an image).
func (r *ExtractionRequest) IsPDF() bool {
	return strings.HasSuffix(strings.ToLower(r.File.Filename), ".pdf")
}
