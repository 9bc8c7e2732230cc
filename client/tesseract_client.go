package client

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// TesseractClient wraps gosseract for invoice OCR. French first, English as
// the mixed-language fallback.
type TesseractClient struct {
	dataPath  string
	languages []string
	log       *zap.SugaredLogger
}

func NewTesseractClient(dataPath string, languages []string, log *zap.SugaredLogger) *TesseractClient {
	if len(languages) == 0 {
		languages = []string{"fra", "eng"}
	}
	return &TesseractClient{
		dataPath:  dataPath,
		languages: languages,
		log:       log,
	}
}

// ExtractTextFromFile runs OCR on an uploaded image file.
func (tc *TesseractClient) ExtractTextFromFile(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tempFile, err := tc.CreateTempFile(file, fileHeader.Filename)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile)

	text, err := tc.ExtractText(tempFile)
	if err != nil {
		return "", fmt.Errorf("OCR extraction failed: %w", err)
	}
	return text, nil
}

// CreateTempFile creates a temporary file from uploaded content.
func (tc *TesseractClient) CreateTempFile(file multipart.File, filename string) (string, error) {
	ext := filepath.Ext(filename)
	tempFile, err := os.CreateTemp("", "invoice-*"+ext)
	if err != nil {
		return "", err
	}
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, file); err != nil {
		os.Remove(tempFile.Name())
		return "", err
	}
	return tempFile.Name(), nil
}

// ExtractText runs OCR on an image file on disk.
func (tc *TesseractClient) ExtractText(filePath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	client.SetTessdataPrefix(tc.dataPath)
	if err := client.SetLanguage(tc.languages...); err != nil {
		return "", fmt.Errorf("failed to set language %s: %w", strings.Join(tc.languages, "+"), err)
	}
	if err := client.SetImage(filePath); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, nil
}

// Close performs cleanup.
func (tc *TesseractClient) Close() {
	if tc.log != nil {
		tc.log.Info("tesseract client closed")
	}
}
