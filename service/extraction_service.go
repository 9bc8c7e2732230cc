package service

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facturex/invoice-extractor/client"
	"github.com/facturex/invoice-extractor/dto"
	"github.com/facturex/invoice-extractor/extractor"
)

// minNativeTextChars is the visible-character threshold under which a PDF's
// native text layer is considered empty (scanned document) and OCR takes over.
const minNativeTextChars = 20

// ExtractionService orchestrates one document's journey: text acquisition,
// line-item reconstruction, candidate extraction, resolution, reconciliation.
type ExtractionService struct {
	tesseract *client.TesseractClient
	pdf       PDFProcessor
	qr        *QRReader
	patterns  *extractor.PatternRegistry
	pipeline  *extractor.Pipeline
	table     *extractor.TableReconstructor
	lineParse *extractor.LineParser
	reconcile *extractor.Reconciler
	log       *zap.SugaredLogger
}

func NewExtractionService(tesseract *client.TesseractClient, pdf PDFProcessor, log *zap.SugaredLogger) *ExtractionService {
	patterns := extractor.DefaultRegistry()
	return &ExtractionService{
		tesseract: tesseract,
		pdf:       pdf,
		qr:        NewQRReader(),
		patterns:  patterns,
		pipeline:  extractor.NewPipeline(log, patterns),
		table:     extractor.NewTableReconstructor(),
		lineParse: extractor.NewLineParser(patterns),
		reconcile: extractor.NewReconciler(),
		log:       log,
	}
}

// Extract processes one uploaded invoice into resolved fields.
func (s *ExtractionService) Extract(req *dto.ExtractionRequest) (*dto.ExtractionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	meta := dto.DocumentMeta{
		Filename: req.File.Filename,
		Bytes:    int(req.File.Size),
	}

	var (
		text   string
		tokens [][]dto.Token
		images []image.Image
	)
	if req.IsPDF() {
		data, err := readUpload(req.File)
		if err != nil {
			return nil, err
		}
		text, tokens, images, meta.Pages, meta.Engine, err = s.readPDF(data, req.OCRMode)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		text, images, err = s.readImage(req)
		if err != nil {
			return nil, err
		}
		meta.Pages = 1
		meta.Engine = "ocr"
	}

	// Line items: positional table reconstruction first, regex rows as the
	// fallback when no table header was found.
	lines := s.table.Reconstruct(tokens)
	meta.LineStage = "xpos"
	if len(lines) == 0 {
		lines = s.lineParse.Parse(text)
		meta.LineStage = "regex"
	}
	if len(lines) == 0 {
		meta.LineStage = "none"
	}

	vatRate := s.patterns.ParseVATRate(text)
	meta.VATRate = vatRate

	var extra []dto.Candidate
	if payment := s.qr.DecodePaymentQR(images); payment != nil {
		s.log.Infow("payment QR decoded", "iban", payment.IBAN)
		extra = payment.Candidates()
	}

	doc := &dto.Document{Text: text, LineItems: lines}
	fields := s.pipeline.Run(doc, extra...)
	s.reconcile.Apply(fields, vatRate, sumLineAmounts(lines))

	return &dto.ExtractionResponse{
		ID:          uuid.New().String(),
		Fields:      fields.Fields(),
		Confidences: fields.Confidences(),
		Lines:       lines,
		Meta:        meta,
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// readPDF extracts the native text layer and positioned tokens, switching to
// OCR when the text layer is empty (scanned PDF) or OCR is forced. Page
// images are extracted either way: the payment QR only exists as an image.
func (s *ExtractionService) readPDF(data []byte, ocrMode string) (string, [][]dto.Token, []image.Image, int, string, error) {
	text, pages, err := s.pdf.ExtractText(data)
	if err != nil {
		return "", nil, nil, 0, "", fmt.Errorf("pdf text extraction failed: %w", err)
	}
	tokens, err := s.pdf.ExtractTokens(data)
	if err != nil {
		s.log.Warnw("pdf token extraction failed", "error", err)
		tokens = nil
	}
	images, err := s.pdf.ExtractImages(data)
	if err != nil {
		s.log.Debugw("pdf image extraction failed", "error", err)
		images = nil
	}

	engine := "pdf-text"
	needOCR := ocrMode == "force" || (ocrMode != "off" && visibleChars(text) < minNativeTextChars)
	if needOCR && len(images) > 0 {
		if ocrText, err := s.ocrImages(images); err != nil {
			s.log.Warnw("ocr fallback failed", "error", err)
		} else if visibleChars(ocrText) > visibleChars(text) {
			text = ocrText
			tokens = nil
			engine = "ocr"
		}
	}
	return text, tokens, images, pages, engine, nil
}

func (s *ExtractionService) readImage(req *dto.ExtractionRequest) (string, []image.Image, error) {
	text, err := s.tesseract.ExtractTextFromFile(req.File)
	if err != nil {
		return "", nil, err
	}

	var images []image.Image
	if file, err := req.File.Open(); err == nil {
		if img, _, err := image.Decode(file); err == nil {
			images = append(images, img)
		}
		file.Close()
	}
	return text, images, nil
}

// ocrImages runs OCR over page images and concatenates the page texts.
func (s *ExtractionService) ocrImages(images []image.Image) (string, error) {
	var parts []string
	for i, img := range images {
		path, err := writeTempPNG(img)
		if err != nil {
			return "", err
		}
		pageText, err := s.tesseract.ExtractText(path)
		os.Remove(path)
		if err != nil {
			return "", fmt.Errorf("ocr failed on page image %d: %w", i+1, err)
		}
		parts = append(parts, pageText)
	}
	return strings.Join(parts, "\n"), nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func writeTempPNG(img image.Image) (string, error) {
	f, err := os.CreateTemp("", "page-*.png")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func visibleChars(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func sumLineAmounts(lines []dto.LineItem) float64 {
	var sum float64
	for _, l := range lines {
		if l.Amount != nil {
			sum += *l.Amount
		}
	}
	return sum
}
