package service

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/facturex/invoice-extractor/dto"
)

// defaultPageHeight is A4 in PDF points, used when a page has no MediaBox.
const defaultPageHeight = 842.0

type PDFProcessor interface {
	ExtractText(pdfData []byte) (string, int, error)
	ExtractTokens(pdfData []byte) ([][]dto.Token, error)
	ExtractImages(pdfData []byte) ([]image.Image, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

// ExtractText returns the native text layer row by row, plus the page count.
func (p *pdfProcessor) ExtractText(pdfData []byte) (string, int, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open pdf: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					textBuilder.WriteString(" ")
				}
				textBuilder.WriteString(word.S)
			}
			textBuilder.WriteString("\n")
		}
	}
	return textBuilder.String(), totalPage, nil
}

// ExtractTokens returns positioned word tokens per page, in the top-down
// coordinate convention the table reconstruction expects. PDF text content
// arrives as glyph fragments; fragments on the same baseline separated by
// less than half a character width are merged into words.
func (p *pdfProcessor) ExtractTokens(pdfData []byte) ([][]dto.Token, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	pages := make([][]dto.Token, 0, r.NumPage())
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		height := pageHeight(page)
		pages = append(pages, pageTokens(page.Content().Text, height))
	}
	return pages, nil
}

func pageHeight(page pdf.Page) float64 {
	box := page.V.Key("MediaBox")
	if box.IsNull() || box.Len() < 4 {
		return defaultPageHeight
	}
	h := box.Index(3).Float64()
	if h <= 0 {
		return defaultPageHeight
	}
	return h
}

// pageTokens flips PDF bottom-up y into top-down coordinates and merges
// same-baseline fragments into words.
func pageTokens(texts []pdf.Text, height float64) []dto.Token {
	if len(texts) == 0 {
		return nil
	}
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var tokens []dto.Token
	var cur *dto.Token
	var curY float64
	for _, t := range sorted {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		fontSize := t.FontSize
		if fontSize <= 0 {
			fontSize = 10
		}
		gapLimit := fontSize / 2

		if cur != nil && math.Abs(t.Y-curY) <= 2 && t.X-cur.X1 >= 0 && t.X-cur.X1 <= gapLimit {
			cur.Text += t.S
			cur.X1 = t.X + t.W
			continue
		}
		if cur != nil {
			tokens = append(tokens, *cur)
		}
		cur = &dto.Token{
			Text:   t.S,
			X0:     t.X,
			X1:     t.X + t.W,
			Top:    height - t.Y - fontSize,
			Bottom: height - t.Y,
		}
		curY = t.Y
	}
	if cur != nil {
		tokens = append(tokens, *cur)
	}
	return tokens
}

// ExtractImages pulls the embedded page images, for OCR on scanned invoices.
func (p *pdfProcessor) ExtractImages(pdfData []byte) ([]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "pdf_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempFile, err := os.CreateTemp("", "doc-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(pdfData); err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}
	tempFile.Close()

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(tempFile.Name(), tempDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	files, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	var images []image.Image
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		imgFile, err := os.Open(filepath.Join(tempDir, file.Name()))
		if err != nil {
			continue
		}
		img, _, err := image.Decode(imgFile)
		imgFile.Close()
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return images, nil
}
