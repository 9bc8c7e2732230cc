package service

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/facturex/invoice-extractor/dto"
)

// EPCPayment is the content of an EPC069-12 SEPA credit transfer QR code,
// the payment square printed on many European invoices.
type EPCPayment struct {
	BIC        string
	Name       string
	IBAN       string
	Currency   string
	Amount     *float64
	Remittance string
}

// QRReader decodes payment QR codes from invoice page images.
type QRReader struct{}

func NewQRReader() *QRReader {
	return &QRReader{}
}

// DecodePaymentQR scans the images for an EPC payment QR code and returns the
// first one found, or nil when no image carries one.
func (r *QRReader) DecodePaymentQR(images []image.Image) *EPCPayment {
	reader := qrcode.NewQRCodeReader()
	for _, img := range images {
		bmp, err := gozxing.NewBinaryBitmapFromImage(img)
		if err != nil {
			continue
		}
		result, err := reader.Decode(bmp, nil)
		if err != nil {
			continue
		}
		if p, err := ParseEPCPayload(result.GetText()); err == nil {
			return p
		}
	}
	return nil
}

// ParseEPCPayload parses the line-oriented EPC069-12 payload. Line 0 is the
// "BCD" service tag, line 3 "SCT", then BIC, beneficiary name, IBAN, amount
// as "EUR123.45", and the remittance text on line 10.
func ParseEPCPayload(payload string) (*EPCPayment, error) {
	lines := strings.Split(strings.ReplaceAll(payload, "\r\n", "\n"), "\n")
	if len(lines) < 7 || strings.TrimSpace(lines[0]) != "BCD" {
		return nil, fmt.Errorf("not an EPC payment payload")
	}
	if strings.TrimSpace(lines[3]) != "SCT" {
		return nil, fmt.Errorf("unsupported EPC service: %q", strings.TrimSpace(lines[3]))
	}

	p := &EPCPayment{
		BIC:  strings.TrimSpace(lines[4]),
		Name: strings.TrimSpace(lines[5]),
		IBAN: strings.ReplaceAll(strings.TrimSpace(lines[6]), " ", ""),
	}
	if p.IBAN == "" {
		return nil, fmt.Errorf("EPC payload has no IBAN")
	}

	if len(lines) > 7 {
		raw := strings.TrimSpace(lines[7])
		if len(raw) > 3 {
			p.Currency = raw[:3]
			if v, err := strconv.ParseFloat(raw[3:], 64); err == nil && v > 0 {
				p.Amount = &v
			}
		}
	}
	if len(lines) > 10 {
		p.Remittance = strings.TrimSpace(lines[10])
	}
	return p, nil
}

// Candidates converts the payment data into field candidates. The IBAN is
// machine-written and near-certain; the name and amount describe the payment,
// not necessarily the invoice, so they rank below direct pattern hits.
func (p *EPCPayment) Candidates() []dto.Candidate {
	cands := []dto.Candidate{{
		Field:      "seller_iban",
		Value:      p.IBAN,
		Confidence: 0.95,
		Source:     dto.SourceQR,
	}}
	if p.Name != "" {
		cands = append(cands, dto.Candidate{
			Field:      "seller",
			Value:      p.Name,
			Confidence: 0.85,
			Source:     dto.SourceQR,
		})
	}
	if p.Amount != nil {
		cands = append(cands, dto.Candidate{
			Field:      "total_ttc",
			Value:      *p.Amount,
			Confidence: 0.85,
			Source:     dto.SourceQR,
		})
	}
	return cands
}
