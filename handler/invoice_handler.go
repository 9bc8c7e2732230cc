package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/facturex/invoice-extractor/dto"
	"github.com/facturex/invoice-extractor/service"
)

type InvoiceHandler struct {
	extraction *service.ExtractionService
	log        *zap.SugaredLogger
}

func NewInvoiceHandler(extraction *service.ExtractionService, log *zap.SugaredLogger) *InvoiceHandler {
	return &InvoiceHandler{
		extraction: extraction,
		log:        log,
	}
}

// ExtractInvoice handles POST /invoices/extract. Upload one file as "file";
// ?format=csv returns the line items as CSV instead of the JSON response.
func (h *InvoiceHandler) ExtractInvoice(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "no file provided", err)
		return
	}

	request := &dto.ExtractionRequest{
		File:    file,
		OCRMode: c.DefaultQuery("ocr", "auto"),
	}
	if err := request.Validate(); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, dto.ErrUnsupportedType) {
			status = http.StatusUnsupportedMediaType
		}
		h.sendError(c, status, err.Error(), err)
		return
	}

	h.log.Infow("processing invoice", "filename", file.Filename, "bytes", file.Size)

	response, err := h.extraction.Extract(request)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "extraction failed", err)
		return
	}

	if c.Query("format") == "csv" {
		csv, err := gocsv.MarshalString(&response.Lines)
		if err != nil {
			h.sendError(c, http.StatusInternalServerError, "csv export failed", err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="lines.csv"`)
		c.Data(http.StatusOK, "text/csv", []byte(csv))
		return
	}

	h.log.Infow("invoice processed", "id", response.ID, "fields", len(response.Fields), "lines", len(response.Lines))
	c.JSON(http.StatusOK, response)
}

func (h *InvoiceHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		h.log.Errorw("request failed", "message", message, "error", err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "EXTRACTION_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
