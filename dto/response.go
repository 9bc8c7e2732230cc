package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// DocumentMeta describes how the text and line items were obtained.
type DocumentMeta struct {
	Filename  string   `json:"filename"`
	Pages     int      `json:"pages"`
	Bytes     int      `json:"bytes"`
	Engine    string   `json:"engine"`     // "pdf-text" or "ocr"
	LineStage string   `json:"line_stage"` // "xpos", "regex" or "none"
	VATRate   *float64 `json:"vat_rate,omitempty"`
}

// ExtractionResponse is the final response for one document.
type ExtractionResponse struct {
	ID          string                   `json:"id"`
	Fields      map[string]any           `json:"fields"`
	Confidences map[string]ResolvedField `json:"confidences"`
	Lines       []LineItem               `json:"lines"`
	Meta        DocumentMeta             `json:"meta"`
	ProcessedAt string                   `json:"processed_at"`
}
