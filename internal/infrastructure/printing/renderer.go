package printing

import (
	"bytes"
	"context"
	"time"
)

// A4 page geometry shared by every engine, in millimeters
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
	PageMarginMM = 12.0
)

// RenderRequest contains the parameters for rendering an invoice to PDF
type RenderRequest struct {
	// Document is the assembled invoice to render
	Document *InvoiceDocument
	// HTML overrides the built-in invoice layout (HTML engines only)
	HTML string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// PageCount is the number of pages in the PDF
	PageCount int
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
	// Engine names the renderer that produced the PDF
	Engine string
	// FellBack is set when a fallback engine produced the PDF
	FellBack bool
}

// Renderer defines the interface for rendering an invoice document to PDF
type Renderer interface {
	// Render converts an invoice document to a PDF
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Name identifies the engine
	Name() string
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout   = "RENDER_TIMEOUT"
	ErrCodeRenderFailed    = "RENDER_FAILED"
	ErrCodeInvalidDocument = "INVALID_DOCUMENT"
	ErrCodeInvalidHTML     = "INVALID_HTML"
	ErrCodeUnknownEngine   = "UNKNOWN_ENGINE"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func validateRequest(req *RenderRequest) error {
	if req == nil {
		return NewRenderError(ErrCodeInvalidDocument, "render request is nil", nil)
	}
	if req.Document == nil {
		return NewRenderError(ErrCodeInvalidDocument, "invoice document is nil", nil)
	}
	return nil
}

// estimatePageCount counts page objects in a PDF
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page"))
	// "/Type /Pages" also matches the prefix above
	count -= bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count, 1)
}
