package printing

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// EngineGofpdf names the native renderer
const EngineGofpdf = "gofpdf"

// Item table column widths in millimeters; they add up to the printable width
const (
	colDescription = 96.0
	colQuantity    = 18.0
	colUnitPrice   = 36.0
	colAmount      = 36.0
)

// GofpdfRenderer draws the invoice layout directly with gofpdf.
// It needs no browser and uses the core Helvetica font, so the rupee sign is
// written as "Rs.".
type GofpdfRenderer struct {
	logger *zap.Logger
}

// NewGofpdfRenderer creates a native PDF renderer
func NewGofpdfRenderer(logger *zap.Logger) *GofpdfRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GofpdfRenderer{logger: logger}
}

// Name identifies the engine
func (r *GofpdfRenderer) Name() string {
	return EngineGofpdf
}

// Render draws the invoice document. req.HTML is ignored.
func (r *GofpdfRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
	}

	startTime := time.Now()
	doc := req.Document

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(PageMarginMM, PageMarginMM, PageMarginMM)
	pdf.SetAutoPageBreak(true, PageMarginMM)
	pdf.SetTitle(doc.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string {
		return tr(strings.ReplaceAll(s, RupeeSymbol, "Rs."))
	}

	pdf.AddPage()
	drawHeader(pdf, doc, text)
	drawBillTo(pdf, doc, text)
	drawItems(pdf, doc, text)
	drawSummary(pdf, doc, text)

	if strings.TrimSpace(doc.Remark) != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, text("Remark: "+doc.Remark), "", "L", false)
	}
	if strings.TrimSpace(doc.Footer) != "" {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, text(doc.Footer), "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "gofpdf output failed", err)
	}

	pageCount := pdf.PageNo()
	renderDuration := time.Since(startTime)

	r.logger.Info("PDF rendered successfully",
		zap.String("engine", EngineGofpdf),
		zap.String("invoice_number", doc.Meta.Number),
		zap.Int("bytes", buf.Len()),
		zap.Int("pages", pageCount),
		zap.Duration("duration", renderDuration))

	return &RenderResult{
		PDFData:        buf.Bytes(),
		PageCount:      pageCount,
		RenderDuration: renderDuration,
		Engine:         EngineGofpdf,
	}, nil
}

// Close releases resources held by the renderer
func (r *GofpdfRenderer) Close() error {
	return nil
}

func drawHeader(pdf *gofpdf.Fpdf, doc *InvoiceDocument, text func(string) string) {
	top := pdf.GetY()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(110, 8, text(doc.Title), "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	issuer := append([]string{}, doc.Issuer.Address...)
	if doc.Issuer.Phone != "" {
		issuer = append(issuer, "Phone: "+doc.Issuer.Phone)
	}
	if doc.Issuer.Email != "" {
		issuer = append(issuer, "Email: "+doc.Issuer.Email)
	}
	if doc.Issuer.Website != "" {
		issuer = append(issuer, "Website: "+doc.Issuer.Website)
	}
	if doc.Issuer.GSTIN != "" {
		issuer = append(issuer, "GSTIN: "+doc.Issuer.GSTIN)
	}
	for _, line := range issuer {
		pdf.CellFormat(110, 5, text(line), "", 2, "L", false, 0, "")
	}
	bottom := pdf.GetY()

	pdf.SetXY(PageMarginMM+116, top)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(70, 8, "Invoice Details", "", 2, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	meta := [][2]string{
		{"Invoice #:", doc.Meta.Number},
		{"Date:", doc.Meta.Date},
		{"Due Date:", doc.Meta.DueDate},
		{"Type:", doc.Meta.PaymentType},
	}
	for _, row := range meta {
		pdf.SetX(PageMarginMM + 116)
		pdf.CellFormat(30, 5, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 5, text(row[1]), "", 1, "R", false, 0, "")
	}

	pdf.SetY(max(bottom, pdf.GetY()) + 8)
}

func drawBillTo(pdf *gofpdf.Fpdf, doc *InvoiceDocument, text func(string) string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Bill To:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, text(doc.BillTo.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if doc.BillTo.Address != "" {
		pdf.MultiCell(0, 5, text(doc.BillTo.Address), "", "L", false)
	}
	if doc.BillTo.GSTIN != "" {
		pdf.CellFormat(0, 5, text("GSTIN: "+doc.BillTo.GSTIN), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func drawItems(pdf *gofpdf.Fpdf, doc *InvoiceDocument, text func(string) string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(243, 244, 246)
	pdf.CellFormat(colDescription, 8, "Description", "B", 0, "L", true, 0, "")
	pdf.CellFormat(colQuantity, 8, "Qty", "B", 0, "R", true, 0, "")
	pdf.CellFormat(colUnitPrice, 8, "Unit Price", "B", 0, "R", true, 0, "")
	pdf.CellFormat(colAmount, 8, "Total", "B", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(250, 250, 250)
	for i, line := range doc.Lines {
		fill := i%2 == 1
		pdf.CellFormat(colDescription, 7, text(truncate(line.Description, 60)), "", 0, "L", fill, 0, "")
		pdf.CellFormat(colQuantity, 7, line.Quantity, "", 0, "R", fill, 0, "")
		pdf.CellFormat(colUnitPrice, 7, text(line.UnitPrice), "", 0, "R", fill, 0, "")
		pdf.CellFormat(colAmount, 7, text(line.Amount), "", 1, "R", fill, 0, "")
	}
	pdf.Ln(6)
}

func drawSummary(pdf *gofpdf.Fpdf, doc *InvoiceDocument, text func(string) string) {
	top := pdf.GetY()

	if !doc.Payment.IsEmpty() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(90, 6, "Payment Information:", "", 2, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(90, 5, text("Account Name: "+doc.Payment.AccountName), "", 2, "L", false, 0, "")
		pdf.CellFormat(90, 5, text("A/C No: "+doc.Payment.AccountNumber), "", 2, "L", false, 0, "")
		pdf.CellFormat(90, 5, text("IFSC: "+doc.Payment.IFSC), "", 2, "L", false, 0, "")
	}
	bottom := pdf.GetY()

	pdf.SetY(top)
	for _, line := range doc.Summary {
		pdf.SetX(PageMarginMM + 100)
		if line.Grand {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(50, 8, text(line.Label+":"), "T", 0, "L", false, 0, "")
			pdf.CellFormat(36, 8, text(line.Amount), "T", 1, "R", false, 0, "")
			continue
		}
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(50, 6, text(line.Label+":"), "", 0, "L", false, 0, "")
		pdf.CellFormat(36, 6, text(line.Amount), "", 1, "R", false, 0, "")
	}

	pdf.SetY(max(bottom, pdf.GetY()))
}

var _ Renderer = (*GofpdfRenderer)(nil)
