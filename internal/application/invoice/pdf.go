package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/printing"
	"github.com/invoicer/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PDFContentType is the media type of rendered invoices
const PDFContentType = "application/pdf"

// PDFArchive stores rendered PDFs and hands out time-limited download links
type PDFArchive interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// RenderPDF renders an invoice of the user. An invoice that fails validation
// cannot be downloaded; totals are recomputed before rendering.
func (s *Service) RenderPDF(ctx context.Context, userID, id uuid.UUID) (*PDFFile, error) {
	if err := requireSession(userID, "Please sign in to download invoices"); err != nil {
		return nil, err
	}

	inv, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	inv.Recalculate()

	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "render_pdf",
		telemetry.SpanAttrInvoiceID, id.String(),
		telemetry.SpanAttrInvoiceNumber, inv.InvoiceNumber,
		telemetry.SpanAttrEngine, s.renderer.Name(),
	)
	defer span.End()

	doc := BuildDocument(inv, s.issuer, s.footer)

	start := time.Now()
	result, err := s.renderer.Render(ctx, &printing.RenderRequest{Document: doc})
	s.metrics.PDFRendered(ctx, s.renderer.Name(), time.Since(start), err)
	if err != nil {
		s.metrics.OutcomeRecorded(ctx, OperationPDF, shared.OutcomeFailed)
		telemetry.RecordError(span, err)
		s.log(ctx).Error("Invoice PDF rendering failed",
			zap.String("invoice_id", id.String()),
			zap.Error(err))
		return nil, errors.Wrap(err, "render invoice pdf")
	}

	outcome := shared.OutcomeIdeal
	if result.FellBack {
		outcome = shared.OutcomeDegraded
	}
	s.metrics.OutcomeRecorded(ctx, OperationPDF, outcome)
	telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, outcome.String(), "page_count", result.PageCount)

	return &PDFFile{
		Filename:    PDFFilename(inv.InvoiceNumber),
		ContentType: PDFContentType,
		Content:     result.PDFData,
		Engine:      result.Engine,
		PageCount:   result.PageCount,
		FellBack:    result.FellBack,
	}, nil
}

// ArchivePDF renders an invoice, uploads it to object storage and returns a
// presigned download link
func (s *Service) ArchivePDF(ctx context.Context, userID, id uuid.UUID) (*ArchiveResponse, error) {
	if s.archive == nil {
		return nil, shared.ErrUnavailable.WithMessage("PDF archive storage is not enabled")
	}

	file, err := s.RenderPDF(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("invoices/%s/%s/%s", userID, id, file.Filename)
	if err := s.archive.Upload(ctx, key, file.Content, file.ContentType); err != nil {
		return nil, errors.Wrap(err, "upload invoice pdf")
	}
	url, expiresAt, err := s.archive.GenerateDownloadURL(ctx, key, s.presignTTL)
	if err != nil {
		return nil, errors.Wrap(err, "presign invoice pdf")
	}

	s.log(ctx).Info("Invoice PDF archived",
		zap.String("invoice_id", id.String()),
		zap.String("key", key),
		zap.Int("bytes", len(file.Content)))

	return &ArchiveResponse{Key: key, URL: url, ExpiresAt: expiresAt, Engine: file.Engine}, nil
}

// PDFFilename names the download of an invoice, e.g. "Invoice-INV2026100001.pdf".
// Characters that are unsafe in file names are replaced by '-'.
func PDFFilename(number string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '-'
	}, number)
	return "Invoice-" + safe + ".pdf"
}
