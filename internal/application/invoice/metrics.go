package invoice

import (
	"context"
	"time"

	"github.com/invoicer/backend/internal/domain/shared"
)

// Operation names used when recording outcomes
const (
	OperationCreate    = "create"
	OperationDuplicate = "duplicate"
	OperationNumber    = "number"
	OperationSearch    = "search"
	OperationPDF       = "pdf"
	OperationImport    = "import"
)

// Metrics receives invoice business events
type Metrics interface {
	InvoiceCreated(ctx context.Context, operation string)
	OutcomeRecorded(ctx context.Context, operation string, outcome shared.Outcome)
	PDFRendered(ctx context.Context, engine string, duration time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) InvoiceCreated(context.Context, string) {}
func (noopMetrics) OutcomeRecorded(context.Context, string, shared.Outcome) {}
func (noopMetrics) PDFRendered(context.Context, string, time.Duration, error) {}
