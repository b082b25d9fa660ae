package telemetry

import (
	"context"
	"time"

	"github.com/invoicer/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
)

// InvoiceMetrics records invoice business events as OpenTelemetry instruments.
// It satisfies the invoice application Metrics interface.
type InvoiceMetrics struct {
	created        *Counter
	outcomes       *Counter
	renders        *Counter
	renderDuration *Histogram
}

// NewInvoiceMetrics registers the invoice instruments on meter
func NewInvoiceMetrics(meter metric.Meter) (*InvoiceMetrics, error) {
	created, err := NewCounter(meter, "invoice.created", "Invoices written, by operation", "{invoice}")
	if err != nil {
		return nil, err
	}
	outcomes, err := NewCounter(meter, "invoice.outcome", "Operation outcomes, by operation and outcome", "{operation}")
	if err != nil {
		return nil, err
	}
	renders, err := NewCounter(meter, "invoice.pdf.renders", "PDF renders, by engine and result", "{render}")
	if err != nil {
		return nil, err
	}
	renderDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "invoice.pdf.render_duration",
		Description: "PDF render duration",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &InvoiceMetrics{
		created:        created,
		outcomes:       outcomes,
		renders:        renders,
		renderDuration: renderDuration,
	}, nil
}

// InvoiceCreated counts a stored invoice
func (m *InvoiceMetrics) InvoiceCreated(ctx context.Context, operation string) {
	m.created.Inc(ctx, AttrOperation.String(operation))
}

// OutcomeRecorded counts an operation outcome
func (m *InvoiceMetrics) OutcomeRecorded(ctx context.Context, operation string, outcome shared.Outcome) {
	m.outcomes.Inc(ctx, AttrOperation.String(operation), AttrOutcome.String(outcome.String()))
}

// PDFRendered counts a render and records its duration
func (m *InvoiceMetrics) PDFRendered(ctx context.Context, engine string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.renders.Inc(ctx, AttrEngine.String(engine), AttrResult.String(result))
	m.renderDuration.RecordDuration(ctx, duration, AttrEngine.String(engine))
}
