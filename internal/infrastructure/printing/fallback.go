package printing

import (
	"context"
	"errors"

	"github.com/invoicer/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// EngineAuto tries chromedp first and falls back to gofpdf
const EngineAuto = "auto"

// FallbackRenderer renders with a primary engine and retries with a secondary
// engine when the primary fails. A cancelled request is not retried.
type FallbackRenderer struct {
	primary   Renderer
	secondary Renderer
	logger    *zap.Logger
}

// NewFallbackRenderer chains two renderers
func NewFallbackRenderer(primary, secondary Renderer, logger *zap.Logger) *FallbackRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackRenderer{primary: primary, secondary: secondary, logger: logger}
}

// Name identifies the engine chain
func (r *FallbackRenderer) Name() string {
	return EngineAuto
}

// Render tries the primary engine, then the secondary one
func (r *FallbackRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	result, err := r.primary.Render(ctx, req)
	if err == nil {
		return result, nil
	}

	var renderErr *RenderError
	if errors.As(err, &renderErr) && renderErr.Code == ErrCodeInvalidDocument {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, err
	}

	r.logger.Warn("Primary PDF engine failed, falling back",
		zap.String("primary", r.primary.Name()),
		zap.String("fallback", r.secondary.Name()),
		zap.Error(err))

	result, fallbackErr := r.secondary.Render(ctx, req)
	if fallbackErr != nil {
		return nil, errors.Join(err, fallbackErr)
	}
	result.FellBack = true
	return result, nil
}

// Close releases both engines
func (r *FallbackRenderer) Close() error {
	return errors.Join(r.primary.Close(), r.secondary.Close())
}

// NewRenderer builds the renderer selected by pdf.engine
func NewRenderer(cfg config.PDFConfig, logger *zap.Logger) (Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	chromedpRenderer := func() *ChromedpRenderer {
		return NewChromedpRenderer(&ChromedpConfig{
			DefaultTimeout: cfg.Timeout,
			ExecPath:       cfg.ChromePath,
			NoSandbox:      true,
			Logger:         logger,
		})
	}

	switch cfg.Engine {
	case EngineChromedp:
		return chromedpRenderer(), nil
	case EngineGofpdf:
		return NewGofpdfRenderer(logger), nil
	case EngineAuto, "":
		return NewFallbackRenderer(chromedpRenderer(), NewGofpdfRenderer(logger), logger), nil
	}
	return nil, NewRenderError(ErrCodeUnknownEngine, "unknown pdf engine: "+cfg.Engine, nil)
}

var _ Renderer = (*FallbackRenderer)(nil)
