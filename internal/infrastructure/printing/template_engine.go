package printing

import (
	"bytes"
	"context"
	"html/template"
	"maps"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders invoice documents into HTML.
// It uses Go's html/template package with custom functions for formatting.
type TemplateEngine struct {
	funcMap template.FuncMap
	layout  string
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithLayout replaces the built-in invoice layout
func WithLayout(layout string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.layout = layout
	}
}

// WithFuncs adds or overrides template functions
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// NewTemplateEngine creates a new template engine with default configuration
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{layout: invoiceLayout}

	e.funcMap = template.FuncMap{
		// Money formatting
		"formatINR":   formatINRFunc,
		"groupIndian": GroupIndian,

		// String utilities
		"upper":    upperCase,
		"title":    titleCase,
		"trim":     strings.TrimSpace,
		"join":     strings.Join,
		"truncate": truncate,
		"lines":    splitLines,
		"notEmpty": func(s string) bool { return strings.TrimSpace(s) != "" },

		// Misc
		"year": func() int { return time.Now().Year() },
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RenderInvoice renders the configured layout with the document
func (e *TemplateEngine) RenderInvoice(ctx context.Context, doc *InvoiceDocument) (string, error) {
	if doc == nil {
		return "", NewRenderError(ErrCodeInvalidDocument, "invoice document is nil", nil)
	}
	return e.RenderString(ctx, "invoice", e.layout, doc)
}

// RenderString renders a template string with the provided data
func (e *TemplateEngine) RenderString(ctx context.Context, name, content string, data any) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}

	return buf.String(), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// formatINRFunc accepts decimals, numbers and numeric strings
func formatINRFunc(v any) string {
	return FormatINR(toDecimal(v))
}

// truncate truncates a string to max runes with optional suffix
func truncate(s string, max int, suffix ...string) string {
	suf := "..."
	if len(suffix) > 0 {
		suf = suffix[0]
	}
	runes := []rune(s)
	sufRunes := []rune(suf)
	if len(runes) <= max {
		return s
	}
	if max <= len(sufRunes) {
		return string(sufRunes[:max])
	}
	return string(runes[:max-len(sufRunes)]) + suf
}

// splitLines splits multi-line text such as an address, dropping blank lines
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func upperCase(s string) string {
	return cases.Upper(language.English).String(s)
}

// toDecimal converts various types to decimal.Decimal
func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
