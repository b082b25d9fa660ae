package printing

import (
	"context"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateEngine_RenderInvoice(t *testing.T) {
	engine := NewTemplateEngine()

	html, err := engine.RenderInvoice(context.Background(), sampleDocument())
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Invoice from Acme Studio</title>")
	assert.Contains(t, html, "INV2026100001")
	assert.Contains(t, html, "16/10/2026")
	assert.Contains(t, html, "GSTIN: 32ZZZZZ9999Z1Z9")
	assert.Contains(t, html, "<div>4 Beach Road</div><div>Calicut</div>")
	assert.Contains(t, html, "₹17,700.00")
	assert.Contains(t, html, "row grand")
	assert.Contains(t, html, "A/C No: 1234567890")
	assert.Contains(t, html, "Thank you for your business!")
	// item text is escaped
	assert.Contains(t, html, "Brochure &lt;print&gt;")
	assert.NotContains(t, html, "Remark:")
}

func TestTemplateEngine_RenderInvoice_OmitsEmptyBlocks(t *testing.T) {
	doc := sampleDocument()
	doc.BillTo.GSTIN = ""
	doc.Payment = PaymentBlock{}
	doc.Remark = "Paid by cheque"

	html, err := NewTemplateEngine().RenderInvoice(context.Background(), doc)
	require.NoError(t, err)

	assert.NotContains(t, html, "GSTIN: 32ZZZZZ9999Z1Z9")
	assert.NotContains(t, html, "Payment Information:")
	assert.Contains(t, html, "Remark: Paid by cheque")
}

func TestTemplateEngine_RenderInvoice_NilDocument(t *testing.T) {
	_, err := NewTemplateEngine().RenderInvoice(context.Background(), nil)
	require.Error(t, err)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidDocument, renderErr.Code)
}

func TestTemplateEngine_WithLayout(t *testing.T) {
	engine := NewTemplateEngine(WithLayout(`{{upper .Meta.Status}} {{formatINR "1234567"}}`))

	html, err := engine.RenderInvoice(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, "UNPAID ₹12,34,567.00", html)
}

func TestTemplateEngine_WithFuncs(t *testing.T) {
	engine := NewTemplateEngine(WithFuncs(template.FuncMap{
		"shout": func(s string) string { return s + "!" },
	}))

	out, err := engine.RenderString(context.Background(), "t", `{{shout "hi"}} {{title "full payment"}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi! Full Payment", out)
}

func TestTemplateEngine_RenderString_Errors(t *testing.T) {
	engine := NewTemplateEngine()

	_, err := engine.RenderString(context.Background(), "empty", "", nil)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)

	_, err = engine.RenderString(context.Background(), "bad", "{{.Missing", nil)
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "long te...", truncate("long text here", 10))
	assert.Equal(t, "..", truncate("abcdef", 2))
	assert.Equal(t, "रुपये", truncate("रुपये", 5))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitLines("a\r\n\n  b  \n"))
	assert.Nil(t, splitLines(""))
}

func TestGetFuncMap_ReturnsCopy(t *testing.T) {
	engine := NewTemplateEngine()
	funcs := engine.GetFuncMap()
	delete(funcs, "formatINR")

	_, ok := engine.GetFuncMap()["formatINR"]
	assert.True(t, ok)
}
