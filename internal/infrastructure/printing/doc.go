// Package printing turns an assembled invoice document into a PDF.
//
// This package contains:
// - Renderer, the interface every PDF engine implements
// - ChromedpRenderer, which renders the invoice HTML template in headless Chrome
// - GofpdfRenderer, which draws the same layout natively without a browser
// - FallbackRenderer, which tries one engine and falls back to another
// - TemplateEngine and the INR formatting helpers used by the HTML layout
//
// Example usage:
//
//	renderer, err := NewRenderer(cfg.PDF, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer renderer.Close()
//
//	result, err := renderer.Render(ctx, &RenderRequest{Document: doc})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Generated PDF: %d bytes\n", len(result.PDFData))
package printing
