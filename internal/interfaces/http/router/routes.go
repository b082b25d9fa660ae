package router

import (
	"github.com/invoicer/backend/internal/interfaces/http/handler"
)

// InvoiceRoutes registers the invoice endpoints. Static segments come before
// ":id" so gin resolves them first.
func InvoiceRoutes(h *handler.InvoiceHandler) *DomainGroup {
	g := NewDomainGroup("invoices", "/invoices")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/defaults", h.Defaults)
	g.POST("/preview", h.Preview)
	g.GET("/next-number", h.NextNumber)
	g.GET("/number-availability", h.CheckNumber)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/duplicate", h.Duplicate)
	g.PATCH("/:id/status", h.SetStatus)
	g.POST("/:id/status/toggle", h.ToggleStatus)
	g.PATCH("/:id/remark", h.UpdateRemark)
	g.GET("/:id/pdf", h.DownloadPDF)
	g.POST("/:id/pdf/archive", h.ArchivePDF)
	return g
}

// PaymentInfoRoutes registers the payment info singleton
func PaymentInfoRoutes(h *handler.PaymentInfoHandler) *DomainGroup {
	g := NewDomainGroup("payment-info", "/payment-info")
	g.GET("", h.Get)
	g.PUT("", h.Update)
	return g
}

// ReportRoutes registers the revenue report endpoints
func ReportRoutes(h *handler.ReportHandler) *DomainGroup {
	g := NewDomainGroup("reports", "/reports")
	revenue := g.Group("revenue", "/revenue")
	revenue.GET("", h.Revenue)
	revenue.GET("/export", h.ExportRevenue)
	return g
}

// AuthRoutes registers sign-in and sign-out
func AuthRoutes(h *handler.AuthHandler) *DomainGroup {
	g := NewDomainGroup("auth", "/auth")
	g.POST("/sign-in", h.SignIn)
	g.POST("/sign-out", h.SignOut)
	g.GET("/me", h.Me)
	return g
}

// SystemRoutes registers the versioned system endpoints
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", h.GetSystemInfo)
	g.GET("/health", h.Health)
	return g
}
