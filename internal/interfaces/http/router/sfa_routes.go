package router

import "github.com/erp/sfa/internal/interfaces/http/handler"

// RegisterSFARoutes adds the revenue record, payment and lookup groups
func RegisterSFARoutes(r *Router, h *handler.SFAHandler) *Router {
	sfas := NewDomainGroup("sfas", "/sfas").
		POST("", h.CreateRevenue).
		GET("/:id", h.GetRevenue)
	sfas.Group("sfa-payments", "/:id/payments").
		GET("", h.ListPayments).
		GET("/export", h.ExportPayments)

	payments := NewDomainGroup("payments", "/sfa-by-payment").
		POST("", h.CreatePayment).
		PUT("/:id", h.UpdatePayment).
		GET("/:id/history", h.History)

	lookups := NewDomainGroup("lookups", "").
		GET("/codes/:category", h.Codes).
		GET("/teams", h.Teams).
		GET("/customers", h.SearchCustomers)

	return r.Register(sfas).Register(payments).Register(lookups)
}
