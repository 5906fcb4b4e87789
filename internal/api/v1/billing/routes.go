package billing

import (
	"vpn-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, webhookEndpoint string) {
	h := NewHandler()

	// Public processor notification route
	r.POST("/"+webhookEndpoint, h.Webhook)

	grp := r.Group("/invoices")
	grp.Use(middleware.RequireAuth())
	{
		grp.GET("", h.ListInvoices)
		grp.POST("", h.CreateInvoice)
	}

	r.GET("/rate", h.GetRate)
}
