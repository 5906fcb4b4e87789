package subscription

import (
	"vpn-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, admin *gin.RouterGroup) {
	grp := r.Group("/subscription")
	grp.Use(middleware.RequireAuth())
	{
		grp.GET("/expiry", GetExpiry)
	}

	admin.POST("/subscription/extend", AdminExtend)
}
