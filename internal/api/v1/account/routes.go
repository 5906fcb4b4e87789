package account

import (
	"vpn-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup) {
	grp := r.Group("/account")
	grp.Use(middleware.RequireAuth())
	{
		grp.GET("", Me)
		grp.PUT("/email", ChangeEmail)
		grp.DELETE("", Delete)
	}
}
