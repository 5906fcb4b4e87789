package tunnel

import (
	"vpn-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ipinfo", IPInfo)

	grp := r.Group("/tunnel")
	grp.Use(middleware.RequireAuth())
	{
		grp.POST("/config", GetConfig)
		grp.GET("/configs.zip", GetAllConfigs)
	}
}
