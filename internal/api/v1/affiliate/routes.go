package affiliate

import (
	"vpn-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, admin *gin.RouterGroup) {
	grp := r.Group("/affiliate")
	grp.Use(middleware.RequireAuth())
	{
		grp.GET("/balance", GetBalance)
		grp.POST("/withdraw-days", WithdrawDays)
	}

	admin.POST("/affiliate/withdraw-btc", AdminWithdrawBTC)
}
