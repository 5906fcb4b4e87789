package auth

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup) {
	grp := r.Group("/auth")
	{
		grp.POST("/signup", SignUp)
		grp.POST("/login", Login)
		grp.POST("/password", ChangePassword)
		grp.POST("/password/reset", RequestPasswordReset)
		grp.POST("/password/verify", VerifyResetToken)
	}
}
