package middleware

import (
	"net/http"

	"vpn-backend/config"
	"vpn-backend/internal/models"
	"vpn-backend/internal/services"
	"vpn-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

const accountKey = "account"

// Passthrough resolves the bearer token if one is present. A missing,
// malformed or revoked token downgrades the request to anonymous instead of
// rejecting it; handlers that need an identity use RequireAuth. The token is
// only honored while it is still a member of the account's login-token set.
func Passthrough() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			c.Next()
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		accountID, ok := utils.AccountIDFromClaims(claims)
		if !ok {
			c.Next()
			return
		}
		loginToken, _ := claims["token"].(string)

		account, err := services.FindAccountByID(accountID)
		if err != nil || !account.HasToken(loginToken) {
			c.Next()
			return
		}

		c.Set(accountKey, account)
		c.Next()
	}
}

// RequireAuth aborts with 401 unless Passthrough resolved an account.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(accountKey); !exists {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts unless the resolved account is on the admin
// allow-list.
func RequireAdmin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
			c.Abort()
			return
		}
		if !cfg.IsAdmin(account.ID) {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Forbidden: admins only"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentAccount returns the account Passthrough resolved, if any.
func CurrentAccount(c *gin.Context) (models.Account, bool) {
	raw, exists := c.Get(accountKey)
	if !exists {
		return models.Account{}, false
	}
	account, ok := raw.(models.Account)
	return account, ok
}
