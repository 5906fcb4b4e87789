package subscription

import (
	"errors"
	"net/http"

	"vpn-backend/internal/middleware"
	"vpn-backend/internal/services"
	"vpn-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type ExpiryResponse struct {
	ExpireAt int64 `json:"expire_at"` // unix millis
}

func GetExpiry(c *gin.Context) {
	account, _ := middleware.CurrentAccount(c)

	expireAt, err := services.GetExpiry(account.ID)
	if err != nil {
		if errors.Is(err, services.ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch expiry"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", ExpiryResponse{ExpireAt: expireAt.UnixMilli()}))
}

type ExtendInput struct {
	ClientID uint `json:"client_id" binding:"required"`
	Days     int  `json:"days" binding:"required,gt=0"`
}

// AdminExtend adds days to any client's subscription.
func AdminExtend(c *gin.Context) {
	var input ExtendInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	if err := services.AdminAddDays(input.ClientID, input.Days); err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to extend subscription"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Subscription extended", nil))
}
