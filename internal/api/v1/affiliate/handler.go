package affiliate

import (
	"errors"
	"net/http"

	"vpn-backend/internal/middleware"
	"vpn-backend/internal/services"
	"vpn-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type BalanceResponse struct {
	Satoshis int64 `json:"satoshis"`
}

func GetBalance(c *gin.Context) {
	account, _ := middleware.CurrentAccount(c)

	balance, err := services.GetAffiliateBalance(account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to compute balance"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", BalanceResponse{Satoshis: balance}))
}

type WithdrawBTCInput struct {
	ClientID uint    `json:"client_id" binding:"required"`
	BTC      float64 `json:"btc" binding:"required,gt=0"`
}

// AdminWithdrawBTC records a BTC payout against a client's affiliate
// balance.
func AdminWithdrawBTC(c *gin.Context) {
	var input WithdrawBTCInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	if err := services.WithdrawAffiliateBTC(input.ClientID, input.BTC); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to record withdrawal"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Withdrawal recorded", nil))
}

type WithdrawDaysResponse struct {
	Days int `json:"days"`
}

// WithdrawDays converts the caller's affiliate balance into subscription
// days.
func WithdrawDays(c *gin.Context) {
	account, _ := middleware.CurrentAccount(c)

	days, err := services.WithdrawAffiliateDays(account.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		case errors.Is(err, services.ErrUpstreamFailure):
			c.JSON(http.StatusServiceUnavailable, utils.NewErrorResponse(http.StatusServiceUnavailable, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to withdraw"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Balance converted", WithdrawDaysResponse{Days: days}))
}
