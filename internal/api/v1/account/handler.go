package account

import (
	"errors"
	"net/http"

	"vpn-backend/internal/middleware"
	"vpn-backend/internal/services"
	"vpn-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type AccountResponse struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	Octets     int    `json:"octets"`
}

// Me returns the caller's own account, private key included so the client
// can build tunnel configs locally.
func Me(c *gin.Context) {
	account, _ := middleware.CurrentAccount(c)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", AccountResponse{
		ID:         account.ID,
		Username:   account.Username,
		Email:      account.Email,
		PublicKey:  account.PublicKey,
		PrivateKey: account.PrivateKey,
		Octets:     account.Octets,
	}))
}

type ChangeEmailInput struct {
	NewEmail string `json:"new_email" binding:"required,email"`
}

func ChangeEmail(c *gin.Context) {
	var input ChangeEmailInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	account, _ := middleware.CurrentAccount(c)
	updated, err := services.ChangeEmail(account.ID, input.NewEmail)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to change email"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Email changed", AccountResponse{
		ID:        updated.ID,
		Username:  updated.Username,
		Email:     updated.Email,
		PublicKey: updated.PublicKey,
		Octets:    updated.Octets,
	}))
}

// Delete removes the account row only. Subscription and ledger rows stay
// behind for bookkeeping.
func Delete(c *gin.Context) {
	account, _ := middleware.CurrentAccount(c)

	if err := services.DeleteAccount(account.ID); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to delete account"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Account deleted", nil))
}
