package auth

import (
	"errors"
	"net/http"

	"vpn-backend/internal/middleware"
	"vpn-backend/internal/services"
	"vpn-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type SignUpInput struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"omitempty,email"`
	Ref      uint   `json:"ref"`
}

// SignUp registers an account and returns a session token. The optional ref
// is the referring account id from an invite link.
func SignUp(c *gin.Context) {
	var input SignUpInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	token, err := services.SignUp(input.Username, input.Password, input.Email, input.Ref)
	if err != nil {
		if errors.Is(err, services.ErrAccountExists) {
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create account"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Account created", TokenResponse{Token: token}))
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func Login(c *gin.Context) {
	var input LoginInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	token, err := services.Login(input.Username, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid username or password"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to log in"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged in successfully", TokenResponse{Token: token}))
}

type ChangePasswordInput struct {
	NewPassword        string `json:"new_password" binding:"required,min=8"`
	ResetPasswordToken string `json:"reset_password_token"`
}

// ChangePassword replaces the credential either for the authenticated
// session or via a reset token from the reset email. All other sessions are
// invalidated; the response carries a fresh session token.
func ChangePassword(c *gin.Context) {
	var input ChangePasswordInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	var token string
	var err error
	if input.ResetPasswordToken != "" {
		token, err = services.ChangePasswordWithResetToken(input.ResetPasswordToken, input.NewPassword)
	} else {
		account, ok := middleware.CurrentAccount(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
			return
		}
		token, err = services.ChangePassword(account.ID, input.NewPassword)
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidToken):
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
		case errors.Is(err, services.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to change password"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Password changed", TokenResponse{Token: token}))
}

type ResetPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

func RequestPasswordReset(c *gin.Context) {
	var input ResetPasswordInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	err := services.RequestPasswordReset(input.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrIncorrectEmail):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		case errors.Is(err, services.ErrUpstreamFailure):
			c.JSON(http.StatusServiceUnavailable, utils.NewErrorResponse(http.StatusServiceUnavailable, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to request reset"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Reset email sent", nil))
}

type VerifyResetTokenInput struct {
	ResetPasswordToken string `json:"reset_password_token" binding:"required"`
}

func VerifyResetToken(c *gin.Context) {
	var input VerifyResetTokenInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	if _, err := services.VerifyResetToken(input.ResetPasswordToken); err != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Token valid", nil))
}
