package tunnel

import (
	"errors"
	"net/http"

	"vpn-backend/internal/middleware"
	"vpn-backend/internal/services"
	"vpn-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type ConfigInput struct {
	Country     string `json:"country" binding:"required,len=2"`
	ExitCountry string `json:"exit_country" binding:"required,len=2"`
	DNSType     string `json:"dns_type" binding:"required,oneof=DNS_SIMPLE DNS_ADBLOCK"`
}

type ConfigResponse struct {
	Config string `json:"config"` // base64
}

// GetConfig renders one tunnel config for the caller.
func GetConfig(c *gin.Context) {
	var input ConfigInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	account, _ := middleware.CurrentAccount(c)

	cfg, err := services.BuildConfig(account, input.Country, input.ExitCountry, input.DNSType)
	if err != nil {
		if errors.Is(err, services.ErrServerNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to build config"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", ConfigResponse{Config: cfg}))
}

// GetAllConfigs returns a zip of every server's configs, base64-encoded.
func GetAllConfigs(c *gin.Context) {
	account, _ := middleware.CurrentAccount(c)

	archive, err := services.BuildAllConfigsZip(account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to build configs"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", ConfigResponse{Config: archive}))
}

type IPInfoResponse struct {
	IP        string `json:"ip"`
	Country   string `json:"country"`
	Connected bool   `json:"connected"`
}

// IPInfo reports the caller's IP, its country (from edge headers) and
// whether the IP belongs to one of our servers.
func IPInfo(c *gin.Context) {
	ip := c.GetHeader("X-BB-IP")
	if ip == "" {
		ip = c.ClientIP()
	}
	country := c.GetHeader("X-Country")
	if country == "" {
		country = "unknown"
	}

	connected, err := services.IPInfo(ip)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to look up IP"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", IPInfoResponse{
		IP:        ip,
		Country:   country,
		Connected: connected,
	}))
}
