package billing

import (
	"errors"
	"net/http"

	"vpn-backend/internal/middleware"
	"vpn-backend/internal/models"
	"vpn-backend/internal/services"
	"vpn-backend/internal/utils"
	"vpn-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// CreateInvoice requests a top-up invoice and returns the URL the client
// pays at.
func (h *Handler) CreateInvoice(c *gin.Context) {
	var input CreateInvoiceInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	account, _ := middleware.CurrentAccount(c)

	url, err := services.CreateTopUpInvoice(account, input.Months, models.PaymentType(input.PaymentType))
	if err != nil {
		if errors.Is(err, services.ErrUpstreamFailure) {
			c.JSON(http.StatusServiceUnavailable, utils.NewErrorResponse(http.StatusServiceUnavailable, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create invoice"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", CreateInvoiceResponse{InvoiceURL: url}))
}

// ListInvoices returns the caller's ledger entries, newest first.
func (h *Handler) ListInvoices(c *gin.Context) {
	account, _ := middleware.CurrentAccount(c)

	entries, err := services.ListInvoices(account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to list invoices"))
		return
	}

	response := make([]InvoiceResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, InvoiceResponse{
			ID:             e.ID,
			Months:         e.Months,
			Price:          e.Price,
			BTCPrice:       e.BTCPrice,
			Currency:       e.Currency,
			PaymentType:    string(e.PaymentType),
			Type:           string(e.Type),
			Status:         string(e.Status),
			InvoiceURL:     e.InvoiceURL,
			RewardSatoshis: e.RewardSatoshis,
			CreatedAt:      e.CreatedAt.UnixMilli(),
			ExpirationTime: e.ExpirationTime.UnixMilli(),
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", response))
}

// GetRate returns the current BTC exchange rate for the invoice currency.
func (h *Handler) GetRate(c *gin.Context) {
	rate, err := services.GetRate()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, utils.NewErrorResponse(http.StatusServiceUnavailable, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", RateResponse{Rate: rate}))
}

// Webhook receives payment processor notifications. The processor retries
// on failure codes; errors are logged here and surfaced as generic
// failures, never detailed to the semi-trusted caller.
func (h *Handler) Webhook(c *gin.Context) {
	var input WebhookInput
	if err := c.ShouldBindJSON(&input); err != nil || input.ID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := services.ReconcileInvoice(input.ID); err != nil {
		logger.Log.Error("webhook reconciliation failed",
			zap.String("invoice_id", input.ID),
			zap.Error(err))
		if errors.Is(err, services.ErrInvoiceNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusOK)
}
