package api

import (
	"vpn-backend/config"
	"vpn-backend/internal/api/v1/account"
	"vpn-backend/internal/api/v1/affiliate"
	"vpn-backend/internal/api/v1/auth"
	"vpn-backend/internal/api/v1/billing"
	"vpn-backend/internal/api/v1/subscription"
	"vpn-backend/internal/api/v1/tunnel"
	"vpn-backend/internal/database"
	"vpn-backend/internal/mail"
	"vpn-backend/internal/middleware"
	"vpn-backend/internal/payment/btcpay"
	"vpn-backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if err := database.Connect(cfg); err != nil {
		return nil, err
	}
	if err := database.ConnectRedis(cfg); err != nil {
		return nil, err
	}

	// Collaborators
	services.Pay = btcpay.NewDriver(cfg.BTCPayURL, cfg.BTCPayToken)
	services.Mailer = mail.NewSendgridSender(cfg.SendgridAPIKey)

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.MainDomain},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Session resolution is passthrough: an invalid token makes the
	// request anonymous, per-route middleware decides what that means.
	router.Use(middleware.Passthrough())

	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1)
		account.RegisterRoutes(v1)
		billing.RegisterRoutes(v1, cfg.WebhookEndpoint)
		tunnel.RegisterRoutes(v1)

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin(cfg))
		{
			subscription.RegisterRoutes(v1, admin)
			affiliate.RegisterRoutes(v1, admin)
		}
	}

	return router, nil
}
