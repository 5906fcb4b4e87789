package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vpn-backend/config"
	"vpn-backend/internal/database"
	"vpn-backend/internal/models"
	"vpn-backend/internal/payment"
	"vpn-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

// Pay is the payment processor collaborator. Set at startup; tests swap in
// a fake.
var Pay payment.Processor

const upstreamTimeout = 30 * time.Second

var satoshisPerBTC = decimal.NewFromInt(1e8)

// CreateTopUpInvoice requests an invoice from the processor and records the
// UNCONFIRMED ledger entry, with the affiliate reward precomputed from the
// invoice's BTC price. Returns the invoice URL the client is sent to.
//
// If the ledger insert is retried after the processor call succeeded, the
// invoice id lookup prevents a duplicate entry; the orphaned processor
// invoice (ledger insert failed, no retry) is acceptable collateral.
func CreateTopUpInvoice(account models.Account, months int, paymentType models.PaymentType) (string, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return "", err
	}

	price := float64(cfg.MonthPrice * months)

	ctx, cancel := context.WithTimeout(context.Background(), upstreamTimeout)
	defer cancel()

	invoice, err := Pay.CreateInvoice(ctx, payment.InvoiceRequest{
		Price:           price,
		Currency:        cfg.Currency,
		ItemDesc:        fmt.Sprintf("VPN · %d days", months*30),
		NotificationURL: cfg.WebhookURL(),
		RedirectURL:     cfg.MainDomain,
	})
	if err != nil {
		logger.Log.Error("invoice creation failed", zap.Error(err))
		return "", ErrUpstreamFailure
	}

	reward := satoshisPerBTC.
		Mul(decimal.NewFromFloat(invoice.BTCPrice)).
		Mul(decimal.NewFromFloat(cfg.AffilateFee)).
		Round(0).IntPart()

	entry := models.Payment{
		ID:             newEntryID(),
		ClientID:       account.ID,
		Ref:            account.Ref,
		PublicKey:      account.PublicKey,
		Months:         months,
		Price:          price,
		BTCPrice:       invoice.BTCPrice,
		Currency:       cfg.Currency,
		PaymentType:    paymentType,
		Type:           models.EntryTypeTopUp,
		Status:         models.StatusUnconfirmed,
		InvoiceID:      invoice.ID,
		InvoiceURL:     invoice.URL,
		RewardSatoshis: reward,
		CreatedAt:      invoice.InvoiceTime,
		ExpirationTime: invoice.ExpirationTime,
	}

	err = database.DB.Where("invoice_id = ?", invoice.ID).FirstOrCreate(&entry).Error
	if err != nil {
		return "", err
	}

	return invoice.URL, nil
}

// ListInvoices returns the client's ledger entries, newest first.
func ListInvoices(clientID uint) ([]models.Payment, error) {
	var entries []models.Payment
	err := database.DB.Where("client_id = ?", clientID).
		Order("created_at desc").Find(&entries).Error
	return entries, err
}

// ReconcileInvoice applies the processor's authoritative invoice status to
// the matching ledger entry. The status read-and-set happens under a row
// lock in one transaction so exactly one notification observes the
// UNCONFIRMED -> CONFIRMED edge; that notification extends the payer's
// subscription by months*30 days, and redeliveries are no-ops.
func ReconcileInvoice(invoiceID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), upstreamTimeout)
	defer cancel()

	invoice, err := Pay.GetInvoice(ctx, invoiceID)
	if err != nil {
		return ErrUpstreamFailure
	}
	if invoice == nil {
		return ErrInvoiceNotFound
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.Payment
		err := lockForUpdate(tx).Where("invoice_id = ?", invoiceID).First(&entry).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}

		previous := entry.Status
		newStatus := models.EntryStatus(invoice.Status)
		if err := tx.Model(&entry).Update("status", newStatus).Error; err != nil {
			return err
		}

		if previous != models.StatusConfirmed && newStatus == models.StatusConfirmed {
			if err := ExtendSubscription(tx, entry.ClientID, entry.Months*30, entry.PublicKey, 0); err != nil {
				return err
			}
			logger.Log.Info("invoice confirmed",
				zap.String("invoice_id", invoiceID),
				zap.Uint("client_id", entry.ClientID),
				zap.Int("days", entry.Months*30))
		}
		return nil
	})
}

// GetRate returns the BTC exchange rate for the configured currency, with a
// short redis cache in front of the processor.
func GetRate() (float64, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return 0, err
	}
	pair := "BTC_" + cfg.Currency

	cacheKey := "rate:" + pair
	if database.RedisClient != nil {
		if val, err := database.RedisClient.Get(database.Ctx, cacheKey).Float64(); err == nil {
			return val, nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), upstreamTimeout)
	defer cancel()

	rate, err := Pay.GetRate(ctx, pair)
	if err != nil {
		return 0, ErrUpstreamFailure
	}
	// A zero or negative quote is an upstream fault; it must never reach
	// the conversion arithmetic.
	if rate <= 0 {
		logger.Log.Error("processor quoted non-positive rate",
			zap.String("pair", pair), zap.Float64("rate", rate))
		return 0, ErrUpstreamFailure
	}

	if database.RedisClient != nil {
		database.RedisClient.Set(database.Ctx, cacheKey, rate, time.Minute)
	}
	return rate, nil
}

func newEntryID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
