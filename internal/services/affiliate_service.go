package services

import (
	"errors"

	"vpn-backend/config"
	"vpn-backend/internal/database"
	"vpn-backend/internal/models"
	"vpn-backend/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// AffiliateBalance derives the referrer's spendable balance in satoshis:
// the sum of rewards over confirmed top-ups attributed to the referrer,
// minus the sum of all withdrawal amounts attributed to it. Nothing is
// stored; the ledger is the source of truth.
func AffiliateBalance(db *gorm.DB, ref uint) (int64, error) {
	var rewarded int64
	err := db.Model(&models.Payment{}).
		Where("ref = ? AND status = ? AND type = ?", ref, models.StatusConfirmed, models.EntryTypeTopUp).
		Select("COALESCE(SUM(reward_satoshis), 0)").Scan(&rewarded).Error
	if err != nil {
		return 0, err
	}

	var withdrawn int64
	err = db.Model(&models.Payment{}).
		Where("ref = ?", ref).
		Select("COALESCE(SUM(withdrawn_satoshis), 0)").Scan(&withdrawn).Error
	if err != nil {
		return 0, err
	}

	return rewarded - withdrawn, nil
}

// GetAffiliateBalance is the read-only variant over the live database.
func GetAffiliateBalance(ref uint) (int64, error) {
	return AffiliateBalance(database.DB, ref)
}

// WithdrawAffiliateBTC records a confirmed BTC payout of the given amount
// against the client's affiliate balance. Admin-only at the transport
// layer. No balance check is performed here; the ledger records whatever
// the operator paid out, negative balances included.
func WithdrawAffiliateBTC(clientID uint, btc float64) error {
	satoshis := satoshisPerBTC.Mul(decimal.NewFromFloat(btc)).Round(0).IntPart()

	entry := models.Payment{
		ID:                newEntryID(),
		ClientID:          clientID,
		Ref:               clientID,
		Type:              models.EntryTypeWithdrawalBTC,
		Status:            models.StatusConfirmed,
		WithdrawnSatoshis: satoshis,
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		return err
	}

	logger.Log.Info("affiliate BTC withdrawal recorded",
		zap.Uint("client_id", clientID),
		zap.Int64("satoshis", satoshis))
	return nil
}

// WithdrawAffiliateDays converts the caller's whole affiliate balance into
// subscription days: days = round(30 * balance / (1e8 * monthPrice / rate)).
// Fails with ErrInsufficientBalance when the balance converts to less than
// one day. On success the full balance is debited, residual fraction
// forfeited, and the caller's own subscription is extended.
//
// The exchange rate is fetched before the transaction opens; inside it the
// account row is locked so concurrent withdrawals cannot both observe the
// same balance.
func WithdrawAffiliateDays(accountID uint) (int, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return 0, err
	}
	if cfg.MonthPrice <= 0 {
		return 0, errors.New("month price must be positive")
	}

	rate, err := GetRate()
	if err != nil {
		return 0, err
	}

	var days int
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := lockForUpdate(tx).First(&account, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		balance, err := AffiliateBalance(tx, accountID)
		if err != nil {
			return err
		}

		// satoshis per subscription month at the current rate
		monthSatoshis := satoshisPerBTC.
			Mul(decimal.NewFromInt(int64(cfg.MonthPrice))).
			Div(decimal.NewFromFloat(rate))

		days = int(decimal.NewFromInt(30).
			Mul(decimal.NewFromInt(balance)).
			Div(monthSatoshis).
			Round(0).IntPart())
		if days < 1 {
			return ErrInsufficientBalance
		}

		if err := ExtendSubscription(tx, accountID, days, account.PublicKey, account.Octets); err != nil {
			return err
		}

		entry := models.Payment{
			ID:                newEntryID(),
			ClientID:          accountID,
			Ref:               accountID,
			Type:              models.EntryTypeWithdrawalDays,
			Status:            models.StatusConfirmed,
			WithdrawnSatoshis: balance,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return 0, err
	}

	logger.Log.Info("affiliate balance converted to days",
		zap.Uint("account_id", accountID),
		zap.Int("days", days))
	return days, nil
}
