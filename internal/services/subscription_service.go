package services

import (
	"errors"
	"time"

	"vpn-backend/internal/database"
	"vpn-backend/internal/models"

	"gorm.io/gorm"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// addDays is the only expiry arithmetic in the system.
func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// ExtendSubscription adds days to a client's expiry, upserting the row.
//
// The base of the extension is the stored expireAt when a row exists, even
// when that timestamp is already in the past; "now" is only the base for a
// brand new row. Extension is not idempotent: callers guarantee
// at-most-once invocation per billing event (the invoice status transition
// is that guard).
//
// The snapshot fields refresh the denormalized copies; octets is left
// untouched when the caller passes 0.
func ExtendSubscription(tx *gorm.DB, clientID uint, days int, publicKey string, octets int) error {
	var sub models.Subscription
	err := lockForUpdate(tx).Where("client_id = ?", clientID).First(&sub).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		sub = models.Subscription{
			ClientID:  clientID,
			PublicKey: publicKey,
			Octets:    octets,
			ExpireAt:  addDays(time.Now(), days),
		}
		return tx.Create(&sub).Error
	}

	updates := map[string]interface{}{
		"expire_at":  addDays(sub.ExpireAt, days),
		"public_key": publicKey,
	}
	if octets != 0 {
		updates["octets"] = octets
	}
	return tx.Model(&sub).Updates(updates).Error
}

// AdminAddDays extends any client's subscription, refreshing the key and
// octet snapshot from the account.
func AdminAddDays(clientID uint, days int) error {
	var account models.Account
	if err := database.DB.First(&account, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		return ExtendSubscription(tx, clientID, days, account.PublicKey, account.Octets)
	})
}

// GetExpiry returns the client's expiry timestamp. A missing row is
// distinct from an expired one.
func GetExpiry(clientID uint) (time.Time, error) {
	var sub models.Subscription
	if err := database.DB.Where("client_id = ?", clientID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, ErrSubscriptionNotFound
		}
		return time.Time{}, err
	}
	return sub.ExpireAt, nil
}
