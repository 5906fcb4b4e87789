package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vpn-backend/config"
	"vpn-backend/internal/database"
	"vpn-backend/internal/keys"
	"vpn-backend/internal/mail"
	"vpn-backend/internal/models"
	"vpn-backend/internal/utils"
	"vpn-backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrAccountExists   = errors.New("account with this username already exists")
	ErrUnauthorized    = errors.New("invalid username or password")
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrIncorrectEmail  = errors.New("incorrect email")
	ErrUpstreamFailure = errors.New("upstream service unavailable")
)

// Mailer delivers the password-reset email. Set at startup; tests swap in a
// fake.
var Mailer mail.Sender

// SignUp creates an account with a fresh keypair and the next free octet
// ordinal, grants the trial subscription and returns a session token.
//
// The octet ordinal is max(existing)+1. Two concurrent sign-ups reading the
// same max collide on the unique index, so the insert runs in a transaction
// and is retried on conflict.
func SignUp(username, password, email string, ref uint) (string, error) {
	var existing models.Account
	result := database.DB.Where("username = ?", username).First(&existing)
	if result.Error == nil {
		return "", ErrAccountExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return "", result.Error
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	pair, err := keys.NewPair()
	if err != nil {
		return "", err
	}

	loginToken, err := utils.NewLoginToken()
	if err != nil {
		return "", err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return "", err
	}

	account := models.Account{
		Username:   username,
		Password:   string(hashed),
		Email:      email,
		Ref:        ref,
		PublicKey:  pair.PublicKey,
		PrivateKey: pair.PrivateKey,
	}
	account.SetTokens([]string{loginToken})

	const maxAttempts = 3
	for attempt := 0; ; attempt++ {
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var maxOctets int
			if err := tx.Model(&models.Account{}).
				Select("COALESCE(MAX(octets), 0)").Scan(&maxOctets).Error; err != nil {
				return err
			}
			account.ID = 0
			account.Octets = maxOctets + 1

			if err := tx.Create(&account).Error; err != nil {
				return err
			}

			sub := models.Subscription{
				ClientID:  account.ID,
				PublicKey: account.PublicKey,
				Octets:    account.Octets,
				ExpireAt:  addDays(time.Now(), cfg.TrialDays),
			}
			return tx.Create(&sub).Error
		})
		if err == nil {
			break
		}
		if isUniqueViolation(err) {
			if strings.Contains(strings.ToLower(err.Error()), "username") {
				return "", ErrAccountExists
			}
			if attempt < maxAttempts-1 {
				continue
			}
		}
		return "", err
	}

	logger.Log.Info("account created",
		zap.Uint("account_id", account.ID),
		zap.Int("octets", account.Octets))

	return utils.GenerateSessionToken(account.ID, loginToken)
}

// Login verifies the credentials and appends a new login token to the
// account's token set. Existing sessions stay valid.
func Login(username, password string) (string, error) {
	var account models.Account
	if err := database.DB.Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUnauthorized
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", ErrUnauthorized
	}

	loginToken, err := utils.NewLoginToken()
	if err != nil {
		return "", err
	}

	// Lock the row so two concurrent logins both land in the set.
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var current models.Account
		if err := lockForUpdate(tx).First(&current, account.ID).Error; err != nil {
			return err
		}
		current.SetTokens(append(current.Tokens(), loginToken))
		return tx.Model(&current).Update("login_tokens", current.LoginTokens).Error
	})
	if err != nil {
		return "", err
	}

	invalidateAccountCache(account.ID)

	return utils.GenerateSessionToken(account.ID, loginToken)
}

// ChangePassword replaces the credential hash and resets the login-token
// set to a single fresh token, invalidating every other session. Returns a
// new session token.
func ChangePassword(accountID uint, newPassword string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	loginToken, err := utils.NewLoginToken()
	if err != nil {
		return "", err
	}

	var account models.Account
	if err := database.DB.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrAccountNotFound
		}
		return "", err
	}

	account.SetTokens([]string{loginToken})
	updates := map[string]interface{}{
		"password":     string(hashed),
		"login_tokens": account.LoginTokens,
	}
	if err := database.DB.Model(&account).Updates(updates).Error; err != nil {
		return "", err
	}

	invalidateAccountCache(accountID)

	return utils.GenerateSessionToken(accountID, loginToken)
}

// ChangePasswordWithResetToken authorizes the same reset via a one-hour
// signed token from the reset email.
func ChangePasswordWithResetToken(resetToken, newPassword string) (string, error) {
	claims, err := utils.ValidateToken(resetToken)
	if err != nil {
		return "", ErrInvalidToken
	}
	accountID, ok := utils.AccountIDFromClaims(claims)
	if !ok {
		return "", ErrInvalidToken
	}
	return ChangePassword(accountID, newPassword)
}

// RequestPasswordReset emails a one-hour reset link to the account that owns
// the address.
func RequestPasswordReset(email string) error {
	var account models.Account
	if err := database.DB.Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIncorrectEmail
		}
		return err
	}

	resetToken, err := utils.GenerateResetToken(account.ID)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	msg := mail.Message{
		To:      email,
		From:    cfg.ResetPasswordEmail,
		Subject: "Reset Password",
		Text:    fmt.Sprintf("Please click %s%s", cfg.ResetPasswordURL, resetToken),
	}
	if err := Mailer.Send(msg); err != nil {
		logger.Log.Error("reset mail delivery failed", zap.Error(err))
		return ErrUpstreamFailure
	}
	return nil
}

// VerifyResetToken checks a reset token and returns the account it belongs to.
func VerifyResetToken(resetToken string) (uint, error) {
	claims, err := utils.ValidateToken(resetToken)
	if err != nil {
		return 0, ErrInvalidToken
	}
	accountID, ok := utils.AccountIDFromClaims(claims)
	if !ok {
		return 0, ErrInvalidToken
	}
	return accountID, nil
}

// ChangeEmail updates the account's email address.
func ChangeEmail(accountID uint, newEmail string) (*models.Account, error) {
	var account models.Account
	if err := database.DB.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if err := database.DB.Model(&account).Update("email", newEmail).Error; err != nil {
		return nil, err
	}

	invalidateAccountCache(accountID)
	account.Email = newEmail
	return &account, nil
}

// DeleteAccount removes the account row. Subscription and payment rows are
// not cascaded; the ledger keeps its history.
func DeleteAccount(accountID uint) error {
	if err := database.DB.Delete(&models.Account{}, accountID).Error; err != nil {
		return err
	}
	invalidateAccountCache(accountID)
	return nil
}

// FindAccountByID fetches an account, via the redis cache when available.
func FindAccountByID(accountID uint) (models.Account, error) {
	cacheKey := accountCacheKey(accountID)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var account models.Account
			if err := json.Unmarshal([]byte(val), &account); err == nil {
				return account, nil
			}
		}
	}

	var account models.Account
	if err := database.DB.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, ErrAccountNotFound
		}
		return account, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(account); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, time.Hour)
		}
	}

	return account, nil
}

func accountCacheKey(accountID uint) string {
	return fmt.Sprintf("account:%d", accountID)
}

func invalidateAccountCache(accountID uint) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, accountCacheKey(accountID))
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
