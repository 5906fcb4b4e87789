package services

import (
	"strings"
	"testing"
	"time"

	"vpn-backend/internal/database"
	"vpn-backend/internal/mail"
	"vpn-backend/internal/models"
	"vpn-backend/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestSignUp(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	token, err := SignUp("alice", "correct horse", "alice@example.com", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	var account models.Account
	require.NoError(t, database.DB.Where("username = ?", "alice").First(&account).Error)
	assert.Equal(t, 1, account.Octets)
	assert.NotEmpty(t, account.PublicKey)
	assert.NotEmpty(t, account.PrivateKey)
	assert.Len(t, account.Tokens(), 1)

	// Session token is bound to the stored login token
	claims, err := utils.ValidateToken(token)
	require.NoError(t, err)
	loginToken, _ := claims["token"].(string)
	assert.True(t, account.HasToken(loginToken))

	// Trial subscription granted at sign-up
	var sub models.Subscription
	require.NoError(t, database.DB.Where("client_id = ?", account.ID).First(&sub).Error)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 1), sub.ExpireAt, 5*time.Second)
	assert.Equal(t, account.PublicKey, sub.PublicKey)
	assert.Equal(t, account.Octets, sub.Octets)

	// Duplicate username
	_, err = SignUp("alice", "other password", "", 0)
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestSignUpOctetsAreContiguous(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	names := []string{"u1", "u2", "u3", "u4", "u5"}
	for _, name := range names {
		_, err := SignUp(name, "password123", "", 0)
		require.NoError(t, err)
	}

	var accounts []models.Account
	require.NoError(t, database.DB.Order("octets asc").Find(&accounts).Error)
	require.Len(t, accounts, len(names))
	for i, account := range accounts {
		assert.Equal(t, i+1, account.Octets)
	}
}

func TestLoginAppendsToken(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	_, err := SignUp("bob", "password123", "", 0)
	require.NoError(t, err)

	_, err = Login("bob", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = Login("nobody", "password123")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = Login("bob", "password123")
	require.NoError(t, err)
	_, err = Login("bob", "password123")
	require.NoError(t, err)

	var account models.Account
	require.NoError(t, database.DB.Where("username = ?", "bob").First(&account).Error)
	// sign-up token plus two logins, nothing invalidated
	assert.Len(t, account.Tokens(), 3)
}

func TestChangePasswordResetsTokenSet(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	signupToken, err := SignUp("carol", "password123", "", 0)
	require.NoError(t, err)

	claims, err := utils.ValidateToken(signupToken)
	require.NoError(t, err)
	oldLoginToken, _ := claims["token"].(string)

	var account models.Account
	require.NoError(t, database.DB.Where("username = ?", "carol").First(&account).Error)

	newSession, err := ChangePassword(account.ID, "new password!")
	require.NoError(t, err)
	assert.NotEmpty(t, newSession)

	require.NoError(t, database.DB.First(&account, account.ID).Error)
	assert.False(t, account.HasToken(oldLoginToken), "old sessions must be invalidated")
	assert.Len(t, account.Tokens(), 1)

	// Old password no longer valid, new one is
	_, err = Login("carol", "password123")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = Login("carol", "new password!")
	assert.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	mailer := &fakeMailer{}
	Mailer = mailer

	_, err := SignUp("dave", "password123", "dave@example.com", 0)
	require.NoError(t, err)

	assert.ErrorIs(t, RequestPasswordReset("unknown@example.com"), ErrIncorrectEmail)

	require.NoError(t, RequestPasswordReset("dave@example.com"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "dave@example.com", mailer.sent[0].To)

	// RESET_PASSWORD_URL is empty in tests, the token is the text suffix
	resetToken := strings.TrimPrefix(mailer.sent[0].Text, "Please click ")

	accountID, err := VerifyResetToken(resetToken)
	require.NoError(t, err)

	var account models.Account
	require.NoError(t, database.DB.Where("username = ?", "dave").First(&account).Error)
	assert.Equal(t, account.ID, accountID)

	_, err = VerifyResetToken("garbage.token.here")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ChangePasswordWithResetToken(resetToken, "reset password!")
	require.NoError(t, err)
	_, err = Login("dave", "reset password!")
	assert.NoError(t, err)
}

func TestRequestPasswordResetMailFailure(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	Mailer = &fakeMailer{err: assert.AnError}

	_, err := SignUp("erin", "password123", "erin@example.com", 0)
	require.NoError(t, err)

	assert.ErrorIs(t, RequestPasswordReset("erin@example.com"), ErrUpstreamFailure)
}

func TestDeleteAccountLeavesLedgerRows(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	_, err := SignUp("frank", "password123", "", 0)
	require.NoError(t, err)

	var account models.Account
	require.NoError(t, database.DB.Where("username = ?", "frank").First(&account).Error)

	entry := models.Payment{
		ID:       newEntryID(),
		ClientID: account.ID,
		Type:     models.EntryTypeTopUp,
		Status:   models.StatusUnconfirmed,
	}
	require.NoError(t, database.DB.Create(&entry).Error)

	require.NoError(t, DeleteAccount(account.ID))

	_, err = FindAccountByID(account.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	// Subscription and ledger rows stay behind, orphaned
	var subCount, payCount int64
	database.DB.Model(&models.Subscription{}).Where("client_id = ?", account.ID).Count(&subCount)
	database.DB.Model(&models.Payment{}).Where("client_id = ?", account.ID).Count(&payCount)
	assert.EqualValues(t, 1, subCount)
	assert.EqualValues(t, 1, payCount)
}

func TestChangeEmail(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	_, err := SignUp("grace", "password123", "old@example.com", 0)
	require.NoError(t, err)

	var account models.Account
	require.NoError(t, database.DB.Where("username = ?", "grace").First(&account).Error)

	updated, err := ChangeEmail(account.ID, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)

	_, err = ChangeEmail(99999, "x@example.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
