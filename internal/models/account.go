package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Account is a VPN client account. Octets is a monotonically assigned
// per-account ordinal (max existing + 1, unique) used as a denormalized
// identifier in subscriptions. The keypair is issued once at sign-up; the
// private half is only ever returned to the owning account.
type Account struct {
	ID          uint `gorm:"primarykey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Username    string         `gorm:"uniqueIndex;not null"`
	Password    string         `gorm:"not null"`
	Email       string         `gorm:"index"`
	Ref         uint           `gorm:"index"` // referring account id, set at creation, 0 = none
	Octets      int            `gorm:"uniqueIndex;not null"`
	PublicKey   string         `gorm:"not null"`
	PrivateKey  string         `gorm:"not null"`
	LoginTokens datatypes.JSON `gorm:"not null"`
}

// Tokens decodes the login-token set. A credential presentation is valid if
// its token is a member of this set; multiple concurrent sessions each hold
// their own token.
func (a *Account) Tokens() []string {
	var tokens []string
	if len(a.LoginTokens) > 0 {
		json.Unmarshal(a.LoginTokens, &tokens)
	}
	return tokens
}

// SetTokens replaces the login-token set.
func (a *Account) SetTokens(tokens []string) {
	data, _ := json.Marshal(tokens)
	a.LoginTokens = datatypes.JSON(data)
}

// HasToken reports membership of token in the login-token set.
func (a *Account) HasToken(token string) bool {
	for _, t := range a.Tokens() {
		if t == token {
			return true
		}
	}
	return false
}
