package models

import "time"

// Subscription tracks a client's expiry. One row per account, upserted.
// ExpireAt only moves forward via extension; PublicKey and Octets are
// denormalized copies of the account fields.
type Subscription struct {
	ID        uint `gorm:"primarykey"`
	ClientID  uint `gorm:"uniqueIndex;not null"`
	PublicKey string
	Octets    int
	ExpireAt  time.Time `gorm:"not null"`
	UpdatedAt time.Time
}
