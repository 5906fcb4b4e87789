package models

import "time"

type EntryType string

const (
	EntryTypeTopUp          EntryType = "TOP_UP"
	EntryTypeWithdrawalBTC  EntryType = "AFFILATE_WITHDRAWAL_BTC"
	EntryTypeWithdrawalDays EntryType = "AFFILATE_WITHDRAWAL_DAYS"
	EntryTypeRefund         EntryType = "REFUND"
)

type EntryStatus string

const (
	StatusUnconfirmed EntryStatus = "UNCONFIRMED"
	StatusConfirmed   EntryStatus = "CONFIRMED"
)

type PaymentType string

const (
	PaymentTypeCrypto PaymentType = "CRYPTO"
)

// Payment is a ledger entry: a top-up invoice, an affiliate withdrawal or a
// refund. Entries are immutable once created except for Status, which moves
// UNCONFIRMED -> CONFIRMED exactly once. Ref carries the referrer
// attribution: for top-ups it is copied from the paying account at creation,
// for withdrawals it is the account being debited, so the balance aggregate
// sees both sides.
type Payment struct {
	ID                string `gorm:"primarykey;size:32"`
	ClientID          uint   `gorm:"index;not null"`
	Ref               uint   `gorm:"index"`
	PublicKey         string
	Months            int
	Price             float64     `gorm:"type:decimal(12,2)"`
	BTCPrice          float64     `gorm:"type:decimal(20,8)"`
	Currency          string      `gorm:"size:8"`
	PaymentType       PaymentType `gorm:"size:16"`
	Type              EntryType   `gorm:"size:32;index;not null"`
	Status            EntryStatus `gorm:"size:16;index;not null"`
	InvoiceID         string      `gorm:"index"`
	InvoiceURL        string
	RewardSatoshis    int64 // affiliate reward accrued by this top-up, smallest unit
	WithdrawnSatoshis int64 // amount debited by this withdrawal entry
	CreatedAt         time.Time
	ExpirationTime    time.Time
}
