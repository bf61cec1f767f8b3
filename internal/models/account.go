package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the evaluation program an account belongs to.
type AccountType string

const (
	AccountThreeStep AccountType = "3-Step"
	AccountTwoStep   AccountType = "2-Step"
	AccountInstant   AccountType = "Instant"
)

// AccountTypes lists the selectable account types in form order.
var AccountTypes = []AccountType{AccountThreeStep, AccountTwoStep, AccountInstant}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	for _, known := range AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Account is a tracked trading account owned by a single user.
// Trades are removed together with their account.
type Account struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Username         string          `gorm:"index" json:"username"`
	Name             string          `gorm:"not null" json:"name"`
	AccountType      AccountType     `json:"account_type"`
	InitialBalance   decimal.Decimal `gorm:"type:numeric(20,2)" json:"initial_balance"`
	TargetPayout     decimal.Decimal `gorm:"type:numeric(20,2)" json:"target_payout"`
	MaxDrawdownLimit decimal.Decimal `gorm:"type:numeric(20,2)" json:"max_drawdown_limit"`
	CreatedAt        time.Time       `json:"created_at"`

	Trades []Trade `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
