package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionLong  Direction = "Long"
	DirectionShort Direction = "Short"
)

var Directions = []Direction{DirectionLong, DirectionShort}

type Status string

const (
	StatusWin       Status = "Win"
	StatusLoss      Status = "Loss"
	StatusBreakEven Status = "BE"
)

// StatusForPnL classifies a realized PnL. It is applied once, at insert time.
func StatusForPnL(pnl decimal.Decimal) Status {
	switch pnl.Sign() {
	case 1:
		return StatusWin
	case -1:
		return StatusLoss
	default:
		return StatusBreakEven
	}
}

// Sessions are the market sessions a trade can be tagged with.
var Sessions = []string{"Pre-London", "London", "Pre-NYC", "NYC", "Asian"}

// Trends are the higher-timeframe contexts a trade can be tagged with.
var Trends = []string{"UP", "DOWN", "UP but 15m Down", "DOWN but 15m UP", "Ranging"}

const (
	Yes = "Yes"
	No  = "No"
)

// Trade is one logged position outcome. Rows are append-only.
type Trade struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	AccountID     uint            `gorm:"not null;index" json:"account_id"`
	Symbol        string          `json:"symbol"`
	Direction     Direction       `json:"direction"`
	EntryDate     time.Time       `json:"entry_date"`
	Quantity      decimal.Decimal `gorm:"type:numeric(20,4);default:0" json:"quantity"`
	PnL           decimal.Decimal `gorm:"column:pnl;type:numeric(20,2)" json:"pnl"`
	Status        Status          `json:"status"`
	Session       string          `json:"session"`
	RulesFollowed string          `json:"rules_followed"`
	Trend         string          `json:"trend"`
	Setup         string          `json:"setup"`
	ProperSL      string          `gorm:"column:proper_sl" json:"proper_sl"`
	IsEventDay    string          `json:"is_event_day"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Column scales of the numeric money and quantity columns.
const (
	MoneyPlaces    int32 = 2
	QuantityPlaces int32 = 4
)

// Contains reports whether v is in the list.
func Contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
