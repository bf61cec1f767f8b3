package journal

import (
	"strings"
	"time"

	"trading-journal/internal/models"

	"github.com/shopspring/decimal"
)

const maxLabelLength = 64

// fitsScale reports whether d is stored without rounding in a column with the given scale.
func fitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// AddAccountCommand is the typed payload of the add-account form.
type AddAccountCommand struct {
	Owner          string
	Name           string
	Type           models.AccountType
	InitialBalance decimal.Decimal
	TargetPayout   decimal.Decimal
	MaxDrawdown    decimal.Decimal
}

func (c AddAccountCommand) Validate() error {
	var v validator
	v.check(strings.TrimSpace(c.Owner) != "", "owner", "is required")
	v.check(strings.TrimSpace(c.Name) != "", "name", "is required")
	v.check(len(c.Name) <= maxLabelLength, "name", "is too long")
	v.check(c.Type.Valid(), "account_type", "must be one of 3-Step, 2-Step, Instant")
	v.check(!c.InitialBalance.IsNegative(), "initial_balance", "must not be negative")
	v.check(!c.TargetPayout.IsNegative(), "target_payout", "must not be negative")
	v.check(!c.MaxDrawdown.IsNegative(), "max_drawdown_limit", "must not be negative")
	v.check(fitsScale(c.InitialBalance, models.MoneyPlaces), "initial_balance", "must have at most 2 decimal places")
	v.check(fitsScale(c.TargetPayout, models.MoneyPlaces), "target_payout", "must have at most 2 decimal places")
	v.check(fitsScale(c.MaxDrawdown, models.MoneyPlaces), "max_drawdown_limit", "must have at most 2 decimal places")
	return v.err()
}

// AddTradeCommand is the typed payload of the trade-entry form.
type AddTradeCommand struct {
	Owner         string
	AccountID     uint
	Symbol        string
	Direction     models.Direction
	EntryDate     time.Time
	Quantity      decimal.Decimal
	PnL           decimal.Decimal
	Session       string
	RulesFollowed string
	Trend         string
	Setup         string
	ProperSL      string
	IsEventDay    string
	Notes         string
}

func (c AddTradeCommand) Validate() error {
	yesNo := []string{models.Yes, models.No}

	var v validator
	v.check(strings.TrimSpace(c.Owner) != "", "owner", "is required")
	v.check(c.AccountID != 0, "account_id", "is required")
	v.check(strings.TrimSpace(c.Symbol) != "", "symbol", "is required")
	v.check(len(c.Symbol) <= maxLabelLength, "symbol", "is too long")
	v.check(c.Direction == models.DirectionLong || c.Direction == models.DirectionShort, "direction", "must be Long or Short")
	v.check(!c.EntryDate.IsZero(), "entry_date", "is required")
	v.check(c.Quantity.IsPositive(), "quantity", "must be greater than zero")
	v.check(fitsScale(c.Quantity, models.QuantityPlaces), "quantity", "must have at most 4 decimal places")
	v.check(fitsScale(c.PnL, models.MoneyPlaces), "pnl", "must have at most 2 decimal places")
	v.check(models.Contains(models.Sessions, c.Session), "session", "is not a known session")
	v.check(models.Contains(models.Trends, c.Trend), "trend", "is not a known trend context")
	v.check(strings.TrimSpace(c.Setup) != "", "setup", "is required")
	v.check(len(c.Setup) <= maxLabelLength, "setup", "is too long")
	v.check(models.Contains(yesNo, c.RulesFollowed), "rules_followed", "must be Yes or No")
	v.check(models.Contains(yesNo, c.ProperSL), "proper_sl", "must be Yes or No")
	v.check(models.Contains(yesNo, c.IsEventDay), "is_event_day", "must be Yes or No")
	return v.err()
}

// DeleteAccountCommand removes an account and every trade logged against it.
type DeleteAccountCommand struct {
	Owner     string
	AccountID uint
}

func (c DeleteAccountCommand) Validate() error {
	var v validator
	v.check(strings.TrimSpace(c.Owner) != "", "owner", "is required")
	v.check(c.AccountID != 0, "account_id", "is required")
	return v.err()
}

// View selects which trades feed the dashboard: one account, or every account of the owner.
type View struct {
	AccountID uint // zero means all accounts
}

// AllAccounts is the union view over every account the owner holds.
var AllAccounts = View{}

func (v View) IsAll() bool { return v.AccountID == 0 }
