package journal

import (
	"context"
	"errors"
	"fmt"

	"trading-journal/internal/models"
	"trading-journal/internal/trace"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repository owns all data access for accounts and trades.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRepository creates a repository on top of an open, migrated database.
func NewRepository(db *gorm.DB, logger *zap.Logger) *Repository {
	return &Repository{db: db, logger: logger.Named("journal")}
}

func endSpan(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// AddAccount validates and persists a new account for cmd.Owner.
func (r *Repository) AddAccount(ctx context.Context, cmd AddAccountCommand) (acc *models.Account, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.AddAccount")
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	acc = &models.Account{
		Username:         cmd.Owner,
		Name:             cmd.Name,
		AccountType:      cmd.Type,
		InitialBalance:   cmd.InitialBalance,
		TargetPayout:     cmd.TargetPayout,
		MaxDrawdownLimit: cmd.MaxDrawdown,
	}
	if err = r.db.WithContext(ctx).Create(acc).Error; err != nil {
		r.logger.Error("Failed to create account", zap.String("owner", cmd.Owner), zap.Error(err))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	span.SetAttributes(attribute.Int64("account.id", int64(acc.ID)))
	r.logger.Info("Account created",
		zap.String("owner", cmd.Owner),
		zap.Uint("account_id", acc.ID),
		zap.String("name", acc.Name))
	return acc, nil
}

// ListAccounts returns the owner's accounts in insertion order.
func (r *Repository) ListAccounts(ctx context.Context, owner string) (accounts []models.Account, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.ListAccounts")
	defer func() { endSpan(span, err) }()

	accounts = []models.Account{}
	if err = r.db.WithContext(ctx).Where("username = ?", owner).Order("id asc").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// GetAccount returns one of the owner's accounts, or ErrAccountNotFound.
func (r *Repository) GetAccount(ctx context.Context, owner string, id uint) (*models.Account, error) {
	return getOwnedAccount(r.db.WithContext(ctx), owner, id)
}

func getOwnedAccount(tx *gorm.DB, owner string, id uint) (*models.Account, error) {
	var acc models.Account
	err := tx.Where("id = ? AND username = ?", id, owner).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %d: %w", id, err)
	}
	return &acc, nil
}

// DeleteAccount removes the account and all of its trades in one transaction.
func (r *Repository) DeleteAccount(ctx context.Context, cmd DeleteAccountCommand) (err error) {
	ctx, span := trace.StartSpan(ctx, "journal.DeleteAccount")
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return err
	}

	var removed int64
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getOwnedAccount(tx, cmd.Owner, cmd.AccountID); err != nil {
			return err
		}
		res := tx.Where("account_id = ?", cmd.AccountID).Delete(&models.Trade{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete trades of account %d: %w", cmd.AccountID, res.Error)
		}
		removed = res.RowsAffected
		if err := tx.Delete(&models.Account{}, cmd.AccountID).Error; err != nil {
			return fmt.Errorf("failed to delete account %d: %w", cmd.AccountID, err)
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("Account deletion rolled back",
			zap.String("owner", cmd.Owner),
			zap.Uint("account_id", cmd.AccountID),
			zap.Error(err))
		return err
	}

	r.logger.Info("Account deleted",
		zap.String("owner", cmd.Owner),
		zap.Uint("account_id", cmd.AccountID),
		zap.Int64("trades_removed", removed))
	return nil
}

// AddTrade validates cmd, checks the account belongs to the owner and appends the trade.
// Status is derived from the sign of PnL here and never recomputed.
func (r *Repository) AddTrade(ctx context.Context, cmd AddTradeCommand) (trade *models.Trade, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.AddTrade")
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	trade = &models.Trade{
		AccountID:     cmd.AccountID,
		Symbol:        cmd.Symbol,
		Direction:     cmd.Direction,
		EntryDate:     cmd.EntryDate,
		Quantity:      cmd.Quantity,
		PnL:           cmd.PnL,
		Status:        models.StatusForPnL(cmd.PnL),
		Session:       cmd.Session,
		RulesFollowed: cmd.RulesFollowed,
		Trend:         cmd.Trend,
		Setup:         cmd.Setup,
		ProperSL:      cmd.ProperSL,
		IsEventDay:    cmd.IsEventDay,
		Notes:         cmd.Notes,
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getOwnedAccount(tx, cmd.Owner, cmd.AccountID); err != nil {
			return err
		}
		if err := tx.Create(trade).Error; err != nil {
			return fmt.Errorf("failed to create trade: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("trade.id", int64(trade.ID)), attribute.String("trade.status", string(trade.Status)))
	r.logger.Info("Trade logged",
		zap.Uint("trade_id", trade.ID),
		zap.Uint("account_id", trade.AccountID),
		zap.String("symbol", trade.Symbol),
		zap.String("pnl", trade.PnL.String()),
		zap.String("status", string(trade.Status)))
	return trade, nil
}

// ListTrades returns the trades of the selected view in ascending id order.
// The all-accounts view resolves the owner's account ids and filters in the query.
func (r *Repository) ListTrades(ctx context.Context, owner string, view View) (trades []models.Trade, err error) {
	ctx, span := trace.StartSpan(ctx, "journal.ListTrades")
	defer func() { endSpan(span, err) }()

	if !view.IsAll() {
		if _, err = r.GetAccount(ctx, owner, view.AccountID); err != nil {
			return nil, err
		}
		return r.ListTradesByAccounts(ctx, []uint{view.AccountID})
	}

	var ids []uint
	if err = r.db.WithContext(ctx).Model(&models.Account{}).
		Where("username = ?", owner).
		Order("id asc").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve accounts of %s: %w", owner, err)
	}
	return r.ListTradesByAccounts(ctx, ids)
}

// ListTradesByAccounts returns every trade logged against the given accounts.
func (r *Repository) ListTradesByAccounts(ctx context.Context, accountIDs []uint) ([]models.Trade, error) {
	trades := []models.Trade{}
	if len(accountIDs) == 0 {
		return trades, nil
	}
	if err := r.db.WithContext(ctx).
		Where("account_id IN ?", accountIDs).
		Order("id asc").
		Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}
