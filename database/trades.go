package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"stock-journal/models"
)

// TradeNotes carries the fields of a trade that may change after creation.
// Nil fields are left untouched.
type TradeNotes struct {
	Thought   *string `json:"thought"`
	StockName *string `json:"stock_name"`
}

func (n TradeNotes) updates() map[string]interface{} {
	data := make(map[string]interface{})
	if n.Thought != nil {
		data["thought"] = *n.Thought
	}
	if n.StockName != nil {
		data["stock_name"] = *n.StockName
	}
	return data
}

// ValidateTrade checks the fields a trade needs before it can be stored.
func ValidateTrade(t *models.Trade) error {
	t.StockCode = strings.TrimSpace(t.StockCode)
	t.StockName = strings.TrimSpace(t.StockName)
	switch {
	case t.StockCode == "":
		return &ValidationError{Field: "stock_code", Reason: "is required"}
	case !t.TradeType.Valid():
		return &ValidationError{Field: "trade_type", Reason: "must be buy or sell"}
	case t.Quantity <= 0:
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	case !t.Price.IsPositive():
		return &ValidationError{Field: "price", Reason: "must be positive"}
	case t.TradeDate.IsZero():
		return &ValidationError{Field: "trade_date", Reason: "is required"}
	}
	return nil
}

// CreateTrade stores a new trade for userID, computing its amount.
func (s *Store) CreateTrade(ctx context.Context, userID uint, trade *models.Trade) error {
	trade.UserID = userID
	trade.TradeDate = trade.TradeDate.UTC()
	if err := ValidateTrade(trade); err != nil {
		return err
	}
	trade.CalculateAmount()
	return s.db.WithContext(ctx).Create(trade).Error
}

// ImportTrades validates and stores many trades for userID in batches.
func (s *Store) ImportTrades(ctx context.Context, userID uint, trades []models.Trade, batchSize int) error {
	for i := range trades {
		trades[i].UserID = userID
		trades[i].TradeDate = trades[i].TradeDate.UTC()
		if err := ValidateTrade(&trades[i]); err != nil {
			return err
		}
		trades[i].CalculateAmount()
	}
	return CreateInBatches(ctx, s.db, trades, batchSize)
}

func (s *Store) tradesOf(ctx context.Context, userID uint) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Trade{}).Where("user_id = ?", userID)
}

// ListTrades returns one page of the user's trades, newest first.
func (s *Store) ListTrades(ctx context.Context, userID uint, page, perPage int) (Page[models.Trade], error) {
	page, perPage = normalizePage(page, perPage)
	out := Page[models.Trade]{Page: page, PerPage: perPage}
	if err := s.tradesOf(ctx, userID).Count(&out.Total).Error; err != nil {
		return out, err
	}
	err := s.tradesOf(ctx, userID).
		Order("trade_date DESC, id DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&out.Items).Error
	return out, err
}

func (s *Store) RecentTrades(ctx context.Context, userID uint, limit int) ([]models.Trade, error) {
	var trades []models.Trade
	err := s.tradesOf(ctx, userID).Order("trade_date DESC, id DESC").Limit(limit).Find(&trades).Error
	return trades, err
}

func (s *Store) CountTrades(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.tradesOf(ctx, userID).Count(&n).Error
	return n, err
}

// TradesBetween returns the user's trades dated in [from, to), newest first.
func (s *Store) TradesBetween(ctx context.Context, userID uint, from, to time.Time) ([]models.Trade, error) {
	var trades []models.Trade
	err := s.tradesOf(ctx, userID).
		Where("trade_date >= ? AND trade_date < ?", from.UTC(), to.UTC()).
		Order("trade_date DESC, id DESC").
		Find(&trades).Error
	return trades, err
}

// DeleteTrade removes a trade owned by userID. A trade owned by someone
// else is reported as ErrNotFound and left alone.
func (s *Store) DeleteTrade(ctx context.Context, userID, tradeID uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", tradeID, userID).Delete(&models.Trade{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateTradeNotes applies the provided note fields to a trade owned by
// userID. Supplying no fields is a successful no-op.
func (s *Store) UpdateTradeNotes(ctx context.Context, userID, tradeID uint, notes TradeNotes) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Trade
		err := tx.Where("id = ? AND user_id = ?", tradeID, userID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		data := notes.updates()
		if len(data) == 0 {
			return nil
		}
		return tx.Model(&existing).Updates(data).Error
	})
}
