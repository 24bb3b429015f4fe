package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeType is the direction of a trade.
type TradeType string

const (
	Buy  TradeType = "buy"
	Sell TradeType = "sell"
)

// Valid reports whether t is one of the known trade types.
func (t TradeType) Valid() bool {
	return t == Buy || t == Sell
}

// Trade is a single buy or sell of one stock, owned by a user.
//
// Amount is derived from Quantity and Price when the trade is created and
// is not recomputed afterwards. Any edit path touching Quantity or Price
// must call CalculateAmount again.
type Trade struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	StockCode string          `gorm:"size:20;not null" json:"stock_code"`
	StockName string          `gorm:"size:100" json:"stock_name"`
	TradeType TradeType       `gorm:"size:10;not null" json:"trade_type"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"price"`
	Amount    decimal.Decimal `gorm:"type:numeric(24,4)" json:"amount"`
	TradeDate time.Time       `gorm:"not null;index" json:"trade_date"`
	Thought   string          `gorm:"type:text" json:"thought"`
	CreatedAt time.Time       `json:"created_at"`
}

// CalculateAmount sets Amount to Quantity × Price.
func (t *Trade) CalculateAmount() {
	t.Amount = decimal.NewFromInt(t.Quantity).Mul(t.Price)
}
