package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyReflection is a user's note on one trading day. A user has at most
// one reflection per date.
type DailyReflection struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	UserID         uint                `gorm:"not null;uniqueIndex:idx_reflection_user_date" json:"user_id"`
	ReflectionDate time.Time           `gorm:"type:date;not null;uniqueIndex:idx_reflection_user_date" json:"reflection_date"`
	Content        string              `gorm:"type:text;not null" json:"content"`
	ProfitLoss     decimal.NullDecimal `gorm:"type:numeric(20,4)" json:"profit_loss"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
