package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeCalculateAmount(t *testing.T) {
	trade := Trade{Quantity: 3, Price: decimal.RequireFromString("8.125")}
	trade.CalculateAmount()
	assert.True(t, trade.Amount.Equal(decimal.RequireFromString("24.375")), "got %s", trade.Amount)
}

func TestTradeTypeValid(t *testing.T) {
	assert.True(t, Buy.Valid())
	assert.True(t, Sell.Valid())
	assert.False(t, TradeType("hold").Valid())
	assert.False(t, TradeType("").Valid())
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	got := Day(time.Date(2024, 3, 5, 23, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)
}

func TestUserPassword(t *testing.T) {
	var u User
	require.NoError(t, u.SetPassword("s3cret"))
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.True(t, u.CheckPassword("s3cret"))
	assert.False(t, u.CheckPassword("wrong"))
}
