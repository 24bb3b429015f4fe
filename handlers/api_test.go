package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-journal/models"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func createTrade(t *testing.T, app *testApp, userID uint) models.Trade {
	t.Helper()
	trade := &models.Trade{
		StockCode: "600519",
		StockName: "Moutai",
		TradeType: models.Buy,
		Quantity:  1,
		Price:     decimal.NewFromInt(2),
		Thought:   "original",
		TradeDate: app.now,
	}
	require.NoError(t, app.store.CreateTrade(context.Background(), userID, trade))
	return *trade
}

func loadTrade(t *testing.T, app *testApp, userID uint) models.Trade {
	t.Helper()
	trades, err := app.store.RecentTrades(context.Background(), userID, 1)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	return trades[0]
}

func TestUpdateTradeEmptyPayload(t *testing.T) {
	app := newTestApp(t)
	u, cookie := app.signup("alice")
	trade := createTrade(t, app, u.ID)

	for _, body := range []string{"", "{}", `{"unknown": 1}`} {
		w := app.putJSON("/api/trades/"+itoa(trade.ID), body, cookie)
		assert.Equal(t, http.StatusOK, w.Code, "body %q", body)
		assert.JSONEq(t, `{"success": true}`, w.Body.String())
	}

	got := loadTrade(t, app, u.ID)
	assert.Equal(t, "original", got.Thought)
	assert.Equal(t, "Moutai", got.StockName)
}

func TestUpdateTradePartial(t *testing.T) {
	app := newTestApp(t)
	u, cookie := app.signup("alice")
	trade := createTrade(t, app, u.ID)

	w := app.putJSON("/api/trades/"+itoa(trade.ID), `{"thought": "sold too early"}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	got := loadTrade(t, app, u.ID)
	assert.Equal(t, "sold too early", got.Thought)
	assert.Equal(t, "Moutai", got.StockName)

	w = app.putJSON("/api/trades/"+itoa(trade.ID), `{"stock_name": "Kweichow Moutai", "quantity": 999}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	got = loadTrade(t, app, u.ID)
	assert.Equal(t, "Kweichow Moutai", got.StockName)
	assert.EqualValues(t, 1, got.Quantity, "quantity is not editable")
}

func TestUpdateTradeErrors(t *testing.T) {
	app := newTestApp(t)
	alice, aliceCookie := app.signup("alice")
	_, bobCookie := app.signup("bob")
	trade := createTrade(t, app, alice.ID)

	w := app.putJSON("/api/trades/"+itoa(trade.ID), `{"thought": "mine"}`, bobCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Trade not found", body["error"])
	assert.Equal(t, "original", loadTrade(t, app, alice.ID).Thought)

	w = app.putJSON("/api/trades/"+itoa(trade.ID), `{"thought":`, aliceCookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.putJSON("/api/trades/9999", `{}`, aliceCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
