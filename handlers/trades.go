package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stock-journal/database"
	"stock-journal/models"
)

type tradeInput struct {
	StockCode string `form:"stock_code" binding:"required"`
	StockName string `form:"stock_name"`
	TradeType string `form:"trade_type" binding:"required,oneof=buy sell"`
	Quantity  string `form:"quantity" binding:"required"`
	Price     string `form:"price" binding:"required"`
	TradeDate string `form:"trade_date" binding:"required"`
	Thought   string `form:"thought"`
}

func (in tradeInput) trade() (*models.Trade, error) {
	qty, err := strconv.ParseInt(strings.TrimSpace(in.Quantity), 10, 64)
	if err != nil || qty <= 0 {
		return nil, fmt.Errorf("quantity must be a positive whole number")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil || !price.IsPositive() {
		return nil, fmt.Errorf("price must be a positive number")
	}
	date, err := parseDate(in.TradeDate)
	if err != nil {
		return nil, err
	}
	return &models.Trade{
		StockCode: strings.TrimSpace(in.StockCode),
		StockName: strings.TrimSpace(in.StockName),
		TradeType: models.TradeType(in.TradeType),
		Quantity:  qty,
		Price:     price,
		TradeDate: date,
		Thought:   in.Thought,
	}, nil
}

var dateLayouts = []string{"2006-01-02", "2006-01-02T15:04", "2006-01-02 15:04"}

// parseDate reads a form date in UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

func (h *Handler) ListTrades(c *gin.Context) {
	page, err := h.store.ListTrades(c.Request.Context(), user(c).ID, pageParam(c), perPage)
	if h.writeError(c, err) {
		return
	}
	h.render(c, http.StatusOK, "trades.html", gin.H{
		"Title":  "Trades",
		"Trades": page,
		"Today":  h.now().Format("2006-01-02"),
	})
}

func (h *Handler) CreateTrade(c *gin.Context) {
	var input tradeInput
	if err := c.ShouldBind(&input); err != nil {
		flash(c, "error", "Please fill in all required fields", h.secureCookie)
		c.Redirect(http.StatusFound, "/trades")
		return
	}
	trade, err := input.trade()
	if err != nil {
		flash(c, "error", err.Error(), h.secureCookie)
		c.Redirect(http.StatusFound, "/trades")
		return
	}

	uid := user(c).ID
	err = h.store.CreateTrade(c.Request.Context(), uid, trade)
	var verr *database.ValidationError
	if errors.As(err, &verr) {
		flash(c, "error", verr.Error(), h.secureCookie)
		c.Redirect(http.StatusFound, "/trades")
		return
	}
	if h.writeError(c, err) {
		return
	}

	h.reports.Invalidate(c.Request.Context(), uid)
	flash(c, "success", "Trade added", h.secureCookie)
	c.Redirect(http.StatusFound, "/trades")
}

func (h *Handler) DeleteTrade(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.notFound(c)
		return
	}
	uid := user(c).ID
	if h.writeError(c, h.store.DeleteTrade(c.Request.Context(), uid, id)) {
		return
	}

	h.reports.Invalidate(c.Request.Context(), uid)
	flash(c, "success", "Trade deleted", h.secureCookie)
	c.Redirect(http.StatusFound, "/trades")
}
