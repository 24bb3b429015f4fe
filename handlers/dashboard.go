package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	uid := user(c).ID

	trades, err := h.store.RecentTrades(ctx, uid, recentTradeCount)
	if h.writeError(c, err) {
		return
	}
	reflections, err := h.store.RecentReflections(ctx, uid, recentReflections)
	if h.writeError(c, err) {
		return
	}
	totalTrades, err := h.store.CountTrades(ctx, uid)
	if h.writeError(c, err) {
		return
	}
	totalReflections, err := h.store.CountReflections(ctx, uid)
	if h.writeError(c, err) {
		return
	}

	h.render(c, http.StatusOK, "dashboard.html", gin.H{
		"Title":             "Dashboard",
		"RecentTrades":      trades,
		"RecentReflections": reflections,
		"TotalTrades":       totalTrades,
		"TotalReflections":  totalReflections,
	})
}
