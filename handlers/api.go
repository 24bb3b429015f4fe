package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-journal/database"
)

// UpdateTrade applies a partial update of a trade's thought and stock
// name. An empty payload changes nothing and still succeeds.
func (h *Handler) UpdateTrade(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trade not found"})
		return
	}

	var notes database.TradeNotes
	if err := c.ShouldBindJSON(&notes); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid := user(c).ID
	err := h.store.UpdateTradeNotes(c.Request.Context(), uid, id, notes)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trade not found"})
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}

	h.reports.Invalidate(c.Request.Context(), uid)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
