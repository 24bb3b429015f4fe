package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stock-journal/database"
	"stock-journal/models"
)

type reflectionInput struct {
	ReflectionDate string `form:"reflection_date" binding:"required"`
	Content        string `form:"content" binding:"required"`
	ProfitLoss     string `form:"profit_loss"`
}

func (h *Handler) ListReflections(c *gin.Context) {
	page, err := h.store.ListReflections(c.Request.Context(), user(c).ID, pageParam(c), perPage)
	if h.writeError(c, err) {
		return
	}
	h.render(c, http.StatusOK, "reflections.html", gin.H{
		"Title":       "Reflections",
		"Reflections": page,
		"Today":       h.now().Format("2006-01-02"),
	})
}

// SaveReflection creates the reflection for a date or overwrites the one
// already written for it.
func (h *Handler) SaveReflection(c *gin.Context) {
	var input reflectionInput
	if err := c.ShouldBind(&input); err != nil || strings.TrimSpace(input.Content) == "" {
		flash(c, "error", "Please fill in all required fields", h.secureCookie)
		c.Redirect(http.StatusFound, "/reflections")
		return
	}

	date, err := parseDate(input.ReflectionDate)
	if err != nil {
		flash(c, "error", err.Error(), h.secureCookie)
		c.Redirect(http.StatusFound, "/reflections")
		return
	}
	var pl decimal.NullDecimal
	if s := strings.TrimSpace(input.ProfitLoss); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			flash(c, "error", "Profit/loss must be a number", h.secureCookie)
			c.Redirect(http.StatusFound, "/reflections")
			return
		}
		pl = decimal.NewNullDecimal(d)
	}

	overwritten, err := h.store.SaveReflection(c.Request.Context(), user(c).ID, &models.DailyReflection{
		ReflectionDate: date,
		Content:        input.Content,
		ProfitLoss:     pl,
	})
	var verr *database.ValidationError
	if errors.As(err, &verr) {
		flash(c, "error", verr.Error(), h.secureCookie)
		c.Redirect(http.StatusFound, "/reflections")
		return
	}
	if h.writeError(c, err) {
		return
	}

	if overwritten {
		flash(c, "warning", "A reflection for this date already existed and has been updated", h.secureCookie)
	}
	flash(c, "success", "Reflection saved", h.secureCookie)
	c.Redirect(http.StatusFound, "/reflections")
}

func (h *Handler) DeleteReflection(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.notFound(c)
		return
	}
	if h.writeError(c, h.store.DeleteReflection(c.Request.Context(), user(c).ID, id)) {
		return
	}
	flash(c, "success", "Reflection deleted", h.secureCookie)
	c.Redirect(http.StatusFound, "/reflections")
}
