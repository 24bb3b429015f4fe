package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stock-journal/report"
)

// reportQuery reads type, year, month and day, defaulting each to today.
// An unknown type falls back to daily.
func (h *Handler) reportQuery(c *gin.Context) (report.Query, error) {
	kind, _ := report.ParseKind(c.Query("type"))
	q := report.QueryAt(kind, h.now())

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"year", &q.Year},
		{"month", &q.Month},
		{"day", &q.Day},
	} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("%s must be a number", p.name)
		}
		*p.dst = n
	}
	return q, q.Validate()
}

func (h *Handler) Reports(c *gin.Context) {
	q, err := h.reportQuery(c)
	if err != nil {
		h.errorPage(c, http.StatusBadRequest, "Invalid report date: "+err.Error())
		return
	}
	r, err := h.reports.Report(c.Request.Context(), user(c).ID, q)
	if h.writeError(c, err) {
		return
	}
	h.render(c, http.StatusOK, "reports.html", gin.H{
		"Title":  "Reports",
		"Kind":   string(q.Kind),
		"Query":  q,
		"Report": r,
	})
}

// ReportJSON serves the same report as Reports for API clients.
func (h *Handler) ReportJSON(c *gin.Context) {
	q, err := h.reportQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.reports.Report(c.Request.Context(), user(c).ID, q)
	if h.writeError(c, err) {
		return
	}
	c.JSON(http.StatusOK, r)
}
