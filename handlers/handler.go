package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"stock-journal/database"
	"stock-journal/middleware"
	"stock-journal/report"
	"stock-journal/session"
)

const (
	perPage           = 20
	recentTradeCount  = 10
	recentReflections = 5
)

// Handler serves the journal's pages and API.
type Handler struct {
	store        *database.Store
	reports      *report.Service
	sessions     *session.Manager
	secureCookie bool
	now          func() time.Time
}

// Deps are the collaborators a Handler needs.
type Deps struct {
	Store        *database.Store
	Reports      *report.Service
	Sessions     *session.Manager
	SecureCookie bool
	// Now is the clock used for form defaults and report dates.
	Now func() time.Time
}

func New(d Deps) *Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Reports == nil {
		d.Reports = report.NewService(d.Store, nil)
	}
	return &Handler{
		store:        d.Store,
		reports:      d.Reports,
		sessions:     d.Sessions,
		secureCookie: d.SecureCookie,
		now:          d.Now,
	}
}

// user returns the authenticated identity. Routes that call it sit behind
// RequireUser or RequireAPIUser.
func user(c *gin.Context) *middleware.Identity {
	id, ok := middleware.CurrentUser(c)
	if !ok {
		panic("handlers: route is missing authentication middleware")
	}
	return id
}

func (h *Handler) render(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if id, ok := middleware.CurrentUser(c); ok {
		data["User"] = id
	}
	data["Flashes"] = takeFlashes(c, h.secureCookie)
	c.HTML(code, name, data)
}

func (h *Handler) errorPage(c *gin.Context, code int, message string) {
	if isAPI(c) {
		c.AbortWithStatusJSON(code, gin.H{"error": message})
		return
	}
	h.render(c, code, "error.html", gin.H{
		"Title":  http.StatusText(code),
		"Status": code,
		"Error":  message,
	})
	c.Abort()
}

func (h *Handler) notFound(c *gin.Context) {
	h.errorPage(c, http.StatusNotFound, "Page not found")
}

// internalError logs err and answers with a generic 500. Writes run in
// transactions, so nothing partial has been committed at this point.
func (h *Handler) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	log.WithFields(log.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).WithError(err).Error("request failed")
	h.errorPage(c, http.StatusInternalServerError, "Internal server error")
}

// NotFound is the fallback for unknown routes.
func (h *Handler) NotFound(c *gin.Context) {
	h.notFound(c)
}

// Recovery renders the 500 page for panics.
func (h *Handler) Recovery(c *gin.Context, recovered any) {
	log.WithFields(log.Fields{"path": c.Request.URL.Path, "panic": recovered}).Error("panic while handling request")
	h.errorPage(c, http.StatusInternalServerError, "Internal server error")
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// writeError maps store errors onto responses. It returns false when err
// was nil.
func (h *Handler) writeError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, database.ErrNotFound):
		h.notFound(c)
	default:
		h.internalError(c, err)
	}
	return true
}
