package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"stock-journal/database"
	"stock-journal/middleware"
)

type registerInput struct {
	Username        string `form:"username"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

type loginInput struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Remember string `form:"remember"`
	Next     string `form:"next"`
}

func (h *Handler) Index(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "index.html", gin.H{})
}

func (h *Handler) RegisterForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

func (h *Handler) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBind(&input); err != nil {
		h.errorPage(c, http.StatusBadRequest, "Malformed form")
		return
	}
	input.Username = strings.TrimSpace(input.Username)

	redisplay := func(code int, message string) {
		flash(c, "error", message, h.secureCookie)
		h.render(c, code, "register.html", gin.H{"Title": "Register", "Username": input.Username})
	}

	if input.Username == "" || input.Password == "" {
		redisplay(http.StatusBadRequest, "Username and password are required")
		return
	}
	if input.Password != input.ConfirmPassword {
		redisplay(http.StatusBadRequest, "Passwords do not match")
		return
	}

	_, err := h.store.CreateUser(c.Request.Context(), input.Username, input.Password)
	if errors.Is(err, database.ErrDuplicateUser) {
		redisplay(http.StatusConflict, "Username already exists")
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}

	log.WithFields(log.Fields{"username": input.Username}).Info("user registered")
	flash(c, "success", "Registration successful, please log in", h.secureCookie)
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) LoginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in", "Next": c.Query("next")})
}

func (h *Handler) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBind(&input); err != nil {
		h.errorPage(c, http.StatusBadRequest, "Malformed form")
		return
	}
	if input.Next == "" {
		input.Next = c.Query("next")
	}

	u, err := h.store.FindUserByName(c.Request.Context(), input.Username)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		h.internalError(c, err)
		return
	}
	if u == nil || !u.CheckPassword(input.Password) {
		flash(c, "error", "Invalid username or password", h.secureCookie)
		h.render(c, http.StatusUnauthorized, "login.html", gin.H{
			"Title":    "Log in",
			"Username": strings.TrimSpace(input.Username),
			"Next":     input.Next,
		})
		return
	}

	token, _, err := h.sessions.Issue(c.Request.Context(), u.ID, u.Username)
	if err != nil {
		h.internalError(c, err)
		return
	}
	middleware.SetSessionCookie(c, token, int(h.sessions.TTL().Seconds()), input.Remember != "", h.secureCookie)

	c.Redirect(http.StatusFound, safeNext(input.Next))
}

func (h *Handler) Logout(c *gin.Context) {
	id := user(c)
	if err := h.sessions.Revoke(c.Request.Context(), id.Claims()); err != nil {
		h.internalError(c, err)
		return
	}
	middleware.ClearSessionCookie(c, h.secureCookie)
	flash(c, "success", "You have been logged out", h.secureCookie)
	c.Redirect(http.StatusFound, "/")
}

// safeNext only follows local paths after login.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/dashboard"
	}
	return next
}
