package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"stock-journal/database"
	"stock-journal/models"
	"stock-journal/session"
)

// CookieName is the cookie carrying the session token.
const CookieName = "session"

const identityKey = "identity"

// Identity is the authenticated user of the current request.
type Identity struct {
	ID        uint
	Username  string
	SessionID string
	claims    *session.Claims
}

// Claims returns the verified token claims behind the identity.
func (i *Identity) Claims() *session.Claims {
	return i.claims
}

// CurrentUser returns the request's authenticated user, if any.
func CurrentUser(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok
}

// UserFinder looks up the account behind a session.
type UserFinder interface {
	FindUser(ctx context.Context, id uint) (*models.User, error)
}

// Authenticate resolves the session cookie into an Identity. It never
// aborts; an invalid or revoked cookie is cleared and the request goes on
// anonymously. When users is set, a session whose account no longer exists
// is revoked the same way.
func Authenticate(sessions *session.Manager, users UserFinder, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		claims, err := sessions.Verify(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrInvalidToken) && !errors.Is(err, session.ErrRevoked) {
				log.WithError(err).Warn("session lookup failed")
			}
			ClearSessionCookie(c, secureCookie)
			c.Next()
			return
		}

		if users != nil {
			if _, err := users.FindUser(c.Request.Context(), claims.UserID); err != nil {
				fields := log.Fields{"user_id": claims.UserID}
				if !errors.Is(err, database.ErrNotFound) {
					log.WithFields(fields).WithError(err).Error("session user lookup failed")
					c.Next()
					return
				}
				if err := sessions.Revoke(c.Request.Context(), claims); err != nil {
					log.WithFields(fields).WithError(err).Warn("failed to revoke session of deleted user")
				}
				ClearSessionCookie(c, secureCookie)
				c.Next()
				return
			}
		}

		c.Set(identityKey, &Identity{
			ID:        claims.UserID,
			Username:  claims.Username,
			SessionID: claims.ID,
			claims:    claims,
		})
		c.Next()
	}
}

// RequireUser sends anonymous page requests to the login form.
func RequireUser(onDenied func(c *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}
		if onDenied != nil {
			onDenied(c)
		}
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// RequireAPIUser rejects anonymous API requests with 401.
func RequireAPIUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// SetSessionCookie stores token in the session cookie. A persistent cookie
// lives for maxAge seconds; otherwise it ends with the browser session.
func SetSessionCookie(c *gin.Context, token string, maxAge int, persistent, secure bool) {
	if !persistent {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}
