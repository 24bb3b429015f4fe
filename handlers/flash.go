package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie = "flash"
	pendingKey  = "flashes"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// pending returns the messages queued for display: those carried over
// from the previous response plus any added during this request.
func pending(c *gin.Context) []Flash {
	if v, ok := c.Get(pendingKey); ok {
		return v.([]Flash)
	}

	var carried []Flash
	if raw, err := c.Cookie(flashCookie); err == nil && raw != "" {
		if data, err := base64.RawURLEncoding.DecodeString(raw); err == nil {
			_ = json.Unmarshal(data, &carried)
		}
	}
	c.Set(pendingKey, carried)
	return carried
}

// flash queues a message. It is shown by the next rendered page, whether
// that is this response or the one after a redirect.
func flash(c *gin.Context, category, message string, secure bool) {
	msgs := append(pending(c), Flash{Category: category, Message: message})
	c.Set(pendingKey, msgs)

	data, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(data), 0, "/", "", secure, true)
}

// takeFlashes returns the queued messages and clears them.
func takeFlashes(c *gin.Context, secure bool) []Flash {
	msgs := pending(c)
	c.Set(pendingKey, []Flash(nil))
	if len(msgs) > 0 {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(flashCookie, "", -1, "/", "", secure, true)
	}
	return msgs
}
