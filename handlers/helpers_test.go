package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stock-journal/database"
	"stock-journal/middleware"
	"stock-journal/models"
	"stock-journal/report"
	"stock-journal/session"
)

type testApp struct {
	t      *testing.T
	router *gin.Engine
	store  *database.Store
	now    time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)

	db, err := gorm.Open(sqlite.Open("file:"+filepath.Join(t.TempDir(), "journal.db")+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := database.New(db)
	require.NoError(t, store.Migrate(context.Background()))

	now := time.Date(2024, 3, 5, 16, 0, 0, 0, time.UTC)
	h := New(Deps{
		Store:    store,
		Reports:  report.NewService(store, report.NewMemoryCache()),
		Sessions: session.NewManager("test-secret", time.Hour, session.NewMemoryStore()),
		Now:      func() time.Time { return now },
	})
	router, err := h.Router()
	require.NoError(t, err)

	return &testApp{t: t, router: router, store: store, now: now}
}

func (a *testApp) do(method, target string, body io.Reader, contentType string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodGet, target, nil, "", cookies...)
}

func (a *testApp) postForm(target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", cookies...)
}

func (a *testApp) putJSON(target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodPut, target, strings.NewReader(body), "application/json", cookies...)
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

// signup registers a user directly in the store and logs in through the
// form, returning the session cookie.
func (a *testApp) signup(username string) (*models.User, *http.Cookie) {
	a.t.Helper()
	u, err := a.store.CreateUser(context.Background(), username, "password")
	require.NoError(a.t, err)

	w := a.postForm("/login", url.Values{"username": {username}, "password": {"password"}})
	require.Equal(a.t, http.StatusFound, w.Code)
	cookie := responseCookie(w, middleware.CookieName)
	require.NotNil(a.t, cookie, "login did not set a session cookie")
	return u, cookie
}
