package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-journal/middleware"
)

func TestRegister(t *testing.T) {
	app := newTestApp(t)

	w := app.postForm("/register", url.Values{
		"username": {"alice"}, "password": {"pw"}, "confirm_password": {"pw"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.NotNil(t, responseCookie(w, flashCookie))

	_, err := app.store.FindUserByName(context.Background(), "alice")
	require.NoError(t, err)

	w = app.postForm("/register", url.Values{
		"username": {"alice"}, "password": {"pw"}, "confirm_password": {"pw"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Username already exists")
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	w := app.postForm("/register", url.Values{
		"username": {"bob"}, "password": {"pw"}, "confirm_password": {"other"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Passwords do not match")

	w = app.postForm("/register", url.Values{"username": {"  "}, "password": {"pw"}, "confirm_password": {"pw"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username and password are required")

	_, err := app.store.FindUserByName(context.Background(), "bob")
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	_, err := app.store.CreateUser(context.Background(), "alice", "password")
	require.NoError(t, err)

	w := app.postForm("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
	assert.Nil(t, responseCookie(w, middleware.CookieName))

	w = app.postForm("/login", url.Values{"username": {"alice"}, "password": {"password"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	cookie := responseCookie(w, middleware.CookieName)
	require.NotNil(t, cookie)
	assert.Zero(t, cookie.MaxAge, "session cookie without remember")
	assert.True(t, cookie.HttpOnly)

	w = app.postForm("/login", url.Values{
		"username": {"alice"}, "password": {"password"}, "remember": {"1"}, "next": {"/reports?type=yearly"},
	})
	assert.Equal(t, "/reports?type=yearly", w.Header().Get("Location"))
	assert.Equal(t, 3600, responseCookie(w, middleware.CookieName).MaxAge)
}

func TestLoginIgnoresForeignNext(t *testing.T) {
	for _, next := range []string{"https://evil.example", "//evil.example", "dashboard"} {
		assert.Equal(t, "/dashboard", safeNext(next), next)
	}
	assert.Equal(t, "/trades?page=2", safeNext("/trades?page=2"))
}

func TestProtectedPagesRequireLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/dashboard")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fdashboard", w.Header().Get("Location"))

	w = app.putJSON("/api/trades/1", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIndexRedirectsLoggedInUsers(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Create an account")

	_, cookie := app.signup("alice")
	w = app.get("/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestLogoutRevokesSession(t *testing.T) {
	app := newTestApp(t)
	_, cookie := app.signup("alice")

	w := app.get("/dashboard", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")

	w = app.postForm("/logout", url.Values{}, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = app.get("/dashboard", cookie)
	assert.Equal(t, http.StatusFound, w.Code, "old token no longer valid")
}

func TestDeletedUserIsLoggedOut(t *testing.T) {
	app := newTestApp(t)
	alice, cookie := app.signup("alice")
	require.NoError(t, app.store.DeleteUser(context.Background(), alice.ID))

	w := app.postForm("/trades", tradeForm("600519", "buy", "10", "5", "2024-03-05"), cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Ftrades", w.Header().Get("Location"))

	cleared := responseCookie(w, middleware.CookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	w = app.putJSON("/api/trades/1", `{"thought":"x"}`, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFlashSurvivesRedirect(t *testing.T) {
	app := newTestApp(t)

	w := app.postForm("/register", url.Values{
		"username": {"alice"}, "password": {"pw"}, "confirm_password": {"pw"},
	})
	flashed := responseCookie(w, flashCookie)
	require.NotNil(t, flashed)

	w = app.get("/login", flashed)
	assert.Contains(t, w.Body.String(), "Registration successful")
	cleared := responseCookie(w, flashCookie)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestUnknownRouteIs404(t *testing.T) {
	app := newTestApp(t)
	w := app.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")
}
