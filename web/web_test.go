package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)
	for _, name := range []string{
		"index.html", "register.html", "login.html", "dashboard.html",
		"trades.html", "reflections.html", "reports.html", "error.html",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestErrorPageRenders(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "error.html", map[string]any{
		"Title":  "Not found",
		"Status": 404,
		"Error":  "Page not found",
	}))
	assert.Contains(t, buf.String(), "Page not found")
	assert.Contains(t, buf.String(), "Log in")
}

func TestFormatting(t *testing.T) {
	money := Funcs["money"].(func(decimal.Decimal) string)
	assert.Equal(t, "-26.00", money(decimal.NewFromInt(-26)))

	optmoney := Funcs["optmoney"].(func(decimal.NullDecimal) string)
	assert.Equal(t, "-", optmoney(decimal.NullDecimal{}))
	assert.Equal(t, "12.50", optmoney(decimal.NewNullDecimal(decimal.RequireFromString("12.5"))))

	date := Funcs["date"].(func(time.Time) string)
	assert.Equal(t, "2024-03-05", date(time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)))
}
