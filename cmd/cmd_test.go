package cmd

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-journal/models"
)

func TestRootCommand(t *testing.T) {
	root := NewRootCommand()
	for _, name := range [][]string{{"serve"}, {"migrate"}, {"import"}, {"user", "delete"}} {
		sub, _, err := root.Find(name)
		require.NoError(t, err, "command %v should exist", name)
		assert.Equal(t, name[len(name)-1], sub.Name())
	}
}

func TestImportFlags(t *testing.T) {
	root := NewRootCommand()
	imp, _, err := root.Find([]string{"import"})
	require.NoError(t, err)

	batch := imp.Flags().Lookup("batch")
	require.NotNil(t, batch)
	assert.Equal(t, "100", batch.DefValue)
	assert.Equal(t, "u", imp.Flags().Lookup("user").Shorthand)
}

func TestReadTrades(t *testing.T) {
	in := `date,code,name,type,quantity,price,thought
2024-03-05,600519,Kweichow Moutai,BUY,10,1650.5,"breakout, volume up"
2024-03-06, 600519,,sell,10,1700,
`
	trades, err := readTrades(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, models.Buy, trades[0].TradeType)
	assert.Equal(t, "breakout, volume up", trades[0].Thought)
	assert.True(t, trades[0].Price.Equal(decimal.RequireFromString("1650.5")))
	assert.Equal(t, 5, trades[0].TradeDate.Day())

	assert.Equal(t, "600519", trades[1].StockCode)
	assert.Equal(t, models.Sell, trades[1].TradeType)
	assert.EqualValues(t, 10, trades[1].Quantity)
}

func TestReadTradesErrors(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"bad header": "day,code,name,type,quantity,price,thought\n",
		"bad date":   "date,code,name,type,quantity,price,thought\n03/05/2024,A,,buy,1,1,\n",
		"bad qty":    "date,code,name,type,quantity,price,thought\n2024-03-05,A,,buy,x,1,\n",
		"bad price":  "date,code,name,type,quantity,price,thought\n2024-03-05,A,,buy,1,x,\n",
		"short row":  "date,code,name,type,quantity,price,thought\n2024-03-05,A,buy\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := readTrades(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}
