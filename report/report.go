// Package report aggregates a user's trades into daily, monthly and yearly
// summaries.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stock-journal/models"
)

// Kind is the time granularity of a report.
type Kind string

const (
	Daily   Kind = "daily"
	Monthly Kind = "monthly"
	Yearly  Kind = "yearly"
)

// ParseKind maps a query value to a Kind. Unknown values fall back to
// Daily and ok is false.
func ParseKind(s string) (k Kind, ok bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Daily:
		return Daily, true
	case Monthly:
		return Monthly, true
	case Yearly:
		return Yearly, true
	}
	return Daily, s == ""
}

// Query selects the scope of a report. Month and Day are only consulted by
// the narrower kinds.
type Query struct {
	Kind  Kind `json:"type"`
	Year  int  `json:"year"`
	Month int  `json:"month"`
	Day   int  `json:"day"`
}

// QueryAt builds a query for kind anchored on now's calendar date.
func QueryAt(kind Kind, now time.Time) Query {
	return Query{Kind: kind, Year: now.Year(), Month: int(now.Month()), Day: now.Day()}
}

// Validate rejects dates that do not exist in the calendar.
func (q Query) Validate() error {
	if q.Year < 1 || q.Year > 9999 {
		return fmt.Errorf("year %d out of range", q.Year)
	}
	if q.Kind == Yearly {
		return nil
	}
	if q.Month < 1 || q.Month > 12 {
		return fmt.Errorf("month %d out of range", q.Month)
	}
	if q.Kind == Monthly {
		return nil
	}
	t := time.Date(q.Year, time.Month(q.Month), q.Day, 0, 0, 0, 0, time.UTC)
	if q.Day < 1 || t.Day() != q.Day {
		return fmt.Errorf("day %d out of range for %04d-%02d", q.Day, q.Year, q.Month)
	}
	return nil
}

// Range returns the half-open interval [from, to) covered by q.
func (q Query) Range() (from, to time.Time) {
	switch q.Kind {
	case Yearly:
		from = time.Date(q.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0)
	case Monthly:
		from = time.Date(q.Year, time.Month(q.Month), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0)
	default:
		from = time.Date(q.Year, time.Month(q.Month), q.Day, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 0, 1)
	}
}

// Key identifies q in caches.
func (q Query) Key() string {
	switch q.Kind {
	case Yearly:
		return fmt.Sprintf("yearly:%04d", q.Year)
	case Monthly:
		return fmt.Sprintf("monthly:%04d-%02d", q.Year, q.Month)
	default:
		return fmt.Sprintf("daily:%04d-%02d-%02d", q.Year, q.Month, q.Day)
	}
}

// Totals accumulates buy and sell activity.
type Totals struct {
	BuyCount   int             `json:"buy_count"`
	SellCount  int             `json:"sell_count"`
	BuyAmount  decimal.Decimal `json:"buy_amount"`
	SellAmount decimal.Decimal `json:"sell_amount"`
	NetAmount  decimal.Decimal `json:"net_amount"`
}

// Add counts t. Trades of any other type than buy or sell are ignored.
func (s *Totals) Add(t models.Trade) {
	switch t.TradeType {
	case models.Buy:
		s.BuyCount++
		s.BuyAmount = s.BuyAmount.Add(t.Amount)
	case models.Sell:
		s.SellCount++
		s.SellAmount = s.SellAmount.Add(t.Amount)
	default:
		return
	}
	s.NetAmount = s.SellAmount.Sub(s.BuyAmount)
}

// Bucket is the totals of one sub-period: a date (YYYY-MM-DD) in monthly
// reports, a month (YYYY-MM) in yearly ones.
type Bucket struct {
	Key string `json:"key"`
	Totals
}

// Report is the result of aggregating one scope.
type Report struct {
	Query       Query          `json:"query"`
	From        time.Time      `json:"from"`
	To          time.Time      `json:"to"`
	TotalTrades int            `json:"total_trades"`
	Totals      Totals         `json:"totals"`
	Buckets     []Bucket       `json:"buckets,omitempty"`
	Trades      []models.Trade `json:"trades"`
}

// Date is the first day covered by the report.
func (r *Report) Date() time.Time {
	return r.From
}

// Build aggregates the trades that fall inside q's range. The input is not
// modified. Buckets are ordered chronologically; the trade list is newest
// first.
func Build(q Query, trades []models.Trade) *Report {
	from, to := q.Range()
	r := &Report{Query: q, From: from, To: to, Trades: []models.Trade{}}

	for _, t := range trades {
		d := t.TradeDate.UTC()
		if d.Before(from) || !d.Before(to) {
			continue
		}
		r.Trades = append(r.Trades, t)
	}
	sort.SliceStable(r.Trades, func(i, j int) bool {
		a, b := r.Trades[i], r.Trades[j]
		if !a.TradeDate.Equal(b.TradeDate) {
			return a.TradeDate.After(b.TradeDate)
		}
		return a.ID > b.ID
	})

	r.TotalTrades = len(r.Trades)
	layout := bucketLayout(q.Kind)
	index := make(map[string]int)
	for _, t := range r.Trades {
		r.Totals.Add(t)
		if layout == "" {
			continue
		}
		key := t.TradeDate.UTC().Format(layout)
		i, ok := index[key]
		if !ok {
			i = len(r.Buckets)
			index[key] = i
			r.Buckets = append(r.Buckets, Bucket{Key: key})
		}
		r.Buckets[i].Add(t)
	}
	sort.Slice(r.Buckets, func(i, j int) bool {
		return r.Buckets[i].Key < r.Buckets[j].Key
	})
	return r
}

func bucketLayout(k Kind) string {
	switch k {
	case Monthly:
		return "2006-01-02"
	case Yearly:
		return "2006-01"
	}
	return ""
}
