package report

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"stock-journal/models"
)

// TradeSource loads a user's trades in [from, to).
type TradeSource interface {
	TradesBetween(ctx context.Context, userID uint, from, to time.Time) ([]models.Trade, error)
}

// Service builds reports from stored trades, consulting the cache first.
type Service struct {
	trades TradeSource
	cache  Cache
}

func NewService(trades TradeSource, cache Cache) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Service{trades: trades, cache: cache}
}

// Report returns the report for q. Cache failures are logged and the
// report is built from the store instead.
func (s *Service) Report(ctx context.Context, userID uint, q Query) (*Report, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	key := q.Key()
	logger := log.WithFields(log.Fields{"user_id": userID, "key": key})

	// The generation is read before the trades so an invalidation that
	// lands while the report is being built keeps it out of the cache.
	gen, genErr := s.cache.Generation(ctx, userID)
	if genErr != nil {
		logger.WithError(genErr).Warn("report cache read failed")
	} else if r, ok, err := s.cache.Get(ctx, userID, gen, key); err != nil {
		logger.WithError(err).Warn("report cache read failed")
	} else if ok {
		return r, nil
	}

	from, to := q.Range()
	trades, err := s.trades.TradesBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	r := Build(q, trades)

	if genErr == nil {
		if err := s.cache.Set(ctx, userID, gen, key, r); err != nil {
			logger.WithError(err).Warn("report cache write failed")
		}
	}
	return r, nil
}

// Invalidate forgets the cached reports of userID.
func (s *Service) Invalidate(ctx context.Context, userID uint) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.WithFields(log.Fields{"user_id": userID}).WithError(err).Warn("report cache invalidation failed")
	}
}
