package prices

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"cryptofolio/internal/domain"
)

type cachedPrice struct {
	price     decimal.Decimal
	expiresAt time.Time
}

// Service is a caching façade over a PriceSource. Fresh prices are served
// from a TTL cache and concurrent lookups for the same id set are collapsed
// into a single upstream call, which matters against a rate-limited market
// API.
type Service struct {
	source domain.PriceSource
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.RWMutex
	cache  map[string]cachedPrice
	loaded bool

	group singleflight.Group
}

// NewService creates a price service caching source results for ttl.
func NewService(source domain.PriceSource, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source: source,
		ttl:    ttl,
		logger: logger,
		cache:  make(map[string]cachedPrice),
	}
}

// Loaded reports whether at least one upstream fetch has completed
// successfully. Valuation callers gate loss display on this signal rather
// than on zero prices.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Fetch returns current prices for coinIDs. Ids with a fresh cache entry are
// served locally; the rest are fetched from the source in one batched call.
// The returned map may be partial when the source does not know a coin.
func (s *Service) Fetch(ctx context.Context, coinIDs []string) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal, len(coinIDs))
	var missing []string

	now := time.Now()
	s.mu.RLock()
	for _, id := range coinIDs {
		if entry, ok := s.cache[id]; ok && now.Before(entry.expiresAt) {
			result[id] = entry.price
		} else {
			missing = append(missing, id)
		}
	}
	s.mu.RUnlock()

	if len(missing) == 0 {
		return result, nil
	}

	sort.Strings(missing)
	key := strings.Join(missing, ",")
	fetched, err, _ := s.group.Do(key, func() (any, error) {
		prices, err := s.source.Prices(ctx, missing)
		if err != nil {
			return nil, err
		}
		expires := time.Now().Add(s.ttl)
		s.mu.Lock()
		for id, price := range prices {
			s.cache[id] = cachedPrice{price: price, expiresAt: expires}
		}
		s.loaded = true
		s.mu.Unlock()
		return prices, nil
	})
	if err != nil {
		s.logger.Warn("price fetch failed", "coins", key, "error", err)
		return nil, err
	}

	for id, price := range fetched.(map[string]decimal.Decimal) {
		result[id] = price
	}
	return result, nil
}
