package coingecko

import (
	"context"

	"github.com/shopspring/decimal"
)

// Source adapts a Client to the domain.PriceSource port with a fixed
// reference currency.
type Source struct {
	client   *Client
	currency string
}

// NewSource creates a price source quoting in currency.
func NewSource(client *Client, currency string) *Source {
	return &Source{client: client, currency: currency}
}

// Prices implements domain.PriceSource.
func (s *Source) Prices(ctx context.Context, coinIDs []string) (map[string]decimal.Decimal, error) {
	return s.client.SimplePrices(ctx, coinIDs, s.currency)
}
