package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points a client with fast retries at a test server.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, nil)
	client.retryDelay = time.Millisecond
	return client
}

func TestSimplePrices_DecodesQuotes(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		fmt.Fprint(w, `{"bitcoin":{"usd":40000.5},"ethereum":{"usd":2000}}`)
	}))

	prices, err := client.SimplePrices(context.Background(), []string{"bitcoin", "ethereum"}, "usd")

	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.True(t, prices["bitcoin"].Equal(decimal.NewFromFloat(40000.5)))
	assert.True(t, prices["ethereum"].Equal(decimal.NewFromInt(2000)))
}

func TestSimplePrices_EmptyRequestSkipsNetwork(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}))

	prices, err := client.SimplePrices(context.Background(), nil, "usd")

	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestGet_RetriesRateLimitThenSucceeds(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"bitcoin":{"usd":100}}`)
	}))

	prices, err := client.SimplePrices(context.Background(), []string{"bitcoin"}, "usd")

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, prices["bitcoin"].Equal(decimal.NewFromInt(100)))
}

func TestGet_RateLimitExhaustsRetries(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.SimplePrices(context.Background(), []string{"bitcoin"}, "usd")

	require.Error(t, err)
	assert.Equal(t, 3, calls) // initial attempt + 2 retries

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrRateLimited, apiErr.Kind())
}

func TestGet_NotFoundIsNotRetried(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.CoinDetails(context.Background(), "no-such-coin", "usd")

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrNotFound, apiErr.Kind())
}

func TestGet_ServerErrorIsRetried(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{}`)
	}))

	_, err := client.SimplePrices(context.Background(), []string{"bitcoin"}, "usd")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestGet_ContextCancelStopsRetrying(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	client.retryDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SimplePrices(ctx, []string{"bitcoin"}, "usd")

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRetryBackoff_DoublesAndCaps(t *testing.T) {
	client := NewClient("", nil)

	assert.Equal(t, 1*time.Second, client.retryBackoff(0))
	assert.Equal(t, 2*time.Second, client.retryBackoff(1))
	assert.Equal(t, 4*time.Second, client.retryBackoff(2))
	assert.Equal(t, 30*time.Second, client.retryBackoff(10))
	assert.Equal(t, 30*time.Second, client.retryBackoff(60))
}

func TestCoinsMarkets_DecodesListing(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "market_cap_desc", r.URL.Query().Get("order"))
		fmt.Fprint(w, `[{
			"id":"bitcoin","symbol":"btc","name":"Bitcoin",
			"current_price":40000,"market_cap":800000000000,"market_cap_rank":1,
			"price_change_percentage_24h":-1.25,
			"last_updated":"2026-08-01T12:00:00Z"
		}]`)
	}))

	coins, err := client.CoinsMarkets(context.Background(), "usd", nil, 20, 1)

	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.Equal(t, "bitcoin", coins[0].ID)
	assert.Equal(t, 1, coins[0].MarketCapRank)
	assert.True(t, coins[0].CurrentPrice.Equal(decimal.NewFromInt(40000)))
	assert.InDelta(t, -1.25, coins[0].PriceChangePercentage24h, 0.0001)
}

func TestCoinsMarkets_NullFieldsDecodeToZero(t *testing.T) {
	// Newly listed coins routinely carry nulls for market fields.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"newcoin","symbol":"new","name":"New Coin",
			"current_price":0.01,"market_cap":null,"market_cap_rank":0,
			"ath":null,"last_updated":"2026-08-01T12:00:00Z"}]`)
	}))

	coins, err := client.CoinsMarkets(context.Background(), "usd", nil, 20, 1)

	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.True(t, coins[0].MarketCap.IsZero())
	assert.True(t, coins[0].ATH.IsZero())
}

func TestCoinDetails_ExtractsNestedFields(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin", r.URL.Path)
		fmt.Fprint(w, `{
			"id":"bitcoin","symbol":"btc","name":"Bitcoin",
			"image":{"thumb":"t.png","small":"s.png","large":"l.png"},
			"market_cap_rank":1,
			"market_data":{
				"current_price":{"usd":40000,"eur":36000},
				"price_change_percentage_24h":2.5
			}
		}`)
	}))

	details, err := client.CoinDetails(context.Background(), "bitcoin", "usd")

	require.NoError(t, err)
	assert.Equal(t, "btc", details.Symbol)
	assert.Equal(t, "Bitcoin", details.Name)
	assert.Equal(t, "s.png", details.Image)
	assert.Equal(t, 1, details.MarketCapRank)
	assert.True(t, details.CurrentPrice.Equal(decimal.NewFromInt(40000)))
	assert.InDelta(t, 2.5, details.PriceChangePercentage24h, 0.0001)
}

func TestCoinDetails_MissingCurrencyFails(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"bitcoin","market_data":{"current_price":{"usd":40000}}}`)
	}))

	_, err := client.CoinDetails(context.Background(), "bitcoin", "chf")

	assert.Error(t, err)
}

func TestMarketChart_ParsesSamples(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		fmt.Fprint(w, `{"prices":[[1754042400000,39000.5],[1754046000000,39500]]}`)
	}))

	points, err := client.MarketChart(context.Background(), "bitcoin", "usd", 7)

	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, time.UnixMilli(1754042400000), points[0].Time)
	assert.True(t, points[0].Price.Equal(decimal.NewFromFloat(39000.5)))
	assert.True(t, points[1].Price.Equal(decimal.NewFromInt(39500)))
}

func TestGlobal_ExtractsHeadlineNumbers(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/global", r.URL.Path)
		fmt.Fprint(w, `{"data":{
			"active_cryptocurrencies":12000,
			"total_market_cap":{"usd":2500000000000},
			"total_volume":{"usd":90000000000},
			"market_cap_change_percentage_24h_usd":1.7
		}}`)
	}))

	global, err := client.Global(context.Background(), "usd")

	require.NoError(t, err)
	assert.Equal(t, 12000, global.ActiveCryptocurrencies)
	assert.True(t, global.TotalMarketCap.Equal(decimal.NewFromInt(2500000000000)))
	assert.InDelta(t, 1.7, global.MarketCapChangePercentage, 0.0001)
}

func TestTrending_FlattensItems(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/trending", r.URL.Path)
		fmt.Fprint(w, `{"coins":[
			{"item":{"id":"pepe","name":"Pepe","symbol":"PEPE","market_cap_rank":42}},
			{"item":{"id":"sui","name":"Sui","symbol":"SUI","market_cap_rank":15}}
		]}`)
	}))

	coins, err := client.Trending(context.Background())

	require.NoError(t, err)
	require.Len(t, coins, 2)
	assert.Equal(t, "pepe", coins[0].ID)
	assert.Equal(t, 15, coins[1].MarketCapRank)
}
