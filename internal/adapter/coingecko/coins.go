package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// Coin is one row of the /coins/markets listing.
type Coin struct {
	ID                       string          `json:"id"`
	Symbol                   string          `json:"symbol"`
	Name                     string          `json:"name"`
	Image                    string          `json:"image"`
	CurrentPrice             decimal.Decimal `json:"current_price"`
	MarketCap                decimal.Decimal `json:"market_cap"`
	MarketCapRank            int             `json:"market_cap_rank"`
	TotalVolume              decimal.Decimal `json:"total_volume"`
	High24h                  decimal.Decimal `json:"high_24h"`
	Low24h                   decimal.Decimal `json:"low_24h"`
	PriceChange24h           decimal.Decimal `json:"price_change_24h"`
	PriceChangePercentage24h float64         `json:"price_change_percentage_24h"`
	CirculatingSupply        decimal.Decimal `json:"circulating_supply"`
	ATH                      decimal.Decimal `json:"ath"`
	LastUpdated              time.Time       `json:"last_updated"`
}

// CoinDetails is the subset of the /coins/{id} payload the dashboard needs.
type CoinDetails struct {
	ID                       string
	Symbol                   string
	Name                     string
	Image                    string
	CurrentPrice             decimal.Decimal
	MarketCapRank            int
	PriceChangePercentage24h float64
}

// PricePoint is one sample of a coin's price history.
type PricePoint struct {
	Time  time.Time
	Price decimal.Decimal
}

// GlobalMarket holds the headline numbers of the /global endpoint.
type GlobalMarket struct {
	ActiveCryptocurrencies    int
	TotalMarketCap            decimal.Decimal
	TotalVolume               decimal.Decimal
	MarketCapChangePercentage float64
}

// TrendingCoin is one entry of the /search/trending listing.
type TrendingCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
}

// CoinsMarkets lists coins with market data, ordered by market cap. ids
// restricts the listing to specific coins when non-empty.
func (c *Client) CoinsMarkets(ctx context.Context, currency string, ids []string, perPage, page int) ([]Coin, error) {
	params := url.Values{}
	params.Set("vs_currency", currency)
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	if len(ids) > 0 {
		params.Set("ids", strings.Join(ids, ","))
	}

	var coins []Coin
	if err := c.get(ctx, "/coins/markets", params, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// SimplePrices returns the current unit price for each coin id, in currency.
// Ids unknown to the API are absent from the result.
func (c *Client) SimplePrices(ctx context.Context, coinIDs []string, currency string) (map[string]decimal.Decimal, error) {
	if len(coinIDs) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	params := url.Values{}
	params.Set("ids", strings.Join(coinIDs, ","))
	params.Set("vs_currencies", currency)

	var raw map[string]map[string]decimal.Decimal
	if err := c.get(ctx, "/simple/price", params, &raw); err != nil {
		return nil, err
	}

	result := make(map[string]decimal.Decimal, len(raw))
	for id, quotes := range raw {
		if price, ok := quotes[currency]; ok {
			result[id] = price
		}
	}
	return result, nil
}

// CoinDetails fetches display metadata and the current price for one coin.
// The /coins/{id} payload is deeply nested, so the interesting fields are
// extracted with jsonpath instead of mirroring the whole document as structs.
func (c *Client) CoinDetails(ctx context.Context, coinID, currency string) (CoinDetails, error) {
	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")

	var doc any
	if err := c.get(ctx, "/coins/"+coinID, params, &doc); err != nil {
		return CoinDetails{}, err
	}

	details := CoinDetails{ID: coinID}
	details.Symbol, _ = jsonString(doc, "$.symbol")
	details.Name, _ = jsonString(doc, "$.name")
	details.Image, _ = jsonString(doc, "$.image.small")

	price, err := jsonNumber(doc, "$.market_data.current_price."+currency)
	if err != nil {
		return CoinDetails{}, fmt.Errorf("no %s price for coin %q: %w", currency, coinID, err)
	}
	details.CurrentPrice = decimal.NewFromFloat(price)

	if rank, err := jsonNumber(doc, "$.market_cap_rank"); err == nil {
		details.MarketCapRank = int(rank)
	}
	if change, err := jsonNumber(doc, "$.market_data.price_change_percentage_24h"); err == nil {
		details.PriceChangePercentage24h = change
	}
	return details, nil
}

// MarketChart returns the price history of a coin over the last days days.
func (c *Client) MarketChart(ctx context.Context, coinID, currency string, days int) ([]PricePoint, error) {
	params := url.Values{}
	params.Set("vs_currency", currency)
	params.Set("days", strconv.Itoa(days))

	var raw struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := c.get(ctx, "/coins/"+coinID+"/market_chart", params, &raw); err != nil {
		return nil, err
	}

	points := make([]PricePoint, 0, len(raw.Prices))
	for _, p := range raw.Prices {
		if len(p) < 2 {
			continue
		}
		points = append(points, PricePoint{
			Time:  time.UnixMilli(int64(p[0])),
			Price: decimal.NewFromFloat(p[1]),
		})
	}
	return points, nil
}

// Global returns headline market statistics in currency.
func (c *Client) Global(ctx context.Context, currency string) (GlobalMarket, error) {
	var doc any
	if err := c.get(ctx, "/global", nil, &doc); err != nil {
		return GlobalMarket{}, err
	}

	var global GlobalMarket
	if n, err := jsonNumber(doc, "$.data.active_cryptocurrencies"); err == nil {
		global.ActiveCryptocurrencies = int(n)
	}
	if n, err := jsonNumber(doc, "$.data.total_market_cap."+currency); err == nil {
		global.TotalMarketCap = decimal.NewFromFloat(n)
	}
	if n, err := jsonNumber(doc, "$.data.total_volume."+currency); err == nil {
		global.TotalVolume = decimal.NewFromFloat(n)
	}
	if n, err := jsonNumber(doc, "$.data.market_cap_change_percentage_24h_usd"); err == nil {
		global.MarketCapChangePercentage = n
	}
	return global, nil
}

// Trending returns the coins trending in search over the last 24h.
func (c *Client) Trending(ctx context.Context) ([]TrendingCoin, error) {
	var raw struct {
		Coins []struct {
			Item TrendingCoin `json:"item"`
		} `json:"coins"`
	}
	if err := c.get(ctx, "/search/trending", nil, &raw); err != nil {
		return nil, err
	}

	coins := make([]TrendingCoin, 0, len(raw.Coins))
	for _, entry := range raw.Coins {
		coins = append(coins, entry.Item)
	}
	return coins, nil
}

// jsonString extracts a string value at path from a decoded JSON document.
func jsonString(doc any, path string) (string, error) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return "", err
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("value at %q is not a string", path)
	}
	return s, nil
}

// jsonNumber extracts a numeric value at path from a decoded JSON document.
func jsonNumber(doc any, path string) (float64, error) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return 0, err
	}
	f, ok := val.(float64)
	if !ok {
		return 0, fmt.Errorf("value at %q is not a number", path)
	}
	return f, nil
}
