package valuation

import (
	"github.com/shopspring/decimal"

	"cryptofolio/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// AssetValuation holds the derived financial metrics for one asset.
type AssetValuation struct {
	Asset             domain.Asset
	TotalAmount       decimal.Decimal
	TotalInvested     decimal.Decimal
	AveragePrice      decimal.Decimal
	CurrentPrice      decimal.Decimal
	CurrentValue      decimal.Decimal
	ProfitLoss        decimal.Decimal
	ProfitLossPercent decimal.Decimal
}

// Summary holds the portfolio-wide aggregates. ProfitLossPercent is computed
// from the aggregate totals, not as an average of per-asset percentages.
type Summary struct {
	TotalValue        decimal.Decimal
	TotalInvested     decimal.Decimal
	ProfitLoss        decimal.Decimal
	ProfitLossPercent decimal.Decimal
	AssetCount        int
}

// Engine derives financial metrics from a portfolio snapshot and a price
// lookup. It is pure and stateless: inputs are never mutated, nothing is
// cached, and every average is recomputed in full from the transaction
// sequence so no drift accumulates across incremental updates.
type Engine struct{}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// ValuateAsset computes the metrics for a single asset at currentPrice.
// A zero price (the stand-in for "no price known") yields a zero current
// value and a profit/loss equal to the negated invested total; callers that
// want to suppress premature loss display must gate on the price source's
// loaded signal instead.
func (e *Engine) ValuateAsset(asset domain.Asset, currentPrice decimal.Decimal) AssetValuation {
	totalAmount := decimal.Zero
	totalInvested := decimal.Zero
	for _, tx := range asset.Transactions {
		totalAmount = totalAmount.Add(tx.Amount)
		totalInvested = totalInvested.Add(tx.Invested())
	}

	averagePrice := decimal.Zero
	if totalAmount.IsPositive() {
		averagePrice = totalInvested.Div(totalAmount)
	}

	currentValue := totalAmount.Mul(currentPrice)
	profitLoss := currentValue.Sub(totalInvested)

	profitLossPercent := decimal.Zero
	if totalInvested.IsPositive() {
		profitLossPercent = profitLoss.Div(totalInvested).Mul(hundred)
	}

	return AssetValuation{
		Asset:             asset,
		TotalAmount:       totalAmount,
		TotalInvested:     totalInvested,
		AveragePrice:      averagePrice,
		CurrentPrice:      currentPrice,
		CurrentValue:      currentValue,
		ProfitLoss:        profitLoss,
		ProfitLossPercent: profitLossPercent,
	}
}

// Valuate computes per-asset metrics for every asset in the snapshot plus the
// portfolio-wide summary. Coins absent from prices are valued at price 0.
func (e *Engine) Valuate(assets []domain.Asset, prices map[string]decimal.Decimal) ([]AssetValuation, Summary) {
	valuations := make([]AssetValuation, 0, len(assets))
	totalValue := decimal.Zero
	totalInvested := decimal.Zero

	for _, asset := range assets {
		price := prices[asset.CoinID]
		v := e.ValuateAsset(asset, price)
		valuations = append(valuations, v)
		totalValue = totalValue.Add(v.CurrentValue)
		totalInvested = totalInvested.Add(v.TotalInvested)
	}

	profitLoss := totalValue.Sub(totalInvested)
	profitLossPercent := decimal.Zero
	if totalInvested.IsPositive() {
		profitLossPercent = profitLoss.Div(totalInvested).Mul(hundred)
	}

	return valuations, Summary{
		TotalValue:        totalValue,
		TotalInvested:     totalInvested,
		ProfitLoss:        profitLoss,
		ProfitLossPercent: profitLossPercent,
		AssetCount:        len(assets),
	}
}
