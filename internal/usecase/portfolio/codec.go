package portfolio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptofolio/internal/domain"
)

// schemaVersion tags the persisted payload so future format changes have a
// defined upgrade path. Version 1 was a flat list with one record per
// purchase; version 2 groups transactions under one asset per coin.
const schemaVersion = 2

type envelope struct {
	Version int            `json:"version"`
	Assets  []domain.Asset `json:"assets"`
}

// flatAsset is the version 1 persisted shape: coin metadata and purchase data
// collapsed into a single record.
type flatAsset struct {
	ID            string          `json:"id"`
	CoinID        string          `json:"coinId"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	PurchaseDate  time.Time       `json:"purchaseDate"`
}

// encodeAssets serializes a portfolio snapshot into the durable payload.
func encodeAssets(assets []domain.Asset) ([]byte, error) {
	if assets == nil {
		assets = []domain.Asset{}
	}
	payload, err := json.Marshal(envelope{Version: schemaVersion, Assets: assets})
	if err != nil {
		return nil, fmt.Errorf("failed to encode portfolio snapshot: %w", err)
	}
	return payload, nil
}

// decodeAssets parses a durable payload into a portfolio snapshot. legacy is
// true when the payload predates the versioned envelope and should be
// re-persisted in the current format.
func decodeAssets(data []byte) (assets []domain.Asset, legacy bool, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, false, nil
	}

	if trimmed[0] == '[' {
		assets, err = decodeLegacy(trimmed)
		return assets, true, err
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, false, fmt.Errorf("failed to decode portfolio payload: %w", err)
	}
	if env.Version > schemaVersion {
		return nil, false, fmt.Errorf("portfolio payload version %d is newer than supported version %d", env.Version, schemaVersion)
	}
	return env.Assets, false, nil
}

// decodeLegacy handles the two pre-envelope layouts: an unversioned array of
// grouped assets, and the older flat one-record-per-purchase array which is
// regrouped by coin id in first-appearance order.
func decodeLegacy(data []byte) ([]domain.Asset, error) {
	var grouped []domain.Asset
	if err := json.Unmarshal(data, &grouped); err == nil && allGrouped(grouped) {
		return grouped, nil
	}

	var flat []flatAsset
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("failed to decode legacy portfolio payload: %w", err)
	}

	var assets []domain.Asset
	index := make(map[string]int)
	for _, f := range flat {
		tx := domain.Transaction{
			// Legacy ids were not UUIDs; assign fresh ones during migration.
			ID:            uuid.New(),
			Amount:        f.Amount,
			PurchasePrice: f.PurchasePrice,
			PurchaseDate:  f.PurchaseDate,
		}
		if i, ok := index[f.CoinID]; ok {
			assets[i].Transactions = append(assets[i].Transactions, tx)
			continue
		}
		index[f.CoinID] = len(assets)
		assets = append(assets, domain.Asset{
			CoinID:       f.CoinID,
			Symbol:       f.Symbol,
			Name:         f.Name,
			Transactions: []domain.Transaction{tx},
		})
	}
	return assets, nil
}

func allGrouped(assets []domain.Asset) bool {
	for _, a := range assets {
		if len(a.Transactions) == 0 {
			return false
		}
	}
	return true
}
