package domain

// Asset groups all purchase transactions for one coin.
// The coin id is the aggregation key: a portfolio never holds two assets with
// the same coin id, and an asset whose last transaction is removed ceases to
// exist. Symbol and name are display metadata captured when the asset is first
// created and are not refreshed from the market afterwards.
type Asset struct {
	CoinID       string        `json:"coinId"`
	Symbol       string        `json:"symbol"`
	Name         string        `json:"name"`
	Transactions []Transaction `json:"transactions"`
}

// Clone returns a deep copy of the asset so callers can hold a snapshot
// without aliasing the store's internal slices.
func (a Asset) Clone() Asset {
	txs := make([]Transaction, len(a.Transactions))
	copy(txs, a.Transactions)
	a.Transactions = txs
	return a
}

// CloneAssets deep-copies a slice of assets.
func CloneAssets(assets []Asset) []Asset {
	out := make([]Asset, len(assets))
	for i, a := range assets {
		out[i] = a.Clone()
	}
	return out
}
