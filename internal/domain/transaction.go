package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction represents a single purchase of a coin in the domain layer.
// Transactions are append-only: once recorded they are never mutated, only
// removed by explicit user action.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	PurchaseDate  time.Time       `json:"purchaseDate"`
}

// NewTransaction builds a validated purchase record with a freshly generated id.
// Amounts must be strictly positive: the portfolio models buys only, and a
// negative or zero quantity would poison the weighted-average cost basis.
func NewTransaction(amount, purchasePrice decimal.Decimal, purchaseDate time.Time) (Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Transaction{}, &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	if purchasePrice.IsNegative() {
		return Transaction{}, &ValidationError{Field: "purchasePrice", Reason: "must not be negative"}
	}

	return Transaction{
		ID:            uuid.New(),
		Amount:        amount,
		PurchasePrice: purchasePrice,
		PurchaseDate:  purchaseDate,
	}, nil
}

// Invested returns the reference-currency cost of this purchase.
func (t Transaction) Invested() decimal.Decimal {
	return t.Amount.Mul(t.PurchasePrice)
}
