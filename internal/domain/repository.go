package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// BlobStore defines the interface for the durable key-value entry the
// portfolio is persisted through. Implementations are local and best-effort:
// when a write fails the in-memory state remains authoritative for the
// session.
type BlobStore interface {
	// Read returns the stored payload. ok is false when nothing has been
	// stored yet, which is not an error.
	Read(ctx context.Context) (data []byte, ok bool, err error)

	// Write replaces the stored payload with data.
	Write(ctx context.Context, data []byte) error

	// Watch returns a channel that receives a signal whenever another
	// execution context changes the stored payload. The channel is closed
	// when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// PriceSource defines the interface for resolving current unit prices, in the
// reference currency, for a set of coin ids. The returned map may be partial;
// a missing entry means no price is known for that coin.
type PriceSource interface {
	Prices(ctx context.Context, coinIDs []string) (map[string]decimal.Decimal, error)
}
