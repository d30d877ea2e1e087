package portfolio

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptofolio/internal/domain"
)

// Store owns the durable collection of portfolio assets and provides
// race-free mutation primitives.
//
// The store has two lifecycle phases: until Load completes it is
// uninitialized and every mutation fails with domain.ErrNotReady. This guard
// exists because an eager save racing the initial load would overwrite the
// user's durable portfolio with an empty default.
//
// Every mutation serializes the full current snapshot and hands it to a
// single writer goroutine, so writes reach durable storage in mutation order
// and a slow write can never clobber a faster later one. Persistence is
// fire-and-forget: write failures are logged and the in-memory state stays
// authoritative for the session.
type Store struct {
	blobs  domain.BlobStore
	logger *slog.Logger

	mu          sync.Mutex
	assets      []domain.Asset
	ready       bool
	lastPayload []byte
	subs        []func()

	writes chan []byte
	wg     sync.WaitGroup
}

// NewStore creates a Store persisting through blobs. The store is not usable
// until Load is called.
func NewStore(blobs domain.BlobStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		blobs:  blobs,
		logger: logger,
		writes: make(chan []byte, 1),
	}
}

// Load initializes the store from durable storage and transitions it to the
// ready phase. A missing, unreadable or corrupt payload falls back to an
// empty portfolio; Load never propagates storage errors. ctx bounds the
// lifetime of the background persistence and change-watch goroutines.
// Calling Load twice is a no-op.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	if s.ready {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	var (
		assets   []domain.Asset
		last     []byte
		migrated bool
	)
	data, ok, err := s.blobs.Read(ctx)
	switch {
	case err != nil:
		s.logger.Warn("portfolio load failed, starting empty", "error", err)
	case ok:
		decoded, legacy, derr := decodeAssets(data)
		if derr != nil {
			s.logger.Warn("portfolio payload unreadable, starting empty", "error", derr)
		} else {
			assets = decoded
			migrated = legacy
			if !legacy {
				last = data
			}
		}
	}

	s.mu.Lock()
	s.assets = assets
	s.lastPayload = last
	s.ready = true
	if migrated {
		// Re-persist immediately so the durable entry is upgraded to the
		// current schema.
		s.persistLocked()
	}
	s.mu.Unlock()

	s.wg.Add(1)
	go s.writeLoop(ctx)

	ch, werr := s.blobs.Watch(ctx)
	if werr != nil {
		s.logger.Warn("cross-context change watch unavailable", "error", werr)
		return
	}
	s.wg.Add(1)
	go s.watchLoop(ctx, ch)
}

// Ready reports whether the initial durable load has completed.
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Wait blocks until the background goroutines started by Load have exited.
// It is intended to be called after the Load context is cancelled.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Subscribe registers fn to be called after the store reloads its state
// because another execution context changed durable storage.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// AddTransaction validates and records a purchase. If an asset with coinID
// already exists the transaction is appended to it, otherwise a new asset is
// created; the portfolio therefore holds at most one asset per coin id.
func (s *Store) AddTransaction(coinID, symbol, name string, amount, purchasePrice decimal.Decimal, purchaseDate time.Time) (domain.Transaction, error) {
	if coinID == "" {
		return domain.Transaction{}, &domain.ValidationError{Field: "coinId", Reason: "must not be empty"}
	}
	tx, err := domain.NewTransaction(amount, purchasePrice, purchaseDate)
	if err != nil {
		return domain.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return domain.Transaction{}, domain.ErrNotReady
	}

	for i := range s.assets {
		if s.assets[i].CoinID == coinID {
			s.assets[i].Transactions = append(s.assets[i].Transactions, tx)
			s.persistLocked()
			return tx, nil
		}
	}
	s.assets = append(s.assets, domain.Asset{
		CoinID:       coinID,
		Symbol:       symbol,
		Name:         name,
		Transactions: []domain.Transaction{tx},
	})
	s.persistLocked()
	return tx, nil
}

// RemoveTransaction removes the transaction with txID from the asset holding
// coinID. Removing the last transaction removes the asset itself. The
// operation is idempotent: an unknown coin or transaction id is a no-op.
func (s *Store) RemoveTransaction(coinID string, txID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return domain.ErrNotReady
	}

	for i := range s.assets {
		if s.assets[i].CoinID != coinID {
			continue
		}
		txs := s.assets[i].Transactions
		for j := range txs {
			if txs[j].ID != txID {
				continue
			}
			txs = append(txs[:j:j], txs[j+1:]...)
			if len(txs) == 0 {
				s.assets = append(s.assets[:i:i], s.assets[i+1:]...)
			} else {
				s.assets[i].Transactions = txs
			}
			s.persistLocked()
			return nil
		}
		return nil
	}
	return nil
}

// RemoveAsset removes the asset holding coinID and all its transactions.
// Idempotent: unknown coin ids are a no-op.
func (s *Store) RemoveAsset(coinID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return domain.ErrNotReady
	}

	for i := range s.assets {
		if s.assets[i].CoinID == coinID {
			s.assets = append(s.assets[:i:i], s.assets[i+1:]...)
			s.persistLocked()
			return nil
		}
	}
	return nil
}

// Clear removes all assets from the portfolio.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return domain.ErrNotReady
	}

	s.assets = nil
	s.persistLocked()
	return nil
}

// Assets returns a deep-copied snapshot of the portfolio in first-appearance
// order. Callers can never corrupt store state through the returned slice.
func (s *Store) Assets() []domain.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneAssets(s.assets)
}

// CoinIDs returns the distinct coin ids currently held, in first-appearance
// order, for driving price lookups.
func (s *Store) CoinIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.assets))
	for _, a := range s.assets {
		ids = append(ids, a.CoinID)
	}
	return ids
}

// persistLocked serializes the current snapshot and queues it for the writer
// goroutine. Must be called with s.mu held. The queue holds a single pending
// snapshot: because every write carries the full state, a newer snapshot
// always supersedes a queued stale one.
func (s *Store) persistLocked() {
	payload, err := encodeAssets(s.assets)
	if err != nil {
		s.logger.Error("portfolio snapshot encoding failed", "error", err)
		return
	}
	s.lastPayload = payload

	select {
	case s.writes <- payload:
	default:
		select {
		case <-s.writes:
		default:
		}
		s.writes <- payload
	}
}

func (s *Store) writeLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			// Flush a still-pending snapshot before exiting so the last
			// mutation of the session is not lost.
			select {
			case payload := <-s.writes:
				s.flush(context.Background(), payload)
			default:
			}
			return
		case payload := <-s.writes:
			s.flush(ctx, payload)
		}
	}
}

func (s *Store) flush(ctx context.Context, payload []byte) {
	if err := s.blobs.Write(ctx, payload); err != nil {
		s.logger.Warn("portfolio write failed, in-memory state remains authoritative", "error", err)
	}
}

func (s *Store) watchLoop(ctx context.Context, ch <-chan struct{}) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case _, open := <-ch:
			if !open {
				return
			}
			s.reload(ctx)
		}
	}
}

// reload replaces the in-memory state with the current durable snapshot.
// Last-writer-wins at full snapshot granularity; no merge of concurrent
// edits is attempted.
func (s *Store) reload(ctx context.Context) {
	data, ok, err := s.blobs.Read(ctx)
	if err != nil {
		s.logger.Warn("portfolio reload failed, keeping current state", "error", err)
		return
	}
	if !ok {
		data = nil
	}

	s.mu.Lock()
	if bytes.Equal(data, s.lastPayload) {
		// Our own write coming back through the watcher.
		s.mu.Unlock()
		return
	}
	assets, _, derr := decodeAssets(data)
	if derr != nil {
		s.logger.Warn("portfolio reload payload unreadable, keeping current state", "error", derr)
		s.mu.Unlock()
		return
	}
	s.assets = assets
	s.lastPayload = data
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
