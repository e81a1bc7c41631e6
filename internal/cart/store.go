package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/andresGon/cursor-pet/internal/domain"
	"github.com/andresGon/cursor-pet/internal/kvstore"
)

// storageNamespace is the fixed key the serialized cart lives under in the
// persistence backend.
const storageNamespace = "cart-storage"

const persistTimeout = time.Second

// envelope is the persisted record. The version tag keeps the layout
// self-describing so a future format change can detect old payloads.
type envelope struct {
	Version int               `json:"version"`
	Items   []domain.CartItem `json:"items"`
}

const envelopeVersion = 1

// Store owns the cart line items. All reads and mutations go through it;
// every successful mutation is snapshotted to the backend. A failed write is
// a warning, not an error: the in-memory state stays authoritative and the
// cart degrades to session-only until the backend recovers.
//
// One instance is constructed at startup and handed to the handlers.
// Concurrent processes sharing a backend race last-writer-wins.
type Store struct {
	mu      sync.Mutex
	items   []domain.CartItem
	backend kvstore.Store
	logger  *slog.Logger
}

// NewStore restores prior state from the backend. A missing record means
// first run; a corrupt one is discarded. Both start an empty cart, neither
// fails construction.
func NewStore(ctx context.Context, backend kvstore.Store, logger *slog.Logger) *Store {
	s := &Store{
		backend: backend,
		logger:  logger,
	}

	data, err := backend.Load(ctx, storageNamespace)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			logger.Warn("failed to restore cart, starting empty", "error", err)
		}
		return s
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		logger.Warn("stored cart is corrupt, starting empty", "error", err)
		return s
	}
	s.items = env.Items

	return s
}

// AddItem puts one unit of the product in the cart. If a line item with the
// same id already exists only its quantity is bumped; the stored product
// fields are kept as-is even when the incoming copy differs.
// TODO: confirm with product whether a repeat add should pick up a changed
// catalog price, or keep showing the price from the first add.
func (s *Store) AddItem(ctx context.Context, product domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == product.ID {
			s.items[i].Quantity++
			s.persist(ctx)
			return
		}
	}

	s.items = append(s.items, domain.CartItem{Product: product, Quantity: 1})
	s.persist(ctx)
}

// RemoveItem drops the line item with the given id. Unknown ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, itemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.persist(ctx)
}

// UpdateQuantity sets the quantity for the line item with the given id.
// Negative values clamp to 0, and 0 removes the item. Unknown ids are a
// no-op.
func (s *Store) UpdateQuantity(ctx context.Context, itemID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 0 {
		quantity = 0
	}

	for i := range s.items {
		if s.items[i].ID != itemID {
			continue
		}
		if quantity == 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i].Quantity = quantity
		}
		break
	}
	s.persist(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

// Items returns the line items in insertion order. The slice is a copy.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// persist snapshots the current items to the backend. Called with the lock
// held, after the in-memory mutation is already complete.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(envelope{Version: envelopeVersion, Items: s.items})
	if err != nil {
		s.logger.Warn("failed to serialize cart", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := s.backend.Save(ctx, storageNamespace, data); err != nil {
		s.logger.Warn("failed to save cart", "error", err)
	}
}
