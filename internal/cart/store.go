package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/Skotchmaster/rocketshoes/internal/catalog"
	"github.com/Skotchmaster/rocketshoes/internal/models"
	"github.com/Skotchmaster/rocketshoes/internal/storage"
)

const SlotKey = "@RocketShoes:cart"

type ProductSource interface {
	GetProduct(ctx context.Context, productID int) (*models.Product, error)
}

type StockService interface {
	GetStock(ctx context.Context, productID int) (*models.Stock, error)
}

type SlotStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type Notification struct {
	Kind      Kind
	ProductID int
	Message   string
}

// Notifier presents failures to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type Deps struct {
	Products ProductSource
	Stock    StockService
	Slots    SlotStore
	Notifier Notifier
	// Key names the persistence slot; SlotKey when empty.
	Key string
}

type Option func(*Store)

// WithInclusiveStock accepts a request for exactly the available amount.
// By default a request must be strictly below the available stock.
func WithInclusiveStock() Option {
	return func(s *Store) { s.inclusive = true }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Store holds one cart. Mutations run one at a time: each operation reads the
// cart, talks to the catalog and commits before the next one starts.
type Store struct {
	deps      Deps
	key       string
	log       *slog.Logger
	inclusive bool

	sem chan struct{}

	mu        sync.RWMutex
	cart      models.Cart
	observers []observer
	nextID    int
}

// errCorruptSnapshot marks a slot whose contents cannot be decoded.
var errCorruptSnapshot = errors.New("decode slot")

// New loads the cart from its slot. A missing or undecodable snapshot yields
// an empty cart; a failed read is returned so the snapshot is never replaced
// by an empty cart.
func New(ctx context.Context, d Deps, opts ...Option) (*Store, error) {
	s := &Store{
		deps: d,
		key:  d.Key,
		log:  slog.Default(),
		sem:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.key == "" {
		s.key = SlotKey
	}
	if s.deps.Slots == nil {
		s.deps.Slots = storage.NewMemorySlots()
	}
	s.log = s.log.With("slot", s.key)

	c, err := s.load(context.WithoutCancel(ctx))
	switch {
	case errors.Is(err, errCorruptSnapshot):
		s.log.Warn("cart_load_error", "error", err)
		c = models.Cart{}
	case err != nil:
		return nil, err
	}
	s.cart = c
	return s, nil
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *Store) AddProduct(ctx context.Context, productID int) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	return s.report(ctx, s.addProduct(ctx, productID))
}

func (s *Store) RemoveProduct(ctx context.Context, productID int) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	return s.report(ctx, s.removeProduct(ctx, productID))
}

func (s *Store) UpdateProductAmount(ctx context.Context, productID, amount int) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	return s.report(ctx, s.updateProductAmount(ctx, productID, amount))
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	s.commit(ctx, func(models.Cart) models.Cart { return models.Cart{} })
	return nil
}

// Reload replaces the in-memory cart with the persisted snapshot and
// publishes it. The slot is not written back.
func (s *Store) Reload(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	c, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cart = c
	s.mu.Unlock()
	s.publish(c)
	return nil
}

func (s *Store) addProduct(ctx context.Context, productID int) error {
	if item, ok := s.Cart().Find(productID); ok {
		return s.updateProductAmount(ctx, productID, item.Amount+1)
	}

	product, err := s.deps.Products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return newError(KindProductNotFound, productID, err)
		}
		return newError(KindNetworkFailure, productID, fmt.Errorf("product lookup: %w", err))
	}
	if product == nil {
		return newError(KindProductNotFound, productID, nil)
	}

	if err := s.checkStock(ctx, productID, 1); err != nil {
		return err
	}

	item := models.LineItem{Product: *product, Amount: 1}
	item.ID = productID
	s.commit(ctx, func(c models.Cart) models.Cart {
		return append(c, item)
	})
	return nil
}

func (s *Store) removeProduct(ctx context.Context, productID int) error {
	if _, ok := s.Cart().Find(productID); !ok {
		return newError(KindProductNotInCart, productID, nil)
	}

	s.commit(ctx, func(c models.Cart) models.Cart {
		i := c.Index(productID)
		return slices.Delete(c, i, i+1)
	})
	return nil
}

func (s *Store) updateProductAmount(ctx context.Context, productID, amount int) error {
	if _, ok := s.Cart().Find(productID); !ok {
		return newError(KindInvalidRequest, productID, errors.New("product is not in the cart"))
	}
	if amount < 1 {
		return newError(KindInvalidRequest, productID, fmt.Errorf("amount must be at least 1, got %d", amount))
	}

	if err := s.checkStock(ctx, productID, amount); err != nil {
		return err
	}

	s.commit(ctx, func(c models.Cart) models.Cart {
		c[c.Index(productID)].Amount = amount
		return c
	})
	return nil
}

// checkStock fails closed: a stock lookup that does not produce a record is
// never treated as available stock. Such a failure is reported once, as a
// network failure, and never also as missing stock.
func (s *Store) checkStock(ctx context.Context, productID, amount int) error {
	stock, err := s.deps.Stock.GetStock(ctx, productID)
	if err != nil {
		return newError(KindNetworkFailure, productID, fmt.Errorf("stock lookup: %w", err))
	}
	if stock == nil {
		return newError(KindNetworkFailure, productID, errors.New("stock lookup: empty response"))
	}
	if !s.sufficient(stock.Amount, amount) {
		return newError(KindInsufficientStock, productID, nil)
	}
	return nil
}

func (s *Store) sufficient(available, requested int) bool {
	if s.inclusive {
		return available >= requested
	}
	return available > requested
}

// commit applies mutate to a copy of the cart, publishes the result and then
// writes it to the slot. Observers run before the write, so they must return
// quickly.
func (s *Store) commit(ctx context.Context, mutate func(models.Cart) models.Cart) {
	s.mu.Lock()
	next := mutate(s.cart.Clone())
	s.cart = next
	s.mu.Unlock()

	s.publish(next)
	s.persist(context.WithoutCancel(ctx), next)
}

func (s *Store) persist(ctx context.Context, c models.Cart) {
	data, err := json.Marshal(c)
	if err != nil {
		s.log.Error("cart_persist_error", "error", err)
		return
	}
	if err := s.deps.Slots.Set(ctx, s.key, string(data)); err != nil {
		s.log.Error("cart_persist_error", "error", err)
	}
}

func (s *Store) load(ctx context.Context) (models.Cart, error) {
	raw, err := s.deps.Slots.Get(ctx, s.key)
	if errors.Is(err, storage.ErrSlotNotFound) {
		return models.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", s.key, err)
	}

	var c models.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("%w %s: %v", errCorruptSnapshot, s.key, err)
	}
	return s.normalize(c), nil
}

// normalize drops entries that break the cart invariants: amounts below one
// and repeated product ids (the first occurrence wins).
func (s *Store) normalize(c models.Cart) models.Cart {
	out := make(models.Cart, 0, len(c))
	for _, it := range c {
		if it.Amount < 1 || out.Index(it.ID) >= 0 {
			s.log.Warn("cart_load_dropped_item", "product_id", it.ID, "amount", it.Amount)
			continue
		}
		out = append(out, it)
	}
	return out
}

func (s *Store) report(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	kind := KindOf(err)
	var productID int
	var ce *Error
	if errors.As(err, &ce) {
		productID = ce.ProductID
	}

	s.log.Warn("cart_operation_failed", "kind", kind.String(), "product_id", productID, "error", err)
	if s.deps.Notifier != nil {
		s.deps.Notifier.Notify(ctx, Notification{Kind: kind, ProductID: productID, Message: kind.Message()})
	}
	return err
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.sem
}
