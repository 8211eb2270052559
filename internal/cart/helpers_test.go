package cart_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Skotchmaster/rocketshoes/internal/cart"
	"github.com/Skotchmaster/rocketshoes/internal/catalog"
	"github.com/Skotchmaster/rocketshoes/internal/models"
	"github.com/Skotchmaster/rocketshoes/internal/notify"
	"github.com/Skotchmaster/rocketshoes/internal/storage"
	"github.com/stretchr/testify/require"
)

var errNetwork = errors.New("connection refused")

type fakeCatalog struct {
	mu         sync.Mutex
	products   map[int]models.Product
	stock      map[int]int
	productErr error
	stockErr   error

	productCalls int
	stockCalls   int
	// beforeStock, when set, runs inside every stock lookup.
	beforeStock func(productID int)
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[int]models.Product{},
		stock:    map[int]int{},
	}
}

func (f *fakeCatalog) withProduct(id int, price float64, stock int) *fakeCatalog {
	f.products[id] = models.Product{
		ID:    id,
		Title: fmt.Sprintf("Tênis %d", id),
		Price: price,
		Image: fmt.Sprintf("https://img.example/%d.jpg", id),
	}
	f.stock[id] = stock
	return f
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productCalls++
	if f.productErr != nil {
		return nil, f.productErr
	}
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, catalog.ErrNotFound)
	}
	return &p, nil
}

func (f *fakeCatalog) GetStock(_ context.Context, id int) (*models.Stock, error) {
	f.mu.Lock()
	f.stockCalls++
	hook := f.beforeStock
	f.mu.Unlock()

	if hook != nil {
		hook(id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stockErr != nil {
		return nil, f.stockErr
	}
	amount, ok := f.stock[id]
	if !ok {
		return nil, fmt.Errorf("stock %d: %w", id, catalog.ErrNotFound)
	}
	return &models.Stock{ID: id, Amount: amount}, nil
}

func (f *fakeCatalog) calls() (products, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.productCalls, f.stockCalls
}

type notifications struct {
	mu   sync.Mutex
	list []cart.Notification
}

func (n *notifications) notifier() cart.Notifier {
	return notify.Func(func(_ context.Context, nt cart.Notification) {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.list = append(n.list, nt)
	})
}

func (n *notifications) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.list))
	for _, nt := range n.list {
		out = append(out, nt.Message)
	}
	return out
}

type harness struct {
	store   *cart.Store
	catalog *fakeCatalog
	slots   *storage.MemorySlots
	notes   *notifications
}

func newHarness(t *testing.T, cat *fakeCatalog, seed models.Cart, opts ...cart.Option) *harness {
	t.Helper()

	slots := storage.NewMemorySlots()
	if seed != nil {
		data, err := json.Marshal(seed)
		require.NoError(t, err)
		require.NoError(t, slots.Set(context.Background(), cart.SlotKey, string(data)))
	}

	notes := &notifications{}
	store, err := cart.New(context.Background(), cart.Deps{
		Products: cat,
		Stock:    cat,
		Slots:    slots,
		Notifier: notes.notifier(),
	}, opts...)
	require.NoError(t, err)

	return &harness{store: store, catalog: cat, slots: slots, notes: notes}
}

func (h *harness) persisted(t *testing.T) models.Cart {
	t.Helper()
	raw, err := h.slots.Get(context.Background(), cart.SlotKey)
	require.NoError(t, err)
	var c models.Cart
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	return c
}

// flakySlots fails the first failReads reads and then serves the wrapped
// slots.
type flakySlots struct {
	*storage.MemorySlots

	mu        sync.Mutex
	failReads int
	reads     int
}

func (f *flakySlots) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	f.reads++
	fail := f.reads <= f.failReads
	f.mu.Unlock()
	if fail {
		return "", errors.New("i/o timeout")
	}
	return f.MemorySlots.Get(ctx, key)
}

func seededSlots(t *testing.T, key string, c models.Cart) *storage.MemorySlots {
	t.Helper()
	slots := storage.NewMemorySlots()
	data, err := json.Marshal(c)
	require.NoError(t, err)
	require.NoError(t, slots.Set(context.Background(), key, string(data)))
	return slots
}

func item(id, amount int) models.LineItem {
	return models.LineItem{
		Product: models.Product{
			ID:    id,
			Title: fmt.Sprintf("Tênis %d", id),
			Price: 100,
			Image: fmt.Sprintf("https://img.example/%d.jpg", id),
		},
		Amount: amount,
	}
}

func ids(c models.Cart) []int {
	out := make([]int, 0, len(c))
	for _, it := range c {
		out = append(out, it.ID)
	}
	return out
}
