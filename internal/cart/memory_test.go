package cart

import (
	"context"
	"sync"

	"storefront/internal/models"
	"storefront/internal/store"
)

// memStorage is the in-memory Storage used across the package tests.
type memStorage struct {
	mu    sync.Mutex
	carts map[string]models.Cart
	puts  int
}

func newMemStorage() *memStorage {
	return &memStorage{carts: make(map[string]models.Cart)}
}

func (m *memStorage) Get(_ context.Context, owner string) (models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[owner]
	if !ok {
		return models.Cart{}, store.ErrNotFound
	}
	return cart, nil
}

func (m *memStorage) Put(_ context.Context, cart models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.carts[cart.Owner] = cart
	return nil
}

func (m *memStorage) putCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

func (m *memStorage) saved(owner string) (models.Cart, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[owner]
	return cart, ok
}
