package cart

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"storefront/internal/models"
)

// Saver debounces cart writes: every mutation schedules a durable save
// after a short delay, so a burst of quantity changes collapses into one
// write per owner. Clear and checkout write through immediately via
// ClearNow and Flush, so durability-critical points never wait on a timer.
type Saver struct {
	storage Storage
	delay   time.Duration
	logger  *log.Entry

	mu      sync.Mutex
	pending map[string]models.Cart
	timers  map[string]*time.Timer
}

func NewSaver(storage Storage, delay time.Duration, logger *log.Entry) *Saver {
	if logger == nil {
		logger = log.New().WithField("component", "cart-saver")
	}
	return &Saver{
		storage: storage,
		delay:   delay,
		logger:  logger,
		pending: make(map[string]models.Cart),
		timers:  make(map[string]*time.Timer),
	}
}

// Load returns the owner's cart: the pending in-flight copy when one
// exists, otherwise the stored one. A missing cart comes back empty.
func (s *Saver) Load(ctx context.Context, owner string) (models.Cart, error) {
	s.mu.Lock()
	if cart, ok := s.pending[owner]; ok {
		s.mu.Unlock()
		return cart, nil
	}
	s.mu.Unlock()

	cart, err := s.storage.Get(ctx, owner)
	if IsNotFound(err) {
		return models.Cart{Owner: owner}, nil
	}
	if err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// Update applies fn to the owner's current cart under the saver's lock and
// schedules a debounced save. Two tabs of the same actor mutate in turn
// rather than clobbering each other.
func (s *Saver) Update(ctx context.Context, owner string, fn func(models.Cart) models.Cart) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.pending[owner]
	if !ok {
		loaded, err := s.storage.Get(ctx, owner)
		if err != nil && !IsNotFound(err) {
			return models.Cart{}, err
		}
		if IsNotFound(err) {
			loaded = models.Cart{Owner: owner}
		}
		current = loaded
	}

	updated := fn(current)
	updated.Owner = owner
	s.pending[owner] = updated
	s.schedule(owner)
	return updated, nil
}

// Flush writes any pending state for the owner immediately and cancels the
// scheduled save. Checkout calls this before validating stock.
func (s *Saver) Flush(ctx context.Context, owner string) error {
	s.mu.Lock()
	cart, ok := s.pending[owner]
	if ok {
		delete(s.pending, owner)
		s.cancelTimer(owner)
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return s.storage.Put(ctx, cart)
}

// ClearNow empties the owner's cart and persists the empty state at once,
// discarding any pending mutation.
func (s *Saver) ClearNow(ctx context.Context, owner string) error {
	s.mu.Lock()
	delete(s.pending, owner)
	s.cancelTimer(owner)
	s.mu.Unlock()

	return s.storage.Put(ctx, models.Cart{Owner: owner, Items: nil})
}

// Close flushes every pending cart. Called on shutdown.
func (s *Saver) Close(ctx context.Context) {
	s.mu.Lock()
	carts := make([]models.Cart, 0, len(s.pending))
	for owner, cart := range s.pending {
		carts = append(carts, cart)
		s.cancelTimer(owner)
	}
	s.pending = make(map[string]models.Cart)
	s.mu.Unlock()

	for _, cart := range carts {
		if err := s.storage.Put(ctx, cart); err != nil {
			s.logger.WithError(err).WithField("owner", cart.Owner).Error("flush on close failed")
		}
	}
}

// schedule must run with s.mu held.
func (s *Saver) schedule(owner string) {
	if timer, ok := s.timers[owner]; ok {
		timer.Reset(s.delay)
		return
	}
	s.timers[owner] = time.AfterFunc(s.delay, func() {
		s.fire(owner)
	})
}

// cancelTimer must run with s.mu held.
func (s *Saver) cancelTimer(owner string) {
	if timer, ok := s.timers[owner]; ok {
		timer.Stop()
		delete(s.timers, owner)
	}
}

func (s *Saver) fire(owner string) {
	s.mu.Lock()
	cart, ok := s.pending[owner]
	if ok {
		delete(s.pending, owner)
	}
	delete(s.timers, owner)
	s.mu.Unlock()

	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.storage.Put(ctx, cart); err != nil {
		// The draft stays in memory-of-last-resort: put it back so the
		// next mutation or flush retries the write.
		s.logger.WithError(err).WithField("owner", owner).Error("debounced save failed")
		s.mu.Lock()
		if _, exists := s.pending[owner]; !exists {
			s.pending[owner] = cart
			s.schedule(owner)
		}
		s.mu.Unlock()
	}
}
