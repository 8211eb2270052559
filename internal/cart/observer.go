package cart

import (
	"sync"

	"github.com/Skotchmaster/rocketshoes/internal/models"
)

type observer struct {
	id int
	fn func(models.Cart)
}

// Subscribe registers fn to receive every cart published after a successful
// mutation. fn runs while the mutation still holds the store, so it must not
// block and must not call back into the store. The returned func removes the
// subscription and may be called more than once.
func (s *Store) Subscribe(fn func(models.Cart)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, o := range s.observers {
				if o.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// publish calls observers in subscription order outside the state lock.
func (s *Store) publish(c models.Cart) {
	s.mu.RLock()
	observers := make([]observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	for _, o := range observers {
		o.fn(c.Clone())
	}
}
