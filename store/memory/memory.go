package memory

import (
	"sync"

	"meow.tf/websub/subscriber/model"
	"meow.tf/websub/subscriber/store"
)

// Store is an in-memory subscription store: a map of topic to a map of
// callback URL to subscription, guarded by a mutex.
type Store struct {
	mu            sync.Mutex
	subscriptions map[string]map[string]model.Subscription
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{subscriptions: make(map[string]map[string]model.Subscription)}
}

func (s *Store) Add(sub model.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscriptions[sub.Topic]; !ok {
		s.subscriptions[sub.Topic] = make(map[string]model.Subscription)
	}

	s.subscriptions[sub.Topic][sub.Callback] = sub

	return nil
}

func (s *Store) Get(topic, callback string) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if callbacks, ok := s.subscriptions[topic]; ok {
		if sub, ok := callbacks[callback]; ok {
			return &sub, nil
		}
	}

	return nil, store.ErrNotFound
}

func (s *Store) For(callback string) ([]model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subs []model.Subscription

	for _, callbacks := range s.subscriptions {
		if sub, ok := callbacks[callback]; ok {
			subs = append(subs, sub)
		}
	}

	return subs, nil
}

func (s *Store) Remove(sub model.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	callbacks, ok := s.subscriptions[sub.Topic]

	if !ok {
		return store.ErrNotFound
	}

	if _, ok = callbacks[sub.Callback]; !ok {
		return store.ErrNotFound
	}

	delete(callbacks, sub.Callback)

	if len(callbacks) == 0 {
		delete(s.subscriptions, sub.Topic)
	}

	return nil
}

// Sweep removes subscriptions whose lease has expired and returns how many
// were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for topic, callbacks := range s.subscriptions {
		for callback, sub := range callbacks {
			if sub.Expired() {
				delete(callbacks, callback)
				removed++
			}
		}

		if len(callbacks) == 0 {
			delete(s.subscriptions, topic)
		}
	}

	return removed
}
