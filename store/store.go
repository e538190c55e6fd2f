package store

import (
	"errors"

	"meow.tf/websub/subscriber/model"
)

// ErrNotFound is returned when no subscription matches a lookup.
var ErrNotFound = errors.New("subscription not found")

// Store keeps track of the client's subscriptions, keyed by topic and
// callback URL. Implementations must be safe for concurrent use.
type Store interface {
	// Add inserts or replaces a subscription.
	Add(sub model.Subscription) error

	// Get returns the subscription for a topic/callback pair, or ErrNotFound.
	Get(topic, callback string) (*model.Subscription, error)

	// For returns all subscriptions registered under a callback URL.
	For(callback string) ([]model.Subscription, error)

	// Remove deletes a subscription matching the given topic and callback.
	Remove(sub model.Subscription) error
}
