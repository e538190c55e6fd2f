package model

import "time"

// Subscription modes defined by https://www.w3.org/TR/websub/
const (
	ModeSubscribe   = "subscribe"
	ModeUnsubscribe = "unsubscribe"
	ModeDenied      = "denied"
)

// TopicReference is a statically configured (hub, topic) pair. When set, the
// client can skip discovery entirely.
type TopicReference struct {
	Hub   string `validate:"required,url"`
	Topic string `validate:"required,url"`
}

// SubscriptionRequest is the form body sent to a hub for both subscribe and
// unsubscribe requests. Built per attempt, never persisted.
type SubscriptionRequest struct {
	Mode         string `form:"hub.mode" validate:"required,oneof=subscribe unsubscribe"`
	Topic        string `form:"hub.topic" validate:"required,url"`
	Callback     string `form:"hub.callback" validate:"required,url"`
	LeaseSeconds int    `form:"hub.lease_seconds" validate:"omitempty,gt=0"`
	Secret       string `form:"hub.secret"`
}

// SubscriptionResponse is the hub's synchronous answer to a subscription
// request. Pending means the hub accepted the request for asynchronous intent
// verification and will call back.
type SubscriptionResponse struct {
	Hub     string
	Topic   string
	Pending bool
}

// Subscription is a callback registration tracked by the store. Expires is
// set once the hub verifies intent and reports the granted lease.
type Subscription struct {
	Topic     string
	Callback  string
	Secret    string
	LeaseTime time.Duration
	Expires   time.Time
}

// Expired reports whether the granted lease has lapsed. Subscriptions that
// were never verified (zero Expires) are not considered expired.
func (s *Subscription) Expired() bool {
	return !s.Expires.IsZero() && s.Expires.Before(time.Now())
}
