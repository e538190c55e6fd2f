package subscriber

import "errors"

var (
	// ErrContentNegotiation is returned when the topic server answers a
	// discovery request with 406 Not Acceptable.
	ErrContentNegotiation = errors.New("content negotiation failed")

	// ErrNoLinkHeader is returned when a discovery response carries no Link
	// header at all.
	ErrNoLinkHeader = errors.New("no link header in response")

	// ErrDuplicateSelf is returned when a discovery response advertises more
	// than one rel="self" link.
	ErrDuplicateSelf = errors.New("duplicate self link")

	// ErrIncompleteDiscovery is returned when discovery finds links but not
	// at least one hub and exactly one self.
	ErrIncompleteDiscovery = errors.New("incomplete discovery")

	// ErrDiscoveryFailed wraps any discovery failure surfaced by Initiate.
	ErrDiscoveryFailed = errors.New("resource discovery failed")

	// ErrSubscriptionFailed wraps a hub's rejection of a subscribe or
	// unsubscribe request, or the transport error that prevented it.
	ErrSubscriptionFailed = errors.New("subscription request failed")

	// ErrInitiationFailed wraps a subscription failure surfaced by Initiate.
	ErrInitiationFailed = errors.New("subscription initiation failed")

	ErrNoChallenge  = errors.New("no challenge specified")
	ErrInvalidLease = errors.New("invalid lease duration")
)
