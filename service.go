package subscriber

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ServiceConfig describes the subscription target for Initiate. Either a
// static hub/topic pair or a Target resource URL to discover against may be
// set; with neither, initiation is a no-op.
type ServiceConfig struct {
	// Target is a resource URL to run discovery against.
	Target string `validate:"omitempty,url"`

	// Hub and Topic, when both set, skip discovery entirely.
	Hub   string `validate:"omitempty,url"`
	Topic string `validate:"omitempty,url"`

	LeaseSeconds int `validate:"omitempty,gt=0"`
	Secret       string
}

// Initiate drives the startup subscription: optional discovery, then a
// subscribe request registering callbackURL with the hub.
//
// Discovery failures surface as ErrDiscoveryFailed and subscription failures
// as ErrInitiationFailed; neither is retried. The error is also logged, and
// whether a failure is fatal is the host's decision. Subscription is
// optional: a config with no target is logged and ignored.
func (c *Client) Initiate(ctx context.Context, cfg ServiceConfig, callbackURL string) error {
	if err := c.validator.Struct(cfg); err != nil {
		return err
	}

	opts := SubscribeOptions{
		Hub:      cfg.Hub,
		Topic:    cfg.Topic,
		Callback: callbackURL,
		Secret:   cfg.Secret,
		Lease:    time.Duration(cfg.LeaseSeconds) * time.Second,
	}

	switch {
	case cfg.Hub != "" && cfg.Topic != "":
	case cfg.Target != "":
		res, err := c.Discover(ctx, cfg.Target)

		if err != nil {
			err = fmt.Errorf("%w: %s: %s", ErrDiscoveryFailed, cfg.Target, err)
			log.Println("websub:", err)
			return err
		}

		opts.Hub, opts.Topic = res.Hub(), res.Topic
	default:
		log.Println("websub: no subscription target configured, skipping subscription")
		return nil
	}

	res, err := c.Subscribe(ctx, opts)

	if err != nil {
		err = fmt.Errorf("%w: topic %s: %s", ErrInitiationFailed, opts.Topic, err)
		log.Println("websub:", err)
		return err
	}

	if res.Pending {
		log.Println("websub: subscription accepted, awaiting intent verification for", res.Topic)
	} else {
		log.Println("websub: subscription acknowledged for", res.Topic)
	}

	return nil
}
