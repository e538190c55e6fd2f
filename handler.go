package subscriber

import (
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"meow.tf/websub/subscriber/model"
	"meow.tf/websub/subscriber/store"
)

// ServeHTTP lets this client be used as a handler for HTTP servers. Requests
// carrying a hub.mode query parameter are intent verifications, a POST
// without one is a content delivery.
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v, err := url.ParseQuery(r.URL.RawQuery)

	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	requestURL := c.callbackBaseURL() + r.RequestURI

	if idx := strings.Index(requestURL, "?"); idx != -1 {
		requestURL = requestURL[0:idx]
	}

	mode := v.Get("hub.mode")

	if mode != "" {
		res, err := c.VerifySubscription(mode, v.Get("hub.topic"), requestURL, v)

		if err != nil {
			// Refusals must not echo the challenge.
			if errors.Is(err, ErrNoChallenge) || errors.Is(err, ErrInvalidLease) {
				w.WriteHeader(http.StatusBadRequest)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}

			return
		}

		if res != nil {
			w.Write(res)
		}

		return
	}

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	c.serveContent(w, r, requestURL)
}

// VerifySubscription handles a hub's intent verification for the given mode.
// On acceptance it returns the challenge to echo back; any error means the
// request must be refused with a non-2xx status. It is exported so hosts
// routing callbacks themselves can drive verification directly.
func (c *Client) VerifySubscription(mode, topic, requestURL string, v url.Values) ([]byte, error) {
	switch mode {
	case model.ModeSubscribe:
		challenge := v.Get("hub.challenge")

		if challenge == "" {
			return nil, ErrNoChallenge
		}

		sub := c.takePending(&c.pendingSubscribes, topic, requestURL)

		if sub == nil {
			return nil, store.ErrNotFound
		}

		if ls := v.Get("hub.lease_seconds"); ls != "" {
			leaseSeconds, err := strconv.Atoi(ls)

			if err != nil {
				return nil, ErrInvalidLease
			}

			sub.LeaseTime = time.Duration(leaseSeconds) * time.Second
			sub.Expires = time.Now().Add(sub.LeaseTime)
		}

		if err := c.store.Add(*sub); err != nil {
			return nil, err
		}

		if c.onVerified != nil {
			c.onVerified(Verified{Mode: mode, Subscription: *sub})
		}

		return []byte(challenge), nil
	case model.ModeUnsubscribe:
		challenge := v.Get("hub.challenge")

		if challenge == "" {
			return nil, ErrNoChallenge
		}

		sub := c.takePending(&c.pendingUnsubscribes, topic, requestURL)

		if sub == nil {
			return nil, store.ErrNotFound
		}

		if err := c.store.Remove(*sub); err != nil {
			return nil, err
		}

		if c.onVerified != nil {
			c.onVerified(Verified{Mode: mode, Subscription: *sub})
		}

		return []byte(challenge), nil
	case model.ModeDenied:
		sub := c.takePending(&c.pendingSubscribes, topic, requestURL)

		if sub == nil {
			return nil, store.ErrNotFound
		}

		// A denied subscription may never have reached the store; only real
		// store failures are worth noting. The hub still gets its 200.
		if err := c.store.Remove(*sub); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Println("websub: removing denied subscription:", err)
		}

		if c.onDenied != nil {
			c.onDenied(Denied{Subscription: *sub, Reason: v.Get("hub.reason")})
		}

		return nil, nil
	}

	return nil, store.ErrNotFound
}

// takePending removes and returns the pending subscription matching topic
// and callback, or nil if none exists.
func (c *Client) takePending(list *[]model.Subscription, topic, callback string) *model.Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range *list {
		if s.Topic == topic && s.Callback == callback {
			*list = removePending(*list, i)
			return &s
		}
	}

	return nil
}

// normalizeRequest builds the request-scoped view of an inbound callback.
// It lives only until the response is written.
func normalizeRequest(r *http.Request, v url.Values, body []byte) *model.IncomingRequest {
	leaseSeconds, _ := strconv.Atoi(v.Get("hub.lease_seconds"))

	return &model.IncomingRequest{
		Mode:         v.Get("hub.mode"),
		Topic:        v.Get("hub.topic"),
		Challenge:    v.Get("hub.challenge"),
		LeaseSeconds: leaseSeconds,
		Reason:       v.Get("hub.reason"),
		ContentType:  r.Header.Get("Content-Type"),
		Headers:      r.Header,
		Body:         body,
	}
}

// serveContent verifies and dispatches a content delivery.
func (c *Client) serveContent(w http.ResponseWriter, r *http.Request, requestURL string) {
	subs, err := c.store.For(requestURL)

	if err != nil || len(subs) < 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	sub := subs[0]

	b, err := io.ReadAll(r.Body)

	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if !ValidateSignature(b, sub.Secret, r.Header.Get(signatureHeader)) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if c.onPublish != nil {
		c.onPublish(Publish{
			Subscription: sub,
			ContentType:  r.Header.Get("Content-Type"),
			Data:         b,
		})
	}

	if c.content == nil {
		return
	}

	req := normalizeRequest(r, r.URL.Query(), b)
	req.Topic = sub.Topic

	ack, err := c.content.HandleContent(req, sub)

	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeAcknowledgement(w, ack)
}

// writeAcknowledgement renders a content handler's acknowledgement: the body
// pairs form-url-encoded, then any additional single or multi-valued
// headers.
func writeAcknowledgement(w http.ResponseWriter, ack *model.Acknowledgement) {
	if ack == nil {
		return
	}

	var body string

	if len(ack.Body) > 0 {
		values := url.Values{}

		for k, v := range ack.Body {
			values.Set(k, v)
		}

		body = values.Encode()

		w.Header().Set("Content-Type", formContentType)
	}

	for key, headerValues := range ack.Headers {
		for _, value := range headerValues {
			w.Header().Add(key, value)
		}
	}

	if ack.StatusCode != 0 {
		w.WriteHeader(ack.StatusCode)
	}

	if body != "" {
		w.Write([]byte(body))
	}
}
