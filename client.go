package subscriber

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"meow.tf/websub/subscriber/model"
	"meow.tf/websub/subscriber/store"
	"meow.tf/websub/subscriber/store/memory"
)

const (
	formTag         = "form"
	formContentType = "application/x-www-form-urlencoded"

	signatureHeader = "X-Hub-Signature"
)

// DefaultLease is the lease duration requested when none is configured.
var DefaultLease = 24 * time.Hour

// Option is an option type for defining client options
type Option func(c *Client)

// WithStore sets the Client's subscription store
func WithStore(s store.Store) Option {
	return func(c *Client) {
		c.store = s
	}
}

// WithCallbackBase sets the base callback url
func WithCallbackBase(base string) Option {
	return func(c *Client) {
		c.callbackBase = base
	}
}

// WithHTTPClient lets you override the client's http client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithLeaseDuration lets you override the default lease duration request
func WithLeaseDuration(duration time.Duration) Option {
	return func(c *Client) {
		c.leaseDuration = duration
	}
}

// WithAccept sets the media types sent as the Accept header on discovery
// requests. Multiple values are joined with ", ".
func WithAccept(mediaTypes ...string) Option {
	return func(c *Client) {
		c.accept = mediaTypes
	}
}

// WithAcceptLanguage sets the languages sent as the Accept-Language header on
// discovery requests. Multiple values are joined with ", ".
func WithAcceptLanguage(languages ...string) Option {
	return func(c *Client) {
		c.acceptLanguage = languages
	}
}

// WithContentDiscovery enables falling back to parsing the response body
// (HTML or feed XML) when a discovery response has no usable Link header.
func WithContentDiscovery(enabled bool) Option {
	return func(c *Client) {
		c.contentDiscovery = enabled
	}
}

// WithContentHandler sets the handler invoked with verified content
// notifications.
func WithContentHandler(h ContentHandler) Option {
	return func(c *Client) {
		c.content = h
	}
}

// WithVerifiedFunc registers a hook called when a hub verifies a
// subscription or unsubscription.
func WithVerifiedFunc(fn func(Verified)) Option {
	return func(c *Client) {
		c.onVerified = fn
	}
}

// WithDeniedFunc registers a hook called when a hub denies a subscription.
func WithDeniedFunc(fn func(Denied)) Option {
	return func(c *Client) {
		c.onDenied = fn
	}
}

// WithPublishFunc registers a hook called with each verified content
// notification, before the content handler runs.
func WithPublishFunc(fn func(Publish)) Option {
	return func(c *Client) {
		c.onPublish = fn
	}
}

// New creates a new client with the specified callback base url and options
func New(callbackBase string, options ...Option) *Client {
	c := &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		callbackBase:  callbackBase,
		leaseDuration: DefaultLease,
		validator:     validator.New(),
		store:         memory.New(),
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

// Client represents a websub subscriber client
type Client struct {
	client           *http.Client
	store            store.Store
	callbackBase     string
	leaseDuration    time.Duration
	validator        *validator.Validate
	accept           []string
	acceptLanguage   []string
	contentDiscovery bool
	content          ContentHandler
	onVerified       func(Verified)
	onDenied         func(Denied)
	onPublish        func(Publish)

	// mu guards the pending lists and callbackBase, which are shared by
	// Subscribe/Unsubscribe and the callback handler running on different
	// goroutines.
	mu                  sync.Mutex
	pendingSubscribes   []model.Subscription
	pendingUnsubscribes []model.Subscription
}

// callbackBaseURL reads the callback base under the client lock. Subscribe
// may set the base from the first explicit callback URL.
func (c *Client) callbackBaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.callbackBase
}

// SubscribeOptions are options sent to the hub for subscriptions
type SubscribeOptions struct {
	Hub      string
	Topic    string
	Callback string
	Secret   string
	Lease    time.Duration
}

// UnsubscribeOptions identify the subscription to cancel.
type UnsubscribeOptions struct {
	Hub      string
	Topic    string
	Callback string
}

// Subscribe sends a subscription request for a topic. When no hub is given,
// the topic URL is discovered first. The returned response reports whether
// the hub acknowledged immediately or will verify intent asynchronously.
func (c *Client) Subscribe(ctx context.Context, opts SubscribeOptions) (*model.SubscriptionResponse, error) {
	topicURL := opts.Topic
	hubURL := opts.Hub

	if hubURL == "" {
		res, err := c.Discover(ctx, opts.Topic)

		if err != nil {
			return nil, err
		}

		ref := res.Reference()
		topicURL, hubURL = ref.Topic, ref.Hub
	}

	base := c.callbackBaseURL()

	if opts.Callback == "" && base != "" {
		opts.Callback = base + "/" + callbackPath(topicURL)
	}

	u, err := url.Parse(opts.Callback)

	if err != nil {
		return nil, err
	}

	if base == "" {
		c.mu.Lock()

		if c.callbackBase == "" {
			c.callbackBase = u.Scheme + "://" + u.Host
		}

		c.mu.Unlock()
	}

	req := model.SubscriptionRequest{
		Mode:         model.ModeSubscribe,
		Topic:        topicURL,
		Callback:     opts.Callback,
		Secret:       opts.Secret,
		LeaseSeconds: int(c.leaseDuration / time.Second),
	}

	if opts.Lease > 0 {
		req.LeaseSeconds = int(opts.Lease / time.Second)
	}

	if err = c.validator.Struct(req); err != nil {
		return nil, err
	}

	// The subscription only enters the store once the hub verifies intent;
	// until then it exists solely as a pending entry.
	sub := model.Subscription{
		Topic:    topicURL,
		Callback: opts.Callback,
		Secret:   opts.Secret,
	}

	c.mu.Lock()
	c.pendingSubscribes = append(c.pendingSubscribes, sub)
	c.mu.Unlock()

	res, err := c.sendRequest(ctx, hubURL, req)

	if err != nil {
		c.takePending(&c.pendingSubscribes, topicURL, opts.Callback)
		return nil, err
	}

	return res, nil
}

// Unsubscribe sends an unsubscription request to the hub. When no hub is
// given, the topic URL is discovered first.
func (c *Client) Unsubscribe(ctx context.Context, opts UnsubscribeOptions) (*model.SubscriptionResponse, error) {
	topicURL := opts.Topic
	hubURL := opts.Hub

	if hubURL == "" {
		res, err := c.Discover(ctx, opts.Topic)

		if err != nil {
			return nil, err
		}

		ref := res.Reference()
		topicURL, hubURL = ref.Topic, ref.Hub
	}

	sub, err := c.store.Get(topicURL, opts.Callback)

	if err != nil {
		return nil, err
	}

	req := model.SubscriptionRequest{
		Mode:     model.ModeUnsubscribe,
		Topic:    topicURL,
		Callback: opts.Callback,
	}

	if err = c.validator.Struct(req); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.pendingUnsubscribes = append(c.pendingUnsubscribes, *sub)
	c.mu.Unlock()

	res, err := c.sendRequest(ctx, hubURL, req)

	if err != nil {
		c.takePending(&c.pendingUnsubscribes, topicURL, opts.Callback)
		return nil, err
	}

	return res, nil
}

// sendRequest posts a form-encoded subscription request to the hub and
// interprets the synchronous answer. 202 and 404 mean the hub accepted the
// request pending intent verification; any other 2xx is an immediate
// acknowledgement, cross-checked against the response body when the hub
// echoes the topic.
func (c *Client) sendRequest(ctx context.Context, hubURL string, subReq model.SubscriptionRequest) (*model.SubscriptionResponse, error) {
	body := encodeForm(subReq)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hubURL, strings.NewReader(body))

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", formContentType)

	res, err := c.client.Do(req)

	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSubscriptionFailed, err)
	}

	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)

	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSubscriptionFailed, err)
	}

	switch {
	case res.StatusCode == http.StatusAccepted || res.StatusCode == http.StatusNotFound:
		return &model.SubscriptionResponse{Hub: hubURL, Topic: subReq.Topic, Pending: true}, nil
	case res.StatusCode >= 200 && res.StatusCode < 300:
		if values, parseErr := url.ParseQuery(string(b)); parseErr == nil {
			if echoed := values.Get("hub.topic"); echoed != "" && echoed != subReq.Topic {
				return nil, fmt.Errorf("%w: hub acknowledged topic %q, requested %q",
					ErrSubscriptionFailed, echoed, subReq.Topic)
			}
		}

		return &model.SubscriptionResponse{Hub: hubURL, Topic: subReq.Topic}, nil
	}

	return nil, fmt.Errorf("%w: unexpected response code %d: %s", ErrSubscriptionFailed, res.StatusCode, string(b))
}

// callbackPath derives a stable callback path segment from a topic URL.
func callbackPath(topicURL string) string {
	sum := sha256.Sum256([]byte(topicURL))
	return hex.EncodeToString(sum[:])
}
