package subscriber

import "meow.tf/websub/subscriber/model"

// Verified is fired when a hub confirms intent for a subscribe or
// unsubscribe request.
type Verified struct {
	Mode         string
	Subscription model.Subscription
}

// Denied is fired when a hub denies a subscription.
type Denied struct {
	Subscription model.Subscription
	Reason       string
}

// Publish carries a verified content notification.
type Publish struct {
	Subscription model.Subscription
	ContentType  string
	Data         []byte
}

// ContentHandler receives verified content notifications and shapes the
// response returned to the hub. Returning a nil acknowledgement produces an
// empty 200; returning an error rejects the delivery with a 500.
type ContentHandler interface {
	HandleContent(req *model.IncomingRequest, sub model.Subscription) (*model.Acknowledgement, error)
}

// ContentHandlerFunc adapts a function to the ContentHandler interface.
type ContentHandlerFunc func(req *model.IncomingRequest, sub model.Subscription) (*model.Acknowledgement, error)

func (f ContentHandlerFunc) HandleContent(req *model.IncomingRequest, sub model.Subscription) (*model.Acknowledgement, error) {
	return f(req, sub)
}
