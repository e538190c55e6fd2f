package model

import "net/http"

// IncomingRequest is the normalized view of a request the hub sends to the
// callback endpoint, either an intent verification or a content delivery.
// Built fresh per inbound request and discarded once the response is written.
type IncomingRequest struct {
	Mode         string
	Topic        string
	Challenge    string
	LeaseSeconds int
	Reason       string
	ContentType  string
	Headers      http.Header
	Body         []byte
}

// Acknowledgement is returned by a content handler to shape the HTTP response
// sent back to the hub. Body pairs are form-url-encoded; Headers may carry
// single or multi-valued entries and are written after Content-Type.
type Acknowledgement struct {
	StatusCode int
	Body       map[string]string
	Headers    http.Header
}
