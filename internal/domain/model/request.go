package model

import (
	"net/http"
	"net/url"
)

// Request describes one outbound call to the remote service. It carries no
// credential: the token is attached each time the request is sent, so a
// retried request picks up a refreshed token.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded when non-nil.
	Body any
	// Lang sets accept-language for locale-sensitive operations.
	Lang string
}

// Response is the raw upstream reply.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Unauthorized reports an authentication rejection.
func (r *Response) Unauthorized() bool {
	return r.StatusCode == http.StatusUnauthorized
}

// OrderDateLayout is the upstream order-history date format (DD/MM/YYYY).
const OrderDateLayout = "02/01/2006"

// Menu lookup defaults.
const (
	DefaultOrderType       = 1
	DefaultElementTypeDeep = 16
)

// MenuQuery identifies the restaurant menu to fetch. Company and address ids
// are resolved from the profile.
type MenuQuery struct {
	RestaurantID    int64
	Lang            string
	OrderType       int
	ElementTypeDeep int
}
