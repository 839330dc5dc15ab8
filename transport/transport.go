// Package transport implements the single network boundary of the client: one
// POST of a JSON body to a node URL, returning the JSON body of the reply.
//
//	Method.Call ──→ middleware chain ──→ Transport.Post(url, header, body) ──→ node
//
// Anything satisfying Transport can replace the HTTP implementation, which is
// how tests stub a node without opening sockets.
package transport

import (
	"context"
	"net/http"
)

//go:generate mockgen -source=transport.go -destination=mock/transport_mock.go -package=mock

// Transport performs one request/response round trip.
type Transport interface {
	// Post sends body to url with the given header and returns the reply body.
	// Failures are returned as is to the caller of the RPC method.
	Post(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error)
}

// Func adapts an ordinary function to the Transport interface.
type Func func(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error)

func (f Func) Post(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error) {
	return f(ctx, url, header, body)
}
