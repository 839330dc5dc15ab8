// Package middleware wraps the transport round trip of a call.
//
// A HandlerFunc receives the node URL chosen for the call and the request
// envelope, and returns the raw response body. Middlewares see the envelope
// before it is encoded, so they can log or label by method and id.
package middleware

import (
	"context"

	"ckb-rpc/message"
)

type HandlerFunc func(ctx context.Context, url string, req *message.Request) ([]byte, error)

type Middleware func(next HandlerFunc) HandlerFunc

// Chain(A, B)(h) runs A, then B, then h.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
