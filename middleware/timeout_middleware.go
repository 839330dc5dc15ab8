package middleware

import (
	"context"
	"time"

	"ckb-rpc/message"
)

// Timeout bounds the round trip with a context deadline. The transport decides
// what to do with it; HTTPTransport aborts the request.
func Timeout(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, url string, req *message.Request) ([]byte, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, url, req)
		}
	}
}
