package middleware

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"ckb-rpc/message"
)

var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimit is a token bucket limiter. Calls over the limit fail with ErrRateLimited without reaching the node.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, url string, req *message.Request) ([]byte, error) {
			if !limiter.Allow() {
				return nil, errors.Wrapf(ErrRateLimited, "%s", req.Method)
			}
			return next(ctx, url, req)
		}
	}
}
