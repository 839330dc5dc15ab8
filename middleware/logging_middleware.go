package middleware

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"ckb-rpc/message"
)

// Logging logs every round trip at debug level and failures at warn level.
func Logging(logger logrus.FieldLogger) Middleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, url string, req *message.Request) ([]byte, error) {
			start := time.Now()
			body, err := next(ctx, url, req)
			entry := logger.WithFields(logrus.Fields{
				"method":   req.Method,
				"id":       req.ID,
				"url":      url,
				"duration": time.Since(start),
			})
			if err != nil {
				entry.WithError(err).Warn("rpc round trip failed")
			} else {
				entry.Debug("rpc round trip")
			}
			return body, err
		}
	}
}
