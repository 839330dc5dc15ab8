package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ckb-rpc/message"
)

// Metrics counts round trips by wire method and outcome and observes their latency.
// Registering twice on the same registerer reuses the existing collectors.
func Metrics(reg prometheus.Registerer) Middleware {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	calls := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ckb_rpc",
		Name:      "calls_total",
		Help:      "RPC round trips by method and outcome.",
	}, []string{"method", "outcome"})).(*prometheus.CounterVec)
	latency := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ckb_rpc",
		Name:      "call_duration_seconds",
		Help:      "RPC round trip latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})).(*prometheus.HistogramVec)

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, url string, req *message.Request) ([]byte, error) {
			start := time.Now()
			body, err := next(ctx, url, req)
			latency.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			calls.WithLabelValues(req.Method, outcome).Inc()
			return body, err
		}
	}
}

func register(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}
