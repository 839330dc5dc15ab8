package client

import (
	"github.com/sirupsen/logrus"

	"ckb-rpc/codec"
	"ckb-rpc/middleware"
	"ckb-rpc/protocol"
	"ckb-rpc/transport"
)

type options struct {
	codec       codec.Codec
	transport   transport.Transport
	tracer      Tracer
	nextID      protocol.IDGenerator
	middlewares []middleware.Middleware
	logger      logrus.FieldLogger
}

func defaultOptions() *options {
	return &options{
		codec:     codec.Default,
		transport: transport.NewHTTPTransport(transport.DefaultTimeout),
		tracer:    NewConsoleTracer(nil),
		nextID:    protocol.RandomID,
		logger:    logrus.StandardLogger(),
	}
}

// Option customizes a Client built by New. Options given a nil value keep
// the default.
type Option func(*options)

func WithTransport(t transport.Transport) Option {
	return func(o *options) {
		if t != nil {
			o.transport = t
		}
	}
}

func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithTracer replaces the console tracer used when the debug level is on.
func WithTracer(t Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithIDGenerator replaces the random [0, 10000) correlation ids,
// e.g. with protocol.Sequential to make ids unique per client.
func WithIDGenerator(g protocol.IDGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.nextID = g
		}
	}
}

// WithMiddleware appends middlewares around the transport round trip.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(o *options) {
		for _, mw := range mws {
			if mw != nil {
				o.middlewares = append(o.middlewares, mw)
			}
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
