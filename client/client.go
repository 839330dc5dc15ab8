// Package client builds a typed JSON-RPC client from a table of method descriptors.
//
// New binds one *Method per Descriptor. All bound methods share the client's
// node reference and debug level, and nothing else:
//
//	registry ──New──→ Client{ "getTipBlockNumber": *Method, "getBlock": *Method, ... }
//	                     │
//	                     └── state: node URL, debug level, transport, tracer
//
// The node and debug level are atomics owned by each Client, so clients talking
// to different nodes coexist in one process.
package client

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"ckb-rpc/codec"
	"ckb-rpc/message"
	"ckb-rpc/middleware"
	"ckb-rpc/protocol"
	"ckb-rpc/transport"
)

// ErrUnknownMethod is returned by Client.Call for a name that is not bound.
var ErrUnknownMethod = errors.New("client: unknown method")

// Node is the remote endpoint calls are sent to.
type Node struct {
	URL string `json:"url" yaml:"url"`
}

// DebugLevel switches request/response tracing.
type DebugLevel int32

const (
	DebugOff DebugLevel = iota
	DebugOn
)

func (l DebugLevel) String() string {
	if l == DebugOn {
		return "on"
	}
	return "off"
}

// state is shared by the client and every method bound from it.
type state struct {
	node      atomic.Pointer[Node]
	debug     atomic.Int32
	codec     codec.Codec
	transport transport.Transport
	tracer    Tracer
	nextID    protocol.IDGenerator
	handler   middleware.HandlerFunc
	logger    logrus.FieldLogger
}

// Client is the composite of all bound methods.
type Client struct {
	state   *state
	methods map[string]*Method
	order   []*Method
}

// New binds every descriptor of registry, in order, against the node at url.
// A registry with an empty or duplicate name or wire method fails with *ConfigError.
func New(url string, registry []Descriptor, opts ...Option) (*Client, error) {
	if err := validateRegistry(registry); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	s := &state{
		codec:     o.codec,
		transport: o.transport,
		tracer:    o.tracer,
		nextID:    o.nextID,
		logger:    o.logger,
	}
	s.node.Store(&Node{URL: url})
	s.handler = middleware.Chain(o.middlewares...)(s.post)

	c := &Client{
		state:   s,
		methods: make(map[string]*Method, len(registry)),
		order:   make([]*Method, 0, len(registry)),
	}
	for _, d := range registry {
		d.ParamFormatters = append([]ParamFormatter(nil), d.ParamFormatters...)
		m := &Method{desc: d, state: s}
		c.methods[d.Name] = m
		c.order = append(c.order, m)
	}
	return c, nil
}

// post is the innermost handler: encode the envelope and hand it to the transport.
func (s *state) post(ctx context.Context, url string, req *message.Request) ([]byte, error) {
	body, err := s.codec.Encode(req)
	if err != nil {
		return nil, errors.Wrapf(err, "client: encode %s request", req.Method)
	}
	header := make(http.Header)
	header.Set("Content-Type", s.codec.ContentType())
	return s.transport.Post(ctx, url, header, body)
}

// Method returns the method bound under name.
func (c *Client) Method(name string) (*Method, bool) {
	m, ok := c.methods[name]
	return m, ok
}

// Call invokes the method bound under name.
func (c *Client) Call(ctx context.Context, name string, args ...any) (any, error) {
	m, ok := c.methods[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownMethod, name)
	}
	return m.Call(ctx, args...)
}

// Methods returns the bound descriptors in registry order.
func (c *Client) Methods() []Descriptor {
	out := make([]Descriptor, len(c.order))
	for i, m := range c.order {
		out[i] = m.desc
	}
	return out
}

// Len returns the number of bound methods.
func (c *Client) Len() int {
	return len(c.order)
}

// Node returns the current endpoint.
func (c *Client) Node() Node {
	return *c.state.node.Load()
}

// SetNode replaces the endpoint. Calls that already read the URL keep using the old one.
func (c *Client) SetNode(node Node) {
	c.state.node.Store(&node)
}

func (c *Client) DebugLevel() DebugLevel {
	return DebugLevel(c.state.debug.Load())
}

func (c *Client) SetDebugLevel(level DebugLevel) {
	c.state.debug.Store(int32(level))
}
