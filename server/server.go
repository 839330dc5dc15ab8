// Package server implements a stub CKB node: an HTTP endpoint that speaks the
// same JSON-RPC 2.0 envelope as a real node, backed by Go handlers.
//
// Request processing pipeline:
//
//	POST / → gin middlewares (recovery, access log, user middlewares)
//	  → decode envelope → look up handler by wire method
//	    → HandlerFunc(ctx, params) → encode {"id","result"|"error"}
//
// It is what the client tests and `ckb-rpc serve` run against.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"ckb-rpc/codec"
	"ckb-rpc/message"
	"ckb-rpc/protocol"
	"ckb-rpc/registry"
)

// HandlerFunc serves one wire method. params holds the positional parameters
// as sent. Returning a *message.RPCError sends it as is; ErrInvalidParams
// maps to -32602 and any other error to -32603.
type HandlerFunc func(ctx context.Context, params []json.RawMessage) (any, error)

var ErrInvalidParams = errors.New("invalid params")

// Version is reported by the stub node, as node_info version and in the registry.
const Version = "0.20.0-stub"

// DefaultTTL is the lease, in seconds, of the node entry published by Serve.
const DefaultTTL = 10

type request struct {
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	JSONRPC string            `json:"jsonrpc"`
}

// Server is the stub node.
type Server struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc

	engine *gin.Engine
	route  sync.Once
	codec  codec.Codec
	logger logrus.FieldLogger

	httpServer   *http.Server
	registry     registry.Registry // nil when Serve was not given one
	network      string
	advertiseURL string
	ttl          int64
}

type Option func(*Server)

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithNetwork sets the network the node is published under. Default "dev".
func WithNetwork(network string) Option {
	return func(s *Server) {
		s.network = network
	}
}

// WithTTL sets the lease of the published node entry, in seconds.
func WithTTL(ttl int64) Option {
	return func(s *Server) {
		s.ttl = ttl
	}
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		handlers: make(map[string]HandlerFunc),
		codec:    codec.Default,
		logger:   logrus.StandardLogger(),
		network:  "dev",
		ttl:      DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), accessLog(s.logger))
	return s
}

// Handle binds h to a wire method, replacing any previous handler.
func (s *Server) Handle(method string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Register binds every exported method of rcvr with the signature
//
//	func(ctx context.Context, arg1 T1, ..., argN TN) (R, error)
//
// under its snake_case name: GetTipBlockNumber serves get_tip_block_number.
// It returns the bound wire methods.
func (s *Server) Register(rcvr any) ([]string, error) {
	svc, err := newService(rcvr)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(svc.methods))
	for _, m := range svc.methods {
		s.Handle(m.wireName, svc.handler(m))
		names = append(names, m.wireName)
	}
	return names, nil
}

// Methods returns the bound wire methods, sorted.
func (s *Server) Methods() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Use appends gin middlewares in front of the RPC endpoint. gin fixes a
// route's chain when the route is added, so Use must come before the first
// Handler or Serve call; later calls have no effect.
func (s *Server) Use(mws ...gin.HandlerFunc) {
	s.engine.Use(mws...)
}

// Handler exposes the node as an http.Handler, e.g. for httptest. The first
// call adds the RPC route.
func (s *Server) Handler() http.Handler {
	s.route.Do(func() {
		s.engine.POST("/", s.serveRPC)
	})
	return s.engine
}

// Serve listens on address and, when reg is not nil, publishes advertiseURL
// in it. advertiseURL differs from the listen address because ":8114" is not
// routable for other hosts. Serve returns nil after Shutdown.
func (s *Server) Serve(address, advertiseURL string, reg registry.Registry) error {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "server: listen %s", address)
	}
	return s.ServeListener(ln, advertiseURL, reg)
}

func (s *Server) ServeListener(ln net.Listener, advertiseURL string, reg registry.Registry) error {
	s.mu.Lock()
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	s.advertiseURL = advertiseURL
	s.registry = reg
	srv := s.httpServer
	s.mu.Unlock()

	if reg != nil {
		node := registry.NodeInstance{URL: advertiseURL, Weight: 1, Version: Version}
		if err := reg.Register(context.Background(), s.network, node, s.ttl); err != nil {
			ln.Close()
			return errors.Wrap(err, "server: register node")
		}
		s.logger.WithFields(logrus.Fields{"network": s.network, "url": advertiseURL}).Info("node registered")
	}

	s.logger.WithField("address", ln.Addr().String()).Info("stub node listening")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server: serve")
	}
	return nil
}

// Shutdown deregisters the node first, so clients stop picking it, then
// waits for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv, reg, advertiseURL := s.httpServer, s.registry, s.advertiseURL
	s.mu.RUnlock()

	if reg != nil {
		if err := reg.Deregister(ctx, s.network, advertiseURL); err != nil {
			s.logger.WithError(err).Warn("deregister node")
		}
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) serveRPC(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.reply(c, nil, nil, &message.RPCError{Code: message.CodeParseError, Message: "Parse error"})
		return
	}

	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		s.reply(c, nil, nil, &message.RPCError{Code: message.CodeParseError, Message: "Parse error"})
		return
	}
	if req.Method == "" || req.JSONRPC != protocol.Version {
		s.reply(c, req.ID, nil, &message.RPCError{Code: message.CodeInvalidRequest, Message: "Invalid request"})
		return
	}

	s.mu.RLock()
	h, ok := s.handlers[req.Method]
	s.mu.RUnlock()
	if !ok {
		s.reply(c, req.ID, nil, &message.RPCError{Code: message.CodeMethodNotFound, Message: "Method not found"})
		return
	}

	result, err := h(c.Request.Context(), req.Params)
	if err != nil {
		s.reply(c, req.ID, nil, toRPCError(err))
		return
	}
	s.reply(c, req.ID, result, nil)
}

func (s *Server) reply(c *gin.Context, id json.RawMessage, result any, rpcErr *message.RPCError) {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	resp := message.Response{ID: id, JSONRPC: protocol.Version, Error: rpcErr}
	if rpcErr == nil {
		raw, err := s.codec.Encode(result)
		if err != nil {
			resp.Error = &message.RPCError{Code: message.CodeInternalError, Message: err.Error()}
		} else {
			resp.Result = raw
		}
	}

	out, err := s.codec.Encode(&resp)
	if err != nil {
		s.logger.WithError(err).Error("encode response")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, s.codec.ContentType(), out)
}

func toRPCError(err error) *message.RPCError {
	var rpcErr *message.RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	if errors.Is(err, ErrInvalidParams) {
		return &message.RPCError{Code: message.CodeInvalidParams, Message: err.Error()}
	}
	return &message.RPCError{Code: message.CodeInternalError, Message: err.Error()}
}

// accessLog logs one entry per HTTP request.
func accessLog(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"status":    c.Writer.Status(),
			"path":      c.Request.URL.Path,
			"latency":   time.Since(start),
			"client_ip": c.ClientIP(),
		})
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("HTTP request")
		case c.Writer.Status() >= 400:
			entry.Warn("HTTP request")
		default:
			entry.Debug("HTTP request")
		}
	}
}
