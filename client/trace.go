package client

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"ckb-rpc/codec"
	"ckb-rpc/message"
)

// Tracer receives the request and the raw response of every call made while
// the debug level is on. It is not called at all when the level is off.
type Tracer interface {
	Trace(name string, req *message.Request, resp []byte)
}

// ConsoleTracer prints a request block and a response block per call, with
// cyan headers and indented JSON bodies.
type ConsoleTracer struct {
	mu     sync.Mutex
	out    io.Writer
	header *color.Color
}

// NewConsoleTracer writes to w, or to the colour-aware stdout when w is nil.
func NewConsoleTracer(w io.Writer) *ConsoleTracer {
	if w == nil {
		w = color.Output
	}
	return &ConsoleTracer{out: w, header: color.New(color.FgCyan)}
}

func (t *ConsoleTracer) Trace(name string, req *message.Request, resp []byte) {
	reqBody, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		reqBody = []byte(fmt.Sprintf("%+v", req))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = t.header.Fprintf(t.out, "\n----- %s request -----\n", name)
	_, _ = fmt.Fprintln(t.out, string(reqBody))
	_, _ = t.header.Fprintf(t.out, "----- %s response -----\n", name)
	_, _ = fmt.Fprintln(t.out, codec.Indent(resp))
}
