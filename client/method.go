package client

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"ckb-rpc/message"
	"ckb-rpc/protocol"
)

// FormatError reports a formatter that rejected its input. Index is the
// argument position, or -1 for the result formatter.
type FormatError struct {
	Method string
	Index  int
	Err    error
}

func (e *FormatError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("client: %s: format result: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("client: %s: format param %d: %v", e.Method, e.Index, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Method is one bound remote method. It is safe for concurrent use; calls
// share nothing but the client's node and debug level.
type Method struct {
	desc  Descriptor
	state *state
}

// Descriptor returns the descriptor the method was bound from.
func (m *Method) Descriptor() Descriptor {
	return m.desc
}

// Call performs one round trip: format params, post the envelope to the node
// URL current at this moment, validate the response, format the result.
//
// Transport failures are returned unchanged. A response with another id fails
// with protocol.ErrIDMismatch; one without result fails with protocol.ErrNoResult.
func (m *Method) Call(ctx context.Context, args ...any) (any, error) {
	params, err := m.formatParams(args)
	if err != nil {
		return nil, err
	}

	req := protocol.NewRequest(m.state.nextID(), m.desc.WireMethod, params)
	url := m.state.node.Load().URL

	body, err := m.state.handler(ctx, url, req)
	if err != nil {
		return nil, err
	}

	var resp message.Response
	if err := m.state.codec.Decode(body, &resp); err != nil {
		return nil, errors.Wrapf(err, "client: %s: decode response", m.desc.Name)
	}
	if err := protocol.CheckID(req.ID, &resp); err != nil {
		return nil, err
	}
	if m.state.debug.Load() == int32(DebugOn) {
		m.trace(req, body)
	}
	if err := protocol.CheckResult(&resp); err != nil {
		return nil, err
	}

	var result any
	if err := m.state.codec.Decode(resp.Result, &result); err != nil {
		return nil, errors.Wrapf(err, "client: %s: decode result", m.desc.Name)
	}
	if m.desc.ResultFormatter == nil {
		return result, nil
	}
	formatted, err := m.desc.ResultFormatter(result)
	if err != nil {
		return nil, &FormatError{Method: m.desc.Name, Index: -1, Err: err}
	}
	return formatted, nil
}

func (m *Method) formatParams(args []any) ([]any, error) {
	params := make([]any, len(args))
	for i, arg := range args {
		params[i] = arg
		if i >= len(m.desc.ParamFormatters) || m.desc.ParamFormatters[i] == nil {
			continue
		}
		v, err := m.desc.ParamFormatters[i](arg)
		if err != nil {
			return nil, &FormatError{Method: m.desc.Name, Index: i, Err: err}
		}
		if v != nil {
			params[i] = v
		}
	}
	return params, nil
}

// trace must never change the outcome of the call.
func (m *Method) trace(req *message.Request, resp []byte) {
	defer func() {
		if r := recover(); r != nil {
			m.state.logger.WithField("method", m.desc.Name).Warnf("client: tracer panicked: %v", r)
		}
	}()
	m.state.tracer.Trace(m.desc.Name, req, resp)
}
