// Package message defines the JSON-RPC 2.0 envelopes exchanged with a CKB node.
//
// Request is what the client POSTs; Response is what comes back. The response
// keeps id and result as raw JSON so that the caller can tell an absent
// result apart from an explicit null one.
package message

import (
	"encoding/json"
	"fmt"
)

// Request is the envelope sent for every call.
//
//	{"id": 4213, "method": "get_tip_block_number", "params": [], "jsonrpc": "2.0"}
type Request struct {
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	JSONRPC string `json:"jsonrpc"`
}

// Response is the envelope returned by the node.
//
//   - Result is nil when the field is missing, and "null" when the node sent null.
//   - Error is only set by nodes reporting a failed call.
type Response struct {
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	JSONRPC string          `json:"jsonrpc,omitempty"`
}

// HasResult reports whether the result field was present on the wire.
func (r *Response) HasResult() bool {
	return r.Result != nil
}

// RPCError is the error object of a JSON-RPC response.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("rpc error %d: %s (data: %s)", e.Code, e.Message, string(e.Data))
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC 2.0 error codes, used by the stub node.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)
