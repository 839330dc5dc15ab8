// Package protocol implements the JSON-RPC 2.0 rules the client relies on.
//
// A call is a single request/response transaction over its own HTTP round trip:
//
//	client ──POST {"id":4213,"method":...,"params":[...],"jsonrpc":"2.0"}──→ node
//	client ←────────────── {"id":4213,"result":...} ─────────────────────── node
//
// The id is only a best-effort correlation value. The transport already pairs
// each response with its request, so no pending-call table is kept; the id is
// echoed back and checked to catch misbehaving nodes and proxies.
package protocol

import (
	"bytes"
	"encoding/json"
	"math/big"
	"math/rand"
	"sync/atomic"

	"github.com/pkg/errors"

	"ckb-rpc/message"
)

const (
	// Version is the value of the "jsonrpc" member of every request.
	Version = "2.0"
	// MaxID bounds the random correlation ids: ids are drawn from [0, MaxID).
	MaxID = 10000
)

var (
	// ErrIDMismatch is returned when the response id differs from the request id.
	ErrIDMismatch = errors.New("JSONRPC id not match")
	// ErrNoResult is returned when the response carries no result member.
	ErrNoResult = errors.New("No Result")
)

// IDGenerator produces the correlation id of the next request.
// Implementations must be safe for concurrent use.
type IDGenerator func() int

// RandomID draws an id uniformly from [0, MaxID). Two concurrent calls collide
// with probability 1/MaxID, which is accepted since ids are never used for routing.
func RandomID() int {
	return rand.Intn(MaxID)
}

// Sequential returns a generator counting up from start. It widens the id space
// beyond MaxID and is meant for deployments that log or correlate ids outside
// the client.
func Sequential(start int) IDGenerator {
	var next atomic.Int64
	next.Store(int64(start))
	return func() int {
		return int(next.Add(1) - 1)
	}
}

// NewRequest builds the request envelope. A nil params slice is sent as [].
func NewRequest(id int, method string, params []any) *message.Request {
	if params == nil {
		params = []any{}
	}
	return &message.Request{
		ID:      id,
		Method:  method,
		Params:  params,
		JSONRPC: Version,
	}
}

// CheckID verifies that the response echoes the request id. Ids compare as
// numbers, so 42, 42.0 and 4.2e1 all match a request id of 42. An id that is
// not a JSON number counts as a mismatch.
func CheckID(id int, resp *message.Response) error {
	if len(resp.ID) == 0 {
		return ErrIDMismatch
	}
	dec := json.NewDecoder(bytes.NewReader(resp.ID))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ErrIDMismatch
	}
	num, ok := v.(json.Number)
	if !ok {
		return ErrIDMismatch
	}
	got, ok := new(big.Rat).SetString(num.String())
	if !ok || got.Cmp(new(big.Rat).SetInt64(int64(id))) != 0 {
		return ErrIDMismatch
	}
	return nil
}

// CheckResult verifies that the response carries a result. A response with an
// error member and no result fails with *NoResultError, which still matches
// ErrNoResult under errors.Is.
func CheckResult(resp *message.Response) error {
	if resp.HasResult() {
		return nil
	}
	if resp.Error != nil {
		return &NoResultError{RPC: resp.Error}
	}
	return ErrNoResult
}

// NoResultError carries the node-reported error of a response without result.
type NoResultError struct {
	RPC *message.RPCError
}

func (e *NoResultError) Error() string {
	return ErrNoResult.Error() + ": " + e.RPC.Error()
}

// Unwrap exposes both ErrNoResult and the *message.RPCError.
func (e *NoResultError) Unwrap() []error {
	return []error{ErrNoResult, e.RPC}
}
