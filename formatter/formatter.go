// Package formatter holds the value converters plugged into method descriptors.
//
// Parameter formatters turn Go values into the hex strings a CKB node expects;
// result formatters turn raw results back into Go values. Results arrive as
// decoded JSON (maps, slices, strings, json.Number).
package formatter

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// MaxPageSize is the largest page a node serves for paginated index queries.
const MaxPageSize = 50

// HashLength is the byte length of block, transaction and script hashes.
const HashLength = 32

// ToNumber encodes an integer as a 0x-prefixed hex quantity. It accepts Go
// integers, *big.Int, json.Number, and decimal or 0x-hex strings.
func ToNumber(v any) (any, error) {
	n, err := toBig(v)
	if err != nil {
		return nil, err
	}
	return hexutil.EncodeBig(n), nil
}

// ToPageNumber encodes a page index.
func ToPageNumber(v any) (any, error) {
	return ToNumber(v)
}

// ToPageSize encodes a page size, rejecting sizes above MaxPageSize.
func ToPageSize(v any) (any, error) {
	n, err := toBig(v)
	if err != nil {
		return nil, err
	}
	if n.Cmp(big.NewInt(MaxPageSize)) > 0 {
		return nil, errors.Errorf("page size %s exceeds %d", n, MaxPageSize)
	}
	return hexutil.EncodeBig(n), nil
}

// ToReverseOrder accepts a bool or its string form.
func ToReverseOrder(v any) (any, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return nil, errors.Wrap(err, "reverse order")
		}
		return parsed, nil
	default:
		return nil, errors.Errorf("reverse order: unsupported type %T", v)
	}
}

// ToHash normalizes a 32-byte hash to lower-case 0x-prefixed hex.
func ToHash(v any) (any, error) {
	var s string
	switch h := v.(type) {
	case string:
		s = h
	case [HashLength]byte:
		return hexutil.Encode(h[:]), nil
	case []byte:
		if len(h) != HashLength {
			return nil, errors.Errorf("hash must be %d bytes, got %d", HashLength, len(h))
		}
		return hexutil.Encode(h), nil
	default:
		return nil, errors.Errorf("hash: unsupported type %T", v)
	}

	s = strings.ToLower(s)
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hash %q", s)
	}
	if len(raw) != HashLength {
		return nil, errors.Errorf("hash must be %d bytes, got %d", HashLength, len(raw))
	}
	return s, nil
}

// HexToNumber decodes a hex quantity into a uint64.
func HexToNumber(v any) (any, error) {
	switch n := v.(type) {
	case string:
		out, err := hexutil.DecodeUint64(n)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid quantity %q", n)
		}
		return out, nil
	case json.Number:
		out, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid quantity %s", n)
		}
		return out, nil
	default:
		return nil, errors.Errorf("quantity: unsupported type %T", v)
	}
}

// Into converts a decoded result into T through its JSON form, so T's json
// tags drive the shape conversion. Use pointer or slice types for T.
func Into[T any](v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "re-encode result")
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrapf(err, "convert result to %T", out)
	}
	return out, nil
}

func toBig(v any) (*big.Int, error) {
	switch n := v.(type) {
	case int:
		return fromInt64(int64(n))
	case int8:
		return fromInt64(int64(n))
	case int16:
		return fromInt64(int64(n))
	case int32:
		return fromInt64(int64(n))
	case int64:
		return fromInt64(n)
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case float64:
		if n < 0 || n != math.Trunc(n) || n > math.MaxUint64 {
			return nil, errors.Errorf("number %v is not a non-negative integer", n)
		}
		b, _ := big.NewFloat(n).Int(nil)
		return b, nil
	case *big.Int:
		if n == nil || n.Sign() < 0 {
			return nil, errors.New("number must be non-negative")
		}
		return n, nil
	case json.Number:
		return parseBig(n.String())
	case string:
		return parseBig(n)
	default:
		return nil, errors.Errorf("number: unsupported type %T", v)
	}
}

func fromInt64(n int64) (*big.Int, error) {
	if n < 0 {
		return nil, errors.Errorf("number %d is negative", n)
	}
	return big.NewInt(n), nil
}

func parseBig(s string) (*big.Int, error) {
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok || digits == "" || n.Sign() < 0 {
		return nil, errors.Errorf("invalid number %q", s)
	}
	return n, nil
}
