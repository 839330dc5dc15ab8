package ckb

import (
	"github.com/pkg/errors"

	"ckb-rpc/formatter"
)

// ToOutPoint normalizes an OutPoint's hash and index. Values of other types
// are sent unchanged.
func ToOutPoint(v any) (any, error) {
	var op OutPoint
	switch p := v.(type) {
	case OutPoint:
		op = p
	case *OutPoint:
		if p == nil {
			return nil, errors.New("nil out point")
		}
		op = *p
	default:
		return nil, nil
	}

	hash, err := formatter.ToHash(op.TxHash)
	if err != nil {
		return nil, errors.Wrap(err, "out point tx hash")
	}
	index, err := formatter.ToNumber(op.Index)
	if err != nil {
		return nil, errors.Wrap(err, "out point index")
	}
	return OutPoint{TxHash: hash.(string), Index: index.(string)}, nil
}

// ToRawTransaction strips a Transaction down to its raw part and replaces nil
// lists with empty ones, since nodes reject null where they expect arrays.
// Values of other types are sent unchanged.
func ToRawTransaction(v any) (any, error) {
	var tx RawTransaction
	switch t := v.(type) {
	case RawTransaction:
		tx = t
	case *RawTransaction:
		if t == nil {
			return nil, errors.New("nil transaction")
		}
		tx = *t
	case Transaction:
		tx = t.RawTransaction
	case *Transaction:
		if t == nil {
			return nil, errors.New("nil transaction")
		}
		tx = t.RawTransaction
	default:
		return nil, nil
	}

	out := RawTransaction{
		Version:     tx.Version,
		CellDeps:    nonNil(tx.CellDeps),
		HeaderDeps:  nonNil(tx.HeaderDeps),
		Inputs:      nonNil(tx.Inputs),
		Outputs:     make([]CellOutput, len(tx.Outputs)),
		OutputsData: nonNil(tx.OutputsData),
		Witnesses:   nonNil(tx.Witnesses),
	}
	if out.Version == "" {
		out.Version = "0x0"
	}
	for i, o := range tx.Outputs {
		o.Lock.Args = nonNil(o.Lock.Args)
		if o.Type != nil {
			typ := *o.Type
			typ.Args = nonNil(typ.Args)
			o.Type = &typ
		}
		out.Outputs[i] = o
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
