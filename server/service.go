package server

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

type methodType struct {
	method   reflect.Method
	wireName string
	argTypes []reflect.Type
}

type service struct {
	name    string
	rcvr    reflect.Value
	typ     reflect.Type
	methods []*methodType
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// newService 创建 service 并扫描所有合法方法
func newService(rcvr any) (*service, error) {
	typ := reflect.TypeOf(rcvr)
	if typ == nil || typ.Kind() != reflect.Ptr {
		return nil, errors.Errorf("server: receiver must be a pointer, got %T", rcvr)
	}
	if typ.Elem().Kind() != reflect.Struct {
		return nil, errors.Errorf("server: receiver must point to a struct, got %s", typ.Elem().Kind())
	}
	s := &service{
		name: typ.Elem().Name(),
		rcvr: reflect.ValueOf(rcvr),
		typ:  typ,
	}
	s.registerMethods()
	if len(s.methods) == 0 {
		return nil, errors.Errorf("server: %s has no method of the form func(context.Context, ...) (R, error)", s.name)
	}
	return s, nil
}

// registerMethods keeps the exported methods shaped (receiver, context.Context, args...) (R, error).
func (s *service) registerMethods() {
	for i := 0; i < s.typ.NumMethod(); i++ {
		method := s.typ.Method(i)
		mt := method.Type
		if mt.NumIn() < 2 || mt.In(1) != contextType || mt.IsVariadic() ||
			mt.NumOut() != 2 || mt.Out(1) != errorType {
			continue
		}
		args := make([]reflect.Type, 0, mt.NumIn()-2)
		for j := 2; j < mt.NumIn(); j++ {
			args = append(args, mt.In(j))
		}
		s.methods = append(s.methods, &methodType{
			method:   method,
			wireName: SnakeCase(method.Name),
			argTypes: args,
		})
	}
}

// handler decodes params[i] into argument i. Missing trailing params are
// passed as zero values; extra params are rejected.
func (s *service) handler(m *methodType) HandlerFunc {
	return func(ctx context.Context, params []json.RawMessage) (any, error) {
		if len(params) > len(m.argTypes) {
			return nil, errors.Wrapf(ErrInvalidParams, "%s takes %d params, got %d", m.wireName, len(m.argTypes), len(params))
		}
		in := make([]reflect.Value, 0, 2+len(m.argTypes))
		in = append(in, s.rcvr, reflect.ValueOf(ctx))
		for i, t := range m.argTypes {
			argv := reflect.New(t)
			if i < len(params) {
				if err := json.Unmarshal(params[i], argv.Interface()); err != nil {
					return nil, errors.Wrapf(ErrInvalidParams, "%s param %d: %v", m.wireName, i, err)
				}
			}
			in = append(in, argv.Elem())
		}

		out := m.method.Func.Call(in)
		if errv := out[1]; !errv.IsNil() {
			return nil, errv.Interface().(error)
		}
		return out[0].Interface(), nil
	}
}

// SnakeCase converts a Go method name to a wire method name:
// GetTipBlockNumber → get_tip_block_number, TxPoolInfo → tx_pool_info,
// GetRPCInfo → get_rpc_info.
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
