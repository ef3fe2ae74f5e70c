package gojsonrpc

import (
	"context"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"
)

// MethodInvoker lets an invocant take over method resolution instead of
// reflection over its exported methods. MethodSet implements it.
type MethodInvoker interface {
	InvokeMethod(ctx context.Context, method string, args []any) ([]any, error)
}

// JSONRPCDispatcher invokes calls against invocants and converts every
// outcome into a response. A failed invocation never escapes Dispatch;
// the only error it returns is ErrInvalidInvocant.
type JSONRPCDispatcher struct {
	log zerolog.Logger
}

type DispatcherOption func(*JSONRPCDispatcher)

// WithLogger attaches a logger for recovered panics and failed
// invocations. The default logger discards everything.
func WithLogger(log zerolog.Logger) DispatcherOption {
	return func(d *JSONRPCDispatcher) {
		d.log = log
	}
}

func NewJSONRPCDispatcher(opts ...DispatcherOption) *JSONRPCDispatcher {
	d := &JSONRPCDispatcher{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDispatcher = NewJSONRPCDispatcher()

// Dispatch resolves the call's method on invocant and invokes it with the
// normalized params followed by extra. Return values are shaped into the
// result: exactly one value stays bare, zero or several become a list.
// Errors and panics raised by the target become error responses built
// through the call's binding, with the id echoed only when the call has
// one.
func (d *JSONRPCDispatcher) Dispatch(ctx context.Context, call *JSONRPCCall, invocant any, extra ...any) (*JSONRPCResponse, error) {
	if err := checkInvocant(invocant); err != nil {
		return nil, err
	}

	args := append(call.ParamsList(), extra...)
	out, err := d.invoke(ctx, call, invocant, args)
	if err != nil {
		d.log.Debug().Str("method", call.Method()).Err(err).Msg("invocation failed")
		return call.errorResponse(err), nil
	}

	if len(out) == 1 {
		return call.resultResponse(out[0]), nil
	}
	if out == nil {
		out = []any{}
	}
	return call.resultResponse(out), nil
}

func checkInvocant(invocant any) error {
	if invocant == nil {
		return fmt.Errorf("nil invocant: %w", ErrInvalidInvocant)
	}
	rv := reflect.ValueOf(invocant)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			return fmt.Errorf("nil %s invocant: %w", rv.Kind(), ErrInvalidInvocant)
		}
	}
	return nil
}

func (d *JSONRPCDispatcher) invoke(ctx context.Context, call *JSONRPCCall, invocant any, args []any) (out []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("method", call.Method()).Interface("panic", r).Msg("invocation panicked")
			out, err = nil, &JSONRPCError{Code: CodeInternalError, Message: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	if inv, ok := invocant.(MethodInvoker); ok {
		return inv.InvokeMethod(ctx, call.Method(), args)
	}
	return reflectInvoke(ctx, invocant, call.Method(), args)
}

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

func reflectInvoke(ctx context.Context, invocant any, name string, args []any) ([]any, error) {
	m := reflect.ValueOf(invocant).MethodByName(name)
	if !m.IsValid() {
		return nil, &JSONRPCError{Code: CodeMethodNotFound, Message: "method not found: " + name}
	}
	in, err := buildArgs(m.Type(), ctx, args)
	if err != nil {
		return nil, err
	}
	return splitResults(m.Call(in))
}

// buildArgs maps the argument list onto the method's parameters,
// prepending ctx when the method declares it first.
func buildArgs(ft reflect.Type, ctx context.Context, args []any) ([]reflect.Value, error) {
	in := make([]reflect.Value, 0, ft.NumIn())
	next := 0
	if ft.NumIn() > 0 && ft.In(0) == ctxType {
		in = append(in, reflect.ValueOf(ctx))
		next = 1
	}

	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
	}
	want := fixed - next
	if len(args) < want || (len(args) > want && !ft.IsVariadic()) {
		return nil, &JSONRPCError{
			Code:    CodeInvalidParams,
			Message: fmt.Sprintf("invalid params: method takes %d, got %d", want, len(args)),
		}
	}

	for i, arg := range args {
		var pt reflect.Type
		if idx := next + i; idx < fixed {
			pt = ft.In(idx)
		} else {
			pt = ft.In(ft.NumIn() - 1).Elem()
		}
		v, err := convertArg(arg, pt)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}
	return in, nil
}

func convertArg(arg any, pt reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch pt.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(pt), nil
		}
		return reflect.Value{}, &JSONRPCError{Code: CodeInvalidParams, Message: "invalid params: null for " + pt.String()}
	}
	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(pt) {
		return av, nil
	}
	// json numbers decode as float64; bridge them to whatever numeric
	// kind the method declares.
	if isNumeric(av.Kind()) && isNumeric(pt.Kind()) {
		return av.Convert(pt), nil
	}
	return reflect.Value{}, &JSONRPCError{
		Code:    CodeInvalidParams,
		Message: fmt.Sprintf("invalid params: cannot use %T as %s", arg, pt),
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// splitResults separates a trailing error return from the value list and
// surfaces it as the invocation failure.
func splitResults(results []reflect.Value) ([]any, error) {
	if n := len(results); n > 0 && results[n-1].Type() == errType {
		if !results[n-1].IsNil() {
			return nil, results[n-1].Interface().(error)
		}
		results = results[:n-1]
	}
	out := make([]any, 0, len(results))
	for _, r := range results {
		out = append(out, r.Interface())
	}
	return out, nil
}
