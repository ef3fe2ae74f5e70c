package gojsonrpc

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
)

// MethodSet is a named-handler invocant: the dispatcher targets it
// through MethodInvoker instead of reflecting over exported methods.
type MethodSet struct {
	methods map[string]*Method
}

func NewMethodSet() *MethodSet {
	return &MethodSet{
		methods: make(map[string]*Method),
	}
}

type Method struct {
	docs    string
	errors  map[int]string
	handler MethodHandler
}

func (m *Method) Docs() string {
	return m.docs
}

func (m *Method) Errors() map[int]string {
	return m.errors
}

func (m *Method) ParamsSchema() *jsonschema.Schema {
	return m.handler.params
}

func (m *Method) ResultSchema() *jsonschema.Schema {
	return m.handler.result
}

func (s *MethodSet) Method(name string) *MethodBuilder {
	return &MethodBuilder{
		set:    s,
		name:   name,
		errors: make(map[int]string),
	}
}

func (s *MethodSet) Lookup(name string) (*Method, bool) {
	m, ok := s.methods[name]
	return m, ok
}

// InvokeMethod implements MethodInvoker.
func (s *MethodSet) InvokeMethod(ctx context.Context, method string, args []any) ([]any, error) {
	m, ok := s.methods[method]
	if !ok {
		return nil, &JSONRPCError{Code: CodeMethodNotFound, Message: "method not found: " + method}
	}
	return m.handler.handler(ctx, args)
}

// MethodHandlerFunc consumes the normalized argument list and returns the
// values the response result is shaped from.
type MethodHandlerFunc func(ctx context.Context, args []any) ([]any, error)

type MethodHandler struct {
	params  *jsonschema.Schema
	result  *jsonschema.Schema
	handler MethodHandlerFunc
}

type MethodBuilder struct {
	set     *MethodSet
	name    string
	docs    string
	errors  map[int]string
	handler MethodHandler
}

func (b *MethodBuilder) SetDocs(docs string) *MethodBuilder {
	b.docs = docs
	return b
}

func (b *MethodBuilder) DefineError(code int, description string) *MethodBuilder {
	b.errors[code] = description
	return b
}

func (b *MethodBuilder) SetHandler(h MethodHandler) *MethodBuilder {
	b.handler = h
	return b
}

func (b *MethodBuilder) SetHandlerFunc(h MethodHandlerFunc) *MethodBuilder {
	b.handler = MethodHandler{
		handler: h,
	}
	return b
}

func (b *MethodBuilder) Register() {
	b.set.methods[b.name] = &Method{
		docs:    b.docs,
		errors:  b.errors,
		handler: b.handler,
	}
}

// NewTypedHandler adapts a typed params/result function into a handler,
// generating JSON Schemas for both sides from their Go types. Named
// arguments bind to TParams by json tags.
func NewTypedHandler[TParams, TResult any](h func(ctx context.Context, params TParams) (TResult, error)) MethodHandler {
	return MethodHandler{
		params: GenSchema[TParams](),
		result: GenSchema[TResult](),
		handler: func(ctx context.Context, args []any) ([]any, error) {
			params, err := bindNamedArgs[TParams](args)
			if err != nil {
				return nil, err
			}
			result, err := h(ctx, params)
			if err != nil {
				return nil, err
			}
			return []any{result}, nil
		},
	}
}

func bindNamedArgs[T any](args []any) (T, error) {
	var v T
	fields, err := argsToMap(args)
	if err != nil {
		return v, err
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return v, &JSONRPCError{Code: CodeInvalidParams, Message: "invalid params"}
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, &JSONRPCError{Code: CodeInvalidParams, Message: "invalid params"}
	}
	return v, nil
}

// argsToMap rebuilds a field mapping from the flattened key/value list
// that named params normalize to.
func argsToMap(args []any) (map[string]any, error) {
	if len(args) == 1 {
		if m, ok := args[0].(map[string]any); ok {
			return m, nil
		}
	}
	if len(args)%2 != 0 {
		return nil, &JSONRPCError{Code: CodeInvalidParams, Message: "invalid params: expected named arguments"}
	}
	fields := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		k, ok := args[i].(string)
		if !ok {
			return nil, &JSONRPCError{Code: CodeInvalidParams, Message: "invalid params: expected named arguments"}
		}
		fields[k] = args[i+1]
	}
	return fields, nil
}

func GenSchema[T any]() *jsonschema.Schema {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return jsonschema.ReflectFromType(t)
}
