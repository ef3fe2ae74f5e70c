package gojsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ServiceMethodPrefix is the name prefix JSON-RPC 1.1 reserves for service
// (introspection) methods.
const ServiceMethodPrefix = "system."

// JSONRPCCall is a single procedure call, immutable once built. Inflate it
// from raw request fields, dispatch it exactly once, discard it.
type JSONRPCCall struct {
	version JSONRPCVersion
	method  string
	id      any
	hasID   bool
	params  any
	binding ResponseBinding
}

type CallOption func(*JSONRPCCall)

// WithID sets the correlation id on an outbound call.
func WithID(id any) CallOption {
	return func(c *JSONRPCCall) {
		c.id, c.hasID = id, true
	}
}

// WithResponseBinding replaces the variant's default response constructors
// for this call only. The binding cannot change after construction.
func WithResponseBinding(b ResponseBinding) CallOption {
	return func(c *JSONRPCCall) {
		c.binding = b
	}
}

// Inflate constructs the call variant matching the version advertised by
// the raw request fields. A nil map is an empty field set and fails
// required-field validation like any other 1.0 request without method and
// params. Inflation errors propagate; nothing here is swallowed.
func Inflate(fields map[string]any, opts ...CallOption) (*JSONRPCCall, error) {
	version, err := ResolveVersion(fields)
	if err != nil {
		return nil, err
	}

	c := &JSONRPCCall{
		version: version,
		binding: defaultBinding(version),
	}

	if id, ok := fields["id"]; ok {
		c.id, c.hasID = id, true
	}

	method, ok := fields["method"]
	if !ok {
		return nil, fmt.Errorf("method member is required: %w", ErrMalformedCall)
	}
	name, ok := method.(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("method member must be a non-empty string: %w", ErrMalformedCall)
	}
	c.method = name

	params, ok := fields["params"]
	if !ok {
		return nil, fmt.Errorf("params member is required: %w", ErrMalformedCall)
	}
	c.params = params

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// InflateKV is Inflate over an unpacked field/value list:
//
//	InflateKV("jsonrpc", "2.0", "method", "sum", "params", []any{40, 2})
func InflateKV(fieldsAndValues ...any) (*JSONRPCCall, error) {
	if len(fieldsAndValues)%2 != 0 {
		return nil, fmt.Errorf("odd field/value list: %w", ErrMalformedCall)
	}
	fields := make(map[string]any, len(fieldsAndValues)/2)
	for i := 0; i < len(fieldsAndValues); i += 2 {
		name, ok := fieldsAndValues[i].(string)
		if !ok {
			return nil, fmt.Errorf("field name must be a string, got %T: %w", fieldsAndValues[i], ErrMalformedCall)
		}
		fields[name] = fieldsAndValues[i+1]
	}
	return Inflate(fields)
}

// InflateRaw parses a JSON request object and inflates it.
func InflateRaw(raw json.RawMessage, opts ...CallOption) (*JSONRPCCall, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("parse request: %v: %w", err, ErrMalformedCall)
	}
	return Inflate(fields, opts...)
}

// NewCall builds an outbound call in the given dialect. Unlike Inflate it
// never reads a version from request fields; a call without a version
// cannot be built at all.
func NewCall(version JSONRPCVersion, method string, params any, opts ...CallOption) (*JSONRPCCall, error) {
	switch version {
	case Version10, Version11, Version20:
	default:
		return nil, fmt.Errorf("version %s: %w", version, ErrUnsupportedVersion)
	}
	if method == "" {
		return nil, fmt.Errorf("method must be a non-empty string: %w", ErrMalformedCall)
	}

	c := &JSONRPCCall{
		version: version,
		method:  method,
		params:  params,
		binding: defaultBinding(version),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *JSONRPCCall) Version() JSONRPCVersion { return c.version }

func (c *JSONRPCCall) Method() string { return c.method }

func (c *JSONRPCCall) Params() any { return c.params }

// ID returns the correlation id and whether the call carries one at all.
// The id value may legitimately be nil while present.
func (c *JSONRPCCall) ID() (any, bool) {
	return c.id, c.hasID
}

func (c *JSONRPCCall) HasID() bool { return c.hasID }

// IsNotification reports whether the caller expects no response.
func (c *JSONRPCCall) IsNotification() bool { return !c.hasID }

// IsService reports whether the method name falls in the dialect's
// reserved service namespace. Only JSON-RPC 1.1 defines one.
func (c *JSONRPCCall) IsService() bool {
	return c.version == Version11 && strings.HasPrefix(c.method, ServiceMethodPrefix)
}

// ParamsList normalizes the params member into an argument list. See the
// package-level ParamsList for the normalization rules.
func (c *JSONRPCCall) ParamsList() []any {
	return ParamsList(c.params)
}

// Dispatch invokes the call against invocant using a shared dispatcher
// with no logging configured.
func (c *JSONRPCCall) Dispatch(ctx context.Context, invocant any, extra ...any) (*JSONRPCResponse, error) {
	return defaultDispatcher.Dispatch(ctx, c, invocant, extra...)
}

// MarshalJSON renders the call in its dialect's wire shape. A version-less
// call is never ready for transmission.
func (c *JSONRPCCall) MarshalJSON() ([]byte, error) {
	if c.version == VersionUnset {
		return nil, fmt.Errorf("call without a version cannot be sent: %w", ErrUnsupportedVersion)
	}
	m := map[string]any{
		"method": c.method,
		"params": c.params,
	}
	if field, ok := c.version.wireField(); ok {
		m[field] = c.version.String()
	}
	if c.hasID {
		m["id"] = c.id
	}
	return json.Marshal(m)
}

func (c *JSONRPCCall) resultResponse(result any) *JSONRPCResponse {
	return c.binding.NewResult(result, c.id, c.hasID)
}

func (c *JSONRPCCall) errorResponse(errValue any) *JSONRPCResponse {
	return c.binding.NewError(errValue, c.id, c.hasID)
}
