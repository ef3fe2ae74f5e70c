package gojsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes from the JSON-RPC 2.0 specification, plus the code used for
// application errors that arrive without one of their own.
const (
	CodeParseError       = -32700
	CodeInvalidRequest   = -32600
	CodeMethodNotFound   = -32601
	CodeInvalidParams    = -32602
	CodeInternalError    = -32603
	CodeApplicationError = -32099
)

type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *JSONRPCError) Error() string {
	return e.Message
}

func NewError(code int, message string) *JSONRPCError {
	return &JSONRPCError{Code: code, Message: message}
}

// JSONRPCResponse is the outcome of exactly one dispatched call: a result
// or an error, with the call's id echoed when it had one. HasID keeps an
// absent id distinguishable from a null one.
type JSONRPCResponse struct {
	Version JSONRPCVersion
	Result  any
	Error   *JSONRPCError
	ID      any
	HasID   bool
}

func (r *JSONRPCResponse) IsError() bool {
	return r.Error != nil
}

// MarshalJSON renders the response in its dialect's wire shape. JSON-RPC
// 1.0 responses carry both result and error members, the unused one null;
// the later dialects carry exactly one.
func (r *JSONRPCResponse) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 4)
	if field, ok := r.Version.wireField(); ok {
		m[field] = r.Version.String()
	}
	switch {
	case r.Version == Version10:
		m["result"], m["error"] = r.Result, nil
		if r.Error != nil {
			m["result"], m["error"] = nil, r.Error
		}
	case r.Error != nil:
		m["error"] = r.Error
	default:
		m["result"] = r.Result
	}
	if r.HasID {
		m["id"] = r.ID
	}
	return json.Marshal(m)
}

// ResponseBinding pairs the result and error response constructors a call
// uses. Every variant has a default binding; a call may be inflated with
// its own, and it never changes afterwards.
type ResponseBinding struct {
	NewResult func(result any, id any, hasID bool) *JSONRPCResponse
	NewError  func(errValue any, id any, hasID bool) *JSONRPCResponse
}

func defaultBinding(v JSONRPCVersion) ResponseBinding {
	return ResponseBinding{
		NewResult: func(result, id any, hasID bool) *JSONRPCResponse {
			return NewResultResponse(v, result, id, hasID)
		},
		NewError: func(errValue, id any, hasID bool) *JSONRPCResponse {
			return NewErrorResponse(v, errValue, id, hasID)
		},
	}
}

func NewResultResponse(v JSONRPCVersion, result any, id any, hasID bool) *JSONRPCResponse {
	return &JSONRPCResponse{Version: v, Result: result, ID: id, HasID: hasID}
}

func NewErrorResponse(v JSONRPCVersion, errValue any, id any, hasID bool) *JSONRPCResponse {
	return &JSONRPCResponse{Version: v, Error: InflateError(errValue), ID: id, HasID: hasID}
}

// InflateError translates whatever an invocation produced into a
// structured error object. Coded errors pass through, plain errors and
// strings become application errors, raw maps are read field by field.
func InflateError(v any) *JSONRPCError {
	switch e := v.(type) {
	case *JSONRPCError:
		return e
	case error:
		var rpcErr *JSONRPCError
		if errors.As(e, &rpcErr) {
			return rpcErr
		}
		return &JSONRPCError{Code: CodeApplicationError, Message: e.Error()}
	case string:
		return &JSONRPCError{Code: CodeApplicationError, Message: e}
	case map[string]any:
		out := &JSONRPCError{Code: CodeApplicationError}
		switch code := e["code"].(type) {
		case float64:
			out.Code = int(code)
		case int:
			out.Code = code
		}
		if msg, ok := e["message"].(string); ok {
			out.Message = msg
		}
		if data, ok := e["data"]; ok {
			out.Data = data
		}
		return out
	case nil:
		return &JSONRPCError{Code: CodeInternalError, Message: "unknown error"}
	}
	return &JSONRPCError{Code: CodeApplicationError, Message: fmt.Sprint(v)}
}
