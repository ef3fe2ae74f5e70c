package gojsonrpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/tulinowpavel/gojsonrpc"
)

func TestResponse__MarshalPerDialect(t *testing.T) {
	cases := []struct {
		name string
		resp *gojsonrpc.JSONRPCResponse
		ref  map[string]any
	}{
		{
			"2.0 result",
			gojsonrpc.NewResultResponse(gojsonrpc.Version20, "banana", 1, true),
			map[string]any{"jsonrpc": "2.0", "result": "banana", "id": float64(1)},
		},
		{
			"1.1 error",
			gojsonrpc.NewErrorResponse(gojsonrpc.Version11, gojsonrpc.NewError(1000, "some error"), 1, true),
			map[string]any{
				"version": "1.1",
				"error":   map[string]any{"code": float64(1000), "message": "some error"},
				"id":      float64(1),
			},
		},
		{
			"1.0 result carries null error",
			gojsonrpc.NewResultResponse(gojsonrpc.Version10, "banana", 1, true),
			map[string]any{"result": "banana", "error": nil, "id": float64(1)},
		},
		{
			"1.0 error carries null result",
			gojsonrpc.NewErrorResponse(gojsonrpc.Version10, "some error", 1, true),
			map[string]any{
				"result": nil,
				"error":  map[string]any{"code": float64(gojsonrpc.CodeApplicationError), "message": "some error"},
				"id":     float64(1),
			},
		},
	}

	for _, c := range cases {
		data, err := json.Marshal(c.resp)
		if err != nil {
			t.Fatalf("%s: unexpected marshal error: %v", c.name, err)
		}
		var got map[string]any
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("%s: unexpected unmarshal error: %v", c.name, err)
		}
		if !reflect.DeepEqual(got, c.ref) {
			t.Fatalf("%s: wire shape not equal to reference: reference=%#v actual=%#v", c.name, c.ref, got)
		}
	}
}

func TestResponse__OmitsIDWhenCallHadNone(t *testing.T) {
	resp := gojsonrpc.NewResultResponse(gojsonrpc.Version20, "banana", nil, false)

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if _, ok := got["id"]; ok {
		t.Fatalf("id member present without an id: %v", got)
	}
}

func TestInflateError__Shapes(t *testing.T) {
	coded := gojsonrpc.NewError(1000, "already structured")

	cases := []struct {
		name string
		in   any
		ref  *gojsonrpc.JSONRPCError
	}{
		{"coded error passes through", coded, coded},
		{
			"wrapped coded error unwraps",
			fmt.Errorf("dispatch: %w", coded),
			coded,
		},
		{
			"plain error",
			errors.New("boom"),
			gojsonrpc.NewError(gojsonrpc.CodeApplicationError, "boom"),
		},
		{
			"string message",
			"boom",
			gojsonrpc.NewError(gojsonrpc.CodeApplicationError, "boom"),
		},
		{
			"raw mapping",
			map[string]any{"code": float64(-32601), "message": "method not found", "data": "m"},
			&gojsonrpc.JSONRPCError{Code: gojsonrpc.CodeMethodNotFound, Message: "method not found", Data: "m"},
		},
		{
			"anything else stringified",
			42,
			gojsonrpc.NewError(gojsonrpc.CodeApplicationError, "42"),
		},
	}

	for _, c := range cases {
		got := gojsonrpc.InflateError(c.in)
		if !reflect.DeepEqual(got, c.ref) {
			t.Fatalf("%s: reference=%#v actual=%#v", c.name, c.ref, got)
		}
	}
}

func TestResponseBinding__OverridePerCall(t *testing.T) {
	binding := gojsonrpc.ResponseBinding{
		NewResult: func(result, id any, hasID bool) *gojsonrpc.JSONRPCResponse {
			return gojsonrpc.NewResultResponse(gojsonrpc.Version20, map[string]any{"wrapped": result}, id, hasID)
		},
		NewError: func(errValue, id any, hasID bool) *gojsonrpc.JSONRPCResponse {
			return gojsonrpc.NewErrorResponse(gojsonrpc.Version20, errValue, id, hasID)
		},
	}

	call, err := gojsonrpc.Inflate(map[string]any{
		"jsonrpc": "2.0",
		"method":  "Sum",
		"params":  []any{float64(40), float64(2)},
		"id":      1,
	}, gojsonrpc.WithResponseBinding(binding))
	if err != nil {
		t.Fatalf("unexpected inflate error: %v", err)
	}

	resp, err := call.Dispatch(context.Background(), bananaStand{})
	if err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if !reflect.DeepEqual(resp.Result, map[string]any{"wrapped": float64(42)}) {
		t.Fatalf("override binding not used: %#v", resp.Result)
	}
}
