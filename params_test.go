package gojsonrpc_test

import (
	"reflect"
	"testing"

	"github.com/tulinowpavel/gojsonrpc"
)

func TestParamsList__NamedParamsBecomePairs(t *testing.T) {
	args := gojsonrpc.ParamsList(map[string]any{"a": 1, "b": 2})

	if len(args) != 4 {
		t.Fatalf("want 4 elements, got %d: %v", len(args), args)
	}

	pairs := map[string]any{}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			t.Fatalf("element %d is not a key: %#v", i, args[i])
		}
		pairs[key] = args[i+1]
	}

	refPairs := map[string]any{"a": 1, "b": 2}
	if !reflect.DeepEqual(pairs, refPairs) {
		t.Fatalf("pairs not equal to reference: reference=%#v actual=%#v", refPairs, pairs)
	}
}

func TestParamsList__PositionalParamsKeepOrder(t *testing.T) {
	args := gojsonrpc.ParamsList([]any{1, 2, 3})

	if !reflect.DeepEqual(args, []any{1, 2, 3}) {
		t.Fatalf("want [1 2 3], got %v", args)
	}
}

func TestParamsList__OtherShapesWrapAsSingleArgument(t *testing.T) {
	for _, params := range []any{"banana", 42, true, nil} {
		args := gojsonrpc.ParamsList(params)
		if !reflect.DeepEqual(args, []any{params}) {
			t.Fatalf("params=%v: want single-element list, got %v", params, args)
		}
	}
}

func TestParamsList__Idempotent(t *testing.T) {
	call, err := gojsonrpc.InflateKV("jsonrpc", "2.0", "method", "sum", "params", []any{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected inflate error: %v", err)
	}

	first := call.ParamsList()
	first[0] = "mutated"

	second := call.ParamsList()
	if !reflect.DeepEqual(second, []any{1, 2, 3}) {
		t.Fatalf("second normalization sees mutation: %v", second)
	}
}
