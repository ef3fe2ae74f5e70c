package gojsonrpc

// ParamsList normalizes a params value into a flat argument list:
//
//   - a mapping becomes key/value pairs, flattened; the order of the pairs
//     follows map iteration and must not be relied on
//   - an ordered sequence is positional and kept as-is
//   - anything else is wrapped as a single argument
//
// The last branch is a conservative fallback, not a validated contract:
// params of such shapes are accepted at inflation and only surface here,
// degraded. The function is pure; the returned slice never aliases the
// call's own params.
func ParamsList(params any) []any {
	switch p := params.(type) {
	case map[string]any:
		args := make([]any, 0, 2*len(p))
		for k, v := range p {
			args = append(args, k, v)
		}
		return args
	case []any:
		return append([]any(nil), p...)
	}
	return []any{params}
}
