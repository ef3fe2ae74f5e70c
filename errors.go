package gojsonrpc

import "errors"

var (
	// ErrUnsupportedVersion is returned when a version string resolves to
	// no known protocol dialect.
	ErrUnsupportedVersion = errors.New("unsupported JSON-RPC version")

	// ErrMalformedCall is returned when a required request member is
	// missing or has the wrong shape.
	ErrMalformedCall = errors.New("malformed call")

	// ErrInvalidInvocant is returned by Dispatch when the target is not a
	// usable object instance. It is the only error Dispatch returns;
	// invocation failures become error responses instead.
	ErrInvalidInvocant = errors.New("invalid invocant")
)
