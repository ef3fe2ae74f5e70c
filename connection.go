package gojsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// JSONRPCDuplexConnection multiplexes outbound calls and inbound dispatch
// over a single writer. Outbound ids are generated uuid strings so they
// survive the float64 round-trip JSON numbers take on the far side.
type JSONRPCDuplexConnection struct {
	dispatcher *JSONRPCDispatcher
	invocant   any
	version    JSONRPCVersion

	pending map[string]chan<- *JSONRPCResponse
	l       sync.Mutex
	w       io.Writer
}

type ConnOption func(*JSONRPCDuplexConnection)

// WithConnVersion fixes the dialect outbound calls are built in. The
// default is JSON-RPC 2.0.
func WithConnVersion(v JSONRPCVersion) ConnOption {
	return func(c *JSONRPCDuplexConnection) {
		c.version = v
	}
}

func WithConnDispatcher(d *JSONRPCDispatcher) ConnOption {
	return func(c *JSONRPCDuplexConnection) {
		c.dispatcher = d
	}
}

func NewJSONRPCDuplexConnection(w io.Writer, invocant any, opts ...ConnOption) *JSONRPCDuplexConnection {
	c := &JSONRPCDuplexConnection{
		dispatcher: defaultDispatcher,
		invocant:   invocant,
		version:    Version20,
		pending:    make(map[string]chan<- *JSONRPCResponse),
		w:          w,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ServeRaw handles one inbound message, reply or call.
func (c *JSONRPCDuplexConnection) ServeRaw(ctx context.Context, msg json.RawMessage) error {
	var fields map[string]any
	if err := json.Unmarshal(msg, &fields); err != nil {
		return fmt.Errorf("parse message: %v: %w", err, ErrMalformedCall)
	}
	return c.Serve(ctx, fields)
}

func (c *JSONRPCDuplexConnection) Serve(ctx context.Context, fields map[string]any) error {
	_, hasResult := fields["result"]
	_, hasError := fields["error"]
	if hasResult || hasError {
		c.serveReply(fields)
		return nil
	}

	call, err := Inflate(fields)
	if err != nil {
		id, hasID := fields["id"]
		resp := NewErrorResponse(c.version, NewError(CodeInvalidRequest, err.Error()), id, hasID)
		return c.write(resp)
	}

	resp, err := c.dispatcher.Dispatch(ctx, call, c.invocant)
	if err != nil {
		return err
	}
	if call.IsNotification() {
		return nil
	}
	return c.write(resp)
}

func (c *JSONRPCDuplexConnection) serveReply(fields map[string]any) {
	// only string ids are ever sent from here
	id, ok := fields["id"].(string)
	if !ok {
		return
	}

	c.l.Lock()
	replyChan, ok := c.pending[id]
	c.l.Unlock()
	if !ok {
		return
	}

	resp := &JSONRPCResponse{Version: c.version, ID: id, HasID: true}
	if e, ok := fields["error"]; ok && e != nil {
		resp.Error = InflateError(e)
	} else {
		resp.Result = fields["result"]
	}
	replyChan <- resp
}

// Call sends a request in the connection's dialect and waits for the
// correlated reply or ctx expiry.
func (c *JSONRPCDuplexConnection) Call(ctx context.Context, method string, params any) (*JSONRPCResponse, error) {
	id := uuid.NewString()
	call, err := NewCall(c.version, method, params, WithID(id))
	if err != nil {
		return nil, err
	}

	replyChan := make(chan *JSONRPCResponse, 1)
	c.l.Lock()
	c.pending[id] = replyChan
	c.l.Unlock()

	defer func() {
		c.l.Lock()
		delete(c.pending, id)
		c.l.Unlock()
	}()

	if err := c.write(call); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-replyChan:
		return resp, nil
	}
}

// Notify sends a call without an id; no reply is expected or waited for.
func (c *JSONRPCDuplexConnection) Notify(ctx context.Context, method string, params any) error {
	call, err := NewCall(c.version, method, params)
	if err != nil {
		return err
	}
	return c.write(call)
}

func (c *JSONRPCDuplexConnection) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := c.w.Write(data); err != nil {
		return err
	}
	return nil
}
