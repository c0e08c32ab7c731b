package mcp

import (
	"encoding/json"
	"fmt"
)

// Transport decodes JSON-RPC 2.0 frames arriving on the /mcp endpoint
// and encodes the responses going back. It is stateless; the HTTP
// handler owns framing and auth.
type Transport struct{}

func NewTransport() *Transport {
	return &Transport{}
}

// ParseRequest decodes a request frame and validates the envelope:
// the jsonrpc version must be "2.0" and a method must be present.
// Params stay raw; each handler decodes its own shape.
func (t *Transport) ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	if req.JSONRPC != JSONRPCVersion {
		return nil, fmt.Errorf("invalid JSON-RPC version: expected %s, got %s", JSONRPCVersion, req.JSONRPC)
	}

	if req.Method == "" {
		return nil, fmt.Errorf("method is required")
	}

	return &req, nil
}

// SerializeResponse encodes a response frame.
func (t *Transport) SerializeResponse(resp *Response) ([]byte, error) {
	return json.Marshal(resp)
}

// ParseParams decodes a request's params into T. Absent params return
// nil without error, so methods with optional params can call this
// unconditionally.
func ParseParams[T any](params json.RawMessage) (*T, error) {
	if len(params) == 0 {
		return nil, nil
	}

	var result T
	if err := json.Unmarshal(params, &result); err != nil {
		return nil, fmt.Errorf("failed to parse params: %w", err)
	}
	return &result, nil
}

// MustParseParams is ParseParams for methods whose params are
// required, such as tools/call and resources/read.
func MustParseParams[T any](params json.RawMessage) (*T, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("params are required")
	}

	var result T
	if err := json.Unmarshal(params, &result); err != nil {
		return nil, fmt.Errorf("failed to parse params: %w", err)
	}
	return &result, nil
}
