// Package store provides clients for the external storage
// collaborators: the workspace metadata service and the file/blob
// service. Both speak JSON-RPC 1.1 over HTTP with token auth.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config holds connection settings for a JSON-RPC service endpoint.
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Client is a minimal JSON-RPC 1.1 client. Calls are synchronous and
// never retried: a failed call aborts the import run.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *zap.Logger
	requestID  atomic.Int64
}

// NewClient creates a client for the given endpoint.
func NewClient(config Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		logger:     logger,
	}
}

type rpcRequest struct {
	ID      string `json:"id"`
	Method  string `json:"method"`
	Version string `json:"version"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is a structured error returned by a service.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Name    string `json:"name"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d (%s): %s", e.Code, e.Name, e.Message)
}

// Call invokes method with params and unmarshals the first element of
// the result array into result, which may be nil to discard it.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	id := c.requestID.Add(1)
	req := rpcRequest{
		ID:      fmt.Sprintf("req-%d-%d", time.Now().UnixNano(), id),
		Method:  method,
		Version: "1.1",
		Params:  []any{params},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", method, err)
	}

	logger := c.logger.With(zap.String("method", method), zap.String("url", c.config.URL))
	logger.Debug("sending request", zap.String("request_id", req.ID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.Token != "" {
		httpReq.Header.Set("Authorization", c.config.Token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		if httpResp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s: http %d: %s", method, httpResp.StatusCode, respBody)
		}
		return fmt.Errorf("%s: unmarshal response: %w", method, err)
	}

	if rpcResp.Error != nil {
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}

	logger.Debug("request successful", zap.String("request_id", rpcResp.ID))

	if result == nil {
		return nil
	}

	// Results arrive as a one-element array wrapping the payload.
	var results []json.RawMessage
	if err := json.Unmarshal(rpcResp.Result, &results); err != nil {
		return fmt.Errorf("%s: unmarshal result: %w", method, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("%s: empty result", method)
	}
	if err := json.Unmarshal(results[0], result); err != nil {
		return fmt.Errorf("%s: unmarshal result payload: %w", method, err)
	}

	return nil
}
