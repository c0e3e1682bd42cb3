// Package steemd is a JSON-RPC client for Steem API nodes with ordered
// failover: each call walks the configured endpoint list in priority order
// until one answers, with a bounded timeout per attempt.
package steemd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ismdrobiul489-sudo/steemit-posting/internal/logging"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/steem"
)

// DefaultAttemptTimeout bounds a single endpoint attempt, so one unreachable
// node cannot stall a request beyond timeout × endpoint count.
const DefaultAttemptTimeout = 10 * time.Second

// Endpoint is one candidate node. The list is static configuration owned by
// the Client; only the per-request attempt state is mutable.
type Endpoint struct {
	URL      string
	Priority int
}

// Client speaks condenser_api JSON-RPC to an ordered list of nodes.
type Client struct {
	endpoints      []Endpoint
	httpClient     *http.Client
	attemptTimeout time.Duration
	logger         logging.Logger
	attempts       *prometheus.CounterVec
	requestID      atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithAttemptTimeout overrides the per-endpoint timeout.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.attemptTimeout = timeout
		}
	}
}

// WithAttemptMetrics records per-attempt outcomes on the given counter, which
// must carry "method" and "outcome" labels.
func WithAttemptMetrics(attempts *prometheus.CounterVec) Option {
	return func(c *Client) {
		c.attempts = attempts
	}
}

// NewClient builds a client over the given node URLs. Order is priority
// order; the slice is copied and never mutated afterwards.
func NewClient(nodes []string, logger logging.Logger, opts ...Option) *Client {
	endpoints := make([]Endpoint, len(nodes))
	for i, url := range nodes {
		endpoints[i] = Endpoint{URL: url, Priority: i}
	}

	c := &Client{
		endpoints:      endpoints,
		httpClient:     &http.Client{},
		attemptTimeout: DefaultAttemptTimeout,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DynamicGlobalProperties is the subset of the chain status answer needed to
// anchor a transaction.
type DynamicGlobalProperties struct {
	HeadBlockNumber uint32 `json:"head_block_number"`
	HeadBlockID     string `json:"head_block_id"`
	Time            string `json:"time"`
}

// BroadcastAck is a node's acknowledgement of an accepted transaction.
type BroadcastAck struct {
	ID       string `json:"id"`
	BlockNum uint32 `json:"block_num"`
	TrxNum   int32  `json:"trx_num"`
	Expired  bool   `json:"expired"`
}

// GetDynamicGlobalProperties fetches chain reference data from the first
// node that answers. Any failure, including a JSON-RPC error, advances to the
// next endpoint: a read query has no deterministic-rejection case.
func (c *Client) GetDynamicGlobalProperties(ctx context.Context) (*DynamicGlobalProperties, error) {
	var props DynamicGlobalProperties
	if err := c.call(ctx, "condenser_api.get_dynamic_global_properties", []interface{}{}, &props, false); err != nil {
		return nil, err
	}
	return &props, nil
}

// BroadcastTransactionSynchronous delivers a signed transaction, advancing to
// the next endpoint on transport failure. A JSON-RPC error means a reachable
// node relayed the chain's rejection; that is surfaced immediately without
// trying further endpoints, since a deterministic rejection would repeat.
func (c *Client) BroadcastTransactionSynchronous(ctx context.Context, tx *steem.SignedTransaction) (*BroadcastAck, error) {
	var ack BroadcastAck
	if err := c.call(ctx, "condenser_api.broadcast_transaction_synchronous", []interface{}{tx}, &ack, true); err != nil {
		return nil, err
	}
	return &ack, nil
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      uint64      `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
	ID      uint64          `json:"id"`
}

// call runs the failover loop. With failFast set, a *RPCError stops the loop
// and is returned as-is; transport failures always advance. Exhausting the
// list yields a *NodesUnavailableError carrying every per-endpoint reason.
func (c *Client) call(ctx context.Context, method string, params, result interface{}, failFast bool) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.requestID.Add(1),
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var attempts []AttemptError
	for _, ep := range c.endpoints {
		err := c.callEndpoint(ctx, ep, payload, result)
		if err == nil {
			c.countAttempt(method, "success")
			return nil
		}

		var rpcErr *RPCError
		if failFast && errors.As(err, &rpcErr) {
			c.countAttempt(method, "rejected")
			c.logger.WithFields(logging.Fields{
				"method": method,
				"code":   rpcErr.Code,
			}).Warn("Node relayed chain rejection, not retrying")
			return rpcErr
		}

		c.countAttempt(method, "failed")
		c.logger.WithFields(logging.Fields{
			"method":   method,
			"endpoint": ep.URL,
			"priority": ep.Priority,
			"error":    err.Error(),
		}).Warn("Node attempt failed, advancing to next endpoint")
		attempts = append(attempts, AttemptError{Endpoint: ep.URL, Err: err})

		if ctx.Err() != nil {
			break
		}
	}

	return &NodesUnavailableError{Attempts: attempts}
}

func (c *Client) callEndpoint(ctx context.Context, ep Endpoint, payload []byte, result interface{}) error {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, ep.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("malformed JSON-RPC response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("malformed result: %w", err)
		}
	}
	return nil
}

func (c *Client) countAttempt(method, outcome string) {
	if c.attempts != nil {
		c.attempts.WithLabelValues(method, outcome).Inc()
	}
}
