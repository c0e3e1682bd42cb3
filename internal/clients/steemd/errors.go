package steemd

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RPCError is a JSON-RPC error object returned by a node that was reached
// successfully. It means the chain itself rejected the request (duplicate
// permlink, malformed operation, expired transaction), which is deterministic:
// retrying against another node cannot change the outcome.
type RPCError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("node rejected request (code %d): %s", e.Code, e.Message)
}

// AttemptError records why one endpoint failed during failover.
type AttemptError struct {
	Endpoint string
	Err      error
}

func (e AttemptError) Error() string {
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

// NodesUnavailableError reports that every configured endpoint was tried and
// none delivered the request. It carries the per-endpoint failure reasons and
// is transient: the caller may retry the whole request later.
type NodesUnavailableError struct {
	Attempts []AttemptError
}

func (e *NodesUnavailableError) Error() string {
	reasons := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		reasons[i] = a.Error()
	}
	return fmt.Sprintf("all %d nodes unavailable: %s", len(e.Attempts), strings.Join(reasons, "; "))
}

// Reasons returns the per-endpoint failure descriptions in attempt order.
func (e *NodesUnavailableError) Reasons() []string {
	reasons := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		reasons[i] = a.Error()
	}
	return reasons
}
