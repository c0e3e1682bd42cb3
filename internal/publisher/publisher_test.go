package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ismdrobiul489-sudo/steemit-posting/internal/clients/steemd"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/logging"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/steem"
)

// Uncompressed mainnet WIF test vector, reused as a posting key.
const testWIF = "5HueCGU8rMjxEXxiPuD5BDku4MkFqeZyd4dZ1jvhTVqvbTLvyTJ"

type fakeNode struct {
	server     *httptest.Server
	propsCalls atomic.Int32
	castCalls  atomic.Int32

	rejectBroadcast bool
	lastBroadcast   atomic.Pointer[json.RawMessage]
}

func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()
	n := &fakeNode{}
	n.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch req.Method {
		case "condenser_api.get_dynamic_global_properties":
			n.propsCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"jsonrpc": "2.0", "id": 1,
				"result": map[string]interface{}{
					"head_block_number": 50000000,
					"head_block_id":     "02faf08001020304aabbccddeeff0011",
				},
			})
		case "condenser_api.broadcast_transaction_synchronous":
			n.castCalls.Add(1)
			if len(req.Params) > 0 {
				n.lastBroadcast.Store(&req.Params[0])
			}
			if n.rejectBroadcast {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"jsonrpc": "2.0", "id": 1,
					"error": map[string]interface{}{"code": 10, "message": "duplicate permlink"},
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"jsonrpc": "2.0", "id": 1,
				"result": map[string]interface{}{"id": "abc123", "block_num": 50000001},
			})
		default:
			t.Errorf("unexpected method %s", req.Method)
		}
	}))
	t.Cleanup(n.server.Close)
	return n
}

func newTestPublisher(postingKey string, nodes []string) *Publisher {
	logger := logging.NewLogger()
	node := steemd.NewClient(nodes, logger)
	return New("alice", postingKey, node, logger, nil)
}

func TestPublish_Success(t *testing.T) {
	node := newFakeNode(t)
	pub := newTestPublisher(testWIF, []string{node.server.URL})

	result := pub.Publish(context.Background(), Request{
		Title: "Hello World",
		Body:  "My first post",
		Tags:  []string{"steemit", "intro"},
	})

	require.True(t, result.Success, "publish failed: %s", result.Message)
	assert.Equal(t, "alice", result.Author)
	assert.Regexp(t, regexp.MustCompile(`^hello-world-\d+-[0-9a-f]{6}$`), result.Permlink)
	assert.Equal(t, "https://steemit.com/@alice/"+result.Permlink, result.URL)
	assert.Equal(t, []string{"steemit", "intro"}, result.Tags)
	assert.Empty(t, result.ErrorKind)

	assert.Equal(t, int32(1), node.propsCalls.Load())
	assert.Equal(t, int32(1), node.castCalls.Load())
}

func TestPublish_BroadcastPayloadShape(t *testing.T) {
	node := newFakeNode(t)
	pub := newTestPublisher(testWIF, []string{node.server.URL})

	result := pub.Publish(context.Background(), Request{
		Title:    "Payload check",
		Body:     "Body",
		Tags:     []string{"steemit"},
		SelfVote: true,
	})
	require.True(t, result.Success, result.Message)

	raw := node.lastBroadcast.Load()
	require.NotNil(t, raw)

	var tx struct {
		RefBlockNum    uint16            `json:"ref_block_num"`
		RefBlockPrefix uint32            `json:"ref_block_prefix"`
		Operations     []json.RawMessage `json:"operations"`
		Signatures     []string          `json:"signatures"`
	}
	require.NoError(t, json.Unmarshal(*raw, &tx))

	// head_block_number 50000000 & 0xffff, prefix from block id bytes 4..8.
	assert.Equal(t, uint16(50000000&0xffff), tx.RefBlockNum)
	assert.Equal(t, uint32(0x04030201), tx.RefBlockPrefix)
	assert.Len(t, tx.Operations, 2, "comment plus self-vote")
	require.Len(t, tx.Signatures, 1)
	assert.Len(t, tx.Signatures[0], 130, "65-byte compact signature, hex encoded")
}

func TestPublish_ValidationFailsBeforeNetwork(t *testing.T) {
	node := newFakeNode(t)
	pub := newTestPublisher(testWIF, []string{node.server.URL})

	result := pub.Publish(context.Background(), Request{
		Title: strings.Repeat("a", 257),
		Body:  "Body",
		Tags:  []string{"steemit"},
	})

	require.False(t, result.Success)
	assert.Equal(t, KindValidation, result.ErrorKind)
	assert.Equal(t, int32(0), node.propsCalls.Load(), "validation failure must not reach the network")
	assert.Equal(t, int32(0), node.castCalls.Load())
}

func TestPublish_BeneficiaryWeightSum(t *testing.T) {
	node := newFakeNode(t)
	pub := newTestPublisher(testWIF, []string{node.server.URL})

	result := pub.Publish(context.Background(), Request{
		Title: "Hello",
		Body:  "Body",
		Tags:  []string{"steemit"},
		Beneficiaries: []steem.Beneficiary{
			{Account: "bob", Weight: 6000},
			{Account: "carol", Weight: 6000},
		},
	})

	require.False(t, result.Success)
	assert.Equal(t, KindValidation, result.ErrorKind)
	assert.Equal(t, int32(0), node.propsCalls.Load())
}

func TestPublish_BadPostingKey(t *testing.T) {
	node := newFakeNode(t)
	pub := newTestPublisher("not-a-valid-wif", []string{node.server.URL})

	result := pub.Publish(context.Background(), Request{
		Title: "Hello",
		Body:  "Body",
		Tags:  []string{"steemit"},
	})

	require.False(t, result.Success)
	assert.Equal(t, KindSigning, result.ErrorKind)
	assert.Equal(t, int32(0), node.propsCalls.Load(), "bad credential must not reach the network")
}

func TestPublish_ChainRejection(t *testing.T) {
	node := newFakeNode(t)
	node.rejectBroadcast = true
	pub := newTestPublisher(testWIF, []string{node.server.URL})

	result := pub.Publish(context.Background(), Request{
		Title: "Hello",
		Body:  "Body",
		Tags:  []string{"steemit"},
	})

	require.False(t, result.Success)
	assert.Equal(t, KindChainRejection, result.ErrorKind)
	assert.Contains(t, result.Message, "duplicate permlink")
	assert.Equal(t, int32(1), node.castCalls.Load(), "rejection must not be retried")
}

func TestPublish_AllNodesUnavailable(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	down.Close()

	pub := newTestPublisher(testWIF, []string{down.URL, down.URL})

	result := pub.Publish(context.Background(), Request{
		Title: "Hello",
		Body:  "Body",
		Tags:  []string{"steemit"},
	})

	require.False(t, result.Success)
	assert.Equal(t, KindNodesUnavailable, result.ErrorKind)
	assert.NotContains(t, result.Message, down.URL, "endpoint URLs must not leak to callers")
}

func TestPublish_CommunityBecomesCategory(t *testing.T) {
	node := newFakeNode(t)
	pub := newTestPublisher(testWIF, []string{node.server.URL})

	result := pub.Publish(context.Background(), Request{
		Title:     "Hello",
		Body:      "Body",
		Tags:      []string{"steemit"},
		Community: "hive-193186",
	})
	require.True(t, result.Success, result.Message)

	raw := node.lastBroadcast.Load()
	require.NotNil(t, raw)

	var tx struct {
		Operations [][]json.RawMessage `json:"operations"`
	}
	require.NoError(t, json.Unmarshal(*raw, &tx))
	require.NotEmpty(t, tx.Operations)

	var comment struct {
		ParentPermlink string `json:"parent_permlink"`
		JSONMetadata   string `json:"json_metadata"`
	}
	require.NoError(t, json.Unmarshal(tx.Operations[0][1], &comment))
	assert.Equal(t, "hive-193186", comment.ParentPermlink)
	assert.Contains(t, comment.JSONMetadata, `"community":"hive-193186"`)
}
