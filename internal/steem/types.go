// Package steem implements the subset of the Steem blockchain protocol needed
// to publish content: operation and transaction types, the Graphene binary
// serialization used for signing, and canonical secp256k1 signatures.
package steem

import (
	"encoding/json"
	"fmt"
	"time"
)

// On-chain limits enforced before any network call. Byte limits apply to the
// UTF-8 encoded length, not the rune count.
const (
	MaxTitleBytes        = 256
	MaxBodyBytes         = 65535
	MaxJSONMetadataBytes = 65535
	MaxPermlinkLength    = 256
	MaxTags              = 5
	MaxTagLength         = 24
	MaxBeneficiaryWeight = 10000
	FullVoteWeight       = 10000
)

// Fixed application identity stamped into every post's json_metadata.
const (
	AppName       = "steemit-api/1.0"
	ContentFormat = "markdown"
	SiteURL       = "https://steemit.com"
)

// Operation is a single entry in a transaction's operation list. Concrete
// types serialize themselves in both the Graphene binary form (for signing)
// and the condenser_api JSON form (for broadcasting).
type Operation interface {
	// Type returns the on-chain operation name, e.g. "comment".
	Type() string

	serializeWire(e *wireEncoder)
}

// VoteOperation casts a vote on a comment. Weight is in basis points;
// 10000 is a full upvote.
type VoteOperation struct {
	Voter    string `json:"voter"`
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
	Weight   int16  `json:"weight"`
}

// Type implements Operation.
func (*VoteOperation) Type() string { return "vote" }

// CommentOperation creates or updates a post or reply. A top-level post has
// an empty ParentAuthor and uses ParentPermlink as its category.
type CommentOperation struct {
	ParentAuthor   string `json:"parent_author"`
	ParentPermlink string `json:"parent_permlink"`
	Author         string `json:"author"`
	Permlink       string `json:"permlink"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	JSONMetadata   string `json:"json_metadata"`
}

// Type implements Operation.
func (*CommentOperation) Type() string { return "comment" }

// Beneficiary assigns a share of a post's rewards to another account,
// expressed in basis points of the total.
type Beneficiary struct {
	Account string `json:"account"`
	Weight  uint16 `json:"weight"`
}

// CommentOptionsOperation attaches payout options to a comment in the same
// transaction. It must come after the comment operation it references.
type CommentOptionsOperation struct {
	Author               string
	Permlink             string
	MaxAcceptedPayout    Asset
	PercentSteemDollars  uint16
	AllowVotes           bool
	AllowCurationRewards bool
	Beneficiaries        []Beneficiary
}

// Type implements Operation.
func (*CommentOptionsOperation) Type() string { return "comment_options" }

// MarshalJSON emits the condenser_api form, with beneficiaries wrapped in the
// tagged extensions array the chain expects.
func (op *CommentOptionsOperation) MarshalJSON() ([]byte, error) {
	extensions := []interface{}{}
	if len(op.Beneficiaries) > 0 {
		extensions = append(extensions, []interface{}{
			0, map[string][]Beneficiary{"beneficiaries": op.Beneficiaries},
		})
	}
	return json.Marshal(struct {
		Author               string        `json:"author"`
		Permlink             string        `json:"permlink"`
		MaxAcceptedPayout    Asset         `json:"max_accepted_payout"`
		PercentSteemDollars  uint16        `json:"percent_steem_dollars"`
		AllowVotes           bool          `json:"allow_votes"`
		AllowCurationRewards bool          `json:"allow_curation_rewards"`
		Extensions           []interface{} `json:"extensions"`
	}{
		Author:               op.Author,
		Permlink:             op.Permlink,
		MaxAcceptedPayout:    op.MaxAcceptedPayout,
		PercentSteemDollars:  op.PercentSteemDollars,
		AllowVotes:           op.AllowVotes,
		AllowCurationRewards: op.AllowCurationRewards,
		Extensions:           extensions,
	})
}

// Asset is an on-chain amount with a fixed precision and symbol, e.g.
// "1000000.000 SBD".
type Asset struct {
	Amount    int64
	Precision uint8
	Symbol    string
}

// DefaultMaxAcceptedPayout is the chain default payout cap for new comments.
var DefaultMaxAcceptedPayout = Asset{Amount: 1000000000, Precision: 3, Symbol: "SBD"}

// String renders the legacy "amount symbol" form.
func (a Asset) String() string {
	div := int64(1)
	for i := uint8(0); i < a.Precision; i++ {
		div *= 10
	}
	return fmt.Sprintf("%d.%0*d %s", a.Amount/div, int(a.Precision), a.Amount%div, a.Symbol)
}

// MarshalJSON emits the legacy string form used by condenser_api.
func (a Asset) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// TimePointSec is a chain timestamp serialized without a timezone suffix,
// always interpreted as UTC.
type TimePointSec time.Time

const timePointSecFormat = "2006-01-02T15:04:05"

// MarshalJSON implements json.Marshaler.
func (t TimePointSec) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(timePointSecFormat))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TimePointSec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(timePointSecFormat, s)
	if err != nil {
		return err
	}
	*t = TimePointSec(parsed.UTC())
	return nil
}

// Transaction is an ordered list of operations referencing recent chain state.
// Operation order is fixed at build time and never reordered afterwards.
type Transaction struct {
	RefBlockNum    uint16       `json:"ref_block_num"`
	RefBlockPrefix uint32       `json:"ref_block_prefix"`
	Expiration     TimePointSec `json:"expiration"`
	Operations     []Operation  `json:"-"`
	Extensions     []interface{}
}

// operationTuple renders an operation as the ["name", {...}] pair
// condenser_api expects.
type operationTuple struct {
	op Operation
}

func (t operationTuple) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{t.op.Type(), t.op})
}

// MarshalJSON implements json.Marshaler for the broadcast payload.
func (tx *Transaction) MarshalJSON() ([]byte, error) {
	ops := make([]operationTuple, len(tx.Operations))
	for i, op := range tx.Operations {
		ops[i] = operationTuple{op}
	}
	extensions := tx.Extensions
	if extensions == nil {
		extensions = []interface{}{}
	}
	return json.Marshal(struct {
		RefBlockNum    uint16           `json:"ref_block_num"`
		RefBlockPrefix uint32           `json:"ref_block_prefix"`
		Expiration     TimePointSec     `json:"expiration"`
		Operations     []operationTuple `json:"operations"`
		Extensions     []interface{}    `json:"extensions"`
	}{tx.RefBlockNum, tx.RefBlockPrefix, tx.Expiration, ops, extensions})
}

// SignedTransaction is an immutable transaction plus its signatures.
type SignedTransaction struct {
	Transaction
	Signatures []string `json:"signatures"`
}

// MarshalJSON implements json.Marshaler for the broadcast payload.
func (tx *SignedTransaction) MarshalJSON() ([]byte, error) {
	inner, err := tx.Transaction.MarshalJSON()
	if err != nil {
		return nil, err
	}
	sigs, err := json.Marshal(tx.Signatures)
	if err != nil {
		return nil, err
	}
	// Splice signatures into the transaction object.
	out := append(inner[:len(inner)-1], []byte(`,"signatures":`)...)
	out = append(out, sigs...)
	return append(out, '}'), nil
}
