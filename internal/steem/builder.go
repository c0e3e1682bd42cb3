package steem

import (
	"encoding/binary"
	"encoding/hex"
	"time"
)

// ExpirationWindow is how far in the future a transaction's soft deadline is
// set. Nodes reject transactions whose expiration has already passed.
const ExpirationWindow = 60 * time.Second

// ChainRef anchors a transaction to recent chain state so nodes can order it
// and reject stale replays.
type ChainRef struct {
	RefBlockNum    uint16
	RefBlockPrefix uint32
}

// NewChainRef derives the reference fields from the head block reported by a
// node: the low 16 bits of the block number and a prefix taken from bytes
// 4..8 of the head block ID.
func NewChainRef(headBlockNumber uint32, headBlockID string) (ChainRef, error) {
	raw, err := hex.DecodeString(headBlockID)
	if err != nil {
		return ChainRef{}, &BuildError{Reason: "head block id is not valid hex"}
	}
	if len(raw) < 8 {
		return ChainRef{}, &BuildError{Reason: "head block id is too short"}
	}
	return ChainRef{
		RefBlockNum:    uint16(headBlockNumber & 0xffff),
		RefBlockPrefix: binary.LittleEndian.Uint32(raw[4:8]),
	}, nil
}

// PostParams is the validated input to BuildTransaction.
type PostParams struct {
	Author        string
	Permlink      string
	Title         string
	Body          string
	JSONMetadata  string
	Category      string // parent permlink: community when set, first tag otherwise
	Beneficiaries []Beneficiary
	SelfVote      bool
}

// BuildTransaction assembles the ordered operation list for a publish
// request. The comment operation always comes first; the beneficiary
// assignment and self-vote, when present, follow in that order since both
// reference the freshly created comment.
func BuildTransaction(p PostParams, ref ChainRef, now time.Time) (*Transaction, error) {
	if ref == (ChainRef{}) {
		return nil, &BuildError{Reason: "chain reference data is missing"}
	}

	tx := &Transaction{
		RefBlockNum:    ref.RefBlockNum,
		RefBlockPrefix: ref.RefBlockPrefix,
		Expiration:     TimePointSec(now.UTC().Add(ExpirationWindow)),
	}

	tx.Operations = append(tx.Operations, &CommentOperation{
		ParentAuthor:   "",
		ParentPermlink: p.Category,
		Author:         p.Author,
		Permlink:       p.Permlink,
		Title:          p.Title,
		Body:           p.Body,
		JSONMetadata:   p.JSONMetadata,
	})

	if len(p.Beneficiaries) > 0 {
		tx.Operations = append(tx.Operations, &CommentOptionsOperation{
			Author:               p.Author,
			Permlink:             p.Permlink,
			MaxAcceptedPayout:    DefaultMaxAcceptedPayout,
			PercentSteemDollars:  10000,
			AllowVotes:           true,
			AllowCurationRewards: true,
			Beneficiaries:        p.Beneficiaries,
		})
	}

	if p.SelfVote {
		tx.Operations = append(tx.Operations, &VoteOperation{
			Voter:    p.Author,
			Author:   p.Author,
			Permlink: p.Permlink,
			Weight:   FullVoteWeight,
		})
	}

	return tx, nil
}
