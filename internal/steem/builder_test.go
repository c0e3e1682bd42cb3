package steem

import (
	"testing"
	"time"
)

func TestNewChainRef(t *testing.T) {
	// Block id bytes 4..8 are 01 02 03 04, read little-endian.
	ref, err := NewChainRef(0x12345678, "aabbccdd01020304ffffffffffffffff")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.RefBlockNum != 0x5678 {
		t.Fatalf("expected low 16 bits of block number, got %#x", ref.RefBlockNum)
	}
	if ref.RefBlockPrefix != 0x04030201 {
		t.Fatalf("unexpected prefix %#x", ref.RefBlockPrefix)
	}
}

func TestNewChainRef_Malformed(t *testing.T) {
	cases := []struct {
		name string
		id   string
	}{
		{"not hex", "zzzz"},
		{"too short", "aabbccdd"},
		{"empty", ""},
	}
	for _, tc := range cases {
		if _, err := NewChainRef(1, tc.id); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestBuildTransaction_CommentOnly(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	tx, err := BuildTransaction(PostParams{
		Author:       "alice",
		Permlink:     "hello",
		Title:        "Hello",
		Body:         "Body",
		JSONMetadata: "{}",
		Category:     "steemit",
	}, ChainRef{RefBlockNum: 1, RefBlockPrefix: 2}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tx.Operations) != 1 {
		t.Fatalf("expected a single comment operation, got %d", len(tx.Operations))
	}
	comment, ok := tx.Operations[0].(*CommentOperation)
	if !ok {
		t.Fatalf("expected comment operation, got %T", tx.Operations[0])
	}
	if comment.ParentAuthor != "" {
		t.Fatalf("top-level post must have empty parent author")
	}
	if comment.ParentPermlink != "steemit" {
		t.Fatalf("category must become the parent permlink, got %q", comment.ParentPermlink)
	}

	wantExpiration := now.Add(ExpirationWindow)
	if !time.Time(tx.Expiration).Equal(wantExpiration) {
		t.Fatalf("expected expiration %v, got %v", wantExpiration, time.Time(tx.Expiration))
	}
}

func TestBuildTransaction_OperationOrder(t *testing.T) {
	tx, err := BuildTransaction(PostParams{
		Author:        "alice",
		Permlink:      "hello",
		Title:         "Hello",
		Body:          "Body",
		JSONMetadata:  "{}",
		Category:      "steemit",
		Beneficiaries: []Beneficiary{{Account: "bob", Weight: 1000}},
		SelfVote:      true,
	}, ChainRef{RefBlockNum: 1, RefBlockPrefix: 2}, time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tx.Operations) != 3 {
		t.Fatalf("expected comment, comment_options, vote; got %d operations", len(tx.Operations))
	}
	for i, want := range []string{"comment", "comment_options", "vote"} {
		if got := tx.Operations[i].Type(); got != want {
			t.Fatalf("operation %d: expected %s, got %s", i, want, got)
		}
	}

	options := tx.Operations[1].(*CommentOptionsOperation)
	if options.Permlink != "hello" || options.Author != "alice" {
		t.Fatalf("comment_options must reference the new comment")
	}
	if options.PercentSteemDollars != 10000 || !options.AllowVotes || !options.AllowCurationRewards {
		t.Fatalf("unexpected payout defaults: %+v", options)
	}

	vote := tx.Operations[2].(*VoteOperation)
	if vote.Voter != "alice" || vote.Author != "alice" || vote.Permlink != "hello" {
		t.Fatalf("self-vote must target the new comment, got %+v", vote)
	}
	if vote.Weight != FullVoteWeight {
		t.Fatalf("self-vote must be a full upvote, got %d", vote.Weight)
	}
}

func TestBuildTransaction_MissingChainRef(t *testing.T) {
	_, err := BuildTransaction(PostParams{
		Author:   "alice",
		Permlink: "hello",
		Category: "steemit",
	}, ChainRef{}, time.Unix(1700000000, 0))
	if err == nil {
		t.Fatalf("expected error for missing chain reference")
	}
	if _, ok := err.(*BuildError); !ok {
		t.Fatalf("expected *BuildError, got %T", err)
	}
}
