package steem

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// Operation IDs in the chain's protocol definition. The binary form tags each
// operation with its ID rather than its name.
const (
	voteOpID           = 0
	commentOpID        = 1
	commentOptionsOpID = 19
)

// steemChainID is the Steem mainnet chain ID (32 zero bytes), prepended to
// the serialized transaction before hashing for signature.
var steemChainID = make([]byte, 32)

// assetSymbolLength is the fixed width of a serialized symbol name.
const assetSymbolLength = 7

// wireEncoder accumulates the Graphene binary form: little-endian integers,
// LEB128 varint lengths and UTF-8 string bytes.
type wireEncoder struct {
	buf bytes.Buffer
}

func (e *wireEncoder) writeUvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	e.buf.Write(tmp[:n])
}

func (e *wireEncoder) writeUint16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	e.buf.Write(tmp[:])
}

func (e *wireEncoder) writeUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	e.buf.Write(tmp[:])
}

func (e *wireEncoder) writeInt64(v int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	e.buf.Write(tmp[:])
}

func (e *wireEncoder) writeString(s string) {
	e.writeUvarint(uint64(len(s)))
	e.buf.WriteString(s)
}

func (e *wireEncoder) writeBool(b bool) {
	if b {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}

func (e *wireEncoder) writeAsset(a Asset) {
	e.writeInt64(a.Amount)
	e.buf.WriteByte(a.Precision)
	var symbol [assetSymbolLength]byte
	copy(symbol[:], a.Symbol)
	e.buf.Write(symbol[:])
}

func (op *VoteOperation) serializeWire(e *wireEncoder) {
	e.writeUvarint(voteOpID)
	e.writeString(op.Voter)
	e.writeString(op.Author)
	e.writeString(op.Permlink)
	e.writeUint16(uint16(op.Weight))
}

func (op *CommentOperation) serializeWire(e *wireEncoder) {
	e.writeUvarint(commentOpID)
	e.writeString(op.ParentAuthor)
	e.writeString(op.ParentPermlink)
	e.writeString(op.Author)
	e.writeString(op.Permlink)
	e.writeString(op.Title)
	e.writeString(op.Body)
	e.writeString(op.JSONMetadata)
}

func (op *CommentOptionsOperation) serializeWire(e *wireEncoder) {
	e.writeUvarint(commentOptionsOpID)
	e.writeString(op.Author)
	e.writeString(op.Permlink)
	e.writeAsset(op.MaxAcceptedPayout)
	e.writeUint16(op.PercentSteemDollars)
	e.writeBool(op.AllowVotes)
	e.writeBool(op.AllowCurationRewards)
	if len(op.Beneficiaries) == 0 {
		e.writeUvarint(0)
		return
	}
	e.writeUvarint(1)
	// Extension static_variant index 0: comment_payout_beneficiaries.
	e.writeUvarint(0)
	e.writeUvarint(uint64(len(op.Beneficiaries)))
	for _, b := range op.Beneficiaries {
		e.writeString(b.Account)
		e.writeUint16(b.Weight)
	}
}

// Serialize produces the canonical binary form of the transaction. The field
// order and integer widths are a wire compatibility contract with the chain;
// any deviation invalidates the signature.
func (tx *Transaction) Serialize() ([]byte, error) {
	if len(tx.Operations) == 0 {
		return nil, fmt.Errorf("transaction has no operations")
	}

	var e wireEncoder
	e.writeUint16(tx.RefBlockNum)
	e.writeUint32(tx.RefBlockPrefix)
	e.writeUint32(uint32(time.Time(tx.Expiration).Unix()))
	e.writeUvarint(uint64(len(tx.Operations)))
	for _, op := range tx.Operations {
		op.serializeWire(&e)
	}
	e.writeUvarint(uint64(len(tx.Extensions)))
	return e.buf.Bytes(), nil
}

// SigningDigest returns sha256(chainID || serialized transaction), the value
// actually signed.
func (tx *Transaction) SigningDigest() ([]byte, error) {
	serialized, err := tx.Serialize()
	if err != nil {
		return nil, err
	}
	h := sha256.New()
	h.Write(steemChainID)
	h.Write(serialized)
	return h.Sum(nil), nil
}

// ID computes the transaction ID: the first 20 bytes of the sha256 of the
// serialized transaction, without signatures, hex encoded.
func (tx *Transaction) ID() (string, error) {
	serialized, err := tx.Serialize()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:20]), nil
}
