package steem

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// compactSigSize is a recoverable signature: one recovery header byte
// followed by the 32-byte R and S scalars.
const compactSigSize = 65

// compactSigMagicOffset and compactSigCompPubKey form the recovery header the
// chain expects; Steem always treats the signing key as compressed.
const (
	compactSigMagicOffset = 27
	compactSigCompPubKey  = 4
)

// maxCanonicalAttempts bounds the deterministic nonce grind. Each attempt
// succeeds with probability ~1/2, so the bound is unreachable in practice.
const maxCanonicalAttempts = 128

// DecodePostingKey parses a WIF-encoded private posting key. Malformed keys
// (bad length, bad checksum) are reported as a SigningError so credential
// problems surface before any node is contacted.
func DecodePostingKey(wif string) (*btcec.PrivateKey, error) {
	decoded, err := btcutil.DecodeWIF(wif)
	if err != nil {
		return nil, &SigningError{Reason: "invalid posting key", Err: err}
	}
	return decoded.PrivKey, nil
}

// Sign produces a signed copy of the transaction. The input transaction is
// not mutated, and the signature is fully deterministic: identical
// transaction bytes and key always yield identical signature bytes.
func Sign(tx *Transaction, key *btcec.PrivateKey) (*SignedTransaction, error) {
	digest, err := tx.SigningDigest()
	if err != nil {
		return nil, &SigningError{Reason: "cannot serialize transaction", Err: err}
	}

	sig, err := signCanonical(key, digest)
	if err != nil {
		return nil, err
	}

	signed := &SignedTransaction{
		Transaction: *tx,
		Signatures:  []string{hex.EncodeToString(sig)},
	}
	return signed, nil
}

// signCanonical produces a compact recoverable ECDSA signature that satisfies
// the chain's canonicality rule. RFC6979 nonces are deterministic; when a
// nonce yields a non-canonical signature the extra-iterations counter is
// bumped and signing is retried, which keeps the whole procedure
// deterministic for a fixed (digest, key) pair.
func signCanonical(key *btcec.PrivateKey, digest []byte) ([]byte, error) {
	privBytes := key.Serialize()

	var e secp256k1.ModNScalar
	e.SetByteSlice(digest)

	for iteration := uint32(0); iteration < maxCanonicalAttempts; iteration++ {
		nonce := secp256k1.NonceRFC6979(privBytes, digest, nil, nil, iteration)
		sig, ok := signWithNonce(&key.Key, nonce, &e)
		nonce.Zero()
		if !ok {
			continue
		}
		if isCanonical(sig) {
			return sig, nil
		}
	}

	return nil, &SigningError{Reason: "no canonical signature found"}
}

// signWithNonce computes a single compact signature [header || R || S] for
// the given nonce, or reports that the nonce is unusable.
func signWithNonce(privKey, nonce, e *secp256k1.ModNScalar) ([]byte, bool) {
	var kG secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(nonce, &kG)
	kG.ToAffine()
	if kG.X.IsZero() && kG.Y.IsZero() {
		return nil, false
	}

	// r = x(kG) mod N. The overflow and oddness feed the recovery code.
	var r secp256k1.ModNScalar
	overflow := r.SetByteSlice(kG.X.Bytes()[:])
	if r.IsZero() {
		return nil, false
	}
	recoveryCode := byte(0)
	if overflow {
		recoveryCode |= 2
	}
	if kG.Y.IsOdd() {
		recoveryCode |= 1
	}

	// s = k⁻¹(e + r·d) mod N.
	kInv := new(secp256k1.ModNScalar).InverseValNonConst(nonce)
	s := new(secp256k1.ModNScalar).Mul2(privKey, &r).Add(e).Mul(kInv)
	if s.IsZero() {
		return nil, false
	}
	if s.IsOverHalfOrder() {
		s.Negate()
		recoveryCode ^= 1
	}

	sig := make([]byte, compactSigSize)
	sig[0] = compactSigMagicOffset + compactSigCompPubKey + recoveryCode
	rBytes := r.Bytes()
	copy(sig[1:33], rBytes[:])
	sBytes := s.Bytes()
	copy(sig[33:65], sBytes[:])
	return sig, true
}

// isCanonical applies the Graphene canonicality rule to a compact signature:
// neither scalar may have its top bit set or a redundant leading zero byte.
func isCanonical(sig []byte) bool {
	return sig[1]&0x80 == 0 &&
		!(sig[1] == 0 && sig[2]&0x80 == 0) &&
		sig[33]&0x80 == 0 &&
		!(sig[33] == 0 && sig[34]&0x80 == 0)
}
