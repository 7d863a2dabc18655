package core

// crypto_sig.go – cryptographic primitives shared across the consensus,
// P2P handshake and contract-host subsystems. The spec fixes only the
// *required properties* of signatures (§6 Non-goals), not an algorithm, so
// this file wires secp256k1 (already a teacher/pack dependency via
// go-ethereum and btcec) behind KeyPair.Sign and VerifySignature.

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"
)

// Keccak256 hashes data with Keccak-256, used for deriving NodeIds and
// contract addresses the way the teacher's Ethereum-flavoured stack does.
func Keccak256(data ...[]byte) Hash {
	return HashFromBytes(crypto.Keccak256(data...))
}

// SHA256 hashes data with SHA-256, used for content-addressing and storage
// proofs per §4.1, where the algorithm tag travels with the challenge.
func SHA256(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(sum)
}

// KeyPair bundles a secp256k1 private/public key for test fixtures and
// single-process node simulation.
type KeyPair struct {
	Private *btcec.PrivateKey
	Public  *btcec.PublicKey
}

// GenerateKeyPair creates a new secp256k1 keypair.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return &KeyPair{Private: priv, Public: priv.PubKey()}, nil
}

// secp256k1PrivateKeyFromSeed derives a private key deterministically from
// the SHA-256 digest of the whole BIP-39 seed, for IdentityFromMnemonic
// (identity.go).
func secp256k1PrivateKeyFromSeed(seed []byte) *btcec.PrivateKey {
	digest := sha256.Sum256(seed)
	priv, _ := btcec.PrivKeyFromBytes(digest[:])
	return priv
}

// NodeId derives this keypair's stable NodeId from its compressed public key.
func (kp *KeyPair) NodeId() NodeId {
	return NodeIdFromPublicKey(kp.Public.SerializeCompressed())
}

// Sign produces a deterministic ECDSA signature over the SHA-256 digest of
// data, satisfying the "collision resistant, deterministic" requirement the
// spec places on signatures without mandating a specific scheme.
func (kp *KeyPair) Sign(data []byte) []byte {
	digest := sha256.Sum256(data)
	sig := ecdsa.Sign(kp.Private, digest[:])
	return sig.Serialize()
}

// VerifySignature checks a signature produced by Sign against a serialized
// compressed public key.
func VerifySignature(pubKey, sig, data []byte) bool {
	pub, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return false
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(data)
	return parsed.Verify(digest[:], pub)
}
