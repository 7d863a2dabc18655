package core

// identity.go – deterministic node key material for dev/test fixtures and
// genesis node setup, grounded on the teacher's own BIP-39 seed-phrase
// wallet bootstrap (used there to stand up reproducible dev accounts
// without persisting raw private keys to disk). Wires
// github.com/tyler-smith/go-bip39 the same way: a mnemonic is the
// human-recoverable form, a deterministic key pair is derived from its
// seed, never the other way around.

import (
	"github.com/tyler-smith/go-bip39"
)

// mnemonicEntropyBits is 256 bits of entropy, yielding a 24-word mnemonic
// (the teacher's own default strength for validator/operator fixtures).
const mnemonicEntropyBits = 256

// NewIdentityMnemonic generates a fresh BIP-39 mnemonic a dev/genesis node
// operator can record and later replay with IdentityFromMnemonic to recover
// the same NodeId and signing key.
func NewIdentityMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", ErrInternalf("NewIdentityMnemonic", "failed to generate entropy", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", ErrInternalf("NewIdentityMnemonic", "failed to derive mnemonic", err)
	}
	return mnemonic, nil
}

// IdentityFromMnemonic deterministically derives a KeyPair from a BIP-39
// mnemonic and optional passphrase, so the same phrase always recovers the
// same NodeId across dev runs and fixtures.
func IdentityFromMnemonic(mnemonic, passphrase string) (*KeyPair, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrValidation("IdentityFromMnemonic", "invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	priv := secp256k1PrivateKeyFromSeed(seed)
	return &KeyPair{Private: priv, Public: priv.PubKey()}, nil
}
