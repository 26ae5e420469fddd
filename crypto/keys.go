// Package crypto wraps secp256k1 key generation, compact-ECDSA signing and
// signature recovery (spec §1 treats signing/verification as a library
// collaborator) and a bech32 key-fingerprint display helper. Accounts are
// plain lowercase names (spec §3, §6), not derived addresses, so the only
// bech32 use left is a diagnostic fingerprint for operators to read keys
// aloud or compare at a glance.
package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
	"harmonichain/primitives"
)

// FingerprintPrefix is the bech32 human-readable prefix for a public-key
// fingerprint.
const FingerprintPrefix = "muse"

type PrivateKey struct {
	*ecdsa.PrivateKey
}

type PublicKey struct {
	*ecdsa.PublicKey
}

// GeneratePrivateKey creates a new secp256k1 signing key.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Bytes returns the raw private key scalar.
func (k *PrivateKey) Bytes() []byte {
	return crypto.FromECDSA(k.PrivateKey)
}

func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{&k.PrivateKey.PublicKey}
}

// PrivateKeyFromBytes reconstructs a signing key from its raw scalar.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Compressed returns the 33-byte compressed SEC1 encoding used as the
// primitives.PublicKey representation stored in every Authority.
func (k *PublicKey) Compressed() primitives.PublicKey {
	var out primitives.PublicKey
	copy(out[:], crypto.CompressPubkey(k.PublicKey))
	return out
}

// PublicKeyFromCompressed parses a 33-byte compressed key back into an
// *ecdsa.PublicKey, e.g. for comparing against a recovered signer.
func PublicKeyFromCompressed(compressed primitives.PublicKey) (*PublicKey, error) {
	pub, err := crypto.DecompressPubkey(compressed[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: decompress public key: %w", err)
	}
	return &PublicKey{pub}, nil
}

// Fingerprint renders the compressed public key as a bech32 string for
// operator-facing display (logs, CLI output), independent of the account
// naming scheme.
func (k *PublicKey) Fingerprint() string {
	compressed := k.Compressed()
	conv, err := bech32.ConvertBits(compressed[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(FingerprintPrefix, conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// ParseFingerprint reverses Fingerprint, recovering the original compressed
// public key bytes.
func ParseFingerprint(s string) (primitives.PublicKey, error) {
	prefix, decoded, err := bech32.Decode(s)
	if err != nil {
		return primitives.PublicKey{}, fmt.Errorf("crypto: invalid fingerprint: %w", err)
	}
	if prefix != FingerprintPrefix {
		return primitives.PublicKey{}, fmt.Errorf("crypto: unexpected fingerprint prefix %q", prefix)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return primitives.PublicKey{}, fmt.Errorf("crypto: error converting bits: %w", err)
	}
	var out primitives.PublicKey
	if len(conv) != len(out) {
		return primitives.PublicKey{}, fmt.Errorf("crypto: fingerprint decodes to %d bytes, want %d", len(conv), len(out))
	}
	copy(out[:], conv)
	return out, nil
}
