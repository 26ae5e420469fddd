package protocol

import "crypto/sha256"

// ChainID distinguishes independent networks; it is mixed into every
// transaction digest (spec §6).
type ChainID [32]byte

// MainnetChainID and TestnetChainID are the canonical chain ids, derived the
// same way spec §6 derives the original chain's ids: sha256 of a fixed
// ASCII string.
var (
	MainnetChainID = ChainID(sha256.Sum256([]byte("harmonichain mainchain")))
	TestnetChainID = ChainID(sha256.Sum256([]byte("harmonichain testnet")))
)

// Bytes returns the 32-byte chain id.
func (c ChainID) Bytes() []byte { return c[:] }
