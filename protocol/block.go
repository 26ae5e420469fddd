package protocol

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// BlockID is the SHA-256 hash of a BlockHeader's serialized bytes.
type BlockID [32]byte

func (id BlockID) Bytes() []byte { return id[:] }

// BlockHeader carries the metadata spec §4.5 step 1 validates: the
// scheduled witness, the link to the previous block, the block's slot
// timestamp, and a commitment to its transactions.
type BlockHeader struct {
	Height       uint64
	Previous     BlockID
	Timestamp    uint64
	Witness      string
	TxMerkleRoot [32]byte
	Signature    Signature
}

// headerBodyBytes serializes every header field except the witness
// signature, the value the signature commits to.
func (h *BlockHeader) headerBodyBytes() []byte {
	var buf bytes.Buffer
	writeUvarint(&buf, h.Height)
	buf.Write(h.Previous[:])
	writeUvarint(&buf, h.Timestamp)
	writeString(&buf, h.Witness)
	buf.Write(h.TxMerkleRoot[:])
	return buf.Bytes()
}

// Digest returns the hash the witness signature is computed over.
func (h *BlockHeader) Digest() BlockID {
	return sha256.Sum256(h.headerBodyBytes())
}

// ID returns the hash of the full header, including its signature, which
// downstream blocks reference as Previous.
func (h *BlockHeader) ID() BlockID {
	var buf bytes.Buffer
	buf.Write(h.headerBodyBytes())
	buf.Write(h.Signature[:])
	return sha256.Sum256(buf.Bytes())
}

// Sign computes and stores the witness's signature over the header digest.
func (h *BlockHeader) Sign(key *ecdsa.PrivateKey) error {
	digest := h.Digest()
	sig, err := crypto.Sign(digest[:], key)
	if err != nil {
		return err
	}
	copy(h.Signature[:], sig)
	return nil
}

// RecoverSigner recovers the public key that produced the header's
// signature.
func (h *BlockHeader) RecoverSigner() (*ecdsa.PublicKey, error) {
	digest := h.Digest()
	pub, err := crypto.SigToPub(digest[:], h.Signature[:])
	if err != nil {
		return nil, fmt.Errorf("protocol: recover block signer: %w", err)
	}
	return pub, nil
}

// Block is a header plus the ordered list of signed transactions it
// commits to (spec §3, §4.5).
type Block struct {
	Header       *BlockHeader
	Transactions []*Transaction
}

// MerkleRoot computes a binary Merkle tree over the transactions' digests
// under the given chain id, matching the commitment BlockHeader.TxMerkleRoot
// must equal (spec §4.5 step 1: "merkle root matches").
func MerkleRoot(chain ChainID, txs []*Transaction) ([32]byte, error) {
	if len(txs) == 0 {
		return sha256.Sum256(nil), nil
	}
	layer := make([][32]byte, len(txs))
	for i, tx := range txs {
		d, err := tx.Digest(chain)
		if err != nil {
			return [32]byte{}, err
		}
		copy(layer[i][:], d)
	}
	for len(layer) > 1 {
		next := make([][32]byte, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			if i+1 == len(layer) {
				next = append(next, hashPair(layer[i], layer[i]))
			} else {
				next = append(next, hashPair(layer[i], layer[i+1]))
			}
		}
		layer = next
	}
	return layer[0], nil
}

func hashPair(a, b [32]byte) [32]byte {
	var buf bytes.Buffer
	buf.Write(a[:])
	buf.Write(b[:])
	return sha256.Sum256(buf.Bytes())
}
