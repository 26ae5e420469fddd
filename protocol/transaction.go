package protocol

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Signature is a compact-ECDSA signature: 64 bytes of R||S followed by a
// one-byte recovery id, per spec §6.
type Signature [65]byte

// Transaction is an ordered list of operations sharing one expiration and
// one set of signatures, per spec §3/§4.1. Operations are applied in list
// order (spec §5).
type Transaction struct {
	Expiration uint64
	Operations []Operation
	Signatures []Signature
}

// bodyBytes serializes every field except Signatures: LEB128 expiration,
// then the operation count and each tag-prefixed operation body (spec §6).
func (tx *Transaction) bodyBytes() ([]byte, error) {
	var buf bytes.Buffer
	writeUvarint(&buf, tx.Expiration)
	writeUvarint(&buf, uint64(len(tx.Operations)))
	for _, op := range tx.Operations {
		if err := EncodeOperation(&buf, op); err != nil {
			return nil, fmt.Errorf("protocol: encode operation %s: %w", op.Tag(), err)
		}
	}
	return buf.Bytes(), nil
}

// Digest computes SHA256(chain_id || serialized_transaction_without_signatures),
// the value every signature is over (spec §6).
func (tx *Transaction) Digest(chain ChainID) ([]byte, error) {
	body, err := tx.bodyBytes()
	if err != nil {
		return nil, err
	}
	h := sha256.New()
	h.Write(chain.Bytes())
	h.Write(body)
	return h.Sum(nil), nil
}

// Sign appends a new compact-ECDSA signature over the transaction's digest
// under the given chain id.
func (tx *Transaction) Sign(chain ChainID, key *ecdsa.PrivateKey) error {
	digest, err := tx.Digest(chain)
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return err
	}
	var s Signature
	copy(s[:], sig)
	tx.Signatures = append(tx.Signatures, s)
	return nil
}

// RecoverKeys recovers the candidate public keys behind every signature on
// the transaction (spec §4.2: "the checker operates on recovered public
// keys"). Signature recovery itself is treated as a library capability
// (spec §1's out-of-scope "cryptographic primitives"); this is the thin
// wrapper the authority checker consumes.
func (tx *Transaction) RecoverKeys(chain ChainID) ([]*ecdsa.PublicKey, error) {
	digest, err := tx.Digest(chain)
	if err != nil {
		return nil, err
	}
	keys := make([]*ecdsa.PublicKey, 0, len(tx.Signatures))
	for _, sig := range tx.Signatures {
		pub, err := crypto.SigToPub(digest, sig[:])
		if err != nil {
			return nil, fmt.Errorf("protocol: recover signer: %w", err)
		}
		keys = append(keys, pub)
	}
	return keys, nil
}

// MarshalBinary encodes the full transaction, including signatures, as the
// wire format spec §6 describes.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	body, err := tx.bodyBytes()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Write(body)
	writeUvarint(&buf, uint64(len(tx.Signatures)))
	for _, sig := range tx.Signatures {
		buf.Write(sig[:])
	}
	return buf.Bytes(), nil
}

// UnmarshalTransaction decodes a transaction previously produced by
// MarshalBinary.
func UnmarshalTransaction(data []byte) (*Transaction, error) {
	r := &byteReader{data: data}
	expiration, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	opCount, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	ops := make([]Operation, 0, opCount)
	for i := uint64(0); i < opCount; i++ {
		op, err := DecodeOperation(r)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	sigCount, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	sigs := make([]Signature, 0, sigCount)
	for i := uint64(0); i < sigCount; i++ {
		var s Signature
		for j := range s {
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			s[j] = b
		}
		sigs = append(sigs, s)
	}
	return &Transaction{Expiration: expiration, Operations: ops, Signatures: sigs}, nil
}

// ValidateEach runs every operation's pure Validate() in order, stopping at
// the first failure (spec §4.4: validate() is checked before dispatch).
func (tx *Transaction) ValidateEach() error {
	for i, op := range tx.Operations {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("protocol: operation %d (%s): %w", i, op.Tag(), err)
		}
	}
	return nil
}
