package core

// block.go – Block/BlockHeader (§3) and their hash/merkle invariants.
// The merkle construction reuses merkle_tree_operations.go verbatim; block
// hashing follows the teacher's header-hash-over-serialized-fields idiom
// from the deleted replication.go, generalized to this spec's header shape.

import (
	"encoding/binary"
	"time"
)

// BlockHeader carries the fields whose hash identifies a block.
type BlockHeader struct {
	Height       uint64
	PreviousHash Hash
	MerkleRoot   Hash
	Timestamp    time.Time
	Difficulty   uint64
	ValidatorID  NodeId
	Nonce        uint64
}

// Transaction is a minimal transfer/fee record; the contract-call and
// archive-announcement payloads ride inside Block.Body alongside it.
type Transaction struct {
	ID        Hash
	From      Address
	To        Address
	Amount    uint64
	Fee       uint64
	Nonce     uint64
	Signature []byte
}

// BlockBody carries a block's transactions, archive announcements and the
// storage-proof bundle backing this epoch's PoA evidence.
type BlockBody struct {
	Transactions []Transaction
	Archives     []Hash
	StorageProofs []StorageProofRecord
}

// StorageProofRecord pairs a challenge/response with its verification
// outcome, so block validation can re-verify it without re-issuing a live
// challenge.
type StorageProofRecord struct {
	Challenge StorageChallenge
	Response  StorageResponse
	Verified  bool
}

// Block is {header, body} plus the header's derived hash.
type Block struct {
	Header BlockHeader
	Body   BlockBody
}

func (h BlockHeader) encode() []byte {
	buf := make([]byte, 0, 128)
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], h.Height)
	buf = append(buf, tmp[:]...)
	buf = append(buf, h.PreviousHash.Bytes()...)
	buf = append(buf, h.MerkleRoot.Bytes()...)
	binary.BigEndian.PutUint64(tmp[:], uint64(h.Timestamp.UnixNano()))
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint64(tmp[:], h.Difficulty)
	buf = append(buf, tmp[:]...)
	buf = append(buf, h.ValidatorID.Bytes()...)
	binary.BigEndian.PutUint64(tmp[:], h.Nonce)
	buf = append(buf, tmp[:]...)
	return buf
}

// Hash computes H(header), the block's identity.
func (b *Block) Hash() Hash {
	return SHA256(b.Header.encode())
}

func (tx Transaction) encode() []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, tx.From.Bytes()...)
	buf = append(buf, tx.To.Bytes()...)
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], tx.Amount)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint64(tmp[:], tx.Fee)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint64(tmp[:], tx.Nonce)
	buf = append(buf, tmp[:]...)
	return buf
}

// ComputeTxHash recomputes a transaction's content hash for the "computed
// tx hash equals stated hash" check in §4.4.
func ComputeTxHash(tx Transaction) Hash {
	return SHA256(tx.encode())
}

// leaves flattens a block body into the ordered leaf set the merkle
// root is computed over: transactions, then archive hashes, in order.
func (b BlockBody) leaves() [][]byte {
	leaves := make([][]byte, 0, len(b.Transactions)+len(b.Archives))
	for _, tx := range b.Transactions {
		leaves = append(leaves, tx.encode())
	}
	for _, a := range b.Archives {
		leaves = append(leaves, a.Bytes())
	}
	return leaves
}

// ComputeMerkleRoot derives merkle_root = MerkleRoot(body) (§3). An empty
// body hashes to SHA256 of nothing, so empty blocks still have a stable,
// well-defined root.
func ComputeMerkleRoot(body BlockBody) Hash {
	leaves := body.leaves()
	if len(leaves) == 0 {
		return SHA256(nil)
	}
	tree, err := BuildMerkleTree(leaves)
	if err != nil {
		return SHA256(nil)
	}
	top := tree[len(tree)-1][0]
	return Hash(top)
}

// NewBlock assembles a block, deriving its merkle root from body.
func NewBlock(height uint64, previous Hash, validator NodeId, difficulty uint64, body BlockBody) *Block {
	header := BlockHeader{
		Height:       height,
		PreviousHash: previous,
		MerkleRoot:   ComputeMerkleRoot(body),
		Timestamp:    time.Now(),
		Difficulty:   difficulty,
		ValidatorID:  validator,
	}
	return &Block{Header: header, Body: body}
}
