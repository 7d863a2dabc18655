package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeMerkleRootEmptyBodyIsStable(t *testing.T) {
	require := require.New(t)
	require.Equal(SHA256(nil), ComputeMerkleRoot(BlockBody{}))
}

func TestNewBlockDerivesConsistentMerkleRoot(t *testing.T) {
	require := require.New(t)

	tx := Transaction{From: addrFromByte(1), To: addrFromByte(2), Amount: 10, Fee: 1}
	tx.ID = ComputeTxHash(tx)
	body := BlockBody{Transactions: []Transaction{tx}, Archives: []Hash{HashFromBytes([]byte("a"))}}

	block := NewBlock(1, HashFromBytes([]byte("genesis")), nodeIDFromByte(1), 1, body)
	require.Equal(ComputeMerkleRoot(body), block.Header.MerkleRoot)
}

func TestBlockHashChangesWithNonce(t *testing.T) {
	require := require.New(t)

	block := NewBlock(1, HashFromBytes([]byte("genesis")), nodeIDFromByte(1), 1, BlockBody{})
	h1 := block.Hash()
	block.Header.Nonce = 1
	h2 := block.Hash()
	require.NotEqual(h1, h2)
}

func TestComputeTxHashDetectsTampering(t *testing.T) {
	require := require.New(t)

	tx := Transaction{From: addrFromByte(1), To: addrFromByte(2), Amount: 10, Fee: 1}
	tx.ID = ComputeTxHash(tx)
	require.Equal(tx.ID, ComputeTxHash(tx))

	tampered := tx
	tampered.Amount = 999
	require.NotEqual(tx.ID, ComputeTxHash(tampered))
}

func TestBlockHeaderTimestampParticipatesInHash(t *testing.T) {
	require := require.New(t)

	h1 := BlockHeader{Height: 1, Timestamp: time.Unix(0, 0)}
	h2 := BlockHeader{Height: 1, Timestamp: time.Unix(1, 0)}
	require.NotEqual(h1.encode(), h2.encode())
}
