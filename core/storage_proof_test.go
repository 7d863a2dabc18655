package core

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func sampleAt(data []byte, pos uint64) StorageSample {
	end := pos + 32
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	chunk := data[pos:end]
	return StorageSample{Position: pos, Data: chunk, Hash: SHA256(chunk)}
}

func TestStorageProofManagerVerifyResponseFailsOnAlteredSample(t *testing.T) {
	require := require.New(t)

	cfg := DefaultConfig()
	mgr := NewStorageProofManager(nil, cfg, log.New())

	data := make([]byte, 10*1024)
	for i := range data {
		data[i] = byte(i % 251)
	}
	archive := HashFromBytes([]byte("archive-1"))
	node := nodeIDFromByte(1)

	positions := []uint64{42, 1024, 4096}
	challenge := &StorageChallenge{
		ID:        "challenge-1",
		Node:      node,
		Archive:   archive,
		Positions: positions,
		SampleLen: 32,
		Algorithm: "sha256",
		ExpiresAt: time.Now().Add(time.Minute),
	}

	require.Equal(1.0, mgr.Reliability(node))

	good := []StorageSample{
		sampleAt(data, 42),
		sampleAt(data, 1024),
		sampleAt(data, 4096),
	}
	// alter the sampled bytes at position 4096 without updating its hash,
	// so the response carries a tampered sample (§4.1 failure path).
	good[2].Data = append([]byte(nil), good[2].Data...)
	good[2].Data[0] ^= 0xFF

	var combined []byte
	for _, s := range good {
		combined = append(combined, s.Hash.Bytes()...)
	}

	resp := &StorageResponse{
		ChallengeID:  challenge.ID,
		Samples:      good,
		CombinedHash: SHA256(combined),
	}

	require.False(mgr.VerifyResponse(challenge, resp))
	require.Equal(0.9, mgr.Reliability(node))

	nm := mgr.metricsFor(node)
	require.Equal(uint64(1), nm.failureCount)
	require.Equal(uint64(0), nm.successCount)
}

func TestStorageProofManagerVerifyResponseRejectsMismatchedChallengeID(t *testing.T) {
	require := require.New(t)

	mgr := NewStorageProofManager(nil, DefaultConfig(), log.New())
	challenge := &StorageChallenge{ID: "a", ExpiresAt: time.Now().Add(time.Minute)}
	resp := &StorageResponse{ChallengeID: "b"}

	require.False(mgr.VerifyResponse(challenge, resp))
}

func TestStorageProofManagerVerifyResponseRejectsExpiredChallenge(t *testing.T) {
	require := require.New(t)

	mgr := NewStorageProofManager(nil, DefaultConfig(), log.New())
	challenge := &StorageChallenge{ID: "a", ExpiresAt: time.Now().Add(-time.Minute)}
	resp := &StorageResponse{ChallengeID: "a"}

	require.False(mgr.VerifyResponse(challenge, resp))
}

func TestStorageProofManagerGCExpiredRemovesPastDeadline(t *testing.T) {
	require := require.New(t)

	mgr := NewStorageProofManager(nil, DefaultConfig(), log.New())
	now := time.Now()
	mgr.challenges["expired"] = &StorageChallenge{ID: "expired", ExpiresAt: now.Add(-time.Second)}
	mgr.challenges["live"] = &StorageChallenge{ID: "live", ExpiresAt: now.Add(time.Hour)}

	n := mgr.GCExpired(now)
	require.Equal(1, n)
	_, stillThere := mgr.challenges["live"]
	require.True(stillThere)
}
