package core

// storage_proof.go – storage challenge/response and scoring (§4.1).
// Grounded on the teacher's stake_penalty.go style (mutex-guarded manager,
// logger injected, per-node bookkeeping) generalized from stake bookkeeping
// to challenge/response bookkeeping.

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/google/uuid"
)

// StorageChallenge names an archive, a set of random byte offsets to
// sample, a sample length, a nonce, an algorithm tag and an expiry.
type StorageChallenge struct {
	ID        string
	Node      NodeId
	Archive   Hash
	Positions []uint64
	SampleLen uint64
	Nonce     [16]byte
	Algorithm string // "sha256"
	ExpiresAt time.Time
}

// StorageSample is one sampled byte range and its hash.
type StorageSample struct {
	Position uint64
	Data     []byte
	Hash     Hash
}

// StorageResponse answers a StorageChallenge.
type StorageResponse struct {
	ChallengeID  string
	Samples      []StorageSample
	CombinedHash Hash
	MerkleProof  [][]byte
	MerkleRoot   Hash
	MerkleIndex  uint32
}

type nodeStorageMetrics struct {
	storedBytes  uint64
	successCount uint64
	failureCount uint64
	reliability  float64
	lastSuccess  time.Time
}

// StorageProofManager issues and verifies storage challenges and maintains
// each node's storage_score inputs.
type StorageProofManager struct {
	mu         sync.RWMutex
	store      *ArchiveStore
	cfg        Config
	logger     *log.Logger
	metrics    map[NodeId]*nodeStorageMetrics
	challenges map[string]*StorageChallenge
}

func NewStorageProofManager(store *ArchiveStore, cfg Config, lg *log.Logger) *StorageProofManager {
	return &StorageProofManager{
		store:      store,
		cfg:        cfg,
		logger:     lg,
		metrics:    make(map[NodeId]*nodeStorageMetrics),
		challenges: make(map[string]*StorageChallenge),
	}
}

func (m *StorageProofManager) metricsFor(node NodeId) *nodeStorageMetrics {
	nm, ok := m.metrics[node]
	if !ok {
		nm = &nodeStorageMetrics{reliability: 1.0}
		m.metrics[node] = nm
	}
	return nm
}

// RegisterStorage updates per-node metrics and the archive->storers index.
func (m *StorageProofManager) RegisterStorage(node NodeId, archive Hash, size uint64) error {
	if err := m.store.RegisterStorage(node, archive, size); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	nm := m.metricsFor(node)
	nm.storedBytes += size
	return nil
}

func randUint64(max uint64) (uint64, error) {
	if max == 0 {
		return 0, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// GenerateChallenge picks one archive from the node's claimed set uniformly
// at random, k distinct byte offsets, and a fresh nonce/expiry (§4.1).
func (m *StorageProofManager) GenerateChallenge(node NodeId) (*StorageChallenge, error) {
	claimed := m.store.ClaimedArchives(node)
	if len(claimed) == 0 {
		return nil, ErrNotFoundf("StorageProofManager.GenerateChallenge", "node has no claimed archives")
	}
	idx, err := randUint64(uint64(len(claimed)))
	if err != nil {
		return nil, ErrInternalf("StorageProofManager.GenerateChallenge", "rng failure", err)
	}
	archive := claimed[idx]
	md, err := m.store.Metadata(archive)
	if err != nil {
		return nil, err
	}

	k := int(md.Size / 1024)
	if k > 10 {
		k = 10
	}
	if k < 1 {
		k = 1
	}

	seen := make(map[uint64]struct{}, k)
	positions := make([]uint64, 0, k)
	for len(positions) < k && uint64(len(seen)) < md.Size {
		p, err := randUint64(md.Size)
		if err != nil {
			return nil, ErrInternalf("StorageProofManager.GenerateChallenge", "rng failure", err)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		positions = append(positions, p)
	}

	var nonce [16]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, ErrInternalf("StorageProofManager.GenerateChallenge", "nonce generation failed", err)
	}

	ch := &StorageChallenge{
		ID:        uuid.NewString(),
		Node:      node,
		Archive:   archive,
		Positions: positions,
		SampleLen: 1024,
		Nonce:     nonce,
		Algorithm: "sha256",
		ExpiresAt: time.Now().Add(m.cfg.ChallengeTimeout),
	}

	m.mu.Lock()
	m.challenges[ch.ID] = ch
	m.mu.Unlock()
	return ch, nil
}

// VerifyResponse checks a StorageResponse against its StorageChallenge per
// the ordered conditions in §4.1. Any failure yields false without
// aborting; there is no partial credit.
func (m *StorageProofManager) VerifyResponse(challenge *StorageChallenge, resp *StorageResponse) bool {
	ok := m.verify(challenge, resp)
	m.mu.Lock()
	defer m.mu.Unlock()
	nm := m.metricsFor(challenge.Node)
	if ok {
		nm.successCount++
		nm.reliability = 0.9*nm.reliability + 0.1
		if nm.reliability > 1.0 {
			nm.reliability = 1.0
		}
		nm.lastSuccess = time.Now()
	} else {
		nm.failureCount++
		nm.reliability *= 0.9
		if nm.reliability < 0.1 {
			nm.reliability = 0.1
		}
	}
	return ok
}

func (m *StorageProofManager) verify(challenge *StorageChallenge, resp *StorageResponse) bool {
	if resp.ChallengeID != challenge.ID {
		return false
	}
	if time.Now().After(challenge.ExpiresAt) {
		return false
	}
	if len(resp.Samples) != len(challenge.Positions) {
		return false
	}
	hashes := make([][]byte, len(resp.Samples))
	for i, sample := range resp.Samples {
		if sample.Position != challenge.Positions[i] {
			return false
		}
		if SHA256(sample.Data) != sample.Hash {
			return false
		}
		hashes[i] = sample.Hash.Bytes()
	}
	var combined []byte
	for _, h := range hashes {
		combined = append(combined, h...)
	}
	if SHA256(combined) != resp.CombinedHash {
		return false
	}
	leaf := resp.CombinedHash.Bytes()
	var root [32]byte
	copy(root[:], resp.MerkleRoot.Bytes())
	return VerifyMerklePath(root, leaf, resp.MerkleProof, resp.MerkleIndex)
}

// StorageScore computes the storage_score inputs for a node (§4.1).
func (m *StorageProofManager) StorageScore(node NodeId) float64 {
	m.mu.RLock()
	nm, ok := m.metrics[node]
	m.mu.RUnlock()
	if !ok {
		return 0
	}

	total := nm.successCount + nm.failureCount
	var successRate float64
	if total > 0 {
		successRate = float64(nm.successCount) / float64(total)
	}

	recency := 0.1
	if !nm.lastSuccess.IsZero() {
		elapsed := time.Since(nm.lastSuccess)
		if elapsed < 24*time.Hour {
			recency = 1.0 - elapsed.Hours()/24.0*0.9
		}
	}
	if recency < 0.1 {
		recency = 0.1
	}

	storedRatio := float64(nm.storedBytes) / float64(m.cfg.MinStorageProofBytes)
	if storedRatio > 1 {
		storedRatio = 1
	}

	return 0.4*storedRatio + 0.3*successRate + 0.2*nm.reliability + 0.1*recency
}

// Reliability returns the current reliability value for a node.
func (m *StorageProofManager) Reliability(node NodeId) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	nm, ok := m.metrics[node]
	if !ok {
		return 1.0
	}
	return nm.reliability
}

// GCExpired discards challenges whose expiry has passed. Expired challenges
// are garbage-collected periodically, not treated as a response failure by
// themselves (§4.1 Failure model notwithstanding the timeout path in
// VerifyResponse above, which does count an expired-but-submitted response
// as a failure).
func (m *StorageProofManager) GCExpired(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, ch := range m.challenges {
		if now.After(ch.ExpiresAt) {
			delete(m.challenges, id)
			n++
		}
	}
	return n
}
