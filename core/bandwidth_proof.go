package core

// bandwidth_proof.go – sustained-bandwidth proof generation/verification
// and scoring (§4.2). Same manager shape as storage_proof.go: mutex-guarded
// per-node metrics, logger injected, deterministic scoring formula.

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/google/uuid"
)

// BandwidthTestKind selects the transfer pattern a bandwidth test measures.
type BandwidthTestKind uint8

const (
	TestUpload BandwidthTestKind = iota
	TestDownload
	TestLatency
	TestBidirectional
)

// BandwidthTest is a verifier-issued bandwidth measurement request.
type BandwidthTest struct {
	ID        string
	Node      NodeId
	Kind      BandwidthTestKind
	SizeBytes uint64
	Peers     []NodeId
	ExpiresAt time.Time
}

// TransferProof attests a single peer-to-peer transfer within a test.
type TransferProof struct {
	Peer      NodeId
	Start     time.Time
	End       time.Time
	SizeBytes uint64
}

// PerformanceMeasurement is a node's self-reported measurement for a test.
type PerformanceMeasurement struct {
	Kind          BandwidthTestKind
	BandwidthBps  uint64
	DurationMs    uint64
	LatencyMs     float64
	AvailabilityPct float64
}

// BandwidthResponse answers a BandwidthTest.
type BandwidthResponse struct {
	TestID       string
	Transfers    []TransferProof
	Measurements []PerformanceMeasurement
}

const maxBandwidthBps = 10_000_000_000 / 8 // 10 Gbps in bytes/sec

func testSize(kind BandwidthTestKind) uint64 {
	switch kind {
	case TestLatency:
		return 1024
	case TestBidirectional:
		return 2 * 1024 * 1024
	default:
		return 1024 * 1024
	}
}

type nodeBandwidthMetrics struct {
	upload       float64
	download     float64
	latency      float64
	availability float64
}

// BandwidthProofManager issues and verifies bandwidth tests.
type BandwidthProofManager struct {
	cfg     Config
	logger  *log.Logger
	metrics map[NodeId]*nodeBandwidthMetrics
}

func NewBandwidthProofManager(cfg Config, lg *log.Logger) *BandwidthProofManager {
	return &BandwidthProofManager{cfg: cfg, logger: lg, metrics: make(map[NodeId]*nodeBandwidthMetrics)}
}

// GenerateTest builds a test of the given kind against up to 3 peers,
// selected by the caller and passed in as candidatePeers.
func (m *BandwidthProofManager) GenerateTest(node NodeId, kind BandwidthTestKind, candidatePeers []NodeId) *BandwidthTest {
	peers := candidatePeers
	if len(peers) > 3 {
		peers = peers[:3]
	}
	return &BandwidthTest{
		ID:        uuid.NewString(),
		Node:      node,
		Kind:      kind,
		SizeBytes: testSize(kind),
		Peers:     peers,
		ExpiresAt: time.Now().Add(m.cfg.ChallengeTimeout),
	}
}

// VerifyResponse validates every TransferProof and PerformanceMeasurement
// in the response against the issued test (§4.2).
func (m *BandwidthProofManager) VerifyResponse(test *BandwidthTest, resp *BandwidthResponse) bool {
	if resp.TestID != test.ID {
		return false
	}
	peerSet := make(map[NodeId]struct{}, len(test.Peers))
	for _, p := range test.Peers {
		peerSet[p] = struct{}{}
	}
	for _, tp := range resp.Transfers {
		if _, ok := peerSet[tp.Peer]; !ok {
			return false
		}
		if !tp.End.After(tp.Start) {
			return false
		}
	}
	for _, pm := range resp.Measurements {
		if pm.Kind != test.Kind && test.Kind != TestBidirectional {
			return false
		}
		if pm.BandwidthBps > maxBandwidthBps {
			return false
		}
		minDurationMs := float64(test.SizeBytes) * 1000 / float64(pm.BandwidthBps+1)
		if float64(pm.DurationMs) < minDurationMs {
			return false
		}
	}
	m.record(test.Node, resp.Measurements)
	return true
}

func (m *BandwidthProofManager) record(node NodeId, measurements []PerformanceMeasurement) {
	nm, ok := m.metrics[node]
	if !ok {
		nm = &nodeBandwidthMetrics{}
		m.metrics[node] = nm
	}
	for _, pm := range measurements {
		normalized := float64(pm.BandwidthBps) / float64(m.cfg.MinBandwidthBps)
		if normalized > 1 {
			normalized = 1
		}
		switch pm.Kind {
		case TestUpload:
			nm.upload = normalized
		case TestDownload:
			nm.download = normalized
		case TestLatency:
			nm.latency = min1(1000 / maxf(pm.LatencyMs, 1))
		}
		if pm.AvailabilityPct > 0 {
			nm.availability = pm.AvailabilityPct / 100
		}
	}
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// BandwidthScore computes bandwidth_score per §4.2.
func (m *BandwidthProofManager) BandwidthScore(node NodeId) float64 {
	nm, ok := m.metrics[node]
	if !ok {
		return 0
	}
	return 0.3*nm.upload + 0.3*nm.download + 0.2*nm.latency + 0.2*nm.availability
}
