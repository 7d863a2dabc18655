package core

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestBandwidthProofManagerGenerateTestCapsPeersAtThree(t *testing.T) {
	require := require.New(t)

	mgr := NewBandwidthProofManager(DefaultConfig(), log.New())
	node := nodeIDFromByte(1)
	peers := []NodeId{nodeIDFromByte(2), nodeIDFromByte(3), nodeIDFromByte(4), nodeIDFromByte(5)}

	test := mgr.GenerateTest(node, TestUpload, peers)
	require.Len(test.Peers, 3)
	require.Equal(uint64(1024*1024), test.SizeBytes)
}

func TestBandwidthProofManagerVerifyResponseAcceptsValidMeasurement(t *testing.T) {
	require := require.New(t)

	mgr := NewBandwidthProofManager(DefaultConfig(), log.New())
	node := nodeIDFromByte(1)
	peer := nodeIDFromByte(2)
	test := mgr.GenerateTest(node, TestUpload, []NodeId{peer})

	start := time.Now()
	resp := &BandwidthResponse{
		TestID: test.ID,
		Transfers: []TransferProof{
			{Peer: peer, Start: start, End: start.Add(time.Second), SizeBytes: test.SizeBytes},
		},
		Measurements: []PerformanceMeasurement{
			{Kind: TestUpload, BandwidthBps: 250_000, DurationMs: 4200, AvailabilityPct: 99.5},
		},
	}

	require.True(mgr.VerifyResponse(test, resp))
	require.InDelta(0.995, mgr.metrics[node].availability, 1e-9)
}

func TestBandwidthProofManagerVerifyResponseRejectsUnlistedPeer(t *testing.T) {
	require := require.New(t)

	mgr := NewBandwidthProofManager(DefaultConfig(), log.New())
	node := nodeIDFromByte(1)
	test := mgr.GenerateTest(node, TestUpload, []NodeId{nodeIDFromByte(2)})

	resp := &BandwidthResponse{
		TestID: test.ID,
		Transfers: []TransferProof{
			{Peer: nodeIDFromByte(9), Start: time.Now(), End: time.Now().Add(time.Second)},
		},
	}

	require.False(mgr.VerifyResponse(test, resp))
}

func TestBandwidthProofManagerVerifyResponseRejectsImpossibleThroughput(t *testing.T) {
	require := require.New(t)

	mgr := NewBandwidthProofManager(DefaultConfig(), log.New())
	node := nodeIDFromByte(1)
	test := mgr.GenerateTest(node, TestUpload, nil)

	resp := &BandwidthResponse{
		TestID: test.ID,
		Measurements: []PerformanceMeasurement{
			// claims the whole 1 MiB payload transferred in 1ms at a rate
			// that would require far more than the bandwidth claimed.
			{Kind: TestUpload, BandwidthBps: 1_000_000, DurationMs: 1},
		},
	}

	require.False(mgr.VerifyResponse(test, resp))
}

func TestBandwidthScoreWeightsComponents(t *testing.T) {
	require := require.New(t)

	mgr := NewBandwidthProofManager(DefaultConfig(), log.New())
	node := nodeIDFromByte(1)
	require.Equal(0.0, mgr.BandwidthScore(node), "no measurements recorded yet")

	test := mgr.GenerateTest(node, TestUpload, nil)
	resp := &BandwidthResponse{
		TestID: test.ID,
		Measurements: []PerformanceMeasurement{
			{Kind: TestUpload, BandwidthBps: 1_000_000, DurationMs: 10000},
		},
	}
	require.True(mgr.VerifyResponse(test, resp))
	require.InDelta(0.3, mgr.BandwidthScore(node), 1e-9, "upload fully normalized, all other components zero")
}
