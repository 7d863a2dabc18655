package p2p

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelopeValidateSyncRangeTooLarge(t *testing.T) {
	require := require.New(t)

	env := &Envelope{
		Category:    CategorySync,
		SyncRequest: &SyncRequest{RequestID: "r1", StartHeight: 100, EndHeight: 2000},
	}
	err := env.Validate()
	require.Error(err, "end - start > 1000 must be rejected at the protocol layer")
}

func TestEnvelopeValidateSyncRangeAccepted(t *testing.T) {
	require := require.New(t)

	env := &Envelope{
		Category:    CategorySync,
		SyncRequest: &SyncRequest{RequestID: "r1", StartHeight: 100, EndHeight: 1100},
	}
	require.NoError(env.Validate())
}

func TestEnvelopeValidateHandshakeRequiresFields(t *testing.T) {
	require := require.New(t)

	env := &Envelope{Category: CategoryHandshake, Handshake: &Handshake{}}
	require.Error(env.Validate())

	env.Handshake.PeerID = "peer-1"
	env.Handshake.ProtocolVersion = "1.0"
	env.Handshake.ClientVersion = "archived/1.0"
	require.NoError(env.Validate())
}

func TestEnvelopeValidateGossipTTLBounds(t *testing.T) {
	require := require.New(t)

	env := &Envelope{Category: CategoryGossip, Gossip: &GossipMessage{Topic: "blocks", TTL: 0}}
	require.Error(env.Validate(), "ttl of 0 must be rejected")

	env.Gossip.TTL = 101
	require.Error(env.Validate(), "ttl above 100 must be rejected")

	env.Gossip.TTL = 50
	require.NoError(env.Validate())
}

func TestEnvelopeValidateBlockRequestRejectsMalformedHash(t *testing.T) {
	require := require.New(t)

	env := &Envelope{
		Category:     CategoryBlock,
		BlockRequest: &BlockRequest{RequestID: "r1", BlockHash: "not64hex"},
	}
	err := env.Validate()
	require.Error(err, "block_hash shorter than 64 hex chars must be rejected at the protocol layer")
}

func TestEnvelopeValidateBlockRequestAcceptsSixtyFourHexChars(t *testing.T) {
	require := require.New(t)

	env := &Envelope{
		Category:     CategoryBlock,
		BlockRequest: &BlockRequest{RequestID: "r1", BlockHash: makeHex64()},
	}
	require.NoError(env.Validate())
}

func makeHex64() string {
	h := make([]byte, 64)
	for i := range h {
		h[i] = 'a'
	}
	return string(h)
}

func TestCategoryPriorityOrdering(t *testing.T) {
	require := require.New(t)
	require.Less(CategoryHandshake.Priority(), CategoryStatus.Priority())
}
