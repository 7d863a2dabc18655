package p2p

// handshake.go – the initiator/responder handshake exchange (§4.7): sent
// once on an outbound connection, driving that Connection from
// Handshaking into Connected (or Error on mismatch/rejection).

import (
	"time"

	"archivechain/core"
)

// LocalIdentity is what this node presents in a Handshake.
type LocalIdentity struct {
	PeerID          string
	ProtocolVersion string
	ClientVersion   string
	Capabilities    []string
}

// BuildHandshake constructs this node's outbound Handshake payload.
func (id LocalIdentity) BuildHandshake(blockHeight uint64, bestBlockHash core.Hash) Handshake {
	return Handshake{
		PeerID:          id.PeerID,
		ProtocolVersion: id.ProtocolVersion,
		ClientVersion:   id.ClientVersion,
		BlockHeight:     blockHeight,
		BestBlockHash:   bestBlockHash,
		Capabilities:    id.Capabilities,
		Timestamp:       time.Now(),
	}
}

// Respond evaluates a peer's Handshake and decides whether to accept it:
// protocol_version must match exactly, per §4.7's "either side may
// disconnect on mismatch" rule.
func (id LocalIdentity) Respond(peerHandshake Handshake, blockHeight uint64, bestBlockHash core.Hash) HandshakeResponse {
	accepted := peerHandshake.ProtocolVersion == id.ProtocolVersion
	return HandshakeResponse{
		PeerID:          id.PeerID,
		ProtocolVersion: id.ProtocolVersion,
		ClientVersion:   id.ClientVersion,
		BlockHeight:     blockHeight,
		BestBlockHash:   bestBlockHash,
		Capabilities:    id.Capabilities,
		Timestamp:       time.Now(),
		Accepted:        accepted,
	}
}

// CompleteHandshake drives conn from Handshaking to Connected on an
// accepted response, or to Error and a returned protocol error otherwise.
func CompleteHandshake(conn *Connection, resp HandshakeResponse) error {
	if !resp.Accepted {
		conn.Fail(core.ErrProtocolf("CompleteHandshake", "peer rejected handshake"))
		return core.ErrProtocolf("CompleteHandshake", "peer rejected handshake")
	}
	if err := conn.MarkConnected(); err != nil {
		conn.Fail(err)
		return err
	}
	return nil
}
