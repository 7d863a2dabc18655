package p2p

// message.go – the §4.7 message taxonomy: nine categories whose numeric
// value doubles as wire priority (0 = highest), a request_id correlating
// request/response pairs, and the protocol-layer (pre-semantic) validation
// each category is subject to before a message reaches any handler.

import (
	"time"

	"archivechain/core"
)

// Category is a message's taxonomy slot; its numeric value is also its
// priority, 0 being served first (§4.7).
type Category uint8

const (
	CategoryHandshake Category = iota // 0 - highest priority
	CategoryControl                   // 1 - KeepAlive/Ping-Pong/Error
	CategorySync                      // 2
	CategoryBlock                     // 3 - block/inventory
	CategoryTransaction               // 4
	CategoryArchive                   // 5 - archive announcement
	CategoryPeerExchange              // 6
	CategoryGossip                    // 7
	CategoryStatus                    // 8 - lowest priority
)

// Priority returns the category's wire priority; lower values are served
// first.
func (c Category) Priority() uint8 { return uint8(c) }

// Handshake is sent by the initiator of an outbound connection (§4.7).
type Handshake struct {
	PeerID          string
	ProtocolVersion string
	ClientVersion   string
	BlockHeight     uint64
	BestBlockHash   core.Hash
	Capabilities    []string
	Timestamp       time.Time
}

// HandshakeResponse is the responder's reply, carrying an explicit accept
// decision either side may act on by disconnecting.
type HandshakeResponse struct {
	PeerID          string
	ProtocolVersion string
	ClientVersion   string
	BlockHeight     uint64
	BestBlockHash   core.Hash
	Capabilities    []string
	Timestamp       time.Time
	Accepted        bool
}

// BlockRequest asks a peer for a single block by hash.
type BlockRequest struct {
	RequestID string
	BlockHash string // 64 hex chars
}

// SyncRequest asks a peer for a contiguous block range [StartHeight, EndHeight).
type SyncRequest struct {
	RequestID   string
	StartHeight uint64
	EndHeight   uint64
}

// GossipMessage carries arbitrary application payload on a pubsub topic
// with a hop-count bound.
type GossipMessage struct {
	Topic string
	TTL   uint8
	Data  []byte
}

// Envelope is the outer tagged-union every wire message travels in; exactly
// one payload field is populated, selected by Category.
type Envelope struct {
	Category  Category
	RequestID string

	Handshake         *Handshake
	HandshakeResponse *HandshakeResponse
	BlockRequest      *BlockRequest
	Block             *core.Block
	Transaction       *core.Transaction
	SyncRequest       *SyncRequest
	Gossip            *GossipMessage
}

const maxSyncRange = 1000
const maxGossipTTL = 100

// Validate runs the §4.7 protocol-layer (pre-semantic) checks: structural
// well-formedness only, never business-logic validation.
func (e *Envelope) Validate() error {
	switch e.Category {
	case CategoryHandshake:
		if e.Handshake == nil {
			return core.ErrProtocolf("Envelope.Validate", "handshake category missing payload")
		}
		h := e.Handshake
		if h.PeerID == "" || h.ProtocolVersion == "" || h.ClientVersion == "" {
			return core.ErrProtocolf("Envelope.Validate", "handshake fields must be non-empty")
		}
	case CategoryBlock:
		if e.BlockRequest != nil {
			if len(e.BlockRequest.BlockHash) != 64 {
				return core.ErrProtocolf("Envelope.Validate", "block_hash must be 64 hex chars")
			}
		}
	case CategorySync:
		if e.SyncRequest != nil {
			s := e.SyncRequest
			if s.StartHeight >= s.EndHeight {
				return core.ErrProtocolf("Envelope.Validate", "start_height must be < end_height")
			}
			if s.EndHeight-s.StartHeight > maxSyncRange {
				return core.ErrProtocolf("Envelope.Validate", "sync range exceeds maximum of 1000 blocks")
			}
		}
	case CategoryGossip:
		if e.Gossip == nil {
			return core.ErrProtocolf("Envelope.Validate", "gossip category missing payload")
		}
		g := e.Gossip
		if g.Topic == "" {
			return core.ErrProtocolf("Envelope.Validate", "gossip topic must be non-empty")
		}
		if g.TTL == 0 || g.TTL > maxGossipTTL {
			return core.ErrProtocolf("Envelope.Validate", "gossip ttl must be in (0,100]")
		}
	}
	return nil
}
