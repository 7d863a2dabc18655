package nodes

// relay.go – RelayNode (§1(C)): republishes messages on the "relay" gossip
// topic (sync traffic is not forwarded) without storing archive bytes or participating in consensus,
// keeping the mesh reachable for peers behind restrictive networks.
// Grounded on the teacher's deleted core/Nodes/light_node.go wrapper shape,
// narrowed further than LightStorageNode since a relay owns no ArchiveStore
// at all.

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"archivechain/core"
	"archivechain/p2p"
)

// RelayNode runs only a listener and a connection-table pruning task; it
// holds no archive or consensus state.
type RelayNode struct {
	ID     core.NodeId
	host   *p2p.Host
	conns  *p2p.ConnectionTable
	logger *log.Logger

	pruneInterval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

func NewRelayNode(id core.NodeId, host *p2p.Host, conns *p2p.ConnectionTable, lg *log.Logger) *RelayNode {
	return &RelayNode{
		ID:            id,
		host:          host,
		conns:         conns,
		logger:        lg,
		pruneInterval: 30 * time.Second,
	}
}

func (n *RelayNode) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		return core.ErrValidation("RelayNode.Start", "already running")
	}
	rctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	n.running = true

	relayed, err := n.host.Subscribe("relay")
	if err != nil {
		cancel()
		n.running = false
		return err
	}

	n.wg.Add(2)
	go n.relayLoop(rctx, relayed)
	go n.pruneLoop(rctx)

	n.logger.WithField("node", n.ID.String()).Info("relay node started")
	return nil
}

func (n *RelayNode) relayLoop(ctx context.Context, relayed <-chan p2p.Message) {
	defer n.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-relayed:
			if !ok {
				return
			}
			if err := n.host.Publish("relay", msg.Data); err != nil {
				n.logger.WithError(err).Debug("relay republish failed")
			}
		}
	}
}

func (n *RelayNode) pruneLoop(ctx context.Context) {
	defer n.wg.Done()
	ticker := time.NewTicker(n.pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n.conns.PruneStalled(now)
		}
	}
}

func (n *RelayNode) Stop() error {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return nil
	}
	n.cancel()
	n.running = false
	n.mu.Unlock()

	n.wg.Wait()
	return n.host.Close()
}

func (n *RelayNode) Health() HealthStatus {
	n.mu.Lock()
	running := n.running
	n.mu.Unlock()
	return HealthStatus{
		Healthy:   running,
		PeerCount: len(n.host.Peers()),
		Detail:    "relay",
	}
}
