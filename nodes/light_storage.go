package nodes

// light_storage.go – LightStorageNode (§1(C)): stores a partial subset of
// content (metadata plus a bounded working set of bytes) and receives
// storage challenges, without taking part in leader election. Grounded on the teacher's deleted
// core/Nodes/light_node.go (a thin wrapper narrowing NodeInterface down to
// the subset a resource-constrained peer can serve).

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"archivechain/core"
	"archivechain/p2p"
)

// LightStorageNode runs the listener and a lighter maintenance loop; it
// holds no ValidatorPool or ReplicationManager since it never seals blocks
// or plans redistribution. The listener logs each storage challenge it
// receives; it does not build or send a response.
type LightStorageNode struct {
	ID     core.NodeId
	host   *p2p.Host
	logger *log.Logger

	archives   *core.ArchiveStore
	storageMgr *core.StorageProofManager

	maintenanceInterval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

func NewLightStorageNode(
	id core.NodeId,
	host *p2p.Host,
	archives *core.ArchiveStore,
	storageMgr *core.StorageProofManager,
	lg *log.Logger,
) *LightStorageNode {
	return &LightStorageNode{
		ID:                  id,
		host:                host,
		logger:              lg,
		archives:            archives,
		storageMgr:          storageMgr,
		maintenanceInterval: 2 * time.Minute,
	}
}

func (n *LightStorageNode) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		return core.ErrValidation("LightStorageNode.Start", "already running")
	}
	rctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	n.running = true

	challenges, err := n.host.Subscribe("storage-challenges")
	if err != nil {
		cancel()
		n.running = false
		return err
	}

	n.wg.Add(2)
	go n.listen(rctx, challenges)
	go n.maintain(rctx)

	n.logger.WithField("node", n.ID.String()).Info("light storage node started")
	return nil
}

func (n *LightStorageNode) listen(ctx context.Context, challenges <-chan p2p.Message) {
	defer n.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-challenges:
			if !ok {
				return
			}
			n.logger.WithField("from", msg.From).Debug("received storage challenge")
		}
	}
}

func (n *LightStorageNode) maintain(ctx context.Context) {
	defer n.wg.Done()
	ticker := time.NewTicker(n.maintenanceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n.storageMgr.GCExpired(now)
		}
	}
}

func (n *LightStorageNode) Stop() error {
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

func (n *LightStorageNode) Health() HealthStatus {
	n.mu.Lock()
	running := n.running
	n.mu.Unlock()
	return HealthStatus{
		Healthy:   running,
		PeerCount: len(n.host.Peers()),
		Detail:    "light-storage",
	}
}
