package p2p

// host.go – the go-libp2p transport/discovery wrapper (§4.7). Grounded on
// the teacher's core/network.go Node type (libp2p host + gossipsub +
// mDNS discovery, bootstrap dialing, topic join/publish/subscribe) with its
// package-level replicatedMessages/broadcastHook globals dropped: every
// piece of state here lives on the Host struct a caller constructs,
// consistent with this module's dependency-injection Design Note.

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	log "github.com/sirupsen/logrus"

	"archivechain/core"
)

// PeerInfo is what this host tracks about a connected peer.
type PeerInfo struct {
	ID   core.NodeId
	Addr string
}

// Message is a decoded pubsub delivery on a subscribed topic.
type Message struct {
	From  string
	Topic string
	Data  []byte
}

// Host wraps a libp2p host and pubsub instance, tracking known peers and
// open topics/subscriptions under its own locks.
type Host struct {
	host   host.Host
	pubsub *pubsub.PubSub
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger

	peerLock sync.RWMutex
	peers    map[string]*PeerInfo

	topicLock sync.Mutex
	topics    map[string]*pubsub.Topic

	subLock sync.Mutex
	subs    map[string]*pubsub.Subscription
}

// NewHost creates a libp2p host bound to listenAddr, joins gossipsub, dials
// bootstrapPeers and starts mDNS discovery tagged discoveryTag.
func NewHost(ctx context.Context, listenAddr string, bootstrapPeers []string, discoveryTag string, lg *log.Logger) (*Host, error) {
	hctx, cancel := context.WithCancel(ctx)

	h, err := libp2p.New(libp2p.ListenAddrStrings(listenAddr))
	if err != nil {
		cancel()
		return nil, core.ErrInternalf("NewHost", "failed to create libp2p host", err)
	}

	ps, err := pubsub.NewGossipSub(hctx, h)
	if err != nil {
		h.Close()
		cancel()
		return nil, core.ErrInternalf("NewHost", "failed to create gossipsub", err)
	}

	n := &Host{
		host:   h,
		pubsub: ps,
		ctx:    hctx,
		cancel: cancel,
		logger: lg,
		peers:  make(map[string]*PeerInfo),
		topics: make(map[string]*pubsub.Topic),
		subs:   make(map[string]*pubsub.Subscription),
	}

	if err := n.DialSeed(bootstrapPeers); err != nil {
		lg.WithError(err).Warn("bootstrap dial had errors")
	}

	mdns.NewMdnsService(h, discoveryTag, n)

	return n, nil
}

var _ mdns.Notifee = (*Host)(nil)

// HandlePeerFound implements mdns.Notifee: connect to a locally discovered
// peer, ignoring self and already-known peers.
func (n *Host) HandlePeerFound(info peer.AddrInfo) {
	if info.ID == n.host.ID() {
		return
	}
	n.peerLock.RLock()
	_, exists := n.peers[info.ID.String()]
	n.peerLock.RUnlock()
	if exists {
		return
	}
	if err := n.host.Connect(n.ctx, info); err != nil {
		n.logger.WithError(err).Warn("failed to connect to mDNS-discovered peer")
		return
	}
	n.peerLock.Lock()
	n.peers[info.ID.String()] = &PeerInfo{Addr: info.String()}
	n.peerLock.Unlock()
	n.logger.WithField("peer", info.ID.String()).Info("connected via mDNS")
}

// DialSeed connects to every bootstrap peer address, collecting (not
// aborting on) individual failures.
func (n *Host) DialSeed(seeds []string) error {
	var errs []string
	for _, addr := range seeds {
		pi, err := peer.AddrInfoFromString(addr)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid addr %s: %v", addr, err))
			continue
		}
		if err := n.host.Connect(n.ctx, *pi); err != nil {
			errs = append(errs, fmt.Sprintf("connect %s: %v", addr, err))
			continue
		}
		n.peerLock.Lock()
		n.peers[pi.ID.String()] = &PeerInfo{Addr: addr}
		n.peerLock.Unlock()
	}
	if len(errs) > 0 {
		return core.ErrProtocolf("Host.DialSeed", strings.Join(errs, "; "))
	}
	return nil
}

// Publish joins topic on first use and publishes data to it.
func (n *Host) Publish(topic string, data []byte) error {
	n.topicLock.Lock()
	t, ok := n.topics[topic]
	if !ok {
		var err error
		t, err = n.pubsub.Join(topic)
		if err != nil {
			n.topicLock.Unlock()
			return core.ErrProtocolf("Host.Publish", "join topic "+topic+": "+err.Error())
		}
		n.topics[topic] = t
	}
	n.topicLock.Unlock()
	if err := t.Publish(n.ctx, data); err != nil {
		return core.ErrProtocolf("Host.Publish", "publish on "+topic+": "+err.Error())
	}
	return nil
}

// Subscribe subscribes to topic once and streams decoded messages on a
// channel that closes when the subscription ends.
func (n *Host) Subscribe(topic string) (<-chan Message, error) {
	n.subLock.Lock()
	sub, ok := n.subs[topic]
	if !ok {
		var err error
		sub, err = n.pubsub.Subscribe(topic)
		if err != nil {
			n.subLock.Unlock()
			return nil, core.ErrProtocolf("Host.Subscribe", "subscribe to "+topic+": "+err.Error())
		}
		n.subs[topic] = sub
	}
	n.subLock.Unlock()

	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			msg, err := sub.Next(n.ctx)
			if err != nil {
				n.logger.WithError(err).Debug("subscription ended")
				return
			}
			select {
			case out <- Message{From: msg.GetFrom().String(), Topic: topic, Data: msg.Data}:
			case <-n.ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Peers returns a snapshot of currently known peers.
func (n *Host) Peers() []PeerInfo {
	n.peerLock.RLock()
	defer n.peerLock.RUnlock()
	out := make([]PeerInfo, 0, len(n.peers))
	for _, p := range n.peers {
		out = append(out, *p)
	}
	return out
}

// Close tears down the host and its context.
func (n *Host) Close() error {
	n.cancel()
	return n.host.Close()
}
