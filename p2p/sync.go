package p2p

// sync.go – bounded block-range sync sessions (§4.7). Grounded on the
// teacher's deleted replication.go (msgGetRange/msgRangeBlocks inventory
// exchange, one Replicator per transport) but restructured around this
// spec's explicit SyncSession state machine and its FIFO block-processing
// queue, with google/uuid minting session ids per SPEC_FULL.md's DOMAIN
// STACK wiring.

import (
	"sync"

	"github.com/google/uuid"

	"archivechain/core"
)

// SyncState is a sync session's position in its lifecycle (§3/§4.7).
type SyncState uint8

const (
	SyncRequesting SyncState = iota
	SyncReceiving
	SyncProcessing
	SyncCompleted
	SyncFailed
	SyncCancelled
)

func (s SyncState) String() string {
	switch s {
	case SyncRequesting:
		return "Requesting"
	case SyncReceiving:
		return "Receiving"
	case SyncProcessing:
		return "Processing"
	case SyncCompleted:
		return "Completed"
	case SyncFailed:
		return "Failed"
	case SyncCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

const syncBlockQueueCapacity = 256

// SyncSession is a bounded stateful exchange with one peer over a
// contiguous block range [Start, End) (§3/§4.7/GLOSSARY).
type SyncSession struct {
	mu sync.Mutex

	ID          string
	Peer        core.NodeId
	Start       uint64
	End         uint64
	State       SyncState
	Received    uint64

	queue chan *core.Block
}

// NewSyncSession opens a session for [start, end), rejecting ranges that
// violate §4.7's protocol-layer bound (end - start <= 1000, already
// enforced at the Envelope layer, but re-checked here since a session can
// also be opened directly by a sync worker).
func NewSyncSession(peer core.NodeId, start, end uint64) (*SyncSession, error) {
	if start >= end {
		return nil, core.ErrProtocolf("NewSyncSession", "start_height must be < end_height")
	}
	if end-start > maxSyncRange {
		return nil, core.ErrProtocolf("NewSyncSession", "sync range exceeds maximum of 1000 blocks")
	}
	return &SyncSession{
		ID:    uuid.NewString(),
		Peer:  peer,
		Start: start,
		End:   end,
		State: SyncRequesting,
		queue: make(chan *core.Block, syncBlockQueueCapacity),
	}, nil
}

func (s *SyncSession) transition(to SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	valid := map[SyncState][]SyncState{
		SyncRequesting: {SyncReceiving, SyncFailed, SyncCancelled},
		SyncReceiving:  {SyncProcessing, SyncFailed, SyncCancelled},
		SyncProcessing: {SyncCompleted, SyncFailed, SyncCancelled},
		SyncCompleted:  {},
		SyncFailed:     {},
		SyncCancelled:  {},
	}
	allowed := valid[s.State]
	ok := false
	for _, v := range allowed {
		if v == to {
			ok = true
			break
		}
	}
	if !ok {
		return core.ErrProtocolf("SyncSession.transition",
			"invalid sync transition "+s.State.String()+" -> "+to.String())
	}
	s.State = to
	return nil
}

// EnqueueBlock pushes a block into the session's FIFO processing queue,
// moving the session to Receiving on first arrival. A full queue is
// backpressure: the caller's send blocks rather than the session dropping
// blocks out of order.
func (s *SyncSession) EnqueueBlock(b *core.Block) error {
	s.mu.Lock()
	if s.State == SyncRequesting {
		s.mu.Unlock()
		if err := s.transition(SyncReceiving); err != nil {
			return err
		}
	} else {
		s.mu.Unlock()
	}
	s.queue <- b
	s.mu.Lock()
	s.Received++
	s.mu.Unlock()
	return nil
}

// CloseQueue signals no further blocks will arrive, allowing a drain loop
// reading s.Blocks() to terminate.
func (s *SyncSession) CloseQueue() { close(s.queue) }

// Blocks exposes the FIFO queue for a single consumer goroutine to range
// over, validating each against §4.4 and appending on success (§4.7).
func (s *SyncSession) Blocks() <-chan *core.Block { return s.queue }

func (s *SyncSession) BeginProcessing() error { return s.transition(SyncProcessing) }
func (s *SyncSession) Complete() error        { return s.transition(SyncCompleted) }

// Fail aborts the session; per §4.7, a failed session leaves the local
// chain strictly less advanced than a completed one covering the same
// range.
func (s *SyncSession) Fail() error { return s.transition(SyncFailed) }

// Cancel moves the session to Cancelled, per §5's cancellation & timeouts
// rule; the block queue is left open and is not drained.
func (s *SyncSession) Cancel() error { return s.transition(SyncCancelled) }

func (s *SyncSession) Snapshot() (SyncState, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State, s.Received
}

// SyncCoordinator tracks in-flight sessions by id.
type SyncCoordinator struct {
	mu       sync.RWMutex
	sessions map[string]*SyncSession
}

func NewSyncCoordinator() *SyncCoordinator {
	return &SyncCoordinator{sessions: make(map[string]*SyncSession)}
}

func (c *SyncCoordinator) Start(peer core.NodeId, start, end uint64) (*SyncSession, error) {
	s, err := NewSyncSession(peer, start, end)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.sessions[s.ID] = s
	c.mu.Unlock()
	return s, nil
}

func (c *SyncCoordinator) Get(id string) (*SyncSession, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[id]
	return s, ok
}

func (c *SyncCoordinator) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
}

func (c *SyncCoordinator) ActiveCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, s := range c.sessions {
		st, _ := s.Snapshot()
		if st == SyncRequesting || st == SyncReceiving || st == SyncProcessing {
			n++
		}
	}
	return n
}
