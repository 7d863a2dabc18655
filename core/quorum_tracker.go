package core

import "sync"

// quorum_tracker.go – governance vote tallying for community-reserve
// funding proposals (§4.8, supplemented from
// original_source/core/src/token/distribution.rs's
// `{votes_for, votes_against, quorum_met, approved}` proposal shape).
// Unlike a plain participation counter, a proposal needs both a
// participation quorum and a for/against approval ratio before funds can
// move, so votes are cast with an explicit direction rather than recorded
// anonymously.

// approvalRatio is the spec's fixed 60% approval rule for community
// reserve proposals (§4.8's allocation table).
const approvalRatio = 0.60

// QuorumTracker tallies directional votes from community-reserve voters
// against a participation quorum and the fixed approval ratio.
type QuorumTracker struct {
	mu              sync.Mutex
	totalVoters     int
	quorumThreshold int // participation count required for quorum_met
	votesFor        map[Address]struct{}
	votesAgainst    map[Address]struct{}
}

// NewQuorumTracker returns a tracker over totalVoters eligible voters,
// requiring quorumThreshold participants before quorum_met can be true.
// A threshold outside (0, totalVoters] clamps down to totalVoters.
func NewQuorumTracker(totalVoters, quorumThreshold int) *QuorumTracker {
	if quorumThreshold <= 0 || quorumThreshold > totalVoters {
		quorumThreshold = totalVoters
	}
	return &QuorumTracker{
		totalVoters:     totalVoters,
		quorumThreshold: quorumThreshold,
		votesFor:        make(map[Address]struct{}),
		votesAgainst:    make(map[Address]struct{}),
	}
}

// CastVote records a for/against vote from addr, ignoring a repeat vote
// from the same address regardless of direction, and returns the current
// total participation count.
func (qt *QuorumTracker) CastVote(addr Address, approve bool) int {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	if _, already := qt.votesFor[addr]; already {
		return len(qt.votesFor) + len(qt.votesAgainst)
	}
	if _, already := qt.votesAgainst[addr]; already {
		return len(qt.votesFor) + len(qt.votesAgainst)
	}
	if approve {
		qt.votesFor[addr] = struct{}{}
	} else {
		qt.votesAgainst[addr] = struct{}{}
	}
	return len(qt.votesFor) + len(qt.votesAgainst)
}

// VotesFor and VotesAgainst report the current directional tallies.
func (qt *QuorumTracker) VotesFor() int {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	return len(qt.votesFor)
}

func (qt *QuorumTracker) VotesAgainst() int {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	return len(qt.votesAgainst)
}

// HasQuorum reports quorum_met: whether total participation has reached
// the required threshold, independent of how the vote is trending.
func (qt *QuorumTracker) HasQuorum() bool {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	return len(qt.votesFor)+len(qt.votesAgainst) >= qt.quorumThreshold
}

// Approved reports the spec's full rule: quorum_met and votes_for makes up
// at least approvalRatio of the participating votes.
func (qt *QuorumTracker) Approved() bool {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	total := len(qt.votesFor) + len(qt.votesAgainst)
	if total < qt.quorumThreshold {
		return false
	}
	return float64(len(qt.votesFor)) >= approvalRatio*float64(total)
}

// Reset clears all recorded votes.
func (qt *QuorumTracker) Reset() {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	qt.votesFor = make(map[Address]struct{})
	qt.votesAgainst = make(map[Address]struct{})
}
