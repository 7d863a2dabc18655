package core

// validator_pool.go – ValidatorInfo and its eligibility state machine
// (§3, §4.3). Grounded on the teacher's stake_penalty.go (mutex-guarded
// manager over per-address state, logger injected) and quorum_tracker.go
// (bounded in-memory tracking structures), adapted from raw ledger keys to
// typed in-memory state since the validator pool is a hot-path structure
// the consensus engine holds for the lifetime of the process.

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Eligibility is the validator pool state machine's current state for one
// validator (§4.3 diagram).
type Eligibility uint8

const (
	EligibilityEligible Eligibility = iota
	EligibilityProbation
	EligibilitySuspended
	EligibilityBanned
)

func (e Eligibility) String() string {
	switch e {
	case EligibilityEligible:
		return "Eligible"
	case EligibilityProbation:
		return "Probation"
	case EligibilitySuspended:
		return "Suspended"
	case EligibilityBanned:
		return "Banned"
	default:
		return "Unknown"
	}
}

const maxRecentValidations = 100

// ValidatorInfo augments a NodeId with consensus bookkeeping (§3).
type ValidatorInfo struct {
	NodeID             NodeId
	ConsensusScore     ConsensusScore
	StakeAmount        uint64
	RecentValidations  []bool // bounded ring buffer, most recent last
	ParticipationRate  float64
	LastSelectedEpoch  uint64
	Penalties          uint32
	Eligibility        Eligibility
	ProbationEpochs    uint32
	SuspendedReason    string
	BannedReason       string
	LastActivity       time.Time
	lowScorePenalties  uint32
}

func (v *ValidatorInfo) recordValidation(ok bool) {
	v.RecentValidations = append(v.RecentValidations, ok)
	if len(v.RecentValidations) > maxRecentValidations {
		v.RecentValidations = v.RecentValidations[len(v.RecentValidations)-maxRecentValidations:]
	}
}

// ValidatorPool holds ValidatorInfo for the network's validator set, guarded
// by a readers-writer lock per spec.md §5 (scoring reads concurrent,
// eligibility transitions exclusive).
type ValidatorPool struct {
	mu         sync.RWMutex
	validators map[NodeId]*ValidatorInfo
	cfg        Config
	logger     *log.Logger
}

func NewValidatorPool(cfg Config, lg *log.Logger) *ValidatorPool {
	return &ValidatorPool{validators: make(map[NodeId]*ValidatorInfo), cfg: cfg, logger: lg}
}

// Register adds a new validator to the pool in the Eligible state, or
// returns the existing entry if already present.
func (p *ValidatorPool) Register(node NodeId, stake uint64) *ValidatorInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.validators[node]; ok {
		return v
	}
	v := &ValidatorInfo{
		NodeID:            node,
		StakeAmount:       stake,
		ParticipationRate: 1.0,
		Eligibility:       EligibilityEligible,
		LastActivity:      time.Now(),
	}
	p.validators[node] = v
	return v
}

// Get returns a copy of a validator's current info.
func (p *ValidatorPool) Get(node NodeId) (ValidatorInfo, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.validators[node]
	if !ok {
		return ValidatorInfo{}, false
	}
	return *v, true
}

// Eligible returns the node ids currently in the Eligible state.
func (p *ValidatorPool) Eligible() []NodeId {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []NodeId
	for id, v := range p.validators {
		if v.Eligibility == EligibilityEligible {
			out = append(out, id)
		}
	}
	return out
}

// UpdateScore records a fresh ConsensusScore for a validator and applies the
// eligibility transitions driven by score/participation (§4.3 diagram).
func (p *ValidatorPool) UpdateScore(node NodeId, score ConsensusScore, eligibleThreshold float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.validators[node]
	if !ok {
		return ErrNotFoundf("ValidatorPool.UpdateScore", "validator not registered")
	}
	v.ConsensusScore = score
	p.applyEligibilityTransition(v, eligibleThreshold)
	return nil
}

func (p *ValidatorPool) applyEligibilityTransition(v *ValidatorInfo, threshold float64) {
	if v.Eligibility == EligibilityBanned {
		return // terminal
	}
	switch v.Eligibility {
	case EligibilityEligible:
		if v.ConsensusScore.CombinedScore < threshold || v.ParticipationRate < 0.5 {
			v.Eligibility = EligibilitySuspended
			v.SuspendedReason = "score or participation below threshold"
		}
	case EligibilitySuspended:
		// score updates never move a Suspended validator; only an
		// explicit PutOnProbation call does.
	case EligibilityProbation:
		if v.ConsensusScore.CombinedScore >= threshold && v.ParticipationRate > 0.8 {
			if v.ProbationEpochs > 0 {
				v.ProbationEpochs--
			}
			if v.ProbationEpochs == 0 {
				v.Eligibility = EligibilityEligible
			}
		}
	}
}

// RecordValidation appends to the bounded ring buffer of recent validation
// outcomes and recomputes participation_rate.
func (p *ValidatorPool) RecordValidation(node NodeId, ok bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, found := p.validators[node]
	if !found {
		return ErrNotFoundf("ValidatorPool.RecordValidation", "validator not registered")
	}
	v.recordValidation(ok)
	var successes int
	for _, r := range v.RecentValidations {
		if r {
			successes++
		}
	}
	v.ParticipationRate = float64(successes) / float64(len(v.RecentValidations))
	v.LastActivity = time.Now()
	return nil
}

// Penalize adds a LowScore penalty point to a validator. Three or more
// accumulated penalties transitions the validator to Suspended (§4.3).
func (p *ValidatorPool) Penalize(node NodeId, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.validators[node]
	if !ok {
		return ErrNotFoundf("ValidatorPool.Penalize", "validator not registered")
	}
	v.Penalties++
	v.lowScorePenalties++
	if v.lowScorePenalties >= 3 && v.Eligibility != EligibilityBanned {
		v.Eligibility = EligibilitySuspended
		v.SuspendedReason = reason
	}
	p.logger.WithField("node", node.String()).WithField("reason", reason).Warn("validator penalized")
	return nil
}

// Ban transitions a validator to Banned on malicious behavior. Banned is
// terminal: no further transition is possible.
func (p *ValidatorPool) Ban(node NodeId, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.validators[node]
	if !ok {
		return ErrNotFoundf("ValidatorPool.Ban", "validator not registered")
	}
	v.Eligibility = EligibilityBanned
	v.BannedReason = reason
	p.logger.WithField("node", node.String()).WithField("reason", reason).Error("validator banned")
	return nil
}

// PutOnProbation moves any non-Banned validator (Eligible or Suspended) to
// Probation(n) explicitly (used by
// the consensus engine when it chooses rehabilitation over suspension for
// borderline cases).
func (p *ValidatorPool) PutOnProbation(node NodeId, epochs uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.validators[node]
	if !ok {
		return ErrNotFoundf("ValidatorPool.PutOnProbation", "validator not registered")
	}
	if v.Eligibility == EligibilityBanned {
		return ErrConsensus("ValidatorPool.PutOnProbation", "cannot move a banned validator")
	}
	v.Eligibility = EligibilityProbation
	v.ProbationEpochs = epochs
	return nil
}

// PruneInactive removes validators inactive for more than 30 days that are
// not Banned, per §4.3.
func (p *ValidatorPool) PruneInactive(now time.Time) []NodeId {
	p.mu.Lock()
	defer p.mu.Unlock()
	var removed []NodeId
	for id, v := range p.validators {
		if v.Eligibility == EligibilityBanned {
			continue
		}
		if now.Sub(v.LastActivity) > 30*24*time.Hour {
			delete(p.validators, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Snapshot returns a stable, deep-copied view of every validator, used by
// leader election so its seed-chain replay is unaffected by concurrent
// mutation.
func (p *ValidatorPool) Snapshot() []ValidatorInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]ValidatorInfo, 0, len(p.validators))
	for _, v := range p.validators {
		cp := *v
		cp.RecentValidations = append([]bool(nil), v.RecentValidations...)
		out = append(out, cp)
	}
	return out
}
