package core

// quality_stake.go – tier-dependent quality stakes and slashing (§4.8).
// Grounded on the teacher's deleted stake_penalty.go (mutex-guarded manager
// over per-node stake state, logger injected, Penalize/SlashStake-shaped
// methods) adapted from raw ledger-key stakes to the tier/Slashed state
// machine this spec defines.

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// StakeTier is the quality-stake tier a node pledges (§4.8).
type StakeTier uint8

const (
	TierBasic StakeTier = iota
	TierStandard
	TierPremium
	TierExceptional
)

// MinimumStake returns the tier's required minimum pledge.
func (t StakeTier) MinimumStake() uint64 {
	switch t {
	case TierExceptional:
		return 100_000
	case TierPremium:
		return 25_000
	case TierStandard:
		return 5_000
	default: // TierBasic
		return 1_000
	}
}

// StakeState is a quality stake's lifecycle state.
type StakeState uint8

const (
	StakeActive StakeState = iota
	StakeSlashed
)

// QualityStakePosition is one node's locked quality-stake position.
type QualityStakePosition struct {
	Node             NodeId
	Tier             StakeTier
	Amount           uint64
	QualityViolations uint32
	State            StakeState
}

const qualityStakeTag = "quality_stake"

// slashRate is r_slash, the default fraction of stake burned per violation.
const slashRate = 0.15

// QualityStakeManager owns quality-stake positions and evaluates them
// against periodic quality scores.
type QualityStakeManager struct {
	mu        sync.RWMutex
	positions map[NodeId]*QualityStakePosition
	ledger    *TokenLedger
	systemAddr Address
	logger    *log.Logger
}

func NewQualityStakeManager(ledger *TokenLedger, systemAddr Address, lg *log.Logger) *QualityStakeManager {
	return &QualityStakeManager{
		positions:  make(map[NodeId]*QualityStakePosition),
		ledger:     ledger,
		systemAddr: systemAddr,
		logger:     lg,
	}
}

// Stake locks amount under the node's pledged tier, failing if amount is
// below the tier's minimum.
func (m *QualityStakeManager) Stake(node NodeId, addr Address, tier StakeTier, amount uint64) error {
	if amount < tier.MinimumStake() {
		return ErrValidation("QualityStakeManager.Stake", "amount below tier minimum")
	}
	if err := m.ledger.Lock(addr, amount, qualityStakeTag); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[node] = &QualityStakePosition{Node: node, Tier: tier, Amount: amount, State: StakeActive}
	return nil
}

// Position returns a copy of a node's current stake position.
func (m *QualityStakeManager) Position(node NodeId) (QualityStakePosition, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.positions[node]
	if !ok {
		return QualityStakePosition{}, false
	}
	return *p, true
}

// Evaluate applies a periodic quality score q against a node's stake
// (§4.8): below thresholdMinQuality, slash_amount = floor(stake * r_slash)
// is burned, quality_violations increments, and if the remaining stake
// falls below half the tier minimum the position transitions to Slashed
// (non-withdrawable).
func (m *QualityStakeManager) Evaluate(node NodeId, q, thresholdMinQuality float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[node]
	if !ok {
		return ErrNotFoundf("QualityStakeManager.Evaluate", "no stake position for node")
	}
	if p.State == StakeSlashed {
		return nil
	}
	if q >= thresholdMinQuality {
		return nil
	}

	slashAmount := uint64(float64(p.Amount) * slashRate)
	if slashAmount > p.Amount {
		slashAmount = p.Amount
	}
	// the locked stake is already out of any balance; burning it here
	// removes it from the locked counter permanently.
	m.ledger.mu.Lock()
	if m.ledger.locked < slashAmount {
		slashAmount = m.ledger.locked
	}
	m.ledger.locked -= slashAmount
	m.ledger.burned += slashAmount
	m.ledger.mu.Unlock()

	p.Amount -= slashAmount
	p.QualityViolations++

	if p.Amount < p.Tier.MinimumStake()/2 {
		p.State = StakeSlashed
		m.logger.WithField("node", node.String()).Warn("quality stake slashed below half tier minimum")
	}
	return nil
}
