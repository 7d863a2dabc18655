package core

// consensus_score.go – the composite Proof-of-Archive score (§3
// ConsensusScore, §4.3). Combines storage, bandwidth and longevity proofs
// into the single weighted figure the validator pool and leader election
// depend on.

import "time"

// ConsensusScore is the combined proof figure for one node at one point in
// time.
type ConsensusScore struct {
	NodeID         NodeId
	StorageScore   float64
	BandwidthScore float64
	LongevityScore float64
	CombinedScore  float64
	CalculatedAt   time.Time
}

// ScoreEngine computes ConsensusScore values from the three proof
// managers, applying the configured (wS, wB, wL) weights.
type ScoreEngine struct {
	cfg        Config
	storage    *StorageProofManager
	bandwidth  *BandwidthProofManager
	longevity  *LongevityManager
}

// NewScoreEngine validates cfg.Weights at construction (Open Question #1:
// reject, never silently renormalize) and wires the three proof sources.
func NewScoreEngine(cfg Config, storage *StorageProofManager, bandwidth *BandwidthProofManager, longevity *LongevityManager) (*ScoreEngine, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	return &ScoreEngine{cfg: cfg, storage: storage, bandwidth: bandwidth, longevity: longevity}, nil
}

// Compute returns node's current ConsensusScore.
func (e *ScoreEngine) Compute(node NodeId) ConsensusScore {
	s := e.storage.StorageScore(node)
	b := e.bandwidth.BandwidthScore(node)
	l := e.longevity.BonusFactor(node)
	// longevity's bonus factor is capped at 2.0 (a multiplier), while the
	// combined score's inputs are each in [0,1]; normalize by halving the
	// cap so a maxed-out longevity bonus saturates the longevity term
	// without letting it dominate storage/bandwidth.
	lNorm := l / 2.0
	if lNorm > 1 {
		lNorm = 1
	}
	combined := e.cfg.Weights.Storage*s + e.cfg.Weights.Bandwidth*b + e.cfg.Weights.Longevity*lNorm
	return ConsensusScore{
		NodeID:         node,
		StorageScore:   s,
		BandwidthScore: b,
		LongevityScore: lNorm,
		CombinedScore:  combined,
		CalculatedAt:   time.Now(),
	}
}

// Eligible reports whether a score meets the consensus eligibility
// threshold θ_elig (default 0.1).
func (e *ScoreEngine) Eligible(score ConsensusScore) bool {
	return score.CombinedScore >= e.cfg.EligibilityThreshold
}
