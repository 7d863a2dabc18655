package core

// config.go – a versioned, immutable configuration artifact for consensus
// parameters, replication bounds, region topology and the gas schedule, read
// once at startup (DefaultConfig; pkg/config loads only the per-node YAML
// file, not this artifact). There is no
// hot-reload: a change requires a new genesis/epoch boundary (SPEC_FULL.md
// Design Notes).

import (
	"fmt"
	"math"
	"time"
)

// ConfigVersion is bumped whenever the shape of Config changes in a way
// that is not backward compatible across a running network.
const ConfigVersion = "v1"

// ConsensusWeightConfig holds the (wS, wB, wL) combination weights used by
// ScoreEngine.Compute (§3/§4.3 of spec.md). Weights must sum to 1.
type ConsensusWeightConfig struct {
	Storage   float64 `yaml:"storage"`
	Bandwidth float64 `yaml:"bandwidth"`
	Longevity float64 `yaml:"longevity"`
}

// DefaultConsensusWeights matches the spec's documented defaults.
func DefaultConsensusWeights() ConsensusWeightConfig {
	return ConsensusWeightConfig{Storage: 0.4, Bandwidth: 0.3, Longevity: 0.3}
}

// Validate enforces SPEC_FULL.md Open Question decision #1: invalid weights
// are rejected at construction, never silently renormalized.
func (c ConsensusWeightConfig) Validate() error {
	sum := c.Storage + c.Bandwidth + c.Longevity
	if math.Abs(sum-1.0) > 1e-6 {
		return ErrValidation("ConsensusWeightConfig.Validate",
			fmt.Sprintf("weights must sum to 1, got %f", sum))
	}
	if c.Storage < 0 || c.Bandwidth < 0 || c.Longevity < 0 {
		return ErrValidation("ConsensusWeightConfig.Validate", "weights must be non-negative")
	}
	return nil
}

// ReplicationConfig bounds the replication manager's adaptive replica count
// (§4.5).
type ReplicationConfig struct {
	MinReplicas        int     `yaml:"min_replicas"`
	MaxReplicas        int     `yaml:"max_replicas"`
	PopularityThresh   float64 `yaml:"popularity_threshold"`
	ReevaluateInterval time.Duration `yaml:"reevaluate_interval"`
	MinRegionsPerContent int   `yaml:"min_regions_per_content"`
	CapacityCeiling    float64 `yaml:"capacity_ceiling"`
}

func DefaultReplicationConfig() ReplicationConfig {
	return ReplicationConfig{
		MinReplicas:          3,
		MaxReplicas:          15,
		PopularityThresh:     1000,
		ReevaluateInterval:   7 * 24 * time.Hour,
		MinRegionsPerContent: 1,
		CapacityCeiling:      0.85,
	}
}

// Config is the full, immutable consensus/replication/gas configuration
// artifact for a network instance.
type Config struct {
	Version string `yaml:"version"`

	BlockTime           time.Duration         `yaml:"block_time"`
	ChallengeTimeout     time.Duration        `yaml:"challenge_timeout"`
	MinStorageProofBytes uint64               `yaml:"min_storage_proof_bytes"`
	MinBandwidthBps      uint64               `yaml:"min_bandwidth_bps"`
	ValidatorsPerRound   int                  `yaml:"validators_per_round"`
	EligibilityThreshold float64              `yaml:"eligibility_threshold"`
	TimeDriftTolerance   time.Duration        `yaml:"time_drift_tolerance"`
	MaxTxsPerBlock       int                  `yaml:"max_txs_per_block"`
	MaxFrameBytes        uint32               `yaml:"max_frame_bytes"`
	MinDifficulty        uint64               `yaml:"min_difficulty"`

	Weights      ConsensusWeightConfig `yaml:"weights"`
	Replication  ReplicationConfig     `yaml:"replication"`
}

// DefaultConfig returns the spec's documented defaults (§6 Consensus
// parameters).
func DefaultConfig() Config {
	return Config{
		Version:              ConfigVersion,
		BlockTime:            10 * time.Second,
		ChallengeTimeout:     30 * time.Second,
		MinStorageProofBytes: 1024,
		MinBandwidthBps:      1_000_000, // 1 MB/s expressed in bytes/sec
		ValidatorsPerRound:   21,
		EligibilityThreshold: 0.1,
		TimeDriftTolerance:   2 * time.Minute,
		MaxTxsPerBlock:       10_000,
		MaxFrameBytes:        4 << 20, // 4 MiB
		MinDifficulty:        1,
		Weights:              DefaultConsensusWeights(),
		Replication:          DefaultReplicationConfig(),
	}
}

// Validate checks the full configuration artifact for internal consistency
// before it is wired into any subsystem.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.Replication.MinReplicas <= 0 || c.Replication.MaxReplicas < c.Replication.MinReplicas {
		return ErrValidation("Config.Validate", "replication min/max replicas invalid")
	}
	if c.ValidatorsPerRound <= 0 {
		return ErrValidation("Config.Validate", "validators_per_round must be positive")
	}
	if c.MaxFrameBytes == 0 {
		return ErrValidation("Config.Validate", "max_frame_bytes must be positive")
	}
	return nil
}
