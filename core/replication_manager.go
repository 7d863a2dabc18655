package core

// replication_manager.go – adaptive replica count and node selection
// (§4.5). This is a fresh file: the teacher's own replication.go turned
// out to be a block-gossip/sync protocol (now grounding p2p/sync.go), not
// a content-replica-count manager, so this component has no direct
// teacher analogue and is grounded instead on the distilled spec plus
// original_source/core/src/storage/replication.rs (SPEC_FULL.md §B),
// written in the same mutex-guarded-manager idiom as the rest of core/.

import (
	"sort"
	"sync"
	"time"
)

// ReplicationStrategy is the per-artifact replication plan (§3).
type ReplicationStrategy struct {
	MinReplicas            int
	MaxReplicas            int
	PopularityThreshold    float64
	GeographicDistribution bool
	Importance             Importance
	PlacementPreferences   []string
	LastEvaluated          time.Time
}

// RedistributionPlan is emitted by re-evaluation when an artifact's optimal
// replica count has drifted from its current plan (§4.5, supplemented from
// original_source/core/src/storage/distribution.rs).
type RedistributionPlan struct {
	Archive      Hash
	SourceRegion string
	TargetRegion string
	Reason       string
}

// Optimal computes optimal(popularity) per §4.5.
func Optimal(cfg ReplicationConfig, importance Importance, popularity float64) int {
	popularityMult := 1.0
	if popularity > cfg.PopularityThresh {
		popularityMult = 2.0
	}
	raw := float64(cfg.MinReplicas) * importance.Multiplier() * popularityMult
	rounded := int(raw + 0.5)
	if rounded < cfg.MinReplicas {
		rounded = cfg.MinReplicas
	}
	if rounded > cfg.MaxReplicas {
		rounded = cfg.MaxReplicas
	}
	return rounded
}

// CandidateNode is the placement-relevant snapshot of a storage node, used
// by node selection independent of the StorageNodeInfo bookkeeping struct.
type CandidateNode struct {
	ID              NodeId
	Region          string
	Tiers           map[StorageTier]bool
	UsagePct        float64
	PerformanceScore float64
	Excluded        bool
}

// SelectNodes chooses replicas for an artifact from eligible candidates,
// sorting by performance score and enforcing the importance-driven
// minimum region spread (§4.5).
func SelectNodes(candidates []CandidateNode, tier StorageTier, count int, minRegions int, capacityCeiling float64) ([]NodeId, error) {
	var eligible []CandidateNode
	for _, c := range candidates {
		if c.Excluded {
			continue
		}
		if c.UsagePct >= capacityCeiling {
			continue
		}
		if !c.Tiers[tier] {
			continue
		}
		eligible = append(eligible, c)
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].PerformanceScore > eligible[j].PerformanceScore
	})

	var selected []CandidateNode
	seenRegions := make(map[string]struct{})
	for _, c := range eligible {
		if len(selected) >= count {
			break
		}
		if _, ok := seenRegions[c.Region]; !ok || len(seenRegions) >= minRegions {
			selected = append(selected, c)
			seenRegions[c.Region] = struct{}{}
		}
	}
	// fill remaining slots from the rest, once region diversity is met
	for _, c := range eligible {
		if len(selected) >= count {
			break
		}
		already := false
		for _, s := range selected {
			if s.ID == c.ID {
				already = true
				break
			}
		}
		if !already {
			selected = append(selected, c)
		}
	}

	if len(seenRegions) < minRegions {
		return nil, ErrValidation("SelectNodes", "could not satisfy minimum region spread")
	}

	ids := make([]NodeId, len(selected))
	for i, s := range selected {
		ids[i] = s.ID
	}
	return ids, nil
}

// ReplicationManager owns ReplicationStrategy state for known artifacts and
// runs the periodic re-evaluation loop.
type ReplicationManager struct {
	mu         sync.RWMutex
	strategies map[Hash]*ReplicationStrategy
	cfg        ReplicationConfig
	store      *ArchiveStore
}

func NewReplicationManager(cfg ReplicationConfig, store *ArchiveStore) *ReplicationManager {
	return &ReplicationManager{strategies: make(map[Hash]*ReplicationStrategy), cfg: cfg, store: store}
}

// EnsureStrategy returns the artifact's strategy, creating a default one if
// absent.
func (rm *ReplicationManager) EnsureStrategy(archive Hash, importance Importance) *ReplicationStrategy {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	s, ok := rm.strategies[archive]
	if !ok {
		s = &ReplicationStrategy{
			MinReplicas:            rm.cfg.MinReplicas,
			MaxReplicas:            rm.cfg.MaxReplicas,
			PopularityThreshold:    rm.cfg.PopularityThresh,
			GeographicDistribution: true,
			Importance:             importance,
			LastEvaluated:          time.Now(),
		}
		rm.strategies[archive] = s
	}
	return s
}

// Reevaluate compares optimal(current_popularity) to the strategy's current
// plan and, when they differ, emits a RedistributionPlan (§4.5). It does
// not move bytes itself.
func (rm *ReplicationManager) Reevaluate(archive Hash, currentPopularity float64, currentReplicas int, overloadedRegion, targetRegion string) (*RedistributionPlan, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	s, ok := rm.strategies[archive]
	if !ok {
		return nil, ErrNotFoundf("ReplicationManager.Reevaluate", "no strategy for archive")
	}
	s.LastEvaluated = time.Now()

	desired := Optimal(rm.cfg, s.Importance, currentPopularity)
	if desired == currentReplicas {
		return nil, nil
	}
	return &RedistributionPlan{
		Archive:      archive,
		SourceRegion: overloadedRegion,
		TargetRegion: targetRegion,
		Reason:       "optimal replica count changed",
	}, nil
}
