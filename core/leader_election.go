package core

// leader_election.go – the deterministic per-epoch leader election (§4.3).
// Grounded on the teacher's consensus.go hybrid PoH/PoS/PoW scoring loop in
// spirit (weight = score * multiple rotation factors, sort, select) but
// restructured around this spec's exact weight formula and tie-break rule
// (SPEC_FULL.md Open Question #4: ascending lexicographic NodeId as the
// final sort key after weight, applied in both phases so replay is
// bit-identical).

import (
	"encoding/binary"
	"math"
	"sort"
)

// ElectionResult is the outcome of one epoch's leader election.
type ElectionResult struct {
	Epoch      uint64
	Seed       Hash
	Primary    NodeId
	Backups    []NodeId
	Validators []NodeId
}

type weightedValidator struct {
	info   ValidatorInfo
	weight float64
}

// ComputeSeed derives S_e = H(prev_seed || e || concat(prev_validator_ids)),
// the deterministic per-epoch randomness source (§4.3).
func ComputeSeed(prevSeed Hash, epoch uint64, prevValidatorIDs []NodeId) Hash {
	buf := make([]byte, 0, 32+8+32*len(prevValidatorIDs))
	buf = append(buf, prevSeed.Bytes()...)
	var epochBuf [8]byte
	binary.BigEndian.PutUint64(epochBuf[:], epoch)
	buf = append(buf, epochBuf[:]...)
	for _, id := range prevValidatorIDs {
		buf = append(buf, id.Bytes()...)
	}
	return Keccak256(buf)
}

func weightOf(v ValidatorInfo, epoch uint64) float64 {
	var epochsSince float64
	if v.LastSelectedEpoch == 0 {
		epochsSince = math.Inf(1) // never selected: treated as "new validator"
	} else if epoch > v.LastSelectedEpoch {
		epochsSince = float64(epoch - v.LastSelectedEpoch)
	}

	var rotationFactor float64
	if v.LastSelectedEpoch == 0 {
		rotationFactor = 1.2
	} else {
		rotationFactor = 1 + math.Min(0.5, epochsSince/10)
	}

	participationFactor := 0.5 + v.ParticipationRate*0.5
	penaltyFactor := math.Max(0.5, 1-float64(v.Penalties)*0.1)

	return v.ConsensusScore.CombinedScore * rotationFactor * participationFactor * penaltyFactor
}

// seedRand derives a reproducible pseudo-random stream from
// the epoch seed, used only for the weighted-random tail fill so replay is
// bit-identical given the same seed.
type seedRand struct {
	state Hash
}

func newSeedRand(seed Hash) *seedRand { return &seedRand{state: seed} }

// next returns a float64 in [0,1) and advances the internal state.
func (r *seedRand) next() float64 {
	r.state = Keccak256(r.state.Bytes())
	// use the top 8 bytes as a uint64 for uniform-enough [0,1) mapping
	v := binary.BigEndian.Uint64(r.state.Bytes()[:8])
	return float64(v) / float64(^uint64(0))
}

// ElectLeader runs the deterministic leader election for one epoch over a
// validator pool snapshot (§4.3). N is validators_per_round.
func ElectLeader(epoch uint64, seed Hash, pool []ValidatorInfo, n int) ElectionResult {
	weighted := make([]weightedValidator, 0, len(pool))
	for _, v := range pool {
		if v.Eligibility != EligibilityEligible {
			continue
		}
		weighted = append(weighted, weightedValidator{info: v, weight: weightOf(v, epoch)})
	}

	sort.Slice(weighted, func(i, j int) bool {
		if weighted[i].weight != weighted[j].weight {
			return weighted[i].weight > weighted[j].weight
		}
		return weighted[i].info.NodeID.Less(weighted[j].info.NodeID)
	})

	if n > len(weighted) {
		n = len(weighted)
	}
	deterministicCount := int(math.Ceil(0.7 * float64(n)))
	if deterministicCount > len(weighted) {
		deterministicCount = len(weighted)
	}

	selected := make([]weightedValidator, 0, n)
	selected = append(selected, weighted[:deterministicCount]...)

	tail := weighted[deterministicCount:]
	randomCount := n - deterministicCount
	if randomCount > len(tail) {
		randomCount = len(tail)
	}
	if randomCount > 0 {
		selected = append(selected, weightedRandomPick(tail, randomCount, seed)...)
	}

	// Primary leader is the highest-weighted selected validator; re-sort the
	// final selection by the same (weight desc, NodeId asc) order so the
	// primary/backups split and the reported Validators order are both
	// deterministic.
	sort.Slice(selected, func(i, j int) bool {
		if selected[i].weight != selected[j].weight {
			return selected[i].weight > selected[j].weight
		}
		return selected[i].info.NodeID.Less(selected[j].info.NodeID)
	})

	ids := make([]NodeId, len(selected))
	for i, w := range selected {
		ids[i] = w.info.NodeID
	}

	var primary NodeId
	var backups []NodeId
	if len(ids) > 0 {
		primary = ids[0]
		backups = ids[1:]
	}

	return ElectionResult{Epoch: epoch, Seed: seed, Primary: primary, Backups: backups, Validators: ids}
}

// weightedRandomPick selects count validators from tail via weighted random
// selection deterministically derived from seed, breaking ties in the same
// lexicographic-NodeId order as the deterministic phase.
func weightedRandomPick(tail []weightedValidator, count int, seed Hash) []weightedValidator {
	remaining := append([]weightedValidator(nil), tail...)
	rnd := newSeedRand(seed)
	picked := make([]weightedValidator, 0, count)

	for i := 0; i < count && len(remaining) > 0; i++ {
		var total float64
		for _, w := range remaining {
			total += w.weight
		}
		if total <= 0 {
			// degrade to deterministic order when all remaining weights are
			// zero, rather than dividing by zero.
			picked = append(picked, remaining[0])
			remaining = remaining[1:]
			continue
		}
		target := rnd.next() * total
		var acc float64
		idx := 0
		for j, w := range remaining {
			acc += w.weight
			if target <= acc {
				idx = j
				break
			}
		}
		picked = append(picked, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return picked
}
