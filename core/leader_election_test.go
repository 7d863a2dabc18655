package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func nodeIDFromByte(b byte) NodeId {
	var id NodeId
	id[31] = b
	return id
}

func TestElectLeaderDeterministic(t *testing.T) {
	require := require.New(t)

	scores := []float64{0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3}
	pool := make([]ValidatorInfo, len(scores))
	for i, s := range scores {
		pool[i] = ValidatorInfo{
			NodeID:            nodeIDFromByte(byte(i + 1)),
			ConsensusScore:    ConsensusScore{CombinedScore: s},
			ParticipationRate: 1.0,
			Eligibility:       EligibilityEligible,
			LastActivity:      time.Now(),
		}
	}

	seed := HashFromBytes([]byte{0x01})

	r1 := ElectLeader(1, seed, pool, 7)
	r2 := ElectLeader(1, seed, pool, 7)

	require.Equal(r1.Primary, r2.Primary, "election must be deterministic for identical inputs")
	require.Equal(r1.Validators, r2.Validators)
	require.Equal(nodeIDFromByte(1), r1.Primary, "highest consensus score must be elected primary")
	require.Len(r1.Validators, 7)
}

func TestElectLeaderExcludesIneligible(t *testing.T) {
	require := require.New(t)

	pool := []ValidatorInfo{
		{NodeID: nodeIDFromByte(1), ConsensusScore: ConsensusScore{CombinedScore: 0.9}, ParticipationRate: 1.0, Eligibility: EligibilityEligible},
		{NodeID: nodeIDFromByte(2), ConsensusScore: ConsensusScore{CombinedScore: 0.95}, ParticipationRate: 1.0, Eligibility: EligibilitySuspended},
	}
	seed := HashFromBytes([]byte{0x02})

	result := ElectLeader(1, seed, pool, 5)
	require.Equal(nodeIDFromByte(1), result.Primary, "suspended validator must never be selected")
	require.Len(result.Validators, 1)
}

func TestComputeSeedChangesWithEpoch(t *testing.T) {
	require := require.New(t)

	prev := HashFromBytes([]byte{0xAA})
	ids := []NodeId{nodeIDFromByte(1), nodeIDFromByte(2)}

	s1 := ComputeSeed(prev, 1, ids)
	s2 := ComputeSeed(prev, 2, ids)
	require.NotEqual(s1, s2, "seed must depend on the epoch")
}
