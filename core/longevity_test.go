package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLongevityManagerBonusFactorUnregisteredNodeIsZero(t *testing.T) {
	require := require.New(t)
	lm := NewLongevityManager()
	require.Equal(0.0, lm.BonusFactor(nodeIDFromByte(1)))
}

func TestLongevityManagerRecordActivityBuildsStreak(t *testing.T) {
	require := require.New(t)
	lm := NewLongevityManager()
	node := nodeIDFromByte(1)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	lm.RecordActivity(node, start)
	lm.RecordActivity(node, start.Add(time.Hour))
	lm.RecordActivity(node, start.Add(2*time.Hour))

	m := lm.metrics[node]
	require.Equal(uint64(3), m.CurrentStreak)
	require.Equal(uint64(3), m.LongestStreak)
	require.Equal(uint64(0), m.DisconnectPenalties)
}

func TestLongevityManagerRecordActivityGapResetsStreak(t *testing.T) {
	require := require.New(t)
	lm := NewLongevityManager()
	node := nodeIDFromByte(1)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	lm.RecordActivity(node, start)
	lm.RecordActivity(node, start.Add(25*time.Hour))

	m := lm.metrics[node]
	require.Equal(uint64(1), m.CurrentStreak)
	require.Equal(uint64(1), m.DisconnectPenalties)
	require.Equal(uint64(1), m.LongestStreak)
}

func TestLongevityManagerDailyTickAccumulatesParticipationDays(t *testing.T) {
	require := require.New(t)
	lm := NewLongevityManager()
	node := nodeIDFromByte(1)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	lm.RecordActivity(node, start)
	lm.DailyTick(start.Add(time.Hour))

	m := lm.metrics[node]
	require.Equal(uint64(1), m.TotalParticipationDays)
}

func TestLongevityManagerDailyTickPastGapPenalizesInsteadOfAccumulating(t *testing.T) {
	require := require.New(t)
	lm := NewLongevityManager()
	node := nodeIDFromByte(1)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	lm.RecordActivity(node, start)
	lm.DailyTick(start.Add(48 * time.Hour))

	m := lm.metrics[node]
	require.Equal(uint64(0), m.TotalParticipationDays)
	require.Equal(uint64(1), m.DisconnectPenalties)
	require.Equal(uint64(0), m.CurrentStreak)
}

func TestLongevityManagerBonusFactorCombinesComponentsAndClamps(t *testing.T) {
	require := require.New(t)
	lm := NewLongevityManager()
	node := nodeIDFromByte(1)

	lm.metrics[node] = &LongevityMetrics{
		TotalParticipationDays: 365,
		CurrentStreak:          30,
		LongTermArchives:       50,
	}

	require.InDelta(1.59, lm.BonusFactor(node), 1e-9)
}

func TestLongevityManagerBonusFactorNeverExceedsTwo(t *testing.T) {
	require := require.New(t)
	lm := NewLongevityManager()
	node := nodeIDFromByte(1)

	lm.metrics[node] = &LongevityMetrics{
		TotalParticipationDays: 10_000,
		CurrentStreak:          10_000,
		LongTermArchives:       10_000,
	}

	require.Equal(2.0, lm.BonusFactor(node))
}
