package core

// longevity.go – per-node rolling longevity metrics and bonus-factor
// computation (§4.3). Grounded on stake_penalty.go's mutex-guarded
// per-address manager shape, generalized to longevity bookkeeping.

import (
	"sync"
	"time"
)

// LongevityMetrics tracks a node's participation history.
type LongevityMetrics struct {
	FirstSeen             time.Time
	TotalParticipationDays uint64
	CurrentStreak         uint64
	LongestStreak         uint64
	LongTermArchives      uint64 // archives stored continuously >30 days
	DisconnectPenalties   uint64
	LastActivity          time.Time
	lastMilestoneDay      uint64
	lastMilestoneArchives uint64
}

// LongevityManager owns LongevityMetrics for every known node.
type LongevityManager struct {
	mu      sync.RWMutex
	metrics map[NodeId]*LongevityMetrics
}

func NewLongevityManager() *LongevityManager {
	return &LongevityManager{metrics: make(map[NodeId]*LongevityMetrics)}
}

func (lm *LongevityManager) entry(node NodeId, now time.Time) *LongevityMetrics {
	m, ok := lm.metrics[node]
	if !ok {
		m = &LongevityMetrics{FirstSeen: now, LastActivity: now}
		lm.metrics[node] = m
	}
	return m
}

// RecordActivity marks a node as active at `now`, extending or resetting its
// streak depending on the gap since its last recorded activity.
func (lm *LongevityManager) RecordActivity(node NodeId, now time.Time) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	m := lm.entry(node, now)
	if now.Sub(m.LastActivity) > 24*time.Hour && !m.LastActivity.IsZero() {
		m.CurrentStreak = 0
		m.DisconnectPenalties++
	}
	m.CurrentStreak++
	if m.CurrentStreak > m.LongestStreak {
		m.LongestStreak = m.CurrentStreak
	}
	m.LastActivity = now
}

// DailyTick refreshes total_participation_days, resets streaks when the
// last-activity gap exceeds 24h, and increments disconnect penalties, as
// specified for the periodic longevity tick in §4.3.
func (lm *LongevityManager) DailyTick(now time.Time) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	for _, m := range lm.metrics {
		if now.Sub(m.LastActivity) > 24*time.Hour {
			m.CurrentStreak = 0
			m.DisconnectPenalties++
			continue
		}
		m.TotalParticipationDays++
	}
}

// RecordLongTermArchive increments the count of archives a node has stored
// continuously for more than 30 days.
func (lm *LongevityManager) RecordLongTermArchive(node NodeId, now time.Time) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	m := lm.entry(node, now)
	m.LongTermArchives++
}

var longevityMilestoneDays = []uint64{7, 30, 90, 365}
var longevityMilestoneArchives = []uint64{1, 5, 10, 50}

// BonusFactor computes the longevity_score contribution for a node,
// capping the combined multiplier at 2.0 (§4.3).
func (lm *LongevityManager) BonusFactor(node NodeId) float64 {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	m, ok := lm.metrics[node]
	if !ok {
		return 0
	}

	base := float64(m.TotalParticipationDays) / 365
	if base > 1 {
		base = 1
	}

	participationMult := 1 + min1(float64(m.CurrentStreak)/30)*0.1

	// Stability starts at 1.0 and drops 0.05 per disconnect penalty, floored
	// at 0.5; it is not weighted by verifications and streaks do not raise it.
	stability := 1.0 - min1(float64(m.DisconnectPenalties)*0.05)
	if stability < 0.5 {
		stability = 0.5
	}

	longTermMult := 1 + min1(float64(m.LongTermArchives)/50)*0.3

	var milestoneBonus float64
	for _, d := range longevityMilestoneDays {
		if m.TotalParticipationDays >= d {
			milestoneBonus += 0.02
		}
	}
	for _, a := range longevityMilestoneArchives {
		if m.LongTermArchives >= a {
			milestoneBonus += 0.02
		}
	}

	combined := base * participationMult * stability * longTermMult + milestoneBonus
	if combined > 2.0 {
		combined = 2.0
	}
	return combined
}
