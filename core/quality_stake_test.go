package core

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestQualityStakeManagerStakeBelowMinimumRejected(t *testing.T) {
	require := require.New(t)

	ledger := NewTokenLedger(1_000_000)
	mgr := NewQualityStakeManager(ledger, addrFromByte(255), log.New())

	addr := addrFromByte(1)
	require.NoError(ledger.Mint(addr, 10_000))

	err := mgr.Stake(nodeIDFromByte(1), addr, TierStandard, 100)
	require.Error(err, "100 is below TierStandard's 5000 minimum")
}

func TestQualityStakeManagerEvaluateSlashesBelowThreshold(t *testing.T) {
	require := require.New(t)

	ledger := NewTokenLedger(1_000_000)
	mgr := NewQualityStakeManager(ledger, addrFromByte(255), log.New())

	node := nodeIDFromByte(1)
	addr := addrFromByte(1)
	require.NoError(ledger.Mint(addr, 10_000))
	require.NoError(mgr.Stake(node, addr, TierStandard, 5_000))

	require.NoError(mgr.Evaluate(node, 0.2, 0.5))

	pos, ok := mgr.Position(node)
	require.True(ok)
	require.Equal(uint64(4_250), pos.Amount, "slash_amount = floor(5000 * 0.15) = 750")
	require.Equal(uint32(1), pos.QualityViolations)
	require.Equal(StakeActive, pos.State)
	require.Equal(uint64(750), ledger.Burned())
}

func TestQualityStakeManagerEvaluateTransitionsToSlashedBelowHalfMinimum(t *testing.T) {
	require := require.New(t)

	ledger := NewTokenLedger(1_000_000)
	mgr := NewQualityStakeManager(ledger, addrFromByte(255), log.New())

	node := nodeIDFromByte(1)
	addr := addrFromByte(1)
	require.NoError(ledger.Mint(addr, 10_000))
	require.NoError(mgr.Stake(node, addr, TierStandard, 5_000))

	for i := 0; i < 10; i++ {
		_ = mgr.Evaluate(node, 0.0, 0.5)
	}

	pos, ok := mgr.Position(node)
	require.True(ok)
	require.Equal(StakeSlashed, pos.State)
}

func TestQualityStakeManagerEvaluateSkipsAboveThreshold(t *testing.T) {
	require := require.New(t)

	ledger := NewTokenLedger(1_000_000)
	mgr := NewQualityStakeManager(ledger, addrFromByte(255), log.New())

	node := nodeIDFromByte(1)
	addr := addrFromByte(1)
	require.NoError(ledger.Mint(addr, 10_000))
	require.NoError(mgr.Stake(node, addr, TierStandard, 5_000))

	require.NoError(mgr.Evaluate(node, 0.9, 0.5))
	pos, _ := mgr.Position(node)
	require.Equal(uint64(5_000), pos.Amount, "quality above threshold must never slash")
}
