package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewLongTermLockRejectsShortCommitment(t *testing.T) {
	require := require.New(t)

	ledger := NewTokenLedger(1_000_000)
	holder := addrFromByte(1)
	require.NoError(ledger.Mint(holder, 10_000))

	_, err := NewLongTermLock(ledger, holder, 1_000, 3, time.Now())
	require.Error(err, "commitments under 6 months must be rejected")
}

func TestMultiplierStepFunction(t *testing.T) {
	require := require.New(t)
	require.Equal(1.0, Multiplier(0))
	require.Equal(1.2, Multiplier(6))
	require.Equal(1.5, Multiplier(12))
	require.Equal(2.0, Multiplier(24))
	require.Equal(2.0, Multiplier(36))
}

func TestLongTermLockDistributeBonus(t *testing.T) {
	require := require.New(t)

	ledger := NewTokenLedger(10_000_000)
	holder := addrFromByte(1)
	require.NoError(ledger.Mint(holder, 100_000))

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	lock, err := NewLongTermLock(ledger, holder, 100_000, 24, start)
	require.NoError(err)

	after30Days := start.Add(30 * 24 * time.Hour)
	bonus, err := lock.DistributeBonus(ledger, after30Days)
	require.NoError(err)
	require.Equal(uint64(200), bonus, "100000 * 0.001 * 1 * 2.0 = 200")

	balanceAfter := ledger.BalanceOf(holder)
	require.Equal(uint64(200), balanceAfter, "bonus mints fresh tokens to holder on top of the locked balance")
}

func TestLongTermLockReleaseBeforeCommitmentEndFails(t *testing.T) {
	require := require.New(t)

	ledger := NewTokenLedger(1_000_000)
	holder := addrFromByte(1)
	require.NoError(ledger.Mint(holder, 10_000))

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	lock, err := NewLongTermLock(ledger, holder, 5_000, 12, start)
	require.NoError(err)

	require.Error(lock.Release(ledger, start.Add(6*vestingMonth)))
	require.NoError(lock.Release(ledger, start.Add(13*vestingMonth)))
	require.Equal(uint64(10_000), ledger.BalanceOf(holder))
}
