package core

// longterm_lock.go – voluntary long-term token locks and their periodic
// bonus distribution (§4.8). SPEC_FULL.md Open Question #5: each position
// carries its own mutex guarding last_claim, so a concurrent re-entrant
// distribution call observes a consistent last_distributed and never
// double-mints; grounded on the same per-entity-mutex idiom vesting.go
// already uses for its own Claim method.

import (
	"sync"
	"time"
)

// LongTermLock is a voluntary commitment of tokens for m months (§4.8).
type LongTermLock struct {
	mu sync.Mutex

	Holder       Address
	Amount       uint64
	Months       int
	StartedAt    time.Time
	LastDistributed time.Time
}

// NewLongTermLock locks amount from holder's balance for months (minimum 6)
// under tag "longterm_lock".
func NewLongTermLock(ledger *TokenLedger, holder Address, amount uint64, months int, now time.Time) (*LongTermLock, error) {
	if months < 6 {
		return nil, ErrValidation("NewLongTermLock", "commitment must be at least 6 months")
	}
	if err := ledger.Lock(holder, amount, "longterm_lock"); err != nil {
		return nil, err
	}
	return &LongTermLock{
		Holder:          holder,
		Amount:          amount,
		Months:          months,
		StartedAt:       now,
		LastDistributed: now,
	}, nil
}

// Multiplier computes M(m) per §4.8's step function.
func Multiplier(months int) float64 {
	switch {
	case months >= 24:
		return 2.0
	case months >= 12:
		return 1.5
	case months >= 6:
		return 1.2
	default:
		return 1.0
	}
}

// DistributeBonus mints bonus = amount * 0.001 * (days_since_last/30) * M(m)
// to the holder, serialized per position so a concurrent call can never
// observe a stale last_distributed and double-mint (§4.8, Open Question #5).
func (l *LongTermLock) DistributeBonus(ledger *TokenLedger, now time.Time) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	daysSinceLast := now.Sub(l.LastDistributed).Hours() / 24
	if daysSinceLast <= 0 {
		return 0, nil
	}
	bonus := uint64(float64(l.Amount) * 0.001 * (daysSinceLast / 30) * Multiplier(l.Months))
	if bonus == 0 {
		l.LastDistributed = now
		return 0, nil
	}
	if err := ledger.Mint(l.Holder, bonus); err != nil {
		return 0, err
	}
	l.LastDistributed = now
	return bonus, nil
}

// Release unlocks the position's full amount back to the holder once the
// commitment period has elapsed.
func (l *LongTermLock) Release(ledger *TokenLedger, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	elapsedMonths := int(now.Sub(l.StartedAt) / vestingMonth)
	if elapsedMonths < l.Months {
		return ErrValidation("LongTermLock.Release", "commitment period has not elapsed")
	}
	return ledger.Unlock(l.Holder, l.Amount, "longterm_lock")
}
