package core

// vesting.go – VestingSchedule and its monotonic vested(t) formula (§3,
// §4.8). Grounded on the constructor-returns-pointer shape the teacher uses
// for stake_penalty.go (NewVestingSchedule does not validate its
// arguments), with claim serialized by the
// schedule's own mutex so concurrent claims never double-transfer.

import (
	"sync"
	"time"
)

// VestingSchedule is a single beneficiary's linear vesting position (§3).
type VestingSchedule struct {
	mu sync.Mutex

	Beneficiary    Address
	Total          uint64
	Claimed        uint64
	Start          time.Time
	Cliff          time.Time
	End            time.Time
	CliffAmount    uint64
	MonthlyRelease uint64
	LastClaim      time.Time
}

// NewVestingSchedule builds a schedule from the genesis parameters.
func NewVestingSchedule(beneficiary Address, total uint64, start, cliff, end time.Time, cliffAmount, monthlyRelease uint64) *VestingSchedule {
	return &VestingSchedule{
		Beneficiary:    beneficiary,
		Total:          total,
		Start:          start,
		Cliff:          cliff,
		End:            end,
		CliffAmount:    cliffAmount,
		MonthlyRelease: monthlyRelease,
	}
}

const vestingMonth = 30 * 24 * time.Hour

// Vested computes vested(t) per §3/§4.8: zero before cliff, cliff_amount at
// cliff, growing by monthly_release per elapsed 30-day month thereafter,
// saturating at total.
func (v *VestingSchedule) Vested(t time.Time) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vestedLocked(t)
}

func (v *VestingSchedule) vestedLocked(t time.Time) uint64 {
	if t.Before(v.Cliff) {
		return 0
	}
	if !t.Before(v.End) {
		return v.Total
	}
	elapsedMonths := uint64(t.Sub(v.Cliff) / vestingMonth)
	amount := v.CliffAmount + elapsedMonths*v.MonthlyRelease
	if amount > v.Total {
		amount = v.Total
	}
	return amount
}

// Claim transfers vested(now) - claimed into the beneficiary's ledger
// balance, atomically under the schedule's own lock so a concurrent claim
// never double-transfers the same vested amount.
func (v *VestingSchedule) Claim(ledger *TokenLedger, now time.Time) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	vested := v.vestedLocked(now)
	if vested <= v.Claimed {
		return 0, nil
	}
	amount := vested - v.Claimed
	if err := ledger.Mint(v.Beneficiary, amount); err != nil {
		return 0, err
	}
	v.Claimed = vested
	v.LastClaim = now
	return amount, nil
}
