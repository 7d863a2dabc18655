package core

// distribution_pools.go – the four fixed-allocation token distribution
// pools (§4.8). Grounded on original_source/core/src/token/distribution.rs's
// RewardPool/TeamAllocation/CommunityReserve/PublicSale shapes and the
// teacher's deleted distribution.go Distributor pattern (one manager struct
// owning named sub-pools, mutating them under its own lock), restructured
// around this core's TokenLedger/VestingSchedule/QuorumTracker types instead
// of a standalone ledger.

import (
	"sync"
	"time"
)

// pool allocation fractions of total_supply (§4.8).
const (
	archivalRewardsFraction  = 0.40
	teamVestingFraction      = 0.25
	communityReserveFraction = 0.20
	publicSaleFraction       = 0.15
)

// ArchivalRewardPool distributes its allocation linearly over 10 years,
// minting on each distribution call rather than pre-minting the full pool.
type ArchivalRewardPool struct {
	mu               sync.Mutex
	TotalAllocation  uint64
	Distributed      uint64
	StartDate        time.Time
	EndDate          time.Time
}

func newArchivalRewardPool(totalAllocation uint64, start time.Time) *ArchivalRewardPool {
	return &ArchivalRewardPool{
		TotalAllocation: totalAllocation,
		StartDate:       start,
		EndDate:         start.AddDate(10, 0, 0),
	}
}

// Distribute mints amount to recipient out of the pool's remaining
// allocation, for per-epoch validator archival rewards.
func (p *ArchivalRewardPool) Distribute(ledger *TokenLedger, recipient Address, amount uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Distributed+amount > p.TotalAllocation {
		return ErrInsufficient("ArchivalRewardPool.Distribute", "exceeds pool allocation",
			amount, p.TotalAllocation-p.Distributed)
	}
	if err := ledger.Mint(recipient, amount); err != nil {
		return err
	}
	p.Distributed += amount
	return nil
}

// TeamVestingPool holds one VestingSchedule per team beneficiary, all
// sharing the pool's 1-year cliff / 36-monthly-tranche shape (§4.8).
type TeamVestingPool struct {
	mu              sync.Mutex
	TotalAllocation uint64
	schedules       map[Address]*VestingSchedule
}

func newTeamVestingPool(totalAllocation uint64) *TeamVestingPool {
	return &TeamVestingPool{TotalAllocation: totalAllocation, schedules: make(map[Address]*VestingSchedule)}
}

// AddBeneficiary creates a 1-year-cliff, 36-month vesting schedule for a
// team member, with 25% of their allocation unlocked at the cliff.
func (p *TeamVestingPool) AddBeneficiary(beneficiary Address, allocation uint64, start time.Time) *VestingSchedule {
	p.mu.Lock()
	defer p.mu.Unlock()
	cliff := start.AddDate(1, 0, 0)
	end := start.AddDate(4, 0, 0)
	cliffAmount := allocation / 4
	remaining := allocation - cliffAmount
	monthlyRelease := remaining / 36
	s := NewVestingSchedule(beneficiary, allocation, start, cliff, end, cliffAmount, monthlyRelease)
	p.schedules[beneficiary] = s
	return s
}

func (p *TeamVestingPool) Schedule(beneficiary Address) (*VestingSchedule, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.schedules[beneficiary]
	return s, ok
}

// FundingProposal is a community-reserve spend request subject to
// governance voting before tokens are released (§4.8).
type FundingProposal struct {
	ID      Hash
	Target  Address
	Amount  uint64
	Quorum  *QuorumTracker
	Funded  bool
}

// CommunityReservePool allocates its pool to governance-approved proposals
// only after they reach quorum, grounded on quorum_tracker.go.
type CommunityReservePool struct {
	mu              sync.Mutex
	TotalAllocation uint64
	Allocated       uint64
	proposals       map[Hash]*FundingProposal
}

func newCommunityReservePool(totalAllocation uint64) *CommunityReservePool {
	return &CommunityReservePool{TotalAllocation: totalAllocation, proposals: make(map[Hash]*FundingProposal)}
}

// Propose opens a funding proposal that requires threshold votes out of
// totalVoters before it can be executed.
func (p *CommunityReservePool) Propose(id Hash, target Address, amount uint64, totalVoters, threshold int) *FundingProposal {
	p.mu.Lock()
	defer p.mu.Unlock()
	fp := &FundingProposal{ID: id, Target: target, Amount: amount, Quorum: NewQuorumTracker(totalVoters, threshold)}
	p.proposals[id] = fp
	return fp
}

// Vote records a governance vote for or against a proposal, returning
// whether it is now approved (quorum met and >= 60% of participating
// votes in favor).
func (p *CommunityReservePool) Vote(id Hash, voter Address, approve bool) (bool, error) {
	p.mu.Lock()
	fp, ok := p.proposals[id]
	p.mu.Unlock()
	if !ok {
		return false, ErrNotFoundf("CommunityReservePool.Vote", "unknown proposal")
	}
	fp.Quorum.CastVote(voter, approve)
	return fp.Quorum.Approved(), nil
}

// Execute mints a quorum-reached proposal's amount to its target, exactly
// once.
func (p *CommunityReservePool) Execute(ledger *TokenLedger, id Hash) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	fp, ok := p.proposals[id]
	if !ok {
		return ErrNotFoundf("CommunityReservePool.Execute", "unknown proposal")
	}
	if fp.Funded {
		return nil
	}
	if !fp.Quorum.Approved() {
		return ErrConsensus("CommunityReservePool.Execute", "proposal has not reached quorum and 60% approval")
	}
	if p.Allocated+fp.Amount > p.TotalAllocation {
		return ErrInsufficient("CommunityReservePool.Execute", "exceeds reserve allocation",
			fp.Amount, p.TotalAllocation-p.Allocated)
	}
	if err := ledger.Mint(fp.Target, fp.Amount); err != nil {
		return err
	}
	fp.Funded = true
	p.Allocated += fp.Amount
	return nil
}

// SaleStatus is the public sale's lifecycle state.
type SaleStatus uint8

const (
	SaleInactive SaleStatus = iota
	SaleActive
	SaleEnded
)

// PublicSalePool mints tokens on purchase only while Status == SaleActive
// (§4.8).
type PublicSalePool struct {
	mu              sync.Mutex
	TotalAllocation uint64
	Sold            uint64
	Status          SaleStatus
}

func newPublicSalePool(totalAllocation uint64) *PublicSalePool {
	return &PublicSalePool{TotalAllocation: totalAllocation, Status: SaleInactive}
}

func (p *PublicSalePool) SetStatus(status SaleStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = status
}

// Purchase mints amount to buyer while the sale is Active.
func (p *PublicSalePool) Purchase(ledger *TokenLedger, buyer Address, amount uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Status != SaleActive {
		return ErrValidation("PublicSalePool.Purchase", "sale is not active")
	}
	if p.Sold+amount > p.TotalAllocation {
		return ErrInsufficient("PublicSalePool.Purchase", "exceeds sale allocation", amount, p.TotalAllocation-p.Sold)
	}
	if err := ledger.Mint(buyer, amount); err != nil {
		return err
	}
	p.Sold += amount
	return nil
}

// DistributionPools bundles all four fixed-allocation pools over a single
// genesis total supply (§4.8).
type DistributionPools struct {
	ArchivalRewards  *ArchivalRewardPool
	TeamVesting      *TeamVestingPool
	CommunityReserve *CommunityReservePool
	PublicSale       *PublicSalePool
}

// NewDistributionPools splits totalSupply into the four fixed fractions.
func NewDistributionPools(totalSupply uint64, start time.Time) *DistributionPools {
	return &DistributionPools{
		ArchivalRewards:  newArchivalRewardPool(uint64(float64(totalSupply)*archivalRewardsFraction), start),
		TeamVesting:      newTeamVestingPool(uint64(float64(totalSupply) * teamVestingFraction)),
		CommunityReserve: newCommunityReservePool(uint64(float64(totalSupply) * communityReserveFraction)),
		PublicSale:       newPublicSalePool(uint64(float64(totalSupply) * publicSaleFraction)),
	}
}
