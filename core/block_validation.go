package core

// block_validation.go – block validation (§4.4). Grounded on the teacher's
// access_control.go caching idiom (an LRU in front of a slower check) but
// using hashicorp/golang-lru/v2 for the 10-minute-TTL result cache the spec
// calls for, keyed by block hash.

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ValidationMode controls how strictly signatures and storage proofs are
// checked (§4.4 Per-transaction / Consensus-proofs checks).
type ValidationMode uint8

const (
	ModeBasic ValidationMode = iota
	ModeStandard
	ModeStrict
)

// ValidationContext is the state a candidate block is checked against.
type ValidationContext struct {
	Epoch              uint64
	AuthorizedValidators map[NodeId]struct{}
	Parent             *Block
	KnownUTXOs         map[Hash]struct{}
	Config             Config
	Mode               ValidationMode
}

// ValidationResult is the §4.4 contract's return value.
type ValidationResult struct {
	IsValid    bool
	Errors     []string
	Warnings   []string
	Confidence float64
}

type cachedValidation struct {
	result  ValidationResult
	cachedAt time.Time
}

// BlockValidator runs the §4.4 checks and caches results for 10 minutes,
// keyed by block hash, for performance only — correctness never depends on
// the cache.
type BlockValidator struct {
	storageMgr *StorageProofManager
	cache      *lru.Cache[Hash, cachedValidation]
}

const validationCacheTTL = 10 * time.Minute

func NewBlockValidator(storageMgr *StorageProofManager) (*BlockValidator, error) {
	cache, err := lru.New[Hash, cachedValidation](4096)
	if err != nil {
		return nil, ErrInternalf("NewBlockValidator", "failed to allocate validation cache", err)
	}
	return &BlockValidator{storageMgr: storageMgr, cache: cache}, nil
}

// Validate runs the §4.4 contract against a candidate block.
func (v *BlockValidator) Validate(block *Block, ctx ValidationContext) ValidationResult {
	h := block.Hash()
	if cached, ok := v.cache.Get(h); ok {
		if time.Since(cached.cachedAt) < validationCacheTTL {
			return cached.result
		}
		v.cache.Remove(h)
	}

	result := v.validate(block, ctx)
	v.cache.Add(h, cachedValidation{result: result, cachedAt: time.Now()})
	return result
}

func (v *BlockValidator) validate(block *Block, ctx ValidationContext) ValidationResult {
	var errs, warnings []string

	// Structural
	if ComputeMerkleRoot(block.Body) != block.Header.MerkleRoot {
		errs = append(errs, "merkle root mismatch")
	}

	// Header
	now := time.Now()
	if block.Header.Timestamp.After(now.Add(ctx.Config.TimeDriftTolerance)) {
		errs = append(errs, "timestamp too far in the future")
	} else if block.Header.Timestamp.After(now) {
		warnings = append(warnings, "timestamp is ahead of local clock but within tolerance")
	}
	if ctx.Parent != nil {
		if block.Header.Height != ctx.Parent.Header.Height+1 {
			errs = append(errs, "height is not parent height + 1")
		}
		if block.Header.PreviousHash != ctx.Parent.Hash() {
			errs = append(errs, "previous_hash does not match parent")
		}
	}
	if block.Header.Difficulty < ctx.Config.MinDifficulty {
		errs = append(errs, "difficulty below minimum")
	}

	// Body
	if len(block.Body.Transactions) > ctx.Config.MaxTxsPerBlock {
		errs = append(errs, "too many transactions")
	}
	seenArchives := make(map[Hash]struct{}, len(block.Body.Archives))
	for _, a := range block.Body.Archives {
		if _, dup := seenArchives[a]; dup {
			warnings = append(warnings, "duplicate archive_id in body: "+a.Short())
		}
		seenArchives[a] = struct{}{}
	}

	for _, tx := range block.Body.Transactions {
		if ComputeTxHash(tx) != tx.ID {
			errs = append(errs, "transaction hash mismatch: "+tx.ID.Short())
			continue
		}
		if ctx.Mode != ModeBasic && len(tx.Signature) == 0 {
			errs = append(errs, "missing signature on transaction: "+tx.ID.Short())
		}
	}

	if ctx.Mode == ModeStrict {
		for _, sp := range block.Body.StorageProofs {
			if !v.storageMgr.VerifyResponse(&sp.Challenge, &sp.Response) {
				errs = append(errs, "storage proof failed strict verification")
			}
		}
	}

	confidence := 0.0
	if len(errs) == 0 {
		confidence = 1 - 0.1*float64(len(warnings))
		if confidence < 0 {
			confidence = 0
		}
	}

	return ValidationResult{
		IsValid:    len(errs) == 0,
		Errors:     errs,
		Warnings:   warnings,
		Confidence: confidence,
	}
}
