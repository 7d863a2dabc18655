package core

// archive_store.go – the content-addressed store owning archive bytes and
// metadata (§3 Archive/ContentMetadata). Grounded on the teacher's gateway
// wrapper shape in storage.go (a registry keyed by hash, guarded by an
// RWMutex, constructor takes a logger) but scoped to an in-process content
// index instead of an IPFS/Arweave gateway client, since this module does
// not mandate a persistent-storage engine (spec.md §1 Non-goals).

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// ContentMetadata describes one archived artifact.
type ContentMetadata struct {
	ContentHash     Hash
	Size            uint64
	ContentType     string
	Importance      Importance
	Popularity      uint64 // access-count proxy, accesses/day
	CreatedAt       time.Time
	PreferredRegions []string
	RedundancyLevel int
	Tags            []string
}

// CID derives an IPFS-compatible content identifier from the archive's
// content hash, so the store can interoperate with CID-addressed tooling
// without changing the underlying 32-byte Hash identity.
func (m ContentMetadata) CID() (cid.Cid, error) {
	digest, err := mh.Encode(m.ContentHash.Bytes(), mh.SHA2_256)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, digest), nil
}

// ArchiveStore owns archive bytes and metadata. Nodes elsewhere hold only
// weak references by Hash (spec.md §3 Ownership).
type ArchiveStore struct {
	mu       sync.RWMutex
	meta     map[Hash]*ContentMetadata
	bytes    map[Hash][]byte
	storers  map[Hash]map[NodeId]struct{} // archive -> claimed storing nodes
	logger   *log.Logger
}

// NewArchiveStore constructs an empty store. lg must not be nil; pass
// logrus.StandardLogger() for single-process demos.
func NewArchiveStore(lg *log.Logger) *ArchiveStore {
	return &ArchiveStore{
		meta:    make(map[Hash]*ContentMetadata),
		bytes:   make(map[Hash][]byte),
		storers: make(map[Hash]map[NodeId]struct{}),
		logger:  lg,
	}
}

// Put registers a new archive's bytes and derives its metadata. The content
// hash is computed from data, not trusted from the caller.
func (s *ArchiveStore) Put(data []byte, contentType string, importance Importance, preferredRegions, tags []string) *ContentMetadata {
	h := SHA256(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.meta[h]; ok {
		return existing
	}
	md := &ContentMetadata{
		ContentHash:      h,
		Size:             uint64(len(data)),
		ContentType:      contentType,
		Importance:       importance,
		CreatedAt:        time.Now(),
		PreferredRegions: preferredRegions,
		RedundancyLevel:  0,
		Tags:             tags,
	}
	s.meta[h] = md
	cp := make([]byte, len(data))
	copy(cp, data)
	s.bytes[h] = cp
	s.storers[h] = make(map[NodeId]struct{})
	s.logger.WithFields(log.Fields{"hash": h.Short(), "size": md.Size}).Info("archive stored")
	return md
}

// Get returns an archive's bytes by hash.
func (s *ArchiveStore) Get(h Hash) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.bytes[h]
	if !ok {
		return nil, ErrNotFoundf("ArchiveStore.Get", "archive "+h.Short()+" not found")
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Metadata returns an archive's metadata by hash.
func (s *ArchiveStore) Metadata(h Hash) (*ContentMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	md, ok := s.meta[h]
	if !ok {
		return nil, ErrNotFoundf("ArchiveStore.Metadata", "archive "+h.Short()+" not found")
	}
	cp := *md
	return &cp, nil
}

// RegisterStorage records that node claims to store the given archive,
// per §4.1 register_storage. size is not stored here; StorageProofManager's
// RegisterStorage is what accumulates claimed bytes.
func (s *ArchiveStore) RegisterStorage(node NodeId, archive Hash, size uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meta[archive]; !ok {
		return ErrNotFoundf("ArchiveStore.RegisterStorage", "archive "+archive.Short()+" not found")
	}
	set, ok := s.storers[archive]
	if !ok {
		set = make(map[NodeId]struct{})
		s.storers[archive] = set
	}
	set[node] = struct{}{}
	return nil
}

// StorersOf returns the set of nodes that claim to store an archive.
func (s *ArchiveStore) StorersOf(archive Hash) []NodeId {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.storers[archive]
	out := make([]NodeId, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// ClaimedArchives returns the archives a node claims to store, used by the
// storage-proof manager to pick a challenge target uniformly at random.
func (s *ArchiveStore) ClaimedArchives(node NodeId) []Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Hash
	for h, set := range s.storers {
		if _, ok := set[node]; ok {
			out = append(out, h)
		}
	}
	return out
}

// UpdatePopularity sets an archive's popularity counter, mutated only by
// the replication manager per spec.md §3 Ownership.
func (s *ArchiveStore) UpdatePopularity(h Hash, popularity uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	md, ok := s.meta[h]
	if !ok {
		return ErrNotFoundf("ArchiveStore.UpdatePopularity", "archive "+h.Short()+" not found")
	}
	md.Popularity = popularity
	return nil
}

// UpdateRedundancy sets an archive's current replica count, mutated only by
// the replication manager per spec.md §3 Ownership.
func (s *ArchiveStore) UpdateRedundancy(h Hash, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	md, ok := s.meta[h]
	if !ok {
		return ErrNotFoundf("ArchiveStore.UpdateRedundancy", "archive "+h.Short()+" not found")
	}
	md.RedundancyLevel = level
	return nil
}
