package core

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestArchiveStorePutIsContentAddressedAndIdempotent(t *testing.T) {
	require := require.New(t)

	store := NewArchiveStore(log.New())
	data := []byte("hello archive")

	md1 := store.Put(data, "text/plain", ImportanceMedium, nil, nil)
	md2 := store.Put(data, "text/plain", ImportanceMedium, nil, nil)

	require.Equal(md1.ContentHash, md2.ContentHash)
	require.Equal(SHA256(data), md1.ContentHash)
	require.Same(md1, md2, "re-putting identical bytes returns the existing metadata")
}

func TestArchiveStoreGetRoundTripsBytes(t *testing.T) {
	require := require.New(t)

	store := NewArchiveStore(log.New())
	data := []byte("round trip me")
	md := store.Put(data, "text/plain", ImportanceLow, nil, nil)

	got, err := store.Get(md.ContentHash)
	require.NoError(err)
	require.Equal(data, got)
}

func TestArchiveStoreGetUnknownHashFails(t *testing.T) {
	require := require.New(t)
	store := NewArchiveStore(log.New())
	_, err := store.Get(HashFromBytes([]byte("nope")))
	require.Error(err)
}

func TestArchiveStoreRegisterStorageRequiresKnownArchive(t *testing.T) {
	require := require.New(t)
	store := NewArchiveStore(log.New())
	err := store.RegisterStorage(nodeIDFromByte(1), HashFromBytes([]byte("ghost")), 1024)
	require.Error(err)
}

func TestArchiveStoreRegisterStorageTracksClaimedArchives(t *testing.T) {
	require := require.New(t)

	store := NewArchiveStore(log.New())
	md := store.Put([]byte("content"), "text/plain", ImportanceLow, nil, nil)
	node := nodeIDFromByte(1)

	require.NoError(store.RegisterStorage(node, md.ContentHash, uint64(len("content"))))
	require.ElementsMatch([]Hash{md.ContentHash}, store.ClaimedArchives(node))
	require.ElementsMatch([]NodeId{node}, store.StorersOf(md.ContentHash))
}

func TestArchiveStoreUpdatePopularityAndRedundancy(t *testing.T) {
	require := require.New(t)

	store := NewArchiveStore(log.New())
	md := store.Put([]byte("content"), "text/plain", ImportanceLow, nil, nil)

	require.NoError(store.UpdatePopularity(md.ContentHash, 42))
	require.NoError(store.UpdateRedundancy(md.ContentHash, 5))

	got, err := store.Metadata(md.ContentHash)
	require.NoError(err)
	require.Equal(uint64(42), got.Popularity)
	require.Equal(5, got.RedundancyLevel)
}

func TestContentMetadataCIDIsDeterministic(t *testing.T) {
	require := require.New(t)

	md := ContentMetadata{ContentHash: SHA256([]byte("abc"))}
	c1, err := md.CID()
	require.NoError(err)
	c2, err := md.CID()
	require.NoError(err)
	require.Equal(c1, c2)
}
