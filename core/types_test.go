package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashIsZeroAndRoundTripsHex(t *testing.T) {
	require := require.New(t)

	require.True(ZeroHash.IsZero())

	h := HashFromBytes([]byte("some 32+ byte content digest!!!"))
	require.False(h.IsZero())

	decoded, err := HashFromHex(h.Hex())
	require.NoError(err)
	require.Equal(h, decoded)
	require.Equal(h.Hex(), h.String())
}

func TestHashFromBytesTruncatesAndZeroPads(t *testing.T) {
	require := require.New(t)

	short := HashFromBytes([]byte("abc"))
	require.Equal(byte('a'), short[0])
	require.Equal(byte('b'), short[1])
	require.Equal(byte('c'), short[2])
	require.Equal(byte(0), short[3])

	long := HashFromBytes(make([]byte, 64))
	require.Equal(Hash{}, long)
}

func TestHashFromHexRejectsWrongLength(t *testing.T) {
	require := require.New(t)

	_, err := HashFromHex("abcd")
	require.Error(err)
}

func TestHashFromHexRejectsInvalidHex(t *testing.T) {
	require := require.New(t)

	_, err := HashFromHex("zz" + string(make([]byte, 62)))
	require.Error(err)
}

func TestHashShortTruncatesTheFullHexDigest(t *testing.T) {
	require := require.New(t)

	h := HashFromBytes([]byte("deterministic content for hash"))
	full := h.Hex()
	short := h.Short()

	require.Contains(short, "…")
	require.Less(len(short), len(full))
	require.True(len(full) > 8, "hash hex is always 64 chars, so Short always truncates")
	require.Equal(full[:4]+"…"+full[len(full)-4:], short)
}

func TestAddressZeroAndHex(t *testing.T) {
	require := require.New(t)

	require.Equal(Address{}, AddressZero)

	var a Address
	a[0] = 0xff
	require.Equal("ff00000000000000000000000000000000000000", a.Hex())
	require.Equal(a.Hex(), a.String())
}

func TestNodeIdZeroHexAndBytes(t *testing.T) {
	require := require.New(t)

	var n NodeId
	require.True(n.IsZero())

	n[0] = 0x01
	require.False(n.IsZero())
	require.Equal(n.Bytes(), n[:])
	require.Equal(n.Hex(), n.String())
}

func TestNodeIdLessIsADeterministicTotalOrder(t *testing.T) {
	require := require.New(t)

	var a, b NodeId
	a[0] = 0x01
	b[0] = 0x02

	require.True(a.Less(b))
	require.False(b.Less(a))
	require.False(a.Less(a))
}

func TestNodeIdFromPublicKeyIsStableAndKeySensitive(t *testing.T) {
	require := require.New(t)

	pub1 := []byte("a stand-in public key payload one")
	pub2 := []byte("a stand-in public key payload two")

	id1a := NodeIdFromPublicKey(pub1)
	id1b := NodeIdFromPublicKey(pub1)
	id2 := NodeIdFromPublicKey(pub2)

	require.Equal(id1a, id1b)
	require.NotEqual(id1a, id2)
	require.False(id1a.IsZero())
}

func TestImportanceStringCoversKnownValuesAndDefaultsToUnknown(t *testing.T) {
	require := require.New(t)

	require.Equal("Low", ImportanceLow.String())
	require.Equal("Medium", ImportanceMedium.String())
	require.Equal("High", ImportanceHigh.String())
	require.Equal("Critical", ImportanceCritical.String())
	require.Equal("Unknown", Importance(200).String())
}

func TestImportanceMinRegions(t *testing.T) {
	require := require.New(t)

	require.Equal(3, ImportanceCritical.MinRegions())
	require.Equal(2, ImportanceHigh.MinRegions())
	require.Equal(2, ImportanceMedium.MinRegions())
	require.Equal(1, ImportanceLow.MinRegions())
}

func TestImportanceMultiplier(t *testing.T) {
	require := require.New(t)

	require.Equal(2.0, ImportanceCritical.Multiplier())
	require.Equal(1.5, ImportanceHigh.Multiplier())
	require.Equal(1.0, ImportanceMedium.Multiplier())
	require.Equal(0.7, ImportanceLow.Multiplier())
}
