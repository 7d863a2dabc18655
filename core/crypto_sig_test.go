package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPairSignAndVerifyRoundTrip(t *testing.T) {
	require := require.New(t)

	kp, err := GenerateKeyPair()
	require.NoError(err)

	data := []byte("archive-manifest-v1")
	sig := kp.Sign(data)

	require.True(VerifySignature(kp.Public.SerializeCompressed(), sig, data))
	require.False(VerifySignature(kp.Public.SerializeCompressed(), sig, []byte("tampered")))
}

func TestVerifySignatureRejectsMalformedKey(t *testing.T) {
	require := require.New(t)
	require.False(VerifySignature([]byte("not-a-key"), []byte("sig"), []byte("data")))
}

func TestKeyPairNodeIdIsStableAcrossCalls(t *testing.T) {
	require := require.New(t)

	kp, err := GenerateKeyPair()
	require.NoError(err)
	require.Equal(kp.NodeId(), kp.NodeId())
}

func TestSHA256AndKeccak256Differ(t *testing.T) {
	require := require.New(t)

	data := []byte("same-input")
	require.NotEqual(SHA256(data), Keccak256(data))
}
