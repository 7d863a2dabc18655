package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGasCostKnownCategories(t *testing.T) {
	require := require.New(t)
	require.Equal(uint64(200), GasCost(CallReadStorage))
	require.Equal(uint64(5_000), GasCost(CallWriteStorage))
	require.Equal(uint64(9_000), GasCost(CallTransfer))
}

func TestGasCostUnknownCategoryFallsBackToDefault(t *testing.T) {
	require := require.New(t)
	require.Equal(DefaultHostCallGas, GasCost(HostCall(255)))
}
