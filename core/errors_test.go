package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByKind(t *testing.T) {
	require := require.New(t)

	err := ErrNotFoundf("Op", "missing")
	require.True(errors.Is(err, ErrNotFoundf("Other", "also missing")))
	require.False(errors.Is(err, ErrValidation("Other", "bad input")))
}

func TestErrorUnwrapPreservesWrappedCause(t *testing.T) {
	require := require.New(t)

	cause := errors.New("root cause")
	err := ErrInternalf("Op", "failed", cause)
	require.ErrorIs(err, cause)
}

func TestErrInsufficientCarriesAmounts(t *testing.T) {
	require := require.New(t)

	err := ErrInsufficient("Ledger.Transfer", "not enough balance", 100, 40)
	var e *Error
	require.True(errors.As(err, &e))
	require.Equal(uint64(100), e.Required)
	require.Equal(uint64(40), e.Available)
	require.Equal(KindInsufficientResource, e.Kind)
}

func TestKindOfDefaultsToInternalForForeignErrors(t *testing.T) {
	require := require.New(t)
	require.Equal(KindInternal, KindOf(fmt.Errorf("plain error")))
	require.Equal(KindValidation, KindOf(ErrValidation("Op", "bad")))
}

func TestKindStringCoversAllValues(t *testing.T) {
	require := require.New(t)
	require.Equal("Validation", KindValidation.String())
	require.Equal("Unknown", Kind(255).String())
}
