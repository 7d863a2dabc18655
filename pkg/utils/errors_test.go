package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapReturnsNilForNilError(t *testing.T) {
	require := require.New(t)
	require.NoError(Wrap(nil, "context"))
}

func TestWrapPrependsMessageAndPreservesCause(t *testing.T) {
	require := require.New(t)

	cause := errors.New("disk full")
	wrapped := Wrap(cause, "write config file")

	require.ErrorIs(wrapped, cause)
	require.Equal("write config file: disk full", wrapped.Error())
}
