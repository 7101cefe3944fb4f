package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesTypeAndMessage(t *testing.T) {
	err := New(ErrorTypeConfig, "bad input")
	assert.Equal(t, "config: bad input", err.Error())
	assert.True(t, IsType(err, ErrorTypeConfig))
	assert.False(t, IsType(err, ErrorTypeSerde))
	assert.NotEmpty(t, err.Stack)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, ErrorTypeInternal, "write failed")
	assert.Contains(t, err.Error(), "write failed")
	assert.Contains(t, err.Error(), "disk full")
	assert.ErrorIs(t, err, cause)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "nothing"))
}

func TestNewConfigErrorMessageShape(t *testing.T) {
	err := NewConfigError("commit.interval.ms", -1, "Value must be at least 0")
	assert.Contains(t, err.Error(),
		"Invalid value -1 for configuration commit.interval.ms: Value must be at least 0")
	assert.Equal(t, "commit.interval.ms", err.Details["key"])
	assert.Equal(t, -1, err.Details["value"])
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeSerde, "boom").WithDetail("serde", "string")
	assert.Equal(t, "string", err.Details["serde"])
}

func TestIsTypeFollowsWrapChain(t *testing.T) {
	inner := NewConfigError("k", "v", "bad")
	outer := Wrap(inner, ErrorTypeInternal, "resolution failed")
	require.True(t, IsType(outer, ErrorTypeInternal))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeConfig))
}
