package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinel(t *testing.T) {
	wrapped := Wrapf(ErrAcquisition, "table %s offset %d", "ZMESSAGE", 512)

	require.NotNil(t, wrapped)
	assert.Contains(t, wrapped.Error(), "ZMESSAGE")
	assert.True(t, Is(wrapped, ErrAcquisition))
	assert.False(t, Is(wrapped, ErrEndOfData))
}

func TestIsEndOfData(t *testing.T) {
	assert.True(t, IsEndOfData(ErrEndOfData))
	assert.True(t, IsEndOfData(Wrap(ErrEndOfData, "cursor exhausted")))
	assert.False(t, IsEndOfData(nil))
	assert.False(t, IsEndOfData(New("something else")))
}

func TestIsStaleCursor(t *testing.T) {
	assert.True(t, IsStaleCursor(Wrap(ErrStaleCursor, "generation 1 < 2")))
	assert.False(t, IsStaleCursor(ErrEndOfData))
	assert.False(t, IsStaleCursor(nil))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrEndOfData,
		ErrStaleCursor,
		ErrTableNotFound,
		ErrMetadataUnavailable,
		ErrAcquisition,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), "sentinel %d should not match sentinel %d", i, j)
		}
	}
}
