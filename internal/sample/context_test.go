package sample

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContext_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := NewSyntheticSource(DefaultSyntheticOptions())
	wrapped := WithContext(ctx, src)

	require.True(t, wrapped.Next())
	require.True(t, wrapped.Next())
	cancel()

	assert.False(t, wrapped.Next())
	assert.ErrorIs(t, wrapped.Err(), context.Canceled)
	assert.Equal(t, int64(2), src.Generated())

	require.NoError(t, wrapped.Close())
	assert.False(t, src.Next(), "closing the wrapper closes the source")
}

func TestWithContext_PassesThrough(t *testing.T) {
	inner := NewSliceSource([]Sample{{Value: 1}, {Value: 2}})
	wrapped := WithContext(context.Background(), inner)

	var got []float64
	for wrapped.Next() {
		got = append(got, wrapped.Sample().Value)
	}
	require.NoError(t, wrapped.Err())
	assert.Equal(t, []float64{1, 2}, got)

	require.NoError(t, wrapped.Close())
	assert.Equal(t, 1, inner.Closes())
}
