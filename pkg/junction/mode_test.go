package junction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectMode_ExplicitAlwaysWinsRegardlessOfScore(t *testing.T) {
	require.Equal(t, Async, SelectMode(SelectionInput{ExplicitAsync: true}))
}

func TestSelectMode_AllThreeSignalsPickAsync(t *testing.T) {
	require.Equal(t, Async, SelectMode(SelectionInput{
		ExpectedThroughputPerSec: 200_000,
		SubscriberCount:          10,
		BufferCapacity:           9_000,
	}))
}

func TestSelectMode_TwoSignalsStaySync(t *testing.T) {
	require.Equal(t, Sync, SelectMode(SelectionInput{
		ExpectedThroughputPerSec: 200_000,
		SubscriberCount:          10,
	}))
}

func TestSelectMode_NoSignalsStaySync(t *testing.T) {
	require.Equal(t, Sync, SelectMode(SelectionInput{}))
}
