package memutils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestStatisticsAdd(t *testing.T) {
	total := Statistics{MemoryObjects: 1, MemoryBytes: 4096}
	total.Add(Statistics{MemoryObjects: 2, MemoryBytes: 1024, BoundResources: 3, BoundBytes: 768})
	require.Equal(t, Statistics{MemoryObjects: 3, MemoryBytes: 5120, BoundResources: 3, BoundBytes: 768}, total)

	total.Reset()
	require.Equal(t, Statistics{}, total)
}

func TestLayoutStatistics(t *testing.T) {
	var stats LayoutStatistics
	stats.Reset()
	stats.MemoryBytes = 1024

	stats.AddResource(256)
	stats.AddResource(512)
	stats.AddGap(64)
	stats.AddGap(192)

	require.Equal(t, 2, stats.BoundResources)
	require.Equal(t, 768, stats.BoundBytes)
	require.Equal(t, 256, stats.ResourceSizeMin)
	require.Equal(t, 512, stats.ResourceSizeMax)
	require.Equal(t, 2, stats.GapCount)
	require.Equal(t, 64, stats.GapSizeMin)
	require.Equal(t, 192, stats.GapSizeMax)

	attrs := map[string]int64{}
	for _, attr := range stats.LogValue().Group() {
		attrs[attr.Key] = attr.Value.Int64()
	}
	require.Equal(t, int64(256), attrs["unboundBytes"])
	require.Equal(t, int64(64), attrs["gapSizeMin"])
}

func TestEmptyLayoutStatisticsLogValue(t *testing.T) {
	var stats LayoutStatistics
	stats.Reset()

	value := stats.LogValue()
	require.Equal(t, slog.KindGroup, value.Kind())
	for _, attr := range value.Group() {
		require.Equal(t, int64(0), attr.Value.Int64(), attr.Key)
	}
}
