package memutils

import (
	"math"

	"golang.org/x/exp/slog"
)

// Statistics counts device memory objects and the resources bound into them
type Statistics struct {
	MemoryObjects  int
	MemoryBytes    int
	BoundResources int
	BoundBytes     int
}

func (s *Statistics) Reset() {
	*s = Statistics{}
}

func (s *Statistics) Add(other Statistics) {
	s.MemoryObjects += other.MemoryObjects
	s.MemoryBytes += other.MemoryBytes
	s.BoundResources += other.BoundResources
	s.BoundBytes += other.BoundBytes
}

// LayoutStatistics extends Statistics with the spread of resource sizes and of the gaps left
// between them. Call Reset before the first use so the minimums start out high.
type LayoutStatistics struct {
	Statistics
	GapCount        int
	ResourceSizeMin int
	ResourceSizeMax int
	GapSizeMin      int
	GapSizeMax      int
}

func (s *LayoutStatistics) Reset() {
	s.Statistics.Reset()
	s.GapCount = 0
	s.ResourceSizeMin = math.MaxInt
	s.ResourceSizeMax = 0
	s.GapSizeMin = math.MaxInt
	s.GapSizeMax = 0
}

func (s *LayoutStatistics) AddGap(size int) {
	s.GapCount++
	if size < s.GapSizeMin {
		s.GapSizeMin = size
	}
	if size > s.GapSizeMax {
		s.GapSizeMax = size
	}
}

func (s *LayoutStatistics) AddResource(size int) {
	s.BoundResources++
	s.BoundBytes += size
	if size < s.ResourceSizeMin {
		s.ResourceSizeMin = size
	}
	if size > s.ResourceSizeMax {
		s.ResourceSizeMax = size
	}
}

func (s *LayoutStatistics) wasted() int {
	return s.MemoryBytes - s.BoundBytes
}

// LogValue reports the figures as a slog group. Empty minimums are reported as 0.
func (s LayoutStatistics) LogValue() slog.Value {
	resourceMin, gapMin := s.ResourceSizeMin, s.GapSizeMin
	if s.BoundResources == 0 {
		resourceMin = 0
	}
	if s.GapCount == 0 {
		gapMin = 0
	}

	return slog.GroupValue(
		slog.Int("memoryObjects", s.MemoryObjects),
		slog.Int("memoryBytes", s.MemoryBytes),
		slog.Int("resources", s.BoundResources),
		slog.Int("resourceBytes", s.BoundBytes),
		slog.Int("resourceSizeMin", resourceMin),
		slog.Int("resourceSizeMax", s.ResourceSizeMax),
		slog.Int("gaps", s.GapCount),
		slog.Int("gapSizeMin", gapMin),
		slog.Int("gapSizeMax", s.GapSizeMax),
		slog.Int("unboundBytes", s.wasted()),
	)
}
