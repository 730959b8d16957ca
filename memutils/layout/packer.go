package layout

import (
	"math/bits"
	"sort"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/cockroachdb/errors"
)

// Placement is a single resource range inside one memory object
type Placement struct {
	Name   string
	Kind   ResourceKind
	Offset int
	Size   int
}

func (p Placement) End() int {
	return p.Offset + p.Size
}

func (p Placement) Overlaps(other Placement) bool {
	return p.Offset < other.End() && other.Offset < p.End()
}

// Packer lays out resources inside a single device memory allocation. Resources placed with
// Place are packed one after another, while PlaceAt allows deliberately overlapping ranges
// for aliasing. A size of 0 means the allocation has not been made yet and the packer only
// reports how large it must be.
type Packer struct {
	size                   int
	bufferImageGranularity uint
	placements             []Placement
	end                    int
}

func NewPacker(size int, bufferImageGranularity int) (*Packer, error) {
	if bufferImageGranularity < 1 {
		bufferImageGranularity = 1
	}

	err := memutils.CheckPow2(bufferImageGranularity, "bufferImageGranularity")
	if err != nil {
		return nil, err
	}

	return &Packer{
		size:                   size,
		bufferImageGranularity: uint(bufferImageGranularity),
	}, nil
}

// Place appends a resource after the last placed resource, respecting its alignment and
// moving it onto a fresh granularity page if any resource on its first page has a conflicting kind
func (p *Packer) Place(name string, kind ResourceKind, size int, alignment uint) (int, error) {
	if size <= 0 {
		return 0, errors.Newf("resource %s has a non-positive size %d", name, size)
	}

	err := memutils.CheckPow2(alignment, name+" alignment")
	if err != nil {
		return 0, err
	}

	offset := memutils.AlignUp(p.end, alignment)
	for _, placed := range p.placements {
		if p.samePage(placed.End()-1, offset) && KindsConflict(placed.Kind, kind) {
			offset = memutils.AlignUp(offset, p.bufferImageGranularity)
			break
		}
	}

	if p.size > 0 {
		err = memutils.CheckRange(offset, size, p.size)
		if err != nil {
			return 0, errors.Wrapf(err, "placing %s", name)
		}
	}

	p.placements = append(p.placements, Placement{Name: name, Kind: kind, Offset: offset, Size: size})
	if offset+size > p.end {
		p.end = offset + size
	}
	memutils.DebugValidate(p)

	return offset, nil
}

// PlaceAt records a resource at an explicit offset. Overlaps with existing resources are allowed.
func (p *Packer) PlaceAt(name string, kind ResourceKind, offset, size int) error {
	if size <= 0 {
		return errors.Newf("resource %s has a non-positive size %d", name, size)
	}

	if p.size > 0 {
		err := memutils.CheckRange(offset, size, p.size)
		if err != nil {
			return errors.Wrapf(err, "placing %s", name)
		}
	} else if offset < 0 {
		return errors.Newf("resource %s has a negative offset %d", name, offset)
	}

	p.placements = append(p.placements, Placement{Name: name, Kind: kind, Offset: offset, Size: size})
	if offset+size > p.end {
		p.end = offset + size
	}

	return nil
}

// RequiredSize is the number of bytes the memory object must have to contain every placement
func (p *Packer) RequiredSize() int {
	return p.end
}

func (p *Packer) Placements() []Placement {
	return p.placements
}

func (p *Packer) Lookup(name string) (Placement, bool) {
	for _, placement := range p.placements {
		if placement.Name == name {
			return placement, true
		}
	}

	return Placement{}, false
}

// Aliases returns the names of all placements that share at least one byte with the named placement
func (p *Packer) Aliases(name string) []string {
	target, ok := p.Lookup(name)
	if !ok {
		return nil
	}

	var aliases []string
	for _, placement := range p.placements {
		if placement.Name != name && placement.Overlaps(target) {
			aliases = append(aliases, placement.Name)
		}
	}

	return aliases
}

// Validate checks that every placement lies inside the memory object and that no two
// non-aliasing placements of conflicting kinds share a granularity page
func (p *Packer) Validate() error {
	limit := p.size
	if limit == 0 {
		limit = p.end
	}

	for _, placement := range p.placements {
		err := memutils.CheckRange(placement.Offset, placement.Size, limit)
		if err != nil {
			return errors.Wrapf(err, "validating %s", placement.Name)
		}
	}

	for i := 0; i < len(p.placements); i++ {
		for j := i + 1; j < len(p.placements); j++ {
			first, second := p.placements[i], p.placements[j]
			if first.Overlaps(second) || !KindsConflict(first.Kind, second.Kind) {
				continue
			}

			if p.sharePage(first, second) {
				return errors.Newf("%s (%s) and %s (%s) share a bufferImageGranularity page",
					first.Name, first.Kind, second.Name, second.Kind)
			}
		}
	}

	return nil
}

// Statistics accumulates the resources and the gaps between them into stats
func (p *Packer) Statistics(stats *memutils.LayoutStatistics) {
	stats.MemoryObjects++
	size := p.size
	if size == 0 {
		size = p.end
	}
	stats.MemoryBytes += size

	sorted := make([]Placement, len(p.placements))
	copy(sorted, p.placements)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	covered := 0
	for _, placement := range sorted {
		stats.AddResource(placement.Size)
		if placement.Offset > covered {
			stats.AddGap(placement.Offset - covered)
		}
		if placement.End() > covered {
			covered = placement.End()
		}
	}

	if size > covered {
		stats.AddGap(size - covered)
	}
}

func (p *Packer) sharePage(first, second Placement) bool {
	if first.Offset > second.Offset {
		first, second = second, first
	}

	return p.samePage(first.End()-1, second.Offset)
}

func (p *Packer) samePage(firstOffset, secondOffset int) bool {
	if p.bufferImageGranularity <= 1 {
		return false
	}

	return p.pageIndex(firstOffset) == p.pageIndex(secondOffset)
}

func (p *Packer) pageIndex(offset int) int {
	return offset >> (63 - bits.LeadingZeros64(uint64(p.bufferImageGranularity)))
}
