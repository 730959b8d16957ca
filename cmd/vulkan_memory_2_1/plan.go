package main

import (
	"github.com/ARM-software/tracetooltests-sub000/memutils"
)

type bufferRequirement struct {
	memoryType int
	size       int
	alignment  int
}

type memoryPool struct {
	memoryType int
	size       int
}

// planPools packs buffers that share a memory type into one pool each. Pools appear in the
// order their memory type is first seen and every pool begins with start bytes of padding.
func planPools(start int, reqs []bufferRequirement) (offsets []int, pools []memoryPool) {
	index := map[int]int{}
	offsets = make([]int, len(reqs))

	for i, req := range reqs {
		p, ok := index[req.memoryType]
		if !ok {
			p = len(pools)
			index[req.memoryType] = p
			pools = append(pools, memoryPool{memoryType: req.memoryType, size: start})
		}

		offset := memutils.AlignUp(pools[p].size, uint(req.alignment))
		offsets[i] = offset
		pools[p].size = offset + req.size
	}

	return offsets, pools
}
