package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanPools(t *testing.T) {
	tests := map[string]struct {
		start   int
		reqs    []bufferRequirement
		offsets []int
		pools   []memoryPool
	}{
		"SingleType": {
			reqs: []bufferRequirement{
				{memoryType: 2, size: 100, alignment: 64},
				{memoryType: 2, size: 100, alignment: 64},
			},
			offsets: []int{0, 128},
			pools:   []memoryPool{{memoryType: 2, size: 228}},
		},
		"StartOffset": {
			start: 10,
			reqs: []bufferRequirement{
				{memoryType: 0, size: 16, alignment: 16},
			},
			offsets: []int{16},
			pools:   []memoryPool{{memoryType: 0, size: 32}},
		},
		"SplitByType": {
			start: 4,
			reqs: []bufferRequirement{
				{memoryType: 3, size: 8, alignment: 8},
				{memoryType: 1, size: 8, alignment: 256},
				{memoryType: 3, size: 8, alignment: 8},
			},
			offsets: []int{8, 256, 16},
			pools: []memoryPool{
				{memoryType: 3, size: 24},
				{memoryType: 1, size: 264},
			},
		},
		"NoAlignment": {
			reqs: []bufferRequirement{
				{memoryType: 0, size: 3},
				{memoryType: 0, size: 5},
			},
			offsets: []int{0, 3},
			pools:   []memoryPool{{memoryType: 0, size: 8}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			offsets, pools := planPools(test.start, test.reqs)
			require.Equal(t, test.offsets, offsets)
			require.Equal(t, test.pools, pools)
		})
	}
}

func TestBufferSpecs(t *testing.T) {
	tests := map[string]struct {
		raytracing    bool
		deviceAddress bool
		first         string
		count         int
	}{
		"Plain":         {first: "Transfer source", count: 9},
		"DeviceAddress": {deviceAddress: true, first: "Storage + Buffer Device Address", count: 10},
		"Raytracing":    {raytracing: true, first: "Acceleration structure", count: 11},
		"Everything":    {raytracing: true, deviceAddress: true, first: "Acceleration structure", count: 12},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			specs := bufferSpecs(test.raytracing, test.deviceAddress)
			require.Len(t, specs, test.count)
			require.Equal(t, test.first, specs[0].name)
			require.Equal(t, "Indirect GPU", specs[len(specs)-1].name)
		})
	}
}
