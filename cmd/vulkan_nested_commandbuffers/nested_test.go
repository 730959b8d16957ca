package main

import (
	"testing"

	"github.com/CannibalVox/cgoparam"
	"github.com/stretchr/testify/require"
)

func TestNestedFeaturesLayout(t *testing.T) {
	alloc := cgoparam.GetAlloc()
	defer cgoparam.ReturnAlloc(alloc)

	next := alloc.Malloc(8)
	ptr, err := NestedCommandBufferFeatures{NestedCommandBuffer: true, NestedCommandBufferSimultaneousUse: true}.PopulateCPointer(alloc, nil, next)
	require.NoError(t, err)

	features := (*cNestedFeatures)(ptr)
	require.Equal(t, cNestedFeatures{
		sType:                              1000451000,
		next:                               next,
		nestedCommandBuffer:                1,
		nestedCommandBufferSimultaneousUse: 1,
	}, *features)
}

func TestNestedPropertiesReadback(t *testing.T) {
	alloc := cgoparam.GetAlloc()
	defer cgoparam.ReturnAlloc(alloc)

	var properties NestedCommandBufferProperties
	ptr, err := properties.PopulateHeader(alloc, nil, nil)
	require.NoError(t, err)
	require.Equal(t, int32(1000451001), (*cNestedProperties)(ptr).sType)

	(*cNestedProperties)(ptr).maxCommandBufferNestingLevel = 8

	next, err := properties.PopulateOutData(ptr)
	require.NoError(t, err)
	require.Nil(t, next)
	require.Equal(t, 8, properties.MaxCommandBufferNestingLevel)
}
