package main

import (
	"bytes"
	"strings"
	"testing"
	"unsafe"

	"github.com/CannibalVox/cgoparam"
	"github.com/stretchr/testify/require"
)

func TestMeshPropertiesReadback(t *testing.T) {
	alloc := cgoparam.GetAlloc()
	defer cgoparam.ReturnAlloc(alloc)

	var properties MeshShaderProperties
	ptr, err := properties.PopulateHeader(alloc, nil, nil)
	require.NoError(t, err)
	require.Equal(t, int32(1000328001), (*cMeshProperties)(ptr).sType)
	// 36 uint32 members after the 16 byte header
	require.Equal(t, uintptr(16+36*4), unsafe.Sizeof(cMeshProperties{}))

	(*cMeshProperties)(ptr).limits.MaxMeshOutputVertices = 256
	(*cMeshProperties)(ptr).limits.MaxTaskWorkGroupCount = [3]uint32{4, 5, 6}

	next, err := properties.PopulateOutData(ptr)
	require.NoError(t, err)
	require.Nil(t, next)
	require.Equal(t, uint32(256), properties.Limits.MaxMeshOutputVertices)
	require.Equal(t, [3]uint32{4, 5, 6}, properties.Limits.MaxTaskWorkGroupCount)
}

func TestPrintMesh(t *testing.T) {
	var out bytes.Buffer
	printMeshFeatures(&out, []bool{true, true, false, false, true})
	printMeshLimits(&out, MeshLimits{MaxMeshWorkGroupSize: [3]uint32{128, 1, 1}, PrefersCompactVertexOutput: 1})

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 1+5+1+28)

	tests := map[string]string{
		"Feature":      "\tmeshShader = true",
		"MissingQuery": "\tmultiviewMeshShader = false",
		"Triple":       "\tmaxMeshWorkGroupSize = 128,1,1",
		"Bool32":       "\tprefersCompactVertexOutput = 1",
		"Zero":         "\tmaxTaskPayloadSize = 0",
	}
	for name, line := range tests {
		t.Run(name, func(t *testing.T) {
			require.Contains(t, lines, line)
		})
	}
}
