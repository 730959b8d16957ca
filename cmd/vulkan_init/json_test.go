package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDevices(t *testing.T) {
	data, err := encodeDevices([]deviceInfo{
		{
			Index:         0,
			Name:          "Mali-G710",
			APIVersion:    "1.3.0",
			QueueFamilies: []queueFamilyInfo{{Flags: "Graphics|Compute|Transfer", Count: 2}},
			Extensions:    []string{"VK_KHR_maintenance4", "VK_KHR_swapchain"},
			MemoryTypes:   []memoryTypeInfo{{Flags: "DeviceLocal", Heap: 0}},
			MemoryHeaps:   []memoryHeapInfo{{Size: 1 << 30, DeviceLocal: true}},
		},
		{
			Index:      1,
			Name:       "llvmpipe",
			APIVersion: "1.1.0",
		},
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	devices := decoded["devices"].([]any)
	require.Len(t, devices, 2)

	first := devices[0].(map[string]any)
	require.Equal(t, "Mali-G710", first["name"])
	require.Equal(t, "1.3.0", first["api_version"])
	require.Equal(t, []any{"VK_KHR_maintenance4", "VK_KHR_swapchain"}, first["extensions"])
	require.Equal(t, []any{map[string]any{"flags": "Graphics|Compute|Transfer", "count": float64(2)}}, first["queue_families"])
	require.Equal(t, []any{map[string]any{"size": float64(1 << 30), "device_local": true}}, first["memory_heaps"])

	second := devices[1].(map[string]any)
	require.Equal(t, float64(1), second["index"])
	require.Equal(t, []any{}, second["extensions"])
}
