package main

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

func encodeDevices(devices []deviceInfo) ([]byte, error) {
	writer := jwriter.NewWriter()

	obj := writer.Object()
	list := obj.Name("devices").Array()
	for _, device := range devices {
		deviceObj := list.Object()
		deviceObj.Name("index").Int(device.Index)
		deviceObj.Name("name").String(device.Name)
		deviceObj.Name("api_version").String(device.APIVersion)

		families := deviceObj.Name("queue_families").Array()
		for _, family := range device.QueueFamilies {
			familyObj := families.Object()
			familyObj.Name("flags").String(family.Flags)
			familyObj.Name("count").Int(family.Count)
			familyObj.End()
		}
		families.End()

		extensions := deviceObj.Name("extensions").Array()
		for _, extension := range device.Extensions {
			extensions.String(extension)
		}
		extensions.End()

		memoryTypes := deviceObj.Name("memory_types").Array()
		for _, memoryType := range device.MemoryTypes {
			typeObj := memoryTypes.Object()
			typeObj.Name("flags").String(memoryType.Flags)
			typeObj.Name("heap").Int(memoryType.Heap)
			typeObj.End()
		}
		memoryTypes.End()

		heaps := deviceObj.Name("memory_heaps").Array()
		for _, heap := range device.MemoryHeaps {
			heapObj := heaps.Object()
			heapObj.Name("size").Float64(float64(heap.Size))
			heapObj.Name("device_local").Bool(heap.DeviceLocal)
			heapObj.End()
		}
		heaps.End()

		deviceObj.End()
	}
	list.End()
	obj.End()

	if err := writer.Error(); err != nil {
		return nil, errors.Wrap(err, "could not encode device listing")
	}
	return writer.Bytes(), nil
}
