package main

import (
	"fmt"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

const heapAllocationSize = 4096

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_init", pflag.ContinueOnError)
	jsonPath := flags.StringP("json", "j", "", "Write the device listing as JSON to this file")

	reqs := &toolstest.Requirements{
		Flags: flags,
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_init", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	physicalDevices, res, err := ctx.Instance.EnumeratePhysicalDevices()
	if err := toolstest.Check(res, err); err != nil {
		return err
	}

	devices := make([]deviceInfo, 0, len(physicalDevices))
	for index, physicalDevice := range physicalDevices {
		device, err := describeDevice(index, physicalDevice)
		if err != nil {
			return err
		}
		devices = append(devices, device)
		printDevice(device)
	}

	heaps, err := measureHeaps(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Heap usage while probing every memory type of GPU %d:\n", ctx.Options.GPU)
	var total memutils.Statistics
	for heapIndex, stats := range heaps {
		fmt.Printf("\theap %d: %d memory objects, %d bytes\n", heapIndex, stats.MemoryObjects, stats.MemoryBytes)
		total.Add(stats)
	}
	fmt.Printf("\ttotal: %d memory objects, %d bytes\n", total.MemoryObjects, total.MemoryBytes)

	if *jsonPath != "" {
		data, err := encodeDevices(devices)
		if err != nil {
			return err
		}

		err = os.WriteFile(*jsonPath, data, 0o644)
		if err != nil {
			return errors.Wrapf(err, "could not write %s", *jsonPath)
		}
	}

	return nil
}

type queueFamilyInfo struct {
	Flags string
	Count int
}

type memoryTypeInfo struct {
	Flags string
	Heap  int
}

type memoryHeapInfo struct {
	Size        int
	DeviceLocal bool
}

type deviceInfo struct {
	Index         int
	Name          string
	APIVersion    string
	QueueFamilies []queueFamilyInfo
	Extensions    []string
	MemoryTypes   []memoryTypeInfo
	MemoryHeaps   []memoryHeapInfo
}

func describeDevice(index int, physicalDevice core1_0.PhysicalDevice) (deviceInfo, error) {
	properties, err := physicalDevice.Properties()
	if err != nil {
		return deviceInfo{}, err
	}

	device := deviceInfo{
		Index:      index,
		Name:       properties.DriverName,
		APIVersion: toolstest.VersionString(properties.APIVersion),
	}

	for _, family := range physicalDevice.QueueFamilyProperties() {
		device.QueueFamilies = append(device.QueueFamilies, queueFamilyInfo{
			Flags: family.QueueFlags.String(),
			Count: family.QueueCount,
		})
	}

	extensions, res, err := physicalDevice.EnumerateDeviceExtensionProperties()
	if err := toolstest.Check(res, err); err != nil {
		return deviceInfo{}, err
	}
	device.Extensions = maps.Keys(extensions)
	slices.Sort(device.Extensions)

	memoryProperties := physicalDevice.MemoryProperties()
	for _, memoryType := range memoryProperties.MemoryTypes {
		device.MemoryTypes = append(device.MemoryTypes, memoryTypeInfo{
			Flags: memoryType.PropertyFlags.String(),
			Heap:  memoryType.HeapIndex,
		})
	}
	for _, heap := range memoryProperties.MemoryHeaps {
		device.MemoryHeaps = append(device.MemoryHeaps, memoryHeapInfo{
			Size:        heap.Size,
			DeviceLocal: heap.Flags&core1_0.MemoryHeapDeviceLocal != 0,
		})
	}

	return device, nil
}

func printDevice(device deviceInfo) {
	queues := 0
	if len(device.QueueFamilies) > 0 {
		queues = device.QueueFamilies[0].Count
	}
	fmt.Printf("\t%d : %s (Vulkan %s) with %d queues\n", device.Index, device.Name, device.APIVersion, queues)

	for index, family := range device.QueueFamilies {
		fmt.Printf("\t\tqueue family %d: %d queues (%s)\n", index, family.Count, family.Flags)
	}
	for index, memoryType := range device.MemoryTypes {
		fmt.Printf("\t\tmemory type %d: heap %d (%s)\n", index, memoryType.Heap, memoryType.Flags)
	}
	for index, heap := range device.MemoryHeaps {
		fmt.Printf("\t\tmemory heap %d: %d bytes, device local %t\n", index, heap.Size, heap.DeviceLocal)
	}
	fmt.Printf("\t\t%d device extensions\n", len(device.Extensions))
}

// measureHeaps allocates a small memory object from every memory type of the selected device and
// returns the heap statistics seen while they are all alive
func measureHeaps(ctx *toolstest.Context) ([]memutils.Statistics, error) {
	var allocated []core1_0.DeviceMemory
	defer func() {
		for _, memory := range allocated {
			ctx.FreeMemory(memory)
		}
	}()

	for memoryTypeIndex := 0; memoryTypeIndex < ctx.MemoryTypeCount(); memoryTypeIndex++ {
		memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
			AllocationSize:  heapAllocationSize,
			MemoryTypeIndex: memoryTypeIndex,
		})
		if err != nil {
			ctx.Logger.Warn("memory type cannot be allocated from", slog.Int("memoryType", memoryTypeIndex), slog.Any("error", err))
			continue
		}
		allocated = append(allocated, memory)
	}

	heaps := make([]memutils.Statistics, ctx.MemoryHeapCount())
	for heapIndex := range heaps {
		ctx.HeapStatistics(heapIndex, &heaps[heapIndex])
	}
	return heaps, nil
}
