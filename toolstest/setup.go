package toolstest

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ARM-software/tracetooltests-sub000/bench"
	"github.com/ARM-software/tracetooltests-sub000/toolstest/internal/vulkan"
	"github.com/ARM-software/tracetooltests-sub000/tracehelpers"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/core1_2"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v2/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v2/khr_portability_subset"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

const (
	validationLayerName          = "VK_LAYER_KHRONOS_validation"
	headlessSurfaceExtensionName = "VK_EXT_headless_surface"
	surfaceExtensionName         = "VK_KHR_surface"
	engineName                   = "testEngine"
	renderingBackend             = "Vulkan"
	debugMessageSeverity         = ext_debug_utils.SeverityInfo | ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityError
	debugMessageType             = ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance
)

// Context is everything a program gets back from Init
type Context struct {
	Name    string
	Logger  *slog.Logger
	Options Options
	Env     Environment

	// APIVersion is the Vulkan version the program runs with. Init skips the program when the
	// selected device does not support it.
	APIVersion common.APIVersion

	Instance       core1_0.Instance
	PhysicalDevice core1_0.PhysicalDevice
	Device         core1_0.Device
	// Device11 and Device12 are nil when the device does not run that core version
	Device11 core1_1.Device
	Device12 core1_2.Device

	DeviceProperties *core1_0.PhysicalDeviceProperties
	// Features and Features12 are what the device offers. Features12 is nil below Vulkan 1.2.
	Features      *core1_0.PhysicalDeviceFeatures
	Features12    *core1_2.PhysicalDeviceVulkan12Features
	Features13    *vkext.Vulkan13Features
	// Benchmarking is what the benchmarking instance extension asked for, nil when it is not enabled
	Benchmarking  *tracehelpers.Benchmarking
	QueueFamilies []*core1_0.QueueFamilyProperties

	InstanceExtensions []string
	DeviceExtensions   []string
	// AvailableDeviceExtensions lists every extension the device offers, sorted
	AvailableDeviceExtensions []string

	// DebugUtils is nil unless VK_EXT_debug_utils is enabled on the instance
	DebugUtils ext_debug_utils.Extension
	Helpers    tracehelpers.Helpers
	Bench      *bench.Benchmark

	extensionData *vulkan.ExtensionData
	memory        *vulkan.DeviceMemoryProperties

	allocationLock sync.Mutex
	allocations    *swiss.Map[driver.VkDeviceMemory, *allocation]

	loader         *core.VulkanLoader
	messenger      ext_debug_utils.DebugUtilsMessenger
	sharedInstance bool
	done           bool
}

// Init parses the command line and creates the instance and device the program asked for.
// args excludes the program name.
func Init(args []string, testname string, reqs *Requirements) (*Context, error) {
	reqs.setDefaults()

	env, err := LoadEnvironment()
	if err != nil {
		return nil, err
	}

	options, err := parseCommandLine(args, testname, reqs, env, os.Stdout, os.Stderr)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Name:        testname,
		Logger:      NewLogger(options.Debug),
		Options:     options,
		Env:         env,
		allocations: swiss.NewMap[driver.VkDeviceMemory, *allocation](16),
	}

	err = ctx.init(reqs)
	if err != nil {
		ctx.release()
		return nil, err
	}

	return ctx, nil
}

func (c *Context) init(reqs *Requirements) error {
	err := c.createInstance(reqs)
	if err != nil {
		return err
	}

	err = c.selectPhysicalDevice(reqs)
	if err != nil {
		return err
	}

	err = c.createDevice(reqs)
	if err != nil {
		return err
	}

	c.Bench, err = bench.New(c.Logger, c.Name, renderingBackend, bench.ConfigFromEnv())
	return err
}

func (c *Context) createInstance(reqs *Requirements) error {
	if reqs.Instance != nil {
		c.Instance = reqs.Instance
		c.sharedInstance = true
		if c.Instance.IsInstanceExtensionActive(ext_debug_utils.ExtensionName) {
			c.InstanceExtensions = append(c.InstanceExtensions, ext_debug_utils.ExtensionName)
		}
		return nil
	}

	loader, err := c.systemLoader()
	if err != nil {
		return err
	}

	available, res, err := loader.AvailableExtensions()
	if err := Check(res, err); err != nil {
		return err
	}

	autoExtensions := []string{
		ext_debug_utils.ExtensionName,
		tracehelpers.BenchmarkingExtensionName,
		khr_portability_enumeration.ExtensionName,
	}
	enabled, missing := selectExtensions(newNameSet(available), autoExtensions, reqs.InstanceExtensions, nil)
	if len(missing) > 0 {
		fmt.Println("Missing required instance extensions:")
		for _, name := range missing {
			fmt.Printf("\t%s\n", name)
		}
		return missingExtensionsError("instance", missing)
	}

	if c.Env.Winsys == "headless" {
		for _, name := range []string{surfaceExtensionName, headlessSurfaceExtensionName} {
			if !slices.Contains(enabled, name) {
				enabled = append(enabled, name)
			}
		}
	}
	c.InstanceExtensions = enabled

	var layers []string
	if c.Options.Validation {
		availableLayers, res, err := loader.AvailableLayers()
		if err := Check(res, err); err != nil {
			return err
		}
		if _, ok := availableLayers[validationLayerName]; !ok {
			fmt.Printf("Missing required layer: %s\n", validationLayerName)
			return Skip("validation layer %s is not available", validationLayerName)
		}
		layers = append(layers, validationLayerName)
	}

	var flags core1_0.InstanceCreateFlags
	if c.hasInstanceExtension(khr_portability_enumeration.ExtensionName) {
		flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	createInfo := core1_0.InstanceCreateInfo{
		ApplicationName:       c.Name,
		ApplicationVersion:    common.CreateVersion(1, 0, 0),
		EngineName:            engineName,
		EngineVersion:         common.CreateVersion(1, 0, 0),
		APIVersion:            reqs.APIVersion,
		EnabledExtensionNames: enabled,
		EnabledLayerNames:     layers,
		Flags:                 flags,
	}

	useDebugUtils := c.hasInstanceExtension(ext_debug_utils.ExtensionName)
	messengerInfo := ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: debugMessageSeverity,
		MessageType:     debugMessageType,
		UserCallback:    messengerCallback(os.Stderr, c.Options.Debug),
	}
	if useDebugUtils {
		createInfo.NextOptions = common.NextOptions{Next: messengerInfo}
	}

	c.Instance, res, err = loader.CreateInstance(nil, createInfo)
	if err := Check(res, err); err != nil {
		return err
	}

	if useDebugUtils {
		c.DebugUtils = ext_debug_utils.CreateExtensionFromInstance(c.Instance)
		c.messenger, res, err = c.DebugUtils.CreateDebugUtilsMessenger(c.Instance, nil, messengerInfo)
		if err := Check(res, err); err != nil {
			return err
		}
	}

	return nil
}

func (c *Context) selectPhysicalDevice(reqs *Requirements) error {
	physicalDevices, res, err := c.Instance.EnumeratePhysicalDevices()
	if err := Check(res, err); err != nil {
		return err
	}
	if len(physicalDevices) == 0 {
		return errors.New("no physical devices found")
	}

	fmt.Printf("Found %d physical devices (selecting %d)!\n", len(physicalDevices), c.Options.GPU)
	for index, physicalDevice := range physicalDevices {
		properties, err := physicalDevice.Properties()
		if err != nil {
			return err
		}
		fmt.Printf("\t%d : %s (Vulkan %s)\n", index, properties.DriverName, VersionString(properties.APIVersion))
	}

	err = checkGPUIndex(c.Options.GPU, len(physicalDevices))
	if err != nil {
		fmt.Printf("Selected GPU %d does not exist!\n", c.Options.GPU)
		return err
	}
	c.PhysicalDevice = physicalDevices[c.Options.GPU]

	c.DeviceProperties, err = c.PhysicalDevice.Properties()
	if err != nil {
		return err
	}

	err = checkDeviceVersion(c.Options.GPU, c.DeviceProperties.APIVersion, reqs.APIVersion, reqs.MinAPIVersion)
	if err != nil {
		return err
	}
	c.APIVersion = reqs.APIVersion

	c.QueueFamilies = c.PhysicalDevice.QueueFamilyProperties()
	if len(c.QueueFamilies) == 0 {
		return Skip("selected GPU has no queue families")
	}

	err = checkQueueCount(c.QueueFamilies[0].QueueCount, reqs.Queues)
	if err != nil {
		return err
	}

	return checkBufferDeviceAddressVersion(reqs)
}

// featureQueryChain links the structures the features query fills in after PhysicalDeviceFeatures2
func featureQueryChain(use12, use13, useBenchmarking bool, features12 *core1_2.PhysicalDeviceVulkan12Features, features13 *vkext.Vulkan13Features, benchmarking *tracehelpers.Benchmarking) common.OutData {
	var chain common.OutData
	if useBenchmarking {
		chain = benchmarking
	}
	if use13 {
		features13.NextOutData = common.NextOutData{Next: chain}
		chain = features13
	}
	if use12 {
		features12.NextOutData = common.NextOutData{Next: chain}
		chain = features12
	}
	return chain
}

// enabledFeatures13 is what the program asked for, plus synchronization2 whenever the device offers it
func enabledFeatures13(reqs *Requirements, offered *vkext.Vulkan13Features) vkext.Vulkan13Features {
	var enabled vkext.Vulkan13Features
	if reqs.Features13 != nil {
		enabled.Merge(*reqs.Features13)
	}
	if offered != nil && offered.Synchronization2 {
		enabled.Synchronization2 = true
	}
	return enabled
}

func (c *Context) createDevice(reqs *Requirements) error {
	c.extensionData = vulkan.NewExtensionData(c.Instance, c.PhysicalDevice)
	if c.DebugUtils == nil && c.extensionData.DebugUtils != nil {
		c.DebugUtils = c.extensionData.DebugUtils
	}

	properties2 := c.extensionData.GetPhysicalDeviceProperties2
	use11 := c.APIVersion >= common.Vulkan1_1 && properties2 != nil
	use12 := use11 && c.APIVersion >= common.Vulkan1_2

	use13 := use12 && c.APIVersion >= Vulkan13
	useBenchmarking := c.hasInstanceExtension(tracehelpers.BenchmarkingExtensionName)

	var has deviceFeatures
	if use11 {
		var features12 core1_2.PhysicalDeviceVulkan12Features
		var features13 vkext.Vulkan13Features
		var benchmarking tracehelpers.Benchmarking
		features2 := core1_1.PhysicalDeviceFeatures2{
			NextOutData: common.NextOutData{Next: featureQueryChain(use12, use13, useBenchmarking, &features12, &features13, &benchmarking)},
		}

		err := properties2.Features2(&features2)
		if err != nil {
			return err
		}

		c.Features = &features2.Features
		if use12 {
			c.Features12 = &features12
		}
		if use13 {
			c.Features13 = &features13
		}
		if useBenchmarking {
			c.Benchmarking = &benchmarking
			benchmarking.Report(os.Stdout)
		}
		has.BufferDeviceAddress = features12.BufferDeviceAddress
		has.TimelineSemaphore = features12.TimelineSemaphore
		has.Features13 = features13

		var deviceProperties2 core1_1.PhysicalDeviceProperties2
		err = properties2.Properties2(&deviceProperties2)
		if err != nil {
			return err
		}
		c.DeviceProperties = &deviceProperties2.Properties
	} else {
		c.Features = c.PhysicalDevice.Features()
	}
	has.SamplerAnisotropy = c.Features.SamplerAnisotropy

	missingFeatureNames := missingFeatures(reqs, has)
	if len(missingFeatureNames) > 0 {
		return Skip("Required device features are missing: %s", strings.Join(missingFeatureNames, ", "))
	}

	availableExtensions, res, err := c.PhysicalDevice.EnumerateDeviceExtensionProperties()
	if err := Check(res, err); err != nil {
		return err
	}

	autoExtensions := append([]string{}, tracehelpers.AutoEnabledDeviceExtensions...)
	autoExtensions = append(autoExtensions, tracehelpers.FrameEndExtensionName)
	optionalExtensions := append([]string{}, reqs.OptionalDeviceExtensions...)
	optionalExtensions = append(optionalExtensions, khr_portability_subset.ExtensionName)

	enabled, missing := selectExtensions(newNameSet(availableExtensions), autoExtensions, reqs.DeviceExtensions, optionalExtensions)
	if len(enabled) > 0 {
		fmt.Println("Required device extensions:")
		for _, name := range enabled {
			fmt.Printf("\t%s\n", name)
		}
	}
	if len(missing) > 0 {
		fmt.Println("Missing required device extensions:")
		for _, name := range missing {
			fmt.Printf("\t%s\n", name)
		}
		return missingExtensionsError("device", missing)
	}
	c.DeviceExtensions = enabled
	c.AvailableDeviceExtensions = maps.Keys(availableExtensions)
	slices.Sort(c.AvailableDeviceExtensions)

	var enabledFeatures core1_0.PhysicalDeviceFeatures
	if reqs.Features != nil {
		enabledFeatures = *reqs.Features
	}
	enabledFeatures.SamplerAnisotropy = enabledFeatures.SamplerAnisotropy || reqs.SamplerAnisotropy

	createInfo := core1_0.DeviceCreateInfo{
		QueueCreateInfos: []core1_0.DeviceQueueCreateInfo{
			{
				QueueFamilyIndex: 0,
				QueuePriorities:  queuePriorities(reqs.Queues),
			},
		},
		EnabledExtensionNames: enabled,
	}

	if use11 {
		next := reqs.ExtensionFeatures
		enabled13 := enabledFeatures13(reqs, c.Features13)
		if use13 && enabled13.Any() {
			enabled13.NextOptions = common.NextOptions{Next: next}
			next = enabled13
		}
		if use12 && (reqs.BufferDeviceAddress || reqs.TimelineSemaphore) {
			next = core1_2.PhysicalDeviceVulkan12Features{
				BufferDeviceAddress: reqs.BufferDeviceAddress,
				TimelineSemaphore:   reqs.TimelineSemaphore,
				NextOptions:         common.NextOptions{Next: next},
			}
		}

		createInfo.NextOptions = common.NextOptions{Next: core1_1.PhysicalDeviceFeatures2{
			Features:    enabledFeatures,
			NextOptions: common.NextOptions{Next: next},
		}}
	} else {
		createInfo.EnabledFeatures = &enabledFeatures
		createInfo.NextOptions = common.NextOptions{Next: reqs.ExtensionFeatures}
	}

	c.Device, res, err = c.PhysicalDevice.CreateDevice(nil, createInfo)
	if err := Check(res, err); err != nil {
		return err
	}
	c.SetName(core1_0.ObjectTypeDevice, driver.VulkanHandle(c.Device.Handle()), "Our device")

	c.extensionData.AttachDevice(c.Device)
	c.Device11 = c.extensionData.Device11
	c.Device12 = c.extensionData.Device12

	memoryProperties := c.PhysicalDevice.MemoryProperties()
	if use11 {
		var memoryProperties2 core1_1.PhysicalDeviceMemoryProperties2
		err = properties2.MemoryProperties2(&memoryProperties2)
		if err != nil {
			return err
		}
		memoryProperties = &memoryProperties2.MemoryProperties
	}

	c.memory, err = vulkan.NewDeviceMemoryProperties(true, c.Device, c.extensionData, c.DeviceProperties, memoryProperties)
	if err != nil {
		return err
	}

	c.Helpers = tracehelpers.Load(c.Device, c.DeviceExtensions)
	if c.DebugUtils != nil {
		c.Logger.Info("Debug utils enabled")
	}

	return nil
}

func (c *Context) systemLoader() (*core.VulkanLoader, error) {
	if c.loader != nil {
		return c.loader, nil
	}

	loader, err := core.CreateSystemLoader()
	if err != nil {
		return nil, errors.Wrap(err, "could not load the Vulkan loader")
	}
	c.loader = loader
	return loader, nil
}

func (c *Context) hasInstanceExtension(name string) bool {
	for _, enabled := range c.InstanceExtensions {
		if enabled == name {
			return true
		}
	}
	return false
}

// HasDeviceExtension reports whether the named extension was enabled on the device
func (c *Context) HasDeviceExtension(name string) bool {
	for _, enabled := range c.DeviceExtensions {
		if enabled == name {
			return true
		}
	}
	return false
}

// Queue returns queue index of queue family 0
func (c *Context) Queue(index int) core1_0.Queue {
	return c.Device.GetQueue(0, index)
}

// Repeats is the number of times a program should repeat its main loop
func (c *Context) Repeats() int {
	return c.Env.Times
}

func (c *Context) IsSanity() bool {
	return c.Env.Sanity
}

func (c *Context) IsDebug() bool {
	return c.Options.Debug > 0
}

// Done waits for the device to go idle, destroys everything Init created and writes the
// benchmarking results. An instance passed in through Requirements.Instance is left alive.
func (c *Context) Done() error {
	if c.done {
		return nil
	}

	var err error
	if c.Device != nil {
		err = Check(c.Device.WaitIdle())
	}

	c.release()

	if c.Bench != nil {
		err = errors.CombineErrors(err, c.Bench.Done())
	}

	return err
}

func (c *Context) release() {
	c.done = true

	c.allocationLock.Lock()
	c.allocations.Iter(func(handle driver.VkDeviceMemory, alloc *allocation) bool {
		c.Logger.Warn("device memory was not freed before Done", slog.Int("size", alloc.memory.Size()))
		c.releaseAllocation(alloc)
		return false
	})
	c.allocations = swiss.NewMap[driver.VkDeviceMemory, *allocation](16)
	c.allocationLock.Unlock()

	if c.Device != nil {
		c.Device.Destroy(nil)
		c.Device = nil
	}

	if c.messenger != nil {
		c.messenger.Destroy(nil)
		c.messenger = nil
	}

	if c.Instance != nil && !c.sharedInstance {
		c.Instance.Destroy(nil)
	}
	c.Instance = nil
}
