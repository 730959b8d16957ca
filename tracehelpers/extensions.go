package tracehelpers

// Fake extensions understood by tracing layers and replayers. They are never implemented by a real
// driver, so every program must work without them.
const (
	ChecksumValidationExtensionName = "VK_TRACETOOLTEST_checksum_validation"
	ObjectPropertyExtensionName     = "VK_TRACETOOLTEST_object_property"
	BenchmarkingExtensionName       = "VK_TRACETOOLTEST_benchmarking"
	FrameEndExtensionName           = "VK_TRACETOOLTEST_frame_end"
	TraceHelpers2ExtensionName      = "VK_TRACETOOLTEST_trace_helpers2"

	ARMTraceHelpersExtensionName          = "VK_ARM_trace_helpers"
	ARMTraceDescriptorBufferExtensionName = "VK_ARM_trace_descriptor_buffer"
	ARMExplicitHostUpdatesExtensionName   = "VK_ARM_explicit_host_updates"
)

// MarkingType describes what a marked descriptor buffer offset points at
type MarkingType uint32

const (
	MarkingTypeDescriptorSize   MarkingType = 0x00000001
	MarkingTypeDescriptorOffset MarkingType = 0x00000002
	MarkingTypeDescriptor       MarkingType = 0x00000004
)

var markingTypeMapping = map[MarkingType]string{
	MarkingTypeDescriptorSize:   "MarkingTypeDescriptorSize",
	MarkingTypeDescriptorOffset: "MarkingTypeDescriptorOffset",
	MarkingTypeDescriptor:       "MarkingTypeDescriptor",
}

func (t MarkingType) String() string {
	str, ok := markingTypeMapping[t]
	if !ok {
		return "unknown MarkingType"
	}
	return str
}

// FlushOperationFlags are chained into a flush of mapped memory ranges
type FlushOperationFlags uint32

const (
	// FlushOperationInformative marks a flush that only tells the tool which ranges changed
	FlushOperationInformative FlushOperationFlags = 0x00000001
)

// UpdateMemoryFlags modify how UpdateMemoryInfo.Data is interpreted
type UpdateMemoryFlags uint32

const (
	// UpdateMemoryPatchFormat means Data is a patch stream, see EncodePatch
	UpdateMemoryPatchFormat UpdateMemoryFlags = 0x00000001
)

// ObjectProperty selects the value returned by Helpers.ObjectProperty
type ObjectProperty int32

const (
	ObjectPropertyAllocationsCount ObjectProperty = iota
	ObjectPropertyUpdatesCount
	ObjectPropertyUpdatesBytes
	ObjectPropertyBackingStore
	ObjectPropertyIndex
)

var objectPropertyMapping = map[ObjectProperty]string{
	ObjectPropertyAllocationsCount: "ObjectPropertyAllocationsCount",
	ObjectPropertyUpdatesCount:     "ObjectPropertyUpdatesCount",
	ObjectPropertyUpdatesBytes:     "ObjectPropertyUpdatesBytes",
	ObjectPropertyBackingStore:     "ObjectPropertyBackingStore",
	ObjectPropertyIndex:            "ObjectPropertyIndex",
}

func (p ObjectProperty) String() string {
	str, ok := objectPropertyMapping[p]
	if !ok {
		return "unknown ObjectProperty"
	}
	return str
}

// AutoEnabledDeviceExtensions are switched on whenever the device offers them
var AutoEnabledDeviceExtensions = []string{
	ChecksumValidationExtensionName,
	ObjectPropertyExtensionName,
}
