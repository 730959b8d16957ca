package featuredetect

const (
	spirvHeaderWords = 5

	opMemoryModel = 14
	opCapability  = 17
)

type capabilityFeature struct {
	scope Scope
	name  string
}

// SPIR-V capability to the feature that enables it
var capabilityFeatures = map[uint32]capabilityFeature{
	9:    {Core12, "shaderFloat16"},
	10:   {Core10, "shaderFloat64"},
	11:   {Core10, "shaderInt64"},
	22:   {Core10, "shaderInt16"},
	25:   {Core10, "shaderImageGatherExtended"},
	28:   {Core10, "shaderUniformBufferArrayDynamicIndexing"},
	29:   {Core10, "shaderSampledImageArrayDynamicIndexing"},
	30:   {Core10, "shaderStorageBufferArrayDynamicIndexing"},
	31:   {Core10, "shaderStorageImageArrayDynamicIndexing"},
	32:   {Core10, "shaderClipDistance"},
	33:   {Core10, "shaderCullDistance"},
	34:   {Core10, "imageCubeArray"},
	39:   {Core12, "shaderInt8"},
	41:   {Core10, "shaderResourceResidency"},
	42:   {Core10, "shaderResourceMinLod"},
	45:   {Core10, "imageCubeArray"},
	69:   {Core12, "shaderOutputLayer"},
	70:   {Core12, "shaderOutputViewportIndex"},
	4427: {Core11, "shaderDrawParameters"},
	4433: {Core11, "storageBuffer16BitAccess"},
	4434: {Core11, "uniformAndStorageBuffer16BitAccess"},
	4435: {Core11, "storagePushConstant16"},
	4436: {Core11, "storageInputOutput16"},
	4441: {Core11, "variablePointersStorageBuffer"},
	4442: {Core11, "variablePointers"},
	4448: {Core12, "storageBuffer8BitAccess"},
	4449: {Core12, "uniformAndStorageBuffer8BitAccess"},
	4450: {Core12, "storagePushConstant8"},
	5302: {Core12, "runtimeDescriptorArray"},
	5303: {Core12, "shaderInputAttachmentArrayDynamicIndexing"},
	5304: {Core12, "shaderUniformTexelBufferArrayDynamicIndexing"},
	5305: {Core12, "shaderStorageTexelBufferArrayDynamicIndexing"},
	5306: {Core12, "shaderUniformBufferArrayNonUniformIndexing"},
	5307: {Core12, "shaderSampledImageArrayNonUniformIndexing"},
	5308: {Core12, "shaderStorageBufferArrayNonUniformIndexing"},
	5309: {Core12, "shaderStorageImageArrayNonUniformIndexing"},
	5310: {Core12, "shaderInputAttachmentArrayNonUniformIndexing"},
	5311: {Core12, "shaderUniformTexelBufferArrayNonUniformIndexing"},
	5312: {Core12, "shaderStorageTexelBufferArrayNonUniformIndexing"},
	5345: {Core12, "vulkanMemoryModel"},
	5346: {Core12, "vulkanMemoryModelDeviceScope"},
	5379: {Core13, "shaderDemoteToHelperInvocation"},
	6016: {Core13, "shaderIntegerDotProduct"},
	6017: {Core13, "shaderIntegerDotProduct"},
	6018: {Core13, "shaderIntegerDotProduct"},
	6019: {Core13, "shaderIntegerDotProduct"},
}

// scanCapabilities walks the module's leading OpCapability instructions. Capabilities must
// precede OpMemoryModel, so the walk stops there.
func (d *Detector) scanCapabilities(code []uint32) {
	for i := spirvHeaderWords; i < len(code); {
		opcode := code[i] & 0xffff
		wordCount := int(code[i] >> 16)
		if opcode == opMemoryModel || wordCount == 0 {
			return
		}

		if opcode == opCapability && i+1 < len(code) {
			if feature, ok := capabilityFeatures[code[i+1]]; ok {
				d.Use(feature.scope, feature.name)
			}
		}
		i += wordCount
	}
}
