package vkext

/*
#include <stdint.h>
#include <stdlib.h>

#define WRITE_DESCRIPTOR_SET 35

typedef struct DescriptorBufferInfo {
	uint64_t buffer;
	uint64_t offset;
	uint64_t range;
} DescriptorBufferInfo;

typedef struct WriteDescriptorSet {
	int32_t sType;
	const void* pNext;
	uint64_t dstSet;
	uint32_t dstBinding;
	uint32_t dstArrayElement;
	uint32_t descriptorCount;
	int32_t descriptorType;
	const void* pImageInfo;
	const DescriptorBufferInfo* pBufferInfo;
	const void* pTexelBufferView;
} WriteDescriptorSet;

typedef void (*PFN_cmdPushDescriptorSet)(void* commandBuffer, int32_t bindPoint, uint64_t layout, uint32_t set, uint32_t count, const WriteDescriptorSet* writes);

static void callCmdPushDescriptorSet(void* fn, void* commandBuffer, int32_t bindPoint, uint64_t layout, uint32_t set, uint32_t count, WriteDescriptorSet* writes) {
	for (uint32_t i = 0; i < count; i++) {
		writes[i].sType = WRITE_DESCRIPTOR_SET;
		writes[i].pNext = NULL;
	}
	((PFN_cmdPushDescriptorSet)fn)(commandBuffer, bindPoint, layout, set, count, writes);
}
*/
import "C"
import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/core1_0"
)

const (
	PushDescriptorExtensionName = "VK_KHR_push_descriptor"

	// DescriptorSetLayoutCreatePushDescriptor marks a descriptor set layout as pushed rather than allocated
	DescriptorSetLayoutCreatePushDescriptor core1_0.DescriptorSetLayoutCreateFlags = 0x1
)

// PushBufferWrite pushes buffer descriptors into one binding
type PushBufferWrite struct {
	Binding        int
	ArrayElement   int
	DescriptorType core1_0.DescriptorType
	Buffers        []core1_0.DescriptorBufferInfo
}

// PushDescriptor records vkCmdPushDescriptorSetKHR
type PushDescriptor struct {
	cmdPushDescriptorSet unsafe.Pointer
}

func LoadPushDescriptor(device core1_0.Device) (*PushDescriptor, error) {
	procs, err := loadProcs(device.Driver(), "vkCmdPushDescriptorSetKHR")
	if err != nil {
		return nil, err
	}
	return &PushDescriptor{cmdPushDescriptorSet: procs[0]}, nil
}

func (p *PushDescriptor) CmdPushDescriptorSet(commandBuffer core1_0.CommandBuffer, bindPoint core1_0.PipelineBindPoint, layout core1_0.PipelineLayout, set int, writes []PushBufferWrite) {
	if len(writes) == 0 {
		return
	}

	cWrites := (*C.WriteDescriptorSet)(C.calloc(C.size_t(len(writes)), C.size_t(unsafe.Sizeof(C.WriteDescriptorSet{}))))
	defer C.free(unsafe.Pointer(cWrites))
	cWriteSlice := unsafe.Slice(cWrites, len(writes))

	for i, write := range writes {
		cInfos := (*C.DescriptorBufferInfo)(C.calloc(C.size_t(len(write.Buffers)), C.size_t(unsafe.Sizeof(C.DescriptorBufferInfo{}))))
		defer C.free(unsafe.Pointer(cInfos))

		cInfoSlice := unsafe.Slice(cInfos, len(write.Buffers))
		for j, info := range write.Buffers {
			cInfoSlice[j].buffer = C.uint64_t(info.Buffer.Handle())
			cInfoSlice[j].offset = C.uint64_t(info.Offset)
			cInfoSlice[j]._range = C.uint64_t(info.Range)
		}

		cWriteSlice[i].dstBinding = C.uint32_t(write.Binding)
		cWriteSlice[i].dstArrayElement = C.uint32_t(write.ArrayElement)
		cWriteSlice[i].descriptorCount = C.uint32_t(len(write.Buffers))
		cWriteSlice[i].descriptorType = C.int32_t(write.DescriptorType)
		cWriteSlice[i].pBufferInfo = cInfos
	}

	C.callCmdPushDescriptorSet(p.cmdPushDescriptorSet, commandBufferHandle(commandBuffer), C.int32_t(bindPoint), C.uint64_t(layout.Handle()), C.uint32_t(set), C.uint32_t(len(writes)), cWrites)
}
