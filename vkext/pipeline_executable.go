package vkext

/*
#include <stdint.h>
#include <stdlib.h>

#define PIPELINE_INFO 1000269001
#define PIPELINE_EXECUTABLE_PROPERTIES 1000269002
#define PIPELINE_EXECUTABLE_INFO 1000269003
#define PIPELINE_EXECUTABLE_STATISTIC 1000269004
#define PIPELINE_EXECUTABLE_INTERNAL_REPRESENTATION 1000269005

typedef struct PipelineInfo {
	int32_t sType;
	const void* pNext;
	uint64_t pipeline;
} PipelineInfo;

typedef struct PipelineExecutableInfo {
	int32_t sType;
	const void* pNext;
	uint64_t pipeline;
	uint32_t executableIndex;
} PipelineExecutableInfo;

typedef struct PipelineExecutableProperties {
	int32_t sType;
	void* pNext;
	uint32_t stages;
	char name[256];
	char description[256];
	uint32_t subgroupSize;
} PipelineExecutableProperties;

typedef struct PipelineExecutableStatistic {
	int32_t sType;
	void* pNext;
	char name[256];
	char description[256];
	int32_t format;
	uint64_t value;
} PipelineExecutableStatistic;

typedef struct PipelineExecutableInternalRepresentation {
	int32_t sType;
	void* pNext;
	char name[256];
	char description[256];
	uint32_t isText;
	size_t dataSize;
	void* pData;
} PipelineExecutableInternalRepresentation;

typedef int32_t (*PFN_getPipelineExecutableProperties)(void* device, const PipelineInfo* info, uint32_t* count, PipelineExecutableProperties* properties);
typedef int32_t (*PFN_getPipelineExecutableStatistics)(void* device, const PipelineExecutableInfo* info, uint32_t* count, PipelineExecutableStatistic* statistics);
typedef int32_t (*PFN_getPipelineExecutableInternalRepresentations)(void* device, const PipelineExecutableInfo* info, uint32_t* count, PipelineExecutableInternalRepresentation* representations);

static int32_t callGetPipelineExecutableProperties(void* fn, void* device, uint64_t pipeline, uint32_t* count, PipelineExecutableProperties* properties) {
	PipelineInfo info = { PIPELINE_INFO, NULL, pipeline };
	for (uint32_t i = 0; properties != NULL && i < *count; i++) {
		properties[i].sType = PIPELINE_EXECUTABLE_PROPERTIES;
		properties[i].pNext = NULL;
	}
	return ((PFN_getPipelineExecutableProperties)fn)(device, &info, count, properties);
}

static int32_t callGetPipelineExecutableStatistics(void* fn, void* device, uint64_t pipeline, uint32_t index, uint32_t* count, PipelineExecutableStatistic* statistics) {
	PipelineExecutableInfo info = { PIPELINE_EXECUTABLE_INFO, NULL, pipeline, index };
	for (uint32_t i = 0; statistics != NULL && i < *count; i++) {
		statistics[i].sType = PIPELINE_EXECUTABLE_STATISTIC;
		statistics[i].pNext = NULL;
	}
	return ((PFN_getPipelineExecutableStatistics)fn)(device, &info, count, statistics);
}

static int32_t callGetPipelineExecutableInternalRepresentations(void* fn, void* device, uint64_t pipeline, uint32_t index, uint32_t* count, PipelineExecutableInternalRepresentation* representations) {
	PipelineExecutableInfo info = { PIPELINE_EXECUTABLE_INFO, NULL, pipeline, index };
	for (uint32_t i = 0; representations != NULL && i < *count; i++) {
		representations[i].sType = PIPELINE_EXECUTABLE_INTERNAL_REPRESENTATION;
		representations[i].pNext = NULL;
		representations[i].dataSize = 0;
		representations[i].pData = NULL;
	}
	return ((PFN_getPipelineExecutableInternalRepresentations)fn)(device, &info, count, representations);
}
*/
import "C"
import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const (
	PipelineExecutablePropertiesExtensionName = "VK_KHR_pipeline_executable_properties"

	// StructureTypePipelineExecutablePropertiesFeatures chains a one-member BoolFeatures
	// enabling pipelineExecutableInfo
	StructureTypePipelineExecutablePropertiesFeatures int32 = 1000269000

	PipelineCreateCaptureStatistics              core1_0.PipelineCreateFlags = 0x40
	PipelineCreateCaptureInternalRepresentations core1_0.PipelineCreateFlags = 0x80
)

// PipelineExecutable names one compiled executable of a pipeline, or one statistic or internal
// representation of such an executable
type PipelineExecutable struct {
	Name        string
	Description string
}

// PipelineExecutableProperties calls the VK_KHR_pipeline_executable_properties entry points
type PipelineExecutableProperties struct {
	device unsafe.Pointer

	getProperties              unsafe.Pointer
	getStatistics              unsafe.Pointer
	getInternalRepresentations unsafe.Pointer
}

func LoadPipelineExecutableProperties(device core1_0.Device) (*PipelineExecutableProperties, error) {
	procs, err := loadProcs(device.Driver(),
		"vkGetPipelineExecutablePropertiesKHR",
		"vkGetPipelineExecutableStatisticsKHR",
		"vkGetPipelineExecutableInternalRepresentationsKHR",
	)
	if err != nil {
		return nil, err
	}

	return &PipelineExecutableProperties{
		device:                     deviceHandle(device),
		getProperties:              procs[0],
		getStatistics:              procs[1],
		getInternalRepresentations: procs[2],
	}, nil
}

func succeeded(res common.VkResult) bool {
	return res == core1_0.VKSuccess || res == core1_0.VKIncomplete
}

func (p *PipelineExecutableProperties) Executables(pipeline core1_0.Pipeline) ([]PipelineExecutable, common.VkResult) {
	handle := C.uint64_t(pipeline.Handle())

	var count C.uint32_t
	res := common.VkResult(C.callGetPipelineExecutableProperties(p.getProperties, p.device, handle, &count, nil))
	if !succeeded(res) || count == 0 {
		return nil, res
	}

	cProperties := (*C.PipelineExecutableProperties)(C.calloc(C.size_t(count), C.size_t(unsafe.Sizeof(C.PipelineExecutableProperties{}))))
	defer C.free(unsafe.Pointer(cProperties))

	res = common.VkResult(C.callGetPipelineExecutableProperties(p.getProperties, p.device, handle, &count, cProperties))
	if !succeeded(res) {
		return nil, res
	}

	executables := make([]PipelineExecutable, 0, int(count))
	for _, cProperty := range unsafe.Slice(cProperties, int(count)) {
		executables = append(executables, PipelineExecutable{
			Name:        C.GoString(&cProperty.name[0]),
			Description: C.GoString(&cProperty.description[0]),
		})
	}
	return executables, res
}

func (p *PipelineExecutableProperties) Statistics(pipeline core1_0.Pipeline, executable int) ([]PipelineExecutable, common.VkResult) {
	handle := C.uint64_t(pipeline.Handle())
	index := C.uint32_t(executable)

	var count C.uint32_t
	res := common.VkResult(C.callGetPipelineExecutableStatistics(p.getStatistics, p.device, handle, index, &count, nil))
	if !succeeded(res) || count == 0 {
		return nil, res
	}

	cStatistics := (*C.PipelineExecutableStatistic)(C.calloc(C.size_t(count), C.size_t(unsafe.Sizeof(C.PipelineExecutableStatistic{}))))
	defer C.free(unsafe.Pointer(cStatistics))

	res = common.VkResult(C.callGetPipelineExecutableStatistics(p.getStatistics, p.device, handle, index, &count, cStatistics))
	if !succeeded(res) {
		return nil, res
	}

	statistics := make([]PipelineExecutable, 0, int(count))
	for _, cStatistic := range unsafe.Slice(cStatistics, int(count)) {
		statistics = append(statistics, PipelineExecutable{
			Name:        C.GoString(&cStatistic.name[0]),
			Description: C.GoString(&cStatistic.description[0]),
		})
	}
	return statistics, res
}

// InternalRepresentations lists the representations without fetching their data
func (p *PipelineExecutableProperties) InternalRepresentations(pipeline core1_0.Pipeline, executable int) ([]PipelineExecutable, common.VkResult) {
	handle := C.uint64_t(pipeline.Handle())
	index := C.uint32_t(executable)

	var count C.uint32_t
	res := common.VkResult(C.callGetPipelineExecutableInternalRepresentations(p.getInternalRepresentations, p.device, handle, index, &count, nil))
	if !succeeded(res) || count == 0 {
		return nil, res
	}

	cRepresentations := (*C.PipelineExecutableInternalRepresentation)(C.calloc(C.size_t(count), C.size_t(unsafe.Sizeof(C.PipelineExecutableInternalRepresentation{}))))
	defer C.free(unsafe.Pointer(cRepresentations))

	res = common.VkResult(C.callGetPipelineExecutableInternalRepresentations(p.getInternalRepresentations, p.device, handle, index, &count, cRepresentations))
	if !succeeded(res) {
		return nil, res
	}

	representations := make([]PipelineExecutable, 0, int(count))
	for _, cRepresentation := range unsafe.Slice(cRepresentations, int(count)) {
		representations = append(representations, PipelineExecutable{
			Name:        C.GoString(&cRepresentation.name[0]),
			Description: C.GoString(&cRepresentation.description[0]),
		})
	}
	return representations, res
}
