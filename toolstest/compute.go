package toolstest

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const spirvMagic = 0x07230203

// ComputeWorkgroupSize is the local size of EmptyComputeShader in x and y
const ComputeWorkgroupSize = 32

// EmptyComputeShader is a SPIR-V 1.0 GLCompute module with a "main" entry point that returns
// immediately, local size 32x32x1
var EmptyComputeShader = []uint32{
	spirvMagic, 0x00010000, 0, 5, 0,
	// OpCapability Shader
	0x00020011, 1,
	// OpMemoryModel Logical GLSL450
	0x0003000e, 0, 1,
	// OpEntryPoint GLCompute %1 "main"
	0x0005000f, 5, 1, 0x6e69616d, 0,
	// OpExecutionMode %1 LocalSize 32 32 1
	0x00060010, 1, 17, ComputeWorkgroupSize, ComputeWorkgroupSize, 1,
	// %2 = OpTypeVoid, %3 = OpTypeFunction %2
	0x00020013, 2,
	0x00030021, 3, 2,
	// %1 = OpFunction %2 None %3, OpLabel %4, OpReturn, OpFunctionEnd
	0x00050036, 2, 1, 0, 3,
	0x000200f8, 4,
	0x000100fd,
	0x00010038,
}

// CheckSPIRV walks the instruction stream of a SPIR-V module and fails if the header is wrong
// or an instruction runs past the end of the code
func CheckSPIRV(code []uint32) error {
	if len(code) < 5 {
		return errors.Newf("SPIR-V module of %d words is shorter than its header", len(code))
	}
	if code[0] != spirvMagic {
		return errors.Newf("bad SPIR-V magic 0x%08x", code[0])
	}

	for position := 5; position < len(code); {
		words := int(code[position] >> 16)
		if words == 0 {
			return errors.Newf("SPIR-V instruction at word %d has zero length", position)
		}
		if position+words > len(code) {
			return errors.Newf("SPIR-V instruction at word %d needs %d words, %d remain", position, words, len(code)-position)
		}
		position += words
	}
	return nil
}

// CreateShaderModule checks code and creates a shader module from it
func (c *Context) CreateShaderModule(code []uint32) (core1_0.ShaderModule, error) {
	err := CheckSPIRV(code)
	if err != nil {
		return nil, err
	}

	module, _, err := c.Device.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating shader module")
	}
	return module, nil
}
