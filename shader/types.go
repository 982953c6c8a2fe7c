package shader

import "github.com/gogpu/bindkit/gpucore"

// ReflectedVariable is one resource variable declared by a shader.
type ReflectedVariable struct {
	// Name is the variable name as written in the source.
	Name string

	// Set is the binding set (WGSL @group).
	Set uint32

	// Binding holds the kind, binding index and array count.
	Binding gpucore.BindGroupVariable
}

// CompilationResult describes one entry point of a compiled shader.
type CompilationResult struct {
	// Name identifies the shader program, typically its file name.
	Name string

	// File is the source path, empty when compiled from memory.
	File string

	Stage      gpucore.ShaderStage
	EntryPoint string

	// Variables lists the resource variables in declaration order.
	Variables []ReflectedVariable

	// Workgroup is the compute workgroup size; zero for other stages.
	Workgroup [3]uint32

	// SPIRV is the compiled module, shared by every entry point of the
	// same source. Nil when only reflection was requested.
	SPIRV []uint32
}

// ByStage returns the first result for stage.
func ByStage(results []CompilationResult, stage gpucore.ShaderStage) (CompilationResult, bool) {
	for _, r := range results {
		if r.Stage == stage {
			return r, true
		}
	}
	return CompilationResult{}, false
}
