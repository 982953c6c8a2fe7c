package shader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gogpu/bindkit"
	"github.com/gogpu/bindkit/gpucore"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// ReflectWGSL parses and lowers WGSL source and reflects every entry point.
func ReflectWGSL(name, source string) ([]CompilationResult, error) {
	module, err := lower(name, source)
	if err != nil {
		return nil, err
	}
	return ReflectModule(name, module)
}

func lower(name, source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("shader: %s: %w", name, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("shader: %s: %w", name, err)
	}
	return module, nil
}

// ReflectFile reads a WGSL file, reflects it and compiles it to SPIR-V.
func ReflectFile(path string) ([]CompilationResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader: %w", err)
	}
	results, err := Compile(filepath.Base(path), string(src))
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].File = path
	}
	return results, nil
}

// ReflectModule reflects an already lowered naga module.
func ReflectModule(name string, module *ir.Module) ([]CompilationResult, error) {
	if len(module.EntryPoints) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEntryPoints, name)
	}

	vars, err := resourceVariables(module)
	if err != nil {
		return nil, fmt.Errorf("shader: %s: %w", name, err)
	}

	results := make([]CompilationResult, 0, len(module.EntryPoints))
	for _, ep := range module.EntryPoints {
		stage, err := convertStage(ep.Stage)
		if err != nil {
			return nil, fmt.Errorf("shader: %s: entry point %q: %w", name, ep.Name, err)
		}
		r := CompilationResult{
			Name:       name,
			Stage:      stage,
			EntryPoint: ep.Name,
			Variables:  usedVariables(module, ep, vars),
		}
		if stage == gpucore.ShaderStageCompute {
			r.Workgroup = ep.Workgroup
		}
		results = append(results, r)
	}

	bindkit.Logger().Debug("shader: reflected",
		"name", name,
		"entryPoints", len(results),
		"variables", len(vars))
	return results, nil
}

func convertStage(s ir.ShaderStage) (gpucore.ShaderStage, error) {
	switch s {
	case ir.StageVertex:
		return gpucore.ShaderStageVertex, nil
	case ir.StageFragment:
		return gpucore.ShaderStageFragment, nil
	case ir.StageCompute:
		return gpucore.ShaderStageCompute, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedStage, s)
	}
}

// boundVariable is a reflected variable plus the module global it came
// from.
type boundVariable struct {
	global ir.GlobalVariableHandle
	ReflectedVariable
}

// resourceVariables collects the bound globals of a module in
// declaration order.
func resourceVariables(module *ir.Module) ([]boundVariable, error) {
	var vars []boundVariable
	for i, gv := range module.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		bt, count, err := bindingOf(module, gv)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", gv.Name, err)
		}
		if bt == gpucore.BindingTypeUndefined {
			continue
		}
		vars = append(vars, boundVariable{global: ir.GlobalVariableHandle(i), ReflectedVariable: ReflectedVariable{
			Name: gv.Name,
			Set:  gv.Binding.Group,
			Binding: gpucore.BindGroupVariable{
				Type:    bt,
				Binding: gv.Binding.Binding,
				Count:   count,
			},
		}})
	}
	return vars, nil
}

// usedVariables returns the variables the entry point references, directly
// or through the functions it calls. Hand-built modules without function
// bodies keep every variable.
func usedVariables(module *ir.Module, ep ir.EntryPoint, vars []boundVariable) []ReflectedVariable {
	var used map[ir.GlobalVariableHandle]bool
	if int(ep.Function) < len(module.Functions) {
		used = make(map[ir.GlobalVariableHandle]bool)
		collectGlobals(module, ep.Function, used, make(map[ir.FunctionHandle]bool))
	}
	out := make([]ReflectedVariable, 0, len(vars))
	for _, v := range vars {
		if used == nil || used[v.global] {
			out = append(out, v.ReflectedVariable)
		}
	}
	return out
}

func collectGlobals(module *ir.Module, fh ir.FunctionHandle, used map[ir.GlobalVariableHandle]bool, visited map[ir.FunctionHandle]bool) {
	if visited[fh] || int(fh) >= len(module.Functions) {
		return
	}
	visited[fh] = true
	fn := &module.Functions[fh]
	for _, e := range fn.Expressions {
		switch k := e.Kind.(type) {
		case ir.ExprGlobalVariable:
			used[k.Variable] = true
		case ir.ExprCallResult:
			collectGlobals(module, k.Function, used, visited)
		}
	}
	walkCalls(fn.Body, func(callee ir.FunctionHandle) {
		collectGlobals(module, callee, used, visited)
	})
}

// walkCalls visits every call statement in block, including nested ones.
func walkCalls(block []ir.Statement, visit func(ir.FunctionHandle)) {
	for _, st := range block {
		switch k := st.Kind.(type) {
		case ir.StmtCall:
			visit(k.Function)
		case ir.StmtBlock:
			walkCalls(k.Block, visit)
		case ir.StmtIf:
			walkCalls(k.Accept, visit)
			walkCalls(k.Reject, visit)
		case ir.StmtSwitch:
			for _, c := range k.Cases {
				walkCalls(c.Body, visit)
			}
		case ir.StmtLoop:
			walkCalls(k.Body, visit)
			walkCalls(k.Continuing, visit)
		}
	}
}

// bindingOf classifies a bound global. Buffers are classified by address
// space, handles by their (array element) type.
func bindingOf(module *ir.Module, gv ir.GlobalVariable) (gpucore.BindingType, uint32, error) {
	switch gv.Space {
	case ir.SpaceUniform:
		return gpucore.BindingTypeUniform, 1, nil
	case ir.SpaceStorage:
		return gpucore.BindingTypeStorage, 1, nil
	case ir.SpaceHandle:
	default:
		return gpucore.BindingTypeUndefined, 0, nil
	}

	inner := typeInner(module, gv.Type)
	count := uint32(1)
	if arr, ok := inner.(ir.ArrayType); ok {
		if arr.Size.Constant == nil {
			return gpucore.BindingTypeUndefined, 0, ErrRuntimeArray
		}
		count = *arr.Size.Constant
		inner = typeInner(module, arr.Base)
	}

	switch t := inner.(type) {
	case ir.SamplerType:
		return gpucore.BindingTypeSampler, count, nil
	case ir.ImageType:
		if t.Class == ir.ImageClassStorage {
			return gpucore.BindingTypeStorageImage, count, nil
		}
		return gpucore.BindingTypeSampledImage, count, nil
	}
	return gpucore.BindingTypeUndefined, 0, ErrUnsupportedType
}

func typeInner(module *ir.Module, h ir.TypeHandle) ir.TypeInner {
	if int(h) >= len(module.Types) {
		return nil
	}
	return module.Types[h].Inner
}
