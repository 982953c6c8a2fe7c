package shader

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/spirv"
)

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(source string) ([]uint32, error) {
	code, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("shader: compile: %w", err)
	}
	return words(code), nil
}

// Compile reflects every entry point of source and attaches the SPIR-V
// module to each result.
func Compile(name, source string) ([]CompilationResult, error) {
	module, err := lower(name, source)
	if err != nil {
		return nil, err
	}
	results, err := ReflectModule(name, module)
	if err != nil {
		return nil, err
	}

	code, err := naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3})
	if err != nil {
		return nil, fmt.Errorf("shader: %s: %w", name, err)
	}
	w := words(code)
	for i := range results {
		results[i].SPIRV = w
	}
	return results, nil
}

// words converts little-endian SPIR-V bytes to 32-bit words.
func words(code []byte) []uint32 {
	out := make([]uint32, len(code)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return out
}
