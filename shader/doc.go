// Package shader reflects compiled WGSL shaders into the binding
// declarations consumed by the reserve package.
//
// Reflection runs on the gogpu/naga front end: the WGSL source is parsed,
// lowered to naga IR and every module-scope variable carrying a
// @group/@binding attribute becomes a ReflectedVariable:
//
//	results, err := shader.ReflectWGSL("sky.wgsl", source)
//	if err != nil {
//		return err
//	}
//	for _, r := range results {
//		fmt.Println(r.Stage, r.EntryPoint, len(r.Variables))
//	}
//
// One CompilationResult is produced per entry point.
package shader
