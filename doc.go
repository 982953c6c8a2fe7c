// Package bindkit reconciles shader binding requirements with engine-managed
// GPU resources.
//
// # Overview
//
// A compiled shader declares binding variables (name, set, binding index,
// resource kind, array count). An engine owns a small, fixed catalog of
// "reserved" resources it refreshes every tick: frame timing, camera data and
// a bindless pool of per-camera transforms. bindkit matches the two, turns the
// matched variables into per-set layout descriptors and fills binding recipes
// with the engine's resources.
//
// # Quick Start
//
//	results, err := shader.ReflectWGSL("lit", source)
//	if err != nil {
//	    return err
//	}
//	registry, err := reserve.New(ctx, reserve.DirectCatalog())
//	if err != nil {
//	    return err
//	}
//	defer registry.Destroy(ctx)
//
//	// reserved variables only, per set
//	layouts, err := reserve.NewResolver(registry.Catalog()).Layouts(results...)
//
//	// every variable, with reserved slots already filled
//	book, err := recipe.NewBook(ctx, registry, results...)
//
// # Architecture
//
// The module is organized into:
//   - gpucore: the GPU context collaborator interface and binding descriptors
//   - backend/native, backend/software: gpucore.Context implementations
//   - shader: reflection of WGSL sources (via gogpu/naga)
//   - reserve: catalogs, resolver, layout builder, reserved resources, registry
//   - pool: growable slot pool backing bindless resource arrays
//   - camera: camera transforms written by the reserved camera resources
//   - recipe: Incomplete -> Ready -> Built binding recipes
//   - cmd/bindinspect: command-line report for a WGSL file
//
// # Threading
//
// Everything is single-threaded and synchronous. The GPU context is passed
// explicitly to every call that touches GPU memory; no component keeps a
// reference to it.
package bindkit

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
