// Package reserve reconciles shader bindings with engine-reserved GPU
// resources.
//
// A Catalog names the resources an engine manages (per-frame timing, the
// main camera, a bindless camera pool). The Resolver matches the variables
// of a compiled shader against it, and the layout builder turns the
// matches into per-set layouts: sets below BindlessSetStart become direct
// bind groups, the others indexed bind tables.
//
// A Registry owns one live Resource per catalog entry:
//
//	reg, err := reserve.New(ctx, reserve.DirectCatalog())
//	if err != nil {
//		return err
//	}
//	defer reg.Destroy(ctx)
//
//	// once per frame
//	if err := reg.Update(ctx); err != nil {
//		log.Println(err)
//	}
//
// The GPU context is passed to every call that needs it; nothing in this
// package retains it.
package reserve

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/bindkit"
	"github.com/gogpu/bindkit/gpucore"
)

// factory creates the resource behind one reserved name.
type factory func(ctx gpucore.Context, o *options) (Resource, error)

// factories maps reserved names to their resource constructors.
var factories = map[string]factory{
	TimingName: func(ctx gpucore.Context, o *options) (Resource, error) {
		return NewTiming(ctx, o.clock)
	},
	CameraName: func(ctx gpucore.Context, _ *options) (Resource, error) {
		return NewCamera(ctx)
	},
	BindlessCameraName: func(ctx gpucore.Context, o *options) (Resource, error) {
		return NewBindlessCameras(ctx, o.poolConfig)
	},
}

// Supported reports whether the registry can create a resource for name.
func Supported(name string) bool {
	_, ok := factories[name]
	return ok
}

// Registry owns the reserved resources of one catalog.
//
// Registry is not safe for concurrent use.
type Registry struct {
	catalog   *Catalog
	resources []Resource
	byName    map[string]Resource
}

// New creates every resource of catalog. If any resource fails, those
// already created are destroyed and the error is returned.
func New(ctx gpucore.Context, catalog *Catalog, opts ...Option) (*Registry, error) {
	if catalog == nil {
		return nil, ErrNilCatalog
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		catalog:   catalog,
		resources: make([]Resource, 0, catalog.Len()),
		byName:    make(map[string]Resource, catalog.Len()),
	}
	for _, m := range catalog.entries {
		create, ok := factories[m.Name]
		if !ok {
			r.Destroy(ctx)
			return nil, fmt.Errorf("%w: %q", ErrUnknownReserved, m.Name)
		}
		res, err := create(ctx, &o)
		if err != nil {
			r.Destroy(ctx)
			return nil, fmt.Errorf("reserve: create %q: %w", m.Name, err)
		}
		r.resources = append(r.resources, res)
		r.byName[m.Name] = res
	}

	bindkit.Logger().Info("reserve: registry created",
		"variant", catalog.Variant(),
		"resources", len(r.resources))
	return r, nil
}

// Catalog returns the catalog the registry was built from.
func (r *Registry) Catalog() *Catalog { return r.catalog }

// Metadata returns the catalog entries.
func (r *Registry) Metadata() []Metadata { return r.catalog.Entries() }

// Binding returns the binding of the named resource. A missing name
// yields an error wrapping ErrNotFound.
func (r *Registry) Binding(name string) (ReservedBinding, error) {
	res, ok := r.byName[name]
	if !ok {
		return ReservedBinding{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return res.Binding(), nil
}

// Lookup returns the named resource.
func (r *Registry) Lookup(name string) (Resource, bool) {
	res, ok := r.byName[name]
	return res, ok
}

// Resources returns the resources in catalog order.
func (r *Registry) Resources() []Resource {
	return slices.Clone(r.resources)
}

// Timing returns the timing resource, if the catalog has one.
func (r *Registry) Timing() (*Timing, bool) {
	t, ok := r.byName[TimingName].(*Timing)
	return t, ok
}

// Camera returns the camera resource, if the catalog has one.
func (r *Registry) Camera() (*Camera, bool) {
	c, ok := r.byName[CameraName].(*Camera)
	return c, ok
}

// BindlessCameras returns the bindless camera pool, if the catalog has one.
func (r *Registry) BindlessCameras() (*BindlessCameras, bool) {
	b, ok := r.byName[BindlessCameraName].(*BindlessCameras)
	return b, ok
}

// Update refreshes every resource in catalog order. Resources do not
// depend on each other, so a failing resource does not stop the others;
// all failures are returned joined.
func (r *Registry) Update(ctx gpucore.Context) error {
	var errs []error
	for _, res := range r.resources {
		if err := res.Update(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Destroy releases every resource in reverse creation order. The
// registry is empty afterwards.
func (r *Registry) Destroy(ctx gpucore.Context) {
	for _, res := range slices.Backward(r.resources) {
		res.Destroy(ctx)
	}
	r.resources = nil
	clear(r.byName)
}
