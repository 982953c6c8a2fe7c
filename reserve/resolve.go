package reserve

import (
	"errors"

	"github.com/gogpu/bindkit/gpucore"
	"github.com/gogpu/bindkit/shader"
)

// ResolveResult annotates one shader variable. Binding and Set are zero
// unless Exists is true.
type ResolveResult struct {
	Name    string
	Exists  bool
	Binding gpucore.BindGroupVariable
	Set     uint32
}

// Resolve classifies every shader variable as reserved or not by exact,
// case-sensitive name match against metadata. The result has one entry per
// variable, in input order. Variables the engine does not manage are
// returned with Exists set to false.
func Resolve(metadata []Metadata, variables []shader.ReflectedVariable) []ResolveResult {
	names := make(map[string]struct{}, len(metadata))
	for _, m := range metadata {
		names[m.Name] = struct{}{}
	}

	results := make([]ResolveResult, len(variables))
	for i, v := range variables {
		if _, ok := names[v.Name]; !ok {
			results[i] = ResolveResult{Name: v.Name}
			continue
		}
		results[i] = ResolveResult{
			Name:    v.Name,
			Exists:  true,
			Binding: v.Binding,
			Set:     v.Set,
		}
	}
	return results
}

// Resolution is the resolve output for one compiled entry point.
type Resolution struct {
	Stage      gpucore.ShaderStage
	EntryPoint string
	Results    []ResolveResult
}

// Len returns the number of variables the entry point references.
func (r Resolution) Len() int { return len(r.Results) }

// Reserved returns how many of them are engine-reserved.
func (r Resolution) Reserved() int {
	n := 0
	for _, res := range r.Results {
		if res.Exists {
			n++
		}
	}
	return n
}

// Unreserved returns the names of variables the engine does not manage.
func (r Resolution) Unreserved() []string {
	var names []string
	for _, res := range r.Results {
		if !res.Exists {
			names = append(names, res.Name)
		}
	}
	return names
}

// Resolver resolves compiled shaders against one catalog.
type Resolver struct {
	catalog  *Catalog
	metadata []Metadata
}

// NewResolver returns a resolver for catalog.
func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{catalog: catalog, metadata: catalog.Entries()}
}

// Catalog returns the catalog the resolver matches against.
func (r *Resolver) Catalog() *Catalog { return r.catalog }

// Resolve classifies the variables of one compiled entry point.
func (r *Resolver) Resolve(result shader.CompilationResult) Resolution {
	return Resolution{
		Stage:      result.Stage,
		EntryPoint: result.EntryPoint,
		Results:    Resolve(r.metadata, result.Variables),
	}
}

// Layouts resolves every entry point and merges the reserved variables
// into one layout collection.
func (r *Resolver) Layouts(results ...shader.CompilationResult) (*LayoutCollection, error) {
	lc := NewLayoutCollection()
	var errs []error
	for _, res := range results {
		if err := lc.Add(r.metadata, r.Resolve(res).Results, res.Stage); err != nil {
			errs = append(errs, err)
		}
	}
	return lc, errors.Join(errs...)
}
