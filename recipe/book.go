package recipe

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/gogpu/bindkit"
	"github.com/gogpu/bindkit/gpucore"
	"github.com/gogpu/bindkit/reserve"
	"github.com/gogpu/bindkit/shader"
)

// Book holds the layouts and recipes of one shader program.
//
// Book is not safe for concurrent use.
type Book struct {
	layouts      *reserve.LayoutCollection
	groupLayouts map[uint32]gpucore.BindGroupLayoutID
	tableLayouts map[uint32]gpucore.BindTableLayoutID
	groups       map[uint32]*BindGroupRecipe
	tables       map[uint32]*BindTableRecipe
}

// NewBook lays out every resource variable of the given entry points,
// creates a GPU layout and a recipe per set, and fills the slots of
// variables named after a resource of registry. A nil registry leaves
// every slot empty.
//
// A reserved variable that cannot take its resource (wrong kind, or an
// indexed resource in a direct set) fails the whole book; everything
// created so far is destroyed.
func NewBook(ctx gpucore.Context, registry *reserve.Registry, results ...shader.CompilationResult) (*Book, error) {
	lc := reserve.NewLayoutCollection()
	for _, r := range results {
		lc.AddShader(r)
	}

	b := &Book{
		layouts:      lc,
		groupLayouts: make(map[uint32]gpucore.BindGroupLayoutID, len(lc.Direct)),
		tableLayouts: make(map[uint32]gpucore.BindTableLayoutID, len(lc.Indexed)),
		groups:       make(map[uint32]*BindGroupRecipe, len(lc.Direct)),
		tables:       make(map[uint32]*BindTableRecipe, len(lc.Indexed)),
	}
	if err := b.createLayouts(ctx); err != nil {
		b.Destroy(ctx)
		return nil, err
	}

	filled := 0
	if registry != nil {
		n, err := b.prefill(registry, results)
		if err != nil {
			b.Destroy(ctx)
			return nil, err
		}
		filled = n
	}

	bindkit.Logger().Info("recipe: book created",
		"groups", len(b.groups),
		"tables", len(b.tables),
		"reserved", filled)
	return b, nil
}

func (b *Book) createLayouts(ctx gpucore.Context) error {
	for _, set := range b.layouts.DirectSets() {
		desc, _ := b.layouts.BindGroupLayoutDesc(set)
		id, err := ctx.CreateBindGroupLayout(&desc)
		if err != nil {
			return fmt.Errorf("recipe: layout for set %d: %w", set, err)
		}
		b.groupLayouts[set] = id
		b.groups[set] = NewBindGroupRecipe(set, id, b.layouts.Direct[set].Bindings())
	}
	for _, set := range b.layouts.IndexedSets() {
		desc, _ := b.layouts.BindTableLayoutDesc(set)
		id, err := ctx.CreateBindTableLayout(&desc)
		if err != nil {
			return fmt.Errorf("recipe: layout for set %d: %w", set, err)
		}
		b.tableLayouts[set] = id
		b.tables[set] = NewBindTableRecipe(set, id, b.layouts.Indexed[set].Bindings())
	}
	return nil
}

// prefill fills the slots of reserved variables and returns how many it
// filled. A variable declared by several stages is filled once.
func (b *Book) prefill(registry *reserve.Registry, results []shader.CompilationResult) (int, error) {
	type slot struct{ set, binding uint32 }
	seen := make(map[slot]bool)

	var errs []error
	for _, r := range results {
		for _, v := range r.Variables {
			res, ok := registry.Lookup(v.Name)
			if !ok {
				continue
			}
			key := slot{v.Set, v.Binding.Binding}
			if seen[key] {
				continue
			}
			seen[key] = true
			if err := b.fill(v, res.Binding()); err != nil {
				errs = append(errs, fmt.Errorf("recipe: reserved %q: %w", v.Name, err))
			}
		}
	}
	return len(seen) - len(errs), errors.Join(errs...)
}

func (b *Book) fill(v shader.ReflectedVariable, rb reserve.ReservedBinding) error {
	if info, ok := rb.Direct(); ok {
		if reserve.IsIndexedSet(v.Set) {
			return b.tables[v.Set].Fill(v.Binding.Binding, info.Resource)
		}
		return b.groups[v.Set].Fill(v.Binding.Binding, info.Resource)
	}

	info, _ := rb.Indexed()
	if !reserve.IsIndexedSet(v.Set) {
		return fmt.Errorf("%w: set %d", ErrIndexedInDirectSet, v.Set)
	}
	count := max(v.Binding.Count, 1)
	resources := slices.DeleteFunc(slices.Clone(info.Resources), func(r gpucore.IndexedResource) bool {
		return r.Slot >= count
	})
	if dropped := len(info.Resources) - len(resources); dropped > 0 {
		bindkit.Logger().Warn("recipe: shader array smaller than reserved resource",
			"name", v.Name,
			"set", v.Set,
			"count", count,
			"dropped", dropped)
	}
	return b.tables[v.Set].FillIndexed(v.Binding.Binding, resources)
}

// Layouts returns the layout collection the book was built from.
func (b *Book) Layouts() *reserve.LayoutCollection { return b.layouts }

// BindGroup returns the recipe of a direct set.
func (b *Book) BindGroup(set uint32) (*BindGroupRecipe, bool) {
	r, ok := b.groups[set]
	return r, ok
}

// BindTable returns the recipe of an indexed set.
func (b *Book) BindTable(set uint32) (*BindTableRecipe, bool) {
	r, ok := b.tables[set]
	return r, ok
}

// BindGroups returns the direct-set recipes ordered by set.
func (b *Book) BindGroups() []*BindGroupRecipe {
	out := make([]*BindGroupRecipe, 0, len(b.groups))
	for _, set := range slices.Sorted(maps.Keys(b.groups)) {
		out = append(out, b.groups[set])
	}
	return out
}

// BindTables returns the indexed-set recipes ordered by set.
func (b *Book) BindTables() []*BindTableRecipe {
	out := make([]*BindTableRecipe, 0, len(b.tables))
	for _, set := range slices.Sorted(maps.Keys(b.tables)) {
		out = append(out, b.tables[set])
	}
	return out
}

// BindGroupLayout returns the GPU layout of a direct set.
func (b *Book) BindGroupLayout(set uint32) (gpucore.BindGroupLayoutID, bool) {
	id, ok := b.groupLayouts[set]
	return id, ok
}

// BindTableLayout returns the GPU layout of an indexed set.
func (b *Book) BindTableLayout(set uint32) (gpucore.BindTableLayoutID, bool) {
	id, ok := b.tableLayouts[set]
	return id, ok
}

// Incomplete returns the sets whose recipes still have empty slots, in
// ascending order.
func (b *Book) Incomplete() []uint32 {
	var sets []uint32
	for _, r := range b.groups {
		if r.State() == StateIncomplete {
			sets = append(sets, r.Set())
		}
	}
	for _, r := range b.tables {
		if r.State() == StateIncomplete {
			sets = append(sets, r.Set())
		}
	}
	slices.Sort(sets)
	return sets
}

// CookAll cooks every recipe in set order. Recipes that fail do not stop
// the others; the failures are returned joined, each Incomplete recipe as
// a *MissingBindingsError.
func (b *Book) CookAll(ctx gpucore.Context) error {
	var errs []error
	for _, r := range b.BindGroups() {
		if _, err := r.Cook(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for _, r := range b.BindTables() {
		if _, err := r.Cook(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Destroy releases every bound object and layout of the book.
func (b *Book) Destroy(ctx gpucore.Context) {
	for _, r := range b.groups {
		r.Destroy(ctx)
	}
	for _, r := range b.tables {
		r.Destroy(ctx)
	}
	for _, id := range b.groupLayouts {
		ctx.DestroyBindGroupLayout(id)
	}
	for _, id := range b.tableLayouts {
		ctx.DestroyBindTableLayout(id)
	}
	clear(b.groups)
	clear(b.tables)
	clear(b.groupLayouts)
	clear(b.tableLayouts)
}
