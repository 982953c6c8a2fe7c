package recipe

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gogpu/bindkit"
	"github.com/gogpu/bindkit/gpucore"
)

// recipe holds the binding slots shared by both recipe kinds. R is what
// one slot holds once filled.
type recipe[R any] struct {
	set       uint32
	label     string
	bindings  []gpucore.BindGroupVariable
	values    map[uint32]R
	state     State
	destroyed bool
}

func newRecipe[R any](set uint32, label string, bindings []gpucore.BindGroupVariable) recipe[R] {
	sorted := slices.Clone(bindings)
	slices.SortStableFunc(sorted, func(a, b gpucore.BindGroupVariable) int {
		return cmp.Compare(a.Binding, b.Binding)
	})
	sorted = slices.CompactFunc(sorted, func(a, b gpucore.BindGroupVariable) bool {
		return a.Binding == b.Binding
	})
	for i := range sorted {
		sorted[i].Count = max(sorted[i].Count, 1)
	}
	r := recipe[R]{
		set:      set,
		label:    label,
		bindings: sorted,
		values:   make(map[uint32]R, len(sorted)),
	}
	r.refresh()
	return r
}

// Set returns the binding-set index of the recipe.
func (r *recipe[R]) Set() uint32 { return r.set }

// Label returns the debug label given to the GPU object.
func (r *recipe[R]) Label() string { return r.label }

// State returns the current state.
func (r *recipe[R]) State() State { return r.state }

// Bindings returns the required bindings in ascending binding order.
func (r *recipe[R]) Bindings() []gpucore.BindGroupVariable {
	return slices.Clone(r.bindings)
}

// Missing returns the binding indices that are still empty.
func (r *recipe[R]) Missing() []uint32 {
	var missing []uint32
	for _, v := range r.bindings {
		if _, ok := r.values[v.Binding]; !ok {
			missing = append(missing, v.Binding)
		}
	}
	return missing
}

// lookup returns the declared variable at binding, if the recipe can
// still be filled.
func (r *recipe[R]) lookup(binding uint32) (gpucore.BindGroupVariable, error) {
	switch {
	case r.destroyed:
		return gpucore.BindGroupVariable{}, ErrDestroyed
	case r.state == StateBuilt:
		return gpucore.BindGroupVariable{}, fmt.Errorf("%w: set %d", ErrAlreadyBuilt, r.set)
	}
	i, ok := slices.BinarySearchFunc(r.bindings, binding, func(v gpucore.BindGroupVariable, b uint32) int {
		return cmp.Compare(v.Binding, b)
	})
	if !ok {
		return gpucore.BindGroupVariable{}, fmt.Errorf("%w: set %d binding %d", ErrUnknownBinding, r.set, binding)
	}
	return r.bindings[i], nil
}

func (r *recipe[R]) put(binding uint32, v R) {
	r.values[binding] = v
	r.refresh()
}

func (r *recipe[R]) refresh() {
	if len(r.values) == len(r.bindings) {
		r.state = StateReady
	} else {
		r.state = StateIncomplete
	}
}

// checkCook reports why a recipe that is not Built cannot be cooked.
func (r *recipe[R]) checkCook() error {
	if r.destroyed {
		return ErrDestroyed
	}
	if r.state == StateIncomplete {
		return &MissingBindingsError{Set: r.set, Missing: r.Missing()}
	}
	return nil
}

func checkCompatible(set uint32, v gpucore.BindGroupVariable, res gpucore.ShaderResource) error {
	if !res.Compatible(v.Type) {
		return fmt.Errorf("%w: set %d binding %d expects %s", ErrIncompatibleResource, set, v.Binding, v.Type)
	}
	return nil
}

// BindGroupRecipe collects the resources of a direct set and turns them
// into a binding group once every slot is filled.
//
// BindGroupRecipe is not safe for concurrent use.
type BindGroupRecipe struct {
	recipe[gpucore.ShaderResource]
	layout gpucore.BindGroupLayoutID
	group  gpucore.BindGroupID
}

// NewBindGroupRecipe creates an empty recipe requiring one resource per
// binding. A recipe with no bindings starts Ready.
func NewBindGroupRecipe(set uint32, layout gpucore.BindGroupLayoutID, bindings []gpucore.BindGroupVariable) *BindGroupRecipe {
	return &BindGroupRecipe{
		recipe: newRecipe[gpucore.ShaderResource](set, fmt.Sprintf("recipe bind group set %d", set), bindings),
		layout: layout,
	}
}

// Layout returns the layout the group is created against.
func (r *BindGroupRecipe) Layout() gpucore.BindGroupLayoutID { return r.layout }

// Fill places res at binding. Filling a slot again replaces its resource.
func (r *BindGroupRecipe) Fill(binding uint32, res gpucore.ShaderResource) error {
	v, err := r.lookup(binding)
	if err != nil {
		return err
	}
	if err := checkCompatible(r.set, v, res); err != nil {
		return err
	}
	r.put(binding, res)
	return nil
}

// Cook creates the binding group. An Incomplete recipe yields a
// *MissingBindingsError; a Built recipe returns its existing group.
func (r *BindGroupRecipe) Cook(ctx gpucore.Context) (gpucore.BindGroupID, error) {
	if err := r.checkCook(); err != nil {
		return gpucore.InvalidID, err
	}
	if r.state == StateBuilt {
		return r.group, nil
	}

	desc := &gpucore.BindGroupDesc{
		Label:    r.label,
		Layout:   r.layout,
		Set:      r.set,
		Bindings: make([]gpucore.BindingInfo, 0, len(r.bindings)),
	}
	for _, v := range r.bindings {
		desc.Bindings = append(desc.Bindings, gpucore.BindingInfo{Resource: r.values[v.Binding], Binding: v.Binding})
	}
	id, err := ctx.CreateBindGroup(desc)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("recipe: cook set %d: %w", r.set, err)
	}
	r.group = id
	r.state = StateBuilt
	bindkit.Logger().Info("recipe: bind group built", "set", r.set, "bindings", len(desc.Bindings))
	return id, nil
}

// ID returns the binding group once the recipe is Built.
func (r *BindGroupRecipe) ID() (gpucore.BindGroupID, bool) {
	return r.group, r.state == StateBuilt && !r.destroyed
}

// Destroy releases the binding group, if built. The recipe cannot be used
// afterwards.
func (r *BindGroupRecipe) Destroy(ctx gpucore.Context) {
	if r.destroyed {
		return
	}
	if r.state == StateBuilt {
		ctx.DestroyBindGroup(r.group)
		r.group = gpucore.InvalidID
	}
	r.destroyed = true
}

// BindTableRecipe collects the resource arrays of an indexed set and
// turns them into a binding table once every slot is filled.
//
// BindTableRecipe is not safe for concurrent use.
type BindTableRecipe struct {
	recipe[[]gpucore.IndexedResource]
	layout gpucore.BindTableLayoutID
	table  gpucore.BindTableID
}

// NewBindTableRecipe creates an empty recipe requiring at least one
// resource per binding. A recipe with no bindings starts Ready.
func NewBindTableRecipe(set uint32, layout gpucore.BindTableLayoutID, bindings []gpucore.BindGroupVariable) *BindTableRecipe {
	return &BindTableRecipe{
		recipe: newRecipe[[]gpucore.IndexedResource](set, fmt.Sprintf("recipe bind table set %d", set), bindings),
		layout: layout,
	}
}

// Layout returns the layout the table is created against.
func (r *BindTableRecipe) Layout() gpucore.BindTableLayoutID { return r.layout }

// Fill places a single resource at slot 0 of binding.
func (r *BindTableRecipe) Fill(binding uint32, res gpucore.ShaderResource) error {
	return r.FillIndexed(binding, []gpucore.IndexedResource{{Resource: res, Slot: 0}})
}

// FillIndexed places resources at binding. Every slot must lie within the
// array count of the binding. Filling a binding again replaces its
// resources.
func (r *BindTableRecipe) FillIndexed(binding uint32, resources []gpucore.IndexedResource) error {
	v, err := r.lookup(binding)
	if err != nil {
		return err
	}
	if len(resources) == 0 {
		return fmt.Errorf("%w: set %d binding %d", ErrEmptyBinding, r.set, binding)
	}
	for _, res := range resources {
		if res.Slot >= v.Count {
			return fmt.Errorf("%w: set %d binding %d slot %d, count %d",
				ErrSlotOutOfRange, r.set, binding, res.Slot, v.Count)
		}
		if err := checkCompatible(r.set, v, res.Resource); err != nil {
			return err
		}
	}
	r.put(binding, slices.Clone(resources))
	return nil
}

// Cook creates the binding table. An Incomplete recipe yields a
// *MissingBindingsError; a Built recipe returns its existing table.
func (r *BindTableRecipe) Cook(ctx gpucore.Context) (gpucore.BindTableID, error) {
	if err := r.checkCook(); err != nil {
		return gpucore.InvalidID, err
	}
	if r.state == StateBuilt {
		return r.table, nil
	}

	desc := &gpucore.BindTableDesc{
		Label:    r.label,
		Layout:   r.layout,
		Set:      r.set,
		Bindings: make([]gpucore.IndexedBindingInfo, 0, len(r.bindings)),
	}
	for _, v := range r.bindings {
		desc.Bindings = append(desc.Bindings, gpucore.IndexedBindingInfo{Resources: r.values[v.Binding], Binding: v.Binding})
	}
	id, err := ctx.CreateBindTable(desc)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("recipe: cook set %d: %w", r.set, err)
	}
	r.table = id
	r.state = StateBuilt
	bindkit.Logger().Info("recipe: bind table built", "set", r.set, "bindings", len(desc.Bindings))
	return id, nil
}

// ID returns the binding table once the recipe is Built.
func (r *BindTableRecipe) ID() (gpucore.BindTableID, bool) {
	return r.table, r.state == StateBuilt && !r.destroyed
}

// Destroy releases the binding table, if built. The recipe cannot be used
// afterwards.
func (r *BindTableRecipe) Destroy(ctx gpucore.Context) {
	if r.destroyed {
		return
	}
	if r.state == StateBuilt {
		ctx.DestroyBindTable(r.table)
		r.table = gpucore.InvalidID
	}
	r.destroyed = true
}
