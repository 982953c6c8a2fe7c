package reserve

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/gogpu/bindkit"
	"github.com/gogpu/bindkit/gpucore"
	"github.com/gogpu/bindkit/shader"
)

// BindlessSetStart is the first set index laid out as an indexed binding
// table. Lower sets become direct binding groups.
const BindlessSetStart = 3

// IsIndexedSet reports whether set is laid out as a binding table.
func IsIndexedSet(set uint32) bool {
	return set >= BindlessSetStart
}

// StageVariables is the list of variables one shader stage declares in a
// set.
type StageVariables struct {
	Stage     gpucore.ShaderStage
	Variables []gpucore.BindGroupVariable
}

// OwnedLayout is the layout of one set: a debug label plus at most one
// variable list per stage.
type OwnedLayout struct {
	Label  string
	Stages []StageVariables
}

func newOwnedLayout(set uint32) *OwnedLayout {
	kind := "bind group"
	if IsIndexedSet(set) {
		kind = "bind table"
	}
	return &OwnedLayout{Label: fmt.Sprintf("reserved %s set %d", kind, set)}
}

// add appends v to the list of stage, creating the list on first use.
func (l *OwnedLayout) add(stage gpucore.ShaderStage, v gpucore.BindGroupVariable) {
	for i := range l.Stages {
		if l.Stages[i].Stage == stage {
			l.Stages[i].Variables = append(l.Stages[i].Variables, v)
			return
		}
	}
	l.Stages = append(l.Stages, StageVariables{Stage: stage, Variables: []gpucore.BindGroupVariable{v}})
}

// Stage returns the variables stage declares in this set.
func (l *OwnedLayout) Stage(stage gpucore.ShaderStage) ([]gpucore.BindGroupVariable, bool) {
	for _, s := range l.Stages {
		if s.Stage == stage {
			return s.Variables, true
		}
	}
	return nil, false
}

// Bindings returns the distinct variables of the layout across stages,
// ordered by binding index.
func (l *OwnedLayout) Bindings() []gpucore.BindGroupVariable {
	seen := make(map[uint32]gpucore.BindGroupVariable)
	for _, s := range l.Stages {
		for _, v := range s.Variables {
			if _, ok := seen[v.Binding]; !ok {
				seen[v.Binding] = v
			}
		}
	}
	out := make([]gpucore.BindGroupVariable, 0, len(seen))
	for _, b := range slices.Sorted(maps.Keys(seen)) {
		out = append(out, seen[b])
	}
	return out
}

func (l *OwnedLayout) shaders() []gpucore.ShaderInfo {
	out := make([]gpucore.ShaderInfo, len(l.Stages))
	for i, s := range l.Stages {
		out[i] = gpucore.ShaderInfo{Stage: s.Stage, Variables: slices.Clone(s.Variables)}
	}
	return out
}

// LayoutCollection holds the per-set layouts of a shader program. A set
// index lives in Direct when it is below BindlessSetStart and in Indexed
// otherwise, never in both.
type LayoutCollection struct {
	Direct  map[uint32]*OwnedLayout
	Indexed map[uint32]*OwnedLayout
}

// NewLayoutCollection returns an empty collection.
func NewLayoutCollection() *LayoutCollection {
	return &LayoutCollection{
		Direct:  make(map[uint32]*OwnedLayout),
		Indexed: make(map[uint32]*OwnedLayout),
	}
}

// BuildLayouts lays out the reserved variables of one stage. See
// LayoutCollection.Add.
func BuildLayouts(metadata []Metadata, results []ResolveResult, stage gpucore.ShaderStage) (*LayoutCollection, error) {
	lc := NewLayoutCollection()
	err := lc.Add(metadata, results, stage)
	return lc, err
}

// Add merges the reserved variables of one stage into the collection.
// Results with Exists false are skipped. Calling Add once per stage of a
// program builds multi-stage layouts: a stage already present in a set
// gets the new variables appended.
//
// A variable whose reflected kind differs from its catalog kind is still
// laid out with the reflected kind, and reported in the returned error as
// a *KindMismatchError. Builds tagged bindkitdebug panic instead.
func (lc *LayoutCollection) Add(metadata []Metadata, results []ResolveResult, stage gpucore.ShaderStage) error {
	kinds := make(map[string]gpucore.BindingType, len(metadata))
	for _, m := range metadata {
		kinds[m.Name] = m.Kind
	}

	var errs []error
	for _, r := range results {
		if !r.Exists {
			continue
		}
		declared, ok := kinds[r.Name]
		if !ok {
			continue
		}
		if declared != r.Binding.Type {
			err := &KindMismatchError{
				Name:      r.Name,
				Set:       r.Set,
				Binding:   r.Binding.Binding,
				Declared:  declared,
				Reflected: r.Binding.Type,
			}
			assertKind(err)
			errs = append(errs, err)
		}
		lc.insert(r.Set, stage, r.Binding)
	}
	return errors.Join(errs...)
}

// AddShader merges every resource variable of a compiled entry point,
// reserved or not. It lays out the full interface of a program, which is
// what the GPU objects bound at draw time need.
func (lc *LayoutCollection) AddShader(result shader.CompilationResult) {
	for _, v := range result.Variables {
		lc.insert(v.Set, result.Stage, v.Binding)
	}
}

func (lc *LayoutCollection) insert(set uint32, stage gpucore.ShaderStage, v gpucore.BindGroupVariable) {
	target := lc.Direct
	if IsIndexedSet(set) {
		target = lc.Indexed
	}
	l, ok := target[set]
	if !ok {
		l = newOwnedLayout(set)
		target[set] = l
	}
	l.add(stage, v)
	bindkit.Logger().Debug("reserve: layout variable",
		"set", set,
		"indexed", IsIndexedSet(set),
		"stage", stage,
		"binding", v.Binding)
}

// Layout returns the layout of set from whichever mapping holds it.
func (lc *LayoutCollection) Layout(set uint32) (*OwnedLayout, bool) {
	if IsIndexedSet(set) {
		l, ok := lc.Indexed[set]
		return l, ok
	}
	l, ok := lc.Direct[set]
	return l, ok
}

// BindGroupLayoutDesc returns the descriptor of a direct set.
func (lc *LayoutCollection) BindGroupLayoutDesc(set uint32) (gpucore.BindGroupLayoutDesc, bool) {
	l, ok := lc.Direct[set]
	if !ok {
		return gpucore.BindGroupLayoutDesc{}, false
	}
	return gpucore.BindGroupLayoutDesc{Label: l.Label, Shaders: l.shaders()}, true
}

// BindTableLayoutDesc returns the descriptor of an indexed set.
func (lc *LayoutCollection) BindTableLayoutDesc(set uint32) (gpucore.BindTableLayoutDesc, bool) {
	l, ok := lc.Indexed[set]
	if !ok {
		return gpucore.BindTableLayoutDesc{}, false
	}
	return gpucore.BindTableLayoutDesc{Label: l.Label, Shaders: l.shaders()}, true
}

// DirectSets returns the direct set indices in ascending order.
func (lc *LayoutCollection) DirectSets() []uint32 {
	return slices.Sorted(maps.Keys(lc.Direct))
}

// IndexedSets returns the indexed set indices in ascending order.
func (lc *LayoutCollection) IndexedSets() []uint32 {
	return slices.Sorted(maps.Keys(lc.Indexed))
}

// Sets returns every set index in ascending order.
func (lc *LayoutCollection) Sets() []uint32 {
	return append(lc.DirectSets(), lc.IndexedSets()...)
}

// Len returns the number of sets.
func (lc *LayoutCollection) Len() int {
	return len(lc.Direct) + len(lc.Indexed)
}
