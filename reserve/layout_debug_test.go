//go:build bindkitdebug

package reserve

import (
	"testing"

	"github.com/gogpu/bindkit/gpucore"
)

func TestBuildLayoutsKindMismatchPanics(t *testing.T) {
	defer func() {
		if _, ok := recover().(*KindMismatchError); !ok {
			t.Error("expected a *KindMismatchError panic")
		}
	}()
	results := []ResolveResult{{
		Name:    "u_time",
		Exists:  true,
		Binding: gpucore.BindGroupVariable{Type: gpucore.BindingTypeSampler},
	}}
	_, _ = BuildLayouts(exampleCatalog(), results, gpucore.ShaderStageFragment)
}
