//go:build !bindkitdebug

package reserve

import "github.com/gogpu/bindkit"

func assertKind(err *KindMismatchError) {
	bindkit.Logger().Warn("reserve: reserved kind mismatch",
		"name", err.Name,
		"set", err.Set,
		"binding", err.Binding,
		"declared", err.Declared,
		"reflected", err.Reflected)
}
