//go:build bindkitdebug

package reserve

// assertKind panics: catalog and shader disagree on a reserved binding.
func assertKind(err *KindMismatchError) {
	panic(err)
}
