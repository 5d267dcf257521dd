// Package collections marshals Go maps and deques as java/util
// collections.
//
// The traits are layered on the member accessors: elements are converted
// with their own traits, primitives are boxed through the java/lang box
// classes, and the host collection is built and walked with resolved
// java/util methods.
//
//	if err := collections.RegisterMap[string, int32](); err != nil {
//	    return err
//	}
//	m, err := marshal.ToNative[map[string]int32](env, w)
//
// Once registered, map[K]V and Deque[T] can be used as field, argument and
// result types of resolved members.
package collections
