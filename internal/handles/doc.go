// Package handles provides the handle tables behind the in-memory host's
// local, global and weak references.
//
// A Table maps small integer handles to values. Handle 0 is never issued, so
// it can stand for null. Freed slots are reused from a free list:
//
//	t := handles.New[*object]()
//	h, _ := t.Insert(obj)
//	v, ok := t.Get(h)
//	t.Remove(h)
//
// Tables are safe for concurrent use. Handles are not generation-checked; a
// handle used after Remove may name a later value that reused the slot, which
// is the same discipline the host applies to its own reference tables.
package handles
