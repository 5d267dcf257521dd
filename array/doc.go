// Package array provides access to host arrays.
//
// Primitive arrays are read and written by region copy, converted whole
// to and from Go slices, or pinned as an element view:
//
//	elems, err := array.Pin[int32](env, arr, false)
//	elems.Data()[0] = 7
//	err = elems.Release() // copies back
//
// A view acquired as abortive discards changes on release; Commit copies
// the current view back while keeping it acquired. Every view is released
// exactly once.
//
// Object arrays are accessed per element. Each element read yields a new
// local reference owned by the caller.
package array
