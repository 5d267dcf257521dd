// Package ref implements the reference ownership model.
//
// Three wrappers own host handles:
//
//   - Local owns a local reference of one environment and is released
//     exactly once, typically with defer. Scope and WithLocalFrame release
//     many locals at once.
//   - Global is a refcounted holder of a global reference. Clone adds a
//     holder, Release drops one, and the host reference is deleted when the
//     last holder releases it. Globals may be stored in package state and
//     shared between goroutines.
//   - Weak holds a weak global reference. Lock upgrades it to a Local, or
//     returns nil once the target has been collected.
//
// Every wrapper implements Handle, so any of them can build any other:
//
//	g, err := ref.NewGlobal(env, local)
//	w, err := ref.NewWeak(env, g)
//	if l := w.Lock(env); l != nil {
//		defer l.Release()
//	}
//
// Releasing twice or using a released reference is a programming error. It
// is logged by default and panics after SetChecks(true).
package ref
