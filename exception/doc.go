// Package exception bridges failures between Go and the host.
//
// Host to Go: after every host call, Check reports a pending host exception
// as ErrPending. ErrPending is returned unchanged up to the native entry
// point, where the guard leaves the host's exception in place. Catch turns
// a pending exception into a *HostError when Go code wants to handle it.
//
// Go to host: every native entry point runs inside Guard or GuardValue. A
// returned error or a panic becomes a pending host exception and the entry
// point returns its zero value:
//
//	func plus(env host.Env, this host.Ref, a, b int32) int32 {
//		return exception.GuardValue(env, func() (int32, error) {
//			return a + b, nil
//		})
//	}
//
// Errors map to java/lang/RuntimeException unless they name a host class
// through a HostException method; allocation failures map to
// java/lang/OutOfMemoryError and panics with non-error values to
// java/lang/Error.
package exception
