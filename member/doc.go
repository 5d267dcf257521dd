// Package member resolves host fields, methods and constructors once and
// accesses them with Go types.
//
// A member is resolved from its class, given as a handle type with a
// ClassName method, and its Go type, from which the descriptor is derived:
//
//	getX, err := member.ResolveMethod[Point, func() int32](env, "getX")
//	x, err := member.Returns[int32](getX.Call(env, p))
//
// Arguments are converted to the parameter types with overflow checks,
// temporaries created for them are released after the call, and a pending
// host exception is reported as exception.ErrPending. Object results of
// handle types are local references owned by the caller.
//
// Resolved members and the class references they hold are safe to share
// between goroutines; every call takes the environment of the calling
// thread.
package member
