// Package runtime binds Go functions as native methods of host classes.
//
// # Native Methods
//
// A native implementation is a Go function taking the environment and the
// receiver, followed by the method parameters:
//
//	plus := runtime.MustNative("plus", func(env host.Env, _ host.Class, a, b int32) int32 {
//	    return a + b
//	})
//	err := runtime.RegisterNatives[Main](env, plus)
//
// The descriptor is derived from the parameters after the receiver and the
// result. Arguments and results are converted with the marshal traits.
//
// # Failures
//
// Every binding runs under the exception guard. A returned error or a panic
// leaves a host exception pending and returns the zero value to the caller:
// errors carrying a host class hint are thrown as that class, allocation
// failures as java/lang/OutOfMemoryError, other errors as
// java/lang/RuntimeException and other panics as java/lang/Error.
//
// # Registries
//
// A Registry collects natives per class, from single functions or from all
// exported methods of a Host, and binds them in one pass:
//
//	reg := runtime.NewRegistry()
//	reg.RegisterHost(mainNatives{})
//	err := runtime.OnLoad(vm, reg)
package runtime
