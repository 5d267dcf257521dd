// Package memhost is an in-memory host runtime implementing host.VM and
// host.Env.
//
// It models the parts of a JVM that native code can observe through the
// native interface: a class hierarchy with fields, methods and virtual
// dispatch, a heap with local, global and weak references, a tracing
// collector, reentrant monitors, pending exceptions and native method
// binding. A small set of java/lang, java/util and java/nio classes is
// defined at startup; more are added with DefineClass.
//
//	vm := memhost.New(memhost.WithLogger(log))
//	vm.MustDefine(memhost.ClassSpec{
//		Name:   "pkg/Point",
//		Fields: []memhost.FieldSpec{{Name: "x", Descriptor: "I"}, {Name: "y", Descriptor: "I"}},
//	})
//	env, err := vm.AttachCurrentThread()
//
// Threads are identified by goroutine. Every method body runs in its own
// local frame; locals created inside it are dropped on return, except an
// object result which is handed to the caller as a new local.
//
// Array elements are never pinned in place: GetArrayElements always returns
// a copy, and the VM counts outstanding copies so tests can check that every
// acquisition was released.
package memhost
