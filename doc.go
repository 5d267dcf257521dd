// Package jni provides a typed Go layer over a JNI-style host runtime.
//
// A host runtime (a JVM or anything exposing the same native interface)
// hands native code an environment handle per attached thread. Through it
// native code resolves classes and members by name plus a textual type
// descriptor, reads and writes fields, calls methods, creates and pins
// arrays, and inspects pending exceptions. This module builds a statically
// typed layer over that interface.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	jni/                 Root package with the ClassNamer and Describer interfaces
//	├── host/            Host contract: Env, VM, handles, wire values
//	│   └── memhost/     In-memory host runtime for tests and tools
//	├── signature/       Type descriptors derived from Go types
//	├── ref/             Local, global and weak reference ownership
//	├── exception/       Guard for native entry points, pending-exception checks
//	├── marshal/         Per-type conversion between Go values and wire values
//	├── member/          Resolve-once field, method and constructor accessors
//	├── array/           Region copies, pinned element views, object arrays
//	├── collections/     Map and deque traits over java/util classes
//	├── runtime/         Native method registration
//	├── thread/          Thread attachment
//	├── config/          TOML configuration and logging setup
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Declare a host class and resolve its members once:
//
//	type Point host.Ref
//
//	func (Point) ClassName() string { return "pkg/Point" }
//
//	p, err := member.ResolveConstructor[Point, func(int32, int32)](env)
//	obj, err := p.New(env, 12, 34)
//	defer obj.Release()
//
//	x, err := member.ResolveField[Point, int32](env, "x")
//	v, err := x.Get(env, obj.Ref())
//
// Native entry points are wrapped by the exception bridge so that Go errors
// and panics surface as pending host exceptions:
//
//	runtime.Native("plus", func(env host.Env, this host.Ref, a, b int32) int32 {
//	    return a + b
//	})
//
// # Reference Ownership
//
// Local references belong to one call frame and are released exactly once.
// Global references are refcounted on the Go side and deleted from the host
// when the last holder releases them. Weak references must be locked into a
// local before use; the lock yields nil once the target has been collected.
package jni
