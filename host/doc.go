// Package host defines the contract between Go code and a JNI-style host
// runtime.
//
// Env is the per-thread environment handle. It mirrors the host's native
// interface closely: failures inside the host are reported the way the host
// reports them, by returning a zero handle or value and leaving an exception
// pending. Callers query ExceptionCheck after each call; the exception package
// wraps that discipline.
//
// Handles are opaque uintptr values. Ref denotes any object. The named types
// String, Class, Throwable, ObjectArray and the primitive array types are
// distinct handle kinds over the same representation, so the type system keeps
// a String from being passed where a Class is expected. Converting between
// them is a plain Go conversion.
//
// Value is the host's tagged-union wire value. Primitives are stored in the
// low bits using the same encoding wazero uses for WebAssembly values; object
// values carry the Ref.
package host
