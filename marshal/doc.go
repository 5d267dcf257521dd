// Package marshal converts Go values to and from host wire values.
//
// Every Go type used in a field, parameter or result has a Trait: its host
// descriptor, its wire kind and a pair of conversions. Built-in traits
// cover:
//
//   - the primitive kinds and named types over them, plus Go int checked
//     against the host's 32-bit range;
//   - string (via the host's UTF-8 entry points) and UTF16 (code units as
//     the host stores them); a null host string decodes to "";
//   - handle types such as host.Ref, host.String or any uintptr type with a
//     ClassName method, passed through unchanged;
//   - slices, copied with one region call for primitive elements, element by
//     element for []bool, and one handle at a time for object elements.
//
// Register adds traits for other types. A trait may call back into the
// accessor layer; the collections package builds its Map and Deque traits
// that way.
//
// Object values produced by a temporary trait are local references the
// caller deletes after use; Release does that for a Codec.
package marshal
