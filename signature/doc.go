// Package signature derives host type descriptors from Go types.
//
// A descriptor is the host's textual encoding of a type, used to resolve
// fields and methods by name plus shape:
//
//	bool                     Z
//	int8, uint8              B
//	uint16 (host.Char)       C
//	int16                    S
//	int32                    I
//	int64                    J
//	float32                  F
//	float64                  D
//	string                   Ljava/lang/String;
//	host.Ref                 Ljava/lang/Object;
//	T with ClassName()       L<name>;
//	[]T                      [ + descriptor of T
//	func(A, B) R             (AB)R, with no result mapping to V
//
// Descriptors are computed once per Go type and cached. Types outside the
// mapping fail with an unsupported error at derivation time; a descriptor that
// does not match the host's member fails later, at resolution, as not found.
package signature
