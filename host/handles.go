package host

// Ref is a handle to any host object. The zero Ref is null.
type Ref uintptr

// FieldID identifies a resolved field.
type FieldID uintptr

// MethodID identifies a resolved method or constructor.
type MethodID uintptr

// Boolean is the host's boolean element type. It is stored as one byte with
// 0 for false and 1 for true, which is why boolean arrays are not a bulk
// copy of Go bools.
type Boolean uint8

const (
	False Boolean = 0
	True  Boolean = 1
)

// Char is a UTF-16 code unit.
type Char = uint16

func (Ref) ClassName() string { return "java/lang/Object" }

// IsNull reports whether r is the null handle.
func (r Ref) IsNull() bool { return r == 0 }

// Typed handle kinds. All of them are object references.
type (
	String       Ref
	Class        Ref
	Throwable    Ref
	ObjectArray  Ref
	BooleanArray Ref
	ByteArray    Ref
	CharArray    Ref
	ShortArray   Ref
	IntArray     Ref
	LongArray    Ref
	FloatArray   Ref
	DoubleArray  Ref
)

func (String) ClassName() string    { return "java/lang/String" }
func (Class) ClassName() string     { return "java/lang/Class" }
func (Throwable) ClassName() string { return "java/lang/Throwable" }

func (ObjectArray) Descriptor() string  { return "[Ljava/lang/Object;" }
func (BooleanArray) Descriptor() string { return "[Z" }
func (ByteArray) Descriptor() string    { return "[B" }
func (CharArray) Descriptor() string    { return "[C" }
func (ShortArray) Descriptor() string   { return "[S" }
func (IntArray) Descriptor() string     { return "[I" }
func (LongArray) Descriptor() string    { return "[J" }
func (FloatArray) Descriptor() string   { return "[F" }
func (DoubleArray) Descriptor() string  { return "[D" }

// RefType is the validity class of a handle as reported by the host.
type RefType uint8

const (
	InvalidRef RefType = iota
	LocalRef
	GlobalRef
	WeakGlobalRef
)

func (t RefType) String() string {
	switch t {
	case LocalRef:
		return "local"
	case GlobalRef:
		return "global"
	case WeakGlobalRef:
		return "weak"
	default:
		return "invalid"
	}
}

// ReleaseMode selects what happens to a pinned array buffer on release.
type ReleaseMode uint8

const (
	// CopyBack copies the buffer into the array and frees it.
	CopyBack ReleaseMode = iota
	// Commit copies the buffer into the array and keeps it pinned.
	Commit
	// Abort frees the buffer without copying.
	Abort
)

func (m ReleaseMode) String() string {
	switch m {
	case CopyBack:
		return "copy-back"
	case Commit:
		return "commit"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}
