package host

// Kind is the wire category of a value: void, one of the eight primitive
// kinds, or an object reference. Calls, field accesses and array operations
// are dispatched on it.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBoolean
	KindByte
	KindChar
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindObject
)

var kindNames = [...]string{
	KindVoid:    "void",
	KindBoolean: "boolean",
	KindByte:    "byte",
	KindChar:    "char",
	KindShort:   "short",
	KindInt:     "int",
	KindLong:    "long",
	KindFloat:   "float",
	KindDouble:  "double",
	KindObject:  "object",
}

var kindLetters = [...]byte{
	KindVoid:    'V',
	KindBoolean: 'Z',
	KindByte:    'B',
	KindChar:    'C',
	KindShort:   'S',
	KindInt:     'I',
	KindLong:    'J',
	KindFloat:   'F',
	KindDouble:  'D',
	KindObject:  'L',
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Letter returns the descriptor letter for primitive kinds and void.
// Objects return 'L'; arrays are also objects and use '[' in descriptors.
func (k Kind) Letter() byte {
	if int(k) < len(kindLetters) {
		return kindLetters[k]
	}
	return 0
}

// IsPrimitive reports whether k is one of the eight primitive kinds.
func (k Kind) IsPrimitive() bool {
	return k >= KindBoolean && k <= KindDouble
}

// KindOf returns the wire category of a field descriptor or, for a method
// descriptor, of its return type.
func KindOf(descriptor string) Kind {
	if len(descriptor) == 0 {
		return KindVoid
	}
	if descriptor[0] == '(' {
		for i := 1; i < len(descriptor); i++ {
			if descriptor[i] == ')' {
				return KindOf(descriptor[i+1:])
			}
		}
		return KindVoid
	}
	switch descriptor[0] {
	case 'Z':
		return KindBoolean
	case 'B':
		return KindByte
	case 'C':
		return KindChar
	case 'S':
		return KindShort
	case 'I':
		return KindInt
	case 'J':
		return KindLong
	case 'F':
		return KindFloat
	case 'D':
		return KindDouble
	case 'L', '[':
		return KindObject
	}
	return KindVoid
}
