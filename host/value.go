package host

import "github.com/tetratelabs/wazero/api"

// Value is one argument or result slot on the wire. Primitive kinds are
// encoded as WebAssembly value bits (i32 for boolean through int, i64 for
// long, f32 and f64 for the floating kinds); objects store the Ref.
type Value uint64

func BooleanValue(b bool) Value {
	if b {
		return Value(api.EncodeU32(1))
	}
	return 0
}

func ByteValue(v int8) Value     { return Value(api.EncodeI32(int32(v))) }
func CharValue(v uint16) Value   { return Value(api.EncodeU32(uint32(v))) }
func ShortValue(v int16) Value   { return Value(api.EncodeI32(int32(v))) }
func IntValue(v int32) Value     { return Value(api.EncodeI32(v)) }
func LongValue(v int64) Value    { return Value(api.EncodeI64(v)) }
func FloatValue(v float32) Value { return Value(api.EncodeF32(v)) }
func DoubleValue(v float64) Value {
	return Value(api.EncodeF64(v))
}
func RefValue(r Ref) Value { return Value(api.EncodeExternref(uintptr(r))) }

func (v Value) Bool() bool       { return api.DecodeU32(uint64(v)) != 0 }
func (v Value) Byte() int8       { return int8(api.DecodeI32(uint64(v))) }
func (v Value) Char() uint16     { return uint16(api.DecodeU32(uint64(v))) }
func (v Value) Short() int16     { return int16(api.DecodeI32(uint64(v))) }
func (v Value) Int() int32       { return api.DecodeI32(uint64(v)) }
func (v Value) Long() int64      { return int64(v) }
func (v Value) Float() float32   { return api.DecodeF32(uint64(v)) }
func (v Value) Double() float64  { return api.DecodeF64(uint64(v)) }
func (v Value) Ref() Ref         { return Ref(api.DecodeExternref(uint64(v))) }
func (v Value) Boolean() Boolean {
	if v.Bool() {
		return True
	}
	return False
}

// Normalize masks v to the width of kind k so that two values of the same
// kind compare equal with ==.
func (v Value) Normalize(k Kind) Value {
	switch k {
	case KindBoolean:
		return BooleanValue(v.Bool())
	case KindByte:
		return ByteValue(v.Byte())
	case KindChar:
		return CharValue(v.Char())
	case KindShort:
		return ShortValue(v.Short())
	case KindInt:
		return IntValue(v.Int())
	case KindFloat:
		return FloatValue(v.Float())
	case KindVoid:
		return 0
	default:
		return v
	}
}
