package marshal

import (
	"math"
	"reflect"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/signature"
)

// primitive handles the eight primitive kinds, including named types over
// them.
type primitive struct {
	t    reflect.Type
	desc signature.Descriptor
	kind host.Kind
}

func (p primitive) Type() reflect.Type               { return p.t }
func (p primitive) Descriptor() signature.Descriptor { return p.desc }
func (p primitive) Kind() host.Kind                  { return p.kind }
func (p primitive) Temporary() bool                  { return false }

func (p primitive) Encode(_ host.Env, v reflect.Value) (host.Value, error) {
	switch p.kind {
	case host.KindBoolean:
		if v.Kind() == reflect.Bool {
			return host.BooleanValue(v.Bool()), nil
		}
		return host.BooleanValue(v.Uint() != 0), nil
	case host.KindByte:
		if v.Kind() == reflect.Uint8 {
			return host.ByteValue(int8(uint8(v.Uint()))), nil
		}
		return host.ByteValue(int8(v.Int())), nil
	case host.KindChar:
		return host.CharValue(uint16(v.Uint())), nil
	case host.KindShort:
		return host.ShortValue(int16(v.Int())), nil
	case host.KindInt:
		return host.IntValue(int32(v.Int())), nil
	case host.KindLong:
		return host.LongValue(v.Int()), nil
	case host.KindFloat:
		return host.FloatValue(float32(v.Float())), nil
	case host.KindDouble:
		return host.DoubleValue(v.Float()), nil
	}
	return 0, errors.Unsupported(errors.PhaseEncode, "primitive kind "+p.kind.String())
}

func (p primitive) Decode(_ host.Env, w host.Value) (reflect.Value, error) {
	v := reflect.New(p.t).Elem()
	switch p.kind {
	case host.KindBoolean:
		if v.Kind() == reflect.Bool {
			v.SetBool(w.Bool())
		} else {
			v.SetUint(uint64(w.Boolean()))
		}
	case host.KindByte:
		if v.Kind() == reflect.Uint8 {
			v.SetUint(uint64(uint8(w.Byte())))
		} else {
			v.SetInt(int64(w.Byte()))
		}
	case host.KindChar:
		v.SetUint(uint64(w.Char()))
	case host.KindShort:
		v.SetInt(int64(w.Short()))
	case host.KindInt:
		v.SetInt(int64(w.Int()))
	case host.KindLong:
		v.SetInt(w.Long())
	case host.KindFloat:
		v.SetFloat(float64(w.Float()))
	case host.KindDouble:
		v.SetFloat(w.Double())
	default:
		return reflect.Value{}, errors.Unsupported(errors.PhaseDecode, "primitive kind "+p.kind.String())
	}
	return v, nil
}

// handle passes object handles through unchanged. A decoded handle is a
// local reference owned by the caller.
type handle struct {
	t    reflect.Type
	desc signature.Descriptor
}

func (h handle) Type() reflect.Type               { return h.t }
func (h handle) Descriptor() signature.Descriptor { return h.desc }
func (h handle) Kind() host.Kind                  { return host.KindObject }
func (h handle) Temporary() bool                  { return false }

func (h handle) Encode(_ host.Env, v reflect.Value) (host.Value, error) {
	return host.RefValue(host.Ref(v.Uint())), nil
}

func (h handle) Decode(_ host.Env, w host.Value) (reflect.Value, error) {
	v := reflect.New(h.t).Elem()
	v.SetUint(uint64(w.Ref()))
	return v, nil
}

// intTrait maps Go int to the host's 32-bit int, rejecting values that do
// not fit.
type intTrait struct{}

func (intTrait) Descriptor() signature.Descriptor { return signature.Int }
func (intTrait) Kind() host.Kind                  { return host.KindInt }
func (intTrait) Temporary() bool                  { return false }

func (intTrait) ToNative(_ host.Env, v host.Value) (int, error) {
	return int(v.Int()), nil
}

func (intTrait) FromNative(_ host.Env, v int) (host.Value, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, errors.Overflow(errors.PhaseEncode, nil, v, string(signature.Int))
	}
	return host.IntValue(int32(v)), nil
}

type refHandle interface {
	Ref() host.Ref
}

// Convert converts an argument to t. Numeric values convert between kinds
// when the value fits; values implementing Ref() host.Ref convert to any
// handle type; nil converts to the zero value of handles, slices and
// strings.
func Convert(v any, t reflect.Type, path ...string) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Uintptr, reflect.Slice, reflect.String, reflect.Interface, reflect.Pointer, reflect.Map:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, errors.TypeMismatch(errors.PhaseEncode, path, "nil", t.String())
	}

	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return rv, nil
	}
	if h, ok := v.(refHandle); ok && t.Kind() == reflect.Uintptr {
		out := reflect.New(t).Elem()
		out.SetUint(uint64(h.Ref()))
		return out, nil
	}

	if isNumeric(rv.Kind()) && isNumeric(t.Kind()) {
		return convertNumber(rv, t, path)
	}
	if rv.Kind() == t.Kind() && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, errors.TypeMismatch(errors.PhaseEncode, path, rv.Type().String(), t.String())
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func convertNumber(v reflect.Value, t reflect.Type, path []string) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	overflow := func(x any) (reflect.Value, error) {
		return reflect.Value{}, errors.Overflow(errors.PhaseEncode, path, x, t.String())
	}

	switch {
	case v.CanInt():
		x := v.Int()
		switch {
		case out.CanInt():
			if out.OverflowInt(x) {
				return overflow(x)
			}
			out.SetInt(x)
		case out.CanUint():
			if x < 0 || out.OverflowUint(uint64(x)) {
				return overflow(x)
			}
			out.SetUint(uint64(x))
		default:
			out.SetFloat(float64(x))
		}
	case v.CanUint():
		x := v.Uint()
		switch {
		case out.CanInt():
			if x > math.MaxInt64 || out.OverflowInt(int64(x)) {
				return overflow(x)
			}
			out.SetInt(int64(x))
		case out.CanUint():
			if out.OverflowUint(x) {
				return overflow(x)
			}
			out.SetUint(x)
		default:
			out.SetFloat(float64(x))
		}
	default:
		x := v.Float()
		switch {
		case out.CanFloat():
			if out.OverflowFloat(x) {
				return overflow(x)
			}
			out.SetFloat(x)
		case x != math.Trunc(x) || math.IsInf(x, 0):
			return reflect.Value{}, errors.TypeMismatch(errors.PhaseEncode, path, v.Type().String(), t.String())
		case out.CanInt():
			if x < math.MinInt64 || x >= math.MaxInt64 || out.OverflowInt(int64(x)) {
				return overflow(x)
			}
			out.SetInt(int64(x))
		default:
			if x < 0 || x >= math.MaxUint64 || out.OverflowUint(uint64(x)) {
				return overflow(x)
			}
			out.SetUint(uint64(x))
		}
	}
	return out, nil
}
