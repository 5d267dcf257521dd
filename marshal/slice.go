package marshal

import (
	"math"
	"reflect"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/signature"
)

type category uint8

const (
	bulk     category = iota // primitive elements, one region copy
	booleans                 // Go bool elements, converted one by one
	objects                  // one handle per element
)

var bufferTypes = [...]reflect.Type{
	host.KindBoolean: reflect.TypeFor[[]host.Boolean](),
	host.KindByte:    reflect.TypeFor[[]int8](),
	host.KindChar:    reflect.TypeFor[[]uint16](),
	host.KindShort:   reflect.TypeFor[[]int16](),
	host.KindInt:     reflect.TypeFor[[]int32](),
	host.KindLong:    reflect.TypeFor[[]int64](),
	host.KindFloat:   reflect.TypeFor[[]float32](),
	host.KindDouble:  reflect.TypeFor[[]float64](),
}

// BufferType returns the Go slice type the host uses for region copies of
// primitive arrays of kind k, or nil for non-primitive kinds.
func BufferType(k host.Kind) reflect.Type {
	if !k.IsPrimitive() {
		return nil
	}
	return bufferTypes[k]
}

type slice struct {
	t    reflect.Type
	desc signature.Descriptor
	elem Codec
	cat  category
	buf  reflect.Type
}

func newSlice(t reflect.Type, desc signature.Descriptor, elem Codec) *slice {
	s := &slice{t: t, desc: desc, elem: elem, cat: objects}
	if k := elem.Kind(); k.IsPrimitive() {
		s.buf = BufferType(k)
		s.cat = bulk
		if elem.Type().Kind() == reflect.Bool {
			s.cat = booleans
		}
	}
	return s
}

func (s *slice) Type() reflect.Type               { return s.t }
func (s *slice) Descriptor() signature.Descriptor { return s.desc }
func (s *slice) Kind() host.Kind                  { return host.KindObject }
func (s *slice) Temporary() bool                  { return true }

// Encode creates a new host array. A nil slice encodes as null.
func (s *slice) Encode(env host.Env, v reflect.Value) (host.Value, error) {
	if v.IsNil() {
		return 0, nil
	}
	n := v.Len()
	if n > math.MaxInt32 {
		return 0, errors.Overflow(errors.PhaseEncode, nil, n, string(s.desc))
	}

	var arr host.Ref
	var err error
	switch s.cat {
	case bulk, booleans:
		arr, err = s.encodePrimitive(env, v, int32(n))
	default:
		arr, err = s.encodeObjects(env, v, int32(n))
	}
	if err != nil {
		return 0, err
	}
	return host.RefValue(arr), nil
}

func (s *slice) encodePrimitive(env host.Env, v reflect.Value, n int32) (host.Ref, error) {
	arr := env.NewPrimitiveArray(s.elem.Kind(), n)
	if err := exception.Check(env); err != nil {
		return 0, err
	}

	buf := v
	switch {
	case s.cat == booleans:
		bs := make([]host.Boolean, n)
		for i := range bs {
			if v.Index(i).Bool() {
				bs[i] = host.True
			}
		}
		buf = reflect.ValueOf(bs)
	case v.Type() != s.buf:
		buf = reflect.MakeSlice(s.buf, int(n), int(n))
		wire := primitive{t: s.buf.Elem(), kind: s.elem.Kind()}
		for i := 0; i < int(n); i++ {
			w, err := s.elem.Encode(env, v.Index(i))
			if err != nil {
				env.DeleteLocalRef(arr)
				return 0, err
			}
			ev, _ := wire.Decode(env, w)
			buf.Index(i).Set(ev)
		}
	}

	env.SetArrayRegion(arr, 0, buf.Interface())
	if err := exception.Check(env); err != nil {
		env.DeleteLocalRef(arr)
		return 0, err
	}
	return arr, nil
}

func (s *slice) encodeObjects(env host.Env, v reflect.Value, n int32) (host.Ref, error) {
	class := env.FindClass(s.elem.Descriptor().ClassName())
	if err := exception.Check(env); err != nil {
		return 0, err
	}
	defer env.DeleteLocalRef(host.Ref(class))

	arr := host.Ref(env.NewObjectArray(n, class, 0))
	if err := exception.Check(env); err != nil {
		return 0, err
	}
	for i := 0; i < int(n); i++ {
		w, err := s.elem.Encode(env, v.Index(i))
		if err != nil {
			env.DeleteLocalRef(arr)
			return 0, err
		}
		env.SetObjectArrayElement(host.ObjectArray(arr), int32(i), w.Ref())
		Release(env, s.elem, w)
		if err := exception.Check(env); err != nil {
			env.DeleteLocalRef(arr)
			return 0, err
		}
	}
	return arr, nil
}

// Decode copies a host array into a new slice. Null decodes as nil.
func (s *slice) Decode(env host.Env, w host.Value) (reflect.Value, error) {
	arr := w.Ref()
	if arr == 0 {
		return reflect.Zero(s.t), nil
	}
	n := int(env.GetArrayLength(arr))
	if err := exception.Check(env); err != nil {
		return reflect.Value{}, err
	}

	out := reflect.MakeSlice(s.t, n, n)
	switch s.cat {
	case bulk:
		buf := out
		if s.t != s.buf {
			buf = reflect.MakeSlice(s.buf, n, n)
		}
		env.GetArrayRegion(arr, 0, buf.Interface())
		if err := exception.Check(env); err != nil {
			return reflect.Value{}, err
		}
		if s.t != s.buf {
			wire := primitive{t: s.buf.Elem(), kind: s.elem.Kind()}
			for i := 0; i < n; i++ {
				w, _ := wire.Encode(env, buf.Index(i))
				ev, err := s.elem.Decode(env, w)
				if err != nil {
					return reflect.Value{}, err
				}
				out.Index(i).Set(ev)
			}
		}
	case booleans:
		bs := make([]host.Boolean, n)
		env.GetArrayRegion(arr, 0, bs)
		if err := exception.Check(env); err != nil {
			return reflect.Value{}, err
		}
		for i, b := range bs {
			out.Index(i).SetBool(b != host.False)
		}
	default:
		for i := 0; i < n; i++ {
			h := env.GetObjectArrayElement(host.ObjectArray(arr), int32(i))
			if err := exception.Check(env); err != nil {
				return reflect.Value{}, err
			}
			ev, err := s.elem.Decode(env, host.RefValue(h))
			if s.elem.Temporary() && h != 0 {
				env.DeleteLocalRef(h)
			}
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
	}
	return out, nil
}
