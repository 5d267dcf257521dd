package array

import (
	"math"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/marshal"
	"github.com/wippyai/go-jni/ref"
)

// Primitive is the set of element types the host copies regions of.
type Primitive interface {
	host.Boolean | int8 | uint16 | int16 | int32 | int64 | float32 | float64
}

// KindOf returns the wire kind of the element type T.
func KindOf[T Primitive]() host.Kind {
	var zero T
	switch any(zero).(type) {
	case host.Boolean:
		return host.KindBoolean
	case int8:
		return host.KindByte
	case uint16:
		return host.KindChar
	case int16:
		return host.KindShort
	case int32:
		return host.KindInt
	case int64:
		return host.KindLong
	case float32:
		return host.KindFloat
	default:
		return host.KindDouble
	}
}

// New creates a primitive array of length n.
func New[T Primitive](env host.Env, n int) (*ref.Local, error) {
	if n < 0 || n > math.MaxInt32 {
		return nil, errors.OutOfBounds(errors.PhaseArray, nil, n, math.MaxInt32)
	}
	arr := env.NewPrimitiveArray(KindOf[T](), int32(n))
	if err := exception.Check(env); err != nil {
		return nil, err
	}
	return ref.NewLocal(env, arr), nil
}

// Length returns the length of an array.
func Length(env host.Env, arr ref.Handle) (int, error) {
	n := env.GetArrayLength(arr.Ref())
	if err := exception.Check(env); err != nil {
		return 0, err
	}
	return int(n), nil
}

// GetRegion copies len(buf) elements starting at start into buf.
func GetRegion[T Primitive](env host.Env, arr ref.Handle, start int, buf []T) error {
	if err := checkStart(start); err != nil {
		return err
	}
	env.GetArrayRegion(arr.Ref(), int32(start), buf)
	return exception.Check(env)
}

// SetRegion copies buf into the array starting at start.
func SetRegion[T Primitive](env host.Env, arr ref.Handle, start int, buf []T) error {
	if err := checkStart(start); err != nil {
		return err
	}
	env.SetArrayRegion(arr.Ref(), int32(start), buf)
	return exception.Check(env)
}

func checkStart(start int) error {
	if start < 0 || start > math.MaxInt32 {
		return errors.OutOfBounds(errors.PhaseArray, nil, start, math.MaxInt32)
	}
	return nil
}

// ToSlice copies a host array into a new slice using the trait of []T.
// Null yields nil.
func ToSlice[T any](env host.Env, arr ref.Handle) ([]T, error) {
	var r host.Ref
	if arr != nil {
		r = arr.Ref()
	}
	return marshal.ToNative[[]T](env, host.RefValue(r))
}

// FromSlice creates a host array holding a copy of s using the trait of
// []T. A nil slice yields a null reference.
func FromSlice[T any](env host.Env, s []T) (*ref.Local, error) {
	w, err := marshal.FromNative(env, s)
	if err != nil {
		return nil, err
	}
	return ref.NewLocal(env, w.Ref()), nil
}
