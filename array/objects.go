package array

import (
	"math"

	jni "github.com/wippyai/go-jni"
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/ref"
)

// NewObjects creates an array of n null references whose element class is
// class.
func NewObjects(env host.Env, n int, class ref.Handle) (*ref.Local, error) {
	if n < 0 || n > math.MaxInt32 {
		return nil, errors.OutOfBounds(errors.PhaseArray, nil, n, math.MaxInt32)
	}
	arr := env.NewObjectArray(int32(n), host.Class(class.Ref()), 0)
	if err := exception.Check(env); err != nil {
		return nil, err
	}
	return ref.NewLocal(env, host.Ref(arr)), nil
}

// NewObjectsOf creates an array of n null references of the class named
// by T.
func NewObjectsOf[T jni.ClassNamer](env host.Env, n int) (*ref.Local, error) {
	var zero T
	c := env.FindClass(zero.ClassName())
	if err := exception.Check(env); err != nil {
		return nil, err
	}
	defer env.DeleteLocalRef(host.Ref(c))
	return NewObjects(env, n, ref.Raw(c))
}

// Get returns a new local reference to element i. The caller releases it.
func Get(env host.Env, arr ref.Handle, i int) (*ref.Local, error) {
	if err := checkStart(i); err != nil {
		return nil, err
	}
	r := env.GetObjectArrayElement(host.ObjectArray(arr.Ref()), int32(i))
	if err := exception.Check(env); err != nil {
		return nil, err
	}
	return ref.NewLocal(env, r), nil
}

// Set stores v, which may be nil, at index i.
func Set(env host.Env, arr ref.Handle, i int, v ref.Handle) error {
	if err := checkStart(i); err != nil {
		return err
	}
	var r host.Ref
	if v != nil {
		r = v.Ref()
	}
	env.SetObjectArrayElement(host.ObjectArray(arr.Ref()), int32(i), r)
	return exception.Check(env)
}

// GetRegionFunc calls fn for each element in [start, start+n). The local
// passed to fn is released when fn returns unless fn takes it.
func GetRegionFunc(env host.Env, arr ref.Handle, start, n int, fn func(i int, v *ref.Local) error) error {
	for i := start; i < start+n; i++ {
		v, err := Get(env, arr, i)
		if err != nil {
			return err
		}
		err = fn(i, v)
		v.Release()
		if err != nil {
			return err
		}
	}
	return nil
}

// SetRegionFunc stores the handles produced by fn at [start, start+n).
// Returned locals are released after they are stored.
func SetRegionFunc(env host.Env, arr ref.Handle, start, n int, fn func(i int) (*ref.Local, error)) error {
	for i := start; i < start+n; i++ {
		v, err := fn(i)
		if err != nil {
			return err
		}
		err = Set(env, arr, i, v)
		if v != nil {
			v.Release()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Objects is a shared handle to an object array with elements of type T.
type Objects[T ~uintptr] struct {
	g *ref.Global
}

// NewTyped creates an array of n null elements of the class named by T and
// holds it globally.
func NewTyped[T interface {
	~uintptr
	jni.ClassNamer
}](env host.Env, n int) (*Objects[T], error) {
	l, err := NewObjectsOf[T](env, n)
	if err != nil {
		return nil, err
	}
	defer l.Release()
	return Wrap[T](env, l)
}

// Wrap takes a global reference to an existing object array.
func Wrap[T ~uintptr](env host.Env, arr ref.Handle) (*Objects[T], error) {
	g, err := ref.NewGlobal(env, arr)
	if err != nil {
		return nil, err
	}
	return &Objects[T]{g: g}, nil
}

// Ref returns the array reference.
func (o *Objects[T]) Ref() host.Ref { return o.g.Ref() }

// Len returns the array length.
func (o *Objects[T]) Len(env host.Env) (int, error) { return Length(env, o.g) }

// At returns a new local reference to element i as T. The caller deletes
// it or wraps it with ref.NewLocal.
func (o *Objects[T]) At(env host.Env, i int) (T, error) {
	l, err := Get(env, o.g, i)
	if err != nil {
		return 0, err
	}
	return T(l.Take()), nil
}

// Put stores v at index i.
func (o *Objects[T]) Put(env host.Env, i int, v T) error {
	return Set(env, o.g, i, ref.Of(v))
}

// Release drops this holder's reference to the array.
func (o *Objects[T]) Release() { o.g.Release() }

// NewDirectBuffer wraps buf in a host direct byte buffer without copying.
func NewDirectBuffer(env host.Env, buf []byte) (*ref.Local, error) {
	r := env.NewDirectByteBuffer(buf)
	if err := exception.Check(env); err != nil {
		return nil, err
	}
	return ref.NewLocal(env, r), nil
}

// DirectBytes returns the memory behind a direct buffer. It is nil for
// buffers that are not direct.
func DirectBytes(env host.Env, buf ref.Handle) []byte {
	return env.GetDirectBufferAddress(buf.Ref())
}
