package member

import (
	"reflect"

	jni "github.com/wippyai/go-jni"
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/marshal"
	"github.com/wippyai/go-jni/ref"
	"github.com/wippyai/go-jni/signature"
)

// Field is a resolved instance field of class C holding a T.
type Field[C jni.ClassNamer, T any] struct {
	id    host.FieldID
	path  []string
	codec marshal.Codec
}

// ResolveField looks up the instance field name of C with the descriptor
// of T.
func ResolveField[C jni.ClassNamer, T any](env host.Env, name string) (*Field[C, T], error) {
	codec, class, path, err := fieldSetup[C, T](env, name)
	if err != nil {
		return nil, err
	}
	id := env.GetFieldID(host.Class(class.Ref()), name, string(codec.Descriptor()))
	if id == 0 || env.ExceptionCheck() {
		return nil, unresolved(env, "field", joinPath(path), string(codec.Descriptor()), "java/lang/NoSuchFieldError")
	}
	return &Field[C, T]{id: id, path: path, codec: codec}, nil
}

func fieldSetup[C jni.ClassNamer, T any](env host.Env, name string) (marshal.Codec, *ref.Global, []string, error) {
	var c C
	path := []string{c.ClassName(), name}
	codec, err := marshal.Lookup(reflect.TypeFor[T]())
	if err != nil {
		return nil, nil, nil, err
	}
	class, err := ClassOf[C](env)
	if err != nil {
		return nil, nil, nil, err
	}
	return codec, class, path, nil
}

func joinPath(path []string) string {
	return path[0] + "." + path[1]
}

// Name returns the field name.
func (f *Field[C, T]) Name() string { return f.path[1] }

// Descriptor returns the field descriptor.
func (f *Field[C, T]) Descriptor() signature.Descriptor { return f.codec.Descriptor() }

// ID returns the host field id.
func (f *Field[C, T]) ID() host.FieldID { return f.id }

// Get reads the field of obj.
func (f *Field[C, T]) Get(env host.Env, obj ref.Handle) (T, error) {
	var zero T
	r, err := receiver(obj, f.path, f.codec.Descriptor())
	if err != nil {
		return zero, err
	}
	w := env.GetField(r, f.id, f.codec.Kind())
	if err := exception.Check(env); err != nil {
		return zero, err
	}
	return decodeAs[T](env, f.codec, w)
}

// Set writes v to the field of obj.
func (f *Field[C, T]) Set(env host.Env, obj ref.Handle, v T) error {
	r, err := receiver(obj, f.path, f.codec.Descriptor())
	if err != nil {
		return err
	}
	w, err := f.codec.Encode(env, reflect.ValueOf(&v).Elem())
	if err != nil {
		return err
	}
	env.SetField(r, f.id, f.codec.Kind(), w)
	marshal.Release(env, f.codec, w)
	return exception.Check(env)
}

// StaticField is a resolved static field of class C holding a T.
type StaticField[C jni.ClassNamer, T any] struct {
	id    host.FieldID
	class *ref.Global
	path  []string
	codec marshal.Codec
}

// ResolveStaticField looks up the static field name of C with the
// descriptor of T.
func ResolveStaticField[C jni.ClassNamer, T any](env host.Env, name string) (*StaticField[C, T], error) {
	codec, class, path, err := fieldSetup[C, T](env, name)
	if err != nil {
		return nil, err
	}
	id := env.GetStaticFieldID(host.Class(class.Ref()), name, string(codec.Descriptor()))
	if id == 0 || env.ExceptionCheck() {
		return nil, unresolved(env, "static field", joinPath(path), string(codec.Descriptor()), "java/lang/NoSuchFieldError")
	}
	return &StaticField[C, T]{id: id, class: class, path: path, codec: codec}, nil
}

// Name returns the field name.
func (f *StaticField[C, T]) Name() string { return f.path[1] }

// Descriptor returns the field descriptor.
func (f *StaticField[C, T]) Descriptor() signature.Descriptor { return f.codec.Descriptor() }

// Get reads the field.
func (f *StaticField[C, T]) Get(env host.Env) (T, error) {
	var zero T
	w := env.GetStaticField(host.Class(f.class.Ref()), f.id, f.codec.Kind())
	if err := exception.Check(env); err != nil {
		return zero, err
	}
	return decodeAs[T](env, f.codec, w)
}

// Set writes v to the field.
func (f *StaticField[C, T]) Set(env host.Env, v T) error {
	w, err := f.codec.Encode(env, reflect.ValueOf(&v).Elem())
	if err != nil {
		return err
	}
	env.SetStaticField(host.Class(f.class.Ref()), f.id, f.codec.Kind(), w)
	marshal.Release(env, f.codec, w)
	return exception.Check(env)
}

func decodeAs[T any](env host.Env, c marshal.Codec, w host.Value) (T, error) {
	var zero T
	rv, err := decode(env, c, w)
	if err != nil {
		return zero, err
	}
	return rv.Interface().(T), nil
}

// receiver returns the handle of obj, failing for nil or null.
func receiver(obj ref.Handle, path []string, desc signature.Descriptor) (host.Ref, error) {
	if obj == nil || obj.Ref() == 0 {
		return 0, errors.NullReference(errors.PhaseCall, path, string(desc))
	}
	return obj.Ref(), nil
}
