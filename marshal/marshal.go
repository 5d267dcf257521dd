package marshal

import (
	"reflect"
	"sync"

	jni "github.com/wippyai/go-jni"
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/signature"
)

// Trait converts between a Go type and its wire value.
type Trait[T any] interface {
	// Descriptor returns the host type descriptor of T.
	Descriptor() signature.Descriptor
	// Kind returns the wire category of T.
	Kind() host.Kind
	// ToNative converts a wire value to T.
	ToNative(env host.Env, v host.Value) (T, error)
	// FromNative converts v to a wire value.
	FromNative(env host.Env, v T) (host.Value, error)
	// Temporary reports whether FromNative creates a local reference that
	// the caller releases after use, and whether an object handle passed to
	// ToNative stays owned by the caller.
	Temporary() bool
}

// Codec is the type-erased form of a Trait used by the accessors.
type Codec interface {
	Type() reflect.Type
	Descriptor() signature.Descriptor
	Kind() host.Kind
	Decode(env host.Env, v host.Value) (reflect.Value, error)
	Encode(env host.Env, v reflect.Value) (host.Value, error)
	Temporary() bool
}

var (
	registry    sync.Map // reflect.Type -> Codec
	booleanType = reflect.TypeFor[host.Boolean]()
	classNamer  = reflect.TypeFor[jni.ClassNamer]()
	describer   = reflect.TypeFor[jni.Describer]()
)

func init() {
	Register[UTF16](utf16Trait{})
	Register[int](intTrait{})
}

// Register installs tr as the trait of T and maps T to its descriptor in
// the default signature codec.
func Register[T any](tr Trait[T]) {
	t := reflect.TypeFor[T]()
	registry.Store(t, &traitCodec[T]{t: t, tr: tr})
	signature.Register(t, tr.Descriptor())
}

// TraitFor returns the trait of T.
func TraitFor[T any]() (Trait[T], error) {
	t := reflect.TypeFor[T]()
	c, err := Lookup(t)
	if err != nil {
		return nil, err
	}
	if tc, ok := c.(*traitCodec[T]); ok {
		return tc.tr, nil
	}
	return codecTrait[T]{c}, nil
}

// Lookup returns the codec of t.
func Lookup(t reflect.Type) (Codec, error) {
	if t == nil {
		return nil, errors.New(errors.PhaseSignature, errors.KindNullReference).
			Detail("Go type cannot be nil").
			Build()
	}
	if c, ok := registry.Load(t); ok {
		return c.(Codec), nil
	}
	c, err := derive(t)
	if err != nil {
		return nil, err
	}
	actual, _ := registry.LoadOrStore(t, c)
	return actual.(Codec), nil
}

func derive(t reflect.Type) (Codec, error) {
	desc, err := signature.Of(t)
	if err != nil {
		return nil, err
	}

	if t == booleanType {
		return primitive{t: t, desc: desc, kind: host.KindBoolean}, nil
	}
	if t.Kind() == reflect.Uintptr && (t.Implements(classNamer) || t.Implements(describer)) {
		return handle{t: t, desc: desc}, nil
	}

	switch t.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Uint8, reflect.Uint16, reflect.Int16,
		reflect.Int32, reflect.Int64, reflect.Float32, reflect.Float64:
		return primitive{t: t, desc: desc, kind: desc.Kind()}, nil
	case reflect.String:
		return str{t: t}, nil
	case reflect.Slice:
		elem, err := Lookup(t.Elem())
		if err != nil {
			return nil, err
		}
		return newSlice(t, desc, elem), nil
	}

	return nil, errors.New(errors.PhaseEncode, errors.KindUnsupported).
		GoType(t.String()).
		HostType(string(desc)).
		Detail("no trait for Go type").
		Build()
}

// FromNative converts v to a wire value with the trait of T.
func FromNative[T any](env host.Env, v T) (host.Value, error) {
	tr, err := TraitFor[T]()
	if err != nil {
		return 0, err
	}
	return tr.FromNative(env, v)
}

// ToNative converts a wire value to T with the trait of T.
func ToNative[T any](env host.Env, v host.Value) (T, error) {
	tr, err := TraitFor[T]()
	if err != nil {
		var zero T
		return zero, err
	}
	return tr.ToNative(env, v)
}

// Release deletes the local reference behind a wire value produced by a
// temporary codec.
func Release(env host.Env, c Codec, v host.Value) {
	if c.Kind() == host.KindObject && c.Temporary() && v.Ref() != 0 {
		env.DeleteLocalRef(v.Ref())
	}
}

type traitCodec[T any] struct {
	t  reflect.Type
	tr Trait[T]
}

func (c *traitCodec[T]) Type() reflect.Type               { return c.t }
func (c *traitCodec[T]) Descriptor() signature.Descriptor { return c.tr.Descriptor() }
func (c *traitCodec[T]) Kind() host.Kind                  { return c.tr.Kind() }
func (c *traitCodec[T]) Temporary() bool                  { return c.tr.Temporary() }

func (c *traitCodec[T]) Decode(env host.Env, v host.Value) (reflect.Value, error) {
	x, err := c.tr.ToNative(env, v)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(&x).Elem(), nil
}

func (c *traitCodec[T]) Encode(env host.Env, v reflect.Value) (host.Value, error) {
	x, ok := v.Interface().(T)
	if !ok {
		return 0, errors.TypeMismatch(errors.PhaseEncode, nil, v.Type().String(), string(c.tr.Descriptor()))
	}
	return c.tr.FromNative(env, x)
}

type codecTrait[T any] struct {
	c Codec
}

func (t codecTrait[T]) Descriptor() signature.Descriptor { return t.c.Descriptor() }
func (t codecTrait[T]) Kind() host.Kind                  { return t.c.Kind() }
func (t codecTrait[T]) Temporary() bool                  { return t.c.Temporary() }

func (t codecTrait[T]) ToNative(env host.Env, v host.Value) (T, error) {
	var zero T
	rv, err := t.c.Decode(env, v)
	if err != nil {
		return zero, err
	}
	return rv.Interface().(T), nil
}

func (t codecTrait[T]) FromNative(env host.Env, v T) (host.Value, error) {
	return t.c.Encode(env, reflect.ValueOf(&v).Elem())
}
