package signature

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	jni "github.com/wippyai/go-jni"
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
)

// Descriptor is a field or method descriptor in the host's wire format.
type Descriptor string

const (
	Void    Descriptor = "V"
	Boolean Descriptor = "Z"
	Byte    Descriptor = "B"
	Char    Descriptor = "C"
	Short   Descriptor = "S"
	Int     Descriptor = "I"
	Long    Descriptor = "J"
	Float   Descriptor = "F"
	Double  Descriptor = "D"
	Object  Descriptor = "Ljava/lang/Object;"
	String  Descriptor = "Ljava/lang/String;"
)

func (d Descriptor) String() string { return string(d) }

// Kind returns the wire category of a field descriptor, or of the return
// type of a method descriptor.
func (d Descriptor) Kind() host.Kind { return host.KindOf(string(d)) }

// IsMethod reports whether d is a method descriptor.
func (d Descriptor) IsMethod() bool { return len(d) > 0 && d[0] == '(' }

// IsArray reports whether d is an array descriptor.
func (d Descriptor) IsArray() bool { return len(d) > 0 && d[0] == '[' }

// ClassName returns the name to pass to FindClass for an object or array
// descriptor: "Lpkg/Point;" yields "pkg/Point", array descriptors are
// returned unchanged. Other descriptors yield "".
func (d Descriptor) ClassName() string {
	switch {
	case d.IsArray():
		return string(d)
	case len(d) > 2 && d[0] == 'L' && d[len(d)-1] == ';':
		return string(d[1 : len(d)-1])
	}
	return ""
}

// Class returns the object descriptor for a class name in internal form.
// Array class names are already descriptors and are returned as is.
func Class(name string) Descriptor {
	if strings.HasPrefix(name, "[") {
		return Descriptor(name)
	}
	return Descriptor("L" + name + ";")
}

// Array returns the descriptor of an array of elem.
func Array(elem Descriptor) Descriptor {
	return "[" + elem
}

// Func returns the method descriptor with the given result and parameters.
// An empty result is treated as void.
func Func(ret Descriptor, params ...Descriptor) Descriptor {
	if ret == "" {
		ret = Void
	}
	n := len(ret) + 2
	for _, p := range params {
		n += len(p)
	}
	var b strings.Builder
	b.Grow(n)
	b.WriteByte('(')
	for _, p := range params {
		b.WriteString(string(p))
	}
	b.WriteByte(')')
	b.WriteString(string(ret))
	return Descriptor(b.String())
}

var (
	booleanType  = reflect.TypeOf(host.Boolean(0))
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	envType      = reflect.TypeOf((*host.Env)(nil)).Elem()
	classNamer   = reflect.TypeOf((*jni.ClassNamer)(nil)).Elem()
	describer    = reflect.TypeOf((*jni.Describer)(nil)).Elem()
	defaultCodec = NewCodec()
)

// Codec derives and caches descriptors.
type Codec struct {
	cache  sync.Map // reflect.Type -> Descriptor
	custom sync.Map // reflect.Type -> Descriptor
}

// NewCodec creates a codec with an empty cache.
func NewCodec() *Codec {
	return &Codec{}
}

// Default returns the process-wide codec used by the package functions.
func Default() *Codec {
	return defaultCodec
}

// Register maps a Go type to a fixed descriptor. Registered mappings take
// precedence over the built-in rules.
func (c *Codec) Register(t reflect.Type, d Descriptor) {
	c.custom.Store(t, d)
	c.cache.Delete(t)
}

// Of returns the descriptor of t.
func (c *Codec) Of(t reflect.Type) (Descriptor, error) {
	if t == nil {
		return "", errors.New(errors.PhaseSignature, errors.KindNullReference).
			Detail("Go type cannot be nil").
			Build()
	}
	if cached, ok := c.cache.Load(t); ok {
		return cached.(Descriptor), nil
	}

	d, err := c.derive(t, nil)
	if err != nil {
		return "", err
	}

	c.cache.Store(t, d)
	return d, nil
}

// Native returns the method descriptor of a native entry point. The first
// parameter must be host.Env and the second the receiver handle; both are
// left out of the descriptor.
func (c *Codec) Native(fn reflect.Type) (Descriptor, error) {
	if fn == nil || fn.Kind() != reflect.Func {
		return "", errors.New(errors.PhaseSignature, errors.KindTypeMismatch).
			GoType(typeName(fn)).
			Detail("native entry point must be a function").
			Build()
	}
	if fn.NumIn() < 2 || fn.In(0) != envType || fn.In(1).Kind() != reflect.Uintptr {
		return "", errors.New(errors.PhaseSignature, errors.KindInvalidInput).
			GoType(fn.String()).
			Detail("native entry point must start with (host.Env, receiver)").
			Build()
	}
	params := make([]reflect.Type, 0, fn.NumIn()-2)
	for i := 2; i < fn.NumIn(); i++ {
		params = append(params, fn.In(i))
	}
	return c.function(fn, params, nil)
}

func (c *Codec) derive(t reflect.Type, path []string) (Descriptor, error) {
	if d, ok := c.custom.Load(t); ok {
		return d.(Descriptor), nil
	}
	if t == booleanType {
		return Boolean, nil
	}
	if t.Kind() != reflect.Interface {
		if t.Implements(describer) {
			return Descriptor(reflect.Zero(t).Interface().(jni.Describer).Descriptor()), nil
		}
		if t.Implements(classNamer) {
			return Class(reflect.Zero(t).Interface().(jni.ClassNamer).ClassName()), nil
		}
	}

	switch t.Kind() {
	case reflect.Bool:
		return Boolean, nil
	case reflect.Int8, reflect.Uint8:
		return Byte, nil
	case reflect.Uint16:
		return Char, nil
	case reflect.Int16:
		return Short, nil
	case reflect.Int32:
		return Int, nil
	case reflect.Int64:
		return Long, nil
	case reflect.Float32:
		return Float, nil
	case reflect.Float64:
		return Double, nil
	case reflect.String:
		return String, nil
	case reflect.Slice:
		elem, err := c.derive(t.Elem(), append(path, "[]"))
		if err != nil {
			return "", err
		}
		return Array(elem), nil
	case reflect.Func:
		params := make([]reflect.Type, t.NumIn())
		for i := range params {
			params[i] = t.In(i)
		}
		return c.function(t, params, path)
	}

	return "", errors.New(errors.PhaseSignature, errors.KindUnsupported).
		Path(path...).
		GoType(t.String()).
		Detail("no host descriptor for Go type").
		Build()
}

func (c *Codec) function(fn reflect.Type, params []reflect.Type, path []string) (Descriptor, error) {
	if fn.IsVariadic() {
		return "", errors.New(errors.PhaseSignature, errors.KindUnsupported).
			Path(path...).
			GoType(fn.String()).
			Detail("variadic functions have no host descriptor").
			Build()
	}

	ps := make([]Descriptor, len(params))
	for i, p := range params {
		d, err := c.derive(p, append(path, "arg"+strconv.Itoa(i)))
		if err != nil {
			return "", err
		}
		ps[i] = d
	}

	ret, err := c.result(fn, path)
	if err != nil {
		return "", err
	}
	return Func(ret, ps...), nil
}

// result derives the return descriptor. A trailing error result is not part
// of the host signature.
func (c *Codec) result(fn reflect.Type, path []string) (Descriptor, error) {
	n := fn.NumOut()
	if n > 0 && fn.Out(n-1) == errorType {
		n--
	}
	switch n {
	case 0:
		return Void, nil
	case 1:
		return c.derive(fn.Out(0), append(path, "result"))
	}
	return "", errors.New(errors.PhaseSignature, errors.KindUnsupported).
		Path(path...).
		GoType(fn.String()).
		Detail("functions may return at most one value plus an error").
		Build()
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}

// Of returns the descriptor of t using the default codec.
func Of(t reflect.Type) (Descriptor, error) {
	return defaultCodec.Of(t)
}

// MustOf is like Of but panics on unsupported types.
func MustOf(t reflect.Type) Descriptor {
	d, err := defaultCodec.Of(t)
	if err != nil {
		panic(err)
	}
	return d
}

// For returns the descriptor of T.
func For[T any]() (Descriptor, error) {
	return defaultCodec.Of(reflect.TypeFor[T]())
}

// MustFor is like For but panics on unsupported types.
func MustFor[T any]() Descriptor {
	return MustOf(reflect.TypeFor[T]())
}

// Native returns the descriptor of a native entry point using the default
// codec.
func Native(fn reflect.Type) (Descriptor, error) {
	return defaultCodec.Native(fn)
}

// Register maps t to d in the default codec.
func Register(t reflect.Type, d Descriptor) {
	defaultCodec.Register(t, d)
}
