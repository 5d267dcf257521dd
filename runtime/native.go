package runtime

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/marshal"
	"github.com/wippyai/go-jni/signature"
)

var errorType = reflect.TypeFor[error]()

// Native binds the Go function fn to the native method name. fn takes the
// environment and the receiver (the object, or the class for static
// methods) followed by the method parameters, and may return one value
// and a trailing error. Its descriptor is derived from the remaining
// parameters and result.
//
// The binding runs fn under the exception guard: a returned error or a
// panic leaves a host exception pending and returns the zero value.
func Native(name string, fn any) (host.NativeMethod, error) {
	if name == "" {
		return host.NativeMethod{}, errors.InvalidInput(errors.PhaseRegister, "native method name cannot be empty")
	}
	fv := reflect.ValueOf(fn)
	if fn == nil || fv.Kind() != reflect.Func {
		return host.NativeMethod{}, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			GoType(fmt.Sprintf("%T", fn)).
			Detail("handler must be a function").
			Build()
	}
	ft := fv.Type()

	desc, err := signature.Native(ft)
	if err != nil {
		return host.NativeMethod{}, err
	}
	b, err := newBinding(fv)
	if err != nil {
		return host.NativeMethod{}, err
	}
	Logger().Debug("native method", zap.String("name", name), zap.String("descriptor", string(desc)))
	return host.NativeMethod{Name: name, Signature: string(desc), Fn: b.call}, nil
}

// MustNative is like Native but panics on error.
func MustNative(name string, fn any) host.NativeMethod {
	nm, err := Native(name, fn)
	if err != nil {
		panic(err)
	}
	return nm
}

type binding struct {
	fn     reflect.Value
	recv   reflect.Type
	params []marshal.Codec
	result marshal.Codec
	errOut bool
}

func newBinding(fv reflect.Value) (*binding, error) {
	ft := fv.Type()
	b := &binding{fn: fv, recv: ft.In(1), params: make([]marshal.Codec, ft.NumIn()-2)}
	var err error
	for i := range b.params {
		if b.params[i], err = marshal.Lookup(ft.In(i + 2)); err != nil {
			return nil, err
		}
	}
	n := ft.NumOut()
	if n > 0 && ft.Out(n-1) == errorType {
		b.errOut = true
		n--
	}
	if n == 1 {
		if b.result, err = marshal.Lookup(ft.Out(0)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// call is the host.NativeFunc of the binding. Object arguments belong to
// the caller's frame; an object result is handed to the host.
func (b *binding) call(env host.Env, recv host.Ref, args []host.Value) host.Value {
	return exception.GuardValue(env, func() (host.Value, error) {
		if len(args) != len(b.params) {
			return 0, errors.New(errors.PhaseGuard, errors.KindInvalidInput).
				Detail("got %d arguments, want %d", len(args), len(b.params)).
				Build()
		}

		in := make([]reflect.Value, 2+len(args))
		in[0] = reflect.ValueOf(&env).Elem()
		in[1] = reflect.New(b.recv).Elem()
		in[1].SetUint(uint64(recv))
		for i, c := range b.params {
			v, err := c.Decode(env, args[i])
			if err != nil {
				return 0, err
			}
			in[i+2] = v
		}

		out := b.fn.Call(in)
		if b.errOut {
			if err, _ := out[len(out)-1].Interface().(error); err != nil {
				return 0, err
			}
		}
		if b.result == nil {
			return 0, nil
		}
		return b.result.Encode(env, out[0])
	})
}
