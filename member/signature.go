package member

import (
	"reflect"
	"strconv"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/marshal"
	"github.com/wippyai/go-jni/signature"
)

var errorType = reflect.TypeFor[error]()

// callSig holds the codecs of a Go function type used to describe a
// method: one per parameter and one for the result, nil for void.
type callSig struct {
	fn     reflect.Type
	desc   signature.Descriptor
	params []marshal.Codec
	result marshal.Codec
	errOut bool
}

func sigFor[F any]() (*callSig, error) {
	fn := reflect.TypeFor[F]()
	if fn.Kind() != reflect.Func {
		return nil, errors.New(errors.PhaseResolve, errors.KindTypeMismatch).
			GoType(fn.String()).
			Detail("method type must be a function").
			Build()
	}
	desc, err := signature.Of(fn)
	if err != nil {
		return nil, err
	}

	s := &callSig{fn: fn, desc: desc, params: make([]marshal.Codec, fn.NumIn())}
	for i := range s.params {
		if s.params[i], err = marshal.Lookup(fn.In(i)); err != nil {
			return nil, err
		}
	}
	n := fn.NumOut()
	if n > 0 && fn.Out(n-1) == errorType {
		s.errOut = true
		n--
	}
	if n == 1 {
		if s.result, err = marshal.Lookup(fn.Out(0)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *callSig) kind() host.Kind {
	if s.result == nil {
		return host.KindVoid
	}
	return s.result.Kind()
}

// encode converts args to wire values. The returned func releases the
// temporaries it created.
func (s *callSig) encode(env host.Env, path []string, args []any) ([]host.Value, func(), error) {
	if len(args) != len(s.params) {
		return nil, nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(path...).
			HostType(string(s.desc)).
			Detail("got %d arguments, want %d", len(args), len(s.params)).
			Build()
	}

	ws := make([]host.Value, len(args))
	done := 0
	release := func() {
		for i := 0; i < done; i++ {
			marshal.Release(env, s.params[i], ws[i])
		}
	}
	for i, a := range args {
		p := append(path[:len(path):len(path)], "arg"+strconv.Itoa(i))
		v, err := marshal.Convert(a, s.params[i].Type(), p...)
		if err != nil {
			release()
			return nil, nil, err
		}
		if ws[i], err = s.params[i].Encode(env, v); err != nil {
			release()
			return nil, nil, err
		}
		done++
	}
	return ws, release, nil
}

// invoke encodes args, runs the host call, checks for a pending exception
// and decodes the result.
func (s *callSig) invoke(env host.Env, path []string, args []any, call func(k host.Kind, args []host.Value) host.Value) (any, error) {
	ws, release, err := s.encode(env, path, args)
	if err != nil {
		return nil, err
	}
	w := call(s.kind(), ws)
	release()
	if err := exception.Check(env); err != nil {
		if s.kind() == host.KindObject && w.Ref() != 0 {
			env.DeleteLocalRef(w.Ref())
		}
		return nil, err
	}
	if s.result == nil {
		return nil, nil
	}
	rv, err := decode(env, s.result, w)
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

// decode converts a wire value and deletes the local behind it when the
// codec does not hand it to the caller.
func decode(env host.Env, c marshal.Codec, w host.Value) (reflect.Value, error) {
	rv, err := c.Decode(env, w)
	marshal.Release(env, c, w)
	return rv, err
}

// makeFunc builds a value of the function type of s that forwards to call.
// When the function type has no error result, failures panic.
func makeFunc[F any](s *callSig, call func(args []any) (any, error)) F {
	fn := reflect.MakeFunc(s.fn, func(in []reflect.Value) []reflect.Value {
		args := make([]any, len(in))
		for i, v := range in {
			args[i] = v.Interface()
		}
		res, err := call(args)

		out := make([]reflect.Value, 0, 2)
		if s.result != nil {
			if err != nil || res == nil {
				out = append(out, reflect.Zero(s.fn.Out(0)))
			} else {
				out = append(out, reflect.ValueOf(res))
			}
		}
		if s.errOut {
			ev := reflect.Zero(errorType)
			if err != nil {
				ev = reflect.ValueOf(&err).Elem()
			}
			out = append(out, ev)
		} else if err != nil {
			panic(err)
		}
		return out
	})
	return fn.Interface().(F)
}

// Returns narrows the result of a Call to T.
func Returns[T any](v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.TypeMismatch(errors.PhaseDecode, nil, reflect.TypeOf(v).String(), reflect.TypeFor[T]().String())
	}
	return t, nil
}
