package exception

import (
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	jni "github.com/wippyai/go-jni"
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/ref"
)

// Host exception classes raised by the guard.
const (
	RuntimeException = "java/lang/RuntimeException"
	OutOfMemoryError = "java/lang/OutOfMemoryError"
	Error            = "java/lang/Error"
)

// ErrPending reports that the host already has a pending exception. It is
// returned as is and never wrapped, so the guard can pass it through
// without raising a second exception.
var ErrPending = errors.New(errors.PhaseCall, errors.KindPendingException).
	Detail("host exception pending").
	Build()

// Check returns ErrPending if env has a pending exception.
func Check(env host.Env) error {
	if env.ExceptionCheck() {
		return ErrPending
	}
	return nil
}

// IsPending reports whether err is ErrPending.
func IsPending(err error) bool {
	return stderrors.Is(err, ErrPending)
}

// Guard runs the body of a native entry point. A returned error or a panic
// is turned into a pending host exception; ErrPending leaves the host's own
// pending exception untouched.
func Guard(env host.Env, fn func() error) {
	GuardValue(env, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

// GuardValue is Guard for entry points with a result. The zero value is
// returned whenever an exception is left pending.
func GuardValue[T any](env host.Env, fn func() (T, error)) (result T) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			raisePanic(env, r)
		}
	}()

	v, err := fn()
	if err != nil {
		var zero T
		Raise(env, err)
		return zero
	}
	return v
}

// hostClassHint is implemented by errors that name the host exception
// class they should surface as.
type hostClassHint interface {
	HostException() string
}

// Raise makes err pending in env as the best matching host exception.
func Raise(env host.Env, err error) {
	if IsPending(err) {
		if env.ExceptionCheck() {
			return
		}
		Logger().Warn("pending exception reported but none is pending")
		throwClass(env, RuntimeException, err.Error())
		return
	}

	var he *HostError
	if stderrors.As(err, &he) && he.Throwable != nil {
		if terr := env.Throw(host.Throwable(he.Throwable.Ref())); terr == nil {
			return
		}
	}

	class := hostClassOf(err)
	if class == "" {
		class = RuntimeException
	}
	throwClass(env, class, err.Error())
}

// hostClassOf walks the cause chain of err and returns the first host class
// hint, OutOfMemoryError for the first allocation failure, or "".
func hostClassOf(err error) string {
	for err != nil {
		if hint, ok := err.(hostClassHint); ok && hint.HostException() != "" {
			return hint.HostException()
		}
		if jerr, ok := err.(*errors.Error); ok && jerr.Kind == errors.KindAllocation {
			return OutOfMemoryError
		}
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range multi.Unwrap() {
				if class := hostClassOf(e); class != "" {
					return class
				}
			}
			return ""
		}
		err = stderrors.Unwrap(err)
	}
	return ""
}

func raisePanic(env host.Env, r any) {
	if err, ok := r.(error); ok {
		Logger().Debug("native entry point panicked", zap.Error(err))
		Raise(env, err)
		return
	}
	Logger().Debug("native entry point panicked", zap.Any("value", r))
	throwClass(env, Error, fmt.Sprint(r))
}

func throwClass(env host.Env, class, msg string) {
	Logger().Debug("raising host exception", zap.String("class", class), zap.String("message", msg))
	if env.ExceptionCheck() {
		env.ExceptionClear()
	}
	if err := ThrowNew(env, class, msg); err != nil && class != Error {
		env.ExceptionClear()
		_ = ThrowNew(env, Error, msg)
	}
}

// ThrowNew makes a new instance of the named host class pending.
func ThrowNew(env host.Env, class, msg string) error {
	c := env.FindClass(class)
	if c == 0 {
		return errors.Unresolved("class", class, "", "java/lang/NoClassDefFoundError", Check(env))
	}
	defer env.DeleteLocalRef(host.Ref(c))
	if err := env.ThrowNew(c, msg); err != nil {
		return errors.Wrap(errors.PhaseGuard, errors.KindNativeFailure, err, "throw "+class)
	}
	return nil
}

// ThrowNewAs is ThrowNew for the host class T stands for.
func ThrowNewAs[T jni.ClassNamer](env host.Env, msg string) error {
	var t T
	return ThrowNew(env, t.ClassName(), msg)
}

// Throw makes an existing throwable pending.
func Throw(env host.Env, t ref.Handle) error {
	if err := env.Throw(ref.As[host.Throwable](t)); err != nil {
		return errors.Wrap(errors.PhaseGuard, errors.KindNativeFailure, err, "throw")
	}
	return nil
}

// HostError is a host exception caught by Catch.
type HostError struct {
	// Class is the exception class in internal form.
	Class string
	// Message is the detail message, empty if there was none.
	Message string
	// Throwable holds the exception object until Release.
	Throwable *ref.Global
}

func (e *HostError) Error() string {
	name := strings.ReplaceAll(e.Class, "/", ".")
	if e.Message == "" {
		return name
	}
	return name + ": " + e.Message
}

// HostException returns the class of the caught exception.
func (e *HostError) HostException() string {
	return e.Class
}

// Is reports whether target is a HostError of the same class.
func (e *HostError) Is(target error) bool {
	t, ok := target.(*HostError)
	return ok && t.Class == e.Class
}

// Release drops the reference to the exception object.
func (e *HostError) Release() {
	if e.Throwable != nil {
		e.Throwable.Release()
		e.Throwable = nil
	}
}

// Catch clears the pending exception of env and returns it as a Go error.
// It returns nil, nil when nothing is pending.
func Catch(env host.Env) (*HostError, error) {
	th := env.ExceptionOccurred()
	if th == 0 {
		return nil, nil
	}
	env.ExceptionClear()

	local := ref.NewLocal(env, host.Ref(th))
	defer local.Release()

	class, msg, err := Describe(env, th)
	if err != nil {
		return nil, err
	}
	g, err := ref.NewGlobal(env, local)
	if err != nil {
		return nil, err
	}
	return &HostError{Class: class, Message: msg, Throwable: g}, nil
}

// Describe returns the class name, in internal form, and the detail message
// of a throwable.
func Describe(env host.Env, th host.Throwable) (class, msg string, err error) {
	s := ref.NewScope(env)
	defer s.Close()

	c := s.Adopt(host.Ref(env.GetObjectClass(host.Ref(th))))
	cc := s.Adopt(host.Ref(env.GetObjectClass(c.Ref())))
	getName := env.GetMethodID(host.Class(cc.Ref()), "getName", "()Ljava/lang/String;")
	if err := Check(env); err != nil {
		return "", "", err
	}
	name := s.Adopt(env.Call(c.Ref(), getName, host.KindObject, nil).Ref())
	if err := Check(env); err != nil {
		return "", "", err
	}
	class = strings.ReplaceAll(env.GetStringUTF(host.String(name.Ref())), ".", "/")

	getMessage := env.GetMethodID(host.Class(c.Ref()), "getMessage", "()Ljava/lang/String;")
	if err := Check(env); err != nil {
		return "", "", err
	}
	m := s.Adopt(env.Call(host.Ref(th), getMessage, host.KindObject, nil).Ref())
	if err := Check(env); err != nil {
		return "", "", err
	}
	if !m.IsNull() {
		msg = env.GetStringUTF(host.String(m.Ref()))
	}
	return class, msg, nil
}
