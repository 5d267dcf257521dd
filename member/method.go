package member

import (
	jni "github.com/wippyai/go-jni"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/ref"
	"github.com/wippyai/go-jni/signature"
)

// method is the resolved state shared by every method kind.
type method struct {
	id    host.MethodID
	class *ref.Global
	path  []string
	sig   *callSig
}

func resolve[C jni.ClassNamer, F any](env host.Env, name string, static bool) (*method, error) {
	var c C
	path := []string{c.ClassName(), name}
	sig, err := sigFor[F]()
	if err != nil {
		return nil, err
	}
	class, err := ClassOf[C](env)
	if err != nil {
		return nil, err
	}

	var id host.MethodID
	what := "method"
	if static {
		what = "static method"
		id = env.GetStaticMethodID(host.Class(class.Ref()), name, string(sig.desc))
	} else {
		id = env.GetMethodID(host.Class(class.Ref()), name, string(sig.desc))
	}
	if id == 0 || env.ExceptionCheck() {
		return nil, unresolved(env, what, joinPath(path), string(sig.desc), "java/lang/NoSuchMethodError")
	}
	return &method{id: id, class: class, path: path, sig: sig}, nil
}

// Name returns the method name.
func (m *method) Name() string { return m.path[1] }

// Descriptor returns the method descriptor.
func (m *method) Descriptor() signature.Descriptor { return m.sig.desc }

// ID returns the host method id.
func (m *method) ID() host.MethodID { return m.id }

// Method is a resolved instance method of class C with Go type F. Calls
// dispatch on the runtime class of the receiver.
type Method[C jni.ClassNamer, F any] struct {
	*method
}

// ResolveMethod looks up the instance method name of C with the
// descriptor of F.
func ResolveMethod[C jni.ClassNamer, F any](env host.Env, name string) (*Method[C, F], error) {
	m, err := resolve[C, F](env, name, false)
	if err != nil {
		return nil, err
	}
	return &Method[C, F]{m}, nil
}

// Call invokes the method on recv. The result is nil for void methods.
func (m *Method[C, F]) Call(env host.Env, recv ref.Handle, args ...any) (any, error) {
	r, err := receiver(recv, m.path, m.sig.desc)
	if err != nil {
		return nil, err
	}
	return m.sig.invoke(env, m.path, args, func(k host.Kind, ws []host.Value) host.Value {
		return env.Call(r, m.id, k, ws)
	})
}

// Bind returns a Go function calling the method on recv. Failures are
// returned through a trailing error result of F, or panic when F has none.
func (m *Method[C, F]) Bind(env host.Env, recv ref.Handle) F {
	return makeFunc[F](m.sig, func(args []any) (any, error) {
		return m.Call(env, recv, args...)
	})
}

// NonVirtualMethod is a resolved instance method of class C that is called
// without virtual dispatch.
type NonVirtualMethod[C jni.ClassNamer, F any] struct {
	*method
}

// ResolveNonVirtualMethod looks up the instance method name of C for
// calls that bypass overrides in subclasses.
func ResolveNonVirtualMethod[C jni.ClassNamer, F any](env host.Env, name string) (*NonVirtualMethod[C, F], error) {
	m, err := resolve[C, F](env, name, false)
	if err != nil {
		return nil, err
	}
	return &NonVirtualMethod[C, F]{m}, nil
}

// Call invokes the implementation declared by C on recv.
func (m *NonVirtualMethod[C, F]) Call(env host.Env, recv ref.Handle, args ...any) (any, error) {
	r, err := receiver(recv, m.path, m.sig.desc)
	if err != nil {
		return nil, err
	}
	return m.sig.invoke(env, m.path, args, func(k host.Kind, ws []host.Value) host.Value {
		return env.CallNonvirtual(r, host.Class(m.class.Ref()), m.id, k, ws)
	})
}

// Bind returns a Go function calling the method on recv.
func (m *NonVirtualMethod[C, F]) Bind(env host.Env, recv ref.Handle) F {
	return makeFunc[F](m.sig, func(args []any) (any, error) {
		return m.Call(env, recv, args...)
	})
}

// StaticMethod is a resolved static method of class C.
type StaticMethod[C jni.ClassNamer, F any] struct {
	*method
}

// ResolveStaticMethod looks up the static method name of C with the
// descriptor of F.
func ResolveStaticMethod[C jni.ClassNamer, F any](env host.Env, name string) (*StaticMethod[C, F], error) {
	m, err := resolve[C, F](env, name, true)
	if err != nil {
		return nil, err
	}
	return &StaticMethod[C, F]{m}, nil
}

// Call invokes the method.
func (m *StaticMethod[C, F]) Call(env host.Env, args ...any) (any, error) {
	return m.sig.invoke(env, m.path, args, func(k host.Kind, ws []host.Value) host.Value {
		return env.CallStatic(host.Class(m.class.Ref()), m.id, k, ws)
	})
}

// Func returns a Go function calling the method.
func (m *StaticMethod[C, F]) Func(env host.Env) F {
	return makeFunc[F](m.sig, func(args []any) (any, error) {
		return m.Call(env, args...)
	})
}

// Constructor is a resolved constructor of class C. F lists the parameter
// types and has no results.
type Constructor[C jni.ClassNamer, F any] struct {
	*method
}

// ResolveConstructor looks up the constructor of C with the parameters
// of F.
func ResolveConstructor[C jni.ClassNamer, F any](env host.Env) (*Constructor[C, F], error) {
	m, err := resolve[C, F](env, "<init>", false)
	if err != nil {
		return nil, err
	}
	return &Constructor[C, F]{m}, nil
}

// New allocates an instance and runs the constructor. The caller releases
// the returned reference.
func (m *Constructor[C, F]) New(env host.Env, args ...any) (*ref.Local, error) {
	ws, release, err := m.sig.encode(env, m.path, args)
	if err != nil {
		return nil, err
	}
	obj := env.NewObject(host.Class(m.class.Ref()), m.id, ws)
	release()
	if err := exception.Check(env); err != nil {
		if obj != 0 {
			env.DeleteLocalRef(obj)
		}
		return nil, err
	}
	return ref.NewLocal(env, obj), nil
}

// NewAs is New returning the bare handle typed as C. The caller deletes
// the local reference.
func NewAs[C interface {
	~uintptr
	jni.ClassNamer
}, F any](env host.Env, ctor *Constructor[C, F], args ...any) (C, error) {
	l, err := ctor.New(env, args...)
	if err != nil {
		return 0, err
	}
	return C(l.Take()), nil
}
