package memhost

import (
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
)

// RegisterNatives implements host.Env. Every method must be declared native
// in the class itself; on the first mismatch nothing after it is bound.
func (e *Env) RegisterNatives(c host.Class, methods []host.NativeMethod) error {
	cls := e.classOf(c)
	if cls == nil {
		e.throw("java/lang/NullPointerException", "RegisterNatives on null class")
		return errors.NullReference(errors.PhaseRegister, nil, "Ljava/lang/Class;")
	}

	var missing *host.NativeMethod
	e.vm.mu.Lock()
	for i, nm := range methods {
		m, ok := cls.methods[nm.Name+nm.Signature]
		if !ok || !m.native || nm.Fn == nil {
			missing = &methods[i]
			break
		}
		m.impl = nm.Fn
	}
	e.vm.mu.Unlock()

	if missing != nil {
		e.throw("java/lang/NoSuchMethodError", "%s", missing.Name)
		return errors.Registration(cls.name, missing.Name,
			errors.NotFound(errors.PhaseRegister, "native method", missing.Name+missing.Signature))
	}
	return nil
}

// UnregisterNatives implements host.Env.
func (e *Env) UnregisterNatives(c host.Class) error {
	cls := e.classOf(c)
	if cls == nil {
		return errors.NullReference(errors.PhaseRegister, nil, "Ljava/lang/Class;")
	}

	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	for _, m := range cls.methods {
		if m.native {
			m.impl = nil
		}
	}
	return nil
}
