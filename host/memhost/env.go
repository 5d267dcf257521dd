package memhost

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/internal/handles"
)

// Env is the environment of one attached goroutine.
type Env struct {
	vm       *VM
	id       int64
	locals   *handles.Table[local]
	frame    int
	pending  *object // guarded by vm.mu
	held     map[*object]struct{}
	detached bool
}

type local struct {
	obj   *object
	frame int
}

const (
	tagLocal  = 1
	tagGlobal = 2
	tagWeak   = 3
	tagBits   = 2
	tagMask   = 1<<tagBits - 1
)

var _ host.Env = (*Env)(nil)

func encodeRef(h handles.Handle, tag uintptr) host.Ref {
	return host.Ref(uintptr(h)<<tagBits | tag)
}

func decodeRef(r host.Ref) (handles.Handle, uintptr) {
	return handles.Handle(uintptr(r) >> tagBits), uintptr(r) & tagMask
}

// VM implements host.Env.
func (e *Env) VM() host.VM { return e.vm }

// deref resolves a handle to its object. Null, cleared weak and invalid
// handles yield nil; invalid ones are logged.
func (e *Env) deref(r host.Ref) *object {
	if r == 0 {
		return nil
	}
	h, tag := decodeRef(r)
	var (
		o  *object
		ok bool
	)
	switch tag {
	case tagLocal:
		var l local
		l, ok = e.locals.Get(h)
		o = l.obj
	case tagGlobal:
		o, ok = e.vm.globals.Get(h)
	case tagWeak:
		o, ok = e.vm.weaks.Get(h)
	}
	if !ok {
		e.vm.log.Warn("use of invalid reference", zap.Uintptr("ref", uintptr(r)))
		return nil
	}
	return o
}

func (e *Env) newLocal(o *object) host.Ref {
	if o == nil || e.detached {
		return 0
	}
	h, err := e.locals.Insert(local{obj: o, frame: e.frame})
	if err != nil {
		return 0
	}
	return encodeRef(h, tagLocal)
}

// classOf resolves a class handle.
func (e *Env) classOf(c host.Class) *class {
	o := e.deref(host.Ref(c))
	if o == nil {
		return nil
	}
	return o.meta
}

// NewLocalRef implements host.Env.
func (e *Env) NewLocalRef(r host.Ref) host.Ref {
	return e.newLocal(e.deref(r))
}

// DeleteLocalRef implements host.Env.
func (e *Env) DeleteLocalRef(r host.Ref) {
	if r == 0 {
		return
	}
	h, tag := decodeRef(r)
	if tag != tagLocal {
		e.vm.log.Warn("DeleteLocalRef on non-local reference", zap.Uintptr("ref", uintptr(r)))
		return
	}
	if _, ok := e.locals.Remove(h); !ok {
		e.vm.log.Warn("DeleteLocalRef on invalid reference", zap.Uintptr("ref", uintptr(r)))
	}
}

// NewGlobalRef implements host.Env.
func (e *Env) NewGlobalRef(r host.Ref) host.Ref {
	o := e.deref(r)
	if o == nil {
		return 0
	}
	h, err := e.vm.globals.Insert(o)
	if err != nil {
		return 0
	}
	return encodeRef(h, tagGlobal)
}

// DeleteGlobalRef implements host.Env.
func (e *Env) DeleteGlobalRef(r host.Ref) {
	if r == 0 {
		return
	}
	h, tag := decodeRef(r)
	if tag != tagGlobal {
		e.vm.log.Warn("DeleteGlobalRef on non-global reference", zap.Uintptr("ref", uintptr(r)))
		return
	}
	if _, ok := e.vm.globals.Remove(h); !ok {
		e.vm.log.Warn("DeleteGlobalRef on invalid reference", zap.Uintptr("ref", uintptr(r)))
	}
}

// NewWeakGlobalRef implements host.Env.
func (e *Env) NewWeakGlobalRef(r host.Ref) host.Ref {
	o := e.deref(r)
	if o == nil {
		return 0
	}
	h, err := e.vm.weaks.Insert(o)
	if err != nil {
		return 0
	}
	return encodeRef(h, tagWeak)
}

// DeleteWeakGlobalRef implements host.Env.
func (e *Env) DeleteWeakGlobalRef(r host.Ref) {
	if r == 0 {
		return
	}
	h, tag := decodeRef(r)
	if tag != tagWeak {
		e.vm.log.Warn("DeleteWeakGlobalRef on non-weak reference", zap.Uintptr("ref", uintptr(r)))
		return
	}
	if _, ok := e.vm.weaks.Remove(h); !ok {
		e.vm.log.Warn("DeleteWeakGlobalRef on invalid reference", zap.Uintptr("ref", uintptr(r)))
	}
}

// GetObjectRefType implements host.Env.
func (e *Env) GetObjectRefType(r host.Ref) host.RefType {
	if r == 0 {
		return host.InvalidRef
	}
	h, tag := decodeRef(r)
	switch tag {
	case tagLocal:
		if _, ok := e.locals.Get(h); ok {
			return host.LocalRef
		}
	case tagGlobal:
		if _, ok := e.vm.globals.Get(h); ok {
			return host.GlobalRef
		}
	case tagWeak:
		if _, ok := e.vm.weaks.Get(h); ok {
			return host.WeakGlobalRef
		}
	}
	return host.InvalidRef
}

// IsSameObject implements host.Env. A cleared weak reference is the same
// object as null.
func (e *Env) IsSameObject(a, b host.Ref) bool {
	return e.deref(a) == e.deref(b)
}

// EnsureLocalCapacity implements host.Env.
func (e *Env) EnsureLocalCapacity(capacity int32) error {
	if capacity < 0 || capacity > e.vm.maxLocals {
		e.throw("java/lang/OutOfMemoryError", "cannot ensure %d local references", capacity)
		return errors.AllocationFailed(errors.PhaseReference, "local reference capacity", int(capacity))
	}
	return nil
}

// PushLocalFrame implements host.Env.
func (e *Env) PushLocalFrame(capacity int32) error {
	if err := e.EnsureLocalCapacity(capacity); err != nil {
		return err
	}
	e.frame++
	return nil
}

// PopLocalFrame implements host.Env. The result, if not null, is returned
// as a local reference in the enclosing frame.
func (e *Env) PopLocalFrame(result host.Ref) host.Ref {
	o := e.deref(result)
	if e.frame == 0 {
		e.vm.log.Warn("PopLocalFrame without matching PushLocalFrame")
		return e.newLocal(o)
	}
	depth := e.frame
	e.locals.RemoveFunc(func(l local) bool { return l.frame == depth })
	e.frame--
	return e.newLocal(o)
}

// Exceptions

func (e *Env) setPending(o *object) {
	e.vm.mu.Lock()
	e.pending = o
	e.vm.mu.Unlock()
}

// throw makes a new instance of the named throwable class pending.
func (e *Env) throw(className string, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	e.vm.mu.Lock()
	c := e.vm.classes[className]
	if c == nil {
		c = e.vm.classes["java/lang/Error"]
	}
	t := e.vm.newThrowableLocked(c, msg)
	e.pending = t
	e.vm.mu.Unlock()
}

func (vm *VM) newThrowableLocked(c *class, msg string) *object {
	t := vm.allocLocked(c)
	if f := findField(c, "detailMessage", "Ljava/lang/String;", false); f != nil {
		t.set(f, slot{ref: vm.newStringLocked(utf16Of(msg))})
	}
	return t
}

// Throw implements host.Env.
func (e *Env) Throw(t host.Throwable) error {
	o := e.deref(host.Ref(t))
	if o == nil {
		return errors.NullReference(errors.PhaseGuard, nil, "Ljava/lang/Throwable;")
	}
	if !e.isThrowable(o.class) {
		return errors.TypeMismatch(errors.PhaseGuard, nil, o.class.name, "Ljava/lang/Throwable;")
	}
	e.setPending(o)
	return nil
}

// ThrowNew implements host.Env.
func (e *Env) ThrowNew(c host.Class, msg string) error {
	cls := e.classOf(c)
	if cls == nil {
		return errors.NullReference(errors.PhaseGuard, nil, "Ljava/lang/Class;")
	}
	if !e.isThrowable(cls) || cls.abstract {
		return errors.TypeMismatch(errors.PhaseGuard, nil, cls.name, "Ljava/lang/Throwable;")
	}
	e.vm.mu.Lock()
	e.pending = e.vm.newThrowableLocked(cls, msg)
	e.vm.mu.Unlock()
	return nil
}

func (e *Env) isThrowable(c *class) bool {
	e.vm.mu.Lock()
	t := e.vm.classes["java/lang/Throwable"]
	e.vm.mu.Unlock()
	return isSubclass(c, t)
}

// ExceptionOccurred implements host.Env.
func (e *Env) ExceptionOccurred() host.Throwable {
	e.vm.mu.Lock()
	p := e.pending
	e.vm.mu.Unlock()
	return host.Throwable(e.newLocal(p))
}

// ExceptionCheck implements host.Env.
func (e *Env) ExceptionCheck() bool {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	return e.pending != nil
}

// ExceptionClear implements host.Env.
func (e *Env) ExceptionClear() {
	e.setPending(nil)
}

// Monitors

// MonitorEnter implements host.Env. Monitors are reentrant.
func (e *Env) MonitorEnter(obj host.Ref) error {
	o := e.deref(obj)
	if o == nil {
		e.throw("java/lang/NullPointerException", "monitor enter on null")
		return errors.NullReference(errors.PhaseCall, nil, "Ljava/lang/Object;")
	}

	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	for o.owner != 0 && o.owner != e.id {
		e.vm.cond.Wait()
	}
	o.owner = e.id
	o.depth++
	e.held[o] = struct{}{}
	return nil
}

// MonitorExit implements host.Env.
func (e *Env) MonitorExit(obj host.Ref) error {
	o := e.deref(obj)
	if o == nil {
		e.throw("java/lang/NullPointerException", "monitor exit on null")
		return errors.NullReference(errors.PhaseCall, nil, "Ljava/lang/Object;")
	}

	e.vm.mu.Lock()
	if o.owner != e.id {
		e.vm.mu.Unlock()
		e.throw("java/lang/IllegalMonitorStateException", "current thread is not owner")
		return errors.New(errors.PhaseCall, errors.KindMonitor).
			HostClass("java/lang/IllegalMonitorStateException").
			Detail("monitor not owned by current thread").
			Build()
	}
	o.depth--
	if o.depth == 0 {
		o.owner = 0
		delete(e.held, o)
		e.vm.cond.Broadcast()
	}
	e.vm.mu.Unlock()
	return nil
}
