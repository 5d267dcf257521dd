package memhost

import (
	"github.com/wippyai/go-jni/host"
)

// FindClass implements host.Env.
func (e *Env) FindClass(name string) host.Class {
	e.vm.mu.Lock()
	c := e.vm.classLocked(name)
	e.vm.mu.Unlock()
	if c == nil {
		e.throw("java/lang/NoClassDefFoundError", "%s", name)
		return 0
	}
	return host.Class(e.newLocal(c.obj))
}

// GetSuperclass implements host.Env.
func (e *Env) GetSuperclass(c host.Class) host.Class {
	cls := e.classOf(c)
	if cls == nil || cls.super == nil || cls.iface {
		return 0
	}
	return host.Class(e.newLocal(cls.super.obj))
}

// GetObjectClass implements host.Env.
func (e *Env) GetObjectClass(obj host.Ref) host.Class {
	o := e.deref(obj)
	if o == nil {
		e.throw("java/lang/NullPointerException", "GetObjectClass on null")
		return 0
	}
	return host.Class(e.newLocal(o.class.obj))
}

// IsInstanceOf implements host.Env. Null is an instance of every class.
func (e *Env) IsInstanceOf(obj host.Ref, c host.Class) bool {
	o := e.deref(obj)
	if o == nil {
		return true
	}
	return isSubclass(o.class, e.classOf(c))
}

// IsAssignableFrom implements host.Env.
func (e *Env) IsAssignableFrom(sub, sup host.Class) bool {
	return isSubclass(e.classOf(sub), e.classOf(sup))
}

// GetFieldID implements host.Env.
func (e *Env) GetFieldID(c host.Class, name, sig string) host.FieldID {
	return e.fieldID(c, name, sig, false)
}

// GetStaticFieldID implements host.Env.
func (e *Env) GetStaticFieldID(c host.Class, name, sig string) host.FieldID {
	return e.fieldID(c, name, sig, true)
}

func (e *Env) fieldID(c host.Class, name, sig string, static bool) host.FieldID {
	cls := e.classOf(c)
	if cls == nil {
		e.throw("java/lang/NullPointerException", "null class")
		return 0
	}
	e.vm.mu.Lock()
	f := findField(cls, name, sig, static)
	e.vm.mu.Unlock()
	if f == nil {
		e.throw("java/lang/NoSuchFieldError", "%s", name)
		return 0
	}
	return f.id
}

// GetMethodID implements host.Env.
func (e *Env) GetMethodID(c host.Class, name, sig string) host.MethodID {
	return e.methodID(c, name, sig, false)
}

// GetStaticMethodID implements host.Env.
func (e *Env) GetStaticMethodID(c host.Class, name, sig string) host.MethodID {
	return e.methodID(c, name, sig, true)
}

func (e *Env) methodID(c host.Class, name, sig string, static bool) host.MethodID {
	cls := e.classOf(c)
	if cls == nil {
		e.throw("java/lang/NullPointerException", "null class")
		return 0
	}
	e.vm.mu.Lock()
	m := findMethod(cls, name, sig, static)
	e.vm.mu.Unlock()
	if m == nil {
		e.throw("java/lang/NoSuchMethodError", "%s", name)
		return 0
	}
	return m.id
}

// instanceField validates an instance field access.
func (e *Env) instanceField(obj host.Ref, id host.FieldID, k host.Kind) (*object, *field) {
	o := e.deref(obj)
	if o == nil {
		e.throw("java/lang/NullPointerException", "field access on null")
		return nil, nil
	}
	f := e.vm.field(id)
	switch {
	case f == nil:
		e.throw("java/lang/NoSuchFieldError", "invalid field id %d", id)
	case f.static:
		e.throw("java/lang/IncompatibleClassChangeError", "%s is static", f.name)
	case f.kind != k:
		e.throw("java/lang/IllegalArgumentException", "field %s is %s, accessed as %s", f.name, f.kind, k)
	case !isSubclass(o.class, f.class):
		e.throw("java/lang/IllegalArgumentException", "%s has no field %s", o.class.name, f.name)
	default:
		return o, f
	}
	return nil, nil
}

func (e *Env) staticField(c host.Class, id host.FieldID, k host.Kind) *field {
	if e.classOf(c) == nil {
		e.throw("java/lang/NullPointerException", "null class")
		return nil
	}
	f := e.vm.field(id)
	switch {
	case f == nil:
		e.throw("java/lang/NoSuchFieldError", "invalid field id %d", id)
	case !f.static:
		e.throw("java/lang/IncompatibleClassChangeError", "%s is not static", f.name)
	case f.kind != k:
		e.throw("java/lang/IllegalArgumentException", "field %s is %s, accessed as %s", f.name, f.kind, k)
	default:
		return f
	}
	return nil
}

func (e *Env) readSlot(s slot, k host.Kind) host.Value {
	if k == host.KindObject {
		return host.RefValue(e.newLocal(s.ref))
	}
	return s.prim
}

// toSlot converts a wire value for storage in a field of the given
// descriptor. ok is false if an exception was thrown.
func (e *Env) toSlot(f *field, v host.Value) (slot, bool) {
	if f.kind != host.KindObject {
		return slot{prim: v.Normalize(f.kind)}, true
	}
	o := e.deref(v.Ref())
	if o != nil {
		e.vm.mu.Lock()
		want := e.vm.classLocked(descClassName(f.desc))
		e.vm.mu.Unlock()
		if want != nil && !isSubclass(o.class, want) {
			e.throw("java/lang/IllegalArgumentException", "%s is not assignable to %s", o.class.name, f.desc)
			return slot{}, false
		}
	}
	return slot{ref: o}, true
}

func descClassName(desc string) string {
	if len(desc) > 2 && desc[0] == 'L' {
		return desc[1 : len(desc)-1]
	}
	return desc
}

// GetField implements host.Env.
func (e *Env) GetField(obj host.Ref, id host.FieldID, k host.Kind) host.Value {
	o, f := e.instanceField(obj, id, k)
	if f == nil {
		return 0
	}
	e.vm.mu.Lock()
	s := o.get(f)
	e.vm.mu.Unlock()
	return e.readSlot(s, k)
}

// SetField implements host.Env.
func (e *Env) SetField(obj host.Ref, id host.FieldID, k host.Kind, v host.Value) {
	o, f := e.instanceField(obj, id, k)
	if f == nil {
		return
	}
	s, ok := e.toSlot(f, v)
	if !ok {
		return
	}
	e.vm.mu.Lock()
	o.set(f, s)
	e.vm.mu.Unlock()
}

// GetStaticField implements host.Env.
func (e *Env) GetStaticField(c host.Class, id host.FieldID, k host.Kind) host.Value {
	f := e.staticField(c, id, k)
	if f == nil {
		return 0
	}
	e.vm.mu.Lock()
	s := f.class.statics[f]
	e.vm.mu.Unlock()
	return e.readSlot(s, k)
}

// SetStaticField implements host.Env.
func (e *Env) SetStaticField(c host.Class, id host.FieldID, k host.Kind, v host.Value) {
	f := e.staticField(c, id, k)
	if f == nil {
		return
	}
	s, ok := e.toSlot(f, v)
	if !ok {
		return
	}
	e.vm.mu.Lock()
	f.class.statics[f] = s
	e.vm.mu.Unlock()
}

// Calls

func (e *Env) callable(id host.MethodID, k host.Kind, static bool) *method {
	m := e.vm.method(id)
	switch {
	case m == nil:
		e.throw("java/lang/NoSuchMethodError", "invalid method id %d", id)
	case m.static != static:
		e.throw("java/lang/IncompatibleClassChangeError", "%s static mismatch", m)
	case m.ret != k:
		e.throw("java/lang/IllegalArgumentException", "%s returns %s, called as %s", m, m.ret, k)
	default:
		return m
	}
	return nil
}

// Call implements host.Env with virtual dispatch on the receiver's class.
func (e *Env) Call(obj host.Ref, id host.MethodID, k host.Kind, args []host.Value) host.Value {
	o := e.deref(obj)
	if o == nil {
		e.throw("java/lang/NullPointerException", "method call on null")
		return 0
	}
	m := e.callable(id, k, false)
	if m == nil {
		return 0
	}
	if !isSubclass(o.class, m.class) {
		e.throw("java/lang/IllegalArgumentException", "%s is not a %s", o.class.name, m.class.name)
		return 0
	}
	e.vm.mu.Lock()
	impl := dispatch(o.class, m)
	e.vm.mu.Unlock()
	return e.invoke(impl, obj, args)
}

// CallNonvirtual implements host.Env. The method id selects the
// implementation; the receiver's class is not consulted.
func (e *Env) CallNonvirtual(obj host.Ref, c host.Class, id host.MethodID, k host.Kind, args []host.Value) host.Value {
	o := e.deref(obj)
	if o == nil {
		e.throw("java/lang/NullPointerException", "method call on null")
		return 0
	}
	cls := e.classOf(c)
	m := e.callable(id, k, false)
	if m == nil {
		return 0
	}
	if cls == nil || !isSubclass(o.class, cls) || !isSubclass(cls, m.class) {
		e.throw("java/lang/IllegalArgumentException", "nonvirtual call of %s on %s", m, o.class.name)
		return 0
	}
	return e.invoke(m, obj, args)
}

// CallStatic implements host.Env.
func (e *Env) CallStatic(c host.Class, id host.MethodID, k host.Kind, args []host.Value) host.Value {
	if e.classOf(c) == nil {
		e.throw("java/lang/NullPointerException", "static call on null class")
		return 0
	}
	m := e.callable(id, k, true)
	if m == nil {
		return 0
	}
	return e.invoke(m, host.Ref(c), args)
}

// NewObject implements host.Env.
func (e *Env) NewObject(c host.Class, ctor host.MethodID, args []host.Value) host.Ref {
	cls := e.classOf(c)
	if cls == nil {
		e.throw("java/lang/NullPointerException", "NewObject on null class")
		return 0
	}
	m := e.callable(ctor, host.KindVoid, false)
	if m == nil {
		return 0
	}
	if m.name != "<init>" || m.class != cls {
		e.throw("java/lang/IllegalArgumentException", "%s is not a constructor of %s", m, cls.name)
		return 0
	}
	obj := e.AllocObject(c)
	if obj == 0 {
		return 0
	}
	e.invoke(m, obj, args)
	if e.ExceptionCheck() {
		e.DeleteLocalRef(obj)
		return 0
	}
	return obj
}

// AllocObject implements host.Env.
func (e *Env) AllocObject(c host.Class) host.Ref {
	cls := e.classOf(c)
	if cls == nil {
		e.throw("java/lang/NullPointerException", "AllocObject on null class")
		return 0
	}
	if cls.abstract || cls.array {
		e.throw("java/lang/InstantiationException", "%s", cls.dotted())
		return 0
	}
	e.vm.mu.Lock()
	o := e.vm.allocLocked(cls)
	if cls.name == "java/lang/String" {
		o.str = []uint16{}
	}
	e.vm.mu.Unlock()
	return e.newLocal(o)
}

// invoke runs a method body inside a fresh local frame. An object result is
// carried out of the frame.
func (e *Env) invoke(m *method, recv host.Ref, args []host.Value) (ret host.Value) {
	switch {
	case m.native && m.impl == nil:
		e.throw("java/lang/UnsatisfiedLinkError", "%s", m)
		return 0
	case m.impl == nil:
		e.throw("java/lang/AbstractMethodError", "%s", m)
		return 0
	case len(args) != len(m.params):
		e.throw("java/lang/IllegalArgumentException", "%s takes %d arguments, got %d", m, len(m.params), len(args))
		return 0
	}

	e.frame++
	depth := e.frame
	done := false
	defer func() {
		if !done {
			e.locals.RemoveFunc(func(l local) bool { return l.frame >= depth })
			e.frame = depth - 1
		}
	}()

	in := make([]host.Value, len(args))
	for i, k := range m.params {
		in[i] = args[i].Normalize(k)
	}
	v := m.impl(e, recv, in)
	done = true

	var result *object
	if m.ret == host.KindObject {
		result = e.deref(v.Ref())
	}
	e.locals.RemoveFunc(func(l local) bool { return l.frame >= depth })
	e.frame = depth - 1
	if m.ret == host.KindObject {
		return host.RefValue(e.newLocal(result))
	}
	return v.Normalize(m.ret)
}
