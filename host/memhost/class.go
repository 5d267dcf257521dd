package memhost

import (
	"strings"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/signature"
)

// ClassSpec declares a class or interface.
type ClassSpec struct {
	Name       string
	Super      string // defaults to java/lang/Object
	Interfaces []string
	Interface  bool
	Abstract   bool
	Fields     []FieldSpec
	Methods    []MethodSpec
}

// FieldSpec declares a field. Value is the initial value of a primitive
// static field.
type FieldSpec struct {
	Name       string
	Descriptor string
	Static     bool
	Value      host.Value
}

// MethodSpec declares a method. Impl is nil for abstract methods and for
// native methods that are bound later with RegisterNatives.
type MethodSpec struct {
	Name       string
	Descriptor string
	Static     bool
	Native     bool
	Impl       host.NativeFunc
}

type class struct {
	name     string
	super    *class
	ifaces   []*class
	iface    bool
	root     *class // java/lang/Object for interfaces
	abstract bool
	fields   map[string]*field
	methods  map[string]*method
	statics  map[*field]slot
	obj      *object

	// arrays
	array    bool
	elemKind host.Kind
	elem     *class
}

type field struct {
	id     host.FieldID
	class  *class
	name   string
	desc   string
	kind   host.Kind
	static bool
}

type method struct {
	id       host.MethodID
	class    *class
	name     string
	desc     string
	params   []host.Kind
	ret      host.Kind
	static   bool
	native   bool
	abstract bool
	impl     host.NativeFunc
}

func (m *method) String() string {
	return m.class.name + "." + m.name + m.desc
}

// DefineClass adds a class to the VM. The superclass and interfaces must
// already be defined.
func (vm *VM) DefineClass(spec ClassSpec) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.defineLocked(spec)
}

// MustDefine is like DefineClass but panics on error.
func (vm *VM) MustDefine(spec ClassSpec) {
	if err := vm.DefineClass(spec); err != nil {
		panic(err)
	}
}

func (vm *VM) defineLocked(spec ClassSpec) error {
	if spec.Name == "" || strings.ContainsAny(spec.Name, ".;[") {
		return errors.InvalidInput(errors.PhaseConfig, "invalid class name "+spec.Name)
	}
	if _, ok := vm.classes[spec.Name]; ok {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(spec.Name).
			Detail("class already defined").
			Build()
	}

	c := &class{
		name:     spec.Name,
		iface:    spec.Interface,
		abstract: spec.Abstract || spec.Interface,
		fields:   make(map[string]*field),
		methods:  make(map[string]*method),
		statics:  make(map[*field]slot),
	}

	if spec.Name != "java/lang/Object" && !spec.Interface {
		superName := spec.Super
		if superName == "" {
			superName = "java/lang/Object"
		}
		super, ok := vm.classes[superName]
		if !ok {
			return errors.NotFound(errors.PhaseConfig, "superclass", superName)
		}
		if super.iface {
			return errors.InvalidInput(errors.PhaseConfig, superName+" is an interface")
		}
		c.super = super
	}
	if spec.Interface {
		c.root = vm.classes["java/lang/Object"]
	}
	for _, name := range spec.Interfaces {
		iface, ok := vm.classes[name]
		if !ok {
			return errors.NotFound(errors.PhaseConfig, "interface", name)
		}
		if !iface.iface {
			return errors.InvalidInput(errors.PhaseConfig, name+" is not an interface")
		}
		c.ifaces = append(c.ifaces, iface)
	}

	for _, fs := range spec.Fields {
		t, err := signature.Parse(signature.Descriptor(fs.Descriptor))
		if err != nil || t.Method || t.Kind == host.KindVoid {
			return errors.New(errors.PhaseConfig, errors.KindInvalidData).
				Path(spec.Name, fs.Name).
				HostType(fs.Descriptor).
				Detail("invalid field descriptor").
				Cause(err).
				Build()
		}
		f := &field{
			class:  c,
			name:   fs.Name,
			desc:   fs.Descriptor,
			kind:   t.Kind,
			static: fs.Static,
		}
		vm.fields = append(vm.fields, f)
		f.id = host.FieldID(len(vm.fields))
		c.fields[fs.Name] = f
		if f.static && t.Kind.IsPrimitive() {
			c.statics[f] = slot{prim: fs.Value.Normalize(t.Kind)}
		}
	}

	for _, ms := range spec.Methods {
		t, err := signature.Parse(signature.Descriptor(ms.Descriptor))
		if err != nil || !t.Method {
			return errors.New(errors.PhaseConfig, errors.KindInvalidData).
				Path(spec.Name, ms.Name).
				HostType(ms.Descriptor).
				Detail("invalid method descriptor").
				Cause(err).
				Build()
		}
		m := &method{
			class:    c,
			name:     ms.Name,
			desc:     ms.Descriptor,
			ret:      t.Result.Kind,
			static:   ms.Static,
			native:   ms.Native,
			abstract: ms.Impl == nil && !ms.Native,
			impl:     ms.Impl,
		}
		for _, p := range t.Params {
			m.params = append(m.params, p.Kind)
		}
		vm.methods = append(vm.methods, m)
		m.id = host.MethodID(len(vm.methods))
		c.methods[ms.Name+ms.Descriptor] = m
	}

	vm.classes[spec.Name] = c
	if cc, ok := vm.classes["java/lang/Class"]; ok {
		c.obj = vm.allocLocked(cc)
		c.obj.meta = c
	}
	return nil
}

// arrayClassLocked returns the class named by an array descriptor, creating
// it on first use.
func (vm *VM) arrayClassLocked(desc string) *class {
	if c, ok := vm.classes[desc]; ok {
		return c
	}
	t, err := signature.Parse(signature.Descriptor(desc))
	if err != nil || !t.IsArray() {
		return nil
	}
	c := &class{
		name:     desc,
		super:    vm.classes["java/lang/Object"],
		array:    true,
		elemKind: t.Elem.Kind,
		fields:   make(map[string]*field),
		methods:  make(map[string]*method),
		statics:  make(map[*field]slot),
	}
	if t.Elem.Kind == host.KindObject {
		if t.Elem.IsArray() {
			c.elem = vm.arrayClassLocked(t.Elem.Class)
		} else {
			c.elem = vm.classes[t.Elem.Class]
		}
		if c.elem == nil {
			return nil
		}
	}
	c.obj = vm.allocLocked(vm.classes["java/lang/Class"])
	c.obj.meta = c
	vm.classes[desc] = c
	return c
}

// classLocked resolves a class name in internal form, including arrays.
func (vm *VM) classLocked(name string) *class {
	if strings.HasPrefix(name, "[") {
		return vm.arrayClassLocked(name)
	}
	return vm.classes[name]
}

// isSubclass reports whether instances of a are assignable to b.
func isSubclass(a, b *class) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b || b.name == "java/lang/Object" {
		return true
	}
	if a.array {
		if !b.array {
			return false
		}
		if a.elem != nil && b.elem != nil {
			return isSubclass(a.elem, b.elem)
		}
		return false
	}
	for c := a; c != nil; c = c.super {
		if c == b {
			return true
		}
		for _, i := range c.ifaces {
			if isSubclass(i, b) {
				return true
			}
		}
	}
	return false
}

// findField looks up a field by name and descriptor in c and its supertypes.
func findField(c *class, name, desc string, static bool) *field {
	for k := c; k != nil; k = k.super {
		if f, ok := k.fields[name]; ok && f.desc == desc && f.static == static {
			return f
		}
		if static {
			for _, i := range k.ifaces {
				if f := findField(i, name, desc, true); f != nil {
					return f
				}
			}
		}
	}
	return nil
}

// findMethod looks up a method in c, its superclasses and, for instance
// methods, its interfaces. Constructors are never inherited.
func findMethod(c *class, name, desc string, static bool) *method {
	key := name + desc
	if name == "<init>" {
		if m, ok := c.methods[key]; ok && !m.static {
			return m
		}
		return nil
	}
	for k := c; k != nil; k = k.super {
		if m, ok := k.methods[key]; ok && m.static == static {
			return m
		}
	}
	if static {
		return nil
	}
	for k := c; k != nil; k = k.super {
		for _, i := range k.ifaces {
			if m := findMethod(i, name, desc, false); m != nil {
				return m
			}
		}
	}
	if c.iface && c.root != nil {
		return findMethod(c.root, name, desc, false)
	}
	return nil
}

// dispatch returns the implementation of m for an object of class c.
func dispatch(c *class, m *method) *method {
	key := m.name + m.desc
	for k := c; k != nil; k = k.super {
		if impl, ok := k.methods[key]; ok && !impl.static && !impl.abstract {
			return impl
		}
	}
	return m
}

func (c *class) dotted() string {
	return strings.ReplaceAll(c.name, "/", ".")
}
