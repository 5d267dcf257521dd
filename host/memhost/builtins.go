package memhost

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf16"

	"github.com/wippyai/go-jni/host"
)

type implFunc func(e *Env, self *object, recv host.Ref, args []host.Value) host.Value

func impl(f implFunc) host.NativeFunc {
	return func(env host.Env, recv host.Ref, args []host.Value) host.Value {
		e := env.(*Env)
		return f(e, e.deref(recv), recv, args)
	}
}

func (vm *VM) must(spec ClassSpec) {
	if err := vm.defineLocked(spec); err != nil {
		panic(err)
	}
}

func (vm *VM) bootstrap() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.must(ClassSpec{Name: "java/lang/Object", Methods: objectMethods()})
	vm.must(ClassSpec{Name: "java/lang/Class", Methods: classMethods()})
	object := vm.classes["java/lang/Object"]
	object.obj = vm.allocLocked(vm.classes["java/lang/Class"])
	object.obj.meta = object
	vm.must(ClassSpec{Name: "java/lang/String", Methods: stringMethods()})
	vm.must(ClassSpec{Name: "java/lang/System", Methods: systemMethods()})

	vm.defineThrowables()
	vm.defineBoxes()
	vm.defineCollections()
	vm.defineBuffers()
}

// helpers for built-in method bodies

func (e *Env) slotOf(o *object, name string) slot {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	for k := o.class; k != nil; k = k.super {
		if f, ok := k.fields[name]; ok && !f.static {
			return o.get(f)
		}
	}
	return slot{}
}

func (e *Env) setSlot(o *object, name string, s slot) {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	for k := o.class; k != nil; k = k.super {
		if f, ok := k.fields[name]; ok && !f.static {
			o.set(f, s)
			return
		}
	}
}

func (e *Env) goString(o *object) string {
	if o == nil {
		return "null"
	}
	return string(utf16.Decode(o.str))
}

func (e *Env) stringValue(s string) host.Value {
	return host.RefValue(host.Ref(e.NewStringUTF(s)))
}

func (e *Env) objectValue(o *object) host.Value {
	return host.RefValue(e.newLocal(o))
}

// objEquals calls a.equals(b) with virtual dispatch.
func (e *Env) objEquals(a, b *object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	e.vm.mu.Lock()
	m := findMethod(a.class, "equals", "(Ljava/lang/Object;)Z", false)
	if m != nil {
		m = dispatch(a.class, m)
	}
	e.vm.mu.Unlock()
	if m == nil {
		return false
	}
	ra, rb := e.newLocal(a), e.newLocal(b)
	defer e.DeleteLocalRef(ra)
	defer e.DeleteLocalRef(rb)
	return e.invoke(m, ra, []host.Value{host.RefValue(rb)}).Bool()
}

// objHash calls o.hashCode() with virtual dispatch.
func (e *Env) objHash(o *object) int32 {
	if o == nil {
		return 0
	}
	e.vm.mu.Lock()
	m := dispatch(o.class, findMethod(o.class, "hashCode", "()I", false))
	e.vm.mu.Unlock()
	r := e.newLocal(o)
	defer e.DeleteLocalRef(r)
	return e.invoke(m, r, nil).Int()
}

func identityHash(o *object) int32 {
	return int32(o.id*0x9E3779B1>>7) & math.MaxInt32
}

func objectMethods() []MethodSpec {
	return []MethodSpec{
		{Name: "<init>", Descriptor: "()V", Impl: impl(func(*Env, *object, host.Ref, []host.Value) host.Value {
			return 0
		})},
		{Name: "equals", Descriptor: "(Ljava/lang/Object;)Z", Impl: impl(func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
			return host.BooleanValue(self == e.deref(args[0].Ref()))
		})},
		{Name: "hashCode", Descriptor: "()I", Impl: impl(func(_ *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return host.IntValue(identityHash(self))
		})},
		{Name: "toString", Descriptor: "()Ljava/lang/String;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return e.stringValue(fmt.Sprintf("%s@%x", self.class.dotted(), e.objHash(self)))
		})},
		{Name: "getClass", Descriptor: "()Ljava/lang/Class;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return e.objectValue(self.class.obj)
		})},
	}
}

func classMethods() []MethodSpec {
	return []MethodSpec{
		{Name: "getName", Descriptor: "()Ljava/lang/String;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return e.stringValue(self.meta.dotted())
		})},
		{Name: "isInterface", Descriptor: "()Z", Impl: impl(func(_ *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return host.BooleanValue(self.meta.iface)
		})},
	}
}

func stringMethods() []MethodSpec {
	return []MethodSpec{
		{Name: "<init>", Descriptor: "()V", Impl: impl(func(*Env, *object, host.Ref, []host.Value) host.Value {
			return 0
		})},
		{Name: "length", Descriptor: "()I", Impl: impl(func(_ *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return host.IntValue(int32(len(self.str)))
		})},
		{Name: "isEmpty", Descriptor: "()Z", Impl: impl(func(_ *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return host.BooleanValue(len(self.str) == 0)
		})},
		{Name: "charAt", Descriptor: "(I)C", Impl: impl(func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
			i := args[0].Int()
			if i < 0 || int(i) >= len(self.str) {
				e.throw("java/lang/StringIndexOutOfBoundsException", "index %d, length %d", i, len(self.str))
				return 0
			}
			return host.CharValue(self.str[i])
		})},
		{Name: "equals", Descriptor: "(Ljava/lang/Object;)Z", Impl: impl(func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
			other := e.deref(args[0].Ref())
			if other == nil || other.class != self.class || len(other.str) != len(self.str) {
				return host.BooleanValue(false)
			}
			for i := range self.str {
				if self.str[i] != other.str[i] {
					return host.BooleanValue(false)
				}
			}
			return host.BooleanValue(true)
		})},
		{Name: "hashCode", Descriptor: "()I", Impl: impl(func(_ *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			var h int32
			for _, c := range self.str {
				h = 31*h + int32(c)
			}
			return host.IntValue(h)
		})},
		{Name: "toString", Descriptor: "()Ljava/lang/String;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return e.objectValue(self)
		})},
		{Name: "concat", Descriptor: "(Ljava/lang/String;)Ljava/lang/String;", Impl: impl(func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
			other, ok := e.stringOf(host.String(args[0].Ref()))
			if !ok {
				return 0
			}
			chars := make([]uint16, 0, len(self.str)+len(other))
			chars = append(append(chars, self.str...), other...)
			return host.RefValue(host.Ref(e.NewString(chars)))
		})},
	}
}

func systemMethods() []MethodSpec {
	return []MethodSpec{
		{Name: "gc", Descriptor: "()V", Static: true, Impl: impl(func(e *Env, _ *object, _ host.Ref, _ []host.Value) host.Value {
			e.vm.GC()
			return 0
		})},
		{Name: "identityHashCode", Descriptor: "(Ljava/lang/Object;)I", Static: true, Impl: impl(func(e *Env, _ *object, _ host.Ref, args []host.Value) host.Value {
			o := e.deref(args[0].Ref())
			if o == nil {
				return host.IntValue(0)
			}
			return host.IntValue(identityHash(o))
		})},
	}
}

func throwableCtors() []MethodSpec {
	return []MethodSpec{
		{Name: "<init>", Descriptor: "()V", Impl: impl(func(*Env, *object, host.Ref, []host.Value) host.Value {
			return 0
		})},
		{Name: "<init>", Descriptor: "(Ljava/lang/String;)V", Impl: impl(func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
			e.setSlot(self, "detailMessage", slot{ref: e.deref(args[0].Ref())})
			return 0
		})},
		{Name: "<init>", Descriptor: "(Ljava/lang/String;Ljava/lang/Throwable;)V", Impl: impl(func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
			e.setSlot(self, "detailMessage", slot{ref: e.deref(args[0].Ref())})
			e.setSlot(self, "cause", slot{ref: e.deref(args[1].Ref())})
			return 0
		})},
	}
}

var throwables = [][2]string{
	{"java/lang/Exception", "java/lang/Throwable"},
	{"java/lang/Error", "java/lang/Throwable"},
	{"java/lang/RuntimeException", "java/lang/Exception"},
	{"java/lang/InstantiationException", "java/lang/Exception"},
	{"java/lang/IllegalArgumentException", "java/lang/RuntimeException"},
	{"java/lang/IllegalStateException", "java/lang/RuntimeException"},
	{"java/lang/IllegalMonitorStateException", "java/lang/RuntimeException"},
	{"java/lang/NullPointerException", "java/lang/RuntimeException"},
	{"java/lang/ClassCastException", "java/lang/RuntimeException"},
	{"java/lang/ArrayStoreException", "java/lang/RuntimeException"},
	{"java/lang/NegativeArraySizeException", "java/lang/RuntimeException"},
	{"java/lang/ArithmeticException", "java/lang/RuntimeException"},
	{"java/lang/UnsupportedOperationException", "java/lang/RuntimeException"},
	{"java/lang/IndexOutOfBoundsException", "java/lang/RuntimeException"},
	{"java/lang/ArrayIndexOutOfBoundsException", "java/lang/IndexOutOfBoundsException"},
	{"java/lang/StringIndexOutOfBoundsException", "java/lang/IndexOutOfBoundsException"},
	{"java/util/NoSuchElementException", "java/lang/RuntimeException"},
	{"java/lang/VirtualMachineError", "java/lang/Error"},
	{"java/lang/OutOfMemoryError", "java/lang/VirtualMachineError"},
	{"java/lang/LinkageError", "java/lang/Error"},
	{"java/lang/NoClassDefFoundError", "java/lang/LinkageError"},
	{"java/lang/UnsatisfiedLinkError", "java/lang/LinkageError"},
	{"java/lang/IncompatibleClassChangeError", "java/lang/LinkageError"},
	{"java/lang/NoSuchFieldError", "java/lang/IncompatibleClassChangeError"},
	{"java/lang/NoSuchMethodError", "java/lang/IncompatibleClassChangeError"},
	{"java/lang/AbstractMethodError", "java/lang/IncompatibleClassChangeError"},
}

func (vm *VM) defineThrowables() {
	methods := append(throwableCtors(),
		MethodSpec{Name: "getMessage", Descriptor: "()Ljava/lang/String;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return e.objectValue(e.slotOf(self, "detailMessage").ref)
		})},
		MethodSpec{Name: "getCause", Descriptor: "()Ljava/lang/Throwable;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return e.objectValue(e.slotOf(self, "cause").ref)
		})},
		MethodSpec{Name: "toString", Descriptor: "()Ljava/lang/String;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			msg := e.slotOf(self, "detailMessage").ref
			if msg == nil {
				return e.stringValue(self.class.dotted())
			}
			return e.stringValue(self.class.dotted() + ": " + e.goString(msg))
		})},
	)
	vm.must(ClassSpec{
		Name: "java/lang/Throwable",
		Fields: []FieldSpec{
			{Name: "detailMessage", Descriptor: "Ljava/lang/String;"},
			{Name: "cause", Descriptor: "Ljava/lang/Throwable;"},
		},
		Methods: methods,
	})
	for _, t := range throwables {
		vm.must(ClassSpec{Name: t[0], Super: t[1], Methods: throwableCtors()})
	}
}

type box struct {
	name     string
	desc     string
	accessor string
	number   bool
	hash     func(host.Value) int32
	format   func(host.Value) string
}

var boxes = []box{
	{"java/lang/Boolean", "Z", "booleanValue", false,
		func(v host.Value) int32 {
			if v.Bool() {
				return 1231
			}
			return 1237
		},
		func(v host.Value) string { return strconv.FormatBool(v.Bool()) }},
	{"java/lang/Character", "C", "charValue", false,
		func(v host.Value) int32 { return int32(v.Char()) },
		func(v host.Value) string { return string(utf16.Decode([]uint16{v.Char()})) }},
	{"java/lang/Byte", "B", "byteValue", true,
		func(v host.Value) int32 { return int32(v.Byte()) },
		func(v host.Value) string { return strconv.Itoa(int(v.Byte())) }},
	{"java/lang/Short", "S", "shortValue", true,
		func(v host.Value) int32 { return int32(v.Short()) },
		func(v host.Value) string { return strconv.Itoa(int(v.Short())) }},
	{"java/lang/Integer", "I", "intValue", true,
		func(v host.Value) int32 { return v.Int() },
		func(v host.Value) string { return strconv.Itoa(int(v.Int())) }},
	{"java/lang/Long", "J", "longValue", true,
		func(v host.Value) int32 { return int32(v.Long() ^ int64(uint64(v.Long())>>32)) },
		func(v host.Value) string { return strconv.FormatInt(v.Long(), 10) }},
	{"java/lang/Float", "F", "floatValue", true,
		func(v host.Value) int32 { return int32(math.Float32bits(v.Float())) },
		func(v host.Value) string { return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32) }},
	{"java/lang/Double", "D", "doubleValue", true,
		func(v host.Value) int32 {
			bits := math.Float64bits(v.Double())
			return int32(bits ^ bits>>32)
		},
		func(v host.Value) string { return strconv.FormatFloat(v.Double(), 'g', -1, 64) }},
}

func (vm *VM) defineBoxes() {
	vm.must(ClassSpec{Name: "java/lang/Number", Abstract: true})
	for _, b := range boxes {
		super := "java/lang/Object"
		if b.number {
			super = "java/lang/Number"
		}
		vm.must(ClassSpec{
			Name:   b.name,
			Super:  super,
			Fields: []FieldSpec{{Name: "value", Descriptor: b.desc}},
			Methods: []MethodSpec{
				{Name: "<init>", Descriptor: "(" + b.desc + ")V", Impl: impl(func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
					e.setSlot(self, "value", slot{prim: args[0]})
					return 0
				})},
				{Name: b.accessor, Descriptor: "()" + b.desc, Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
					return e.slotOf(self, "value").prim
				})},
				{Name: "valueOf", Descriptor: "(" + b.desc + ")L" + b.name + ";", Static: true, Impl: impl(func(e *Env, _ *object, _ host.Ref, args []host.Value) host.Value {
					e.vm.mu.Lock()
					o := e.vm.allocLocked(e.vm.classes[b.name])
					e.vm.mu.Unlock()
					e.setSlot(o, "value", slot{prim: args[0]})
					return e.objectValue(o)
				})},
				{Name: "equals", Descriptor: "(Ljava/lang/Object;)Z", Impl: impl(func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
					other := e.deref(args[0].Ref())
					if other == nil || other.class != self.class {
						return host.BooleanValue(false)
					}
					return host.BooleanValue(e.slotOf(self, "value").prim == e.slotOf(other, "value").prim)
				})},
				{Name: "hashCode", Descriptor: "()I", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
					return host.IntValue(b.hash(e.slotOf(self, "value").prim))
				})},
				{Name: "toString", Descriptor: "()Ljava/lang/String;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
					return e.stringValue(b.format(e.slotOf(self, "value").prim))
				})},
			},
		})
	}
}

func (vm *VM) defineBuffers() {
	vm.must(ClassSpec{Name: "java/nio/Buffer", Abstract: true})
	vm.must(ClassSpec{Name: "java/nio/ByteBuffer", Super: "java/nio/Buffer", Abstract: true})
	vm.must(ClassSpec{
		Name:  "java/nio/DirectByteBuffer",
		Super: "java/nio/ByteBuffer",
		Methods: []MethodSpec{
			{Name: "capacity", Descriptor: "()I", Impl: impl(func(_ *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
				return host.IntValue(int32(len(self.direct)))
			})},
			{Name: "get", Descriptor: "(I)B", Impl: impl(func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
				i := args[0].Int()
				if i < 0 || int(i) >= len(self.direct) {
					e.throw("java/lang/IndexOutOfBoundsException", "index %d", i)
					return 0
				}
				return host.ByteValue(int8(self.direct[i]))
			})},
			{Name: "put", Descriptor: "(IB)Ljava/nio/ByteBuffer;", Impl: impl(func(e *Env, self *object, recv host.Ref, args []host.Value) host.Value {
				i := args[0].Int()
				if i < 0 || int(i) >= len(self.direct) {
					e.throw("java/lang/IndexOutOfBoundsException", "index %d", i)
					return 0
				}
				self.direct[i] = byte(args[1].Byte())
				return host.RefValue(e.NewLocalRef(recv))
			})},
		},
	})
}
