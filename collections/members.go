package collections

import (
	"sync"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/member"
	"github.com/wippyai/go-jni/ref"
)

type (
	hashMap    host.Ref
	mapIface   host.Ref
	setIface   host.Ref
	iterable   host.Ref
	iterator   host.Ref
	entry      host.Ref
	arrayDeque host.Ref
	dequeIface host.Ref
)

func (hashMap) ClassName() string    { return "java/util/HashMap" }
func (mapIface) ClassName() string   { return "java/util/Map" }
func (setIface) ClassName() string   { return "java/util/Set" }
func (iterable) ClassName() string   { return "java/lang/Iterable" }
func (iterator) ClassName() string   { return "java/util/Iterator" }
func (entry) ClassName() string      { return "java/util/Map$Entry" }
func (arrayDeque) ClassName() string { return "java/util/ArrayDeque" }
func (dequeIface) ClassName() string { return "java/util/Deque" }

// utilMembers are the java/util members the traits are built on, resolved
// once per VM.
type utilMembers struct {
	newMap   *member.Constructor[hashMap, func()]
	put      *member.Method[mapIface, func(host.Ref, host.Ref) host.Ref]
	size     *member.Method[mapIface, func() int32]
	entrySet *member.Method[mapIface, func() setIface]
	iterator *member.Method[iterable, func() iterator]
	hasNext  *member.Method[iterator, func() bool]
	next     *member.Method[iterator, func() host.Ref]
	getKey   *member.Method[entry, func() host.Ref]
	getValue *member.Method[entry, func() host.Ref]
	newDeque *member.Constructor[arrayDeque, func()]
	addLast  *member.Method[dequeIface, func(host.Ref)]
	boxes    map[host.Kind]*boxing
}

var resolved sync.Map // host.VM -> *utilMembers

func members(env host.Env) (*utilMembers, error) {
	vm := env.VM()
	if m, ok := resolved.Load(vm); ok {
		return m.(*utilMembers), nil
	}
	m, err := resolveMembers(env)
	if err != nil {
		return nil, err
	}
	actual, _ := resolved.LoadOrStore(vm, m)
	return actual.(*utilMembers), nil
}

func resolveMembers(env host.Env) (m *utilMembers, err error) {
	m = &utilMembers{boxes: make(map[host.Kind]*boxing, len(boxClasses))}
	if m.newMap, err = member.ResolveConstructor[hashMap, func()](env); err != nil {
		return nil, err
	}
	if m.put, err = member.ResolveMethod[mapIface, func(host.Ref, host.Ref) host.Ref](env, "put"); err != nil {
		return nil, err
	}
	if m.size, err = member.ResolveMethod[mapIface, func() int32](env, "size"); err != nil {
		return nil, err
	}
	if m.entrySet, err = member.ResolveMethod[mapIface, func() setIface](env, "entrySet"); err != nil {
		return nil, err
	}
	if m.iterator, err = member.ResolveMethod[iterable, func() iterator](env, "iterator"); err != nil {
		return nil, err
	}
	if m.hasNext, err = member.ResolveMethod[iterator, func() bool](env, "hasNext"); err != nil {
		return nil, err
	}
	if m.next, err = member.ResolveMethod[iterator, func() host.Ref](env, "next"); err != nil {
		return nil, err
	}
	if m.getKey, err = member.ResolveMethod[entry, func() host.Ref](env, "getKey"); err != nil {
		return nil, err
	}
	if m.getValue, err = member.ResolveMethod[entry, func() host.Ref](env, "getValue"); err != nil {
		return nil, err
	}
	if m.newDeque, err = member.ResolveConstructor[arrayDeque, func()](env); err != nil {
		return nil, err
	}
	if m.addLast, err = member.ResolveMethod[dequeIface, func(host.Ref)](env, "addLast"); err != nil {
		return nil, err
	}
	for k, b := range boxClasses {
		if m.boxes[k], err = resolveBox(env, k, b); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// boxing converts a primitive wire value to its java/lang box object and
// back.
type boxing struct {
	kind    host.Kind
	class   *ref.Global
	valueOf host.MethodID
	value   host.MethodID
}

type boxClass struct {
	name     string
	accessor string
}

var boxClasses = map[host.Kind]boxClass{
	host.KindBoolean: {"java/lang/Boolean", "booleanValue"},
	host.KindByte:    {"java/lang/Byte", "byteValue"},
	host.KindChar:    {"java/lang/Character", "charValue"},
	host.KindShort:   {"java/lang/Short", "shortValue"},
	host.KindInt:     {"java/lang/Integer", "intValue"},
	host.KindLong:    {"java/lang/Long", "longValue"},
	host.KindFloat:   {"java/lang/Float", "floatValue"},
	host.KindDouble:  {"java/lang/Double", "doubleValue"},
}

func resolveBox(env host.Env, k host.Kind, b boxClass) (*boxing, error) {
	class, err := member.Class(env, b.name)
	if err != nil {
		return nil, err
	}
	c := host.Class(class.Ref())
	letter := string(k.Letter())

	valueOf := "(" + letter + ")L" + b.name + ";"
	bx := &boxing{kind: k, class: class}
	if bx.valueOf = env.GetStaticMethodID(c, "valueOf", valueOf); bx.valueOf == 0 {
		return nil, missingMethod(env, b.name+".valueOf", valueOf)
	}
	accessor := "()" + letter
	if bx.value = env.GetMethodID(c, b.accessor, accessor); bx.value == 0 {
		return nil, missingMethod(env, b.name+"."+b.accessor, accessor)
	}
	return bx, nil
}

func missingMethod(env host.Env, name, desc string) error {
	var cause error
	if he, _ := exception.Catch(env); he != nil {
		he.Release()
		cause = he
	}
	return errors.Unresolved("method", name, desc, "java/lang/NoSuchMethodError", cause)
}

// box returns a new local reference to the box of w.
func (b *boxing) box(env host.Env, w host.Value) (host.Ref, error) {
	r := env.CallStatic(host.Class(b.class.Ref()), b.valueOf, host.KindObject, []host.Value{w}).Ref()
	if err := exception.Check(env); err != nil {
		return 0, err
	}
	return r, nil
}

// unbox returns the primitive held by the box r.
func (b *boxing) unbox(env host.Env, r host.Ref) (host.Value, error) {
	w := env.Call(r, b.value, b.kind, nil)
	if err := exception.Check(env); err != nil {
		return 0, err
	}
	return w, nil
}
