package memhost

import (
	"github.com/wippyai/go-jni/host"
)

type hashMap struct {
	nodes []*object // java/util/HashMap$Node, insertion ordered
}

func (m *hashMap) trace(mark func(*object)) {
	for _, n := range m.nodes {
		mark(n)
	}
}

type entrySet struct {
	m *object
}

func (s *entrySet) trace(mark func(*object)) { mark(s.m) }

type snapshot struct {
	items []*object
	pos   int
}

func (s *snapshot) trace(mark func(*object)) {
	for _, o := range s.items[s.pos:] {
		if o != nil {
			mark(o)
		}
	}
}

type deque struct {
	items []*object
}

func (d *deque) trace(mark func(*object)) {
	for _, o := range d.items {
		mark(o)
	}
}

func abstract(name, desc string) MethodSpec {
	return MethodSpec{Name: name, Descriptor: desc}
}

func (vm *VM) defineCollections() {
	vm.must(ClassSpec{Name: "java/lang/Iterable", Interface: true, Methods: []MethodSpec{
		abstract("iterator", "()Ljava/util/Iterator;"),
	}})
	vm.must(ClassSpec{Name: "java/util/Iterator", Interface: true, Methods: []MethodSpec{
		abstract("hasNext", "()Z"),
		abstract("next", "()Ljava/lang/Object;"),
	}})
	vm.must(ClassSpec{Name: "java/util/Collection", Interface: true, Interfaces: []string{"java/lang/Iterable"}, Methods: []MethodSpec{
		abstract("size", "()I"),
		abstract("isEmpty", "()Z"),
		abstract("add", "(Ljava/lang/Object;)Z"),
	}})
	vm.must(ClassSpec{Name: "java/util/Set", Interface: true, Interfaces: []string{"java/util/Collection"}})
	vm.must(ClassSpec{Name: "java/util/Queue", Interface: true, Interfaces: []string{"java/util/Collection"}, Methods: []MethodSpec{
		abstract("offer", "(Ljava/lang/Object;)Z"),
		abstract("poll", "()Ljava/lang/Object;"),
		abstract("peek", "()Ljava/lang/Object;"),
	}})
	vm.must(ClassSpec{Name: "java/util/Deque", Interface: true, Interfaces: []string{"java/util/Queue"}, Methods: []MethodSpec{
		abstract("addFirst", "(Ljava/lang/Object;)V"),
		abstract("addLast", "(Ljava/lang/Object;)V"),
		abstract("pollFirst", "()Ljava/lang/Object;"),
		abstract("pollLast", "()Ljava/lang/Object;"),
		abstract("peekFirst", "()Ljava/lang/Object;"),
		abstract("peekLast", "()Ljava/lang/Object;"),
	}})
	vm.must(ClassSpec{Name: "java/util/Map", Interface: true, Methods: []MethodSpec{
		abstract("size", "()I"),
		abstract("isEmpty", "()Z"),
		abstract("get", "(Ljava/lang/Object;)Ljava/lang/Object;"),
		abstract("put", "(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;"),
		abstract("remove", "(Ljava/lang/Object;)Ljava/lang/Object;"),
		abstract("containsKey", "(Ljava/lang/Object;)Z"),
		abstract("entrySet", "()Ljava/util/Set;"),
	}})
	vm.must(ClassSpec{Name: "java/util/Map$Entry", Interface: true, Methods: []MethodSpec{
		abstract("getKey", "()Ljava/lang/Object;"),
		abstract("getValue", "()Ljava/lang/Object;"),
	}})

	for _, name := range []string{"java/util/HashMap$EntryIterator", "java/util/ArrayDeque$DeqIterator"} {
		vm.must(ClassSpec{Name: name, Interfaces: []string{"java/util/Iterator"}, Methods: iteratorMethods()})
	}
	vm.must(ClassSpec{
		Name:       "java/util/HashMap$Node",
		Interfaces: []string{"java/util/Map$Entry"},
		Fields: []FieldSpec{
			{Name: "key", Descriptor: "Ljava/lang/Object;"},
			{Name: "value", Descriptor: "Ljava/lang/Object;"},
		},
		Methods: []MethodSpec{
			{Name: "getKey", Descriptor: "()Ljava/lang/Object;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
				return e.objectValue(e.slotOf(self, "key").ref)
			})},
			{Name: "getValue", Descriptor: "()Ljava/lang/Object;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
				return e.objectValue(e.slotOf(self, "value").ref)
			})},
		},
	})
	vm.must(ClassSpec{Name: "java/util/HashMap$EntrySet", Interfaces: []string{"java/util/Set"}, Methods: entrySetMethods()})
	vm.must(ClassSpec{Name: "java/util/HashMap", Interfaces: []string{"java/util/Map"}, Methods: hashMapMethods()})
	vm.must(ClassSpec{Name: "java/util/ArrayDeque", Interfaces: []string{"java/util/Deque"}, Methods: dequeMethods()})
}

func (e *Env) newIterator(className string, items []*object) host.Value {
	e.vm.mu.Lock()
	it := e.vm.allocLocked(e.vm.classes[className])
	it.native = &snapshot{items: items}
	e.vm.mu.Unlock()
	return e.objectValue(it)
}

func iteratorMethods() []MethodSpec {
	return []MethodSpec{
		{Name: "hasNext", Descriptor: "()Z", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			e.vm.mu.Lock()
			defer e.vm.mu.Unlock()
			s := self.native.(*snapshot)
			return host.BooleanValue(s.pos < len(s.items))
		})},
		{Name: "next", Descriptor: "()Ljava/lang/Object;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			e.vm.mu.Lock()
			s := self.native.(*snapshot)
			if s.pos >= len(s.items) {
				e.vm.mu.Unlock()
				e.throw("java/util/NoSuchElementException", "")
				return 0
			}
			o := s.items[s.pos]
			s.pos++
			e.vm.mu.Unlock()
			return e.objectValue(o)
		})},
	}
}

// mapNodes returns a copy of the nodes of a HashMap.
func (e *Env) mapNodes(m *object) []*object {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	hm := m.native.(*hashMap)
	return append([]*object(nil), hm.nodes...)
}

func (e *Env) findNode(m, key *object) *object {
	for _, n := range e.mapNodes(m) {
		if e.objEquals(key, e.slotOf(n, "key").ref) {
			return n
		}
	}
	return nil
}

func hashMapMethods() []MethodSpec {
	return []MethodSpec{
		{Name: "<init>", Descriptor: "()V", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			e.vm.mu.Lock()
			self.native = &hashMap{}
			e.vm.mu.Unlock()
			return 0
		})},
		{Name: "size", Descriptor: "()I", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return host.IntValue(int32(len(e.mapNodes(self))))
		})},
		{Name: "isEmpty", Descriptor: "()Z", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return host.BooleanValue(len(e.mapNodes(self)) == 0)
		})},
		{Name: "get", Descriptor: "(Ljava/lang/Object;)Ljava/lang/Object;", Impl: impl(func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
			n := e.findNode(self, e.deref(args[0].Ref()))
			if n == nil {
				return 0
			}
			return e.objectValue(e.slotOf(n, "value").ref)
		})},
		{Name: "containsKey", Descriptor: "(Ljava/lang/Object;)Z", Impl: impl(func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
			return host.BooleanValue(e.findNode(self, e.deref(args[0].Ref())) != nil)
		})},
		{Name: "put", Descriptor: "(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;", Impl: impl(func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
			key, val := e.deref(args[0].Ref()), e.deref(args[1].Ref())
			if n := e.findNode(self, key); n != nil {
				old := e.slotOf(n, "value").ref
				e.setSlot(n, "value", slot{ref: val})
				return e.objectValue(old)
			}
			e.vm.mu.Lock()
			n := e.vm.allocLocked(e.vm.classes["java/util/HashMap$Node"])
			hm := self.native.(*hashMap)
			hm.nodes = append(hm.nodes, n)
			e.vm.mu.Unlock()
			e.setSlot(n, "key", slot{ref: key})
			e.setSlot(n, "value", slot{ref: val})
			return 0
		})},
		{Name: "remove", Descriptor: "(Ljava/lang/Object;)Ljava/lang/Object;", Impl: impl(func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
			n := e.findNode(self, e.deref(args[0].Ref()))
			if n == nil {
				return 0
			}
			e.vm.mu.Lock()
			hm := self.native.(*hashMap)
			for i, x := range hm.nodes {
				if x == n {
					hm.nodes = append(hm.nodes[:i], hm.nodes[i+1:]...)
					break
				}
			}
			e.vm.mu.Unlock()
			return e.objectValue(e.slotOf(n, "value").ref)
		})},
		{Name: "entrySet", Descriptor: "()Ljava/util/Set;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			e.vm.mu.Lock()
			s := e.vm.allocLocked(e.vm.classes["java/util/HashMap$EntrySet"])
			s.native = &entrySet{m: self}
			e.vm.mu.Unlock()
			return e.objectValue(s)
		})},
	}
}

func entrySetMethods() []MethodSpec {
	backing := func(e *Env, self *object) *object {
		e.vm.mu.Lock()
		defer e.vm.mu.Unlock()
		return self.native.(*entrySet).m
	}
	return []MethodSpec{
		{Name: "size", Descriptor: "()I", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return host.IntValue(int32(len(e.mapNodes(backing(e, self)))))
		})},
		{Name: "isEmpty", Descriptor: "()Z", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return host.BooleanValue(len(e.mapNodes(backing(e, self))) == 0)
		})},
		{Name: "add", Descriptor: "(Ljava/lang/Object;)Z", Impl: impl(func(e *Env, _ *object, _ host.Ref, _ []host.Value) host.Value {
			e.throw("java/lang/UnsupportedOperationException", "")
			return 0
		})},
		{Name: "iterator", Descriptor: "()Ljava/util/Iterator;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return e.newIterator("java/util/HashMap$EntryIterator", e.mapNodes(backing(e, self)))
		})},
	}
}

func dequeMethods() []MethodSpec {
	push := func(first bool) implFunc {
		return func(e *Env, self *object, _ host.Ref, args []host.Value) host.Value {
			o := e.deref(args[0].Ref())
			if o == nil {
				e.throw("java/lang/NullPointerException", "ArrayDeque does not permit null elements")
				return 0
			}
			e.vm.mu.Lock()
			d := self.native.(*deque)
			if first {
				d.items = append([]*object{o}, d.items...)
			} else {
				d.items = append(d.items, o)
			}
			e.vm.mu.Unlock()
			return host.BooleanValue(true)
		}
	}
	take := func(first, remove bool) implFunc {
		return func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			e.vm.mu.Lock()
			d := self.native.(*deque)
			if len(d.items) == 0 {
				e.vm.mu.Unlock()
				return 0
			}
			i := len(d.items) - 1
			if first {
				i = 0
			}
			o := d.items[i]
			if remove {
				d.items = append(d.items[:i], d.items[i+1:]...)
			}
			e.vm.mu.Unlock()
			return e.objectValue(o)
		}
	}
	size := func(e *Env, self *object) int {
		e.vm.mu.Lock()
		defer e.vm.mu.Unlock()
		return len(self.native.(*deque).items)
	}

	return []MethodSpec{
		{Name: "<init>", Descriptor: "()V", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			e.vm.mu.Lock()
			self.native = &deque{}
			e.vm.mu.Unlock()
			return 0
		})},
		{Name: "add", Descriptor: "(Ljava/lang/Object;)Z", Impl: impl(push(false))},
		{Name: "offer", Descriptor: "(Ljava/lang/Object;)Z", Impl: impl(push(false))},
		{Name: "addFirst", Descriptor: "(Ljava/lang/Object;)V", Impl: impl(push(true))},
		{Name: "addLast", Descriptor: "(Ljava/lang/Object;)V", Impl: impl(push(false))},
		{Name: "poll", Descriptor: "()Ljava/lang/Object;", Impl: impl(take(true, true))},
		{Name: "pollFirst", Descriptor: "()Ljava/lang/Object;", Impl: impl(take(true, true))},
		{Name: "pollLast", Descriptor: "()Ljava/lang/Object;", Impl: impl(take(false, true))},
		{Name: "peek", Descriptor: "()Ljava/lang/Object;", Impl: impl(take(true, false))},
		{Name: "peekFirst", Descriptor: "()Ljava/lang/Object;", Impl: impl(take(true, false))},
		{Name: "peekLast", Descriptor: "()Ljava/lang/Object;", Impl: impl(take(false, false))},
		{Name: "size", Descriptor: "()I", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return host.IntValue(int32(size(e, self)))
		})},
		{Name: "isEmpty", Descriptor: "()Z", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			return host.BooleanValue(size(e, self) == 0)
		})},
		{Name: "iterator", Descriptor: "()Ljava/util/Iterator;", Impl: impl(func(e *Env, self *object, _ host.Ref, _ []host.Value) host.Value {
			e.vm.mu.Lock()
			items := append([]*object(nil), self.native.(*deque).items...)
			e.vm.mu.Unlock()
			return e.newIterator("java/util/ArrayDeque$DeqIterator", items)
		})},
	}
}
