package memhost

import (
	"reflect"

	"github.com/wippyai/go-jni/host"
)

type object struct {
	id     uint64
	class  *class
	fields map[*field]slot
	str    []uint16 // java/lang/String
	array  any      // primitive slice or []*object
	meta   *class   // java/lang/Class
	direct []byte   // direct byte buffers
	native traced   // built-in collection state

	// monitor
	owner int64
	depth int
}

type slot struct {
	prim host.Value
	ref  *object
}

// traced is implemented by native payloads that hold object pointers.
type traced interface {
	trace(mark func(*object))
}

func (vm *VM) allocLocked(c *class) *object {
	vm.nextID++
	return &object{id: vm.nextID, class: c}
}

func (o *object) get(f *field) slot {
	if o.fields == nil {
		return slot{}
	}
	return o.fields[f]
}

func (o *object) set(f *field, s slot) {
	if o.fields == nil {
		o.fields = make(map[*field]slot)
	}
	o.fields[f] = s
}

func (o *object) length() int {
	switch a := o.array.(type) {
	case nil:
		return -1
	case []*object:
		return len(a)
	default:
		return reflect.ValueOf(a).Len()
	}
}

func (o *object) trace(mark func(*object)) {
	for _, s := range o.fields {
		if s.ref != nil {
			mark(s.ref)
		}
	}
	if elems, ok := o.array.([]*object); ok {
		for _, e := range elems {
			if e != nil {
				mark(e)
			}
		}
	}
	if o.native != nil {
		o.native.trace(mark)
	}
}

func newPrimitiveData(k host.Kind, n int) any {
	switch k {
	case host.KindBoolean:
		return make([]host.Boolean, n)
	case host.KindByte:
		return make([]int8, n)
	case host.KindChar:
		return make([]uint16, n)
	case host.KindShort:
		return make([]int16, n)
	case host.KindInt:
		return make([]int32, n)
	case host.KindLong:
		return make([]int64, n)
	case host.KindFloat:
		return make([]float32, n)
	case host.KindDouble:
		return make([]float64, n)
	}
	return nil
}
