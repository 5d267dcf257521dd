package collections

import (
	"reflect"

	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/marshal"
	"github.com/wippyai/go-jni/member"
	"github.com/wippyai/go-jni/ref"
)

// element moves one collection element between Go and the host. Primitive
// elements travel as box objects.
type element struct {
	c marshal.Codec
}

func elementOf[T any]() (element, error) {
	c, err := marshal.Lookup(reflect.TypeFor[T]())
	if err != nil {
		return element{}, err
	}
	return element{c: c}, nil
}

// encode returns an object reference for v and a func that releases it
// when it is a temporary.
func (e element) encode(env host.Env, m *utilMembers, v reflect.Value) (host.Ref, func(), error) {
	w, err := e.c.Encode(env, v)
	if err != nil {
		return 0, nil, err
	}
	if e.c.Kind() == host.KindObject {
		return w.Ref(), func() { marshal.Release(env, e.c, w) }, nil
	}
	r, err := m.boxes[e.c.Kind()].box(env, w)
	if err != nil {
		return 0, nil, err
	}
	return r, func() { env.DeleteLocalRef(r) }, nil
}

// decode converts the object r, a local reference owned by the caller.
// r is consumed unless the element type hands handles to the caller.
func (e element) decode(env host.Env, m *utilMembers, r host.Ref) (reflect.Value, error) {
	if e.c.Kind() == host.KindObject {
		w := host.RefValue(r)
		rv, err := e.c.Decode(env, w)
		marshal.Release(env, e.c, w)
		return rv, err
	}
	if r == 0 {
		return reflect.Zero(e.c.Type()), nil
	}
	w, err := m.boxes[e.c.Kind()].unbox(env, r)
	env.DeleteLocalRef(r)
	if err != nil {
		return reflect.Value{}, err
	}
	return e.c.Decode(env, w)
}

// each calls fn with every element of the host iterable it, as a local
// reference that fn consumes.
func each(env host.Env, m *utilMembers, obj host.Ref, fn func(r host.Ref) error) error {
	iter, err := member.Returns[iterator](m.iterator.Call(env, ref.Raw(obj)))
	if err != nil {
		return err
	}
	defer env.DeleteLocalRef(host.Ref(iter))

	for {
		more, err := member.Returns[bool](m.hasNext.Call(env, ref.Raw(iter)))
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		next, err := member.Returns[host.Ref](m.next.Call(env, ref.Raw(iter)))
		if err != nil {
			return err
		}
		if err := fn(next); err != nil {
			return err
		}
	}
}
