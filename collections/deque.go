package collections

import (
	"reflect"

	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/marshal"
	"github.com/wippyai/go-jni/ref"
	"github.com/wippyai/go-jni/signature"
)

// DequeDescriptor is the descriptor deques are passed as.
const DequeDescriptor signature.Descriptor = "Ljava/util/Deque;"

// Deque is a double-ended queue passed to the host as a java/util/Deque.
// Index 0 is the head.
type Deque[T any] []T

// PushFront adds v at the head.
func (d *Deque[T]) PushFront(v T) { *d = append(Deque[T]{v}, *d...) }

// PushBack adds v at the tail.
func (d *Deque[T]) PushBack(v T) { *d = append(*d, v) }

// PopFront removes and returns the head.
func (d *Deque[T]) PopFront() (T, bool) {
	var zero T
	if len(*d) == 0 {
		return zero, false
	}
	v := (*d)[0]
	*d = (*d)[1:]
	return v, true
}

// PopBack removes and returns the tail.
func (d *Deque[T]) PopBack() (T, bool) {
	var zero T
	n := len(*d)
	if n == 0 {
		return zero, false
	}
	v := (*d)[n-1]
	*d = (*d)[:n-1]
	return v, true
}

// DequeTrait marshals Deque[T] as a java/util/Deque. Deques are built as
// java/util/ArrayDeque, which rejects null elements.
type DequeTrait[T any] struct {
	elem element
}

// NewDequeTrait returns the trait of Deque[T].
func NewDequeTrait[T any]() (*DequeTrait[T], error) {
	elem, err := elementOf[T]()
	if err != nil {
		return nil, err
	}
	return &DequeTrait[T]{elem: elem}, nil
}

// RegisterDeque installs the trait of Deque[T].
func RegisterDeque[T any]() error {
	tr, err := NewDequeTrait[T]()
	if err != nil {
		return err
	}
	marshal.Register[Deque[T]](tr)
	return nil
}

func (*DequeTrait[T]) Descriptor() signature.Descriptor { return DequeDescriptor }
func (*DequeTrait[T]) Kind() host.Kind                  { return host.KindObject }
func (*DequeTrait[T]) Temporary() bool                  { return true }

// FromNative builds a host deque holding the elements of v from head to
// tail. A nil deque yields null.
func (t *DequeTrait[T]) FromNative(env host.Env, v Deque[T]) (host.Value, error) {
	if v == nil {
		return 0, nil
	}
	m, err := members(env)
	if err != nil {
		return 0, err
	}
	obj, err := m.newDeque.New(env)
	if err != nil {
		return 0, err
	}
	for i := range v {
		if err := t.add(env, m, obj, reflect.ValueOf(&v[i]).Elem()); err != nil {
			obj.Release()
			return 0, err
		}
	}
	return host.RefValue(obj.Take()), nil
}

func (t *DequeTrait[T]) add(env host.Env, m *utilMembers, obj *ref.Local, v reflect.Value) error {
	r, release, err := t.elem.encode(env, m, v)
	if err != nil {
		return err
	}
	defer release()
	_, err = m.addLast.Call(env, obj, r)
	return err
}

// ToNative copies the elements of a host deque from head to tail. Null
// yields a nil deque.
func (t *DequeTrait[T]) ToNative(env host.Env, w host.Value) (Deque[T], error) {
	obj := w.Ref()
	if obj == 0 {
		return nil, nil
	}
	m, err := members(env)
	if err != nil {
		return nil, err
	}
	out := Deque[T]{}
	err = each(env, m, obj, func(r host.Ref) error {
		v, err := t.elem.decode(env, m, r)
		if err != nil {
			return err
		}
		out = append(out, v.Interface().(T))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FromDeque creates a host deque holding the elements of v.
func FromDeque[T any](env host.Env, v Deque[T]) (*ref.Local, error) {
	tr, err := NewDequeTrait[T]()
	if err != nil {
		return nil, err
	}
	w, err := tr.FromNative(env, v)
	if err != nil {
		return nil, err
	}
	return ref.NewLocal(env, w.Ref()), nil
}

// ToDeque copies the elements of the host deque h.
func ToDeque[T any](env host.Env, h ref.Handle) (Deque[T], error) {
	tr, err := NewDequeTrait[T]()
	if err != nil {
		return nil, err
	}
	var r host.Ref
	if h != nil {
		r = h.Ref()
	}
	return tr.ToNative(env, host.RefValue(r))
}
