package collections

import (
	"reflect"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/marshal"
	"github.com/wippyai/go-jni/ref"
	"github.com/wippyai/go-jni/signature"
)

// MapDescriptor is the descriptor Go maps are passed as.
const MapDescriptor signature.Descriptor = "Ljava/util/Map;"

// MapTrait marshals map[K]V as a java/util/Map. Maps are built as
// java/util/HashMap; any Map implementation is accepted when reading.
type MapTrait[K comparable, V any] struct {
	key, val element
}

// NewMapTrait returns the trait of map[K]V. K and V must have traits.
func NewMapTrait[K comparable, V any]() (*MapTrait[K, V], error) {
	key, err := elementOf[K]()
	if err != nil {
		return nil, err
	}
	val, err := elementOf[V]()
	if err != nil {
		return nil, err
	}
	return &MapTrait[K, V]{key: key, val: val}, nil
}

// RegisterMap installs the trait of map[K]V so that maps can be used as
// field, argument and result types.
func RegisterMap[K comparable, V any]() error {
	tr, err := NewMapTrait[K, V]()
	if err != nil {
		return err
	}
	marshal.Register[map[K]V](tr)
	return nil
}

func (*MapTrait[K, V]) Descriptor() signature.Descriptor { return MapDescriptor }
func (*MapTrait[K, V]) Kind() host.Kind                  { return host.KindObject }
func (*MapTrait[K, V]) Temporary() bool                  { return true }

// FromNative builds a host map holding the entries of v. A nil map yields
// null.
func (t *MapTrait[K, V]) FromNative(env host.Env, v map[K]V) (host.Value, error) {
	if v == nil {
		return 0, nil
	}
	m, err := members(env)
	if err != nil {
		return 0, err
	}
	obj, err := m.newMap.New(env)
	if err != nil {
		return 0, err
	}
	for k, x := range v {
		if err := t.put(env, m, obj, k, x); err != nil {
			obj.Release()
			return 0, err
		}
	}
	return host.RefValue(obj.Take()), nil
}

func (t *MapTrait[K, V]) put(env host.Env, m *utilMembers, obj *ref.Local, k K, v V) error {
	kr, releaseKey, err := t.key.encode(env, m, reflect.ValueOf(&k).Elem())
	if err != nil {
		return err
	}
	defer releaseKey()
	vr, releaseVal, err := t.val.encode(env, m, reflect.ValueOf(&v).Elem())
	if err != nil {
		return err
	}
	defer releaseVal()

	old, err := m.put.Call(env, obj, kr, vr)
	if err != nil {
		return err
	}
	if r := old.(host.Ref); r != 0 {
		env.DeleteLocalRef(r)
	}
	return nil
}

// ToNative copies the entries of a host map. Null yields a nil map.
func (t *MapTrait[K, V]) ToNative(env host.Env, w host.Value) (map[K]V, error) {
	obj := w.Ref()
	if obj == 0 {
		return nil, nil
	}
	m, err := members(env)
	if err != nil {
		return nil, err
	}
	n, err := m.size.Call(env, ref.Raw(obj))
	if err != nil {
		return nil, err
	}
	set, err := m.entrySet.Call(env, ref.Raw(obj))
	if err != nil {
		return nil, err
	}
	entries := ref.NewLocal(env, host.Ref(set.(setIface)))
	defer entries.Release()

	out := make(map[K]V, n.(int32))
	err = each(env, m, entries.Ref(), func(r host.Ref) error {
		e := ref.NewLocal(env, r)
		defer e.Release()
		k, err := t.decodeEntry(env, m, e, m.getKey.Call, t.key)
		if err != nil {
			return err
		}
		v, err := t.decodeEntry(env, m, e, m.getValue.Call, t.val)
		if err != nil {
			return err
		}
		out[k.Interface().(K)] = v.Interface().(V)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *MapTrait[K, V]) decodeEntry(env host.Env, m *utilMembers, e *ref.Local,
	get func(host.Env, ref.Handle, ...any) (any, error), el element) (reflect.Value, error) {
	res, err := get(env, e)
	if err != nil {
		return reflect.Value{}, err
	}
	r, ok := res.(host.Ref)
	if !ok {
		return reflect.Value{}, errors.TypeMismatch(errors.PhaseDecode, nil, reflect.TypeOf(res).String(), "Ljava/lang/Object;")
	}
	return el.decode(env, m, r)
}

// FromMap creates a host map holding the entries of v.
func FromMap[K comparable, V any](env host.Env, v map[K]V) (*ref.Local, error) {
	tr, err := NewMapTrait[K, V]()
	if err != nil {
		return nil, err
	}
	w, err := tr.FromNative(env, v)
	if err != nil {
		return nil, err
	}
	return ref.NewLocal(env, w.Ref()), nil
}

// ToMap copies the entries of the host map h.
func ToMap[K comparable, V any](env host.Env, h ref.Handle) (map[K]V, error) {
	tr, err := NewMapTrait[K, V]()
	if err != nil {
		return nil, err
	}
	var r host.Ref
	if h != nil {
		r = h.Ref()
	}
	return tr.ToNative(env, host.RefValue(r))
}
