package memhost

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/go-jni/host"
)

func (e *Env) arrayOf(arr host.Ref) *object {
	o := e.deref(arr)
	if o == nil {
		e.throw("java/lang/NullPointerException", "null array")
		return nil
	}
	if o.array == nil {
		e.throw("java/lang/IllegalArgumentException", "%s is not an array", o.class.name)
		return nil
	}
	return o
}

func (e *Env) primitiveArrayOf(arr host.Ref, buf any) *object {
	o := e.arrayOf(arr)
	if o == nil {
		return nil
	}
	if _, isObj := o.array.([]*object); isObj || reflect.TypeOf(buf) != reflect.TypeOf(o.array) {
		e.throw("java/lang/IllegalArgumentException", "buffer %T does not match %s", buf, o.class.name)
		return nil
	}
	return o
}

// GetArrayLength implements host.Env.
func (e *Env) GetArrayLength(arr host.Ref) int32 {
	o := e.arrayOf(arr)
	if o == nil {
		return 0
	}
	return int32(o.length())
}

// NewPrimitiveArray implements host.Env.
func (e *Env) NewPrimitiveArray(k host.Kind, length int32) host.Ref {
	if !k.IsPrimitive() {
		e.throw("java/lang/IllegalArgumentException", "%s is not a primitive kind", k)
		return 0
	}
	if !e.checkLength(length) {
		return 0
	}
	e.vm.mu.Lock()
	c := e.vm.arrayClassLocked("[" + string(k.Letter()))
	o := e.vm.allocLocked(c)
	o.array = newPrimitiveData(k, int(length))
	e.vm.mu.Unlock()
	return e.newLocal(o)
}

func (e *Env) checkLength(length int32) bool {
	if length < 0 {
		e.throw("java/lang/NegativeArraySizeException", "%d", length)
		return false
	}
	if length > e.vm.maxArrayLen {
		e.throw("java/lang/OutOfMemoryError", "Requested array size exceeds VM limit")
		return false
	}
	return true
}

func (e *Env) checkRegion(o *object, start int32, n int) bool {
	if start < 0 || int(start)+n > o.length() {
		e.throw("java/lang/ArrayIndexOutOfBoundsException",
			"Array region %d..%d out of bounds for length %d", start, int(start)+n, o.length())
		return false
	}
	return true
}

// GetArrayRegion implements host.Env.
func (e *Env) GetArrayRegion(arr host.Ref, start int32, buf any) {
	o := e.primitiveArrayOf(arr, buf)
	if o == nil {
		return
	}
	dst := reflect.ValueOf(buf)
	if !e.checkRegion(o, start, dst.Len()) {
		return
	}
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	src := reflect.ValueOf(o.array)
	reflect.Copy(dst, src.Slice(int(start), int(start)+dst.Len()))
}

// SetArrayRegion implements host.Env.
func (e *Env) SetArrayRegion(arr host.Ref, start int32, buf any) {
	o := e.primitiveArrayOf(arr, buf)
	if o == nil {
		return
	}
	src := reflect.ValueOf(buf)
	if !e.checkRegion(o, start, src.Len()) {
		return
	}
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	dst := reflect.ValueOf(o.array)
	reflect.Copy(dst.Slice(int(start), int(start)+src.Len()), src)
}

// GetArrayElements implements host.Env. Elements are always copied.
func (e *Env) GetArrayElements(arr host.Ref) (any, bool) {
	o := e.arrayOf(arr)
	if o == nil {
		return nil, false
	}
	if _, isObj := o.array.([]*object); isObj {
		e.throw("java/lang/IllegalArgumentException", "%s is not a primitive array", o.class.name)
		return nil, false
	}
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	src := reflect.ValueOf(o.array)
	cp := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
	reflect.Copy(cp, src)
	e.vm.pins[o]++
	return cp.Interface(), true
}

// ReleaseArrayElements implements host.Env.
func (e *Env) ReleaseArrayElements(arr host.Ref, elems any, mode host.ReleaseMode) {
	o := e.primitiveArrayOf(arr, elems)
	if o == nil {
		return
	}
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	if e.vm.pins[o] == 0 {
		e.vm.log.Warn("ReleaseArrayElements without matching GetArrayElements",
			zap.String("class", o.class.name), zap.Stringer("mode", mode))
		return
	}
	if mode == host.CopyBack || mode == host.Commit {
		reflect.Copy(reflect.ValueOf(o.array), reflect.ValueOf(elems))
	}
	if mode == host.Commit {
		return
	}
	e.vm.pins[o]--
	if e.vm.pins[o] == 0 {
		delete(e.vm.pins, o)
	}
}

// NewObjectArray implements host.Env.
func (e *Env) NewObjectArray(length int32, elem host.Class, initial host.Ref) host.ObjectArray {
	ec := e.classOf(elem)
	if ec == nil {
		e.throw("java/lang/NullPointerException", "null element class")
		return 0
	}
	if !e.checkLength(length) {
		return 0
	}
	init := e.deref(initial)
	if init != nil && !isSubclass(init.class, ec) {
		e.throw("java/lang/ArrayStoreException", "%s", init.class.dotted())
		return 0
	}

	name := "[L" + ec.name + ";"
	if ec.array {
		name = "[" + ec.name
	}
	e.vm.mu.Lock()
	c := e.vm.arrayClassLocked(name)
	o := e.vm.allocLocked(c)
	elems := make([]*object, length)
	for i := range elems {
		elems[i] = init
	}
	o.array = elems
	e.vm.mu.Unlock()
	return host.ObjectArray(e.newLocal(o))
}

func (e *Env) objectArrayOf(arr host.ObjectArray, index int32) *object {
	o := e.arrayOf(host.Ref(arr))
	if o == nil {
		return nil
	}
	if _, ok := o.array.([]*object); !ok {
		e.throw("java/lang/IllegalArgumentException", "%s is not an object array", o.class.name)
		return nil
	}
	if !e.checkRegion(o, index, 1) {
		return nil
	}
	return o
}

// GetObjectArrayElement implements host.Env.
func (e *Env) GetObjectArrayElement(arr host.ObjectArray, index int32) host.Ref {
	o := e.objectArrayOf(arr, index)
	if o == nil {
		return 0
	}
	e.vm.mu.Lock()
	v := o.array.([]*object)[index]
	e.vm.mu.Unlock()
	return e.newLocal(v)
}

// SetObjectArrayElement implements host.Env.
func (e *Env) SetObjectArrayElement(arr host.ObjectArray, index int32, v host.Ref) {
	o := e.objectArrayOf(arr, index)
	if o == nil {
		return
	}
	val := e.deref(v)
	if val != nil && !isSubclass(val.class, o.class.elem) {
		e.throw("java/lang/ArrayStoreException", "%s", val.class.dotted())
		return
	}
	e.vm.mu.Lock()
	o.array.([]*object)[index] = val
	e.vm.mu.Unlock()
}

// NewDirectByteBuffer implements host.Env. The buffer aliases buf.
func (e *Env) NewDirectByteBuffer(buf []byte) host.Ref {
	e.vm.mu.Lock()
	o := e.vm.allocLocked(e.vm.classes["java/nio/DirectByteBuffer"])
	o.direct = buf
	e.vm.mu.Unlock()
	return e.newLocal(o)
}

// GetDirectBufferAddress implements host.Env.
func (e *Env) GetDirectBufferAddress(buf host.Ref) []byte {
	o := e.deref(buf)
	if o == nil {
		return nil
	}
	return o.direct
}

// GetDirectBufferCapacity implements host.Env.
func (e *Env) GetDirectBufferCapacity(buf host.Ref) int64 {
	o := e.deref(buf)
	if o == nil || o.direct == nil {
		return -1
	}
	return int64(len(o.direct))
}
