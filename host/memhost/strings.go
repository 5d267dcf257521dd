package memhost

import (
	"unicode/utf16"

	"github.com/wippyai/go-jni/host"
)

func utf16Of(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func (vm *VM) newStringLocked(chars []uint16) *object {
	o := vm.allocLocked(vm.classes["java/lang/String"])
	o.str = chars
	return o
}

// stringOf returns the chars of a String handle, or false after throwing.
func (e *Env) stringOf(s host.String) ([]uint16, bool) {
	o := e.deref(host.Ref(s))
	if o == nil {
		e.throw("java/lang/NullPointerException", "null string")
		return nil, false
	}
	if o.str == nil {
		e.throw("java/lang/IllegalArgumentException", "%s is not a string", o.class.name)
		return nil, false
	}
	return o.str, true
}

// NewStringUTF implements host.Env.
func (e *Env) NewStringUTF(s string) host.String {
	return e.NewString(utf16Of(s))
}

// GetStringUTF implements host.Env.
func (e *Env) GetStringUTF(s host.String) string {
	chars, ok := e.stringOf(s)
	if !ok {
		return ""
	}
	return string(utf16.Decode(chars))
}

// GetStringUTFLength implements host.Env.
func (e *Env) GetStringUTFLength(s host.String) int32 {
	return int32(len(e.GetStringUTF(s)))
}

// NewString implements host.Env.
func (e *Env) NewString(chars []uint16) host.String {
	buf := make([]uint16, len(chars))
	copy(buf, chars)
	e.vm.mu.Lock()
	o := e.vm.newStringLocked(buf)
	e.vm.mu.Unlock()
	return host.String(e.newLocal(o))
}

// GetStringLength implements host.Env.
func (e *Env) GetStringLength(s host.String) int32 {
	chars, ok := e.stringOf(s)
	if !ok {
		return 0
	}
	return int32(len(chars))
}

// GetStringRegion implements host.Env.
func (e *Env) GetStringRegion(s host.String, start int32, buf []uint16) {
	chars, ok := e.stringOf(s)
	if !ok {
		return
	}
	if start < 0 || int(start)+len(buf) > len(chars) {
		e.throw("java/lang/StringIndexOutOfBoundsException", "region %d+%d of length %d", start, len(buf), len(chars))
		return
	}
	copy(buf, chars[start:])
}
