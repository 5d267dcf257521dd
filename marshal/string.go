package marshal

import (
	"reflect"
	"strconv"
	"unicode/utf16"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/ref"
	"github.com/wippyai/go-jni/signature"
)

// UTF16 is a string held as UTF-16 code units, the host's own string
// encoding. It marshals to java/lang/String without transcoding.
type UTF16 []uint16

func (UTF16) Descriptor() string { return string(signature.String) }

// NewUTF16 encodes s as UTF-16.
func NewUTF16(s string) UTF16 {
	return UTF16(utf16.Encode([]rune(s)))
}

func (u UTF16) String() string {
	return string(utf16.Decode(u))
}

// str marshals Go strings through the host's modified UTF-8 entry points.
// A null host string decodes to "".
type str struct {
	t reflect.Type
}

func (s str) Type() reflect.Type               { return s.t }
func (s str) Descriptor() signature.Descriptor { return signature.String }
func (s str) Kind() host.Kind                  { return host.KindObject }
func (s str) Temporary() bool                  { return true }

func (s str) Encode(env host.Env, v reflect.Value) (host.Value, error) {
	h := env.NewStringUTF(v.String())
	if err := exception.Check(env); err != nil {
		return 0, err
	}
	return host.RefValue(host.Ref(h)), nil
}

func (s str) Decode(env host.Env, w host.Value) (reflect.Value, error) {
	out := reflect.New(s.t).Elem()
	if w.Ref() == 0 {
		return out, nil
	}
	out.SetString(env.GetStringUTF(host.String(w.Ref())))
	return out, exception.Check(env)
}

type utf16Trait struct{}

func (utf16Trait) Descriptor() signature.Descriptor { return signature.String }
func (utf16Trait) Kind() host.Kind                  { return host.KindObject }
func (utf16Trait) Temporary() bool                  { return true }

func (utf16Trait) ToNative(env host.Env, w host.Value) (UTF16, error) {
	return GoUTF16(env, host.String(w.Ref()))
}

func (utf16Trait) FromNative(env host.Env, v UTF16) (host.Value, error) {
	h := env.NewString(v)
	if err := exception.Check(env); err != nil {
		return 0, err
	}
	return host.RefValue(host.Ref(h)), nil
}

// GoString returns the contents of a host string. Null yields "".
func GoString(env host.Env, s host.String) (string, error) {
	if s == 0 {
		return "", nil
	}
	out := env.GetStringUTF(s)
	return out, exception.Check(env)
}

// GoUTF16 returns the UTF-16 code units of a host string. Null yields an
// empty result.
func GoUTF16(env host.Env, s host.String) (UTF16, error) {
	if s == 0 {
		return UTF16{}, nil
	}
	n := env.GetStringLength(s)
	if err := exception.Check(env); err != nil {
		return nil, err
	}
	buf := make(UTF16, n)
	env.GetStringRegion(s, 0, buf)
	return buf, exception.Check(env)
}

// ToHostString creates a host string from s.
func ToHostString(env host.Env, s string) (*ref.Local, error) {
	h := env.NewStringUTF(s)
	if err := exception.Check(env); err != nil {
		return nil, err
	}
	return ref.NewLocal(env, host.Ref(h)), nil
}

// ToHostUTF16 creates a host string from UTF-16 code units.
func ToHostUTF16(env host.Env, s UTF16) (*ref.Local, error) {
	h := env.NewString(s)
	if err := exception.Check(env); err != nil {
		return nil, err
	}
	return ref.NewLocal(env, host.Ref(h)), nil
}

// Join concatenates Go and host strings into a new host string. Parts may
// be string, UTF16, host.String or any reference to a host string; null
// references contribute nothing.
func Join(env host.Env, parts ...any) (*ref.Local, error) {
	var buf UTF16
	for i, p := range parts {
		switch v := p.(type) {
		case string:
			buf = append(buf, NewUTF16(v)...)
		case UTF16:
			buf = append(buf, v...)
		case host.String:
			u, err := GoUTF16(env, v)
			if err != nil {
				return nil, err
			}
			buf = append(buf, u...)
		case ref.Handle:
			u, err := GoUTF16(env, ref.As[host.String](v))
			if err != nil {
				return nil, err
			}
			buf = append(buf, u...)
		case nil:
		default:
			return nil, errors.TypeMismatch(errors.PhaseEncode, []string{"part" + strconv.Itoa(i)},
				reflect.TypeOf(p).String(), string(signature.String))
		}
	}
	return ToHostUTF16(env, buf)
}
