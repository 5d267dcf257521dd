package signature

import (
	"strings"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
)

// Type is a parsed descriptor.
type Type struct {
	Kind   host.Kind
	Class  string  // internal class name for objects; the descriptor for arrays
	Elem   *Type   // element type for arrays
	Params []*Type // parameters for methods
	Result *Type   // result for methods
	Method bool
}

// IsArray reports whether t is an array type.
func (t *Type) IsArray() bool { return t.Elem != nil }

// Dims returns the number of array dimensions of t.
func (t *Type) Dims() int {
	n := 0
	for e := t; e.Elem != nil; e = e.Elem {
		n++
	}
	return n
}

// Descriptor re-encodes t.
func (t *Type) Descriptor() Descriptor {
	if t.Method {
		ps := make([]Descriptor, len(t.Params))
		for i, p := range t.Params {
			ps[i] = p.Descriptor()
		}
		return Func(t.Result.Descriptor(), ps...)
	}
	if t.Elem != nil {
		return Array(t.Elem.Descriptor())
	}
	if t.Kind == host.KindObject {
		return Class(t.Class)
	}
	return Descriptor([]byte{t.Kind.Letter()})
}

// String renders t in source form, e.g. "int[]" or
// "(int, java.lang.String) void".
func (t *Type) String() string {
	if t.Method {
		var b strings.Builder
		b.WriteByte('(')
		for i, p := range t.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.String())
		}
		b.WriteString(") ")
		b.WriteString(t.Result.String())
		return b.String()
	}
	if t.Elem != nil {
		return t.Elem.String() + "[]"
	}
	if t.Kind == host.KindObject {
		return strings.ReplaceAll(t.Class, "/", ".")
	}
	return t.Kind.String()
}

// Parse parses a field or method descriptor.
func Parse(d Descriptor) (*Type, error) {
	s := string(d)
	if s == "" {
		return nil, errors.InvalidData(errors.PhaseSignature, nil, "empty descriptor")
	}

	if s[0] == '(' {
		t := &Type{Method: true}
		i := 1
		for i < len(s) && s[i] != ')' {
			p, n, err := parseField(s, i)
			if err != nil {
				return nil, err
			}
			t.Params = append(t.Params, p)
			i = n
		}
		if i >= len(s) {
			return nil, invalid(s, i, "missing ')'")
		}
		i++
		if i < len(s) && s[i] == 'V' {
			t.Result = &Type{Kind: host.KindVoid}
			i++
		} else {
			r, n, err := parseField(s, i)
			if err != nil {
				return nil, err
			}
			t.Result = r
			i = n
		}
		if i != len(s) {
			return nil, invalid(s, i, "trailing characters")
		}
		t.Kind = t.Result.Kind
		return t, nil
	}

	if s == "V" {
		return &Type{Kind: host.KindVoid}, nil
	}
	t, n, err := parseField(s, 0)
	if err != nil {
		return nil, err
	}
	if n != len(s) {
		return nil, invalid(s, n, "trailing characters")
	}
	return t, nil
}

// parseField parses one field descriptor starting at s[i] and returns the
// index just past it.
func parseField(s string, i int) (*Type, int, error) {
	if i >= len(s) {
		return nil, i, invalid(s, i, "unexpected end")
	}
	switch s[i] {
	case 'Z':
		return &Type{Kind: host.KindBoolean}, i + 1, nil
	case 'B':
		return &Type{Kind: host.KindByte}, i + 1, nil
	case 'C':
		return &Type{Kind: host.KindChar}, i + 1, nil
	case 'S':
		return &Type{Kind: host.KindShort}, i + 1, nil
	case 'I':
		return &Type{Kind: host.KindInt}, i + 1, nil
	case 'J':
		return &Type{Kind: host.KindLong}, i + 1, nil
	case 'F':
		return &Type{Kind: host.KindFloat}, i + 1, nil
	case 'D':
		return &Type{Kind: host.KindDouble}, i + 1, nil
	case 'L':
		end := strings.IndexByte(s[i:], ';')
		if end <= 1 {
			return nil, i, invalid(s, i, "unterminated class name")
		}
		name := s[i+1 : i+end]
		if strings.ContainsAny(name, ".[(") {
			return nil, i, invalid(s, i, "malformed class name "+name)
		}
		return &Type{Kind: host.KindObject, Class: name}, i + end + 1, nil
	case '[':
		elem, n, err := parseField(s, i+1)
		if err != nil {
			return nil, n, err
		}
		return &Type{Kind: host.KindObject, Class: s[i:n], Elem: elem}, n, nil
	}
	return nil, i, invalid(s, i, "unexpected '"+s[i:i+1]+"'")
}

func invalid(s string, at int, detail string) error {
	return errors.New(errors.PhaseSignature, errors.KindInvalidData).
		HostType(s).
		Value(at).
		Detail("%s at offset %d", detail, at).
		Build()
}
