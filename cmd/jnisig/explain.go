package main

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/wippyai/go-jni/collections"
	"github.com/wippyai/go-jni/config"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/marshal"
	"github.com/wippyai/go-jni/signature"
)

// explanation is the parsed form of one descriptor.
type explanation struct {
	Descriptor signature.Descriptor
	Source     string
	Go         string
	Kind       host.Kind
}

// explain expands class aliases in d and parses it.
func explain(cfg *config.Config, d string) (*explanation, error) {
	t, err := signature.Parse(signature.Descriptor(expandAliases(cfg, d)))
	if err != nil {
		return nil, err
	}
	return &explanation{
		Descriptor: t.Descriptor(),
		Source:     t.String(),
		Go:         goType(t),
		Kind:       t.Kind,
	}, nil
}

// expandAliases rewrites L<alias>; to the configured class name.
func expandAliases(cfg *config.Config, d string) string {
	var b strings.Builder
	for i := 0; i < len(d); i++ {
		if d[i] != 'L' {
			b.WriteByte(d[i])
			continue
		}
		end := strings.IndexByte(d[i:], ';')
		if end < 0 {
			b.WriteString(d[i:])
			break
		}
		b.WriteByte('L')
		b.WriteString(cfg.ClassName(d[i+1 : i+end]))
		b.WriteByte(';')
		i += end
	}
	return b.String()
}

// goType renders t as the Go type the bridge maps it from.
func goType(t *signature.Type) string {
	if t.Method {
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = goType(p)
		}
		s := "func(" + strings.Join(params, ", ") + ")"
		if t.Result.Kind != host.KindVoid {
			s += " " + goType(t.Result)
		}
		return s
	}
	if t.Elem != nil {
		return "[]" + goType(t.Elem)
	}
	switch t.Kind {
	case host.KindVoid:
		return ""
	case host.KindBoolean:
		return "bool"
	case host.KindByte:
		return "int8"
	case host.KindChar:
		return "uint16"
	case host.KindShort:
		return "int16"
	case host.KindInt:
		return "int32"
	case host.KindLong:
		return "int64"
	case host.KindFloat:
		return "float32"
	case host.KindDouble:
		return "float64"
	}
	switch t.Class {
	case "java/lang/String":
		return "string"
	case "java/lang/Object":
		return "host.Ref"
	case "java/util/Map":
		return "map[K]V"
	case "java/util/Deque":
		return "collections.Deque[T]"
	}
	name := t.Class[strings.LastIndexByte(t.Class, '/')+1:]
	return name + " (host.Ref)"
}

func explainAll(w io.Writer, cfg *config.Config, descs []string) error {
	for _, d := range descs {
		e, err := explain(cfg, d)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n  source: %s\n  go:     %s\n  kind:   %s\n",
			e.Descriptor, e.Source, e.Go, e.Kind)
	}
	return nil
}

// builtins are the Go types listed by -list.
var builtins = []reflect.Type{
	reflect.TypeFor[bool](),
	reflect.TypeFor[int8](),
	reflect.TypeFor[uint16](),
	reflect.TypeFor[int16](),
	reflect.TypeFor[int32](),
	reflect.TypeFor[int](),
	reflect.TypeFor[int64](),
	reflect.TypeFor[float32](),
	reflect.TypeFor[float64](),
	reflect.TypeFor[string](),
	reflect.TypeFor[marshal.UTF16](),
	reflect.TypeFor[host.Ref](),
	reflect.TypeFor[host.String](),
	reflect.TypeFor[host.Class](),
	reflect.TypeFor[host.Throwable](),
	reflect.TypeFor[[]int32](),
	reflect.TypeFor[[]bool](),
	reflect.TypeFor[[][]float64](),
	reflect.TypeFor[[]string](),
	reflect.TypeFor[map[string]int32](),
	reflect.TypeFor[collections.Deque[string]](),
	reflect.TypeFor[func(int32, string) []int64](),
	reflect.TypeFor[func() error](),
}

func listTypes(w io.Writer) error {
	if err := collections.RegisterMap[string, int32](); err != nil {
		return err
	}
	if err := collections.RegisterDeque[string](); err != nil {
		return err
	}
	for _, t := range builtins {
		d, err := signature.Of(t)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-32s %s\n", t.String(), d)
	}
	return nil
}
