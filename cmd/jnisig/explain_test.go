package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wippyai/go-jni/config"
	"github.com/wippyai/go-jni/host"
)

func TestExplain(t *testing.T) {
	cfg := config.Default()
	cfg.Classes = map[string]string{"Point": "pkg.Point"}

	tests := []struct {
		in     string
		desc   string
		source string
		goType string
		kind   host.Kind
	}{
		{"(II)I", "(II)I", "(int, int) int", "func(int32, int32) int32", host.KindInt},
		{"[[Z", "[[Z", "boolean[][]", "[][]bool", host.KindObject},
		{"(Ljava/lang/String;)V", "(Ljava/lang/String;)V", "(java.lang.String) void", "func(string)", host.KindVoid},
		{"(LPoint;)J", "(Lpkg/Point;)J", "(pkg.Point) long", "func(Point (host.Ref)) int64", host.KindLong},
		{"(Ljava/util/Map;)[J", "(Ljava/util/Map;)[J", "(java.util.Map) long[]", "func(map[K]V) []int64", host.KindObject},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e, err := explain(cfg, tt.in)
			if err != nil {
				t.Fatalf("explain: %v", err)
			}
			if string(e.Descriptor) != tt.desc {
				t.Errorf("Descriptor = %s, want %s", e.Descriptor, tt.desc)
			}
			if e.Source != tt.source {
				t.Errorf("Source = %q, want %q", e.Source, tt.source)
			}
			if e.Go != tt.goType {
				t.Errorf("Go = %q, want %q", e.Go, tt.goType)
			}
			if e.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", e.Kind, tt.kind)
			}
		})
	}
}

func TestExplainInvalid(t *testing.T) {
	for _, in := range []string{"", "(I", "Q", "Ljava/lang/String"} {
		if _, err := explain(config.Default(), in); err == nil {
			t.Errorf("explain(%q) should fail", in)
		}
	}
}

func TestExpandAliases(t *testing.T) {
	cfg := config.Default()
	cfg.Classes = map[string]string{"Str": "java.lang.String"}

	tests := []struct {
		in, want string
	}{
		{"(LStr;)V", "(Ljava/lang/String;)V"},
		{"[LStr;", "[Ljava/lang/String;"},
		{"(Lpkg.Point;I)Z", "(Lpkg/Point;I)Z"},
		{"(IJ)V", "(IJ)V"},
		{"LStr", "LStr"},
	}
	for _, tt := range tests {
		if got := expandAliases(cfg, tt.in); got != tt.want {
			t.Errorf("expandAliases(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestListTypes(t *testing.T) {
	var buf bytes.Buffer
	if err := listTypes(&buf); err != nil {
		t.Fatalf("listTypes: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(builtins) {
		t.Fatalf("listed %d types, want %d", len(lines), len(builtins))
	}
	out := buf.String()
	for _, want := range []string{"Ljava/util/Map;", "Ljava/util/Deque;", "[[D", "(ILjava/lang/String;)[J"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestRunDemo(t *testing.T) {
	var buf bytes.Buffer
	if err := runDemo(&buf, config.Default()); err != nil {
		t.Fatalf("runDemo: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Hello, gopher (#1)",
		"Hello, gopher (#2)",
		"sum:    10",
		"tally:  42",
		"no greeting today",
		"expired=false",
		"expired=true",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
