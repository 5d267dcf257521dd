package marshal

import (
	stderrors "errors"
	"math"
	"reflect"
	"testing"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/host/memhost"
	"github.com/wippyai/go-jni/internal/hosttest"
	"github.com/wippyai/go-jni/signature"
)

type celsius float64

func roundTrip[T any](t *testing.T, env host.Env, v T) T {
	t.Helper()
	tr, err := TraitFor[T]()
	if err != nil {
		t.Fatalf("TraitFor[%T]: %v", v, err)
	}
	w, err := tr.FromNative(env, v)
	if err != nil {
		t.Fatalf("FromNative(%v): %v", v, err)
	}
	got, err := tr.ToNative(env, w)
	if err != nil {
		t.Fatalf("ToNative: %v", err)
	}
	if tr.Temporary() && w.Ref() != 0 {
		env.DeleteLocalRef(w.Ref())
	}
	return got
}

func check[T any](t *testing.T, env host.Env, vs ...T) {
	t.Helper()
	for _, v := range vs {
		if got := roundTrip(t, env, v); !reflect.DeepEqual(got, v) {
			t.Errorf("round trip of %#v = %#v", v, got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	_, env := hosttest.New(t)
	base := memhost.LocalCount(env)

	t.Run("primitives", func(t *testing.T) {
		check(t, env, true, false)
		check(t, env, host.True, host.False)
		check[int8](t, env, math.MinInt8, -1, 0, math.MaxInt8)
		check[uint8](t, env, 0, 200, 255)
		check[uint16](t, env, 0, 'A', 0xFFFF)
		check[int16](t, env, math.MinInt16, math.MaxInt16)
		check[int32](t, env, math.MinInt32, 0, math.MaxInt32)
		check[int64](t, env, math.MinInt64, math.MaxInt64)
		check[float32](t, env, 0, -1.5, math.MaxFloat32, float32(math.Inf(1)))
		check[float64](t, env, 0, math.Pi, -math.MaxFloat64, math.SmallestNonzeroFloat64)
		check[int](t, env, math.MinInt32, 0, math.MaxInt32)
		check[celsius](t, env, -40, 36.6)
	})

	t.Run("strings", func(t *testing.T) {
		check(t, env, "", "hello", "héllo, 世界", "\U0001F600")
		check(t, env, UTF16{}, NewUTF16("a𝄞b"))
	})

	t.Run("slices", func(t *testing.T) {
		check(t, env, []int32{}, []int32{1, -2, 3}, []int32(nil))
		check(t, env, []uint8{0, 128, 255})
		check(t, env, []bool{}, []bool{true, false, true, true})
		check(t, env, []host.Boolean{host.True, host.False})
		check(t, env, []float64{math.Pi, -0.5})
		check(t, env, []celsius{1, 2})
		check(t, env, []string{}, []string{"a", "", "ß"})
		check(t, env, [][]int64{{1}, {}, {2, 3}})
		check(t, env, [][]string{{"x"}, {"y", "z"}})
	})

	if got := memhost.LocalCount(env); got != base {
		t.Fatalf("LocalCount = %d after round trips, want %d", got, base)
	}
}

func TestNullString(t *testing.T) {
	_, env := hosttest.New(t)

	s, err := ToNative[string](env, 0)
	if err != nil || s != "" {
		t.Fatalf("null string = %q, %v", s, err)
	}
	u, err := ToNative[UTF16](env, 0)
	if err != nil || len(u) != 0 {
		t.Fatalf("null UTF16 = %v, %v", u, err)
	}
	gs, err := GoString(env, 0)
	if err != nil || gs != "" {
		t.Fatalf("GoString(null) = %q, %v", gs, err)
	}
}

func TestIntOverflow(t *testing.T) {
	_, env := hosttest.New(t)

	_, err := FromNative(env, math.MaxInt32+1)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEncode, Kind: errors.KindOverflow}) {
		t.Fatalf("err = %v, want overflow", err)
	}
}

func TestHandles(t *testing.T) {
	_, env := hosttest.New(t)

	p := hosttest.Point(env.AllocObject(env.FindClass("pkg/Point")))
	w, err := FromNative(env, p)
	if err != nil {
		t.Fatalf("FromNative: %v", err)
	}
	if w.Ref() != host.Ref(p) {
		t.Fatal("handles should pass through unchanged")
	}
	tr, _ := TraitFor[hosttest.Point]()
	if tr.Temporary() {
		t.Fatal("handle traits are not temporary")
	}
	if tr.Descriptor() != "Lpkg/Point;" {
		t.Fatalf("Descriptor = %q", tr.Descriptor())
	}

	arr, err := FromNative(env, []hosttest.Point{p, 0})
	if err != nil {
		t.Fatalf("encode handle slice: %v", err)
	}
	got, err := ToNative[[]hosttest.Point](env, arr)
	if err != nil {
		t.Fatalf("decode handle slice: %v", err)
	}
	if len(got) != 2 || !env.IsSameObject(host.Ref(got[0]), host.Ref(p)) || got[1] != 0 {
		t.Fatalf("decoded %v", got)
	}
	if env.GetObjectRefType(host.Ref(got[0])) != host.LocalRef {
		t.Fatal("decoded handle elements should be caller-owned locals")
	}
}

func TestUnsupported(t *testing.T) {
	type pair struct{ a, b int32 }
	for _, typ := range []reflect.Type{
		reflect.TypeFor[pair](),
		reflect.TypeFor[map[string]int](),
		reflect.TypeFor[[]complex64](),
	} {
		if _, err := Lookup(typ); err == nil {
			t.Errorf("Lookup(%v) should fail", typ)
		}
	}
	if _, err := Lookup(nil); err == nil {
		t.Error("Lookup(nil) should fail")
	}
}

type version struct{ major, minor int32 }

type versionTrait struct{}

func (versionTrait) Descriptor() signature.Descriptor { return signature.Long }
func (versionTrait) Kind() host.Kind                  { return host.KindLong }
func (versionTrait) Temporary() bool                  { return false }

func (versionTrait) ToNative(_ host.Env, v host.Value) (version, error) {
	return version{int32(v.Long() >> 32), int32(v.Long())}, nil
}

func (versionTrait) FromNative(_ host.Env, v version) (host.Value, error) {
	return host.LongValue(int64(v.major)<<32 | int64(uint32(v.minor))), nil
}

func TestRegister(t *testing.T) {
	_, env := hosttest.New(t)
	Register[version](versionTrait{})

	check(t, env, version{1, 2}, version{-1, math.MaxInt32})
	if d := signature.MustFor[func(version) version](); d != "(J)J" {
		t.Fatalf("descriptor = %q, want (J)J", d)
	}
	check(t, env, []version{{1, 0}, {2, 5}})
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		in   any
		to   reflect.Type
		want any
		err  errors.Kind
	}{
		{"same type", int32(5), reflect.TypeFor[int32](), int32(5), ""},
		{"widen", int8(-3), reflect.TypeFor[int64](), int64(-3), ""},
		{"int to int32", 42, reflect.TypeFor[int32](), int32(42), ""},
		{"int overflow", 1 << 40, reflect.TypeFor[int32](), nil, errors.KindOverflow},
		{"negative to char", -1, reflect.TypeFor[uint16](), nil, errors.KindOverflow},
		{"integral float", 3.0, reflect.TypeFor[int32](), int32(3), ""},
		{"fractional float", 3.5, reflect.TypeFor[int32](), nil, errors.KindTypeMismatch},
		{"int to float", 7, reflect.TypeFor[float32](), float32(7), ""},
		{"named string", "x", reflect.TypeFor[celsiusName](), celsiusName("x"), ""},
		{"nil handle", nil, reflect.TypeFor[host.Ref](), host.Ref(0), ""},
		{"nil int", nil, reflect.TypeFor[int32](), nil, errors.KindTypeMismatch},
		{"string to int", "1", reflect.TypeFor[int32](), nil, errors.KindTypeMismatch},
		{"handle to handle", host.Ref(9), reflect.TypeFor[hosttest.Point](), hosttest.Point(9), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.in, tt.to)
			if tt.err != "" {
				var jerr *errors.Error
				if !stderrors.As(err, &jerr) || jerr.Kind != tt.err {
					t.Fatalf("err = %v, want kind %s", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if got.Interface() != tt.want {
				t.Fatalf("got %#v, want %#v", got.Interface(), tt.want)
			}
		})
	}
}

type celsiusName string

func TestJoin(t *testing.T) {
	_, env := hosttest.New(t)

	world, err := ToHostString(env, "world")
	if err != nil {
		t.Fatalf("ToHostString: %v", err)
	}
	defer world.Release()

	joined, err := Join(env, "hello, ", world, NewUTF16("!"), nil, host.String(0))
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	defer joined.Release()

	got, err := GoString(env, host.String(joined.Ref()))
	if err != nil || got != "hello, world!" {
		t.Fatalf("joined = %q, %v", got, err)
	}

	if _, err := Join(env, 42); err == nil {
		t.Fatal("expected error for unsupported part")
	}
}
