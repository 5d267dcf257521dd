package collections_test

import (
	"maps"
	"slices"
	"testing"

	"github.com/wippyai/go-jni/collections"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/host/memhost"
	"github.com/wippyai/go-jni/internal/hosttest"
	"github.com/wippyai/go-jni/marshal"
	"github.com/wippyai/go-jni/signature"
)

func TestMapRoundTrip(t *testing.T) {
	_, env := hosttest.New(t)

	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{"string to int", func(t *testing.T) {
			in := map[string]int32{"a": 1, "b": 2, "c": -3}
			h, err := collections.FromMap(env, in)
			if err != nil {
				t.Fatalf("FromMap: %v", err)
			}
			defer h.Release()
			out, err := collections.ToMap[string, int32](env, h)
			if err != nil {
				t.Fatalf("ToMap: %v", err)
			}
			if !maps.Equal(in, out) {
				t.Errorf("round trip = %v, want %v", out, in)
			}
		}},
		{"int to slice", func(t *testing.T) {
			in := map[int64][]float64{1: {0.5}, 2: {1.5, 2.5}}
			h, err := collections.FromMap(env, in)
			if err != nil {
				t.Fatalf("FromMap: %v", err)
			}
			defer h.Release()
			out, err := collections.ToMap[int64, []float64](env, h)
			if err != nil {
				t.Fatalf("ToMap: %v", err)
			}
			if len(out) != 2 || !slices.Equal(out[2], in[2]) {
				t.Errorf("round trip = %v, want %v", out, in)
			}
		}},
		{"bool keys", func(t *testing.T) {
			in := map[bool]string{true: "yes", false: "no"}
			h, err := collections.FromMap(env, in)
			if err != nil {
				t.Fatalf("FromMap: %v", err)
			}
			defer h.Release()
			out, err := collections.ToMap[bool, string](env, h)
			if err != nil || !maps.Equal(in, out) {
				t.Errorf("round trip = %v, %v", out, err)
			}
		}},
		{"empty and nil", func(t *testing.T) {
			h, err := collections.FromMap(env, map[string]string{})
			if err != nil || h.IsNull() {
				t.Fatalf("FromMap(empty) = %v, %v", h, err)
			}
			defer h.Release()
			out, err := collections.ToMap[string, string](env, h)
			if err != nil || out == nil || len(out) != 0 {
				t.Errorf("ToMap(empty) = %v, %v", out, err)
			}

			null, err := collections.FromMap[string, string](env, nil)
			if err != nil || !null.IsNull() {
				t.Fatalf("FromMap(nil) should be null, err %v", err)
			}
			out, err = collections.ToMap[string, string](env, null)
			if err != nil || out != nil {
				t.Errorf("ToMap(null) = %v, %v", out, err)
			}
		}},
	}

	for _, tt := range tests {
		before := memhost.LocalCount(env)
		t.Run(tt.name, tt.run)
		if after := memhost.LocalCount(env); after != before {
			t.Errorf("%s: locals leaked: %d -> %d", tt.name, before, after)
		}
	}
}

func TestRegisterMap(t *testing.T) {
	_, env := hosttest.New(t)

	if err := collections.RegisterMap[string, int64](); err != nil {
		t.Fatalf("RegisterMap: %v", err)
	}
	if d := signature.MustFor[map[string]int64](); d != collections.MapDescriptor {
		t.Errorf("descriptor = %s, want %s", d, collections.MapDescriptor)
	}

	in := map[string]int64{"big": 1 << 40}
	w, err := marshal.FromNative(env, in)
	if err != nil {
		t.Fatalf("FromNative: %v", err)
	}
	defer env.DeleteLocalRef(w.Ref())
	out, err := marshal.ToNative[map[string]int64](env, w)
	if err != nil || !maps.Equal(in, out) {
		t.Errorf("ToNative = %v, %v", out, err)
	}

	if err := collections.RegisterMap[string, chan int](); err == nil {
		t.Error("RegisterMap with an unsupported value type should fail")
	}
}

func TestDeque(t *testing.T) {
	_, env := hosttest.New(t)

	var d collections.Deque[string]
	d.PushBack("b")
	d.PushFront("a")
	d.PushBack("c")

	h, err := collections.FromDeque(env, d)
	if err != nil {
		t.Fatalf("FromDeque: %v", err)
	}
	defer h.Release()

	out, err := collections.ToDeque[string](env, h)
	if err != nil {
		t.Fatalf("ToDeque: %v", err)
	}
	if !slices.Equal(out, collections.Deque[string]{"a", "b", "c"}) {
		t.Errorf("deque = %v", out)
	}
	if v, ok := out.PopFront(); !ok || v != "a" {
		t.Errorf("PopFront = %q, %v", v, ok)
	}
	if v, ok := out.PopBack(); !ok || v != "c" {
		t.Errorf("PopBack = %q, %v", v, ok)
	}

	nums, err := collections.FromDeque(env, collections.Deque[int32]{3, 1, 2})
	if err != nil {
		t.Fatalf("FromDeque(int32): %v", err)
	}
	defer nums.Release()
	got, err := collections.ToDeque[int32](env, nums)
	if err != nil || !slices.Equal(got, collections.Deque[int32]{3, 1, 2}) {
		t.Errorf("ToDeque(int32) = %v, %v", got, err)
	}

	if err := collections.RegisterDeque[string](); err != nil {
		t.Fatalf("RegisterDeque: %v", err)
	}
	if d := signature.MustFor[collections.Deque[string]](); d != collections.DequeDescriptor {
		t.Errorf("descriptor = %s", d)
	}
}

func TestDequeRejectsNull(t *testing.T) {
	_, env := hosttest.New(t)

	_, err := collections.FromDeque(env, collections.Deque[host.Ref]{0})
	if !exception.IsPending(err) {
		t.Fatalf("FromDeque with null = %v, want pending exception", err)
	}
	he, _ := exception.Catch(env)
	if he == nil || he.Class != "java/lang/NullPointerException" {
		t.Errorf("caught %v, want NullPointerException", he)
	}
	if he != nil {
		he.Release()
	}
}
