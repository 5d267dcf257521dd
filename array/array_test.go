package array_test

import (
	stderrors "errors"
	"slices"
	"testing"

	"github.com/wippyai/go-jni/array"
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/host/memhost"
	"github.com/wippyai/go-jni/internal/hosttest"
	"github.com/wippyai/go-jni/ref"
)

func TestRegions(t *testing.T) {
	_, env := hosttest.New(t)

	arr, err := array.New[int32](env, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer arr.Release()

	n, err := array.Length(env, arr)
	if err != nil || n != 4 {
		t.Fatalf("Length = %d, %v; want 4", n, err)
	}

	if err := array.SetRegion(env, arr, 1, []int32{5, 6}); err != nil {
		t.Fatalf("SetRegion: %v", err)
	}
	buf := make([]int32, 4)
	if err := array.GetRegion(env, arr, 0, buf); err != nil {
		t.Fatalf("GetRegion: %v", err)
	}
	if want := []int32{0, 5, 6, 0}; !slices.Equal(buf, want) {
		t.Errorf("region = %v, want %v", buf, want)
	}

	err = array.GetRegion(env, arr, 3, make([]int32, 2))
	if !exception.IsPending(err) {
		t.Fatalf("GetRegion past end err = %v, want pending exception", err)
	}
	env.ExceptionClear()

	if _, err := array.New[int32](env, -1); err == nil {
		t.Error("New(-1) should fail")
	}
}

func TestSlices(t *testing.T) {
	_, env := hosttest.New(t)

	arr, err := array.FromSlice(env, []float64{1.5, 2.5})
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	defer arr.Release()

	got, err := array.ToSlice[float64](env, arr)
	if err != nil {
		t.Fatalf("ToSlice: %v", err)
	}
	if !slices.Equal(got, []float64{1.5, 2.5}) {
		t.Errorf("ToSlice = %v", got)
	}

	null, err := array.FromSlice[int32](env, nil)
	if err != nil || !null.IsNull() {
		t.Fatalf("FromSlice(nil) = %v, %v; want null", null.Ref(), err)
	}
	empty, err := array.ToSlice[int32](env, null)
	if err != nil || empty != nil {
		t.Errorf("ToSlice(null) = %v, %v; want nil", empty, err)
	}
}

func TestPin(t *testing.T) {
	vm, env := hosttest.New(t)

	fill := func(t *testing.T) *ref.Local {
		t.Helper()
		arr, err := array.FromSlice(env, []int32{1, 2, 3})
		if err != nil {
			t.Fatalf("FromSlice: %v", err)
		}
		t.Cleanup(arr.Release)
		return arr
	}
	read := func(t *testing.T, arr *ref.Local) []int32 {
		t.Helper()
		got, err := array.ToSlice[int32](env, arr)
		if err != nil {
			t.Fatalf("ToSlice: %v", err)
		}
		return got
	}

	t.Run("abortive release discards changes", func(t *testing.T) {
		arr := fill(t)
		elems, err := array.Pin[int32](env, arr, true)
		if err != nil {
			t.Fatalf("Pin: %v", err)
		}
		elems.Data()[0] = 100
		if err := elems.Release(); err != nil {
			t.Fatalf("Release: %v", err)
		}
		if got := read(t, arr); !slices.Equal(got, []int32{1, 2, 3}) {
			t.Errorf("after abort = %v, want unchanged", got)
		}
	})

	t.Run("commit copies back and keeps the view", func(t *testing.T) {
		arr := fill(t)
		elems, err := array.Pin[int32](env, arr, true)
		if err != nil {
			t.Fatalf("Pin: %v", err)
		}
		elems.Data()[1] = 20
		if err := elems.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		if got := read(t, arr); !slices.Equal(got, []int32{1, 20, 3}) {
			t.Errorf("after commit = %v", got)
		}
		elems.Data()[2] = 30
		if err := elems.Release(); err != nil {
			t.Fatalf("Release: %v", err)
		}
		if got := read(t, arr); !slices.Equal(got, []int32{1, 20, 3}) {
			t.Errorf("abort after commit = %v, want committed state", got)
		}
	})

	t.Run("release copies back", func(t *testing.T) {
		arr := fill(t)
		elems, err := array.Pin[int32](env, arr, true)
		if err != nil {
			t.Fatalf("Pin: %v", err)
		}
		elems.SetAbort(false)
		for i := range elems.Data() {
			elems.Data()[i] *= 2
		}
		if err := elems.Release(); err != nil {
			t.Fatalf("Release: %v", err)
		}
		if got := read(t, arr); !slices.Equal(got, []int32{2, 4, 6}) {
			t.Errorf("after release = %v", got)
		}
	})

	t.Run("second release is misuse", func(t *testing.T) {
		arr := fill(t)
		elems, err := array.Pin[int32](env, arr, false)
		if err != nil {
			t.Fatalf("Pin: %v", err)
		}
		_ = elems.Release()
		err = elems.Release()
		var e *errors.Error
		if !stderrors.As(err, &e) || e.Kind != errors.KindReferenceMisuse {
			t.Errorf("second Release = %v, want reference misuse", err)
		}
	})

	t.Run("element type must match", func(t *testing.T) {
		arr := fill(t)
		if _, err := array.Pin[int64](env, arr, false); err == nil {
			t.Fatal("Pin[int64] of an int array should fail")
		}
	})

	if n := vm.PinCount(); n != 0 {
		t.Errorf("PinCount = %d, want 0", n)
	}
}

func TestBooleans(t *testing.T) {
	_, env := hosttest.New(t)

	arr, err := array.FromSlice(env, []bool{true, false, true})
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	defer arr.Release()

	elems, err := array.Pin[host.Boolean](env, arr, false)
	if err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if !elems.IsCopy() {
		t.Error("in-memory host should hand out copies")
	}
	elems.Data()[1] = host.True
	if err := elems.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	got, err := array.ToSlice[bool](env, arr)
	if err != nil {
		t.Fatalf("ToSlice: %v", err)
	}
	if !slices.Equal(got, []bool{true, true, true}) {
		t.Errorf("booleans = %v", got)
	}
}

func TestObjects(t *testing.T) {
	_, env := hosttest.New(t)

	arr, err := array.NewObjectsOf[host.String](env, 3)
	if err != nil {
		t.Fatalf("NewObjectsOf: %v", err)
	}
	defer arr.Release()

	words := []string{"a", "b", "c"}
	err = array.SetRegionFunc(env, arr, 0, 3, func(i int) (*ref.Local, error) {
		return ref.NewLocal(env, host.Ref(env.NewStringUTF(words[i]))), nil
	})
	if err != nil {
		t.Fatalf("SetRegionFunc: %v", err)
	}

	before := memhost.LocalCount(env)
	var got []string
	err = array.GetRegionFunc(env, arr, 0, 3, func(_ int, v *ref.Local) error {
		got = append(got, env.GetStringUTF(host.String(v.Ref())))
		return nil
	})
	if err != nil {
		t.Fatalf("GetRegionFunc: %v", err)
	}
	if !slices.Equal(got, words) {
		t.Errorf("elements = %v", got)
	}
	if after := memhost.LocalCount(env); after != before {
		t.Errorf("locals leaked: %d -> %d", before, after)
	}

	if err := array.Set(env, arr, 1, nil); err != nil {
		t.Fatalf("Set(nil): %v", err)
	}
	v, err := array.Get(env, arr, 1)
	if err != nil || !v.IsNull() {
		t.Errorf("Get after Set(nil) = %v, %v", v.Ref(), err)
	}

	_, err = array.Get(env, arr, 3)
	if !exception.IsPending(err) {
		t.Errorf("Get(3) = %v, want pending exception", err)
	}
	env.ExceptionClear()
}

func TestTypedObjects(t *testing.T) {
	_, env := hosttest.New(t)

	points, err := array.NewTyped[hosttest.Point](env, 2)
	if err != nil {
		t.Fatalf("NewTyped: %v", err)
	}
	defer points.Release()

	c := env.FindClass("pkg/Point")
	p := hosttest.Point(env.AllocObject(c))
	if err := points.Put(env, 0, p); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := points.At(env, 0)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	defer env.DeleteLocalRef(host.Ref(got))
	if !env.IsSameObject(host.Ref(got), host.Ref(p)) {
		t.Error("At should return the stored element")
	}
	if n, _ := points.Len(env); n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}

	err = points.Put(env, 1, hosttest.Point(env.NewStringUTF("not a point")))
	if !exception.IsPending(err) {
		t.Errorf("Put of wrong class = %v, want pending exception", err)
	}
	env.ExceptionClear()
}

func TestDirectBuffer(t *testing.T) {
	_, env := hosttest.New(t)

	data := []byte{1, 2, 3}
	buf, err := array.NewDirectBuffer(env, data)
	if err != nil {
		t.Fatalf("NewDirectBuffer: %v", err)
	}
	defer buf.Release()

	array.DirectBytes(env, buf)[2] = 7
	if data[2] != 7 {
		t.Error("direct buffer should alias the Go slice")
	}
}
