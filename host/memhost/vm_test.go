package memhost_test

import (
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/host/memhost"
	"github.com/wippyai/go-jni/internal/hosttest"
)

func newPoint(t *testing.T, env host.Env, x, y int32) host.Ref {
	t.Helper()
	c := env.FindClass("pkg/Point")
	ctor := env.GetMethodID(c, "<init>", "(II)V")
	obj := env.NewObject(c, ctor, []host.Value{host.IntValue(x), host.IntValue(y)})
	if obj == 0 || env.ExceptionCheck() {
		t.Fatalf("NewObject failed")
	}
	return obj
}

func pendingClass(env host.Env) string {
	th := env.ExceptionOccurred()
	if th == 0 {
		return ""
	}
	c := env.GetObjectClass(host.Ref(th))
	cc := env.GetObjectClass(host.Ref(c))
	getName := env.GetMethodID(cc, "getName", "()Ljava/lang/String;")
	return env.GetStringUTF(host.String(env.Call(host.Ref(c), getName, host.KindObject, nil).Ref()))
}

func TestVM_AttachDetach(t *testing.T) {
	vm := memhost.New()

	if _, ok := vm.GetEnv(); ok {
		t.Fatal("expected no env before attach")
	}
	env, err := vm.AttachCurrentThread()
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	again, err := vm.AttachCurrentThread()
	if err != nil || again != env {
		t.Fatal("attaching twice should return the same env")
	}
	if got, ok := vm.GetEnv(); !ok || got != env {
		t.Fatal("GetEnv should return the attached env")
	}
	if vm.ThreadCount() != 1 {
		t.Fatalf("ThreadCount = %d, want 1", vm.ThreadCount())
	}
	if err := vm.DetachCurrentThread(); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := vm.DetachCurrentThread(); err == nil {
		t.Fatal("expected error detaching an unattached thread")
	}
}

func TestVM_References(t *testing.T) {
	vm, env := hosttest.New(t)

	obj := newPoint(t, env, 1, 2)
	if got := env.GetObjectRefType(obj); got != host.LocalRef {
		t.Fatalf("ref type = %v, want local", got)
	}

	g := env.NewGlobalRef(obj)
	w := env.NewWeakGlobalRef(obj)
	if env.GetObjectRefType(g) != host.GlobalRef || env.GetObjectRefType(w) != host.WeakGlobalRef {
		t.Fatal("unexpected ref types")
	}
	if !env.IsSameObject(obj, g) || !env.IsSameObject(g, w) {
		t.Fatal("all references should name the same object")
	}

	env.DeleteLocalRef(obj)
	if env.GetObjectRefType(obj) != host.InvalidRef {
		t.Fatal("deleted local should be invalid")
	}
	vm.GC()
	if env.IsSameObject(w, 0) {
		t.Fatal("weak target held by a global should survive GC")
	}

	env.DeleteGlobalRef(g)
	if cleared := vm.GC(); cleared != 1 {
		t.Fatalf("GC cleared %d weak refs, want 1", cleared)
	}
	if !env.IsSameObject(w, 0) {
		t.Fatal("weak ref should be cleared after its target was collected")
	}
	if env.NewLocalRef(w) != 0 {
		t.Fatal("upgrading a cleared weak ref should yield null")
	}
	env.DeleteWeakGlobalRef(w)
	if vm.WeakCount() != 0 || vm.GlobalCount() != 0 {
		t.Fatalf("weak=%d global=%d, want 0/0", vm.WeakCount(), vm.GlobalCount())
	}
}

func TestVM_LocalFrames(t *testing.T) {
	_, env := hosttest.New(t)
	base := memhost.LocalCount(env)

	if err := env.PushLocalFrame(16); err != nil {
		t.Fatalf("PushLocalFrame: %v", err)
	}
	a := newPoint(t, env, 1, 1)
	_ = newPoint(t, env, 2, 2)
	kept := env.PopLocalFrame(a)

	if got := memhost.LocalCount(env); got != base+1 {
		t.Fatalf("LocalCount = %d, want %d", got, base+1)
	}
	if env.GetObjectRefType(a) != host.InvalidRef {
		t.Fatal("locals of the popped frame should be invalid")
	}
	if env.GetObjectRefType(kept) != host.LocalRef {
		t.Fatal("result should be a local in the enclosing frame")
	}

	if err := env.PushLocalFrame(-1); err == nil {
		t.Fatal("expected error for negative capacity")
	}
	env.ExceptionClear()
}

func TestVM_CallsAndFields(t *testing.T) {
	_, env := hosttest.New(t)

	p := newPoint(t, env, 12, 34)
	c := env.FindClass("pkg/Point")
	x := env.GetFieldID(c, "x", "I")
	if got := env.GetField(p, x, host.KindInt).Int(); got != 12 {
		t.Fatalf("x = %d, want 12", got)
	}

	offset := env.GetMethodID(c, "offset", "(II)V")
	env.Call(p, offset, host.KindVoid, []host.Value{host.IntValue(1), host.IntValue(-4)})
	if got := env.GetField(p, x, host.KindInt).Int(); got != 13 {
		t.Fatalf("x after offset = %d, want 13", got)
	}

	count := env.GetStaticFieldID(c, "count", "I")
	if got := env.GetStaticField(c, count, host.KindInt).Int(); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}

	t.Run("virtual and nonvirtual", func(t *testing.T) {
		c3 := env.FindClass("pkg/Point3")
		p3 := env.NewObject(c3, env.GetMethodID(c3, "<init>", "(III)V"),
			[]host.Value{host.IntValue(1), host.IntValue(2), host.IntValue(3)})
		describe := env.GetMethodID(c, "describe", "()Ljava/lang/String;")

		virt := host.String(env.Call(p3, describe, host.KindObject, nil).Ref())
		if got := env.GetStringUTF(virt); got != "point3" {
			t.Errorf("virtual describe = %q, want point3", got)
		}
		base := host.String(env.CallNonvirtual(p3, c, describe, host.KindObject, nil).Ref())
		if got := env.GetStringUTF(base); got != "point" {
			t.Errorf("nonvirtual describe = %q, want point", got)
		}
	})

	t.Run("wrong kind", func(t *testing.T) {
		env.GetField(p, x, host.KindLong)
		if got := pendingClass(env); got != "java.lang.IllegalArgumentException" {
			t.Errorf("pending = %q", got)
		}
		env.ExceptionClear()
	})

	t.Run("missing members", func(t *testing.T) {
		if env.GetFieldID(c, "x", "J") != 0 {
			t.Error("expected zero field id")
		}
		if got := pendingClass(env); got != "java.lang.NoSuchFieldError" {
			t.Errorf("pending = %q", got)
		}
		env.ExceptionClear()

		if env.GetMethodID(c, "offset", "(I)V") != 0 {
			t.Error("expected zero method id")
		}
		if got := pendingClass(env); got != "java.lang.NoSuchMethodError" {
			t.Errorf("pending = %q", got)
		}
		env.ExceptionClear()

		if env.FindClass("pkg/Missing") != 0 {
			t.Error("expected null class")
		}
		if got := pendingClass(env); got != "java.lang.NoClassDefFoundError" {
			t.Errorf("pending = %q", got)
		}
		env.ExceptionClear()
	})

	t.Run("unbound native", func(t *testing.T) {
		m := env.FindClass("pkg/Main")
		plus := env.GetStaticMethodID(m, "plus", "(II)I")
		env.CallStatic(m, plus, host.KindInt, []host.Value{host.IntValue(1), host.IntValue(2)})
		if got := pendingClass(env); got != "java.lang.UnsatisfiedLinkError" {
			t.Errorf("pending = %q", got)
		}
		env.ExceptionClear()
	})
}

func TestVM_Natives(t *testing.T) {
	_, env := hosttest.New(t)
	m := env.FindClass("pkg/Main")

	err := env.RegisterNatives(m, []host.NativeMethod{{
		Name:      "plus",
		Signature: "(II)I",
		Fn: func(_ host.Env, _ host.Ref, args []host.Value) host.Value {
			return host.IntValue(args[0].Int() + args[1].Int())
		},
	}})
	if err != nil {
		t.Fatalf("RegisterNatives: %v", err)
	}
	plus := env.GetStaticMethodID(m, "plus", "(II)I")
	if got := env.CallStatic(m, plus, host.KindInt, []host.Value{host.IntValue(40), host.IntValue(2)}).Int(); got != 42 {
		t.Fatalf("plus = %d, want 42", got)
	}

	err = env.RegisterNatives(m, []host.NativeMethod{{Name: "minus", Signature: "(II)I", Fn: func(host.Env, host.Ref, []host.Value) host.Value { return 0 }}})
	if err == nil {
		t.Fatal("expected registration error for undeclared method")
	}
	env.ExceptionClear()

	if err := env.UnregisterNatives(m); err != nil {
		t.Fatalf("UnregisterNatives: %v", err)
	}
	env.CallStatic(m, plus, host.KindInt, []host.Value{host.IntValue(1), host.IntValue(1)})
	if !env.ExceptionCheck() {
		t.Fatal("expected pending exception after unregistering")
	}
	env.ExceptionClear()
}

func TestVM_Exceptions(t *testing.T) {
	_, env := hosttest.New(t)

	rte := env.FindClass("java/lang/RuntimeException")
	if err := env.ThrowNew(rte, "boom"); err != nil {
		t.Fatalf("ThrowNew: %v", err)
	}
	if !env.ExceptionCheck() {
		t.Fatal("expected pending exception")
	}
	th := env.ExceptionOccurred()
	env.ExceptionClear()
	if env.ExceptionCheck() {
		t.Fatal("expected no pending exception after clear")
	}

	c := env.GetObjectClass(host.Ref(th))
	getMessage := env.GetMethodID(c, "getMessage", "()Ljava/lang/String;")
	msg := host.String(env.Call(host.Ref(th), getMessage, host.KindObject, nil).Ref())
	if got := env.GetStringUTF(msg); got != "boom" {
		t.Fatalf("message = %q, want boom", got)
	}

	if err := env.Throw(th); err != nil {
		t.Fatalf("Throw: %v", err)
	}
	if !env.IsSameObject(host.Ref(env.ExceptionOccurred()), host.Ref(th)) {
		t.Fatal("rethrown exception should be the same object")
	}
	env.ExceptionClear()

	if err := env.ThrowNew(env.FindClass("java/lang/String"), "x"); err == nil {
		t.Fatal("expected error throwing a non-throwable class")
	}
}

func TestVM_Strings(t *testing.T) {
	_, env := hosttest.New(t)

	s := env.NewStringUTF("héllo, 世界")
	if got := env.GetStringUTF(s); got != "héllo, 世界" {
		t.Fatalf("GetStringUTF = %q", got)
	}
	if got := env.GetStringLength(s); got != 9 {
		t.Fatalf("GetStringLength = %d, want 9", got)
	}
	buf := make([]uint16, 2)
	env.GetStringRegion(s, 7, buf)
	if buf[0] != '世' || buf[1] != '界' {
		t.Fatalf("GetStringRegion = %v", buf)
	}
	env.GetStringRegion(s, 8, buf)
	if got := pendingClass(env); got != "java.lang.StringIndexOutOfBoundsException" {
		t.Fatalf("pending = %q", got)
	}
	env.ExceptionClear()
}

func TestVM_Arrays(t *testing.T) {
	vm, env := hosttest.New(t)

	arr := env.NewPrimitiveArray(host.KindInt, 4)
	env.SetArrayRegion(arr, 1, []int32{7, 8, 9})
	got := make([]int32, 4)
	env.GetArrayRegion(arr, 0, got)
	if got[0] != 0 || got[1] != 7 || got[3] != 9 {
		t.Fatalf("region = %v", got)
	}

	t.Run("out of bounds", func(t *testing.T) {
		env.GetArrayRegion(arr, 2, make([]int32, 3))
		if got := pendingClass(env); got != "java.lang.ArrayIndexOutOfBoundsException" {
			t.Errorf("pending = %q", got)
		}
		env.ExceptionClear()
	})

	t.Run("buffer type mismatch", func(t *testing.T) {
		env.GetArrayRegion(arr, 0, make([]int64, 1))
		if !env.ExceptionCheck() {
			t.Error("expected pending exception")
		}
		env.ExceptionClear()
	})

	t.Run("release modes", func(t *testing.T) {
		element := func() int32 {
			one := make([]int32, 1)
			env.GetArrayRegion(arr, 1, one)
			return one[0]
		}

		elems, isCopy := env.GetArrayElements(arr)
		if !isCopy {
			t.Fatal("memhost always copies")
		}
		elems.([]int32)[1] = 100
		env.ReleaseArrayElements(arr, elems, host.Abort)
		if element() != 7 || vm.PinCount() != 0 {
			t.Errorf("abort: element = %d, pins = %d", element(), vm.PinCount())
		}

		elems, _ = env.GetArrayElements(arr)
		elems.([]int32)[1] = 100
		env.ReleaseArrayElements(arr, elems, host.Commit)
		if element() != 100 || vm.PinCount() != 1 {
			t.Errorf("commit: element = %d, pins = %d", element(), vm.PinCount())
		}

		elems.([]int32)[1] = 101
		env.ReleaseArrayElements(arr, elems, host.CopyBack)
		if element() != 101 || vm.PinCount() != 0 {
			t.Errorf("copy-back: element = %d, pins = %d", element(), vm.PinCount())
		}
	})

	t.Run("object arrays", func(t *testing.T) {
		sc := env.FindClass("java/lang/String")
		oa := env.NewObjectArray(2, sc, 0)
		env.SetObjectArrayElement(oa, 1, host.Ref(env.NewStringUTF("b")))
		if env.GetObjectArrayElement(oa, 0) != 0 {
			t.Error("element 0 should be null")
		}
		if got := env.GetStringUTF(host.String(env.GetObjectArrayElement(oa, 1))); got != "b" {
			t.Errorf("element 1 = %q", got)
		}
		env.SetObjectArrayElement(oa, 0, newPoint(t, env, 1, 1))
		if got := pendingClass(env); got != "java.lang.ArrayStoreException" {
			t.Errorf("pending = %q", got)
		}
		env.ExceptionClear()
	})

	t.Run("limits", func(t *testing.T) {
		env.NewPrimitiveArray(host.KindByte, -1)
		if got := pendingClass(env); got != "java.lang.NegativeArraySizeException" {
			t.Errorf("pending = %q", got)
		}
		env.ExceptionClear()
	})
}

func TestVM_ArrayLimit(t *testing.T) {
	_, env := hosttest.New(t, memhost.WithMaxArrayLength(8))
	if env.NewPrimitiveArray(host.KindLong, 9) != 0 {
		t.Fatal("expected allocation failure")
	}
	if got := pendingClass(env); got != "java.lang.OutOfMemoryError" {
		t.Fatalf("pending = %q", got)
	}
	env.ExceptionClear()
}

func TestVM_DirectBuffer(t *testing.T) {
	_, env := hosttest.New(t)

	data := []byte{1, 2, 3}
	buf := env.NewDirectByteBuffer(data)
	if got := env.GetDirectBufferCapacity(buf); got != 3 {
		t.Fatalf("capacity = %d, want 3", got)
	}
	env.GetDirectBufferAddress(buf)[0] = 9
	if data[0] != 9 {
		t.Fatal("direct buffer should alias its backing slice")
	}
	if got := env.GetDirectBufferCapacity(newPoint(t, env, 0, 0)); got != -1 {
		t.Fatalf("capacity of non-buffer = %d, want -1", got)
	}
}

func TestVM_Monitors(t *testing.T) {
	vm, env := hosttest.New(t)

	lock := env.NewGlobalRef(newPoint(t, env, 0, 0))
	defer env.DeleteGlobalRef(lock)

	if err := env.MonitorExit(lock); err == nil {
		t.Fatal("expected error exiting an unowned monitor")
	}
	env.ExceptionClear()

	var (
		mu      sync.Mutex
		counter int
		inside  int
	)
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			tenv, err := vm.AttachCurrentThread()
			if err != nil {
				return err
			}
			defer vm.DetachCurrentThread()

			for j := 0; j < 50; j++ {
				if err := tenv.MonitorEnter(lock); err != nil {
					return err
				}
				if err := tenv.MonitorEnter(lock); err != nil {
					return err
				}
				mu.Lock()
				inside++
				if inside != 1 {
					t.Errorf("%d goroutines inside the monitor", inside)
				}
				mu.Unlock()
				counter++
				mu.Lock()
				inside--
				mu.Unlock()
				if err := tenv.MonitorExit(lock); err != nil {
					return err
				}
				if err := tenv.MonitorExit(lock); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("worker: %v", err)
	}
	if counter != 400 {
		t.Fatalf("counter = %d, want 400", counter)
	}
}

func TestVM_Boxes(t *testing.T) {
	_, env := hosttest.New(t)

	c := env.FindClass("java/lang/Integer")
	valueOf := env.GetStaticMethodID(c, "valueOf", "(I)Ljava/lang/Integer;")
	a := env.CallStatic(c, valueOf, host.KindObject, []host.Value{host.IntValue(5)}).Ref()
	b := env.CallStatic(c, valueOf, host.KindObject, []host.Value{host.IntValue(5)}).Ref()

	equals := env.GetMethodID(c, "equals", "(Ljava/lang/Object;)Z")
	if !env.Call(a, equals, host.KindBoolean, []host.Value{host.RefValue(b)}).Bool() {
		t.Fatal("boxed values should be equal")
	}
	intValue := env.GetMethodID(c, "intValue", "()I")
	if got := env.Call(a, intValue, host.KindInt, nil).Int(); got != 5 {
		t.Fatalf("intValue = %d, want 5", got)
	}
	toString := env.GetMethodID(c, "toString", "()Ljava/lang/String;")
	if got := env.GetStringUTF(host.String(env.Call(a, toString, host.KindObject, nil).Ref())); got != "5" {
		t.Fatalf("toString = %q, want 5", got)
	}
}

func TestVM_GCRoots(t *testing.T) {
	vm, env := hosttest.New(t)

	c := env.FindClass("pkg/Point")
	origin := env.GetStaticFieldID(c, "origin", "Lpkg/Point;")
	p := newPoint(t, env, 0, 0)
	env.SetStaticField(c, origin, host.KindObject, host.RefValue(p))
	w := env.NewWeakGlobalRef(p)
	env.DeleteLocalRef(p)

	vm.GC()
	if env.IsSameObject(w, 0) {
		t.Fatal("object held by a static field should survive GC")
	}

	env.SetStaticField(c, origin, host.KindObject, 0)
	vm.GC()
	if !env.IsSameObject(w, 0) {
		t.Fatal("object should be collected once the static field is cleared")
	}
	if vm.Collections() != 2 {
		t.Fatalf("Collections = %d, want 2", vm.Collections())
	}
}
