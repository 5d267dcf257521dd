package ref

import (
	"errors"
	"testing"

	"golang.org/x/sync/errgroup"

	jnierrors "github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/host/memhost"
	"github.com/wippyai/go-jni/internal/hosttest"
)

func newPoint(t *testing.T, env host.Env) host.Ref {
	t.Helper()
	c := env.FindClass("pkg/Point")
	defer env.DeleteLocalRef(host.Ref(c))
	obj := env.NewObject(c, env.GetMethodID(c, "<init>", "()V"), nil)
	if obj == 0 {
		t.Fatal("NewObject failed")
	}
	return obj
}

func TestLocal_Release(t *testing.T) {
	_, env := hosttest.New(t)
	base := memhost.LocalCount(env)

	l := NewLocal(env, newPoint(t, env))
	if l.IsNull() {
		t.Fatal("expected non-null local")
	}
	if memhost.LocalCount(env) != base+1 {
		t.Fatalf("LocalCount = %d, want %d", memhost.LocalCount(env), base+1)
	}
	l.Release()
	if memhost.LocalCount(env) != base {
		t.Fatalf("LocalCount after release = %d, want %d", memhost.LocalCount(env), base)
	}
	if err := l.Close(); err == nil {
		t.Fatal("second Close should report misuse")
	}
}

func TestLocal_ChecksPanic(t *testing.T) {
	_, env := hosttest.New(t)
	SetChecks(true)
	defer SetChecks(false)

	l := NewLocal(env, newPoint(t, env))
	l.Release()

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, &jnierrors.Error{Phase: jnierrors.PhaseReference, Kind: jnierrors.KindReferenceMisuse}) {
			t.Fatalf("recovered %v, want reference misuse", r)
		}
	}()
	l.Release()
}

func TestLocal_Take(t *testing.T) {
	_, env := hosttest.New(t)

	r := newPoint(t, env)
	l := NewLocal(env, r)
	if got := l.Take(); got != r {
		t.Fatalf("Take = %v, want %v", got, r)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close after Take: %v", err)
	}
	if env.GetObjectRefType(r) != host.LocalRef {
		t.Fatal("taken reference must stay valid")
	}
}

func TestGlobal_Refcount(t *testing.T) {
	vm, env := hosttest.New(t)

	l := NewLocal(env, newPoint(t, env))
	defer l.Release()

	g, err := NewGlobal(env, l)
	if err != nil {
		t.Fatalf("NewGlobal: %v", err)
	}
	if !IsSame(env, g, l) {
		t.Fatal("global should name the local's object")
	}

	g2 := g.Clone()
	if g.Refs() != 2 {
		t.Fatalf("Refs = %d, want 2", g.Refs())
	}
	g.Release()
	if vm.GlobalCount() != 1 {
		t.Fatal("host global should live while a holder remains")
	}
	if env.GetObjectRefType(g2.Ref()) != host.GlobalRef {
		t.Fatal("remaining holder should be a valid global")
	}
	g2.Release()
	if vm.GlobalCount() != 0 {
		t.Fatalf("GlobalCount = %d, want 0", vm.GlobalCount())
	}
}

func TestClone_AfterRelease(t *testing.T) {
	vm, env := hosttest.New(t)

	l := NewLocal(env, newPoint(t, env))
	defer l.Release()

	g, err := NewGlobal(env, l)
	if err != nil {
		t.Fatalf("NewGlobal: %v", err)
	}
	g.Release()
	if c := g.Clone(); c != nil {
		t.Fatalf("Clone of a released global = %v, want nil", c)
	}
	if g.Refs() != 0 || vm.GlobalCount() != 0 {
		t.Fatalf("Refs = %d, GlobalCount = %d, want 0", g.Refs(), vm.GlobalCount())
	}

	w, err := NewWeak(env, l)
	if err != nil {
		t.Fatalf("NewWeak: %v", err)
	}
	w.Release()
	if c := w.Clone(); c != nil {
		t.Fatalf("Clone of a released weak = %v, want nil", c)
	}
	if w.Refs() != 0 || vm.WeakCount() != 0 {
		t.Fatalf("Refs = %d, WeakCount = %d, want 0", w.Refs(), vm.WeakCount())
	}

	SetChecks(true)
	defer SetChecks(false)
	defer func() {
		if recover() == nil {
			t.Fatal("Clone of a released global should panic with checks on")
		}
	}()
	g.Clone()
}

func TestGlobal_SharedAcrossGoroutines(t *testing.T) {
	vm, env := hosttest.New(t)

	l := NewLocal(env, newPoint(t, env))
	g, err := NewGlobal(env, l)
	l.Release()
	if err != nil {
		t.Fatalf("NewGlobal: %v", err)
	}

	var eg errgroup.Group
	for i := 0; i < 8; i++ {
		holder := g.Clone()
		eg.Go(func() error {
			defer holder.Release()
			tenv, err := vm.AttachCurrentThread()
			if err != nil {
				return err
			}
			defer vm.DetachCurrentThread()

			loc := holder.Local(tenv)
			defer loc.Release()
			if loc.IsNull() {
				t.Error("local from global should not be null")
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("worker: %v", err)
	}
	if g.Refs() != 1 {
		t.Fatalf("Refs = %d, want 1", g.Refs())
	}
	g.Release()
	if vm.GlobalCount() != 0 {
		t.Fatalf("GlobalCount = %d, want 0", vm.GlobalCount())
	}
}

func TestWeak_Expiry(t *testing.T) {
	vm, env := hosttest.New(t)

	l := NewLocal(env, newPoint(t, env))
	w, err := NewWeak(env, l)
	if err != nil {
		t.Fatalf("NewWeak: %v", err)
	}
	defer w.Release()

	if w.Expired(env) {
		t.Fatal("weak should not be expired while a local holds the target")
	}
	if !w.IsSame(env, l) {
		t.Fatal("weak should name the local's object")
	}
	locked := w.Lock(env)
	if locked == nil || !IsSame(env, locked, l) {
		t.Fatal("Lock should return the target")
	}
	locked.Release()

	l.Release()
	if w.Expired(env) {
		t.Fatal("weak should not expire before a collection")
	}
	vm.GC()

	if !w.Expired(env) {
		t.Fatal("weak should expire once its target is collected")
	}
	if w.Lock(env) != nil {
		t.Fatal("Lock of an expired weak should return nil")
	}
}

func TestWeak_CloneRelease(t *testing.T) {
	vm, env := hosttest.New(t)

	l := NewLocal(env, newPoint(t, env))
	defer l.Release()
	w, err := NewWeak(env, l)
	if err != nil {
		t.Fatalf("NewWeak: %v", err)
	}
	w2 := w.Clone()
	w.Release()
	if vm.WeakCount() != 1 {
		t.Fatalf("WeakCount = %d, want 1", vm.WeakCount())
	}
	w2.Release()
	if vm.WeakCount() != 0 {
		t.Fatalf("WeakCount = %d, want 0", vm.WeakCount())
	}
}

func TestNullHandles(t *testing.T) {
	_, env := hosttest.New(t)

	g, err := NewGlobal(env, nil)
	if err != nil || !g.IsNull() {
		t.Fatalf("NewGlobal(nil) = %v, %v", g, err)
	}
	g.Release()

	w, err := NewWeak(env, Raw(0))
	if err != nil {
		t.Fatalf("NewWeak(null): %v", err)
	}
	if !w.Expired(env) || w.Lock(env) != nil {
		t.Fatal("null weak should be expired")
	}
	w.Release()
}

func TestScope_Close(t *testing.T) {
	_, env := hosttest.New(t)
	base := memhost.LocalCount(env)

	s := NewScope(env)
	s.Adopt(newPoint(t, env))
	s.Adopt(newPoint(t, env))
	kept := s.Adopt(newPoint(t, env)).Take()
	released := s.Adopt(newPoint(t, env))
	released.Release()

	if err := s.Close(); err == nil {
		t.Fatal("Close should report the reference released outside the scope")
	}
	if got := memhost.LocalCount(env); got != base+1 {
		t.Fatalf("LocalCount = %d, want %d", got, base+1)
	}
	env.DeleteLocalRef(kept)
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestWithLocalFrame(t *testing.T) {
	_, env := hosttest.New(t)
	base := memhost.LocalCount(env)

	out, err := WithLocalFrame(env, 8, func() (host.Ref, error) {
		newPoint(t, env)
		newPoint(t, env)
		return newPoint(t, env), nil
	})
	if err != nil {
		t.Fatalf("WithLocalFrame: %v", err)
	}
	if got := memhost.LocalCount(env); got != base+1 {
		t.Fatalf("LocalCount = %d, want %d", got, base+1)
	}
	out.Release()

	boom := errors.New("boom")
	if _, err := WithLocalFrame(env, 8, func() (host.Ref, error) {
		newPoint(t, env)
		return 0, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if got := memhost.LocalCount(env); got != base {
		t.Fatalf("LocalCount = %d, want %d", got, base)
	}
}

func TestSynchronized(t *testing.T) {
	vm, env := hosttest.New(t)

	l := NewLocal(env, newPoint(t, env))
	g, err := NewGlobal(env, l)
	l.Release()
	if err != nil {
		t.Fatalf("NewGlobal: %v", err)
	}
	defer g.Release()

	total := 0
	var eg errgroup.Group
	for i := 0; i < 4; i++ {
		eg.Go(func() error {
			tenv, err := vm.AttachCurrentThread()
			if err != nil {
				return err
			}
			defer vm.DetachCurrentThread()
			for j := 0; j < 100; j++ {
				m, err := Synchronized(tenv, g)
				if err != nil {
					return err
				}
				total++
				if err := m.Exit(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("worker: %v", err)
	}
	if total != 400 {
		t.Fatalf("total = %d, want 400", total)
	}

	if _, err := Synchronized(env, Raw(0)); err == nil {
		t.Fatal("expected error entering the monitor of null")
	}
	env.ExceptionClear()
}

func TestAs(t *testing.T) {
	type point host.Ref
	h := Of(point(42))
	if got := As[host.Class](h); got != 42 {
		t.Fatalf("As = %v, want 42", got)
	}
	if As[point](nil) != 0 {
		t.Fatal("As(nil) should be null")
	}
}
