package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/go-jni/collections"
	"github.com/wippyai/go-jni/config"
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/host/memhost"
	"github.com/wippyai/go-jni/member"
	"github.com/wippyai/go-jni/ref"
	"github.com/wippyai/go-jni/runtime"
	"github.com/wippyai/go-jni/thread"
)

// Greeter is the demo/Greeter class.
type Greeter host.Ref

func (Greeter) ClassName() string { return "demo/Greeter" }

var greeterSpec = memhost.ClassSpec{
	Name: "demo/Greeter",
	Fields: []memhost.FieldSpec{
		{Name: "name", Descriptor: "Ljava/lang/String;"},
		{Name: "count", Descriptor: "I"},
	},
	Methods: []memhost.MethodSpec{
		{Name: "<init>", Descriptor: "(Ljava/lang/String;)V", Native: true},
		{Name: "greet", Descriptor: "()Ljava/lang/String;", Native: true},
		{Name: "sum", Descriptor: "([I)J", Static: true, Native: true},
		{Name: "tally", Descriptor: "(Ljava/util/Map;)J", Static: true, Native: true},
		{Name: "fail", Descriptor: "(Ljava/lang/String;)V", Static: true, Native: true},
	},
}

// greeterNatives implements the native methods of demo/Greeter.
type greeterNatives struct{}

func (greeterNatives) ClassName() string { return "demo/Greeter" }

func (greeterNatives) Natives() map[string]any {
	return map[string]any{
		"<init>": func(env host.Env, this Greeter, name string) error {
			f, err := member.ResolveField[Greeter, string](env, "name")
			if err != nil {
				return err
			}
			return f.Set(env, ref.Of(this), name)
		},
		"greet": func(env host.Env, this Greeter) (string, error) {
			name, err := member.ResolveField[Greeter, string](env, "name")
			if err != nil {
				return "", err
			}
			count, err := member.ResolveField[Greeter, int32](env, "count")
			if err != nil {
				return "", err
			}
			n, err := count.Get(env, ref.Of(this))
			if err != nil {
				return "", err
			}
			if err := count.Set(env, ref.Of(this), n+1); err != nil {
				return "", err
			}
			s, err := name.Get(env, ref.Of(this))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Hello, %s (#%d)", s, n+1), nil
		},
		"sum": func(_ host.Env, _ host.Class, xs []int32) int64 {
			var total int64
			for _, x := range xs {
				total += int64(x)
			}
			return total
		},
		"tally": func(_ host.Env, _ host.Class, m map[string]int64) int64 {
			var total int64
			for _, v := range m {
				total += v
			}
			return total
		},
		"fail": func(_ host.Env, _ host.Class, msg string) error {
			return errors.New(errors.PhaseGuard, errors.KindInvalidInput).
				HostClass("java/lang/IllegalArgumentException").
				Detail("%s", msg).
				Build()
		},
	}
}

// runDemo defines demo/Greeter on a fresh in-memory host, binds its
// natives and exercises members, arrays, collections, exceptions and
// references against it.
func runDemo(w io.Writer, cfg *config.Config) error {
	l, err := cfg.Apply(nil)
	if err != nil {
		return err
	}
	defer l.Sync()

	vm := memhost.New(memhost.WithLogger(l.Named("memhost")))
	if err := vm.DefineClass(greeterSpec); err != nil {
		return err
	}
	if err := collections.RegisterMap[string, int64](); err != nil {
		return err
	}

	reg := runtime.NewRegistry()
	if err := reg.RegisterHost(greeterNatives{}); err != nil {
		return err
	}
	if err := runtime.OnLoad(vm, reg); err != nil {
		return err
	}

	err = thread.Do(vm, func(env host.Env) error {
		_, err := ref.WithLocalFrame(env, cfg.LocalCapacity, func() (host.Ref, error) {
			return 0, session(w, vm, env)
		})
		return err
	})
	if err != nil {
		return err
	}
	l.Info("demo finished", zap.Int("collections", vm.Collections()), zap.Int("globals", vm.GlobalCount()))
	return nil
}

func session(w io.Writer, vm *memhost.VM, env host.Env) error {
	ctor, err := member.ResolveConstructor[Greeter, func(string)](env)
	if err != nil {
		return err
	}
	obj, err := ctor.New(env, "gopher")
	if err != nil {
		return err
	}

	greet, err := member.ResolveMethod[Greeter, func() (string, error)](env, "greet")
	if err != nil {
		return err
	}
	hello := greet.Bind(env, obj)
	for range 2 {
		s, err := hello()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "greet:  %s\n", s)
	}

	sum, err := member.ResolveStaticMethod[Greeter, func([]int32) int64](env, "sum")
	if err != nil {
		return err
	}
	total, err := member.Returns[int64](sum.Call(env, []int32{1, 2, 3, 4}))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "sum:    %d (%s)\n", total, sum.Descriptor())

	tally, err := member.ResolveStaticMethod[Greeter, func(map[string]int64) int64](env, "tally")
	if err != nil {
		return err
	}
	total, err = member.Returns[int64](tally.Call(env, map[string]int64{"a": 40, "b": 2}))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "tally:  %d (%s)\n", total, tally.Descriptor())

	fail, err := member.ResolveStaticMethod[Greeter, func(string)](env, "fail")
	if err != nil {
		return err
	}
	if _, err := fail.Call(env, "no greeting today"); exception.IsPending(err) {
		he, err := exception.Catch(env)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "caught: %v\n", he)
		he.Release()
	}

	g, err := ref.NewGlobal(env, obj)
	if err != nil {
		return err
	}
	weak, err := ref.NewWeak(env, obj)
	if err != nil {
		g.Release()
		return err
	}
	defer weak.Release()
	obj.Release()

	vm.GC()
	fmt.Fprintf(w, "weak:   expired=%t while a global is held\n", weak.Expired(env))
	g.Release()
	vm.GC()
	fmt.Fprintf(w, "weak:   expired=%t after the global is released\n", weak.Expired(env))
	return nil
}
