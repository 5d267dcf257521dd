// Package hosttest provides fixture classes on an in-memory host for tests.
package hosttest

import (
	"testing"

	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/host/memhost"
)

// Point is the pkg/Point fixture class.
type Point host.Ref

func (Point) ClassName() string { return "pkg/Point" }

// Point3 is pkg/Point3, a subclass of pkg/Point overriding describe.
type Point3 host.Ref

func (Point3) ClassName() string { return "pkg/Point3" }

// Main is pkg/Main, which declares native methods bound by tests.
type Main host.Ref

func (Main) ClassName() string { return "pkg/Main" }

// New returns a VM with the fixture classes defined and the calling
// goroutine attached. The goroutine is detached on cleanup.
func New(tb testing.TB, opts ...memhost.Option) (*memhost.VM, host.Env) {
	tb.Helper()

	vm := memhost.New(opts...)
	Define(vm)

	env, err := vm.AttachCurrentThread()
	if err != nil {
		tb.Fatalf("attach: %v", err)
	}
	tb.Cleanup(func() {
		_ = vm.DetachCurrentThread()
	})
	return vm, env
}

// Define adds the fixture classes to vm.
func Define(vm *memhost.VM) {
	vm.MustDefine(memhost.ClassSpec{
		Name: "pkg/Point",
		Fields: []memhost.FieldSpec{
			{Name: "x", Descriptor: "I"},
			{Name: "y", Descriptor: "I"},
			{Name: "label", Descriptor: "Ljava/lang/String;"},
			{Name: "count", Descriptor: "I", Static: true},
			{Name: "origin", Descriptor: "Lpkg/Point;", Static: true},
		},
		Methods: []memhost.MethodSpec{
			{Name: "<init>", Descriptor: "()V", Impl: pointInit},
			{Name: "<init>", Descriptor: "(II)V", Impl: pointInit},
			{Name: "getX", Descriptor: "()I", Impl: func(env host.Env, recv host.Ref, _ []host.Value) host.Value {
				return getInt(env, recv, "x")
			}},
			{Name: "getY", Descriptor: "()I", Impl: func(env host.Env, recv host.Ref, _ []host.Value) host.Value {
				return getInt(env, recv, "y")
			}},
			{Name: "offset", Descriptor: "(II)V", Impl: func(env host.Env, recv host.Ref, args []host.Value) host.Value {
				setInt(env, recv, "x", getInt(env, recv, "x").Int()+args[0].Int())
				setInt(env, recv, "y", getInt(env, recv, "y").Int()+args[1].Int())
				return 0
			}},
			{Name: "describe", Descriptor: "()Ljava/lang/String;", Impl: func(env host.Env, _ host.Ref, _ []host.Value) host.Value {
				return host.RefValue(host.Ref(env.NewStringUTF("point")))
			}},
			{Name: "distance", Descriptor: "(Lpkg/Point;)J", Impl: func(env host.Env, recv host.Ref, args []host.Value) host.Value {
				dx := int64(getInt(env, recv, "x").Int() - getInt(env, args[0].Ref(), "x").Int())
				dy := int64(getInt(env, recv, "y").Int() - getInt(env, args[0].Ref(), "y").Int())
				return host.LongValue(dx*dx + dy*dy)
			}},
			{Name: "equals", Descriptor: "(Ljava/lang/Object;)Z", Impl: func(env host.Env, recv host.Ref, args []host.Value) host.Value {
				other := args[0].Ref()
				if other == 0 || !env.IsInstanceOf(other, env.FindClass("pkg/Point")) {
					return host.BooleanValue(false)
				}
				return host.BooleanValue(getInt(env, recv, "x") == getInt(env, other, "x") &&
					getInt(env, recv, "y") == getInt(env, other, "y"))
			}},
			{Name: "hashCode", Descriptor: "()I", Impl: func(env host.Env, recv host.Ref, _ []host.Value) host.Value {
				return host.IntValue(31*getInt(env, recv, "x").Int() + getInt(env, recv, "y").Int())
			}},
			{Name: "scale", Descriptor: "([II)[I", Static: true, Impl: func(env host.Env, _ host.Ref, args []host.Value) host.Value {
				arr := args[0].Ref()
				n := env.GetArrayLength(arr)
				buf := make([]int32, n)
				env.GetArrayRegion(arr, 0, buf)
				for i := range buf {
					buf[i] *= args[1].Int()
				}
				out := env.NewPrimitiveArray(host.KindInt, n)
				env.SetArrayRegion(out, 0, buf)
				return host.RefValue(out)
			}},
			{Name: "sum", Descriptor: "(JDFSB)D", Static: true, Impl: func(_ host.Env, _ host.Ref, args []host.Value) host.Value {
				return host.DoubleValue(float64(args[0].Long()) + args[1].Double() + float64(args[2].Float()) +
					float64(args[3].Short()) + float64(args[4].Byte()))
			}},
		},
	})
	vm.MustDefine(memhost.ClassSpec{
		Name:  "pkg/Point3",
		Super: "pkg/Point",
		Fields: []memhost.FieldSpec{
			{Name: "z", Descriptor: "I"},
		},
		Methods: []memhost.MethodSpec{
			{Name: "<init>", Descriptor: "(III)V", Impl: func(env host.Env, recv host.Ref, args []host.Value) host.Value {
				setInt(env, recv, "x", args[0].Int())
				setInt(env, recv, "y", args[1].Int())
				setInt(env, recv, "z", args[2].Int())
				return 0
			}},
			{Name: "describe", Descriptor: "()Ljava/lang/String;", Impl: func(env host.Env, _ host.Ref, _ []host.Value) host.Value {
				return host.RefValue(host.Ref(env.NewStringUTF("point3")))
			}},
		},
	})
	vm.MustDefine(memhost.ClassSpec{
		Name: "pkg/Main",
		Methods: []memhost.MethodSpec{
			{Name: "plus", Descriptor: "(II)I", Static: true, Native: true},
			{Name: "greet", Descriptor: "(Ljava/lang/String;)Ljava/lang/String;", Static: true, Native: true},
			{Name: "fail", Descriptor: "()V", Static: true, Native: true},
			{Name: "total", Descriptor: "([I)J", Static: true, Native: true},
			{Name: "norm", Descriptor: "()I", Native: true},
		},
	})
}

func pointInit(env host.Env, recv host.Ref, args []host.Value) host.Value {
	if len(args) == 2 {
		setInt(env, recv, "x", args[0].Int())
		setInt(env, recv, "y", args[1].Int())
	}
	c := env.FindClass("pkg/Point")
	defer env.DeleteLocalRef(host.Ref(c))
	id := env.GetStaticFieldID(c, "count", "I")
	env.SetStaticField(c, id, host.KindInt, host.IntValue(env.GetStaticField(c, id, host.KindInt).Int()+1))
	return 0
}

func getInt(env host.Env, obj host.Ref, name string) host.Value {
	c := env.FindClass("pkg/Point")
	defer env.DeleteLocalRef(host.Ref(c))
	return env.GetField(obj, env.GetFieldID(c, name, "I"), host.KindInt)
}

func setInt(env host.Env, obj host.Ref, name string, v int32) {
	c := env.GetObjectClass(obj)
	defer env.DeleteLocalRef(host.Ref(c))
	env.SetField(obj, env.GetFieldID(c, name, "I"), host.KindInt, host.IntValue(v))
}
