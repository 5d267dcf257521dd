package member

import (
	"sync"

	"go.uber.org/zap"

	jni "github.com/wippyai/go-jni"
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/ref"
)

type classKey struct {
	vm   host.VM
	name string
}

// classes caches global class references per VM for the life of the
// process.
var classes sync.Map // classKey -> *ref.Global

// ClassOf returns the cached global reference to the class named by C.
// The first call per VM resolves the class; later calls reuse it.
func ClassOf[C jni.ClassNamer](env host.Env) (*ref.Global, error) {
	var c C
	return Class(env, c.ClassName())
}

// Class returns the cached global reference to the named class.
func Class(env host.Env, name string) (*ref.Global, error) {
	key := classKey{vm: env.VM(), name: name}
	if g, ok := classes.Load(key); ok {
		return g.(*ref.Global), nil
	}

	l, err := FindClass(env, name)
	if err != nil {
		return nil, err
	}
	defer l.Release()

	g, err := ref.NewGlobal(env, l)
	if err != nil {
		return nil, err
	}
	actual, loaded := classes.LoadOrStore(key, g)
	if loaded {
		g.Release()
	}
	return actual.(*ref.Global), nil
}

// FindClass looks up a class by internal name and returns a local
// reference to it.
func FindClass(env host.Env, name string) (*ref.Local, error) {
	c := env.FindClass(name)
	if c == 0 || env.ExceptionCheck() {
		return nil, unresolved(env, "class", name, "", "java/lang/NoClassDefFoundError")
	}
	return ref.NewLocal(env, host.Ref(c)), nil
}

// unresolved clears the exception the host raised for a failed lookup and
// reports it as the cause of a resolution error.
func unresolved(env host.Env, what, name, desc, hostClass string) error {
	var cause error
	if he, err := exception.Catch(env); err != nil {
		cause = err
	} else if he != nil {
		he.Release()
		cause = he
	}
	Logger().Debug("unresolved", zap.String("what", what), zap.String("name", name), zap.String("descriptor", desc))
	return errors.Unresolved(what, name, desc, hostClass, cause)
}
