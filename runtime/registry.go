package runtime

import (
	"reflect"
	"slices"
	"sync"
	"unicode"

	"go.uber.org/zap"

	jni "github.com/wippyai/go-jni"
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/member"
	"github.com/wippyai/go-jni/thread"
)

// Host is the interface for struct-based native implementations.
// All exported methods (except ClassName) are registered as natives of the
// class.
type Host interface {
	jni.ClassNamer
}

// ExplicitRegistrar lets hosts provide exact native method names when
// lowering the first letter of the Go method name does not apply.
type ExplicitRegistrar interface {
	Natives() map[string]any
}

// Registry collects native implementations per class and binds them to a
// host runtime.
type Registry struct {
	natives map[string][]host.NativeMethod
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{natives: make(map[string][]host.NativeMethod)}
}

// RegisterHost registers the exported methods of h as natives of the class
// it names. Method names are converted by lowering the first letter
// (Plus -> plus) unless h implements ExplicitRegistrar.
func (r *Registry) RegisterHost(h Host) error {
	class := h.ClassName()
	if class == "" {
		return errors.InvalidInput(errors.PhaseRegister, "class name cannot be empty")
	}

	funcs := make(map[string]any)
	if er, ok := h.(ExplicitRegistrar); ok {
		funcs = er.Natives()
	} else {
		rv := reflect.ValueOf(h)
		rt := rv.Type()
		for i := 0; i < rt.NumMethod(); i++ {
			method := rt.Method(i)
			if !method.IsExported() || method.Name == "ClassName" {
				continue
			}
			funcs[toLowerCamel(method.Name)] = rv.Method(i).Interface()
		}
	}

	for name, fn := range funcs {
		if err := r.RegisterFunc(class, name, fn); err != nil {
			return err
		}
	}
	return nil
}

// RegisterFunc registers fn as the native method name of class. See Native
// for the accepted function shapes.
func (r *Registry) RegisterFunc(class, name string, fn any) error {
	if class == "" {
		return errors.InvalidInput(errors.PhaseRegister, "class name cannot be empty")
	}
	nm, err := Native(name, fn)
	if err != nil {
		return errors.Registration(class, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.natives[class]
	list = slices.DeleteFunc(list, func(m host.NativeMethod) bool {
		return m.Name == nm.Name && m.Signature == nm.Signature
	})
	r.natives[class] = append(list, nm)
	return nil
}

// Classes returns the names of the classes with registered natives.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.natives))
	for name := range r.natives {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Natives returns the natives registered for class.
func (r *Registry) Natives(class string) []host.NativeMethod {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.natives[class])
}

// Bind registers every collected native with the host.
func (r *Registry) Bind(env host.Env) error {
	for _, class := range r.Classes() {
		if err := register(env, class, r.Natives(class)); err != nil {
			return err
		}
	}
	return nil
}

// OnLoad makes vm the default VM and binds the registry on an attached
// thread. It is the counterpart of a library load hook.
func OnLoad(vm host.VM, r *Registry) error {
	thread.SetDefaultVM(vm)
	return thread.Do(vm, r.Bind)
}

// RegisterNatives binds natives to the class named by C.
func RegisterNatives[C jni.ClassNamer](env host.Env, natives ...host.NativeMethod) error {
	var c C
	return register(env, c.ClassName(), natives)
}

func register(env host.Env, class string, natives []host.NativeMethod) error {
	g, err := member.Class(env, class)
	if err != nil {
		return errors.Registration(class, "natives", err)
	}
	if err := env.RegisterNatives(host.Class(g.Ref()), natives); err != nil {
		if he, _ := exception.Catch(env); he != nil {
			he.Release()
		}
		return errors.Registration(class, "natives", err)
	}
	for _, nm := range natives {
		Logger().Debug("registered native",
			zap.String("class", class),
			zap.String("name", nm.Name),
			zap.String("descriptor", nm.Signature))
	}
	return nil
}

// toLowerCamel lowers the leading run of capitals, keeping the last one
// when it starts the next word: Plus -> plus, URLFor -> urlFor.
func toLowerCamel(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	if n > 1 && n < len(runes) && unicode.IsLower(runes[n]) {
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
