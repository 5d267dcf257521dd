package thread

import (
	goruntime "runtime"
	"sync"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
)

var (
	defaultVM host.VM
	defaultMu sync.RWMutex
)

// SetDefaultVM installs the process-wide VM. Only the first non-nil VM is
// kept; it reports whether vm was installed.
func SetDefaultVM(vm host.VM) bool {
	if vm == nil {
		return false
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultVM != nil {
		return false
	}
	defaultVM = vm
	return true
}

// DefaultVM returns the process-wide VM, or nil if none was installed.
func DefaultVM() host.VM {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultVM
}

// Attachment pins the calling goroutine to its OS thread while it holds an
// environment of a VM.
type Attachment struct {
	vm       host.VM
	env      host.Env
	attached bool
	done     bool
}

// Attach locks the calling goroutine to its OS thread and returns the
// thread's environment, attaching the thread if it is not attached yet.
// The returned Attachment must be detached on the same goroutine.
func Attach(vm host.VM) (*Attachment, error) {
	if vm == nil {
		return nil, errors.Attach("no VM", nil)
	}
	goruntime.LockOSThread()

	if env, ok := vm.GetEnv(); ok {
		return &Attachment{vm: vm, env: env}, nil
	}
	env, err := vm.AttachCurrentThread()
	if err != nil {
		goruntime.UnlockOSThread()
		return nil, errors.Attach("attach current thread", err)
	}
	return &Attachment{vm: vm, env: env, attached: true}, nil
}

// Env returns the environment of the attached thread.
func (a *Attachment) Env() host.Env {
	return a.env
}

// Attached reports whether Attach attached the thread itself, in which case
// Detach detaches it again.
func (a *Attachment) Attached() bool {
	return a.attached
}

// Detach undoes Attach. It detaches the thread only if Attach attached it.
// Calling Detach more than once has no effect.
func (a *Attachment) Detach() error {
	if a.done {
		return nil
	}
	a.done = true
	defer goruntime.UnlockOSThread()

	if !a.attached {
		return nil
	}
	if err := a.vm.DetachCurrentThread(); err != nil {
		return errors.Attach("detach current thread", err)
	}
	return nil
}

// Do runs fn with the environment of the calling thread. The thread is
// attached for the duration of fn when it was not attached already.
func Do(vm host.VM, fn func(env host.Env) error) (err error) {
	a, err := Attach(vm)
	if err != nil {
		return err
	}
	defer func() {
		if derr := a.Detach(); err == nil {
			err = derr
		}
	}()
	return fn(a.env)
}

// Current returns the environment of the calling thread for the default VM.
func Current() (host.Env, error) {
	vm := DefaultVM()
	if vm == nil {
		return nil, errors.Attach("no default VM installed", nil)
	}
	env, ok := vm.GetEnv()
	if !ok {
		return nil, errors.Attach("current thread is not attached", nil)
	}
	return env, nil
}
