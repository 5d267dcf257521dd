package ref

import (
	"sync/atomic"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
)

// Weak is one holder of a shared weak global reference. It does not keep
// its target alive; Lock upgrades it to a local reference while the target
// still exists.
//
// Expired is only a snapshot: the target may be collected between an
// Expired call and a later Lock, so the result of Lock must be checked.
type Weak struct {
	s        *shared
	released atomic.Bool
}

// NewWeak creates a weak global reference to the object named by h.
func NewWeak(env host.Env, h Handle) (*Weak, error) {
	r := refOf(h)
	var w host.Ref
	if r != 0 {
		w = env.NewWeakGlobalRef(r)
		if w == 0 {
			return nil, errors.New(errors.PhaseReference, errors.KindAllocation).
				Detail("host refused weak global reference").
				Build()
		}
	}
	s := &shared{vm: env.VM(), ref: w, drop: func(env host.Env, r host.Ref) { env.DeleteWeakGlobalRef(r) }}
	s.refs.Store(1)
	return &Weak{s: s}, nil
}

// Ref returns the weak handle.
func (w *Weak) Ref() host.Ref {
	if w.released.Load() {
		misuse(errors.ReferenceMisuse("use of released weak reference"))
		return 0
	}
	return w.s.ref
}

// Lock returns a local reference to the target, or nil once it has been
// collected.
func (w *Weak) Lock(env host.Env) *Local {
	r := w.Ref()
	if r == 0 {
		return nil
	}
	l := env.NewLocalRef(r)
	if l == 0 {
		return nil
	}
	return NewLocal(env, l)
}

// Expired reports whether the target has been collected. A false result
// can be stale by the time it is acted on; use Lock and check for nil.
func (w *Weak) Expired(env host.Env) bool {
	return env.IsSameObject(w.Ref(), 0)
}

// IsSame reports whether the target is the object named by h.
func (w *Weak) IsSame(env host.Env, h Handle) bool {
	return env.IsSameObject(w.Ref(), refOf(h))
}

// Refs returns the number of live holders.
func (w *Weak) Refs() int64 { return w.s.refs.Load() }

// Clone returns a new holder of the same weak reference, or nil when
// this holder has already been released.
func (w *Weak) Clone() *Weak {
	if w.released.Load() {
		misuse(errors.ReferenceMisuse("clone of released weak reference"))
		return nil
	}
	w.s.refs.Add(1)
	return &Weak{s: w.s}
}

// Release drops this holder.
func (w *Weak) Release() {
	if w.released.Swap(true) {
		misuse(errors.ReferenceMisuse("weak reference released twice"))
		return
	}
	w.s.release()
}
