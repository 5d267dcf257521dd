package ref

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/thread"
)

type shared struct {
	vm   host.VM
	ref  host.Ref
	refs atomic.Int64
	drop func(env host.Env, r host.Ref)
}

func (s *shared) release() {
	if s.refs.Add(-1) != 0 || s.ref == 0 {
		return
	}
	err := thread.Do(s.vm, func(env host.Env) error {
		s.drop(env, s.ref)
		return nil
	})
	if err != nil {
		Logger().Error("delete host reference", zap.Uintptr("ref", uintptr(s.ref)), zap.Error(err))
	}
}

// Global is one holder of a shared global reference. Every holder created
// by NewGlobal or Clone releases once; the host reference is deleted when
// the last holder releases. A Global may be used from any goroutine.
type Global struct {
	s        *shared
	released atomic.Bool
}

// NewGlobal promotes h to a global reference.
func NewGlobal(env host.Env, h Handle) (*Global, error) {
	r := refOf(h)
	var g host.Ref
	if r != 0 {
		g = env.NewGlobalRef(r)
		if g == 0 {
			return nil, errors.New(errors.PhaseReference, errors.KindAllocation).
				Detail("host refused global reference").
				Build()
		}
	}
	s := &shared{vm: env.VM(), ref: g, drop: func(env host.Env, r host.Ref) { env.DeleteGlobalRef(r) }}
	s.refs.Store(1)
	return &Global{s: s}, nil
}

// Ref returns the global handle.
func (g *Global) Ref() host.Ref {
	if g.released.Load() {
		misuse(errors.ReferenceMisuse("use of released global reference"))
		return 0
	}
	return g.s.ref
}

// IsNull reports whether the reference is null.
func (g *Global) IsNull() bool { return g.s.ref == 0 }

// Refs returns the number of live holders.
func (g *Global) Refs() int64 { return g.s.refs.Load() }

// Clone returns a new holder of the same global reference, or nil when
// this holder has already been released.
func (g *Global) Clone() *Global {
	if g.released.Load() {
		misuse(errors.ReferenceMisuse("clone of released global reference"))
		return nil
	}
	g.s.refs.Add(1)
	return &Global{s: g.s}
}

// Local returns a new local reference to the object in env.
func (g *Global) Local(env host.Env) *Local {
	return NewLocalFrom(env, g)
}

// Release drops this holder.
func (g *Global) Release() {
	if g.released.Swap(true) {
		misuse(errors.ReferenceMisuse("global reference released twice"))
		return
	}
	g.s.release()
}
