package ref

import (
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
)

// Handle is implemented by every reference wrapper.
type Handle interface {
	Ref() host.Ref
}

// Raw adapts a bare handle of any handle kind to Handle.
type Raw host.Ref

func (r Raw) Ref() host.Ref { return host.Ref(r) }

// Of returns a Handle for any handle-kinded value.
func Of[T ~uintptr](h T) Handle {
	return Raw(h)
}

// As converts the handle carried by h to a typed handle kind.
func As[T ~uintptr](h Handle) T {
	if h == nil {
		return 0
	}
	return T(h.Ref())
}

// Local owns one local reference of the environment that created it. It
// must be released exactly once, on the goroutine that owns the
// environment, unless ownership is given up with Take.
type Local struct {
	env      host.Env
	ref      host.Ref
	released bool
	taken    bool
}

// NewLocal adopts a local reference returned by the host.
func NewLocal(env host.Env, r host.Ref) *Local {
	return &Local{env: env, ref: r}
}

// NewLocalFrom creates a new local reference to the object named by h,
// which may be a local, global or weak handle.
func NewLocalFrom(env host.Env, h Handle) *Local {
	if h == nil || h.Ref() == 0 {
		return &Local{env: env}
	}
	return &Local{env: env, ref: env.NewLocalRef(h.Ref())}
}

// Ref returns the underlying handle. Using a released reference is misuse
// and yields the null handle.
func (l *Local) Ref() host.Ref {
	if l.released {
		misuse(errors.ReferenceMisuse("use of released local reference"))
		return 0
	}
	return l.ref
}

// Env returns the environment the reference belongs to.
func (l *Local) Env() host.Env { return l.env }

// IsNull reports whether the reference is null.
func (l *Local) IsNull() bool { return l.ref == 0 }

// Released reports whether the reference was released or taken.
func (l *Local) Released() bool { return l.released }

// Take gives up ownership and returns the handle. The caller becomes
// responsible for deleting it, or returns it to the host.
func (l *Local) Take() host.Ref {
	if l.released {
		misuse(errors.ReferenceMisuse("take of released local reference"))
		return 0
	}
	l.released = true
	l.taken = true
	return l.ref
}

// Release deletes the local reference.
func (l *Local) Release() {
	if err := l.Close(); err != nil {
		misuse(err)
	}
}

// Close deletes the local reference, reporting a second release as an
// error instead of treating it as misuse.
func (l *Local) Close() error {
	if l.taken {
		return nil
	}
	if l.released {
		return errors.ReferenceMisuse("local reference released twice")
	}
	l.released = true
	if l.ref != 0 {
		l.env.DeleteLocalRef(l.ref)
	}
	return nil
}

// IsSame reports whether a and b name the same object.
func IsSame(env host.Env, a, b Handle) bool {
	return env.IsSameObject(refOf(a), refOf(b))
}

// GetObjectClass returns the class of the object named by h.
func GetObjectClass(env host.Env, h Handle) *Local {
	return NewLocal(env, host.Ref(env.GetObjectClass(refOf(h))))
}

// IsInstanceOf reports whether the object named by h is an instance of c.
func IsInstanceOf(env host.Env, h Handle, c Handle) bool {
	return env.IsInstanceOf(refOf(h), host.Class(refOf(c)))
}

func refOf(h Handle) host.Ref {
	if h == nil {
		return 0
	}
	return h.Ref()
}
