package ref

import (
	"go.uber.org/multierr"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
)

// Scope collects local references and releases them together, in reverse
// order of adoption.
//
//	s := ref.NewScope(env)
//	defer s.Close()
//	cls := s.Adopt(host.Ref(env.FindClass("pkg/Point")))
type Scope struct {
	env    host.Env
	locals []*Local
	closed bool
}

// NewScope returns an empty scope for env.
func NewScope(env host.Env) *Scope {
	return &Scope{env: env}
}

// Adopt takes ownership of a local reference returned by the host.
func (s *Scope) Adopt(r host.Ref) *Local {
	return s.Track(NewLocal(s.env, r))
}

// Track hands l to the scope.
func (s *Scope) Track(l *Local) *Local {
	if s.closed {
		misuse(errors.ReferenceMisuse("adopt into closed scope"))
		return l
	}
	s.locals = append(s.locals, l)
	return l
}

// Len returns the number of tracked references.
func (s *Scope) Len() int { return len(s.locals) }

// Close releases every tracked reference that was not taken. Misuse found
// while releasing is returned rather than logged.
func (s *Scope) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	for i := len(s.locals) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.locals[i].Close())
	}
	s.locals = nil
	return err
}
