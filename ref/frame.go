package ref

import (
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
)

// WithLocalFrame runs fn inside a new host local frame of the given
// capacity. Every local created by fn is deleted when it returns, except
// the handle fn returns, which is carried into the enclosing frame.
func WithLocalFrame(env host.Env, capacity int32, fn func() (host.Ref, error)) (*Local, error) {
	if err := env.PushLocalFrame(capacity); err != nil {
		return nil, errors.Wrap(errors.PhaseReference, errors.KindAllocation, err, "push local frame")
	}

	popped := false
	defer func() {
		if !popped {
			env.PopLocalFrame(0)
		}
	}()

	result, err := fn()
	popped = true
	if err != nil {
		env.PopLocalFrame(0)
		return nil, err
	}
	return NewLocal(env, env.PopLocalFrame(result)), nil
}
