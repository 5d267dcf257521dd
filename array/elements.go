package array

import (
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/ref"
)

// Elements is a view of the elements of a primitive array, either pinned
// or copied by the host. It must be released exactly once. On release the
// view is copied back unless it was marked abortive.
type Elements[T Primitive] struct {
	env      host.Env
	arr      host.Ref
	data     []T
	isCopy   bool
	abort    bool
	released bool
}

// Pin acquires the elements of arr. With abortive set, changes made
// through the view are discarded on release unless Commit is called.
func Pin[T Primitive](env host.Env, arr ref.Handle, abortive bool) (*Elements[T], error) {
	r := arr.Ref()
	raw, isCopy := env.GetArrayElements(r)
	if err := exception.Check(env); err != nil {
		return nil, err
	}
	data, ok := raw.([]T)
	if !ok {
		env.ReleaseArrayElements(r, raw, host.Abort)
		var zero T
		return nil, errors.TypeMismatch(errors.PhaseArray, nil, typeName(zero), KindOf[T]().String())
	}
	return &Elements[T]{env: env, arr: r, data: data, isCopy: isCopy, abort: abortive}, nil
}

func typeName(v any) string {
	switch v.(type) {
	case host.Boolean:
		return "host.Boolean"
	case int8:
		return "int8"
	case uint16:
		return "uint16"
	case int16:
		return "int16"
	case int32:
		return "int32"
	case int64:
		return "int64"
	case float32:
		return "float32"
	default:
		return "float64"
	}
}

// Data returns the elements. The slice must not be used after Release.
func (e *Elements[T]) Data() []T { return e.data }

// Len returns the number of elements.
func (e *Elements[T]) Len() int { return len(e.data) }

// IsCopy reports whether the host copied the elements instead of pinning
// them.
func (e *Elements[T]) IsCopy() bool { return e.isCopy }

// Abortive reports whether Release discards changes.
func (e *Elements[T]) Abortive() bool { return e.abort }

// SetAbort selects whether Release discards changes.
func (e *Elements[T]) SetAbort(abort bool) { e.abort = abort }

// Commit copies the view back into the array without releasing it.
func (e *Elements[T]) Commit() error {
	if e.released {
		return errors.ReferenceMisuse("commit of released array elements")
	}
	e.env.ReleaseArrayElements(e.arr, e.data, host.Commit)
	return exception.Check(e.env)
}

// Release ends the view, copying it back unless it is abortive.
func (e *Elements[T]) Release() error {
	if e.released {
		return errors.ReferenceMisuse("array elements released twice")
	}
	e.released = true
	mode := host.CopyBack
	if e.abort {
		mode = host.Abort
	}
	e.env.ReleaseArrayElements(e.arr, e.data, mode)
	e.data = nil
	return exception.Check(e.env)
}
