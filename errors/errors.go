package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve   Phase = "resolve"   // class and member lookup
	PhaseEncode    Phase = "encode"    // Go to host
	PhaseDecode    Phase = "decode"    // host to Go
	PhaseCall      Phase = "call"      // typed host calls
	PhaseSignature Phase = "signature" // descriptor derivation
	PhaseReference Phase = "reference" // reference lifetime
	PhaseArray     Phase = "array"     // region and element views
	PhaseGuard     Phase = "guard"     // native entry points
	PhaseAttach    Phase = "attach"    // thread attachment
	PhaseRegister  Phase = "register"  // native method registration
	PhaseConfig    Phase = "config"    // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch     Kind = "type_mismatch"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindInvalidData      Kind = "invalid_data"
	KindUnsupported      Kind = "unsupported"
	KindAllocation       Kind = "allocation"
	KindOverflow         Kind = "overflow"
	KindNullReference    Kind = "null_reference"
	KindNotFound         Kind = "not_found"
	KindPendingException Kind = "pending_exception"
	KindNativeFailure    Kind = "native_failure"
	KindReferenceMisuse  Kind = "reference_misuse"
	KindInvalidInput     Kind = "invalid_input"
	KindRegistration     Kind = "registration"
	KindAttach           Kind = "attach"
	KindMonitor          Kind = "monitor"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	GoType    string
	HostType  string
	HostClass string
	Detail    string
	Path      []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.HostType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.HostType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", host type ")
			b.WriteString(e.HostType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("host type ")
			b.WriteString(e.HostType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.HostType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// HostException returns the fully-qualified host class the exception bridge
// should raise for this error, or "" to let the bridge pick one.
func (e *Error) HostException() string {
	return e.HostClass
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the member path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// HostType sets the host type descriptor
func (b *Builder) HostType(t string) *Builder {
	b.err.HostType = t
	return b
}

// HostClass sets the host exception class raised for this error
func (b *Builder) HostClass(fqcn string) *Builder {
	b.err.HostClass = fqcn
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, hostType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		GoType:   goType,
		HostType: hostType,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindOutOfBounds,
		Path:      path,
		HostClass: "java/lang/ArrayIndexOutOfBoundsException",
		Detail:    fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:     index,
	}
}

// NullReference creates an error for a null handle where an object is required
func NullReference(phase Phase, path []string, hostType string) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindNullReference,
		Path:      path,
		HostType:  hostType,
		HostClass: "java/lang/NullPointerException",
		Detail:    "null reference",
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindOverflow,
		Path:     path,
		HostType: targetType,
		Detail:   fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:    value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Unresolved creates a resolution failure for a class or member.
// hostClass names the linkage error the host would raise for it.
func Unresolved(what, name, descriptor, hostClass string, cause error) *Error {
	detail := fmt.Sprintf("%s %q not found", what, name)
	if descriptor != "" {
		detail = fmt.Sprintf("%s %q with descriptor %s not found", what, name, descriptor)
	}
	return &Error{
		Phase:     PhaseResolve,
		Kind:      KindNotFound,
		HostType:  descriptor,
		HostClass: hostClass,
		Detail:    detail,
		Cause:     cause,
	}
}

// ReferenceMisuse creates an error for use of a released or invalid reference
func ReferenceMisuse(what string) *Error {
	return &Error{
		Phase:  PhaseReference,
		Kind:   KindReferenceMisuse,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration creates a native registration error
func Registration(class, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s#%s", class, name),
		Cause:  cause,
	}
}

// Attach creates a thread attachment error
func Attach(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseAttach,
		Kind:   KindAttach,
		Detail: detail,
		Cause:  cause,
	}
}

// AllocationFailed creates an allocation failure error that the exception
// bridge raises as the host's out-of-memory error.
func AllocationFailed(phase Phase, what string, size int) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindAllocation,
		HostClass: "java/lang/OutOfMemoryError",
		Detail:    fmt.Sprintf("failed to allocate %s of length %d", what, size),
		Value:     size,
	}
}
