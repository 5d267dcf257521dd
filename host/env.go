package host

// NativeFunc is the calling convention for Go code invoked by the host:
// the environment of the calling thread, the receiver (an object for
// instance methods, the class for static ones) and the wire arguments.
type NativeFunc func(env Env, recv Ref, args []Value) Value

// NativeMethod binds a Go implementation to a method declared native on the
// host side.
type NativeMethod struct {
	Name      string
	Signature string
	Fn        NativeFunc
}

// VM is the process-wide host runtime.
type VM interface {
	// AttachCurrentThread attaches the calling OS thread and returns its
	// environment. Attaching an already attached thread returns the same
	// environment.
	AttachCurrentThread() (Env, error)
	// DetachCurrentThread detaches the calling thread, releasing its locals.
	DetachCurrentThread() error
	// GetEnv returns the environment of the calling thread if attached.
	GetEnv() (Env, bool)
}

// Env is the per-thread environment handle.
//
// Methods that can fail inside the host return a zero result and leave an
// exception pending rather than returning an error. Methods returning error
// report failures of the native interface itself.
type Env interface {
	VM() VM

	// Classes and objects.
	FindClass(name string) Class
	GetSuperclass(c Class) Class
	GetObjectClass(obj Ref) Class
	IsInstanceOf(obj Ref, c Class) bool
	IsAssignableFrom(sub, sup Class) bool
	IsSameObject(a, b Ref) bool

	// Member resolution.
	GetFieldID(c Class, name, sig string) FieldID
	GetStaticFieldID(c Class, name, sig string) FieldID
	GetMethodID(c Class, name, sig string) MethodID
	GetStaticMethodID(c Class, name, sig string) MethodID

	// Field access; k is the field's wire kind.
	GetField(obj Ref, id FieldID, k Kind) Value
	SetField(obj Ref, id FieldID, k Kind, v Value)
	GetStaticField(c Class, id FieldID, k Kind) Value
	SetStaticField(c Class, id FieldID, k Kind, v Value)

	// Calls; k is the wire kind of the result.
	Call(obj Ref, id MethodID, k Kind, args []Value) Value
	CallNonvirtual(obj Ref, c Class, id MethodID, k Kind, args []Value) Value
	CallStatic(c Class, id MethodID, k Kind, args []Value) Value
	NewObject(c Class, ctor MethodID, args []Value) Ref
	AllocObject(c Class) Ref

	// References.
	NewLocalRef(r Ref) Ref
	DeleteLocalRef(r Ref)
	NewGlobalRef(r Ref) Ref
	DeleteGlobalRef(r Ref)
	NewWeakGlobalRef(r Ref) Ref
	DeleteWeakGlobalRef(r Ref)
	GetObjectRefType(r Ref) RefType
	EnsureLocalCapacity(capacity int32) error
	PushLocalFrame(capacity int32) error
	PopLocalFrame(result Ref) Ref

	// Strings.
	NewStringUTF(s string) String
	GetStringUTF(s String) string
	GetStringUTFLength(s String) int32
	NewString(chars []uint16) String
	GetStringLength(s String) int32
	GetStringRegion(s String, start int32, buf []uint16)

	// Arrays. Primitive buffers are Go slices whose element type matches
	// the array kind: []Boolean, []int8, []uint16, []int16, []int32,
	// []int64, []float32 or []float64.
	GetArrayLength(arr Ref) int32
	NewPrimitiveArray(k Kind, length int32) Ref
	GetArrayRegion(arr Ref, start int32, buf any)
	SetArrayRegion(arr Ref, start int32, buf any)
	GetArrayElements(arr Ref) (elems any, isCopy bool)
	ReleaseArrayElements(arr Ref, elems any, mode ReleaseMode)
	NewObjectArray(length int32, elem Class, initial Ref) ObjectArray
	GetObjectArrayElement(arr ObjectArray, index int32) Ref
	SetObjectArrayElement(arr ObjectArray, index int32, v Ref)

	// Direct buffers.
	NewDirectByteBuffer(buf []byte) Ref
	GetDirectBufferAddress(buf Ref) []byte
	GetDirectBufferCapacity(buf Ref) int64

	// Monitors.
	MonitorEnter(obj Ref) error
	MonitorExit(obj Ref) error

	// Exceptions.
	Throw(t Throwable) error
	ThrowNew(c Class, msg string) error
	ExceptionOccurred() Throwable
	ExceptionCheck() bool
	ExceptionClear()

	// Natives.
	RegisterNatives(c Class, methods []NativeMethod) error
	UnregisterNatives(c Class) error
}
