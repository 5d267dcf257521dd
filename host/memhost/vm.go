package memhost

import (
	"sync"

	"github.com/petermattis/goid"
	"go.uber.org/zap"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
	"github.com/wippyai/go-jni/internal/handles"
)

// VM is an in-memory host runtime. Each goroutine that attaches gets its own
// environment, local reference table and pending exception slot.
type VM struct {
	mu      sync.Mutex
	cond    *sync.Cond
	log     *zap.Logger
	classes map[string]*class
	fields  []*field
	methods []*method
	globals *handles.Table[*object]
	weaks   *handles.Table[*object]
	threads map[int64]*Env
	pins    map[*object]int
	nextID  uint64

	maxLocals   int32
	maxArrayLen int32
	collections int
}

// Option configures a VM.
type Option func(*VM)

// WithLogger sets the logger used to report reference misuse.
func WithLogger(l *zap.Logger) Option {
	return func(vm *VM) { vm.log = l }
}

// WithMaxLocals bounds the capacity accepted by PushLocalFrame and
// EnsureLocalCapacity.
func WithMaxLocals(n int32) Option {
	return func(vm *VM) { vm.maxLocals = n }
}

// WithMaxArrayLength makes array allocations above n fail with
// java/lang/OutOfMemoryError.
func WithMaxArrayLength(n int32) Option {
	return func(vm *VM) { vm.maxArrayLen = n }
}

// New creates a VM with the core java/lang and java/util classes defined.
func New(opts ...Option) *VM {
	vm := &VM{
		log:         zap.NewNop(),
		classes:     make(map[string]*class),
		globals:     handles.New[*object](),
		weaks:       handles.New[*object](),
		threads:     make(map[int64]*Env),
		pins:        make(map[*object]int),
		maxLocals:   65536,
		maxArrayLen: 1 << 28,
	}
	vm.cond = sync.NewCond(&vm.mu)
	for _, opt := range opts {
		opt(vm)
	}
	vm.bootstrap()
	return vm
}

// AttachCurrentThread implements host.VM.
func (vm *VM) AttachCurrentThread() (host.Env, error) {
	id := goid.Get()

	vm.mu.Lock()
	defer vm.mu.Unlock()

	if e, ok := vm.threads[id]; ok {
		return e, nil
	}
	e := &Env{
		vm:     vm,
		id:     id,
		locals: handles.New[local](),
		held:   make(map[*object]struct{}),
	}
	vm.threads[id] = e
	vm.log.Debug("thread attached", zap.Int64("thread", id))
	return e, nil
}

// DetachCurrentThread implements host.VM. Monitors still held by the thread
// are released and its local references are dropped.
func (vm *VM) DetachCurrentThread() error {
	id := goid.Get()

	vm.mu.Lock()
	defer vm.mu.Unlock()

	e, ok := vm.threads[id]
	if !ok {
		return errors.Attach("current thread is not attached", nil)
	}
	for o := range e.held {
		vm.log.Warn("releasing monitor held at detach",
			zap.Int64("thread", id), zap.String("class", o.class.name))
		o.owner = 0
		o.depth = 0
	}
	if len(e.held) > 0 {
		vm.cond.Broadcast()
	}
	e.held = nil
	e.pending = nil
	delete(vm.threads, id)
	e.detached = true
	vm.log.Debug("thread detached", zap.Int64("thread", id))
	return e.locals.Close()
}

// GetEnv implements host.VM.
func (vm *VM) GetEnv() (host.Env, bool) {
	id := goid.Get()

	vm.mu.Lock()
	defer vm.mu.Unlock()

	e, ok := vm.threads[id]
	if !ok {
		return nil, false
	}
	return e, true
}

// GC runs a full collection. Objects unreachable from global references,
// the local references of attached threads, pending exceptions and static
// fields are collected; weak references to them are cleared. It returns the
// number of weak references cleared.
func (vm *VM) GC() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	marked := make(map[*object]bool)
	var stack []*object
	mark := func(o *object) {
		if o != nil && !marked[o] {
			marked[o] = true
			stack = append(stack, o)
		}
	}

	vm.globals.Each(func(_ handles.Handle, o *object) bool {
		mark(o)
		return true
	})
	for _, e := range vm.threads {
		e.locals.Each(func(_ handles.Handle, l local) bool {
			mark(l.obj)
			return true
		})
		mark(e.pending)
	}
	for _, c := range vm.classes {
		mark(c.obj)
		for _, s := range c.statics {
			mark(s.ref)
		}
	}

	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		o.trace(mark)
	}

	var cleared []handles.Handle
	vm.weaks.Each(func(h handles.Handle, o *object) bool {
		if o != nil && !marked[o] {
			cleared = append(cleared, h)
		}
		return true
	})
	for _, h := range cleared {
		vm.weaks.Set(h, nil)
	}
	vm.collections++
	vm.log.Debug("gc", zap.Int("live", len(marked)), zap.Int("weak_cleared", len(cleared)))
	return len(cleared)
}

// Collections returns how many times GC has run.
func (vm *VM) Collections() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.collections
}

// GlobalCount returns the number of live global references.
func (vm *VM) GlobalCount() int {
	return vm.globals.Len()
}

// WeakCount returns the number of weak global references not yet deleted,
// whether or not their targets were collected.
func (vm *VM) WeakCount() int {
	return vm.weaks.Len()
}

// PinCount returns the number of array element buffers not yet released.
func (vm *VM) PinCount() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	n := 0
	for _, c := range vm.pins {
		n += c
	}
	return n
}

// ThreadCount returns the number of attached threads.
func (vm *VM) ThreadCount() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.threads)
}

// LocalCount returns the number of live local references of env, which must
// be a memhost environment.
func LocalCount(env host.Env) int {
	e, ok := env.(*Env)
	if !ok {
		return -1
	}
	return e.locals.Len()
}

func (vm *VM) field(id host.FieldID) *field {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if id == 0 || int(id) > len(vm.fields) {
		return nil
	}
	return vm.fields[id-1]
}

func (vm *VM) method(id host.MethodID) *method {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if id == 0 || int(id) > len(vm.methods) {
		return nil
	}
	return vm.methods[id-1]
}
