// Package thread attaches goroutines to a host VM.
//
// A host environment belongs to one OS thread. Attach locks the calling
// goroutine to its thread and attaches the thread if needed; Do wraps a
// function in that pattern and only detaches threads it attached itself:
//
//	err := thread.Do(vm, func(env host.Env) error {
//		_, err := member.ClassOf[Point](env)
//		return err
//	})
//
// SetDefaultVM records the process-wide VM once, typically when the host
// loads the native library.
package thread
