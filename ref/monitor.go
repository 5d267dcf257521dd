package ref

import (
	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/host"
)

// Monitor is a held host monitor.
type Monitor struct {
	env    host.Env
	obj    host.Ref
	exited bool
}

// Synchronized enters the monitor of the object named by h. The caller
// must call Exit on the same goroutine:
//
//	m, err := ref.Synchronized(env, obj)
//	if err != nil {
//		return err
//	}
//	defer m.Exit()
func Synchronized(env host.Env, h Handle) (*Monitor, error) {
	r := refOf(h)
	if err := env.MonitorEnter(r); err != nil {
		return nil, errors.Wrap(errors.PhaseCall, errors.KindMonitor, err, "enter monitor")
	}
	return &Monitor{env: env, obj: r}, nil
}

// Exit leaves the monitor. Calling Exit again has no effect.
func (m *Monitor) Exit() error {
	if m.exited {
		return nil
	}
	m.exited = true
	if err := m.env.MonitorExit(m.obj); err != nil {
		return errors.Wrap(errors.PhaseCall, errors.KindMonitor, err, "exit monitor")
	}
	return nil
}
