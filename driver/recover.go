package driver

import (
	"fmt"
	"runtime/debug"
)

// PanicError is a panic raised by the engine while running one input.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// RunRecovered is Run with panics turned into a *PanicError, for replaying
// saved inputs outside the fuzzing engine. Fuzz targets call Run so the
// engine sees the crash.
func (d *Driver) RunRecovered(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return d.Run(data)
}
