package cotask

import (
	"fmt"
	"runtime/debug"
)

// PanicError is the failure recorded on a [Task] when one of its steps
// panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	if e.Stack == nil {
		return fmt.Sprintf("panic: %v", e.Value)
	}
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// tryNext advances s by one step, turning a panic into a *PanicError.
func tryNext(s Sequence) (v any, ok bool, err error) {
	defer func() {
		if !ok && err == nil {
			if p := recover(); p != nil {
				v, err = nil, &PanicError{Value: p, Stack: debug.Stack()}
			}
		}
	}()
	return s.Next()
}
