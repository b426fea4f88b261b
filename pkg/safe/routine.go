package safe

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// PanicError is a recovered panic with the stack of the panicking goroutine.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Run calls fn and converts a panic into a *PanicError.
func Run(fn func()) (err error) {
	defer func() {
		if v := recover(); v != nil {
			buf := make([]byte, 2048)
			n := runtime.Stack(buf, false)
			err = &PanicError{Value: v, Stack: buf[:n]}
		}
	}()
	fn()
	return nil
}

// Go runs fn in a new goroutine named name, a panic is logged and stops
// only that goroutine.
func Go(log *zap.SugaredLogger, name string, fn func()) {
	go func() {
		if err := Run(fn); err != nil {
			log.Errorf("goroutine %s %v\n %s", name, err, err.(*PanicError).Stack)
		}
	}()
}
