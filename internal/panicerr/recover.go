// Package panicerr isolates host code, turning a panic or a runtime.Goexit
// into an error.
package panicerr

import (
	"fmt"
	"runtime/debug"
)

// Error describes a function that ended abnormally under Recover.
type Error struct {
	Name  string
	Value interface{} // recovered panic value, nil after runtime.Goexit
	Stack []byte
}

func (e *Error) Error() string {
	what := "exited early"
	if e.Value != nil {
		what = fmt.Sprintf("panicked: %v", e.Value)
	}
	if e.Name == "" {
		return what
	}
	return e.Name + " " + what
}

// Unwrap returns the panic value when it is an error.
func (e *Error) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Exited reports whether the function called runtime.Goexit rather than
// panicking.
func (e *Error) Exited() bool { return e.Value == nil }

// Recover runs f on its own goroutine and returns its error, or an *Error if
// f panicked or exited.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		returned := false
		defer func() {
			if returned {
				return
			}
			abnormal := &Error{Name: name, Value: recover()}
			if abnormal.Value != nil {
				abnormal.Stack = debug.Stack()
			}
			errch <- abnormal
		}()
		err := f()
		returned = true
		errch <- err
	}()
	return <-errch
}
