package main

import (
	"errors"
	"fmt"

	"github.com/jcorbin/memforth/internal/mem"
	"github.com/jcorbin/memforth/internal/runeio"
)

// Fault kinds; every error returned by Interpret matches one of these under
// errors.Is.
var (
	ErrStack           = errors.New("stack fault")
	ErrAlignment       = errors.New("alignment fault")
	ErrAddressRange    = errors.New("address out of range")
	ErrUnknownWord     = errors.New("unknown word")
	ErrCompileContext  = errors.New("compile context fault")
	ErrMalformedBranch = errors.New("malformed branch")
	ErrArithmetic      = errors.New("arithmetic fault")
	ErrHost            = errors.New("host fault")
)

var faultKinds = []error{
	ErrStack,
	ErrAlignment,
	ErrAddressRange,
	ErrUnknownWord,
	ErrCompileContext,
	ErrMalformedBranch,
	ErrArithmetic,
	ErrHost,
}

func isFault(err error) bool {
	for _, kind := range faultKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

type stackError struct {
	stack string
	op    string
}

func (se stackError) Error() string { return fmt.Sprintf("%v %v", se.stack, se.op) }
func (se stackError) Unwrap() error { return ErrStack }

type alignError uint

func (addr alignError) Error() string { return fmt.Sprintf("unaligned address %v", uint(addr)) }
func (addr alignError) Unwrap() error { return ErrAlignment }

type rangeError struct {
	addr int64
	op   string
}

func (re rangeError) Error() string {
	return fmt.Sprintf("address %v out of range for %v", re.addr, re.op)
}
func (re rangeError) Unwrap() error { return ErrAddressRange }

type xtError int64

func (val xtError) Error() string { return fmt.Sprintf("invalid execution token %#x", int64(val)) }
func (val xtError) Unwrap() error { return ErrAddressRange }

type unknownWordError string

func (name unknownWordError) Error() string { return fmt.Sprintf("undefined word %q", string(name)) }
func (name unknownWordError) Unwrap() error { return ErrUnknownWord }

type compileError string

const (
	errCompileOnly  = compileError("compile only")
	errNested       = compileError("nested definition")
	errUnstructured = compileError("unstructured")
	errMissingName  = compileError("missing name")
	errNameTooLong  = compileError("name too long")
	errNotValue     = compileError("not a value")
)

func (ce compileError) Error() string { return string(ce) }
func (ce compileError) Unwrap() error { return ErrCompileContext }

type branchError int64

func (target branchError) Error() string {
	return fmt.Sprintf("branch target %v out of range", int64(target))
}
func (target branchError) Unwrap() error { return ErrMalformedBranch }

type arithError string

const errDivZero = arithError("division by zero")

func (ae arithError) Error() string { return string(ae) }
func (ae arithError) Unwrap() error { return ErrArithmetic }

// hostError wraps errors from host callbacks, or context cancellation.
type hostError struct{ err error }

func (he hostError) Error() string        { return he.err.Error() }
func (he hostError) Unwrap() error        { return he.err }
func (he hostError) Is(target error) bool { return target == ErrHost }

type printableError int

func (code printableError) Error() string {
	if caret := runeio.CaretForm(rune(code)); caret != "" {
		return fmt.Sprintf("non-printable character %v", caret)
	}
	return fmt.Sprintf("non-printable character %v", int(code))
}
func (code printableError) Unwrap() error { return ErrHost }

// memFault translates errors from the memory image into faults.
func memFault(err error) error {
	var ae mem.AlignError
	var re mem.RangeError
	switch {
	case errors.As(err, &ae):
		return alignError(ae.Addr)
	case errors.As(err, &re):
		return rangeError{int64(re.Addr), re.Op}
	}
	return err
}

// faultMessage returns the short diagnostic shown after the offending word.
func faultMessage(err error) string {
	if errors.Is(err, ErrUnknownWord) {
		return "?"
	}
	return err.Error()
}
