package main

import (
	"io"
	"time"

	"github.com/jcorbin/memforth/internal/flushio"
)

// VMOption configures a VM under New.
type VMOption interface{ apply(vm *VM) }

var defaultOptions = VMOptions(
	withOutput(io.Discard),
)

// VMOptions combines any number of options into one; nil options are ignored.
func VMOptions(opts ...VMOption) VMOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, impl)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	return res
}

type options []VMOption

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		opt.apply(vm)
	}
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) { vm.logfn = logfn }

type inputOption struct{ io.Reader }
type lineReaderOption struct{ lineReader }
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type emitOption func(code int) error
type pageOption func() error
type lineTimeoutOption time.Duration
type faultLogOption func(mess string, args ...interface{})

func withInput(r io.Reader) inputOption                 { return inputOption{r} }
func withLineReader(lr lineReader) lineReaderOption     { return lineReaderOption{lr} }
func withOutput(w io.Writer) outputOption               { return outputOption{w} }
func withTee(w io.Writer) teeOption                     { return teeOption{w} }
func withLineTimeout(d time.Duration) lineTimeoutOption { return lineTimeoutOption(d) }

func (i inputOption) apply(vm *VM) {
	vm.input.Queue = append(vm.input.Queue, i.Reader)
}

func (lr lineReaderOption) apply(vm *VM) {
	vm.lines = append(vm.lines, lr.lineReader)
	if cl, ok := lr.lineReader.(io.Closer); ok {
		vm.closers = append(vm.closers, cl)
	}
}

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(vm *VM) {
	vm.out = flushio.Tee(vm.out, flushio.NewWriteFlusher(o.Writer))
}

func (fn emitOption) apply(vm *VM) { vm.emitFn = fn }
func (fn pageOption) apply(vm *VM) { vm.pageFn = fn }

func (d lineTimeoutOption) apply(vm *VM) { vm.lineTimeout = time.Duration(d) }
func (fn faultLogOption) apply(vm *VM)   { vm.faultf = fn }
