package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jcorbin/memforth/internal/fileinput"
	"github.com/jcorbin/memforth/internal/mem"
	"github.com/jcorbin/memforth/internal/panicerr"
)

// New creates a VM with its registers initialized and its built in words
// defined.
func New(opts ...VMOption) *VM {
	vm := &VM{image: mem.NewImage(memSize)}
	vm.lines = []lineReader{&vm.input}
	vm.emitFn = vm.writeChar
	defaultOptions.apply(vm)
	VMOptions(opts...).apply(vm)

	vm.clear(dataStack)
	vm.clear(returnStack)
	vm.clear(controlStack)
	vm.stor(regDS, dataBase)
	vm.stor(regStr, strBase)
	if err := vm.compileBuiltins(); err != nil {
		panic(err)
	}
	return vm
}

// WithInput queues an input stream for Run; streams are read in order.
func WithInput(r io.Reader) VMOption { return withInput(r) }

// WithLineReader adds a line source for Run, read after any WithInput streams.
func WithLineReader(lr interface{ ReadLine() (string, error) }) VMOption {
	return withLineReader(lr)
}

// WithOutput sets the stream written by the default output callback.
func WithOutput(w io.Writer) VMOption { return withOutput(w) }

// WithTee copies output into an additional stream.
func WithTee(w io.Writer) VMOption { return withTee(w) }

// WithEmit replaces the default output callback, which writes printable
// ASCII and line feeds into the output stream.
func WithEmit(emit func(code int) error) VMOption { return emitOption(emit) }

// WithPage sets the callback used by PAGE; without one PAGE emits a line feed.
func WithPage(page func() error) VMOption { return pageOption(page) }

// WithLineTimeout bounds how long Run lets any one line run.
func WithLineTimeout(d time.Duration) VMOption { return withLineTimeout(d) }

// WithFaultLogf sets where Run logs faults, along with their input location;
// by default they go to the trace log.
func WithFaultLogf(logfn func(mess string, args ...interface{})) VMOption {
	return faultLogOption(logfn)
}

// WithLogf enables trace logging.
func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }

// Interpret runs the outer interpreter over text, one line at a time.
func (vm *VM) Interpret(text string) error {
	return vm.InterpretContext(context.Background(), text)
}

// InterpretContext runs the outer interpreter over text, one line at a time,
// stopping at the first fault. Any fault resets the stacks, returns to
// interpret mode, and is reported through the output callback before being
// returned. A line is also aborted once ctx is done.
func (vm *VM) InterpretContext(ctx context.Context, text string) error {
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		if err := vm.interpretLineContext(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) interpretLineContext(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		err = hostError{err}
		vm.abort(err)
		vm.out.Flush()
		return err
	}
	vm.ctx = ctx
	defer func() { vm.ctx = nil }()

	err := panicerr.Recover("interpret", func() error {
		return vm.interpretLine(line)
	})
	if err != nil {
		if !isFault(err) {
			err = hostError{err}
		}
		vm.abort(err)
	}
	if ferr := vm.out.Flush(); ferr != nil && err == nil {
		err = hostError{ferr}
	}
	return err
}

// Run interprets lines from the configured inputs until they are exhausted,
// or ctx is done. Faults are reported in the output and logged, but do not
// stop the run.
func (vm *VM) Run(ctx context.Context) error {
	for _, lr := range vm.lines {
		for {
			line, err := lr.ReadLine()
			if errors.Is(err, io.EOF) {
				break
			} else if err != nil {
				return err
			}
			if err := vm.runLine(ctx, line); err != nil {
				if cerr := ctx.Err(); cerr != nil {
					return cerr
				}
				if !isFault(err) {
					return err
				}
				vm.logFault(lr, err)
			}
		}
	}
	return nil
}

func (vm *VM) logFault(lr lineReader, err error) {
	logf := vm.faultf
	if logf == nil {
		logf = func(mess string, args ...interface{}) { vm.logf("!", mess, args...) }
	}
	if loc, ok := lr.(interface{ Location() fileinput.Location }); ok {
		logf("%v: %v", loc.Location(), err)
	} else {
		logf("%v", err)
	}
}

func (vm *VM) runLine(ctx context.Context, line string) error {
	if vm.lineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, vm.lineTimeout)
		defer cancel()
	}
	return vm.interpretLineContext(ctx, line)
}

// Pop removes and returns the top of the data stack.
func (vm *VM) Pop() (int64, error) { return vm.dpop() }

// Depth returns the number of cells on the data stack.
func (vm *VM) Depth() int { return vm.depth(dataStack) }

// FetchByte reads the byte at addr.
func (vm *VM) FetchByte(addr int64) (byte, error) { return vm.fetchByte(addr) }

// FetchCell reads the cell at addr, which must be aligned.
func (vm *VM) FetchCell(addr int64) (int64, error) { return vm.fetchCell(addr) }
