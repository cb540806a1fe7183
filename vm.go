package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jcorbin/memforth/internal/fileinput"
	"github.com/jcorbin/memforth/internal/flushio"
	"github.com/jcorbin/memforth/internal/mem"
)

// VM is a Forth virtual machine whose entire state, registers, stacks,
// buffers, dictionary, and data space, lives in one flat memory image.
type VM struct {
	logging

	image   *mem.Image
	natives []native
	rt      runtimeWords

	emitFn func(code int) error
	pageFn func() error
	out    flushio.WriteFlusher

	input       fileinput.Input
	lines       []lineReader
	closers     []io.Closer
	lineTimeout time.Duration
	faultf      func(mess string, args ...interface{})

	ctx   context.Context
	steps uint
	word  string
}

// native is a routine implemented by the host, dispatched by code address.
type native struct {
	name string
	code func(vm *VM, pfa uint) error
}

// runtimeWords holds the execution tokens that compiled code refers to.
type runtimeWords struct {
	lit, branch, zbranch, exit xt
	do, qdo, loop, ploop       xt
	unloop, slit               xt
	docreate, doconst, dovalue xt
	typ, store, compile        xt
}

type lineReader interface {
	ReadLine() (string, error)
}

// Close closes any inputs still held open by the VM.
func (vm *VM) Close() (err error) {
	err = vm.input.Close()
	for i := len(vm.closers) - 1; i >= 0; i-- {
		if cerr := vm.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	vm.closers = nil
	return err
}

func (vm *VM) compiling() bool { return vm.load(regState) != 0 }

type logging struct {
	logfn     func(mess string, args ...interface{})
	markWidth int
}

func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		for _, r := range mark {
			mark = strings.Repeat(string(r), n) + mark
			break
		}
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
