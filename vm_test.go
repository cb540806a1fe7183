package main

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/memforth/internal/logio"
	"github.com/jcorbin/memforth/internal/panicerr"
)

type vmTestCases []vmTestCase

func (vmts vmTestCases) run(t *testing.T) {
	{
		var exclusive []vmTestCase
		for _, vmt := range vmts {
			if vmt.exclusive {
				exclusive = append(exclusive, vmt)
			}
		}
		if len(exclusive) > 0 {
			vmts = exclusive
		}
	}
	for _, vmt := range vmts {
		if !t.Run(vmt.name, vmt.run) {
			return
		}
	}
}

func vmTest(name string) (vmt vmTestCase) {
	vmt.name = name
	return vmt
}

type vmTestCase struct {
	name    string
	opts    []func(t *testing.T) VMOption
	setup   []func(t *testing.T, vm *VM)
	lines   []string
	ops     []func(vm *VM) error
	expect  []func(t *testing.T, vm *VM)
	timeout time.Duration

	wantErr   error
	exclusive bool
}

func (vmt vmTestCase) apply(wraps ...func(vmTestCase) vmTestCase) vmTestCase {
	for _, wrap := range wraps {
		vmt = wrap(vmt)
	}
	return vmt
}

func (vmt vmTestCase) exclusiveTest() vmTestCase {
	vmt.exclusive = true
	return vmt
}

// The builder methods append to shared slices; each copies first so that
// cases derived from a common base do not alias.

func (vmt vmTestCase) withOptions(opts ...VMOption) vmTestCase {
	vmt.opts = append(vmt.opts[:len(vmt.opts):len(vmt.opts)], func(*testing.T) VMOption {
		return VMOptions(opts...)
	})
	return vmt
}

func (vmt vmTestCase) withTestOutput() vmTestCase {
	vmt.opts = append(vmt.opts[:len(vmt.opts):len(vmt.opts)], func(t *testing.T) VMOption {
		return WithTee(&logio.Writer{Logf: func(mess string, args ...interface{}) {
			t.Logf("out: "+mess, args...)
		}})
	})
	return vmt
}

func (vmt vmTestCase) withStack(values ...int64) vmTestCase {
	vmt.setup = append(vmt.setup[:len(vmt.setup):len(vmt.setup)], func(t *testing.T, vm *VM) {
		require.NoError(t, vm.dpushAll(values...), "unable to set up stack")
	})
	return vmt
}

func (vmt vmTestCase) withRStack(values ...int64) vmTestCase {
	vmt.setup = append(vmt.setup[:len(vmt.setup):len(vmt.setup)], func(t *testing.T, vm *VM) {
		for _, val := range values {
			require.NoError(t, vm.rpush(val), "unable to set up return stack")
		}
	})
	return vmt
}

func (vmt vmTestCase) withMemAt(addr int64, values ...int64) vmTestCase {
	vmt.setup = append(vmt.setup[:len(vmt.setup):len(vmt.setup)], func(t *testing.T, vm *VM) {
		for i, val := range values {
			require.NoError(t, vm.storeCell(addr+int64(i)*cellSize, val), "unable to set up memory")
		}
	})
	return vmt
}

// withLines interprets each line in turn; the first fault stops the case.
func (vmt vmTestCase) withLines(lines ...string) vmTestCase {
	vmt.lines = append(vmt.lines[:len(vmt.lines):len(vmt.lines)], lines...)
	return vmt
}

// do runs ops directly against the VM after any lines.
func (vmt vmTestCase) do(ops ...func(vm *VM) error) vmTestCase {
	vmt.ops = append(vmt.ops[:len(vmt.ops):len(vmt.ops)], ops...)
	return vmt
}

func (vmt vmTestCase) withTimeout(timeout time.Duration) vmTestCase {
	vmt.timeout = timeout
	return vmt
}

func (vmt vmTestCase) then(expect func(t *testing.T, vm *VM)) vmTestCase {
	vmt.expect = append(vmt.expect[:len(vmt.expect):len(vmt.expect)], expect)
	return vmt
}

func (vmt vmTestCase) expectError(err error) vmTestCase {
	vmt.wantErr = err
	return vmt
}

func (vmt vmTestCase) expectStack(values ...int64) vmTestCase {
	return vmt.then(func(t *testing.T, vm *VM) {
		if values == nil {
			values = []int64{}
		}
		assert.Equal(t, values, vm.values(dataStack), "expected stack values")
	})
}

func (vmt vmTestCase) expectRStack(values ...int64) vmTestCase {
	return vmt.then(func(t *testing.T, vm *VM) {
		if values == nil {
			values = []int64{}
		}
		assert.Equal(t, values, vm.values(returnStack), "expected return stack values")
	})
}

func (vmt vmTestCase) expectMemAt(addr int64, values ...int64) vmTestCase {
	return vmt.then(func(t *testing.T, vm *VM) {
		buf := make([]int64, len(values))
		for i := range buf {
			buf[i], _ = vm.fetchCell(addr + int64(i)*cellSize)
		}
		assert.Equal(t, values, buf, "expected memory values @%v", addr)
	})
}

func (vmt vmTestCase) expectBytesAt(addr int64, s string) vmTestCase {
	return vmt.then(func(t *testing.T, vm *VM) {
		buf, err := vm.fetchBytes(addr, int64(len(s)))
		if assert.NoError(t, err) {
			assert.Equal(t, s, string(buf), "expected bytes @%v", addr)
		}
	})
}

func (vmt vmTestCase) expectHere(addr int64) vmTestCase {
	return vmt.then(func(t *testing.T, vm *VM) {
		assert.Equal(t, addr, vm.here(), "expected HERE")
	})
}

func (vmt vmTestCase) expectCompiling(compiling bool) vmTestCase {
	return vmt.then(func(t *testing.T, vm *VM) {
		assert.Equal(t, compiling, vm.compiling(), "expected STATE")
	})
}

// expectFind checks how name resolves: 1 when immediate, -1 otherwise, and 0
// when not found.
func (vmt vmTestCase) expectFind(name string, found int64) vmTestCase {
	return vmt.then(func(t *testing.T, vm *VM) {
		_, imm, err := vm.lookup([]byte(name))
		if found == 0 {
			assert.True(t, errors.Is(err, ErrUnknownWord), "expected %q to be undefined, got %v", name, err)
		} else if assert.NoError(t, err, "expected %q to be defined", name) {
			assert.Equal(t, found, imm, "expected %q find result", name)
		}
	})
}

func (vmt vmTestCase) expectOutput(output string) vmTestCase {
	var out strings.Builder
	vmt = vmt.withOptions(WithOutput(&out))
	return vmt.then(func(t *testing.T, vm *VM) {
		assert.Equal(t, output, out.String(), "expected output")
	})
}

func (vmt vmTestCase) expectDump(parts ...string) vmTestCase {
	return vmt.then(func(t *testing.T, vm *VM) {
		var out strings.Builder
		vmDumper{vm: vm, out: &out}.dump()
		for _, part := range parts {
			assert.Contains(t, out.String(), part, "expected dump content")
		}
	})
}

func (vmt vmTestCase) run(t *testing.T) {
	defer func(then time.Time) {
		label := "PASS"
		if t.Failed() {
			label = "FAIL"
		}
		t.Logf("%v\t%v\t%v", label, t.Name(), time.Since(then))
	}(time.Now())

	var trace []string
	opts := []VMOption{WithLogf(func(mess string, args ...interface{}) {
		if len(trace) < 4096 {
			trace = append(trace, fmt.Sprintf(mess, args...))
		}
	})}
	for _, opt := range vmt.opts {
		opts = append(opts, opt(t))
	}
	vm := New(opts...)
	defer func() {
		if t.Failed() {
			for _, line := range trace {
				t.Log(line)
			}
			vmt.dumpToTest(t, vm)
		}
		assert.NoError(t, vm.Close(), "unexpected VM close error")
	}()

	for _, setup := range vmt.setup {
		setup(t, vm)
	}

	if err := vmt.runVM(vm); vmt.wantErr != nil {
		assert.True(t, errors.Is(err, vmt.wantErr), "expected error: %v\ngot: %+v", vmt.wantErr, err)
	} else {
		assert.NoError(t, err, "unexpected VM error")
	}

	if !t.Failed() {
		for _, expect := range vmt.expect {
			expect(t, vm)
		}
	}
}

func (vmt vmTestCase) runVM(vm *VM) error {
	const defaultTimeout = time.Second
	timeout := vmt.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, line := range vmt.lines {
		if err := vm.InterpretContext(ctx, line); err != nil {
			return err
		}
	}

	for _, op := range vmt.ops {
		name := runtime.FuncForPC(reflect.ValueOf(op).Pointer()).Name()
		vm.logf(">", "do %v", name)
		if err := panicerr.Recover(name, func() error { return op(vm) }); err != nil {
			return err
		}
	}
	return nil
}

func (vmt vmTestCase) dumpToTest(t *testing.T, vm *VM) {
	lw := logio.Writer{Logf: t.Logf}
	defer lw.Close()
	vmDumper{vm: vm, out: &lw, natives: true}.dump()
}

//// utilities

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

// newTestVM builds a VM for tests that drive it directly, closing it on
// cleanup.
func newTestVM(t *testing.T, opts ...VMOption) *VM {
	vm := New(opts...)
	t.Cleanup(func() { assert.NoError(t, vm.Close()) })
	return vm
}

// mustLookup returns the xt of a defined word.
func mustLookup(t *testing.T, vm *VM, name string) xt {
	x, _, err := vm.lookup([]byte(name))
	require.NoError(t, err, "expected %q to be defined", name)
	return x
}
