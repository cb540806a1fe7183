package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }

type linesReader struct {
	lines  []string
	closed bool
}

func (lr *linesReader) ReadLine() (string, error) {
	if len(lr.lines) == 0 {
		return "", io.EOF
	}
	line := lr.lines[0]
	lr.lines = lr.lines[1:]
	return line, nil
}

func (lr *linesReader) Close() error {
	lr.closed = true
	return nil
}

func TestVM_Run(t *testing.T) {
	var out strings.Builder
	var faults []string
	lr := &linesReader{lines: []string{"c . b ."}}
	vm := New(
		WithOutput(&out),
		WithInput(namedReader{strings.NewReader(": a 1 ;\n: b 2 ;\n"), "defs.fs"}),
		WithInput(namedReader{strings.NewReader("a .\nnope\n3 CONSTANT c"), "main.fs"}),
		WithLineReader(lr),
		WithFaultLogf(func(mess string, args ...interface{}) {
			faults = append(faults, fmt.Sprintf(mess, args...))
		}),
	)

	require.NoError(t, vm.Run(context.Background()))
	assert.Equal(t, lines(
		" ok",
		" ok",
		"1  ok",
		" nope ?",
		" ok",
		"3 2  ok",
	), out.String())
	if assert.Len(t, faults, 1) {
		assert.True(t, strings.HasPrefix(faults[0], "main.fs:2: "), "expected fault location, got %q", faults[0])
	}

	assert.False(t, lr.closed)
	require.NoError(t, vm.Close())
	assert.True(t, lr.closed)
}

func TestVM_RunLineTimeout(t *testing.T) {
	var out strings.Builder
	var faults []string
	vm := New(
		WithOutput(&out),
		WithInput(strings.NewReader(": spin BEGIN AGAIN ;\nspin\n1 .\n")),
		WithLineTimeout(20*time.Millisecond),
		WithFaultLogf(func(mess string, args ...interface{}) {
			faults = append(faults, fmt.Sprintf(mess, args...))
		}),
	)
	defer vm.Close()

	require.NoError(t, vm.Run(context.Background()))
	assert.Len(t, faults, 1)
	assert.True(t, strings.HasSuffix(out.String(), "1  ok\n"), "expected run to continue after the timeout, got %q", out.String())
}

func TestVM_RunCanceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	vm := New(WithInput(strings.NewReader(": spin BEGIN AGAIN ;\nspin\n1 .\n")))
	defer vm.Close()
	err := vm.Run(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "expected deadline, got %v", err)
}

func TestVM_RunReadError(t *testing.T) {
	boom := errors.New("disk on fire")
	vm := New(WithInput(io.MultiReader(strings.NewReader("1 2\n"), errReader{boom})))
	defer vm.Close()
	err := vm.Run(context.Background())
	assert.True(t, errors.Is(err, boom), "expected read error, got %v", err)
	assert.Equal(t, 2, vm.Depth())
}

type errReader struct{ err error }

func (er errReader) Read([]byte) (int, error) { return 0, er.err }

func TestVM_hostAccess(t *testing.T) {
	vm := newTestVM(t)
	require.NoError(t, vm.Interpret("VARIABLE v 1234 v ! v"))
	assert.Equal(t, 1, vm.Depth())

	addr, err := vm.Pop()
	require.NoError(t, err)
	val, err := vm.FetchCell(addr)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), val)

	b, err := vm.FetchByte(addr)
	require.NoError(t, err)
	assert.Equal(t, byte(1234&0xff), b, "expected little endian cells")

	_, err = vm.FetchCell(addr + 1)
	assert.True(t, errors.Is(err, ErrAlignment))
	_, err = vm.FetchByte(memSize)
	assert.True(t, errors.Is(err, ErrAddressRange))

	_, err = vm.Pop()
	assert.True(t, errors.Is(err, ErrStack))
}

func TestVM_multiline(t *testing.T) {
	var out strings.Builder
	vm := newTestVM(t, WithOutput(&out))
	require.NoError(t, vm.Interpret(lines(
		": sq DUP *",
		"  ;",
		"3 sq .",
	)))
	assert.Equal(t, " ok\n9  ok\n", out.String())

	err := vm.Interpret("1 oops\n2 .")
	assert.True(t, errors.Is(err, ErrUnknownWord))
	assert.Equal(t, " ok\n9  ok\n oops ?\n", out.String(), "expected interpretation to stop at the fault")
}
