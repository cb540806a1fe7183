// Package flushio provides buffered output streams that are flushed at
// explicit points, like the end of an interpreted line.
package flushio

import (
	"bufio"
	"io"
)

// WriteFlusher is a flush-able io.Writer.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

// NewWriteFlusher wraps w for buffered writing: a WriteFlusher is returned
// as-is, in memory buffers and io.Discard get a no-op Flush, everything else
// gets a bufio.Writer.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	if wf, is := w.(WriteFlusher); is {
		return wf
	}
	if w == io.Discard {
		return nopFlusher{w}
	}

	// types like bytes.Buffer and strings.Builder
	type buffer interface {
		io.Writer
		Len() int
		Grow(n int)
		Reset()
	}
	if _, isBuffer := w.(buffer); isBuffer {
		return nopFlusher{w}
	}

	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }

// Tee combines any number of WriteFlusher-s into a single one that writes
// into and flushes all of them, in order; nil elements are skipped.
func Tee(wfs ...WriteFlusher) WriteFlusher {
	var all tee
	for _, wf := range wfs {
		if many, ok := wf.(tee); ok {
			all = append(all, many...)
		} else if wf != nil {
			all = append(all, wf)
		}
	}
	switch len(all) {
	case 0:
		return nopFlusher{io.Discard}
	case 1:
		return all[0]
	default:
		return all
	}
}

type tee []WriteFlusher

func (wfs tee) Write(p []byte) (n int, err error) {
	for _, wf := range wfs {
		n, err = wf.Write(p)
		if err == nil && n != len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return n, err
		}
	}
	return len(p), nil
}

func (wfs tee) Flush() (err error) {
	for _, wf := range wfs {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}
